package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wramwatch/wramwatch/internal/dispatcher"
)

var _ dispatcher.Logger = (*DispatcherLogger)(nil)

func TestDispatcherLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		log   func(*DispatcherLogger)
		key   string
		want  any
	}{
		{"DEBUG", func(l *DispatcherLogger) { l.Debug("decoding snapshot", "mode", "overworld") }, "mode", "overworld"},
		{"INFO", func(l *DispatcherLogger) { l.Info("decoding snapshot", "issues", 2) }, "issues", float64(2)},
		{"ERROR", func(l *DispatcherLogger) { l.Error("decoding snapshot", "error", "boom") }, "error", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			tt.log(NewDispatcherLogger(logger))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "decoding snapshot", entry["msg"])
			assert.Equal(t, tt.want, entry[tt.key])
		})
	}
}

func TestDispatcherLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	NewDispatcherLogger(logger).Debug("hidden")
	assert.Empty(t, buf.String())
}
