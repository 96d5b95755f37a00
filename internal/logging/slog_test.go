package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

func TestSetup_FileOnly_NoStdout(t *testing.T) {
	restore := captureStdout(t)

	var fileBuf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&fileBuf, "info", nil)
	m.Logger().Info("hello file")

	stdout := restore()

	assert.Contains(t, fileBuf.String(), "hello file")
	assert.Empty(t, stdout, "nothing should be written to stdout when file is provided")
}

func TestSetup_NoFile_WritesToStdout(t *testing.T) {
	restore := captureStdout(t)

	m := NewSlogManager()
	m.Setup(nil, "info", nil)
	m.Logger().Info("hello console")

	assert.Contains(t, restore(), "hello console")
}

func TestSetup_LevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{"debug", true},
		{"info", false},
		{"bogus", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)

			m.Logger().Debug("debug msg")
			m.Logger().Info("info msg")

			assert.Equal(t, tt.wantDebug, bytes.Contains(buf.Bytes(), []byte("debug msg")))
			assert.Contains(t, buf.String(), "info msg")
		})
	}
}

func TestSetup_ExtraHandlers(t *testing.T) {
	var file, extra bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", nil, slog.NewJSONHandler(&extra, nil))

	m.Logger().Info("to both")

	assert.Contains(t, file.String(), "to both")
	assert.Contains(t, extra.String(), `"msg":"to both"`)
}

func TestSetup_PollContext(t *testing.T) {
	var buf bytes.Buffer
	pc := &PollContext{}
	m := NewSlogManager()
	m.SetContextProvider(pc.Attrs)
	m.Setup(&buf, "info", nil)

	m.Logger().Info("idle")
	assert.NotContains(t, buf.String(), "snapshot_id")

	pc.Set("01J0000000000000000000000A", "wild_battle")
	m.Logger().Info("polling")
	assert.Contains(t, buf.String(), "snapshot_id=01J0000000000000000000000A")
	assert.Contains(t, buf.String(), "game_state=wild_battle")

	pc.Clear()
	buf.Reset()
	m.Logger().Info("done")
	assert.NotContains(t, buf.String(), "snapshot_id")
}

func TestLogger_DefaultBeforeSetup(t *testing.T) {
	assert.Equal(t, slog.Default(), NewSlogManager().Logger())
}

func TestFlush(t *testing.T) {
	m := NewSlogManager()
	assert.NoError(t, m.Flush(context.Background()))

	m.Setup(&bytes.Buffer{}, "info", sdklog.NewLoggerProvider())
	assert.NoError(t, m.Flush(context.Background()))
}

func TestWriteLog(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "unknown"} {
		t.Run(level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, "debug", nil)

			m.WriteLog("pollLoop", level+" message", level)

			assert.Contains(t, buf.String(), level+" message")
			assert.Contains(t, buf.String(), "function=pollLoop")
		})
	}

	// no logger yet
	NewSlogManager().WriteLog("fn", "data", "info")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"Warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestMultiHandler(t *testing.T) {
	var info, debug bytes.Buffer
	hInfo := slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo})
	hDebug := slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug})

	multi := NewMultiHandler(nil, hInfo, nil, hDebug)
	require.Len(t, multi.handlers, 2)
	assert.True(t, multi.Enabled(context.Background(), slog.LevelDebug))
	assert.False(t, NewMultiHandler().Enabled(context.Background(), slog.LevelInfo))

	logger := slog.New(multi).With("component", "poller").WithGroup("poll")
	logger.Debug("tick", "n", 1)
	logger.Info("frame", "n", 2)

	assert.NotContains(t, info.String(), "tick")
	assert.Contains(t, info.String(), "component=poller")
	assert.Contains(t, info.String(), "poll.n=2")
	assert.Contains(t, debug.String(), "poll.n=1")
	assert.Same(t, multi, multi.WithGroup(""))
}

var timeZero time.Time

// failingHandler accepts every record and always fails.
type failingHandler struct {
	slog.Handler
}

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("handler error") }

func TestMultiHandler_HandleError(t *testing.T) {
	var buf bytes.Buffer
	spy := slog.NewTextHandler(&buf, nil)

	multi := NewMultiHandler(failingHandler{}, spy)
	err := multi.Handle(context.Background(), slog.NewRecord(timeZero, slog.LevelInfo, "should reach spy", 0))

	assert.Error(t, err)
	assert.Contains(t, buf.String(), "should reach spy")
}

// captureStdout redirects stdout to a pipe and returns a function that
// restores it and returns what was captured.
func captureStdout(t *testing.T) func() string {
	t.Helper()

	r, w, err := osPipe()
	require.NoError(t, err)

	orig := osStdout
	osStdout = w

	return func() string {
		w.Close()
		osStdout = orig
		var buf bytes.Buffer
		buf.ReadFrom(r)
		r.Close()
		return buf.String()
	}
}
