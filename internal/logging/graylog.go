package logging

import (
	"fmt"
	"log/slog"

	"github.com/Graylog2/go-gelf/gelf"
)

// NewGraylogHandler returns a JSON handler that ships each record to a Graylog
// GELF UDP input. The writer must be closed by the caller.
func NewGraylogHandler(addr, level string) (slog.Handler, *gelf.Writer, error) {
	w, err := gelf.NewWriter(addr)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to graylog at %s: %w", addr, err)
	}
	w.Facility = "wramwatch"
	return slog.NewJSONHandler(w, handlerOptions(parseLevel(level))), w, nil
}
