package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wramwatch/wramwatch/internal/wram"
	"github.com/wramwatch/wramwatch/pkg/core"
)

// ErrUnknownGameState is returned when no pipeline is registered for the mode byte.
var ErrUnknownGameState = errors.New("unknown game state")

// Event is one acquired snapshot tagged with the mode read from it.
type Event struct {
	Mode      core.GameStateMode
	Snapshot  *wram.Snapshot
	Timestamp time.Time
}

// HandlerFunc decodes an event into a frame.
type HandlerFunc func(Event) (*core.Frame, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	logged bool
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes snapshots to the pipeline registered for their mode.
// Dispatch is synchronous; polls never overlap.
type Dispatcher struct {
	handlers map[core.GameStateMode]HandlerFunc
	logger   Logger

	processed metric.Int64Counter
	unknown   metric.Int64Counter
	issues    metric.Int64Counter
	duration  metric.Float64Histogram
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[core.GameStateMode]HandlerFunc),
		logger:   logger,
	}

	m := meter()

	var err error

	d.processed, err = m.Int64Counter(
		"dispatcher.frames.processed",
		metric.WithDescription("Total snapshots decoded into frames"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.unknown, err = m.Int64Counter(
		"dispatcher.frames.unknown",
		metric.WithDescription("Total snapshots with an unrecognized game state"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating unknown counter: %w", err)
	}

	d.issues, err = m.Int64Counter(
		"dispatcher.frames.issues",
		metric.WithDescription("Total entities that failed to decode"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating issues counter: %w", err)
	}

	d.duration, err = m.Float64Histogram(
		"dispatcher.frames.duration",
		metric.WithDescription("Decode time per snapshot"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	return d, nil
}

// Register adds a pipeline for the given mode with optional configuration.
// A later registration for the same mode replaces the earlier one.
func (d *Dispatcher) Register(mode core.GameStateMode, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := d.withMetrics(mode, h)

	if cfg.logged {
		handler = d.withLogging(mode, handler)
	}

	d.handlers[mode] = handler
}

// Dispatch runs exactly one pipeline for the event.
func (d *Dispatcher) Dispatch(e Event) (*core.Frame, error) {
	h, ok := d.handlers[e.Mode]
	if !ok {
		d.unknown.Add(context.Background(), 1,
			metric.WithAttributes(attribute.Int("mode", int(e.Mode))))
		return nil, fmt.Errorf("%w: %s", ErrUnknownGameState, e.Mode)
	}
	return h(e)
}

// HasHandler returns true if a pipeline is registered for the mode.
func (d *Dispatcher) HasHandler(mode core.GameStateMode) bool {
	_, ok := d.handlers[mode]
	return ok
}

func (d *Dispatcher) withMetrics(mode core.GameStateMode, h HandlerFunc) HandlerFunc {
	modeAttr := metric.WithAttributes(attribute.String("mode", mode.String()))

	return func(e Event) (*core.Frame, error) {
		start := time.Now()
		frame, err := h(e)
		d.duration.Record(context.Background(), float64(time.Since(start).Microseconds())/1000, modeAttr)
		if err != nil {
			return frame, err
		}
		d.processed.Add(context.Background(), 1, modeAttr)
		if frame != nil && len(frame.Issues) > 0 {
			d.issues.Add(context.Background(), int64(len(frame.Issues)), modeAttr)
		}
		return frame, nil
	}
}

func (d *Dispatcher) withLogging(mode core.GameStateMode, h HandlerFunc) HandlerFunc {
	return func(e Event) (*core.Frame, error) {
		start := time.Now()
		d.logger.Debug("decoding snapshot", "mode", mode.String(), "snapshot", snapshotID(e))

		frame, err := h(e)

		if err != nil {
			d.logger.Error("decode failed", "mode", mode.String(), "duration", time.Since(start), "error", err)
		} else {
			issues := 0
			if frame != nil {
				issues = len(frame.Issues)
			}
			d.logger.Debug("decode complete", "mode", mode.String(), "duration", time.Since(start), "issues", issues)
		}

		return frame, err
	}
}

func snapshotID(e Event) string {
	if e.Snapshot == nil {
		return ""
	}
	return e.Snapshot.ID.String()
}
