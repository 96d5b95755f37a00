// Package poller drives the acquire, decode and present cycle.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/wramwatch/wramwatch/internal/assembler"
	"github.com/wramwatch/wramwatch/internal/dispatcher"
	"github.com/wramwatch/wramwatch/internal/influx"
	"github.com/wramwatch/wramwatch/internal/wram"
	"github.com/wramwatch/wramwatch/pkg/core"
)

const instrumentationName = "github.com/wramwatch/wramwatch/internal/poller"

// SnapshotSource produces one snapshot per call.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*wram.Snapshot, error)
}

// FrameHandler consumes decoded frames.
type FrameHandler interface {
	HandleFrame(ctx context.Context, f *core.Frame) error
}

// Dispatcher selects and runs the decode pipeline for a mode.
type Dispatcher interface {
	Dispatch(e dispatcher.Event) (*core.Frame, error)
}

// Recorder collects per-poll statistics.
type Recorder interface {
	Record(sample influx.PollSample)
	RecordHandlerError()
}

// PollScope tags log records with the poll in progress.
type PollScope interface {
	Set(snapshotID, mode string)
	Clear()
}

// Dependencies holds everything the poller needs. Recorder and Scope are optional.
type Dependencies struct {
	Source     SnapshotSource
	Dispatcher Dispatcher
	Handler    FrameHandler
	Recorder   Recorder
	Scope      PollScope
	Logger     *slog.Logger
	Interval   time.Duration
}

// Poller runs one strictly sequential poll loop.
type Poller struct {
	deps Dependencies

	polls           metric.Int64Counter
	transportErrors metric.Int64Counter
}

// New creates a poller.
func New(deps Dependencies) (*Poller, error) {
	if deps.Source == nil || deps.Dispatcher == nil || deps.Handler == nil {
		return nil, errors.New("poller needs a source, a dispatcher and a handler")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	m := otel.Meter(instrumentationName)
	polls, err := m.Int64Counter("poller.polls",
		metric.WithDescription("Snapshots acquired and decoded, by mode"))
	if err != nil {
		return nil, fmt.Errorf("create polls counter: %w", err)
	}
	transportErrors, err := m.Int64Counter("poller.transport.errors",
		metric.WithDescription("Transport failures that ended the loop"))
	if err != nil {
		return nil, fmt.Errorf("create transport errors counter: %w", err)
	}

	return &Poller{deps: deps, polls: polls, transportErrors: transportErrors}, nil
}

// Run polls until ctx is cancelled or the transport fails. Cancellation returns
// ctx.Err(); a transport failure is returned as is.
func (p *Poller) Run(ctx context.Context) error {
	p.deps.Logger.Info("Poll loop started", "interval", p.deps.Interval)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Poll(ctx); err != nil {
			return err
		}
		if p.deps.Interval <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.deps.Interval):
		}
	}
}

// Poll performs a single cycle. Only acquisition failures are returned.
func (p *Poller) Poll(ctx context.Context) error {
	start := time.Now()

	snap, err := p.deps.Source.Snapshot(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		p.transportErrors.Add(ctx, 1)
		p.deps.Logger.Error("Snapshot acquisition failed", "error", err)
		return fmt.Errorf("acquiring snapshot: %w", err)
	}
	mode, err := assembler.ReadMode(snap)
	if err != nil {
		p.deps.Logger.Error("Game state unreadable", "snapshot_id", snap.ID.String(), "error", err)
		p.record(influx.PollSample{Time: snap.CapturedAt, Mode: "unreadable", Duration: time.Since(start), Bytes: snap.Len(), Unknown: true})
		return nil
	}

	if p.deps.Scope != nil {
		p.deps.Scope.Set(snap.ID.String(), mode.String())
		defer p.deps.Scope.Clear()
	}

	frame, err := p.deps.Dispatcher.Dispatch(dispatcher.Event{
		Mode:      mode,
		Snapshot:  snap,
		Timestamp: snap.CapturedAt,
	})
	if errors.Is(err, dispatcher.ErrUnknownGameState) {
		p.deps.Logger.Warn("Unknown game state", "mode", mode.String(), "raw", uint8(mode))
		p.record(influx.PollSample{Time: snap.CapturedAt, Mode: mode.String(), Duration: time.Since(start), Bytes: snap.Len(), Unknown: true})
		return nil
	}
	if err != nil {
		p.deps.Logger.Error("Decode pipeline failed", "mode", mode.String(), "error", err)
		p.record(influx.PollSample{Time: snap.CapturedAt, Mode: mode.String(), Duration: time.Since(start), Bytes: snap.Len()})
		return nil
	}

	for _, issue := range frame.Issues {
		p.deps.Logger.Debug("Entity not decoded", "entity", issue.Entity, "reason", issue.Message)
	}

	if err := p.deps.Handler.HandleFrame(ctx, frame); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		p.deps.Logger.Error("Frame handler failed", "mode", mode.String(), "error", err)
		if p.deps.Recorder != nil {
			p.deps.Recorder.RecordHandlerError()
		}
	}

	p.record(influx.PollSample{
		Time:     snap.CapturedAt,
		Mode:     mode.String(),
		Duration: time.Since(start),
		Bytes:    snap.Len(),
		Issues:   len(frame.Issues),
	})
	return nil
}

func (p *Poller) record(s influx.PollSample) {
	if p.deps.Recorder != nil {
		p.deps.Recorder.Record(s)
	}
	p.polls.Add(context.Background(), 1, metric.WithAttributes(attribute.String("mode", s.Mode)))
}
