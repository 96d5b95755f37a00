package poller

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wramwatch/wramwatch/internal/assembler"
	"github.com/wramwatch/wramwatch/internal/dispatcher"
	"github.com/wramwatch/wramwatch/internal/influx"
	"github.com/wramwatch/wramwatch/internal/layout"
	"github.com/wramwatch/wramwatch/internal/wram"
	"github.com/wramwatch/wramwatch/pkg/core"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// scriptedSource hands out one snapshot per mode byte, then fails like a
// closed emulator connection.
type scriptedSource struct {
	modes []byte
	calls int
}

func (s *scriptedSource) Snapshot(ctx context.Context) (*wram.Snapshot, error) {
	if s.calls >= len(s.modes) {
		return nil, &wram.TransportError{Op: "read", Err: wram.ErrTransportClosed}
	}
	buf := make([]byte, wram.Size)
	buf[layout.GameState.Offset] = s.modes[s.calls]
	s.calls++
	return wram.NewSnapshot(buf), nil
}

type frameRecorder struct {
	frames []*core.Frame
	err    error
}

func (r *frameRecorder) HandleFrame(_ context.Context, f *core.Frame) error {
	r.frames = append(r.frames, f)
	return r.err
}

type statsRecorder struct {
	mu            sync.Mutex
	samples       []influx.PollSample
	handlerErrors int
}

func (r *statsRecorder) Record(s influx.PollSample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

func (r *statsRecorder) RecordHandlerError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlerErrors++
}

type scopeRecorder struct {
	sets   []string
	clears int
}

func (s *scopeRecorder) Set(snapshotID, mode string) { s.sets = append(s.sets, mode) }
func (s *scopeRecorder) Clear()                      { s.clears++ }

func newTestPoller(t *testing.T, src SnapshotSource, h FrameHandler, logs *bytes.Buffer) (*Poller, *statsRecorder, *scopeRecorder) {
	t.Helper()
	d, err := dispatcher.New(nopLogger{})
	require.NoError(t, err)
	assembler.RegisterPipelines(d)

	stats := &statsRecorder{}
	scope := &scopeRecorder{}
	p, err := New(Dependencies{
		Source:     src,
		Dispatcher: d,
		Handler:    h,
		Recorder:   stats,
		Scope:      scope,
		Logger:     slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)
	return p, stats, scope
}

func TestRun_TransportErrorEndsLoop(t *testing.T) {
	var logs bytes.Buffer
	src := &scriptedSource{modes: []byte{0, 1, 7, 2}}
	frames := &frameRecorder{}
	p, stats, scope := newTestPoller(t, src, frames, &logs)

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, wram.ErrTransportClosed)

	var terr *wram.TransportError
	assert.True(t, errors.As(err, &terr))

	require.Len(t, frames.frames, 3, "unknown mode produces no frame")
	assert.Equal(t, core.Overworld, frames.frames[0].Mode)
	assert.Equal(t, core.WildBattle, frames.frames[1].Mode)
	assert.Equal(t, core.TrainerBattle, frames.frames[2].Mode)

	require.Len(t, stats.samples, 4)
	assert.True(t, stats.samples[2].Unknown)
	assert.Equal(t, "unknown(7)", stats.samples[2].Mode)
	assert.Equal(t, wram.Size, stats.samples[0].Bytes)

	assert.Equal(t, []string{"overworld", "wild_battle", "unknown(7)", "trainer_battle"}, scope.sets)
	assert.Equal(t, 4, scope.clears)

	out := logs.String()
	assert.Contains(t, out, "Unknown game state")
	assert.Contains(t, out, "Snapshot acquisition failed")
}

func TestRun_HandlerErrorDoesNotStopLoop(t *testing.T) {
	var logs bytes.Buffer
	src := &scriptedSource{modes: []byte{0, 0}}
	frames := &frameRecorder{err: errors.New("sink full")}
	p, stats, _ := newTestPoller(t, src, frames, &logs)

	err := p.Run(context.Background())
	assert.ErrorIs(t, err, wram.ErrTransportClosed)
	assert.Len(t, frames.frames, 2)
	assert.Equal(t, 2, stats.handlerErrors)
	assert.Contains(t, logs.String(), "Frame handler failed")
}

// blockingSource delivers one snapshot and then waits for cancellation.
type blockingSource struct {
	served  bool
	started chan struct{}
}

func (s *blockingSource) Snapshot(ctx context.Context) (*wram.Snapshot, error) {
	if !s.served {
		s.served = true
		return wram.NewSnapshot(make([]byte, wram.Size)), nil
	}
	close(s.started)
	<-ctx.Done()
	return nil, &wram.TransportError{Op: "read", Err: ctx.Err()}
}

func TestRun_CancelReturnsContextError(t *testing.T) {
	var logs bytes.Buffer
	src := &blockingSource{started: make(chan struct{})}
	frames := &frameRecorder{}
	p, _, _ := newTestPoller(t, src, frames, &logs)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	<-src.started
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("poll loop did not stop after cancellation")
	}
	assert.Len(t, frames.frames, 1)
	assert.NotContains(t, logs.String(), "Snapshot acquisition failed")
}

func TestRun_CancelDuringInterval(t *testing.T) {
	var logs bytes.Buffer
	src := &scriptedSource{modes: []byte{0, 0, 0}}
	frames := &frameRecorder{}
	p, _, _ := newTestPoller(t, src, frames, &logs)
	p.deps.Interval = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, frames.frames, 1)
}

func TestPoll_IssuesLoggedAtDebug(t *testing.T) {
	var logs bytes.Buffer
	// A snapshot shorter than the layout expects still carries a readable mode
	// byte, so every entity fails and is recorded as an issue.
	short := &shortSource{size: layout.GameState.End()}
	frames := &frameRecorder{}
	p, stats, _ := newTestPoller(t, short, frames, &logs)

	require.NoError(t, p.Poll(context.Background()))
	require.Len(t, frames.frames, 1)
	assert.NotEmpty(t, frames.frames[0].Issues)
	assert.Equal(t, len(frames.frames[0].Issues), stats.samples[0].Issues)
	assert.Contains(t, logs.String(), "level=DEBUG msg=\"Entity not decoded\"")
}

type shortSource struct{ size int }

func (s *shortSource) Snapshot(context.Context) (*wram.Snapshot, error) {
	return wram.NewSnapshot(make([]byte, s.size)), nil
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Dependencies{})
	assert.Error(t, err)
}
