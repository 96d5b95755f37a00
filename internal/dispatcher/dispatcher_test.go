package dispatcher

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wramwatch/wramwatch/internal/wram"
	"github.com/wramwatch/wramwatch/pkg/core"
)

// testLogger implements Logger for testing
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *testLogger) Debug(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("DEBUG: %s %v", msg, keysAndValues))
}

func (l *testLogger) Info(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("INFO: %s %v", msg, keysAndValues))
}

func (l *testLogger) Error(msg string, keysAndValues ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("ERROR: %s %v", msg, keysAndValues))
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *testLogger) {
	logger := &testLogger{}

	d, err := New(logger)
	if err != nil {
		t.Fatalf("failed to create dispatcher: %v", err)
	}

	return d, logger
}

func testEvent(mode core.GameStateMode) Event {
	return Event{Mode: mode, Snapshot: wram.NewSnapshot(make([]byte, 16)), Timestamp: time.Now()}
}

func TestDispatcher_RoutesByMode(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var calls []core.GameStateMode
	for _, mode := range []core.GameStateMode{core.Overworld, core.WildBattle, core.TrainerBattle} {
		mode := mode
		d.Register(mode, func(e Event) (*core.Frame, error) {
			calls = append(calls, mode)
			return &core.Frame{Mode: e.Mode}, nil
		})
	}

	frame, err := d.Dispatch(testEvent(core.WildBattle))

	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if frame == nil || frame.Mode != core.WildBattle {
		t.Errorf("expected wild battle frame, got %+v", frame)
	}
	if len(calls) != 1 || calls[0] != core.WildBattle {
		t.Errorf("expected exactly one wild battle call, got %v", calls)
	}
}

func TestDispatcher_UnknownMode(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Register(core.Overworld, func(e Event) (*core.Frame, error) { return &core.Frame{}, nil })

	frame, err := d.Dispatch(testEvent(core.GameStateMode(7)))

	if !errors.Is(err, ErrUnknownGameState) {
		t.Errorf("expected ErrUnknownGameState, got %v", err)
	}
	if frame != nil {
		t.Errorf("expected no frame, got %+v", frame)
	}
	if !strings.Contains(err.Error(), "unknown(7)") {
		t.Errorf("expected mode in error, got %q", err.Error())
	}
}

func TestDispatcher_LoggedHandler(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(core.Overworld, func(e Event) (*core.Frame, error) {
		return &core.Frame{Mode: e.Mode}, nil
	}, Logged())

	d.Dispatch(testEvent(core.Overworld))

	logger.mu.Lock()
	defer logger.mu.Unlock()

	if len(logger.messages) < 2 {
		t.Errorf("expected at least 2 log messages, got %d", len(logger.messages))
	}
}

func TestDispatcher_LoggedHandlerError(t *testing.T) {
	d, logger := newTestDispatcher(t)

	d.Register(core.TrainerBattle, func(e Event) (*core.Frame, error) {
		return nil, fmt.Errorf("test error")
	}, Logged())

	d.Dispatch(testEvent(core.TrainerBattle))

	logger.mu.Lock()
	defer logger.mu.Unlock()

	hasError := false
	for _, msg := range logger.messages {
		if strings.HasPrefix(msg, "ERROR") {
			hasError = true
			break
		}
	}

	if !hasError {
		t.Error("expected error log message")
	}
}

func TestDispatcher_HasHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register(core.Overworld, func(e Event) (*core.Frame, error) { return nil, nil })

	if !d.HasHandler(core.Overworld) {
		t.Error("expected handler to exist")
	}

	if d.HasHandler(core.WildBattle) {
		t.Error("expected handler to not exist")
	}
}

func TestDispatcher_ReRegisterReplaces(t *testing.T) {
	d, _ := newTestDispatcher(t)

	d.Register(core.Overworld, func(e Event) (*core.Frame, error) { return &core.Frame{SnapshotID: "first"}, nil })
	d.Register(core.Overworld, func(e Event) (*core.Frame, error) { return &core.Frame{SnapshotID: "second"}, nil })

	frame, err := d.Dispatch(testEvent(core.Overworld))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.SnapshotID != "second" {
		t.Errorf("expected replacement handler, got %q", frame.SnapshotID)
	}
}
