package logging

import (
	"context"
	"log/slog"
	"sync"
)

// ContextProvider returns attributes to add to every record at the time it is handled.
type ContextProvider func() []slog.Attr

// ContextHandler adds the provider's attributes to each record before passing it on.
type ContextHandler struct {
	next     slog.Handler
	provider ContextProvider
}

// NewContextHandler wraps next.
func NewContextHandler(next slog.Handler, provider ContextProvider) *ContextHandler {
	return &ContextHandler{next: next, provider: provider}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.provider != nil {
		if attrs := h.provider(); len(attrs) > 0 {
			r = r.Clone()
			r.AddAttrs(attrs...)
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.next.WithAttrs(attrs), h.provider)
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return NewContextHandler(h.next.WithGroup(name), h.provider)
}

// PollContext holds the identity of the poll in progress so every record
// emitted during it carries snapshot_id and game_state.
type PollContext struct {
	mu         sync.RWMutex
	snapshotID string
	mode       string
}

// Set records the current snapshot and game state.
func (p *PollContext) Set(snapshotID, mode string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshotID = snapshotID
	p.mode = mode
}

// Clear forgets the current poll.
func (p *PollContext) Clear() {
	p.Set("", "")
}

// Attrs satisfies ContextProvider.
func (p *PollContext) Attrs() []slog.Attr {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshotID == "" {
		return nil
	}
	attrs := []slog.Attr{slog.String("snapshot_id", p.snapshotID)}
	if p.mode != "" {
		attrs = append(attrs, slog.String("game_state", p.mode))
	}
	return attrs
}
