package overlay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/wramwatch/wramwatch/internal/channel"
	"github.com/wramwatch/wramwatch/pkg/streaming"
)

// ErrSinkFull is returned by a ChannelSink whose consumer is not keeping up.
var ErrSinkFull = errors.New("overlay sink full")

// Sink receives region updates.
type Sink interface {
	Publish(streaming.Update) error
}

// FuncSink adapts a function to Sink.
type FuncSink func(streaming.Update) error

func (f FuncSink) Publish(u streaming.Update) error {
	return f(u)
}

// LogSink writes each update as a structured log record.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Publish(u streaming.Update) error {
	s.Logger.Info("Overlay update", "region", u.ID, "content", u.Content)
	return nil
}

// WriterSink writes one JSON envelope per line.
type WriterSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{enc: json.NewEncoder(w)}
}

func (s *WriterSink) Publish(u streaming.Update) error {
	env, err := streaming.NewEnvelope(streaming.TypeUpdate, u)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(env); err != nil {
		return fmt.Errorf("writing update %s: %w", u.ID, err)
	}
	return nil
}

// ChannelSink hands updates to an in-process consumer without blocking the poll loop.
type ChannelSink struct {
	ch channel.Sender[streaming.Update]
}

func NewChannelSink(ch channel.Sender[streaming.Update]) *ChannelSink {
	return &ChannelSink{ch: ch}
}

func (s *ChannelSink) Publish(u streaming.Update) error {
	if !s.ch.TrySend(u) {
		return fmt.Errorf("%w: dropped %s", ErrSinkFull, u.ID)
	}
	return nil
}
