// Package wram acquires working-RAM snapshots from a running emulator and maps
// snapshot offsets back to console address space.
package wram

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Size is the number of WRAM bytes the emulator sends per request.
const Size = 32768

// DefaultRequestByte is the single byte that asks the emulator for a snapshot.
const DefaultRequestByte byte = 0x01

// Snapshot is one instant of console working memory. The buffer must not be
// modified once the snapshot is built.
type Snapshot struct {
	ID         ulid.ULID
	CapturedAt time.Time
	data       []byte
}

// NewSnapshot wraps a fully acquired buffer.
func NewSnapshot(data []byte) *Snapshot {
	return &Snapshot{
		ID:         ulid.Make(),
		CapturedAt: time.Now(),
		data:       data,
	}
}

// Bytes returns the raw buffer. Callers must treat it as read-only.
func (s *Snapshot) Bytes() []byte {
	return s.data
}

// Len returns the buffer length.
func (s *Snapshot) Len() int {
	return len(s.data)
}
