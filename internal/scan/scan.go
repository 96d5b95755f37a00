// Package scan searches a WRAM snapshot for byte patterns.
package scan

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wramwatch/wramwatch/internal/decode"
	"github.com/wramwatch/wramwatch/internal/wram"
)

// ErrInvalidPattern is returned for empty, odd-length or non-hex patterns.
var ErrInvalidPattern = errors.New("invalid hex pattern")

// ParsePattern decodes hex digit pairs. Whitespace is allowed between bytes.
func ParsePattern(s string) ([]byte, error) {
	var out []byte
	for _, field := range strings.Fields(s) {
		b, err := hex.DecodeString(field)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, s, err)
		}
		out = append(out, b...)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	return out, nil
}

// Match is one occurrence of the pattern with its surrounding bytes.
type Match struct {
	Offset  int
	Address uint32
	Before  []byte
	Bytes   []byte
	After   []byte
}

// FindAll returns every occurrence in offset order, overlaps included. context
// bytes are kept on each side, clamped to the buffer.
func FindAll(data, pattern []byte, context int) []Match {
	if len(pattern) == 0 {
		return nil
	}
	context = min(max(context, 0), len(data))

	var matches []Match
	for start := 0; start <= len(data)-len(pattern); {
		i := bytes.Index(data[start:], pattern)
		if i < 0 {
			break
		}
		off := start + i
		end := off + len(pattern)
		matches = append(matches, Match{
			Offset:  off,
			Address: wram.OffsetToAddress(off),
			Before:  data[max(0, off-context):off],
			Bytes:   data[off:end],
			After:   data[end:min(len(data), end+context)],
		})
		start = off + 1
	}
	return matches
}

// FormatHex renders bytes as space separated upper-case pairs.
func FormatHex(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, " ")
}

// Context renders the match with its neighbours, the match itself in brackets.
func (m Match) Context() string {
	parts := make([]string, 0, 3)
	if len(m.Before) > 0 {
		parts = append(parts, FormatHex(m.Before))
	}
	parts = append(parts, "["+FormatHex(m.Bytes)+"]")
	if len(m.After) > 0 {
		parts = append(parts, FormatHex(m.After))
	}
	return strings.Join(parts, " ")
}

// Preview renders the same span as game text.
func (m Match) Preview() string {
	return decode.Preview(m.Before) + "[" + decode.Preview(m.Bytes) + "]" + decode.Preview(m.After)
}

// WriteHeader prints the line shown before the snapshot is requested.
func WriteHeader(w io.Writer, pattern []byte) error {
	_, err := fmt.Fprintf(w, "Searching for pattern: %s\n", FormatHex(pattern))
	return err
}

// WriteReport prints the snapshot size, every match and the total.
func WriteReport(w io.Writer, captured int, matches []Match) error {
	if _, err := fmt.Fprintf(w, "Captured %d bytes of WRAM.\n", captured); err != nil {
		return err
	}
	for _, m := range matches {
		if _, err := fmt.Fprintf(w, "Found at GBC Address: 0x%04X (Offset: 0x%X)\n", m.Address, m.Offset); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  Context: ... %s ...\n", m.Context()); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  Text:    %s\n", m.Preview()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "\nTotal matches found: %d\n", len(matches))
	return err
}
