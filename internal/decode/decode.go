// Package decode reads typed fields out of a WRAM snapshot. Every reader checks
// bounds and returns an *OutOfBoundsError rather than panicking.
package decode

import (
	"errors"
	"fmt"

	"github.com/wramwatch/wramwatch/pkg/core"
)

// ErrOutOfBounds matches every *OutOfBoundsError.
var ErrOutOfBounds = errors.New("read out of bounds")

// OutOfBoundsError reports a read past the end of the buffer.
type OutOfBoundsError struct {
	Offset int
	Width  int
	Len    int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("read of %d bytes at 0x%X exceeds buffer of 0x%X bytes", e.Width, e.Offset, e.Len)
}

func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

func span(buf []byte, offset, width int) ([]byte, error) {
	if offset < 0 || width < 0 || offset+width > len(buf) {
		return nil, &OutOfBoundsError{Offset: offset, Width: width, Len: len(buf)}
	}
	return buf[offset : offset+width], nil
}

// U8 reads one byte.
func U8(buf []byte, offset int) (uint8, error) {
	b, err := span(buf, offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16BE reads a big-endian 16-bit value.
func U16BE(buf []byte, offset int) (uint16, error) {
	b, err := span(buf, offset, 2)
	if err != nil {
		return 0, err
	}
	return uint16(b[0])<<8 | uint16(b[1]), nil
}

// U24BE reads a big-endian 24-bit value.
func U24BE(buf []byte, offset int) (uint32, error) {
	b, err := span(buf, offset, 3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}

// HexID formats an identifier byte as two upper-case hex digits.
func HexID(b byte) string {
	return fmt.Sprintf("%02X", b)
}

// Moves reads four move ids.
func Moves(buf []byte, offset int) ([4]string, error) {
	var moves [4]string
	b, err := span(buf, offset, 4)
	if err != nil {
		return moves, err
	}
	for i, id := range b {
		moves[i] = HexID(id)
	}
	return moves, nil
}

// PP reads four PP counters.
func PP(buf []byte, offset int) ([4]uint8, error) {
	var pp [4]uint8
	b, err := span(buf, offset, 4)
	if err != nil {
		return pp, err
	}
	copy(pp[:], b)
	return pp, nil
}

// DVs unpacks the two determinant-value bytes. HP is derived from the low bit
// of each of the other four.
func DVs(buf []byte, offset int) (core.DVs, error) {
	b, err := span(buf, offset, 2)
	if err != nil {
		return core.DVs{}, err
	}
	dv := core.DVs{
		Attack:  b[0] >> 4,
		Defense: b[0] & 0x0F,
		Speed:   b[1] >> 4,
		Special: b[1] & 0x0F,
	}
	dv.HP = (dv.Attack&1)<<3 | (dv.Defense&1)<<2 | (dv.Speed&1)<<1 | dv.Special&1
	return dv, nil
}

// Stats reads seven consecutive big-endian values.
func Stats(buf []byte, offset int) (core.StatBlock, error) {
	b, err := span(buf, offset, 14)
	if err != nil {
		return core.StatBlock{}, err
	}
	var v [7]uint16
	for i := range v {
		v[i] = uint16(b[2*i])<<8 | uint16(b[2*i+1])
	}
	return core.StatBlock{
		CurrentHP:      v[0],
		TotalHP:        v[1],
		Attack:         v[2],
		Defense:        v[3],
		Speed:          v[4],
		SpecialAttack:  v[5],
		SpecialDefense: v[6],
	}, nil
}

// BadgeFlags returns the label of every set bit, lowest bit first.
func BadgeFlags(b byte, labels [8]string) []string {
	var out []string
	for i, label := range labels {
		if b&(1<<i) != 0 {
			out = append(out, label)
		}
	}
	return out
}
