package assembler

import (
	"github.com/wramwatch/wramwatch/internal/decode"
	"github.com/wramwatch/wramwatch/internal/layout"
	"github.com/wramwatch/wramwatch/pkg/core"
)

// fieldReader reads fields relative to a region base and keeps the first error,
// so an assembler can read every field and check once at the end.
type fieldReader struct {
	buf  []byte
	base int
	err  error
}

func newFieldReader(buf []byte, r layout.Region) *fieldReader {
	return &fieldReader{buf: buf, base: r.Offset}
}

func (r *fieldReader) u8(off int) uint8 {
	if r.err != nil {
		return 0
	}
	v, err := decode.U8(r.buf, r.base+off)
	r.err = err
	return v
}

func (r *fieldReader) u16(off int) uint16 {
	if r.err != nil {
		return 0
	}
	v, err := decode.U16BE(r.buf, r.base+off)
	r.err = err
	return v
}

func (r *fieldReader) u24(off int) uint32 {
	if r.err != nil {
		return 0
	}
	v, err := decode.U24BE(r.buf, r.base+off)
	r.err = err
	return v
}

func (r *fieldReader) id(off int) string {
	return decode.HexID(r.u8(off))
}

func (r *fieldReader) moves(off int) [4]string {
	if r.err != nil {
		return [4]string{}
	}
	v, err := decode.Moves(r.buf, r.base+off)
	r.err = err
	return v
}

func (r *fieldReader) pp(off int) [4]uint8 {
	if r.err != nil {
		return [4]uint8{}
	}
	v, err := decode.PP(r.buf, r.base+off)
	r.err = err
	return v
}

func (r *fieldReader) dvs(off int) core.DVs {
	if r.err != nil {
		return core.DVs{}
	}
	v, err := decode.DVs(r.buf, r.base+off)
	r.err = err
	return v
}

func (r *fieldReader) stats(off int) core.StatBlock {
	if r.err != nil {
		return core.StatBlock{}
	}
	v, err := decode.Stats(r.buf, r.base+off)
	r.err = err
	return v
}
