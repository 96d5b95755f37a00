package scan

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []byte
		wantErr bool
	}{
		{"single byte", "53", []byte{0x53}, false},
		{"run", "53512F", []byte{0x53, 0x51, 0x2F}, false},
		{"lower case", "ab0c", []byte{0xAB, 0x0C}, false},
		{"spaces between bytes", " 53 51\t2F ", []byte{0x53, 0x51, 0x2F}, false},
		{"empty", "", nil, true},
		{"blank", "   ", nil, true},
		{"odd length", "535", nil, true},
		{"split pair", "5 3", nil, true},
		{"not hex", "zz", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePattern(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPattern)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindAll(t *testing.T) {
	data := []byte{0x00, 0x53, 0x51, 0x2F, 0x00}

	got := FindAll(data, []byte{0x53, 0x51, 0x2F}, 8)
	want := []Match{{
		Offset:  1,
		Address: 0xC001,
		Before:  []byte{0x00},
		Bytes:   []byte{0x53, 0x51, 0x2F},
		After:   []byte{0x00},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindAll mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAll_Overlapping(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		pattern []byte
		want    []int
	}{
		{"single byte run", []byte{0x00, 0x00, 0xAA, 0xAA, 0xAA}, []byte{0xAA}, []int{2, 3, 4}},
		{"two byte pattern in a run of four", []byte{0x00, 0x00, 0xAA, 0xAA, 0xAA, 0xAA}, []byte{0xAA, 0xAA}, []int{2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindAll(tt.data, tt.pattern, 1)
			offsets := make([]int, len(got))
			for i, m := range got {
				offsets[i] = m.Offset
			}
			assert.Equal(t, tt.want, offsets)
			assert.Equal(t, []byte{0x00}, got[0].Before)
			assert.Empty(t, got[len(got)-1].After, "context clamps at the end of the buffer")
		})
	}
}

func TestFindAll_ContextClamp(t *testing.T) {
	data := []byte{0x00, 0x53, 0x00}

	tests := []struct {
		name    string
		context int
		before  []byte
		after   []byte
	}{
		{"zero", 0, []byte{}, []byte{}},
		{"negative", -5, []byte{}, []byte{}},
		{"wider than buffer", 64, []byte{0x00}, []byte{0x00}},
		{"max int", math.MaxInt, []byte{0x00}, []byte{0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindAll(data, []byte{0x53}, tt.context)
			require.Len(t, got, 1)
			assert.Equal(t, tt.before, got[0].Before)
			assert.Equal(t, tt.after, got[0].After)
		})
	}
}

func TestFindAll_Addresses(t *testing.T) {
	data := make([]byte, 0x2001)
	data[0x1108] = 0x99
	data[0x2000] = 0x99

	got := FindAll(data, []byte{0x99}, 0)
	require.Len(t, got, 2)
	assert.Equal(t, uint32(0xD108), got[0].Address)
	assert.Equal(t, uint32(0x2000), got[1].Address)
}

func TestFindAll_NoMatch(t *testing.T) {
	assert.Empty(t, FindAll([]byte{1, 2, 3}, []byte{4}, 8))
	assert.Empty(t, FindAll([]byte{1}, []byte{1, 2}, 8))
}

func TestWriteReport(t *testing.T) {
	data := []byte{0x00, 0x87, 0x84, 0x50, 0x00}
	matches := FindAll(data, []byte{0x87, 0x84}, 2)

	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, []byte{0x87, 0x84}))
	require.NoError(t, WriteReport(&buf, len(data), matches))

	out := buf.String()
	assert.Contains(t, out, "Searching for pattern: 87 84\n")
	assert.Contains(t, out, "Captured 5 bytes of WRAM.\n")
	assert.Contains(t, out, "Found at GBC Address: 0xC001 (Offset: 0x1)\n")
	assert.Contains(t, out, "  Context: ... 00 [87 84] 50 00 ...\n")
	assert.Contains(t, out, "|.\n", "terminator is shown as a bar")
	assert.Contains(t, out, "\nTotal matches found: 1\n")
}

func TestWriteReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, 16, nil))
	assert.Equal(t, "Captured 16 bytes of WRAM.\n\nTotal matches found: 0\n", buf.String())
}
