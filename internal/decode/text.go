package decode

import "strings"

// Terminator ends an encoded string.
const Terminator = 0x50

const space = 0x7F

// katakana covers 0x80 through 0x93. The rest of the high range has no mapping.
var katakana = [...]string{
	"ア", "イ", "ウ", "エ", "オ", "カ", "キ", "ク", "ケ", "コ",
	"サ", "シ", "ス", "セ", "ソ", "タ", "チ", "ツ", "テ", "ト",
}

// Glyph maps one encoded byte to its display form.
func Glyph(b byte) string {
	switch {
	case b == space:
		return " "
	case b >= 0x80 && int(b-0x80) < len(katakana):
		return katakana[b-0x80]
	case b >= 0x80:
		return "?"
	case b >= 32 && b <= 126:
		return string(rune(b))
	default:
		return "."
	}
}

// Text decodes up to the first terminator.
func Text(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c == Terminator {
			break
		}
		sb.WriteString(Glyph(c))
	}
	return sb.String()
}

// Preview renders every byte, showing the terminator as "|" instead of stopping.
func Preview(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c == Terminator {
			sb.WriteByte('|')
			continue
		}
		sb.WriteString(Glyph(c))
	}
	return sb.String()
}
