package classfile

import (
	"strings"
	"unicode/utf8"
)

// DecodeModifiedUtf8 decodes the modified UTF-8 form used by CONSTANT_Utf8
// entries. Supplementary characters arrive as a pair of three-byte surrogate
// encodings and are joined into one code point. A surrogate that is not part
// of such a pair cannot be held in a Go string and decodes to U+FFFD.
func DecodeModifiedUtf8(b []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(len(b))

	for i := 0; i < len(b); {
		x := b[i]
		switch {
		case x == 0:
			return "", &ModifiedUtf8Error{Offset: i, Byte: x, Reason: "zero byte"}
		case x >= 0xF0:
			return "", &ModifiedUtf8Error{Offset: i, Byte: x, Reason: "byte in range 0xF0..0xFF"}
		case x < 0x80:
			sb.WriteByte(x)
			i++
		case x < 0xC0:
			return "", &ModifiedUtf8Error{Offset: i, Byte: x, Reason: "unexpected continuation byte"}
		case x < 0xE0:
			if err := checkContinuation(b, i, 1); err != nil {
				return "", err
			}
			y := b[i+1]
			sb.WriteRune(rune(x&0x1F)<<6 | rune(y&0x3F))
			i += 2
		default:
			if err := checkContinuation(b, i, 2); err != nil {
				return "", err
			}
			if isSurrogatePair(b, i) {
				v, w, y, z := b[i+1], b[i+2], b[i+4], b[i+5]
				sb.WriteRune(0x10000 + rune(v&0x0F)<<16 + rune(w&0x3F)<<10 + rune(y&0x0F)<<6 + rune(z&0x3F))
				i += 6
				continue
			}
			y, z := b[i+1], b[i+2]
			r := rune(x&0x0F)<<12 | rune(y&0x3F)<<6 | rune(z&0x3F)
			if !utf8.ValidRune(r) {
				r = utf8.RuneError
			}
			sb.WriteRune(r)
			i += 3
		}
	}

	return sb.String(), nil
}

func checkContinuation(b []byte, lead, n int) error {
	for k := 1; k <= n; k++ {
		if lead+k >= len(b) {
			return &ModifiedUtf8Error{Offset: lead, Byte: b[lead], Reason: "truncated multi-byte sequence"}
		}
		c := b[lead+k]
		switch {
		case c == 0:
			return &ModifiedUtf8Error{Offset: lead + k, Byte: c, Reason: "zero byte"}
		case c >= 0xF0:
			return &ModifiedUtf8Error{Offset: lead + k, Byte: c, Reason: "byte in range 0xF0..0xFF"}
		case c&0xC0 != 0x80:
			return &ModifiedUtf8Error{Offset: lead + k, Byte: c, Reason: "expected continuation byte"}
		}
	}
	return nil
}

// isSurrogatePair reports whether b[i:i+6] is a high surrogate followed by a
// low surrogate, each in three-byte form. b[i:i+3] is already known to be a
// well-formed three-byte sequence.
func isSurrogatePair(b []byte, i int) bool {
	if b[i] != 0xED || b[i+1]&0xF0 != 0xA0 {
		return false
	}
	if i+5 >= len(b) || b[i+3] != 0xED || b[i+4]&0xF0 != 0xB0 {
		return false
	}
	return b[i+5]&0xC0 == 0x80
}
