package classfile

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pkg/errors"
)

func TestDecodeModifiedUtf8(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"ascii", []byte("java/lang/Object"), "java/lang/Object"},
		{"nul", []byte{0xC0, 0x80}, "\x00"},
		{"two byte", []byte{0xC3, 0xA9}, "é"},
		{"three byte", []byte{0xE2, 0x82, 0xAC}, "€"},
		{"supplementary", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}, "\U0001F600"},
		{"lone high surrogate", []byte{0xED, 0xA0, 0x80, 'x'}, "�x"},
		{"lone low surrogate", []byte{0xED, 0xB0, 0x80}, "�"},
		{"high surrogate at end", []byte{'a', 0xED, 0xA0, 0x80}, "a�"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeModifiedUtf8(tt.in)
			if err != nil {
				t.Fatalf("DecodeModifiedUtf8(% X) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("DecodeModifiedUtf8(% X) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeModifiedUtf8Errors(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		offset int
	}{
		{"zero byte", []byte{'a', 0x00}, 1},
		{"0xF0", []byte{0xF0, 0x80, 0x80, 0x80}, 0},
		{"0xFF", []byte{'a', 'b', 0xFF}, 2},
		{"stray continuation", []byte{0x80}, 0},
		{"truncated two byte", []byte{0xC3}, 0},
		{"truncated three byte", []byte{0xE2, 0x82}, 0},
		{"bad continuation", []byte{0xE2, 0x41, 0x80}, 1},
		{"zero continuation", []byte{0xC3, 0x00}, 1},
		{"0xF8 continuation", []byte{0xE2, 0x82, 0xF8}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeModifiedUtf8(tt.in)
			if !errors.Is(err, ErrInvalidModifiedUtf8) {
				t.Fatalf("DecodeModifiedUtf8(% X) error = %v, want %v", tt.in, err, ErrInvalidModifiedUtf8)
			}
			var me *ModifiedUtf8Error
			if !errors.As(err, &me) {
				t.Fatalf("error %v is not a *ModifiedUtf8Error", err)
			}
			if me.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", me.Offset, tt.offset)
			}
		})
	}
}

func TestModifiedUtf8RoundTrip(t *testing.T) {
	// Chunks keep each decoded string small while still covering every
	// scalar value.
	const chunk = 4096
	var sb strings.Builder
	flush := func() {
		want := sb.String()
		got, err := DecodeModifiedUtf8(encodeModifiedUtf8(want))
		if err != nil {
			t.Fatalf("DecodeModifiedUtf8() error = %v", err)
		}
		if got != want {
			t.Fatalf("round trip mismatch near %U", []rune(want)[0])
		}
		sb.Reset()
	}

	n := 0
	for r := rune(0); r <= utf8.MaxRune; r++ {
		if r >= 0xD800 && r <= 0xDFFF {
			continue
		}
		sb.WriteRune(r)
		if n++; n == chunk {
			flush()
			n = 0
		}
	}
	if n > 0 {
		flush()
	}
}

func TestModifiedUtf8NeverEmitsForbiddenBytes(t *testing.T) {
	for _, r := range []rune{0, 0x7F, 0x80, 0x7FF, 0x800, 0xFFFF, 0x10000, utf8.MaxRune} {
		for i, b := range encodeModifiedUtf8(string(r)) {
			if b == 0 || b >= 0xF0 {
				t.Errorf("encoding of %U has byte 0x%02X at %d", r, b, i)
			}
		}
	}
}
