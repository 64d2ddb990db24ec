package bytecursor

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestCursorReads(t *testing.T) {
	c := New([]byte{
		0x01,
		0x02, 0x03,
		0xCA, 0xFE, 0xBA, 0xBE,
		0xFF, 0xFF, 0xFF, 0xFE,
		0x3F, 0x80, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x02,
		0x40, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		'h', 'i',
	})

	if v, err := c.U8(); err != nil || v != 0x01 {
		t.Errorf("U8() = %d, %v, want 1", v, err)
	}
	if v, err := c.U16(); err != nil || v != 0x0203 {
		t.Errorf("U16() = %#x, %v, want 0x203", v, err)
	}
	if v, err := c.U32(); err != nil || v != 0xCAFEBABE {
		t.Errorf("U32() = %#x, %v, want 0xCAFEBABE", v, err)
	}
	if v, err := c.I32(); err != nil || v != -2 {
		t.Errorf("I32() = %d, %v, want -2", v, err)
	}
	if v, err := c.F32(); err != nil || v != 1.0 {
		t.Errorf("F32() = %v, %v, want 1", v, err)
	}
	if v, err := c.I64(); err != nil || v != 1<<32|2 {
		t.Errorf("I64() = %d, %v, want %d", v, err, int64(1<<32|2))
	}
	if v, err := c.F64(); err != nil || v != 2.0 {
		t.Errorf("F64() = %v, %v, want 2", v, err)
	}
	if b, err := c.Bytes(2); err != nil || string(b) != "hi" {
		t.Errorf("Bytes(2) = %q, %v, want %q", b, err, "hi")
	}
	if !c.EOF() {
		t.Errorf("EOF() = false after consuming everything")
	}
}

func TestCursorEndOfData(t *testing.T) {
	c := New([]byte{0x00, 0x01, 0x02})

	if _, err := c.U32(); !errors.Is(err, ErrEndOfData) {
		t.Fatalf("U32() error = %v, want ErrEndOfData", err)
	}
	if c.Offset() != 0 {
		t.Errorf("failed read consumed bytes: Offset() = %d, want 0", c.Offset())
	}
	if v, err := c.U16(); err != nil || v != 1 {
		t.Errorf("U16() = %d, %v, want 1", v, err)
	}
	if _, err := c.Bytes(2); !errors.Is(err, ErrEndOfData) {
		t.Errorf("Bytes(2) error = %v, want ErrEndOfData", err)
	}
	if c.Remaining() != 1 {
		t.Errorf("Remaining() = %d, want 1", c.Remaining())
	}
	if _, err := c.Bytes(-1); !errors.Is(err, ErrEndOfData) {
		t.Errorf("Bytes(-1) error = %v, want ErrEndOfData", err)
	}
}

func TestCursorFloatBits(t *testing.T) {
	c := New([]byte{0x7F, 0x80, 0x00, 0x00})
	v, err := c.F32()
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(float64(v), 1) {
		t.Errorf("F32() = %v, want +Inf", v)
	}
}
