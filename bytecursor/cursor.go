// Package bytecursor provides a forward-only big-endian reader over an
// immutable byte buffer.
package bytecursor

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrEndOfData is returned when a read would run past the end of the buffer.
var ErrEndOfData = errors.New("unexpected end of data")

// Cursor reads big-endian primitives from a byte slice. A failed read
// consumes nothing, so Offset always reports the position of the first byte
// that could not be read.
type Cursor struct {
	data []byte
	off  int
}

func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the number of bytes consumed so far.
func (c *Cursor) Offset() int { return c.off }

func (c *Cursor) Remaining() int { return len(c.data) - c.off }

func (c *Cursor) EOF() bool { return c.off >= len(c.data) }

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, errors.WithMessagef(ErrEndOfData, "need %d bytes at offset %d, have %d", n, c.off, c.Remaining())
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *Cursor) U8() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) U16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (c *Cursor) U32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	return math.Float32frombits(v), err
}

func (c *Cursor) I64() (int64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (c *Cursor) F64() (float64, error) {
	v, err := c.I64()
	return math.Float64frombits(uint64(v)), err
}

// Bytes returns the next n bytes. The result aliases the underlying buffer
// and must not be modified.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	return c.take(n)
}
