package classfile

import (
	"bytes"

	"github.com/dhamidi/jvmclass/bytecursor"
	"github.com/pkg/errors"
)

// ByteReader supplies big-endian primitives, moving strictly forward.
// *bytecursor.Cursor implements it. Errors other than end-of-data are
// returned to the caller with their chain intact.
type ByteReader interface {
	U8() (uint8, error)
	U16() (uint16, error)
	U32() (uint32, error)
	I32() (int32, error)
	Bytes(n int) ([]byte, error)
	Offset() int
}

var _ ByteReader = (*bytecursor.Cursor)(nil)

// reader keeps the first error and turns every later read into a no-op, so a
// run of reads can be checked once.
type reader struct {
	r   ByteReader
	err error
}

func (r *reader) fail(err error) {
	if err == nil || r.err != nil {
		return
	}
	if !errors.Is(err, ErrUnexpectedEndOfData) {
		err = errors.Wrapf(err, "read at offset %d", r.r.Offset())
	}
	r.err = err
}

func (r *reader) offset() int { return r.r.Offset() }

func (r *reader) readU1() uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.r.U8()
	r.fail(err)
	return v
}

func (r *reader) readU2() uint16 {
	if r.err != nil {
		return 0
	}
	v, err := r.r.U16()
	r.fail(err)
	return v
}

func (r *reader) readU4() uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.r.U32()
	r.fail(err)
	return v
}

func (r *reader) readI4() int32 {
	if r.err != nil {
		return 0
	}
	v, err := r.r.I32()
	r.fail(err)
	return v
}

func (r *reader) readBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	v, err := r.r.Bytes(n)
	if err != nil {
		r.fail(err)
		return nil
	}
	return bytes.Clone(v)
}

func (r *reader) readU2s(n int) []uint16 {
	out := make([]uint16, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.readU2())
	}
	return out
}
