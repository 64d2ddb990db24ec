package classfile

import (
	"fmt"

	"github.com/dhamidi/jvmclass/bytecursor"
	"github.com/pkg/errors"
)

var (
	ErrUnexpectedEndOfData      = bytecursor.ErrEndOfData
	ErrBadMagic                 = errors.New("bad magic")
	ErrUnknownTag               = errors.New("unknown constant pool tag")
	ErrInvalidModifiedUtf8      = errors.New("invalid modified utf-8")
	ErrInvalidMethodHandleKind  = errors.New("invalid method handle kind")
	ErrInvalidConstantPoolIndex = errors.New("invalid constant pool index")
	ErrInvalidConstantPoolCount = errors.New("invalid constant pool count")
	ErrWrongConstantKind        = errors.New("wrong constant kind")
	ErrInvalidAccessFlags       = errors.New("invalid access flags")
	ErrInvalidDescriptor        = errors.New("invalid descriptor")
	ErrUnsupportedVersion       = errors.New("unsupported class file version")
	ErrInvalidAttribute         = errors.New("invalid attribute")
)

type BadMagicError struct {
	Magic uint32
}

func (e *BadMagicError) Error() string {
	return fmt.Sprintf("bad magic 0x%08X, expected 0x%08X", e.Magic, uint32(Magic))
}

func (e *BadMagicError) Unwrap() error { return ErrBadMagic }

type UnknownTagError struct {
	Tag uint8
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown constant pool tag %d", e.Tag)
}

func (e *UnknownTagError) Unwrap() error { return ErrUnknownTag }

// ModifiedUtf8Error reports the first offending byte of a modified UTF-8 run.
// Offset is relative to the start of the run.
type ModifiedUtf8Error struct {
	Offset int
	Byte   byte
	Reason string
}

func (e *ModifiedUtf8Error) Error() string {
	return fmt.Sprintf("invalid modified utf-8 byte 0x%02X at %d: %s", e.Byte, e.Offset, e.Reason)
}

func (e *ModifiedUtf8Error) Unwrap() error { return ErrInvalidModifiedUtf8 }

type MethodHandleKindError struct {
	Kind uint8
}

func (e *MethodHandleKindError) Error() string {
	return fmt.Sprintf("method handle reference kind %d out of range 1..9", e.Kind)
}

func (e *MethodHandleKindError) Unwrap() error { return ErrInvalidMethodHandleKind }

type IndexError struct {
	Index  uint16
	Reason string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("invalid constant pool index %d: %s", e.Index, e.Reason)
}

func (e *IndexError) Unwrap() error { return ErrInvalidConstantPoolIndex }

type KindError struct {
	Index uint16
	Got   ConstantTag
	Want  []ConstantTag
}

func (e *KindError) Error() string {
	return fmt.Sprintf("constant pool index %d is %s, want %v", e.Index, e.Got, e.Want)
}

func (e *KindError) Unwrap() error { return ErrWrongConstantKind }

type AccessFlagsError struct {
	Flags  AccessFlags
	Reason string
}

func (e *AccessFlagsError) Error() string {
	return fmt.Sprintf("invalid access flags 0x%04X: %s", uint16(e.Flags), e.Reason)
}

func (e *AccessFlagsError) Unwrap() error { return ErrInvalidAccessFlags }

// ParseError locates a failure inside the class file. PoolIndex is set only
// while the constant pool is being decoded.
type ParseError struct {
	Section   string
	Offset    int
	PoolIndex uint16
	Err       error
}

func (e *ParseError) Error() string {
	if e.PoolIndex != 0 {
		return fmt.Sprintf("%s: entry %d at offset %d: %v", e.Section, e.PoolIndex, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s at offset %d: %v", e.Section, e.Offset, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
