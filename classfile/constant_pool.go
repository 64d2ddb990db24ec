package classfile

import (
	"fmt"
	"iter"

	"github.com/pkg/errors"
)

// ConstantPoolEntry is one of the constant kinds below. The set is closed:
// only this package can add implementations.
type ConstantPoolEntry interface {
	Tag() ConstantTag
	// refs lists the pool indices the entry points at.
	refs() []uint16
}

type ConstantUtf8Info struct {
	Value string
}

func (ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }
func (ConstantUtf8Info) refs() []uint16   { return nil }

type ConstantIntegerInfo struct {
	Value int32
}

func (ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }
func (ConstantIntegerInfo) refs() []uint16   { return nil }

type ConstantFloatInfo struct {
	Value float32
}

func (ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }
func (ConstantFloatInfo) refs() []uint16   { return nil }

type ConstantLongInfo struct {
	Value int64
}

func (ConstantLongInfo) Tag() ConstantTag { return ConstantLong }
func (ConstantLongInfo) refs() []uint16   { return nil }

type ConstantDoubleInfo struct {
	Value float64
}

func (ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }
func (ConstantDoubleInfo) refs() []uint16   { return nil }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (ConstantClassInfo) Tag() ConstantTag  { return ConstantClass }
func (c ConstantClassInfo) refs() []uint16 { return []uint16{c.NameIndex} }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (ConstantStringInfo) Tag() ConstantTag  { return ConstantString }
func (c ConstantStringInfo) refs() []uint16 { return []uint16{c.StringIndex} }

type ConstantFieldrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (ConstantFieldrefInfo) Tag() ConstantTag { return ConstantFieldref }
func (c ConstantFieldrefInfo) refs() []uint16 {
	return []uint16{c.ClassIndex, c.NameAndTypeIndex}
}

type ConstantMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (ConstantMethodrefInfo) Tag() ConstantTag { return ConstantMethodref }
func (c ConstantMethodrefInfo) refs() []uint16 {
	return []uint16{c.ClassIndex, c.NameAndTypeIndex}
}

type ConstantInterfaceMethodrefInfo struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (ConstantInterfaceMethodrefInfo) Tag() ConstantTag { return ConstantInterfaceMethodref }
func (c ConstantInterfaceMethodrefInfo) refs() []uint16 {
	return []uint16{c.ClassIndex, c.NameAndTypeIndex}
}

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }
func (c ConstantNameAndTypeInfo) refs() []uint16 {
	return []uint16{c.NameIndex, c.DescriptorIndex}
}

// ConstantMethodHandleInfo stores the reference unresolved; see
// ConstantPool.MethodHandleReference.
type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (ConstantMethodHandleInfo) Tag() ConstantTag  { return ConstantMethodHandle }
func (c ConstantMethodHandleInfo) refs() []uint16 { return []uint16{c.ReferenceIndex} }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (ConstantMethodTypeInfo) Tag() ConstantTag  { return ConstantMethodType }
func (c ConstantMethodTypeInfo) refs() []uint16 { return []uint16{c.DescriptorIndex} }

// BootstrapMethodAttrIndex indexes the BootstrapMethods attribute, not the
// pool.
type ConstantInvokeDynamicInfo struct {
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (ConstantInvokeDynamicInfo) Tag() ConstantTag  { return ConstantInvokeDynamic }
func (c ConstantInvokeDynamicInfo) refs() []uint16 { return []uint16{c.NameAndTypeIndex} }

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (ConstantModuleInfo) Tag() ConstantTag  { return ConstantModule }
func (c ConstantModuleInfo) refs() []uint16 { return []uint16{c.NameIndex} }

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (ConstantPackageInfo) Tag() ConstantTag  { return ConstantPackage }
func (c ConstantPackageInfo) refs() []uint16 { return []uint16{c.NameIndex} }

// ConstantUnusableInfo occupies the slot after a Long or Double. Owner is the
// index of that 8-byte constant.
type ConstantUnusableInfo struct {
	Owner uint16
}

func (ConstantUnusableInfo) Tag() ConstantTag { return ConstantUnusable }
func (ConstantUnusableInfo) refs() []uint16   { return nil }

// ConstantPool is the decoded, immutable constant_pool table. Indices are
// 1-based; index 0 is never valid. The zero value is an empty pool.
type ConstantPool struct {
	entries []ConstantPoolEntry
}

// Count returns constant_pool_count as it appears in the class file, which is
// one more than the highest valid index.
func (cp *ConstantPool) Count() int {
	return len(cp.entries) + 1
}

// Len returns the number of slots, unusable ones included.
func (cp *ConstantPool) Len() int {
	return len(cp.entries)
}

// All iterates over every usable entry in index order.
func (cp *ConstantPool) All() iter.Seq2[uint16, ConstantPoolEntry] {
	return func(yield func(uint16, ConstantPoolEntry) bool) {
		for i, e := range cp.entries {
			if _, ok := e.(ConstantUnusableInfo); ok {
				continue
			}
			if !yield(uint16(i+1), e) {
				return
			}
		}
	}
}

// Resolve returns the entry at index. It fails with ErrInvalidConstantPoolIndex
// for index 0, indices past the end, and the unusable slot after an 8-byte
// constant.
func (cp *ConstantPool) Resolve(index uint16) (ConstantPoolEntry, error) {
	if index == 0 {
		return nil, &IndexError{Index: index, Reason: "index 0 is reserved"}
	}
	if int(index) > len(cp.entries) {
		return nil, &IndexError{Index: index, Reason: fmt.Sprintf("pool has %d slots", len(cp.entries))}
	}
	e := cp.entries[index-1]
	if u, ok := e.(ConstantUnusableInfo); ok {
		return nil, &IndexError{Index: index, Reason: fmt.Sprintf("second slot of 8-byte constant at %d", u.Owner)}
	}
	return e, nil
}

func (cp *ConstantPool) Utf8(index uint16) (string, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return "", err
	}
	if c, ok := e.(ConstantUtf8Info); ok {
		return c.Value, nil
	}
	return "", kindError(index, e, ConstantUtf8)
}

func (cp *ConstantPool) Integer(index uint16) (int32, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return 0, err
	}
	if c, ok := e.(ConstantIntegerInfo); ok {
		return c.Value, nil
	}
	return 0, kindError(index, e, ConstantInteger)
}

func (cp *ConstantPool) Float(index uint16) (float32, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return 0, err
	}
	if c, ok := e.(ConstantFloatInfo); ok {
		return c.Value, nil
	}
	return 0, kindError(index, e, ConstantFloat)
}

func (cp *ConstantPool) Long(index uint16) (int64, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return 0, err
	}
	if c, ok := e.(ConstantLongInfo); ok {
		return c.Value, nil
	}
	return 0, kindError(index, e, ConstantLong)
}

func (cp *ConstantPool) Double(index uint16) (float64, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return 0, err
	}
	if c, ok := e.(ConstantDoubleInfo); ok {
		return c.Value, nil
	}
	return 0, kindError(index, e, ConstantDouble)
}

func (cp *ConstantPool) Class(index uint16) (ConstantClassInfo, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return ConstantClassInfo{}, err
	}
	if c, ok := e.(ConstantClassInfo); ok {
		return c, nil
	}
	return ConstantClassInfo{}, kindError(index, e, ConstantClass)
}

// ClassName resolves a Class entry to its internal name, e.g. "java/lang/Object".
func (cp *ConstantPool) ClassName(index uint16) (string, error) {
	c, err := cp.Class(index)
	if err != nil {
		return "", err
	}
	return cp.Utf8(c.NameIndex)
}

func (cp *ConstantPool) StringValue(index uint16) (string, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return "", err
	}
	c, ok := e.(ConstantStringInfo)
	if !ok {
		return "", kindError(index, e, ConstantString)
	}
	return cp.Utf8(c.StringIndex)
}

func (cp *ConstantPool) NameAndType(index uint16) (name, descriptor string, err error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return "", "", err
	}
	c, ok := e.(ConstantNameAndTypeInfo)
	if !ok {
		return "", "", kindError(index, e, ConstantNameAndType)
	}
	if name, err = cp.Utf8(c.NameIndex); err != nil {
		return "", "", err
	}
	if descriptor, err = cp.Utf8(c.DescriptorIndex); err != nil {
		return "", "", err
	}
	return name, descriptor, nil
}

// MemberRef is a resolved Fieldref, Methodref or InterfaceMethodref.
type MemberRef struct {
	Kind       ConstantTag
	ClassName  string
	Name       string
	Descriptor string
}

func (cp *ConstantPool) FieldRef(index uint16) (MemberRef, error) {
	return cp.memberRef(index, ConstantFieldref)
}

func (cp *ConstantPool) MethodRef(index uint16) (MemberRef, error) {
	return cp.memberRef(index, ConstantMethodref)
}

func (cp *ConstantPool) InterfaceMethodRef(index uint16) (MemberRef, error) {
	return cp.memberRef(index, ConstantInterfaceMethodref)
}

// MemberRef resolves any of the three member reference kinds.
func (cp *ConstantPool) MemberRef(index uint16) (MemberRef, error) {
	return cp.memberRef(index, ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref)
}

func (cp *ConstantPool) memberRef(index uint16, want ...ConstantTag) (MemberRef, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return MemberRef{}, err
	}

	var classIndex, natIndex uint16
	switch c := e.(type) {
	case ConstantFieldrefInfo:
		classIndex, natIndex = c.ClassIndex, c.NameAndTypeIndex
	case ConstantMethodrefInfo:
		classIndex, natIndex = c.ClassIndex, c.NameAndTypeIndex
	case ConstantInterfaceMethodrefInfo:
		classIndex, natIndex = c.ClassIndex, c.NameAndTypeIndex
	}
	if !hasTag(want, e.Tag()) {
		return MemberRef{}, kindError(index, e, want...)
	}

	ref := MemberRef{Kind: e.Tag()}
	if ref.ClassName, err = cp.ClassName(classIndex); err != nil {
		return MemberRef{}, err
	}
	if ref.Name, ref.Descriptor, err = cp.NameAndType(natIndex); err != nil {
		return MemberRef{}, err
	}
	return ref, nil
}

func (cp *ConstantPool) MethodHandle(index uint16) (ConstantMethodHandleInfo, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return ConstantMethodHandleInfo{}, err
	}
	if c, ok := e.(ConstantMethodHandleInfo); ok {
		return c, nil
	}
	return ConstantMethodHandleInfo{}, kindError(index, e, ConstantMethodHandle)
}

// MethodHandleReference follows a MethodHandle entry and checks that its
// target has the shape required by the reference kind.
func (cp *ConstantPool) MethodHandleReference(index uint16) (MemberRef, error) {
	h, err := cp.MethodHandle(index)
	if err != nil {
		return MemberRef{}, err
	}
	return cp.memberRef(h.ReferenceIndex, h.ReferenceKind.ReferenceTags()...)
}

func (cp *ConstantPool) MethodType(index uint16) (string, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return "", err
	}
	c, ok := e.(ConstantMethodTypeInfo)
	if !ok {
		return "", kindError(index, e, ConstantMethodType)
	}
	return cp.Utf8(c.DescriptorIndex)
}

func (cp *ConstantPool) InvokeDynamic(index uint16) (ConstantInvokeDynamicInfo, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return ConstantInvokeDynamicInfo{}, err
	}
	if c, ok := e.(ConstantInvokeDynamicInfo); ok {
		return c, nil
	}
	return ConstantInvokeDynamicInfo{}, kindError(index, e, ConstantInvokeDynamic)
}

func (cp *ConstantPool) Module(index uint16) (string, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return "", err
	}
	c, ok := e.(ConstantModuleInfo)
	if !ok {
		return "", kindError(index, e, ConstantModule)
	}
	return cp.Utf8(c.NameIndex)
}

func (cp *ConstantPool) Package(index uint16) (string, error) {
	e, err := cp.Resolve(index)
	if err != nil {
		return "", err
	}
	c, ok := e.(ConstantPackageInfo)
	if !ok {
		return "", kindError(index, e, ConstantPackage)
	}
	return cp.Utf8(c.NameIndex)
}

// checkRefs verifies that every index stored inside an entry lands on a
// usable slot and returns the index of the first entry that does not. The
// kind of the target is left to whoever follows it.
func (cp *ConstantPool) checkRefs() (uint16, error) {
	for i, e := range cp.entries {
		for _, ref := range e.refs() {
			if _, err := cp.Resolve(ref); err != nil {
				return uint16(i + 1), errors.WithMessagef(err, "%s refers to %d", e.Tag(), ref)
			}
		}
	}
	return 0, nil
}

func kindError(index uint16, got ConstantPoolEntry, want ...ConstantTag) error {
	return &KindError{Index: index, Got: got.Tag(), Want: want}
}

func hasTag(tags []ConstantTag, t ConstantTag) bool {
	for _, want := range tags {
		if want == t {
			return true
		}
	}
	return false
}
