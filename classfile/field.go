package classfile

import (
	"fmt"

	"github.com/pkg/errors"
)

type FieldInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (f *FieldInfo) Name(cp *ConstantPool) (string, error) {
	return cp.Utf8(f.NameIndex)
}

func (f *FieldInfo) Descriptor(cp *ConstantPool) (string, error) {
	return cp.Utf8(f.DescriptorIndex)
}

// Type parses the field descriptor.
func (f *FieldInfo) Type(cp *ConstantPool) (*FieldType, error) {
	desc, err := f.Descriptor(cp)
	if err != nil {
		return nil, err
	}
	return ParseFieldDescriptor(desc)
}

func (f *FieldInfo) Attribute(cp *ConstantPool, name string) *AttributeInfo {
	return findAttribute(f.Attributes, cp, name)
}

// ConstantValue returns the index of the field's ConstantValue entry, or 0.
func (f *FieldInfo) ConstantValue(cp *ConstantPool) uint16 {
	if attr := f.Attribute(cp, "ConstantValue"); attr != nil {
		if cv := attr.AsConstantValue(); cv != nil {
			return cv.ConstantValueIndex
		}
	}
	return 0
}

func (f *FieldInfo) IsPublic() bool    { return f.AccessFlags.IsPublic() }
func (f *FieldInfo) IsPrivate() bool   { return f.AccessFlags.IsPrivate() }
func (f *FieldInfo) IsProtected() bool { return f.AccessFlags.IsProtected() }
func (f *FieldInfo) IsStatic() bool    { return f.AccessFlags.IsStatic() }
func (f *FieldInfo) IsFinal() bool     { return f.AccessFlags.IsFinal() }
func (f *FieldInfo) IsVolatile() bool  { return f.AccessFlags.IsVolatile() }
func (f *FieldInfo) IsTransient() bool { return f.AccessFlags.IsTransient() }
func (f *FieldInfo) IsSynthetic() bool { return f.AccessFlags.IsSynthetic() }
func (f *FieldInfo) IsEnum() bool      { return f.AccessFlags.IsEnum() }

// memberInfo is the layout shared by field_info and method_info.
type memberInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func readMember(r *reader, cp *ConstantPool, d AttributeDecoder) (memberInfo, error) {
	m := memberInfo{
		AccessFlags:     AccessFlags(r.readU2()),
		NameIndex:       r.readU2(),
		DescriptorIndex: r.readU2(),
	}
	if r.err != nil {
		return m, r.err
	}
	if _, err := cp.Utf8(m.NameIndex); err != nil {
		return m, errors.WithMessage(err, "name")
	}
	if _, err := cp.Utf8(m.DescriptorIndex); err != nil {
		return m, errors.WithMessage(err, "descriptor")
	}

	attrs, err := readAttributes(r, cp, d)
	if err != nil {
		return m, err
	}
	m.Attributes = attrs
	return m, nil
}

func readFields(r *reader, cp *ConstantPool, d AttributeDecoder) ([]FieldInfo, error) {
	start := r.offset()
	count := r.readU2()
	if r.err != nil {
		return nil, sectionError("fields", start, r.err)
	}

	fields := make([]FieldInfo, 0, count)
	for i := 0; i < int(count); i++ {
		start := r.offset()
		m, err := readMember(r, cp, d)
		if err != nil {
			return nil, sectionError(fmt.Sprintf("field %d", i), start, err)
		}
		fields = append(fields, FieldInfo(m))
	}
	return fields, nil
}
