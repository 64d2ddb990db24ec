package classfile

import "fmt"

type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m *MethodInfo) Name(cp *ConstantPool) (string, error) {
	return cp.Utf8(m.NameIndex)
}

func (m *MethodInfo) Descriptor(cp *ConstantPool) (string, error) {
	return cp.Utf8(m.DescriptorIndex)
}

// Signature parses the method descriptor.
func (m *MethodInfo) Signature(cp *ConstantPool) (*MethodDescriptor, error) {
	desc, err := m.Descriptor(cp)
	if err != nil {
		return nil, err
	}
	return ParseMethodDescriptor(desc)
}

func (m *MethodInfo) Attribute(cp *ConstantPool, name string) *AttributeInfo {
	return findAttribute(m.Attributes, cp, name)
}

func (m *MethodInfo) Code(cp *ConstantPool) *CodeAttribute {
	attr := m.Attribute(cp, "Code")
	if attr == nil {
		return nil
	}
	return attr.AsCode()
}

func (m *MethodInfo) IsPublic() bool       { return m.AccessFlags.IsPublic() }
func (m *MethodInfo) IsPrivate() bool      { return m.AccessFlags.IsPrivate() }
func (m *MethodInfo) IsProtected() bool    { return m.AccessFlags.IsProtected() }
func (m *MethodInfo) IsStatic() bool       { return m.AccessFlags.IsStatic() }
func (m *MethodInfo) IsFinal() bool        { return m.AccessFlags.IsFinal() }
func (m *MethodInfo) IsSynchronized() bool { return m.AccessFlags.IsSynchronized() }
func (m *MethodInfo) IsBridge() bool       { return m.AccessFlags.IsBridge() }
func (m *MethodInfo) IsVarargs() bool      { return m.AccessFlags.IsVarargs() }
func (m *MethodInfo) IsNative() bool       { return m.AccessFlags.IsNative() }
func (m *MethodInfo) IsAbstract() bool     { return m.AccessFlags.IsAbstract() }
func (m *MethodInfo) IsStrict() bool       { return m.AccessFlags.IsStrict() }
func (m *MethodInfo) IsSynthetic() bool    { return m.AccessFlags.IsSynthetic() }

func (m *MethodInfo) IsConstructor(cp *ConstantPool) bool {
	name, _ := m.Name(cp)
	return name == "<init>"
}

func (m *MethodInfo) IsStaticInitializer(cp *ConstantPool) bool {
	name, _ := m.Name(cp)
	return name == "<clinit>"
}

func readMethods(r *reader, cp *ConstantPool, d AttributeDecoder) ([]MethodInfo, error) {
	start := r.offset()
	count := r.readU2()
	if r.err != nil {
		return nil, sectionError("methods", start, r.err)
	}

	methods := make([]MethodInfo, 0, count)
	for i := 0; i < int(count); i++ {
		start := r.offset()
		m, err := readMember(r, cp, d)
		if err != nil {
			return nil, sectionError(fmt.Sprintf("method %d", i), start, err)
		}
		methods = append(methods, MethodInfo(m))
	}
	return methods, nil
}
