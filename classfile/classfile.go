package classfile

import "fmt"

// ClassFile is a decoded class file. Every reference into the constant pool
// is kept as an index; use ConstantPool to follow it.
type ClassFile struct {
	Magic        uint32
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

// Version is a class file format version. Versions order by major, then
// minor.
type Version struct {
	Major uint16
	Minor uint16
}

func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		if v.Major < o.Major {
			return -1
		}
		return 1
	case v.Minor < o.Minor:
		return -1
	case v.Minor > o.Minor:
		return 1
	}
	return 0
}

func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (cf *ClassFile) Version() Version {
	return Version{Major: cf.MajorVersion, Minor: cf.MinorVersion}
}

func (cf *ClassFile) ClassName() (string, error) {
	return cf.ConstantPool.ClassName(cf.ThisClass)
}

// SuperClassName returns "" for a class without a superclass.
func (cf *ClassFile) SuperClassName() (string, error) {
	if cf.SuperClass == 0 {
		return "", nil
	}
	return cf.ConstantPool.ClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() ([]string, error) {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		name, err := cf.ConstantPool.ClassName(idx)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

func (cf *ClassFile) IsClass() bool {
	return !cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsModule()
}

func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface() && !cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsAnnotation() bool {
	return cf.AccessFlags.IsAnnotation()
}

func (cf *ClassFile) IsEnum() bool {
	return cf.AccessFlags.IsEnum()
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

func (cf *ClassFile) Field(name string) *FieldInfo {
	for i := range cf.Fields {
		if n, _ := cf.Fields[i].Name(cf.ConstantPool); n == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

// Method finds a method by name, and by descriptor unless descriptor is "".
func (cf *ClassFile) Method(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if n, _ := m.Name(cf.ConstantPool); n != name {
			continue
		}
		if d, _ := m.Descriptor(cf.ConstantPool); descriptor == "" || d == descriptor {
			return m
		}
	}
	return nil
}

// MethodsNamed returns every overload of name.
func (cf *ClassFile) MethodsNamed(name string) []*MethodInfo {
	var methods []*MethodInfo
	for i := range cf.Methods {
		if n, _ := cf.Methods[i].Name(cf.ConstantPool); n == name {
			methods = append(methods, &cf.Methods[i])
		}
	}
	return methods
}

func (cf *ClassFile) Attribute(name string) *AttributeInfo {
	return findAttribute(cf.Attributes, cf.ConstantPool, name)
}

func (cf *ClassFile) BootstrapMethods() *BootstrapMethodsAttribute {
	if attr := cf.Attribute("BootstrapMethods"); attr != nil {
		return attr.AsBootstrapMethods()
	}
	return nil
}

func (cf *ClassFile) SourceFile() (string, error) {
	attr := cf.Attribute("SourceFile")
	if attr == nil {
		return "", nil
	}
	sf := attr.AsSourceFile()
	if sf == nil {
		return "", nil
	}
	return cf.ConstantPool.Utf8(sf.SourceFileIndex)
}
