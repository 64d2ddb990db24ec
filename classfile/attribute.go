package classfile

import (
	"github.com/dhamidi/jvmclass/bytecursor"
	"github.com/pkg/errors"
)

// AttributeInfo holds an attribute's raw payload. Parsed is whatever the
// AttributeDecoder produced for it, nil for attributes it does not know.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
	Parsed    any
}

func (a *AttributeInfo) Name(cp *ConstantPool) (string, error) {
	return cp.Utf8(a.NameIndex)
}

// AttributeDecoder turns an attribute payload into a typed value. It may
// return nil for attributes it does not understand.
type AttributeDecoder interface {
	DecodeAttribute(name string, info []byte, cp *ConstantPool) (any, error)
}

type AttributeDecoderFunc func(name string, info []byte, cp *ConstantPool) (any, error)

func (f AttributeDecoderFunc) DecodeAttribute(name string, info []byte, cp *ConstantPool) (any, error) {
	return f(name, info, cp)
}

// RawAttributes leaves every payload undecoded.
var RawAttributes AttributeDecoder = AttributeDecoderFunc(func(string, []byte, *ConstantPool) (any, error) {
	return nil, nil
})

// DefaultAttributeDecoder decodes the standard attributes that name constant
// pool entries and checks every index they carry. Other attributes stay raw.
var DefaultAttributeDecoder AttributeDecoder = AttributeDecoderFunc(decodeAttribute)

// CodeAttribute leaves its own Attributes undecoded. When a class file is
// parsed they go through the same AttributeDecoder as the Code attribute.
type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

// CatchType is 0 for a handler that catches everything.
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

type BootstrapMethodsAttribute struct {
	BootstrapMethods []BootstrapMethod
}

type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

type LineNumberTableAttribute struct {
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type LocalVariableTableAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

// LocalVariableEntry is shared by LocalVariableTable and
// LocalVariableTypeTable; in the latter DescriptorIndex names a signature.
type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type LocalVariableTypeTableAttribute struct {
	LocalVariableTypeTable []LocalVariableEntry
}

type MethodParametersAttribute struct {
	Parameters []MethodParameter
}

type MethodParameter struct {
	NameIndex   uint16
	AccessFlags AccessFlags
}

type NestHostAttribute struct {
	HostClassIndex uint16
}

type NestMembersAttribute struct {
	Classes []uint16
}

type PermittedSubclassesAttribute struct {
	Classes []uint16
}

type ModulePackagesAttribute struct {
	PackageIndex []uint16
}

type ModuleMainClassAttribute struct {
	MainClassIndex uint16
}

type SourceDebugExtensionAttribute struct {
	DebugExtension string
}

type SyntheticAttribute struct{}

type DeprecatedAttribute struct{}

func parsedAs[T any](a *AttributeInfo) *T {
	if v, ok := a.Parsed.(*T); ok {
		return v
	}
	return nil
}

func (a *AttributeInfo) AsCode() *CodeAttribute { return parsedAs[CodeAttribute](a) }
func (a *AttributeInfo) AsConstantValue() *ConstantValueAttribute {
	return parsedAs[ConstantValueAttribute](a)
}
func (a *AttributeInfo) AsSourceFile() *SourceFileAttribute { return parsedAs[SourceFileAttribute](a) }
func (a *AttributeInfo) AsSignature() *SignatureAttribute   { return parsedAs[SignatureAttribute](a) }
func (a *AttributeInfo) AsExceptions() *ExceptionsAttribute { return parsedAs[ExceptionsAttribute](a) }
func (a *AttributeInfo) AsInnerClasses() *InnerClassesAttribute {
	return parsedAs[InnerClassesAttribute](a)
}
func (a *AttributeInfo) AsEnclosingMethod() *EnclosingMethodAttribute {
	return parsedAs[EnclosingMethodAttribute](a)
}
func (a *AttributeInfo) AsBootstrapMethods() *BootstrapMethodsAttribute {
	return parsedAs[BootstrapMethodsAttribute](a)
}
func (a *AttributeInfo) AsLineNumberTable() *LineNumberTableAttribute {
	return parsedAs[LineNumberTableAttribute](a)
}
func (a *AttributeInfo) AsLocalVariableTable() *LocalVariableTableAttribute {
	return parsedAs[LocalVariableTableAttribute](a)
}
func (a *AttributeInfo) AsLocalVariableTypeTable() *LocalVariableTypeTableAttribute {
	return parsedAs[LocalVariableTypeTableAttribute](a)
}
func (a *AttributeInfo) AsMethodParameters() *MethodParametersAttribute {
	return parsedAs[MethodParametersAttribute](a)
}
func (a *AttributeInfo) AsNestHost() *NestHostAttribute { return parsedAs[NestHostAttribute](a) }
func (a *AttributeInfo) AsNestMembers() *NestMembersAttribute {
	return parsedAs[NestMembersAttribute](a)
}
func (a *AttributeInfo) AsPermittedSubclasses() *PermittedSubclassesAttribute {
	return parsedAs[PermittedSubclassesAttribute](a)
}
func (a *AttributeInfo) AsModulePackages() *ModulePackagesAttribute {
	return parsedAs[ModulePackagesAttribute](a)
}
func (a *AttributeInfo) AsModuleMainClass() *ModuleMainClassAttribute {
	return parsedAs[ModuleMainClassAttribute](a)
}
func (a *AttributeInfo) AsSourceDebugExtension() *SourceDebugExtensionAttribute {
	return parsedAs[SourceDebugExtensionAttribute](a)
}
func (a *AttributeInfo) AsSynthetic() *SyntheticAttribute   { return parsedAs[SyntheticAttribute](a) }
func (a *AttributeInfo) AsDeprecated() *DeprecatedAttribute { return parsedAs[DeprecatedAttribute](a) }

func findAttribute(attrs []AttributeInfo, cp *ConstantPool, name string) *AttributeInfo {
	for i := range attrs {
		if n, _ := attrs[i].Name(cp); n == name {
			return &attrs[i]
		}
	}
	return nil
}

// readAttributes reads an attribute table and runs d over every entry,
// including the attributes nested inside Code.
func readAttributes(r *reader, cp *ConstantPool, d AttributeDecoder) ([]AttributeInfo, error) {
	attrs, err := readAttributeTable(r, cp)
	if err != nil {
		return nil, err
	}
	if err := decodeAttributes(attrs, cp, d); err != nil {
		return nil, err
	}
	return attrs, nil
}

// readAttributeTable reads the raw entries of an attribute table. Every name
// must resolve to a Utf8 constant.
func readAttributeTable(r *reader, cp *ConstantPool) ([]AttributeInfo, error) {
	count := r.readU2()
	if r.err != nil {
		return nil, r.err
	}

	attrs := make([]AttributeInfo, 0, count)
	for i := 0; i < int(count); i++ {
		nameIndex := r.readU2()
		length := r.readU4()
		info := r.readBytes(int(length))
		if r.err != nil {
			return nil, r.err
		}
		if _, err := cp.Utf8(nameIndex); err != nil {
			return nil, errors.WithMessagef(err, "attribute %d name", i)
		}
		attrs = append(attrs, AttributeInfo{NameIndex: nameIndex, Info: info})
	}
	return attrs, nil
}

func decodeAttributes(attrs []AttributeInfo, cp *ConstantPool, d AttributeDecoder) error {
	for i := range attrs {
		a := &attrs[i]
		name, err := a.Name(cp)
		if err != nil {
			return errors.WithMessagef(err, "attribute %d name", i)
		}
		if a.Parsed, err = d.DecodeAttribute(name, a.Info, cp); err != nil {
			return errors.WithMessagef(err, "attribute %s", name)
		}
		if code, ok := a.Parsed.(*CodeAttribute); ok {
			if err := decodeAttributes(code.Attributes, cp, d); err != nil {
				return errors.WithMessagef(err, "attribute %s", name)
			}
		}
	}
	return nil
}

func decodeAttribute(name string, info []byte, cp *ConstantPool) (any, error) {
	r := &reader{r: bytecursor.New(info)}

	var parsed any
	var err error
	switch name {
	case "Code":
		parsed, err = decodeCode(r, cp)
	case "ConstantValue":
		parsed, err = decodeConstantValue(r, cp)
	case "SourceFile":
		a := &SourceFileAttribute{SourceFileIndex: r.readU2()}
		parsed, err = a, checkUtf8(r, cp, a.SourceFileIndex)
	case "Signature":
		a := &SignatureAttribute{SignatureIndex: r.readU2()}
		parsed, err = a, checkUtf8(r, cp, a.SignatureIndex)
	case "Exceptions":
		a := &ExceptionsAttribute{ExceptionIndexTable: r.readU2s(int(r.readU2()))}
		parsed, err = a, checkClasses(r, cp, a.ExceptionIndexTable...)
	case "InnerClasses":
		parsed, err = decodeInnerClasses(r, cp)
	case "EnclosingMethod":
		parsed, err = decodeEnclosingMethod(r, cp)
	case "BootstrapMethods":
		parsed, err = decodeBootstrapMethods(r, cp)
	case "LineNumberTable":
		parsed, err = decodeLineNumberTable(r)
	case "LocalVariableTable":
		entries, lerr := decodeLocalVariables(r, cp)
		parsed, err = &LocalVariableTableAttribute{LocalVariableTable: entries}, lerr
	case "LocalVariableTypeTable":
		entries, lerr := decodeLocalVariables(r, cp)
		parsed, err = &LocalVariableTypeTableAttribute{LocalVariableTypeTable: entries}, lerr
	case "MethodParameters":
		parsed, err = decodeMethodParameters(r, cp)
	case "NestHost":
		a := &NestHostAttribute{HostClassIndex: r.readU2()}
		parsed, err = a, checkClasses(r, cp, a.HostClassIndex)
	case "NestMembers":
		a := &NestMembersAttribute{Classes: r.readU2s(int(r.readU2()))}
		parsed, err = a, checkClasses(r, cp, a.Classes...)
	case "PermittedSubclasses":
		a := &PermittedSubclassesAttribute{Classes: r.readU2s(int(r.readU2()))}
		parsed, err = a, checkClasses(r, cp, a.Classes...)
	case "ModulePackages":
		parsed, err = decodeModulePackages(r, cp)
	case "ModuleMainClass":
		a := &ModuleMainClassAttribute{MainClassIndex: r.readU2()}
		parsed, err = a, checkClasses(r, cp, a.MainClassIndex)
	case "SourceDebugExtension":
		ext, derr := DecodeModifiedUtf8(info)
		r.readBytes(len(info))
		parsed, err = &SourceDebugExtensionAttribute{DebugExtension: ext}, derr
	case "Synthetic":
		parsed = &SyntheticAttribute{}
	case "Deprecated":
		parsed = &DeprecatedAttribute{}
	default:
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	if r.err != nil {
		return nil, r.err
	}
	if rest := len(info) - r.offset(); rest != 0 {
		return nil, errors.WithMessagef(ErrInvalidAttribute, "%d trailing bytes in %s", rest, name)
	}
	return parsed, nil
}

// checkUtf8 and checkClasses skip the pool lookup once a read has failed, so
// the end-of-data error wins.
func checkUtf8(r *reader, cp *ConstantPool, index uint16) error {
	if r.err != nil {
		return nil
	}
	_, err := cp.Utf8(index)
	return err
}

func checkOptionalUtf8(r *reader, cp *ConstantPool, index uint16) error {
	if index == 0 {
		return nil
	}
	return checkUtf8(r, cp, index)
}

func checkClasses(r *reader, cp *ConstantPool, indices ...uint16) error {
	if r.err != nil {
		return nil
	}
	for _, idx := range indices {
		if _, err := cp.Class(idx); err != nil {
			return err
		}
	}
	return nil
}

func decodeCode(r *reader, cp *ConstantPool) (*CodeAttribute, error) {
	code := &CodeAttribute{
		MaxStack:  r.readU2(),
		MaxLocals: r.readU2(),
	}
	code.Code = r.readBytes(int(r.readU4()))

	n := int(r.readU2())
	code.ExceptionTable = make([]ExceptionTableEntry, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		e := ExceptionTableEntry{
			StartPC:   r.readU2(),
			EndPC:     r.readU2(),
			HandlerPC: r.readU2(),
			CatchType: r.readU2(),
		}
		if e.CatchType != 0 {
			if err := checkClasses(r, cp, e.CatchType); err != nil {
				return nil, errors.WithMessagef(err, "exception handler %d", i)
			}
		}
		code.ExceptionTable = append(code.ExceptionTable, e)
	}
	if r.err != nil {
		return nil, r.err
	}

	attrs, err := readAttributeTable(r, cp)
	if err != nil {
		return nil, err
	}
	code.Attributes = attrs
	return code, nil
}

func decodeConstantValue(r *reader, cp *ConstantPool) (*ConstantValueAttribute, error) {
	a := &ConstantValueAttribute{ConstantValueIndex: r.readU2()}
	if r.err != nil {
		return nil, r.err
	}
	e, err := cp.Resolve(a.ConstantValueIndex)
	if err != nil {
		return nil, err
	}
	switch e.Tag() {
	case ConstantInteger, ConstantFloat, ConstantLong, ConstantDouble, ConstantString:
		return a, nil
	}
	return nil, kindError(a.ConstantValueIndex, e,
		ConstantInteger, ConstantFloat, ConstantLong, ConstantDouble, ConstantString)
}

func decodeInnerClasses(r *reader, cp *ConstantPool) (*InnerClassesAttribute, error) {
	n := int(r.readU2())
	a := &InnerClassesAttribute{Classes: make([]InnerClassEntry, 0, n)}
	for i := 0; i < n && r.err == nil; i++ {
		e := InnerClassEntry{
			InnerClassInfoIndex:   r.readU2(),
			OuterClassInfoIndex:   r.readU2(),
			InnerNameIndex:        r.readU2(),
			InnerClassAccessFlags: AccessFlags(r.readU2()),
		}
		if err := checkClasses(r, cp, e.InnerClassInfoIndex); err != nil {
			return nil, err
		}
		if e.OuterClassInfoIndex != 0 {
			if err := checkClasses(r, cp, e.OuterClassInfoIndex); err != nil {
				return nil, err
			}
		}
		if err := checkOptionalUtf8(r, cp, e.InnerNameIndex); err != nil {
			return nil, err
		}
		a.Classes = append(a.Classes, e)
	}
	return a, nil
}

func decodeEnclosingMethod(r *reader, cp *ConstantPool) (*EnclosingMethodAttribute, error) {
	a := &EnclosingMethodAttribute{
		ClassIndex:  r.readU2(),
		MethodIndex: r.readU2(),
	}
	if err := checkClasses(r, cp, a.ClassIndex); err != nil {
		return nil, err
	}
	if a.MethodIndex != 0 && r.err == nil {
		if _, _, err := cp.NameAndType(a.MethodIndex); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func decodeBootstrapMethods(r *reader, cp *ConstantPool) (*BootstrapMethodsAttribute, error) {
	n := int(r.readU2())
	a := &BootstrapMethodsAttribute{BootstrapMethods: make([]BootstrapMethod, 0, n)}
	for i := 0; i < n && r.err == nil; i++ {
		bm := BootstrapMethod{BootstrapMethodRef: r.readU2()}
		bm.BootstrapArguments = r.readU2s(int(r.readU2()))
		if r.err != nil {
			break
		}
		if _, err := cp.MethodHandle(bm.BootstrapMethodRef); err != nil {
			return nil, errors.WithMessagef(err, "bootstrap method %d", i)
		}
		for _, arg := range bm.BootstrapArguments {
			if _, err := cp.Resolve(arg); err != nil {
				return nil, errors.WithMessagef(err, "bootstrap method %d argument", i)
			}
		}
		a.BootstrapMethods = append(a.BootstrapMethods, bm)
	}
	return a, nil
}

func decodeLineNumberTable(r *reader) (*LineNumberTableAttribute, error) {
	n := int(r.readU2())
	a := &LineNumberTableAttribute{LineNumberTable: make([]LineNumberEntry, 0, n)}
	for i := 0; i < n && r.err == nil; i++ {
		a.LineNumberTable = append(a.LineNumberTable, LineNumberEntry{
			StartPC:    r.readU2(),
			LineNumber: r.readU2(),
		})
	}
	return a, nil
}

func decodeLocalVariables(r *reader, cp *ConstantPool) ([]LocalVariableEntry, error) {
	n := int(r.readU2())
	entries := make([]LocalVariableEntry, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		e := LocalVariableEntry{
			StartPC:         r.readU2(),
			Length:          r.readU2(),
			NameIndex:       r.readU2(),
			DescriptorIndex: r.readU2(),
			Index:           r.readU2(),
		}
		if err := checkUtf8(r, cp, e.NameIndex); err != nil {
			return nil, err
		}
		if err := checkUtf8(r, cp, e.DescriptorIndex); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeMethodParameters(r *reader, cp *ConstantPool) (*MethodParametersAttribute, error) {
	n := int(r.readU1())
	a := &MethodParametersAttribute{Parameters: make([]MethodParameter, 0, n)}
	for i := 0; i < n && r.err == nil; i++ {
		p := MethodParameter{
			NameIndex:   r.readU2(),
			AccessFlags: AccessFlags(r.readU2()),
		}
		if err := checkOptionalUtf8(r, cp, p.NameIndex); err != nil {
			return nil, err
		}
		a.Parameters = append(a.Parameters, p)
	}
	return a, nil
}

func decodeModulePackages(r *reader, cp *ConstantPool) (*ModulePackagesAttribute, error) {
	a := &ModulePackagesAttribute{PackageIndex: r.readU2s(int(r.readU2()))}
	if r.err != nil {
		return a, nil
	}
	for _, idx := range a.PackageIndex {
		if _, err := cp.Package(idx); err != nil {
			return nil, err
		}
	}
	return a, nil
}
