package classfile

import "fmt"

const (
	Magic = 0xCAFEBABE
)

type AccessFlags uint16

// Several bits carry different names depending on whether they sit on a
// class, a field or a method.
const (
	AccPublic       AccessFlags = 0x0001
	AccPrivate      AccessFlags = 0x0002
	AccProtected    AccessFlags = 0x0004
	AccStatic       AccessFlags = 0x0008
	AccFinal        AccessFlags = 0x0010
	AccSuper        AccessFlags = 0x0020
	AccSynchronized AccessFlags = 0x0020
	AccVolatile     AccessFlags = 0x0040
	AccBridge       AccessFlags = 0x0040
	AccTransient    AccessFlags = 0x0080
	AccVarargs      AccessFlags = 0x0080
	AccNative       AccessFlags = 0x0100
	AccInterface    AccessFlags = 0x0200
	AccAbstract     AccessFlags = 0x0400
	AccStrict       AccessFlags = 0x0800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccModule       AccessFlags = 0x8000
)

func (f AccessFlags) IsPublic() bool       { return f&AccPublic != 0 }
func (f AccessFlags) IsPrivate() bool      { return f&AccPrivate != 0 }
func (f AccessFlags) IsProtected() bool    { return f&AccProtected != 0 }
func (f AccessFlags) IsStatic() bool       { return f&AccStatic != 0 }
func (f AccessFlags) IsFinal() bool        { return f&AccFinal != 0 }
func (f AccessFlags) IsSuper() bool        { return f&AccSuper != 0 }
func (f AccessFlags) IsSynchronized() bool { return f&AccSynchronized != 0 }
func (f AccessFlags) IsVolatile() bool     { return f&AccVolatile != 0 }
func (f AccessFlags) IsBridge() bool       { return f&AccBridge != 0 }
func (f AccessFlags) IsTransient() bool    { return f&AccTransient != 0 }
func (f AccessFlags) IsVarargs() bool      { return f&AccVarargs != 0 }
func (f AccessFlags) IsNative() bool       { return f&AccNative != 0 }
func (f AccessFlags) IsInterface() bool    { return f&AccInterface != 0 }
func (f AccessFlags) IsAbstract() bool     { return f&AccAbstract != 0 }
func (f AccessFlags) IsStrict() bool       { return f&AccStrict != 0 }
func (f AccessFlags) IsSynthetic() bool    { return f&AccSynthetic != 0 }
func (f AccessFlags) IsAnnotation() bool   { return f&AccAnnotation != 0 }
func (f AccessFlags) IsEnum() bool         { return f&AccEnum != 0 }
func (f AccessFlags) IsModule() bool       { return f&AccModule != 0 }

var classFlagNames = []struct {
	flag AccessFlags
	name string
}{
	{AccPublic, "ACC_PUBLIC"},
	{AccFinal, "ACC_FINAL"},
	{AccSuper, "ACC_SUPER"},
	{AccInterface, "ACC_INTERFACE"},
	{AccAbstract, "ACC_ABSTRACT"},
	{AccSynthetic, "ACC_SYNTHETIC"},
	{AccAnnotation, "ACC_ANNOTATION"},
	{AccEnum, "ACC_ENUM"},
	{AccModule, "ACC_MODULE"},
}

// ClassFlagNames lists the named class-level flags that are set, in table
// order. Bits without a class-level name are skipped.
func (f AccessFlags) ClassFlagNames() []string {
	var names []string
	for _, n := range classFlagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

type ConstantTag uint8

// ConstantUnusable never appears in a class file. It marks the slot that
// follows a Long or Double entry.
const (
	ConstantUnusable           ConstantTag = 0
	ConstantUtf8               ConstantTag = 1
	ConstantInteger            ConstantTag = 3
	ConstantFloat              ConstantTag = 4
	ConstantLong               ConstantTag = 5
	ConstantDouble             ConstantTag = 6
	ConstantClass              ConstantTag = 7
	ConstantString             ConstantTag = 8
	ConstantFieldref           ConstantTag = 9
	ConstantMethodref          ConstantTag = 10
	ConstantInterfaceMethodref ConstantTag = 11
	ConstantNameAndType        ConstantTag = 12
	ConstantMethodHandle       ConstantTag = 15
	ConstantMethodType         ConstantTag = 16
	ConstantInvokeDynamic      ConstantTag = 18
	ConstantModule             ConstantTag = 19
	ConstantPackage            ConstantTag = 20
)

var tagNames = map[ConstantTag]string{
	ConstantUnusable:           "Unusable",
	ConstantUtf8:               "Utf8",
	ConstantInteger:            "Integer",
	ConstantFloat:              "Float",
	ConstantLong:               "Long",
	ConstantDouble:             "Double",
	ConstantClass:              "Class",
	ConstantString:             "String",
	ConstantFieldref:           "Fieldref",
	ConstantMethodref:          "Methodref",
	ConstantInterfaceMethodref: "InterfaceMethodref",
	ConstantNameAndType:        "NameAndType",
	ConstantMethodHandle:       "MethodHandle",
	ConstantMethodType:         "MethodType",
	ConstantInvokeDynamic:      "InvokeDynamic",
	ConstantModule:             "Module",
	ConstantPackage:            "Package",
}

func (t ConstantTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

type MethodHandleKind uint8

const (
	RefGetField         MethodHandleKind = 1
	RefGetStatic        MethodHandleKind = 2
	RefPutField         MethodHandleKind = 3
	RefPutStatic        MethodHandleKind = 4
	RefInvokeVirtual    MethodHandleKind = 5
	RefInvokeStatic     MethodHandleKind = 6
	RefInvokeSpecial    MethodHandleKind = 7
	RefNewInvokeSpecial MethodHandleKind = 8
	RefInvokeInterface  MethodHandleKind = 9
)

func (k MethodHandleKind) Valid() bool {
	return k >= RefGetField && k <= RefInvokeInterface
}

// ReferenceTags returns the constant kinds a handle of this kind may point at.
func (k MethodHandleKind) ReferenceTags() []ConstantTag {
	switch k {
	case RefGetField, RefGetStatic, RefPutField, RefPutStatic:
		return []ConstantTag{ConstantFieldref}
	case RefInvokeVirtual, RefNewInvokeSpecial:
		return []ConstantTag{ConstantMethodref}
	case RefInvokeStatic, RefInvokeSpecial:
		return []ConstantTag{ConstantMethodref, ConstantInterfaceMethodref}
	case RefInvokeInterface:
		return []ConstantTag{ConstantInterfaceMethodref}
	}
	return nil
}

func (k MethodHandleKind) String() string {
	switch k {
	case RefGetField:
		return "REF_getField"
	case RefGetStatic:
		return "REF_getStatic"
	case RefPutField:
		return "REF_putField"
	case RefPutStatic:
		return "REF_putStatic"
	case RefInvokeVirtual:
		return "REF_invokeVirtual"
	case RefInvokeStatic:
		return "REF_invokeStatic"
	case RefInvokeSpecial:
		return "REF_invokeSpecial"
	case RefNewInvokeSpecial:
		return "REF_newInvokeSpecial"
	case RefInvokeInterface:
		return "REF_invokeInterface"
	}
	return fmt.Sprintf("REF_%d", uint8(k))
}
