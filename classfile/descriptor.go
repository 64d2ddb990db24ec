package classfile

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldType is a parsed field descriptor. Exactly one of BaseType and
// ClassName is set.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

// String renders the type in source form, e.g. "[]java.lang.String".
func (ft *FieldType) String() string {
	var sb strings.Builder
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else {
		sb.WriteString(InternalToSourceName(ft.ClassName))
	}
	return sb.String()
}

func (ft *FieldType) IsArray() bool {
	return ft.ArrayDepth > 0
}

func (ft *FieldType) IsPrimitive() bool {
	return ft.BaseType != "" && ft.ArrayDepth == 0
}

func (ft *FieldType) IsReference() bool {
	return ft.ClassName != "" || ft.ArrayDepth > 0
}

// MethodDescriptor is a parsed method descriptor. ReturnType is nil for void.
type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, p := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	if md.ReturnType != nil {
		sb.WriteString(" ")
		sb.WriteString(md.ReturnType.String())
	} else {
		sb.WriteString(" void")
	}
	return sb.String()
}

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

const maxArrayDepth = 255

func ParseFieldDescriptor(desc string) (*FieldType, error) {
	ft, n, err := parseFieldType(desc, 0)
	if err != nil {
		return nil, err
	}
	if n != len(desc) {
		return nil, descriptorError(desc, n, "trailing characters")
	}
	return ft, nil
}

func ParseMethodDescriptor(desc string) (*MethodDescriptor, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return nil, descriptorError(desc, 0, "missing '('")
	}

	md := &MethodDescriptor{}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		ft, n, err := parseFieldType(desc, i)
		if err != nil {
			return nil, err
		}
		md.Parameters = append(md.Parameters, *ft)
		i = n
	}
	if i >= len(desc) {
		return nil, descriptorError(desc, i, "missing ')'")
	}
	i++

	if i < len(desc) && desc[i] == 'V' {
		i++
	} else {
		ft, n, err := parseFieldType(desc, i)
		if err != nil {
			return nil, err
		}
		md.ReturnType = ft
		i = n
	}
	if i != len(desc) {
		return nil, descriptorError(desc, i, "trailing characters")
	}
	return md, nil
}

// parseFieldType returns the type starting at desc[start] and the offset just
// past it.
func parseFieldType(desc string, start int) (*FieldType, int, error) {
	ft := &FieldType{}
	i := start
	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}
	if ft.ArrayDepth > maxArrayDepth {
		return nil, 0, descriptorError(desc, start, "too many array dimensions")
	}
	if i >= len(desc) {
		return nil, 0, descriptorError(desc, i, "unexpected end")
	}

	if base, ok := baseTypes[desc[i]]; ok {
		ft.BaseType = base
		return ft, i + 1, nil
	}
	if desc[i] != 'L' {
		return nil, 0, descriptorError(desc, i, "unexpected character "+string(desc[i]))
	}

	semicolon := strings.IndexByte(desc[i:], ';')
	if semicolon == -1 {
		return nil, 0, descriptorError(desc, i, "unterminated class name")
	}
	name := desc[i+1 : i+semicolon]
	if name == "" || strings.ContainsAny(name, ".[") {
		return nil, 0, descriptorError(desc, i, "invalid class name")
	}
	ft.ClassName = name
	return ft, i + semicolon + 1, nil
}

func descriptorError(desc string, at int, reason string) error {
	return errors.WithMessagef(ErrInvalidDescriptor, "%q at %d: %s", desc, at, reason)
}

// InternalToSourceName turns "java/lang/String" into "java.lang.String".
func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
