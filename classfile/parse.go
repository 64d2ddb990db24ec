package classfile

import (
	"io"

	"github.com/dhamidi/jvmclass/bytecursor"
	"github.com/pkg/errors"
)

// Parse reads the whole class file from rd and decodes it.
func Parse(rd io.Reader, opts ...Option) (*ClassFile, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, errors.Wrap(err, "read class file")
	}
	return ParseBytes(data, opts...)
}

func ParseBytes(data []byte, opts ...Option) (*ClassFile, error) {
	return ParseCursor(bytecursor.New(data), opts...)
}

// ParseCursor decodes a class file starting at the current position of br.
// The result is either a complete ClassFile or the first error found, wrapped
// in a *ParseError that records where decoding stopped.
func ParseCursor(br ByteReader, opts ...Option) (*ClassFile, error) {
	return newParser(opts).parse(br)
}

func (p *parser) parse(br ByteReader) (*ClassFile, error) {
	r := &reader{r: br}

	start := r.offset()
	magic := r.readU4()
	if r.err != nil {
		return nil, sectionError("magic", start, r.err)
	}
	if magic != Magic {
		return nil, sectionError("magic", start, &BadMagicError{Magic: magic})
	}

	cf := &ClassFile{Magic: magic}

	start = r.offset()
	cf.MinorVersion = r.readU2()
	cf.MajorVersion = r.readU2()
	if r.err != nil {
		return nil, sectionError("version", start, r.err)
	}
	if p.maxMajor != 0 && cf.MajorVersion > p.maxMajor {
		return nil, sectionError("version", start,
			errors.WithMessagef(ErrUnsupportedVersion, "%s is newer than %d.0", cf.Version(), p.maxMajor))
	}

	start = r.offset()
	count := r.readU2()
	if r.err != nil {
		return nil, sectionError("constant pool count", start, r.err)
	}
	pool, err := DecodeConstantPool(br, count)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = pool
	p.log.Debugf("decoded constant pool: %d slots", pool.Len())

	start = r.offset()
	cf.AccessFlags = AccessFlags(r.readU2())
	if r.err != nil {
		return nil, sectionError("access flags", start, r.err)
	}
	if err := ValidateClassAccessFlags(cf.AccessFlags); err != nil {
		return nil, sectionError("access flags", start, err)
	}

	start = r.offset()
	cf.ThisClass = r.readU2()
	if r.err != nil {
		return nil, sectionError("this_class", start, r.err)
	}
	if cf.ThisClass == 0 && !p.requireThisClass {
		p.log.Warning("accepting class file with zero this_class")
	} else if _, err := pool.Class(cf.ThisClass); err != nil {
		return nil, sectionError("this_class", start, err)
	}

	start = r.offset()
	cf.SuperClass = r.readU2()
	if r.err != nil {
		return nil, sectionError("super_class", start, r.err)
	}
	if cf.SuperClass != 0 {
		if _, err := pool.Class(cf.SuperClass); err != nil {
			return nil, sectionError("super_class", start, err)
		}
	}

	start = r.offset()
	interfacesCount := r.readU2()
	cf.Interfaces = r.readU2s(int(interfacesCount))
	if r.err != nil {
		return nil, sectionError("interfaces", start, r.err)
	}
	for _, idx := range cf.Interfaces {
		if _, err := pool.Class(idx); err != nil {
			return nil, sectionError("interfaces", start, err)
		}
	}

	if cf.Fields, err = readFields(r, pool, p.attrs); err != nil {
		return nil, err
	}
	if cf.Methods, err = readMethods(r, pool, p.attrs); err != nil {
		return nil, err
	}

	start = r.offset()
	if cf.Attributes, err = readAttributes(r, pool, p.attrs); err != nil {
		return nil, sectionError("class attributes", start, err)
	}

	p.log.Debugf("parsed class file: version %s, %d fields, %d methods, %d attributes",
		cf.Version(), len(cf.Fields), len(cf.Methods), len(cf.Attributes))
	return cf, nil
}

// DecodeConstantPool reads count-1 constant pool slots from br. A Long or
// Double at index n fills slot n+1 with ConstantUnusableInfo. Once every entry
// is read, each index stored inside an entry is checked to land on a usable
// slot.
func DecodeConstantPool(br ByteReader, count uint16) (*ConstantPool, error) {
	if count == 0 {
		return nil, sectionError("constant pool", br.Offset(),
			errors.WithMessage(ErrInvalidConstantPoolCount, "count must be at least 1"))
	}

	entries := make([]ConstantPoolEntry, count-1)
	for i := uint16(1); i < count; i++ {
		start := br.Offset()
		entry, err := readConstantPoolEntry(br)
		if err != nil {
			return nil, &ParseError{Section: "constant pool", Offset: start, PoolIndex: i, Err: err}
		}
		entries[i-1] = entry

		if t := entry.Tag(); t == ConstantLong || t == ConstantDouble {
			if i+1 >= count {
				return nil, &ParseError{Section: "constant pool", Offset: start, PoolIndex: i,
					Err: errors.WithMessagef(ErrInvalidConstantPoolCount, "%s in last slot %d", t, i)}
			}
			entries[i] = ConstantUnusableInfo{Owner: i}
			i++
		}
	}

	cp := &ConstantPool{entries: entries}
	if index, err := cp.checkRefs(); err != nil {
		return nil, &ParseError{Section: "constant pool", Offset: br.Offset(), PoolIndex: index, Err: err}
	}
	return cp, nil
}

func readConstantPoolEntry(br ByteReader) (ConstantPoolEntry, error) {
	r := &reader{r: br}

	tag := ConstantTag(r.readU1())
	if r.err != nil {
		return nil, r.err
	}

	var entry ConstantPoolEntry
	switch tag {
	case ConstantUtf8:
		length := r.readU2()
		raw := r.readBytes(int(length))
		if r.err != nil {
			return nil, r.err
		}
		value, err := DecodeModifiedUtf8(raw)
		if err != nil {
			return nil, err
		}
		entry = ConstantUtf8Info{Value: value}

	case ConstantInteger:
		entry = ConstantIntegerInfo{Value: r.readI4()}

	case ConstantFloat:
		entry = ConstantFloatInfo{Value: floatFromBits(r.readU4())}

	case ConstantLong:
		high := r.readU4()
		low := r.readU4()
		entry = ConstantLongInfo{Value: longFromHalves(high, low)}

	case ConstantDouble:
		high := r.readU4()
		low := r.readU4()
		entry = ConstantDoubleInfo{Value: doubleFromBits(uint64(high)<<32 | uint64(low))}

	case ConstantClass:
		entry = ConstantClassInfo{NameIndex: r.readU2()}

	case ConstantString:
		entry = ConstantStringInfo{StringIndex: r.readU2()}

	case ConstantFieldref:
		classIndex := r.readU2()
		entry = ConstantFieldrefInfo{ClassIndex: classIndex, NameAndTypeIndex: r.readU2()}

	case ConstantMethodref:
		classIndex := r.readU2()
		entry = ConstantMethodrefInfo{ClassIndex: classIndex, NameAndTypeIndex: r.readU2()}

	case ConstantInterfaceMethodref:
		classIndex := r.readU2()
		entry = ConstantInterfaceMethodrefInfo{ClassIndex: classIndex, NameAndTypeIndex: r.readU2()}

	case ConstantNameAndType:
		nameIndex := r.readU2()
		entry = ConstantNameAndTypeInfo{NameIndex: nameIndex, DescriptorIndex: r.readU2()}

	case ConstantMethodHandle:
		kind := MethodHandleKind(r.readU1())
		if r.err == nil && !kind.Valid() {
			return nil, &MethodHandleKindError{Kind: uint8(kind)}
		}
		entry = ConstantMethodHandleInfo{ReferenceKind: kind, ReferenceIndex: r.readU2()}

	case ConstantMethodType:
		entry = ConstantMethodTypeInfo{DescriptorIndex: r.readU2()}

	case ConstantInvokeDynamic:
		bootstrapIndex := r.readU2()
		entry = ConstantInvokeDynamicInfo{BootstrapMethodAttrIndex: bootstrapIndex, NameAndTypeIndex: r.readU2()}

	case ConstantModule:
		entry = ConstantModuleInfo{NameIndex: r.readU2()}

	case ConstantPackage:
		entry = ConstantPackageInfo{NameIndex: r.readU2()}

	default:
		return nil, &UnknownTagError{Tag: uint8(tag)}
	}

	if r.err != nil {
		return nil, r.err
	}
	return entry, nil
}

func sectionError(section string, offset int, err error) error {
	return &ParseError{Section: section, Offset: offset, Err: err}
}
