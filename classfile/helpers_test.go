package classfile

import (
	"encoding/binary"
	"math"
	"os"
	"testing"
	"unicode/utf16"

	"github.com/dhamidi/jvmclass/bytecursor"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func TestMain(m *testing.M) {
	verbosity := 0
	if os.Getenv("JVMCLASS_DEBUG") != "" {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)
	os.Exit(m.Run())
}

// encodeModifiedUtf8 is the inverse of DecodeModifiedUtf8 for strings that
// hold no unpaired surrogates.
func encodeModifiedUtf8(s string) []byte {
	var out []byte
	put3 := func(r rune) {
		out = append(out, 0xE0|byte(r>>12), 0x80|byte(r>>6)&0x3F, 0x80|byte(r)&0x3F)
	}
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r)&0x3F)
		case r < 0x10000:
			put3(r)
		default:
			hi, lo := utf16.EncodeRune(r)
			put3(hi)
			put3(lo)
		}
	}
	return out
}

// poolBuilder assembles constant pool bytes and hands out the index of each
// entry it adds.
type poolBuilder struct {
	buf  []byte
	next uint16
}

func newPool() *poolBuilder {
	return &poolBuilder{next: 1}
}

func (p *poolBuilder) add(slots uint16, b ...byte) uint16 {
	idx := p.next
	p.buf = append(p.buf, b...)
	p.next += slots
	return idx
}

func (p *poolBuilder) count() uint16 { return p.next }

func (p *poolBuilder) utf8(s string) uint16 {
	enc := encodeModifiedUtf8(s)
	b := binary.BigEndian.AppendUint16([]byte{byte(ConstantUtf8)}, uint16(len(enc)))
	return p.add(1, append(b, enc...)...)
}

func (p *poolBuilder) integer(v int32) uint16 {
	return p.add(1, binary.BigEndian.AppendUint32([]byte{byte(ConstantInteger)}, uint32(v))...)
}

func (p *poolBuilder) float(bits uint32) uint16 {
	return p.add(1, binary.BigEndian.AppendUint32([]byte{byte(ConstantFloat)}, bits)...)
}

func (p *poolBuilder) long(v int64) uint16 {
	return p.add(2, binary.BigEndian.AppendUint64([]byte{byte(ConstantLong)}, uint64(v))...)
}

func (p *poolBuilder) double(bits uint64) uint16 {
	return p.add(2, binary.BigEndian.AppendUint64([]byte{byte(ConstantDouble)}, bits)...)
}

func (p *poolBuilder) ref1(tag ConstantTag, a uint16) uint16 {
	return p.add(1, binary.BigEndian.AppendUint16([]byte{byte(tag)}, a)...)
}

func (p *poolBuilder) ref2(tag ConstantTag, a, b uint16) uint16 {
	buf := binary.BigEndian.AppendUint16([]byte{byte(tag)}, a)
	return p.add(1, binary.BigEndian.AppendUint16(buf, b)...)
}

func (p *poolBuilder) class(name string) uint16 {
	return p.ref1(ConstantClass, p.utf8(name))
}

func (p *poolBuilder) str(s string) uint16 {
	return p.ref1(ConstantString, p.utf8(s))
}

func (p *poolBuilder) nameAndType(name, desc string) uint16 {
	n := p.utf8(name)
	return p.ref2(ConstantNameAndType, n, p.utf8(desc))
}

func (p *poolBuilder) methodHandle(kind MethodHandleKind, ref uint16) uint16 {
	return p.add(1, binary.BigEndian.AppendUint16([]byte{byte(ConstantMethodHandle), byte(kind)}, ref)...)
}

// decode runs the bytes through DecodeConstantPool.
func (p *poolBuilder) decode(t *testing.T) *ConstantPool {
	t.Helper()
	cp, err := DecodeConstantPool(bytecursor.New(p.buf), p.count())
	if err != nil {
		t.Fatalf("DecodeConstantPool() error = %v", err)
	}
	return cp
}

func u2(v uint16) []byte { return binary.BigEndian.AppendUint16(nil, v) }

func attribute(name uint16, info []byte) []byte {
	b := u2(name)
	b = binary.BigEndian.AppendUint32(b, uint32(len(info)))
	return append(b, info...)
}

func member(flags AccessFlags, name, desc uint16, attrs ...[]byte) []byte {
	b := append(u2(uint16(flags)), u2(name)...)
	b = append(b, u2(desc)...)
	return append(b, table(attrs)...)
}

// table prefixes the concatenated items with their u2 count.
func table(items [][]byte) []byte {
	b := u2(uint16(len(items)))
	for _, it := range items {
		b = append(b, it...)
	}
	return b
}

type classBuilder struct {
	minor, major uint16
	pool         *poolBuilder
	flags        AccessFlags
	this, super  uint16
	interfaces   []uint16
	fields       [][]byte
	methods      [][]byte
	attributes   [][]byte
}

func (c *classBuilder) bytes() []byte {
	b := binary.BigEndian.AppendUint32(nil, Magic)
	b = append(b, u2(c.minor)...)
	b = append(b, u2(c.major)...)
	b = append(b, u2(c.pool.count())...)
	b = append(b, c.pool.buf...)
	b = append(b, u2(uint16(c.flags))...)
	b = append(b, u2(c.this)...)
	b = append(b, u2(c.super)...)
	b = append(b, u2(uint16(len(c.interfaces)))...)
	for _, i := range c.interfaces {
		b = append(b, u2(i)...)
	}
	b = append(b, table(c.fields)...)
	b = append(b, table(c.methods)...)
	return append(b, table(c.attributes)...)
}

// sampleClass builds a small but complete class:
//
//	public class demo/Point extends java/lang/Object implements java/lang/Runnable {
//	    public static final int ORIGIN = 7;
//	    private long stamp;
//	    public <init>()V { aload_0; invokespecial Object.<init>; return }
//	    public run()V
//	}
func sampleClass() *classBuilder {
	p := newPool()
	this := p.class("demo/Point")
	super := p.class("java/lang/Object")
	runnable := p.class("java/lang/Runnable")
	objInit := p.ref2(ConstantMethodref, super, p.nameAndType("<init>", "()V"))

	code := p.utf8("Code")
	lineNumbers := p.utf8("LineNumberTable")
	constantValue := p.utf8("ConstantValue")
	sourceFile := p.utf8("SourceFile")
	seven := p.integer(7)

	lnt := append(u2(1), u2(0)...)
	lnt = append(lnt, u2(3)...)

	body := []byte{0x2A, 0xB7, byte(objInit >> 8), byte(objInit), 0xB1}
	info := append(u2(1), u2(1)...)
	info = binary.BigEndian.AppendUint32(info, uint32(len(body)))
	info = append(info, body...)
	info = append(info, u2(0)...)
	info = append(info, table([][]byte{attribute(lineNumbers, lnt)})...)

	return &classBuilder{
		major:      52,
		pool:       p,
		flags:      AccPublic | AccSuper,
		this:       this,
		super:      super,
		interfaces: []uint16{runnable},
		fields: [][]byte{
			member(AccPublic|AccStatic|AccFinal, p.utf8("ORIGIN"), p.utf8("I"),
				attribute(constantValue, u2(seven))),
			member(AccPrivate, p.utf8("stamp"), p.utf8("J")),
		},
		methods: [][]byte{
			member(AccPublic, p.utf8("<init>"), p.utf8("()V"), attribute(code, info)),
			member(AccPublic, p.utf8("run"), p.utf8("()V")),
		},
		attributes: [][]byte{
			attribute(sourceFile, u2(p.utf8("Point.java"))),
		},
	}
}

func isNaN32(f float32) bool { return math.IsNaN(float64(f)) }
