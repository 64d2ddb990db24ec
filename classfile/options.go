package classfile

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("jvmclass.classfile")

type Option func(*parser)

func WithLogger(logger commonlog.Logger) Option {
	return func(p *parser) {
		p.log = logger
	}
}

// WithAttributeDecoder replaces the decoder used for attribute payloads of
// the class, its fields and its methods.
func WithAttributeDecoder(d AttributeDecoder) Option {
	return func(p *parser) {
		p.attrs = d
	}
}

// WithRequireThisClass rejects a zero this_class. By default a zero index is
// accepted and left for a later verification stage.
func WithRequireThisClass() Option {
	return func(p *parser) {
		p.requireThisClass = true
	}
}

// WithMaxMajorVersion rejects class files newer than the given major version.
// Zero disables the check.
func WithMaxMajorVersion(major uint16) Option {
	return func(p *parser) {
		p.maxMajor = major
	}
}

type parser struct {
	log              commonlog.Logger
	attrs            AttributeDecoder
	requireThisClass bool
	maxMajor         uint16
}

func newParser(opts []Option) *parser {
	p := &parser{
		log:   log,
		attrs: DefaultAttributeDecoder,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
