package classfile

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestValidateClassAccessFlags(t *testing.T) {
	tests := []struct {
		name  string
		flags AccessFlags
		ok    bool
	}{
		{"zero", 0, true},
		{"public super", AccPublic | AccSuper, true},
		{"final", AccPublic | AccFinal | AccSuper, true},
		{"abstract", AccPublic | AccAbstract | AccSuper, true},
		{"enum", AccPublic | AccFinal | AccSuper | AccEnum, true},
		{"synthetic", AccSynthetic, true},
		{"module", AccModule, true},
		{"unassigned bits ignored", AccPublic | AccPrivate | AccStatic, true},
		{"final abstract", AccFinal | AccAbstract, false},
		{"annotation without interface", AccAnnotation | AccAbstract, false},

		{"interface", AccPublic | AccInterface | AccAbstract, true},
		{"annotation", AccPublic | AccInterface | AccAbstract | AccAnnotation, true},
		{"interface synthetic", AccInterface | AccAbstract | AccSynthetic, true},
		{"interface not abstract", AccInterface, false},
		{"interface final", AccInterface | AccAbstract | AccFinal, false},
		{"interface super", AccInterface | AccAbstract | AccSuper, false},
		{"interface enum", AccInterface | AccAbstract | AccEnum, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClassAccessFlags(tt.flags)
			if tt.ok {
				if err != nil {
					t.Errorf("ValidateClassAccessFlags(0x%04X) error = %v", uint16(tt.flags), err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidAccessFlags) {
				t.Errorf("ValidateClassAccessFlags(0x%04X) error = %v, want %v", uint16(tt.flags), err, ErrInvalidAccessFlags)
			}
			var ae *AccessFlagsError
			if errors.As(err, &ae) && ae.Flags != tt.flags {
				t.Errorf("AccessFlagsError.Flags = 0x%04X, want 0x%04X", uint16(ae.Flags), uint16(tt.flags))
			}
		})
	}
}

func TestAbstractAndEnumAreDistinct(t *testing.T) {
	if AccAbstract&AccEnum != 0 {
		t.Fatalf("AccAbstract 0x%04X overlaps AccEnum 0x%04X", uint16(AccAbstract), uint16(AccEnum))
	}
	f := AccAbstract
	if !f.IsAbstract() || f.IsEnum() {
		t.Errorf("AccAbstract: IsAbstract() = %v, IsEnum() = %v", f.IsAbstract(), f.IsEnum())
	}
	f = AccEnum
	if f.IsAbstract() || !f.IsEnum() {
		t.Errorf("AccEnum: IsAbstract() = %v, IsEnum() = %v", f.IsAbstract(), f.IsEnum())
	}
}

func TestClassFlagNames(t *testing.T) {
	got := (AccPublic | AccInterface | AccAbstract | AccAnnotation).ClassFlagNames()
	want := []string{"ACC_PUBLIC", "ACC_INTERFACE", "ACC_ABSTRACT", "ACC_ANNOTATION"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ClassFlagNames() = %v, want %v", got, want)
	}
	if got := AccessFlags(0).ClassFlagNames(); len(got) != 0 {
		t.Errorf("ClassFlagNames() of zero = %v, want none", got)
	}
}
