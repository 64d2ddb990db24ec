package classfile

// ValidateClassAccessFlags checks the combination rules for the access_flags
// item of a ClassFile. Bits without an assigned class-level meaning are
// ignored.
func ValidateClassAccessFlags(f AccessFlags) error {
	if f.IsInterface() {
		switch {
		case !f.IsAbstract():
			return &AccessFlagsError{Flags: f, Reason: "interface must be abstract"}
		case f.IsFinal():
			return &AccessFlagsError{Flags: f, Reason: "interface must not be final"}
		case f.IsSuper():
			return &AccessFlagsError{Flags: f, Reason: "interface must not set ACC_SUPER"}
		case f.IsEnum():
			return &AccessFlagsError{Flags: f, Reason: "interface must not be an enum"}
		}
		return nil
	}

	if f.IsFinal() && f.IsAbstract() {
		return &AccessFlagsError{Flags: f, Reason: "class cannot be both final and abstract"}
	}
	if f.IsAnnotation() {
		return &AccessFlagsError{Flags: f, Reason: "annotation requires ACC_INTERFACE"}
	}
	return nil
}
