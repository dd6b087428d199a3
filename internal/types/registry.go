package types

import (
	irtypes "github.com/llir/llvm/ir/types"

	"toyc/internal/builtins"
)

// Resolve maps a source type name to its IR type. Unknown names degrade to
// void; callers that need to tell the difference use Lookup.
func Resolve(name string) irtypes.Type {
	t, _ := Lookup(name)
	return t
}

// Lookup maps a source type name to its IR type and reports whether the name
// is a known builtin
func Lookup(name string) (irtypes.Type, bool) {
	switch builtins.BuiltinType(name) {
	case builtins.Int:
		return irtypes.I64, true
	case builtins.Double:
		return irtypes.FP128, true
	case builtins.Void:
		return irtypes.Void, true
	}
	return irtypes.Void, false
}

// Name returns the source spelling of an IR type, or its IR spelling when the
// language has no name for it
func Name(t irtypes.Type) string {
	switch {
	case t == nil:
		return "<none>"
	case t.Equal(irtypes.I64):
		return string(builtins.Int)
	case t.Equal(irtypes.FP128):
		return string(builtins.Double)
	case t.Equal(irtypes.Void):
		return string(builtins.Void)
	}
	return t.String()
}

// IsInt reports whether t is the language's integer type
func IsInt(t irtypes.Type) bool {
	return t != nil && t.Equal(irtypes.I64)
}

// IsDouble reports whether t is the language's floating point type
func IsDouble(t irtypes.Type) bool {
	return t != nil && t.Equal(irtypes.FP128)
}

// IsVoid reports whether t is void
func IsVoid(t irtypes.Type) bool {
	return t != nil && t.Equal(irtypes.Void)
}
