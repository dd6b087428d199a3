package builtins

// BuiltinType represents the built-in type names of the toy language
type BuiltinType string

const (
	Int    BuiltinType = "int"
	Double BuiltinType = "double"
	Void   BuiltinType = "void"
)

// BuiltinTypes contains all valid built-in types
var BuiltinTypes = map[string]bool{
	string(Int):    true,
	string(Double): true,
	string(Void):   true,
}
