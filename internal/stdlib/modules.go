package stdlib

import (
	"fmt"
	"io"
	"math/big"
	"sort"

	"toyc/internal/builtins"
)

// FunctionDefinition defines a runtime library function callable from programs
type FunctionDefinition struct {
	Name       string                // Function name (e.g., "echo")
	Parameters []ParameterDefinition // Function parameters
	ReturnType builtins.BuiltinType  // Return type
	Doc        string
}

// ParameterDefinition defines a function parameter
type ParameterDefinition struct {
	Name string
	Type builtins.BuiltinType
}

// Argument is a runtime argument handed to a library implementation.
// Exactly one of Int and Float is meaningful, matching the parameter type.
type Argument struct {
	Int   int64
	Float *big.Float
}

// Implementation executes a library function, writing program output to out
type Implementation func(out io.Writer, args []Argument) error

var functions = map[string]FunctionDefinition{
	"echo": {
		Name:       "echo",
		Parameters: []ParameterDefinition{{Name: "value", Type: builtins.Int}},
		ReturnType: builtins.Void,
		Doc:        "prints an integer followed by a newline",
	},
	"echod": {
		Name:       "echod",
		Parameters: []ParameterDefinition{{Name: "value", Type: builtins.Double}},
		ReturnType: builtins.Void,
		Doc:        "prints a double followed by a newline",
	},
}

var implementations = map[string]Implementation{
	"echo": func(out io.Writer, args []Argument) error {
		_, err := fmt.Fprintf(out, "%d\n", args[0].Int)
		return err
	},
	"echod": func(out io.Writer, args []Argument) error {
		f := args[0].Float
		if f == nil {
			f = new(big.Float)
		}
		_, err := fmt.Fprintf(out, "%s\n", f.Text('g', 17))
		return err
	},
}

// Functions returns the library definitions sorted by name
func Functions() []FunctionDefinition {
	out := make([]FunctionDefinition, 0, len(functions))
	for _, fn := range functions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GetFunction returns the definition of a library function
func GetFunction(name string) (FunctionDefinition, bool) {
	fn, ok := functions[name]
	return fn, ok
}

// GetImplementation returns the Go implementation of a library function
func GetImplementation(name string) (Implementation, bool) {
	impl, ok := implementations[name]
	return impl, ok
}
