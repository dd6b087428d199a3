package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var ToyLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"Comment", `//[^\n]*`, nil},

		// Numeric literals, floats first so "1.5" is not split
		{"Float", `[0-9]+\.[0-9]*`, nil},
		{"Int", `[0-9]+`, nil},

		// Type names, variables and functions
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		// Binary operators, two character forms first
		{"Operator", `(==|!=|<=|>=|[-+*/%<>])`, nil},

		// Punctuation (must come after operators so "==" wins over "=")
		{"Punctuation", `[=(){},;]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
