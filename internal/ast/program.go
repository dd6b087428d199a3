package ast

import "toyc/token"

// Position tracks location information for error reporting and tooling
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// IntegerLiteral is a 64-bit integer constant
// Example: "42"
type IntegerLiteral struct {
	Pos   Position
	Value int64
}

// DoubleLiteral is a floating point constant
// Example: "3.25"
type DoubleLiteral struct {
	Pos   Position
	Value float64
}

// Identifier names a variable, a function or a type
// Example: "x", "square", "int"
type Identifier struct {
	Pos  Position
	Name string
}

// MethodCall invokes a function by name
// Example: "square(7)"
type MethodCall struct {
	Pos    Position
	Callee *Identifier
	Args   []Expr
}

// BinaryOperator applies an infix operator to two operands
// Example: "a * b"
type BinaryOperator struct {
	Pos   Position
	Op    token.Operator
	Left  Expr
	Right Expr
}

// Assignment stores a value into a declared variable
// Example: "x = x + 1"
type Assignment struct {
	Pos    Position
	Target *Identifier
	Value  Expr
}

// Block is an ordered sequence of statements. The root of a program is a
// Block, and so is every function body.
type Block struct {
	Pos        Position
	Statements []Stmt
}

// ExpressionStatement evaluates an expression for its effect
type ExpressionStatement struct {
	Expr Expr
}

// VariableDeclaration introduces a typed variable with an optional initializer
// Example: "int x = 5"
type VariableDeclaration struct {
	Pos  Position
	Type *Identifier
	Name *Identifier
	Init Expr // nil when absent
}

// FunctionDeclaration defines a named function
// Example: "int add(int a, int b) { a + b }"
type FunctionDeclaration struct {
	Pos        Position
	ReturnType *Identifier
	Name       *Identifier
	Params     []*VariableDeclaration
	Body       *Block
}
