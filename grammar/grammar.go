package grammar

import "github.com/alecthomas/participle/v2/lexer"

type Program struct {
	Pos        lexer.Position
	Statements []*Statement `@@*`
}

type Statement struct {
	Pos      lexer.Position
	Function *FunctionDecl `(  @@`
	Variable *VariableDecl ` | @@`
	Expr     *Expr         ` | @@ ) ";"?`
}

type FunctionDecl struct {
	Pos        lexer.Position
	ReturnType *Ident   `@@`
	Name       *Ident   `@@ "("`
	Params     []*Param `[ @@ { "," @@ } ] ")"`
	Body       *Block   `@@`
}

type Param struct {
	Pos  lexer.Position
	Type *Ident `@@`
	Name *Ident `@@`
}

// Ident is a name together with where it was written
type Ident struct {
	Pos  lexer.Position
	Name string `@Ident`
}

type Block struct {
	Pos        lexer.Position
	Statements []*Statement `"{" @@* "}"`
}

type VariableDecl struct {
	Pos  lexer.Position
	Type *Ident `@@`
	Name *Ident `@@`
	Init *Expr  `[ "=" @@ ]`
}

type Expr struct {
	Pos        lexer.Position
	Assignment *Assignment `  @@`
	Binary     *BinaryExpr `| @@`
}

type Assignment struct {
	Pos    lexer.Position
	Target *Ident `@@ "="`
	Value  *Expr  `@@`
}

type BinaryExpr struct {
	Pos  lexer.Position
	Left *PrimaryExpr `@@`
	Ops  []*BinOp     `{ @@ }`
}

type BinOp struct {
	Pos      lexer.Position
	Operator string       `@Operator`
	Right    *PrimaryExpr `@@`
}

type PrimaryExpr struct {
	Pos    lexer.Position
	Call   *CallExpr `  @@`
	Double *float64  `| @Float`
	Int    *int64    `| @Int`
	Ident  *string   `| @Ident`
	Parens *Expr     `| "(" @@ ")"`
}

type CallExpr struct {
	Pos  lexer.Position
	Name *Ident  `@@ "("`
	Args []*Expr `[ @@ { "," @@ } ] ")"`
}
