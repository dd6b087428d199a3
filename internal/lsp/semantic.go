package lsp

import (
	"sort"

	"toyc/internal/ast"
)

// SemanticTokenTypes is the token legend advertised to clients
var SemanticTokenTypes = []string{
	"type",
	"function",
	"variable",
	"parameter",
	"number",
}

// SemanticTokenModifiers is the modifier legend advertised to clients
var SemanticTokenModifiers = []string{
	"declaration",
}

// SemanticToken represents a single LSP semantic token entry
// Line and StartChar are 0-based positions
// TokenType is an index into SemanticTokenTypes
// TokenModifiers is a bitmask based on SemanticTokenModifiers
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

func collectSemanticTokens(root *ast.Block) []SemanticToken {
	var tokens []SemanticToken

	if root == nil {
		return tokens
	}

	for _, stmt := range root.Statements {
		tokens = append(tokens, walkStmt(stmt)...)
	}

	// the delta encoding needs source order
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Line != tokens[j].Line {
			return tokens[i].Line < tokens[j].Line
		}
		return tokens[i].StartChar < tokens[j].StartChar
	})
	return tokens
}

func walkStmt(stmt ast.Stmt) []SemanticToken {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		return walkExpr(s.Expr)
	case *ast.VariableDeclaration:
		return walkVariable(s, "variable")
	case *ast.FunctionDeclaration:
		return walkFunction(s)
	}
	return nil
}

func walkFunction(f *ast.FunctionDeclaration) []SemanticToken {
	var tokens []SemanticToken

	tokens = append(tokens, makeToken(f.ReturnType, "type", 0)...)
	tokens = append(tokens, makeToken(f.Name, "function", 1)...)

	for _, param := range f.Params {
		tokens = append(tokens, walkVariable(param, "parameter")...)
	}

	if f.Body != nil {
		for _, stmt := range f.Body.Statements {
			tokens = append(tokens, walkStmt(stmt)...)
		}
	}

	return tokens
}

func walkVariable(v *ast.VariableDeclaration, kind string) []SemanticToken {
	var tokens []SemanticToken

	tokens = append(tokens, makeToken(v.Type, "type", 0)...)
	tokens = append(tokens, makeToken(v.Name, kind, 1)...)
	tokens = append(tokens, walkExpr(v.Init)...)

	return tokens
}

func walkExpr(expr ast.Expr) []SemanticToken {
	switch e := expr.(type) {
	case *ast.Identifier:
		return makeToken(e, "variable", 0)
	case *ast.IntegerLiteral:
		return literalToken(e)
	case *ast.DoubleLiteral:
		return literalToken(e)
	case *ast.BinaryOperator:
		return append(walkExpr(e.Left), walkExpr(e.Right)...)
	case *ast.Assignment:
		return append(makeToken(e.Target, "variable", 0), walkExpr(e.Value)...)
	case *ast.MethodCall:
		tokens := makeToken(e.Callee, "function", 0)
		for _, arg := range e.Args {
			tokens = append(tokens, walkExpr(arg)...)
		}
		return tokens
	}
	return nil
}

// makeToken creates a semantic token spanning an identifier
func makeToken(id *ast.Identifier, tokenType string, declModifier int) []SemanticToken {
	if id == nil || id.Name == "" {
		return nil
	}
	return []SemanticToken{newToken(id.Pos, len(id.Name), tokenType, declModifier)}
}

func literalToken(lit ast.Node) []SemanticToken {
	return []SemanticToken{newToken(lit.NodePos(), len(lit.String()), "number", 0)}
}

func newToken(pos ast.Position, length int, tokenType string, declModifier int) SemanticToken {
	return SemanticToken{
		Line:           uint32(pos.Line - 1),   // LSP uses 0-based line numbers
		StartChar:      uint32(pos.Column - 1), // LSP uses 0-based column numbers
		Length:         uint32(length),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: declModifier << indexOf("declaration", SemanticTokenModifiers),
	}
}

// indexOf returns the index of a string in a slice, or 0 if not found
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0
}
