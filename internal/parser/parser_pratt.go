package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"toyc/grammar"
	"toyc/internal/ast"
	"toyc/token"
)

// converter turns the participle parse tree into the AST
type converter struct {
	errors []ParseError
}

func positionOf(pos lexer.Position) ast.Position {
	return ast.Position{
		Filename: pos.Filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}

func (c *converter) errorf(pos lexer.Position, format string, args ...any) {
	c.errors = append(c.errors, ParseError{
		Message:  fmt.Sprintf(format, args...),
		Position: positionOf(pos),
		Length:   1,
	})
}

func (c *converter) program(p *grammar.Program) *ast.Block {
	return &ast.Block{
		Pos:        positionOf(p.Pos),
		Statements: c.statements(p.Statements),
	}
}

func (c *converter) statements(stmts []*grammar.Statement) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		if stmt := c.statement(s); stmt != nil {
			out = append(out, stmt)
		}
	}
	return out
}

func (c *converter) statement(s *grammar.Statement) ast.Stmt {
	switch {
	case s.Function != nil:
		return c.function(s.Function)
	case s.Variable != nil:
		return c.variable(s.Variable)
	case s.Expr != nil:
		return &ast.ExpressionStatement{Expr: c.expr(s.Expr)}
	}
	c.errorf(s.Pos, "empty statement")
	return nil
}

func (c *converter) function(f *grammar.FunctionDecl) *ast.FunctionDeclaration {
	params := make([]*ast.VariableDeclaration, len(f.Params))
	for i, p := range f.Params {
		params[i] = &ast.VariableDeclaration{
			Pos:  positionOf(p.Pos),
			Type: c.ident(p.Type),
			Name: c.ident(p.Name),
		}
	}

	return &ast.FunctionDeclaration{
		Pos:        positionOf(f.Pos),
		ReturnType: c.ident(f.ReturnType),
		Name:       c.ident(f.Name),
		Params:     params,
		Body: &ast.Block{
			Pos:        positionOf(f.Body.Pos),
			Statements: c.statements(f.Body.Statements),
		},
	}
}

func (c *converter) variable(v *grammar.VariableDecl) *ast.VariableDeclaration {
	decl := &ast.VariableDeclaration{
		Pos:  positionOf(v.Pos),
		Type: c.ident(v.Type),
		Name: c.ident(v.Name),
	}
	if v.Init != nil {
		decl.Init = c.expr(v.Init)
	}
	return decl
}

func (c *converter) ident(id *grammar.Ident) *ast.Identifier {
	return &ast.Identifier{Pos: positionOf(id.Pos), Name: id.Name}
}

func (c *converter) expr(e *grammar.Expr) ast.Expr {
	switch {
	case e.Assignment != nil:
		return &ast.Assignment{
			Pos:    positionOf(e.Assignment.Pos),
			Target: c.ident(e.Assignment.Target),
			Value:  c.expr(e.Assignment.Value),
		}
	case e.Binary != nil:
		return c.binary(e.Binary)
	}
	c.errorf(e.Pos, "empty expression")
	return &ast.IntegerLiteral{Pos: positionOf(e.Pos)}
}

// binary rebuilds operator precedence over the flat operand/operator list
func (c *converter) binary(b *grammar.BinaryExpr) ast.Expr {
	left := c.primary(b.Left)
	for _, op := range b.Ops {
		if token.LookupOperator(op.Operator) == token.ILLEGAL {
			c.errorf(op.Pos, "unknown operator %q", op.Operator)
			return left
		}
	}

	s := &opStream{ops: b.Ops}
	return c.parsePrattExpr(s, left, token.LOWEST+1)
}

type opStream struct {
	ops []*grammar.BinOp
	i   int
}

func (s *opStream) peek() (token.Operator, bool) {
	if s.i >= len(s.ops) {
		return token.ILLEGAL, false
	}
	return token.LookupOperator(s.ops[s.i].Operator), true
}

func (c *converter) parsePrattExpr(s *opStream, left ast.Expr, minPrec int) ast.Expr {
	for {
		op, ok := s.peek()
		if !ok || op.Precedence() < minPrec {
			return left
		}

		pos := s.ops[s.i].Pos
		right := c.primary(s.ops[s.i].Right)
		s.i++

		for {
			next, ok := s.peek()
			if !ok || next.Precedence() <= op.Precedence() {
				break
			}
			right = c.parsePrattExpr(s, right, op.Precedence()+1)
		}

		left = &ast.BinaryOperator{
			Pos:   positionOf(pos),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
}

func (c *converter) primary(p *grammar.PrimaryExpr) ast.Expr {
	switch {
	case p.Call != nil:
		args := make([]ast.Expr, len(p.Call.Args))
		for i, arg := range p.Call.Args {
			args[i] = c.expr(arg)
		}
		return &ast.MethodCall{
			Pos:    positionOf(p.Call.Pos),
			Callee: c.ident(p.Call.Name),
			Args:   args,
		}
	case p.Double != nil:
		return &ast.DoubleLiteral{Pos: positionOf(p.Pos), Value: *p.Double}
	case p.Int != nil:
		return &ast.IntegerLiteral{Pos: positionOf(p.Pos), Value: *p.Int}
	case p.Ident != nil:
		return &ast.Identifier{Pos: positionOf(p.Pos), Name: *p.Ident}
	case p.Parens != nil:
		return c.expr(p.Parens)
	}
	c.errorf(p.Pos, "empty operand")
	return &ast.IntegerLiteral{Pos: positionOf(p.Pos)}
}
