package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// PrintProgram renders a root block as source, one statement per line
func PrintProgram(root *Block) string {
	if root == nil {
		return ""
	}
	var b strings.Builder
	for _, stmt := range root.Statements {
		b.WriteString(stmt.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (l *IntegerLiteral) String() string {
	return strconv.FormatInt(l.Value, 10)
}

func (l *DoubleLiteral) String() string {
	s := strconv.FormatFloat(l.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

func (i *Identifier) String() string {
	if i == nil {
		return "<nil>"
	}
	return i.Name
}

func (m *MethodCall) String() string {
	args := make([]string, len(m.Args))
	for i, arg := range m.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", m.Callee, strings.Join(args, ", "))
}

func (b *BinaryOperator) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

func (a *Assignment) String() string {
	return fmt.Sprintf("%s = %s", a.Target, a.Value)
}

func (b *Block) String() string {
	if len(b.Statements) == 0 {
		return "{}"
	}

	var out strings.Builder
	out.WriteString("{\n")
	for _, stmt := range b.Statements {
		out.WriteString("  " + strings.ReplaceAll(stmt.String(), "\n", "\n  ") + "\n")
	}
	out.WriteString("}")
	return out.String()
}

func (e *ExpressionStatement) String() string {
	if e.Expr == nil {
		return ""
	}
	return e.Expr.String()
}

func (v *VariableDeclaration) String() string {
	if v.Init == nil {
		return fmt.Sprintf("%s %s", v.Type, v.Name)
	}
	return fmt.Sprintf("%s %s = %s", v.Type, v.Name, v.Init)
}

func (f *FunctionDeclaration) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}

	body := "{}"
	if f.Body != nil {
		body = f.Body.String()
	}
	return fmt.Sprintf("%s %s(%s) %s", f.ReturnType, f.Name, strings.Join(params, ", "), body)
}
