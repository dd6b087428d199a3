package ast

type Node interface {
	NodePos() Position
	NodeType() NodeType
	String() string
}

func (l *IntegerLiteral) NodePos() Position { return l.Pos }
func (*IntegerLiteral) NodeType() NodeType  { return INTEGER_LITERAL }

func (l *DoubleLiteral) NodePos() Position { return l.Pos }
func (*DoubleLiteral) NodeType() NodeType  { return DOUBLE_LITERAL }

func (i *Identifier) NodePos() Position { return i.Pos }
func (*Identifier) NodeType() NodeType  { return IDENTIFIER }

func (m *MethodCall) NodePos() Position { return m.Pos }
func (*MethodCall) NodeType() NodeType  { return METHOD_CALL }

func (b *BinaryOperator) NodePos() Position { return b.Pos }
func (*BinaryOperator) NodeType() NodeType  { return BINARY_OPERATOR }

func (a *Assignment) NodePos() Position { return a.Pos }
func (*Assignment) NodeType() NodeType  { return ASSIGNMENT }

func (b *Block) NodePos() Position { return b.Pos }
func (*Block) NodeType() NodeType  { return BLOCK }

func (e *ExpressionStatement) NodePos() Position {
	if e.Expr == nil {
		return Position{}
	}
	return e.Expr.NodePos()
}
func (*ExpressionStatement) NodeType() NodeType { return EXPRESSION_STATEMENT }

func (v *VariableDeclaration) NodePos() Position { return v.Pos }
func (*VariableDeclaration) NodeType() NodeType  { return VARIABLE_DECLARATION }

func (f *FunctionDeclaration) NodePos() Position { return f.Pos }
func (*FunctionDeclaration) NodeType() NodeType  { return FUNCTION_DECLARATION }
