package ast

type Expr interface {
	Node
	isExpr()
}

func (*IntegerLiteral) isExpr() {}

func (*DoubleLiteral) isExpr() {}

func (*Identifier) isExpr() {}

func (*MethodCall) isExpr() {}

func (*BinaryOperator) isExpr() {}

func (*Assignment) isExpr() {}
