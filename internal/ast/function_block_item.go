package ast

type Stmt interface {
	Node
	isStmt()
}

func (*ExpressionStatement) isStmt() {}
func (*VariableDeclaration) isStmt() {}
func (*FunctionDeclaration) isStmt() {}
