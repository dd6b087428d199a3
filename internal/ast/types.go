package ast

type NodeType int

const (
	ILLEGAL NodeType = iota

	// Expressions
	INTEGER_LITERAL
	DOUBLE_LITERAL
	IDENTIFIER
	METHOD_CALL
	BINARY_OPERATOR
	ASSIGNMENT

	// Statements
	BLOCK
	EXPRESSION_STATEMENT
	VARIABLE_DECLARATION
	FUNCTION_DECLARATION
)

var nodeTypeNames = [...]string{
	ILLEGAL:              "ILLEGAL",
	INTEGER_LITERAL:      "IntegerLiteral",
	DOUBLE_LITERAL:       "DoubleLiteral",
	IDENTIFIER:           "Identifier",
	METHOD_CALL:          "MethodCall",
	BINARY_OPERATOR:      "BinaryOperator",
	ASSIGNMENT:           "Assignment",
	BLOCK:                "Block",
	EXPRESSION_STATEMENT: "ExpressionStatement",
	VARIABLE_DECLARATION: "VariableDeclaration",
	FUNCTION_DECLARATION: "FunctionDeclaration",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return "ILLEGAL"
	}
	return nodeTypeNames[t]
}
