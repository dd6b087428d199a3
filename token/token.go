// Package token SPDX-License-Identifier: Apache-2.0
package token

// Operator is a binary operator token of the toy language
type Operator string

const (
	ILLEGAL Operator = "ILLEGAL"

	// Arithmetic
	PLUS     Operator = "+"
	MINUS    Operator = "-"
	ASTERISK Operator = "*"
	SLASH    Operator = "/"
	PERCENT  Operator = "%"

	// Relational
	LT     Operator = "<"
	LT_EQ  Operator = "<="
	GT     Operator = ">"
	GT_EQ  Operator = ">="
	EQ     Operator = "=="
	NOT_EQ Operator = "!="
)

// Punctuation that never forms a binary operator
const (
	ASSIGN    = "="
	COMMA     = ","
	SEMICOLON = ";"
	LPAREN    = "("
	RPAREN    = ")"
	LBRACE    = "{"
	RBRACE    = "}"
)

// Binding powers, higher binds tighter
const (
	LOWEST = iota
	EQUALS
	LESSGREATER
	SUM
	PRODUCT
)

var precedences = map[Operator]int{
	EQ:       EQUALS,
	NOT_EQ:   EQUALS,
	LT:       LESSGREATER,
	LT_EQ:    LESSGREATER,
	GT:       LESSGREATER,
	GT_EQ:    LESSGREATER,
	PLUS:     SUM,
	MINUS:    SUM,
	ASTERISK: PRODUCT,
	SLASH:    PRODUCT,
	PERCENT:  PRODUCT,
}

// LookupOperator maps operator text to its token, ILLEGAL when unknown
func LookupOperator(text string) Operator {
	op := Operator(text)
	if _, ok := precedences[op]; ok {
		return op
	}
	return ILLEGAL
}

// Precedence returns the binding power of op, LOWEST for unknown tokens
func (op Operator) Precedence() int {
	if p, ok := precedences[op]; ok {
		return p
	}
	return LOWEST
}

// IsComparison reports whether op yields a truth value
func (op Operator) IsComparison() bool {
	switch op {
	case LT, LT_EQ, GT, GT_EQ, EQ, NOT_EQ:
		return true
	}
	return false
}

func (op Operator) String() string {
	return string(op)
}
