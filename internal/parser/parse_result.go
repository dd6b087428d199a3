package parser

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"

	"toyc/internal/ast"
)

// ParseError is a syntax error located in the source
type ParseError struct {
	Message  string
	Position ast.Position
	Length   int
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

// ParseResult contains the full parsing result
type ParseResult struct {
	Program     *ast.Block
	ParseErrors []ParseError
}

// OK reports whether the source parsed without errors
func (pr *ParseResult) OK() bool {
	return pr.Program != nil && len(pr.ParseErrors) == 0
}

func toParseError(filename string, err error) ParseError {
	var pe participle.Error
	if errors.As(err, &pe) {
		pos := pe.Position()
		if pos.Filename == "" {
			pos.Filename = filename
		}
		return ParseError{
			Message:  pe.Message(),
			Position: positionOf(pos),
			Length:   1,
		}
	}
	return ParseError{
		Message:  err.Error(),
		Position: ast.Position{Filename: filename, Line: 1, Column: 1},
		Length:   1,
	}
}
