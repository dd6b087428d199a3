package parser

import (
	"fmt"
	"os"

	"toyc/grammar"
)

// ParseFile reads and parses a source file
func ParseFile(path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return ParseSource(path, string(source)), nil
}

// ParseSource parses source text into the root block of a program. On a
// syntax error Program is nil and ParseErrors holds the failure.
func ParseSource(sourceName string, source string) *ParseResult {
	tree, err := grammar.ParseString(sourceName, source)
	if err != nil {
		return &ParseResult{ParseErrors: []ParseError{toParseError(sourceName, err)}}
	}

	c := &converter{}
	root := c.program(tree)
	if len(c.errors) > 0 {
		return &ParseResult{ParseErrors: c.errors}
	}
	return &ParseResult{Program: root}
}
