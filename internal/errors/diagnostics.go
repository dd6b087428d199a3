package errors

import (
	"fmt"
	"sort"
	"strings"

	"toyc/internal/ast"
)

// DiagnosticBuilder provides a fluent interface for creating diagnostics with suggestions
type DiagnosticBuilder struct {
	err CompilerError
}

// NewDiagnostic creates a new diagnostic builder at the given level
func NewDiagnostic(level ErrorLevel, code, message string, pos ast.Position) *DiagnosticBuilder {
	return &DiagnosticBuilder{
		err: CompilerError{
			Level:    level,
			Code:     code,
			Message:  message,
			Position: pos,
			Length:   1,
		},
	}
}

// WithLength sets the length of the error span
func (b *DiagnosticBuilder) WithLength(length int) *DiagnosticBuilder {
	b.err.Length = length
	return b
}

// WithSuggestion adds a suggestion to the error
func (b *DiagnosticBuilder) WithSuggestion(message string) *DiagnosticBuilder {
	b.err.Suggestions = append(b.err.Suggestions, message)
	return b
}

// WithNote adds a note to the error
func (b *DiagnosticBuilder) WithNote(note string) *DiagnosticBuilder {
	b.err.Notes = append(b.err.Notes, note)
	return b
}

// WithHelp adds help text to the error
func (b *DiagnosticBuilder) WithHelp(help string) *DiagnosticBuilder {
	b.err.HelpText = help
	return b
}

// Build returns the completed compiler error
func (b *DiagnosticBuilder) Build() CompilerError {
	return b.err
}

// UndeclaredVariable reports a name missing from the current frame. known
// lists the names the frame does bind, used for suggestions.
func UndeclaredVariable(name string, pos ast.Position, known []string) CompilerError {
	builder := NewDiagnostic(Error, ErrorUndeclaredVariable, fmt.Sprintf("undeclared variable '%s'", name), pos).
		WithLength(len(name))

	if similar := FindSimilarNames(name, known); len(similar) > 0 {
		builder = builder.WithSuggestion(didYouMean(similar))
	} else {
		builder = builder.WithSuggestion("declare the variable before use, e.g. 'int " + name + " = 0'")
	}

	return builder.
		WithNote("only variables declared in the enclosing function are visible").
		Build()
}

// MissingFunction reports a call to a name that is not in the module
func MissingFunction(name string, pos ast.Position, known []string) CompilerError {
	builder := NewDiagnostic(Error, ErrorMissingFunction, fmt.Sprintf("no such function '%s'", name), pos).
		WithLength(len(name))

	if similar := FindSimilarNames(name, known); len(similar) > 0 {
		builder = builder.WithSuggestion(didYouMean(similar))
	}

	return builder.WithHelp("functions must be declared before they are called").Build()
}

// UnresolvedType reports a type name that degrades to void. Whether it fails
// compilation depends on level.
func UnresolvedType(name string, pos ast.Position, level ErrorLevel) CompilerError {
	return NewDiagnostic(level, ErrorUnresolvedType, fmt.Sprintf("unknown type '%s', treating it as void", name), pos).
		WithLength(len(name)).
		WithSuggestion(didYouMean(FindSimilarNames(name, []string{"int", "double", "void"}))).
		WithNote("the builtin types are int, double and void").
		Build()
}

// InvalidOperands reports a binary operator applied to unsupported operand types
func InvalidOperands(op, left, right string, pos ast.Position) CompilerError {
	return NewDiagnostic(Error, ErrorInvalidOperands,
		fmt.Sprintf("operator '%s' is not defined for %s and %s", op, left, right), pos).
		WithLength(len(op)).
		WithHelp("arithmetic and comparisons accept int and double operands").
		Build()
}

// TypeMismatch reports a value that cannot be converted to the expected type
func TypeMismatch(expected, actual string, pos ast.Position) CompilerError {
	builder := NewDiagnostic(Error, ErrorTypeMismatch,
		fmt.Sprintf("type mismatch: expected %s, found %s", expected, actual), pos)

	if actual == "void" {
		builder = builder.WithNote("calls to void functions produce no value")
	}
	return builder.Build()
}

// ArgumentMismatch reports a call with the wrong number of arguments
func ArgumentMismatch(name string, expected, actual int, pos ast.Position) CompilerError {
	return NewDiagnostic(Error, ErrorArgumentMismatch,
		fmt.Sprintf("function '%s' expects %d arguments, got %d", name, expected, actual), pos).
		WithLength(len(name)).
		WithSuggestion(fmt.Sprintf("provide exactly %d argument(s)", expected)).
		Build()
}

// DuplicateFunction reports a second declaration of a function name
func DuplicateFunction(name string, pos ast.Position) CompilerError {
	return NewDiagnostic(Error, ErrorDuplicateFunction, fmt.Sprintf("function '%s' is already declared", name), pos).
		WithLength(len(name)).
		WithSuggestion(fmt.Sprintf("rename the second '%s'", name)).
		WithNote("function names share one module-wide namespace").
		Build()
}

// DuplicateParameter reports a parameter name repeated in one signature
func DuplicateParameter(function, name string, pos ast.Position) CompilerError {
	return NewDiagnostic(Error, ErrorDuplicateParameter,
		fmt.Sprintf("parameter '%s' of function '%s' is declared twice", name, function), pos).
		WithLength(len(name)).
		WithSuggestion(fmt.Sprintf("rename the second '%s'", name)).
		Build()
}

// ParseFailure wraps a syntax error as a diagnostic
func ParseFailure(message string, pos ast.Position, length int) CompilerError {
	return NewDiagnostic(Error, ErrorParse, message, pos).WithLength(length).Build()
}

func didYouMean(similar []string) string {
	switch len(similar) {
	case 0:
		return "use one of the builtin types"
	case 1:
		return fmt.Sprintf("did you mean '%s'?", similar[0])
	}
	return fmt.Sprintf("did you mean one of: '%s'?", strings.Join(similar, "', '"))
}

// FindSimilarNames returns the candidates within edit distance 2 of target,
// sorted for stable output
func FindSimilarNames(target string, candidates []string) []string {
	var similar []string

	for _, candidate := range candidates {
		if candidate == target {
			continue
		}
		if levenshteinDistance(target, candidate) <= 2 && len(candidate) > 2 {
			similar = append(similar, candidate)
		}
	}

	sort.Strings(similar)
	return similar
}

// Simple Levenshtein distance implementation for finding similar names
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
