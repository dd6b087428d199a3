package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	diag "toyc/internal/errors"
	"toyc/internal/parser"
)

// ConvertParseErrors transforms parser errors into LSP diagnostics for IDE display.
func ConvertParseErrors(parseErrors []parser.ParseError) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(parseErrors))

	for _, parseErr := range parseErrors {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    span(parseErr.Position.Line, parseErr.Position.Column, parseErr.Length),
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Code:     &protocol.IntegerOrString{Value: diag.ErrorParse},
			Source:   ptrString("toyc-parser"),
			Message:  parseErr.Message,
		})
	}

	return diagnostics
}

// ConvertCompilerErrors transforms code generation diagnostics into LSP
// diagnostics. Suggestions and notes are folded into the message.
func ConvertCompilerErrors(errs []diag.CompilerError) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(errs))

	for _, e := range errs {
		message := e.Message
		for _, s := range e.Suggestions {
			message += "\n" + s
		}
		for _, n := range e.Notes {
			message += "\nnote: " + n
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    span(e.Position.Line, e.Position.Column, e.Length),
			Severity: ptrSeverity(severityOf(e.Level)),
			Code:     &protocol.IntegerOrString{Value: e.Code},
			Source:   ptrString("toyc"),
			Message:  message,
		})
	}

	return diagnostics
}

func severityOf(level diag.ErrorLevel) protocol.DiagnosticSeverity {
	switch level {
	case diag.Warning:
		return protocol.DiagnosticSeverityWarning
	case diag.Note:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}

// span converts a 1-based line and column into a single-line LSP range
func span(line, column, length int) protocol.Range {
	if length <= 0 {
		length = 1
	}
	if line < 1 {
		line = 1
	}
	if column < 1 {
		column = 1
	}
	start := protocol.Position{Line: uint32(line - 1), Character: uint32(column - 1)}
	end := protocol.Position{Line: start.Line, Character: start.Character + uint32(length)}
	return protocol.Range{Start: start, End: end}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
