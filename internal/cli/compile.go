package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"toyc/internal/ast"
	"toyc/internal/codegen"
	diag "toyc/internal/errors"
	"toyc/internal/parser"
)

var log = commonlog.GetLogger("toyc.cli")

// compilation is one source file taken through parsing and code generation
type compilation struct {
	path     string
	source   string
	root     *ast.Block
	unit     *codegen.Unit
	reporter *diag.ErrorReporter
}

// parseFile reads and parses path, writing syntax errors to errOut
func parseFile(path string, errOut io.Writer) (*compilation, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read file", err)
	}

	c := &compilation{
		path:     path,
		source:   string(source),
		reporter: diag.NewErrorReporter(path, string(source)),
	}

	result := parser.ParseSource(path, c.source)
	if !result.OK() {
		for _, pe := range result.ParseErrors {
			fmt.Fprint(errOut, c.reporter.FormatError(diag.ParseFailure(pe.Message, pe.Position, pe.Length)))
		}
		return nil, NewExitError(ExitFailure, fmt.Sprintf("%d syntax error(s) in %s", len(result.ParseErrors), path))
	}

	c.root = result.Program
	log.Debugf("parsed %s: %d statements", path, len(c.root.Statements))
	return c, nil
}

// compileFile parses path and generates its module, writing every
// diagnostic to errOut
func compileFile(path string, opts codegen.Options, errOut io.Writer) (*compilation, error) {
	c, err := parseFile(path, errOut)
	if err != nil {
		return nil, err
	}

	c.unit = codegen.New(opts)
	genErr := c.unit.GenerateCode(c.root)
	fmt.Fprint(errOut, c.reporter.FormatAll(c.unit.Diagnostics()))

	if genErr != nil {
		return c, WrapExitError(ExitFailure, "compilation failed", genErr)
	}
	return c, nil
}
