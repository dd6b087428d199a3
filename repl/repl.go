// Package repl SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"toyc/internal/ast"
	"toyc/internal/codegen"
	"toyc/internal/config"
	"toyc/internal/engine"
	diag "toyc/internal/errors"
	"toyc/internal/parser"
)

const PROMPT = ">> "

// ErrQuit is returned by Eval when the user asks to leave
var ErrQuit = errors.New("repl: quit")

// Session accumulates the statements entered so far. Every accepted line
// recompiles and reruns the whole program; only output and diagnostics that
// were not shown before are printed.
type Session struct {
	cfg        *config.Config
	statements []ast.Stmt
	seen       int
	reported   int
	lastIR     string
}

// NewSession creates an empty session
func NewSession(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Session{cfg: cfg}
}

// Eval handles one input line and writes its result to out. A line that
// fails to parse or compile is discarded.
func (s *Session) Eval(line string, out io.Writer) error {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return nil
	case ":quit", ":q":
		return ErrQuit
	case ":reset":
		s.statements, s.seen, s.reported, s.lastIR = nil, 0, 0, ""
		fmt.Fprintln(out, "session cleared")
		return nil
	case ":ast":
		fmt.Fprint(out, ast.PrintProgram(&ast.Block{Statements: s.statements}))
		return nil
	case ":ir":
		fmt.Fprint(out, s.lastIR)
		return nil
	}

	result := parser.ParseSource("<repl>", line)
	reporter := diag.NewErrorReporter("<repl>", line)
	if !result.OK() {
		for _, pe := range result.ParseErrors {
			fmt.Fprint(out, reporter.FormatError(diag.ParseFailure(pe.Message, pe.Position, pe.Length)))
		}
		return nil
	}

	candidate := append(append([]ast.Stmt(nil), s.statements...), result.Program.Statements...)
	unit := codegen.New(s.cfg.CodegenOptions(nil))
	err := unit.GenerateCode(&ast.Block{Statements: candidate})

	// accepted lines are lowered first and report the same diagnostics every
	// time, so only the tail belongs to this line
	diags := unit.Diagnostics()
	fresh := diags[min(s.reported, len(diags)):]
	fmt.Fprint(out, reporter.FormatAll(fresh))
	if err != nil {
		return nil
	}

	var programOut bytes.Buffer
	eng := engine.New(unit.Module(), s.cfg.EngineOptions(&programOut)...)
	if _, err := unit.RunCode(eng); err != nil {
		fmt.Fprintln(out, color.RedString("runtime error: %v", err))
		return nil
	}

	s.statements = candidate
	s.reported = len(diags)
	s.lastIR = unit.Module().String()
	if programOut.Len() > s.seen {
		out.Write(programOut.Bytes()[s.seen:])
	}
	s.seen = programOut.Len()
	return nil
}

// Start reads lines from in until it is exhausted or the user quits
func Start(in io.Reader, out io.Writer, cfg *config.Config) error {
	session := NewSession(cfg)
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		if err := session.Eval(scanner.Text(), out); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			return err
		}
	}
}
