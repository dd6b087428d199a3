package codegen

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"

	"toyc/internal/ast"
	"toyc/internal/engine"
	"toyc/internal/stdlib"
	toytypes "toyc/internal/types"
)

var (
	// ErrNotGenerated is returned by RunCode when no module was generated
	// successfully
	ErrNotGenerated = errors.New("codegen: no generated code to run")
	// ErrAlreadyGenerated is returned when GenerateCode is called twice on
	// one unit
	ErrAlreadyGenerated = errors.New("codegen: unit already generated")
)

// GenerateCode lowers root as the body of the implicit entry function. With
// ContinueOnError the module is completed and printed even when errors were
// reported, and the error-level diagnostics are returned afterwards.
func (u *Unit) GenerateCode(root *ast.Block) error {
	if u.entry != nil {
		return ErrAlreadyGenerated
	}
	u.log.Info("generating code")

	if u.opts.Runtime {
		u.declareRuntime()
	}

	u.entry = u.EnterFunction(EntryName, types.Void)
	if _, err := u.lowerBlock(root); err != nil {
		u.frames = nil
		return err
	}
	u.LeaveFunction(nil)
	u.log.Infof("code generation finished with %d diagnostics", len(u.diags))

	if u.opts.Output != nil {
		if _, err := fmt.Fprint(u.opts.Output, u.module.String()); err != nil {
			return fmt.Errorf("codegen: printing module: %w", err)
		}
	}

	if errs := u.diags.Errors(); len(errs) > 0 {
		return errs
	}
	u.generated = true
	return nil
}

// declareRuntime adds the runtime library functions as external declarations
func (u *Unit) declareRuntime() {
	for _, def := range stdlib.Functions() {
		params := make([]*ir.Param, len(def.Parameters))
		for i, p := range def.Parameters {
			params[i] = ir.NewParam(p.Name, toytypes.Resolve(string(p.Type)))
		}
		u.module.NewFunc(def.Name, toytypes.Resolve(string(def.ReturnType)), params...)
		u.log.Debugf("declared runtime function %s", def.Name)
	}
}

// RunCode executes the entry function on eng, which must have been built
// from this unit's module
func (u *Unit) RunCode(eng *engine.Engine) (engine.GenericValue, error) {
	if !u.generated {
		return engine.GenericValue{}, ErrNotGenerated
	}
	u.log.Info("running code")
	return eng.RunFunction(u.entry)
}
