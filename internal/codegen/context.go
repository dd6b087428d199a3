package codegen

import (
	"fmt"
	"io"
	"sort"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/tliron/commonlog"

	diag "toyc/internal/errors"
)

// EntryName is the name of the implicit function wrapping the root block
const EntryName = "main"

// entryLabel names the single block of every function. Labels share the
// local namespace with values.
const entryLabel = "entry"

// Policy decides what happens after an error-level diagnostic
type Policy int

const (
	// ContinueOnError records the diagnostic, substitutes a poison value and
	// keeps lowering
	ContinueOnError Policy = iota
	// AbortOnError stops lowering at the first error-level diagnostic
	AbortOnError
)

func (p Policy) String() string {
	switch p {
	case ContinueOnError:
		return "continue"
	case AbortOnError:
		return "abort"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Options configures a compilation unit
type Options struct {
	Policy Policy
	// StrictTypes makes unknown type names errors instead of warnings
	StrictTypes bool
	// Runtime declares the runtime library functions before lowering
	Runtime bool
	// Output receives the printed module after generation, nil to skip
	Output io.Writer
}

// frame is the name to storage mapping of one function activation
type frame struct {
	fn     *ir.Func
	block  *ir.Block
	locals map[string]*ir.InstAlloca
	names  map[string]int
}

// newFrame reserves the block label and gives every parameter a name that is
// unique within fn
func newFrame(fn *ir.Func, block *ir.Block) *frame {
	f := &frame{
		fn:     fn,
		block:  block,
		locals: make(map[string]*ir.InstAlloca),
		names:  map[string]int{entryLabel: 1},
	}
	for _, p := range fn.Params {
		p.SetName(f.uniqueName(p.Name()))
	}
	return f
}

// uniqueName returns name, or name with a numeric suffix when the function
// already has a local called name
func (f *frame) uniqueName(name string) string {
	n := f.names[name]
	f.names[name] = n + 1
	if n == 0 {
		return name
	}
	unique := fmt.Sprintf("%s.%d", name, n)
	if _, taken := f.names[unique]; taken {
		return f.uniqueName(name)
	}
	f.names[unique] = 1
	return unique
}

func (f *frame) boundNames() []string {
	names := make([]string, 0, len(f.locals))
	for name := range f.locals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unit is the compilation unit: it owns the IR module, the stack of scope
// frames and the diagnostics of one compilation. A Unit is not safe for
// concurrent use.
type Unit struct {
	opts      Options
	module    *ir.Module
	frames    []*frame
	entry     *ir.Func
	diags     diag.Diagnostics
	generated bool
	log       commonlog.Logger
}

// New creates an empty compilation unit
func New(opts Options) *Unit {
	return &Unit{
		opts:   opts,
		module: ir.NewModule(),
		log:    commonlog.GetLogger("toyc.codegen"),
	}
}

// Module returns the IR module being built
func (u *Unit) Module() *ir.Module {
	return u.module
}

// Entry returns the implicit entry function, nil before GenerateCode
func (u *Unit) Entry() *ir.Func {
	return u.entry
}

// Diagnostics returns every diagnostic reported so far, in report order
func (u *Unit) Diagnostics() diag.Diagnostics {
	return u.diags
}

// HasErrors reports whether an error-level diagnostic was reported
func (u *Unit) HasErrors() bool {
	return len(u.diags.Errors()) > 0
}

// Depth returns the number of active scope frames
func (u *Unit) Depth() int {
	return len(u.frames)
}

func (u *Unit) top() *frame {
	if len(u.frames) == 0 {
		panic("codegen: no active function")
	}
	return u.frames[len(u.frames)-1]
}

// Block returns the block instructions are currently appended to
func (u *Unit) Block() *ir.Block {
	return u.top().block
}

// Function returns the function currently being generated
func (u *Unit) Function() *ir.Func {
	return u.top().fn
}

// EnterFunction registers a new function with internal linkage, creates its
// entry block and pushes a fresh scope frame bound to that block.
func (u *Unit) EnterFunction(name string, ret types.Type, params ...*ir.Param) *ir.Func {
	fn := u.module.NewFunc(name, ret, params...)
	fn.Linkage = enum.LinkageInternal
	entry := fn.NewBlock(entryLabel)

	u.frames = append(u.frames, newFrame(fn, entry))
	u.log.Debugf("entering function %s (depth %d)", name, len(u.frames))
	return fn
}

// LeaveFunction terminates the current block with an implicit return if it
// has none, then pops the scope frame. Non-void functions return result
// converted to the return type, or zero when result is absent or unusable.
func (u *Unit) LeaveFunction(result value.Value) {
	f := u.top()
	if f.block.Term == nil {
		retType := f.fn.Sig.RetType
		if types.Equal(retType, types.Void) {
			f.block.NewRet(nil)
		} else {
			f.block.NewRet(u.returnValue(result, retType))
		}
	}

	u.frames = u.frames[:len(u.frames)-1]
	u.log.Debugf("leaving function %s", f.fn.Name())
}

func (u *Unit) returnValue(result value.Value, retType types.Type) value.Value {
	if result != nil {
		if v, ok := u.convert(result, retType); ok {
			return v
		}
	}
	return zeroValue(retType)
}

// Declare allocates a typed storage slot in the current function and binds it
// under name in the current frame. A second declaration of the same name
// replaces the binding.
func (u *Unit) Declare(name string, typ types.Type) *ir.InstAlloca {
	f := u.top()
	slot := ir.NewAlloca(typ)
	slot.SetName(f.uniqueName(name))
	u.Emit(slot)
	f.locals[name] = slot
	return slot
}

// Resolve looks name up in the current frame only
func (u *Unit) Resolve(name string) (*ir.InstAlloca, bool) {
	slot, ok := u.top().locals[name]
	return slot, ok
}

// ResolveFunction looks up a declared function in the module
func (u *Unit) ResolveFunction(name string) (*ir.Func, bool) {
	for _, fn := range u.module.Funcs {
		if fn.Name() == name {
			return fn, true
		}
	}
	return nil, false
}

// Emit appends an instruction to the current block
func (u *Unit) Emit(inst ir.Instruction) {
	f := u.top()
	f.block.Insts = append(f.block.Insts, inst)
}

func (u *Unit) functionNames() []string {
	names := make([]string, 0, len(u.module.Funcs))
	for _, fn := range u.module.Funcs {
		names = append(names, fn.Name())
	}
	return names
}

// report records a diagnostic. Under AbortOnError an error-level diagnostic
// is returned so the caller stops lowering.
func (u *Unit) report(d diag.CompilerError) error {
	u.diags = append(u.diags, d)
	if d.IsError() {
		u.log.Errorf("%s", d.Error())
	} else {
		u.log.Warningf("%s", d.Error())
	}

	if d.IsError() && u.opts.Policy == AbortOnError {
		return d
	}
	return nil
}
