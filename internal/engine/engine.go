package engine

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/value"
	"github.com/tliron/commonlog"

	"toyc/internal/stdlib"
)

// DefaultMaxCallDepth bounds nested calls when no limit is configured
const DefaultMaxCallDepth = 256

var (
	ErrCallDepthExceeded = errors.New("engine: call depth exceeded")
	ErrUnknownFunction   = errors.New("engine: unknown function")
	ErrArity             = errors.New("engine: wrong number of arguments")
	ErrDivisionByZero    = errors.New("engine: division by zero")
	ErrUnsupported       = errors.New("engine: unsupported IR")
)

// Options configures an Engine
type Options struct {
	// Stdout receives the output of runtime library calls
	Stdout io.Writer
	// MaxCallDepth is the deepest allowed nesting of interpreted calls
	MaxCallDepth int
}

// Option mutates Options
type Option func(*Options)

// WithStdout redirects program output
func WithStdout(w io.Writer) Option {
	return func(o *Options) { o.Stdout = w }
}

// WithMaxCallDepth sets the call depth limit
func WithMaxCallDepth(depth int) Option {
	return func(o *Options) { o.MaxCallDepth = depth }
}

// Engine executes functions of one IR module. It interprets the instruction
// subset produced by the code generator. An Engine is not safe for concurrent
// use.
type Engine struct {
	module *ir.Module
	opts   Options
	depth  int
	log    commonlog.Logger
}

// New builds an engine over module
func New(module *ir.Module, opts ...Option) *Engine {
	options := Options{Stdout: os.Stdout, MaxCallDepth: DefaultMaxCallDepth}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxCallDepth <= 0 {
		options.MaxCallDepth = DefaultMaxCallDepth
	}

	return &Engine{
		module: module,
		opts:   options,
		log:    commonlog.GetLogger("toyc.engine"),
	}
}

// Run executes the function called name
func (e *Engine) Run(name string, args ...GenericValue) (GenericValue, error) {
	for _, fn := range e.module.Funcs {
		if fn.Name() == name {
			return e.RunFunction(fn, args...)
		}
	}
	return GenericValue{}, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
}

// RunFunction executes fn with args and returns its result, a void value for
// functions returning void
func (e *Engine) RunFunction(fn *ir.Func, args ...GenericValue) (GenericValue, error) {
	e.depth = 0
	return e.call(fn, args)
}

func (e *Engine) call(fn *ir.Func, args []GenericValue) (GenericValue, error) {
	if len(args) != len(fn.Params) {
		return GenericValue{}, fmt.Errorf("%w: %s expects %d, got %d", ErrArity, fn.Name(), len(fn.Params), len(args))
	}
	if len(fn.Blocks) == 0 {
		return e.callBuiltin(fn, args)
	}

	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.opts.MaxCallDepth {
		return GenericValue{}, fmt.Errorf("%w: %d nested calls in %s", ErrCallDepthExceeded, e.depth, fn.Name())
	}
	e.log.Debugf("calling %s (depth %d)", fn.Name(), e.depth)

	act := &activation{engine: e, values: make(map[value.Value]GenericValue)}
	for i, p := range fn.Params {
		act.values[p] = args[i]
	}
	return act.run(fn.Blocks[0])
}

func (e *Engine) callBuiltin(fn *ir.Func, args []GenericValue) (GenericValue, error) {
	impl, ok := stdlib.GetImplementation(fn.Name())
	if !ok {
		return GenericValue{}, fmt.Errorf("%w: %s has no body", ErrUnknownFunction, fn.Name())
	}

	libArgs := make([]stdlib.Argument, len(args))
	for i, a := range args {
		libArgs[i] = stdlib.Argument{Int: a.Int, Float: a.Float}
	}
	if err := impl(e.opts.Stdout, libArgs); err != nil {
		return GenericValue{}, fmt.Errorf("engine: %s: %w", fn.Name(), err)
	}
	return GenericValue{Kind: KindVoid}, nil
}

// activation holds the values computed by one function invocation
type activation struct {
	engine *Engine
	values map[value.Value]GenericValue
}

func (a *activation) run(block *ir.Block) (GenericValue, error) {
	for _, inst := range block.Insts {
		if err := a.exec(inst); err != nil {
			return GenericValue{}, err
		}
	}

	ret, ok := block.Term.(*ir.TermRet)
	if !ok {
		return GenericValue{}, fmt.Errorf("%w: terminator %T", ErrUnsupported, block.Term)
	}
	if ret.X == nil {
		return GenericValue{Kind: KindVoid}, nil
	}
	return a.eval(ret.X)
}

func (a *activation) exec(inst ir.Instruction) error {
	var (
		result GenericValue
		err    error
	)

	switch inst := inst.(type) {
	case *ir.InstAlloca:
		cell := zeroOf(inst.ElemType)
		result = GenericValue{Kind: KindPointer, ref: &cell}
	case *ir.InstLoad:
		var ptr GenericValue
		if ptr, err = a.eval(inst.Src); err == nil {
			result, err = deref(ptr)
		}
	case *ir.InstStore:
		return a.store(inst)
	case *ir.InstCall:
		result, err = a.call(inst)
	case *ir.InstAdd, *ir.InstSub, *ir.InstMul, *ir.InstSDiv, *ir.InstSRem:
		result, err = a.intArith(inst)
	case *ir.InstFAdd, *ir.InstFSub, *ir.InstFMul, *ir.InstFDiv, *ir.InstFRem:
		result, err = a.floatArith(inst)
	case *ir.InstICmp:
		result, err = a.icmp(inst)
	case *ir.InstFCmp:
		result, err = a.fcmp(inst)
	case *ir.InstZExt:
		result, err = a.eval(inst.From)
	case *ir.InstSIToFP:
		var from GenericValue
		if from, err = a.eval(inst.From); err == nil {
			result = GenericValue{Kind: KindFloat, Float: newFloat().SetInt64(from.Int)}
		}
	case *ir.InstFPToSI:
		var from GenericValue
		if from, err = a.eval(inst.From); err == nil {
			i, _ := floatOf(from).Int64()
			result = IntValue(i)
		}
	default:
		return fmt.Errorf("%w: instruction %T", ErrUnsupported, inst)
	}
	if err != nil {
		return err
	}

	if v, ok := inst.(value.Value); ok {
		a.values[v] = result
	}
	return nil
}

func (a *activation) store(inst *ir.InstStore) error {
	src, err := a.eval(inst.Src)
	if err != nil {
		return err
	}
	dst, err := a.eval(inst.Dst)
	if err != nil {
		return err
	}
	if dst.ref == nil {
		return fmt.Errorf("%w: store through non-pointer", ErrUnsupported)
	}
	*dst.ref = src
	return nil
}

func (a *activation) call(inst *ir.InstCall) (GenericValue, error) {
	callee, ok := inst.Callee.(*ir.Func)
	if !ok {
		return GenericValue{}, fmt.Errorf("%w: indirect call", ErrUnsupported)
	}

	args := make([]GenericValue, len(inst.Args))
	for i, arg := range inst.Args {
		v, err := a.eval(arg)
		if err != nil {
			return GenericValue{}, err
		}
		args[i] = v
	}
	return a.engine.call(callee, args)
}

// eval returns the runtime value of an operand
func (a *activation) eval(v value.Value) (GenericValue, error) {
	switch v := v.(type) {
	case *constant.Int:
		return IntValue(v.X.Int64()), nil
	case *constant.Float:
		return GenericValue{Kind: KindFloat, Float: newFloat().Set(v.X)}, nil
	case *constant.Undef:
		return zeroOf(v.Typ), nil
	case *constant.ZeroInitializer:
		return zeroOf(v.Typ), nil
	}

	if result, ok := a.values[v]; ok {
		return result, nil
	}
	return GenericValue{}, fmt.Errorf("%w: operand %s", ErrUnsupported, v.Ident())
}

func (a *activation) operands(x, y value.Value) (GenericValue, GenericValue, error) {
	l, err := a.eval(x)
	if err != nil {
		return GenericValue{}, GenericValue{}, err
	}
	r, err := a.eval(y)
	if err != nil {
		return GenericValue{}, GenericValue{}, err
	}
	return l, r, nil
}

func (a *activation) intArith(inst ir.Instruction) (GenericValue, error) {
	var x, y value.Value
	switch inst := inst.(type) {
	case *ir.InstAdd:
		x, y = inst.X, inst.Y
	case *ir.InstSub:
		x, y = inst.X, inst.Y
	case *ir.InstMul:
		x, y = inst.X, inst.Y
	case *ir.InstSDiv:
		x, y = inst.X, inst.Y
	case *ir.InstSRem:
		x, y = inst.X, inst.Y
	}
	l, r, err := a.operands(x, y)
	if err != nil {
		return GenericValue{}, err
	}

	switch inst.(type) {
	case *ir.InstAdd:
		return IntValue(l.Int + r.Int), nil
	case *ir.InstSub:
		return IntValue(l.Int - r.Int), nil
	case *ir.InstMul:
		return IntValue(l.Int * r.Int), nil
	}
	if r.Int == 0 {
		return GenericValue{}, ErrDivisionByZero
	}
	if _, ok := inst.(*ir.InstSDiv); ok {
		return IntValue(l.Int / r.Int), nil
	}
	return IntValue(l.Int % r.Int), nil
}

func (a *activation) floatArith(inst ir.Instruction) (GenericValue, error) {
	var x, y value.Value
	switch inst := inst.(type) {
	case *ir.InstFAdd:
		x, y = inst.X, inst.Y
	case *ir.InstFSub:
		x, y = inst.X, inst.Y
	case *ir.InstFMul:
		x, y = inst.X, inst.Y
	case *ir.InstFDiv:
		x, y = inst.X, inst.Y
	case *ir.InstFRem:
		x, y = inst.X, inst.Y
	}
	l, r, err := a.operands(x, y)
	if err != nil {
		return GenericValue{}, err
	}
	lf, rf := floatOf(l), floatOf(r)

	out := newFloat()
	switch inst.(type) {
	case *ir.InstFAdd:
		out.Add(lf, rf)
	case *ir.InstFSub:
		out.Sub(lf, rf)
	case *ir.InstFMul:
		out.Mul(lf, rf)
	case *ir.InstFDiv:
		if rf.Sign() == 0 {
			return GenericValue{}, ErrDivisionByZero
		}
		out.Quo(lf, rf)
	case *ir.InstFRem:
		if rf.Sign() == 0 {
			return GenericValue{}, ErrDivisionByZero
		}
		out = floatRem(lf, rf)
	}
	return GenericValue{Kind: KindFloat, Float: out}, nil
}

// floatRem computes x - y*trunc(x/y), the sign following the dividend
func floatRem(x, y *big.Float) *big.Float {
	q := newFloat().Quo(x, y)
	whole, _ := q.Int(nil)
	q.SetInt(whole)
	return newFloat().Sub(x, q.Mul(q, y))
}

func (a *activation) icmp(inst *ir.InstICmp) (GenericValue, error) {
	l, r, err := a.operands(inst.X, inst.Y)
	if err != nil {
		return GenericValue{}, err
	}

	var ok bool
	switch inst.Pred {
	case enum.IPredEQ:
		ok = l.Int == r.Int
	case enum.IPredNE:
		ok = l.Int != r.Int
	case enum.IPredSLT:
		ok = l.Int < r.Int
	case enum.IPredSLE:
		ok = l.Int <= r.Int
	case enum.IPredSGT:
		ok = l.Int > r.Int
	case enum.IPredSGE:
		ok = l.Int >= r.Int
	default:
		return GenericValue{}, fmt.Errorf("%w: icmp %v", ErrUnsupported, inst.Pred)
	}
	return flag(ok), nil
}

func (a *activation) fcmp(inst *ir.InstFCmp) (GenericValue, error) {
	l, r, err := a.operands(inst.X, inst.Y)
	if err != nil {
		return GenericValue{}, err
	}

	c := floatOf(l).Cmp(floatOf(r))
	var ok bool
	switch inst.Pred {
	case enum.FPredOEQ:
		ok = c == 0
	case enum.FPredONE:
		ok = c != 0
	case enum.FPredOLT:
		ok = c < 0
	case enum.FPredOLE:
		ok = c <= 0
	case enum.FPredOGT:
		ok = c > 0
	case enum.FPredOGE:
		ok = c >= 0
	default:
		return GenericValue{}, fmt.Errorf("%w: fcmp %v", ErrUnsupported, inst.Pred)
	}
	return flag(ok), nil
}

func deref(ptr GenericValue) (GenericValue, error) {
	if ptr.ref == nil {
		return GenericValue{}, fmt.Errorf("%w: load through non-pointer", ErrUnsupported)
	}
	return *ptr.ref, nil
}

func floatOf(v GenericValue) *big.Float {
	if v.Float == nil {
		return newFloat()
	}
	return v.Float
}

func flag(ok bool) GenericValue {
	if ok {
		return IntValue(1)
	}
	return IntValue(0)
}
