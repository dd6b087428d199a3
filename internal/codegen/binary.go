package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"toyc/internal/ast"
	diag "toyc/internal/errors"
	toytypes "toyc/internal/types"
	"toyc/token"
)

var intPredicates = map[token.Operator]enum.IPred{
	token.LT:     enum.IPredSLT,
	token.LT_EQ:  enum.IPredSLE,
	token.GT:     enum.IPredSGT,
	token.GT_EQ:  enum.IPredSGE,
	token.EQ:     enum.IPredEQ,
	token.NOT_EQ: enum.IPredNE,
}

var floatPredicates = map[token.Operator]enum.FPred{
	token.LT:     enum.FPredOLT,
	token.LT_EQ:  enum.FPredOLE,
	token.GT:     enum.FPredOGT,
	token.GT_EQ:  enum.FPredOGE,
	token.EQ:     enum.FPredOEQ,
	token.NOT_EQ: enum.FPredONE,
}

// lowerBinary evaluates both operands left to right, then picks the integer
// instruction when both are int and the floating point one otherwise.
// Comparisons produce an int that is 0 or 1.
func (u *Unit) lowerBinary(bin *ast.BinaryOperator) (value.Value, error) {
	u.log.Debugf("binary operator %s", bin.Op)

	left, err := u.Lower(bin.Left)
	if err != nil {
		return nil, err
	}
	right, err := u.Lower(bin.Right)
	if err != nil {
		return nil, err
	}

	lt, rt := left.Type(), right.Type()
	switch {
	case toytypes.IsInt(lt) && toytypes.IsInt(rt):
		return u.intBinary(bin, left, right)
	case isNumeric(lt) && isNumeric(rt):
		left, _ = u.convert(left, types.FP128)
		right, _ = u.convert(right, types.FP128)
		return u.floatBinary(bin, left, right)
	}
	return u.poison(diag.InvalidOperands(bin.Op.String(), toytypes.Name(lt), toytypes.Name(rt), bin.Pos))
}

func (u *Unit) intBinary(bin *ast.BinaryOperator, x, y value.Value) (value.Value, error) {
	if pred, ok := intPredicates[bin.Op]; ok {
		cmp := ir.NewICmp(pred, x, y)
		u.Emit(cmp)
		return u.widenFlag(cmp), nil
	}

	var inst ir.Instruction
	switch bin.Op {
	case token.PLUS:
		inst = ir.NewAdd(x, y)
	case token.MINUS:
		inst = ir.NewSub(x, y)
	case token.ASTERISK:
		inst = ir.NewMul(x, y)
	case token.SLASH:
		inst = ir.NewSDiv(x, y)
	case token.PERCENT:
		inst = ir.NewSRem(x, y)
	default:
		return u.poison(diag.InvalidOperands(bin.Op.String(), "int", "int", bin.Pos))
	}
	u.Emit(inst)
	return inst.(value.Value), nil
}

func (u *Unit) floatBinary(bin *ast.BinaryOperator, x, y value.Value) (value.Value, error) {
	if pred, ok := floatPredicates[bin.Op]; ok {
		cmp := ir.NewFCmp(pred, x, y)
		u.Emit(cmp)
		return u.widenFlag(cmp), nil
	}

	var inst ir.Instruction
	switch bin.Op {
	case token.PLUS:
		inst = ir.NewFAdd(x, y)
	case token.MINUS:
		inst = ir.NewFSub(x, y)
	case token.ASTERISK:
		inst = ir.NewFMul(x, y)
	case token.SLASH:
		inst = ir.NewFDiv(x, y)
	case token.PERCENT:
		inst = ir.NewFRem(x, y)
	default:
		return u.poison(diag.InvalidOperands(bin.Op.String(), "double", "double", bin.Pos))
	}
	u.Emit(inst)
	return inst.(value.Value), nil
}

// widenFlag turns an i1 comparison result into an int
func (u *Unit) widenFlag(flag value.Value) value.Value {
	ext := ir.NewZExt(flag, types.I64)
	u.Emit(ext)
	return ext
}

// coerce converts v to the target type, reporting a type mismatch when no
// conversion exists. The mismatched value is replaced by undef of the target.
func (u *Unit) coerce(v value.Value, to types.Type, pos ast.Position) (value.Value, error) {
	if converted, ok := u.convert(v, to); ok {
		return converted, nil
	}
	if err := u.report(diag.TypeMismatch(toytypes.Name(to), toytypes.Name(v.Type()), pos)); err != nil {
		return nil, err
	}
	return undefOf(to), nil
}

// convert emits the conversion from v to the target type if one exists
func (u *Unit) convert(v value.Value, to types.Type) (value.Value, bool) {
	from := v.Type()
	switch {
	case from.Equal(to):
		return v, true
	case toytypes.IsInt(from) && toytypes.IsDouble(to):
		inst := ir.NewSIToFP(v, to)
		u.Emit(inst)
		return inst, true
	case toytypes.IsDouble(from) && toytypes.IsInt(to):
		inst := ir.NewFPToSI(v, to)
		u.Emit(inst)
		return inst, true
	}
	return v, false
}

func isNumeric(t types.Type) bool {
	return toytypes.IsInt(t) || toytypes.IsDouble(t)
}
