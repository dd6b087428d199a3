package codegen

import (
	"errors"
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"toyc/internal/ast"
	diag "toyc/internal/errors"
	toytypes "toyc/internal/types"
)

// ErrUnknownNode is returned for a node outside the closed AST variant set
var ErrUnknownNode = errors.New("codegen: unknown AST node")

// Lower translates one node into the current function. Expressions yield
// their value; declarations yield the storage slot or function they create;
// an empty block yields nil. The returned error is only non-nil when the
// unit aborts on errors or the node is not a known variant.
func (u *Unit) Lower(node ast.Node) (value.Value, error) {
	switch n := node.(type) {
	case *ast.IntegerLiteral:
		u.log.Debugf("int literal %d", n.Value)
		return constant.NewInt(types.I64, n.Value), nil
	case *ast.DoubleLiteral:
		u.log.Debugf("double literal %g", n.Value)
		return constant.NewFloat(types.FP128, n.Value), nil
	case *ast.Identifier:
		return u.lowerIdentifier(n)
	case *ast.MethodCall:
		return u.lowerCall(n)
	case *ast.BinaryOperator:
		return u.lowerBinary(n)
	case *ast.Assignment:
		return u.lowerAssignment(n)
	case *ast.Block:
		return u.lowerBlock(n)
	case *ast.ExpressionStatement:
		u.log.Debugf("expression statement")
		return u.Lower(n.Expr)
	case *ast.VariableDeclaration:
		return u.lowerVariable(n)
	case *ast.FunctionDeclaration:
		return u.lowerFunction(n)
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnknownNode)
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownNode, node)
}

func (u *Unit) lowerIdentifier(id *ast.Identifier) (value.Value, error) {
	u.log.Debugf("identifier reference %s", id.Name)
	slot, ok := u.Resolve(id.Name)
	if !ok {
		return u.poison(diag.UndeclaredVariable(id.Name, id.Pos, u.top().boundNames()))
	}

	load := ir.NewLoad(slot.ElemType, slot)
	u.Emit(load)
	return load, nil
}

func (u *Unit) lowerCall(call *ast.MethodCall) (value.Value, error) {
	name := call.Callee.Name
	u.log.Debugf("method call %s", name)

	fn, found := u.ResolveFunction(name)
	if !found {
		if err := u.report(diag.MissingFunction(name, call.Callee.Pos, u.functionNames())); err != nil {
			return nil, err
		}
	}

	args := make([]value.Value, 0, len(call.Args))
	for _, arg := range call.Args {
		v, err := u.Lower(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if !found {
		return constant.NewUndef(types.I64), nil
	}

	retType := fn.Sig.RetType
	if len(args) != len(fn.Params) {
		if err := u.report(diag.ArgumentMismatch(name, len(fn.Params), len(args), call.Pos)); err != nil {
			return nil, err
		}
		return undefOf(retType), nil
	}

	for i, param := range fn.Params {
		v, err := u.coerce(args[i], param.Typ, call.Args[i].NodePos())
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	inst := ir.NewCall(fn, args...)
	u.Emit(inst)
	return inst, nil
}

func (u *Unit) lowerAssignment(assign *ast.Assignment) (value.Value, error) {
	u.log.Debugf("assignment to %s", assign.Target.Name)
	slot, ok := u.Resolve(assign.Target.Name)
	if !ok {
		return u.poison(diag.UndeclaredVariable(assign.Target.Name, assign.Target.Pos, u.top().boundNames()))
	}
	return u.store(slot, assign.Value)
}

// store lowers expr and writes it into slot, converting it to the slot type.
// Slots of unresolved types are void and keep no value.
func (u *Unit) store(slot *ir.InstAlloca, expr ast.Expr) (value.Value, error) {
	v, err := u.Lower(expr)
	if err != nil {
		return nil, err
	}
	if toytypes.IsVoid(slot.ElemType) {
		return v, nil
	}

	v, err = u.coerce(v, slot.ElemType, expr.NodePos())
	if err != nil {
		return nil, err
	}
	u.Emit(ir.NewStore(v, slot))
	return v, nil
}

func (u *Unit) lowerBlock(block *ast.Block) (value.Value, error) {
	if block == nil {
		return nil, nil
	}
	u.log.Debugf("block of %d statements", len(block.Statements))

	var last value.Value
	for _, stmt := range block.Statements {
		v, err := u.Lower(stmt)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (u *Unit) lowerVariable(decl *ast.VariableDeclaration) (value.Value, error) {
	u.log.Debugf("variable declaration %s %s", decl.Type.Name, decl.Name.Name)
	typ, err := u.resolveType(decl.Type)
	if err != nil {
		return nil, err
	}

	slot := u.Declare(decl.Name.Name, typ)
	if decl.Init != nil {
		if _, err := u.store(slot, decl.Init); err != nil {
			return nil, err
		}
	}
	return slot, nil
}

func (u *Unit) lowerFunction(decl *ast.FunctionDeclaration) (value.Value, error) {
	name := decl.Name.Name
	u.log.Debugf("function declaration %s", name)

	if existing, ok := u.ResolveFunction(name); ok {
		if err := u.report(diag.DuplicateFunction(name, decl.Name.Pos)); err != nil {
			return nil, err
		}
		return existing, nil
	}

	retType, err := u.resolveType(decl.ReturnType)
	if err != nil {
		return nil, err
	}
	params := make([]*ir.Param, len(decl.Params))
	seen := make(map[string]bool, len(decl.Params))
	for i, p := range decl.Params {
		if seen[p.Name.Name] {
			if err := u.report(diag.DuplicateParameter(name, p.Name.Name, p.Name.Pos)); err != nil {
				return nil, err
			}
		}
		seen[p.Name.Name] = true

		typ, err := u.resolveType(p.Type)
		if err != nil {
			return nil, err
		}
		params[i] = ir.NewParam(p.Name.Name, typ)
	}

	fn := u.EnterFunction(name, retType, params...)
	for i, p := range decl.Params {
		slot := u.Declare(p.Name.Name, params[i].Typ)
		if !toytypes.IsVoid(params[i].Typ) {
			u.Emit(ir.NewStore(params[i], slot))
		}
	}

	result, err := u.lowerBlock(decl.Body)
	if err != nil {
		u.frames = u.frames[:len(u.frames)-1]
		return nil, err
	}
	u.LeaveFunction(result)
	return fn, nil
}

// resolveType maps a type name to its IR type. Unknown names become void and
// are reported as warnings, or as errors with strict types.
func (u *Unit) resolveType(id *ast.Identifier) (types.Type, error) {
	typ, known := toytypes.Lookup(id.Name)
	if known {
		return typ, nil
	}

	level := diag.Warning
	if u.opts.StrictTypes {
		level = diag.Error
	}
	return typ, u.report(diag.UnresolvedType(id.Name, id.Pos, level))
}

// poison records d and substitutes an undefined integer for the missing value
func (u *Unit) poison(d diag.CompilerError) (value.Value, error) {
	if err := u.report(d); err != nil {
		return nil, err
	}
	return constant.NewUndef(types.I64), nil
}

func undefOf(t types.Type) value.Value {
	if toytypes.IsVoid(t) {
		return constant.NewUndef(types.I64)
	}
	return constant.NewUndef(t)
}

func zeroValue(t types.Type) value.Value {
	switch {
	case toytypes.IsInt(t):
		return constant.NewInt(types.I64, 0)
	case toytypes.IsDouble(t):
		return constant.NewFloat(types.FP128, 0)
	}
	return constant.NewZeroInitializer(t)
}
