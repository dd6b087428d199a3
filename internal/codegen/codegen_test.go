package codegen

import (
	"bytes"
	"testing"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toyc/internal/ast"
	"toyc/internal/engine"
	diag "toyc/internal/errors"
	"toyc/internal/parser"
)

func ident(name string) *ast.Identifier {
	return &ast.Identifier{Name: name}
}

func program(stmts ...ast.Stmt) *ast.Block {
	return &ast.Block{Statements: stmts}
}

func exprStmt(e ast.Expr) *ast.ExpressionStatement {
	return &ast.ExpressionStatement{Expr: e}
}

func varDecl(typ, name string, init ast.Expr) *ast.VariableDeclaration {
	return &ast.VariableDeclaration{Type: ident(typ), Name: ident(name), Init: init}
}

func generate(t *testing.T, src string, opts Options) (*Unit, error) {
	t.Helper()
	res := parser.ParseSource("test.toy", src)
	require.True(t, res.OK(), "parse errors: %v", res.ParseErrors)

	u := New(opts)
	return u, u.GenerateCode(res.Program)
}

// run compiles src with the runtime library and returns what it printed
func run(t *testing.T, src string) string {
	t.Helper()
	u, err := generate(t, src, Options{Runtime: true})
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = u.RunCode(engine.New(u.Module(), engine.WithStdout(&out)))
	require.NoError(t, err)
	return out.String()
}

func codes(diags diag.Diagnostics) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}
	return out
}

func TestDeclareThenReadStoresConstant(t *testing.T) {
	u := New(Options{})
	err := u.GenerateCode(program(
		varDecl("int", "x", &ast.IntegerLiteral{Value: 5}),
		exprStmt(ident("x")),
	))
	require.NoError(t, err)
	assert.Empty(t, u.Diagnostics())

	insts := u.Entry().Blocks[0].Insts
	require.Len(t, insts, 3)

	slot, ok := insts[0].(*ir.InstAlloca)
	require.True(t, ok)
	assert.Equal(t, "x", slot.Name())
	assert.True(t, slot.ElemType.Equal(types.I64))

	store, ok := insts[1].(*ir.InstStore)
	require.True(t, ok)
	five, ok := store.Src.(*constant.Int)
	require.True(t, ok)
	assert.Equal(t, int64(5), five.X.Int64())
	assert.Same(t, slot, store.Dst)

	load, ok := insts[2].(*ir.InstLoad)
	require.True(t, ok)
	assert.Same(t, slot, load.Src)
}

func TestDeclaredNamesResolve(t *testing.T) {
	names := []string{"a", "count", "total_2", "x"}

	stmts := make([]ast.Stmt, 0, len(names)*2)
	for _, name := range names {
		stmts = append(stmts, varDecl("double", name, nil), exprStmt(ident(name)))
	}

	u := New(Options{})
	require.NoError(t, u.GenerateCode(program(stmts...)))
	assert.Empty(t, u.Diagnostics())
}

func TestUndeclaredVariableReportedOnce(t *testing.T) {
	u := New(Options{})
	err := u.GenerateCode(program(exprStmt(ident("y"))))
	require.Error(t, err)

	var diags diag.Diagnostics
	require.ErrorAs(t, err, &diags)
	assert.Equal(t, []string{diag.ErrorUndeclaredVariable}, codes(u.Diagnostics()))

	// generation still completed the entry function
	assert.NotNil(t, u.Entry().Blocks[0].Term)
	assert.Equal(t, 0, u.Depth())
}

func TestMissingFunctionReportedOnce(t *testing.T) {
	u := New(Options{})
	err := u.GenerateCode(program(exprStmt(&ast.MethodCall{Callee: ident("missing")})))
	require.Error(t, err)
	assert.Equal(t, []string{diag.ErrorMissingFunction}, codes(u.Diagnostics()))
	assert.True(t, u.HasErrors())
}

func TestMissingFunctionStillLowersArguments(t *testing.T) {
	u, err := generate(t, "missing(y)", Options{})
	require.Error(t, err)
	assert.Equal(t, []string{diag.ErrorMissingFunction, diag.ErrorUndeclaredVariable}, codes(u.Diagnostics()))

	for _, inst := range u.Entry().Blocks[0].Insts {
		_, isCall := inst.(*ir.InstCall)
		assert.False(t, isCall, "no call is emitted for a missing function")
	}
}

func TestEmptyProgram(t *testing.T) {
	u := New(Options{})
	require.NoError(t, u.GenerateCode(program()))

	entry := u.Entry()
	require.NotNil(t, entry)
	assert.Equal(t, EntryName, entry.Name())
	assert.Equal(t, enum.LinkageInternal, entry.Linkage)

	require.Len(t, entry.Blocks, 1)
	assert.Empty(t, entry.Blocks[0].Insts)
	ret, ok := entry.Blocks[0].Term.(*ir.TermRet)
	require.True(t, ok)
	assert.Nil(t, ret.X)
}

func TestNilRootIsEmpty(t *testing.T) {
	u := New(Options{})
	require.NoError(t, u.GenerateCode(nil))
	assert.Len(t, u.Entry().Blocks, 1)
}

func TestDeclaredFunctionResolves(t *testing.T) {
	u, err := generate(t, "int one() { 1 }\nint y = one()", Options{})
	require.NoError(t, err)
	assert.Empty(t, u.Diagnostics())

	fn, ok := u.ResolveFunction("one")
	require.True(t, ok)
	assert.Equal(t, "one", fn.Name())
	assert.Equal(t, enum.LinkageInternal, fn.Linkage)
	assert.True(t, fn.Sig.RetType.Equal(types.I64))

	var calls int
	for _, inst := range u.Entry().Blocks[0].Insts {
		if call, ok := inst.(*ir.InstCall); ok {
			assert.Same(t, fn, call.Callee)
			calls++
		}
	}
	assert.Equal(t, 1, calls)
}

func TestAssignThenRead(t *testing.T) {
	u, err := generate(t, "int f() { int n = 1; n = 41 + 1; n }", Options{})
	require.NoError(t, err)

	got, err := engine.New(u.Module()).Run("f")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Int)
}

func TestParametersReceiveArguments(t *testing.T) {
	out := run(t, `
int add(int a, int b) { a + b }
echo(add(2, 3))
echo(add(add(1, 1), 10))
`)
	assert.Equal(t, "5\n12\n", out)
}

func TestBinaryOperators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"integer arithmetic", "echo(2 + 3 * 4 - 10 / 3)", "11\n"},
		{"remainder", "echo(17 % 5)", "2\n"},
		{"parentheses", "echo((2 + 3) * 4)", "20\n"},
		{"mixed widens to double", "echod(1 + 0.5)", "1.5\n"},
		{"double division", "echod(7.0 / 2)", "3.5\n"},
		{"integer comparison", "echo(3 < 4)\necho(4 <= 3)", "1\n0\n"},
		{"double comparison", "echo(2.0 >= 3)\necho(2.5 != 2)", "0\n1\n"},
		{"equality", "echo(7 == 7)", "1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, tt.src))
		})
	}
}

func TestCoercions(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"double into int truncates", "int i = 2.9\necho(i)", "2\n"},
		{"int into double", "double d = 3\nechod(d / 2)", "1.5\n"},
		{"int argument to double parameter", "double half(double d) { d / 2 }\nechod(half(3))", "1.5\n"},
		{"return value converted", "double three() { 3 }\nechod(three())", "3\n"},
		{"empty non-void body returns zero", "int nothing() {}\necho(nothing())", "0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, tt.src))
		})
	}
}

func TestRedeclarationShadowsSlot(t *testing.T) {
	u, err := generate(t, "int x = 1\nint x = 2\necho(x)", Options{Runtime: true})
	require.NoError(t, err)

	var names []string
	for _, inst := range u.Entry().Blocks[0].Insts {
		if slot, ok := inst.(*ir.InstAlloca); ok {
			names = append(names, slot.Name())
		}
	}
	assert.Equal(t, []string{"x", "x.1"}, names)

	var out bytes.Buffer
	_, err = u.RunCode(engine.New(u.Module(), engine.WithStdout(&out)))
	require.NoError(t, err)
	assert.Equal(t, "2\n", out.String())
}

func TestScopesDoNotReachOuterFrames(t *testing.T) {
	u, err := generate(t, "int g = 1\nint f() { g }", Options{})
	require.Error(t, err)
	assert.Equal(t, []string{diag.ErrorUndeclaredVariable}, codes(u.Diagnostics()))
}

func TestLoweringDiagnostics(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"void value stored", "void nothing() {}\nint x = nothing()", []string{diag.ErrorTypeMismatch}},
		{"void operand", "void nothing() {}\nnothing() + 1", []string{diag.ErrorInvalidOperands}},
		{"too many arguments", "int one() { 1 }\none(2)", []string{diag.ErrorArgumentMismatch}},
		{"too few arguments", "int add(int a, int b) { a + b }\nadd(1)", []string{diag.ErrorArgumentMismatch}},
		{"duplicate function", "int f() { 1 }\nint f() { 2 }", []string{diag.ErrorDuplicateFunction}},
		{"assignment to undeclared", "z = 1", []string{diag.ErrorUndeclaredVariable}},
		{"entry name taken", "void main() {}", []string{diag.ErrorDuplicateFunction}},
		{"duplicate parameter", "int f(int a, int a) { a }", []string{diag.ErrorDuplicateParameter}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := generate(t, tt.src, Options{})
			require.Error(t, err)
			assert.Equal(t, tt.want, codes(u.Diagnostics()))
		})
	}
}

func TestPrintedModuleReparses(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"variable named like the block", "int entry = 1\necho(entry)"},
		{"parameter named like the block", "int f(int entry) { entry }\necho(f(3))"},
		{"redeclared variable", "int x = 1\nint x = 2\necho(x)"},
		{"duplicate parameter", "int f(int a, int a) { a }\necho(f(1, 2))"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, _ := generate(t, tt.src, Options{Runtime: true})

			_, err := asm.ParseString("test.ll", u.Module().String())
			require.NoError(t, err, "printed module:\n%s", u.Module().String())
		})
	}
}

func TestVariableNamedLikeBlock(t *testing.T) {
	assert.Equal(t, "1\n", run(t, "int entry = 1\necho(entry)"))
	assert.Equal(t, "3\n", run(t, "int f(int entry) { entry }\necho(f(3))"))
}

func TestDuplicateParameterRenamed(t *testing.T) {
	u, err := generate(t, "int f(int a, int a) { a }", Options{})
	require.Error(t, err)

	fn, ok := u.ResolveFunction("f")
	require.True(t, ok)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name())
	assert.Equal(t, "a.1", fn.Params[1].Name())

	d := u.Diagnostics()[0]
	assert.Equal(t, 1, d.Position.Line)
	assert.Equal(t, 18, d.Position.Column)
}

func TestDuplicateFunctionKeepsFirst(t *testing.T) {
	u, _ := generate(t, "int f() { 1 }\nint f() { 2 }", Options{})

	var count int
	for _, fn := range u.Module().Funcs {
		if fn.Name() == "f" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	got, err := engine.New(u.Module()).Run("f")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Int)
}

func TestUnresolvedType(t *testing.T) {
	u, err := generate(t, "integer x = 1", Options{})
	require.NoError(t, err, "unknown types are warnings by default")
	require.Len(t, u.Diagnostics(), 1)
	assert.Equal(t, diag.ErrorUnresolvedType, u.Diagnostics()[0].Code)
	assert.Equal(t, diag.Warning, u.Diagnostics()[0].Level)

	slot, ok := u.Entry().Blocks[0].Insts[0].(*ir.InstAlloca)
	require.True(t, ok)
	assert.True(t, slot.ElemType.Equal(types.Void), "unknown types degrade to void")

	u, err = generate(t, "integer x = 1", Options{StrictTypes: true})
	require.Error(t, err)
	assert.True(t, u.HasErrors())
}

func TestAbortOnError(t *testing.T) {
	var printed bytes.Buffer
	u, err := generate(t, "echo(y)\nz = 1", Options{Policy: AbortOnError, Runtime: true, Output: &printed})
	require.Error(t, err)

	var ce diag.CompilerError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, diag.ErrorUndeclaredVariable, ce.Code)
	assert.Len(t, u.Diagnostics(), 1)
	assert.Empty(t, printed.String())
	assert.Equal(t, 0, u.Depth())
}

func TestAbortIgnoresWarnings(t *testing.T) {
	u, err := generate(t, "integer x = 1\nint y = 2", Options{Policy: AbortOnError})
	require.NoError(t, err)
	assert.Len(t, u.Diagnostics(), 1)
}

func TestContinueOnErrorPrintsModule(t *testing.T) {
	var printed bytes.Buffer
	u, err := generate(t, "echo(y)\nz = 1", Options{Runtime: true, Output: &printed})
	require.Error(t, err)
	assert.Len(t, u.Diagnostics(), 2)
	assert.Contains(t, printed.String(), "@main()")
	assert.Contains(t, printed.String(), "@echo")

	var diags diag.Diagnostics
	require.ErrorAs(t, err, &diags)
	assert.Len(t, diags, 2)
}

func TestPrintedModule(t *testing.T) {
	var printed bytes.Buffer
	_, err := generate(t, "int square(int x) { x * x }\necho(square(7))", Options{Runtime: true, Output: &printed})
	require.NoError(t, err)

	text := printed.String()
	assert.Contains(t, text, "define internal i64 @square")
	assert.Contains(t, text, "define internal void @main()")
	assert.Contains(t, text, "declare void @echo")
	assert.Contains(t, text, "mul i64")
	assert.Contains(t, text, "ret void")
}

func TestRunCodeRequiresGeneration(t *testing.T) {
	u := New(Options{})
	_, err := u.RunCode(engine.New(u.Module()))
	assert.ErrorIs(t, err, ErrNotGenerated)

	u, err = generate(t, "echo(1)", Options{})
	require.Error(t, err)
	_, err = u.RunCode(engine.New(u.Module()))
	assert.ErrorIs(t, err, ErrNotGenerated, "modules with errors are not run")
}

func TestGenerateTwice(t *testing.T) {
	u := New(Options{})
	require.NoError(t, u.GenerateCode(program()))
	assert.ErrorIs(t, u.GenerateCode(program()), ErrAlreadyGenerated)
}

func TestRecursionHitsCallDepth(t *testing.T) {
	u, err := generate(t, "int down(int n) { down(n - 1) }\ndown(3)", Options{})
	require.NoError(t, err)

	_, err = u.RunCode(engine.New(u.Module(), engine.WithMaxCallDepth(32)))
	assert.ErrorIs(t, err, engine.ErrCallDepthExceeded)
}

func TestFrameStack(t *testing.T) {
	u := New(Options{})
	outer := u.EnterFunction("outer", types.I64)
	u.Declare("v", types.I64)
	assert.Equal(t, 1, u.Depth())
	assert.Same(t, outer, u.Function())

	inner := u.EnterFunction("inner", types.Void)
	assert.Equal(t, 2, u.Depth())
	assert.Same(t, inner, u.Function())
	_, ok := u.Resolve("v")
	assert.False(t, ok)

	u.LeaveFunction(nil)
	assert.Same(t, outer, u.Function())
	_, ok = u.Resolve("v")
	assert.True(t, ok)

	u.LeaveFunction(nil)
	assert.Equal(t, 0, u.Depth())

	ret, ok := outer.Blocks[0].Term.(*ir.TermRet)
	require.True(t, ok)
	zero, ok := ret.X.(*constant.Int)
	require.True(t, ok)
	assert.Equal(t, int64(0), zero.X.Int64())
}

func TestLowerRejectsUnknownNodes(t *testing.T) {
	u := New(Options{})
	u.EnterFunction("probe", types.Void)

	_, err := u.Lower(nil)
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "continue", ContinueOnError.String())
	assert.Equal(t, "abort", AbortOnError.String())
}
