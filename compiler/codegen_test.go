package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/chazu/ecmagen/codegen"
	"github.com/chazu/ecmagen/ir"
	"github.com/chazu/ecmagen/options"
	"github.com/chazu/ecmagen/program"
	"github.com/chazu/ecmagen/scope"
	"github.com/chazu/ecmagen/token"
)

// AST builders

func num(v float64) *NumberLiteral { return &NumberLiteral{Value: v} }
func str(s string) *StringLiteral  { return &StringLiteral{Value: s} }
func ident(n string) *Identifier   { return &Identifier{Name: n} }

func bin(op token.Kind, l, r Expr) *Binary { return &Binary{Op: op, Left: l, Right: r} }

func call(callee Expr, args ...Expr) *ExprStmt {
	return &ExprStmt{Expr: &Call{Callee: callee, Args: args}}
}

func ret(e Expr) *Return { return &Return{Value: e} }

func decl(kind scope.DeclKind, name string, init Expr) *VarDecl {
	return &VarDecl{Kind: kind, Name: name, Init: init}
}

func fn(name string, params []string, body ...Stmt) *Function {
	return &Function{Name: name, Params: params, Body: body}
}

func funcExpr(f *Function) *FunctionExpr { return &FunctionExpr{Func: f} }

func script(body ...Stmt) *Script { return &Script{File: "test.js", Body: body} }

func mustCompile(t *testing.T, s *Script, opts options.Options) *codegen.Unit {
	t.Helper()
	u, err := Compile(s, opts)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return u
}

// findFunc returns the generator of the function declared as name.
func findFunc(t *testing.T, u *codegen.Unit, name string) *codegen.Generator {
	t.Helper()
	for _, g := range u.Functions() {
		if strings.HasSuffix(g.Name(), "#"+name) {
			return g
		}
	}
	t.Fatalf("no function %q", name)
	return nil
}

func checkOps(t *testing.T, g *codegen.Generator, want ...ir.Opcode) {
	t.Helper()
	got := ir.Opcodes(g.GetInsns())
	if len(got) != len(want) {
		t.Fatalf("%s: got %v, want %v\n%s", g.Name(), got, want, ir.Listing(g.GetInsns()))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: insn %d = %s, want %s\n%s", g.Name(), i, got[i], want[i], ir.Listing(g.GetInsns()))
		}
	}
}

func countOp(g *codegen.Generator, op ir.Opcode) int {
	n := 0
	for _, in := range g.GetInsns() {
		if in.Op == op {
			n++
		}
	}
	return n
}

func findInsns(g *codegen.Generator, op ir.Opcode) []*ir.Insn {
	var out []*ir.Insn
	for _, in := range g.GetInsns() {
		if in.Op == op {
			out = append(out, in)
		}
	}
	return out
}

func TestCompileGlobalVar(t *testing.T) {
	u := mustCompile(t, script(decl(scope.DeclVar, "i", num(5))), options.Default())
	main := u.Functions()[0]
	if main.Name() != "main" {
		t.Fatalf("first function = %q, want main", main.Name())
	}
	checkOps(t, main, ir.OpLdai, ir.OpStGlobalVar, ir.OpReturnUndefined)

	insns := main.GetInsns()
	if insns[0].Args[0].Int != 5 {
		t.Errorf("ldai operand = %d", insns[0].Args[0].Int)
	}
	if insns[1].Args[0].Str != "i" {
		t.Errorf("stglobalvar operand = %q", insns[1].Args[0].Str)
	}
	res, ok := main.Scope().Resolve("i")
	if !ok || res.Variable.Kind() != scope.Global {
		t.Errorf("i resolves to %+v, %v; want a global", res.Variable, ok)
	}
}

func TestCompileFunctionLet(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", nil, decl(scope.DeclLet, "i", num(5)))},
	), options.Default())

	f := findFunc(t, u, "f")
	checkOps(t, f, ir.OpLdai, ir.OpSta, ir.OpReturnUndefined)

	v := f.Scope().FindLocal("i")
	if v == nil || !v.Bound() {
		t.Fatal("i has no register")
	}
	if got := f.GetInsns()[1].Args[0].Reg; got != v.Reg() {
		t.Errorf("sta %s, want %s", got, v.Reg())
	}
	if len(f.Locals()) != 1 {
		t.Errorf("locals = %v", f.Locals())
	}
	if _, ok := u.Functions()[0].Scope().Resolve("i"); ok {
		t.Error("i resolvable from the global scope")
	}

	main := u.Functions()[0]
	checkOps(t, main, ir.OpLdLexEnv, ir.OpSta, ir.OpDefineFunc, ir.OpStGlobalVar, ir.OpReturnUndefined)
	def := findInsns(main, ir.OpDefineFunc)[0]
	if def.Args[0].Str != f.Name() || def.Args[2].Int != 0 {
		t.Errorf("definefunc %s", def)
	}
}

func TestClosureCapturesIntoEnvironment(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("outer", nil,
			decl(scope.DeclLet, "x", num(1)),
			ret(funcExpr(fn("", nil, ret(ident("x"))))),
		)},
	), options.Default())

	outer := findFunc(t, u, "outer")
	envs := findInsns(outer, ir.OpNewLexEnv)
	if len(envs) != 1 || envs[0].Args[0].Int != 1 {
		t.Fatalf("newlexenv = %v", envs)
	}
	if countOp(outer, ir.OpStLexVar) != 1 {
		t.Errorf("outer does not store x into its environment\n%s", ir.Listing(outer.GetInsns()))
	}
	x := outer.Scope().FindLocal("x")
	if !x.IsLexical() || x.Slot() != 0 {
		t.Errorf("x lexical=%v slot=%d", x.IsLexical(), x.Slot())
	}

	inner := findFunc(t, u, "")
	loads := findInsns(inner, ir.OpLdLexVar)
	if len(loads) != 1 || loads[0].Args[0].Int != 0 || loads[0].Args[1].Int != 0 {
		t.Fatalf("ldlexvar = %v", loads)
	}
	if countOp(inner, ir.OpThrowUndefinedIfHole) != 1 {
		t.Error("let read from a closure without a hole check")
	}
}

func TestLexicalLevels(t *testing.T) {
	// function outer() { let a = 1; function mid() { let b = 2; return function() { return a + b; }; } }
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("outer", nil,
			decl(scope.DeclLet, "a", num(1)),
			&FuncDecl{Func: fn("mid", nil,
				decl(scope.DeclLet, "b", num(2)),
				ret(funcExpr(fn("", nil, ret(bin(token.Plus, ident("a"), ident("b")))))),
			)},
		)},
	), options.Default())

	inner := findFunc(t, u, "")
	loads := findInsns(inner, ir.OpLdLexVar)
	if len(loads) != 2 {
		t.Fatalf("ldlexvar count = %d", len(loads))
	}
	// a lives one environment further out than b.
	if loads[0].Args[0].Int != 1 || loads[1].Args[0].Int != 0 {
		t.Errorf("levels = %d, %d; want 1, 0", loads[0].Args[0].Int, loads[1].Args[0].Int)
	}
	if countOp(inner, ir.OpAdd2) != 1 {
		t.Error("missing add2")
	}
}

func TestArgumentsObject(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", nil, ret(ident("arguments")))},
	), options.Default())

	f := findFunc(t, u, "f")
	checkOps(t, f, ir.OpGetUnmappedArgs, ir.OpSta, ir.OpLda, ir.OpReturn)
	if !f.Scope().UseArgs() || !f.Scope().ArgumentsOrRestArgs() {
		t.Error("arguments use not recorded on the function scope")
	}
}

func TestArrowSharesArguments(t *testing.T) {
	arrow := fn("", nil, ret(ident("arguments")))
	arrow.Arrow = true
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", nil, ret(funcExpr(arrow)))},
	), options.Default())

	f := findFunc(t, u, "f")
	if countOp(f, ir.OpGetUnmappedArgs) != 1 || countOp(f, ir.OpStLexVar) != 1 {
		t.Errorf("arguments not materialized into the environment\n%s", ir.Listing(f.GetInsns()))
	}
	if countOp(f, ir.OpDefineNCFunc) != 1 || countOp(f, ir.OpLdHomeObject) == 0 {
		t.Error("arrow not defined as a non-constructor")
	}
	a := findFunc(t, u, "")
	if countOp(a, ir.OpGetUnmappedArgs) != 0 || countOp(a, ir.OpLdLexVar) != 1 {
		t.Errorf("arrow should read the enclosing arguments\n%s", ir.Listing(a.GetInsns()))
	}
	if a.Metadata().CallType&codegen.CallArrow == 0 {
		t.Error("arrow call type not recorded")
	}
}

func TestIfWithRelationalCondition(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", []string{"a"},
			&If{Cond: bin(token.Less, ident("a"), num(1)), Then: []Stmt{ret(num(1))}},
			ret(num(2)),
		)},
	), options.Default())

	f := findFunc(t, u, "f")
	checkOps(t, f,
		ir.OpLda, ir.OpSta, ir.OpLdai, ir.OpLess, ir.OpJeqz,
		ir.OpLdai, ir.OpReturn,
		ir.OpLdai, ir.OpReturn)

	jump := findInsns(f, ir.OpJeqz)[0]
	off, ok := f.LabelOffset(jump.Args[0].Label)
	if !ok || f.GetInsns()[off].Op != ir.OpLabel {
		t.Fatalf("jump target %d not a label marker", off)
	}
	if next := ir.Opcodes(f.GetInsns()[off:])[0]; next != ir.OpLdai {
		t.Errorf("else path starts with %s", next)
	}
}

func TestIfWithTruthyCondition(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", []string{"a"},
			&If{Cond: ident("a"), Then: []Stmt{ret(num(1))}, Else: []Stmt{ret(num(2))}},
		)},
	), options.Default())
	f := findFunc(t, u, "f")
	if countOp(f, ir.OpIsTrue) != 1 || countOp(f, ir.OpJmp) != 1 {
		t.Errorf("unexpected lowering\n%s", ir.Listing(f.GetInsns()))
	}
}

func TestWhileLoopEnvironment(t *testing.T) {
	// function f() { while (true) { let x = 1; g(function() { return x; }); } }
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", nil,
			&While{Cond: &BoolLiteral{Value: true}, Body: []Stmt{
				decl(scope.DeclLet, "x", num(1)),
				call(ident("g"), funcExpr(fn("", nil, ret(ident("x"))))),
			}},
		)},
	), options.Default())

	f := findFunc(t, u, "f")
	if f.Scope().NeedsLexicalEnvironment() {
		t.Error("loop variable captured into the function environment")
	}
	if countOp(f, ir.OpNewLexEnv) != 1 || countOp(f, ir.OpPopLexEnv) != 1 {
		t.Errorf("loop body environment not created and left\n%s", ir.Listing(f.GetInsns()))
	}
	if countOp(f, ir.OpCallArg1) != 1 || countOp(f, ir.OpTryLdGlobalByName) != 1 {
		t.Error("call to unresolved g not lowered")
	}
	jmps := findInsns(f, ir.OpJmp)
	if len(jmps) != 1 {
		t.Fatalf("jmp count = %d", len(jmps))
	}
	if off, _ := f.LabelOffset(jmps[0].Args[0].Label); off > len(f.GetInsns())/2 {
		t.Errorf("back edge targets %d", off)
	}
}

func TestTryCatch(t *testing.T) {
	inner := &Try{
		Body:    &BlockStmt{Body: []Stmt{call(ident("g"))}},
		Handler: &BlockStmt{},
	}
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", nil, &Try{
			Body:    &BlockStmt{Body: []Stmt{inner}},
			Param:   "e",
			Handler: &BlockStmt{Body: []Stmt{ret(ident("e"))}},
		})},
	), options.Default())

	f := findFunc(t, u, "f")
	catches := f.CatchMap()
	if len(catches) != 2 {
		t.Fatalf("catch tables = %d", len(catches))
	}
	depths := map[int]bool{}
	for handler, ct := range catches {
		depths[ct.Depth] = true
		if handler != ct.Handler || len(ct.Ranges) != 1 {
			t.Errorf("table %+v", ct)
		}
		begin, _ := f.LabelOffset(ct.Ranges[0].Begin)
		end, _ := f.LabelOffset(ct.Ranges[0].End)
		h, _ := f.LabelOffset(ct.Handler)
		if !(begin < end && end < h) {
			t.Errorf("range [%d, %d) handler %d", begin, end, h)
		}
	}
	if !depths[0] || !depths[1] {
		t.Errorf("depths = %v", depths)
	}
	if e := f.Scope().FindLocal("e"); e != nil {
		t.Error("catch parameter leaked into the function scope")
	}
}

func TestGeneratorFunction(t *testing.T) {
	gen := fn("gen", nil, &ExprStmt{Expr: &Yield{Value: num(1)}})
	gen.Generator = true
	u := mustCompile(t, script(&FuncDecl{Func: gen}), options.Default())

	if countOp(u.Functions()[0], ir.OpDefineGeneratorFunc) != 1 {
		t.Error("generator not defined with definegeneratorfunc")
	}
	g := findFunc(t, u, "gen")
	tests := []struct {
		op   ir.Opcode
		want int
	}{
		{ir.OpCreateGeneratorObj, 1},
		{ir.OpSuspendGenerator, 2},
		{ir.OpResumeGenerator, 2},
		{ir.OpGetResumeMode, 2},
		{ir.OpCreateIterResultObj, 2},
		{ir.OpThrow, 2},
	}
	for _, tt := range tests {
		if got := countOp(g, tt.op); got != tt.want {
			t.Errorf("%s count = %d, want %d", tt.op, got, tt.want)
		}
	}
	if g.Metadata().CallType&codegen.CallGenerator == 0 {
		t.Error("generator call type not recorded")
	}
}

func TestAsyncFunction(t *testing.T) {
	a := fn("a", nil, &ExprStmt{Expr: &Await{Value: &Call{Callee: ident("g")}}})
	a.Async = true
	u := mustCompile(t, script(&FuncDecl{Func: a}), options.Default())

	if countOp(u.Functions()[0], ir.OpDefineAsyncFunc) != 1 {
		t.Error("async function not defined with defineasyncfunc")
	}
	f := findFunc(t, u, "a")
	for _, op := range []ir.Opcode{
		ir.OpAsyncFunctionEnter, ir.OpAsyncFunctionAwaitUncaught,
		ir.OpAsyncFunctionResolve, ir.OpAsyncFunctionReject,
	} {
		if countOp(f, op) != 1 {
			t.Errorf("%s count = %d", op, countOp(f, op))
		}
	}
	if len(f.CatchMap()) != 1 {
		t.Errorf("catch tables = %d, want the rejection handler", len(f.CatchMap()))
	}
}

func TestAsyncGenerator(t *testing.T) {
	ag := fn("ag", nil, &ExprStmt{Expr: &Yield{Value: num(1)}})
	ag.Async, ag.Generator = true, true
	u := mustCompile(t, script(&FuncDecl{Func: ag}), options.Default())

	if countOp(u.Functions()[0], ir.OpDefineAsyncGeneratorFunc) != 1 {
		t.Error("async generator not defined with defineasyncgeneratorfunc")
	}
	f := findFunc(t, u, "ag")
	if countOp(f, ir.OpCreateAsyncGeneratorObj) != 1 || countOp(f, ir.OpAsyncGeneratorResolve) != 2 {
		t.Errorf("unexpected lowering\n%s", ir.Listing(f.GetInsns()))
	}
}

func TestConstReassignmentThrows(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", nil,
			decl(scope.DeclConst, "c", num(1)),
			&ExprStmt{Expr: &Assign{Target: ident("c"), Value: num(2)}},
		)},
	), options.Default())
	if countOp(findFunc(t, u, "f"), ir.OpThrowConstAssignment) != 1 {
		t.Error("const reassignment does not throw")
	}
}

func TestGlobalLexicalDeclarations(t *testing.T) {
	u := mustCompile(t, script(
		decl(scope.DeclLet, "y", num(1)),
		&ExprStmt{Expr: &Assign{Target: ident("y"), Value: num(2)}},
		decl(scope.DeclConst, "k", str("v")),
	), options.Default())
	checkOps(t, u.Functions()[0],
		ir.OpLdai, ir.OpStLetToGlobalRecord,
		ir.OpLdai, ir.OpTryStGlobalByName,
		ir.OpLdaStr, ir.OpStConstToGlobalRecord,
		ir.OpReturnUndefined)
}

func TestCompoundAssignmentAndIncrement(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", []string{"a", "o"},
			&ExprStmt{Expr: &Assign{Op: token.PlusAssign, Target: ident("a"), Value: num(2)}},
			&ExprStmt{Expr: &Unary{Op: token.Increment, Operand: ident("a")}},
			&ExprStmt{Expr: &Assign{Op: token.StarAssign, Target: &Member{Object: ident("o"), Name: "n"}, Value: num(3)}},
		)},
	), options.Default())
	f := findFunc(t, u, "f")
	for _, op := range []ir.Opcode{ir.OpAdd2, ir.OpInc, ir.OpMul2, ir.OpLdObjByName, ir.OpStObjByName} {
		if countOp(f, op) != 1 {
			t.Errorf("%s count = %d\n%s", op, countOp(f, op), ir.Listing(f.GetInsns()))
		}
	}
}

func TestMethodCallUsesConsecutiveRegisters(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", []string{"o"},
			call(&Member{Object: ident("o"), Name: "m"}, num(1), num(2)),
		)},
	), options.Default())
	f := findFunc(t, u, "f")
	calls := findInsns(f, ir.OpCallThisRange)
	if len(calls) != 1 {
		t.Fatalf("callthisrange count = %d", len(calls))
	}
	args := calls[0].Args
	if args[0].Int != 2 || len(args) != 5 {
		t.Fatalf("callthisrange %s", calls[0])
	}
	for i := 2; i < len(args); i++ {
		if args[i].Reg.Num() != args[i-1].Reg.Num()+1 {
			t.Errorf("range registers not consecutive: %s", calls[0])
		}
	}
}

func TestCallArity(t *testing.T) {
	tests := []struct {
		args int
		want ir.Opcode
	}{
		{0, ir.OpCallArg0},
		{1, ir.OpCallArg1},
		{2, ir.OpCallArgs2},
		{3, ir.OpCallArgs3},
		{5, ir.OpCallRange},
	}
	for _, tt := range tests {
		args := make([]Expr, tt.args)
		for i := range args {
			args[i] = num(float64(i))
		}
		u := mustCompile(t, script(call(ident("g"), args...)), options.Default())
		if countOp(u.Functions()[0], tt.want) != 1 {
			t.Errorf("%d args: no %s\n%s", tt.args, tt.want, ir.Listing(u.Functions()[0].GetInsns()))
		}
	}
}

func TestNewExpression(t *testing.T) {
	u := mustCompile(t, script(
		&ExprStmt{Expr: &New{Callee: ident("C"), Args: []Expr{num(1)}}},
	), options.Default())
	objs := findInsns(u.Functions()[0], ir.OpNewObjRange)
	if len(objs) != 1 || objs[0].Args[0].Int != 1 {
		t.Errorf("newobjrange = %v", objs)
	}
}

func TestLiteralBuffers(t *testing.T) {
	u := mustCompile(t, script(
		decl(scope.DeclVar, "a", &ArrayLiteral{Elements: []Expr{num(1), str("x"), &BoolLiteral{Value: true}, num(1.5)}}),
		decl(scope.DeclVar, "o", &ObjectLiteral{Properties: []Property{{Key: "k", Value: &NullLiteral{}}}}),
		decl(scope.DeclVar, "p", &ObjectLiteral{Properties: []Property{{Key: "f", Value: funcExpr(fn("", nil))}}}),
		decl(scope.DeclVar, "q", &ArrayLiteral{Elements: []Expr{ident("a")}}),
	), options.Default())

	lits := u.Literals()
	if lits.Len() != 2 {
		t.Fatalf("buffers = %d", lits.Len())
	}
	want := []string{`array[1, "x", true, 1.5]`, `object["k", null]`}
	for i, w := range want {
		b, _ := lits.Get(i)
		if b.String() != w {
			t.Errorf("buffer %d = %s, want %s", i, b, w)
		}
	}
	main := u.Functions()[0]
	for _, op := range []ir.Opcode{
		ir.OpCreateArrayWithBuffer, ir.OpCreateObjectWithBuffer,
		ir.OpCreateEmptyObject, ir.OpStOwnByNameWithNameSet,
		ir.OpCreateEmptyArray, ir.OpStOwnByIndex,
	} {
		if countOp(main, op) != 1 {
			t.Errorf("%s count = %d", op, countOp(main, op))
		}
	}
}

func TestLogicalOperators(t *testing.T) {
	tests := []struct {
		op   token.Kind
		want ir.Opcode
		n    int
	}{
		{token.LogicalAnd, ir.OpIsTrue, 1},
		{token.LogicalOr, ir.OpIsFalse, 1},
		{token.Coalesce, ir.OpStrictNotEq, 2},
	}
	for _, tt := range tests {
		u := mustCompile(t, script(
			decl(scope.DeclVar, "r", &Logical{Op: tt.op, Left: ident("a"), Right: ident("b")}),
		), options.Default())
		main := u.Functions()[0]
		if got := countOp(main, tt.want); got != tt.n {
			t.Errorf("%s: %s count = %d, want %d\n%s", tt.op, tt.want, got, tt.n, ir.Listing(main.GetInsns()))
		}
	}
}

func TestComputedMemberKeys(t *testing.T) {
	tests := []struct {
		name string
		prop Expr
		want ir.Opcode
	}{
		{"index", num(3), ir.OpLdObjByIndex},
		{"fraction", num(0.5), ir.OpLdObjByValue},
		{"string", str("k"), ir.OpLdObjByName},
		{"expression", ident("k"), ir.OpLdObjByValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := mustCompile(t, script(
				&ExprStmt{Expr: &Member{Object: ident("o"), Property: tt.prop, Computed: true}},
			), options.Default())
			if countOp(u.Functions()[0], tt.want) != 1 {
				t.Errorf("no %s\n%s", tt.want, ir.Listing(u.Functions()[0].GetInsns()))
			}
		})
	}
}

func TestRecordTypes(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", []string{"a"})},
		decl(scope.DeclVar, "i", num(5)),
	), options.Options{RecordTypes: true})

	lits := u.Literals()
	b0, _ := lits.Get(0)
	if want := `type["function", 1, "#1#f"]`; b0.String() != want {
		t.Errorf("function type = %s, want %s", b0, want)
	}
	main := u.Functions()[0]
	ldai := findInsns(main, ir.OpLdai)[0]
	idx, ok := main.InstType(ldai)
	if !ok {
		t.Fatal("literal load has no type")
	}
	if b, _ := lits.Get(idx); b.String() != `type["number"]` {
		t.Errorf("ldai type = %s", b)
	}
}

func TestDebugInfo(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", []string{"a"},
			decl(scope.DeclLet, "b", ident("a")),
			decl(scope.DeclLet, "x", nil),
			ret(funcExpr(fn("", nil, ret(ident("x"))))),
		)},
	), options.Options{Debug: true})

	f := findFunc(t, u, "f")
	var names []string
	for _, vi := range f.VariableDebugInfo() {
		names = append(names, vi.Name)
	}
	if strings.Join(names, ",") != "a,b" {
		t.Errorf("debug variables = %v", names)
	}
	envs := findInsns(f, ir.OpNewLexEnvWithScopeInfo)
	if len(envs) != 1 {
		t.Fatalf("newlexenvwithscopeinfo count = %d", len(envs))
	}
	b, _ := u.Literals().Get(int(envs[0].Args[1].Int))
	if b.String() != `scope[1, "x", 0]` {
		t.Errorf("scope info = %s", b)
	}
}

func TestWatchEvaluate(t *testing.T) {
	u := mustCompile(t, script(
		&ExprStmt{Expr: &Assign{Target: ident("w"), Value: ident("r")}},
	), options.Options{WatchEvaluate: true})
	main := u.Functions()[0]
	var names []string
	for _, in := range findInsns(main, ir.OpTryLdGlobalByName) {
		names = append(names, in.Args[0].Str)
	}
	if strings.Join(names, ",") != "debuggerGetValue,debuggerSetValue" {
		t.Errorf("debugger lookups = %v", names)
	}
	if countOp(main, ir.OpCallArgs2) != 2 {
		t.Errorf("callargs2 count = %d", countOp(main, ir.OpCallArgs2))
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		s    *Script
		want string
	}{
		{"yield outside generator", script(&ExprStmt{Expr: &Yield{}}), "yield outside"},
		{"await outside async", script(&ExprStmt{Expr: &Await{Value: num(1)}}), "await outside"},
		{"top-level return", script(ret(nil)), "return outside"},
		{"lexical redeclaration", script(decl(scope.DeclLet, "x", nil), decl(scope.DeclVar, "x", nil)), "already been declared"},
		{"lexical in single statement", script(&If{Cond: num(1), Then: []Stmt{decl(scope.DeclLet, "x", nil)}}), "single-statement"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.s, options.Default())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestUnsupportedLowering(t *testing.T) {
	s := script(&ExprStmt{Expr: &Unary{Op: token.Increment, Operand: &Member{Object: ident("o"), Name: "n"}}})
	_, err := Compile(s, options.Default())
	if !errors.Is(err, codegen.ErrUnimplemented) {
		t.Errorf("err = %v, want ErrUnimplemented", err)
	}
}

func TestSnapshotFingerprintIsDeterministic(t *testing.T) {
	build := func() *Script {
		return script(
			decl(scope.DeclVar, "n", num(0)),
			&FuncDecl{Func: fn("inc", []string{"d"},
				&ExprStmt{Expr: &Assign{Op: token.PlusAssign, Target: ident("n"), Value: ident("d")}},
				ret(ident("n")),
			)},
			call(ident("inc"), num(2)),
		)
	}
	var sums [2][32]byte
	for i := range sums {
		p, err := program.Snapshot(mustCompile(t, build(), options.Default()))
		if err != nil {
			t.Fatal(err)
		}
		if sums[i], err = program.Fingerprint(p); err != nil {
			t.Fatal(err)
		}
		if _, ok := p.Function("#1#inc"); !ok {
			t.Errorf("snapshot lacks #1#inc")
		}
	}
	if sums[0] != sums[1] {
		t.Error("identical scripts produced different fingerprints")
	}
}

func TestCatchRestoresEnvironment(t *testing.T) {
	// function f() {
	//   let a = 1; g(function() { return a; });
	//   try { while (true) { let x = 1; g(function() { return x; }); throw 0; } }
	//   catch (e) { return a; }
	// }
	loop := &While{Cond: &BoolLiteral{Value: true}, Body: []Stmt{
		decl(scope.DeclLet, "x", num(1)),
		call(ident("g"), funcExpr(fn("", nil, ret(ident("x"))))),
		&Throw{Value: num(0)},
	}}
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", nil,
			decl(scope.DeclLet, "a", num(1)),
			call(ident("g"), funcExpr(fn("", nil, ret(ident("a"))))),
			&Try{
				Body:    &BlockStmt{Body: []Stmt{loop}},
				Param:   "e",
				Handler: &BlockStmt{Body: []Stmt{ret(ident("a"))}},
			},
		)},
	), options.Default())

	f := findFunc(t, u, "f")
	insns := f.GetInsns()
	movs := findInsns(f, ir.OpMov)
	if len(movs) != 1 {
		t.Fatalf("mov count = %d\n%s", len(movs), ir.Listing(insns))
	}
	saved, env := movs[0].Args[0].Reg, movs[0].Args[1].Reg

	var handler ir.Label
	for h := range f.CatchMap() {
		handler = h
	}
	h, ok := f.LabelOffset(handler)
	if !ok || h+5 >= len(insns) {
		t.Fatalf("handler offset %d\n%s", h, ir.Listing(insns))
	}
	want := []ir.Opcode{ir.OpSta, ir.OpLda, ir.OpStLexEnv, ir.OpSta, ir.OpLda}
	for i, op := range want {
		if insns[h+1+i].Op != op {
			t.Fatalf("handler insn %d = %s, want %s\n%s", i, insns[h+1+i], op, ir.Listing(insns))
		}
	}
	if insns[h+2].Args[0].Reg != saved {
		t.Errorf("restored from %s, want %s", insns[h+2], saved)
	}
	if insns[h+4].Args[0].Reg != env {
		t.Errorf("env register not refreshed: %s", insns[h+4])
	}
	if insns[h+1].Args[0].Reg != insns[h+5].Args[0].Reg {
		t.Error("exception not reloaded after the restore")
	}

	loads := findInsns(f, ir.OpLdLexVar)
	last := loads[len(loads)-1]
	if last.Args[0].Int != 0 || last.Args[1].Int != 0 {
		t.Errorf("handler load of a = %s", last)
	}
}

func TestTryWithoutInnerEnvironmentSkipsRestore(t *testing.T) {
	u := mustCompile(t, script(
		&FuncDecl{Func: fn("f", nil, &Try{
			Body:    &BlockStmt{Body: []Stmt{call(ident("g"))}},
			Handler: &BlockStmt{},
		})},
	), options.Default())
	f := findFunc(t, u, "f")
	if countOp(f, ir.OpStLexEnv) != 0 || countOp(f, ir.OpMov) != 0 {
		t.Errorf("unexpected environment restore\n%s", ir.Listing(f.GetInsns()))
	}
}

func TestVarWithoutInitializer(t *testing.T) {
	u := mustCompile(t, script(
		decl(scope.DeclVar, "i", nil),
		&ExprStmt{Expr: ident("i")},
	), options.Default())
	main := u.Functions()[0]
	checkOps(t, main,
		ir.OpLdUndefined, ir.OpSta, // prologue
		ir.OpLda, ir.OpStGlobalVar, ir.OpLdGlobalVar, ir.OpReturnUndefined)
	if st := findInsns(main, ir.OpStGlobalVar)[0]; st.Args[0].Str != "i" {
		t.Errorf("store = %s", st)
	}

	u = mustCompile(t, script(
		&FuncDecl{Func: fn("f", nil, decl(scope.DeclVar, "v", nil))},
	), options.Default())
	checkOps(t, findFunc(t, u, "f"), ir.OpReturnUndefined)
}

func TestTypeDescriptorsAfterUnitReset(t *testing.T) {
	c := NewCompiler(options.Options{RecordTypes: true})
	if err := c.CompileScript(script(decl(scope.DeclVar, "i", num(5)), decl(scope.DeclVar, "s", str("x")))); err != nil {
		t.Fatal(err)
	}
	c.Unit().Reset()
	if err := c.CompileScript(script(decl(scope.DeclVar, "j", num(7)))); err != nil {
		t.Fatal(err)
	}

	main := c.Unit().Functions()[0]
	ldai := findInsns(main, ir.OpLdai)[0]
	idx, ok := main.InstType(ldai)
	if !ok {
		t.Fatal("literal load has no type")
	}
	b, exists := c.Unit().Literals().Get(idx)
	if !exists || b.String() != `type["number"]` {
		t.Errorf("type %d = %v, %v (registry len %d)", idx, b, exists, c.Unit().Literals().Len())
	}
}

func TestRangeCallsReuseRegisters(t *testing.T) {
	wide := func() Stmt { return call(ident("g"), num(1), num(2), num(3), num(4)) }
	method := func() Stmt { return call(&Member{Object: ident("o"), Name: "m"}, num(1)) }
	tests := []struct {
		name string
		stmt func() Stmt
	}{
		{"callrange", wide},
		{"callthisrange", method},
		{"newobjrange", func() Stmt {
			return &ExprStmt{Expr: &New{Callee: ident("C"), Args: []Expr{num(1), num(2)}}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := findFunc(t, mustCompile(t, script(
				&FuncDecl{Func: fn("f", []string{"o"}, tt.stmt())},
			), options.Default()), "f")
			twice := findFunc(t, mustCompile(t, script(
				&FuncDecl{Func: fn("f", []string{"o"}, tt.stmt(), tt.stmt())},
			), options.Default()), "f")
			if once.TotalRegs() != twice.TotalRegs() {
				t.Errorf("regs = %d after one call, %d after two", once.TotalRegs(), twice.TotalRegs())
			}
			if len(twice.Locals()) != 1 {
				t.Errorf("locals = %v, want only the parameter", twice.Locals())
			}
		})
	}
}

func TestIncrementResult(t *testing.T) {
	tests := []struct {
		name    string
		postfix bool
		want    []ir.Opcode
	}{
		{"prefix", false, []ir.Opcode{
			ir.OpLda, ir.OpSta, ir.OpInc, ir.OpSta,
			ir.OpSta, ir.OpReturnUndefined,
		}},
		{"postfix", true, []ir.Opcode{
			ir.OpLda, ir.OpSta, ir.OpToNumeric, ir.OpSta, ir.OpInc, ir.OpSta, ir.OpLda,
			ir.OpSta, ir.OpReturnUndefined,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inc := &Unary{Op: token.Increment, Operand: ident("a"), Postfix: tt.postfix}
			u := mustCompile(t, script(
				&FuncDecl{Func: fn("f", []string{"a"}, decl(scope.DeclLet, "b", inc))},
			), options.Default())
			f := findFunc(t, u, "f")
			checkOps(t, f, tt.want...)
			if tt.postfix {
				insns := f.GetInsns()
				if insns[6].Args[0].Reg != insns[1].Args[0].Reg {
					t.Errorf("result %s is not the saved old value %s", insns[6], insns[1])
				}
			}
		})
	}
}
