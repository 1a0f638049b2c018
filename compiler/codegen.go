package compiler

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/ecmagen/codegen"
	"github.com/chazu/ecmagen/ir"
	"github.com/chazu/ecmagen/literal"
	"github.com/chazu/ecmagen/options"
	"github.com/chazu/ecmagen/scope"
	"github.com/chazu/ecmagen/token"
)

// ---------------------------------------------------------------------------
// Codegen: lower the AST through the bytecode generator
// ---------------------------------------------------------------------------

// resumeThrow is the getresumemode result of a throw() resumption; next
// and return resumptions report 0 and 1.
const resumeThrow = 2

// Compiler lowers an analyzed script into a compilation unit, one
// generator per function.
type Compiler struct {
	unit     *codegen.Unit
	sema     *SemanticAnalyzer
	file     string
	nextFunc int

	errors []error
	log    commonlog.Logger
}

// frame is the per-function lowering context.
type frame struct {
	g   *codegen.Generator
	fn  *Function // nil for the script body
	cur *scope.Scope

	// state holds the generator or async function object.
	state    *ir.VReg
	tryDepth int
}

// NewCompiler creates a compiler emitting into a fresh unit.
func NewCompiler(opts options.Options) *Compiler {
	return &Compiler{
		unit: codegen.NewUnit(opts),
		log:  commonlog.GetLogger("ecmagen.compiler"),
	}
}

// Unit returns the compilation unit.
func (c *Compiler) Unit() *codegen.Unit {
	return c.unit
}

// Errors returns accumulated compilation errors.
func (c *Compiler) Errors() []error {
	return c.errors
}

func (c *Compiler) check(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

func (c *Compiler) errorAt(node Node, err error) {
	p := node.Span().Start
	c.errors = append(c.errors, fmt.Errorf("line %d, column %d: %w", p.Line, p.Column, err))
}

func posOf(n Node) codegen.Pos {
	p := n.Span().Start
	return codegen.Pos{Line: p.Line, Column: p.Column}
}

func endOf(n Node) codegen.Pos {
	p := n.Span().End
	return codegen.Pos{Line: p.Line, Column: p.Column}
}

// Compile analyzes and lowers a script.
func Compile(script *Script, opts options.Options) (*codegen.Unit, error) {
	c := NewCompiler(opts)
	if err := c.CompileScript(script); err != nil {
		return nil, err
	}
	return c.Unit(), nil
}

// CompileScript lowers script into the compiler's unit. The script body
// becomes the "main" function.
func (c *Compiler) CompileScript(script *Script) error {
	c.sema = NewSemanticAnalyzer()
	global := c.sema.AnalyzeScript(script)
	if errs := c.sema.Errors(); len(errs) > 0 {
		return fmt.Errorf("semantic errors: %s", strings.Join(errs, "; "))
	}
	c.file = script.File

	g := codegen.NewGenerator(c.unit, global)
	g.SetSourceFile(script.File)
	if len(script.Body) > 0 {
		g.SetFirstStmt(posOf(script.Body[0]))
	}
	f := &frame{g: g, cur: global}

	if global.NeedsLexicalEnvironment() {
		g.NewLexicalEnv(posOf(script), global)
	}
	c.hoistFunctions(f, script.Body)
	c.compileStatements(f, script.Body)
	g.ReturnUndefined(endOf(script))
	c.finish(f)

	if len(c.errors) > 0 {
		return errors.Join(c.errors...)
	}
	c.log.Infof("compiled %s: %d functions, %d buffers",
		script.File, len(c.unit.Functions()), c.unit.Literals().Len())
	return nil
}

func (c *Compiler) finish(f *frame) {
	if err := f.g.Finish(); err != nil {
		c.errors = append(c.errors, err)
	}
	f.cur.Close()
}

// endsWithReturn checks if statement list ends with a return.
func endsWithReturn(stmts []Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*Return)
	return ok
}

func callType(fn *Function) int {
	t := 0
	if fn.Arrow {
		t |= codegen.CallArrow
	} else if !fn.Async && !fn.Generator {
		t |= codegen.CallConstructor
	}
	if fn.Generator {
		t |= codegen.CallGenerator
	}
	if fn.Async {
		t |= codegen.CallAsync
	}
	return t
}

// ---------------------------------------------------------------------------
// Functions
// ---------------------------------------------------------------------------

// compileFunction lowers fn into its own generator and returns the
// function's internal name.
func (c *Compiler) compileFunction(fn *Function) string {
	sc := c.sema.ScopeOf(fn)
	c.nextFunc++
	name := fmt.Sprintf("#%d#%s", c.nextFunc, fn.Name)
	opts := c.unit.Options()

	g := codegen.NewGenerator(c.unit, sc)
	g.SetName(name)
	g.SetSourceFile(c.file)
	g.SetSourceCode(fn.Source)
	g.SetCallType(callType(fn))
	if len(fn.Body) > 0 {
		g.SetFirstStmt(posOf(fn.Body[0]))
	}
	f := &frame{g: g, fn: fn, cur: sc}
	pos := posOf(fn)

	// The descriptor is reserved before the body so nested functions get
	// later indices.
	typeIdx := -1
	if opts.RecordTypes {
		typeIdx = c.unit.AppendTypeBuffer(literal.NewBuffer(literal.KindType))
	}
	var start ir.Label
	if opts.Debug {
		start = g.NewLabel()
		g.Label(start)
	}

	params := make([]*ir.VReg, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = g.AddParameter(sc.FindLocal(p))
	}
	if sc.NeedsLexicalEnvironment() {
		g.NewLexicalEnv(pos, sc)
		for i, p := range fn.Params {
			if sc.FindLocal(p).IsLexical() {
				g.LoadAccumulator(pos, params[i])
				c.check(g.StoreVariable(pos, sc, p, true))
			}
		}
	}
	if sc.UseArgs() {
		c.check(g.LoadAccFromArgs(pos))
	}
	c.enterSuspendable(f, pos)
	c.hoistFunctions(f, fn.Body)

	if fn.Async && !fn.Generator {
		c.compileAsyncBody(f, fn)
	} else {
		c.compileStatements(f, fn.Body)
		if !endsWithReturn(fn.Body) {
			c.compileReturn(f, endOf(fn), nil)
		}
	}

	if opts.Debug {
		end := g.NewLabel()
		g.Label(end)
		for _, n := range sc.Names() {
			g.AddVariableDebugInfo(sc.FindLocal(n), start, end)
		}
	}
	c.finish(f)

	if typeIdx >= 0 {
		desc := literal.NewBuffer(literal.KindType,
			literal.String("function"), literal.Int(int64(len(fn.Params))), literal.String(name))
		c.check(c.unit.SetTypeBuffer(typeIdx, desc))
	}
	return name
}

// defineFunction lowers fn and leaves the closure in the accumulator.
func (c *Compiler) defineFunction(f *frame, fn *Function, pos codegen.Pos) {
	name := c.compileFunction(fn)
	f.g.DefineFunction(pos, codegen.FunctionDesc{
		Name:        name,
		ParamLength: len(fn.Params),
		Async:       fn.Async,
		Generator:   fn.Generator,
		Arrow:       fn.Arrow,
	}, f.g.Cached(codegen.CacheLexEnv))
}

// hoistFunctions defines the function declarations directly in stmts
// before any other statement of the block runs.
func (c *Compiler) hoistFunctions(f *frame, stmts []Stmt) {
	for _, stmt := range stmts {
		d, ok := stmt.(*FuncDecl)
		if !ok {
			continue
		}
		pos := posOf(d)
		c.defineFunction(f, d.Func, pos)
		c.check(f.g.StoreVariable(pos, f.cur, d.Func.Name, true))
	}
}

// enterSuspendable creates the generator or async function object. A
// generator suspends once before its body runs.
func (c *Compiler) enterSuspendable(f *frame, pos codegen.Pos) {
	g, fn := f.g, f.fn
	switch {
	case fn.Generator:
		f.state = g.AllocLocal()
		if fn.Async {
			g.CreateAsyncGeneratorObj(pos, g.Cached(codegen.CacheFunction))
		} else {
			g.CreateGeneratorObj(pos, g.Cached(codegen.CacheFunction))
		}
		g.StoreAccumulator(pos, f.state)
		g.SuspendGenerator(pos, f.state, f.state)
		c.resume(f, pos)
	case fn.Async:
		f.state = g.AllocLocal()
		g.AsyncFunctionEnter(pos)
		g.StoreAccumulator(pos, f.state)
	}
}

// resume reads the value the suspended function was resumed with and
// rethrows it in throw mode. Return mode continues like next.
func (c *Compiler) resume(f *frame, pos codegen.Pos) {
	g := f.g
	val, mode := g.AllocTemp(), g.AllocTemp()
	g.ResumeGenerator(pos, f.state)
	g.StoreAccumulator(pos, val)
	g.GetResumeMode(pos, f.state)
	g.StoreAccumulator(pos, mode)
	g.LoadAccumulatorInt(pos, resumeThrow)
	notThrow := g.NewLabel()
	c.check(g.Condition(pos, token.StrictEqual, mode, notThrow))
	g.LoadAccumulator(pos, val)
	g.Throw(pos)
	g.Label(notThrow)
	g.LoadAccumulator(pos, val)
	g.FreeTemps(val, mode)
}

// compileAsyncBody wraps the body of an async function in a handler that
// rejects the function's promise.
func (c *Compiler) compileAsyncBody(f *frame, fn *Function) {
	g := f.g
	begin, end, handler := g.NewLabel(), g.NewLabel(), g.NewLabel()
	g.Label(begin)
	f.tryDepth++
	c.compileStatements(f, fn.Body)
	if !endsWithReturn(fn.Body) {
		c.compileReturn(f, endOf(fn), nil)
	}
	f.tryDepth--
	g.Label(end)

	pos := endOf(fn)
	g.Label(handler)
	reason := g.AllocTemp()
	g.StoreAccumulator(pos, reason)
	g.AsyncFunctionReject(pos, f.state, reason, g.Cached(codegen.CacheTrue))
	g.FreeTemps(reason)
	g.Return(pos)
	g.NewCatchTable(handler, codegen.LabelPair{Begin: begin, End: end}, f.tryDepth)
}

func (c *Compiler) compileReturn(f *frame, pos codegen.Pos, value Expr) {
	g, fn := f.g, f.fn
	if fn == nil || (!fn.Generator && !fn.Async) {
		if value == nil {
			g.ReturnUndefined(pos)
			return
		}
		c.compileExpr(f, value)
		g.Return(pos)
		return
	}

	if value == nil {
		g.LoadCanonical(pos, codegen.CacheUndefined)
	} else {
		c.compileExpr(f, value)
	}
	val := g.AllocTemp()
	g.StoreAccumulator(pos, val)
	done := g.Cached(codegen.CacheTrue)
	switch {
	case fn.Generator && fn.Async:
		g.AsyncGeneratorResolve(pos, f.state, val, done)
	case fn.Generator:
		g.CreateIterResultObj(pos, val, done)
	default:
		g.AsyncFunctionResolve(pos, f.state, val, done)
	}
	g.FreeTemps(val)
	g.Return(pos)
}

// ---------------------------------------------------------------------------
// Statement compilation
// ---------------------------------------------------------------------------

func (c *Compiler) compileStatements(f *frame, stmts []Stmt) {
	for _, stmt := range stmts {
		c.compileStmt(f, stmt)
	}
}

func (c *Compiler) compileStmt(f *frame, stmt Stmt) {
	g := f.g
	pos := posOf(stmt)
	switch n := stmt.(type) {
	case *VarDecl:
		switch {
		case n.Init != nil:
			c.compileExpr(f, n.Init)
		case n.Kind == scope.DeclVar:
			// Only a global var needs a store, to create the property.
			if res, ok := f.cur.Resolve(n.Name); !ok || res.Variable.Kind() != scope.Global {
				return
			}
			g.LoadCanonical(pos, codegen.CacheUndefined)
		default:
			g.LoadCanonical(pos, codegen.CacheUndefined)
		}
		c.check(g.StoreVariable(pos, f.cur, n.Name, true))
	case *FuncDecl:
		// defined by hoistFunctions
	case *ExprStmt:
		c.compileExpr(f, n.Expr)
	case *Return:
		c.compileReturn(f, pos, n.Value)
	case *If:
		elseLabel := g.NewLabel()
		c.compileCondition(f, n.Cond, elseLabel)
		c.compileStatements(f, n.Then)
		if len(n.Else) == 0 {
			g.Label(elseLabel)
			return
		}
		endLabel := g.NewLabel()
		g.Branch(pos, endLabel)
		g.Label(elseLabel)
		c.compileStatements(f, n.Else)
		g.Label(endLabel)
	case *While:
		loop, exit := g.NewLabel(), g.NewLabel()
		g.Label(loop)
		c.compileCondition(f, n.Cond, exit)
		c.compileScoped(f, c.sema.ScopeOf(n), n.Body, pos)
		g.Branch(pos, loop)
		g.Label(exit)
	case *BlockStmt:
		c.compileScoped(f, c.sema.ScopeOf(n), n.Body, pos)
	case *Throw:
		c.compileExpr(f, n.Value)
		g.Throw(pos)
	case *Try:
		c.compileTry(f, n)
	default:
		c.errorAt(stmt, fmt.Errorf("statement %T: %w", stmt, codegen.ErrUnimplemented))
	}
}

// compileScoped lowers body in sc, creating and leaving sc's lexical
// environment around it when sc owns captured slots.
func (c *Compiler) compileScoped(f *frame, sc *scope.Scope, body []Stmt, pos codegen.Pos) {
	prev := f.cur
	f.cur = sc
	env := sc.NeedsLexicalEnvironment()
	if env {
		f.g.NewLexicalEnv(pos, sc)
	}
	c.hoistFunctions(f, body)
	c.compileStatements(f, body)
	if env {
		f.g.PopLexicalEnv(pos)
	}
	f.cur = prev
	sc.Close()
}

// compileCondition jumps to ifFalse unless cond holds. Relational
// conditions compare and jump directly.
func (c *Compiler) compileCondition(f *frame, cond Expr, ifFalse ir.Label) {
	if b, ok := cond.(*Binary); ok && b.Op.IsRelational() {
		lhs := c.compileToTemp(f, b.Left)
		c.compileExpr(f, b.Right)
		c.check(f.g.Condition(posOf(b), b.Op, lhs, ifFalse))
		f.g.FreeTemps(lhs)
		return
	}
	c.compileExpr(f, cond)
	f.g.JumpIfFalse(posOf(cond), ifFalse)
}

func (c *Compiler) compileTry(f *frame, n *Try) {
	g := f.g
	pos := posOf(n)
	begin, end, handler, exit := g.NewLabel(), g.NewLabel(), g.NewLabel(), g.NewLabel()
	depth := f.tryDepth

	// A throw from inside a nested environment leaves that environment
	// current; the handler runs in the one active at try entry.
	var env *ir.VReg
	if c.createsEnvironment(n.Body) {
		env = g.AllocTemp()
		g.MoveVreg(pos, env, g.Cached(codegen.CacheLexEnv))
	}

	f.tryDepth++
	g.Label(begin)
	c.compileScoped(f, c.sema.ScopeOf(n.Body), n.Body.Body, pos)
	g.Label(end)
	f.tryDepth--
	g.Branch(pos, exit)

	// The exception arrives in the accumulator.
	g.Label(handler)
	if env != nil {
		exc := g.AllocTemp()
		g.StoreAccumulator(pos, exc)
		g.SetLexicalEnv(pos, env)
		g.LoadAccumulator(pos, exc)
		g.FreeTemps(exc)
	}
	hs := c.sema.ScopeOf(n.Handler)
	prev := f.cur
	f.cur = hs
	if n.Param != "" {
		c.check(g.StoreVariable(pos, hs, n.Param, true))
	}
	c.hoistFunctions(f, n.Handler.Body)
	c.compileStatements(f, n.Handler.Body)
	f.cur = prev
	hs.Close()
	g.Label(exit)
	if env != nil {
		g.FreeTemps(env)
	}

	g.NewCatchTable(handler, codegen.LabelPair{Begin: begin, End: end}, depth)
}

// createsEnvironment reports whether lowering stmt enters a lexical
// environment of its own. Nested functions are not counted.
func (c *Compiler) createsEnvironment(stmt Stmt) bool {
	switch n := stmt.(type) {
	case *BlockStmt:
		if c.sema.ScopeOf(n).NeedsLexicalEnvironment() {
			return true
		}
		return c.anyCreatesEnvironment(n.Body)
	case *While:
		if c.sema.ScopeOf(n).NeedsLexicalEnvironment() {
			return true
		}
		return c.anyCreatesEnvironment(n.Body)
	case *If:
		return c.anyCreatesEnvironment(n.Then) || c.anyCreatesEnvironment(n.Else)
	case *Try:
		return c.createsEnvironment(n.Body) || c.createsEnvironment(n.Handler)
	}
	return false
}

func (c *Compiler) anyCreatesEnvironment(stmts []Stmt) bool {
	for _, s := range stmts {
		if c.createsEnvironment(s) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Expression compilation
// ---------------------------------------------------------------------------

// compileToTemp evaluates e into a fresh temporary.
func (c *Compiler) compileToTemp(f *frame, e Expr) *ir.VReg {
	c.compileExpr(f, e)
	r := f.g.AllocTemp()
	f.g.StoreAccumulator(posOf(e), r)
	return r
}

func (c *Compiler) compileExpr(f *frame, expr Expr) {
	g := f.g
	pos := posOf(expr)
	switch n := expr.(type) {
	case *NumberLiteral:
		c.recordType(g, g.LoadAccumulatorNumber(pos, n.Value), "number")
	case *StringLiteral:
		c.recordType(g, g.LoadAccumulatorString(pos, n.Value), "string")
	case *BoolLiteral:
		cached := codegen.CacheFalse
		if n.Value {
			cached = codegen.CacheTrue
		}
		c.recordType(g, g.LoadCanonical(pos, cached), "boolean")
	case *NullLiteral:
		g.LoadCanonical(pos, codegen.CacheNull)
	case *UndefinedLiteral:
		g.LoadCanonical(pos, codegen.CacheUndefined)
	case *Identifier:
		c.check(g.LoadVariable(pos, f.cur, n.Name))
	case *Binary:
		lhs := c.compileToTemp(f, n.Left)
		c.compileExpr(f, n.Right)
		c.check(g.Binary(pos, n.Op, lhs))
		g.FreeTemps(lhs)
	case *Logical:
		c.compileLogical(f, n)
	case *Unary:
		c.compileUnary(f, n)
	case *Assign:
		c.compileAssign(f, n)
	case *Member:
		obj := c.compileToTemp(f, n.Object)
		key, temps := c.memberKey(f, n)
		g.LoadObjProperty(pos, obj, key)
		g.FreeTemps(append(temps, obj)...)
	case *Call:
		c.compileCall(f, n)
	case *New:
		regs := c.evalRange(f, 1+len(n.Args))
		c.compileExpr(f, n.Callee)
		g.StoreAccumulator(pos, regs[0])
		c.evalArgs(f, n.Args, regs[1:])
		c.check(g.NewObject(pos, regs))
		g.FreeRange(regs)
	case *FunctionExpr:
		c.defineFunction(f, n.Func, pos)
	case *ArrayLiteral:
		c.compileArray(f, n)
	case *ObjectLiteral:
		c.compileObject(f, n)
	case *Yield:
		c.compileYield(f, n)
	case *Await:
		c.compileExpr(f, n.Value)
		val := g.AllocTemp()
		g.StoreAccumulator(pos, val)
		g.AsyncFunctionAwaitUncaught(pos, f.state, val)
		g.SuspendGenerator(pos, f.state, val)
		g.FreeTemps(val)
		c.resume(f, pos)
	default:
		c.errorAt(expr, fmt.Errorf("expression %T: %w", expr, codegen.ErrUnimplemented))
	}
}

// recordType tags a literal load with its primitive type descriptor.
func (c *Compiler) recordType(g *codegen.Generator, in *ir.Insn, name string) {
	if !c.unit.Options().RecordTypes {
		return
	}
	g.SetInstType(in, c.unit.PrimitiveType(name))
}

func (c *Compiler) compileLogical(f *frame, n *Logical) {
	g := f.g
	pos := posOf(n)
	res := g.AllocTemp()
	end := g.NewLabel()

	c.compileExpr(f, n.Left)
	g.StoreAccumulator(pos, res)
	switch n.Op {
	case token.LogicalAnd:
		g.JumpIfFalse(pos, end)
	case token.LogicalOr:
		g.JumpIfTrue(pos, end)
	case token.Coalesce:
		useRight := g.NewLabel()
		g.LoadCanonical(pos, codegen.CacheNull)
		c.check(g.Condition(pos, token.StrictNotEqual, res, useRight))
		g.LoadCanonical(pos, codegen.CacheUndefined)
		c.check(g.Condition(pos, token.StrictNotEqual, res, useRight))
		g.Branch(pos, end)
		g.Label(useRight)
	default:
		c.errorAt(n, fmt.Errorf("logical operator %s: %w", n.Op, codegen.ErrUnimplemented))
	}
	c.compileExpr(f, n.Right)
	g.StoreAccumulator(pos, res)
	g.Label(end)
	g.LoadAccumulator(pos, res)
	g.FreeTemps(res)
}

func (c *Compiler) compileUnary(f *frame, n *Unary) {
	g := f.g
	pos := posOf(n)
	switch n.Op {
	case token.Not:
		c.compileExpr(f, n.Operand)
		c.check(g.Unary(pos, token.Not, nil))
	case token.Increment, token.Decrement:
		id, ok := n.Operand.(*Identifier)
		if !ok {
			c.errorAt(n, fmt.Errorf("%s on %T: %w", n.Op, n.Operand, codegen.ErrUnimplemented))
			return
		}
		c.check(g.LoadVariable(pos, f.cur, id.Name))
		old := g.AllocTemp()
		g.StoreAccumulator(pos, old)
		if n.Postfix {
			// x++ evaluates to the numeric value before the update
			g.ToNumeric(pos, old)
			g.StoreAccumulator(pos, old)
		}
		c.check(g.Unary(pos, n.Op, old))
		c.check(g.StoreVariable(pos, f.cur, id.Name, false))
		if n.Postfix {
			g.LoadAccumulator(pos, old)
		}
		g.FreeTemps(old)
	default:
		operand := c.compileToTemp(f, n.Operand)
		c.check(g.Unary(pos, n.Op, operand))
		g.FreeTemps(operand)
	}
}

func (c *Compiler) compileAssign(f *frame, n *Assign) {
	g := f.g
	pos := posOf(n)
	compound := n.Op.IsCompoundAssign()
	switch t := n.Target.(type) {
	case *Identifier:
		if compound {
			c.check(g.LoadVariable(pos, f.cur, t.Name))
			lhs := g.AllocTemp()
			g.StoreAccumulator(pos, lhs)
			c.compileExpr(f, n.Value)
			c.check(g.Binary(pos, n.Op, lhs))
			g.FreeTemps(lhs)
		} else {
			c.compileExpr(f, n.Value)
		}
		c.check(g.StoreVariable(pos, f.cur, t.Name, false))
	case *Member:
		obj := c.compileToTemp(f, t.Object)
		key, temps := c.memberKey(f, t)
		if compound {
			g.LoadObjProperty(pos, obj, key)
			lhs := g.AllocTemp()
			g.StoreAccumulator(pos, lhs)
			c.compileExpr(f, n.Value)
			c.check(g.Binary(pos, n.Op, lhs))
			g.FreeTemps(lhs)
		} else {
			c.compileExpr(f, n.Value)
		}
		g.StoreObjProperty(pos, obj, key)
		g.FreeTemps(append(temps, obj)...)
	default:
		c.errorAt(n, fmt.Errorf("assignment to %T: %w", n.Target, codegen.ErrUnimplemented))
	}
}

// memberKey builds the property key of m. Computed keys that are not
// literals are evaluated into temporaries, returned for release.
func (c *Compiler) memberKey(f *frame, m *Member) (codegen.PropertyKey, []*ir.VReg) {
	if !m.Computed {
		return codegen.NameKey(m.Name), nil
	}
	switch p := m.Property.(type) {
	case *NumberLiteral:
		return codegen.NumberKey(p.Value), nil
	case *StringLiteral:
		return codegen.NameKey(p.Value), nil
	}
	r := c.compileToTemp(f, m.Property)
	return codegen.ValueKey(r), []*ir.VReg{r}
}

// evalRange allocates the consecutive registers of a range call. The
// caller frees them with FreeRange once the call is emitted.
func (c *Compiler) evalRange(f *frame, n int) []*ir.VReg {
	return f.g.AllocRange(n)
}

func (c *Compiler) evalArgs(f *frame, args []Expr, regs []*ir.VReg) {
	for i, a := range args {
		c.compileExpr(f, a)
		f.g.StoreAccumulator(posOf(a), regs[i])
	}
}

func (c *Compiler) compileCall(f *frame, n *Call) {
	g := f.g
	pos := posOf(n)
	m, isMethod := n.Callee.(*Member)
	if !isMethod {
		var regs []*ir.VReg
		if len(n.Args) > 3 {
			regs = c.evalRange(f, 1+len(n.Args))
		} else {
			regs = make([]*ir.VReg, 1+len(n.Args))
			for i := range regs {
				regs[i] = g.AllocTemp()
			}
		}
		c.compileExpr(f, n.Callee)
		g.StoreAccumulator(pos, regs[0])
		c.evalArgs(f, n.Args, regs[1:])
		c.check(g.Call(pos, regs, false))
		if len(n.Args) > 3 {
			g.FreeRange(regs)
		} else {
			g.FreeTemps(regs...)
		}
		return
	}

	regs := c.evalRange(f, 2+len(n.Args))
	c.compileExpr(f, m.Object)
	g.StoreAccumulator(pos, regs[1])
	key, temps := c.memberKey(f, m)
	g.LoadObjProperty(pos, regs[1], key)
	g.StoreAccumulator(pos, regs[0])
	g.FreeTemps(temps...)
	c.evalArgs(f, n.Args, regs[2:])
	c.check(g.Call(pos, regs, true))
	g.FreeRange(regs)
}

func (c *Compiler) compileYield(f *frame, n *Yield) {
	g := f.g
	pos := posOf(n)
	if n.Value == nil {
		g.LoadCanonical(pos, codegen.CacheUndefined)
	} else {
		c.compileExpr(f, n.Value)
	}
	val := g.AllocTemp()
	g.StoreAccumulator(pos, val)
	notDone := g.Cached(codegen.CacheFalse)
	if f.fn.Async {
		g.AsyncGeneratorResolve(pos, f.state, val, notDone)
		g.SuspendGenerator(pos, f.state, val)
	} else {
		res := g.AllocTemp()
		g.CreateIterResultObj(pos, val, notDone)
		g.StoreAccumulator(pos, res)
		g.SuspendGenerator(pos, f.state, res)
		g.FreeTemps(res)
	}
	g.FreeTemps(val)
	c.resume(f, pos)
}

// ---------------------------------------------------------------------------
// Array and object literals
// ---------------------------------------------------------------------------

// constantLiteral returns the buffer literal for a constant expression.
func constantLiteral(e Expr) (literal.Literal, bool) {
	switch n := e.(type) {
	case *NumberLiteral:
		v := n.Value
		if v == math.Trunc(v) && v >= math.MinInt32 && v <= math.MaxInt32 && !(v == 0 && math.Signbit(v)) {
			return literal.Int(int64(v)), true
		}
		return literal.Double(v), true
	case *StringLiteral:
		return literal.String(n.Value), true
	case *BoolLiteral:
		return literal.Bool(n.Value), true
	case *NullLiteral:
		return literal.Null(), true
	}
	return literal.Literal{}, false
}

func (c *Compiler) compileArray(f *frame, n *ArrayLiteral) {
	g := f.g
	pos := posOf(n)
	if buf, ok := constantArray(n); ok {
		g.CreateArrayWithBuffer(pos, c.unit.AppendLiteralBuffer(buf))
		return
	}
	g.CreateEmptyArray(pos)
	if len(n.Elements) == 0 {
		return
	}
	arr := g.AllocTemp()
	g.StoreAccumulator(pos, arr)
	for i, e := range n.Elements {
		c.compileExpr(f, e)
		g.StoreOwnProperty(posOf(e), arr, codegen.IndexKey(uint32(i)), false)
	}
	g.LoadAccumulator(pos, arr)
	g.FreeTemps(arr)
}

func constantArray(n *ArrayLiteral) (*literal.Buffer, bool) {
	if len(n.Elements) == 0 {
		return nil, false
	}
	buf := literal.NewBuffer(literal.KindArray)
	for _, e := range n.Elements {
		lit, ok := constantLiteral(e)
		if !ok {
			return nil, false
		}
		buf.Add(lit)
	}
	return buf, true
}

func (c *Compiler) compileObject(f *frame, n *ObjectLiteral) {
	g := f.g
	pos := posOf(n)
	if buf, ok := constantObject(n); ok {
		g.CreateObjectWithBuffer(pos, c.unit.AppendLiteralBuffer(buf))
		return
	}
	g.CreateEmptyObject(pos)
	if len(n.Properties) == 0 {
		return
	}
	obj := g.AllocTemp()
	g.StoreAccumulator(pos, obj)
	for _, p := range n.Properties {
		c.compileExpr(f, p.Value)
		fe, isFunc := p.Value.(*FunctionExpr)
		nameSet := isFunc && fe.Func.Name == ""
		g.StoreOwnProperty(posOf(p.Value), obj, codegen.NameKey(p.Key), nameSet)
	}
	g.LoadAccumulator(pos, obj)
	g.FreeTemps(obj)
}

func constantObject(n *ObjectLiteral) (*literal.Buffer, bool) {
	if len(n.Properties) == 0 {
		return nil, false
	}
	buf := literal.NewBuffer(literal.KindObject)
	for _, p := range n.Properties {
		lit, ok := constantLiteral(p.Value)
		if !ok {
			return nil, false
		}
		buf.Add(literal.String(p.Key), lit)
	}
	return buf, true
}
