package codegen

import (
	"fmt"

	"github.com/chazu/ecmagen/ir"
	"github.com/chazu/ecmagen/scope"
)

// Names of the global functions the debugger installs for watch
// expressions.
const (
	debuggerGetter = "debuggerGetValue"
	debuggerSetter = "debuggerSetValue"
)

// VRegForVariable returns the register bound to a local variable, binding
// a fresh local on first use.
func (g *Generator) VRegForVariable(v *scope.Variable) (*ir.VReg, error) {
	if v == nil {
		return nil, ErrUnboundIdentifier
	}
	if v.Kind() != scope.Local || v.IsLexical() {
		return nil, fmt.Errorf("%s has no register: %w", v, ErrUnboundIdentifier)
	}
	if v.Bound() {
		return v.Reg(), nil
	}
	return v.BindReg(g.AllocLocal()), nil
}

// LocalRegister resolves name from sc and returns its register.
func (g *Generator) LocalRegister(sc *scope.Scope, name string) (*ir.VReg, error) {
	res, ok := sc.Resolve(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnboundIdentifier)
	}
	return g.VRegForVariable(res.Variable)
}

// LoadVariable loads name, as seen from scope sc, into the accumulator.
func (g *Generator) LoadVariable(pos Pos, sc *scope.Scope, name string) error {
	res, ok := sc.Resolve(name)
	if !ok {
		g.TryLoadGlobalByName(pos, name)
		return nil
	}
	v := res.Variable
	switch v.Kind() {
	case scope.Global:
		g.LoadGlobalVar(pos, name)
	case scope.Module:
		g.LoadModuleVariable(pos, name, v.Decl() != scope.DeclImport)
	default:
		switch {
		case v.IsLexical():
			g.LoadLexicalVar(pos, res.Level, v.Slot())
			if v.NeedsHoleCheck() {
				g.checkHole(pos, name)
			}
		case res.Scope.Kind() == scope.KindGlobal:
			g.TryLoadGlobalByName(pos, name)
		default:
			r, err := g.VRegForVariable(v)
			if err != nil {
				return err
			}
			g.LoadAccumulator(pos, r)
		}
	}
	return nil
}

// StoreVariable stores the accumulator to name, as seen from scope sc. The
// accumulator is preserved. isDeclaration marks the initializing store of a
// declaration, which skips the const and dead-zone checks.
func (g *Generator) StoreVariable(pos Pos, sc *scope.Scope, name string, isDeclaration bool) error {
	res, ok := sc.Resolve(name)
	if !ok {
		g.TryStoreGlobalByName(pos, name)
		return nil
	}
	return g.storeResolved(pos, res, isDeclaration)
}

func (g *Generator) storeResolved(pos Pos, res scope.Resolution, isDeclaration bool) error {
	v := res.Variable
	name := v.Name()
	switch v.Kind() {
	case scope.Global:
		g.StoreGlobalVar(pos, name)
	case scope.Module:
		g.StoreModuleVariable(pos, name)
	default:
		switch {
		case v.IsLexical():
			g.storeLexical(pos, res.Level, v, isDeclaration)
		case res.Scope.Kind() == scope.KindGlobal:
			g.storeGlobalLexical(pos, v, isDeclaration)
		default:
			r, err := g.VRegForVariable(v)
			if err != nil {
				return err
			}
			if !isDeclaration && v.IsConst() {
				g.throwConstAssignmentTo(pos, name)
				return nil
			}
			g.StoreAccumulator(pos, r)
		}
	}
	return nil
}

// storeGlobalLexical handles let, const and class at script top level,
// which live in the global lexical record.
func (g *Generator) storeGlobalLexical(pos Pos, v *scope.Variable, isDeclaration bool) {
	name := v.Name()
	if !isDeclaration {
		g.TryStoreGlobalByName(pos, name)
		return
	}
	switch v.Decl() {
	case scope.DeclConst:
		g.StoreConstToGlobalRecord(pos, name)
	case scope.DeclClass:
		g.StoreClassToGlobalRecord(pos, name)
	default:
		g.StoreLetToGlobalRecord(pos, name)
	}
}

func (g *Generator) storeLexical(pos Pos, level int, v *scope.Variable, isDeclaration bool) {
	val := g.AllocTemp()
	g.StoreAccumulator(pos, val)
	if !isDeclaration && v.NeedsHoleCheck() {
		g.LoadLexicalVar(pos, level, v.Slot())
		g.checkHole(pos, v.Name())
		if v.IsConst() {
			g.throwConstAssignmentTo(pos, v.Name())
			g.FreeTemps(val)
			return
		}
	}
	g.StoreLexicalVar(pos, level, v.Slot(), val)
	g.LoadAccumulator(pos, val)
	g.FreeTemps(val)
}

// checkHole throws a reference error if the accumulator holds the hole
// left by an uninitialized lexical binding. The accumulator is preserved.
func (g *Generator) checkHole(pos Pos, name string) {
	hole, nameReg := g.AllocTemp(), g.AllocTemp()
	g.StoreAccumulator(pos, hole)
	g.LoadAccumulatorString(pos, name)
	g.StoreAccumulator(pos, nameReg)
	g.ThrowUndefinedIfHole(pos, hole, nameReg)
	g.LoadAccumulator(pos, hole)
	g.FreeTemps(hole, nameReg)
}

func (g *Generator) throwConstAssignmentTo(pos Pos, name string) {
	nameReg := g.AllocTemp()
	g.LoadAccumulatorString(pos, name)
	g.StoreAccumulator(pos, nameReg)
	g.ThrowConstAssignment(pos, nameReg)
	g.FreeTemps(nameReg)
}

// LoadAccFromArgs materializes the arguments object into the function's
// "arguments" binding.
func (g *Generator) LoadAccFromArgs(pos Pos) error {
	fn := g.scope
	if !fn.Caps().TracksArgumentsObject || !fn.UseArgs() {
		return fmt.Errorf("%s: %w", g.name, ErrArgumentsUnavailable)
	}
	v := fn.FindLocal("arguments")
	if v == nil {
		return fmt.Errorf("%s: no arguments binding: %w", g.name, ErrArgumentsUnavailable)
	}
	fn.SetArgumentsOrRestArgs()
	g.GetUnmappedArgs(pos)
	return g.storeResolved(pos, scope.Resolution{Variable: v, Scope: fn}, true)
}

// ---------------------------------------------------------------------------
// Global record
// ---------------------------------------------------------------------------

// TryLoadGlobalByName loads a global, throwing if it does not exist. In
// watch-evaluate mode the debugger's getter is called instead.
func (g *Generator) TryLoadGlobalByName(pos Pos, name string) {
	if g.unit.opts.WatchEvaluate {
		g.loadByNameViaDebugger(pos, name, true)
		return
	}
	g.emit(pos, ir.OpTryLdGlobalByName, ir.Str(name))
}

// TryStoreGlobalByName stores the accumulator to an existing global. In
// watch-evaluate mode the debugger's setter is called instead.
func (g *Generator) TryStoreGlobalByName(pos Pos, name string) {
	if g.unit.opts.WatchEvaluate {
		g.storeByNameViaDebugger(pos, name)
		return
	}
	g.emit(pos, ir.OpTryStGlobalByName, ir.Str(name))
}

// LoadGlobalVar loads a var-declared global.
func (g *Generator) LoadGlobalVar(pos Pos, name string) {
	g.emit(pos, ir.OpLdGlobalVar, ir.Str(name))
}

// StoreGlobalVar stores the accumulator to a var-declared global.
func (g *Generator) StoreGlobalVar(pos Pos, name string) {
	g.emit(pos, ir.OpStGlobalVar, ir.Str(name))
}

// StoreLetToGlobalRecord initializes a top-level let.
func (g *Generator) StoreLetToGlobalRecord(pos Pos, name string) {
	g.emit(pos, ir.OpStLetToGlobalRecord, ir.Str(name))
}

// StoreConstToGlobalRecord initializes a top-level const.
func (g *Generator) StoreConstToGlobalRecord(pos Pos, name string) {
	g.emit(pos, ir.OpStConstToGlobalRecord, ir.Str(name))
}

// StoreClassToGlobalRecord initializes a top-level class.
func (g *Generator) StoreClassToGlobalRecord(pos Pos, name string) {
	g.emit(pos, ir.OpStClassToGlobalRecord, ir.Str(name))
}

func (g *Generator) loadByNameViaDebugger(pos Pos, name string, throwIfMissing bool) {
	getter, nameReg := g.AllocTemp(), g.AllocTemp()
	g.emit(pos, ir.OpTryLdGlobalByName, ir.Str(debuggerGetter))
	g.StoreAccumulator(pos, getter)
	g.LoadAccumulatorString(pos, name)
	g.StoreAccumulator(pos, nameReg)
	flag := g.Cached(CacheFalse)
	if throwIfMissing {
		flag = g.Cached(CacheTrue)
	}
	g.emit(pos, ir.OpCallArgs2, ir.Reg(getter), ir.Reg(nameReg), ir.Reg(flag))
	g.FreeTemps(getter, nameReg)
}

func (g *Generator) storeByNameViaDebugger(pos Pos, name string) {
	val, setter, nameReg := g.AllocTemp(), g.AllocTemp(), g.AllocTemp()
	g.StoreAccumulator(pos, val)
	g.emit(pos, ir.OpTryLdGlobalByName, ir.Str(debuggerSetter))
	g.StoreAccumulator(pos, setter)
	g.LoadAccumulatorString(pos, name)
	g.StoreAccumulator(pos, nameReg)
	g.emit(pos, ir.OpCallArgs2, ir.Reg(setter), ir.Reg(nameReg), ir.Reg(val))
	g.LoadAccumulator(pos, val)
	g.FreeTemps(val, setter, nameReg)
}

// ---------------------------------------------------------------------------
// Lexical environments
// ---------------------------------------------------------------------------

// NewLexicalEnv creates the lexical environment for sc and makes it current.
// In debug mode a scope descriptor buffer is registered and referenced.
func (g *Generator) NewLexicalEnv(pos Pos, sc *scope.Scope) {
	n := int64(sc.NumLexVars())
	if g.unit.opts.Debug {
		if idx, ok := sc.AppendScopeInfo(g.unit.literals); ok {
			g.emit(pos, ir.OpNewLexEnvWithScopeInfo, ir.Imm(n), ir.Buffer(idx))
			g.StoreAccumulator(pos, g.Cached(CacheLexEnv))
			return
		}
	}
	g.emit(pos, ir.OpNewLexEnv, ir.Imm(n))
	g.StoreAccumulator(pos, g.Cached(CacheLexEnv))
}

// PopLexicalEnv leaves the current lexical environment.
func (g *Generator) PopLexicalEnv(pos Pos) {
	g.emit(pos, ir.OpPopLexEnv)
	g.emit(pos, ir.OpLdLexEnv)
	g.StoreAccumulator(pos, g.Cached(CacheLexEnv))
}

// SetLexicalEnv makes the environment held in env current again, e.g. when
// a catch handler is entered from inside nested environments.
func (g *Generator) SetLexicalEnv(pos Pos, env *ir.VReg) {
	g.LoadAccumulator(pos, env)
	g.emit(pos, ir.OpStLexEnv)
	g.StoreAccumulator(pos, g.Cached(CacheLexEnv))
}

// LoadLexicalVar loads slot of the environment level hops out.
func (g *Generator) LoadLexicalVar(pos Pos, level, slot int) {
	g.emit(pos, ir.OpLdLexVar, ir.Imm(int64(level)), ir.Imm(int64(slot)))
}

// StoreLexicalVar stores value into slot of the environment level hops out.
func (g *Generator) StoreLexicalVar(pos Pos, level, slot int, value *ir.VReg) {
	g.emit(pos, ir.OpStLexVar, ir.Imm(int64(level)), ir.Imm(int64(slot)), ir.Reg(value))
}

// ---------------------------------------------------------------------------
// Modules
// ---------------------------------------------------------------------------

// LoadModuleVariable loads a module binding. isLocal distinguishes the
// module's own bindings from imported ones.
func (g *Generator) LoadModuleVariable(pos Pos, name string, isLocal bool) {
	var local int64
	if isLocal {
		local = 1
	}
	g.emit(pos, ir.OpLdModuleVar, ir.Str(name), ir.Imm(local))
}

// StoreModuleVariable stores the accumulator to a module binding.
func (g *Generator) StoreModuleVariable(pos Pos, name string) {
	g.emit(pos, ir.OpStModuleVar, ir.Str(name))
}

// GetModuleNamespace loads the namespace object of the named module.
func (g *Generator) GetModuleNamespace(pos Pos, name string) {
	g.emit(pos, ir.OpGetModuleNamespace, ir.Str(name))
}

// DynamicImport starts an import() of the specifier in r.
func (g *Generator) DynamicImport(pos Pos, r *ir.VReg) {
	g.emit(pos, ir.OpDynamicImport, ir.Reg(r))
}
