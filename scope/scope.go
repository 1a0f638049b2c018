// Package scope implements the lexical scope chain used while lowering a
// program: a tree of scopes, each mapping names to variables, with captured
// variables assigned slots in a lexical environment.
package scope

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chazu/ecmagen/literal"
)

// ErrClosed is returned when declaring into a scope whose construct has
// already been lowered.
var ErrClosed = errors.New("scope is closed")

// Kind is the closed set of scope variants.
type Kind uint8

const (
	KindGlobal   Kind = iota // script top level
	KindModule               // module top level
	KindFunction             // function body, including parameters
	KindBlock                // braces, catch clauses, switch bodies
	KindLoop                 // per-iteration loop scope
)

var kindNames = [...]string{
	KindGlobal:   "global",
	KindModule:   "module",
	KindFunction: "function",
	KindBlock:    "block",
	KindLoop:     "loop",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Capabilities are queried instead of testing the scope variant.
type Capabilities struct {
	// IsVariableScope marks the targets of var hoisting.
	IsVariableScope bool
	// HasLexicalEnvironment marks scopes that can own captured slots.
	HasLexicalEnvironment bool
	// TracksArgumentsObject marks scopes with an implicit "arguments".
	TracksArgumentsObject bool
	IsLoop                bool
}

var capabilities = [...]Capabilities{
	KindGlobal:   {IsVariableScope: true, HasLexicalEnvironment: true},
	KindModule:   {IsVariableScope: true, HasLexicalEnvironment: true},
	KindFunction: {IsVariableScope: true, HasLexicalEnvironment: true, TracksArgumentsObject: true},
	KindBlock:    {},
	KindLoop:     {HasLexicalEnvironment: true, IsLoop: true},
}

// Scope is one node of the chain. A scope references its parent for lookup
// only; it does not own it.
type Scope struct {
	kind   Kind
	parent *Scope
	names  map[string]*Variable
	closed bool

	// lexical environment
	lexSlots map[string]int
	numLex   int

	// function scopes
	funcName   string
	params     int
	useArgs    bool
	argsOrRest bool
}

func newScope(kind Kind, parent *Scope) *Scope {
	return &Scope{
		kind:     kind,
		parent:   parent,
		names:    make(map[string]*Variable),
		lexSlots: make(map[string]int),
	}
}

// NewGlobal creates a script top-level scope.
func NewGlobal() *Scope { return newScope(KindGlobal, nil) }

// NewModule creates a module top-level scope.
func NewModule() *Scope { return newScope(KindModule, nil) }

// NewFunction creates a function scope nested in parent.
func NewFunction(parent *Scope, name string, params int) *Scope {
	s := newScope(KindFunction, parent)
	s.funcName = name
	s.params = params
	return s
}

// NewBlock creates a block scope nested in parent.
func NewBlock(parent *Scope) *Scope { return newScope(KindBlock, parent) }

// NewLoop creates a loop scope nested in parent.
func NewLoop(parent *Scope) *Scope { return newScope(KindLoop, parent) }

// Kind returns the scope variant.
func (s *Scope) Kind() Kind { return s.kind }

// Caps returns the capability set of the variant.
func (s *Scope) Caps() Capabilities { return capabilities[s.kind] }

// Parent returns the enclosing scope, or nil at the top.
func (s *Scope) Parent() *Scope { return s.parent }

// FuncName returns the function name; top-level scopes report "main".
func (s *Scope) FuncName() string {
	if s.kind == KindFunction {
		return s.funcName
	}
	return "main"
}

// ParamLength returns the declared parameter count of a function scope.
func (s *Scope) ParamLength() int { return s.params }

// ---------------------------------------------------------------------------
// Open/closed state
// ---------------------------------------------------------------------------

// Close marks the scope as fully lowered. Further declarations fail.
func (s *Scope) Close() { s.closed = true }

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool { return s.closed }

// ---------------------------------------------------------------------------
// Declarations and lookup
// ---------------------------------------------------------------------------

// Declare binds name in the scope and returns the variable. If the name is
// already bound the existing variable is returned unchanged; binding-kind
// conflicts were resolved before lowering.
//
// var and function declarations in a block hoist to the nearest variable
// scope. At global scope var and function declarations become global-record
// properties; lexical declarations stay local.
func (s *Scope) Declare(name string, decl DeclKind) (*Variable, error) {
	target := s
	if decl == DeclVar || (decl == DeclFunction && s.kind != KindBlock) {
		target = s.NearestVariableScope()
	}
	return target.declare(name, target.kindFor(decl), decl)
}

// DeclareModuleVar binds an imported or exported name in a module scope.
func (s *Scope) DeclareModuleVar(name string, decl DeclKind, exported bool) (*Variable, error) {
	if s.kind != KindModule {
		return nil, fmt.Errorf("declare module variable %q in %s scope", name, s.kind)
	}
	v, err := s.declare(name, Module, decl)
	if err != nil {
		return nil, err
	}
	v.exported = v.exported || exported
	return v, nil
}

func (s *Scope) declare(name string, kind VarKind, decl DeclKind) (*Variable, error) {
	if v, ok := s.names[name]; ok {
		return v, nil
	}
	if s.closed {
		return nil, fmt.Errorf("declare %q: %w", name, ErrClosed)
	}
	v := newVariable(name, kind, decl, s)
	s.names[name] = v
	return v, nil
}

func (s *Scope) kindFor(decl DeclKind) VarKind {
	if s.kind == KindGlobal && (decl == DeclVar || decl == DeclFunction) {
		return Global
	}
	return Local
}

// FindLocal looks name up in this scope only.
func (s *Scope) FindLocal(name string) *Variable {
	return s.names[name]
}

// Names returns the names bound directly in this scope, sorted.
func (s *Scope) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Resolution is the result of a successful lookup.
type Resolution struct {
	Variable *Variable
	Scope    *Scope // declaring scope
	// Depth is the number of parent hops from the use site to Scope.
	Depth int
	// Level is the number of lexical environments between the use site and
	// the environment holding the variable's slot.
	Level int
}

// Resolve walks the parent chain looking for name. The second result is
// false when the name is not bound anywhere up to the root; such names are
// resolved dynamically against the global object at runtime.
func (s *Scope) Resolve(name string) (Resolution, bool) {
	depth, level := 0, 0
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.names[name]; ok {
			return Resolution{Variable: v, Scope: cur, Depth: depth, Level: level}, true
		}
		if cur.NeedsLexicalEnvironment() {
			level++
		}
		depth++
	}
	return Resolution{}, false
}

// NearestVariableScope returns the closest scope that receives var hoisting.
func (s *Scope) NearestVariableScope() *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.Caps().IsVariableScope {
			return cur
		}
	}
	return nil
}

// NearestFunction returns the closest function scope, or nil at top level.
func (s *Scope) NearestFunction() *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.kind == KindFunction {
			return cur
		}
	}
	return nil
}

// NearestLexicalScope returns the closest scope able to own captured slots.
func (s *Scope) NearestLexicalScope() *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.Caps().HasLexicalEnvironment {
			return cur
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Lexical environment
// ---------------------------------------------------------------------------

// CaptureSlot marks v as referenced from a nested function and returns its
// slot in the lexical environment of the nearest capable scope. Calling it
// again for the same variable returns the same slot.
func (s *Scope) CaptureSlot(v *Variable) int {
	if v.slot >= 0 {
		return v.slot
	}
	env := v.owner.NearestLexicalScope()
	v.slot = env.numLex
	env.lexSlots[v.name] = v.slot
	env.numLex++
	return v.slot
}

// NumLexVars returns how many slots the scope's environment holds.
func (s *Scope) NumLexVars() int { return s.numLex }

// NeedsLexicalEnvironment reports whether lowering this scope must create a
// lexical environment.
func (s *Scope) NeedsLexicalEnvironment() bool {
	return s.Caps().HasLexicalEnvironment && s.numLex > 0
}

// LexVarInfo returns name to slot for every captured variable owned here.
func (s *Scope) LexVarInfo() map[string]int {
	out := make(map[string]int, len(s.lexSlots))
	for n, slot := range s.lexSlots {
		out[n] = slot
	}
	return out
}

// AppendScopeInfo registers a scope descriptor buffer of the form
// [count, name0, slot0, name1, slot1, ...] ordered by slot, and returns its
// index. Scopes without captured variables register nothing.
func (s *Scope) AppendScopeInfo(reg *literal.Registry) (int, bool) {
	if len(s.lexSlots) == 0 {
		return 0, false
	}
	names := make([]string, 0, len(s.lexSlots))
	for n := range s.lexSlots {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return s.lexSlots[names[i]] < s.lexSlots[names[j]] })

	buf := literal.NewBuffer(literal.KindScope, literal.Int(int64(len(names))))
	for _, n := range names {
		buf.Add(literal.String(n), literal.Int(int64(s.lexSlots[n])))
	}
	return reg.Append(buf), true
}

// ---------------------------------------------------------------------------
// arguments object
// ---------------------------------------------------------------------------

// SetUseArgs records that the function body references "arguments".
func (s *Scope) SetUseArgs(use bool) { s.useArgs = use }

// UseArgs reports whether the function body references "arguments".
func (s *Scope) UseArgs() bool { return s.useArgs }

// SetArgumentsOrRestArgs records that the frame materializes an arguments
// object or rest parameter.
func (s *Scope) SetArgumentsOrRestArgs() { s.argsOrRest = true }

// ArgumentsOrRestArgs reports whether SetArgumentsOrRestArgs was called.
func (s *Scope) ArgumentsOrRestArgs() bool { return s.argsOrRest }

func (s *Scope) String() string {
	return fmt.Sprintf("%s scope (%d names, %d lexical)", s.kind, len(s.names), s.numLex)
}
