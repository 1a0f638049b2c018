package scope

import (
	"fmt"

	"github.com/chazu/ecmagen/ir"
)

// VarKind says where a variable lives at runtime.
type VarKind uint8

const (
	Local  VarKind = iota // register in the function frame, or a lexical slot
	Global                // property of the global record, no register
	Module                // module environment entry
)

func (k VarKind) String() string {
	switch k {
	case Local:
		return "local"
	case Global:
		return "global"
	case Module:
		return "module"
	default:
		return fmt.Sprintf("VarKind(%d)", uint8(k))
	}
}

// DeclKind is the declaration form that introduced a name.
type DeclKind uint8

const (
	DeclVar DeclKind = iota
	DeclLet
	DeclConst
	DeclClass
	DeclFunction
	DeclParam
	DeclImport
)

var declNames = [...]string{
	DeclVar:      "var",
	DeclLet:      "let",
	DeclConst:    "const",
	DeclClass:    "class",
	DeclFunction: "function",
	DeclParam:    "param",
	DeclImport:   "import",
}

func (d DeclKind) String() string {
	if int(d) < len(declNames) {
		return declNames[d]
	}
	return fmt.Sprintf("DeclKind(%d)", uint8(d))
}

// IsLexical reports whether the declaration is block scoped and subject to
// the temporal dead zone.
func (d DeclKind) IsLexical() bool {
	return d == DeclLet || d == DeclConst || d == DeclClass
}

// Variable is one binding in a Scope.
type Variable struct {
	name  string
	kind  VarKind
	decl  DeclKind
	owner *Scope

	reg  *ir.VReg // bound lazily for Local variables
	slot int      // lexical slot, -1 unless captured

	exported bool
}

func newVariable(name string, kind VarKind, decl DeclKind, owner *Scope) *Variable {
	return &Variable{name: name, kind: kind, decl: decl, owner: owner, slot: -1}
}

// Name returns the bound identifier.
func (v *Variable) Name() string { return v.name }

// Kind returns the storage kind.
func (v *Variable) Kind() VarKind { return v.kind }

// Decl returns the declaration form.
func (v *Variable) Decl() DeclKind { return v.decl }

// Scope returns the declaring scope.
func (v *Variable) Scope() *Scope { return v.owner }

// IsConst reports whether assignments after initialization must throw.
func (v *Variable) IsConst() bool { return v.decl == DeclConst }

// NeedsHoleCheck reports whether reads must check for the TDZ hole.
func (v *Variable) NeedsHoleCheck() bool { return v.decl.IsLexical() }

// Exported reports whether a module variable is exported.
func (v *Variable) Exported() bool { return v.exported }

// Bound reports whether a register has been bound.
func (v *Variable) Bound() bool { return v.reg != nil }

// Reg returns the bound register, or nil.
func (v *Variable) Reg() *ir.VReg { return v.reg }

// BindReg binds r unless a register is already bound, and returns the
// register that is bound afterwards. Binding is idempotent.
func (v *Variable) BindReg(r *ir.VReg) *ir.VReg {
	if v.reg == nil {
		v.reg = r
	}
	return v.reg
}

// IsLexical reports whether the variable lives in a lexical environment
// slot because a nested function references it.
func (v *Variable) IsLexical() bool { return v.slot >= 0 }

// Slot returns the lexical slot, or -1.
func (v *Variable) Slot() int { return v.slot }

func (v *Variable) String() string {
	return fmt.Sprintf("%s %s (%s)", v.decl, v.name, v.kind)
}
