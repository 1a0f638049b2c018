package codegen

import (
	"github.com/chazu/ecmagen/ir"
	"github.com/chazu/ecmagen/scope"
)

// CallType flags describe how a function may be invoked. Zero is a plain
// function.
const (
	CallConstructor = 1 << iota
	CallArrow
	CallMethod
	CallGenerator
	CallAsync
)

// Metadata is function-level information handed to the assembler.
type Metadata struct {
	CallType   int
	SourceFile string
	SourceCode string
	FirstStmt  Pos
}

// VariableDebugInfo describes the live range of a named register.
type VariableDebugInfo struct {
	Name  string
	Reg   *ir.VReg
	Start ir.Label
	End   ir.Label
}

// Metadata returns the function metadata.
func (g *Generator) Metadata() Metadata { return g.meta }

// SetCallType records how the function may be invoked.
func (g *Generator) SetCallType(t int) { g.meta.CallType = t }

// SetSourceFile records the source file name.
func (g *Generator) SetSourceFile(name string) { g.meta.SourceFile = name }

// SetSourceCode records the function's source text.
func (g *Generator) SetSourceCode(src string) { g.meta.SourceCode = src }

// SetFirstStmt records the position of the first statement of the body.
func (g *Generator) SetFirstStmt(p Pos) { g.meta.FirstStmt = p }

// Position returns the source position recorded for in.
func (g *Generator) Position(in *ir.Insn) (Pos, bool) {
	p, ok := g.positions[in]
	return p, ok
}

// AddVariableDebugInfo records the live range of a variable's register.
// It records nothing when debug output is off or v has no register.
func (g *Generator) AddVariableDebugInfo(v *scope.Variable, start, end ir.Label) {
	if !g.unit.opts.Debug || !v.Bound() {
		return
	}
	g.vars = append(g.vars, VariableDebugInfo{Name: v.Name(), Reg: v.Reg(), Start: start, End: end})
}

// VariableDebugInfo returns the recorded variable ranges.
func (g *Generator) VariableDebugInfo() []VariableDebugInfo { return g.vars }
