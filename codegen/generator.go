// Package codegen is the instruction emitter. A Generator lowers one
// function: the lowering pass calls one method per abstract operation and
// the Generator appends instructions to an ordered stream, managing
// registers, labels and side tables along the way. It never sees the AST.
package codegen

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/ecmagen/ir"
	"github.com/chazu/ecmagen/scope"
)

// Pos is an opaque source position. It is passed through to the debug side
// table and the DebugSink and never affects emission.
type Pos struct {
	Line   int
	Column int
}

// NoPos marks instructions without a source position.
var NoPos = Pos{}

// DebugSink observes every appended instruction together with its position.
type DebugSink interface {
	Emitted(in *ir.Insn, pos Pos)
}

// Generator emits the instruction stream of one function.
type Generator struct {
	unit  *Unit
	name  string
	scope *scope.Scope

	regs   *Pool
	cache  regCache
	labels ir.LabelArena
	insns  []*ir.Insn

	params    []*ir.VReg
	totalRegs int

	// side tables
	positions map[*ir.Insn]Pos
	types     map[*ir.Insn]int
	catches   map[ir.Label]*CatchTable
	vars      []VariableDebugInfo
	meta      Metadata
	sink      DebugSink

	finished bool
	log      commonlog.Logger
}

// NewGenerator creates the generator for the function whose top scope is
// sc and registers it with the unit.
func NewGenerator(u *Unit, sc *scope.Scope) *Generator {
	g := &Generator{
		unit:      u,
		name:      sc.FuncName(),
		scope:     sc,
		regs:      NewPool(u.opts.AssertLiveness),
		positions: make(map[*ir.Insn]Pos),
		types:     make(map[*ir.Insn]int),
		catches:   make(map[ir.Label]*CatchTable),
		log:       u.log,
	}
	u.funcs = append(u.funcs, g)
	return g
}

// Unit returns the compilation the generator belongs to.
func (g *Generator) Unit() *Unit { return g.unit }

// Name returns the function name; top-level code is "main".
func (g *Generator) Name() string { return g.name }

// SetName overrides the function name, e.g. with a unique internal name.
func (g *Generator) SetName(name string) { g.name = name }

// Scope returns the function's top scope.
func (g *Generator) Scope() *scope.Scope { return g.scope }

// SetDebugSink installs a sink called for every appended instruction.
func (g *Generator) SetDebugSink(s DebugSink) { g.sink = s }

// ---------------------------------------------------------------------------
// Stream
// ---------------------------------------------------------------------------

func (g *Generator) add(pos Pos, insns ...*ir.Insn) {
	if g.finished {
		panic(fmt.Sprintf("codegen: %s: %v", g.name, ErrFinished))
	}
	for _, in := range insns {
		g.insns = append(g.insns, in)
		if in.Op == ir.OpLabel {
			continue
		}
		g.positions[in] = pos
		if g.sink != nil {
			g.sink.Emitted(in, pos)
		}
	}
}

func (g *Generator) emit(pos Pos, op ir.Opcode, args ...ir.Operand) *ir.Insn {
	in := ir.Make(op, args...)
	g.add(pos, in)
	return in
}

// GetInsns returns the instruction stream in append order. Label markers
// are part of the stream.
func (g *Generator) GetInsns() []*ir.Insn { return g.insns }

// SetInsns replaces the instruction stream. Labels are rebound from the
// markers in the new stream and side-table entries of dropped instructions
// are discarded.
func (g *Generator) SetInsns(insns []*ir.Insn) {
	keep := make(map[*ir.Insn]struct{}, len(insns))
	for _, in := range insns {
		keep[in] = struct{}{}
	}
	for in := range g.positions {
		if _, ok := keep[in]; !ok {
			delete(g.positions, in)
		}
	}
	for in := range g.types {
		if _, ok := keep[in]; !ok {
			delete(g.types, in)
		}
	}
	g.insns = insns
	g.labels.Resync(insns)
}

// Len returns the number of instructions appended, label markers included.
func (g *Generator) Len() int { return len(g.insns) }

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// NewLabel creates an unbound label.
func (g *Generator) NewLabel() ir.Label { return g.labels.New() }

// Label binds l at the current end of the stream. Binding a label twice
// panics.
func (g *Generator) Label(l ir.Label) {
	g.labels.Bind(l, len(g.insns))
	g.add(NoPos, ir.Make(ir.OpLabel, ir.Target(l)))
}

// LabelOffset returns the offset a label is bound to.
func (g *Generator) LabelOffset(l ir.Label) (int, bool) { return g.labels.Offset(l) }

// ---------------------------------------------------------------------------
// Registers
// ---------------------------------------------------------------------------

// AllocLocal returns a register reserved for the rest of the function.
func (g *Generator) AllocLocal() *ir.VReg { return g.regs.AllocateLocal() }

// AllocTemp returns a temporary register.
func (g *Generator) AllocTemp() *ir.VReg { return g.regs.AllocateTemporary() }

// FreeTemps releases temporaries for reuse.
func (g *Generator) FreeTemps(regs ...*ir.VReg) { g.regs.Release(regs...) }

// AllocRange returns n consecutively numbered temporaries for a range
// call or construction.
func (g *Generator) AllocRange(n int) []*ir.VReg { return g.regs.AllocateRange(n) }

// FreeRange releases a range from AllocRange.
func (g *Generator) FreeRange(regs []*ir.VReg) { g.regs.ReleaseRange(regs) }

// Locals returns the local registers, cache registers included.
func (g *Generator) Locals() []*ir.VReg { return g.regs.Locals() }

// Temps returns every temporary created.
func (g *Generator) Temps() []*ir.VReg { return g.regs.Temps() }

// Params returns the parameter registers in declaration order.
func (g *Generator) Params() []*ir.VReg { return g.params }

// ParamCount returns the number of parameter registers.
func (g *Generator) ParamCount() int { return len(g.params) }

// TotalRegs returns the register file size computed by Finish.
func (g *Generator) TotalRegs() int { return g.totalRegs }

// AddParameter binds v to a fresh register and records it as a parameter.
func (g *Generator) AddParameter(v *scope.Variable) *ir.VReg {
	r := v.BindReg(g.regs.AllocateLocal())
	g.params = append(g.params, r)
	return r
}

// ---------------------------------------------------------------------------
// Finalization
// ---------------------------------------------------------------------------

// Finish validates the stream, prepends the canonical register prologue and
// numbers the registers. The generator accepts no more instructions
// afterwards.
func (g *Generator) Finish() error {
	if g.finished {
		return fmt.Errorf("%s: %w", g.name, ErrFinished)
	}
	if err := g.checkLabels(); err != nil {
		return err
	}
	if pro := g.cache.prologue(); len(pro) > 0 {
		for _, in := range pro {
			g.positions[in] = NoPos
		}
		g.insns = append(pro, g.insns...)
		g.labels.Resync(g.insns)
	}
	g.allocateRegisters()
	g.finished = true
	g.log.Debugf("finished %s: %d insns, %d regs (%d params)", g.name, len(g.insns), g.totalRegs, len(g.params))
	return nil
}

// Finished reports whether Finish succeeded.
func (g *Generator) Finished() bool { return g.finished }

func (g *Generator) checkLabels() error {
	for i, in := range g.insns {
		if !in.Op.IsJump() {
			continue
		}
		l, _ := in.JumpTarget()
		if !g.labels.Bound(l) {
			return fmt.Errorf("%s: %s at %d: %w", g.name, l, i, ErrUnboundLabel)
		}
	}
	for _, ct := range g.catches {
		for _, l := range ct.labels() {
			if !g.labels.Bound(l) {
				return fmt.Errorf("%s: catch %s: %w", g.name, l, ErrUnboundLabel)
			}
		}
	}
	return nil
}

// PrintInsns writes the listing to the log at info level.
func (g *Generator) PrintInsns() {
	g.log.Infof("function %s\n%s", g.name, ir.Listing(g.insns))
}
