// Package program captures a finished compilation unit in a serializable
// form: the instruction stream of every function with its register counts,
// catch tables and type annotations, plus the unit's literal buffers.
package program

import (
	"fmt"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/chazu/ecmagen/codegen"
	"github.com/chazu/ecmagen/ir"
	"github.com/chazu/ecmagen/literal"
)

// Version is bumped whenever the snapshot layout changes.
const Version uint8 = 1

var log = commonlog.GetLogger("ecmagen.program")

// Program is the snapshot of one compilation unit.
type Program struct {
	Version   uint8             `cbor:"1,keyasint"`
	UnitID    string            `cbor:"2,keyasint,omitempty"`
	Functions []Function        `cbor:"3,keyasint"`
	Literals  []*literal.Buffer `cbor:"4,keyasint,omitempty"`
}

// Function is the snapshot of one generator.
type Function struct {
	Name       string  `cbor:"1,keyasint"`
	Insns      []Insn  `cbor:"2,keyasint"`
	TotalRegs  int     `cbor:"3,keyasint"`
	Params     int     `cbor:"4,keyasint"`
	CallType   int     `cbor:"5,keyasint,omitempty"`
	SourceFile string  `cbor:"6,keyasint,omitempty"`
	Catches    []Catch `cbor:"7,keyasint,omitempty"`
	// Types maps instruction offsets to type descriptor indices.
	Types map[int]int `cbor:"8,keyasint,omitempty"`
}

// Insn is one encoded instruction. Label markers are kept.
type Insn struct {
	Op   uint16    `cbor:"1,keyasint"`
	Args []Operand `cbor:"2,keyasint,omitempty"`
	Line int       `cbor:"3,keyasint,omitempty"`
	Col  int       `cbor:"4,keyasint,omitempty"`
}

// Operand is one encoded operand. Registers are stored by number.
type Operand struct {
	Kind  uint8   `cbor:"1,keyasint"`
	Int   int64   `cbor:"2,keyasint,omitempty"`
	Float float64 `cbor:"3,keyasint,omitempty"`
	Str   string  `cbor:"4,keyasint,omitempty"`
}

// Catch is an encoded catch table.
type Catch struct {
	Handler int          `cbor:"1,keyasint"`
	Ranges  []CatchRange `cbor:"2,keyasint"`
	Depth   int          `cbor:"3,keyasint,omitempty"`
}

// CatchRange is a protected range given as label handles.
type CatchRange struct {
	Begin int `cbor:"1,keyasint"`
	End   int `cbor:"2,keyasint"`
}

// Snapshot captures every generator of u. All generators must be finished.
func Snapshot(u *codegen.Unit) (*Program, error) {
	p := &Program{
		Version:  Version,
		UnitID:   u.ID().String(),
		Literals: u.Literals().Buffers(),
	}
	for _, g := range u.Functions() {
		if !g.Finished() {
			return nil, fmt.Errorf("program: function %s is not finished", g.Name())
		}
		fn, err := snapshotFunction(g)
		if err != nil {
			return nil, err
		}
		p.Functions = append(p.Functions, fn)
	}
	log.Debugf("snapshot of unit %s: %d functions, %d literal buffers", p.UnitID, len(p.Functions), len(p.Literals))
	return p, nil
}

func snapshotFunction(g *codegen.Generator) (Function, error) {
	meta := g.Metadata()
	fn := Function{
		Name:       g.Name(),
		TotalRegs:  g.TotalRegs(),
		Params:     g.ParamCount(),
		CallType:   meta.CallType,
		SourceFile: meta.SourceFile,
	}
	insns := g.GetInsns()
	offsets := make(map[*ir.Insn]int, len(insns))
	for i, in := range insns {
		offsets[in] = i
		enc := Insn{Op: uint16(in.Op)}
		if pos, ok := g.Position(in); ok {
			enc.Line, enc.Col = pos.Line, pos.Column
		}
		for _, a := range in.Args {
			op, err := encodeOperand(a)
			if err != nil {
				return Function{}, fmt.Errorf("program: %s at %d: %w", g.Name(), i, err)
			}
			enc.Args = append(enc.Args, op)
		}
		fn.Insns = append(fn.Insns, enc)
	}
	for in, ty := range g.InstTypeMap() {
		if off, ok := offsets[in]; ok {
			if fn.Types == nil {
				fn.Types = make(map[int]int)
			}
			fn.Types[off] = ty
		}
	}
	for _, ct := range g.CatchMap() {
		c := Catch{Handler: int(ct.Handler), Depth: ct.Depth}
		for _, r := range ct.Ranges {
			c.Ranges = append(c.Ranges, CatchRange{Begin: int(r.Begin), End: int(r.End)})
		}
		fn.Catches = append(fn.Catches, c)
	}
	sort.Slice(fn.Catches, func(i, j int) bool { return fn.Catches[i].Handler < fn.Catches[j].Handler })
	return fn, nil
}

func encodeOperand(a ir.Operand) (Operand, error) {
	op := Operand{Kind: uint8(a.Kind)}
	switch a.Kind {
	case ir.KindReg:
		if !a.Reg.Numbered() {
			return Operand{}, fmt.Errorf("register %s not numbered", a.Reg)
		}
		op.Int = int64(a.Reg.Num())
	case ir.KindImm, ir.KindBuffer:
		op.Int = a.Int
	case ir.KindFloat:
		op.Float = a.Float
	case ir.KindString:
		op.Str = a.Str
	case ir.KindLabel:
		op.Int = int64(a.Label)
	default:
		return Operand{}, fmt.Errorf("unknown operand kind %d", a.Kind)
	}
	return op, nil
}

// Function returns the named function.
func (p *Program) Function(name string) (*Function, bool) {
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i], true
		}
	}
	return nil, false
}

// Decode rebuilds the instruction stream. Registers are recreated from
// their numbers and shared between instructions that use the same number.
func (f *Function) Decode() ([]*ir.Insn, error) {
	regs := make(map[int64]*ir.VReg)
	out := make([]*ir.Insn, 0, len(f.Insns))
	for i, enc := range f.Insns {
		in := &ir.Insn{Op: ir.Opcode(enc.Op)}
		for _, a := range enc.Args {
			var op ir.Operand
			switch ir.OperandKind(a.Kind) {
			case ir.KindReg:
				r, ok := regs[a.Int]
				if !ok {
					r = ir.NewVReg(int(a.Int))
					r.SetNum(int(a.Int))
					regs[a.Int] = r
				}
				op = ir.Reg(r)
			case ir.KindImm:
				op = ir.Imm(a.Int)
			case ir.KindBuffer:
				op = ir.Buffer(int(a.Int))
			case ir.KindFloat:
				op = ir.Float(a.Float)
			case ir.KindString:
				op = ir.Str(a.Str)
			case ir.KindLabel:
				op = ir.Target(ir.Label(a.Int))
			default:
				return nil, fmt.Errorf("program: %s at %d: unknown operand kind %d", f.Name, i, a.Kind)
			}
			in.Args = append(in.Args, op)
		}
		if err := in.Check(); err != nil {
			return nil, fmt.Errorf("program: %s at %d: %w", f.Name, i, err)
		}
		out = append(out, in)
	}
	return out, nil
}

// Listing renders the function's instructions.
func (f *Function) Listing() (string, error) {
	insns, err := f.Decode()
	if err != nil {
		return "", err
	}
	return ir.Listing(insns), nil
}
