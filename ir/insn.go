// Package ir defines the instruction stream produced by the bytecode
// generator: opcodes, virtual registers, labels and instructions.
//
// Registers carry no concrete index until a numbering pass runs over the
// finished stream, so the order in which the generator allocates them never
// constrains the final frame layout.
package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Virtual registers
// ---------------------------------------------------------------------------

// VReg is an opaque handle for one slot of a function's register file.
// Equality is pointer identity.
type VReg struct {
	id  int // allocation sequence, for listings only
	num int // concrete index, -1 until numbered
}

// NewVReg returns a fresh, unnumbered register handle.
func NewVReg(id int) *VReg {
	return &VReg{id: id, num: -1}
}

// ID returns the allocation sequence number.
func (v *VReg) ID() int { return v.id }

// Num returns the concrete register index, or -1 if not yet numbered.
func (v *VReg) Num() int { return v.num }

// SetNum assigns the concrete register index.
func (v *VReg) SetNum(n int) { v.num = n }

// Numbered reports whether a concrete index has been assigned.
func (v *VReg) Numbered() bool { return v.num >= 0 }

func (v *VReg) String() string {
	if v == nil {
		return "v<nil>"
	}
	if v.num >= 0 {
		return "v" + strconv.Itoa(v.num)
	}
	return "%" + strconv.Itoa(v.id)
}

// ---------------------------------------------------------------------------
// Operands
// ---------------------------------------------------------------------------

// OperandKind tags the payload of an Operand.
type OperandKind uint8

const (
	KindReg    OperandKind = iota + 1 // virtual register
	KindImm                           // integer immediate
	KindFloat                         // float immediate
	KindString                        // string id
	KindLabel                         // jump target
	KindBuffer                        // literal buffer index
)

func (k OperandKind) String() string {
	switch k {
	case KindReg:
		return "reg"
	case KindImm:
		return "imm"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindLabel:
		return "label"
	case KindBuffer:
		return "buffer"
	default:
		return fmt.Sprintf("OperandKind(%d)", k)
	}
}

// Operand is one argument of an instruction.
type Operand struct {
	Kind  OperandKind
	Reg   *VReg
	Int   int64
	Float float64
	Str   string
	Label Label
}

// Reg wraps a register operand.
func Reg(v *VReg) Operand { return Operand{Kind: KindReg, Reg: v} }

// Imm wraps an integer immediate.
func Imm(n int64) Operand { return Operand{Kind: KindImm, Int: n} }

// Float wraps a float immediate.
func Float(f float64) Operand { return Operand{Kind: KindFloat, Float: f} }

// Str wraps a string id.
func Str(s string) Operand { return Operand{Kind: KindString, Str: s} }

// Target wraps a label reference.
func Target(l Label) Operand { return Operand{Kind: KindLabel, Label: l} }

// Buffer wraps a literal buffer index.
func Buffer(idx int) Operand { return Operand{Kind: KindBuffer, Int: int64(idx)} }

// Regs wraps a list of registers.
func Regs(vs ...*VReg) []Operand {
	ops := make([]Operand, len(vs))
	for i, v := range vs {
		ops[i] = Reg(v)
	}
	return ops
}

func (o Operand) String() string {
	switch o.Kind {
	case KindReg:
		return o.Reg.String()
	case KindImm:
		return strconv.FormatInt(o.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(o.Float, 'g', -1, 64)
	case KindString:
		return strconv.Quote(o.Str)
	case KindLabel:
		return o.Label.String()
	case KindBuffer:
		return "@" + strconv.FormatInt(o.Int, 10)
	default:
		return "?"
	}
}

// ---------------------------------------------------------------------------
// Instructions
// ---------------------------------------------------------------------------

// Insn is one instruction. Once appended to a stream it is not mutated,
// except that its registers receive concrete numbers during allocation.
type Insn struct {
	Op   Opcode
	Args []Operand
}

// Make builds an instruction and checks its operands against the opcode
// table. A mismatch is a generator bug and panics.
func Make(op Opcode, args ...Operand) *Insn {
	in := &Insn{Op: op, Args: args}
	if err := in.Check(); err != nil {
		panic(err)
	}
	return in
}

// Check validates the operand list against the opcode's declared shape.
func (in *Insn) Check() error {
	info, ok := opcodeTable[in.Op]
	if !ok {
		return fmt.Errorf("ir: unknown opcode 0x%02X", uint16(in.Op))
	}
	fixed := len(info.Operands)
	if len(in.Args) < fixed || (!info.Variadic && len(in.Args) != fixed) {
		return fmt.Errorf("ir: %s takes %d operands, got %d", info.Name, fixed, len(in.Args))
	}
	for i, arg := range in.Args {
		want := KindReg
		if i < fixed {
			want = info.Operands[i]
		}
		if arg.Kind != want {
			return fmt.Errorf("ir: %s operand %d is %s, want %s", info.Name, i, arg.Kind, want)
		}
		if arg.Kind == KindReg && arg.Reg == nil {
			return fmt.Errorf("ir: %s operand %d is a nil register", info.Name, i)
		}
	}
	return nil
}

// Registers returns the register operands in order.
func (in *Insn) Registers() []*VReg {
	var out []*VReg
	for _, a := range in.Args {
		if a.Kind == KindReg {
			out = append(out, a.Reg)
		}
	}
	return out
}

// JumpTarget returns the label a jump or label marker refers to.
func (in *Insn) JumpTarget() (Label, bool) {
	if len(in.Args) == 1 && in.Args[0].Kind == KindLabel {
		return in.Args[0].Label, true
	}
	return NoLabel, false
}

func (in *Insn) String() string {
	if in.Op == OpLabel {
		return in.Args[0].Label.String() + ":"
	}
	if len(in.Args) == 0 {
		return in.Op.Name()
	}
	parts := make([]string, len(in.Args))
	for i, a := range in.Args {
		parts[i] = a.String()
	}
	return in.Op.Name() + " " + strings.Join(parts, ", ")
}
