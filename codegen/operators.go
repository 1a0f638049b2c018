package codegen

import (
	"fmt"

	"github.com/chazu/ecmagen/ir"
	"github.com/chazu/ecmagen/token"
)

var binaryOps = map[token.Kind]ir.Opcode{
	token.Plus:       ir.OpAdd2,
	token.Minus:      ir.OpSub2,
	token.Star:       ir.OpMul2,
	token.StarStar:   ir.OpExp,
	token.Slash:      ir.OpDiv2,
	token.Percent:    ir.OpMod2,
	token.Shl:        ir.OpShl2,
	token.Shr:        ir.OpAshr2,
	token.UShr:       ir.OpShr2,
	token.And:        ir.OpAnd2,
	token.Or:         ir.OpOr2,
	token.Xor:        ir.OpXor2,
	token.In:         ir.OpIsIn,
	token.InstanceOf: ir.OpInstanceOf,
}

var relationalOps = map[token.Kind]ir.Opcode{
	token.Less:           ir.OpLess,
	token.Greater:        ir.OpGreater,
	token.LessEqual:      ir.OpLessEq,
	token.GreaterEqual:   ir.OpGreaterEq,
	token.Equal:          ir.OpEq,
	token.NotEqual:       ir.OpNotEq,
	token.StrictEqual:    ir.OpStrictEq,
	token.StrictNotEqual: ir.OpStrictNotEq,
}

var unaryOps = map[token.Kind]ir.Opcode{
	token.Plus:      ir.OpToNumber,
	token.Minus:     ir.OpNeg,
	token.Tilde:     ir.OpNot,
	token.Increment: ir.OpInc,
	token.Decrement: ir.OpDec,
}

// Unary applies op to operand and leaves the result in the accumulator.
// Logical not reads the accumulator, which must already hold the operand.
func (g *Generator) Unary(pos Pos, op token.Kind, operand *ir.VReg) error {
	if op == token.Not {
		falseLabel, endLabel := g.NewLabel(), g.NewLabel()
		g.JumpIfFalse(pos, falseLabel)
		g.LoadAccumulator(pos, g.Cached(CacheFalse))
		g.Branch(pos, endLabel)
		g.Label(falseLabel)
		g.LoadAccumulator(pos, g.Cached(CacheTrue))
		g.Label(endLabel)
		return nil
	}
	opc, ok := unaryOps[op]
	if !ok {
		return fmt.Errorf("unary operator %s: %w", op, ErrUnimplemented)
	}
	g.emit(pos, opc, ir.Reg(operand))
	return nil
}

// Binary computes lhs op acc. Compound assignment tokens lower to their
// base operator. Relational operators materialize a canonical boolean.
func (g *Generator) Binary(pos Pos, op token.Kind, lhs *ir.VReg) error {
	if op.IsCompoundAssign() {
		op = op.Base()
	}
	if op.IsRelational() {
		return g.binaryRelation(pos, op, lhs)
	}
	opc, ok := binaryOps[op]
	if !ok {
		return fmt.Errorf("binary operator %s: %w", op, ErrUnimplemented)
	}
	g.emit(pos, opc, ir.Reg(lhs))
	return nil
}

func (g *Generator) binaryRelation(pos Pos, op token.Kind, lhs *ir.VReg) error {
	falseLabel, endLabel := g.NewLabel(), g.NewLabel()
	if err := g.Condition(pos, op, lhs, falseLabel); err != nil {
		return err
	}
	g.LoadAccumulator(pos, g.Cached(CacheTrue))
	g.Branch(pos, endLabel)
	g.Label(falseLabel)
	g.LoadAccumulator(pos, g.Cached(CacheFalse))
	g.Label(endLabel)
	return nil
}

// Condition compares lhs op acc and jumps to ifFalse when the comparison
// does not hold. It emits exactly the comparison and the jump.
func (g *Generator) Condition(pos Pos, op token.Kind, lhs *ir.VReg, ifFalse ir.Label) error {
	opc, ok := relationalOps[op]
	if !ok {
		return fmt.Errorf("condition operator %s: %w", op, ErrUnimplemented)
	}
	g.emit(pos, opc, ir.Reg(lhs))
	g.emit(pos, ir.OpJeqz, ir.Target(ifFalse))
	return nil
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

// Branch jumps unconditionally to target.
func (g *Generator) Branch(pos Pos, target ir.Label) {
	g.emit(pos, ir.OpJmp, ir.Target(target))
}

// BranchIfFalsy jumps to target when the accumulator is falsy.
func (g *Generator) BranchIfFalsy(pos Pos, target ir.Label) {
	g.emit(pos, ir.OpJeqz, ir.Target(target))
}

// IsTrue normalizes the accumulator to a boolean.
func (g *Generator) IsTrue(pos Pos) { g.emit(pos, ir.OpIsTrue) }

// IsFalse normalizes the accumulator to its boolean complement.
func (g *Generator) IsFalse(pos Pos) { g.emit(pos, ir.OpIsFalse) }

// JumpIfTrue jumps to target when the accumulator is truthy.
func (g *Generator) JumpIfTrue(pos Pos, target ir.Label) {
	g.IsFalse(pos)
	g.BranchIfFalsy(pos, target)
}

// JumpIfFalse jumps to target when the accumulator is falsy.
func (g *Generator) JumpIfFalse(pos Pos, target ir.Label) {
	g.IsTrue(pos)
	g.BranchIfFalsy(pos, target)
}

// Return returns the accumulator.
func (g *Generator) Return(pos Pos) { g.emit(pos, ir.OpReturn) }

// ReturnUndefined returns undefined.
func (g *Generator) ReturnUndefined(pos Pos) { g.emit(pos, ir.OpReturnUndefined) }

// Debugger emits a debugger statement.
func (g *Generator) Debugger(pos Pos) { g.emit(pos, ir.OpDebugger) }

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

// TypeOf replaces the accumulator with its type name.
func (g *Generator) TypeOf(pos Pos) { g.emit(pos, ir.OpTypeOf) }

// ToNumber converts the value in r with ToNumber into the accumulator.
func (g *Generator) ToNumber(pos Pos, r *ir.VReg) { g.emit(pos, ir.OpToNumber, ir.Reg(r)) }

// ToNumeric converts the value in r with ToNumeric into the accumulator.
func (g *Generator) ToNumeric(pos Pos, r *ir.VReg) { g.emit(pos, ir.OpToNumeric, ir.Reg(r)) }
