package codegen

import (
	"math"

	"github.com/chazu/ecmagen/ir"
)

// LoadAccumulator copies r into the accumulator.
func (g *Generator) LoadAccumulator(pos Pos, r *ir.VReg) *ir.Insn {
	return g.emit(pos, ir.OpLda, ir.Reg(r))
}

// StoreAccumulator copies the accumulator into r.
func (g *Generator) StoreAccumulator(pos Pos, r *ir.VReg) *ir.Insn {
	return g.emit(pos, ir.OpSta, ir.Reg(r))
}

// LoadAccumulatorInt loads an integer immediate.
func (g *Generator) LoadAccumulatorInt(pos Pos, n int64) *ir.Insn {
	return g.emit(pos, ir.OpLdai, ir.Imm(n))
}

// LoadAccumulatorFloat loads a float immediate.
func (g *Generator) LoadAccumulatorFloat(pos Pos, f float64) *ir.Insn {
	return g.emit(pos, ir.OpFldai, ir.Float(f))
}

// LoadAccumulatorNumber loads a numeric literal, using the integer form
// when the value is an int32.
func (g *Generator) LoadAccumulatorNumber(pos Pos, f float64) *ir.Insn {
	if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 && !(f == 0 && math.Signbit(f)) {
		return g.LoadAccumulatorInt(pos, int64(f))
	}
	return g.LoadAccumulatorFloat(pos, f)
}

// LoadAccumulatorString loads a string constant.
func (g *Generator) LoadAccumulatorString(pos Pos, s string) *ir.Insn {
	return g.emit(pos, ir.OpLdaStr, ir.Str(s))
}

// LoadAccumulatorBigInt loads a bigint literal given in source form.
func (g *Generator) LoadAccumulatorBigInt(pos Pos, digits string) *ir.Insn {
	return g.emit(pos, ir.OpLdBigInt, ir.Str(digits))
}

// LoadCanonical loads one of the canonical values through its cache
// register.
func (g *Generator) LoadCanonical(pos Pos, c Canonical) *ir.Insn {
	return g.LoadAccumulator(pos, g.Cached(c))
}

// MoveVreg copies src into dst without touching the accumulator.
func (g *Generator) MoveVreg(pos Pos, dst, src *ir.VReg) {
	g.emit(pos, ir.OpMov, ir.Reg(dst), ir.Reg(src))
}

// LoadHomeObject loads the current home object for super resolution.
func (g *Generator) LoadHomeObject(pos Pos) {
	g.LoadCanonical(pos, CacheHomeObject)
}
