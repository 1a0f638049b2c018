package codegen

import "github.com/chazu/ecmagen/ir"

// allocateRegisters assigns concrete indices: locals first, then
// temporaries, then parameters, which the calling convention places at the
// top of the frame.
func (g *Generator) allocateRegisters() {
	isParam := make(map[*ir.VReg]bool, len(g.params))
	for _, p := range g.params {
		isParam[p] = true
	}
	n := 0
	for _, r := range g.regs.Locals() {
		if isParam[r] {
			continue
		}
		r.SetNum(n)
		n++
	}
	for _, r := range g.regs.Temps() {
		r.SetNum(n)
		n++
	}
	for _, r := range g.params {
		r.SetNum(n)
		n++
	}
	g.totalRegs = n
}
