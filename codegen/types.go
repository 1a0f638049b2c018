package codegen

import "github.com/chazu/ecmagen/ir"

// SetInstType records the type descriptor index of the value in produces.
// It is a no-op unless type recording is enabled.
func (g *Generator) SetInstType(in *ir.Insn, typeID int) {
	if !g.unit.opts.RecordTypes {
		return
	}
	g.types[in] = typeID
}

// InstType returns the type recorded for in.
func (g *Generator) InstType(in *ir.Insn) (int, bool) {
	t, ok := g.types[in]
	return t, ok
}

// InstTypeMap returns the instruction type table.
func (g *Generator) InstTypeMap() map[*ir.Insn]int { return g.types }
