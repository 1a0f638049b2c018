package codegen

import "github.com/chazu/ecmagen/ir"

// LabelPair delimits one protected range [Begin, End).
type LabelPair struct {
	Begin ir.Label
	End   ir.Label
}

// CatchTable maps a handler entry label to the ranges it protects. A try
// block interrupted by finally code is split into several ranges.
type CatchTable struct {
	Handler ir.Label
	Ranges  []LabelPair
	Depth   int // try nesting depth
}

// AddRange appends another protected range.
func (ct *CatchTable) AddRange(p LabelPair) {
	ct.Ranges = append(ct.Ranges, p)
}

func (ct *CatchTable) labels() []ir.Label {
	out := []ir.Label{ct.Handler}
	for _, p := range ct.Ranges {
		out = append(out, p.Begin, p.End)
	}
	return out
}

// NewCatchTable registers a handler for the range p and returns its table.
// Registering the same handler again returns the existing table with p
// added.
func (g *Generator) NewCatchTable(handler ir.Label, p LabelPair, depth int) *CatchTable {
	if ct, ok := g.catches[handler]; ok {
		ct.AddRange(p)
		return ct
	}
	ct := &CatchTable{Handler: handler, Ranges: []LabelPair{p}, Depth: depth}
	g.catches[handler] = ct
	return ct
}

// CatchMap returns the catch tables keyed by handler label.
func (g *Generator) CatchMap() map[ir.Label]*CatchTable { return g.catches }
