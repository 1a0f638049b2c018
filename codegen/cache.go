package codegen

import "github.com/chazu/ecmagen/ir"

// Canonical names a value that is loaded once per function into a cached
// local register and reused from there.
type Canonical uint8

const (
	CacheUndefined Canonical = iota
	CacheNull
	CacheHole
	CacheTrue
	CacheFalse
	CacheGlobal
	CacheLexEnv
	CacheFunction
	CacheNewTarget
	CacheThis
	CacheHomeObject

	numCanonical
)

var canonicalLoads = [numCanonical]ir.Opcode{
	CacheUndefined:  ir.OpLdUndefined,
	CacheNull:       ir.OpLdNull,
	CacheHole:       ir.OpLdHole,
	CacheTrue:       ir.OpLdTrue,
	CacheFalse:      ir.OpLdFalse,
	CacheGlobal:     ir.OpLdGlobal,
	CacheLexEnv:     ir.OpLdLexEnv,
	CacheFunction:   ir.OpLdFunction,
	CacheNewTarget:  ir.OpLdNewTarget,
	CacheThis:       ir.OpLdThis,
	CacheHomeObject: ir.OpLdHomeObject,
}

func (c Canonical) String() string {
	if c < numCanonical {
		return canonicalLoads[c].Name()
	}
	return "canonical?"
}

type regCache struct {
	regs  [numCanonical]*ir.VReg
	order []Canonical
}

func (rc *regCache) get(c Canonical, pool *Pool) *ir.VReg {
	if r := rc.regs[c]; r != nil {
		return r
	}
	r := pool.AllocateLocal()
	rc.regs[c] = r
	rc.order = append(rc.order, c)
	return r
}

// prologue returns the loads that fill every cache register used, in the
// order they were first requested.
func (rc *regCache) prologue() []*ir.Insn {
	var out []*ir.Insn
	for _, c := range rc.order {
		out = append(out,
			ir.Make(canonicalLoads[c]),
			ir.Make(ir.OpSta, ir.Reg(rc.regs[c])),
		)
	}
	return out
}

// Cached returns the cache register for c, allocating it on first use. The
// register is filled by a prologue inserted when the function is finished.
func (g *Generator) Cached(c Canonical) *ir.VReg {
	return g.cache.get(c, g.regs)
}
