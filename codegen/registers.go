package codegen

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/chazu/ecmagen/ir"
)

// Pool hands out virtual registers for one function. Locals live for the
// whole function and are never recycled. Temporaries are returned with
// Release and handed out again oldest-released first.
type Pool struct {
	next   int
	locals []*ir.VReg
	temps  []*ir.VReg   // every temporary ever created
	free   []*ir.VReg   // FIFO of released temporaries
	spans  [][]*ir.VReg // FIFO of released ranges

	// live is nil unless liveness checking is enabled. Bit i is set while
	// the temporary with ID i is handed out.
	live    *bitset.BitSet
	isLocal *bitset.BitSet
}

// NewPool returns an empty pool. With checkLiveness set, releasing a
// register that is not an outstanding temporary panics.
func NewPool(checkLiveness bool) *Pool {
	p := &Pool{}
	if checkLiveness {
		p.live = bitset.New(64)
		p.isLocal = bitset.New(64)
	}
	return p
}

func (p *Pool) fresh() *ir.VReg {
	r := ir.NewVReg(p.next)
	p.next++
	return r
}

// AllocateLocal returns a register reserved for the rest of the function.
func (p *Pool) AllocateLocal() *ir.VReg {
	r := p.fresh()
	p.locals = append(p.locals, r)
	if p.isLocal != nil {
		p.isLocal.Set(uint(r.ID()))
	}
	return r
}

// AllocateTemporary returns a released temporary if one is available,
// otherwise a fresh one.
func (p *Pool) AllocateTemporary() *ir.VReg {
	var r *ir.VReg
	if len(p.free) > 0 {
		r = p.free[0]
		p.free[0] = nil
		p.free = p.free[1:]
	} else {
		r = p.fresh()
		p.temps = append(p.temps, r)
	}
	if p.live != nil {
		p.live.Set(uint(r.ID()))
	}
	return r
}

// Release returns temporaries to the pool. Releasing a local or a register
// that is not outstanding is a caller bug; it is only detected when
// liveness checking is enabled.
func (p *Pool) Release(regs ...*ir.VReg) {
	for _, r := range regs {
		if p.live != nil {
			id := uint(r.ID())
			if p.isLocal.Test(id) {
				panic(fmt.Sprintf("codegen: release of local register %s", r))
			}
			if !p.live.Test(id) {
				panic(fmt.Sprintf("codegen: release of register %s that is not live", r))
			}
			p.live.Clear(id)
		}
		p.free = append(p.free, r)
	}
}

// AllocateRange returns n temporaries that receive consecutive numbers, as
// range operands require. A released range of the same length is reused
// before fresh registers are created. Ranges are never split or handed
// out one register at a time.
func (p *Pool) AllocateRange(n int) []*ir.VReg {
	var regs []*ir.VReg
	for i, s := range p.spans {
		if len(s) == n {
			regs = s
			p.spans = append(p.spans[:i], p.spans[i+1:]...)
			break
		}
	}
	if regs == nil {
		regs = make([]*ir.VReg, n)
		for i := range regs {
			regs[i] = p.fresh()
		}
		p.temps = append(p.temps, regs...)
	}
	if p.live != nil {
		for _, r := range regs {
			p.live.Set(uint(r.ID()))
		}
	}
	return regs
}

// ReleaseRange returns a range obtained from AllocateRange.
func (p *Pool) ReleaseRange(regs []*ir.VReg) {
	if p.live != nil {
		for _, r := range regs {
			id := uint(r.ID())
			if !p.live.Test(id) {
				panic(fmt.Sprintf("codegen: release of range register %s that is not live", r))
			}
			p.live.Clear(id)
		}
	}
	p.spans = append(p.spans, regs)
}

// Locals returns the local registers in allocation order.
func (p *Pool) Locals() []*ir.VReg { return p.locals }

// Temps returns every temporary created, ranges included, in creation
// order.
func (p *Pool) Temps() []*ir.VReg { return p.temps }

// Outstanding returns how many temporaries are currently handed out.
func (p *Pool) Outstanding() int {
	n := len(p.temps) - len(p.free)
	for _, s := range p.spans {
		n -= len(s)
	}
	return n
}
