package codegen

import (
	"testing"

	"github.com/chazu/ecmagen/ir"
)

func TestPoolLocalsAreFresh(t *testing.T) {
	p := NewPool(false)
	a, b := p.AllocateLocal(), p.AllocateLocal()
	if a == b {
		t.Fatal("two locals share a register")
	}
	if len(p.Locals()) != 2 || len(p.Temps()) != 0 {
		t.Errorf("locals=%d temps=%d", len(p.Locals()), len(p.Temps()))
	}
}

func TestPoolTemporaryReuseIsFIFO(t *testing.T) {
	p := NewPool(true)
	a, b, c := p.AllocateTemporary(), p.AllocateTemporary(), p.AllocateTemporary()

	p.Release(b)
	p.Release(a, c)

	want := []*ir.VReg{b, a, c}
	for i, w := range want {
		if got := p.AllocateTemporary(); got != w {
			t.Errorf("reuse %d = %s, want %s", i, got, w)
		}
	}
	d := p.AllocateTemporary()
	for _, r := range []*ir.VReg{a, b, c} {
		if d == r {
			t.Fatal("fresh temporary aliases a live one")
		}
	}
	if len(p.Temps()) != 4 {
		t.Errorf("temps = %d, want 4", len(p.Temps()))
	}
}

// A simulated caller that checks no register is handed out while its
// previous holder still considers it live.
func TestPoolNeverReturnsLiveRegister(t *testing.T) {
	p := NewPool(true)
	live := make(map[*ir.VReg]bool)
	var held []*ir.VReg
	pattern := []int{3, -2, 2, -1, 4, -3, 1, -4}
	for _, step := range pattern {
		if step > 0 {
			for i := 0; i < step; i++ {
				r := p.AllocateTemporary()
				if live[r] {
					t.Fatalf("register %s handed out while live", r)
				}
				live[r] = true
				held = append(held, r)
			}
			continue
		}
		n := -step
		for _, r := range held[:n] {
			delete(live, r)
		}
		p.Release(held[:n]...)
		held = held[n:]
	}
	if p.Outstanding() != len(held) {
		t.Errorf("outstanding = %d, want %d", p.Outstanding(), len(held))
	}
}

func TestPoolLivenessAssertion(t *testing.T) {
	tests := []struct {
		name string
		run  func(p *Pool)
	}{
		{"double release", func(p *Pool) {
			r := p.AllocateTemporary()
			p.Release(r)
			p.Release(r)
		}},
		{"release local", func(p *Pool) {
			p.Release(p.AllocateLocal())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			tt.run(NewPool(true))
		})
	}
}

func TestPoolWithoutAssertionTrustsCaller(t *testing.T) {
	p := NewPool(false)
	r := p.AllocateTemporary()
	p.Release(r)
	p.Release(r)
	if got := p.AllocateTemporary(); got != r {
		t.Errorf("got %s, want %s", got, r)
	}
}

func TestPoolRangeIsConsecutiveAndReused(t *testing.T) {
	p := NewPool(true)
	single := p.AllocateTemporary()
	r := p.AllocateRange(3)
	temps := p.Temps()
	if len(temps) != 4 {
		t.Fatalf("temps = %d, want 4", len(temps))
	}
	for i, reg := range r {
		if temps[1+i] != reg {
			t.Errorf("range register %d = %s, not adjacent in creation order", i, reg)
		}
	}

	p.ReleaseRange(r)
	p.Release(single)
	if got := p.AllocateTemporary(); got != single {
		t.Errorf("single temporary = %s, want %s", got, single)
	}
	again := p.AllocateRange(3)
	for i := range r {
		if again[i] != r[i] {
			t.Errorf("reused range %d = %s, want %s", i, again[i], r[i])
		}
	}
	if len(p.Temps()) != 4 {
		t.Errorf("temps after reuse = %d, want 4", len(p.Temps()))
	}

	p.AllocateRange(2)
	if len(p.Temps()) != 6 {
		t.Errorf("temps = %d, want 6", len(p.Temps()))
	}
	if p.Outstanding() != 6 {
		t.Errorf("outstanding = %d, want 6", p.Outstanding())
	}
}

func TestPoolRangeDoubleReleasePanics(t *testing.T) {
	p := NewPool(true)
	r := p.AllocateRange(2)
	p.ReleaseRange(r)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	p.ReleaseRange(r)
}
