package ir

import (
	"fmt"
	"strconv"
)

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// Label is a handle into a LabelArena. Jump instructions store the handle,
// never a pointer, so the stream has no cyclic references.
type Label int

// NoLabel is the zero handle; arenas never hand it out.
const NoLabel Label = 0

func (l Label) String() string {
	return "L" + strconv.Itoa(int(l))
}

// LabelArena owns the label records of one function. A label is created
// unbound and is bound exactly once to the instruction offset at which its
// marker was appended.
type LabelArena struct {
	offsets []int // index = handle-1, -1 while unbound
}

// New creates an unbound label.
func (a *LabelArena) New() Label {
	a.offsets = append(a.offsets, -1)
	return Label(len(a.offsets))
}

// Bind records the label's instruction offset. Binding twice is a
// generator bug and panics.
func (a *LabelArena) Bind(l Label, offset int) {
	i := a.index(l)
	if a.offsets[i] >= 0 {
		panic(fmt.Sprintf("ir: label %s already bound at %d", l, a.offsets[i]))
	}
	a.offsets[i] = offset
}

// Offset returns the bound offset of l.
func (a *LabelArena) Offset(l Label) (int, bool) {
	i := a.index(l)
	off := a.offsets[i]
	return off, off >= 0
}

// Bound reports whether l has been bound.
func (a *LabelArena) Bound(l Label) bool {
	_, ok := a.Offset(l)
	return ok
}

// Len returns the number of labels created so far.
func (a *LabelArena) Len() int {
	return len(a.offsets)
}

// Unbound returns every label that has not been bound yet.
func (a *LabelArena) Unbound() []Label {
	var out []Label
	for i, off := range a.offsets {
		if off < 0 {
			out = append(out, Label(i+1))
		}
	}
	return out
}

func (a *LabelArena) index(l Label) int {
	i := int(l) - 1
	if i < 0 || i >= len(a.offsets) {
		panic(fmt.Sprintf("ir: label %s does not belong to this arena", l))
	}
	return i
}

// Resync rebinds every label from the markers present in insns. It is used
// after the stream has been replaced or shifted. Labels whose marker is no
// longer present become unbound.
func (a *LabelArena) Resync(insns []*Insn) {
	for i := range a.offsets {
		a.offsets[i] = -1
	}
	for off, in := range insns {
		if in.Op == OpLabel {
			a.Bind(in.Args[0].Label, off)
		}
	}
}
