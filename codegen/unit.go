package codegen

import (
	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"github.com/chazu/ecmagen/literal"
	"github.com/chazu/ecmagen/options"
)

// Unit is one compilation: the literal registry shared by every function
// lowered in it, the options in force, and the generators created so far.
// Nothing in a Unit is global; two units never observe each other.
type Unit struct {
	id       uuid.UUID
	opts     options.Options
	literals *literal.Registry
	funcs    []*Generator
	log      commonlog.Logger

	// primitive type name to descriptor index
	primTypes map[string]int
}

// NewUnit starts a compilation with the given options.
func NewUnit(opts options.Options) *Unit {
	u := &Unit{
		id:        uuid.New(),
		opts:      opts,
		literals:  literal.NewRegistry(),
		log:       commonlog.GetLogger("ecmagen.codegen"),
		primTypes: make(map[string]int),
	}
	u.log.Debugf("unit %s started", u.id)
	return u
}

// ID identifies the compilation in logs and snapshots.
func (u *Unit) ID() uuid.UUID { return u.id }

// Options returns the options in force.
func (u *Unit) Options() options.Options { return u.opts }

// Literals returns the unit's literal registry.
func (u *Unit) Literals() *literal.Registry { return u.literals }

// Functions returns the generators created in this unit, in creation order.
func (u *Unit) Functions() []*Generator { return u.funcs }

// AppendLiteralBuffer registers b and returns its index.
func (u *Unit) AppendLiteralBuffer(b *literal.Buffer) int {
	return u.literals.Append(b)
}

// AppendTypeBuffer registers a type descriptor and returns its index. The
// descriptor may be a placeholder filled in later with SetTypeBuffer.
func (u *Unit) AppendTypeBuffer(b *literal.Buffer) int {
	return u.literals.Append(b)
}

// PrimitiveType returns the descriptor index of a primitive type such as
// "number", registering the descriptor on first use.
func (u *Unit) PrimitiveType(name string) int {
	if idx, ok := u.primTypes[name]; ok {
		return idx
	}
	idx := u.AppendTypeBuffer(literal.NewBuffer(literal.KindType, literal.String(name)))
	u.primTypes[name] = idx
	return idx
}

// SetTypeBuffer replaces a previously reserved type descriptor.
func (u *Unit) SetTypeBuffer(idx int, b *literal.Buffer) error {
	return u.literals.Set(idx, b)
}

// Reset clears the registry and generator list and assigns a fresh ID so
// the unit can host an unrelated compilation.
func (u *Unit) Reset() {
	u.literals.Clear()
	u.funcs = nil
	clear(u.primTypes)
	u.id = uuid.New()
	u.log.Debugf("unit reset as %s", u.id)
}
