package codegen

import "github.com/chazu/ecmagen/ir"

// CreateEmptyObject leaves a new plain object in the accumulator.
func (g *Generator) CreateEmptyObject(pos Pos) { g.emit(pos, ir.OpCreateEmptyObject) }

// CreateEmptyArray leaves a new empty array in the accumulator.
func (g *Generator) CreateEmptyArray(pos Pos) { g.emit(pos, ir.OpCreateEmptyArray) }

// CreateArrayWithBuffer creates an array from the literal buffer at idx.
func (g *Generator) CreateArrayWithBuffer(pos Pos, idx int) {
	g.emit(pos, ir.OpCreateArrayWithBuffer, ir.Buffer(idx))
}

// CreateObjectWithBuffer creates an object from the literal buffer at idx.
func (g *Generator) CreateObjectWithBuffer(pos Pos, idx int) {
	g.emit(pos, ir.OpCreateObjectWithBuffer, ir.Buffer(idx))
}

// CreateObjectHavingMethod creates an object whose literal buffer holds
// methods closing over env.
func (g *Generator) CreateObjectHavingMethod(pos Pos, idx int, env *ir.VReg) {
	g.LoadAccumulator(pos, env)
	g.emit(pos, ir.OpCreateObjectHavingMethod, ir.Buffer(idx))
}

// SetObjectWithProto sets the prototype of obj to proto.
func (g *Generator) SetObjectWithProto(pos Pos, proto, obj *ir.VReg) {
	g.emit(pos, ir.OpSetObjectWithProto, ir.Reg(proto), ir.Reg(obj))
}

// CopyDataProperties copies the own enumerable properties of src into dst.
func (g *Generator) CopyDataProperties(pos Pos, dst, src *ir.VReg) {
	g.emit(pos, ir.OpCopyDataProperties, ir.Reg(dst), ir.Reg(src))
}

// CreateObjectWithExcludedKeys copies obj without the listed keys, as
// object rest patterns do.
func (g *Generator) CreateObjectWithExcludedKeys(pos Pos, obj *ir.VReg, keys []*ir.VReg) {
	args := append([]ir.Operand{ir.Imm(int64(len(keys))), ir.Reg(obj)}, ir.Regs(keys...)...)
	g.emit(pos, ir.OpCreateObjectWithExcludedKeys, args...)
}

// DefineGetterSetterByValue installs an accessor pair on obj. computed
// marks a computed property name.
func (g *Generator) DefineGetterSetterByValue(pos Pos, obj, name, getter, setter *ir.VReg, computed bool) {
	if computed {
		g.LoadCanonical(pos, CacheTrue)
	} else {
		g.LoadCanonical(pos, CacheFalse)
	}
	g.emit(pos, ir.OpDefineGetterSetterByValue, ir.Reg(obj), ir.Reg(name), ir.Reg(getter), ir.Reg(setter))
}

// StoreArraySpreadElement spreads the accumulator into array at the index
// held in index.
func (g *Generator) StoreArraySpreadElement(pos Pos, array, index *ir.VReg) {
	g.emit(pos, ir.OpStArraySpread, ir.Reg(array), ir.Reg(index))
}

// CreateRegExpWithLiteral creates a regular expression object.
func (g *Generator) CreateRegExpWithLiteral(pos Pos, pattern string, flags int) {
	g.emit(pos, ir.OpCreateRegExpWithLiteral, ir.Str(pattern), ir.Imm(int64(flags)))
}

// GetTemplateObject loads the cached template object for the raw and
// cooked string arrays in r.
func (g *Generator) GetTemplateObject(pos Pos, r *ir.VReg) {
	g.emit(pos, ir.OpGetTemplateObject, ir.Reg(r))
}

// ---------------------------------------------------------------------------
// Iterators
// ---------------------------------------------------------------------------

// GetIterator replaces the accumulator with its iterator.
func (g *Generator) GetIterator(pos Pos) { g.emit(pos, ir.OpGetIterator) }

// GetIteratorNext calls next on iter, using the next method cached in next.
func (g *Generator) GetIteratorNext(pos Pos, iter, next *ir.VReg) {
	g.emit(pos, ir.OpGetIteratorNext, ir.Reg(iter), ir.Reg(next))
}

// CloseIterator calls return on iter.
func (g *Generator) CloseIterator(pos Pos, iter *ir.VReg) {
	g.emit(pos, ir.OpCloseIterator, ir.Reg(iter))
}

// GetPropIterator replaces the accumulator with a for-in iterator.
func (g *Generator) GetPropIterator(pos Pos) { g.emit(pos, ir.OpGetPropIterator) }

// GetNextPropName loads the next key of the for-in iterator in iter.
func (g *Generator) GetNextPropName(pos Pos, iter *ir.VReg) {
	g.emit(pos, ir.OpGetNextPropName, ir.Reg(iter))
}

// ---------------------------------------------------------------------------
// Throws
// ---------------------------------------------------------------------------

// Throw throws the accumulator.
func (g *Generator) Throw(pos Pos) { g.emit(pos, ir.OpThrow) }

// ThrowThrowNotExists throws when an iterator has no throw method.
func (g *Generator) ThrowThrowNotExists(pos Pos) { g.emit(pos, ir.OpThrowThrowNotExists) }

// ThrowDeleteSuperProperty throws for delete super.x.
func (g *Generator) ThrowDeleteSuperProperty(pos Pos) { g.emit(pos, ir.OpThrowDeleteSuperProperty) }

// ThrowConstAssignment throws for an assignment to the const named in
// nameReg.
func (g *Generator) ThrowConstAssignment(pos Pos, nameReg *ir.VReg) {
	g.emit(pos, ir.OpThrowConstAssignment, ir.Reg(nameReg))
}

// ThrowIfNotObject throws unless r holds an object.
func (g *Generator) ThrowIfNotObject(pos Pos, r *ir.VReg) {
	g.emit(pos, ir.OpThrowIfNotObject, ir.Reg(r))
}

// ThrowObjectNonCoercible throws for destructuring null or undefined.
func (g *Generator) ThrowObjectNonCoercible(pos Pos) { g.emit(pos, ir.OpThrowObjectNonCoercible) }

// ThrowUndefinedIfHole throws a reference error naming nameReg if hole
// holds the uninitialized marker.
func (g *Generator) ThrowUndefinedIfHole(pos Pos, hole, nameReg *ir.VReg) {
	g.emit(pos, ir.OpThrowUndefinedIfHole, ir.Reg(hole), ir.Reg(nameReg))
}
