package codegen

import (
	"fmt"
	"math"
	"strconv"

	"github.com/chazu/ecmagen/ir"
)

// KeyKind tags a PropertyKey.
type KeyKind uint8

const (
	KeyIndex  KeyKind = iota + 1 // small non-negative integer
	KeyName                      // identifier or string literal
	KeyNumber                    // any other numeric literal
	KeyValue                     // computed at runtime, held in a register
)

// PropertyKey is a property key as known at emission time. The emitter
// picks the indexed, named or by-value instruction form from its kind.
type PropertyKey struct {
	kind  KeyKind
	index uint32
	name  string
	num   float64
	reg   *ir.VReg
}

// IndexKey is an array-index key.
func IndexKey(i uint32) PropertyKey { return PropertyKey{kind: KeyIndex, index: i} }

// NameKey is a string key.
func NameKey(s string) PropertyKey { return PropertyKey{kind: KeyName, name: s} }

// NumberKey is a numeric literal key. Integral values that fit an array
// index become index keys.
func NumberKey(f float64) PropertyKey {
	if f >= 0 && f <= math.MaxUint32 && f == math.Trunc(f) {
		return IndexKey(uint32(f))
	}
	return PropertyKey{kind: KeyNumber, num: f}
}

// ValueKey is a key computed at runtime.
func ValueKey(r *ir.VReg) PropertyKey { return PropertyKey{kind: KeyValue, reg: r} }

// Kind returns the key's tag.
func (k PropertyKey) Kind() KeyKind { return k.kind }

func (k PropertyKey) String() string {
	switch k.kind {
	case KeyIndex:
		return strconv.FormatUint(uint64(k.index), 10)
	case KeyName:
		return strconv.Quote(k.name)
	case KeyNumber:
		return strconv.FormatFloat(k.num, 'g', -1, 64)
	case KeyValue:
		return "[" + k.reg.String() + "]"
	default:
		return fmt.Sprintf("PropertyKey(%d)", k.kind)
	}
}

// numberReg materializes a non-index numeric key into a temporary. The
// accumulator is clobbered.
func (g *Generator) numberReg(pos Pos, f float64) *ir.VReg {
	r := g.AllocTemp()
	g.emit(pos, ir.OpFldai, ir.Float(f))
	g.emit(pos, ir.OpSta, ir.Reg(r))
	return r
}

// LoadObjProperty loads obj[key] into the accumulator.
func (g *Generator) LoadObjProperty(pos Pos, obj *ir.VReg, key PropertyKey) {
	switch key.kind {
	case KeyIndex:
		g.emit(pos, ir.OpLdObjByIndex, ir.Reg(obj), ir.Imm(int64(key.index)))
	case KeyName:
		g.emit(pos, ir.OpLdObjByName, ir.Reg(obj), ir.Str(key.name))
	case KeyNumber:
		r := g.numberReg(pos, key.num)
		g.emit(pos, ir.OpLdObjByValue, ir.Reg(obj), ir.Reg(r))
		g.FreeTemps(r)
	case KeyValue:
		g.emit(pos, ir.OpLdObjByValue, ir.Reg(obj), ir.Reg(key.reg))
	default:
		panic(fmt.Sprintf("codegen: bad property key %s", key))
	}
}

// StoreObjProperty stores the accumulator to obj[key]. The accumulator is
// preserved.
func (g *Generator) StoreObjProperty(pos Pos, obj *ir.VReg, key PropertyKey) {
	g.storeProperty(pos, obj, key, ir.OpStObjByIndex, ir.OpStObjByName, ir.OpStObjByValue)
}

// StoreOwnProperty defines obj[key] from the accumulator, as object
// literals do. With nameSetting the stored function value takes the key as
// its name.
func (g *Generator) StoreOwnProperty(pos Pos, obj *ir.VReg, key PropertyKey, nameSetting bool) {
	byName, byValue := ir.OpStOwnByName, ir.OpStOwnByValue
	if nameSetting {
		byName, byValue = ir.OpStOwnByNameWithNameSet, ir.OpStOwnByValueWithNameSet
	}
	g.storeProperty(pos, obj, key, ir.OpStOwnByIndex, byName, byValue)
}

func (g *Generator) storeProperty(pos Pos, obj *ir.VReg, key PropertyKey, byIndex, byName, byValue ir.Opcode) {
	switch key.kind {
	case KeyIndex:
		g.emit(pos, byIndex, ir.Reg(obj), ir.Imm(int64(key.index)))
	case KeyName:
		g.emit(pos, byName, ir.Reg(obj), ir.Str(key.name))
	case KeyNumber:
		val := g.AllocTemp()
		g.emit(pos, ir.OpSta, ir.Reg(val))
		r := g.numberReg(pos, key.num)
		g.emit(pos, ir.OpLda, ir.Reg(val))
		g.emit(pos, byValue, ir.Reg(obj), ir.Reg(r))
		g.FreeTemps(val, r)
	case KeyValue:
		g.emit(pos, byValue, ir.Reg(obj), ir.Reg(key.reg))
	default:
		panic(fmt.Sprintf("codegen: bad property key %s", key))
	}
}

// superKeyReg puts a non-name key in a register for the by-value super
// forms. The second result reports whether the register is a temporary.
func (g *Generator) superKeyReg(pos Pos, key PropertyKey) (*ir.VReg, bool) {
	switch key.kind {
	case KeyIndex:
		r := g.AllocTemp()
		g.emit(pos, ir.OpLdai, ir.Imm(int64(key.index)))
		g.emit(pos, ir.OpSta, ir.Reg(r))
		return r, true
	case KeyNumber:
		return g.numberReg(pos, key.num), true
	case KeyValue:
		return key.reg, false
	default:
		panic(fmt.Sprintf("codegen: bad property key %s", key))
	}
}

// LoadSuperProperty loads super[key] relative to obj into the accumulator.
func (g *Generator) LoadSuperProperty(pos Pos, obj *ir.VReg, key PropertyKey) {
	if key.kind == KeyName {
		g.emit(pos, ir.OpLdSuperByName, ir.Reg(obj), ir.Str(key.name))
		return
	}
	r, temp := g.superKeyReg(pos, key)
	g.emit(pos, ir.OpLdSuperByValue, ir.Reg(obj), ir.Reg(r))
	if temp {
		g.FreeTemps(r)
	}
}

// StoreSuperProperty stores the accumulator to super[key] relative to obj.
// The accumulator is preserved.
func (g *Generator) StoreSuperProperty(pos Pos, obj *ir.VReg, key PropertyKey) {
	if key.kind == KeyName {
		g.emit(pos, ir.OpStSuperByName, ir.Reg(obj), ir.Str(key.name))
		return
	}
	if key.kind == KeyValue {
		g.emit(pos, ir.OpStSuperByValue, ir.Reg(obj), ir.Reg(key.reg))
		return
	}
	val := g.AllocTemp()
	g.emit(pos, ir.OpSta, ir.Reg(val))
	r, _ := g.superKeyReg(pos, key)
	g.emit(pos, ir.OpLda, ir.Reg(val))
	g.emit(pos, ir.OpStSuperByValue, ir.Reg(obj), ir.Reg(r))
	g.FreeTemps(val, r)
}

// DeleteObjProperty deletes obj[prop] and leaves the result in the
// accumulator.
func (g *Generator) DeleteObjProperty(pos Pos, obj, prop *ir.VReg) {
	g.emit(pos, ir.OpDelObjProp, ir.Reg(obj), ir.Reg(prop))
}
