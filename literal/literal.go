// Package literal holds the constant-data buffers that instructions refer to
// by index: array and object templates, class templates, scope descriptors
// and type descriptors. All of them share one index space per compilation.
package literal

import (
	"fmt"
	"strconv"
	"strings"
)

// Tag identifies the payload of a Literal.
type Tag uint8

const (
	TagBool            Tag = 1
	TagInteger         Tag = 2
	TagFloat           Tag = 3
	TagDouble          Tag = 4
	TagString          Tag = 5
	TagMethod          Tag = 6  // function name of a method
	TagGenerator       Tag = 7  // function name of a generator method
	TagAccessor        Tag = 8  // getter/setter placeholder
	TagMethodAffiliate Tag = 9  // parameter count following a method
	TagAsyncGenerator  Tag = 10 // function name of an async generator method
	TagArray           Tag = 11 // index of a nested buffer
	TagNull            Tag = 255
)

func (t Tag) String() string {
	switch t {
	case TagBool:
		return "bool"
	case TagInteger:
		return "integer"
	case TagFloat:
		return "float"
	case TagDouble:
		return "double"
	case TagString:
		return "string"
	case TagMethod:
		return "method"
	case TagGenerator:
		return "generator"
	case TagAccessor:
		return "accessor"
	case TagMethodAffiliate:
		return "method_affiliate"
	case TagAsyncGenerator:
		return "async_generator"
	case TagArray:
		return "array"
	case TagNull:
		return "null"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Literal is one tagged value inside a Buffer.
type Literal struct {
	Tag   Tag     `cbor:"1,keyasint"`
	Bool  bool    `cbor:"2,keyasint,omitempty"`
	Int   int64   `cbor:"3,keyasint,omitempty"`
	Float float64 `cbor:"4,keyasint,omitempty"`
	Str   string  `cbor:"5,keyasint,omitempty"`
}

// Bool makes a boolean literal.
func Bool(b bool) Literal { return Literal{Tag: TagBool, Bool: b} }

// Int makes an integer literal.
func Int(n int64) Literal { return Literal{Tag: TagInteger, Int: n} }

// Double makes a float literal.
func Double(f float64) Literal { return Literal{Tag: TagDouble, Float: f} }

// String makes a string literal.
func String(s string) Literal { return Literal{Tag: TagString, Str: s} }

// Method makes a method reference literal.
func Method(name string) Literal { return Literal{Tag: TagMethod, Str: name} }

// Generator makes a generator method reference literal.
func Generator(name string) Literal { return Literal{Tag: TagGenerator, Str: name} }

// AsyncGenerator makes an async generator method reference literal.
func AsyncGenerator(name string) Literal { return Literal{Tag: TagAsyncGenerator, Str: name} }

// MethodAffiliate records the parameter count of the preceding method.
func MethodAffiliate(params int) Literal {
	return Literal{Tag: TagMethodAffiliate, Int: int64(params)}
}

// Accessor makes a getter/setter placeholder literal.
func Accessor() Literal { return Literal{Tag: TagAccessor} }

// Array references another buffer by index.
func Array(idx int) Literal { return Literal{Tag: TagArray, Int: int64(idx)} }

// Null makes a null literal.
func Null() Literal { return Literal{Tag: TagNull} }

func (l Literal) String() string {
	switch l.Tag {
	case TagBool:
		return strconv.FormatBool(l.Bool)
	case TagInteger, TagMethodAffiliate:
		return strconv.FormatInt(l.Int, 10)
	case TagFloat, TagDouble:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case TagString:
		return strconv.Quote(l.Str)
	case TagMethod, TagGenerator, TagAsyncGenerator:
		return l.Tag.String() + ":" + l.Str
	case TagArray:
		return "@" + strconv.FormatInt(l.Int, 10)
	case TagAccessor, TagNull:
		return l.Tag.String()
	default:
		return l.Tag.String()
	}
}

// Kind says what a Buffer describes.
type Kind uint8

const (
	KindArray  Kind = iota // array literal template
	KindObject             // object literal template
	KindClass              // class template
	KindScope              // lexical scope descriptor (debug info)
	KindType               // type descriptor
)

func (k Kind) String() string {
	switch k {
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindClass:
		return "class"
	case KindScope:
		return "scope"
	case KindType:
		return "type"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Buffer is an ordered sequence of literals.
type Buffer struct {
	Kind     Kind      `cbor:"1,keyasint"`
	Literals []Literal `cbor:"2,keyasint"`
}

// NewBuffer creates a buffer of the given kind holding lits.
func NewBuffer(kind Kind, lits ...Literal) *Buffer {
	return &Buffer{Kind: kind, Literals: lits}
}

// Add appends literals to the buffer.
func (b *Buffer) Add(lits ...Literal) {
	b.Literals = append(b.Literals, lits...)
}

// Len returns the number of literals.
func (b *Buffer) Len() int {
	return len(b.Literals)
}

func (b *Buffer) String() string {
	parts := make([]string, len(b.Literals))
	for i, l := range b.Literals {
		parts[i] = l.String()
	}
	return b.Kind.String() + "[" + strings.Join(parts, ", ") + "]"
}
