// Package token defines the operator tokens that the lowering pass hands to
// the bytecode generator. The generator never sees source text; it only
// receives these already-classified operators.
package token

import "fmt"

// Kind identifies an operator.
type Kind int

// Relational operators
const (
	Illegal Kind = iota

	Less           // <
	Greater        // >
	LessEqual      // <=
	GreaterEqual   // >=
	Equal          // ==
	NotEqual       // !=
	StrictEqual    // ===
	StrictNotEqual // !==
)

// Arithmetic and bitwise operators
const (
	Plus       Kind = iota + 20 // +
	Minus                       // -
	Star                        // *
	StarStar                    // **
	Slash                       // /
	Percent                     // %
	Shl                         // <<
	Shr                         // >>
	UShr                        // >>>
	And                         // &
	Or                          // |
	Xor                         // ^
	In                          // in
	InstanceOf                  // instanceof
)

// Compound assignment operators
const (
	PlusAssign     Kind = iota + 40 // +=
	MinusAssign                     // -=
	StarAssign                      // *=
	StarStarAssign                  // **=
	SlashAssign                     // /=
	PercentAssign                   // %=
	ShlAssign                       // <<=
	ShrAssign                       // >>=
	UShrAssign                      // >>>=
	AndAssign                       // &=
	OrAssign                        // |=
	XorAssign                       // ^=
)

// Prefix unary operators
const (
	Increment Kind = iota + 60 // ++
	Decrement                  // --
	Not                        // !
	Tilde                      // ~
)

// Short-circuit operators. They never reach the generator's binary path;
// the lowering pass expands them into jumps.
const (
	LogicalAnd Kind = iota + 80 // &&
	LogicalOr                   // ||
	Coalesce                    // ??
)

var names = map[Kind]string{
	Illegal: "ILLEGAL",

	Less:           "<",
	Greater:        ">",
	LessEqual:      "<=",
	GreaterEqual:   ">=",
	Equal:          "==",
	NotEqual:       "!=",
	StrictEqual:    "===",
	StrictNotEqual: "!==",

	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	StarStar:   "**",
	Slash:      "/",
	Percent:    "%",
	Shl:        "<<",
	Shr:        ">>",
	UShr:       ">>>",
	And:        "&",
	Or:         "|",
	Xor:        "^",
	In:         "in",
	InstanceOf: "instanceof",

	PlusAssign:     "+=",
	MinusAssign:    "-=",
	StarAssign:     "*=",
	StarStarAssign: "**=",
	SlashAssign:    "/=",
	PercentAssign:  "%=",
	ShlAssign:      "<<=",
	ShrAssign:      ">>=",
	UShrAssign:     ">>>=",
	AndAssign:      "&=",
	OrAssign:       "|=",
	XorAssign:      "^=",

	Increment: "++",
	Decrement: "--",
	Not:       "!",
	Tilde:     "~",

	LogicalAnd: "&&",
	LogicalOr:  "||",
	Coalesce:   "??",
}

// String returns the source spelling of the operator.
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsRelational reports whether k is one of the eight comparison operators.
func (k Kind) IsRelational() bool {
	return k >= Less && k <= StrictNotEqual
}

// IsCompoundAssign reports whether k is an operator-assignment token.
func (k Kind) IsCompoundAssign() bool {
	return k >= PlusAssign && k <= XorAssign
}

// Base maps a compound assignment to its binary operator. Other tokens are
// returned unchanged.
func (k Kind) Base() Kind {
	if k.IsCompoundAssign() {
		return k - PlusAssign + Plus
	}
	return k
}

// Relational returns the eight relational operators in declaration order.
func Relational() []Kind {
	return []Kind{Less, Greater, LessEqual, GreaterEqual, Equal, NotEqual, StrictEqual, StrictNotEqual}
}
