package compiler

import (
	"github.com/chazu/ecmagen/scope"
	"github.com/chazu/ecmagen/token"
)

// ---------------------------------------------------------------------------
// AST: the lowered subset of the source language
// ---------------------------------------------------------------------------

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Span represents a range in source code.
type Span struct {
	Start Position
	End   Position
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Span() Span
	node() // marker method
}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr() // marker method
}

// NumberLiteral represents a numeric literal.
type NumberLiteral struct {
	SpanVal Span
	Value   float64
}

func (n *NumberLiteral) Span() Span { return n.SpanVal }
func (n *NumberLiteral) node()      {}
func (n *NumberLiteral) expr()      {}

// StringLiteral represents a string literal.
type StringLiteral struct {
	SpanVal Span
	Value   string
}

func (n *StringLiteral) Span() Span { return n.SpanVal }
func (n *StringLiteral) node()      {}
func (n *StringLiteral) expr()      {}

// BoolLiteral represents true or false.
type BoolLiteral struct {
	SpanVal Span
	Value   bool
}

func (n *BoolLiteral) Span() Span { return n.SpanVal }
func (n *BoolLiteral) node()      {}
func (n *BoolLiteral) expr()      {}

// NullLiteral represents null.
type NullLiteral struct {
	SpanVal Span
}

func (n *NullLiteral) Span() Span { return n.SpanVal }
func (n *NullLiteral) node()      {}
func (n *NullLiteral) expr()      {}

// UndefinedLiteral represents undefined.
type UndefinedLiteral struct {
	SpanVal Span
}

func (n *UndefinedLiteral) Span() Span { return n.SpanVal }
func (n *UndefinedLiteral) node()      {}
func (n *UndefinedLiteral) expr()      {}

// Identifier represents a variable reference.
type Identifier struct {
	SpanVal Span
	Name    string
}

func (n *Identifier) Span() Span { return n.SpanVal }
func (n *Identifier) node()      {}
func (n *Identifier) expr()      {}

// Binary represents a binary operation (left op right).
type Binary struct {
	SpanVal Span
	Op      token.Kind
	Left    Expr
	Right   Expr
}

func (n *Binary) Span() Span { return n.SpanVal }
func (n *Binary) node()      {}
func (n *Binary) expr()      {}

// Logical represents a short-circuit operation (&&, ||, ??).
type Logical struct {
	SpanVal Span
	Op      token.Kind
	Left    Expr
	Right   Expr
}

func (n *Logical) Span() Span { return n.SpanVal }
func (n *Logical) node()      {}
func (n *Logical) expr()      {}

// Unary represents a prefix operation, or a postfix increment or decrement
// when Postfix is set. Increment and decrement require an identifier
// operand.
type Unary struct {
	SpanVal Span
	Op      token.Kind
	Operand Expr
	Postfix bool
}

func (n *Unary) Span() Span { return n.SpanVal }
func (n *Unary) node()      {}
func (n *Unary) expr()      {}

// Assign represents target = value, or target op= value when Op is a
// compound assignment token.
type Assign struct {
	SpanVal Span
	Op      token.Kind // token.Illegal for plain assignment
	Target  Expr       // *Identifier or *Member
	Value   Expr
}

func (n *Assign) Span() Span { return n.SpanVal }
func (n *Assign) node()      {}
func (n *Assign) expr()      {}

// Member represents object.name or object[property].
type Member struct {
	SpanVal  Span
	Object   Expr
	Name     string // when not computed
	Property Expr   // when computed
	Computed bool
}

func (n *Member) Span() Span { return n.SpanVal }
func (n *Member) node()      {}
func (n *Member) expr()      {}

// Call represents callee(args...). A member callee passes its object as
// the receiver.
type Call struct {
	SpanVal Span
	Callee  Expr
	Args    []Expr
}

func (n *Call) Span() Span { return n.SpanVal }
func (n *Call) node()      {}
func (n *Call) expr()      {}

// New represents new callee(args...).
type New struct {
	SpanVal Span
	Callee  Expr
	Args    []Expr
}

func (n *New) Span() Span { return n.SpanVal }
func (n *New) node()      {}
func (n *New) expr()      {}

// FunctionExpr represents a function or arrow expression.
type FunctionExpr struct {
	SpanVal Span
	Func    *Function
}

func (n *FunctionExpr) Span() Span { return n.SpanVal }
func (n *FunctionExpr) node()      {}
func (n *FunctionExpr) expr()      {}

// ArrayLiteral represents [a, b, c].
type ArrayLiteral struct {
	SpanVal  Span
	Elements []Expr
}

func (n *ArrayLiteral) Span() Span { return n.SpanVal }
func (n *ArrayLiteral) node()      {}
func (n *ArrayLiteral) expr()      {}

// ObjectLiteral represents {k: v, ...}.
type ObjectLiteral struct {
	SpanVal    Span
	Properties []Property
}

func (n *ObjectLiteral) Span() Span { return n.SpanVal }
func (n *ObjectLiteral) node()      {}
func (n *ObjectLiteral) expr()      {}

// Property is one key: value pair of an object literal.
type Property struct {
	Key   string
	Value Expr
}

// Yield represents yield value inside a generator.
type Yield struct {
	SpanVal Span
	Value   Expr // may be nil
}

func (n *Yield) Span() Span { return n.SpanVal }
func (n *Yield) node()      {}
func (n *Yield) expr()      {}

// Await represents await value inside an async function.
type Await struct {
	SpanVal Span
	Value   Expr
}

func (n *Await) Span() Span { return n.SpanVal }
func (n *Await) node()      {}
func (n *Await) expr()      {}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmt() // marker method
}

// VarDecl represents var/let/const name = init.
type VarDecl struct {
	SpanVal Span
	Kind    scope.DeclKind // DeclVar, DeclLet or DeclConst
	Name    string
	Init    Expr // may be nil
}

func (n *VarDecl) Span() Span { return n.SpanVal }
func (n *VarDecl) node()      {}
func (n *VarDecl) stmt()      {}

// FuncDecl represents a function declaration.
type FuncDecl struct {
	SpanVal Span
	Func    *Function
}

func (n *FuncDecl) Span() Span { return n.SpanVal }
func (n *FuncDecl) node()      {}
func (n *FuncDecl) stmt()      {}

// ExprStmt represents an expression evaluated for effect.
type ExprStmt struct {
	SpanVal Span
	Expr    Expr
}

func (n *ExprStmt) Span() Span { return n.SpanVal }
func (n *ExprStmt) node()      {}
func (n *ExprStmt) stmt()      {}

// Return represents return value.
type Return struct {
	SpanVal Span
	Value   Expr // may be nil
}

func (n *Return) Span() Span { return n.SpanVal }
func (n *Return) node()      {}
func (n *Return) stmt()      {}

// If represents if (cond) then else. Lexical declarations in either branch
// must be wrapped in a BlockStmt.
type If struct {
	SpanVal Span
	Cond    Expr
	Then    []Stmt
	Else    []Stmt
}

func (n *If) Span() Span { return n.SpanVal }
func (n *If) node()      {}
func (n *If) stmt()      {}

// While represents while (cond) body. The body gets a per-iteration scope.
type While struct {
	SpanVal Span
	Cond    Expr
	Body    []Stmt
}

func (n *While) Span() Span { return n.SpanVal }
func (n *While) node()      {}
func (n *While) stmt()      {}

// BlockStmt represents { stmts }.
type BlockStmt struct {
	SpanVal Span
	Body    []Stmt
}

func (n *BlockStmt) Span() Span { return n.SpanVal }
func (n *BlockStmt) node()      {}
func (n *BlockStmt) stmt()      {}

// Throw represents throw value.
type Throw struct {
	SpanVal Span
	Value   Expr
}

func (n *Throw) Span() Span { return n.SpanVal }
func (n *Throw) node()      {}
func (n *Throw) stmt()      {}

// Try represents try { body } catch (param) { handler }. The catch
// parameter is scoped to the handler block.
type Try struct {
	SpanVal Span
	Body    *BlockStmt
	Param   string // empty for catch without binding
	Handler *BlockStmt
}

func (n *Try) Span() Span { return n.SpanVal }
func (n *Try) node()      {}
func (n *Try) stmt()      {}

// ---------------------------------------------------------------------------
// Functions and scripts
// ---------------------------------------------------------------------------

// Function is a function body with its signature and modifiers.
type Function struct {
	SpanVal   Span
	Name      string // empty for anonymous functions
	Params    []string
	Body      []Stmt
	Async     bool
	Generator bool
	Arrow     bool
	Source    string // source text, recorded as function metadata
}

func (n *Function) Span() Span { return n.SpanVal }
func (n *Function) node()      {}

// Script is a top-level program.
type Script struct {
	SpanVal Span
	File    string
	Body    []Stmt
}

func (n *Script) Span() Span { return n.SpanVal }
func (n *Script) node()      {}
