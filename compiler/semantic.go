package compiler

import (
	"fmt"

	"github.com/chazu/ecmagen/scope"
)

// ---------------------------------------------------------------------------
// Semantic Analyzer: scope construction and capture analysis
// ---------------------------------------------------------------------------

// SemanticAnalyzer builds the scope tree for a script before code
// generation. It hoists declarations, rejects conflicting lexical
// declarations and marks every variable referenced from a nested function
// as captured, so environment sizes are final before lowering starts.
type SemanticAnalyzer struct {
	errors []string

	// scopes maps scope-introducing nodes to their scope: *Script,
	// *Function, *BlockStmt and *While.
	scopes map[Node]*scope.Scope
	// funcs maps function scopes back to their declaration.
	funcs map[*scope.Scope]*Function

	cur *scope.Scope
}

// NewSemanticAnalyzer creates a new semantic analyzer.
func NewSemanticAnalyzer() *SemanticAnalyzer {
	return &SemanticAnalyzer{
		scopes: make(map[Node]*scope.Scope),
		funcs:  make(map[*scope.Scope]*Function),
	}
}

// Errors returns accumulated semantic errors.
func (s *SemanticAnalyzer) Errors() []string {
	return s.errors
}

// ScopeOf returns the scope built for a scope-introducing node.
func (s *SemanticAnalyzer) ScopeOf(n Node) *scope.Scope {
	return s.scopes[n]
}

func (s *SemanticAnalyzer) errorAt(node Node, format string, args ...interface{}) {
	pos := node.Span().Start
	msg := fmt.Sprintf(format, args...)
	s.errors = append(s.errors, fmt.Sprintf("line %d, column %d: %s", pos.Line, pos.Column, msg))
}

func (s *SemanticAnalyzer) declare(node Node, sc *scope.Scope, name string, decl scope.DeclKind) {
	if prev := sc.FindLocal(name); prev != nil && (decl.IsLexical() || prev.Decl().IsLexical()) {
		s.errorAt(node, "identifier %q has already been declared", name)
		return
	}
	if _, err := sc.Declare(name, decl); err != nil {
		s.errorAt(node, "%v", err)
	}
}

// AnalyzeScript builds the global scope and everything below it.
func (s *SemanticAnalyzer) AnalyzeScript(script *Script) *scope.Scope {
	g := scope.NewGlobal()
	s.scopes[script] = g
	s.cur = g
	s.hoistVars(script.Body, g)
	s.declareLexical(script.Body, g)
	s.analyzeStatements(script.Body)
	return g
}

// hoistVars declares every var in stmts, including those nested in blocks,
// in the variable scope target. Nested functions are not entered.
func (s *SemanticAnalyzer) hoistVars(stmts []Stmt, target *scope.Scope) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *VarDecl:
			if n.Kind == scope.DeclVar {
				s.declare(n, target, n.Name, scope.DeclVar)
			}
		case *BlockStmt:
			s.hoistVars(n.Body, target)
		case *If:
			s.hoistVars(n.Then, target)
			s.hoistVars(n.Else, target)
		case *While:
			s.hoistVars(n.Body, target)
		case *Try:
			s.hoistVars(n.Body.Body, target)
			s.hoistVars(n.Handler.Body, target)
		}
	}
}

// declareLexical declares the let, const and function declarations that
// appear directly in stmts.
func (s *SemanticAnalyzer) declareLexical(stmts []Stmt, sc *scope.Scope) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *VarDecl:
			if n.Kind.IsLexical() {
				s.declare(n, sc, n.Name, n.Kind)
			}
		case *FuncDecl:
			if n.Func.Name == "" {
				s.errorAt(n, "function declaration without a name")
				continue
			}
			s.declare(n, sc, n.Func.Name, scope.DeclFunction)
		}
	}
}

func (s *SemanticAnalyzer) enter(node Node, sc *scope.Scope) func() {
	s.scopes[node] = sc
	prev := s.cur
	s.cur = sc
	return func() { s.cur = prev }
}

func (s *SemanticAnalyzer) analyzeFunction(fn *Function) {
	fs := scope.NewFunction(s.cur, fn.Name, len(fn.Params))
	s.funcs[fs] = fn
	leave := s.enter(fn, fs)
	defer leave()

	for _, p := range fn.Params {
		s.declare(fn, fs, p, scope.DeclParam)
	}
	s.hoistVars(fn.Body, fs)
	s.declareLexical(fn.Body, fs)
	s.analyzeStatements(fn.Body)
}

func (s *SemanticAnalyzer) analyzeBlock(node Node, sc *scope.Scope, body []Stmt) {
	leave := s.enter(node, sc)
	defer leave()
	s.declareLexical(body, sc)
	s.analyzeStatements(body)
}

func (s *SemanticAnalyzer) analyzeStatements(stmts []Stmt) {
	for _, stmt := range stmts {
		s.analyzeStmt(stmt)
	}
}

func (s *SemanticAnalyzer) checkSingleStatementContext(stmts []Stmt) {
	for _, stmt := range stmts {
		switch n := stmt.(type) {
		case *VarDecl:
			if n.Kind.IsLexical() {
				s.errorAt(n, "lexical declaration of %q cannot appear in a single-statement context", n.Name)
			}
		case *FuncDecl:
			s.errorAt(n, "function declaration cannot appear in a single-statement context")
		}
	}
}

func (s *SemanticAnalyzer) analyzeStmt(stmt Stmt) {
	switch n := stmt.(type) {
	case *VarDecl:
		if n.Init != nil {
			s.analyzeExpr(n.Init)
		}
	case *FuncDecl:
		s.analyzeFunction(n.Func)
	case *ExprStmt:
		s.analyzeExpr(n.Expr)
	case *Return:
		if s.cur.NearestFunction() == nil {
			s.errorAt(n, "return outside of a function")
		}
		if n.Value != nil {
			s.analyzeExpr(n.Value)
		}
	case *If:
		s.analyzeExpr(n.Cond)
		s.checkSingleStatementContext(n.Then)
		s.checkSingleStatementContext(n.Else)
		s.analyzeStatements(n.Then)
		s.analyzeStatements(n.Else)
	case *While:
		s.analyzeExpr(n.Cond)
		s.analyzeBlock(n, scope.NewLoop(s.cur), n.Body)
	case *BlockStmt:
		s.analyzeBlock(n, scope.NewBlock(s.cur), n.Body)
	case *Throw:
		s.analyzeExpr(n.Value)
	case *Try:
		s.analyzeBlock(n.Body, scope.NewBlock(s.cur), n.Body.Body)
		hs := scope.NewBlock(s.cur)
		if n.Param != "" {
			s.declare(n, hs, n.Param, scope.DeclLet)
		}
		s.analyzeBlock(n.Handler, hs, n.Handler.Body)
	default:
		s.errorAt(stmt, "unsupported statement %T", stmt)
	}
}

func (s *SemanticAnalyzer) analyzeExpr(expr Expr) {
	switch n := expr.(type) {
	case *NumberLiteral, *StringLiteral, *BoolLiteral, *NullLiteral, *UndefinedLiteral:
	case *Identifier:
		s.reference(n.Name)
	case *Binary:
		s.analyzeExpr(n.Left)
		s.analyzeExpr(n.Right)
	case *Logical:
		s.analyzeExpr(n.Left)
		s.analyzeExpr(n.Right)
	case *Unary:
		s.analyzeExpr(n.Operand)
	case *Assign:
		switch n.Target.(type) {
		case *Identifier, *Member:
		default:
			s.errorAt(n, "invalid assignment target")
		}
		s.analyzeExpr(n.Target)
		s.analyzeExpr(n.Value)
	case *Member:
		s.analyzeExpr(n.Object)
		if n.Computed {
			s.analyzeExpr(n.Property)
		}
	case *Call:
		s.analyzeExpr(n.Callee)
		for _, a := range n.Args {
			s.analyzeExpr(a)
		}
	case *New:
		s.analyzeExpr(n.Callee)
		for _, a := range n.Args {
			s.analyzeExpr(a)
		}
	case *FunctionExpr:
		s.analyzeFunction(n.Func)
	case *ArrayLiteral:
		for _, e := range n.Elements {
			s.analyzeExpr(e)
		}
	case *ObjectLiteral:
		for _, p := range n.Properties {
			s.analyzeExpr(p.Value)
		}
	case *Yield:
		if fn := s.enclosingFunction(); fn == nil || !fn.Generator {
			s.errorAt(n, "yield outside of a generator")
		}
		if n.Value != nil {
			s.analyzeExpr(n.Value)
		}
	case *Await:
		if fn := s.enclosingFunction(); fn == nil || !fn.Async {
			s.errorAt(n, "await outside of an async function")
		}
		s.analyzeExpr(n.Value)
	default:
		s.errorAt(expr, "unsupported expression %T", expr)
	}
}

func (s *SemanticAnalyzer) enclosingFunction() *Function {
	if fs := s.cur.NearestFunction(); fs != nil {
		return s.funcs[fs]
	}
	return nil
}

// argumentsOwner returns the nearest non-arrow function scope.
func (s *SemanticAnalyzer) argumentsOwner() *scope.Scope {
	for fs := s.cur.NearestFunction(); fs != nil; fs = fs.Parent().NearestFunction() {
		if !s.funcs[fs].Arrow {
			return fs
		}
	}
	return nil
}

// reference records a use of name from the current scope. Variables used
// from a function other than the one declaring them are captured.
func (s *SemanticAnalyzer) reference(name string) {
	if name == "arguments" {
		if _, ok := s.cur.Resolve(name); !ok {
			if owner := s.argumentsOwner(); owner != nil {
				owner.SetUseArgs(true)
				if _, err := owner.Declare(name, scope.DeclVar); err != nil {
					s.errors = append(s.errors, err.Error())
				}
			}
		}
	}
	res, ok := s.cur.Resolve(name)
	if !ok {
		return
	}
	v := res.Variable
	if v.Kind() != scope.Local || v.Scope().Kind() == scope.KindGlobal {
		return
	}
	if s.cur.NearestFunction() != v.Scope().NearestFunction() {
		res.Scope.CaptureSlot(v)
	}
}
