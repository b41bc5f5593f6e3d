package binder

// Scopes are not stored in the tree. Passes that edit the tree rebuild the
// scopes they need from the statements as they are right now, one scope at a
// time, while they walk down into nested functions and blocks. This means a
// statement that was deleted earlier can never be found by a lookup.

import (
	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/logger"
)

type ScopeKind uint8

const (
	ScopeModule ScopeKind = iota
	ScopeFunction
	ScopeBlock
	ScopeCatch
	ScopeFor

	// The name of a function or class expression is only visible inside it
	ScopeName
)

type VarKind uint8

const (
	// "var" declarations and functions declared at the top of a function body
	VarHoisted VarKind = iota

	// "let", "const", "class", and functions declared inside a block
	VarLexical

	VarArg
	VarCatch
	VarName
)

type Var struct {
	Name  string
	Loc   logger.Loc
	Kind  VarKind
	Scope *Scope
}

// Top-level "let", "const", and "class" declarations live in the module scope
// too, so they count as global
func (v *Var) IsGlobal() bool {
	return v.Scope.Kind == ScopeModule
}

type Scope struct {
	Kind    ScopeKind
	Parent  *Scope
	Members map[string]*Var
}

func newScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{Kind: kind, Parent: parent, Members: make(map[string]*Var)}
}

func (s *Scope) Lookup(name string) (*Var, bool) {
	for scope := s; scope != nil; scope = scope.Parent {
		if v, ok := scope.Members[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// The first declaration wins. Redeclarations are syntax errors for lexical
// names and harmless for "var" names, so either way there is one variable.
func (s *Scope) declare(name string, loc logger.Loc, kind VarKind) {
	if _, ok := s.Members[name]; !ok {
		s.Members[name] = &Var{Name: name, Loc: loc, Kind: kind, Scope: s}
	}
}

func (s *Scope) declareBinding(binding js_ast.Binding, kind VarKind) {
	VisitBindingIdentifiers(&binding, func(loc logger.Loc, b *js_ast.BIdentifier) {
		s.declare(b.Name, loc, kind)
	})
}

func NewModuleScope(stmts []js_ast.Stmt) *Scope {
	s := newScope(ScopeModule, nil)
	s.declareLexical(stmts, true /* isFunctionLevel */)
	s.declareHoisted(stmts)
	return s
}

// Arguments and the function body share a scope
func NewFunctionScope(parent *Scope, args []js_ast.Arg, body []js_ast.Stmt) *Scope {
	s := newScope(ScopeFunction, parent)
	for _, arg := range args {
		s.declareBinding(arg.Binding, VarArg)
	}
	s.declareLexical(body, true /* isFunctionLevel */)
	s.declareHoisted(body)
	return s
}

func NewBlockScope(parent *Scope, stmts []js_ast.Stmt) *Scope {
	s := newScope(ScopeBlock, parent)
	s.declareLexical(stmts, false /* isFunctionLevel */)
	return s
}

func NewCatchScope(parent *Scope, binding *js_ast.Binding) *Scope {
	s := newScope(ScopeCatch, parent)
	if binding != nil {
		s.declareBinding(*binding, VarCatch)
	}
	return s
}

// Only "let" and "const" loop variables belong to the loop. A "var" loop
// variable was already hoisted into the enclosing function.
func NewForScope(parent *Scope, init *js_ast.Stmt) *Scope {
	s := newScope(ScopeFor, parent)
	if init != nil {
		if local, ok := init.Data.(*js_ast.SLocal); ok && local.Kind != js_ast.LocalVar {
			for _, decl := range local.Decls {
				s.declareBinding(decl.Binding, VarLexical)
			}
		}
	}
	return s
}

func NewNameScope(parent *Scope, name *js_ast.Ident) *Scope {
	s := newScope(ScopeName, parent)
	if name != nil {
		s.declare(name.Name, name.Loc, VarName)
	}
	return s
}

func (s *Scope) declareLexical(stmts []js_ast.Stmt, isFunctionLevel bool) {
	fnKind := VarLexical
	if isFunctionLevel {
		fnKind = VarHoisted
	}

	for _, stmt := range stmts {
		switch st := stmt.Data.(type) {
		case *js_ast.SLocal:
			if st.Kind != js_ast.LocalVar {
				for _, decl := range st.Decls {
					s.declareBinding(decl.Binding, VarLexical)
				}
			}

		case *js_ast.SFunction:
			if st.Fn.Name != nil {
				s.declare(st.Fn.Name.Name, st.Fn.Name.Loc, fnKind)
			}

		case *js_ast.SClass:
			if st.Class.Name != nil {
				s.declare(st.Class.Name.Name, st.Class.Name.Loc, VarLexical)
			}

		case *js_ast.SExportDefault:
			if st.Value.Stmt != nil {
				switch inner := st.Value.Stmt.Data.(type) {
				case *js_ast.SFunction:
					if inner.Fn.Name != nil {
						s.declare(inner.Fn.Name.Name, inner.Fn.Name.Loc, fnKind)
					}

				case *js_ast.SClass:
					if inner.Class.Name != nil {
						s.declare(inner.Class.Name.Name, inner.Class.Name.Loc, VarLexical)
					}
				}
			}
		}
	}
}

// "var" declarations are visible in the whole function no matter how deeply
// they are nested inside blocks, so search every statement that isn't a
// function boundary
func (s *Scope) declareHoisted(stmts []js_ast.Stmt) {
	for _, stmt := range stmts {
		s.declareHoistedStmt(stmt)
	}
}

func (s *Scope) declareHoistedStmt(stmt js_ast.Stmt) {
	switch st := stmt.Data.(type) {
	case *js_ast.SLocal:
		if st.Kind == js_ast.LocalVar {
			for _, decl := range st.Decls {
				s.declareBinding(decl.Binding, VarHoisted)
			}
		}

	case *js_ast.SBlock:
		s.declareHoisted(st.Stmts)

	case *js_ast.SIf:
		s.declareHoistedStmt(st.Yes)
		if st.No != nil {
			s.declareHoistedStmt(*st.No)
		}

	case *js_ast.SFor:
		if st.Init != nil {
			s.declareHoistedStmt(*st.Init)
		}
		s.declareHoistedStmt(st.Body)

	case *js_ast.SForIn:
		s.declareHoistedStmt(st.Init)
		s.declareHoistedStmt(st.Body)

	case *js_ast.SForOf:
		s.declareHoistedStmt(st.Init)
		s.declareHoistedStmt(st.Body)

	case *js_ast.SWhile:
		s.declareHoistedStmt(st.Body)

	case *js_ast.SDoWhile:
		s.declareHoistedStmt(st.Body)

	case *js_ast.SLabel:
		s.declareHoistedStmt(st.Stmt)

	case *js_ast.STry:
		s.declareHoisted(st.Body)
		if st.Catch != nil {
			s.declareHoisted(st.Catch.Body)
		}
		if st.Finally != nil {
			s.declareHoisted(st.Finally.Stmts)
		}

	case *js_ast.SSwitch:
		for _, c := range st.Cases {
			s.declareHoisted(c.Body)
		}
	}
}

// Calls "visit" on every identifier a binding pattern declares, in source
// order. Default values and computed keys are expressions and are skipped.
func VisitBindingIdentifiers(binding *js_ast.Binding, visit func(loc logger.Loc, b *js_ast.BIdentifier)) {
	switch b := binding.Data.(type) {
	case *js_ast.BIdentifier:
		visit(binding.Loc, b)

	case *js_ast.BArray:
		for i := range b.Items {
			VisitBindingIdentifiers(&b.Items[i].Binding, visit)
		}

	case *js_ast.BObject:
		for i := range b.Properties {
			VisitBindingIdentifiers(&b.Properties[i].Value, visit)
		}
	}
}
