package es6_modules

import (
	"github.com/concatjs/concatjs/internal/binder"
	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/logger"
)

// Maps exported names to local names. The namespace object lists its
// properties in the order the names were first exported.
type exportMap struct {
	names  []string
	locals map[string]string
}

func (m *exportMap) set(exported string, local string) {
	if m.locals == nil {
		m.locals = make(map[string]string)
	}
	if _, ok := m.locals[exported]; !ok {
		m.names = append(m.names, exported)
	}
	m.locals[exported] = local
}

func (m *exportMap) isEmpty() bool {
	return len(m.names) == 0
}

func (m *exportMap) clear() {
	m.names = nil
	m.locals = nil
}

// "export {a, b as c}"
func (ctx *fileContext) collectExportClause(s *js_ast.SExportClause) {
	for _, item := range s.Items {
		ctx.exports.set(item.Alias, item.Name.Name)
	}
}

// "export var a = 1", "export function b() {}", and so on. Every name the
// declaration introduces is exported, including the ones inside destructuring
// patterns.
func (ctx *fileContext) collectExportedDecl(scope *binder.Scope, stmt js_ast.Stmt) {
	export := func(name string) {
		if v, ok := scope.Lookup(name); !ok || v.IsGlobal() {
			ctx.exports.set(name, name)
		}
	}

	switch s := stmt.Data.(type) {
	case *js_ast.SLocal:
		for i := range s.Decls {
			binder.VisitBindingIdentifiers(&s.Decls[i].Binding, func(loc logger.Loc, b *js_ast.BIdentifier) {
				export(b.Name)
			})
		}

	case *js_ast.SFunction:
		if s.Fn.Name != nil {
			export(s.Fn.Name.Name)
		}

	case *js_ast.SClass:
		if s.Class.Name != nil {
			export(s.Class.Name.Name)
		}
	}
}
