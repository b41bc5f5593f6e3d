package binder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/js_parser"
	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/test"
)

func parse(t *testing.T, contents string) js_ast.AST {
	t.Helper()
	log := logger.NewDeferLog(nil)
	tree, ok := js_parser.Parse(log, test.SourceForTest(contents), js_parser.Options{})
	require.True(t, ok, "parse error: %v", log.Done())
	return tree
}

func expectGlobal(t *testing.T, scope *Scope, name string, isGlobal bool) {
	t.Helper()
	v, ok := scope.Lookup(name)
	require.True(t, ok, "%q is not declared", name)
	assert.Equal(t, isGlobal, v.IsGlobal(), "%q", name)
}

func expectUndeclared(t *testing.T, scope *Scope, name string) {
	t.Helper()
	_, ok := scope.Lookup(name)
	assert.False(t, ok, "%q should not be declared", name)
}

func TestModuleScope(t *testing.T) {
	tree := parse(t, `
		var a, {b, c: [d]} = x
		let e = 1
		const f = 2
		function g() { var inner }
		class H {}
		if (x) { var i; let j }
		for (var k = 0; ;) {}
		for (let l of x) {}
		try {} catch (m) { var n }
		switch (x) { case 1: var o }
		label: { var p }
		export default function q() {}
		import r from 'r'
	`)
	scope := NewModuleScope(tree.Stmts)

	for _, name := range []string{"a", "b", "d", "e", "f", "g", "H", "i", "k", "n", "o", "p", "q"} {
		expectGlobal(t, scope, name, true)
	}

	// Nested lexical names, function internals, and imports are not here
	for _, name := range []string{"c", "inner", "j", "l", "m", "r", "x"} {
		expectUndeclared(t, scope, name)
	}

	v, _ := scope.Lookup("e")
	assert.Equal(t, VarLexical, v.Kind)
	v, _ = scope.Lookup("a")
	assert.Equal(t, VarHoisted, v.Kind)
}

func TestFunctionScope(t *testing.T) {
	tree := parse(t, "function f(a, [b], {c} = {}, ...d) { var e; let g; if (x) { var h; function i() {} } }")
	fn := tree.Stmts[0].Data.(*js_ast.SFunction).Fn
	module := NewModuleScope(tree.Stmts)
	scope := NewFunctionScope(module, fn.Args, fn.Body.Stmts)

	for _, name := range []string{"a", "b", "c", "d", "e", "g", "h"} {
		expectGlobal(t, scope, name, false)
	}
	expectGlobal(t, scope, "f", true)

	// Functions declared in blocks are block-scoped in strict mode code
	expectUndeclared(t, scope, "i")

	v, _ := scope.Lookup("b")
	assert.Equal(t, VarArg, v.Kind)
}

func TestShadowing(t *testing.T) {
	tree := parse(t, "var x; function f(x) {}")
	fn := tree.Stmts[1].Data.(*js_ast.SFunction).Fn
	module := NewModuleScope(tree.Stmts)
	scope := NewFunctionScope(module, fn.Args, fn.Body.Stmts)

	expectGlobal(t, module, "x", true)
	expectGlobal(t, scope, "x", false)
}

func TestBlockAndCatchScopes(t *testing.T) {
	tree := parse(t, "try { let a; var b } catch ({c}) {}")
	try := tree.Stmts[0].Data.(*js_ast.STry)
	module := NewModuleScope(tree.Stmts)

	block := NewBlockScope(module, try.Body)
	expectGlobal(t, block, "a", false)
	expectGlobal(t, block, "b", true)

	catch := NewCatchScope(module, try.Catch.Binding)
	expectGlobal(t, catch, "c", false)
	assert.Equal(t, ScopeCatch, catch.Kind)

	empty := NewCatchScope(module, nil)
	assert.Empty(t, empty.Members)
}

func TestForScope(t *testing.T) {
	tree := parse(t, "for (let i = 0; ;) {} for (var j in x) {}")
	module := NewModuleScope(tree.Stmts)

	loop := tree.Stmts[0].Data.(*js_ast.SFor)
	scope := NewForScope(module, loop.Init)
	expectGlobal(t, scope, "i", false)

	forIn := tree.Stmts[1].Data.(*js_ast.SForIn)
	scope = NewForScope(module, &forIn.Init)
	assert.Empty(t, scope.Members)
	expectGlobal(t, scope, "j", true)

	assert.Empty(t, NewForScope(module, nil).Members)
}

func TestNameScope(t *testing.T) {
	tree := parse(t, "x = function f() {}")
	fn := tree.Stmts[0].Data.(*js_ast.SExpr).Value.Data.(*js_ast.EBinary).Right.Data.(*js_ast.EFunction).Fn
	module := NewModuleScope(tree.Stmts)
	expectUndeclared(t, module, "f")

	scope := NewNameScope(module, fn.Name)
	expectGlobal(t, scope, "f", false)
	assert.Empty(t, NewNameScope(module, nil).Members)
}

func TestVisitBindingIdentifiers(t *testing.T) {
	tree := parse(t, "var [a, , {b, c: d = 1, [e]: f}, ...g] = x")
	decl := tree.Stmts[0].Data.(*js_ast.SLocal).Decls[0]

	names := []string{}
	VisitBindingIdentifiers(&decl.Binding, func(loc logger.Loc, b *js_ast.BIdentifier) {
		names = append(names, b.Name)
	})
	assert.Equal(t, []string{"a", "b", "d", "f", "g"}, names)
}
