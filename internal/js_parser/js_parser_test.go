package js_parser

import (
	"testing"

	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/js_printer"
	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/test"
)

func expectParseErrorCommon(t *testing.T, contents string, expected string, options Options) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		Parse(log, test.SourceForTest(contents), options)
		msgs := log.Done()
		text := ""
		for _, msg := range msgs {
			text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqualWithDiff(t, text, expected)
	})
}

func expectParseError(t *testing.T, contents string, expected string) {
	t.Helper()
	expectParseErrorCommon(t, contents, expected, Options{})
}

func expectPrinted(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		tree, ok := Parse(log, test.SourceForTest(contents), Options{})
		msgs := log.Done()
		text := ""
		for _, msg := range msgs {
			if msg.Kind != logger.Warning {
				text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
			}
		}
		test.AssertEqualWithDiff(t, text, "")
		if !ok {
			t.Fatal("Parse error")
		}
		js := js_printer.Print(tree, js_printer.Options{}).JS
		test.AssertEqualWithDiff(t, string(js), expected)
	})
}

func parseForTest(t *testing.T, contents string) js_ast.AST {
	t.Helper()
	log := logger.NewDeferLog(nil)
	tree, ok := Parse(log, test.SourceForTest(contents), Options{})
	if !ok {
		t.Fatalf("Parse error: %v", log.Done())
	}
	return tree
}

func expectType(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		result, ok := parseType(contents, 0)
		if !ok {
			t.Fatal("Type parse error")
		}
		test.AssertEqual(t, js_printer.TypeToString(result), expected)
	})
}

func expectTypeError(t *testing.T, contents string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		_, ok := parseType(contents, 0)
		test.AssertEqual(t, ok, false)
	})
}

func TestParseErrors(t *testing.T) {
	expectParseError(t, "with (a) {}", "<stdin>: error: With statements cannot be used in strict mode\n")
	expectParseError(t, "const a", "<stdin>: error: This constant must be initialized\n")
	expectParseError(t, "throw\nx", "<stdin>: error: Unexpected newline after \"throw\"\n")
	expectParseError(t, "for (var a, b of c) ;", "<stdin>: error: for-of loops must have a single declaration\n")
	expectParseError(t, "for (let a = 1 of b) ;", "<stdin>: error: for-of loop variables cannot have an initializer\n")
	expectParseError(t, "for (var a = 1 in b) ;", "")
	expectParseError(t, "switch (a) { default: default: }", "<stdin>: error: Multiple default clauses are not allowed\n")
	expectParseError(t, "a(", "<stdin>: error: Unexpected end of file\n")
	expectParseError(t, "import.foo", "<stdin>: error: Expected \"meta\" but found \"foo\"\n")
	expectParseError(t, "function f() { export var a }", "<stdin>: error: Unexpected \"export\"\n")
	expectParseError(t, "for await (x of y) ;", "<stdin>: error: Cannot use \"await\" outside an async function\n")
	expectParseError(t, "async function f() { for await (x of y) ; }", "")
	expectParseError(t, "(...a, b)", "<stdin>: error: Unexpected \"...\"\n")
}

func TestDirectives(t *testing.T) {
	expectPrinted(t, "'use strict'; a()", "\"use strict\";\na();\n")
	expectPrinted(t, "a(); 'use strict'", "a();\n\"use strict\";\n")
	expectPrinted(t, "('use strict')", "\"use strict\";\n")
	expectPrinted(t, "function f() { 'use strict'; return }", "function f() {\n  \"use strict\";\n  return;\n}\n")

	tree := parseForTest(t, "'a'; 'b'; c; 'd'")
	if _, ok := tree.Stmts[0].Data.(*js_ast.SDirective); !ok {
		t.Fatal("Expected a directive")
	}
	if _, ok := tree.Stmts[1].Data.(*js_ast.SDirective); !ok {
		t.Fatal("Expected a directive")
	}
	if _, ok := tree.Stmts[3].Data.(*js_ast.SExpr); !ok {
		t.Fatal("Expected an expression statement")
	}
}

func TestImportClause(t *testing.T) {
	tree := parseForTest(t, "import d, {a, b as c} from 'x'")
	s := tree.Stmts[0].Data.(*js_ast.SImport)
	test.AssertEqual(t, s.DefaultName.Name, "d")
	test.AssertEqual(t, s.Path, "x")
	items := *s.Items
	test.AssertEqual(t, len(items), 2)
	test.AssertEqual(t, items[0].Alias, "a")
	test.AssertEqual(t, items[0].Name.Name, "a")
	test.AssertEqual(t, items[1].Alias, "b")
	test.AssertEqual(t, items[1].Name.Name, "c")

	tree = parseForTest(t, "import * as ns from 'y'")
	s = tree.Stmts[0].Data.(*js_ast.SImport)
	test.AssertEqual(t, s.Namespace.Name, "ns")
	test.AssertEqual(t, s.Path, "y")

	expectPrinted(t, "import {default as x} from 'y'", "import {default as x} from \"y\";\n")
	expectPrinted(t, "import d, * as ns from 'y'", "import d, * as ns from \"y\";\n")
}

func TestExportClause(t *testing.T) {
	tree := parseForTest(t, "let a, b; export {a, b as c}")
	s := tree.Stmts[1].Data.(*js_ast.SExportClause)
	test.AssertEqual(t, len(s.Items), 2)
	test.AssertEqual(t, s.Items[0].Name.Name, "a")
	test.AssertEqual(t, s.Items[0].Alias, "a")
	test.AssertEqual(t, s.Items[1].Name.Name, "b")
	test.AssertEqual(t, s.Items[1].Alias, "c")

	tree = parseForTest(t, "export * as ns from 'x'")
	star := tree.Stmts[0].Data.(*js_ast.SExportStar)
	test.AssertEqual(t, star.Alias.Name, "ns")
	test.AssertEqual(t, star.Path, "x")

	expectPrinted(t, "export * from 'x'", "export * from \"x\";\n")
	expectPrinted(t, "export {a as b} from 'x'", "export {a as b} from \"x\";\n")
	expectPrinted(t, "export default async function() {}", "export default async function() {\n}\n")
	expectPrinted(t, "export default function() {}", "export default function() {\n}\n")
}

func TestFreeCall(t *testing.T) {
	tree := parseForTest(t, "a(); b.c(); (0, d)()")

	call := tree.Stmts[0].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
	test.AssertEqual(t, call.IsFreeCall, true)

	call = tree.Stmts[1].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
	test.AssertEqual(t, call.IsFreeCall, false)

	call = tree.Stmts[2].Data.(*js_ast.SExpr).Value.Data.(*js_ast.ECall)
	test.AssertEqual(t, call.IsFreeCall, false)
}

func TestLet(t *testing.T) {
	expectPrinted(t, "let = 1", "let = 1;\n")
	expectPrinted(t, "let\nx = 1", "let x = 1;\n")
	expectPrinted(t, "let [a] = b", "let [a] = b;\n")
	expectPrinted(t, "for (let in x) ;", "for (let in x)\n  ;\n")
}

func TestArrow(t *testing.T) {
	expectPrinted(t, "x = a => a", "x = (a) => a;\n")
	expectPrinted(t, "x = (a, b) => {}", "x = (a, b) => {\n};\n")
	expectPrinted(t, "x = ([a], {b}) => a", "x = ([a], {b}) => a;\n")
	expectPrinted(t, "x = (a = 1, ...b) => a", "x = (a = 1, ...b) => a;\n")
	expectPrinted(t, "x = async () => {}", "x = async () => {\n};\n")
	expectPrinted(t, "x = async(a)", "x = async(a);\n")
}

func TestDestructuringAssign(t *testing.T) {
	expectPrinted(t, "[a, b] = c", "[a, b] = c;\n")
	expectPrinted(t, "({a, b: c} = d)", "({\n  a,\n  b: c\n} = d);\n")
	expectPrinted(t, "({a = 1} = b)", "({\n  a = 1\n} = b);\n")
	expectParseError(t, "({a = 1})", "<stdin>: error: Unexpected \"=\"\n")
}

func TestRegExp(t *testing.T) {
	expectPrinted(t, "x = /a/g", "x = /a/g;\n")
	expectPrinted(t, "x = a / b / c", "x = a / b / c;\n")
}

func TestJSDocParsing(t *testing.T) {
	tree := parseForTest(t, "/**\n * Desc.\n * @param {number} a The\n * value.\n * @return {string}\n */\nfunction f(a) {}")
	doc := tree.Stmts[0].Data.(*js_ast.SFunction).JSDoc
	if doc == nil {
		t.Fatal("Expected a comment")
	}
	test.AssertEqual(t, doc.Description, "Desc.")
	test.AssertEqual(t, len(doc.Tags), 2)
	test.AssertEqual(t, doc.Tags[0].Name, "param")
	test.AssertEqual(t, js_printer.TypeToString(*doc.Tags[0].Type), "number")
	test.AssertEqual(t, doc.Tags[0].Text, "a The\nvalue.")
	test.AssertEqual(t, doc.Tags[1].Name, "return")
	test.AssertEqual(t, doc.Tag("return").Text, "")

	tree = parseForTest(t, "function f(/** string */ a, b) {}")
	args := tree.Stmts[0].Data.(*js_ast.SFunction).Fn.Args
	test.AssertEqual(t, js_printer.TypeToString(*args[0].JSDoc.InlineType), "string")
	if args[1].JSDoc != nil {
		t.Fatal("Expected no comment")
	}

	// Plain comments are not JSDoc
	tree = parseForTest(t, "/* @const */ var x = 1")
	if tree.Stmts[0].Data.(*js_ast.SLocal).JSDoc != nil {
		t.Fatal("Expected no comment")
	}

	// Type locations are offsets into the file
	tree = parseForTest(t, "/** @type {a|b} */ var x")
	union := tree.Stmts[0].Data.(*js_ast.SLocal).JSDoc.Tags[0].Type.Data.(*js_ast.TUnion)
	test.AssertEqual(t, union.Types[0].Loc.Start, int32(11))
	test.AssertEqual(t, union.Types[1].Loc.Start, int32(13))
}

func TestJSDocWarnings(t *testing.T) {
	expectParseError(t, "/** @type {a b} */ var x", "<stdin>: warning: Invalid type expression \"a b\"\n")
	expectParseError(t, "/** @param {Array<} a */ function f(a) {}", "<stdin>: warning: Invalid type expression \"Array<\"\n")
	expectParseError(t, "/** @type {number} */ var x", "")
	expectParseError(t, "/** Some text with {braces} */ var x", "")
	expectParseErrorCommon(t, "/** @type {a b} */ var x", "", Options{OmitJSDocWarnings: true})

	// Comments inside call arguments are never treated as parameter types
	expectParseError(t, "f(/** not a type */ a)", "")

	log := logger.NewDeferLog(nil)
	Parse(log, test.SourceForTest("/** @type {a b} */ var x"), Options{})
	msgs := log.Done()
	test.AssertEqual(t, len(msgs), 1)
	test.AssertEqual(t, msgs[0].ID, logger.MsgID_JSDoc_InvalidType)
}

func TestTypes(t *testing.T) {
	expectType(t, "number", "number")
	expectType(t, "goog.Foo", "goog.Foo")
	expectType(t, "?number", "?number")
	expectType(t, "!Foo", "!Foo")
	expectType(t, "number=", "number=")
	expectType(t, "...string", "...string")
	expectType(t, "?", "?")
	expectType(t, "*", "*")
	expectType(t, "?=", "?=")
	expectType(t, "(A|B)", "A|B")
	expectType(t, "A | B | null", "A|B|null")
	expectType(t, "?(A|B)", "?(A|B)")
	expectType(t, "Array.<string>", "Array<string>")
	expectType(t, "Object<string, ?>", "Object<string,?>")
	expectType(t, "{a: number, b}", "{a: number, b}")
	expectType(t, "{a: (A|B)}", "{a: A|B}")
	expectType(t, "function(this:Foo, number=, ...string): (A|B)", "function(this:Foo,number=,...string):(A|B)")
	expectType(t, "function(new:Foo)", "function(new:Foo)")
	expectType(t, "function()", "function()")
	expectType(t, "./foo.Bar", "./foo.Bar")
	expectType(t, "!../lib/a-b.Baz<./c>", "!../lib/a-b.Baz<./c>")

	expectTypeError(t, "")
	expectTypeError(t, "Array<")
	expectTypeError(t, "a b")
	expectTypeError(t, "Foo.")
	expectTypeError(t, "{a:}")
	expectTypeError(t, "(A|B")
	expectTypeError(t, ".foo")
	expectTypeError(t, "./")
}

func TestTypeNames(t *testing.T) {
	result, ok := parseType("!Array<foo.Bar>|baz", 0)
	if !ok {
		t.Fatal("Type parse error")
	}
	names := []string{}
	js_ast.VisitTypeNames(&result, func(loc logger.Loc, name *js_ast.TName) {
		names = append(names, name.Name)
	})
	test.AssertEqual(t, names, []string{"Array", "foo.Bar", "baz"})
}
