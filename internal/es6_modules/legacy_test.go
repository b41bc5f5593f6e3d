package es6_modules

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/concatjs/concatjs/internal/js_parser"
	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/test"
)

func expectNamespaces(t *testing.T, contents string, options Options, expected Namespaces) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		tree, ok := js_parser.Parse(log, test.SourceForTest(contents), js_parser.Options{})
		if !ok {
			t.Fatal("Parse error")
		}
		if diff := cmp.Diff(expected, ScanNamespaces(tree, options)); diff != "" {
			t.Fatalf("Unexpected namespaces (-want +got):\n%s", diff)
		}
	})
}

func TestScanNamespaces(t *testing.T) {
	expectNamespaces(t, "goog.provide('a.b'); goog.require('c'); goog.require('d');", Options{},
		Namespaces{Provides: []string{"a.b"}, Requires: []string{"c", "d"}})
	expectNamespaces(t, "goog.module('a'); var c = goog.require('c');", Options{},
		Namespaces{Provides: []string{"a"}, Requires: []string{"c"}})
	expectNamespaces(t, "my.provide('a'); goog.provide('b');", Options{ProvideFunc: "my.provide"},
		Namespaces{Provides: []string{"a"}})

	// Only top-level calls with one string argument count
	expectNamespaces(t, "if (x) goog.provide('a'); goog.require(a); goog.require('a', 'b'); goog?.provide('c');", Options{},
		Namespaces{})
	expectNamespaces(t, "function f() { goog.require('a'); }", Options{}, Namespaces{})
}

func TestFindLegacyModule(t *testing.T) {
	parse := func(contents string) bool {
		log := logger.NewDeferLog(nil)
		tree, ok := js_parser.Parse(log, test.SourceForTest(contents), js_parser.Options{})
		if !ok {
			t.Fatal("Parse error")
		}
		return FindLegacyModule(tree, Options{})
	}

	test.AssertEqual(t, parse("goog.provide('a');"), true)
	test.AssertEqual(t, parse("goog.module('a');"), true)
	test.AssertEqual(t, parse("goog.require('a');"), false)
	test.AssertEqual(t, parse("export var a;"), false)
	test.AssertEqual(t, parse(""), false)
}
