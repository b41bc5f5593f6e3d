package es6_modules

import (
	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/logger"
)

const googModule = "goog.module"

// The namespaces a file declares and consumes through top-level calls in the
// legacy convention, such as "goog.provide('a.b');" and "goog.require('c');"
type Namespaces struct {
	Provides []string
	Requires []string
}

// Files that already use the legacy convention are left alone by this pass
func FindLegacyModule(tree js_ast.AST, options Options) bool {
	_, ok := findLegacyProvide(tree, options)
	return ok
}

// Returns the location of the namespace string in the first top-level
// "goog.provide" or "goog.module" call
func findLegacyProvide(tree js_ast.AST, options Options) (logger.Loc, bool) {
	options = options.withDefaults()
	for _, stmt := range tree.Stmts {
		if s, ok := stmt.Data.(*js_ast.SExpr); ok {
			if fn, _, ok := namespaceCall(s.Value); ok && (fn == options.ProvideFunc || fn == googModule) {
				return s.Value.Data.(*js_ast.ECall).Args[0].Loc, true
			}
		}
	}
	return logger.Loc{}, false
}

func ScanNamespaces(tree js_ast.AST, options Options) Namespaces {
	options = options.withDefaults()
	var result Namespaces

	for _, stmt := range tree.Stmts {
		switch s := stmt.Data.(type) {
		case *js_ast.SExpr:
			if fn, namespace, ok := namespaceCall(s.Value); ok {
				switch fn {
				case options.ProvideFunc, googModule:
					result.Provides = append(result.Provides, namespace)
				case options.RequireFunc:
					result.Requires = append(result.Requires, namespace)
				}
			}

		case *js_ast.SLocal:
			// "var x = goog.require('x');" inside a "goog.module" file
			for _, decl := range s.Decls {
				if decl.Value != nil {
					if fn, namespace, ok := namespaceCall(*decl.Value); ok && fn == options.RequireFunc {
						result.Requires = append(result.Requires, namespace)
					}
				}
			}
		}
	}

	return result
}

// Matches "a.b('c')" and returns "a.b" and "c"
func namespaceCall(expr js_ast.Expr) (string, string, bool) {
	call, ok := expr.Data.(*js_ast.ECall)
	if !ok || len(call.Args) != 1 {
		return "", "", false
	}
	str, ok := call.Args[0].Data.(*js_ast.EString)
	if !ok {
		return "", "", false
	}
	name, ok := dottedNameText(call.Target)
	if !ok {
		return "", "", false
	}
	return name, str.Value, true
}

func dottedNameText(expr js_ast.Expr) (string, bool) {
	switch e := expr.Data.(type) {
	case *js_ast.EIdentifier:
		return e.Name, true

	case *js_ast.EDot:
		if e.IsOptionalChain {
			return "", false
		}
		if target, ok := dottedNameText(e.Target); ok {
			return target + "." + e.Name, true
		}
	}
	return "", false
}
