package es6_modules

// This pass rewrites a file written with "import" and "export" statements
// into one that only uses global declarations plus the "goog.provide" and
// "goog.require" namespace convention. Many rewritten files can then be
// concatenated into a single script.
//
// It runs in two phases. The first phase visits each top-level statement once
// and rewrites the import and export statements it finds, remembering the
// bindings they introduce. The second phase starts at the end of the file and
// walks the whole tree with scope tracking. It renames every global variable
// to "<name>$$<module>" and turns references to imported names into property
// accesses on the namespace object of the module they came from. The type
// names in JSDoc comments are updated the same way.
//
// For example, the file "./lib/math.js":
//
//	import {square} from './util';
//	var cache = {};
//	export function cube(x) { return square(x) * x; }
//
// becomes:
//
//	goog.provide("module$lib$math");
//	goog.require("module$lib$util");
//	var cache$$module$lib$math = {};
//	function cube$$module$lib$math(x) { return module$lib$util.square(x) * x; }
//	var module$lib$math = {cube: cube$$module$lib$math};

import (
	"fmt"
	"sort"
	"strings"

	"github.com/concatjs/concatjs/internal/binder"
	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/js_lexer"
	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/resolver"
)

type Options struct {
	// The coding convention's names for the functions that declare and consume
	// namespaces. These default to "goog.provide" and "goog.require".
	ProvideFunc string
	RequireFunc string
}

func (options Options) withDefaults() Options {
	if options.ProvideFunc == "" {
		options.ProvideFunc = "goog.provide"
	}
	if options.RequireFunc == "" {
		options.RequireFunc = "goog.require"
	}
	return options
}

// A pass instance rewrites exactly one file. Create a new one for each file.
// Instances can't be shared between goroutines but the loader they use can.
type Pass struct {
	log         logger.Log
	loader      resolver.Loader
	options     Options
	scriptCount int
}

func NewPass(log logger.Log, loader resolver.Loader, options Options) *Pass {
	return &Pass{
		log:     log,
		loader:  loader,
		options: options.withDefaults(),
	}
}

type Result struct {
	// The namespace object for this file. This is only set if the file was
	// rewritten.
	ModuleName string

	// True if the file contained at least one import or export statement
	IsES6Module bool

	// True if the file already uses the legacy convention and was skipped
	IsLegacyModule bool

	// Whether a "goog.provide" call was added. Files without exports don't
	// get one.
	HasProvide bool

	// The namespaces of the imported modules in the order they were imported
	Requires []string
}

// Rewrites "tree" in place. The address is the file's module address, which
// is what the file's own namespace name is derived from and what its import
// paths are resolved against.
func (p *Pass) ProcessFile(source *logger.Source, tree *js_ast.AST, address string) Result {
	p.scriptCount++
	if p.scriptCount > 1 {
		panic("Internal error: a module rewriting pass can only process one file")
	}

	if loc, ok := findLegacyProvide(*tree, p.options); ok {
		p.log.AddVerbose(source, loc, fmt.Sprintf("Not rewriting %s because it already calls %q",
			source.PrettyPath, p.options.ProvideFunc))
		return Result{IsLegacyModule: true}
	}

	ctx := &fileContext{
		log:        p.log,
		loader:     p.loader,
		options:    p.options,
		source:     source,
		tree:       tree,
		address:    address,
		moduleName: ModuleName(address),
		imports:    make(map[string]importBinding),
		required:   make(map[string]bool),
	}
	ctx.visitTopLevel()
	return ctx.finalize()
}

type importBinding struct {
	moduleName string

	// This is empty for "import * as ns" since "ns" is the whole namespace
	// object instead of one of its properties
	originalName string
}

func (binding importBinding) expr(loc logger.Loc) js_ast.Expr {
	target := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: binding.moduleName}}
	if binding.originalName == "" {
		return target
	}
	return js_ast.Expr{Loc: loc, Data: &js_ast.EDot{Target: target, Name: binding.originalName, NameLoc: loc}}
}

// Everything here is specific to one file and is thrown away afterward
type fileContext struct {
	log        logger.Log
	loader     resolver.Loader
	options    Options
	source     *logger.Source
	tree       *js_ast.AST
	address    string
	moduleName string

	exports  exportMap
	imports  map[string]importBinding
	required map[string]bool

	// The "goog.require" calls, most recent first. They are inserted at the
	// front of the file one at a time, so the last one ends up at the top.
	requireStmts []js_ast.Stmt
	requireOrder []string

	isES6Module bool
}

func (ctx *fileContext) visitTopLevel() {
	// Export statements only ever declare top-level names so they are all
	// looked up in this scope
	moduleScope := binder.NewModuleScope(ctx.tree.Stmts)

	stmts := ctx.tree.Stmts
	end := 0
	for _, stmt := range stmts {
		switch s := stmt.Data.(type) {
		case *js_ast.SImport:
			ctx.isES6Module = true
			if ctx.rewriteImport(stmt, s) {
				continue
			}

		case *js_ast.SExportDefault:
			ctx.isES6Module = true
			ctx.reportUnsupportedExport(stmt.Loc, logger.MsgID_Modules_UnsupportedDefaultExport,
				"Default exports are not supported yet")

		case *js_ast.SExportStar:
			ctx.isES6Module = true
			ctx.reportUnsupportedExport(stmt.Loc, logger.MsgID_Modules_UnsupportedWildcardExport,
				"Wildcard exports are not supported yet")

		case *js_ast.SExportFrom:
			ctx.isES6Module = true
			ctx.reportUnsupportedExport(stmt.Loc, logger.MsgID_Modules_UnsupportedExportFrom,
				"Exports with a \"from\" clause are not supported yet")

		case *js_ast.SExportClause:
			ctx.isES6Module = true
			ctx.collectExportClause(s)
			continue

		case *js_ast.SLocal:
			if s.IsExport {
				ctx.isES6Module = true
				s.IsExport = false
				ctx.collectExportedDecl(moduleScope, stmt)
			}

		case *js_ast.SFunction:
			if s.IsExport {
				ctx.isES6Module = true
				s.IsExport = false
				ctx.collectExportedDecl(moduleScope, stmt)
			}

		case *js_ast.SClass:
			if s.IsExport {
				ctx.isES6Module = true
				s.IsExport = false
				ctx.collectExportedDecl(moduleScope, stmt)
			}
		}

		stmts[end] = stmt
		end++
	}
	ctx.tree.Stmts = stmts[:end]
}

func (ctx *fileContext) reportUnsupportedExport(loc logger.Loc, id logger.MsgID, text string) {
	r := js_lexer.RangeOfIdentifier(*ctx.source, loc)
	ctx.log.AddID(id, logger.Error, ctx.source, r, text)
}

func (ctx *fileContext) finalize() Result {
	if !ctx.isES6Module {
		return Result{}
	}

	result := Result{
		ModuleName:  ctx.moduleName,
		IsES6Module: true,
		Requires:    ctx.requireOrder,
	}

	moduleScope := binder.NewModuleScope(ctx.tree.Stmts)
	ctx.checkNamespaceCollisions(moduleScope)

	r := renamer{ctx: ctx, suffix: ctx.moduleName, scope: moduleScope}
	r.visitStmts(ctx.tree.Stmts)

	// The generated statements are added after renaming. They refer to names
	// from the namespace convention, never to anything declared in this file.
	var prologue []js_ast.Stmt
	if !ctx.exports.isEmpty() {
		// "var module$foo = {bar: bar$$module$foo};"
		properties := make([]js_ast.Property, 0, len(ctx.exports.names))
		for _, name := range ctx.exports.names {
			value := js_ast.Expr{Data: &js_ast.EIdentifier{Name: ctx.exports.locals[name] + "$$" + ctx.moduleName}}
			properties = append(properties, js_ast.Property{
				Key:   js_ast.Expr{Data: &js_ast.EString{Value: name}},
				Value: &value,
			})
		}
		ctx.tree.Stmts = append(ctx.tree.Stmts, js_ast.Stmt{Data: &js_ast.SLocal{
			Kind: js_ast.LocalVar,
			Decls: []js_ast.Decl{{
				Binding: js_ast.Binding{Data: &js_ast.BIdentifier{Name: ctx.moduleName}},
				Value:   &js_ast.Expr{Data: &js_ast.EObject{Properties: properties}},
			}},
		}})
		ctx.exports.clear()

		prologue = append(prologue, namespaceCallStmt(logger.Loc{}, ctx.options.ProvideFunc, ctx.moduleName))
		result.HasProvide = true
	}
	prologue = append(prologue, ctx.requireStmts...)
	ctx.insertAtFront(prologue)

	return result
}

// Directives must stay at the top of the file to keep their meaning
func (ctx *fileContext) insertAtFront(prologue []js_ast.Stmt) {
	if len(prologue) == 0 {
		return
	}
	stmts := ctx.tree.Stmts
	directives := 0
	for directives < len(stmts) {
		if _, ok := stmts[directives].Data.(*js_ast.SDirective); !ok {
			break
		}
		directives++
	}
	result := make([]js_ast.Stmt, 0, len(stmts)+len(prologue))
	result = append(result, stmts[:directives]...)
	result = append(result, prologue...)
	result = append(result, stmts[directives:]...)
	ctx.tree.Stmts = result
}

// A global with the same name as the namespace object is never renamed. A
// global whose mangled name is already taken by another global is still
// renamed.
func (ctx *fileContext) checkNamespaceCollisions(moduleScope *binder.Scope) {
	vars := make([]*binder.Var, 0, len(moduleScope.Members))
	for _, v := range moduleScope.Members {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool {
		return vars[i].Loc.Start < vars[j].Loc.Start
	})

	for _, v := range vars {
		if v.Name == ctx.moduleName {
			ctx.log.AddID(logger.MsgID_Modules_NamespaceCollision, logger.Warning, ctx.source,
				js_lexer.RangeOfIdentifier(*ctx.source, v.Loc),
				fmt.Sprintf("The global name %q is the same as the name of this module's namespace object", v.Name))
			continue
		}

		mangled := v.Name + "$$" + ctx.moduleName
		if other, ok := moduleScope.Members[mangled]; ok {
			ctx.log.AddID(logger.MsgID_Modules_NamespaceCollision, logger.Warning, ctx.source,
				js_lexer.RangeOfIdentifier(*ctx.source, other.Loc),
				fmt.Sprintf("The global name %q collides with the renamed form of %q", mangled, v.Name))
		}
	}
}

// Builds "a.b('c');"
func namespaceCallStmt(loc logger.Loc, fn string, namespace string) js_ast.Stmt {
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: js_ast.Expr{Loc: loc, Data: &js_ast.ECall{
		Target: js_ast.DottedName(loc, strings.Split(fn, ".")),
		Args:   []js_ast.Expr{{Loc: loc, Data: &js_ast.EString{Value: namespace}}},
	}}}}
}
