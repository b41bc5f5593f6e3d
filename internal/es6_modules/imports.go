package es6_modules

import (
	"fmt"

	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/logger"
)

// Returns true if the import statement should be removed. Imports that can't
// be located are reported and kept.
func (ctx *fileContext) rewriteImport(stmt js_ast.Stmt, s *js_ast.SImport) bool {
	address, ok := ctx.loader.Locate(s.Path, ctx.address)
	if !ok {
		ctx.addLoadError(s.PathRange, s.Path)
		return false
	}

	// A module that fails to load still has a namespace name, so the rewrite
	// goes ahead after reporting the error
	if err := ctx.loader.Load(address); err != nil {
		ctx.addLoadError(s.PathRange, s.Path)
	}

	moduleName := ModuleName(address)

	// "import foo from 'path'"
	if s.DefaultName != nil {
		ctx.imports[s.DefaultName.Name] = importBinding{moduleName: moduleName, originalName: s.DefaultName.Name}
	}

	// "import * as ns from 'path'"
	if s.Namespace != nil {
		ctx.imports[s.Namespace.Name] = importBinding{moduleName: moduleName}
	}

	// "import {foo, bar as baz} from 'path'"
	if s.Items != nil {
		for _, item := range *s.Items {
			ctx.imports[item.Name.Name] = importBinding{moduleName: moduleName, originalName: item.Alias}
		}
	}

	if !ctx.required[moduleName] {
		ctx.required[moduleName] = true
		ctx.requireOrder = append(ctx.requireOrder, moduleName)
		require := namespaceCallStmt(stmt.Loc, ctx.options.RequireFunc, moduleName)
		ctx.requireStmts = append([]js_ast.Stmt{require}, ctx.requireStmts...)
	}
	return true
}

func (ctx *fileContext) addLoadError(r logger.Range, path string) {
	ctx.log.AddID(logger.MsgID_Modules_LoadError, logger.Error, ctx.source, r,
		fmt.Sprintf("Failed to load module %q", path))
}
