package es6_modules

import (
	"strings"

	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/resolver"
)

// Type names in JSDoc comments refer to the same variables as identifiers in
// code, so they are rewritten to match. For example "{Foo}" becomes
// "{Foo$$module$bar}" when "Foo" is a global and "{module$baz.Foo}" when
// "Foo" was imported from "./baz".
func (r *renamer) visitJSDoc(doc *js_ast.JSDoc) {
	if doc == nil {
		return
	}
	if doc.InlineType != nil {
		js_ast.VisitTypeNames(doc.InlineType, r.fixTypeName)
	}
	for i := range doc.Tags {
		if tag := &doc.Tags[i]; tag.Type != nil {
			js_ast.VisitTypeNames(tag.Type, r.fixTypeName)
		}
	}
}

func (r *renamer) fixTypeName(loc logger.Loc, t *js_ast.TName) {
	name := t.Name
	if t.OriginalName == "" {
		t.OriginalName = name
	}

	// "{./foo.Bar}" refers to "Bar" exported by the module "./foo"
	if resolver.IsRelativeIdentifier(name) {
		modulePath := name
		rest := ""
		lastSlash := strings.LastIndexByte(name, '/')
		if dot := strings.IndexByte(name[lastSlash:], '.'); dot != -1 {
			modulePath = name[:lastSlash+dot]
			rest = name[lastSlash+dot:]
		}

		address, ok := r.ctx.loader.Locate(modulePath, r.ctx.address)
		if !ok {
			r.ctx.addLoadError(rangeOfTypeName(r.ctx.source, loc, name), modulePath)
			return
		}
		t.Name = ModuleName(address) + rest
		return
	}

	base := name
	rest := ""
	if dot := strings.IndexByte(name, '.'); dot != -1 {
		base = name[:dot]
		rest = name[dot:]
	}

	isGlobal, isDeclared := r.isGlobal(base)
	if isGlobal {
		if base != r.suffix {
			t.Name = base + "$$" + r.suffix + rest
		}
		return
	}

	if !isDeclared {
		if binding, ok := r.ctx.imports[base]; ok {
			if binding.originalName == "" {
				t.Name = binding.moduleName + rest
			} else {
				t.Name = binding.moduleName + "." + binding.originalName
			}
		}
	}
}

func rangeOfTypeName(source *logger.Source, loc logger.Loc, name string) logger.Range {
	if strings.HasPrefix(source.Contents[loc.Start:], name) {
		return logger.Range{Loc: loc, Len: int32(len(name))}
	}
	return logger.Range{Loc: loc}
}
