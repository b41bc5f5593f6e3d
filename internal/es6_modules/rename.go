package es6_modules

import (
	"github.com/concatjs/concatjs/internal/binder"
	"github.com/concatjs/concatjs/internal/js_ast"
)

// Renames global variables declared in this file and rewrites references to
// imported names. Binding sites and references are treated the same way, so
// a declaration and its uses always end up with the same name.
type renamer struct {
	ctx    *fileContext
	suffix string
	scope  *binder.Scope
}

func (r *renamer) pushScope(scope *binder.Scope) {
	r.scope = scope
}

func (r *renamer) popScope() {
	r.scope = r.scope.Parent
}

func (r *renamer) mangle(name *string, originalName *string) {
	if *originalName == "" {
		*originalName = *name
	}
	*name = *name + "$$" + r.suffix
}

// Only declared names are renamed. A name that isn't declared anywhere is a
// reference to a real global such as "window" and must be left alone.
func (r *renamer) isGlobal(name string) (isGlobal bool, isDeclared bool) {
	if v, ok := r.scope.Lookup(name); ok {
		return v.IsGlobal(), true
	}
	return false, false
}

func (r *renamer) visitIdent(ident *js_ast.Ident) {
	if ident.Name == r.suffix {
		return
	}
	if isGlobal, _ := r.isGlobal(ident.Name); isGlobal {
		r.mangle(&ident.Name, &ident.OriginalName)
	}
}

// Returns true if the identifier was replaced with a property access on the
// namespace object of another module
func (r *renamer) visitIdentifier(expr *js_ast.Expr, id *js_ast.EIdentifier) bool {
	if id.Name == r.suffix {
		return false
	}

	isGlobal, isDeclared := r.isGlobal(id.Name)
	if isGlobal {
		r.mangle(&id.Name, &id.OriginalName)
		return false
	}

	if !isDeclared {
		if binding, ok := r.ctx.imports[id.Name]; ok {
			*expr = binding.expr(expr.Loc)
			return true
		}
	}
	return false
}

func (r *renamer) visitStmts(stmts []js_ast.Stmt) {
	for i := range stmts {
		r.visitStmt(&stmts[i])
	}
}

func (r *renamer) visitBlock(stmts []js_ast.Stmt) {
	r.pushScope(binder.NewBlockScope(r.scope, stmts))
	r.visitStmts(stmts)
	r.popScope()
}

func (r *renamer) visitStmt(stmt *js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SBlock:
		r.visitBlock(s.Stmts)

	case *js_ast.SExpr:
		r.visitJSDoc(s.JSDoc)
		r.visitExpr(&s.Value)

	case *js_ast.SLocal:
		r.visitJSDoc(s.JSDoc)
		for i := range s.Decls {
			decl := &s.Decls[i]
			r.visitBinding(&decl.Binding)
			if decl.Value != nil {
				r.visitExpr(decl.Value)
			}
		}

	case *js_ast.SFunction:
		r.visitJSDoc(s.JSDoc)
		if s.Fn.Name != nil {
			r.visitIdent(s.Fn.Name)
		}
		r.visitFn(&s.Fn)

	case *js_ast.SClass:
		r.visitJSDoc(s.JSDoc)
		if s.Class.Name != nil {
			r.visitIdent(s.Class.Name)
		}
		r.visitClass(&s.Class)

	case *js_ast.SExportDefault:
		if s.Value.Expr != nil {
			r.visitExpr(s.Value.Expr)
		} else if s.Value.Stmt != nil {
			r.visitStmt(s.Value.Stmt)
		}

	case *js_ast.SLabel:
		r.visitStmt(&s.Stmt)

	case *js_ast.SIf:
		r.visitExpr(&s.Test)
		r.visitStmt(&s.Yes)
		if s.No != nil {
			r.visitStmt(s.No)
		}

	case *js_ast.SFor:
		r.pushScope(binder.NewForScope(r.scope, s.Init))
		if s.Init != nil {
			r.visitStmt(s.Init)
		}
		if s.Test != nil {
			r.visitExpr(s.Test)
		}
		if s.Update != nil {
			r.visitExpr(s.Update)
		}
		r.visitStmt(&s.Body)
		r.popScope()

	case *js_ast.SForIn:
		r.pushScope(binder.NewForScope(r.scope, &s.Init))
		r.visitStmt(&s.Init)
		r.visitExpr(&s.Value)
		r.visitStmt(&s.Body)
		r.popScope()

	case *js_ast.SForOf:
		r.pushScope(binder.NewForScope(r.scope, &s.Init))
		r.visitStmt(&s.Init)
		r.visitExpr(&s.Value)
		r.visitStmt(&s.Body)
		r.popScope()

	case *js_ast.SWhile:
		r.visitExpr(&s.Test)
		r.visitStmt(&s.Body)

	case *js_ast.SDoWhile:
		r.visitStmt(&s.Body)
		r.visitExpr(&s.Test)

	case *js_ast.SReturn:
		if s.Value != nil {
			r.visitExpr(s.Value)
		}

	case *js_ast.SThrow:
		r.visitExpr(&s.Value)

	case *js_ast.STry:
		r.visitBlock(s.Body)
		if s.Catch != nil {
			r.pushScope(binder.NewCatchScope(r.scope, s.Catch.Binding))
			if s.Catch.Binding != nil {
				r.visitBinding(s.Catch.Binding)
			}
			r.visitBlock(s.Catch.Body)
			r.popScope()
		}
		if s.Finally != nil {
			r.visitBlock(s.Finally.Stmts)
		}

	case *js_ast.SSwitch:
		r.visitExpr(&s.Test)

		// All cases share one block scope
		var body []js_ast.Stmt
		for _, c := range s.Cases {
			body = append(body, c.Body...)
		}
		r.pushScope(binder.NewBlockScope(r.scope, body))
		for i := range s.Cases {
			c := &s.Cases[i]
			if c.Value != nil {
				r.visitExpr(c.Value)
			}
			r.visitStmts(c.Body)
		}
		r.popScope()

	case *js_ast.SImport, *js_ast.SExportFrom, *js_ast.SExportStar, *js_ast.SExportClause:
		// Module paths and the names of other modules' exports are not
		// identifiers in this file

	case *js_ast.SBreak, *js_ast.SContinue, *js_ast.SDirective, *js_ast.SEmpty, *js_ast.SDebugger:
	}
}

// The JSDoc comment of a function belongs to the enclosing scope but the
// inline comments of its arguments belong to the function
func (r *renamer) visitFn(fn *js_ast.Fn) {
	r.pushScope(binder.NewFunctionScope(r.scope, fn.Args, fn.Body.Stmts))
	r.visitArgs(fn.Args)
	r.visitStmts(fn.Body.Stmts)
	r.popScope()
}

func (r *renamer) visitArgs(args []js_ast.Arg) {
	for i := range args {
		arg := &args[i]
		r.visitJSDoc(arg.JSDoc)
		r.visitBinding(&arg.Binding)
		if arg.Default != nil {
			r.visitExpr(arg.Default)
		}
	}
}

func (r *renamer) visitClass(class *js_ast.Class) {
	if class.Extends != nil {
		r.visitExpr(class.Extends)
	}
	for i := range class.Properties {
		r.visitProperty(&class.Properties[i])
	}
}

// Property names are never renamed. Only computed keys are expressions.
func (r *renamer) visitProperty(property *js_ast.Property) {
	r.visitJSDoc(property.JSDoc)
	if property.IsComputed {
		r.visitExpr(&property.Key)
	}
	if property.Value != nil {
		r.visitExpr(property.Value)
	}
	if property.Initializer != nil {
		r.visitExpr(property.Initializer)
	}
}

func (r *renamer) visitBinding(binding *js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BIdentifier:
		if b.Name == r.suffix {
			return
		}
		if isGlobal, _ := r.isGlobal(b.Name); isGlobal {
			r.mangle(&b.Name, &b.OriginalName)
		}

	case *js_ast.BArray:
		for i := range b.Items {
			item := &b.Items[i]
			r.visitBinding(&item.Binding)
			if item.DefaultValue != nil {
				r.visitExpr(item.DefaultValue)
			}
		}

	case *js_ast.BObject:
		for i := range b.Properties {
			property := &b.Properties[i]
			if property.IsComputed {
				r.visitExpr(&property.Key)
			}
			r.visitBinding(&property.Value)
			if property.DefaultValue != nil {
				r.visitExpr(property.DefaultValue)
			}
		}
	}
}

func (r *renamer) visitExpr(expr *js_ast.Expr) {
	switch e := expr.Data.(type) {
	case *js_ast.EIdentifier:
		r.visitIdentifier(expr, e)

	case *js_ast.ECall:
		// Calling a property changes "this" inside the callee, so the call is
		// no longer a free call
		if id, ok := e.Target.Data.(*js_ast.EIdentifier); ok {
			if r.visitIdentifier(&e.Target, id) {
				e.IsFreeCall = false
			}
		} else {
			r.visitExpr(&e.Target)
		}
		for i := range e.Args {
			r.visitExpr(&e.Args[i])
		}

	case *js_ast.ENew:
		r.visitExpr(&e.Target)
		for i := range e.Args {
			r.visitExpr(&e.Args[i])
		}

	case *js_ast.EDot:
		r.visitExpr(&e.Target)

	case *js_ast.EIndex:
		r.visitExpr(&e.Target)
		r.visitExpr(&e.Index)

	case *js_ast.EUnary:
		r.visitExpr(&e.Value)

	case *js_ast.EBinary:
		r.visitExpr(&e.Left)
		r.visitExpr(&e.Right)

	case *js_ast.EIf:
		r.visitExpr(&e.Test)
		r.visitExpr(&e.Yes)
		r.visitExpr(&e.No)

	case *js_ast.EArray:
		for i := range e.Items {
			r.visitExpr(&e.Items[i])
		}

	case *js_ast.EObject:
		for i := range e.Properties {
			r.visitProperty(&e.Properties[i])
		}

	case *js_ast.ESpread:
		r.visitExpr(&e.Value)

	case *js_ast.EAwait:
		r.visitExpr(&e.Value)

	case *js_ast.EYield:
		if e.Value != nil {
			r.visitExpr(e.Value)
		}

	case *js_ast.ETemplate:
		if e.Tag != nil {
			r.visitExpr(e.Tag)
		}
		for i := range e.Parts {
			r.visitExpr(&e.Parts[i].Value)
		}

	case *js_ast.EArrow:
		r.pushScope(binder.NewFunctionScope(r.scope, e.Args, e.Body.Stmts))
		r.visitArgs(e.Args)
		r.visitStmts(e.Body.Stmts)
		r.popScope()

	case *js_ast.EFunction:
		r.pushScope(binder.NewNameScope(r.scope, e.Fn.Name))
		r.visitFn(&e.Fn)
		r.popScope()

	case *js_ast.EClass:
		r.pushScope(binder.NewNameScope(r.scope, e.Class.Name))
		r.visitClass(&e.Class)
		r.popScope()
	}
}
