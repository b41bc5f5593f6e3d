package js_parser

import (
	"fmt"

	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/js_lexer"
	"github.com/concatjs/concatjs/internal/logger"
)

// This parser does one pass over the source and produces a tree that still
// refers to identifiers by name. There is no binding pass here: the module
// rewriting pass needs to edit the tree and then reason about scopes in the
// edited tree, so scopes are computed on demand by the "binder" package.

type Options struct {
	// Don't report unparseable type annotations in "/** ... */" comments
	OmitJSDocWarnings bool
}

type fnOpts struct {
	allowAwait bool
	allowYield bool
}

type parser struct {
	log           logger.Log
	source        logger.Source
	lexer         js_lexer.Lexer
	options       Options
	allowIn       bool
	currentFnOpts fnOpts
}

func (p *parser) addError(loc logger.Loc, text string) {
	p.log.AddError(&p.source, logger.Range{Loc: loc}, text)
}

func (p *parser) addRangeError(r logger.Range, text string) {
	p.log.AddError(&p.source, r, text)
}

// Due to ES6 destructuring patterns, there are many cases where it's
// impossible to distinguish between an array or object literal and a
// destructuring assignment until we hit the "=" operator later on.
// This object defers errors about being in one state or the other
// until we discover which state we're in.
type deferredErrors struct {
	// These are errors for expressions
	invalidExprDefaultValue logger.Range

	// These are errors for destructuring patterns
	invalidBindingCommaAfterSpread logger.Range
}

func (from *deferredErrors) mergeInto(to *deferredErrors) {
	if from.invalidExprDefaultValue.Len > 0 {
		to.invalidExprDefaultValue = from.invalidExprDefaultValue
	}
	if from.invalidBindingCommaAfterSpread.Len > 0 {
		to.invalidBindingCommaAfterSpread = from.invalidBindingCommaAfterSpread
	}
}

type propertyContext int

const (
	propertyContextObject = iota
	propertyContextClass
)

type propertyOpts struct {
	isAsync     bool
	isGenerator bool
	isStatic    bool
}

func (p *parser) parseProperty(context propertyContext, kind js_ast.PropertyKind, opts propertyOpts, errors *deferredErrors) js_ast.Property {
	var key js_ast.Expr
	isComputed := false

	switch p.lexer.Token {
	case js_lexer.TNumericLiteral:
		key = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.ENumber{Value: p.lexer.Number}}
		p.lexer.Next()

	case js_lexer.TStringLiteral:
		key = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EString{Value: p.lexer.StringLiteral}}
		p.lexer.Next()

	case js_lexer.TOpenBracket:
		isComputed = true
		p.lexer.Next()
		expr := p.parseExpr(js_ast.LComma)
		p.lexer.Expect(js_lexer.TCloseBracket)
		key = expr

	case js_lexer.TAsterisk:
		if kind != js_ast.PropertyNormal || opts.isGenerator {
			p.lexer.Unexpected()
		}
		p.lexer.Next()
		opts.isGenerator = true
		return p.parseProperty(context, js_ast.PropertyNormal, opts, errors)

	default:
		name := p.lexer.Identifier
		loc := p.lexer.Loc()
		if !p.lexer.IsIdentifierOrKeyword() {
			p.lexer.Expect(js_lexer.TIdentifier)
		}
		p.lexer.Next()

		// Support contextual keywords
		if kind == js_ast.PropertyNormal && !opts.isGenerator {
			// Does the following token look like a key?
			couldBeModifierKeyword := p.lexer.IsIdentifierOrKeyword()
			if !couldBeModifierKeyword {
				switch p.lexer.Token {
				case js_lexer.TOpenBracket, js_lexer.TNumericLiteral, js_lexer.TStringLiteral, js_lexer.TAsterisk:
					couldBeModifierKeyword = true
				}
			}

			// If so, check for a modifier keyword
			if couldBeModifierKeyword {
				switch name {
				case "get":
					if !opts.isAsync {
						return p.parseProperty(context, js_ast.PropertyGet, opts, nil)
					}

				case "set":
					if !opts.isAsync {
						return p.parseProperty(context, js_ast.PropertySet, opts, nil)
					}

				case "async":
					if !opts.isAsync && !p.lexer.HasNewlineBefore {
						opts.isAsync = true
						return p.parseProperty(context, kind, opts, nil)
					}

				case "static":
					if !opts.isStatic && !opts.isAsync && context == propertyContextClass {
						opts.isStatic = true
						return p.parseProperty(context, kind, opts, nil)
					}
				}
			}
		}

		key = js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: name}}

		// Parse a shorthand property
		if context == propertyContextObject && kind == js_ast.PropertyNormal &&
			p.lexer.Token != js_lexer.TColon && p.lexer.Token != js_lexer.TOpenParen && !opts.isGenerator && !opts.isAsync {
			value := js_ast.Expr{Loc: key.Loc, Data: &js_ast.EIdentifier{Name: name}}

			// Destructuring patterns have an optional default value
			var initializer *js_ast.Expr
			if errors != nil && p.lexer.Token == js_lexer.TEquals {
				errors.invalidExprDefaultValue = p.lexer.Range()
				p.lexer.Next()
				value := p.parseExpr(js_ast.LComma)
				initializer = &value
			}

			return js_ast.Property{
				Kind:         kind,
				Key:          key,
				Value:        &value,
				Initializer:  initializer,
				WasShorthand: true,
			}
		}
	}

	// Parse a field
	if context == propertyContextClass && kind == js_ast.PropertyNormal &&
		!opts.isAsync && !opts.isGenerator && p.lexer.Token != js_lexer.TOpenParen {
		var initializer *js_ast.Expr
		if p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			value := p.parseExpr(js_ast.LComma)
			initializer = &value
		}
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Property{
			Kind:        kind,
			IsComputed:  isComputed,
			IsStatic:    opts.isStatic,
			Key:         key,
			Initializer: initializer,
		}
	}

	// Parse a method expression
	if p.lexer.Token == js_lexer.TOpenParen || kind != js_ast.PropertyNormal ||
		context == propertyContextClass || opts.isAsync || opts.isGenerator {
		loc := p.lexer.Loc()
		fn := p.parseFn(nil, fnOpts{
			allowAwait: opts.isAsync,
			allowYield: opts.isGenerator,
		})
		value := js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: fn}}
		return js_ast.Property{
			Kind:       kind,
			IsComputed: isComputed,
			IsMethod:   true,
			IsStatic:   opts.isStatic,
			Key:        key,
			Value:      &value,
		}
	}

	p.lexer.Expect(js_lexer.TColon)
	value := p.parseExprOrBindings(js_ast.LComma, errors)
	return js_ast.Property{
		Kind:       kind,
		IsComputed: isComputed,
		Key:        key,
		Value:      &value,
	}
}

func (p *parser) parsePropertyBinding() js_ast.PropertyBinding {
	var key js_ast.Expr
	isComputed := false

	switch p.lexer.Token {
	case js_lexer.TDotDotDot:
		p.lexer.Next()
		value := js_ast.Binding{Loc: p.lexer.Loc(), Data: &js_ast.BIdentifier{Name: p.lexer.Identifier}}
		p.lexer.Expect(js_lexer.TIdentifier)
		return js_ast.PropertyBinding{
			IsSpread: true,
			Value:    value,
		}

	case js_lexer.TNumericLiteral:
		key = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.ENumber{Value: p.lexer.Number}}
		p.lexer.Next()

	case js_lexer.TStringLiteral:
		key = js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EString{Value: p.lexer.StringLiteral}}
		p.lexer.Next()

	case js_lexer.TOpenBracket:
		isComputed = true
		p.lexer.Next()

		// "in" expressions are allowed
		oldAllowIn := p.allowIn
		p.allowIn = true
		expr := p.parseExpr(js_ast.LComma)
		p.allowIn = oldAllowIn

		p.lexer.Expect(js_lexer.TCloseBracket)
		key = expr

	default:
		name := p.lexer.Identifier
		loc := p.lexer.Loc()
		if !p.lexer.IsIdentifierOrKeyword() {
			p.lexer.Expect(js_lexer.TIdentifier)
		}
		p.lexer.Next()
		key = js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: name}}

		if p.lexer.Token != js_lexer.TColon && p.lexer.Token != js_lexer.TOpenParen {
			value := js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: name}}

			var defaultValue *js_ast.Expr
			if p.lexer.Token == js_lexer.TEquals {
				p.lexer.Next()

				// "in" expressions are allowed
				oldAllowIn := p.allowIn
				p.allowIn = true
				init := p.parseExpr(js_ast.LComma)
				defaultValue = &init
				p.allowIn = oldAllowIn
			}

			return js_ast.PropertyBinding{
				Key:          key,
				Value:        value,
				DefaultValue: defaultValue,
			}
		}
	}

	p.lexer.Expect(js_lexer.TColon)
	value := p.parseBinding()

	var defaultValue *js_ast.Expr
	if p.lexer.Token == js_lexer.TEquals {
		p.lexer.Next()

		// "in" expressions are allowed
		oldAllowIn := p.allowIn
		p.allowIn = true
		init := p.parseExpr(js_ast.LComma)
		defaultValue = &init
		p.allowIn = oldAllowIn
	}

	return js_ast.PropertyBinding{
		IsComputed:   isComputed,
		Key:          key,
		Value:        value,
		DefaultValue: defaultValue,
	}
}

// This assumes that the "=>" token has already been parsed by the caller
func (p *parser) parseArrowBody(args []js_ast.Arg, opts fnOpts) *js_ast.EArrow {
	arrowLoc := p.lexer.Loc()

	if p.lexer.Token == js_lexer.TOpenBrace {
		body := p.parseFnBody(opts)
		return &js_ast.EArrow{Args: args, Body: body}
	}

	oldFnOpts := p.currentFnOpts
	p.currentFnOpts = opts
	expr := p.parseExpr(js_ast.LComma)
	p.currentFnOpts = oldFnOpts
	return &js_ast.EArrow{
		Args:       args,
		PreferExpr: true,
		Body: js_ast.FnBody{Loc: arrowLoc, Stmts: []js_ast.Stmt{
			{Loc: expr.Loc, Data: &js_ast.SReturn{Value: &expr}},
		}},
	}
}

// This parses an expression. This assumes we've already parsed the "async"
// keyword and are currently looking at the following token.
func (p *parser) parseAsyncExpr(loc logger.Loc, level js_ast.L) js_ast.Expr {
	// "async function() {}"
	if !p.lexer.HasNewlineBefore && p.lexer.Token == js_lexer.TFunction {
		return p.parseFnExpr(loc, true /* isAsync */)
	}

	switch p.lexer.Token {
	// "async => {}"
	case js_lexer.TEqualsGreaterThan:
		p.lexer.Next()
		arg := js_ast.Arg{Binding: js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: "async"}}}
		return js_ast.Expr{Loc: loc, Data: p.parseArrowBody([]js_ast.Arg{arg}, fnOpts{})}

	// "async x => {}"
	case js_lexer.TIdentifier:
		if !p.lexer.HasNewlineBefore {
			arg := js_ast.Arg{Binding: js_ast.Binding{Loc: p.lexer.Loc(), Data: &js_ast.BIdentifier{Name: p.lexer.Identifier}}}
			p.lexer.Next()
			p.lexer.Expect(js_lexer.TEqualsGreaterThan)
			arrow := p.parseArrowBody([]js_ast.Arg{arg}, fnOpts{allowAwait: true})
			arrow.IsAsync = true
			return js_ast.Expr{Loc: loc, Data: arrow}
		}

	// "async()"
	// "async () => {}"
	case js_lexer.TOpenParen:
		if !p.lexer.HasNewlineBefore {
			p.lexer.Next()
			return p.parseSuffix(p.parseParenExpr(loc, true /* isAsync */), level)
		}
	}

	// "async"
	// "async + 1"
	expr := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "async"}}
	return p.parseSuffix(expr, level)
}

func (p *parser) parseFnExpr(loc logger.Loc, isAsync bool) js_ast.Expr {
	p.lexer.Next()
	isGenerator := p.lexer.Token == js_lexer.TAsterisk
	if isGenerator {
		p.lexer.Next()
	}
	var name *js_ast.Ident

	if p.lexer.Token == js_lexer.TIdentifier {
		name = &js_ast.Ident{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
		p.lexer.Next()
	}

	fn := p.parseFn(name, fnOpts{
		allowAwait: isAsync,
		allowYield: isGenerator,
	})
	return js_ast.Expr{Loc: loc, Data: &js_ast.EFunction{Fn: fn}}
}

func (p *parser) logExprErrors(errors *deferredErrors) {
	if errors.invalidExprDefaultValue.Len > 0 {
		p.addRangeError(errors.invalidExprDefaultValue, "Unexpected \"=\"")
	}
}

func (p *parser) logBindingErrors(errors *deferredErrors) {
	if errors.invalidBindingCommaAfterSpread.Len > 0 {
		p.addRangeError(errors.invalidBindingCommaAfterSpread, "Unexpected \",\" after rest pattern")
	}
}

// This assumes that the open parenthesis has already been parsed by the caller
func (p *parser) parseParenExpr(loc logger.Loc, isAsync bool) js_ast.Expr {
	items := []js_ast.Expr{}
	comments := []*js_lexer.JSDocComment{}
	errors := deferredErrors{}
	spreadRange := logger.Range{}

	// Scan over the comma-separated arguments or expressions
	for p.lexer.Token != js_lexer.TCloseParen {
		itemLoc := p.lexer.Loc()
		isSpread := p.lexer.Token == js_lexer.TDotDotDot
		comment := p.lexer.JSDocBefore

		if isSpread {
			spreadRange = p.lexer.Range()
			p.lexer.Next()
		}

		// We don't know yet whether these are arguments or expressions, so parse
		// a superset of the expression syntax. Errors about things that are valid
		// in one but not in the other are deferred.
		item := p.parseExprOrBindings(js_ast.LComma, &errors)

		if isSpread {
			item = js_ast.Expr{Loc: itemLoc, Data: &js_ast.ESpread{Value: item}}
		}

		items = append(items, item)
		comments = append(comments, comment)
		if p.lexer.Token != js_lexer.TComma {
			break
		}

		// Spread arguments must come last. If there's a spread argument followed
		// by a comma, throw an error if we use these expressions as bindings.
		if isSpread {
			errors.invalidBindingCommaAfterSpread = p.lexer.Range()
		}

		// Eat the comma token
		p.lexer.Next()
	}

	// The parenthetical construct must end with a close parenthesis
	p.lexer.Expect(js_lexer.TCloseParen)

	// Are these arguments to an arrow function?
	if p.lexer.Token == js_lexer.TEqualsGreaterThan {
		p.logBindingErrors(&errors)
		p.lexer.Next()
		args := []js_ast.Arg{}
		for i, item := range items {
			if spread, ok := item.Data.(*js_ast.ESpread); ok {
				item = spread.Value
			}
			binding, initializer := p.convertExprToBindingAndInitializer(item)
			doc := p.parseJSDoc(comments[i], true /* isInline */)
			args = append(args, js_ast.Arg{Binding: binding, Default: initializer, JSDoc: doc})
		}
		arrow := p.parseArrowBody(args, fnOpts{allowAwait: isAsync})
		arrow.IsAsync = isAsync
		arrow.HasRestArg = spreadRange.Len > 0
		return js_ast.Expr{Loc: loc, Data: arrow}
	}

	// Are these arguments for a call to a function named "async"?
	if isAsync {
		p.logExprErrors(&errors)
		async := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "async"}}
		return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{Target: async, Args: items, IsFreeCall: true}}
	}

	// Is this a chain of expressions and comma operators?
	if len(items) > 0 {
		p.logExprErrors(&errors)
		if spreadRange.Len > 0 {
			p.addRangeError(spreadRange, "Unexpected \"...\"")
			panic(js_lexer.LexerPanic{})
		}
		value := items[0]
		for _, item := range items[1:] {
			value = js_ast.Expr{Loc: value.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpComma, Left: value, Right: item}}
		}
		return value
	}

	// Indicate that we expected an arrow function
	p.lexer.Expected(js_lexer.TEqualsGreaterThan)
	return js_ast.Expr{}
}

func (p *parser) convertExprToBindingAndInitializer(expr js_ast.Expr) (binding js_ast.Binding, initializer *js_ast.Expr) {
	if assign, ok := expr.Data.(*js_ast.EBinary); ok && assign.Op == js_ast.BinOpAssign {
		initializer = &assign.Right
		expr = assign.Left
	}
	binding = p.convertExprToBinding(expr)
	return
}

func (p *parser) convertExprToBinding(expr js_ast.Expr) js_ast.Binding {
	switch e := expr.Data.(type) {
	case *js_ast.EMissing:
		return js_ast.Binding{Loc: expr.Loc, Data: &js_ast.BMissing{}}

	case *js_ast.EIdentifier:
		return js_ast.Binding{Loc: expr.Loc, Data: &js_ast.BIdentifier{Name: e.Name}}

	case *js_ast.EArray:
		items := []js_ast.ArrayBinding{}
		isSpread := false
		for _, item := range e.Items {
			if i, ok := item.Data.(*js_ast.ESpread); ok {
				isSpread = true
				item = i.Value
			}
			binding, initializer := p.convertExprToBindingAndInitializer(item)
			items = append(items, js_ast.ArrayBinding{Binding: binding, DefaultValue: initializer})
		}
		return js_ast.Binding{Loc: expr.Loc, Data: &js_ast.BArray{
			Items:     items,
			HasSpread: isSpread,
		}}

	case *js_ast.EObject:
		items := []js_ast.PropertyBinding{}
		for _, item := range e.Properties {
			if item.Kind == js_ast.PropertyGet || item.IsMethod ||
				item.Kind == js_ast.PropertySet {
				p.addError(item.Key.Loc, "Invalid binding pattern")
				panic(js_lexer.LexerPanic{})
			}
			binding, initializer := p.convertExprToBindingAndInitializer(*item.Value)
			if initializer == nil {
				initializer = item.Initializer
			}
			items = append(items, js_ast.PropertyBinding{
				IsSpread:     item.Kind == js_ast.PropertySpread,
				IsComputed:   item.IsComputed,
				Key:          item.Key,
				Value:        binding,
				DefaultValue: initializer,
			})
		}
		return js_ast.Binding{Loc: expr.Loc, Data: &js_ast.BObject{Properties: items}}

	default:
		p.addError(expr.Loc, "Invalid binding pattern")
		panic(js_lexer.LexerPanic{})
	}
}

func (p *parser) parsePrefix(level js_ast.L, errors *deferredErrors) js_ast.Expr {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TSuper:
		p.lexer.Next()

		switch p.lexer.Token {
		case js_lexer.TOpenParen:
			if level < js_ast.LCall {
				return js_ast.Expr{Loc: loc, Data: &js_ast.ESuper{}}
			}

		case js_lexer.TDot, js_lexer.TOpenBracket:
			return js_ast.Expr{Loc: loc, Data: &js_ast.ESuper{}}
		}

		p.lexer.Unexpected()
		return js_ast.Expr{}

	case js_lexer.TOpenParen:
		p.lexer.Next()

		// Allow "in" inside parentheses
		oldAllowIn := p.allowIn
		p.allowIn = true

		// Arrow functions aren't allowed in the middle of expressions
		if level > js_ast.LAssign {
			value := p.parseExpr(js_ast.LLowest)
			p.lexer.Expect(js_lexer.TCloseParen)
			p.allowIn = oldAllowIn
			return value
		}

		value := p.parseParenExpr(loc, false /* isAsync */)
		p.allowIn = oldAllowIn
		return value

	case js_lexer.TFalse:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: false}}

	case js_lexer.TTrue:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBoolean{Value: true}}

	case js_lexer.TNull:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENull{}}

	case js_lexer.TThis:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EThis{}}

	case js_lexer.TIdentifier:
		name := p.lexer.Identifier
		p.lexer.Next()

		// Handle async and await expressions
		switch {
		case name == "async":
			return p.parseAsyncExpr(loc, level)

		case name == "await" && p.currentFnOpts.allowAwait:
			return js_ast.Expr{Loc: loc, Data: &js_ast.EAwait{Value: p.parseExpr(js_ast.LPrefix)}}

		case name == "yield" && p.currentFnOpts.allowYield:
			if level > js_ast.LAssign {
				p.addError(loc, "Cannot use a \"yield\" expression here without parentheses")
				panic(js_lexer.LexerPanic{})
			}
			return p.parseYieldExpr(loc)
		}

		// Handle the start of an arrow expression
		if p.lexer.Token == js_lexer.TEqualsGreaterThan {
			p.lexer.Next()
			arg := js_ast.Arg{Binding: js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: name}}}
			return js_ast.Expr{Loc: loc, Data: p.parseArrowBody([]js_ast.Arg{arg}, fnOpts{})}
		}

		return js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name}}

	case js_lexer.TStringLiteral:
		value := p.lexer.StringLiteral
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EString{Value: value}}

	case js_lexer.TNoSubstitutionTemplateLiteral:
		head := p.lexer.RawTemplateContents()
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ETemplate{HeadLoc: loc, HeadRaw: head}}

	case js_lexer.TTemplateHead:
		head := p.lexer.RawTemplateContents()
		parts := p.parseTemplateParts()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ETemplate{HeadLoc: loc, HeadRaw: head, Parts: parts}}

	case js_lexer.TNumericLiteral:
		value := p.lexer.Number
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ENumber{Value: value}}

	case js_lexer.TBigIntegerLiteral:
		value := p.lexer.Identifier
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EBigInt{Value: value}}

	case js_lexer.TSlash, js_lexer.TSlashEquals:
		p.lexer.ScanRegExp()
		value := p.lexer.Raw()
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.ERegExp{Value: value}}

	case js_lexer.TVoid:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpVoid, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TTypeof:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpTypeof, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TDelete:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpDelete, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TPlus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPos, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TMinus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpNeg, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TTilde:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpCpl, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TExclamation:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpNot, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TMinusMinus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPreDec, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TPlusPlus:
		p.lexer.Next()
		return js_ast.Expr{Loc: loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPreInc, Value: p.parseExpr(js_ast.LPrefix)}}

	case js_lexer.TFunction:
		return p.parseFnExpr(loc, false /* isAsync */)

	case js_lexer.TClass:
		p.lexer.Next()
		var name *js_ast.Ident

		if p.lexer.Token == js_lexer.TIdentifier {
			name = &js_ast.Ident{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
			p.lexer.Next()
		}

		class := p.parseClass(name)
		return js_ast.Expr{Loc: loc, Data: &js_ast.EClass{Class: class}}

	case js_lexer.TNew:
		p.lexer.Next()

		// Special-case the weird "new.target" expression here
		if p.lexer.Token == js_lexer.TDot {
			p.lexer.Next()
			if p.lexer.Token != js_lexer.TIdentifier || p.lexer.Identifier != "target" {
				p.lexer.Unexpected()
			}
			p.lexer.Next()
			return js_ast.Expr{Loc: loc, Data: &js_ast.ENewTarget{}}
		}

		target := p.parseExpr(js_ast.LCall)
		args := []js_ast.Expr{}

		if p.lexer.Token == js_lexer.TOpenParen {
			args = p.parseCallArgs()
		}

		return js_ast.Expr{Loc: loc, Data: &js_ast.ENew{Target: target, Args: args}}

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		items := []js_ast.Expr{}
		selfErrors := deferredErrors{}

		// Allow "in" inside arrays
		oldAllowIn := p.allowIn
		p.allowIn = true

		for p.lexer.Token != js_lexer.TCloseBracket {
			switch p.lexer.Token {
			case js_lexer.TComma:
				items = append(items, js_ast.Expr{Loc: p.lexer.Loc(), Data: &js_ast.EMissing{}})

			case js_lexer.TDotDotDot:
				dotsLoc := p.lexer.Loc()
				p.lexer.Next()
				item := p.parseExprOrBindings(js_ast.LComma, &selfErrors)
				items = append(items, js_ast.Expr{Loc: dotsLoc, Data: &js_ast.ESpread{Value: item}})

				// Commas are not allowed here when destructuring
				if p.lexer.Token == js_lexer.TComma {
					selfErrors.invalidBindingCommaAfterSpread = p.lexer.Range()
				}

			default:
				item := p.parseExprOrBindings(js_ast.LComma, &selfErrors)
				items = append(items, item)
			}

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}

		p.lexer.Expect(js_lexer.TCloseBracket)
		p.allowIn = oldAllowIn

		if p.willNeedBindingPattern() {
			// Is this a binding pattern?
			p.logBindingErrors(&selfErrors)
		} else if errors == nil {
			// Is this an expression?
			p.logExprErrors(&selfErrors)
		} else {
			// In this case, we can't distinguish between the two yet
			selfErrors.mergeInto(errors)
		}

		return js_ast.Expr{Loc: loc, Data: &js_ast.EArray{Items: items}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		properties := []js_ast.Property{}
		selfErrors := deferredErrors{}

		// Allow "in" inside object literals
		oldAllowIn := p.allowIn
		p.allowIn = true

		for p.lexer.Token != js_lexer.TCloseBrace {
			if p.lexer.Token == js_lexer.TDotDotDot {
				p.lexer.Next()
				value := p.parseExpr(js_ast.LComma)
				properties = append(properties, js_ast.Property{
					Kind:  js_ast.PropertySpread,
					Value: &value,
				})

				// Commas are not allowed here when destructuring
				if p.lexer.Token == js_lexer.TComma {
					selfErrors.invalidBindingCommaAfterSpread = p.lexer.Range()
				}
			} else {
				doc := p.parseJSDoc(p.lexer.JSDocBefore, false /* isInline */)
				property := p.parseProperty(propertyContextObject, js_ast.PropertyNormal, propertyOpts{}, &selfErrors)
				property.JSDoc = doc
				properties = append(properties, property)
			}

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}

		p.lexer.Expect(js_lexer.TCloseBrace)
		p.allowIn = oldAllowIn

		if p.willNeedBindingPattern() {
			// Is this a binding pattern?
			p.logBindingErrors(&selfErrors)
		} else if errors == nil {
			// Is this an expression?
			p.logExprErrors(&selfErrors)
		} else {
			// In this case, we can't distinguish between the two yet
			selfErrors.mergeInto(errors)
		}

		return js_ast.Expr{Loc: loc, Data: &js_ast.EObject{Properties: properties}}

	default:
		p.lexer.Unexpected()
		return js_ast.Expr{}
	}
}

// This assumes the "yield" keyword has already been parsed
func (p *parser) parseYieldExpr(loc logger.Loc) js_ast.Expr {
	// Parse a yield-from expression, which yields from an iterator
	isStar := p.lexer.Token == js_lexer.TAsterisk
	if isStar {
		if p.lexer.HasNewlineBefore {
			p.lexer.Unexpected()
		}
		p.lexer.Next()
	}

	var value *js_ast.Expr

	// The yield expression only has a value in certain cases
	switch p.lexer.Token {
	case js_lexer.TCloseBrace, js_lexer.TCloseBracket, js_lexer.TCloseParen,
		js_lexer.TColon, js_lexer.TComma, js_lexer.TSemicolon:

	default:
		if isStar || !p.lexer.HasNewlineBefore {
			expr := p.parseExpr(js_ast.LYield)
			value = &expr
		}
	}

	return js_ast.Expr{Loc: loc, Data: &js_ast.EYield{Value: value, IsStar: isStar}}
}

func (p *parser) willNeedBindingPattern() bool {
	switch p.lexer.Token {
	case js_lexer.TEquals:
		// "[a] = b;"
		return true

	case js_lexer.TIn:
		// "for ([a] in b) {}"
		return !p.allowIn

	case js_lexer.TIdentifier:
		// "for ([a] of b) {}"
		return !p.allowIn && p.lexer.IsContextualKeyword("of")

	default:
		return false
	}
}

func (p *parser) parseImportExpr(loc logger.Loc) js_ast.Expr {
	// Parse an "import.meta" expression
	if p.lexer.Token == js_lexer.TDot {
		p.lexer.Next()
		if p.lexer.IsContextualKeyword("meta") {
			p.lexer.Next()
			target := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "import"}}
			return js_ast.Expr{Loc: loc, Data: &js_ast.EDot{Target: target, Name: "meta", NameLoc: loc}}
		}
		p.lexer.ExpectedString("\"meta\"")
	}

	// "import(path)" is kept as a call to a function named "import"
	target := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: "import"}}

	// Allow "in" inside call arguments
	oldAllowIn := p.allowIn
	p.allowIn = true

	p.lexer.Expect(js_lexer.TOpenParen)
	args := []js_ast.Expr{p.parseExpr(js_ast.LComma)}
	p.lexer.Expect(js_lexer.TCloseParen)

	p.allowIn = oldAllowIn
	return js_ast.Expr{Loc: loc, Data: &js_ast.ECall{Target: target, Args: args}}
}

func (p *parser) parseExprOrBindings(level js_ast.L, errors *deferredErrors) js_ast.Expr {
	return p.parseSuffix(p.parsePrefix(level, errors), level)
}

func (p *parser) parseExpr(level js_ast.L) js_ast.Expr {
	return p.parseSuffix(p.parsePrefix(level, nil), level)
}

// Binary operators that are parsed the same way: the token, the operator, and
// the level at which the right operand is parsed
type binaryOp struct {
	op         js_ast.OpCode
	rightLevel js_ast.L
}

var binaryOps = map[js_lexer.T]binaryOp{
	js_lexer.TComma:                                   {js_ast.BinOpComma, js_ast.LComma},
	js_lexer.TPlus:                                    {js_ast.BinOpAdd, js_ast.LAdd},
	js_lexer.TMinus:                                   {js_ast.BinOpSub, js_ast.LAdd},
	js_lexer.TAsterisk:                                {js_ast.BinOpMul, js_ast.LMultiply},
	js_lexer.TSlash:                                   {js_ast.BinOpDiv, js_ast.LMultiply},
	js_lexer.TPercent:                                 {js_ast.BinOpRem, js_ast.LMultiply},
	js_lexer.TAsteriskAsterisk:                        {js_ast.BinOpPow, js_ast.LExponentiation - 1},
	js_lexer.TLessThan:                                {js_ast.BinOpLt, js_ast.LCompare},
	js_lexer.TLessThanEquals:                          {js_ast.BinOpLe, js_ast.LCompare},
	js_lexer.TGreaterThan:                             {js_ast.BinOpGt, js_ast.LCompare},
	js_lexer.TGreaterThanEquals:                       {js_ast.BinOpGe, js_ast.LCompare},
	js_lexer.TInstanceof:                              {js_ast.BinOpInstanceof, js_ast.LCompare},
	js_lexer.TLessThanLessThan:                        {js_ast.BinOpShl, js_ast.LShift},
	js_lexer.TGreaterThanGreaterThan:                  {js_ast.BinOpShr, js_ast.LShift},
	js_lexer.TGreaterThanGreaterThanGreaterThan:       {js_ast.BinOpUShr, js_ast.LShift},
	js_lexer.TEqualsEquals:                            {js_ast.BinOpLooseEq, js_ast.LEquals},
	js_lexer.TExclamationEquals:                       {js_ast.BinOpLooseNe, js_ast.LEquals},
	js_lexer.TEqualsEqualsEquals:                      {js_ast.BinOpStrictEq, js_ast.LEquals},
	js_lexer.TExclamationEqualsEquals:                 {js_ast.BinOpStrictNe, js_ast.LEquals},
	js_lexer.TQuestionQuestion:                        {js_ast.BinOpNullishCoalescing, js_ast.LNullishCoalescing},
	js_lexer.TBarBar:                                  {js_ast.BinOpLogicalOr, js_ast.LLogicalOr},
	js_lexer.TAmpersandAmpersand:                      {js_ast.BinOpLogicalAnd, js_ast.LLogicalAnd},
	js_lexer.TBar:                                     {js_ast.BinOpBitwiseOr, js_ast.LBitwiseOr},
	js_lexer.TAmpersand:                               {js_ast.BinOpBitwiseAnd, js_ast.LBitwiseAnd},
	js_lexer.TCaret:                                   {js_ast.BinOpBitwiseXor, js_ast.LBitwiseXor},
	js_lexer.TEquals:                                  {js_ast.BinOpAssign, js_ast.LAssign - 1},
	js_lexer.TPlusEquals:                              {js_ast.BinOpAddAssign, js_ast.LAssign - 1},
	js_lexer.TMinusEquals:                             {js_ast.BinOpSubAssign, js_ast.LAssign - 1},
	js_lexer.TAsteriskEquals:                          {js_ast.BinOpMulAssign, js_ast.LAssign - 1},
	js_lexer.TSlashEquals:                             {js_ast.BinOpDivAssign, js_ast.LAssign - 1},
	js_lexer.TPercentEquals:                           {js_ast.BinOpRemAssign, js_ast.LAssign - 1},
	js_lexer.TAsteriskAsteriskEquals:                  {js_ast.BinOpPowAssign, js_ast.LAssign - 1},
	js_lexer.TLessThanLessThanEquals:                  {js_ast.BinOpShlAssign, js_ast.LAssign - 1},
	js_lexer.TGreaterThanGreaterThanEquals:            {js_ast.BinOpShrAssign, js_ast.LAssign - 1},
	js_lexer.TGreaterThanGreaterThanGreaterThanEquals: {js_ast.BinOpUShrAssign, js_ast.LAssign - 1},
	js_lexer.TBarEquals:                               {js_ast.BinOpBitwiseOrAssign, js_ast.LAssign - 1},
	js_lexer.TAmpersandEquals:                         {js_ast.BinOpBitwiseAndAssign, js_ast.LAssign - 1},
	js_lexer.TCaretEquals:                             {js_ast.BinOpBitwiseXorAssign, js_ast.LAssign - 1},
	js_lexer.TQuestionQuestionEquals:                  {js_ast.BinOpNullishCoalescingAssign, js_ast.LAssign - 1},
	js_lexer.TBarBarEquals:                            {js_ast.BinOpLogicalOrAssign, js_ast.LAssign - 1},
	js_lexer.TAmpersandAmpersandEquals:                {js_ast.BinOpLogicalAndAssign, js_ast.LAssign - 1},
}

func (p *parser) parseSuffix(left js_ast.Expr, level js_ast.L) js_ast.Expr {
	for {
		switch p.lexer.Token {
		case js_lexer.TDot:
			p.lexer.Next()
			if !p.lexer.IsIdentifierOrKeyword() {
				p.lexer.Expect(js_lexer.TIdentifier)
			}
			name := p.lexer.Identifier
			nameLoc := p.lexer.Loc()
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{Target: left, Name: name, NameLoc: nameLoc}}

		case js_lexer.TQuestionDot:
			p.lexer.Next()

			switch p.lexer.Token {
			case js_lexer.TOpenBracket:
				p.lexer.Next()

				// Allow "in" inside the brackets
				oldAllowIn := p.allowIn
				p.allowIn = true
				index := p.parseExpr(js_ast.LLowest)
				p.allowIn = oldAllowIn

				p.lexer.Expect(js_lexer.TCloseBracket)
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIndex{Target: left, Index: index, IsOptionalChain: true}}

			case js_lexer.TOpenParen:
				if level >= js_ast.LCall {
					return left
				}
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ECall{
					Target:          left,
					Args:            p.parseCallArgs(),
					IsFreeCall:      isFreeCallTarget(left),
					IsOptionalChain: true,
				}}

			default:
				if !p.lexer.IsIdentifierOrKeyword() {
					p.lexer.Expect(js_lexer.TIdentifier)
				}
				name := p.lexer.Identifier
				nameLoc := p.lexer.Loc()
				p.lexer.Next()
				left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EDot{Target: left, Name: name, NameLoc: nameLoc, IsOptionalChain: true}}
			}

		case js_lexer.TNoSubstitutionTemplateLiteral:
			if level >= js_ast.LPrefix {
				return left
			}
			headLoc := p.lexer.Loc()
			headRaw := p.lexer.RawTemplateContents()
			p.lexer.Next()
			tag := left
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ETemplate{Tag: &tag, HeadLoc: headLoc, HeadRaw: headRaw}}

		case js_lexer.TTemplateHead:
			if level >= js_ast.LPrefix {
				return left
			}
			headLoc := p.lexer.Loc()
			headRaw := p.lexer.RawTemplateContents()
			parts := p.parseTemplateParts()
			tag := left
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ETemplate{Tag: &tag, HeadLoc: headLoc, HeadRaw: headRaw, Parts: parts}}

		case js_lexer.TOpenBracket:
			p.lexer.Next()

			// Allow "in" inside the brackets
			oldAllowIn := p.allowIn
			p.allowIn = true
			index := p.parseExpr(js_ast.LLowest)
			p.allowIn = oldAllowIn

			p.lexer.Expect(js_lexer.TCloseBracket)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIndex{Target: left, Index: index}}

		case js_lexer.TOpenParen:
			if level >= js_ast.LCall {
				return left
			}
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.ECall{
				Target:     left,
				Args:       p.parseCallArgs(),
				IsFreeCall: isFreeCallTarget(left),
			}}

		case js_lexer.TQuestion:
			if level >= js_ast.LConditional {
				return left
			}
			p.lexer.Next()

			// Allow "in" in between "?" and ":"
			oldAllowIn := p.allowIn
			p.allowIn = true

			yes := p.parseExpr(js_ast.LComma)

			p.allowIn = oldAllowIn

			p.lexer.Expect(js_lexer.TColon)
			no := p.parseExpr(js_ast.LComma)
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EIf{Test: left, Yes: yes, No: no}}

		case js_lexer.TMinusMinus:
			if p.lexer.HasNewlineBefore || level >= js_ast.LPostfix {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPostDec, Value: left}}

		case js_lexer.TPlusPlus:
			if p.lexer.HasNewlineBefore || level >= js_ast.LPostfix {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EUnary{Op: js_ast.UnOpPostInc, Value: left}}

		case js_lexer.TIn:
			if level >= js_ast.LCompare || !p.allowIn {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: js_ast.BinOpIn, Left: left, Right: p.parseExpr(js_ast.LCompare)}}

		default:
			binary, ok := binaryOps[p.lexer.Token]
			if !ok {
				return left
			}

			// Assignments and "**" are right-associative, so the operator binds if
			// the current level is below the operator's own level
			opLevel := js_ast.OpTable[binary.op].Level
			if level >= opLevel {
				return left
			}
			p.lexer.Next()
			left = js_ast.Expr{Loc: left.Loc, Data: &js_ast.EBinary{Op: binary.op, Left: left, Right: p.parseExpr(binary.rightLevel)}}
		}
	}
}

// A call through a plain name has an undefined "this"
func isFreeCallTarget(target js_ast.Expr) bool {
	_, ok := target.Data.(*js_ast.EIdentifier)
	return ok
}

func (p *parser) parseCallArgs() []js_ast.Expr {
	// Allow "in" inside call arguments
	oldAllowIn := p.allowIn
	p.allowIn = true

	args := []js_ast.Expr{}
	p.lexer.Expect(js_lexer.TOpenParen)

	for p.lexer.Token != js_lexer.TCloseParen {
		loc := p.lexer.Loc()
		isSpread := p.lexer.Token == js_lexer.TDotDotDot
		if isSpread {
			p.lexer.Next()
		}
		arg := p.parseExpr(js_ast.LComma)
		if isSpread {
			arg = js_ast.Expr{Loc: loc, Data: &js_ast.ESpread{Value: arg}}
		}
		args = append(args, arg)
		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	p.lexer.Expect(js_lexer.TCloseParen)
	p.allowIn = oldAllowIn
	return args
}

func (p *parser) parseTemplateParts() []js_ast.TemplatePart {
	parts := []js_ast.TemplatePart{}
	for {
		p.lexer.Next()
		value := p.parseExpr(js_ast.LLowest)
		p.lexer.RescanCloseBraceAsTemplateToken()
		tailLoc := p.lexer.Loc()
		tailRaw := p.lexer.RawTemplateContents()
		parts = append(parts, js_ast.TemplatePart{Value: value, TailLoc: tailLoc, TailRaw: tailRaw})
		if p.lexer.Token == js_lexer.TTemplateTail {
			p.lexer.Next()
			break
		}
	}
	return parts
}

func (p *parser) parseDecls() []js_ast.Decl {
	decls := []js_ast.Decl{}

	for {
		var value *js_ast.Expr
		local := p.parseBinding()

		if p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			expr := p.parseExpr(js_ast.LComma)
			value = &expr
		}

		decls = append(decls, js_ast.Decl{Binding: local, Value: value})

		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	return decls
}

func (p *parser) requireInitializers(decls []js_ast.Decl) {
	for _, d := range decls {
		if d.Value == nil {
			if _, ok := d.Binding.Data.(*js_ast.BIdentifier); ok {
				p.addError(d.Binding.Loc, "This constant must be initialized")
			}
		}
	}
}

func (p *parser) forbidInitializers(decls []js_ast.Decl, loopType string, isVar bool) {
	if len(decls) > 1 {
		p.addError(decls[0].Binding.Loc, fmt.Sprintf("for-%s loops must have a single declaration", loopType))
	} else if len(decls) == 1 && decls[0].Value != nil {
		if isVar {
			if _, ok := decls[0].Binding.Data.(*js_ast.BIdentifier); ok {
				// This is a weird special case. Initializers are allowed in "var"
				// statements with identifier bindings.
				return
			}
		}
		p.addError(decls[0].Value.Loc, fmt.Sprintf("for-%s loop variables cannot have an initializer", loopType))
	}
}

func (p *parser) parseImportClause() []js_ast.ClauseItem {
	items := []js_ast.ClauseItem{}
	p.lexer.Expect(js_lexer.TOpenBrace)

	for p.lexer.Token != js_lexer.TCloseBrace {
		alias := p.lexer.Identifier
		aliasLoc := p.lexer.Loc()
		name := js_ast.Ident{Loc: aliasLoc, Name: alias}

		// The alias may be a keyword
		isIdentifier := p.lexer.Token == js_lexer.TIdentifier
		if !p.lexer.IsIdentifierOrKeyword() {
			p.lexer.Expect(js_lexer.TIdentifier)
		}
		p.lexer.Next()

		if p.lexer.IsContextualKeyword("as") {
			p.lexer.Next()
			name = js_ast.Ident{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
			p.lexer.Expect(js_lexer.TIdentifier)
		} else if !isIdentifier {
			// An import where the name is a keyword must have an alias
			p.lexer.Unexpected()
		}

		items = append(items, js_ast.ClauseItem{Alias: alias, AliasLoc: aliasLoc, Name: name})

		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	p.lexer.Expect(js_lexer.TCloseBrace)
	return items
}

func (p *parser) parseExportClause() []js_ast.ClauseItem {
	items := []js_ast.ClauseItem{}
	firstKeywordItemLoc := logger.Loc{}
	p.lexer.Expect(js_lexer.TOpenBrace)

	for p.lexer.Token != js_lexer.TCloseBrace {
		alias := p.lexer.Identifier
		aliasLoc := p.lexer.Loc()
		name := js_ast.Ident{Loc: aliasLoc, Name: alias}

		// The name can actually be a keyword if we're really an "export from"
		// statement. However, we won't know until later. Allow keywords as
		// identifiers for now and throw an error later if there's no "from".
		//
		//   // This is fine
		//   export { default } from 'path'
		//
		//   // This is a syntax error
		//   export { default }
		//
		if p.lexer.Token != js_lexer.TIdentifier {
			if !p.lexer.IsIdentifierOrKeyword() {
				p.lexer.Expect(js_lexer.TIdentifier)
			}
			if firstKeywordItemLoc.Start == 0 {
				firstKeywordItemLoc = p.lexer.Loc()
			}
		}
		p.lexer.Next()

		if p.lexer.IsContextualKeyword("as") {
			p.lexer.Next()
			alias = p.lexer.Identifier
			aliasLoc = p.lexer.Loc()

			// The alias may be a keyword
			if !p.lexer.IsIdentifierOrKeyword() {
				p.lexer.Expect(js_lexer.TIdentifier)
			}
			p.lexer.Next()
		}

		items = append(items, js_ast.ClauseItem{Alias: alias, AliasLoc: aliasLoc, Name: name})

		if p.lexer.Token != js_lexer.TComma {
			break
		}
		p.lexer.Next()
	}

	p.lexer.Expect(js_lexer.TCloseBrace)

	// Throw an error here if we found a keyword earlier and this isn't an
	// "export from" statement after all
	if firstKeywordItemLoc.Start != 0 && !p.lexer.IsContextualKeyword("from") {
		r := js_lexer.RangeOfIdentifier(p.source, firstKeywordItemLoc)
		p.addRangeError(r, fmt.Sprintf("Expected identifier but found %q", p.source.TextForRange(r)))
		panic(js_lexer.LexerPanic{})
	}

	return items
}

func (p *parser) parseBinding() js_ast.Binding {
	loc := p.lexer.Loc()

	switch p.lexer.Token {
	case js_lexer.TIdentifier:
		name := p.lexer.Identifier
		p.lexer.Next()
		return js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: name}}

	case js_lexer.TOpenBracket:
		p.lexer.Next()
		items := []js_ast.ArrayBinding{}
		hasSpread := false

		// "in" expressions are allowed
		oldAllowIn := p.allowIn
		p.allowIn = true

		for p.lexer.Token != js_lexer.TCloseBracket {
			if p.lexer.Token == js_lexer.TComma {
				binding := js_ast.Binding{Loc: p.lexer.Loc(), Data: &js_ast.BMissing{}}
				items = append(items, js_ast.ArrayBinding{Binding: binding})
			} else {
				if p.lexer.Token == js_lexer.TDotDotDot {
					p.lexer.Next()
					hasSpread = true
				}

				binding := p.parseBinding()

				var defaultValue *js_ast.Expr
				if !hasSpread && p.lexer.Token == js_lexer.TEquals {
					p.lexer.Next()
					value := p.parseExpr(js_ast.LComma)
					defaultValue = &value
				}

				items = append(items, js_ast.ArrayBinding{Binding: binding, DefaultValue: defaultValue})

				// Commas after spread elements are not allowed
				if hasSpread && p.lexer.Token == js_lexer.TComma {
					p.addRangeError(p.lexer.Range(), "Unexpected \",\" after rest pattern")
					panic(js_lexer.LexerPanic{})
				}
			}

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}

		p.allowIn = oldAllowIn
		p.lexer.Expect(js_lexer.TCloseBracket)
		return js_ast.Binding{Loc: loc, Data: &js_ast.BArray{Items: items, HasSpread: hasSpread}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		properties := []js_ast.PropertyBinding{}

		// "in" expressions are allowed
		oldAllowIn := p.allowIn
		p.allowIn = true

		for p.lexer.Token != js_lexer.TCloseBrace {
			property := p.parsePropertyBinding()
			properties = append(properties, property)

			// Commas after spread elements are not allowed
			if property.IsSpread && p.lexer.Token == js_lexer.TComma {
				p.addRangeError(p.lexer.Range(), "Unexpected \",\" after rest pattern")
				panic(js_lexer.LexerPanic{})
			}

			if p.lexer.Token != js_lexer.TComma {
				break
			}
			p.lexer.Next()
		}

		p.allowIn = oldAllowIn
		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Binding{Loc: loc, Data: &js_ast.BObject{Properties: properties}}
	}

	p.lexer.Expect(js_lexer.TIdentifier)
	return js_ast.Binding{}
}

func (p *parser) parseFn(name *js_ast.Ident, opts fnOpts) js_ast.Fn {
	args := []js_ast.Arg{}
	hasRestArg := false
	p.lexer.Expect(js_lexer.TOpenParen)

	// Default values and parameter types are evaluated in the enclosing
	// function's context for "await" and "yield"
	oldFnOpts := p.currentFnOpts
	p.currentFnOpts = opts

	for p.lexer.Token != js_lexer.TCloseParen {
		doc := p.parseJSDoc(p.lexer.JSDocBefore, true /* isInline */)

		if !hasRestArg && p.lexer.Token == js_lexer.TDotDotDot {
			p.lexer.Next()
			hasRestArg = true
		}

		arg := p.parseBinding()

		var defaultValue *js_ast.Expr
		if !hasRestArg && p.lexer.Token == js_lexer.TEquals {
			p.lexer.Next()
			value := p.parseExpr(js_ast.LComma)
			defaultValue = &value
		}

		args = append(args, js_ast.Arg{Binding: arg, Default: defaultValue, JSDoc: doc})

		if p.lexer.Token != js_lexer.TComma {
			break
		}
		if hasRestArg {
			p.lexer.Expect(js_lexer.TCloseParen)
		}
		p.lexer.Next()
	}

	p.currentFnOpts = oldFnOpts
	p.lexer.Expect(js_lexer.TCloseParen)
	body := p.parseFnBody(opts)

	return js_ast.Fn{
		Name:        name,
		Args:        args,
		Body:        body,
		HasRestArg:  hasRestArg,
		IsAsync:     opts.allowAwait,
		IsGenerator: opts.allowYield,
	}
}

func (p *parser) parseClass(name *js_ast.Ident) js_ast.Class {
	var extends *js_ast.Expr

	if p.lexer.Token == js_lexer.TExtends {
		p.lexer.Next()
		value := p.parseExpr(js_ast.LNew)
		extends = &value
	}

	bodyLoc := p.lexer.Loc()
	p.lexer.Expect(js_lexer.TOpenBrace)
	properties := []js_ast.Property{}

	// Allow "in" inside class bodies
	oldAllowIn := p.allowIn
	p.allowIn = true

	for p.lexer.Token != js_lexer.TCloseBrace {
		if p.lexer.Token == js_lexer.TSemicolon {
			p.lexer.Next()
			continue
		}

		doc := p.parseJSDoc(p.lexer.JSDocBefore, false /* isInline */)
		property := p.parseProperty(propertyContextClass, js_ast.PropertyNormal, propertyOpts{}, nil)
		property.JSDoc = doc
		properties = append(properties, property)
	}

	p.allowIn = oldAllowIn
	p.lexer.Expect(js_lexer.TCloseBrace)
	return js_ast.Class{Name: name, Extends: extends, BodyLoc: bodyLoc, Properties: properties}
}

func (p *parser) parseLabelName() *js_ast.Ident {
	if p.lexer.Token != js_lexer.TIdentifier || p.lexer.HasNewlineBefore {
		return nil
	}

	name := js_ast.Ident{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
	p.lexer.Next()
	return &name
}

func (p *parser) parsePath() (string, logger.Range) {
	path := p.lexer.StringLiteral
	r := p.lexer.Range()
	p.lexer.Expect(js_lexer.TStringLiteral)
	return path, r
}

// This assumes the "function" token has already been parsed
func (p *parser) parseFnStmt(loc logger.Loc, opts parseStmtOpts, isAsync bool) js_ast.Stmt {
	isGenerator := p.lexer.Token == js_lexer.TAsterisk
	if isGenerator {
		p.lexer.Next()
	}

	var name *js_ast.Ident

	if !opts.isNameOptional || p.lexer.Token == js_lexer.TIdentifier {
		name = &js_ast.Ident{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
		p.lexer.Expect(js_lexer.TIdentifier)
	}

	fn := p.parseFn(name, fnOpts{
		allowAwait: isAsync,
		allowYield: isGenerator,
	})
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SFunction{Fn: fn, IsExport: opts.isExport, JSDoc: opts.jsdoc}}
}

type parseStmtOpts struct {
	allowImportAndExport bool
	isExport             bool
	isNameOptional       bool // For "export default" pseudo-statements

	// The comment before "export" belongs to the declaration after it
	jsdoc *js_ast.JSDoc
}

// "let" is only a keyword in front of a binding
func (p *parser) isLetDeclaration() bool {
	switch p.lexer.Token {
	case js_lexer.TIdentifier, js_lexer.TOpenBracket, js_lexer.TOpenBrace:
		return true
	}
	return false
}

func (p *parser) parseStmt(opts parseStmtOpts) js_ast.Stmt {
	loc := p.lexer.Loc()

	if opts.jsdoc == nil {
		opts.jsdoc = p.parseJSDoc(p.lexer.JSDocBefore, false /* isInline */)
	}

	switch p.lexer.Token {
	case js_lexer.TSemicolon:
		p.lexer.Next()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SEmpty{}}

	case js_lexer.TExport:
		if !opts.allowImportAndExport {
			p.lexer.Unexpected()
		}
		p.lexer.Next()

		switch p.lexer.Token {
		case js_lexer.TClass, js_lexer.TConst, js_lexer.TFunction, js_lexer.TVar:
			opts.isExport = true
			return p.parseStmt(opts)

		case js_lexer.TIdentifier:
			if p.lexer.IsContextualKeyword("let") {
				opts.isExport = true
				return p.parseStmt(opts)
			}

			if p.lexer.IsContextualKeyword("async") {
				p.lexer.Next()
				p.lexer.Expect(js_lexer.TFunction)
				opts.isExport = true
				return p.parseFnStmt(loc, opts, true /* isAsync */)
			}

			p.lexer.Unexpected()
			return js_ast.Stmt{}

		case js_lexer.TDefault:
			p.lexer.Next()

			if p.lexer.Token == js_lexer.TFunction || p.lexer.Token == js_lexer.TClass {
				stmt := p.parseStmt(parseStmtOpts{isNameOptional: true, jsdoc: opts.jsdoc})
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{Value: js_ast.ExprOrStmt{Stmt: &stmt}}}
			}

			if p.lexer.IsContextualKeyword("async") {
				asyncLoc := p.lexer.Loc()
				p.lexer.Next()
				if p.lexer.Token == js_lexer.TFunction && !p.lexer.HasNewlineBefore {
					p.lexer.Next()
					stmt := p.parseFnStmt(asyncLoc, parseStmtOpts{isNameOptional: true, jsdoc: opts.jsdoc}, true /* isAsync */)
					return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{Value: js_ast.ExprOrStmt{Stmt: &stmt}}}
				}
				expr := p.parseSuffix(p.parseAsyncExpr(asyncLoc, js_ast.LComma), js_ast.LComma)
				p.lexer.ExpectOrInsertSemicolon()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{Value: js_ast.ExprOrStmt{Expr: &expr}}}
			}

			expr := p.parseExpr(js_ast.LComma)
			p.lexer.ExpectOrInsertSemicolon()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportDefault{Value: js_ast.ExprOrStmt{Expr: &expr}}}

		case js_lexer.TAsterisk:
			p.lexer.Next()
			var alias *js_ast.Ident

			if p.lexer.IsContextualKeyword("as") {
				// "export * as ns from 'path'"
				p.lexer.Next()
				alias = &js_ast.Ident{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
				if !p.lexer.IsIdentifierOrKeyword() {
					p.lexer.Expect(js_lexer.TIdentifier)
				}
				p.lexer.Next()
			}

			// "export * from 'path'"
			p.lexer.ExpectContextualKeyword("from")
			path, pathRange := p.parsePath()
			p.lexer.ExpectOrInsertSemicolon()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportStar{Alias: alias, Path: path, PathRange: pathRange}}

		case js_lexer.TOpenBrace:
			items := p.parseExportClause()

			if p.lexer.IsContextualKeyword("from") {
				// "export {a, b} from 'path'"
				p.lexer.Next()
				path, pathRange := p.parsePath()
				p.lexer.ExpectOrInsertSemicolon()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportFrom{Items: items, Path: path, PathRange: pathRange}}
			}

			// "export {a, b}"
			p.lexer.ExpectOrInsertSemicolon()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExportClause{Items: items}}

		default:
			p.lexer.Unexpected()
			return js_ast.Stmt{}
		}

	case js_lexer.TFunction:
		p.lexer.Next()
		return p.parseFnStmt(loc, opts, false /* isAsync */)

	case js_lexer.TClass:
		p.lexer.Next()
		var name *js_ast.Ident

		if !opts.isNameOptional || p.lexer.Token == js_lexer.TIdentifier {
			name = &js_ast.Ident{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
			p.lexer.Expect(js_lexer.TIdentifier)
		}

		class := p.parseClass(name)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SClass{Class: class, IsExport: opts.isExport, JSDoc: opts.jsdoc}}

	case js_lexer.TVar:
		p.lexer.Next()
		decls := p.parseDecls()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalVar, Decls: decls, IsExport: opts.isExport, JSDoc: opts.jsdoc}}

	case js_lexer.TConst:
		p.lexer.Next()
		decls := p.parseDecls()
		p.lexer.ExpectOrInsertSemicolon()
		p.requireInitializers(decls)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalConst, Decls: decls, IsExport: opts.isExport, JSDoc: opts.jsdoc}}

	case js_lexer.TIf:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		yes := p.parseStmt(parseStmtOpts{})
		var no *js_ast.Stmt
		if p.lexer.Token == js_lexer.TElse {
			p.lexer.Next()
			stmt := p.parseStmt(parseStmtOpts{})
			no = &stmt
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SIf{Test: test, Yes: yes, No: no}}

	case js_lexer.TDo:
		p.lexer.Next()
		body := p.parseStmt(parseStmtOpts{})
		p.lexer.Expect(js_lexer.TWhile)
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)

		// This is a weird corner case where automatic semicolon insertion applies
		// even without a newline present
		if p.lexer.Token == js_lexer.TSemicolon {
			p.lexer.Next()
		}
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDoWhile{Body: body, Test: test}}

	case js_lexer.TWhile:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		body := p.parseStmt(parseStmtOpts{})
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SWhile{Test: test, Body: body}}

	case js_lexer.TWith:
		// Modules are always strict mode code
		p.addRangeError(p.lexer.Range(), "With statements cannot be used in strict mode")
		panic(js_lexer.LexerPanic{})

	case js_lexer.TSwitch:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenParen)
		test := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)

		bodyLoc := p.lexer.Loc()
		p.lexer.Expect(js_lexer.TOpenBrace)
		cases := []js_ast.Case{}
		foundDefault := false

		for p.lexer.Token != js_lexer.TCloseBrace {
			var value *js_ast.Expr
			body := []js_ast.Stmt{}

			if p.lexer.Token == js_lexer.TDefault {
				if foundDefault {
					p.addRangeError(p.lexer.Range(), "Multiple default clauses are not allowed")
					panic(js_lexer.LexerPanic{})
				}
				foundDefault = true
				p.lexer.Next()
				p.lexer.Expect(js_lexer.TColon)
			} else {
				p.lexer.Expect(js_lexer.TCase)
				expr := p.parseExpr(js_ast.LLowest)
				value = &expr
				p.lexer.Expect(js_lexer.TColon)
			}

		caseBody:
			for {
				switch p.lexer.Token {
				case js_lexer.TCloseBrace, js_lexer.TCase, js_lexer.TDefault:
					break caseBody

				default:
					body = append(body, p.parseStmt(parseStmtOpts{}))
				}
			}

			cases = append(cases, js_ast.Case{Value: value, Body: body})
		}

		p.lexer.Expect(js_lexer.TCloseBrace)
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SSwitch{Test: test, BodyLoc: bodyLoc, Cases: cases}}

	case js_lexer.TTry:
		p.lexer.Next()
		p.lexer.Expect(js_lexer.TOpenBrace)
		body := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
		p.lexer.Next()

		var catch *js_ast.Catch
		var finally *js_ast.Finally

		if p.lexer.Token == js_lexer.TCatch {
			catchLoc := p.lexer.Loc()
			p.lexer.Next()
			var binding *js_ast.Binding

			// The catch binding is optional, and can be omitted
			if p.lexer.Token != js_lexer.TOpenBrace {
				p.lexer.Expect(js_lexer.TOpenParen)
				value := p.parseBinding()
				binding = &value
				p.lexer.Expect(js_lexer.TCloseParen)
			}

			p.lexer.Expect(js_lexer.TOpenBrace)
			stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
			p.lexer.Next()
			catch = &js_ast.Catch{Loc: catchLoc, Binding: binding, Body: stmts}
		}

		if p.lexer.Token == js_lexer.TFinally || catch == nil {
			finallyLoc := p.lexer.Loc()
			p.lexer.Expect(js_lexer.TFinally)
			p.lexer.Expect(js_lexer.TOpenBrace)
			stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
			p.lexer.Next()
			finally = &js_ast.Finally{Loc: finallyLoc, Stmts: stmts}
		}

		return js_ast.Stmt{Loc: loc, Data: &js_ast.STry{Body: body, Catch: catch, Finally: finally}}

	case js_lexer.TFor:
		return p.parseForStmt(loc)

	case js_lexer.TImport:
		p.lexer.Next()
		stmt := js_ast.SImport{}

		switch p.lexer.Token {
		case js_lexer.TOpenParen, js_lexer.TDot:
			// "import('path')"
			// "import.meta"
			expr := p.parseSuffix(p.parseImportExpr(loc), js_ast.LLowest)
			p.lexer.ExpectOrInsertSemicolon()
			return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: expr}}

		case js_lexer.TStringLiteral:
			// "import 'path'"
			if !opts.allowImportAndExport {
				p.lexer.Unexpected()
			}

		case js_lexer.TAsterisk:
			// "import * as ns from 'path'"
			if !opts.allowImportAndExport {
				p.lexer.Unexpected()
			}
			p.lexer.Next()
			p.lexer.ExpectContextualKeyword("as")
			stmt.Namespace = &js_ast.Ident{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
			p.lexer.Expect(js_lexer.TIdentifier)
			p.lexer.ExpectContextualKeyword("from")

		case js_lexer.TOpenBrace:
			// "import {item1, item2} from 'path'"
			if !opts.allowImportAndExport {
				p.lexer.Unexpected()
			}
			items := p.parseImportClause()
			stmt.Items = &items
			p.lexer.ExpectContextualKeyword("from")

		case js_lexer.TIdentifier:
			// "import defaultItem from 'path'"
			if !opts.allowImportAndExport {
				p.lexer.Unexpected()
			}
			stmt.DefaultName = &js_ast.Ident{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
			p.lexer.Next()

			if p.lexer.Token == js_lexer.TComma {
				p.lexer.Next()
				switch p.lexer.Token {
				case js_lexer.TAsterisk:
					// "import defaultItem, * as ns from 'path'"
					p.lexer.Next()
					p.lexer.ExpectContextualKeyword("as")
					stmt.Namespace = &js_ast.Ident{Loc: p.lexer.Loc(), Name: p.lexer.Identifier}
					p.lexer.Expect(js_lexer.TIdentifier)

				case js_lexer.TOpenBrace:
					// "import defaultItem, {item1, item2} from 'path'"
					items := p.parseImportClause()
					stmt.Items = &items

				default:
					p.lexer.Unexpected()
				}
			}

			p.lexer.ExpectContextualKeyword("from")

		default:
			p.lexer.Unexpected()
			return js_ast.Stmt{}
		}

		stmt.Path, stmt.PathRange = p.parsePath()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &stmt}

	case js_lexer.TBreak:
		p.lexer.Next()
		name := p.parseLabelName()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBreak{Label: name}}

	case js_lexer.TContinue:
		p.lexer.Next()
		name := p.parseLabelName()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SContinue{Label: name}}

	case js_lexer.TReturn:
		p.lexer.Next()
		var value *js_ast.Expr
		if p.lexer.Token != js_lexer.TSemicolon &&
			!p.lexer.HasNewlineBefore &&
			p.lexer.Token != js_lexer.TCloseBrace &&
			p.lexer.Token != js_lexer.TEndOfFile {
			expr := p.parseExpr(js_ast.LLowest)
			value = &expr
		}
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SReturn{Value: value}}

	case js_lexer.TThrow:
		p.lexer.Next()
		if p.lexer.HasNewlineBefore {
			p.addError(logger.Loc{Start: loc.Start + 5}, "Unexpected newline after \"throw\"")
			panic(js_lexer.LexerPanic{})
		}
		expr := p.parseExpr(js_ast.LLowest)
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SThrow{Value: expr}}

	case js_lexer.TDebugger:
		p.lexer.Next()
		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SDebugger{}}

	case js_lexer.TOpenBrace:
		p.lexer.Next()
		stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
		p.lexer.Next()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SBlock{Stmts: stmts}}

	default:
		isIdentifier := p.lexer.Token == js_lexer.TIdentifier
		name := p.lexer.Identifier

		var expr js_ast.Expr

		if isIdentifier {
			p.lexer.Next()

			switch {
			case name == "let" && p.isLetDeclaration():
				decls := p.parseDecls()
				p.lexer.ExpectOrInsertSemicolon()
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SLocal{Kind: js_ast.LocalLet, Decls: decls, IsExport: opts.isExport, JSDoc: opts.jsdoc}}

			case name == "async" && p.lexer.Token == js_lexer.TFunction && !p.lexer.HasNewlineBefore:
				p.lexer.Next()
				return p.parseFnStmt(loc, opts, true /* isAsync */)

			case name == "async":
				expr = p.parseAsyncExpr(loc, js_ast.LLowest)

			case name == "await" && p.currentFnOpts.allowAwait:
				value := js_ast.Expr{Loc: loc, Data: &js_ast.EAwait{Value: p.parseExpr(js_ast.LPrefix)}}
				expr = p.parseSuffix(value, js_ast.LLowest)

			case name == "yield" && p.currentFnOpts.allowYield:
				expr = p.parseSuffix(p.parseYieldExpr(loc), js_ast.LLowest)

			case p.lexer.Token == js_lexer.TColon:
				// Parse a labeled statement
				p.lexer.Next()
				stmt := p.parseStmt(parseStmtOpts{})
				return js_ast.Stmt{Loc: loc, Data: &js_ast.SLabel{Name: js_ast.Ident{Loc: loc, Name: name}, Stmt: stmt}}

			case p.lexer.Token == js_lexer.TEqualsGreaterThan:
				p.lexer.Next()
				arg := js_ast.Arg{Binding: js_ast.Binding{Loc: loc, Data: &js_ast.BIdentifier{Name: name}}}
				arrow := js_ast.Expr{Loc: loc, Data: p.parseArrowBody([]js_ast.Arg{arg}, fnOpts{})}
				expr = p.parseSuffix(arrow, js_ast.LLowest)

			default:
				ident := js_ast.Expr{Loc: loc, Data: &js_ast.EIdentifier{Name: name}}
				expr = p.parseSuffix(ident, js_ast.LLowest)
			}
		} else {
			expr = p.parseExpr(js_ast.LLowest)
		}

		p.lexer.ExpectOrInsertSemicolon()
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SExpr{Value: expr, JSDoc: opts.jsdoc}}
	}
}

// This assumes the "for" token has not been parsed yet
func (p *parser) parseForStmt(loc logger.Loc) js_ast.Stmt {
	p.lexer.Next()

	// "for await (let x of y) {}"
	isAwait := p.lexer.IsContextualKeyword("await")
	if isAwait {
		if !p.currentFnOpts.allowAwait {
			p.addRangeError(p.lexer.Range(), "Cannot use \"await\" outside an async function")
			isAwait = false
		}
		p.lexer.Next()
	}

	p.lexer.Expect(js_lexer.TOpenParen)

	var init *js_ast.Stmt
	var test *js_ast.Expr
	var update *js_ast.Expr

	// "in" expressions aren't allowed here
	p.allowIn = false

	decls := []js_ast.Decl{}
	initLoc := p.lexer.Loc()
	isVar := false

	switch p.lexer.Token {
	case js_lexer.TVar:
		isVar = true
		p.lexer.Next()
		decls = p.parseDecls()
		init = &js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{Kind: js_ast.LocalVar, Decls: decls}}

	case js_lexer.TConst:
		p.lexer.Next()
		decls = p.parseDecls()
		init = &js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{Kind: js_ast.LocalConst, Decls: decls}}

	case js_lexer.TSemicolon:

	default:
		if p.lexer.IsContextualKeyword("let") {
			p.lexer.Next()
			if p.isLetDeclaration() {
				decls = p.parseDecls()
				init = &js_ast.Stmt{Loc: initLoc, Data: &js_ast.SLocal{Kind: js_ast.LocalLet, Decls: decls}}
				break
			}
			ident := js_ast.Expr{Loc: initLoc, Data: &js_ast.EIdentifier{Name: "let"}}
			init = &js_ast.Stmt{Loc: initLoc, Data: &js_ast.SExpr{Value: p.parseSuffix(ident, js_ast.LLowest)}}
			break
		}
		init = &js_ast.Stmt{Loc: initLoc, Data: &js_ast.SExpr{Value: p.parseExpr(js_ast.LLowest)}}
	}

	// "in" expressions are allowed again
	p.allowIn = true

	// Detect for-of loops
	if p.lexer.IsContextualKeyword("of") || isAwait {
		if isAwait && !p.lexer.IsContextualKeyword("of") {
			if init != nil {
				p.lexer.ExpectedString("\"of\"")
			} else {
				p.lexer.Unexpected()
			}
		}
		if init == nil {
			p.lexer.Unexpected()
		}
		p.forbidInitializers(decls, "of", false)
		p.lexer.Next()
		value := p.parseExpr(js_ast.LComma)
		p.lexer.Expect(js_lexer.TCloseParen)
		body := p.parseStmt(parseStmtOpts{})
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SForOf{IsAwait: isAwait, Init: *init, Value: value, Body: body}}
	}

	// Detect for-in loops
	if p.lexer.Token == js_lexer.TIn {
		if init == nil {
			p.lexer.Unexpected()
		}
		p.forbidInitializers(decls, "in", isVar)
		p.lexer.Next()
		value := p.parseExpr(js_ast.LLowest)
		p.lexer.Expect(js_lexer.TCloseParen)
		body := p.parseStmt(parseStmtOpts{})
		return js_ast.Stmt{Loc: loc, Data: &js_ast.SForIn{Init: *init, Value: value, Body: body}}
	}

	// Only require "const" statement initializers when we know we're a normal for loop
	if init != nil {
		if local, ok := init.Data.(*js_ast.SLocal); ok && local.Kind == js_ast.LocalConst {
			p.requireInitializers(decls)
		}
	}

	p.lexer.Expect(js_lexer.TSemicolon)

	if p.lexer.Token != js_lexer.TSemicolon {
		expr := p.parseExpr(js_ast.LLowest)
		test = &expr
	}

	p.lexer.Expect(js_lexer.TSemicolon)

	if p.lexer.Token != js_lexer.TCloseParen {
		expr := p.parseExpr(js_ast.LLowest)
		update = &expr
	}

	p.lexer.Expect(js_lexer.TCloseParen)
	body := p.parseStmt(parseStmtOpts{})
	return js_ast.Stmt{Loc: loc, Data: &js_ast.SFor{Init: init, Test: test, Update: update, Body: body}}
}

func (p *parser) parseFnBody(opts fnOpts) js_ast.FnBody {
	oldFnOpts := p.currentFnOpts
	p.currentFnOpts = opts

	loc := p.lexer.Loc()
	p.lexer.Expect(js_lexer.TOpenBrace)
	stmts := p.parseStmtsUpTo(js_lexer.TCloseBrace, parseStmtOpts{})
	p.lexer.Next()

	p.currentFnOpts = oldFnOpts
	return js_ast.FnBody{Loc: loc, Stmts: stmts}
}

func (p *parser) parseStmtsUpTo(end js_lexer.T, opts parseStmtOpts) []js_ast.Stmt {
	stmts := []js_ast.Stmt{}
	isDirectivePrologue := true

	for p.lexer.Token != end {
		isStringStart := p.lexer.Token == js_lexer.TStringLiteral
		stmt := p.parseStmt(opts)

		// Directives are only recognized at the start of the list
		if isDirectivePrologue {
			isDirectivePrologue = false
			if s, ok := stmt.Data.(*js_ast.SExpr); ok && isStringStart {
				if str, ok := s.Value.Data.(*js_ast.EString); ok {
					stmt.Data = &js_ast.SDirective{Value: str.Value}
					isDirectivePrologue = true
				}
			}
		}

		stmts = append(stmts, stmt)
	}

	return stmts
}

func Parse(log logger.Log, source logger.Source, options Options) (result js_ast.AST, ok bool) {
	ok = true
	defer func() {
		r := recover()
		if _, isLexerPanic := r.(js_lexer.LexerPanic); isLexerPanic {
			ok = false
		} else if r != nil {
			panic(r)
		}
	}()

	p := &parser{
		log:     log,
		source:  source,
		lexer:   js_lexer.NewLexer(log, source),
		options: options,
		allowIn: true,
	}

	// Strip off the hashbang comment
	if p.lexer.Token == js_lexer.THashbang {
		result.Hashbang = p.lexer.Identifier
		p.lexer.Next()
	}

	result.Stmts = p.parseStmtsUpTo(js_lexer.TEndOfFile, parseStmtOpts{allowImportAndExport: true})
	ok = !log.HasErrors()
	return
}
