package js_printer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/js_lexer"
)

var positiveInfinity = math.Inf(1)
var negativeInfinity = math.Inf(-1)

const hexChars = "0123456789ABCDEF"

// Quotes a WTF-8 string using double quotes. Unpaired surrogates are written
// as escape sequences since they can't be represented in UTF-8 output.
func Quote(text string, asciiOnly bool) string {
	b := strings.Builder{}
	i := 0
	n := len(text)
	b.WriteByte('"')

	for i < n {
		c := text[i]

		// Fast path: a run of characters that don't need escaping
		if c >= 0x20 && c <= 0x7E && c != '\\' && c != '"' {
			start := i
			i += 1
			for i < n {
				c = text[i]
				if c < 0x20 || c > 0x7E || c == '\\' || c == '"' {
					break
				}
				i += 1
			}
			b.WriteString(text[start:i])
			continue
		}

		switch c {
		case '\x00':
			// We don't want "\x001" to be written as "\01"
			if i+1 >= n || text[i+1] < '0' || text[i+1] > '9' {
				b.WriteString("\\0")
			} else {
				b.WriteString("\\x00")
			}
			i++

		case '\b':
			b.WriteString("\\b")
			i++

		case '\f':
			b.WriteString("\\f")
			i++

		case '\n':
			b.WriteString("\\n")
			i++

		case '\r':
			b.WriteString("\\r")
			i++

		case '\t':
			b.WriteString("\\t")
			i++

		case '\v':
			b.WriteString("\\v")
			i++

		case '\\':
			b.WriteString("\\\\")
			i++

		case '"':
			b.WriteString("\\\"")
			i++

		default:
			r, width := js_lexer.DecodeWTF8Rune(text[i:])
			if width == 0 {
				width = 1
			}
			i += width

			switch {
			case r < 0x20:
				b.WriteString("\\x")
				b.WriteByte(hexChars[r>>4])
				b.WriteByte(hexChars[r&15])

			case r >= 0xD800 && r <= 0xDFFF, r == '\u2028', r == '\u2029':
				writeUnicodeEscape(&b, r)

			case r <= 0x7F || !asciiOnly:
				b.WriteString(text[i-width : i])

			case r <= 0xFFFF:
				writeUnicodeEscape(&b, r)

			default:
				r -= 0x10000
				writeUnicodeEscape(&b, 0xD800+((r>>10)&0x3FF))
				writeUnicodeEscape(&b, 0xDC00+(r&0x3FF))
			}
		}
	}

	b.WriteByte('"')
	return b.String()
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	b.WriteString("\\u")
	b.WriteByte(hexChars[(r>>12)&15])
	b.WriteByte(hexChars[(r>>8)&15])
	b.WriteByte(hexChars[(r>>4)&15])
	b.WriteByte(hexChars[r&15])
}

type printer struct {
	options            Options
	indent             int
	js                 []byte
	stmtStart          int
	exportDefaultStart int
	arrowExprStart     int
	prevOp             js_ast.OpCode
	prevOpEnd          int
	prevNumEnd         int
	prevRegExpEnd      int
}

func (p *printer) print(text string) {
	p.js = append(p.js, text...)
}

func (p *printer) printIndent() {
	for i := 0; i < p.indent; i++ {
		p.print("  ")
	}
}

func (p *printer) printIdentifier(name string) {
	p.printSpaceBeforeIdentifier()
	p.print(name)
}

func (p *printer) printSpace() {
	p.print(" ")
}

func (p *printer) printNewline() {
	p.print("\n")
}

func (p *printer) printSpaceBeforeOperator(next js_ast.OpCode) {
	if p.prevOpEnd == len(p.js) {
		prev := p.prevOp

		// "+ + y" => "+ +y"
		// "+ ++ y" => "+ ++y"
		// "x + + y" => "x+ +y"
		// "x ++ + y" => "x+++y"
		// "x + ++ y" => "x+ ++y"
		// "-- >" => "-- >"
		// "< ! --" => "<! --"
		if ((prev == js_ast.BinOpAdd || prev == js_ast.UnOpPos) && (next == js_ast.BinOpAdd || next == js_ast.UnOpPos || next == js_ast.UnOpPreInc)) ||
			((prev == js_ast.BinOpSub || prev == js_ast.UnOpNeg) && (next == js_ast.BinOpSub || next == js_ast.UnOpNeg || next == js_ast.UnOpPreDec)) ||
			(prev == js_ast.UnOpPostDec && next == js_ast.BinOpGt) ||
			(prev == js_ast.UnOpNot && next == js_ast.UnOpPreDec && len(p.js) > 1 && p.js[len(p.js)-2] == '<') {
			p.print(" ")
		}
	}
}

func (p *printer) printSemicolonAfterStatement() {
	p.print(";\n")
}

func (p *printer) printSpaceBeforeIdentifier() {
	buffer := p.js
	n := len(buffer)
	if n == 0 {
		return
	}
	c, _ := utf8.DecodeLastRune(buffer)
	if js_lexer.IsIdentifierContinue(c) || n == p.prevRegExpEnd {
		p.print(" ")
	}
}

func (p *printer) printQuoted(text string) {
	p.print(Quote(text, p.options.ASCIIOnly))
}

func (p *printer) printBinding(binding js_ast.Binding) {
	switch b := binding.Data.(type) {
	case *js_ast.BMissing:

	case *js_ast.BIdentifier:
		p.printIdentifier(b.Name)

	case *js_ast.BArray:
		p.print("[")
		for i, item := range b.Items {
			if i != 0 {
				p.print(",")
				p.printSpace()
			}
			if b.HasSpread && i+1 == len(b.Items) {
				p.print("...")
			}
			p.printBinding(item.Binding)

			if item.DefaultValue != nil {
				p.printSpace()
				p.print("=")
				p.printSpace()
				p.printExpr(*item.DefaultValue, js_ast.LComma, 0)
			}

			// Make sure there's a comma after trailing missing items
			if _, ok := item.Binding.Data.(*js_ast.BMissing); ok && i == len(b.Items)-1 {
				p.print(",")
			}
		}
		p.print("]")

	case *js_ast.BObject:
		p.print("{")
		for i, item := range b.Properties {
			if i != 0 {
				p.print(",")
				p.printSpace()
			}

			if item.IsSpread {
				p.print("...")
			} else {
				if item.IsComputed {
					p.print("[")
					p.printExpr(item.Key, js_ast.LComma, 0)
					p.print("]:")
					p.printSpace()
					p.printBinding(item.Value)

					if item.DefaultValue != nil {
						p.printSpace()
						p.print("=")
						p.printSpace()
						p.printExpr(*item.DefaultValue, js_ast.LComma, 0)
					}
					continue
				}

				if str, ok := item.Key.Data.(*js_ast.EString); ok && js_lexer.IsIdentifier(str.Value) {
					p.printIdentifier(str.Value)

					// Use a shorthand property if the names are the same
					if id, ok := item.Value.Data.(*js_ast.BIdentifier); ok && str.Value == id.Name {
						if item.DefaultValue != nil {
							p.printSpace()
							p.print("=")
							p.printSpace()
							p.printExpr(*item.DefaultValue, js_ast.LComma, 0)
						}
						continue
					}
				} else {
					p.printExpr(item.Key, js_ast.LLowest, 0)
				}

				p.print(":")
				p.printSpace()
			}
			p.printBinding(item.Value)

			if item.DefaultValue != nil {
				p.printSpace()
				p.print("=")
				p.printSpace()
				p.printExpr(*item.DefaultValue, js_ast.LComma, 0)
			}
		}
		p.print("}")

	default:
		panic(fmt.Sprintf("Unexpected binding of type %T", binding.Data))
	}
}

func (p *printer) printFnArgs(args []js_ast.Arg, hasRestArg bool) {
	p.print("(")

	for i, arg := range args {
		if i != 0 {
			p.print(",")
			p.printSpace()
		}
		if arg.JSDoc != nil {
			p.printInlineJSDoc(arg.JSDoc)
		}
		if hasRestArg && i+1 == len(args) {
			p.print("...")
		}
		p.printBinding(arg.Binding)

		if arg.Default != nil {
			p.printSpace()
			p.print("=")
			p.printSpace()
			p.printExpr(*arg.Default, js_ast.LComma, 0)
		}
	}

	p.print(")")
}

func (p *printer) printFn(fn js_ast.Fn) {
	p.printFnArgs(fn.Args, fn.HasRestArg)
	p.printSpace()
	p.printBlock(fn.Body.Stmts)
}

func (p *printer) printClass(class js_ast.Class) {
	if class.Extends != nil {
		p.print(" extends")
		p.printSpace()
		p.printExpr(*class.Extends, js_ast.LNew-1, 0)
	}
	p.printSpace()

	p.print("{")
	p.printNewline()
	p.indent++

	for _, item := range class.Properties {
		p.printIndent()
		if item.JSDoc != nil {
			p.printJSDoc(item.JSDoc)
			p.printIndent()
		}
		p.printProperty(item)

		// Need semicolons after class fields
		if !item.IsMethod {
			p.printSemicolonAfterStatement()
		} else {
			p.printNewline()
		}
	}

	p.indent--
	p.printIndent()
	p.print("}")
}

func (p *printer) printProperty(item js_ast.Property) {
	if item.Kind == js_ast.PropertySpread {
		p.print("...")
		p.printExpr(*item.Value, js_ast.LComma, 0)
		return
	}

	if item.IsStatic {
		p.printIdentifier("static")
		p.printSpace()
	}

	switch item.Kind {
	case js_ast.PropertyGet:
		p.printIdentifier("get")
		p.printSpace()

	case js_ast.PropertySet:
		p.printIdentifier("set")
		p.printSpace()
	}

	if item.Value != nil {
		if fn, ok := item.Value.Data.(*js_ast.EFunction); item.IsMethod && ok {
			if fn.Fn.IsAsync {
				p.printIdentifier("async")
				p.printSpace()
			}
			if fn.Fn.IsGenerator {
				p.print("*")
			}
		}
	}

	if item.IsComputed {
		p.print("[")
		p.printExpr(item.Key, js_ast.LComma, 0)
		p.print("]")
	} else if str, ok := item.Key.Data.(*js_ast.EString); ok {
		if js_lexer.IsIdentifier(str.Value) {
			p.printIdentifier(str.Value)

			// Use a shorthand property only if it was written that way and the value
			// still refers to the same name
			if item.WasShorthand && item.Value != nil {
				if id, ok := item.Value.Data.(*js_ast.EIdentifier); ok && id.Name == str.Value {
					if item.Initializer != nil {
						p.printSpace()
						p.print("=")
						p.printSpace()
						p.printExpr(*item.Initializer, js_ast.LComma, 0)
					}
					return
				}
			}
		} else {
			p.printQuoted(str.Value)
		}
	} else {
		p.printExpr(item.Key, js_ast.LLowest, 0)
	}

	if item.Value != nil {
		if fn, ok := item.Value.Data.(*js_ast.EFunction); item.IsMethod && ok {
			p.printFn(fn.Fn)
			return
		}

		p.print(":")
		p.printSpace()
		p.printExpr(*item.Value, js_ast.LComma, 0)
	}

	if item.Initializer != nil {
		p.printSpace()
		p.print("=")
		p.printSpace()
		p.printExpr(*item.Initializer, js_ast.LComma, 0)
	}
}

func (p *printer) printArgs(args []js_ast.Expr) {
	p.print("(")
	for i, arg := range args {
		if i != 0 {
			p.print(",")
			p.printSpace()
		}
		p.printExpr(arg, js_ast.LComma, 0)
	}
	p.print(")")
}

const (
	forbidCall = 1 << iota
	forbidIn
)

func (p *printer) printExpr(expr js_ast.Expr, level js_ast.L, flags int) {
	switch e := expr.Data.(type) {
	case *js_ast.EMissing:

	case *js_ast.EUndefined:
		if level >= js_ast.LPrefix {
			p.print("(void 0)")
		} else {
			p.printIdentifier("void 0")
			p.prevNumEnd = len(p.js)
		}

	case *js_ast.ESuper:
		p.printIdentifier("super")

	case *js_ast.ENull:
		p.printIdentifier("null")

	case *js_ast.EThis:
		p.printIdentifier("this")

	case *js_ast.ESpread:
		p.print("...")
		p.printExpr(e.Value, js_ast.LComma, 0)

	case *js_ast.ENewTarget:
		p.printIdentifier("new.target")

	case *js_ast.ENew:
		wrap := level >= js_ast.LCall
		if wrap {
			p.print("(")
		}
		p.printIdentifier("new")
		p.printSpace()
		p.printExpr(e.Target, js_ast.LNew, forbidCall)
		p.printArgs(e.Args)
		if wrap {
			p.print(")")
		}

	case *js_ast.ECall:
		wrap := level >= js_ast.LNew || (flags&forbidCall) != 0

		// A call through a property access passes the object as "this". Calls
		// that were free calls before rewriting must not start doing that.
		isIndirect := false
		if e.IsFreeCall {
			switch e.Target.Data.(type) {
			case *js_ast.EDot, *js_ast.EIndex:
				isIndirect = true
			}
		}

		if wrap {
			p.print("(")
		}
		if isIndirect {
			p.print("(0,")
			p.printSpace()
			p.printExpr(e.Target, js_ast.LPostfix, 0)
			p.print(")")
		} else {
			p.printExpr(e.Target, js_ast.LPostfix, 0)
		}
		if e.IsOptionalChain {
			p.print("?.")
		}
		p.printArgs(e.Args)
		if wrap {
			p.print(")")
		}

	case *js_ast.EDot:
		p.printExpr(e.Target, js_ast.LPostfix, flags)
		if e.IsOptionalChain {
			p.print("?")
		} else if p.prevNumEnd == len(p.js) {
			// "1.toString" is a syntax error, so print "1 .toString" instead
			p.print(" ")
		}
		p.print(".")
		p.print(e.Name)

	case *js_ast.EIndex:
		p.printExpr(e.Target, js_ast.LPostfix, flags)
		if e.IsOptionalChain {
			p.print("?.")
		}
		p.print("[")
		p.printExpr(e.Index, js_ast.LLowest, 0)
		p.print("]")

	case *js_ast.EIf:
		wrap := level >= js_ast.LConditional
		if wrap {
			p.print("(")
			flags &= ^forbidIn
		}
		p.printExpr(e.Test, js_ast.LConditional, flags&forbidIn)
		p.printSpace()
		p.print("?")
		p.printSpace()
		p.printExpr(e.Yes, js_ast.LYield, 0)
		p.printSpace()
		p.print(":")
		p.printSpace()
		p.printExpr(e.No, js_ast.LYield, flags&forbidIn)
		if wrap {
			p.print(")")
		}

	case *js_ast.EArrow:
		wrap := level >= js_ast.LAssign
		if wrap {
			p.print("(")
		}
		if e.IsAsync {
			p.printIdentifier("async")
			p.printSpace()
		}
		p.printFnArgs(e.Args, e.HasRestArg)
		p.printSpace()
		p.print("=>")
		p.printSpace()

		wasPrinted := false
		if len(e.Body.Stmts) == 1 && e.PreferExpr {
			if s, ok := e.Body.Stmts[0].Data.(*js_ast.SReturn); ok && s.Value != nil {
				p.arrowExprStart = len(p.js)
				p.printExpr(*s.Value, js_ast.LComma, 0)
				wasPrinted = true
			}
		}
		if !wasPrinted {
			p.printBlock(e.Body.Stmts)
		}
		if wrap {
			p.print(")")
		}

	case *js_ast.EFunction:
		n := len(p.js)
		wrap := p.stmtStart == n || p.exportDefaultStart == n
		if wrap {
			p.print("(")
		}
		if e.Fn.IsAsync {
			p.printIdentifier("async")
			p.printSpace()
		}
		p.printIdentifier("function")
		if e.Fn.IsGenerator {
			p.print("*")
			p.printSpace()
		}
		if e.Fn.Name != nil {
			p.printIdentifier(e.Fn.Name.Name)
		}
		p.printFn(e.Fn)
		if wrap {
			p.print(")")
		}

	case *js_ast.EClass:
		n := len(p.js)
		wrap := p.stmtStart == n || p.exportDefaultStart == n
		if wrap {
			p.print("(")
		}
		p.printIdentifier("class")
		if e.Class.Name != nil {
			p.printIdentifier(e.Class.Name.Name)
		}
		p.printClass(e.Class)
		if wrap {
			p.print(")")
		}

	case *js_ast.EArray:
		p.print("[")
		for i, item := range e.Items {
			if i != 0 {
				p.print(",")
				p.printSpace()
			}
			p.printExpr(item, js_ast.LComma, 0)

			// Make sure there's a comma after trailing missing items
			_, ok := item.Data.(*js_ast.EMissing)
			if ok && i == len(e.Items)-1 {
				p.print(",")
			}
		}
		p.print("]")

	case *js_ast.EObject:
		n := len(p.js)
		wrap := p.stmtStart == n || p.arrowExprStart == n
		if wrap {
			p.print("(")
		}
		p.print("{")
		if len(e.Properties) != 0 {
			p.indent++

			for i, item := range e.Properties {
				if i != 0 {
					p.print(",")
				}

				p.printNewline()
				p.printIndent()
				if item.JSDoc != nil {
					p.printJSDoc(item.JSDoc)
					p.printIndent()
				}
				p.printProperty(item)
			}

			p.indent--
			p.printNewline()
			p.printIndent()
		}
		p.print("}")
		if wrap {
			p.print(")")
		}

	case *js_ast.EBoolean:
		if e.Value {
			p.printIdentifier("true")
		} else {
			p.printIdentifier("false")
		}

	case *js_ast.EString:
		p.printQuoted(e.Value)

	case *js_ast.ETemplate:
		if e.Tag != nil {
			p.printExpr(*e.Tag, js_ast.LPostfix, 0)
		}
		p.print("`")
		p.print(e.HeadRaw)
		for _, part := range e.Parts {
			p.print("${")
			p.printExpr(part.Value, js_ast.LLowest, 0)
			p.print("}")
			p.print(part.TailRaw)
		}
		p.print("`")

	case *js_ast.ERegExp:
		buffer := p.js
		n := len(buffer)

		// Avoid forming a single-line comment
		if n > 0 && buffer[n-1] == '/' {
			p.print(" ")
		}
		p.print(e.Value)

		// Need a space before the next identifier to avoid it turning into flags
		p.prevRegExpEnd = len(p.js)

	case *js_ast.EBigInt:
		p.printIdentifier(e.Value)
		p.print("n")

	case *js_ast.ENumber:
		p.printNumber(e.Value, level)

	case *js_ast.EIdentifier:
		p.printIdentifier(e.Name)

	case *js_ast.EAwait:
		wrap := level >= js_ast.LPrefix
		if wrap {
			p.print("(")
		}
		p.printIdentifier("await")
		p.printSpace()
		p.printExpr(e.Value, js_ast.LPrefix-1, 0)
		if wrap {
			p.print(")")
		}

	case *js_ast.EYield:
		wrap := level >= js_ast.LAssign
		if wrap {
			p.print("(")
		}
		p.printIdentifier("yield")
		if e.Value != nil {
			if e.IsStar {
				p.print("*")
			}
			p.printSpace()
			p.printExpr(*e.Value, js_ast.LYield, 0)
		}
		if wrap {
			p.print(")")
		}

	case *js_ast.EUnary:
		entry := js_ast.OpTable[e.Op]
		wrap := level >= entry.Level
		if wrap {
			p.print("(")
		}

		if !e.Op.IsPrefix() {
			p.printExpr(e.Value, js_ast.LPostfix-1, 0)
		}

		if entry.IsKeyword {
			p.printIdentifier(entry.Text)
			p.printSpace()
		} else {
			p.printSpaceBeforeOperator(e.Op)
			p.print(entry.Text)
			p.prevOp = e.Op
			p.prevOpEnd = len(p.js)
		}

		if e.Op.IsPrefix() {
			p.printExpr(e.Value, js_ast.LPrefix-1, 0)
		}

		if wrap {
			p.print(")")
		}

	case *js_ast.EBinary:
		entry := js_ast.OpTable[e.Op]
		wrap := level >= entry.Level || (e.Op == js_ast.BinOpIn && (flags&forbidIn) != 0)

		// Destructuring assignments must be parenthesized
		if p.stmtStart == len(p.js) || p.arrowExprStart == len(p.js) {
			if _, ok := e.Left.Data.(*js_ast.EObject); ok {
				wrap = true
			}
		}

		if wrap {
			p.print("(")
			flags &= ^forbidIn
		}

		leftLevel := entry.Level - 1
		rightLevel := entry.Level - 1

		if e.Op.IsRightAssociative() {
			leftLevel = entry.Level
		}
		if e.Op.IsLeftAssociative() {
			rightLevel = entry.Level
		}

		switch e.Op {
		case js_ast.BinOpNullishCoalescing:
			// "??" can't directly contain "||" or "&&" without being wrapped in parentheses
			if left, ok := e.Left.Data.(*js_ast.EBinary); ok && (left.Op == js_ast.BinOpLogicalOr || left.Op == js_ast.BinOpLogicalAnd) {
				leftLevel = js_ast.LPrefix
			}
			if right, ok := e.Right.Data.(*js_ast.EBinary); ok && (right.Op == js_ast.BinOpLogicalOr || right.Op == js_ast.BinOpLogicalAnd) {
				rightLevel = js_ast.LPrefix
			}

		case js_ast.BinOpPow:
			// "**" can't contain certain unary expressions
			if left, ok := e.Left.Data.(*js_ast.EUnary); ok && left.Op.IsPrefix() {
				leftLevel = js_ast.LCall
			} else if _, ok := e.Left.Data.(*js_ast.EUndefined); ok {
				// Undefined is printed as "void 0"
				leftLevel = js_ast.LCall
			}
		}

		p.printExpr(e.Left, leftLevel, flags&forbidIn)

		if e.Op != js_ast.BinOpComma {
			p.printSpace()
		}

		if entry.IsKeyword {
			p.printIdentifier(entry.Text)
		} else {
			p.printSpaceBeforeOperator(e.Op)
			p.print(entry.Text)
			p.prevOp = e.Op
			p.prevOpEnd = len(p.js)
		}

		p.printSpace()
		p.printExpr(e.Right, rightLevel, flags&forbidIn)

		if wrap {
			p.print(")")
		}

	default:
		panic(fmt.Sprintf("Unexpected expression of type %T", expr.Data))
	}
}

func (p *printer) printNumber(value float64, level js_ast.L) {
	asUint32 := uint32(value)

	// Expressions such as "(-1).toString" need to wrap negative numbers.
	// Instead of testing for "value < 0" we test for "signbit(value)" and
	// "!isNaN(value)" because we need this to be true for "-0" and "-0 < 0"
	// is false.
	wrap := math.Signbit(value) && value == value && level >= js_ast.LPrefix
	if wrap {
		p.print("(")
	}

	// Go will print "4294967295" as "4.294967295e+09" if we use the float64
	// printer, so explicitly print integers using a separate code path
	if value == float64(asUint32) {
		text := strconv.FormatInt(int64(asUint32), 10)

		// Make sure to preserve negative zero
		if value == 0 && math.Signbit(value) {
			p.printSpaceBeforeOperator(js_ast.UnOpNeg)
			p.print("-")
		}

		p.printIdentifier(text)

		// Remember the end of the latest number
		p.prevNumEnd = len(p.js)
	} else if value != value {
		p.printIdentifier("NaN")
	} else if value == positiveInfinity {
		p.printIdentifier("Infinity")
	} else if value == negativeInfinity {
		p.printSpaceBeforeOperator(js_ast.UnOpNeg)
		p.print("-Infinity")
	} else {
		// Large integers would otherwise come out in exponent form
		format := byte('g')
		if value == math.Trunc(value) && math.Abs(value) < 1e21 {
			format = 'f'
		}
		text := strconv.FormatFloat(value, format, -1, 64)
		if text[0] == '-' {
			p.printSpaceBeforeOperator(js_ast.UnOpNeg)
		}
		p.printIdentifier(text)

		// Remember the end of the latest number
		p.prevNumEnd = len(p.js)
	}

	if wrap {
		p.print(")")
	}
}

func (p *printer) printDecls(keyword string, decls []js_ast.Decl, flags int) {
	p.printIdentifier(keyword)
	p.printSpace()

	for i, decl := range decls {
		if i != 0 {
			p.print(",")
			p.printSpace()
		}
		p.printBinding(decl.Binding)

		if decl.Value != nil {
			p.printSpace()
			p.print("=")
			p.printSpace()
			p.printExpr(*decl.Value, js_ast.LComma, flags)
		}
	}
}

func (p *printer) printForLoopInit(init js_ast.Stmt) {
	switch s := init.Data.(type) {
	case *js_ast.SExpr:
		p.printExpr(s.Value, js_ast.LLowest, forbidIn)
	case *js_ast.SLocal:
		p.printDecls(s.Kind.Keyword(), s.Decls, forbidIn)
	default:
		panic("Internal error")
	}
}

func (p *printer) printBody(body js_ast.Stmt) {
	if block, ok := body.Data.(*js_ast.SBlock); ok {
		p.printSpace()
		p.printBlock(block.Stmts)
		p.printNewline()
	} else {
		p.printNewline()
		p.indent++
		p.printStmt(body)
		p.indent--
	}
}

func (p *printer) printBlock(stmts []js_ast.Stmt) {
	p.print("{")
	p.printNewline()

	p.indent++
	for _, stmt := range stmts {
		p.printStmt(stmt)
	}
	p.indent--

	p.printIndent()
	p.print("}")
}

func wrapToAvoidAmbiguousElse(s js_ast.S) bool {
	for {
		switch current := s.(type) {
		case *js_ast.SIf:
			if current.No == nil {
				return true
			}
			s = current.No.Data

		case *js_ast.SFor:
			s = current.Body.Data

		case *js_ast.SForIn:
			s = current.Body.Data

		case *js_ast.SForOf:
			s = current.Body.Data

		case *js_ast.SWhile:
			s = current.Body.Data

		case *js_ast.SLabel:
			s = current.Stmt.Data

		default:
			return false
		}
	}
}

func (p *printer) printIf(s *js_ast.SIf) {
	p.printIdentifier("if")
	p.printSpace()
	p.print("(")
	p.printExpr(s.Test, js_ast.LLowest, 0)
	p.print(")")

	if yes, ok := s.Yes.Data.(*js_ast.SBlock); ok {
		p.printSpace()
		p.printBlock(yes.Stmts)

		if s.No != nil {
			p.printSpace()
		} else {
			p.printNewline()
		}
	} else if wrapToAvoidAmbiguousElse(s.Yes.Data) {
		p.printSpace()
		p.print("{")
		p.printNewline()

		p.indent++
		p.printStmt(s.Yes)
		p.indent--

		p.printIndent()
		p.print("}")

		if s.No != nil {
			p.printSpace()
		} else {
			p.printNewline()
		}
	} else {
		p.printNewline()
		p.indent++
		p.printStmt(s.Yes)
		p.indent--

		if s.No != nil {
			p.printIndent()
		}
	}

	if s.No != nil {
		p.printIdentifier("else")

		if no, ok := s.No.Data.(*js_ast.SBlock); ok {
			p.printSpace()
			p.printBlock(no.Stmts)
			p.printNewline()
		} else if no, ok := s.No.Data.(*js_ast.SIf); ok {
			p.printSpace()
			p.printIf(no)
		} else {
			p.printNewline()
			p.indent++
			p.printStmt(*s.No)
			p.indent--
		}
	}
}

func (p *printer) printFnStmt(fn js_ast.Fn, isExport bool) {
	if isExport {
		p.printIdentifier("export")
		p.printSpace()
	}
	if fn.IsAsync {
		p.printIdentifier("async")
		p.printSpace()
	}
	p.printIdentifier("function")
	if fn.IsGenerator {
		p.print("*")
		p.printSpace()
	}
	if fn.Name != nil {
		p.printIdentifier(fn.Name.Name)
	}
	p.printFn(fn)
	p.printNewline()
}

func (p *printer) printClassStmt(class js_ast.Class, isExport bool) {
	if isExport {
		p.printIdentifier("export")
		p.printSpace()
	}
	p.printIdentifier("class")
	if class.Name != nil {
		p.printIdentifier(class.Name.Name)
	}
	p.printClass(class)
	p.printNewline()
}

func (p *printer) printClauseItems(items []js_ast.ClauseItem, isImport bool) {
	p.print("{")
	for i, item := range items {
		if i != 0 {
			p.print(",")
			p.printSpace()
		}
		if isImport {
			// "import {alias as name}"
			p.print(item.Alias)
			if item.Name.Name != item.Alias {
				p.print(" as ")
				p.print(item.Name.Name)
			}
		} else {
			// "export {name as alias}"
			p.print(item.Name.Name)
			if item.Name.Name != item.Alias {
				p.print(" as ")
				p.print(item.Alias)
			}
		}
	}
	p.print("}")
}

func (p *printer) printStmt(stmt js_ast.Stmt) {
	switch s := stmt.Data.(type) {
	case *js_ast.SFunction:
		p.printIndent()
		if s.JSDoc != nil {
			p.printJSDoc(s.JSDoc)
			p.printIndent()
		}
		p.printFnStmt(s.Fn, s.IsExport)

	case *js_ast.SClass:
		p.printIndent()
		if s.JSDoc != nil {
			p.printJSDoc(s.JSDoc)
			p.printIndent()
		}
		p.printClassStmt(s.Class, s.IsExport)

	case *js_ast.SEmpty:
		p.printIndent()
		p.print(";")
		p.printNewline()

	case *js_ast.SExportDefault:
		p.printIndent()
		if s.Value.Stmt != nil {
			var doc *js_ast.JSDoc
			switch s2 := s.Value.Stmt.Data.(type) {
			case *js_ast.SFunction:
				doc = s2.JSDoc
			case *js_ast.SClass:
				doc = s2.JSDoc
			}
			if doc != nil {
				p.printJSDoc(doc)
				p.printIndent()
			}
		}
		p.printIdentifier("export default")
		p.printSpace()

		if s.Value.Expr != nil {
			// Functions and classes must be wrapped to avoid confusion with their statement forms
			p.exportDefaultStart = len(p.js)

			p.printExpr(*s.Value.Expr, js_ast.LComma, 0)
			p.printSemicolonAfterStatement()
			return
		}

		switch s2 := s.Value.Stmt.Data.(type) {
		case *js_ast.SFunction:
			p.printFnStmt(s2.Fn, false)

		case *js_ast.SClass:
			p.printClassStmt(s2.Class, false)

		default:
			panic("Internal error")
		}

	case *js_ast.SExportStar:
		p.printIndent()
		p.printIdentifier("export")
		p.printSpace()
		p.print("*")
		p.printSpace()
		if s.Alias != nil {
			p.print("as")
			p.printSpace()
			p.printIdentifier(s.Alias.Name)
			p.printSpace()
		}
		p.printIdentifier("from")
		p.printSpace()
		p.printQuoted(s.Path)
		p.printSemicolonAfterStatement()

	case *js_ast.SExportClause:
		p.printIndent()
		p.printIdentifier("export")
		p.printSpace()
		p.printClauseItems(s.Items, false /* isImport */)
		p.printSemicolonAfterStatement()

	case *js_ast.SExportFrom:
		p.printIndent()
		p.printIdentifier("export")
		p.printSpace()
		p.printClauseItems(s.Items, false /* isImport */)
		p.printSpace()
		p.print("from")
		p.printSpace()
		p.printQuoted(s.Path)
		p.printSemicolonAfterStatement()

	case *js_ast.SLocal:
		p.printIndent()
		if s.JSDoc != nil {
			p.printJSDoc(s.JSDoc)
			p.printIndent()
		}
		if s.IsExport {
			p.printIdentifier("export")
			p.printSpace()
		}
		p.printDecls(s.Kind.Keyword(), s.Decls, 0)
		p.printSemicolonAfterStatement()

	case *js_ast.SIf:
		p.printIndent()
		p.printIf(s)

	case *js_ast.SDoWhile:
		p.printIndent()
		p.printIdentifier("do")
		if block, ok := s.Body.Data.(*js_ast.SBlock); ok {
			p.printSpace()
			p.printBlock(block.Stmts)
			p.printSpace()
		} else {
			p.printNewline()
			p.indent++
			p.printStmt(s.Body)
			p.indent--
			p.printIndent()
		}
		p.printIdentifier("while")
		p.printSpace()
		p.print("(")
		p.printExpr(s.Test, js_ast.LLowest, 0)
		p.print(")")
		p.printSemicolonAfterStatement()

	case *js_ast.SForIn:
		p.printIndent()
		p.printIdentifier("for")
		p.printSpace()
		p.print("(")
		p.printForLoopInit(s.Init)
		p.printSpace()
		p.printIdentifier("in")
		p.printSpace()
		p.printExpr(s.Value, js_ast.LLowest, 0)
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SForOf:
		p.printIndent()
		p.printIdentifier("for")
		if s.IsAwait {
			p.print(" await")
		}
		p.printSpace()
		p.print("(")
		p.printForLoopInit(s.Init)
		p.printSpace()
		p.printIdentifier("of")
		p.printSpace()
		p.printExpr(s.Value, js_ast.LComma, 0)
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SWhile:
		p.printIndent()
		p.printIdentifier("while")
		p.printSpace()
		p.print("(")
		p.printExpr(s.Test, js_ast.LLowest, 0)
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SLabel:
		p.printIndent()
		p.printIdentifier(s.Name.Name)
		p.print(":")
		p.printBody(s.Stmt)

	case *js_ast.STry:
		p.printIndent()
		p.printIdentifier("try")
		p.printSpace()
		p.printBlock(s.Body)

		if s.Catch != nil {
			p.printSpace()
			p.print("catch")
			if s.Catch.Binding != nil {
				p.printSpace()
				p.print("(")
				p.printBinding(*s.Catch.Binding)
				p.print(")")
			}
			p.printSpace()
			p.printBlock(s.Catch.Body)
		}

		if s.Finally != nil {
			p.printSpace()
			p.print("finally")
			p.printSpace()
			p.printBlock(s.Finally.Stmts)
		}

		p.printNewline()

	case *js_ast.SFor:
		p.printIndent()
		p.printIdentifier("for")
		p.printSpace()
		p.print("(")
		if s.Init != nil {
			p.printForLoopInit(*s.Init)
		}
		p.print(";")
		if s.Test != nil {
			p.printSpace()
			p.printExpr(*s.Test, js_ast.LLowest, 0)
		}
		p.print(";")
		if s.Update != nil {
			p.printSpace()
			p.printExpr(*s.Update, js_ast.LLowest, 0)
		}
		p.print(")")
		p.printBody(s.Body)

	case *js_ast.SSwitch:
		p.printIndent()
		p.printIdentifier("switch")
		p.printSpace()
		p.print("(")
		p.printExpr(s.Test, js_ast.LLowest, 0)
		p.print(")")
		p.printSpace()
		p.print("{")
		p.printNewline()
		p.indent++

		for _, c := range s.Cases {
			p.printIndent()

			if c.Value != nil {
				p.print("case")
				p.printSpace()
				p.printExpr(*c.Value, js_ast.LLogicalAnd, 0)
			} else {
				p.print("default")
			}
			p.print(":")

			if len(c.Body) == 1 {
				if block, ok := c.Body[0].Data.(*js_ast.SBlock); ok {
					p.printSpace()
					p.printBlock(block.Stmts)
					p.printNewline()
					continue
				}
			}

			p.printNewline()
			p.indent++
			for _, stmt := range c.Body {
				p.printStmt(stmt)
			}
			p.indent--
		}

		p.indent--
		p.printIndent()
		p.print("}")
		p.printNewline()

	case *js_ast.SImport:
		itemCount := 0

		p.printIndent()
		p.printIdentifier("import")
		p.printSpace()

		if s.DefaultName != nil {
			p.printIdentifier(s.DefaultName.Name)
			itemCount++
		}

		if s.Items != nil {
			if itemCount > 0 {
				p.print(",")
				p.printSpace()
			}
			p.printClauseItems(*s.Items, true /* isImport */)
			itemCount++
		}

		if s.Namespace != nil {
			if itemCount > 0 {
				p.print(",")
				p.printSpace()
			}
			p.print("*")
			p.printSpace()
			p.print("as ")
			p.printIdentifier(s.Namespace.Name)
			itemCount++
		}

		if itemCount > 0 {
			p.print(" from")
			p.printSpace()
		}

		p.printQuoted(s.Path)
		p.printSemicolonAfterStatement()

	case *js_ast.SBlock:
		p.printIndent()
		p.printBlock(s.Stmts)
		p.printNewline()

	case *js_ast.SDebugger:
		p.printIndent()
		p.printIdentifier("debugger")
		p.printSemicolonAfterStatement()

	case *js_ast.SDirective:
		p.printIndent()
		p.printQuoted(s.Value)
		p.printSemicolonAfterStatement()

	case *js_ast.SBreak:
		p.printIndent()
		p.printIdentifier("break")
		if s.Label != nil {
			p.print(" ")
			p.print(s.Label.Name)
		}
		p.printSemicolonAfterStatement()

	case *js_ast.SContinue:
		p.printIndent()
		p.printIdentifier("continue")
		if s.Label != nil {
			p.print(" ")
			p.print(s.Label.Name)
		}
		p.printSemicolonAfterStatement()

	case *js_ast.SReturn:
		p.printIndent()
		p.printIdentifier("return")
		if s.Value != nil {
			p.printSpace()
			p.printExpr(*s.Value, js_ast.LLowest, 0)
		}
		p.printSemicolonAfterStatement()

	case *js_ast.SThrow:
		p.printIndent()
		p.printIdentifier("throw")
		p.printSpace()
		p.printExpr(s.Value, js_ast.LLowest, 0)
		p.printSemicolonAfterStatement()

	case *js_ast.SExpr:
		p.printIndent()
		if s.JSDoc != nil {
			p.printJSDoc(s.JSDoc)
			p.printIndent()
		}
		p.stmtStart = len(p.js)
		p.printExpr(s.Value, js_ast.LLowest, 0)
		p.printSemicolonAfterStatement()

	default:
		panic(fmt.Sprintf("Unexpected statement of type %T", stmt.Data))
	}
}

type Options struct {
	// Escape all non-ASCII characters in string literals
	ASCIIOnly bool
}

type PrintResult struct {
	JS []byte
}

func newPrinter(options Options) *printer {
	return &printer{
		options:            options,
		stmtStart:          -1,
		exportDefaultStart: -1,
		arrowExprStart:     -1,
		prevOpEnd:          -1,
		prevNumEnd:         -1,
		prevRegExpEnd:      -1,
	}
}

func Print(tree js_ast.AST, options Options) PrintResult {
	p := newPrinter(options)

	// Preserve the hashbang comment if present
	if tree.Hashbang != "" {
		p.print(tree.Hashbang + "\n")
	}

	for _, stmt := range tree.Stmts {
		p.printStmt(stmt)
	}

	return PrintResult{JS: p.js}
}

func PrintExpr(expr js_ast.Expr, options Options) PrintResult {
	p := newPrinter(options)
	p.printExpr(expr, js_ast.LLowest, 0)
	return PrintResult{JS: p.js}
}
