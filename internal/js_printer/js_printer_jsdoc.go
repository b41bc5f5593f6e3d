package js_printer

import (
	"strings"

	"github.com/concatjs/concatjs/internal/js_ast"
)

// Comments with a single line of content are printed on one line:
//
//   /** @const {number} */
//
// Everything else uses the block form with a leading " * " on each line.
func (p *printer) printJSDoc(doc *js_ast.JSDoc) {
	lines := jsdocLines(doc)

	if len(lines) <= 1 {
		p.print("/**")
		for _, line := range lines {
			p.print(" ")
			p.print(line)
		}
		p.print(" */")
		p.printNewline()
		return
	}

	p.print("/**")
	p.printNewline()
	for _, line := range lines {
		p.printIndent()
		if line == "" {
			p.print(" *")
		} else {
			p.print(" * ")
			p.print(line)
		}
		p.printNewline()
	}
	p.printIndent()
	p.print(" */")
	p.printNewline()
}

// Parameter annotations stay on the same line as the parameter
func (p *printer) printInlineJSDoc(doc *js_ast.JSDoc) {
	p.print("/**")
	for _, line := range jsdocLines(doc) {
		if line != "" {
			p.print(" ")
			p.print(line)
		}
	}
	p.print(" */")
	p.printSpace()
}

func jsdocLines(doc *js_ast.JSDoc) []string {
	if doc.InlineType != nil {
		return []string{TypeToString(*doc.InlineType)}
	}

	var lines []string
	if doc.Description != "" {
		lines = append(lines, strings.Split(doc.Description, "\n")...)
	}

	for _, tag := range doc.Tags {
		sb := strings.Builder{}
		sb.WriteByte('@')
		sb.WriteString(tag.Name)

		if tag.Type != nil {
			if tag.TypeWithoutBraces {
				sb.WriteByte(' ')
				sb.WriteString(TypeToString(*tag.Type))
			} else {
				sb.WriteString(" {")
				sb.WriteString(TypeToString(*tag.Type))
				sb.WriteByte('}')
			}
		} else if tag.RawType != "" {
			sb.WriteString(" {")
			sb.WriteString(tag.RawType)
			sb.WriteByte('}')
		}

		text := strings.Split(tag.Text, "\n")
		if text[0] != "" {
			sb.WriteByte(' ')
			sb.WriteString(text[0])
		}
		lines = append(lines, sb.String())
		lines = append(lines, text[1:]...)
	}

	return lines
}

// Prints a Closure type expression. Unions are parenthesized only where they
// would otherwise bind to a surrounding operator.
func TypeToString(t js_ast.Type) string {
	sb := strings.Builder{}
	printType(&sb, t, false)
	return sb.String()
}

func printType(sb *strings.Builder, t js_ast.Type, wrapUnion bool) {
	switch d := t.Data.(type) {
	case *js_ast.TAll:
		sb.WriteByte('*')

	case *js_ast.TUnknown:
		sb.WriteByte('?')

	case *js_ast.TName:
		sb.WriteString(d.Name)
		if len(d.Args) > 0 {
			sb.WriteByte('<')
			for i, arg := range d.Args {
				if i > 0 {
					sb.WriteByte(',')
				}
				printType(sb, arg, false)
			}
			sb.WriteByte('>')
		}

	case *js_ast.TUnion:
		if wrapUnion {
			sb.WriteByte('(')
		}
		for i, item := range d.Types {
			if i > 0 {
				sb.WriteByte('|')
			}
			printType(sb, item, false)
		}
		if wrapUnion {
			sb.WriteByte(')')
		}

	case *js_ast.TRecord:
		sb.WriteByte('{')
		for i, field := range d.Fields {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(field.Key)
			if field.Value != nil {
				sb.WriteString(": ")
				printType(sb, *field.Value, false)
			}
		}
		sb.WriteByte('}')

	case *js_ast.TFunction:
		sb.WriteString("function(")
		needsComma := false
		if d.This != nil {
			sb.WriteString("this:")
			printType(sb, *d.This, false)
			needsComma = true
		}
		if d.New != nil {
			if needsComma {
				sb.WriteByte(',')
			}
			sb.WriteString("new:")
			printType(sb, *d.New, false)
			needsComma = true
		}
		for _, param := range d.Params {
			if needsComma {
				sb.WriteByte(',')
			}
			printType(sb, param, false)
			needsComma = true
		}
		sb.WriteByte(')')
		if d.Result != nil {
			sb.WriteByte(':')
			printType(sb, *d.Result, true)
		}

	case *js_ast.TModifier:
		switch d.Op {
		case js_ast.TNullable:
			sb.WriteByte('?')
			printType(sb, d.Value, true)

		case js_ast.TNonNullable:
			sb.WriteByte('!')
			printType(sb, d.Value, true)

		case js_ast.TRest:
			sb.WriteString("...")
			printType(sb, d.Value, true)

		case js_ast.TOptional:
			printType(sb, d.Value, true)
			sb.WriteByte('=')
		}

	default:
		panic("Internal error")
	}
}
