package js_parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/js_lexer"
	"github.com/concatjs/concatjs/internal/logger"
)

// JSDoc comments are parsed into a list of tags. Only the "{...}" type
// expressions inside tags are parsed further, since those contain names that
// may need to be renamed. Everything else is kept as text.

func (p *parser) parseJSDoc(comment *js_lexer.JSDocComment, isInline bool) *js_ast.JSDoc {
	if comment == nil {
		return nil
	}

	doc := &js_ast.JSDoc{Loc: comment.Loc}
	body := comment.Text[3 : len(comment.Text)-2]
	bodyStart := comment.Loc.Start + 3

	// "function(/** number */ x) {}"
	if isInline {
		trimmed := strings.TrimSpace(body)
		if trimmed != "" && !strings.HasPrefix(trimmed, "@") {
			offset := bodyStart + int32(strings.Index(body, trimmed))
			if t, ok := p.parseTypeOrWarn(trimmed, offset); ok {
				doc.InlineType = &t
			} else {
				doc.Description = trimmed
			}
			return doc
		}
	}

	var description []string
	lineStart := bodyStart

	for i, line := range strings.Split(body, "\n") {
		if i > 0 {
			lineStart++
		}
		offset := lineStart
		lineStart += int32(len(line))

		// Strip the leading " * " decoration
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "*") {
			trimmed = trimmed[1:]
			if strings.HasPrefix(trimmed, " ") {
				trimmed = trimmed[1:]
			}
		}
		offset += int32(len(line) - len(trimmed))

		// Lines that don't start a tag continue the previous one
		if !strings.HasPrefix(trimmed, "@") {
			if len(doc.Tags) == 0 {
				description = append(description, trimmed)
			} else if trimmed != "" {
				tag := &doc.Tags[len(doc.Tags)-1]
				if tag.Text == "" {
					tag.Text = trimmed
				} else {
					tag.Text += "\n" + trimmed
				}
			}
			continue
		}

		doc.Tags = append(doc.Tags, p.parseJSDocTag(trimmed, offset))
	}

	// Drop blank lines around the description
	for len(description) > 0 && strings.TrimSpace(description[0]) == "" {
		description = description[1:]
	}
	for len(description) > 0 && strings.TrimSpace(description[len(description)-1]) == "" {
		description = description[:len(description)-1]
	}
	doc.Description = strings.Join(description, "\n")
	return doc
}

// This assumes "text" starts with "@"
func (p *parser) parseJSDocTag(text string, offset int32) js_ast.JSDocTag {
	end := 1
	for end < len(text) && text[end] != ' ' && text[end] != '\t' && text[end] != '{' {
		end++
	}
	tag := js_ast.JSDocTag{Name: text[1:end]}
	rest := strings.TrimLeft(text[end:], " \t")
	restOffset := offset + int32(len(text)-len(rest))

	if strings.HasPrefix(rest, "{") {
		// Find the matching close brace
		depth := 0
		for i := 0; i < len(rest); i++ {
			switch rest[i] {
			case '{':
				depth++

			case '}':
				depth--
				if depth == 0 {
					raw := rest[1:i]
					if t, ok := p.parseTypeOrWarn(raw, restOffset+1); ok {
						tag.Type = &t
					} else {
						tag.RawType = raw
					}
					tag.Text = strings.TrimLeft(rest[i+1:], " \t")
					return tag
				}
			}
		}
	}

	// "@extends Foo" and "@implements Foo" may leave out the braces
	if (tag.Name == "extends" || tag.Name == "implements") && rest != "" {
		word := rest
		if space := strings.IndexAny(rest, " \t"); space != -1 {
			word = rest[:space]
		}
		if t, ok := parseType(word, restOffset); ok {
			tag.Type = &t
			tag.TypeWithoutBraces = true
			tag.Text = strings.TrimLeft(rest[len(word):], " \t")
			return tag
		}
	}

	tag.Text = rest
	return tag
}

func (p *parser) parseTypeOrWarn(text string, offset int32) (js_ast.Type, bool) {
	t, ok := parseType(text, offset)
	if !ok && !p.options.OmitJSDocWarnings {
		r := logger.Range{Loc: logger.Loc{Start: offset}, Len: int32(len(text))}
		p.log.AddID(logger.MsgID_JSDoc_InvalidType, logger.Warning, &p.source, r,
			fmt.Sprintf("Invalid type expression %q", text))
	}
	return t, ok
}

type typeParser struct {
	text   string
	offset int32
	pos    int
}

type typeSyntaxError struct{}

// Parses a Closure type expression. The offset is the location of the first
// character of "text" in the source file.
func parseType(text string, offset int32) (result js_ast.Type, ok bool) {
	defer func() {
		r := recover()
		if _, isSyntaxError := r.(typeSyntaxError); isSyntaxError {
			ok = false
		} else if r != nil {
			panic(r)
		}
	}()

	tp := typeParser{text: text, offset: offset}
	result = tp.parseUnion()
	tp.skipSpace()
	if tp.pos != len(tp.text) {
		tp.fail()
	}
	return result, true
}

func (tp *typeParser) fail() {
	panic(typeSyntaxError{})
}

func (tp *typeParser) loc() logger.Loc {
	return logger.Loc{Start: tp.offset + int32(tp.pos)}
}

func (tp *typeParser) skipSpace() {
	for tp.pos < len(tp.text) {
		switch tp.text[tp.pos] {
		case ' ', '\t', '\r', '\n':
			tp.pos++
		default:
			return
		}
	}
}

// Returns the next non-whitespace character, or 0 at the end
func (tp *typeParser) peek() byte {
	tp.skipSpace()
	if tp.pos < len(tp.text) {
		return tp.text[tp.pos]
	}
	return 0
}

func (tp *typeParser) expect(c byte) {
	if tp.peek() != c {
		tp.fail()
	}
	tp.pos++
}

func (tp *typeParser) parseUnion() js_ast.Type {
	loc := tp.loc()
	first := tp.parseUnary()
	if tp.peek() != '|' {
		return first
	}

	types := []js_ast.Type{first}
	for tp.peek() == '|' {
		tp.pos++
		types = append(types, tp.parseUnary())
	}
	return js_ast.Type{Loc: loc, Data: &js_ast.TUnion{Types: types}}
}

func (tp *typeParser) parseUnary() js_ast.Type {
	tp.skipSpace()
	loc := tp.loc()

	switch tp.peek() {
	case '?':
		tp.pos++

		// A "?" on its own is the unknown type
		switch tp.peek() {
		case 0, ',', ')', '>', '|', '}', '=', ':':
			return tp.parseSuffix(js_ast.Type{Loc: loc, Data: &js_ast.TUnknown{}})
		}
		return js_ast.Type{Loc: loc, Data: &js_ast.TModifier{Op: js_ast.TNullable, Value: tp.parseUnary()}}

	case '!':
		tp.pos++
		return js_ast.Type{Loc: loc, Data: &js_ast.TModifier{Op: js_ast.TNonNullable, Value: tp.parseUnary()}}

	case '.':
		rest := tp.text[tp.pos:]
		if strings.HasPrefix(rest, "...") {
			tp.pos += 3
			return js_ast.Type{Loc: loc, Data: &js_ast.TModifier{Op: js_ast.TRest, Value: tp.parseUnary()}}
		}
		if !strings.HasPrefix(rest, "./") && !strings.HasPrefix(rest, "../") {
			tp.fail()
		}
	}

	return tp.parseSuffix(tp.parsePrimary())
}

func (tp *typeParser) parseSuffix(t js_ast.Type) js_ast.Type {
	for tp.peek() == '=' {
		tp.pos++
		t = js_ast.Type{Loc: t.Loc, Data: &js_ast.TModifier{Op: js_ast.TOptional, Value: t}}
	}
	return t
}

func (tp *typeParser) parsePrimary() js_ast.Type {
	loc := tp.loc()

	switch tp.peek() {
	case '*':
		tp.pos++
		return js_ast.Type{Loc: loc, Data: &js_ast.TAll{}}

	case '(':
		tp.pos++
		t := tp.parseUnion()
		tp.expect(')')
		return t

	case '{':
		tp.pos++
		fields := []js_ast.TRecordField{}
		for tp.peek() != '}' {
			key := tp.parseName()
			field := js_ast.TRecordField{Key: key}
			if tp.peek() == ':' {
				tp.pos++
				value := tp.parseUnion()
				field.Value = &value
			}
			fields = append(fields, field)
			if tp.peek() != ',' {
				break
			}
			tp.pos++
		}
		tp.expect('}')
		return js_ast.Type{Loc: loc, Data: &js_ast.TRecord{Fields: fields}}
	}

	name := tp.parseName()
	if name == "function" && tp.peek() == '(' {
		return js_ast.Type{Loc: loc, Data: tp.parseFunction()}
	}

	// "Array.<string>" is the old spelling of "Array<string>"
	if strings.HasSuffix(name, ".") {
		name = name[:len(name)-1]
		if tp.peek() != '<' {
			tp.fail()
		}
	}

	var args []js_ast.Type
	if tp.peek() == '<' {
		tp.pos++
		for {
			args = append(args, tp.parseUnion())
			if tp.peek() != ',' {
				break
			}
			tp.pos++
		}
		tp.expect('>')
	}

	return js_ast.Type{Loc: loc, Data: &js_ast.TName{Name: name, Args: args}}
}

// Reads a possibly-dotted identifier such as "foo.Bar". A name may also start
// with a relative module path such as "./foo/bar.Baz", which names something
// exported by that module.
func (tp *typeParser) parseName() string {
	tp.skipSpace()
	start := tp.pos

	isPath := false
	for {
		rest := tp.text[tp.pos:]
		if strings.HasPrefix(rest, "./") {
			tp.pos += 2
		} else if strings.HasPrefix(rest, "../") {
			tp.pos += 3
		} else {
			break
		}
		isPath = true
	}

	segmentStart := tp.pos
	for tp.pos < len(tp.text) {
		c, width := utf8.DecodeRuneInString(tp.text[tp.pos:])
		if c == '.' || (isPath && c == '/') {
			if tp.pos == segmentStart {
				tp.fail()
			}
		} else if isPath && c == '-' {
			// File names can contain dashes
		} else if tp.pos == segmentStart || tp.text[tp.pos-1] == '.' || tp.text[tp.pos-1] == '/' {
			if !js_lexer.IsIdentifierStart(c) {
				break
			}
		} else if !js_lexer.IsIdentifierContinue(c) {
			break
		}
		tp.pos += width
	}
	if tp.pos == segmentStart {
		tp.fail()
	}
	return tp.text[start:tp.pos]
}

// This assumes the "function" keyword has already been parsed
func (tp *typeParser) parseFunction() *js_ast.TFunction {
	fn := &js_ast.TFunction{}
	tp.expect('(')

	for tp.peek() != ')' {
		// "this:T" and "new:T" must come first
		rest := tp.text[tp.pos:]
		switch {
		case len(fn.Params) == 0 && hasContextPrefix(rest, "this"):
			tp.pos += strings.Index(rest, ":") + 1
			t := tp.parseUnion()
			fn.This = &t

		case len(fn.Params) == 0 && hasContextPrefix(rest, "new"):
			tp.pos += strings.Index(rest, ":") + 1
			t := tp.parseUnion()
			fn.New = &t

		default:
			fn.Params = append(fn.Params, tp.parseUnion())
		}

		if tp.peek() != ',' {
			break
		}
		tp.pos++
	}
	tp.expect(')')

	if tp.peek() == ':' {
		tp.pos++
		t := tp.parseUnary()
		fn.Result = &t
	}
	return fn
}

func hasContextPrefix(text string, keyword string) bool {
	if !strings.HasPrefix(text, keyword) {
		return false
	}
	return strings.HasPrefix(strings.TrimLeft(text[len(keyword):], " \t"), ":")
}
