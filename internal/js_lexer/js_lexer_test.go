package js_lexer

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/test"
)

func assertEqualStrings(t *testing.T, a string, b string) {
	t.Helper()
	pretty := func(text string) string {
		builder := strings.Builder{}
		builder.WriteRune('"')
		i := 0
		for i < len(text) {
			c, width := utf8.DecodeRuneInString(text[i:])
			builder.WriteString(fmt.Sprintf("\\u{%X}", c))
			i += width
		}
		builder.WriteRune('"')
		return builder.String()
	}
	if a != b {
		t.Fatalf("%s != %s", pretty(a), pretty(b))
	}
}

func lexToken(contents string) T {
	log := logger.NewDeferLog(nil)
	lexer := NewLexer(log, test.SourceForTest(contents))
	return lexer.Token
}

func expectLexerError(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		func() {
			defer func() {
				r := recover()
				if _, isLexerPanic := r.(LexerPanic); r != nil && !isLexerPanic {
					panic(r)
				}
			}()
			NewLexer(log, test.SourceForTest(contents))
		}()
		msgs := log.Done()
		text := ""
		for _, msg := range msgs {
			text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqual(t, text, expected)
	})
}

func TestComment(t *testing.T) {
	expectLexerError(t, "/*", "<stdin>: error: Expected \"*/\" to terminate multi-line comment\n")
	expectLexerError(t, "/*/", "<stdin>: error: Expected \"*/\" to terminate multi-line comment\n")
	expectLexerError(t, "/**/", "")
	expectLexerError(t, "//", "")
}

func TestJSDocBefore(t *testing.T) {
	lexer := NewLexer(logger.NewDeferLog(nil), test.SourceForTest("/** @const */ // x\nfoo /**/ bar"))
	require.NotNil(t, lexer.JSDocBefore)
	assert.Equal(t, "/** @const */", lexer.JSDocBefore.Text)
	assert.Equal(t, int32(0), lexer.JSDocBefore.Loc.Start)
	assert.Equal(t, TIdentifier, lexer.Token)

	// The comment only belongs to the token right after it
	lexer.Next()
	assert.Nil(t, lexer.JSDocBefore)
	assert.Equal(t, "bar", lexer.Identifier)

	// Plain block comments are not JSDoc
	lexer = NewLexer(logger.NewDeferLog(nil), test.SourceForTest("/* @const */ x"))
	assert.Nil(t, lexer.JSDocBefore)
}

func expectHashbang(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		lexer := NewLexer(log, test.SourceForTest(contents))
		msgs := log.Done()
		test.AssertEqual(t, len(msgs), 0)
		test.AssertEqual(t, lexer.Token, THashbang)
		test.AssertEqual(t, lexer.Identifier, expected)
	})
}

func TestHashbang(t *testing.T) {
	expectHashbang(t, "#!/usr/bin/env node", "#!/usr/bin/env node")
	expectHashbang(t, "#!/usr/bin/env node\n", "#!/usr/bin/env node")
	expectHashbang(t, "#!/usr/bin/env node\nlet x", "#!/usr/bin/env node")
	expectLexerError(t, " #!/usr/bin/env node", "<stdin>: error: Syntax error \"#\"\n")
}

func expectIdentifier(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		lexer := NewLexer(log, test.SourceForTest(contents))
		msgs := log.Done()
		test.AssertEqual(t, len(msgs), 0)
		test.AssertEqual(t, lexer.Token, TIdentifier)
		test.AssertEqual(t, lexer.Identifier, expected)
	})
}

func TestIdentifier(t *testing.T) {
	expectIdentifier(t, "_", "_")
	expectIdentifier(t, "$", "$")
	expectIdentifier(t, "test", "test")
	expectIdentifier(t, "t\\u0065st", "test")
	expectIdentifier(t, "t\\u{65}st", "test")
	expectIdentifier(t, "module$a$b", "module$a$b")
	expectIdentifier(t, "x$$module$a", "x$$module$a")
	expectIdentifier(t, "café", "café")

	expectLexerError(t, "t\\u.", "<stdin>: error: Syntax error \".\"\n")
	expectLexerError(t, "t\\u0.", "<stdin>: error: Syntax error \".\"\n")
	expectLexerError(t, "t\\u{.", "<stdin>: error: Syntax error \".\"\n")
	expectLexerError(t, "t\\u{0.", "<stdin>: error: Syntax error \".\"\n")
	expectLexerError(t, "t\\u0066\\u0067", "")
}

func TestIsIdentifier(t *testing.T) {
	assert.True(t, IsIdentifier("foo"))
	assert.True(t, IsIdentifier("$$"))
	assert.True(t, IsIdentifier("module$ab"))
	assert.False(t, IsIdentifier(""))
	assert.False(t, IsIdentifier("1a"))
	assert.False(t, IsIdentifier("a-b"))
	assert.False(t, IsIdentifier("a.b"))
}

func TestRangeOfIdentifier(t *testing.T) {
	source := test.SourceForTest("let foo = bar")
	test.AssertEqual(t, RangeOfIdentifier(source, logger.Loc{Start: 4}).Len, int32(3))
	test.AssertEqual(t, RangeOfIdentifier(source, logger.Loc{Start: 10}).Len, int32(3))
	test.AssertEqual(t, RangeOfIdentifier(source, logger.Loc{Start: 8}).Len, int32(0))
}

func expectNumber(t *testing.T, contents string, expected float64) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		lexer := NewLexer(log, test.SourceForTest(contents))
		msgs := log.Done()
		test.AssertEqual(t, len(msgs), 0)
		test.AssertEqual(t, lexer.Token, TNumericLiteral)
		test.AssertEqual(t, lexer.Number, expected)
	})
}

func TestNumericLiteral(t *testing.T) {
	expectNumber(t, "0", 0.0)
	expectNumber(t, "000", 0.0)
	expectNumber(t, "123", 123.0)
	expectNumber(t, "987", 987.0)
	expectNumber(t, "0.5", 0.5)
	expectNumber(t, ".5", 0.5)
	expectNumber(t, "1e3", 1000.0)
	expectNumber(t, "1E-3", 0.001)
	expectNumber(t, "0b101", 5.0)
	expectNumber(t, "0o17", 15.0)
	expectNumber(t, "0xFF", 255.0)
	expectNumber(t, "0xff", 255.0)
	expectNumber(t, "1e400", math.Inf(1))

	expectLexerError(t, "0b2", "<stdin>: error: Syntax error \"2\"\n")
	expectLexerError(t, "0o8", "<stdin>: error: Syntax error \"8\"\n")
	expectLexerError(t, "0x", "<stdin>: error: Unexpected end of file\n")
	expectLexerError(t, "1e", "<stdin>: error: Unexpected end of file\n")
	expectLexerError(t, "1a", "<stdin>: error: Syntax error \"a\"\n")
}

func expectBigInteger(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		lexer := NewLexer(log, test.SourceForTest(contents))
		msgs := log.Done()
		test.AssertEqual(t, len(msgs), 0)
		test.AssertEqual(t, lexer.Token, TBigIntegerLiteral)
		test.AssertEqual(t, lexer.Identifier, expected)
	})
}

func TestBigIntegerLiteral(t *testing.T) {
	expectBigInteger(t, "0n", "0")
	expectBigInteger(t, "123n", "123")
	expectBigInteger(t, "0xFFn", "0xFF")

	expectLexerError(t, "01n", "<stdin>: error: Syntax error \"n\"\n")
	expectLexerError(t, "1.5n", "<stdin>: error: Syntax error \"n\"\n")
}

func expectString(t *testing.T, contents string, expected string) {
	t.Helper()
	t.Run(contents, func(t *testing.T) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		lexer := NewLexer(log, test.SourceForTest(contents))
		msgs := log.Done()
		test.AssertEqual(t, len(msgs), 0)
		test.AssertEqual(t, lexer.Token, TStringLiteral)
		assertEqualStrings(t, lexer.StringLiteral, expected)
	})
}

func TestStringLiteral(t *testing.T) {
	expectString(t, "''", "")
	expectString(t, "'123'", "123")
	expectString(t, "\"./a/b.js\"", "./a/b.js")
	expectString(t, "'\\''", "'")
	expectString(t, "'\\\"'", "\"")
	expectString(t, "'\\\\'", "\\")
	expectString(t, "'\\n'", "\n")
	expectString(t, "'\\0'", "\000")
	expectString(t, "'\\x41'", "A")
	expectString(t, "'\\u0041'", "A")
	expectString(t, "'\\u{41}'", "A")
	expectString(t, "'\\u{10000}'", "\U00010000")
	expectString(t, "'\\uD800\\uDC00'", "\U00010000")
	expectString(t, "'a\\\nb'", "ab")
	expectString(t, "'a\\\r\nb'", "ab")
	expectString(t, "'café'", "café")

	expectLexerError(t, "'", "<stdin>: error: Unexpected end of file\n")
	expectLexerError(t, "'\n'", "<stdin>: error: Unterminated string literal\n")
	expectLexerError(t, "'\\x4'", "<stdin>: error: Syntax error \"'\"\n")
	expectLexerError(t, "'\\u{110000}'", "<stdin>: error: Unicode escape sequence is out of range\n")
}

func TestUnpairedSurrogate(t *testing.T) {
	log := logger.NewDeferLog(nil)
	lexer := NewLexer(log, test.SourceForTest("'\\uD800'"))
	require.Empty(t, log.Done())

	// Unpaired surrogates are kept as WTF-8
	c, width := DecodeWTF8Rune(lexer.StringLiteral)
	assert.Equal(t, rune(0xD800), c)
	assert.Equal(t, 3, width)
}

func TestTemplate(t *testing.T) {
	log := logger.NewDeferLog(nil)
	lexer := NewLexer(log, test.SourceForTest("`a${b}c${d}e`"))
	assert.Equal(t, TTemplateHead, lexer.Token)
	assert.Equal(t, "a", lexer.RawTemplateContents())

	lexer.Next()
	assert.Equal(t, TIdentifier, lexer.Token)
	lexer.Next()
	lexer.RescanCloseBraceAsTemplateToken()
	assert.Equal(t, TTemplateMiddle, lexer.Token)
	assert.Equal(t, "c", lexer.RawTemplateContents())

	lexer.Next()
	lexer.Next()
	lexer.RescanCloseBraceAsTemplateToken()
	assert.Equal(t, TTemplateTail, lexer.Token)
	assert.Equal(t, "e", lexer.RawTemplateContents())

	lexer.Next()
	assert.Equal(t, TEndOfFile, lexer.Token)
	assert.Empty(t, log.Done())
}

func TestRegExp(t *testing.T) {
	log := logger.NewDeferLog(nil)
	lexer := NewLexer(log, test.SourceForTest("/a[/]b/gi;"))
	require.Equal(t, TSlash, lexer.Token)
	lexer.ScanRegExp()
	assert.Equal(t, "/a[/]b/gi", lexer.Raw())
	lexer.Next()
	assert.Equal(t, TSemicolon, lexer.Token)

	expectRegExpError := func(contents string, expected string) {
		t.Helper()
		log := logger.NewDeferLog(nil)
		func() {
			defer func() {
				r := recover()
				if _, isLexerPanic := r.(LexerPanic); r != nil && !isLexerPanic {
					panic(r)
				}
			}()
			lexer := NewLexer(log, test.SourceForTest(contents))
			lexer.ScanRegExp()
		}()
		text := ""
		for _, msg := range log.Done() {
			text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
		}
		test.AssertEqual(t, text, expected)
	}
	expectRegExpError("/a/z", "<stdin>: error: Syntax error \"z\"\n")
	expectRegExpError("/a\n/", "<stdin>: error: Syntax error \"\\x0A\"\n")
}

func TestTokens(t *testing.T) {
	expected := []struct {
		contents string
		token    T
	}{
		{"", TEndOfFile},
		{"\x00", TSyntaxError},

		// "#!/usr/bin/env node"
		{"#!", THashbang},

		// Punctuation
		{"(", TOpenParen},
		{")", TCloseParen},
		{"[", TOpenBracket},
		{"]", TCloseBracket},
		{"{", TOpenBrace},
		{"}", TCloseBrace},

		// Reserved words
		{"break", TBreak},
		{"case", TCase},
		{"catch", TCatch},
		{"class", TClass},
		{"const", TConst},
		{"continue", TContinue},
		{"debugger", TDebugger},
		{"default", TDefault},
		{"delete", TDelete},
		{"do", TDo},
		{"else", TElse},
		{"enum", TEnum},
		{"export", TExport},
		{"extends", TExtends},
		{"false", TFalse},
		{"finally", TFinally},
		{"for", TFor},
		{"function", TFunction},
		{"if", TIf},
		{"import", TImport},
		{"in", TIn},
		{"instanceof", TInstanceof},
		{"new", TNew},
		{"null", TNull},
		{"return", TReturn},
		{"super", TSuper},
		{"switch", TSwitch},
		{"this", TThis},
		{"throw", TThrow},
		{"true", TTrue},
		{"try", TTry},
		{"typeof", TTypeof},
		{"var", TVar},
		{"void", TVoid},
		{"while", TWhile},
		{"with", TWith},

		// Contextual keywords are plain identifiers
		{"let", TIdentifier},
		{"from", TIdentifier},
		{"as", TIdentifier},
		{"async", TIdentifier},

		// Escaped keywords
		{"\\u0076ar", TEscapedKeyword},

		// Operators
		{"=>", TEqualsGreaterThan},
		{"...", TDotDotDot},
		{"??", TQuestionQuestion},
		{"??=", TQuestionQuestionEquals},
		{"&&=", TAmpersandAmpersandEquals},
		{"||=", TBarBarEquals},
		{">>>=", TGreaterThanGreaterThanGreaterThanEquals},
		{"**=", TAsteriskAsteriskEquals},
		{"!==", TExclamationEqualsEquals},
	}

	for _, it := range expected {
		contents := it.contents
		token := it.token
		t.Run(contents, func(t *testing.T) {
			test.AssertEqual(t, lexToken(contents), token)
		})
	}
}
