// lexer_test.go
package gl

import (
	"reflect"
	"strings"
	"testing"
)

func toks(t *testing.T, src string) []Token {
	t.Helper()
	ts, err := NewLexer(NewStringSource(src), "<test>").Run()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	return ts
}

func typesOf(tokens []Token) []TokenType {
	out := make([]TokenType, 0, len(tokens))
	for _, tk := range tokens {
		out = append(out, tk.Type)
	}
	return out
}

func wantTypes(t *testing.T, src string, want ...TokenType) []Token {
	t.Helper()
	got := toks(t, src)
	if !reflect.DeepEqual(typesOf(got), want) {
		t.Fatalf("\nsource:\n%s\nwant types:\n%v\ngot types:\n%v\n", src, want, typesOf(got))
	}
	return got
}

func lexErr(t *testing.T, src string) *Exception {
	t.Helper()
	_, err := NewLexer(NewStringSource(src), "<test>").Run()
	if err == nil {
		t.Fatalf("expected lex error for %q", src)
	}
	ex, ok := AsException(err)
	if !ok {
		t.Fatalf("want *Exception, got %T", err)
	}
	if ex.IsRuntime {
		t.Fatalf("lex errors must not be runtime: %v", ex)
	}
	return ex
}

func Test_Lexer_Integer_SpanCoversDigits(t *testing.T) {
	for _, s := range []string{"0", "7", "42", "12345678901234567890123"} {
		got := wantTypes(t, s, INTEGER, EOF)
		if got[0].Literal != s {
			t.Fatalf("literal: want %q, got %q", s, got[0].Literal)
		}
		wantSpan := Span{Start: Position{0, 0}, End: Position{0, len(s)}}
		if got[0].Span != wantSpan {
			t.Fatalf("span for %q: want %v, got %v", s, wantSpan, got[0].Span)
		}
	}
}

func Test_Lexer_Float(t *testing.T) {
	got := wantTypes(t, "3.25", FLOAT, EOF)
	if got[0].Literal != "3.25" {
		t.Fatalf("got %q", got[0].Literal)
	}
}

func Test_Lexer_Number_TwoDotsFails(t *testing.T) {
	ex := lexErr(t, "1.2.3")
	if ex.Except.Kind != ExceptInvalidSyntax {
		t.Fatalf("want InvalidSyntax, got %v", ex.Except)
	}
	if ex.Frames[0].Position != (Position{0, 3}) {
		t.Fatalf("want error at 0:3, got %v", ex.Frames[0].Position)
	}
}

func Test_Lexer_WhitespaceOnly(t *testing.T) {
	wantTypes(t, "", EOF)
	wantTypes(t, "   \t ", EOF)
	got := wantTypes(t, " \n\t\n  \n", NEWLINE, NEWLINE, NEWLINE, EOF)
	for i, tk := range got[:3] {
		if tk.Span.Start.Line != i {
			t.Fatalf("newline %d on line %d", i, tk.Span.Start.Line)
		}
	}
}

func Test_Lexer_Positions_AcrossLines(t *testing.T) {
	got := wantTypes(t, "let x\n  y", LET, IDENTIFIER, NEWLINE, IDENTIFIER, EOF)
	if got[1].Span.Start != (Position{0, 4}) {
		t.Fatalf("x at %v", got[1].Span.Start)
	}
	if got[2].Span != (Span{Start: Position{0, 5}, End: Position{0, 6}}) {
		t.Fatalf("newline span %v", got[2].Span)
	}
	if got[3].Span.Start != (Position{1, 2}) {
		t.Fatalf("y at %v", got[3].Span.Start)
	}
}

func Test_Lexer_Keywords_And_Identifiers(t *testing.T) {
	got := wantTypes(t, "let fn import null true false lettuce _x1",
		LET, FN, IMPORT, NULL, BOOLEAN, BOOLEAN, IDENTIFIER, IDENTIFIER, EOF)
	if got[4].Literal != "true" || got[5].Literal != "false" {
		t.Fatalf("boolean literals: %q %q", got[4].Literal, got[5].Literal)
	}
	if got[6].Literal != "lettuce" {
		t.Fatalf("keyword prefix must stay an identifier, got %q", got[6].Literal)
	}
}

func Test_Lexer_Operators_TwoCharLookahead(t *testing.T) {
	wantTypes(t, "= == ! != < <= > >= : :: + - * /",
		ASSIGN, EQUAL, BANG, NOT_EQUAL, LESS, LESS_EQUAL, GREATER, GREATER_EQUAL,
		COLON, DCOLON, PLUS, MINUS, ASTERISK, SLASH, EOF)
	wantTypes(t, "a::b::c()", IDENTIFIER, DCOLON, IDENTIFIER, DCOLON, IDENTIFIER, LPAREN, RPAREN, EOF)
	wantTypes(t, ". , ; ( ) [ ] { }", DOT, COMMA, SEMICOLON, LPAREN, RPAREN, LBRACKET, RBRACKET, LBRACE, RBRACE, EOF)
}

func Test_Lexer_Strings_Escapes(t *testing.T) {
	got := wantTypes(t, `"a\\b\"c\nd\re\tf"`, STRING, EOF)
	if got[0].Literal != "a\\b\"c\nd\re\tf" {
		t.Fatalf("unescaped literal: %q", got[0].Literal)
	}
}

func Test_Lexer_Strings_UnknownEscape(t *testing.T) {
	ex := lexErr(t, `"a\q"`)
	if ex.Except.Kind != ExceptInvalidSyntax || !strings.Contains(ex.Except.Message, "escape") {
		t.Fatalf("got %v", ex.Except)
	}
}

func Test_Lexer_Strings_Unterminated(t *testing.T) {
	ex := lexErr(t, `"abc`)
	if ex.Except.Kind != ExceptUnexpectedEOF {
		t.Fatalf("want UnexpectedEOF, got %v", ex.Except)
	}
}

func Test_Lexer_Comments(t *testing.T) {
	got := wantTypes(t, "1 // rest of line\n2", INTEGER, COMMENT_LINE, NEWLINE, INTEGER, EOF)
	if got[1].Literal != " rest of line" {
		t.Fatalf("comment literal %q", got[1].Literal)
	}
	wantTypes(t, "/* x */", COMMENT_BLOCK_OPEN, IDENTIFIER, COMMENT_BLOCK_CLOSE, EOF)
}

func Test_Lexer_InvalidCharacter(t *testing.T) {
	ex := lexErr(t, "1 $ 2")
	if ex.Except.Kind != ExceptInvalidSyntax || ex.Except.Message != "invalid character '$'" {
		t.Fatalf("got %v", ex.Except)
	}
	if ex.Frames[0].Position != (Position{0, 2}) {
		t.Fatalf("position %v", ex.Frames[0].Position)
	}
}

func Test_Lexer_EOF_Idempotent(t *testing.T) {
	lx := NewLexer(NewStringSource("x"), "<test>")
	if tk, _ := lx.Next(); tk.Type != IDENTIFIER {
		t.Fatalf("first token %v", tk)
	}
	for i := 0; i < 3; i++ {
		tk, err := lx.Next()
		if err != nil || tk.Type != EOF {
			t.Fatalf("poll %d past end: %v %v", i, tk, err)
		}
	}
}

func Test_Lexer_FileSource(t *testing.T) {
	lx := NewLexer(NewFileSource(strings.NewReader("let é = \"ü\"")), "<file>")
	got, err := lx.Run()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(typesOf(got), []TokenType{LET, IDENTIFIER, ASSIGN, STRING, EOF}) {
		t.Fatalf("got %v", typesOf(got))
	}
	if got[3].Span.End.Column != 11 {
		t.Fatalf("columns must count characters, got end %v", got[3].Span.End)
	}
}
