// lexer.go: character stream -> positioned tokens
//
// The lexer pulls characters from a Source with one character of lookahead
// (cchar/nchar) and hands out tokens one at a time through Next. Sub-scanners
// push finished tokens onto a small FIFO cache which Next drains first. Once
// the Source is exhausted an EOF token is pushed a single time and then served
// on every later call, so callers may poll past the end.
//
// Positions are zero-based. Every consumed character advances the column by
// one; a '\n' emits NEWLINE, then resets the column and bumps the line.
package gl

import (
	"fmt"
	"strings"
	"unicode"
)

type Lexer struct {
	src    Source
	module string

	cchar rune
	nchar rune
	chas  bool // cchar is valid
	nhas  bool // nchar is valid

	pos   Position // position of cchar
	cache []Token
	eof   bool // EOF already pushed
}

// NewLexer primes the two-character window from src. module names the
// source in diagnostics.
func NewLexer(src Source, module string) *Lexer {
	lx := &Lexer{src: src, module: module}
	lx.nchar, lx.nhas = src.NextChar()
	lx.advance()
	lx.pos = Position{}
	return lx
}

func (lx *Lexer) Module() string { return lx.module }

// Next returns the next token.
func (lx *Lexer) Next() (Token, error) {
	for len(lx.cache) == 0 {
		if err := lx.scan(); err != nil {
			return Token{}, err
		}
	}
	tok := lx.cache[0]
	if tok.Type != EOF {
		lx.cache = lx.cache[1:]
	}
	return tok, nil
}

// Run drains the lexer up to and including the first EOF.
func (lx *Lexer) Run() ([]Token, error) {
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

/* ===========================
   PRIVATE: scanning
   =========================== */

func (lx *Lexer) advance() {
	if lx.chas {
		lx.pos.Column++
	}
	lx.cchar, lx.chas = lx.nchar, lx.nhas
	if lx.nhas {
		lx.nchar, lx.nhas = lx.src.NextChar()
	} else {
		lx.nchar = 0
	}
}

func (lx *Lexer) push(t TokenType, lit string, start Position) {
	if t == EOF {
		lx.eof = true
	}
	lx.cache = append(lx.cache, Token{Type: t, Literal: lit, Span: Span{Start: start, End: lx.pos}})
}

func (lx *Lexer) errorf(kind ExceptKind, format string, args ...any) error {
	return NewSyntaxException(kind, fmt.Sprintf(format, args...), lx.module, lx.pos)
}

// scan pushes at least one token to the cache or fails.
func (lx *Lexer) scan() error {
	if !lx.chas {
		if !lx.eof {
			lx.push(EOF, "", lx.pos)
		}
		return nil
	}
	c := lx.cchar
	switch {
	case unicode.IsSpace(c):
		lx.scanWhitespace()
		return nil
	case isDigit(c):
		return lx.scanNumber()
	case c == '_' || unicode.IsLetter(c):
		lx.scanIdentifier()
		return nil
	case c == '"':
		return lx.scanString()
	default:
		return lx.scanPunctuation()
	}
}

func (lx *Lexer) scanWhitespace() {
	for lx.chas && unicode.IsSpace(lx.cchar) {
		if lx.cchar == '\n' {
			start := lx.pos
			lx.advance()
			lx.push(NEWLINE, "", start)
			lx.pos.Column = 0
			lx.pos.Line++
			return
		}
		lx.advance()
	}
}

func (lx *Lexer) scanNumber() error {
	start := lx.pos
	var b strings.Builder
	dot := false
	for lx.chas && (isDigit(lx.cchar) || lx.cchar == '.') {
		if lx.cchar == '.' {
			if dot {
				return lx.errorf(ExceptInvalidSyntax, "invalid character '.'")
			}
			dot = true
		}
		b.WriteRune(lx.cchar)
		lx.advance()
	}
	if dot {
		lx.push(FLOAT, b.String(), start)
	} else {
		lx.push(INTEGER, b.String(), start)
	}
	return nil
}

func (lx *Lexer) scanIdentifier() {
	start := lx.pos
	var b strings.Builder
	for lx.chas && (lx.cchar == '_' || unicode.IsLetter(lx.cchar) || unicode.IsDigit(lx.cchar)) {
		b.WriteRune(lx.cchar)
		lx.advance()
	}
	word := b.String()
	if t, ok := keywords[word]; ok {
		lx.push(t, word, start)
		return
	}
	lx.push(IDENTIFIER, word, start)
}

func (lx *Lexer) scanString() error {
	start := lx.pos
	lx.advance() // opening quote
	var b strings.Builder
	escape := false
	for lx.chas && (lx.cchar != '"' || escape) {
		if escape {
			switch lx.cchar {
			case '\\':
				b.WriteByte('\\')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				return lx.errorf(ExceptInvalidSyntax, "unknown character escape: `%c`", lx.cchar)
			}
			escape = false
		} else if lx.cchar == '\\' {
			escape = true
		} else {
			b.WriteRune(lx.cchar)
		}
		lx.advance()
	}
	if !lx.chas {
		return lx.errorf(ExceptUnexpectedEOF, "unterminated double quote string")
	}
	lx.advance() // closing quote
	lx.push(STRING, b.String(), start)
	return nil
}

// twoChar maps a first character to the token formed with a given second one.
var twoChar = map[rune]struct {
	second rune
	pair   TokenType
	single TokenType
}{
	'=': {'=', EQUAL, ASSIGN},
	'!': {'=', NOT_EQUAL, BANG},
	'<': {'=', LESS_EQUAL, LESS},
	'>': {'=', GREATER_EQUAL, GREATER},
	':': {':', DCOLON, COLON},
}

var oneChar = map[rune]TokenType{
	'+': PLUS,
	'-': MINUS,
	'.': DOT,
	',': COMMA,
	';': SEMICOLON,
	'(': LPAREN,
	')': RPAREN,
	'[': LBRACKET,
	']': RBRACKET,
	'{': LBRACE,
	'}': RBRACE,
}

func (lx *Lexer) scanPunctuation() error {
	start := lx.pos
	c := lx.cchar

	switch {
	case c == '/' && lx.nhas && lx.nchar == '/':
		lx.advance()
		lx.advance()
		var b strings.Builder
		for lx.chas && lx.cchar != '\n' {
			b.WriteRune(lx.cchar)
			lx.advance()
		}
		lx.push(COMMENT_LINE, b.String(), start)
		return nil
	case c == '/' && lx.nhas && lx.nchar == '*':
		lx.advance()
		lx.advance()
		lx.push(COMMENT_BLOCK_OPEN, "/*", start)
		return nil
	case c == '*' && lx.nhas && lx.nchar == '/':
		lx.advance()
		lx.advance()
		lx.push(COMMENT_BLOCK_CLOSE, "*/", start)
		return nil
	case c == '/':
		lx.advance()
		lx.push(SLASH, "/", start)
		return nil
	case c == '*':
		lx.advance()
		lx.push(ASTERISK, "*", start)
		return nil
	}

	if tc, ok := twoChar[c]; ok {
		if lx.nhas && lx.nchar == tc.second {
			lx.advance()
			lx.advance()
			lx.push(tc.pair, string([]rune{c, tc.second}), start)
			return nil
		}
		lx.advance()
		lx.push(tc.single, string(c), start)
		return nil
	}
	if t, ok := oneChar[c]; ok {
		lx.advance()
		lx.push(t, string(c), start)
		return nil
	}
	return lx.errorf(ExceptInvalidSyntax, "invalid character '%c'", c)
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }
