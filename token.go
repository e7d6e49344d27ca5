package gl

import "fmt"

// Position is a zero-based line/column pair. Columns count characters, not bytes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

// Span covers [Start, End) of a token.
type Span struct {
	Start Position
	End   Position
}

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	NEWLINE

	// Literals & identifiers
	IDENTIFIER
	NULL
	BOOLEAN
	INTEGER
	FLOAT
	STRING

	// Keywords
	LET
	FN
	IMPORT

	// Operators
	PLUS
	MINUS
	ASTERISK
	SLASH
	ASSIGN        // "="
	EQUAL         // "=="
	NOT_EQUAL     // "!="
	LESS          // "<"
	LESS_EQUAL    // "<="
	GREATER       // ">"
	GREATER_EQUAL // ">="
	BANG          // "!"
	DCOLON        // "::"

	// Punctuation
	COLON
	DOT
	COMMA
	SEMICOLON
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE

	// Comments
	COMMENT_LINE        // "//" up to the end of the line
	COMMENT_BLOCK_OPEN  // "/*"
	COMMENT_BLOCK_CLOSE // "*/"
)

var tokenNames = [...]string{
	EOF:                 "EOF",
	NEWLINE:             "NEWLINE",
	IDENTIFIER:          "IDENTIFIER",
	NULL:                "NULL",
	BOOLEAN:             "BOOLEAN",
	INTEGER:             "INTEGER",
	FLOAT:               "FLOAT",
	STRING:              "STRING",
	LET:                 "LET",
	FN:                  "FN",
	IMPORT:              "IMPORT",
	PLUS:                "PLUS",
	MINUS:               "MINUS",
	ASTERISK:            "ASTERISK",
	SLASH:               "SLASH",
	ASSIGN:              "ASSIGN",
	EQUAL:               "EQUAL",
	NOT_EQUAL:           "NOT_EQUAL",
	LESS:                "LESS",
	LESS_EQUAL:          "LESS_EQUAL",
	GREATER:             "GREATER",
	GREATER_EQUAL:       "GREATER_EQUAL",
	BANG:                "BANG",
	DCOLON:              "DCOLON",
	COLON:               "COLON",
	DOT:                 "DOT",
	COMMA:               "COMMA",
	SEMICOLON:           "SEMICOLON",
	LPAREN:              "LPAREN",
	RPAREN:              "RPAREN",
	LBRACKET:            "LBRACKET",
	RBRACKET:            "RBRACKET",
	LBRACE:              "LBRACE",
	RBRACE:              "RBRACE",
	COMMENT_LINE:        "COMMENT_LINE",
	COMMENT_BLOCK_OPEN:  "COMMENT_BLOCK_OPEN",
	COMMENT_BLOCK_CLOSE: "COMMENT_BLOCK_CLOSE",
}

func (t TokenType) String() string {
	if int(t) >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexical token. Literal holds the text for identifiers, numbers,
// strings (unescaped), booleans, line comments and operators.
type Token struct {
	Type    TokenType
	Literal string
	Span    Span
}

func (t Token) String() string {
	switch t.Type {
	case IDENTIFIER, INTEGER, FLOAT, BOOLEAN:
		return fmt.Sprintf("%s(%s)", t.Type, t.Literal)
	case STRING, COMMENT_LINE:
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	default:
		return t.Type.String()
	}
}

var keywords = map[string]TokenType{
	"null":   NULL,
	"true":   BOOLEAN,
	"false":  BOOLEAN,
	"let":    LET,
	"fn":     FN,
	"import": IMPORT,
}
