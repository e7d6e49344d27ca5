// ast.go: syntax tree produced by the parser
//
// Statement, Expression and Literal are closed sets: every variant is a struct
// in this file, and the marker methods keep foreign types out. Each node has a
// canonical String form; for literal-only expressions, re-parsing that form
// yields an equivalent tree.
package gl

import (
	"math/big"
	"strings"
)

// Precedence orders binding strength for the expression parser.
type Precedence int

const (
	Lowest Precedence = iota
	Comma
	Equality
	Relational
	Additive
	Multiplicative
	Prefix
	Call
	Index
	Property
)

func precedenceOf(t TokenType) Precedence {
	switch t {
	case COMMA:
		return Comma
	case EQUAL, NOT_EQUAL:
		return Equality
	case LESS, LESS_EQUAL, GREATER, GREATER_EQUAL:
		return Relational
	case PLUS, MINUS:
		return Additive
	case ASTERISK, SLASH:
		return Multiplicative
	case LPAREN:
		return Call
	case LBRACKET:
		return Index
	case DCOLON:
		return Property
	default:
		return Lowest
	}
}

////////////////////////////////////////////////////////////////////////////////
//                                 STATEMENTS
////////////////////////////////////////////////////////////////////////////////

type Statement interface {
	Pos() Position
	String() string
	statementNode()
}

type LetStatement struct {
	At    Position
	Name  string
	Value Expression
}

// LetAssignStatement rebinds an existing name: `name = value`.
type LetAssignStatement struct {
	At    Position
	Name  string
	Value Expression
}

// ExpressionStatement evaluates Expr for its effects. NoOp marks the
// placeholder a comment is rewritten to; it never becomes a block result.
type ExpressionStatement struct {
	At   Position
	Expr Expression
	NoOp bool
}

// ExpressionReturnStatement yields the value of the enclosing block or program.
type ExpressionReturnStatement struct {
	At   Position
	Expr Expression
}

type FnStatement struct {
	At     Position
	Name   string
	Params []string
	Body   *Block
}

type ImportStatement struct {
	At   Position
	Path string
}

func (s *LetStatement) Pos() Position              { return s.At }
func (s *LetAssignStatement) Pos() Position        { return s.At }
func (s *ExpressionStatement) Pos() Position       { return s.At }
func (s *ExpressionReturnStatement) Pos() Position { return s.At }
func (s *FnStatement) Pos() Position               { return s.At }
func (s *ImportStatement) Pos() Position           { return s.At }

func (*LetStatement) statementNode()              {}
func (*LetAssignStatement) statementNode()        {}
func (*ExpressionStatement) statementNode()       {}
func (*ExpressionReturnStatement) statementNode() {}
func (*FnStatement) statementNode()               {}
func (*ImportStatement) statementNode()           {}

func (s *LetStatement) String() string       { return "let " + s.Name + " = " + s.Value.String() }
func (s *LetAssignStatement) String() string { return s.Name + " = " + s.Value.String() }
func (s *ExpressionStatement) String() string {
	if s.NoOp {
		return "null;"
	}
	return s.Expr.String() + ";"
}
func (s *ExpressionReturnStatement) String() string { return s.Expr.String() }
func (s *FnStatement) String() string {
	return "fn " + s.Name + "(" + strings.Join(s.Params, ", ") + ") " + s.Body.String()
}
func (s *ImportStatement) String() string { return "import " + quoteString(s.Path) }

// Block is a braced statement list.
type Block struct {
	Statements []Statement
}

func (b *Block) String() string {
	if len(b.Statements) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range b.Statements {
		for _, line := range strings.Split(s.String(), "\n") {
			sb.WriteString("\t")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// Program is the root of a parsed source.
type Program struct {
	Statements []Statement
}

func (p *Program) String() string {
	parts := make([]string, len(p.Statements))
	for i, s := range p.Statements {
		parts[i] = s.String()
	}
	return strings.Join(parts, "\n")
}

////////////////////////////////////////////////////////////////////////////////
//                                 EXPRESSIONS
////////////////////////////////////////////////////////////////////////////////

type Expression interface {
	String() string
	expressionNode()
}

type Identifier struct {
	Name string
}

type LiteralExpression struct {
	Literal Literal
}

type PrefixExpression struct {
	Op    string
	Right Expression
}

type InfixExpression struct {
	Op    string
	Left  Expression
	Right Expression
}

type FnExpression struct {
	Params []string
	Body   *Block
}

type CallExpression struct {
	At     Position
	Callee Expression
	Args   []Expression
}

type IndexExpression struct {
	At     Position
	Target Expression
	Key    Expression
}

// PropertyExpression is `Target::Member`. Member is an *Identifier, a
// *CallExpression whose callee is an *Identifier, a nested
// *PropertyExpression (right-recursive chain), or a vector literal of members
// for the batch form `a::{b, c()}`.
type PropertyExpression struct {
	At     Position
	Target Expression
	Member Expression
}

func (*Identifier) expressionNode()         {}
func (*LiteralExpression) expressionNode()  {}
func (*PrefixExpression) expressionNode()   {}
func (*InfixExpression) expressionNode()    {}
func (*FnExpression) expressionNode()       {}
func (*CallExpression) expressionNode()     {}
func (*IndexExpression) expressionNode()    {}
func (*PropertyExpression) expressionNode() {}

func (e *Identifier) String() string        { return e.Name }
func (e *LiteralExpression) String() string { return e.Literal.String() }
func (e *PrefixExpression) String() string  { return "(" + e.Op + e.Right.String() + ")" }
func (e *InfixExpression) String() string {
	return "(" + e.Left.String() + " " + e.Op + " " + e.Right.String() + ")"
}
func (e *FnExpression) String() string {
	return "fn(" + strings.Join(e.Params, ", ") + ") " + e.Body.String()
}
func (e *CallExpression) String() string {
	return e.Callee.String() + "(" + joinExpressions(e.Args) + ")"
}
func (e *IndexExpression) String() string {
	return e.Target.String() + "[" + e.Key.String() + "]"
}
func (e *PropertyExpression) String() string {
	if lit, ok := e.Member.(*LiteralExpression); ok {
		if vec, ok := lit.Literal.(*VectorLiteral); ok {
			return e.Target.String() + "::{" + joinExpressions(vec.Elems) + "}"
		}
	}
	return e.Target.String() + "::" + e.Member.String()
}

////////////////////////////////////////////////////////////////////////////////
//                                  LITERALS
////////////////////////////////////////////////////////////////////////////////

type Literal interface {
	String() string
	literalNode()
}

type NullLiteral struct{}

type IntegerLiteral struct {
	Value *big.Int
}

// FloatLiteral keeps the source text so String round-trips exactly.
type FloatLiteral struct {
	Value *big.Rat
	Text  string
}

type BooleanLiteral struct {
	Value bool
}

type StringLiteral struct {
	Value string
}

type VectorLiteral struct {
	Elems []Expression
}

type TupleLiteral struct {
	Elems []Expression
}

type MapPair struct {
	Key   Expression
	Value Expression
}

type MapLiteral struct {
	Pairs []MapPair
}

func (*NullLiteral) literalNode()    {}
func (*IntegerLiteral) literalNode() {}
func (*FloatLiteral) literalNode()   {}
func (*BooleanLiteral) literalNode() {}
func (*StringLiteral) literalNode()  {}
func (*VectorLiteral) literalNode()  {}
func (*TupleLiteral) literalNode()   {}
func (*MapLiteral) literalNode()     {}

func (*NullLiteral) String() string      { return "null" }
func (l *IntegerLiteral) String() string { return l.Value.String() }
func (l *FloatLiteral) String() string {
	if l.Text != "" {
		return l.Text
	}
	return formatRat(l.Value)
}
func (l *BooleanLiteral) String() string {
	if l.Value {
		return "true"
	}
	return "false"
}
func (l *StringLiteral) String() string { return quoteString(l.Value) }
func (l *VectorLiteral) String() string { return "[" + joinExpressions(l.Elems) + "]" }
func (l *TupleLiteral) String() string  { return "(" + joinExpressions(l.Elems) + ")" }
func (l *MapLiteral) String() string {
	parts := make([]string, len(l.Pairs))
	for i, p := range l.Pairs {
		parts[i] = p.Key.String() + ": " + p.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func joinExpressions(xs []Expression) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.String()
	}
	return strings.Join(parts, ", ")
}

// quoteString renders s as a string literal using only the escapes the
// lexer understands.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
