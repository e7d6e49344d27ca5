package gl

import (
	"fmt"
	"math/big"
	"strings"
)

// parseExpression is precedence climbing: parse an atom, then keep folding
// infix/postfix operators that bind tighter than prec.
func (p *Parser) parseExpression(prec Precedence) (Expression, error) {
	if p.ctoken.Type == EOF {
		return nil, p.errorAt(p.ctoken, "unexpected EOF while parsing")
	}
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for prec < precedenceOf(p.ctoken.Type) {
		switch p.ctoken.Type {
		case LPAREN:
			left, err = p.parseCall(left)
		case LBRACKET:
			left, err = p.parseIndex(left)
		case DCOLON:
			left, err = p.parseProperty(left)
		case COMMA:
			left, err = p.parseCommaTuple(left)
		default:
			left, err = p.parseInfix(left)
		}
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) parseAtom() (Expression, error) {
	tok := p.ctoken
	switch tok.Type {
	case IDENTIFIER:
		return &Identifier{Name: tok.Literal}, p.nextToken(false)
	case NULL:
		return literal(&NullLiteral{}), p.nextToken(false)
	case BOOLEAN:
		return literal(&BooleanLiteral{Value: tok.Literal == "true"}), p.nextToken(false)
	case STRING:
		return literal(&StringLiteral{Value: tok.Literal}), p.nextToken(false)
	case INTEGER:
		n, ok := new(big.Int).SetString(tok.Literal, 10)
		if !ok {
			return nil, p.errorAt(tok, fmt.Sprintf("invalid integer literal %q", tok.Literal))
		}
		return literal(&IntegerLiteral{Value: n}), p.nextToken(false)
	case FLOAT:
		r, ok := parseRat(tok.Literal)
		if !ok {
			return nil, p.errorAt(tok, fmt.Sprintf("invalid float literal %q", tok.Literal))
		}
		return literal(&FloatLiteral{Value: r, Text: tok.Literal}), p.nextToken(false)
	case BANG, PLUS, MINUS:
		return p.parsePrefix()
	case FN:
		return p.parseFunctionAnonymous()
	case LPAREN:
		return p.parseGroup()
	case LBRACKET:
		return p.parseVector()
	case LBRACE:
		return p.parseMap()
	default:
		return nil, p.errorAt(tok, fmt.Sprintf("unexpected token %s", tok.Type))
	}
}

func literal(l Literal) Expression { return &LiteralExpression{Literal: l} }

func parseRat(text string) (*big.Rat, bool) {
	if strings.HasSuffix(text, ".") {
		text += "0"
	}
	return new(big.Rat).SetString(text)
}

func (p *Parser) parsePrefix() (Expression, error) {
	op := p.ctoken.Literal
	if err := p.nextToken(true); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(Prefix)
	if err != nil {
		return nil, err
	}
	return &PrefixExpression{Op: op, Right: right}, nil
}

func (p *Parser) parseInfix(left Expression) (Expression, error) {
	op := p.ctoken
	if err := p.nextToken(true); err != nil {
		return nil, err
	}
	right, err := p.parseExpression(precedenceOf(op.Type))
	if err != nil {
		return nil, err
	}
	return &InfixExpression{Op: op.Literal, Left: left, Right: right}, nil
}

func (p *Parser) parseFunctionAnonymous() (Expression, error) {
	if err := p.nextToken(true); err != nil { // fn
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FnExpression{Params: params, Body: body}, nil
}

// parseDelimited parses Comma-precedence elements up to closer, allowing a
// trailing comma and newlines between elements. The opener must be current.
func (p *Parser) parseDelimited(closer TokenType, msg string) ([]Expression, error) {
	if err := p.nextToken(true); err != nil { // opener
		return nil, err
	}
	var elems []Expression
	for p.ctoken.Type != closer {
		e, err := p.parseExpression(Comma)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		switch p.ctoken.Type {
		case COMMA:
			if err := p.nextToken(true); err != nil {
				return nil, err
			}
		case closer:
		default:
			return nil, p.errorAt(p.ctoken, msg)
		}
	}
	return elems, p.nextToken(false) // closer
}

// parseGroup handles '(' ... ')': one element collapses to itself, any other
// count is a tuple.
func (p *Parser) parseGroup() (Expression, error) {
	elems, err := p.parseDelimited(RPAREN, "expected ',' or ')'")
	if err != nil {
		return nil, err
	}
	if len(elems) == 1 {
		return elems[0], nil
	}
	return literal(&TupleLiteral{Elems: elems}), nil
}

// parseCommaTuple continues `a, b, c` when an expression is already parsed.
func (p *Parser) parseCommaTuple(first Expression) (Expression, error) {
	elems := []Expression{first}
	for p.ctoken.Type == COMMA {
		if err := p.nextToken(true); err != nil {
			return nil, err
		}
		e, err := p.parseExpression(Comma)
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return literal(&TupleLiteral{Elems: elems}), nil
}

func (p *Parser) parseVector() (Expression, error) {
	elems, err := p.parseDelimited(RBRACKET, "expected ',' or ']'")
	if err != nil {
		return nil, err
	}
	return literal(&VectorLiteral{Elems: elems}), nil
}

func (p *Parser) parseMap() (Expression, error) {
	if err := p.nextToken(true); err != nil { // '{'
		return nil, err
	}
	m := &MapLiteral{}
	for p.ctoken.Type != RBRACE {
		key, err := p.parseExpression(Comma)
		if err != nil {
			return nil, err
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if err := p.expect(COLON, "expected ':'"); err != nil {
			return nil, err
		}
		if err := p.nextToken(true); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(Comma)
		if err != nil {
			return nil, err
		}
		m.Pairs = append(m.Pairs, MapPair{Key: key, Value: value})
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		switch p.ctoken.Type {
		case COMMA:
			if err := p.nextToken(true); err != nil {
				return nil, err
			}
		case RBRACE:
		default:
			return nil, p.errorAt(p.ctoken, "expected ',' or '}'")
		}
	}
	return literal(m), p.nextToken(false)
}

func (p *Parser) parseCall(callee Expression) (Expression, error) {
	at := p.ctoken.Span.Start
	args, err := p.parseDelimited(RPAREN, "expected ',' or ')'")
	if err != nil {
		return nil, err
	}
	return &CallExpression{At: at, Callee: callee, Args: args}, nil
}

func (p *Parser) parseIndex(target Expression) (Expression, error) {
	at := p.ctoken.Span.Start
	if err := p.nextToken(true); err != nil { // '['
		return nil, err
	}
	key, err := p.parseExpression(Lowest)
	if err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	if err := p.expect(RBRACKET, "expected ']'"); err != nil {
		return nil, err
	}
	return &IndexExpression{At: at, Target: target, Key: key}, p.nextToken(false)
}

func (p *Parser) parseProperty(target Expression) (Expression, error) {
	at := p.ctoken.Span.Start
	if err := p.nextToken(true); err != nil { // '::'
		return nil, err
	}
	member, err := p.parsePropertyMember()
	if err != nil {
		return nil, err
	}
	return &PropertyExpression{At: at, Target: target, Member: member}, nil
}

// parsePropertyMember parses what follows '::': a member, or a brace list of
// members for batch access.
func (p *Parser) parsePropertyMember() (Expression, error) {
	if p.ctoken.Type != LBRACE {
		return p.parseMember()
	}
	if err := p.nextToken(true); err != nil { // '{'
		return nil, err
	}
	var members []Expression
	for p.ctoken.Type != RBRACE {
		m, err := p.parseMember()
		if err != nil {
			return nil, err
		}
		members = append(members, m)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		switch p.ctoken.Type {
		case COMMA:
			if err := p.nextToken(true); err != nil {
				return nil, err
			}
		case RBRACE:
		default:
			return nil, p.errorAt(p.ctoken, "expected ',' or '}'")
		}
	}
	return literal(&VectorLiteral{Elems: members}), p.nextToken(false)
}

// parseMember parses `name`, `name(args)`, optionally followed by a further
// `::` chain, which nests to the right.
func (p *Parser) parseMember() (Expression, error) {
	if err := p.expect(IDENTIFIER, "expected identifier"); err != nil {
		return nil, err
	}
	var member Expression = &Identifier{Name: p.ctoken.Literal}
	if err := p.nextToken(false); err != nil {
		return nil, err
	}
	if p.ctoken.Type == LPAREN {
		call, err := p.parseCall(member)
		if err != nil {
			return nil, err
		}
		member = call
	}
	if p.ctoken.Type == DCOLON {
		return p.parseProperty(member)
	}
	return member, nil
}
