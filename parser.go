// parser.go: tokens -> statements
//
// The parser keeps two tokens of lookahead (ctoken/ntoken), seeded with EOF
// placeholders. Atoms advance without skipping newlines so that statement
// termination can see them; operators and openers advance past newlines.
//
// Statements are handed out one at a time by Next, which lets the evaluator
// interleave parsing and evaluation. Run collects a whole Program.
//
// Termination rules, applied after every top-level statement:
//
//	EOF            plain expression becomes ExpressionReturn
//	';'            consumed, statement kept as is
//	NEWLINE        consumed; a following ';' is consumed too, otherwise a
//	               plain expression becomes ExpressionReturn
//	anything else  InvalidSyntax "expected ';', newline or eof"
//
// Inside a block the same rules apply, except that a statement directly
// followed by '}' is promoted without any terminator.
package gl

type Parser struct {
	lx     *Lexer
	module string

	ctoken  Token
	ntoken  Token
	pending []Token // tokens pulled ahead of ntoken and pushed back
}

func NewParser(lx *Lexer) (*Parser, error) {
	p := &Parser{
		lx:     lx,
		module: lx.Module(),
		ctoken: Token{Type: EOF},
		ntoken: Token{Type: EOF},
	}
	if err := p.nextToken(false); err != nil {
		return nil, err
	}
	if err := p.nextToken(true); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseString parses a whole source text.
func ParseString(src, module string) (*Program, error) {
	p, err := NewParser(NewLexer(NewStringSource(src), module))
	if err != nil {
		return nil, err
	}
	return p.Run()
}

// Next returns the next top-level statement. ok is false at end of input.
func (p *Parser) Next() (stmt Statement, ok bool, err error) {
	if err := p.skipNewlines(); err != nil {
		return nil, false, err
	}
	if p.ctoken.Type == EOF {
		return nil, false, nil
	}
	stmt, err = p.parseStatement(true)
	if err != nil {
		return nil, false, err
	}
	return stmt, true, nil
}

func (p *Parser) Run() (*Program, error) {
	prog := &Program{}
	for {
		stmt, ok, err := p.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return prog, nil
		}
		prog.Statements = append(prog.Statements, stmt)
	}
}

/* ===========================
   PRIVATE: token plumbing
   =========================== */

func (p *Parser) pull() (Token, error) {
	if len(p.pending) > 0 {
		t := p.pending[0]
		p.pending = p.pending[1:]
		return t, nil
	}
	return p.lx.Next()
}

func (p *Parser) nextToken(skipNewlines bool) error {
	p.ctoken = p.ntoken
	t, err := p.pull()
	if err != nil {
		return err
	}
	p.ntoken = t
	if skipNewlines {
		return p.skipNewlines()
	}
	return nil
}

func (p *Parser) skipNewlines() error {
	for p.ctoken.Type == NEWLINE {
		if err := p.nextToken(false); err != nil {
			return err
		}
	}
	return nil
}

// errorAt reports msg at tok. Running into EOF is reported as UnexpectedEOF
// so interactive callers can ask for more input.
func (p *Parser) errorAt(tok Token, msg string) error {
	kind := ExceptInvalidSyntax
	if tok.Type == EOF {
		kind = ExceptUnexpectedEOF
	}
	return NewSyntaxException(kind, msg, p.module, tok.Span.Start)
}

func (p *Parser) expect(t TokenType, msg string) error {
	if p.ctoken.Type != t {
		return p.errorAt(p.ctoken, msg)
	}
	return nil
}

/* ===========================
   PRIVATE: statements
   =========================== */

func (p *Parser) parseStatement(checkFinal bool) (Statement, error) {
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	at := p.ctoken.Span.Start

	var stmt Statement
	var err error
	switch {
	case p.ctoken.Type == IDENTIFIER && p.ntoken.Type == ASSIGN:
		stmt, err = p.parseLetAssign()
	case p.ctoken.Type == COMMENT_LINE:
		if err := p.nextToken(false); err != nil {
			return nil, err
		}
		return noOp(at), nil
	case p.ctoken.Type == COMMENT_BLOCK_OPEN:
		if err := p.skipBlockComment(); err != nil {
			return nil, err
		}
		return noOp(at), nil
	case p.ctoken.Type == LET:
		stmt, err = p.parseLet()
	case p.ctoken.Type == FN:
		var named bool
		if named, err = p.fnIsStatement(); err != nil {
			return nil, err
		}
		if named {
			stmt, err = p.parseFunction()
		} else {
			stmt, err = p.parseExpressionStatement()
		}
	case p.ctoken.Type == IMPORT:
		stmt, err = p.parseImport()
	default:
		stmt, err = p.parseExpressionStatement()
	}
	if err != nil {
		return nil, err
	}
	if checkFinal {
		return p.parseStatementFinal(stmt)
	}
	return stmt, nil
}

func noOp(at Position) Statement {
	return &ExpressionStatement{At: at, Expr: &LiteralExpression{Literal: &NullLiteral{}}, NoOp: true}
}

func (p *Parser) skipBlockComment() error {
	open := p.ctoken
	for p.ctoken.Type != COMMENT_BLOCK_CLOSE {
		if p.ctoken.Type == EOF {
			return NewSyntaxException(ExceptUnexpectedEOF, "unterminated block comment", p.module, open.Span.Start)
		}
		if err := p.nextToken(false); err != nil {
			return err
		}
	}
	return p.nextToken(false)
}

func (p *Parser) parseStatementFinal(stmt Statement) (Statement, error) {
	if es, ok := stmt.(*ExpressionStatement); ok && es.NoOp {
		return stmt, nil
	}
	switch p.ctoken.Type {
	case EOF:
		return promote(stmt), nil
	case SEMICOLON:
		if err := p.nextToken(true); err != nil {
			return nil, err
		}
	case COMMENT_LINE:
		// trailing comment: the newline or EOF after it terminates
		if err := p.nextToken(false); err != nil {
			return nil, err
		}
		return p.parseStatementFinal(stmt)
	case NEWLINE:
		if err := p.nextToken(true); err != nil {
			return nil, err
		}
		if p.ctoken.Type != SEMICOLON {
			return promote(stmt), nil
		}
		if err := p.nextToken(true); err != nil {
			return nil, err
		}
	default:
		return nil, p.errorAt(p.ctoken, "expected ';', newline or eof")
	}
	return stmt, nil
}

// promote turns a plain expression statement into the block's yielded value.
func promote(stmt Statement) Statement {
	if es, ok := stmt.(*ExpressionStatement); ok && !es.NoOp {
		return &ExpressionReturnStatement{At: es.At, Expr: es.Expr}
	}
	return stmt
}

func (p *Parser) parseExpressionStatement() (Statement, error) {
	at := p.ctoken.Span.Start
	expr, err := p.parseExpression(Lowest)
	if err != nil {
		return nil, err
	}
	return &ExpressionStatement{At: at, Expr: expr}, nil
}

func (p *Parser) parseLet() (Statement, error) {
	at := p.ctoken.Span.Start
	if err := p.nextToken(true); err != nil { // let
		return nil, err
	}
	if err := p.expect(IDENTIFIER, "expected identifier"); err != nil {
		return nil, err
	}
	name := p.ctoken.Literal
	if err := p.nextToken(true); err != nil {
		return nil, err
	}
	if err := p.expect(ASSIGN, "expected '='"); err != nil {
		return nil, err
	}
	if err := p.nextToken(true); err != nil {
		return nil, err
	}
	value, err := p.parseExpression(Lowest)
	if err != nil {
		return nil, err
	}
	return &LetStatement{At: at, Name: name, Value: value}, nil
}

func (p *Parser) parseLetAssign() (Statement, error) {
	at := p.ctoken.Span.Start
	name := p.ctoken.Literal
	if err := p.nextToken(true); err != nil { // identifier
		return nil, err
	}
	if err := p.nextToken(true); err != nil { // '='
		return nil, err
	}
	value, err := p.parseExpression(Lowest)
	if err != nil {
		return nil, err
	}
	return &LetAssignStatement{At: at, Name: name, Value: value}, nil
}

func (p *Parser) parseImport() (Statement, error) {
	at := p.ctoken.Span.Start
	if err := p.nextToken(true); err != nil { // import
		return nil, err
	}
	if err := p.expect(STRING, "expected string"); err != nil {
		return nil, err
	}
	path := p.ctoken.Literal
	if err := p.nextToken(false); err != nil {
		return nil, err
	}
	return &ImportStatement{At: at, Path: path}, nil
}

// fnIsStatement looks past any newlines after `fn`: an identifier means a
// named function statement, '(' an anonymous function expression. Tokens
// read while looking are pushed back.
func (p *Parser) fnIsStatement() (bool, error) {
	t := p.ntoken
	var scanned []Token
	for t.Type == NEWLINE {
		next, err := p.pull()
		if err != nil {
			return false, err
		}
		scanned = append(scanned, next)
		t = next
	}
	p.pending = append(scanned, p.pending...)

	switch t.Type {
	case IDENTIFIER:
		return true, nil
	case LPAREN:
		return false, nil
	default:
		return false, p.errorAt(t, "expected identifier or '('")
	}
}

func (p *Parser) parseFunction() (Statement, error) {
	at := p.ctoken.Span.Start
	if err := p.nextToken(true); err != nil { // fn
		return nil, err
	}
	name := p.ctoken.Literal
	if err := p.nextToken(true); err != nil {
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
	return &FnStatement{At: at, Name: name, Params: params, Body: body}, nil
}

func (p *Parser) parseParams() ([]string, error) {
	if err := p.expect(LPAREN, "expected '('"); err != nil {
		return nil, err
	}
	if err := p.nextToken(true); err != nil {
		return nil, err
	}
	var params []string
	for p.ctoken.Type != RPAREN {
		if p.ctoken.Type == COMMA {
			return nil, p.errorAt(p.ctoken, "invalid syntax")
		}
		if err := p.expect(IDENTIFIER, "expected identifier"); err != nil {
			return nil, err
		}
		params = append(params, p.ctoken.Literal)
		if err := p.nextToken(true); err != nil {
			return nil, err
		}
		switch p.ctoken.Type {
		case COMMA:
			if err := p.nextToken(true); err != nil {
				return nil, err
			}
		case RPAREN:
		default:
			return nil, p.errorAt(p.ctoken, "expected ',' or ')'")
		}
	}
	if err := p.nextToken(true); err != nil { // ')'
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseBlock() (*Block, error) {
	if err := p.expect(LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	if err := p.nextToken(true); err != nil {
		return nil, err
	}
	block := &Block{}
	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.ctoken.Type == RBRACE {
			break
		}
		if p.ctoken.Type == EOF {
			return nil, p.errorAt(p.ctoken, "expected '}'")
		}
		stmt, err := p.parseStatement(false)
		if err != nil {
			return nil, err
		}
		if p.ctoken.Type == RBRACE {
			stmt = promote(stmt)
		} else if stmt, err = p.parseStatementFinal(stmt); err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if err := p.nextToken(false); err != nil { // '}'
		return nil, err
	}
	return block, nil
}
