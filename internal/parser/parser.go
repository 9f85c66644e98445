package parser

import (
	"fmt"

	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/sink"
	"quill/internal/token"
)

// Code is the diagnostic code of every parse error.
const Code = "QP0001"

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []string
	diags  []diag.Diagnostic

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

/* -------------------- precedence -------------------- */

const (
	_ int = iota
	LOWEST
	ORPREC      // ||
	ANDPREC     // &&
	EQUALS      // == !=
	LESSGREATER // < <= > >=
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // -X, !X
)

var precedences = map[token.Type]int{
	token.OR:      ORPREC,
	token.AND:     ANDPREC,
	token.EQ:      EQUALS,
	token.NE:      EQUALS,
	token.LT:      LESSGREATER,
	token.LE:      LESSGREATER,
	token.GT:      LESSGREATER,
	token.GE:      LESSGREATER,
	token.PLUS:    SUM,
	token.MINUS:   SUM,
	token.STAR:    PRODUCT,
	token.SLASH:   PRODUCT,
	token.PERCENT: PRODUCT,
}

/* -------------------- constructor -------------------- */

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:              l,
		errors:         []string{},
		diags:          []diag.Diagnostic{},
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
	}

	// read two tokens, so cur and peek are set
	p.nextToken()
	p.nextToken()

	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)

	for tt := range precedences {
		p.registerInfix(tt, p.parseInfixExpression)
	}

	return p
}

// Parse is a convenience wrapper: lex and parse src in one step.
func Parse(src string) (*ast.Program, []diag.Diagnostic) {
	p := New(lexer.New(src))
	prog := p.ParseProgram()
	return prog, p.Diagnostics()
}

func (p *Parser) Diagnostics() []diag.Diagnostic { return p.diags }
func (p *Parser) Errors() []string               { return p.errors }

/* -------------------- program -------------------- */

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Statements: []ast.Statement{}}

	for p.curToken.Type != token.EOF {
		if p.isSeparator(p.curToken.Type) {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}

		p.nextToken()
	}

	return program
}

/* -------------------- statements -------------------- */

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	case token.RBRACE:
		p.errorAt(p.curToken, "unexpected '}'")
		return nil
	default:
		stmt := p.parseSimpleStatement()
		p.endStatement(stmt)
		return stmt
	}
}

// parseSimpleStatement parses the statements allowed in a for header as
// well as at statement level: declarations, assignments, output and bare
// expressions.
func (p *Parser) parseSimpleStatement() ast.Statement {
	switch {
	case p.curToken.Type == token.LET || p.curToken.Type == token.CONST:
		return p.parseLetStatement()
	case p.curToken.Type == token.IDENT && p.curToken.Literal == "console" && p.peekToken.Type == token.DOT:
		return p.parseOutputStatement()
	case p.curToken.Type == token.IDENT && (token.IsAssignOp(p.peekToken.Type) || p.peekToken.Type == token.INC || p.peekToken.Type == token.DEC):
		return p.parseAssignStatement()
	default:
		return p.parseExpressionStatement()
	}
}

// endStatement reports trailing tokens after a simple statement and skips
// to the next separator so one mistake yields one diagnostic.
func (p *Parser) endStatement(stmt ast.Statement) {
	if p.peekEndsStatement() {
		return
	}
	if stmt != nil {
		p.errorAt(p.peekToken, fmt.Sprintf("unexpected %s after statement", describe(p.peekToken)))
	}
	for !p.peekEndsStatement() {
		p.nextToken()
	}
}

func (p *Parser) parseLetStatement() ast.Statement {
	stmt := &ast.LetStatement{Token: p.curToken, Mutable: p.curToken.Type == token.LET}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekToken.Type == token.COLON {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Type = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	}

	if p.peekToken.Type != token.ASSIGN {
		p.errorAt(stmt.Name.Token, fmt.Sprintf("missing initializer in declaration of %q", stmt.Name.Value))
		return nil
	}
	p.nextToken() // '='
	p.nextToken() // start of value expression
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseAssignStatement() ast.Statement {
	// curToken is IDENT, peek is an assignment operator, '++' or '--'
	stmt := &ast.AssignStatement{
		Token: p.curToken,
		Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
	}

	p.nextToken()
	stmt.OpToken = p.curToken
	stmt.Op = p.curToken.Type
	if stmt.Op == token.INC || stmt.Op == token.DEC {
		return stmt
	}

	p.nextToken() // start of value expression
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseOutputStatement() ast.Statement {
	stmt := &ast.OutputStatement{Token: p.curToken}

	p.nextToken() // '.'
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	sev, ok := sink.ConsoleMethods[p.curToken.Literal]
	if !ok {
		p.errorAt(p.curToken, fmt.Sprintf("unknown console method %q", p.curToken.Literal))
		return nil
	}
	stmt.Method = p.curToken.Literal
	stmt.Severity = sev

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	args, ok := p.parseCallArguments()
	if !ok {
		return nil
	}
	stmt.Args = args

	return stmt
}

func (p *Parser) parseExpressionStatement() ast.Statement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	cond, ok := p.parseCondition()
	if !ok {
		return nil
	}
	stmt.Condition = cond
	stmt.Consequence = p.parseBody()
	if stmt.Consequence == nil {
		return nil
	}

	// Optional else
	p.skipSeparatorsPeek()
	if p.peekToken.Type == token.ELSE {
		p.nextToken() // move to ELSE
		p.skipNewlinesPeek()
		if p.peekToken.Type == token.IF {
			p.nextToken()
			alt := p.parseIfStatement()
			if alt == nil {
				return nil
			}
			stmt.Alternative = alt
			return stmt
		}
		alt := p.parseBody()
		if alt == nil {
			return nil
		}
		stmt.Alternative = alt
	}

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	cond, ok := p.parseCondition()
	if !ok {
		return nil
	}
	stmt.Condition = cond
	stmt.Body = p.parseBody()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

// parseCondition parses "( expr )" after if/while.
func (p *Parser) parseCondition() (ast.Expression, bool) {
	if !p.expectPeek(token.LPAREN) {
		return nil, false
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if cond == nil {
		return nil, false
	}
	if !p.expectPeekNoSkip(token.RPAREN) {
		return nil, false
	}
	return cond, true
}

func (p *Parser) parseForStatement() ast.Statement {
	stmt := &ast.ForStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken() // first token inside '('

	// init
	if p.curToken.Type != token.SEMICOLON {
		stmt.Init = p.parseSimpleStatement()
		if stmt.Init == nil {
			return nil
		}
		if _, ok := stmt.Init.(*ast.OutputStatement); ok {
			p.errorAt(stmt.Init.Pos(), "output statement not allowed in for initializer")
			return nil
		}
		if !p.expectPeekNoSkip(token.SEMICOLON) {
			return nil
		}
	}
	p.nextToken() // move to condition or ';'

	// cond
	if p.curToken.Type != token.SEMICOLON {
		stmt.Cond = p.parseExpression(LOWEST)
		if stmt.Cond == nil {
			return nil
		}
		if !p.expectPeekNoSkip(token.SEMICOLON) {
			return nil
		}
	}
	p.nextToken() // move to post or ')'

	// post
	if p.curToken.Type != token.RPAREN {
		post := p.parseSimpleStatement()
		if post == nil {
			return nil
		}
		if _, ok := post.(*ast.LetStatement); ok {
			p.errorAt(post.Pos(), "declaration not allowed in for update clause")
			return nil
		}
		stmt.Post = post
		if !p.expectPeekNoSkip(token.RPAREN) {
			return nil
		}
	}

	stmt.Body = p.parseBody()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

// parseBody parses the body of if/else/while/for: a braced block, a single
// statement, or an empty statement ";". A single statement is wrapped in a
// block so it still runs in its own frame.
func (p *Parser) parseBody() *ast.BlockStatement {
	p.skipNewlinesPeek()
	if p.peekToken.Type == token.LBRACE {
		p.nextToken()
		return p.parseBlockStatement()
	}

	p.nextToken()
	block := &ast.BlockStatement{
		Token: token.Token{Type: token.LBRACE, Literal: "{", Line: p.curToken.Line, Col: p.curToken.Col},
		Statements: []ast.Statement{},
	}
	if p.curToken.Type == token.SEMICOLON {
		return block
	}
	if p.curToken.Type == token.EOF || p.curToken.Type == token.RBRACE {
		p.errorAt(p.curToken, fmt.Sprintf("expected statement, got %s", describe(p.curToken)))
		return nil
	}
	stmt := p.parseStatement()
	if stmt == nil {
		return nil
	}
	block.Statements = append(block.Statements, stmt)
	return block
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	// curToken is '{'
	block := &ast.BlockStatement{Token: p.curToken, Statements: []ast.Statement{}}

	p.nextToken()

	for p.curToken.Type != token.RBRACE && p.curToken.Type != token.EOF {
		if p.isSeparator(p.curToken.Type) {
			p.nextToken()
			continue
		}

		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}

		p.nextToken()
	}

	if p.curToken.Type != token.RBRACE {
		p.errorAt(block.Token, "unterminated block, expected '}'")
	}

	return block
}

/* -------------------- expressions (Pratt) -------------------- */

func (p *Parser) parseExpression(precedence int) ast.Expression {
	// stop on statement terminators / block end
	if p.isTerminator(p.curToken.Type) {
		p.errorAt(p.curToken, fmt.Sprintf("expected expression, got %s", describe(p.curToken)))
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}

	leftExp := prefix()

	for leftExp != nil && !p.peekIsTerminator() && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken() // advance to infix operator
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	return &ast.IntegerLiteral{Token: p.curToken, Literal: p.curToken.Literal}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curToken.Type == token.TRUE}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	// curToken is '('
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeekNoSkip(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	exp := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}
	p.nextToken()
	exp.Right = p.parseExpression(PREFIX)
	if exp.Right == nil {
		return nil
	}
	return exp
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	exp := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	prec := p.curPrecedence()
	p.nextToken()
	p.skipNewlinesCur()
	exp.Right = p.parseExpression(prec)
	if exp.Right == nil {
		return nil
	}
	return exp
}

// parseCallArguments parses "(a, b, ...)"; curToken is '('. Newlines are
// allowed between arguments.
func (p *Parser) parseCallArguments() ([]ast.Expression, bool) {
	args := []ast.Expression{}

	p.skipNewlinesPeek()
	if p.peekToken.Type == token.RPAREN {
		p.nextToken() // consume ')'
		return args, true
	}

	p.nextToken() // first arg
	arg := p.parseExpression(LOWEST)
	if arg == nil {
		return nil, false
	}
	args = append(args, arg)

	for {
		p.skipNewlinesPeek()
		if p.peekToken.Type != token.COMMA {
			break
		}
		p.nextToken() // consume ','
		p.skipNewlinesPeek()
		if p.peekToken.Type == token.RPAREN {
			break // trailing comma
		}
		p.nextToken() // next arg
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
	}

	if !p.expectPeekNoSkip(token.RPAREN) {
		return nil, false
	}

	return args, true
}

/* -------------------- helpers -------------------- */

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) registerPrefix(t token.Type, fn prefixParseFn) {
	p.prefixParseFns[t] = fn
}

func (p *Parser) registerInfix(t token.Type, fn infixParseFn) {
	p.infixParseFns[t] = fn
}

func (p *Parser) expectPeek(t token.Type) bool {
	p.skipNewlinesPeek()
	return p.expectPeekNoSkip(t)
}

func (p *Parser) expectPeekNoSkip(t token.Type) bool {
	if p.peekToken.Type == t {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) errorAt(tok token.Token, msg string) {
	length := 1
	if tok.Literal != "" && tok.Type != token.NEWLINE {
		length = len([]rune(tok.Literal))
	}
	p.diags = append(p.diags, diag.Diagnostic{
		Code:     Code,
		Message:  msg,
		Severity: diag.SeverityError,
		Range: diag.Range{
			Line:   tok.Line,
			Col:    tok.Col,
			Length: length,
		},
	})
	p.errors = append(p.errors, msg)
}

func (p *Parser) peekError(t token.Type) {
	msg := fmt.Sprintf("expected '%s', got %s", t, describe(p.peekToken))
	p.errorAt(p.peekToken, msg)
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorAt(tok, fmt.Sprintf("unexpected %s", describe(tok)))
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) isSeparator(t token.Type) bool {
	return t == token.NEWLINE || t == token.SEMICOLON
}

func (p *Parser) skipSeparatorsPeek() {
	for p.isSeparator(p.peekToken.Type) {
		p.nextToken()
	}
}

func (p *Parser) skipNewlinesPeek() {
	for p.peekToken.Type == token.NEWLINE {
		p.nextToken()
	}
}

func (p *Parser) skipNewlinesCur() {
	for p.curToken.Type == token.NEWLINE {
		p.nextToken()
	}
}

func (p *Parser) isTerminator(t token.Type) bool {
	return t == token.NEWLINE || t == token.SEMICOLON || t == token.RBRACE || t == token.RPAREN || t == token.EOF
}

func (p *Parser) peekIsTerminator() bool {
	return p.isTerminator(p.peekToken.Type)
}

func (p *Parser) peekEndsStatement() bool {
	switch p.peekToken.Type {
	case token.NEWLINE, token.SEMICOLON, token.RBRACE, token.EOF:
		return true
	}
	return false
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "newline"
	case token.IDENT, token.INT:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	case token.STRING:
		return "string"
	case token.ILLEGAL:
		return fmt.Sprintf("illegal token %q", tok.Literal)
	default:
		return fmt.Sprintf("'%s'", tok.Literal)
	}
}
