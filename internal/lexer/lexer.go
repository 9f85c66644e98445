package lexer

import (
	"strings"

	"quill/internal/token"
)

type Lexer struct {
	input string

	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination

	line        int // 1-based
	col         int // 1-based column of current char
	pendingLine bool
}

func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0, // readChar() will advance to col=1 for first char
	}
	l.readChar()
	return l
}

// Tokenize scans the whole input, EOF token included.
func Tokenize(input string) []token.Token {
	l := New(input)
	var out []token.Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == token.EOF {
			return out
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	// Skip spaces/tabs and comments, but NOT newlines.
	for {
		l.skipWhitespace()

		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.skipBlockComment()
			continue
		}

		break
	}

	// NEWLINE is a real token (statement separator)
	if l.ch == '\n' {
		tok := l.newToken(token.NEWLINE, "\n", l.line, l.col)
		l.readChar()
		return tok
	}

	if l.ch == 0 {
		return l.newToken(token.EOF, "", l.line, l.col)
	}

	startLine, startCol := l.line, l.col
	startIdx := l.position

	if tt, ok := singles[l.ch]; ok {
		tok := l.newToken(tt, string(l.ch), startLine, startCol)
		l.readChar()
		return tok
	}

	if tt, ok := doubles[[2]byte{l.ch, l.peekChar()}]; ok {
		lit := l.input[l.position : l.position+2]
		l.readChar()
		l.readChar()
		return l.newToken(tt, lit, startLine, startCol)
	}

	switch l.ch {
	case '+', '-', '*', '/', '%', '=', '!', '<', '>':
		tok := l.newToken(token.Type(string(l.ch)), string(l.ch), startLine, startCol)
		l.readChar()
		return tok
	case '"', '\'':
		return l.readStringToken(l.ch, startLine, startCol, startIdx)
	}

	if isIdentStart(l.ch) {
		lit := l.readIdentifier()
		tt := token.LookupIdent(lit)
		return l.newToken(tt, lit, startLine, startCol)
	}

	// A digit run glued to identifier characters stays one INT token; the
	// evaluator rejects it as a malformed literal.
	if isDigit(l.ch) {
		return l.newToken(token.INT, l.readNumber(), startLine, startCol)
	}

	illegal := string(l.ch)
	tok := l.newToken(token.ILLEGAL, illegal, startLine, startCol)
	l.readChar()
	return tok
}

var singles = map[byte]token.Type{
	';': token.SEMICOLON,
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	',': token.COMMA,
	':': token.COLON,
	'.': token.DOT,
}

var doubles = map[[2]byte]token.Type{
	{'+', '+'}: token.INC,
	{'-', '-'}: token.DEC,
	{'+', '='}: token.PLUS_ASSIGN,
	{'-', '='}: token.MINUS_ASSIGN,
	{'*', '='}: token.STAR_ASSIGN,
	{'/', '='}: token.SLASH_ASSIGN,
	{'%', '='}: token.PERCENT_ASSIGN,
	{'=', '='}: token.EQ,
	{'!', '='}: token.NE,
	{'<', '='}: token.LE,
	{'>', '='}: token.GE,
	{'&', '&'}: token.AND,
	{'|', '|'}: token.OR,
}

func (l *Lexer) newToken(t token.Type, lit string, line, col int) token.Token {
	return token.Token{
		Type:    t,
		Literal: lit,
		Line:    line,
		Col:     col,
	}
}

func (l *Lexer) readChar() {
	if l.pendingLine {
		l.line++
		l.col = 0
		l.pendingLine = false
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		l.col++
		return
	}

	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++
	l.col++

	// The newline itself belongs to the line it ends.
	if l.ch == '\n' {
		l.pendingLine = true
	}
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	// NextToken emits the NEWLINE.
}

func (l *Lexer) skipBlockComment() {
	l.readChar() // consume '/'
	l.readChar() // consume '*'

	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readStringToken(quote byte, startLine, startCol, startIdx int) token.Token {
	l.readChar() // move past opening quote

	var b strings.Builder
	for {
		if l.ch == 0 || l.ch == '\n' {
			return l.newToken(token.ILLEGAL, "unterminated string", startLine, startCol)
		}
		if l.ch == quote {
			break
		}

		if l.ch == '\\' {
			switch esc := l.peekChar(); esc {
			case '"', '\'', '\\':
				l.readChar()
				b.WriteByte(esc)
				l.readChar()
				continue
			case 'n':
				l.readChar()
				b.WriteByte('\n')
				l.readChar()
				continue
			case 't':
				l.readChar()
				b.WriteByte('\t')
				l.readChar()
				continue
			default:
				// Unknown escape: keep the backslash literally
				b.WriteByte(l.ch)
				l.readChar()
				continue
			}
		}

		b.WriteByte(l.ch)
		l.readChar()
	}

	l.readChar() // consume closing quote
	tok := l.newToken(token.STRING, b.String(), startLine, startCol)
	tok.Raw = l.input[startIdx:l.position]
	return tok
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
