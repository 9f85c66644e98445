package token

type Type string

type Token struct {
	Type    Type
	Literal string
	// Raw preserves the original lexeme when Literal is normalized (e.g., strings).
	Raw  string
	Line int
	Col  int
}

const (
	// Special
	ILLEGAL Type = "ILLEGAL"
	EOF     Type = "EOF"

	// Separators
	NEWLINE   Type = "NEWLINE"
	SEMICOLON Type = ";"

	// Identifiers + literals
	IDENT  Type = "IDENT"
	INT    Type = "INT"
	STRING Type = "STRING"

	// Keywords
	LET   Type = "LET"
	CONST Type = "CONST"
	FOR   Type = "FOR"
	WHILE Type = "WHILE"
	IF    Type = "IF"
	ELSE  Type = "ELSE"
	TRUE  Type = "TRUE"
	FALSE Type = "FALSE"

	// Operators
	ASSIGN  Type = "="
	PLUS    Type = "+"
	MINUS   Type = "-"
	STAR    Type = "*"
	SLASH   Type = "/"
	PERCENT Type = "%"
	BANG    Type = "!"

	INC Type = "++"
	DEC Type = "--"

	PLUS_ASSIGN    Type = "+="
	MINUS_ASSIGN   Type = "-="
	STAR_ASSIGN    Type = "*="
	SLASH_ASSIGN   Type = "/="
	PERCENT_ASSIGN Type = "%="

	AND Type = "&&"
	OR  Type = "||"

	EQ Type = "=="
	NE Type = "!="
	LT Type = "<"
	LE Type = "<="
	GT Type = ">"
	GE Type = ">="

	// Delimiters
	COMMA  Type = ","
	COLON  Type = ":"
	DOT    Type = "."
	LPAREN Type = "("
	RPAREN Type = ")"
	LBRACE Type = "{"
	RBRACE Type = "}"
)

var keywords = map[string]Type{
	"let":   LET,
	"const": CONST,
	"for":   FOR,
	"while": WHILE,
	"if":    IF,
	"else":  ELSE,
	"true":  TRUE,
	"false": FALSE,
}

func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsAssignOp reports whether t is "=" or a compound assignment.
func IsAssignOp(t Type) bool {
	switch t {
	case ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, STAR_ASSIGN, SLASH_ASSIGN, PERCENT_ASSIGN:
		return true
	}
	return false
}
