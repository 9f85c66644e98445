package ast

import (
	"bytes"
	"strings"

	"quill/internal/sink"
	"quill/internal/token"
)

type Node interface {
	TokenLiteral() string
	String() string
	Pos() token.Token
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) Pos() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return token.Token{Line: 1, Col: 1}
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

/* -------------------- Statements -------------------- */

// LetStatement declares a binding. Mutable is true for let and false for
// const. Type is the optional annotation after the name; it is not checked.
type LetStatement struct {
	Token   token.Token // 'let' or 'const'
	Mutable bool
	Name    *Identifier
	Type    *Identifier
	Value   Expression
}

func (*LetStatement) statementNode()          {}
func (ls *LetStatement) TokenLiteral() string { return ls.Token.Literal }
func (ls *LetStatement) Pos() token.Token     { return ls.Token }
func (ls *LetStatement) String() string {
	var out bytes.Buffer
	out.WriteString(ls.Token.Literal)
	out.WriteString(" ")
	out.WriteString(ls.Name.String())
	if ls.Type != nil {
		out.WriteString(": ")
		out.WriteString(ls.Type.String())
	}
	out.WriteString(" = ")
	if ls.Value != nil {
		out.WriteString(ls.Value.String())
	}
	return out.String()
}

// AssignStatement covers plain, compound and increment/decrement
// assignment. Value is nil for ++ and --.
type AssignStatement struct {
	Token   token.Token // identifier token
	OpToken token.Token // assignment operator token
	Op      token.Type
	Name    *Identifier
	Value   Expression
}

func (*AssignStatement) statementNode()          {}
func (as *AssignStatement) TokenLiteral() string { return as.Token.Literal }
func (as *AssignStatement) Pos() token.Token     { return as.Token }
func (as *AssignStatement) String() string {
	if as.Op == token.INC || as.Op == token.DEC {
		return as.Name.String() + string(as.Op)
	}
	var out bytes.Buffer
	out.WriteString(as.Name.String())
	out.WriteString(" ")
	out.WriteString(string(as.Op))
	out.WriteString(" ")
	if as.Value != nil {
		out.WriteString(as.Value.String())
	}
	return out.String()
}

// ArithmeticOp returns the binary operator a compound assignment applies,
// or "" for plain assignment.
func (as *AssignStatement) ArithmeticOp() string {
	switch as.Op {
	case token.PLUS_ASSIGN, token.INC:
		return "+"
	case token.MINUS_ASSIGN, token.DEC:
		return "-"
	case token.STAR_ASSIGN:
		return "*"
	case token.SLASH_ASSIGN:
		return "/"
	case token.PERCENT_ASSIGN:
		return "%"
	}
	return ""
}

// OutputStatement is a console.<method>(args...) call.
type OutputStatement struct {
	Token    token.Token // 'console'
	Method   string
	Severity sink.Severity
	Args     []Expression
}

func (*OutputStatement) statementNode()          {}
func (os *OutputStatement) TokenLiteral() string { return os.Token.Literal }
func (os *OutputStatement) Pos() token.Token     { return os.Token }
func (os *OutputStatement) String() string {
	args := make([]string, len(os.Args))
	for i, a := range os.Args {
		args[i] = a.String()
	}
	return "console." + os.Method + "(" + strings.Join(args, ", ") + ")"
}

type ExpressionStatement struct {
	Token      token.Token // first token of expression
	Expression Expression
}

func (*ExpressionStatement) statementNode()          {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() token.Token     { return es.Token }
func (es *ExpressionStatement) String() string {
	if es.Expression == nil {
		return ""
	}
	return es.Expression.String()
}

type BlockStatement struct {
	Token      token.Token // '{'
	Statements []Statement
}

func (*BlockStatement) statementNode()          {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Pos() token.Token     { return bs.Token }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{\n")
	for _, s := range bs.Statements {
		for _, line := range strings.Split(s.String(), "\n") {
			out.WriteString("  ")
			out.WriteString(line)
			out.WriteString("\n")
		}
	}
	out.WriteString("}")
	return out.String()
}

type IfStatement struct {
	Token       token.Token // 'if'
	Condition   Expression
	Consequence *BlockStatement
	Alternative Statement // *BlockStatement, *IfStatement or nil
}

func (*IfStatement) statementNode()          {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Literal }
func (is *IfStatement) Pos() token.Token     { return is.Token }
func (is *IfStatement) String() string {
	var out bytes.Buffer
	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	return out.String()
}

type WhileStatement struct {
	Token     token.Token // 'while'
	Condition Expression
	Body      *BlockStatement
}

func (*WhileStatement) statementNode()          {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Literal }
func (ws *WhileStatement) Pos() token.Token     { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

type ForStatement struct {
	Token token.Token // 'for'
	Init  Statement   // may be nil
	Cond  Expression  // may be nil (treated as true)
	Post  Statement   // may be nil
	Body  *BlockStatement
}

func (*ForStatement) statementNode()          {}
func (fs *ForStatement) TokenLiteral() string { return fs.Token.Literal }
func (fs *ForStatement) Pos() token.Token     { return fs.Token }
func (fs *ForStatement) String() string {
	var out bytes.Buffer
	out.WriteString("for (")
	if fs.Init != nil {
		out.WriteString(fs.Init.String())
	}
	out.WriteString("; ")
	if fs.Cond != nil {
		out.WriteString(fs.Cond.String())
	}
	out.WriteString("; ")
	if fs.Post != nil {
		out.WriteString(fs.Post.String())
	}
	out.WriteString(") ")
	out.WriteString(fs.Body.String())
	return out.String()
}

/* -------------------- Expressions -------------------- */

type Identifier struct {
	Token token.Token
	Value string
}

func (*Identifier) expressionNode()        {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() token.Token     { return i.Token }
func (i *Identifier) String() string       { return i.Value }

// IntegerLiteral keeps the digits as written; they are validated when the
// literal is evaluated.
type IntegerLiteral struct {
	Token   token.Token
	Literal string
}

func (*IntegerLiteral) expressionNode()         {}
func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Pos() token.Token     { return il.Token }
func (il *IntegerLiteral) String() string       { return il.Literal }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (*StringLiteral) expressionNode()         {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Pos() token.Token     { return sl.Token }
func (sl *StringLiteral) String() string {
	if sl.Token.Raw != "" {
		return sl.Token.Raw
	}
	return `"` + sl.Value + `"`
}

type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (*BooleanLiteral) expressionNode()         {}
func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Pos() token.Token     { return bl.Token }
func (bl *BooleanLiteral) String() string       { return bl.Token.Literal }

type PrefixExpression struct {
	Token    token.Token // prefix token, e.g. '-'
	Operator string
	Right    Expression
}

func (*PrefixExpression) expressionNode()         {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) Pos() token.Token     { return pe.Token }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token // operator token
	Left     Expression
	Operator string
	Right    Expression
}

func (*InfixExpression) expressionNode()         {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) Pos() token.Token     { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}
