package lint

import (
	"errors"
	"fmt"

	"quill/internal/ast"
	"quill/internal/bigint"
	"quill/internal/diag"
	"quill/internal/token"
)

type sym struct {
	name    string
	tok     token.Token
	used    bool
	mutable bool
}

type scope struct {
	parent *scope
	syms   map[string]*sym
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, syms: map[string]*sym{}}
}

func (s *scope) lookup(name string) *sym {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.syms[name]; ok {
			return v
		}
	}
	return nil
}

func (s *scope) lookupHere(name string) *sym {
	return s.syms[name]
}

type Runner struct {
	diags []diag.Diagnostic
	sc    *scope
	opts  Options
}

func (r *Runner) report(tok token.Token, sev diag.Severity, code string, msg string) {
	r.diags = append(r.diags, diag.Diagnostic{
		Code:     code,
		Message:  msg,
		Severity: sev,
		Range: diag.Range{
			Line:   tok.Line,
			Col:    tok.Col,
			Length: tokLength(tok),
		},
	})
}

func tokLength(tok token.Token) int {
	if tok.Literal == "" {
		return 1
	}
	return len([]rune(tok.Literal))
}

func (r *Runner) push() { r.sc = newScope(r.sc) }

// pop closes the innermost scope. Bindings of the global scope are never
// reported as unused: a script's top level may be read by a later REPL
// input.
func (r *Runner) pop() {
	if r.opts.CheckUnused {
		for name, sm := range r.sc.syms {
			if name == "_" || sm.used {
				continue
			}
			r.report(sm.tok, diag.SeverityWarning, CodeUnused, fmt.Sprintf("unused variable: %s", name))
		}
	}
	r.sc = r.sc.parent
}

func (r *Runner) declare(id *ast.Identifier, mutable bool) {
	if id == nil {
		return
	}
	name := id.Value
	if r.sc.lookupHere(name) != nil {
		r.report(id.Token, diag.SeverityError, CodeRedeclaration, fmt.Sprintf("cannot redeclare %q in this scope", name))
		return
	}
	if r.opts.CheckShadowing && r.sc.parent != nil && r.sc.parent.lookup(name) != nil {
		r.report(id.Token, diag.SeverityWarning, CodeShadowing, fmt.Sprintf("variable '%s' shadows outer variable", name))
	}
	r.sc.syms[name] = &sym{name: name, tok: id.Token, mutable: mutable}
}

func (r *Runner) use(id *ast.Identifier) {
	sm := r.sc.lookup(id.Value)
	if sm == nil {
		r.report(id.Token, diag.SeverityError, CodeUndefined, "unknown identifier: "+id.Value)
		return
	}
	sm.used = true
}

func (r *Runner) assign(s *ast.AssignStatement) {
	sm := r.sc.lookup(s.Name.Value)
	if sm == nil {
		r.report(s.Name.Token, diag.SeverityError, CodeUndefined, "unknown identifier: "+s.Name.Value)
		return
	}
	if !sm.mutable {
		r.report(s.Name.Token, diag.SeverityError, CodeConstAssign, fmt.Sprintf("cannot assign to constant %q", s.Name.Value))
	}
	// Compound forms read the current value.
	if s.ArithmeticOp() != "" {
		sm.used = true
	}
}

func (r *Runner) walkProgram(p *ast.Program) {
	for _, st := range p.Statements {
		r.walkStmt(st)
	}
}

func (r *Runner) walkBlock(b *ast.BlockStatement) {
	if b == nil {
		return
	}
	r.push()
	for _, st := range b.Statements {
		r.walkStmt(st)
	}
	r.pop()
}

func (r *Runner) walkStmt(st ast.Statement) {
	switch s := st.(type) {
	case *ast.LetStatement:
		// The initializer is checked before the name exists.
		r.walkExpr(s.Value)
		r.declare(s.Name, s.Mutable)

	case *ast.AssignStatement:
		r.walkExpr(s.Value)
		r.assign(s)

	case *ast.OutputStatement:
		for _, a := range s.Args {
			r.walkExpr(a)
		}

	case *ast.ExpressionStatement:
		r.walkExpr(s.Expression)

	case *ast.BlockStatement:
		r.walkBlock(s)

	case *ast.IfStatement:
		r.walkExpr(s.Condition)
		r.walkBlock(s.Consequence)
		switch alt := s.Alternative.(type) {
		case *ast.BlockStatement:
			r.walkBlock(alt)
		case *ast.IfStatement:
			r.walkStmt(alt)
		}

	case *ast.WhileStatement:
		r.walkExpr(s.Condition)
		r.walkBlock(s.Body)

	case *ast.ForStatement:
		r.push()
		if s.Init != nil {
			r.walkStmt(s.Init)
		}
		r.walkExpr(s.Cond)
		r.walkBlock(s.Body)
		if s.Post != nil {
			r.walkStmt(s.Post)
		}
		r.pop()
	}
}

func (r *Runner) walkExpr(e ast.Expression) {
	switch n := e.(type) {
	case nil:
		return
	case *ast.Identifier:
		r.use(n)
	case *ast.IntegerLiteral:
		// Same failure the evaluator raises, reported ahead of time.
		if _, err := bigint.Parse(n.Literal); err != nil {
			var de *diag.Error
			if errors.As(err, &de) {
				r.report(n.Token, diag.SeverityError, de.Kind.Code(), de.Message())
			}
		}
	case *ast.PrefixExpression:
		r.walkExpr(n.Right)
	case *ast.InfixExpression:
		r.walkExpr(n.Left)
		r.walkExpr(n.Right)
	}
}
