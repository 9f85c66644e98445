// Package evaluator executes a parsed program against a scope stack and
// writes the records of output statements to a sink.
package evaluator

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"quill/internal/ast"
	"quill/internal/bigint"
	"quill/internal/diag"
	"quill/internal/object"
	"quill/internal/semantics"
	"quill/internal/sink"
	"quill/internal/token"
)

// Interpreter owns one scope stack. It is not safe for concurrent use.
type Interpreter struct {
	env   *object.Environment
	out   sink.Sink
	log   *slog.Logger
	trace bool
	file  string
}

type Option func(*Interpreter)

func WithLogger(log *slog.Logger) Option {
	return func(in *Interpreter) {
		if log != nil {
			in.log = log
		}
	}
}

// WithEnvironment runs programs against env instead of a fresh one, so
// bindings survive across Run calls.
func WithEnvironment(env *object.Environment) Option {
	return func(in *Interpreter) {
		if env != nil {
			in.env = env
		}
	}
}

// WithTrace logs every executed statement and scope change at debug level.
func WithTrace(on bool) Option {
	return func(in *Interpreter) { in.trace = on }
}

// WithFile sets the file name reported in error positions.
func WithFile(name string) Option {
	return func(in *Interpreter) { in.file = name }
}

func New(out sink.Sink, opts ...Option) *Interpreter {
	if out == nil {
		panic("evaluator: nil sink")
	}
	in := &Interpreter{
		out: out,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.env == nil {
		in.env = object.NewEnvironment()
	}
	return in
}

func (in *Interpreter) Env() *object.Environment { return in.env }

// Run executes the statements of prog in order. The first failure stops the
// run; records emitted before it stay emitted.
func (in *Interpreter) Run(prog *ast.Program) error {
	for _, stmt := range prog.Statements {
		if err := in.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Eval evaluates a single expression in the current scope.
func (in *Interpreter) Eval(expr ast.Expression) (object.Object, error) {
	return in.eval(expr)
}

/* -------------------- statements -------------------- */

func (in *Interpreter) exec(stmt ast.Statement) error {
	if in.trace {
		pos := stmt.Pos()
		in.log.Debug("exec", "stmt", fmt.Sprintf("%T", stmt)[5:], "line", pos.Line, "col", pos.Col)
	}

	switch s := stmt.(type) {
	case *ast.LetStatement:
		val, err := in.eval(s.Value)
		if err != nil {
			return err
		}
		if err := in.env.Declare(s.Name.Value, val, s.Mutable); err != nil {
			return in.errorAt(s.Name.Token, err)
		}
		return nil

	case *ast.AssignStatement:
		return in.execAssign(s)

	case *ast.OutputStatement:
		parts := make([]string, len(s.Args))
		for i, arg := range s.Args {
			val, err := in.eval(arg)
			if err != nil {
				return err
			}
			parts[i] = object.Render(val)
		}
		in.out.Emit(s.Severity, strings.Join(parts, " "))
		return nil

	case *ast.ExpressionStatement:
		_, err := in.eval(s.Expression)
		return err

	case *ast.BlockStatement:
		return in.execBlock(s, "block")

	case *ast.IfStatement:
		return in.execIf(s)

	case *ast.WhileStatement:
		return in.execWhile(s)

	case *ast.ForStatement:
		return in.execFor(s)

	default:
		return fmt.Errorf("evaluator: unsupported statement %T", stmt)
	}
}

func (in *Interpreter) execAssign(s *ast.AssignStatement) error {
	name := s.Name.Value

	var val object.Object
	if op := s.ArithmeticOp(); op == "" {
		v, err := in.eval(s.Value)
		if err != nil {
			return err
		}
		val = v
	} else {
		// The target is checked before the operator runs, so a const never
		// reports a type or division error instead.
		b, err := in.env.Resolve(name)
		if err != nil {
			return in.errorAt(s.Name.Token, err)
		}
		if !b.Mutable {
			return in.errorAt(s.Name.Token, diag.NewError(diag.ImmutableAssignment, name))
		}
		cur := b.Value
		rhs := object.Object(one)
		if s.Value != nil {
			if rhs, err = in.eval(s.Value); err != nil {
				return err
			}
		}
		if val, err = semantics.BinaryOp(op, cur, rhs); err != nil {
			return in.errorAt(s.OpToken, err)
		}
	}

	if err := in.env.Assign(name, val); err != nil {
		return in.errorAt(s.Name.Token, err)
	}
	return nil
}

var one = object.NewInteger(bigint.FromInt64(1))

// execBlock runs b in a fresh frame that is popped on every exit path.
func (in *Interpreter) execBlock(b *ast.BlockStatement, reason string) error {
	in.push(reason)
	defer in.pop(reason)

	for _, stmt := range b.Statements {
		if err := in.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) execIf(s *ast.IfStatement) error {
	ok, err := in.condition(s.Condition)
	if err != nil {
		return err
	}
	if ok {
		return in.execBlock(s.Consequence, "if")
	}
	switch alt := s.Alternative.(type) {
	case nil:
		return nil
	case *ast.BlockStatement:
		return in.execBlock(alt, "else")
	default:
		return in.exec(alt)
	}
}

func (in *Interpreter) execWhile(s *ast.WhileStatement) error {
	for {
		ok, err := in.condition(s.Condition)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := in.execBlock(s.Body, "while body"); err != nil {
			return err
		}
	}
}

// execFor runs a C-style loop. The initializer lives in a loop frame that
// spans every iteration; each iteration's body gets its own frame.
func (in *Interpreter) execFor(s *ast.ForStatement) error {
	in.push("for")
	defer in.pop("for")

	if s.Init != nil {
		if err := in.exec(s.Init); err != nil {
			return err
		}
	}

	for {
		if s.Cond != nil {
			ok, err := in.condition(s.Cond)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}

		if err := in.execBlock(s.Body, "for body"); err != nil {
			return err
		}

		if s.Post != nil {
			if err := in.exec(s.Post); err != nil {
				return err
			}
		}
	}
}

func (in *Interpreter) condition(expr ast.Expression) (bool, error) {
	val, err := in.eval(expr)
	if err != nil {
		return false, err
	}
	ok, err := semantics.AsCondition(val)
	if err != nil {
		return false, in.errorAt(expr.Pos(), err)
	}
	return ok, nil
}

/* -------------------- expressions -------------------- */

func (in *Interpreter) eval(expr ast.Expression) (object.Object, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		v, err := bigint.Parse(e.Literal)
		if err != nil {
			return nil, in.errorAt(e.Token, err)
		}
		return object.NewInteger(v), nil

	case *ast.StringLiteral:
		return object.NewText(e.Value), nil

	case *ast.BooleanLiteral:
		return object.Bool(e.Value), nil

	case *ast.Identifier:
		v, err := in.env.Lookup(e.Value)
		if err != nil {
			return nil, in.errorAt(e.Token, err)
		}
		return v, nil

	case *ast.PrefixExpression:
		right, err := in.eval(e.Right)
		if err != nil {
			return nil, err
		}
		v, err := semantics.Prefix(e.Operator, right)
		if err != nil {
			return nil, in.errorAt(e.Token, err)
		}
		return v, nil

	case *ast.InfixExpression:
		return in.evalInfix(e)

	default:
		return nil, fmt.Errorf("evaluator: unsupported expression %T", expr)
	}
}

func (in *Interpreter) evalInfix(e *ast.InfixExpression) (object.Object, error) {
	if e.Operator == "&&" || e.Operator == "||" {
		return in.evalLogical(e)
	}

	left, err := in.eval(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := in.eval(e.Right)
	if err != nil {
		return nil, err
	}

	if semantics.IsComparison(e.Operator) {
		ok, err := semantics.Compare(e.Operator, left, right)
		if err != nil {
			return nil, in.errorAt(e.Token, err)
		}
		return object.Bool(ok), nil
	}

	v, err := semantics.BinaryOp(e.Operator, left, right)
	if err != nil {
		return nil, in.errorAt(e.Token, err)
	}
	return v, nil
}

// evalLogical short-circuits: the right operand is evaluated only when the
// left one does not decide the result.
func (in *Interpreter) evalLogical(e *ast.InfixExpression) (object.Object, error) {
	left, err := in.eval(e.Left)
	if err != nil {
		return nil, err
	}
	lb, err := semantics.AsLogical(e.Operator, left)
	if err != nil {
		return nil, in.errorAt(e.Token, err)
	}
	if (e.Operator == "&&" && !lb) || (e.Operator == "||" && lb) {
		return object.Bool(lb), nil
	}

	right, err := in.eval(e.Right)
	if err != nil {
		return nil, err
	}
	rb, err := semantics.AsLogical(e.Operator, right)
	if err != nil {
		return nil, in.errorAt(e.Token, err)
	}
	return object.Bool(rb), nil
}

/* -------------------- helpers -------------------- */

func (in *Interpreter) push(reason string) {
	in.env.Push()
	if in.trace {
		in.log.Debug("scope push", "reason", reason, "depth", in.env.Depth())
	}
}

func (in *Interpreter) pop(reason string) {
	in.env.Pop()
	if in.trace {
		in.log.Debug("scope pop", "reason", reason, "depth", in.env.Depth())
	}
}

// errorAt positions a domain error at tok. The first position attached wins,
// so errors keep the location of the innermost failing node.
func (in *Interpreter) errorAt(tok token.Token, err error) error {
	var de *diag.Error
	if errors.As(err, &de) {
		return de.At(in.file, tok.Line, tok.Col)
	}
	return err
}
