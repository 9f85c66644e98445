package diag

import (
	"fmt"
	"strings"
)

// Kind classifies a runtime failure. A Kind is itself an error so callers can
// match with errors.Is(err, diag.ImmutableAssignment).
type Kind int

const (
	MalformedLiteral Kind = iota + 1
	Redeclaration
	UndefinedVariable
	ImmutableAssignment
	TypeMismatch
	DivisionByZero
)

var kindNames = map[Kind]string{
	MalformedLiteral:    "MalformedLiteralError",
	Redeclaration:       "RedeclarationError",
	UndefinedVariable:   "UndefinedVariableError",
	ImmutableAssignment: "ImmutableAssignmentError",
	TypeMismatch:        "TypeError",
	DivisionByZero:      "DivisionByZeroError",
}

var kindCodes = map[Kind]string{
	MalformedLiteral:    "QE0001",
	Redeclaration:       "QE0002",
	UndefinedVariable:   "QE0003",
	ImmutableAssignment: "QE0004",
	TypeMismatch:        "QE0005",
	DivisionByZero:      "QE0006",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Error() string { return k.String() }

// Code is the stable diagnostic code reported for the kind.
func (k Kind) Code() string { return kindCodes[k] }

// ParseKind accepts either the full name ("TypeError") or the name without
// the Error suffix ("Type"), case-insensitively.
func ParseKind(s string) (Kind, bool) {
	want := strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		lower := strings.ToLower(name)
		if want == lower || want == strings.TrimSuffix(lower, "error") {
			return k, true
		}
	}
	return 0, false
}

// Error is a terminal evaluation failure. Subject names the offending
// identifier, literal or operator.
type Error struct {
	Kind    Kind
	Subject string
	Detail  string
	File    string
	Pos     Range
}

func NewError(kind Kind, subject string) *Error {
	return &Error{Kind: kind, Subject: subject}
}

func Errorf(kind Kind, subject string, format string, args ...any) *Error {
	return &Error{Kind: kind, Subject: subject, Detail: fmt.Sprintf(format, args...)}
}

func (e *Error) Unwrap() error { return e.Kind }

func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Kind {
	case MalformedLiteral:
		return fmt.Sprintf("malformed integer literal %q", e.Subject)
	case Redeclaration:
		return fmt.Sprintf("cannot redeclare %q in this scope", e.Subject)
	case UndefinedVariable:
		return "unknown identifier: " + e.Subject
	case ImmutableAssignment:
		return fmt.Sprintf("cannot assign to constant %q", e.Subject)
	case TypeMismatch:
		return "invalid operand types for " + e.Subject
	case DivisionByZero:
		return "division by zero"
	default:
		return e.Subject
	}
}

func (e *Error) Error() string {
	msg := e.Kind.String() + ": " + e.Message()
	if e.Pos.Line == 0 {
		return msg
	}
	file := e.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d: %s", file, e.Pos.Line, e.Pos.Col, msg)
}

// At returns a copy of e positioned at line:col. An error that already
// carries a position is returned unchanged.
func (e *Error) At(file string, line, col int) *Error {
	if e.Pos.Line != 0 {
		return e
	}
	out := *e
	out.File = file
	out.Pos = Range{Line: line, Col: col, Length: max(1, len([]rune(e.Subject)))}
	return &out
}

func (e *Error) Diagnostic() Diagnostic {
	r := e.Pos
	if r.Line == 0 {
		r = Range{Line: 1, Col: 1, Length: 1}
	}
	return Diagnostic{
		Code:     e.Kind.Code(),
		Message:  e.Message(),
		Severity: SeverityError,
		Range:    r,
	}
}

// Sentinels for errors.Is; each is the corresponding Kind.
var (
	ErrMalformedLiteral    error = MalformedLiteral
	ErrRedeclaration       error = Redeclaration
	ErrUndefinedVariable   error = UndefinedVariable
	ErrImmutableAssignment error = ImmutableAssignment
	ErrType                error = TypeMismatch
	ErrDivisionByZero      error = DivisionByZero
)
