package object

import (
	"fmt"

	"quill/internal/bigint"
)

type Type string

const (
	INTEGER_OBJ Type = "INTEGER"
	TEXT_OBJ    Type = "TEXT"
	BOOLEAN_OBJ Type = "BOOLEAN"
)

// Object is a runtime value. The set of implementations is closed: only the
// types in this file satisfy it.
type Object interface {
	Type() Type
	Inspect() string
	value()
}

type Integer struct{ Value bigint.Int }

func (*Integer) Type() Type        { return INTEGER_OBJ }
func (i *Integer) Inspect() string { return i.Value.String() }
func (*Integer) value()            {}

type Text struct{ Value string }

func (*Text) Type() Type        { return TEXT_OBJ }
func (s *Text) Inspect() string { return s.Value }
func (*Text) value()            {}

type Boolean struct{ Value bool }

func (*Boolean) Type() Type { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string {
	if b.Value {
		return "true"
	}
	return "false"
}
func (*Boolean) value() {}

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

func Bool(b bool) *Boolean {
	if b {
		return TRUE
	}
	return FALSE
}

func NewInteger(v bigint.Int) *Integer { return &Integer{Value: v} }

func NewText(s string) *Text { return &Text{Value: s} }

// Render returns the canonical text of a value as written by output
// statements.
func Render(obj Object) string {
	switch v := obj.(type) {
	case *Integer:
		return v.Value.String()
	case *Text:
		return v.Value
	case *Boolean:
		if v.Value {
			return "true"
		}
		return "false"
	default:
		panic(fmt.Sprintf("object: unknown value kind %T", obj))
	}
}

// Equal reports value equality. Values of different kinds are never equal.
func Equal(a, b Object) bool {
	switch x := a.(type) {
	case *Integer:
		y, ok := b.(*Integer)
		return ok && x.Value.Equal(y.Value)
	case *Text:
		y, ok := b.(*Text)
		return ok && x.Value == y.Value
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	default:
		panic(fmt.Sprintf("object: unknown value kind %T", a))
	}
}
