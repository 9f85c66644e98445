// Package semantics defines what each operator does to runtime values.
// Arithmetic never leaves the bigint engine; no operator coerces across
// value kinds.
package semantics

import (
	"quill/internal/bigint"
	"quill/internal/diag"
	"quill/internal/object"
)

func IsComparison(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	}
	return false
}

func BinaryOp(op string, left, right object.Object) (object.Object, error) {
	li, lok := left.(*object.Integer)
	ri, rok := right.(*object.Integer)
	if !lok || !rok {
		return nil, operandError(op, left, right)
	}
	res, err := Arithmetic(op, li.Value, ri.Value)
	if err != nil {
		return nil, err
	}
	return object.NewInteger(res), nil
}

func Arithmetic(op string, a, b bigint.Int) (bigint.Int, error) {
	switch op {
	case "+":
		return a.Add(b), nil
	case "-":
		return a.Sub(b), nil
	case "*":
		return a.Mul(b), nil
	case "/", "%":
		if b.IsZero() {
			return bigint.Int{}, diag.NewError(diag.DivisionByZero, op)
		}
		if op == "/" {
			return a.Quo(b)
		}
		return a.Rem(b)
	default:
		return bigint.Int{}, diag.Errorf(diag.TypeMismatch, op, "unknown arithmetic operator: %s", op)
	}
}

// Compare evaluates a comparison. Equality is defined for every pair of
// values; ordering only for integers.
func Compare(op string, left, right object.Object) (bool, error) {
	switch op {
	case "==":
		return object.Equal(left, right), nil
	case "!=":
		return !object.Equal(left, right), nil
	}

	li, lok := left.(*object.Integer)
	ri, rok := right.(*object.Integer)
	if !lok || !rok {
		return false, operandError(op, left, right)
	}
	c := li.Value.Cmp(ri.Value)
	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	default:
		return false, diag.Errorf(diag.TypeMismatch, op, "unknown comparison operator: %s", op)
	}
}

func Prefix(op string, right object.Object) (object.Object, error) {
	switch op {
	case "-":
		if i, ok := right.(*object.Integer); ok {
			return object.NewInteger(i.Value.Neg()), nil
		}
		return nil, diag.Errorf(diag.TypeMismatch, op, "invalid operand for unary '-': %s", right.Type())
	case "!":
		if b, ok := right.(*object.Boolean); ok {
			return object.Bool(!b.Value), nil
		}
		return nil, diag.Errorf(diag.TypeMismatch, op, "invalid operand for unary '!': %s", right.Type())
	default:
		return nil, diag.Errorf(diag.TypeMismatch, op, "unknown prefix operator: %s", op)
	}
}

// AsCondition unwraps a loop or branch condition, which must be a boolean.
func AsCondition(obj object.Object) (bool, error) {
	b, ok := obj.(*object.Boolean)
	if !ok {
		return false, diag.Errorf(diag.TypeMismatch, "condition", "condition must be BOOLEAN, got %s", obj.Type())
	}
	return b.Value, nil
}

// AsLogical unwraps an operand of && or ||.
func AsLogical(op string, obj object.Object) (bool, error) {
	b, ok := obj.(*object.Boolean)
	if !ok {
		return false, diag.Errorf(diag.TypeMismatch, op, "invalid operand for '%s': %s", op, obj.Type())
	}
	return b.Value, nil
}

func operandError(op string, left, right object.Object) error {
	return diag.Errorf(diag.TypeMismatch, op, "invalid operands for '%s': %s and %s", op, left.Type(), right.Type())
}
