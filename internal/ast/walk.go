package ast

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for every node. Children are skipped when f returns false.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	// Partial trees from a failed parse can hold typed nils.
	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *LetStatement:
		Inspect(n.Name, f)
		inspectExpr(n.Value, f)
	case *AssignStatement:
		Inspect(n.Name, f)
		inspectExpr(n.Value, f)
	case *OutputStatement:
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *ExpressionStatement:
		inspectExpr(n.Expression, f)
	case *BlockStatement:
		if n == nil {
			return
		}
		for _, s := range n.Statements {
			Inspect(s, f)
		}
	case *IfStatement:
		inspectExpr(n.Condition, f)
		Inspect(n.Consequence, f)
		if n.Alternative != nil {
			Inspect(n.Alternative, f)
		}
	case *WhileStatement:
		inspectExpr(n.Condition, f)
		Inspect(n.Body, f)
	case *ForStatement:
		if n.Init != nil {
			Inspect(n.Init, f)
		}
		inspectExpr(n.Cond, f)
		if n.Post != nil {
			Inspect(n.Post, f)
		}
		Inspect(n.Body, f)
	case *PrefixExpression:
		inspectExpr(n.Right, f)
	case *InfixExpression:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	}
}

// inspectExpr guards against typed-nil expressions in optional slots.
func inspectExpr(e Expression, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}
