package ast

// Walk traverses the AST starting from node, calling fn for each node.
// If fn returns false, Walk stops traversing that branch.
func Walk(node Node, fn func(Node) bool) {
	if !fn(node) {
		return
	}

	switch n := node.(type) {
	case *FnStmt:
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *PrintStmt:
		if n.Expr != nil {
			Walk(n.Expr, fn)
		}

	case *BinaryExpr:
		if n.Left != nil {
			Walk(n.Left, fn)
		}
		if n.Right != nil {
			Walk(n.Right, fn)
		}

	case *CallExpr:
		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	// Leaf nodes don't need traversal
	case *NumberLit, *VarRef:
	}
}
