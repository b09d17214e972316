package ast

import "github.com/calc-lang/calc-lang/internal/intern"

// spanSetter is implemented by every concrete node type.
type spanSetter interface {
	SetSpan(Span)
}

// Rebase rewrites every span in the subtree rooted at node to be owned by
// owner and relative to base. Only spans change; the tree shape and all
// non-span fields stay as built. The parser calls this exactly once per
// finished top-level statement, with base set to the statement's absolute
// start offset, so rebasing assumes the subtree still carries absolute
// offsets.
func Rebase(node Node, owner intern.DefID, base int) {
	Walk(node, func(n Node) bool {
		sp := n.Span()
		n.(spanSetter).SetSpan(Span{Owner: owner, Start: sp.Start - base, End: sp.End - base})

		// FnStmt carries spans outside the node tree proper.
		if fn, ok := n.(*FnStmt); ok {
			fn.NameSpan = rebased(fn.NameSpan, owner, base)
			for i, ps := range fn.ParamSpans {
				fn.ParamSpans[i] = rebased(ps, owner, base)
			}
		}
		return true
	})
}

func rebased(sp Span, owner intern.DefID, base int) Span {
	return Span{Owner: owner, Start: sp.Start - base, End: sp.End - base}
}
