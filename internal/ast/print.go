package ast

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/calc-lang/calc-lang/internal/intern"
)

// Fprint writes program back out as canonical source text, one statement
// per line. Identifier text is looked up in in, which must be the interner
// the program was parsed with. The output parses back to the same tree,
// with parentheses inserted only where the operator layering requires them.
func Fprint(w io.Writer, in *intern.Interner, program *Program) error {
	var b strings.Builder
	for _, stmt := range program.Stmts {
		printStmt(&b, in, stmt)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Sprint renders program as canonical source text.
func Sprint(in *intern.Interner, program *Program) string {
	var b strings.Builder
	for _, stmt := range program.Stmts {
		printStmt(&b, in, stmt)
		b.WriteByte('\n')
	}
	return b.String()
}

// SprintExpr renders a single expression as canonical source text.
func SprintExpr(in *intern.Interner, e Expr) string {
	var b strings.Builder
	printExpr(&b, in, e, 0)
	return b.String()
}

func printStmt(b *strings.Builder, in *intern.Interner, stmt Stmt) {
	switch s := stmt.(type) {
	case *FnStmt:
		b.WriteString("fn ")
		b.WriteString(in.FuncText(s.Name))
		b.WriteByte('(')
		for i, p := range s.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(in.VarText(p))
		}
		b.WriteString(") = ")
		printExpr(b, in, s.Body, 0)
		b.WriteByte(';')
	case *PrintStmt:
		b.WriteString("print ")
		printExpr(b, in, s.Expr, 0)
		b.WriteByte(';')
	}
}

// printExpr renders e, parenthesizing when e binds looser than the context
// requires. min is the loosest precedence printable without parentheses.
func printExpr(b *strings.Builder, in *intern.Interner, e Expr, min int) {
	switch e := e.(type) {
	case *NumberLit:
		b.WriteString(formatNumber(e.Value))
	case *VarRef:
		b.WriteString(in.VarText(e.ID))
	case *CallExpr:
		b.WriteString(in.FuncText(e.Fn))
		b.WriteByte('(')
		for i, arg := range e.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			printExpr(b, in, arg, 0)
		}
		b.WriteByte(')')
	case *BinaryExpr:
		prec := e.Op.precedence()
		if prec < min {
			b.WriteByte('(')
		}
		printExpr(b, in, e.Left, prec)
		b.WriteByte(' ')
		b.WriteString(e.Op.String())
		b.WriteByte(' ')
		// All operators are left-associative, so an equal-precedence
		// right operand needs parentheses to survive a round trip.
		printExpr(b, in, e.Right, prec+1)
		if prec < min {
			b.WriteByte(')')
		}
	}
}

func (op Op) precedence() int {
	switch op {
	case OpMul, OpDiv:
		return 2
	default:
		return 1
	}
}

// formatNumber renders a literal value without exponent notation so the
// output lexes back to a plain number.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Fdump writes an indented tree rendering of program, one node per line.
// Each top-level statement is introduced by its extent; node spans are
// printed as recorded, relative to the owning definition.
func Fdump(w io.Writer, in *intern.Interner, program *Program) {
	for i, stmt := range program.Stmts {
		ext := program.Extents[i]
		fmt.Fprintf(w, "%s [%d,%d)\n", DefLabel(in, ext.Def), ext.Start, ext.End)
		dumpNode(w, in, stmt, 1)
	}
}

// DefLabel renders a definition for human output: the function's name, or
// the unit a root definition groups.
func DefLabel(in *intern.Interner, def intern.DefID) string {
	key := in.DefKeyOf(def)
	switch key.Kind {
	case intern.DefFunction:
		return "fn " + in.FuncText(key.Func)
	case intern.DefRoot:
		return "root " + strconv.Quote(key.Unit)
	default:
		return "unknown"
	}
}

func dumpNode(w io.Writer, in *intern.Interner, node Node, depth int) {
	indent := strings.Repeat("  ", depth)
	sp := node.Span()
	switch n := node.(type) {
	case *FnStmt:
		fmt.Fprintf(w, "%sFnStmt %s [%d,%d)\n", indent, in.FuncText(n.Name), sp.Start, sp.End)
		dumpNode(w, in, n.Body, depth+1)
	case *PrintStmt:
		fmt.Fprintf(w, "%sPrintStmt [%d,%d)\n", indent, sp.Start, sp.End)
		dumpNode(w, in, n.Expr, depth+1)
	case *BinaryExpr:
		fmt.Fprintf(w, "%sBinaryExpr %s [%d,%d)\n", indent, n.Op, sp.Start, sp.End)
		dumpNode(w, in, n.Left, depth+1)
		dumpNode(w, in, n.Right, depth+1)
	case *CallExpr:
		fmt.Fprintf(w, "%sCallExpr %s [%d,%d)\n", indent, in.FuncText(n.Fn), sp.Start, sp.End)
		for _, arg := range n.Args {
			dumpNode(w, in, arg, depth+1)
		}
	case *VarRef:
		fmt.Fprintf(w, "%sVarRef %s [%d,%d)\n", indent, in.VarText(n.ID), sp.Start, sp.End)
	case *NumberLit:
		fmt.Fprintf(w, "%sNumberLit %s [%d,%d)\n", indent, formatNumber(n.Value), sp.Start, sp.End)
	}
}
