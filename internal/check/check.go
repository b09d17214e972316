// Package check runs the semantic checks that parsing deliberately leaves
// alone: name resolution, call arity, and parameter uniqueness.
package check

import (
	"fmt"

	"github.com/calc-lang/calc-lang/internal/ast"
	"github.com/calc-lang/calc-lang/internal/diag"
	"github.com/calc-lang/calc-lang/internal/intern"
)

// Finding is one semantic problem inside a definition. The span is
// definition-relative, like every span in a rebased statement, so a finding
// stays valid as long as its own definition's text is unchanged, no matter
// where the definition sits in the unit.
type Finding struct {
	Code    diag.Code
	Message string
	Span    ast.Span
}

// Resolve renders a finding as an absolute-offset diagnostic, using the
// extent table of the program the finding came from. stmtIndex is the
// index of the statement the finding was produced for.
func (f Finding) Resolve(program *ast.Program, stmtIndex int) diag.Diagnostic {
	start, end := program.Resolve(stmtIndex, f.Span)
	return diag.Diagnostic{
		Stage:    diag.StageCheck,
		Severity: diag.SeverityError,
		Code:     f.Code,
		Message:  f.Message,
		Start:    start,
		End:      end,
	}
}

// Checker resolves names against one program. Functions are visible
// program-wide, so definition order does not matter and recursive calls
// resolve. When two definitions share a name the first one wins.
type Checker struct {
	in    *intern.Interner
	arity map[intern.FuncID]int
}

// New builds a checker for program. The interner must be the one the
// program was parsed with.
func New(in *intern.Interner, program *ast.Program) *Checker {
	c := &Checker{
		in:    in,
		arity: make(map[intern.FuncID]int),
	}
	for _, stmt := range program.Stmts {
		if fn, ok := stmt.(*ast.FnStmt); ok {
			if _, seen := c.arity[fn.Name]; !seen {
				c.arity[fn.Name] = len(fn.Params)
			}
		}
	}
	return c
}

// CheckStmt checks one top-level statement. The returned findings depend
// only on the statement's own subtree and the program's function
// signatures, never on where the statement sits.
func (c *Checker) CheckStmt(stmt ast.Stmt) []Finding {
	var findings []Finding
	switch s := stmt.(type) {
	case *ast.FnStmt:
		c.checkParams(s, &findings)
		c.checkExpr(s.Body, s.Params, &findings)
	case *ast.PrintStmt:
		// Top-level prints have no parameters in scope.
		c.checkExpr(s.Expr, nil, &findings)
	}
	return findings
}

func (c *Checker) checkParams(fn *ast.FnStmt, out *[]Finding) {
	for i, p := range fn.Params {
		for j := 0; j < i; j++ {
			if fn.Params[j] == p {
				*out = append(*out, Finding{
					Code:    diag.CodeCheckDuplicateParam,
					Message: fmt.Sprintf("duplicate parameter '%s'", c.in.VarText(p)),
					Span:    fn.ParamSpans[i],
				})
				break
			}
		}
	}
}

func (c *Checker) checkExpr(e ast.Expr, scope []intern.VarID, out *[]Finding) {
	switch e := e.(type) {
	case *ast.NumberLit:

	case *ast.VarRef:
		if !varInScope(e.ID, scope) {
			*out = append(*out, Finding{
				Code:    diag.CodeCheckUndefinedVariable,
				Message: fmt.Sprintf("the variable '%s' is not declared", c.in.VarText(e.ID)),
				Span:    e.Span(),
			})
		}

	case *ast.CallExpr:
		if arity, known := c.arity[e.Fn]; !known {
			*out = append(*out, Finding{
				Code:    diag.CodeCheckUnknownFunction,
				Message: fmt.Sprintf("the function '%s' is not declared", c.in.FuncText(e.Fn)),
				Span:    e.Span(),
			})
		} else if len(e.Args) != arity {
			noun := "arguments"
			if arity == 1 {
				noun = "argument"
			}
			*out = append(*out, Finding{
				Code: diag.CodeCheckArityMismatch,
				Message: fmt.Sprintf("the function '%s' takes %d %s, found %d",
					c.in.FuncText(e.Fn), arity, noun, len(e.Args)),
				Span: e.Span(),
			})
		}
		for _, arg := range e.Args {
			c.checkExpr(arg, scope, out)
		}

	case *ast.BinaryExpr:
		c.checkExpr(e.Left, scope, out)
		c.checkExpr(e.Right, scope, out)
	}
}

func varInScope(id intern.VarID, scope []intern.VarID) bool {
	for _, v := range scope {
		if v == id {
			return true
		}
	}
	return false
}

// Program checks every statement in program and returns the findings as
// absolute-offset diagnostics, in statement order.
func Program(in *intern.Interner, program *ast.Program) []diag.Diagnostic {
	c := New(in, program)
	var diags []diag.Diagnostic
	for i, stmt := range program.Stmts {
		for _, f := range c.CheckStmt(stmt) {
			diags = append(diags, f.Resolve(program, i))
		}
	}
	return diags
}
