package ast

import "github.com/calc-lang/calc-lang/internal/intern"

// Span locates a node in source text. Offsets are byte-based and half-open.
// The parser builds spans with Owner == intern.Unknown and offsets absolute
// in the unit; once the enclosing top-level statement is complete they are
// rewritten to be relative to that statement's own definition. From then on
// the spans inside one definition do not change when a sibling is edited.
type Span struct {
	Owner intern.DefID
	Start int
	End   int
}

// Node represents any AST node with an associated source span.
type Node interface {
	Span() Span
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a top-level statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Extent records which definition owns a top-level statement and the
// absolute byte range the statement occupied in the unit.
type Extent struct {
	Def   intern.DefID
	Start int
	End   int
}

// Program is a parsed unit. Stmts and Extents are index-aligned: Extents[i]
// describes Stmts[i]. The extent table is the only part of a Program whose
// contents shift when a sibling statement grows or shrinks.
type Program struct {
	Stmts   []Stmt
	Extents []Extent
}

// Resolve maps a definition-relative span inside statement i back to
// absolute byte offsets in the unit's source.
func (p *Program) Resolve(i int, sp Span) (start, end int) {
	base := p.Extents[i].Start
	return base + sp.Start, base + sp.End
}

// ExtentOf returns the extent of the first statement owned by def.
func (p *Program) ExtentOf(def intern.DefID) (Extent, bool) {
	for _, ext := range p.Extents {
		if ext.Def == def {
			return ext, true
		}
	}
	return Extent{}, false
}

// Op is a binary arithmetic operator.
type Op int

// Binary operators
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

// String returns the operator's source form.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// FnStmt is a function definition: fn name(params) = body ;
// Params and ParamSpans are index-aligned. Duplicate parameter names are
// representable here; rejecting them is a semantic check, not a parse error.
type FnStmt struct {
	Name       intern.FuncID
	NameSpan   Span
	Params     []intern.VarID
	ParamSpans []Span
	Body       Expr
	span       Span
}

// Span returns the statement span.
func (s *FnStmt) Span() Span { return s.span }

// NewFnStmt constructs a function definition node.
func NewFnStmt(name intern.FuncID, nameSpan Span, params []intern.VarID, paramSpans []Span, body Expr, span Span) *FnStmt {
	return &FnStmt{
		Name:       name,
		NameSpan:   nameSpan,
		Params:     params,
		ParamSpans: paramSpans,
		Body:       body,
		span:       span,
	}
}

// SetSpan updates the statement span.
func (s *FnStmt) SetSpan(span Span) {
	s.span = span
}

// stmtNode marks FnStmt as a statement.
func (*FnStmt) stmtNode() {}

// PrintStmt is a print statement: print expr ;
type PrintStmt struct {
	Expr Expr
	span Span
}

// Span returns the statement span.
func (s *PrintStmt) Span() Span { return s.span }

// NewPrintStmt constructs a print statement node.
func NewPrintStmt(expr Expr, span Span) *PrintStmt {
	return &PrintStmt{
		Expr: expr,
		span: span,
	}
}

// SetSpan updates the statement span.
func (s *PrintStmt) SetSpan(span Span) {
	s.span = span
}

// stmtNode marks PrintStmt as a statement.
func (*PrintStmt) stmtNode() {}

// NumberLit is a numeric literal. Integer source text widens to float64.
type NumberLit struct {
	Value float64
	span  Span
}

// Span returns the literal span.
func (e *NumberLit) Span() Span { return e.span }

// NewNumberLit constructs a numeric literal node.
func NewNumberLit(value float64, span Span) *NumberLit {
	return &NumberLit{
		Value: value,
		span:  span,
	}
}

// SetSpan updates the literal span.
func (e *NumberLit) SetSpan(span Span) {
	e.span = span
}

// exprNode marks NumberLit as an expression.
func (*NumberLit) exprNode() {}

// VarRef is a reference to a variable by interned identifier.
type VarRef struct {
	ID   intern.VarID
	span Span
}

// Span returns the reference span.
func (e *VarRef) Span() Span { return e.span }

// NewVarRef constructs a variable reference node.
func NewVarRef(id intern.VarID, span Span) *VarRef {
	return &VarRef{
		ID:   id,
		span: span,
	}
}

// SetSpan updates the reference span.
func (e *VarRef) SetSpan(span Span) {
	e.span = span
}

// exprNode marks VarRef as an expression.
func (*VarRef) exprNode() {}

// CallExpr is a function call: name ( args ) . The span covers the callee
// name through the closing parenthesis.
type CallExpr struct {
	Fn   intern.FuncID
	Args []Expr
	span Span
}

// Span returns the call span.
func (e *CallExpr) Span() Span { return e.span }

// NewCallExpr constructs a call expression node.
func NewCallExpr(fn intern.FuncID, args []Expr, span Span) *CallExpr {
	return &CallExpr{
		Fn:   fn,
		Args: args,
		span: span,
	}
}

// SetSpan updates the call span.
func (e *CallExpr) SetSpan(span Span) {
	e.span = span
}

// exprNode marks CallExpr as an expression.
func (*CallExpr) exprNode() {}

// BinaryExpr is a binary operation. Each operand is a distinct subtree;
// nodes are never shared.
type BinaryExpr struct {
	Left  Expr
	Op    Op
	Right Expr
	span  Span
}

// Span returns the expression span.
func (e *BinaryExpr) Span() Span { return e.span }

// NewBinaryExpr constructs a binary expression node.
func NewBinaryExpr(left Expr, op Op, right Expr, span Span) *BinaryExpr {
	return &BinaryExpr{
		Left:  left,
		Op:    op,
		Right: right,
		span:  span,
	}
}

// SetSpan updates the expression span.
func (e *BinaryExpr) SetSpan(span Span) {
	e.span = span
}

// exprNode marks BinaryExpr as an expression.
func (*BinaryExpr) exprNode() {}
