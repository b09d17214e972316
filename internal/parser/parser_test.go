package parser_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/calc-lang/calc-lang/internal/ast"
	"github.com/calc-lang/calc-lang/internal/intern"
	"github.com/calc-lang/calc-lang/internal/lexer"
	"github.com/calc-lang/calc-lang/internal/parser"
)

func parseProgram(t *testing.T, in *intern.Interner, src string) *ast.Program {
	t.Helper()
	p := parser.New(in, "test.calc", src)
	program, err := p.ParseProgram()
	if err != nil {
		t.Fatalf("ParseProgram(%q) failed: %v", src, err)
	}
	if program == nil {
		t.Fatalf("ParseProgram(%q) returned nil program without error", src)
	}
	return program
}

func parseFails(t *testing.T, src string) error {
	t.Helper()
	in := intern.New()
	p := parser.New(in, "test.calc", src)
	program, err := p.ParseProgram()
	if err == nil {
		t.Fatalf("ParseProgram(%q) should have failed", src)
	}
	if program != nil {
		t.Fatalf("failed parse of %q must not yield a program", src)
	}
	return err
}

func wantPrint(t *testing.T, stmt ast.Stmt) *ast.PrintStmt {
	t.Helper()
	ps, ok := stmt.(*ast.PrintStmt)
	if !ok {
		t.Fatalf("statement is %T, want *ast.PrintStmt", stmt)
	}
	return ps
}

func wantBinary(t *testing.T, e ast.Expr, op ast.Op) *ast.BinaryExpr {
	t.Helper()
	be, ok := e.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.BinaryExpr", e)
	}
	if be.Op != op {
		t.Fatalf("operator is %s, want %s", be.Op, op)
	}
	return be
}

func wantNumber(t *testing.T, e ast.Expr, v float64) {
	t.Helper()
	lit, ok := e.(*ast.NumberLit)
	if !ok {
		t.Fatalf("expression is %T, want *ast.NumberLit", e)
	}
	if lit.Value != v {
		t.Fatalf("literal value is %v, want %v", lit.Value, v)
	}
}

// collectSpans gathers every span in a statement subtree, including the
// extra name and parameter spans a function definition carries.
func collectSpans(stmt ast.Stmt) []ast.Span {
	var spans []ast.Span
	ast.Walk(stmt, func(n ast.Node) bool {
		spans = append(spans, n.Span())
		if fn, ok := n.(*ast.FnStmt); ok {
			spans = append(spans, fn.NameSpan)
			spans = append(spans, fn.ParamSpans...)
		}
		return true
	})
	return spans
}

func TestParsePrintStatement(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "print 1;")

	if len(program.Stmts) != 1 {
		t.Fatalf("len(Stmts) = %d, want 1", len(program.Stmts))
	}
	ps := wantPrint(t, program.Stmts[0])
	wantNumber(t, ps.Expr, 1)

	root := in.RootDef("test.calc")
	ext := program.Extents[0]
	if ext.Def != root {
		t.Errorf("extent def = %v, want root %v", ext.Def, root)
	}
	if ext.Start != 0 || ext.End != 8 {
		t.Errorf("extent = [%d,%d), want [0,8)", ext.Start, ext.End)
	}
	if sp := ps.Span(); sp.Owner != root || sp.Start != 0 || sp.End != 8 {
		t.Errorf("stmt span = %+v, want {%v 0 8}", sp, root)
	}
}

func TestSubtractionIsLeftAssociative(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "print 1 - 2 - 3;")

	ps := wantPrint(t, program.Stmts[0])
	outer := wantBinary(t, ps.Expr, ast.OpSub)
	inner := wantBinary(t, outer.Left, ast.OpSub)
	wantNumber(t, inner.Left, 1)
	wantNumber(t, inner.Right, 2)
	wantNumber(t, outer.Right, 3)
}

func TestDivisionIsLeftAssociative(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "print 8 / 2 / 2;")

	ps := wantPrint(t, program.Stmts[0])
	outer := wantBinary(t, ps.Expr, ast.OpDiv)
	inner := wantBinary(t, outer.Left, ast.OpDiv)
	wantNumber(t, inner.Left, 8)
	wantNumber(t, inner.Right, 2)
	wantNumber(t, outer.Right, 2)
}

func TestMultiplicationBindsTighterThanAddition(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "print 1 + 2 * 3;")

	ps := wantPrint(t, program.Stmts[0])
	add := wantBinary(t, ps.Expr, ast.OpAdd)
	wantNumber(t, add.Left, 1)
	mul := wantBinary(t, add.Right, ast.OpMul)
	wantNumber(t, mul.Left, 2)
	wantNumber(t, mul.Right, 3)
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "print (1 + 2) * 3;")

	ps := wantPrint(t, program.Stmts[0])
	mul := wantBinary(t, ps.Expr, ast.OpMul)
	add := wantBinary(t, mul.Left, ast.OpAdd)
	wantNumber(t, add.Left, 1)
	wantNumber(t, add.Right, 2)
	wantNumber(t, mul.Right, 3)
}

func TestGroupSpanIncludesParentheses(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "print (x);")

	ps := wantPrint(t, program.Stmts[0])
	ref, ok := ps.Expr.(*ast.VarRef)
	if !ok {
		t.Fatalf("expression is %T, want *ast.VarRef", ps.Expr)
	}
	// "(x)" occupies [6,9) absolute; the statement starts at 0, so the
	// rebased span keeps those offsets.
	if sp := ref.Span(); sp.Start != 6 || sp.End != 9 {
		t.Errorf("group span = [%d,%d), want [6,9)", sp.Start, sp.End)
	}
}

func TestParseFnStatement(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "fn area(w, h) = w * h;")

	if len(program.Stmts) != 1 {
		t.Fatalf("len(Stmts) = %d, want 1", len(program.Stmts))
	}
	fn, ok := program.Stmts[0].(*ast.FnStmt)
	if !ok {
		t.Fatalf("statement is %T, want *ast.FnStmt", program.Stmts[0])
	}

	if fn.Name != in.Func("area") {
		t.Errorf("name handle = %v, want interned 'area' %v", fn.Name, in.Func("area"))
	}
	wantParams := []intern.VarID{in.Var("w"), in.Var("h")}
	if !reflect.DeepEqual(fn.Params, wantParams) {
		t.Errorf("params = %v, want %v", fn.Params, wantParams)
	}

	def := in.FunctionDef(fn.Name)
	if ext := program.Extents[0]; ext.Def != def || ext.Start != 0 || ext.End != 22 {
		t.Errorf("extent = %+v, want {%v 0 22}", ext, def)
	}

	if sp := fn.NameSpan; sp.Owner != def || sp.Start != 3 || sp.End != 7 {
		t.Errorf("name span = %+v, want {%v 3 7}", sp, def)
	}
	if sp := fn.ParamSpans[0]; sp.Start != 8 || sp.End != 9 {
		t.Errorf("param w span = [%d,%d), want [8,9)", sp.Start, sp.End)
	}
	if sp := fn.ParamSpans[1]; sp.Start != 11 || sp.End != 12 {
		t.Errorf("param h span = [%d,%d), want [11,12)", sp.Start, sp.End)
	}

	body := wantBinary(t, fn.Body, ast.OpMul)
	if sp := body.Span(); sp.Owner != def || sp.Start != 16 || sp.End != 21 {
		t.Errorf("body span = %+v, want {%v 16 21}", sp, def)
	}
}

func TestParseFnWithoutParams(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "fn one() = 1;")

	fn := program.Stmts[0].(*ast.FnStmt)
	if len(fn.Params) != 0 {
		t.Errorf("params = %v, want none", fn.Params)
	}
	wantNumber(t, fn.Body, 1)
}

func TestSecondStatementRebasedAgainstOwnStart(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "fn one() = 1;\nprint one();")

	ps := wantPrint(t, program.Stmts[1])
	root := in.RootDef("test.calc")

	// The print occupies [14,26) absolutely but its spans are relative to
	// its own start.
	if ext := program.Extents[1]; ext.Def != root || ext.Start != 14 || ext.End != 26 {
		t.Fatalf("extent = %+v, want {%v 14 26}", ext, root)
	}
	if sp := ps.Span(); sp.Owner != root || sp.Start != 0 || sp.End != 12 {
		t.Errorf("stmt span = %+v, want {%v 0 12}", sp, root)
	}
	call, ok := ps.Expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.CallExpr", ps.Expr)
	}
	if sp := call.Span(); sp.Start != 6 || sp.End != 11 {
		t.Errorf("call span = [%d,%d), want [6,11)", sp.Start, sp.End)
	}

	start, end := program.Resolve(1, call.Span())
	if start != 20 || end != 25 {
		t.Errorf("Resolve = [%d,%d), want [20,25)", start, end)
	}
}

func TestCallArguments(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "print area(3, 1 + 4);")

	ps := wantPrint(t, program.Stmts[0])
	call := ps.Expr.(*ast.CallExpr)
	if call.Fn != in.Func("area") {
		t.Errorf("callee = %v, want interned 'area'", call.Fn)
	}
	if len(call.Args) != 2 {
		t.Fatalf("len(Args) = %d, want 2", len(call.Args))
	}
	wantNumber(t, call.Args[0], 3)
	wantBinary(t, call.Args[1], ast.OpAdd)
}

func TestTrailingCommaInCallAndParams(t *testing.T) {
	in := intern.New()

	plain := parseProgram(t, in, "fn f(x, y) = x; print f(1, 2);")
	trailing := parseProgram(t, in, "fn f(x, y,) = x; print f(1, 2,);")

	if got, want := ast.Sprint(in, trailing), ast.Sprint(in, plain); got != want {
		t.Errorf("trailing-comma unit prints as %q, plain as %q", got, want)
	}

	fn := trailing.Stmts[0].(*ast.FnStmt)
	if len(fn.Params) != 2 {
		t.Errorf("params = %v, want 2 entries", fn.Params)
	}
	call := wantPrint(t, trailing.Stmts[1]).Expr.(*ast.CallExpr)
	if len(call.Args) != 2 {
		t.Errorf("args = %d, want 2", len(call.Args))
	}
}

func TestEmptyUnits(t *testing.T) {
	srcs := []string{
		"",
		"   \n\t",
		"// nothing here\n",
		"/* still nothing */",
		"// a\n/* b */ // c\n",
	}
	for _, src := range srcs {
		in := intern.New()
		program := parseProgram(t, in, src)
		if len(program.Stmts) != 0 || len(program.Extents) != 0 {
			t.Errorf("parse of %q: %d stmts, %d extents; want empty program",
				src, len(program.Stmts), len(program.Extents))
		}
	}
}

func TestPrintsShareRootDefinition(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "print 1;\nprint 2;")

	root := in.RootDef("test.calc")
	for i, ext := range program.Extents {
		if ext.Def != root {
			t.Errorf("extent %d def = %v, want shared root %v", i, ext.Def, root)
		}
	}

	other := parser.New(in, "other.calc", "print 1;")
	otherProgram, err := other.ParseProgram()
	if err != nil {
		t.Fatalf("parse of second unit failed: %v", err)
	}
	if otherProgram.Extents[0].Def == root {
		t.Error("distinct units must not share a root definition")
	}
}

func TestSpanLocalityAcrossSiblingEdit(t *testing.T) {
	in := intern.New()

	before := parseProgram(t, in, "fn a(x) = x + 1;\nfn b(y) = y * 2;")
	after := parseProgram(t, in, "fn a(x) = x + 11111 - x;\nfn b(y) = y * 2;")

	bBefore := before.Stmts[1].(*ast.FnStmt)
	bAfter := after.Stmts[1].(*ast.FnStmt)

	if bBefore.Name != bAfter.Name {
		t.Fatalf("b's interned name changed across re-parse")
	}
	if before.Extents[1].Def != after.Extents[1].Def {
		t.Fatalf("b's definition id changed across re-parse: %v vs %v",
			before.Extents[1].Def, after.Extents[1].Def)
	}

	// Editing a only moves b; every span recorded inside b is untouched.
	spansBefore := collectSpans(bBefore)
	spansAfter := collectSpans(bAfter)
	if !reflect.DeepEqual(spansBefore, spansAfter) {
		t.Errorf("b's spans changed when only a was edited:\nbefore %v\nafter  %v",
			spansBefore, spansAfter)
	}

	// The extent table is where the shift shows up.
	if before.Extents[1].Start == after.Extents[1].Start {
		t.Error("b's absolute extent should have moved")
	}
	width := func(e ast.Extent) int { return e.End - e.Start }
	if width(before.Extents[1]) != width(after.Extents[1]) {
		t.Error("b's extent width should be unchanged")
	}
}

func TestParseDeterminism(t *testing.T) {
	src := "fn f(x) = (x + 1) * f(x - 1);\nprint f(3);"
	in := intern.New()

	first := parseProgram(t, in, src)
	second := parseProgram(t, in, src)

	if got, want := ast.Sprint(in, second), ast.Sprint(in, first); got != want {
		t.Fatalf("re-parse printed differently: %q vs %q", got, want)
	}
	for i := range first.Stmts {
		if !reflect.DeepEqual(collectSpans(first.Stmts[i]), collectSpans(second.Stmts[i])) {
			t.Errorf("statement %d spans differ across identical parses", i)
		}
	}
	if !reflect.DeepEqual(first.Extents, second.Extents) {
		t.Errorf("extents differ across identical parses:\n%v\n%v", first.Extents, second.Extents)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"equals instead of comma in params",
			"fn f(x = x;",
			"expected ',' or ')', found '=' at offset 7",
		},
		{
			"missing operand",
			"print 1 + ;",
			"expected number, identifier or '(', found ';' at offset 10",
		},
		{
			"missing semicolon",
			"print 1",
			"expected ';', found end of input at offset 7",
		},
		{
			"expression at top level",
			"1 + 2;",
			"expected 'fn' or 'print', found '1' at offset 0",
		},
		{
			"missing function body",
			"fn f() = ;",
			"expected number, identifier or '(', found ';' at offset 9",
		},
		{
			"unclosed group",
			"print (1;",
			"expected ')', found ';' at offset 8",
		},
		{
			"number as function name",
			"fn 3() = 1;",
			"expected identifier, found '3' at offset 3",
		},
		{
			"missing separator between arguments",
			"print f(1 2);",
			"expected ',' or ')', found '2' at offset 10",
		},
		{
			"keyword as operand",
			"print print;",
			"expected number, identifier or '(', found 'print' at offset 6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseFails(t, tt.src)
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestParseErrorFields(t *testing.T) {
	err := parseFails(t, "fn f(x = x;")

	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error is %T, want *parser.ParseError", err)
	}
	wantExpected := []lexer.TokenType{lexer.COMMA, lexer.RPAREN}
	if !reflect.DeepEqual(perr.Expected, wantExpected) {
		t.Errorf("Expected = %v, want %v", perr.Expected, wantExpected)
	}
	if perr.Found.Type != lexer.ASSIGN || perr.Found.Literal != "=" {
		t.Errorf("Found = %+v, want the '=' token", perr.Found)
	}
	if perr.Offset != 7 {
		t.Errorf("Offset = %d, want 7", perr.Offset)
	}
}

func TestLexErrorSurfaces(t *testing.T) {
	err := parseFails(t, "print @;")

	var lerr *lexer.LexError
	if !errors.As(err, &lerr) {
		t.Fatalf("error is %T, want *lexer.LexError", err)
	}
	if lerr.Rune != '@' || lerr.Offset != 6 {
		t.Errorf("LexError = %+v, want rune '@' at offset 6", lerr)
	}
}

func TestLexErrorAtStatementStart(t *testing.T) {
	err := parseFails(t, "@")

	var lerr *lexer.LexError
	if !errors.As(err, &lerr) {
		t.Fatalf("error is %T, want *lexer.LexError", err)
	}
	if lerr.Offset != 0 {
		t.Errorf("Offset = %d, want 0", lerr.Offset)
	}
}

func TestNulByteDoesNotTruncateUnit(t *testing.T) {
	// parseFails also asserts no Program comes back; a NUL must be a lex
	// error, not an early end of input that drops the second statement.
	err := parseFails(t, "print 1;\x00print 2;")

	var lerr *lexer.LexError
	if !errors.As(err, &lerr) {
		t.Fatalf("error is %T, want *lexer.LexError", err)
	}
	if lerr.Rune != 0 || lerr.Offset != 8 {
		t.Errorf("LexError = %+v, want rune 0 at offset 8", lerr)
	}
}

func TestNumberOutOfRange(t *testing.T) {
	err := parseFails(t, "print "+strings.Repeat("9", 400)+";")

	var nerr *parser.NumberError
	if !errors.As(err, &nerr) {
		t.Fatalf("error is %T, want *parser.NumberError", err)
	}
	if nerr.Offset != 6 {
		t.Errorf("Offset = %d, want 6", nerr.Offset)
	}
}

func TestLargeButRepresentableNumber(t *testing.T) {
	in := intern.New()
	program := parseProgram(t, in, "print 123456789012345678901234567890;")

	ps := wantPrint(t, program.Stmts[0])
	lit, ok := ps.Expr.(*ast.NumberLit)
	if !ok {
		t.Fatalf("expression is %T, want *ast.NumberLit", ps.Expr)
	}
	if lit.Value != 123456789012345678901234567890.0 {
		t.Errorf("value = %v, want widened 1.2345678901234568e+29", lit.Value)
	}
}

func TestParseExpression(t *testing.T) {
	in := intern.New()
	p := parser.New(in, "expr", "1 + 2 * 3")
	expr, err := p.ParseExpression()
	if err != nil {
		t.Fatalf("ParseExpression failed: %v", err)
	}

	add := wantBinary(t, expr, ast.OpAdd)
	wantNumber(t, add.Left, 1)
	wantBinary(t, add.Right, ast.OpMul)

	// Standalone expressions keep placeholder ownership and absolute
	// offsets; there is no definition to rebase against.
	if sp := expr.Span(); sp.Owner != intern.Unknown || sp.Start != 0 || sp.End != 9 {
		t.Errorf("span = %+v, want {Unknown 0 9}", sp)
	}
}

func TestParseExpressionRequiresFullInput(t *testing.T) {
	in := intern.New()
	p := parser.New(in, "expr", "1 2")
	expr, err := p.ParseExpression()
	if err == nil {
		t.Fatalf("ParseExpression should have failed, got %+v", expr)
	}
	if got, want := err.Error(), "expected end of input, found '2' at offset 2"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestDuplicateParamsParse(t *testing.T) {
	// Syntactically fine; rejecting duplicates is the checker's concern.
	in := intern.New()
	program := parseProgram(t, in, "fn f(x, x) = x;")

	fn := program.Stmts[0].(*ast.FnStmt)
	if len(fn.Params) != 2 || fn.Params[0] != fn.Params[1] {
		t.Errorf("params = %v, want the same handle twice", fn.Params)
	}
}
