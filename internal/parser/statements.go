package parser

import (
	"github.com/calc-lang/calc-lang/internal/ast"
	"github.com/calc-lang/calc-lang/internal/intern"
	"github.com/calc-lang/calc-lang/internal/lexer"
)

// parseStatement dispatches on the statement keyword. Each statement
// parser returns the finished, already rebased subtree together with its
// extent, and leaves curTok on the first token after the terminating
// semicolon.
func (p *Parser) parseStatement() (ast.Stmt, ast.Extent, error) {
	switch p.curTok.Type {
	case lexer.FN:
		return p.parseFnStmt()
	case lexer.PRINT:
		return p.parsePrintStmt()
	default:
		return nil, ast.Extent{}, p.errorAt(p.curTok, lexer.FN, lexer.PRINT)
	}
}

// param carries one parsed parameter until the statement assembles its
// aligned slices.
type param struct {
	id   intern.VarID
	span ast.Span
}

// parseFnStmt parses  fn IDENT ( params ) = expr ;
func (p *Parser) parseFnStmt() (ast.Stmt, ast.Extent, error) {
	start := p.curTok.Start

	if err := p.expect(lexer.IDENT); err != nil {
		return nil, ast.Extent{}, err
	}
	name := p.in.Func(p.curTok.Literal)
	nameSpan := p.tokenSpan(p.curTok)

	if err := p.expect(lexer.LPAREN); err != nil {
		return nil, ast.Extent{}, err
	}
	p.nextToken() // move to first parameter or ')'

	params, err := parseDelimited(p, delimitedConfig{
		Closing:   lexer.RPAREN,
		Separator: lexer.COMMA,
	}, func(int) (param, error) {
		if p.curTok.Type != lexer.IDENT {
			return param{}, p.errorAt(p.curTok, lexer.IDENT)
		}
		return param{id: p.in.Var(p.curTok.Literal), span: p.tokenSpan(p.curTok)}, nil
	})
	if err != nil {
		return nil, ast.Extent{}, err
	}

	if err := p.expect(lexer.ASSIGN); err != nil {
		return nil, ast.Extent{}, err
	}
	p.nextToken() // move to body start

	body, err := p.parseExpr()
	if err != nil {
		return nil, ast.Extent{}, err
	}

	if err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, ast.Extent{}, err
	}
	end := p.curTok.End

	ids := make([]intern.VarID, len(params))
	spans := make([]ast.Span, len(params))
	for i, prm := range params {
		ids[i] = prm.id
		spans[i] = prm.span
	}

	stmt := ast.NewFnStmt(name, nameSpan, ids, spans, body,
		ast.Span{Owner: intern.Unknown, Start: start, End: end})

	// The statement is complete: give it its real definition and make all
	// spans relative to the statement's own start.
	def := p.in.FunctionDef(name)
	ast.Rebase(stmt, def, start)

	p.nextToken() // move past ';'

	return stmt, ast.Extent{Def: def, Start: start, End: end}, nil
}

// parsePrintStmt parses  print expr ;
// Top-level prints belong to the unit's synthetic root definition.
func (p *Parser) parsePrintStmt() (ast.Stmt, ast.Extent, error) {
	start := p.curTok.Start

	p.nextToken() // move to expression start
	expr, err := p.parseExpr()
	if err != nil {
		return nil, ast.Extent{}, err
	}

	if err := p.expect(lexer.SEMICOLON); err != nil {
		return nil, ast.Extent{}, err
	}
	end := p.curTok.End

	stmt := ast.NewPrintStmt(expr, ast.Span{Owner: intern.Unknown, Start: start, End: end})

	def := p.in.RootDef(p.unit)
	ast.Rebase(stmt, def, start)

	p.nextToken() // move past ';'

	return stmt, ast.Extent{Def: def, Start: start, End: end}, nil
}
