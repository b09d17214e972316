package parser

import (
	"strconv"

	"github.com/calc-lang/calc-lang/internal/ast"
	"github.com/calc-lang/calc-lang/internal/intern"
	"github.com/calc-lang/calc-lang/internal/lexer"
)

// The expression grammar is layered by binding strength, one method per
// layer. Each layer parses the tighter layer first, then folds operands
// left to right while its own operators follow, so associativity and
// precedence come from the call structure alone.

// parseExpr is the loosest layer: + and -.
func (p *Parser) parseExpr() (ast.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.peekTok.Type == lexer.PLUS || p.peekTok.Type == lexer.MINUS {
		p.nextToken() // move to operator
		op := ast.OpAdd
		if p.curTok.Type == lexer.MINUS {
			op = ast.OpSub
		}
		p.nextToken() // move to right operand start

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(left, op, right, mergeSpan(left.Span(), right.Span()))
	}

	return left, nil
}

// parseTerm binds tighter than parseExpr: * and /.
func (p *Parser) parseTerm() (ast.Expr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for p.peekTok.Type == lexer.ASTERISK || p.peekTok.Type == lexer.SLASH {
		p.nextToken() // move to operator
		op := ast.OpMul
		if p.curTok.Type == lexer.SLASH {
			op = ast.OpDiv
		}
		p.nextToken() // move to right operand start

		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(left, op, right, mergeSpan(left.Span(), right.Span()))
	}

	return left, nil
}

// parseAtom is the tightest layer: literal, variable, call, or
// parenthesized expression.
func (p *Parser) parseAtom() (ast.Expr, error) {
	switch p.curTok.Type {
	case lexer.INT:
		return p.parseNumberLit()
	case lexer.IDENT:
		if p.peekTok.Type == lexer.LPAREN {
			return p.parseCallExpr()
		}
		return ast.NewVarRef(p.in.Var(p.curTok.Literal), p.tokenSpan(p.curTok)), nil
	case lexer.LPAREN:
		return p.parseGroupedExpr()
	default:
		return nil, p.errorAt(p.curTok, lexer.INT, lexer.IDENT, lexer.LPAREN)
	}
}

// parseNumberLit widens the digit string to float64. Digits that exceed
// the float64 range are an error rather than a silent infinity.
func (p *Parser) parseNumberLit() (ast.Expr, error) {
	value, err := strconv.ParseFloat(p.curTok.Literal, 64)
	if err != nil {
		return nil, &NumberError{Literal: p.curTok.Literal, Offset: p.curTok.Start}
	}
	return ast.NewNumberLit(value, p.tokenSpan(p.curTok)), nil
}

// parseCallExpr parses  IDENT ( args )  with curTok on the callee name.
// The call's span runs from the name through the closing parenthesis.
func (p *Parser) parseCallExpr() (ast.Expr, error) {
	start := p.curTok.Start
	fn := p.in.Func(p.curTok.Literal)

	p.nextToken() // move to '('
	p.nextToken() // move to first argument or ')'

	args, err := parseDelimited(p, delimitedConfig{
		Closing:   lexer.RPAREN,
		Separator: lexer.COMMA,
	}, func(int) (ast.Expr, error) {
		return p.parseExpr()
	})
	if err != nil {
		return nil, err
	}

	span := ast.Span{Owner: intern.Unknown, Start: start, End: p.curTok.End}
	return ast.NewCallExpr(fn, args, span), nil
}

// parseGroupedExpr parses  ( expr )  and widens the inner expression's
// span to include the parentheses, so the group is findable in source even
// though no node represents it.
func (p *Parser) parseGroupedExpr() (ast.Expr, error) {
	start := p.curTok.Start

	p.nextToken() // move past '('
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}

	expr.(spanSetter).SetSpan(ast.Span{Owner: intern.Unknown, Start: start, End: p.curTok.End})
	return expr, nil
}
