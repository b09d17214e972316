package parser

import (
	"github.com/calc-lang/calc-lang/internal/ast"
	"github.com/calc-lang/calc-lang/internal/intern"
	"github.com/calc-lang/calc-lang/internal/lexer"
)

// Parser implements a layered recursive descent parser. Invariants
// (documented here so new syntax stays aligned with the existing tests in
// parser_test.go):
//   - Lookahead: curTok always reflects the token currently under
//     examination; peekTok mirrors the next token pulled from the lexer.
//     The pair forms the parser's sole lookahead window and is only mutated
//     via nextToken. Every parse method is entered with curTok on its first
//     token and returns with curTok on its last.
//   - Errors: parsing halts at the first violation. Productions return
//     (node, error); a non-nil error propagates unchanged to the entry
//     point, which then yields no Program at all. An ILLEGAL token in the
//     failure position surfaces the lexer's own error instead of a
//     ParseError.
//   - Spans: nodes are built with Owner == intern.Unknown and absolute
//     offsets. When a top-level statement is finished its definition is
//     allocated and the whole subtree is rebased against the statement's
//     start, so a finished statement's spans never depend on where in the
//     unit it sits.
type Parser struct {
	lx      *lexer.Lexer
	in      *intern.Interner
	unit    string
	curTok  lexer.Token
	peekTok lexer.Token
}

// New returns a parser over input. unit names the compilation unit; it
// keys the synthetic root definition that owns top-level print statements.
// The interner must be shared by everything that wants to compare the
// resulting handles.
func New(in *intern.Interner, unit, input string) *Parser {
	p := &Parser{
		lx:   lexer.New(input),
		in:   in,
		unit: unit,
	}

	// Seed curTok/peekTok.
	p.nextToken()
	p.nextToken()

	return p
}

// ParseProgram parses a whole unit. On success every statement subtree
// carries definition-relative spans and the extent table maps each
// statement's definition to its absolute range. On error the unit has no
// Program: the first lexer or grammar violation is returned and the
// partial result is discarded.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	program := &ast.Program{}

	for p.curTok.Type != lexer.EOF {
		if p.curTok.Type == lexer.ILLEGAL {
			return nil, p.lexError(p.curTok)
		}
		stmt, ext, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		program.Stmts = append(program.Stmts, stmt)
		program.Extents = append(program.Extents, ext)
	}

	return program, nil
}

// ParseExpression parses input as a single standalone expression and
// requires the whole input to be consumed. There is no enclosing
// definition, so spans keep the parse-time placeholder owner and absolute
// offsets.
func (p *Parser) ParseExpression() (ast.Expr, error) {
	if p.curTok.Type == lexer.ILLEGAL {
		return nil, p.lexError(p.curTok)
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peekTok.Type != lexer.EOF {
		return nil, p.errorAt(p.peekTok, lexer.EOF)
	}
	return expr, nil
}

// nextToken advances the parser's token window.
// Contract: after calling nextToken, curTok == old(peekTok). The lexer is
// only queried from this hop to keep lookahead bookkeeping centralized.
func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	p.peekTok = p.lx.NextToken()
}

// expect asserts that the peek token matches tt and promotes it into
// curTok. The caller is responsible for inspecting curTok before invoking
// expect; expect never rewinds.
func (p *Parser) expect(tt lexer.TokenType) error {
	if p.peekTok.Type == tt {
		p.nextToken()
		return nil
	}
	return p.errorAt(p.peekTok, tt)
}

// errorAt builds the error for an unexpected token. An ILLEGAL token means
// the real failure happened in the lexer, so the recorded lexer error wins
// over a grammar-level one.
func (p *Parser) errorAt(found lexer.Token, expected ...lexer.TokenType) error {
	if found.Type == lexer.ILLEGAL {
		return p.lexError(found)
	}
	return &ParseError{Expected: expected, Found: found, Offset: found.Start}
}

// lexError finds the lexer error recorded for tok, falling back to the
// first one.
func (p *Parser) lexError(tok lexer.Token) error {
	for _, e := range p.lx.Errors {
		if e.Offset == tok.Start {
			return e
		}
	}
	return p.lx.Err()
}

// tokenSpan is the placeholder-owner span of a single token.
func (p *Parser) tokenSpan(tok lexer.Token) ast.Span {
	return ast.Span{Owner: intern.Unknown, Start: tok.Start, End: tok.End}
}

// spanSetter matches the SetSpan method every ast node carries.
type spanSetter interface {
	SetSpan(ast.Span)
}

// mergeSpan returns a span covering both a and b. The parser only merges
// placeholder spans, which share owner and coordinate base.
func mergeSpan(a, b ast.Span) ast.Span {
	sp := a
	if b.Start < sp.Start {
		sp.Start = b.Start
	}
	if b.End > sp.End {
		sp.End = b.End
	}
	return sp
}
