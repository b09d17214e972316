package parser

import (
	"fmt"
	"strings"

	"github.com/calc-lang/calc-lang/internal/diag"
	"github.com/calc-lang/calc-lang/internal/lexer"
)

// ParseError reports the first grammar violation in a unit: the token
// classes the grammar would have accepted at that point, and the token
// actually found. Offset is the found token's absolute start.
type ParseError struct {
	Expected []lexer.TokenType
	Found    lexer.Token
	Offset   int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("expected %s, found %s at offset %d",
		expectedList(e.Expected), foundDescription(e.Found), e.Offset)
}

// ToDiagnostic converts a parse error into the shared diagnostic structure.
func (e *ParseError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     diag.CodeParserUnexpectedToken,
		Message: fmt.Sprintf("expected %s, found %s",
			expectedList(e.Expected), foundDescription(e.Found)),
		Start: e.Offset,
		End:   e.Found.End,
	}
}

// NumberError reports a numeric literal whose value does not fit the
// language's float64 number model.
type NumberError struct {
	Literal string
	Offset  int
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("number %s out of range at offset %d", e.Literal, e.Offset)
}

// ToDiagnostic converts a number range error into the shared diagnostic
// structure.
func (e *NumberError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageParser,
		Severity: diag.SeverityError,
		Code:     diag.CodeParserNumberRange,
		Message:  fmt.Sprintf("number %s out of range", e.Literal),
		Start:    e.Offset,
		End:      e.Offset + len(e.Literal),
	}
}

// expectedList renders an expected token-class set for error messages:
// "';'", "',' or ')'", "number, identifier or '('".
func expectedList(expected []lexer.TokenType) string {
	parts := make([]string, len(expected))
	for i, tt := range expected {
		parts[i] = expectedDescription(tt)
	}
	switch len(parts) {
	case 0:
		return "nothing"
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " or " + parts[len(parts)-1]
	}
}

func expectedDescription(tt lexer.TokenType) string {
	switch tt {
	case lexer.EOF:
		return "end of input"
	case lexer.INT:
		return "number"
	case lexer.IDENT:
		return "identifier"
	case lexer.FN:
		return "'fn'"
	case lexer.PRINT:
		return "'print'"
	default:
		// Symbol token types are their own lexeme.
		return "'" + string(tt) + "'"
	}
}

func foundDescription(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of input"
	}
	return "'" + tok.Literal + "'"
}
