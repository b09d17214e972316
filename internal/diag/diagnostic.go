package diag

import "fmt"

// Stage identifies which front-end phase produced the diagnostic.
type Stage string

const (
	StageLexer  Stage = "lexer"
	StageParser Stage = "parser"
	StageCheck  Stage = "check"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Lexer errors
	CodeLexerUnexpectedChar Code = "LEXER_UNEXPECTED_CHAR"

	// Parser errors
	CodeParserUnexpectedToken Code = "PARSER_UNEXPECTED_TOKEN"
	CodeParserNumberRange     Code = "PARSER_NUMBER_OUT_OF_RANGE"

	// Check errors
	CodeCheckUndefinedVariable Code = "CHECK_UNDEFINED_VARIABLE"
	CodeCheckUnknownFunction   Code = "CHECK_UNKNOWN_FUNCTION"
	CodeCheckArityMismatch     Code = "CHECK_ARITY_MISMATCH"
	CodeCheckDuplicateParam    Code = "CHECK_DUPLICATE_PARAM"
)

// Diagnostic is a front-end finding surfaced to end-users. Start and End are
// absolute byte offsets into the source unit, half-open. Producers that work
// with definition-relative spans resolve them back through the program's
// extent table before building a Diagnostic.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Start    int
	End      int
}

// String returns the single-line form used in logs and simple output.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s [%s]", d.Severity, d.Message, d.Code)
}
