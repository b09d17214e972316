package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/calc-lang/calc-lang/internal/diag"
)

// LexError reports a character the language has no use for. Offset is the
// absolute byte offset of the rune in the input.
type LexError struct {
	Rune   rune
	Offset int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("unexpected character %q at offset %d", e.Rune, e.Offset)
}

// ToDiagnostic converts a lexer error into the shared diagnostic structure.
func (e *LexError) ToDiagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Stage:    diag.StageLexer,
		Severity: diag.SeverityError,
		Code:     diag.CodeLexerUnexpectedChar,
		Message:  fmt.Sprintf("unexpected character %q", e.Rune),
		Start:    e.Offset,
		End:      e.Offset + utf8.RuneLen(e.Rune),
	}
}

// Lexer scans source text into tokens on demand. The same input always
// produces the same token stream.
type Lexer struct {
	input string
	pos   int  // byte offset of ch
	ch    byte // current byte, zero past the end

	Errors []*LexError
}

// New creates a lexer positioned at the first character of input.
func New(input string) *Lexer {
	l := &Lexer{input: input, pos: -1}
	l.read()
	return l
}

// Err returns the first error the lexer recorded, or nil.
func (l *Lexer) Err() error {
	if len(l.Errors) == 0 {
		return nil
	}
	return l.Errors[0]
}

func (l *Lexer) addError(r rune, offset int) {
	l.Errors = append(l.Errors, &LexError{Rune: r, Offset: offset})
}

// read advances the lexer to the next byte. At end of input pos sticks at
// len(input) so the EOF token carries that offset.
func (l *Lexer) read() {
	l.pos++
	if l.pos >= len(l.input) {
		l.pos = len(l.input)
		l.ch = 0
		return
	}
	l.ch = l.input[l.pos]
}

// peek returns the next byte without advancing
func (l *Lexer) peek() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

// atEOF reports whether every input byte has been consumed. ch alone
// cannot answer this: a literal NUL in the input also reads as zero.
func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// skipTrivia discards whitespace, line comments, and block comments. Block
// comments do not nest; an unterminated block comment extends to the end of
// the input.
func (l *Lexer) skipTrivia() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.read()
		case l.ch == '/' && l.peek() == '/':
			l.read()
			l.read()
			for l.ch != '\n' && !l.atEOF() {
				l.read()
			}
		case l.ch == '/' && l.peek() == '*':
			l.read()
			l.read()
			for !l.atEOF() && !(l.ch == '*' && l.peek() == '/') {
				l.read()
			}
			if !l.atEOF() {
				l.read() // consume '*'
				l.read() // consume '/'
			}
		default:
			return
		}
	}
}

// readIdentifier reads an identifier or keyword
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return l.input[start:l.pos]
}

// readNumber reads an unsigned integer literal
func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.read()
	}
	return l.input[start:l.pos]
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() Token {
	l.skipTrivia()

	if l.atEOF() {
		return Token{Type: EOF, Start: l.pos, End: l.pos}
	}

	start := l.pos
	switch l.ch {
	case '+':
		return l.lexSingle(PLUS)
	case '-':
		return l.lexSingle(MINUS)
	case '*':
		return l.lexSingle(ASTERISK)
	case '/':
		return l.lexSingle(SLASH)
	case '(':
		return l.lexSingle(LPAREN)
	case ')':
		return l.lexSingle(RPAREN)
	case ',':
		return l.lexSingle(COMMA)
	case ';':
		return l.lexSingle(SEMICOLON)
	case '=':
		return l.lexSingle(ASSIGN)
	default:
		if isLetter(l.ch) {
			literal := l.readIdentifier()
			return Token{Type: LookupIdent(literal), Literal: literal, Start: start, End: l.pos}
		}
		if isDigit(l.ch) {
			literal := l.readNumber()
			return Token{Type: INT, Literal: literal, Start: start, End: l.pos}
		}
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		for i := 0; i < size; i++ {
			l.read()
		}
		l.addError(r, start)
		return Token{Type: ILLEGAL, Literal: string(r), Start: start, End: start + size}
	}
}

// lexSingle emits a one-byte token for the current character.
func (l *Lexer) lexSingle(t TokenType) Token {
	start := l.pos
	literal := string(l.ch)
	l.read()
	return Token{Type: t, Literal: literal, Start: start, End: l.pos}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
