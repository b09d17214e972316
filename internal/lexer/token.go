package lexer

// TokenType identifies the kind of a token
type TokenType string

// Token is one lexical token. Start and End are absolute byte offsets into
// the source text, half-open.
type Token struct {
	Type    TokenType
	Literal string // exact bytes from source; empty for EOF
	Start   int
	End     int
}

// Token type constants
const (
	// Special tokens
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers and literals
	IDENT TokenType = "IDENT" // area, x, y, ...
	INT   TokenType = "INT"   // 42

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"

	// Keywords
	FN    TokenType = "FN"
	PRINT TokenType = "PRINT"
)

var keywords = map[string]TokenType{
	"fn":    FN,
	"print": PRINT,
}

// LookupIdent checks if the identifier is a keyword
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
