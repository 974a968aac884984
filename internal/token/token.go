package token

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Words are keyword fragments, identifiers and type names alike; the
	// parser decides which one a word is from its position in the line.
	WORD   TokenType = "WORD"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	STRING TokenType = "STRING"

	// Operators
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	ASSIGN   TokenType = "="

	// Delimiters
	COLON  TokenType = ":"
	COMMA  TokenType = ","
	LPAREN TokenType = "("
	RPAREN TokenType = ")"
)

// Token is a single lexical unit of a source line.
type Token struct {
	Type    TokenType
	Lexeme  string // exact source text
	Literal any    // decoded value: string for WORD/STRING, int64 for INT, float64 for FLOAT
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q) at %d:%d", t.Type, t.Lexeme, t.Line, t.Column)
}
