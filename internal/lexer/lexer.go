package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/birl-lang/birl/internal/diagnostics"
	"github.com/birl-lang/birl/internal/token"
)

// Lexer tokenizes a single source line. BIRL is line oriented: a command
// never spans lines, so the lexer has no notion of newlines.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // line number reported in tokens
	column       int  // current column number
}

func New(input string, line int) *Lexer {
	l := &Lexer{input: input, line: line, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '+':
		tok = newToken(token.PLUS, l.ch, l.line, l.column)
	case '-':
		tok = newToken(token.MINUS, l.ch, l.line, l.column)
	case '*':
		tok = newToken(token.ASTERISK, l.ch, l.line, l.column)
	case '/':
		tok = newToken(token.SLASH, l.ch, l.line, l.column)
	case '=':
		tok = newToken(token.ASSIGN, l.ch, l.line, l.column)
	case ':':
		tok = newToken(token.COLON, l.ch, l.line, l.column)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '"':
		col, start := l.column, l.position
		content, err := l.readString()
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: l.input[start:], Literal: err.Error(), Line: l.line, Column: col}
		}
		tok = token.Token{Type: token.STRING, Lexeme: l.input[start : l.position+1], Literal: content, Line: l.line, Column: col}
	case 0:
		return token.Token{Type: token.EOF, Line: l.line, Column: l.column}
	default:
		if isDigit(l.ch) {
			return l.readNumber()
		}
		if isWordStart(l.ch) {
			col := l.column
			word := l.readWord()
			return token.Token{Type: token.WORD, Lexeme: word, Literal: word, Line: l.line, Column: col}
		}
		tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
		tok.Literal = fmt.Sprintf("unexpected character %q", l.ch)
	}

	l.readChar()
	return tok
}

// readString consumes a double-quoted literal starting at the opening quote
// and returns its decoded content. The lexer is left on the closing quote.
func (l *Lexer) readString() (string, error) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return "", fmt.Errorf("unterminated string literal")
		case '"':
			return sb.String(), nil
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '0':
				sb.WriteRune(0)
			case '\\':
				sb.WriteRune('\\')
			case '"':
				sb.WriteRune('"')
			case 0:
				return "", fmt.Errorf("unterminated string literal")
			default:
				return "", fmt.Errorf("unknown escape sequence \\%c", l.ch)
			}
		default:
			sb.WriteRune(l.ch)
		}
	}
}

func (l *Lexer) readWord() string {
	position := l.position
	for isWordPart(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() token.Token {
	col := l.column
	position := l.position
	isFloat := false
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lexeme := l.input[position:l.position]

	if isFloat {
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: err.Error(), Line: l.line, Column: col}
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: f, Line: l.line, Column: col}
	}
	n, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: fmt.Sprintf("integer literal %s out of range", lexeme), Line: l.line, Column: col}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: n, Line: l.line, Column: col}
}

func isWordStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isWordPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '?' || unicode.Is(unicode.Mn, ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

// skipWhitespace also drops '#' comments, which run to the end of the line.
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
	if l.ch == '#' {
		for l.ch != 0 {
			l.readChar()
		}
	}
}

// Tokenize returns every token of the line, excluding the final EOF.
func Tokenize(input string, line int) ([]token.Token, error) {
	l := New(input, line)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		switch tok.Type {
		case token.EOF:
			return tokens, nil
		case token.ILLEGAL:
			return tokens, diagnostics.NewSyntaxError(tok.Line, tok.Column, "%v", tok.Literal)
		}
		tokens = append(tokens, tok)
	}
}
