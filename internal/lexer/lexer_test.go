package lexer

import (
	"testing"

	"github.com/birl-lang/birl/internal/token"
)

func TestTokenize(t *testing.T) {
	input := `VEM: total, (2 + 3.5) * "a,b" # comment`
	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral any
	}{
		{token.WORD, "VEM"},
		{token.COLON, ":"},
		{token.WORD, "total"},
		{token.COMMA, ","},
		{token.LPAREN, "("},
		{token.INT, int64(2)},
		{token.PLUS, "+"},
		{token.FLOAT, 3.5},
		{token.RPAREN, ")"},
		{token.ASTERISK, "*"},
		{token.STRING, "a,b"},
	}

	tokens, err := Tokenize(input, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != len(tests) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(tests), tokens)
	}
	for i, tt := range tests {
		tok := tokens[i]
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%v, got=%v", i, tt.expectedLiteral, tok.Literal)
		}
		if tok.Line != 7 {
			t.Fatalf("tests[%d] - line wrong. got=%d", i, tok.Line)
		}
	}
}

func TestTokenize_AccentedWords(t *testing.T) {
	tokens, err := Tokenize("É ELE QUE A GENTE QUER: x, 5", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Type != token.WORD || tokens[0].Literal != "É" {
		t.Fatalf("first token = %v", tokens[0])
	}
	if tokens[6].Type != token.COLON {
		t.Fatalf("expected colon after the phrase, got %v", tokens[6])
	}
}

func TestTokenize_StringEscapes(t *testing.T) {
	tokens, err := Tokenize(`"linha\n\t\"aspas\" \\ #nao e comentario"`, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "linha\n\t\"aspas\" \\ #nao e comentario"
	if len(tokens) != 1 || tokens[0].Literal != want {
		t.Fatalf("got %v, want %q", tokens, want)
	}
}

func TestTokenize_Errors(t *testing.T) {
	tests := []string{
		`"sem fim`,
		`"escape \q"`,
		`VEM: x, 3 % 2`,
		`99999999999999999999`,
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			if _, err := Tokenize(input, 1); err == nil {
				t.Fatalf("expected error for %q", input)
			}
		})
	}
}

func TestTokenize_CommentOnly(t *testing.T) {
	tokens, err := Tokenize("   # nada aqui", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 0 {
		t.Fatalf("expected no tokens, got %v", tokens)
	}
}

func TestFoldKeyword(t *testing.T) {
	tests := map[string]string{
		"É":         "E",
		"NÃO":       "NAO",
		"DÁ":        "DA",
		"MONSTRÃO?": "MONSTRAO",
		"trapézio":  "TRAPEZIO",
		"FIM":       "FIM",
	}
	for in, want := range tests {
		if got := FoldKeyword(in); got != want {
			t.Errorf("FoldKeyword(%q) = %q, want %q", in, got, want)
		}
	}
}
