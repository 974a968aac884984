package prettyprinter

import (
	"errors"
	"strings"
	"testing"

	"github.com/birl-lang/birl/internal/diagnostics"
	"github.com/birl-lang/birl/internal/lexer"
	"github.com/birl-lang/birl/internal/parser"
)

func TestFormat(t *testing.T) {
	input := `# soma dois monstros


jaula SOMA(monstro a,trapezio descendente b)
birl:a+b*(2-x)   # volta
saindo da jaula
vem total=-3
e ele que a gente quer :total,"a\"b#c"
e maior
ce quer ver essa porra:total,2.0,-total
fim
`
	want := `# soma dois monstros

JAULA SOMA (MONSTRO a, TRAPÉZIO DESCENDENTE b)
    BIRL: a + b * (2 - x) # volta
SAINDO DA JAULA
VEM: total, -3
É ELE QUE A GENTE QUER: total, "a\"b#c"
É MAIOR
    CE QUER VER ESSA PORRA: total, 2.0, (0 - total)
FIM
`
	got, err := Format(input)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	again, err := Format(got)
	if err != nil {
		t.Fatal(err)
	}
	if again != got {
		t.Errorf("formatting is not idempotent:\n%s", again)
	}
}

func TestRenderCommandRoundTrip(t *testing.T) {
	lines := []string{
		`CE QUER VER ISSO`,
		`CE QUER VER ISSO DIREITO: "tab\tnova\nlinha", 1.5`,
		`VEM: x`,
		`BORA: x, (1 + 2) * 3`,
		`BIRL`,
		`É HORA DO: F, x, "y"`,
		`JAULA SHOW`,
		`JAULA F (FRANGO s)`,
		`NUM VAI DÁ NÃO`,
		`QUE QUE CE QUER MONSTRINHO: n`,
		`MUDA PRA TRAPÉZIO: n`,
		`NUM É ELE`,
		`MENOR OU É MEMO`,
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			tokens, err := lexer.Tokenize(line, 1)
			if err != nil {
				t.Fatal(err)
			}
			cmd, err := parser.ParseLine(tokens, 1)
			if err != nil {
				t.Fatal(err)
			}
			if got := RenderCommand(cmd); got != line {
				t.Errorf("RenderCommand = %q, want %q", got, line)
			}
		})
	}
}

func TestSplitComment(t *testing.T) {
	tests := []struct {
		line, code, comment string
	}{
		{`VEM: x, 1`, `VEM: x, 1`, ``},
		{`VEM: x, 1 # um`, `VEM: x, 1 `, `# um`},
		{`VEM: x, "#" # hash`, `VEM: x, "#" `, `# hash`},
		{`VEM: x, "\"#"`, `VEM: x, "\"#"`, ``},
		{`   # só comentário`, `   `, `# só comentário`},
	}
	for _, tt := range tests {
		code, comment := splitComment(tt.line)
		if code != tt.code || comment != tt.comment {
			t.Errorf("splitComment(%q) = %q, %q", tt.line, code, comment)
		}
	}
}

func TestFormatError(t *testing.T) {
	_, err := Format("VEM: x, 1\nVEM: y, (1")
	if !errors.Is(err, diagnostics.ErrParse) {
		t.Fatalf("expected parse error, got %v", err)
	}
	var syntaxErr *diagnostics.SyntaxError
	if !errors.As(err, &syntaxErr) || syntaxErr.Line != 2 {
		t.Errorf("error should point at line 2: %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
