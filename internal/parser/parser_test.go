package parser_test

import (
	"errors"
	"testing"

	"github.com/birl-lang/birl/internal/diagnostics"
	"github.com/birl-lang/birl/internal/lexer"
	"github.com/birl-lang/birl/internal/parser"
	"github.com/birl-lang/birl/internal/pipeline"
)

func parse(t *testing.T, input string) (*pipeline.PipelineContext, error) {
	t.Helper()
	ctx := pipeline.NewPipelineContext(input, 1)
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	return ctx, ctx.Err()
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"print_line", `CE QUER VER ESSA PORRA: "ola", x + 1`, `PrintLine ["ola"] [x + 1]`},
		{"print", `CE QUER VER ISSO: 2`, `Print [2]`},
		{"print_debug", `CE QUER VER ISSO DIREITO: 2`, `PrintDebug [2]`},
		{"print_nothing", `CE QUER VER ESSA PORRA`, `PrintLine`},
		{"declare_colon", `VEM: total, 2 + 3 * 4 - 1`, `Declare total [2 + 3 * 4 - 1]`},
		{"declare_assign", `VEM x = 5`, `Declare x [5]`},
		{"declare_bare", `VEM: x`, `Declare x`},
		{"set_negative_literal", `BORA: x, x - -1.5`, `Set x [x - -1.5]`},
		{"set_unary_symbol", `BORA y = -x`, `Set y [( 0 - x )]`},
		{"set_unary_group", `BORA x = -(a + b) * 2`, `Set x [( 0 - ( a + b ) ) * 2]`},
		{"compare", `É ELE QUE A GENTE QUER: a, 3`, `Compare [a] [3]`},
		{"compare_no_accents", `E ELE QUE A GENTE QUER: a, 3`, `Compare [a] [3]`},
		{"if_equal_lowercase", `é ele memo`, `ExecuteIfEqual`},
		{"if_not_equal", `NUM É ELE`, `ExecuteIfNotEqual`},
		{"if_less", `É MENOR`, `ExecuteIfLess`},
		{"if_less_or_equal", `MENOR OU É MEMO`, `ExecuteIfLessOrEqual`},
		{"if_greater", `É MAIOR`, `ExecuteIfGreater`},
		{"if_greater_or_equal", `MAIOR OU É MEMO`, `ExecuteIfGreaterOrEqual`},
		{"end_scope", `FIM`, `EndSubScope`},
		{"call_args", `É HORA DO: SOMA, 1, "a"`, `Call SOMA [1] ["a"]`},
		{"call_bare", `É HORA DO: SHOW`, `Call SHOW`},
		{"function_params", `JAULA SOMA (MONSTRO a, TRAPÉZIO DESCENDENTE b, FRANGO c)`, `FunctionStart SOMA(MONSTRO a, TRAPEZIO b, FRANGO c)`},
		{"function_short_number", `JAULA F (TRAPEZIO x)`, `FunctionStart F(TRAPEZIO x)`},
		{"function_bare", `JAULA SHOW`, `FunctionStart SHOW`},
		{"function_empty_params", `JAULA SHOW ()`, `FunctionStart SHOW`},
		{"function_end", `SAINDO DA JAULA`, `FunctionEnd`},
		{"return_bare", `BIRL`, `Return`},
		{"return_value", `BIRL: TREZE * 2`, `Return [TREZE * 2]`},
		{"quit", `NUM VAI DÁ NÃO`, `Quit`},
		{"text_input", `QUE QUE CE QUER: nome`, `GetTextInput nome`},
		{"integer_input", `QUE QUE CE QUER MONSTRÃO?: idade`, `GetIntegerInput idade`},
		{"number_input", `QUE QUE CE QUER MONSTRINHO: peso`, `GetNumberInput peso`},
		{"to_integer", `MUDA PRA MONSTRO: x`, `ConvertToInteger x`},
		{"to_number", `MUDA PRA TRAPÉZIO: x`, `ConvertToNumber x`},
		{"to_text", `MUDA PRA FRANGO: x`, `ConvertToText x`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, err := parse(t, tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ctx.Command == nil {
				t.Fatal("expected a command")
			}
			if got := ctx.Command.String(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
			if ctx.Command.Line() != 1 {
				t.Errorf("line = %d, want 1", ctx.Command.Line())
			}
		})
	}
}

func TestParser_EmptyLines(t *testing.T) {
	for _, input := range []string{"", "   ", "# só comentário"} {
		ctx, err := parse(t, input)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}
		if ctx.Command != nil {
			t.Errorf("%q: expected no command, got %s", input, ctx.Command)
		}
	}
}

func TestParser_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"unknown_command", `FAZ ISSO`},
		{"trailing_tokens", `FIM agora`},
		{"missing_name", `VEM:`},
		{"dangling_operator", `VEM: x, 1 +`},
		{"unclosed_paren", `VEM: x, (1 + 2`},
		{"extra_paren", `VEM: x, 1 )`},
		{"missing_operator", `VEM: x, 1 2`},
		{"unknown_param_type", `JAULA F (BOLO a)`},
		{"call_missing_colon", `É HORA DO SOMA`},
		{"empty_argument", `CE QUER VER ISSO: 1,`},
		{"assign_two_values", `BORA x = 1, 2`},
		{"illegal_character", `VEM: x, 1 % 2`},
		{"unterminated_string", `CE QUER VER ISSO: "abc`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(t, tc.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, diagnostics.ErrParse) {
				t.Errorf("error %v is not a parse error", err)
			}
		})
	}
}
