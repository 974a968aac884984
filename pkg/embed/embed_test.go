package birl_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	birl "github.com/birl-lang/birl/pkg/embed"
)

func newVM(t *testing.T) (*birl.VM, *bytes.Buffer) {
	t.Helper()
	machine := birl.New()
	out := &bytes.Buffer{}
	machine.SetOutput(out)
	machine.SetInput(strings.NewReader(""))
	return machine, out
}

func TestEmbedAPI(t *testing.T) {
	machine, out := newVM(t)

	// 1. Bind a simple function
	if err := machine.Bind("DOBRO", func(x int) int { return x * 2 }); err != nil {
		t.Fatal(err)
	}

	// 2. Set host globals
	if err := machine.Set("nome", "Cumpadi"); err != nil {
		t.Fatal(err)
	}
	if err := machine.Set("peso", 2.5); err != nil {
		t.Fatal(err)
	}

	// 3. Eval script using bound values
	code := `É HORA DO: DOBRO, 21
CE QUER VER ESSA PORRA: nome, " ", TREZE, " ", peso * 2`

	res, err := machine.Eval(code)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if res != int64(42) {
		t.Errorf("Eval result = %#v, want int64(42)", res)
	}
	if got := out.String(); got != "Cumpadi 42 5\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSetUpdatesExistingGlobal(t *testing.T) {
	machine, out := newVM(t)
	if err := machine.Set("x", 1); err != nil {
		t.Fatal(err)
	}
	if _, err := machine.Eval("CE QUER VER ISSO: x"); err != nil {
		t.Fatal(err)
	}
	if err := machine.Set("x", "um"); err != nil {
		t.Fatal(err)
	}
	if _, err := machine.Eval("CE QUER VER ISSO: x"); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "1um" {
		t.Errorf("output = %q", got)
	}
}

func TestGet(t *testing.T) {
	machine, _ := newVM(t)
	if _, err := machine.Eval("VEM: a, 7\nVEM: b, 1.5\nVEM: c, \"birl\"\nVEM: d"); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		want interface{}
	}{
		{"a", int64(7)},
		{"b", 1.5},
		{"c", "birl"},
		{"d", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := machine.Get(tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %#v, want %#v", tt.name, got, tt.want)
			}
		})
	}
	if _, err := machine.Get("nada"); err == nil {
		t.Error("Get of an undeclared name should fail")
	}
}

func TestBindSignatures(t *testing.T) {
	machine, out := newVM(t)
	errZero := errors.New("zero is not allowed")

	bindings := map[string]interface{}{
		"JUNTA":  func(a, b string) string { return a + b },
		"METADE": func(x float64) float64 { return x / 2 },
		"CHECA": func(x int64) (int64, error) {
			if x == 0 {
				return 0, errZero
			}
			return x, nil
		},
		"NADA": func() {},
		"SIM":  func(b bool) bool { return !b },
	}
	for name, fn := range bindings {
		if err := machine.Bind(name, fn); err != nil {
			t.Fatalf("Bind(%s): %v", name, err)
		}
	}

	code := `É HORA DO: JUNTA, "BI", "RL"
CE QUER VER ISSO: TREZE
É HORA DO: METADE, 5
CE QUER VER ISSO: " ", TREZE
É HORA DO: CHECA, 3
CE QUER VER ISSO: " ", TREZE
É HORA DO: SIM, 0
CE QUER VER ISSO: " ", TREZE
É HORA DO: NADA
CE QUER VER ISSO: " ", TREZE`
	if _, err := machine.Eval(code); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "BIRL 2.5 3 1 <Null>" {
		t.Errorf("output = %q", got)
	}

	_, err := machine.Eval("É HORA DO: CHECA, 0")
	if !errors.Is(err, errZero) {
		t.Errorf("expected the function's error, got %v", err)
	}
}

func TestBindRejects(t *testing.T) {
	machine, _ := newVM(t)
	tests := []struct {
		name string
		fn   interface{}
	}{
		{"not_a_function", 42},
		{"variadic", func(xs ...int) int { return len(xs) }},
		{"slice_param", func(xs []int) int { return len(xs) }},
		{"two_results", func() (int, int) { return 1, 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := machine.Bind("F", tt.fn); err == nil {
				t.Error("Bind should fail")
			}
		})
	}
	if err := machine.Bind("TAMANHO", func(s string) int { return 0 }); err == nil {
		t.Error("binding over a standard library plugin should fail")
	}
}

func TestEvalAcrossCalls(t *testing.T) {
	machine, out := newVM(t)
	steps := []string{
		"JAULA SOMA (MONSTRO a, MONSTRO b)",
		"BIRL: a + b",
		"SAINDO DA JAULA",
		"É HORA DO: SOMA, 40, 2",
	}
	var res interface{}
	for _, step := range steps {
		var err error
		if res, err = machine.Eval(step); err != nil {
			t.Fatalf("%q: %v", step, err)
		}
	}
	if res != int64(42) {
		t.Errorf("result = %#v", res)
	}
	if out.Len() != 0 {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestEvalInput(t *testing.T) {
	machine, out := newVM(t)
	machine.SetInput(strings.NewReader("3.5\n"))
	if _, err := machine.Eval("QUE QUE CE QUER MONSTRINHO: x\nCE QUER VER ISSO: x * 2"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "7" {
		t.Errorf("output = %q", out.String())
	}
}

func TestLoadFile(t *testing.T) {
	machine, out := newVM(t)
	path := filepath.Join(t.TempDir(), "oi.birl")
	if err := os.WriteFile(path, []byte("CE QUER VER ESSA PORRA: \"oi\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := machine.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if out.String() != "oi\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestLoadFileCallsShow(t *testing.T) {
	machine, out := newVM(t)
	path := filepath.Join(t.TempDir(), "show.birl")
	src := "JAULA SHOW\nCE QUER VER ESSA PORRA: \"show ran\"\nSAINDO DA JAULA\nCE QUER VER ESSA PORRA: \"top\"\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := machine.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	if out.String() != "top\nshow ran\n" {
		t.Errorf("output = %q", out.String())
	}
}
