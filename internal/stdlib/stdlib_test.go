package stdlib

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/birl-lang/birl/internal/diagnostics"
	"github.com/birl-lang/birl/internal/vm"
)

func plugin(t *testing.T, name string) vm.Plugin {
	t.Helper()
	for _, p := range Plugins() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no plugin %s", name)
	return vm.Plugin{}
}

func TestTextPlugins(t *testing.T) {
	m := vm.New(vm.NewProgram(), 0)

	tests := []struct {
		plugin string
		input  string
		want   string
	}{
		{"GRITA", "ação", "AÇÃO"},
		{"GRITA", "birl", "BIRL"},
		{"SUSSURRA", "MONSTRÃO", "monstrão"},
		{"SUSSURRA", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.plugin+"_"+tt.input, func(t *testing.T) {
			res, err := plugin(t, tt.plugin).Fn(m, []vm.Value{m.NewText(tt.input)})
			if err != nil {
				t.Fatal(err)
			}
			got, err := m.Text(res)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextPluginsConcurrentVMs(t *testing.T) {
	grita := plugin(t, "GRITA").Fn
	sussurra := plugin(t, "SUSSURRA").Fn

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := vm.New(vm.NewProgram(), 0)
			for j := 0; j < 200; j++ {
				res, err := grita(m, []vm.Value{m.NewText("coração")})
				if err == nil {
					res, err = sussurra(m, []vm.Value{res})
				}
				if err != nil {
					errs <- err
					return
				}
				if s, _ := m.Text(res); s != "coração" {
					errs <- errors.New("unexpected result " + s)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestLength(t *testing.T) {
	m := vm.New(vm.NewProgram(), 0)
	fn := plugin(t, "TAMANHO").Fn

	for input, want := range map[string]int64{"": 0, "abc": 3, "ação": 4} {
		res, err := fn(m, []vm.Value{m.NewText(input)})
		if err != nil {
			t.Fatal(err)
		}
		if res.Type != vm.ValInt || res.AsInt() != want {
			t.Errorf("TAMANHO(%q) = %v, want %d", input, res.AsInt(), want)
		}
	}

	if _, err := fn(m, []vm.Value{vm.IntVal(1)}); !errors.Is(err, diagnostics.ErrType) {
		t.Errorf("expected type error, got %v", err)
	}
}

func TestRound(t *testing.T) {
	fn := plugin(t, "ARREDONDA").Fn

	tests := []struct {
		input float64
		want  int64
	}{
		{2.5, 3},
		{2.4, 2},
		{-2.5, -3},
		{0, 0},
	}
	for _, tt := range tests {
		res, err := fn(nil, []vm.Value{vm.NumberVal(tt.input)})
		if err != nil {
			t.Fatal(err)
		}
		if res.AsInt() != tt.want {
			t.Errorf("ARREDONDA(%v) = %d, want %d", tt.input, res.AsInt(), tt.want)
		}
	}

	for _, bad := range []float64{math.NaN(), math.Inf(1), 1e300} {
		if _, err := fn(nil, []vm.Value{vm.NumberVal(bad)}); !errors.Is(err, diagnostics.ErrParseValue) {
			t.Errorf("ARREDONDA(%v): expected parse value error, got %v", bad, err)
		}
	}
}

func TestIdentity(t *testing.T) {
	m := vm.New(vm.NewProgram(), 0)
	res, err := plugin(t, "IDENTIDADE").Fn(m, nil)
	if err != nil {
		t.Fatal(err)
	}
	s, err := m.Text(res)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := uuid.Parse(s); err != nil {
		t.Errorf("%q is not a uuid: %v", s, err)
	}
}
