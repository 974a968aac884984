// Package stdlib is the set of globals and plugins every interpreter gets
// unless it is started with --no-stdlib.
package stdlib

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/diagnostics"
	"github.com/birl-lang/birl/internal/vm"
)

// Global is a read-only host variable.
type Global struct {
	Name  string
	Value func(m *vm.VM) vm.Value
}

// Host receives the standard library. backend.Session implements it.
type Host interface {
	VM() *vm.VM
	RegisterGlobal(name string, value vm.Value, readOnly bool) error
	RegisterPlugin(p vm.Plugin) error
}

func Globals() []Global {
	return []Global{
		{"BIRL_VERSAO", func(m *vm.VM) vm.Value { return m.NewText(config.Version) }},
		{"FRANGO_VAZIO", func(m *vm.VM) vm.Value { return m.NewText("") }},
	}
}

func Plugins() []vm.Plugin {
	return []vm.Plugin{
		{Name: "TAMANHO", Params: []vm.TypeKind{vm.KindText}, Fn: length},
		{Name: "GRITA", Params: []vm.TypeKind{vm.KindText}, Fn: textMapper(upper)},
		{Name: "SUSSURRA", Params: []vm.TypeKind{vm.KindText}, Fn: textMapper(lower)},
		{Name: "IDENTIDADE", Fn: identity},
		{Name: "ARREDONDA", Params: []vm.TypeKind{vm.KindNumber}, Fn: round},
	}
}

// Register installs every global and plugin on h.
func Register(h Host) error {
	for _, g := range Globals() {
		if err := h.RegisterGlobal(g.Name, g.Value(h.VM()), true); err != nil {
			return fmt.Errorf("stdlib global %s: %w", g.Name, err)
		}
	}
	for _, p := range Plugins() {
		if err := h.RegisterPlugin(p); err != nil {
			return fmt.Errorf("stdlib plugin %s: %w", p.Name, err)
		}
	}
	return nil
}

// length counts characters, not bytes.
func length(m *vm.VM, args []vm.Value) (vm.Value, error) {
	s, err := m.Text(args[0])
	if err != nil {
		return vm.NullVal(), err
	}
	return vm.IntVal(int64(utf8.RuneCountInString(s))), nil
}

func upper() cases.Caser { return cases.Upper(language.BrazilianPortuguese) }
func lower() cases.Caser { return cases.Lower(language.BrazilianPortuguese) }

// textMapper builds a plugin that recases its argument. Casers are stateful,
// so each call builds its own.
func textMapper(newCaser func() cases.Caser) vm.PluginFunc {
	return func(m *vm.VM, args []vm.Value) (vm.Value, error) {
		s, err := m.Text(args[0])
		if err != nil {
			return vm.NullVal(), err
		}
		caser := newCaser()
		return m.NewText(caser.String(s)), nil
	}
}

func identity(m *vm.VM, _ []vm.Value) (vm.Value, error) {
	return m.NewText(uuid.NewString()), nil
}

func round(_ *vm.VM, args []vm.Value) (vm.Value, error) {
	f := math.Round(args[0].Float())
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return vm.NullVal(), fmt.Errorf("%w: cannot round %v to an Integer", diagnostics.ErrParseValue, args[0].Float())
	}
	return vm.IntVal(int64(f)), nil
}
