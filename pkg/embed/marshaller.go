package birl

import (
	"fmt"
	"math"
	"reflect"

	"github.com/birl-lang/birl/internal/diagnostics"
	"github.com/birl-lang/birl/internal/vm"
)

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	valueType = reflect.TypeOf(vm.Value{})
)

// Marshaller handles conversion between Go and BIRL values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to a BIRL value. Strings are interned in the
// store of machine; booleans become the Integers 1 and 0.
func (m *Marshaller) ToValue(machine *vm.VM, val interface{}) (vm.Value, error) {
	if val == nil {
		return vm.NullVal(), nil
	}
	if v, ok := val.(vm.Value); ok {
		return v, nil
	}

	v := reflect.ValueOf(val)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return vm.NullVal(), nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return vm.IntVal(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return vm.NullVal(), fmt.Errorf("%w: %d does not fit an Integer", diagnostics.ErrType, u)
		}
		return vm.IntVal(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return vm.NumberVal(v.Float()), nil
	case reflect.Bool:
		if v.Bool() {
			return vm.IntVal(1), nil
		}
		return vm.IntVal(0), nil
	case reflect.String:
		return machine.NewText(v.String()), nil
	}
	return vm.NullVal(), fmt.Errorf("%w: cannot convert %s to a BIRL value", diagnostics.ErrType, v.Type())
}

// FromValue converts a BIRL value to a Go value of type target. A nil
// target (or an interface target) yields int64, float64, string or nil.
func (m *Marshaller) FromValue(machine *vm.VM, v vm.Value, target reflect.Type) (reflect.Value, error) {
	if target == valueType {
		return reflect.ValueOf(v), nil
	}

	var natural interface{}
	switch v.Type {
	case vm.ValInt:
		natural = v.AsInt()
	case vm.ValNumber:
		natural = v.AsNumber()
	case vm.ValText:
		s, err := machine.Text(v)
		if err != nil {
			return reflect.Value{}, err
		}
		natural = s
	}

	if target == nil || target.Kind() == reflect.Interface {
		if natural == nil {
			if target == nil {
				return reflect.Value{}, nil
			}
			return reflect.Zero(target), nil
		}
		rv := reflect.ValueOf(natural)
		if target != nil && !rv.Type().AssignableTo(target) {
			return reflect.Value{}, fmt.Errorf("%w: cannot use %s as %s", diagnostics.ErrType, v.Type, target)
		}
		return rv, nil
	}

	if natural == nil {
		return reflect.Zero(target), nil
	}

	out := reflect.New(target).Elem()
	switch target.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type != vm.ValInt {
			break
		}
		if out.OverflowInt(v.AsInt()) {
			return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", diagnostics.ErrType, v.AsInt(), target)
		}
		out.SetInt(v.AsInt())
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if v.Type != vm.ValInt {
			break
		}
		if v.AsInt() < 0 || out.OverflowUint(uint64(v.AsInt())) {
			return reflect.Value{}, fmt.Errorf("%w: %d overflows %s", diagnostics.ErrType, v.AsInt(), target)
		}
		out.SetUint(uint64(v.AsInt()))
		return out, nil
	case reflect.Float32, reflect.Float64:
		if !v.IsNumeric() {
			break
		}
		out.SetFloat(v.Float())
		return out, nil
	case reflect.Bool:
		if v.Type != vm.ValInt {
			break
		}
		out.SetBool(v.AsInt() != 0)
		return out, nil
	case reflect.String:
		if v.Type != vm.ValText {
			break
		}
		out.SetString(natural.(string))
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %s as %s", diagnostics.ErrType, v.Type, target)
}

// KindOf maps a Go parameter type to the BIRL parameter kind.
func (m *Marshaller) KindOf(t reflect.Type) (vm.TypeKind, error) {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Bool:
		return vm.KindInteger, nil
	case reflect.Float32, reflect.Float64:
		return vm.KindNumber, nil
	case reflect.String:
		return vm.KindText, nil
	}
	return 0, fmt.Errorf("%w: unsupported parameter type %s", diagnostics.ErrType, t)
}

// Plugin wraps a Go function as a plugin. The function takes integer, float,
// bool or string parameters and returns nothing, one value, or one value
// and an error.
func (m *Marshaller) Plugin(name string, fn interface{}) (vm.Plugin, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return vm.Plugin{}, fmt.Errorf("%s: expected a function, got %T", name, fn)
	}
	ft := fv.Type()
	if ft.IsVariadic() {
		return vm.Plugin{}, fmt.Errorf("%s: variadic functions are not supported", name)
	}

	params := make([]vm.TypeKind, ft.NumIn())
	for i := range params {
		kind, err := m.KindOf(ft.In(i))
		if err != nil {
			return vm.Plugin{}, fmt.Errorf("%s: parameter %d: %w", name, i+1, err)
		}
		params[i] = kind
	}

	returnsErr := ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType
	values := ft.NumOut()
	if returnsErr {
		values--
	}
	if values > 1 {
		return vm.Plugin{}, fmt.Errorf("%s: functions may return at most one value", name)
	}

	call := func(machine *vm.VM, args []vm.Value) (vm.Value, error) {
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			rv, err := m.FromValue(machine, arg, ft.In(i))
			if err != nil {
				return vm.NullVal(), fmt.Errorf("argument %d: %w", i+1, err)
			}
			in[i] = rv
		}
		out := fv.Call(in)
		if returnsErr {
			if err, _ := out[len(out)-1].Interface().(error); err != nil {
				return vm.NullVal(), err
			}
		}
		if values == 0 {
			return vm.NullVal(), nil
		}
		return m.ToValue(machine, out[0].Interface())
	}
	return vm.Plugin{Name: name, Params: params, Fn: call}, nil
}
