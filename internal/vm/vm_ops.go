package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/diagnostics"
)

// binaryOp computes a op b. Integers wrap on overflow, mixed operands are
// promoted to Number and Null propagates.
func (m *VM) binaryOp(op Opcode, a, b Value) (Value, error) {
	if a.IsNull() || b.IsNull() {
		return NullVal(), nil
	}

	if a.IsText() || b.IsText() {
		if op != OpAdd || !a.IsText() || !b.IsText() {
			return NullVal(), fmt.Errorf("%w: cannot apply %s to %s and %s", diagnostics.ErrType, opSymbol(op), a.Type, b.Type)
		}
		return m.concat(a, b)
	}

	if a.Type == ValInt && b.Type == ValInt {
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case OpAdd:
			return IntVal(x + y), nil
		case OpSub:
			return IntVal(x - y), nil
		case OpMul:
			return IntVal(x * y), nil
		case OpDiv:
			if y == 0 {
				return NullVal(), diagnostics.ErrDivisionByZero
			}
			return IntVal(x / y), nil
		}
	}

	x, y := a.Float(), b.Float()
	switch op {
	case OpAdd:
		return NumberVal(x + y), nil
	case OpSub:
		return NumberVal(x - y), nil
	case OpMul:
		return NumberVal(x * y), nil
	case OpDiv:
		return NumberVal(x / y), nil
	}
	return NullVal(), fmt.Errorf("%w: %s is not arithmetic", diagnostics.ErrInternal, op)
}

// concat keeps the left id and appends the right string, which is taken
// out of the store.
func (m *VM) concat(a, b Value) (Value, error) {
	right, err := m.texts.Take(b.TextID())
	if err != nil {
		return NullVal(), err
	}
	if err := m.texts.Append(a.TextID(), right); err != nil {
		return NullVal(), err
	}
	return a, nil
}

func opSymbol(op Opcode) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	}
	return op.String()
}

// compare orders a against b. Text is ordered by length first; texts of the
// same length are only Equal or NotEqual.
func (m *VM) compare(a, b Value) (Comparison, error) {
	switch {
	case a.IsNull() || b.IsNull():
		if a.IsNull() && b.IsNull() {
			return CmpEqual, nil
		}
		return CmpNotEqual, nil

	case a.IsNumeric() && b.IsNumeric():
		if a.Type == ValInt && b.Type == ValInt {
			return order(a.AsInt(), b.AsInt()), nil
		}
		x, y := a.Float(), b.Float()
		if math.IsNaN(x) || math.IsNaN(y) {
			return CmpNotEqual, nil
		}
		return order(x, y), nil

	case a.IsText() && b.IsText():
		x, err := m.texts.Get(a.TextID())
		if err != nil {
			return CmpNone, err
		}
		y, err := m.texts.Get(b.TextID())
		if err != nil {
			return CmpNone, err
		}
		switch {
		case len(x) < len(y):
			return CmpLess, nil
		case len(x) > len(y):
			return CmpMore, nil
		case x == y:
			return CmpEqual, nil
		}
		return CmpNotEqual, nil
	}
	return CmpNotEqual, nil
}

func order[T int64 | float64](x, y T) Comparison {
	switch {
	case x < y:
		return CmpLess
	case x > y:
		return CmpMore
	}
	return CmpEqual
}

// assertCompatible checks an argument against a parameter kind, promoting
// Integer to Number where a Number is expected.
func assertCompatible(v Value, kind TypeKind) (Value, error) {
	switch kind {
	case KindInteger:
		if v.Type == ValInt {
			return v, nil
		}
	case KindNumber:
		if v.Type == ValInt {
			return NumberVal(float64(v.AsInt())), nil
		}
		if v.Type == ValNumber {
			return v, nil
		}
	case KindText:
		if v.Type == ValText {
			return v, nil
		}
	}
	return v, fmt.Errorf("%w: expected %s argument, got %s", diagnostics.ErrType, kind, v.Type)
}

func (m *VM) toInteger(v Value) (Value, error) {
	switch v.Type {
	case ValInt:
		return v, nil
	case ValNumber:
		f := v.AsNumber()
		if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
			return NullVal(), fmt.Errorf("%w: %s does not fit an Integer", diagnostics.ErrParseValue, formatNumber(f))
		}
		return IntVal(int64(f)), nil
	case ValText:
		s, err := m.texts.Take(v.TextID())
		if err != nil {
			return NullVal(), err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return NullVal(), fmt.Errorf("%w: %q is not an Integer", diagnostics.ErrParseValue, s)
		}
		return IntVal(n), nil
	}
	return NullVal(), fmt.Errorf("%w: cannot convert Null to Integer", diagnostics.ErrType)
}

func (m *VM) toNumber(v Value) (Value, error) {
	switch v.Type {
	case ValInt:
		return NumberVal(float64(v.AsInt())), nil
	case ValNumber:
		return v, nil
	case ValText:
		s, err := m.texts.Take(v.TextID())
		if err != nil {
			return NullVal(), err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return NullVal(), fmt.Errorf("%w: %q is not a Number", diagnostics.ErrParseValue, s)
		}
		return NumberVal(f), nil
	}
	return NullVal(), fmt.Errorf("%w: cannot convert Null to Number", diagnostics.ErrType)
}

func (m *VM) toText(v Value) (Value, error) {
	switch v.Type {
	case ValText:
		return v, nil
	case ValNull:
		return m.NewText(config.NullText), nil
	}
	s, err := m.format(v)
	if err != nil {
		return NullVal(), err
	}
	return m.NewText(s), nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
