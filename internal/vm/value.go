package vm

import (
	"fmt"
	"math"

	"github.com/birl-lang/birl/internal/config"
)

// ValueType identifies the type of value stored in the Value struct
type ValueType uint8

const (
	ValNull ValueType = iota
	ValInt
	ValNumber
	ValText // Data holds a text id, see TextStore
)

func (t ValueType) String() string {
	switch t {
	case ValInt:
		return "Integer"
	case ValNumber:
		return "Number"
	case ValText:
		return "Text"
	default:
		return "Null"
	}
}

// Value is a small tagged union. Text is a handle into a TextStore, so the
// meaning of a Text value depends on which store it lives in: registers
// always hold ids of the VM store, frame slots ids of the frame store.
type Value struct {
	Type ValueType
	Data uint64 // int64 bits, float64 bits or text id
}

// Constructors

func NullVal() Value {
	return Value{Type: ValNull}
}

func IntVal(v int64) Value {
	return Value{Type: ValInt, Data: uint64(v)}
}

func NumberVal(v float64) Value {
	return Value{Type: ValNumber, Data: math.Float64bits(v)}
}

func TextVal(id uint64) Value {
	return Value{Type: ValText, Data: id}
}

// Accessors

func (v Value) AsInt() int64 {
	return int64(v.Data)
}

func (v Value) AsNumber() float64 {
	return math.Float64frombits(v.Data)
}

func (v Value) TextID() uint64 {
	return v.Data
}

func (v Value) IsNull() bool { return v.Type == ValNull }
func (v Value) IsText() bool { return v.Type == ValText }

// IsNumeric reports whether v is an Integer or a Number.
func (v Value) IsNumeric() bool {
	return v.Type == ValInt || v.Type == ValNumber
}

// Float returns a numeric value as float64, promoting integers.
func (v Value) Float() float64 {
	if v.Type == ValInt {
		return float64(v.AsInt())
	}
	return v.AsNumber()
}

// TypeKind is the compile-time type of a function parameter.
type TypeKind uint8

const (
	KindInteger TypeKind = iota
	KindNumber
	KindText
)

func (k TypeKind) String() string {
	switch k {
	case KindInteger:
		return "Integer"
	case KindNumber:
		return "Number"
	case KindText:
		return "Text"
	}
	return fmt.Sprintf("TypeKind(%d)", uint8(k))
}

// KindFromName maps a canonical type keyword (MONSTRO, TRAPEZIO, FRANGO)
// to its TypeKind.
func KindFromName(name string) (TypeKind, bool) {
	switch name {
	case config.IntegerKindName:
		return KindInteger, true
	case config.NumberKindName:
		return KindNumber, true
	case config.TextKindName:
		return KindText, true
	}
	return 0, false
}

// Constant is an immediate operand of PushValA / PushValB. Text constants
// carry the string itself; executing the push interns it in the VM store.
type Constant struct {
	Type ValueType
	Int  int64
	Num  float64
	Str  string
}

func (c Constant) String() string {
	switch c.Type {
	case ValInt:
		return fmt.Sprintf("Integer(%d)", c.Int)
	case ValNumber:
		return fmt.Sprintf("Number(%s)", formatNumber(c.Num))
	case ValText:
		return fmt.Sprintf("Text(%q)", c.Str)
	}
	return "Null"
}
