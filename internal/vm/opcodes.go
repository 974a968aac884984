// Package vm implements the BIRL compiler and the register virtual machine
// that runs its output.
package vm

import "fmt"

// Opcode represents a single VM instruction
type Opcode byte

const (
	// Registers
	OpPushValA            Opcode = iota // math_a = constant
	OpPushValB                          // math_b = constant
	OpPushIntermediateToA               // math_a = intermediate
	OpPushIntermediateToB               // math_b = intermediate
	OpSwapMath                          // swap math_a and math_b
	OpClearMath                         // math_a = math_b = intermediate = Null

	// Arithmetic: math_b = math_a op math_b
	OpAdd
	OpSub
	OpMul
	OpDiv

	// Comparison and conditional blocks
	OpCompare      // last_comparison = compare(math_a, math_b)
	OpExecuteIf    // operand: Requirement
	OpEndExecuteIf // closes the innermost ExecuteIf block

	// Variables
	OpReadVarFrom       // intermediate = current frame slot
	OpWriteVarTo        // current frame slot = math_b
	OpReadGlobalVarFrom // intermediate = global slot
	OpWriteGlobalVarTo  // global slot = math_b
	OpWriteVarToLast    // slot of the frame under construction = math_b

	// Calls
	OpMakeNewFrame          // operand: code id (PluginFrameID for plugins)
	OpAssertMathBCompatible // operand: TypeKind
	OpSetLastFrameReady     // the frame under construction may run
	OpCallPlugin            // operand: plugin index
	OpReturn                // pops the current frame

	// Input and conversions
	OpReadInput // intermediate = one line of input
	OpConvertToInt
	OpConvertToNum
	OpConvertToString

	// Output
	OpPrintMathB
	OpPrintMathBDebug
	OpPrintNewLine
	OpFlushStdout

	OpQuit
)

// OpcodeNames maps opcodes to their names for debugging
var OpcodeNames = map[Opcode]string{
	OpPushValA:              "PushValA",
	OpPushValB:              "PushValB",
	OpPushIntermediateToA:   "PushIntermediateToA",
	OpPushIntermediateToB:   "PushIntermediateToB",
	OpSwapMath:              "SwapMath",
	OpClearMath:             "ClearMath",
	OpAdd:                   "Add",
	OpSub:                   "Sub",
	OpMul:                   "Mul",
	OpDiv:                   "Div",
	OpCompare:               "Compare",
	OpExecuteIf:             "ExecuteIf",
	OpEndExecuteIf:          "EndExecuteIf",
	OpReadVarFrom:           "ReadVarFrom",
	OpWriteVarTo:            "WriteVarTo",
	OpReadGlobalVarFrom:     "ReadGlobalVarFrom",
	OpWriteGlobalVarTo:      "WriteGlobalVarTo",
	OpWriteVarToLast:        "WriteVarToLast",
	OpMakeNewFrame:          "MakeNewFrame",
	OpAssertMathBCompatible: "AssertMathBCompatible",
	OpSetLastFrameReady:     "SetLastFrameReady",
	OpCallPlugin:            "CallPlugin",
	OpReturn:                "Return",
	OpReadInput:             "ReadInput",
	OpConvertToInt:          "ConvertToInt",
	OpConvertToNum:          "ConvertToNum",
	OpConvertToString:       "ConvertToString",
	OpPrintMathB:            "PrintMathB",
	OpPrintMathBDebug:       "PrintMathBDebug",
	OpPrintNewLine:          "PrintNewLine",
	OpFlushStdout:           "FlushStdout",
	OpQuit:                  "Quit",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// Requirement is the condition tested by ExecuteIf against the frame's last
// comparison.
type Requirement uint8

const (
	ReqEqual Requirement = iota
	ReqNotEqual
	ReqLess
	ReqLessOrEqual
	ReqMore
	ReqMoreOrEqual
)

var requirementNames = [...]string{"Equal", "NotEqual", "Less", "LessOrEqual", "More", "MoreOrEqual"}

func (r Requirement) String() string {
	if int(r) < len(requirementNames) {
		return requirementNames[r]
	}
	return fmt.Sprintf("Requirement(%d)", uint8(r))
}

// Satisfied reports whether the comparison meets the requirement. A frame
// that never compared satisfies nothing.
func (r Requirement) Satisfied(c Comparison) bool {
	if c == CmpNone {
		return false
	}
	switch r {
	case ReqEqual:
		return c == CmpEqual
	case ReqNotEqual:
		return c != CmpEqual
	case ReqLess:
		return c == CmpLess
	case ReqLessOrEqual:
		return c == CmpLess || c == CmpEqual
	case ReqMore:
		return c == CmpMore
	case ReqMoreOrEqual:
		return c == CmpMore || c == CmpEqual
	}
	return false
}
