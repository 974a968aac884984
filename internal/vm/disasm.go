package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of every non-empty segment.
func Disassemble(program *Program) string {
	var sb strings.Builder
	for id, seg := range program.Segments {
		if len(seg.Code) == 0 {
			continue
		}
		sb.WriteString(DisassembleSegment(seg, id))
	}
	return sb.String()
}

// DisassembleSegment lists the instructions of one segment.
func DisassembleSegment(seg *Segment, id int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("== %s (%d) ==\n", seg.Name, id))
	for offset, ins := range seg.Code {
		disassembleInstruction(&sb, seg, offset, ins)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, seg *Segment, offset int, ins Instruction) {
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	// Print line number
	if offset > 0 && seg.Code[offset-1].Line == ins.Line {
		sb.WriteString("   | ")
	} else {
		sb.WriteString(fmt.Sprintf("%4d ", ins.Line))
	}

	switch ins.Op {
	case OpPushValA, OpPushValB:
		constantInstruction(sb, ins)
	case OpExecuteIf:
		sb.WriteString(fmt.Sprintf("%-22s %s\n", ins.Op, Requirement(ins.Operand)))
	case OpAssertMathBCompatible:
		sb.WriteString(fmt.Sprintf("%-22s %s\n", ins.Op, TypeKind(ins.Operand)))
	case OpReadVarFrom, OpWriteVarTo, OpReadGlobalVarFrom, OpWriteGlobalVarTo,
		OpWriteVarToLast, OpMakeNewFrame, OpCallPlugin:
		operandInstruction(sb, ins)
	default:
		simpleInstruction(sb, ins)
	}
}

func simpleInstruction(sb *strings.Builder, ins Instruction) {
	sb.WriteString(ins.Op.String() + "\n")
}

func operandInstruction(sb *strings.Builder, ins Instruction) {
	sb.WriteString(fmt.Sprintf("%-22s %d\n", ins.Op, ins.Operand))
}

func constantInstruction(sb *strings.Builder, ins Instruction) {
	sb.WriteString(fmt.Sprintf("%-22s %s\n", ins.Op, ins.Const))
}
