package vm

import (
	"fmt"
	"io"
	"strings"

	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/diagnostics"
)

func (m *VM) executeOneOp(frame *Frame, ins Instruction) (ExecutionStatus, error) {
	switch ins.Op {
	case OpPushValA:
		m.mathA = m.constant(ins.Const)

	case OpPushValB:
		m.mathB = m.constant(ins.Const)

	case OpPushIntermediateToA:
		m.mathA = m.intermediate

	case OpPushIntermediateToB:
		m.mathB = m.intermediate

	case OpSwapMath:
		m.mathA, m.mathB = m.mathB, m.mathA

	case OpClearMath:
		m.mathA, m.mathB, m.intermediate = NullVal(), NullVal(), NullVal()

	case OpAdd, OpSub, OpMul, OpDiv:
		result, err := m.binaryOp(ins.Op, m.mathA, m.mathB)
		if err != nil {
			return StatusHalt, err
		}
		m.mathB = result

	case OpCompare:
		cmp, err := m.compare(m.mathA, m.mathB)
		if err != nil {
			return StatusHalt, err
		}
		frame.LastComparison = cmp

	case OpExecuteIf:
		if !Requirement(ins.Operand).Satisfied(frame.LastComparison) {
			frame.SkipLevel = 1
		}

	case OpEndExecuteIf:
		// Reached only when the block ran.

	case OpReadVarFrom:
		if err := m.checkAddress(frame, ins.Operand); err != nil {
			return StatusHalt, err
		}
		v, err := frame.load(ins.Operand, m.texts)
		if err != nil {
			return StatusHalt, err
		}
		m.intermediate = v

	case OpWriteVarTo:
		if err := m.checkAddress(frame, ins.Operand); err != nil {
			return StatusHalt, err
		}
		if err := frame.store(ins.Operand, m.mathB, m.texts); err != nil {
			return StatusHalt, err
		}

	case OpReadGlobalVarFrom:
		global := m.callstack[0]
		if err := m.checkAddress(global, ins.Operand); err != nil {
			return StatusHalt, err
		}
		v, err := global.load(ins.Operand, m.texts)
		if err != nil {
			return StatusHalt, err
		}
		m.intermediate = v

	case OpWriteGlobalVarTo:
		global := m.callstack[0]
		if err := m.checkAddress(global, ins.Operand); err != nil {
			return StatusHalt, err
		}
		if err := global.store(ins.Operand, m.mathB, m.texts); err != nil {
			return StatusHalt, err
		}

	case OpWriteVarToLast:
		last := m.callstack[len(m.callstack)-1]
		if last.Ready {
			return StatusHalt, fmt.Errorf("%w: no frame under construction", diagnostics.ErrInternal)
		}
		if err := m.checkAddress(last, ins.Operand); err != nil {
			return StatusHalt, err
		}
		if err := last.store(ins.Operand, m.mathB, m.texts); err != nil {
			return StatusHalt, err
		}

	case OpMakeNewFrame:
		if len(m.callstack) >= MaxCallDepth {
			return StatusHalt, fmt.Errorf("%w: call stack overflow", diagnostics.ErrInternal)
		}
		if ins.Operand != PluginFrameID && m.program.Segment(ins.Operand) == nil {
			return StatusHalt, fmt.Errorf("%w: no code for function id %d", diagnostics.ErrInternal, ins.Operand)
		}
		m.callstack = append(m.callstack, newFrame(ins.Operand, m.frameSize))

	case OpAssertMathBCompatible:
		v, err := assertCompatible(m.mathB, TypeKind(ins.Operand))
		if err != nil {
			return StatusHalt, err
		}
		m.mathB = v

	case OpSetLastFrameReady:
		last := m.callstack[len(m.callstack)-1]
		if last.Ready || last.ID == PluginFrameID {
			return StatusHalt, fmt.Errorf("%w: no frame under construction", diagnostics.ErrInternal)
		}
		last.Ready = true

	case OpCallPlugin:
		if err := m.callPlugin(frame, ins.Operand); err != nil {
			return StatusHalt, err
		}

	case OpReturn:
		if len(m.callstack) == 1 {
			return StatusHalt, nil
		}
		if err := m.doReturn(); err != nil {
			return StatusHalt, err
		}
		return StatusReturned, nil

	case OpReadInput:
		m.out.Flush()
		line, err := m.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return StatusHalt, fmt.Errorf("reading input: %w", err)
		}
		m.intermediate = m.NewText(strings.TrimRight(line, "\r\n"))

	case OpConvertToInt:
		v, err := m.toInteger(m.mathB)
		if err != nil {
			return StatusHalt, err
		}
		m.mathB = v

	case OpConvertToNum:
		v, err := m.toNumber(m.mathB)
		if err != nil {
			return StatusHalt, err
		}
		m.mathB = v

	case OpConvertToString:
		v, err := m.toText(m.mathB)
		if err != nil {
			return StatusHalt, err
		}
		m.mathB = v

	case OpPrintMathB:
		s, err := m.format(m.mathB)
		if err != nil {
			return StatusHalt, err
		}
		m.out.WriteString(s)

	case OpPrintMathBDebug:
		s, err := m.formatDebug(m.mathB)
		if err != nil {
			return StatusHalt, err
		}
		m.out.WriteString(s)

	case OpPrintNewLine:
		m.out.WriteByte('\n')

	case OpFlushStdout:
		if err := m.out.Flush(); err != nil {
			return StatusHalt, fmt.Errorf("writing output: %w", err)
		}

	case OpQuit:
		return StatusQuit, nil

	default:
		return StatusHalt, fmt.Errorf("%w: unknown opcode %d", diagnostics.ErrInternal, ins.Op)
	}
	return StatusNormal, nil
}

func (m *VM) constant(c Constant) Value {
	switch c.Type {
	case ValInt:
		return IntVal(c.Int)
	case ValNumber:
		return NumberVal(c.Num)
	case ValText:
		return m.NewText(c.Str)
	}
	return NullVal()
}

func (m *VM) checkAddress(frame *Frame, addr int) error {
	if addr < 0 || addr >= len(frame.Stack) {
		return fmt.Errorf("%w: address %d", diagnostics.ErrFrameOverflow, addr)
	}
	return nil
}

// doReturn pops the current frame and stores math_b in the caller's slot 0.
func (m *VM) doReturn() error {
	top := len(m.callstack) - 1
	if !m.callstack[top].Ready {
		return fmt.Errorf("%w: return with a frame under construction", diagnostics.ErrInternal)
	}
	m.callstack = m.callstack[:top]
	caller := m.currentFrame()
	return caller.store(0, m.mathB, m.texts)
}

// callPlugin pops the plugin frame, hands its arguments to the host and
// stores the result in the caller's slot 0.
func (m *VM) callPlugin(caller *Frame, index int) error {
	if index < 0 || index >= len(m.plugins) {
		return fmt.Errorf("%w: unknown plugin %d", diagnostics.ErrInternal, index)
	}
	top := len(m.callstack) - 1
	argFrame := m.callstack[top]
	if argFrame.ID != PluginFrameID || argFrame.Ready {
		return fmt.Errorf("%w: plugin called without an argument frame", diagnostics.ErrInternal)
	}
	m.callstack = m.callstack[:top]

	plugin := m.plugins[index]
	args := make([]Value, len(plugin.Params))
	for i := range args {
		v, err := argFrame.load(i+1, m.texts)
		if err != nil {
			return err
		}
		args[i] = v
	}

	m.logger.Debug().Str("plugin", plugin.Name).Int("args", len(args)).Msg("calling plugin")
	result, err := plugin.Fn(m, args)
	if err != nil {
		return fmt.Errorf("%s: %w", plugin.Name, err)
	}
	return caller.store(0, result, m.texts)
}

func (m *VM) format(v Value) (string, error) {
	switch v.Type {
	case ValInt:
		return fmt.Sprintf("%d", v.AsInt()), nil
	case ValNumber:
		return formatNumber(v.AsNumber()), nil
	case ValText:
		return m.texts.Get(v.TextID())
	}
	return config.NullText, nil
}

func (m *VM) formatDebug(v Value) (string, error) {
	switch v.Type {
	case ValInt:
		return fmt.Sprintf("Integer(%d)", v.AsInt()), nil
	case ValNumber:
		return fmt.Sprintf("Number(%s)", formatNumber(v.AsNumber())), nil
	case ValText:
		s, err := m.texts.Get(v.TextID())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Text(%q)", s), nil
	}
	return "Null", nil
}
