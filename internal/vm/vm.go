package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/diagnostics"
)

// MaxCallDepth bounds the callstack.
const MaxCallDepth = 4096

// ExecutionStatus is the outcome of a single Step.
type ExecutionStatus int

const (
	StatusNormal ExecutionStatus = iota
	StatusReturned
	StatusHalt
	StatusQuit
)

func (s ExecutionStatus) String() string {
	switch s {
	case StatusReturned:
		return "Returned"
	case StatusHalt:
		return "Halt"
	case StatusQuit:
		return "Quit"
	}
	return "Normal"
}

// PluginFunc is a host callback. Arguments arrive in declaration order;
// Text arguments are ids in the VM store (see VM.Text).
type PluginFunc func(m *VM, args []Value) (Value, error)

// Plugin is a host function callable from source code.
type Plugin struct {
	Name   string
	Params []TypeKind
	Fn     PluginFunc
}

// VM executes a Program. It is single threaded: one instruction per Step.
type VM struct {
	program   *Program
	callstack []*Frame
	frameSize int

	mathA        Value
	mathB        Value
	intermediate Value

	texts   *TextStore
	plugins []Plugin

	in     *bufio.Reader
	out    *bufio.Writer
	logger zerolog.Logger
}

// New creates a VM for program with a ready global frame. A frameSize below
// 2 selects the default.
func New(program *Program, frameSize int) *VM {
	if frameSize < 2 {
		frameSize = config.DefaultFrameSize
	}
	m := &VM{
		program:   program,
		frameSize: frameSize,
		texts:     NewTextStore(),
		in:        bufio.NewReader(os.Stdin),
		out:       bufio.NewWriter(os.Stdout),
		logger:    zerolog.Nop(),
	}
	global := newFrame(config.GlobalCodeID, frameSize)
	global.Ready = true
	m.callstack = []*Frame{global}
	return m
}

// SetOutput redirects program output.
func (m *VM) SetOutput(w io.Writer) {
	m.out.Flush()
	m.out = bufio.NewWriter(w)
}

// SetInput replaces the stream read by input commands.
func (m *VM) SetInput(r io.Reader) {
	m.in = bufio.NewReader(r)
}

// SetLogger installs a logger. Every executed instruction is logged at trace
// level.
func (m *VM) SetLogger(logger zerolog.Logger) {
	m.logger = logger
}

func (m *VM) Program() *Program { return m.program }

func (m *VM) FrameSize() int { return m.frameSize }

// Flush writes buffered output.
func (m *VM) Flush() error {
	return m.out.Flush()
}

// RegisterPlugin adds a plugin and returns its index for CallPlugin.
func (m *VM) RegisterPlugin(p Plugin) int {
	m.plugins = append(m.plugins, p)
	return len(m.plugins) - 1
}

// SetGlobal writes v into a slot of the global frame. Text values must be
// ids of the VM store (see NewText).
func (m *VM) SetGlobal(addr int, v Value) error {
	if addr < 0 || addr >= m.frameSize {
		return fmt.Errorf("%w: global address %d", diagnostics.ErrFrameOverflow, addr)
	}
	return m.callstack[0].store(addr, v, m.texts)
}

// Global reads a slot of the global frame. Text is copied into the VM store.
func (m *VM) Global(addr int) (Value, error) {
	if addr < 0 || addr >= m.frameSize {
		return NullVal(), fmt.Errorf("%w: global address %d", diagnostics.ErrFrameOverflow, addr)
	}
	return m.callstack[0].load(addr, m.texts)
}

// NewText interns s in the VM store and returns it as a value.
func (m *VM) NewText(s string) Value {
	return TextVal(m.texts.Add(s))
}

// Text returns the string of a Text value held by the VM store.
func (m *VM) Text(v Value) (string, error) {
	if v.Type != ValText {
		return "", fmt.Errorf("%w: expected Text, got %s", diagnostics.ErrType, v.Type)
	}
	return m.texts.Get(v.TextID())
}

// MathB returns the result register.
func (m *VM) MathB() Value { return m.mathB }

// Depth returns the number of frames on the callstack.
func (m *VM) Depth() int { return len(m.callstack) }

// currentFrame is the last ready frame. The frame on top may still be
// under construction.
func (m *VM) currentFrame() *Frame {
	for i := len(m.callstack) - 1; i >= 0; i-- {
		if m.callstack[i].Ready {
			return m.callstack[i]
		}
	}
	return m.callstack[0]
}

// Step executes one instruction of the current frame.
func (m *VM) Step() (ExecutionStatus, error) {
	frame := m.currentFrame()
	seg := m.program.Segment(frame.ID)
	if seg == nil {
		return StatusHalt, fmt.Errorf("%w: no code for function id %d", diagnostics.ErrInternal, frame.ID)
	}

	if frame.PC >= len(seg.Code) {
		if len(m.callstack) == 1 {
			return StatusHalt, nil
		}
		// Falling off a function returns Null.
		m.mathB = NullVal()
		if err := m.doReturn(); err != nil {
			return StatusHalt, &RuntimeError{Function: seg.Name, Err: err}
		}
		return StatusReturned, nil
	}

	ins := seg.Code[frame.PC]
	frame.PC++

	m.logger.Trace().
		Str("func", seg.Name).
		Int("pc", frame.PC-1).
		Str("op", ins.Op.String()).
		Int("depth", len(m.callstack)).
		Int("skip", frame.SkipLevel).
		Msg("step")

	if frame.SkipLevel > 0 {
		switch ins.Op {
		case OpExecuteIf:
			frame.SkipLevel++
		case OpEndExecuteIf:
			frame.SkipLevel--
		}
		return StatusNormal, nil
	}

	status, err := m.executeOneOp(frame, ins)
	if err != nil {
		return StatusHalt, &RuntimeError{Line: ins.Line, Function: seg.Name, Err: err}
	}
	return status, nil
}

// Run steps until the global code halts or the program quits. Output is
// flushed before returning.
func (m *VM) Run() (ExecutionStatus, error) {
	defer m.out.Flush()
	for {
		status, err := m.Step()
		if err != nil {
			return status, err
		}
		if status == StatusHalt || status == StatusQuit {
			return status, nil
		}
	}
}

// Recover brings the VM back to a runnable state after a runtime error:
// every frame but the global one is dropped, the registers are cleared and
// the global frame resumes after its last instruction. Globals are kept.
func (m *VM) Recover() {
	m.out.Flush()
	global := m.callstack[0]
	m.callstack = m.callstack[:1]
	global.PC = len(m.program.Segments[global.ID].Code)
	global.SkipLevel = 0
	m.mathA, m.mathB, m.intermediate = NullVal(), NullVal(), NullVal()
}
