package vm

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/birl-lang/birl/internal/ast"
	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/diagnostics"
)

// ScopeHint tells the driver whether a command opened or closed a block.
type ScopeHint int

const (
	HintNone ScopeHint = iota
	HintScopeStart
	HintScopeEnd
)

// FunctionInfo describes a callable name: compiled code or a host plugin.
type FunctionInfo struct {
	Name   string
	CodeID int
	Params []TypeKind
	// Plugin is the plugin index, or -1 for compiled functions.
	Plugin int
}

func (f *FunctionInfo) IsPlugin() bool { return f.Plugin >= 0 }

// Compiler translates commands into instructions, one line at a time.
// Instructions of a line are buffered and appended to the program only when
// the whole line compiled, so a failed line leaves no trace.
type Compiler struct {
	program   *Program
	frameSize int

	scopes    []*Scope
	functions map[string]*FunctionInfo

	currentCode int // code id receiving instructions
	nextAddr    int // next free address in the current function
	globalNext  int // nextAddr of the global function while a function is open

	code []Instruction // instructions of the line being compiled
	line int

	logger zerolog.Logger
}

// NewCompiler creates a compiler that appends to program. A frameSize below
// 2 selects the default.
func NewCompiler(program *Program, frameSize int) *Compiler {
	if frameSize < 2 {
		frameSize = config.DefaultFrameSize
	}
	c := &Compiler{
		program:   program,
		frameSize: frameSize,
		functions: make(map[string]*FunctionInfo),
		nextAddr:  1,
		logger:    zerolog.Nop(),
	}
	global := newScope(ScopeFunction, true, 0)
	global.Vars[config.ReturnValueName] = Symbol{Address: 0, Global: true}
	c.scopes = []*Scope{global}
	return c
}

func (c *Compiler) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

func (c *Compiler) Program() *Program { return c.program }

// Depth is the number of open blocks (functions and conditionals).
func (c *Compiler) Depth() int { return len(c.scopes) - 1 }

// Function looks up a declared function or plugin.
func (c *Compiler) Function(name string) (*FunctionInfo, bool) {
	f, ok := c.functions[name]
	return f, ok
}

// HasEntryPoint reports whether the entry point function has been declared.
func (c *Compiler) HasEntryPoint() bool {
	f, ok := c.functions[config.EntryPointName]
	return ok && f.CodeID == config.EntryCodeID
}

// Global looks up a variable of the global scope.
func (c *Compiler) Global(name string) (Symbol, bool) {
	sym, ok := c.scopes[0].Vars[name]
	return sym, ok
}

// DeclareGlobal reserves a global slot for a host variable and returns its
// address. It must be called outside of any block.
func (c *Compiler) DeclareGlobal(name string, readOnly bool) (int, error) {
	if c.Depth() > 0 {
		return 0, fmt.Errorf("%w: globals must be declared at top level", diagnostics.ErrScopeMismatch)
	}
	sym, err := c.declare(name, readOnly)
	if err != nil {
		return 0, err
	}
	return sym.Address, nil
}

// RegisterPlugin makes a host plugin callable under name. index is the
// value returned by VM.RegisterPlugin.
func (c *Compiler) RegisterPlugin(name string, params []TypeKind, index int) error {
	if _, exists := c.functions[name]; exists {
		return fmt.Errorf("%w: function %s", diagnostics.ErrRedeclared, name)
	}
	if len(params)+1 > c.frameSize {
		return fmt.Errorf("%w: %s takes %d parameters", diagnostics.ErrFrameOverflow, name, len(params))
	}
	c.functions[name] = &FunctionInfo{Name: name, CodeID: PluginFrameID, Params: params, Plugin: index}
	return nil
}

// Compile compiles one command and appends its instructions to the program.
func (c *Compiler) Compile(cmd *ast.Command) (ScopeHint, error) {
	if cmd == nil {
		return HintNone, nil
	}
	c.code = c.code[:0]
	c.line = cmd.Line()
	target := c.currentCode

	hint, err := c.compileCommand(cmd)
	if err != nil {
		return HintNone, &CompileError{Line: c.line, Err: err}
	}
	if len(c.code) > 0 {
		code := make([]Instruction, len(c.code))
		copy(code, c.code)
		c.program.Append(target, code)
	}
	return hint, nil
}

// AppendEntryCall appends the call of the entry point to the global code.
func (c *Compiler) AppendEntryCall(line int) {
	c.program.Append(config.GlobalCodeID, []Instruction{
		{Op: OpMakeNewFrame, Operand: config.EntryCodeID, Line: line},
		{Op: OpSetLastFrameReady, Line: line},
	})
}

func (c *Compiler) emit(op Opcode, operand int) {
	c.code = append(c.code, Instruction{Op: op, Operand: operand, Line: c.line})
}

func (c *Compiler) emitConst(op Opcode, k Constant) {
	c.code = append(c.code, Instruction{Op: op, Const: k, Line: c.line})
}

func (c *Compiler) emitRead(sym Symbol) {
	if sym.Global {
		c.emit(OpReadGlobalVarFrom, sym.Address)
	} else {
		c.emit(OpReadVarFrom, sym.Address)
	}
}

func (c *Compiler) emitWrite(sym Symbol) {
	if sym.Global {
		c.emit(OpWriteGlobalVarTo, sym.Address)
	} else {
		c.emit(OpWriteVarTo, sym.Address)
	}
}

func literalConstant(lit ast.Literal) Constant {
	switch lit.Kind {
	case ast.LitInteger:
		return Constant{Type: ValInt, Int: lit.Int}
	case ast.LitNumber:
		return Constant{Type: ValNumber, Num: lit.Num}
	case ast.LitText:
		return Constant{Type: ValText, Str: lit.Str}
	}
	return Constant{Type: ValNull}
}
