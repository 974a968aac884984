package vm

import (
	"fmt"

	"github.com/birl-lang/birl/internal/ast"
	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/diagnostics"
)

var requirements = map[ast.CommandKind]Requirement{
	ast.CmdExecuteIfEqual:          ReqEqual,
	ast.CmdExecuteIfNotEqual:       ReqNotEqual,
	ast.CmdExecuteIfLess:           ReqLess,
	ast.CmdExecuteIfLessOrEqual:    ReqLessOrEqual,
	ast.CmdExecuteIfGreater:        ReqMore,
	ast.CmdExecuteIfGreaterOrEqual: ReqMoreOrEqual,
}

func (c *Compiler) compileCommand(cmd *ast.Command) (ScopeHint, error) {
	switch cmd.Kind {
	case ast.CmdPrint, ast.CmdPrintLine, ast.CmdPrintDebug:
		return HintNone, c.compilePrint(cmd)

	case ast.CmdDeclare:
		return HintNone, c.compileDeclare(cmd)

	case ast.CmdSet:
		return HintNone, c.compileSet(cmd)

	case ast.CmdReturn:
		return HintNone, c.compileReturn(cmd)

	case ast.CmdCompare:
		return HintNone, c.compileCompare(cmd)

	case ast.CmdExecuteIfEqual, ast.CmdExecuteIfNotEqual, ast.CmdExecuteIfLess,
		ast.CmdExecuteIfLessOrEqual, ast.CmdExecuteIfGreater, ast.CmdExecuteIfGreaterOrEqual:
		c.emit(OpExecuteIf, int(requirements[cmd.Kind]))
		c.beginScope(ScopeExecuteIf)
		return HintScopeStart, nil

	case ast.CmdEndSubScope:
		return c.compileEndSubScope()

	case ast.CmdCall:
		return HintNone, c.compileCall(cmd)

	case ast.CmdFunctionStart:
		return c.compileFunctionStart(cmd)

	case ast.CmdFunctionEnd:
		return c.compileFunctionEnd()

	case ast.CmdQuit:
		c.emit(OpFlushStdout, 0)
		c.emit(OpQuit, 0)
		return HintNone, nil

	case ast.CmdGetTextInput, ast.CmdGetIntegerInput, ast.CmdGetNumberInput:
		return HintNone, c.compileInput(cmd)

	case ast.CmdConvertToInteger, ast.CmdConvertToNumber, ast.CmdConvertToText:
		return HintNone, c.compileConversion(cmd)
	}
	return HintNone, fmt.Errorf("%w: unknown command %s", diagnostics.ErrInternal, cmd.Kind)
}

func arity(cmd *ast.Command, min, max int) error {
	n := len(cmd.Args)
	if n < min || n > max {
		if min == max {
			return fmt.Errorf("%w: %s takes %d argument(s), got %d", diagnostics.ErrArity, cmd.Kind, min, n)
		}
		return fmt.Errorf("%w: %s takes %d to %d argument(s), got %d", diagnostics.ErrArity, cmd.Kind, min, max, n)
	}
	return nil
}

func (c *Compiler) compilePrint(cmd *ast.Command) error {
	printOp := OpPrintMathB
	if cmd.Kind == ast.CmdPrintDebug {
		printOp = OpPrintMathBDebug
	}
	for _, arg := range cmd.Args {
		if err := c.compileExpression(arg); err != nil {
			return err
		}
		c.emit(printOp, 0)
	}
	if cmd.Kind != ast.CmdPrint {
		c.emit(OpPrintNewLine, 0)
	}
	c.emit(OpFlushStdout, 0)
	return nil
}

// compileValue compiles the optional single argument of cmd, or Null.
func (c *Compiler) compileValue(cmd *ast.Command) error {
	if err := arity(cmd, 0, 1); err != nil {
		return err
	}
	if len(cmd.Args) == 0 {
		c.emitConst(OpPushValB, Constant{Type: ValNull})
		return nil
	}
	return c.compileExpression(cmd.Args[0])
}

// compileDeclare registers the name only after the value is compiled, so
// the value may refer to an outer variable of the same name.
func (c *Compiler) compileDeclare(cmd *ast.Command) error {
	if err := c.compileValue(cmd); err != nil {
		return err
	}
	sym, err := c.declare(cmd.Name, false)
	if err != nil {
		return err
	}
	c.emitWrite(sym)
	return nil
}

func (c *Compiler) writable(name string) (Symbol, error) {
	sym, ok := c.resolve(name)
	if !ok {
		return Symbol{}, fmt.Errorf("%w: %s", diagnostics.ErrUnknownIdentifier, name)
	}
	if sym.ReadOnly {
		return Symbol{}, fmt.Errorf("%w: %s", diagnostics.ErrReadOnly, name)
	}
	return sym, nil
}

func (c *Compiler) compileSet(cmd *ast.Command) error {
	if err := arity(cmd, 1, 1); err != nil {
		return err
	}
	sym, err := c.writable(cmd.Name)
	if err != nil {
		return err
	}
	if err := c.compileExpression(cmd.Args[0]); err != nil {
		return err
	}
	c.emitWrite(sym)
	return nil
}

func (c *Compiler) compileReturn(cmd *ast.Command) error {
	if err := c.compileValue(cmd); err != nil {
		return err
	}
	c.emit(OpReturn, 0)
	return nil
}

// compileCompare leaves the left operand in math_a and the right one in
// math_b before emitting Compare.
func (c *Compiler) compileCompare(cmd *ast.Command) error {
	if err := arity(cmd, 2, 2); err != nil {
		return err
	}
	left, right := cmd.Args[0], cmd.Args[1]

	saved := c.nextAddr
	defer func() { c.nextAddr = saved }()

	switch {
	case left.IsSingleOperand() && left.Nodes[0].Kind == ast.NodeValue:
		if err := c.compileExpression(right); err != nil {
			return err
		}
		c.emitConst(OpPushValA, literalConstant(left.Nodes[0].Value))

	case right.IsSingleOperand():
		if err := c.compileExpression(left); err != nil {
			return err
		}
		c.emit(OpSwapMath, 0)
		if err := c.pushOperandB(right.Nodes[0]); err != nil {
			return err
		}

	default:
		if err := c.compileExpression(left); err != nil {
			return err
		}
		t, err := c.allocTemp()
		if err != nil {
			return err
		}
		c.emitWrite(t)
		if err := c.compileExpression(right); err != nil {
			return err
		}
		c.emitRead(t)
		c.emit(OpPushIntermediateToA, 0)
	}
	c.emit(OpCompare, 0)
	return nil
}

func (c *Compiler) compileEndSubScope() (ScopeHint, error) {
	if c.currentScope().Tag == ScopeFunction {
		return HintNone, fmt.Errorf("%w: no open block to end", diagnostics.ErrScopeMismatch)
	}
	c.emit(OpEndExecuteIf, 0)
	c.endScope()
	return HintScopeEnd, nil
}

// compileCall marshals the arguments into a new frame. Parameters occupy
// addresses 1..n; address 0 receives the result.
func (c *Compiler) compileCall(cmd *ast.Command) error {
	fn, ok := c.functions[cmd.Name]
	if !ok {
		return fmt.Errorf("%w: function %s", diagnostics.ErrUnknownIdentifier, cmd.Name)
	}
	if len(cmd.Args) != len(fn.Params) {
		return fmt.Errorf("%w: %s takes %d argument(s), got %d", diagnostics.ErrArity, fn.Name, len(fn.Params), len(cmd.Args))
	}

	c.emit(OpMakeNewFrame, fn.CodeID)
	for i, arg := range cmd.Args {
		if err := c.compileExpression(arg); err != nil {
			return err
		}
		c.emit(OpAssertMathBCompatible, int(fn.Params[i]))
		c.emit(OpWriteVarToLast, i+1)
	}
	if fn.IsPlugin() {
		c.emit(OpCallPlugin, fn.Plugin)
	} else {
		c.emit(OpSetLastFrameReady, 0)
	}
	return nil
}

func (c *Compiler) compileFunctionStart(cmd *ast.Command) (ScopeHint, error) {
	if c.Depth() > 0 {
		return HintNone, fmt.Errorf("%w: function %s declared inside a block", diagnostics.ErrScopeMismatch, cmd.Name)
	}
	if _, exists := c.functions[cmd.Name]; exists {
		return HintNone, fmt.Errorf("%w: function %s", diagnostics.ErrRedeclared, cmd.Name)
	}
	isEntry := cmd.Name == config.EntryPointName
	if isEntry && len(cmd.Params) > 0 {
		return HintNone, fmt.Errorf("%w: %s takes no parameters", diagnostics.ErrArity, cmd.Name)
	}
	if len(cmd.Params)+1 > c.frameSize {
		return HintNone, fmt.Errorf("%w: %s takes %d parameters", diagnostics.ErrFrameOverflow, cmd.Name, len(cmd.Params))
	}

	scope := newScope(ScopeFunction, false, 0)
	scope.Vars[config.ReturnValueName] = Symbol{Address: 0}
	params := make([]TypeKind, len(cmd.Params))
	for i, p := range cmd.Params {
		kind, ok := KindFromName(p.Kind)
		if !ok {
			return HintNone, fmt.Errorf("%w: unknown parameter type %s", diagnostics.ErrType, p.Kind)
		}
		if _, dup := scope.Vars[p.Name]; dup {
			return HintNone, fmt.Errorf("%w: parameter %s", diagnostics.ErrRedeclared, p.Name)
		}
		params[i] = kind
		scope.Vars[p.Name] = Symbol{Address: i + 1}
	}

	codeID := config.EntryCodeID
	if !isEntry {
		codeID = c.program.NewSegment(cmd.Name)
	}
	c.functions[cmd.Name] = &FunctionInfo{Name: cmd.Name, CodeID: codeID, Params: params, Plugin: -1}
	c.scopes = append(c.scopes, scope)
	c.globalNext = c.nextAddr
	c.nextAddr = len(params) + 1
	c.currentCode = codeID

	c.logger.Debug().Str("function", cmd.Name).Int("code", codeID).Int("params", len(params)).Msg("function declared")
	return HintScopeStart, nil
}

func (c *Compiler) compileFunctionEnd() (ScopeHint, error) {
	if c.inGlobalFunction() {
		return HintNone, fmt.Errorf("%w: no function to end", diagnostics.ErrScopeMismatch)
	}
	if c.currentScope().Tag != ScopeFunction {
		return HintNone, fmt.Errorf("%w: function ended with an open block", diagnostics.ErrScopeMismatch)
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.nextAddr = c.globalNext
	c.currentCode = config.GlobalCodeID
	return HintScopeEnd, nil
}

// compileInput reads a line into name, declaring it when it does not exist.
func (c *Compiler) compileInput(cmd *ast.Command) error {
	if err := arity(cmd, 0, 0); err != nil {
		return err
	}
	sym, ok := c.resolve(cmd.Name)
	if ok && sym.ReadOnly {
		return fmt.Errorf("%w: %s", diagnostics.ErrReadOnly, cmd.Name)
	}

	c.emit(OpReadInput, 0)
	c.emit(OpPushIntermediateToB, 0)
	switch cmd.Kind {
	case ast.CmdGetIntegerInput:
		c.emit(OpConvertToInt, 0)
	case ast.CmdGetNumberInput:
		c.emit(OpConvertToNum, 0)
	}

	if !ok {
		var err error
		if sym, err = c.declare(cmd.Name, false); err != nil {
			return err
		}
	}
	c.emitWrite(sym)
	return nil
}

func (c *Compiler) compileConversion(cmd *ast.Command) error {
	if err := arity(cmd, 0, 0); err != nil {
		return err
	}
	sym, err := c.writable(cmd.Name)
	if err != nil {
		return err
	}
	c.emitRead(sym)
	c.emit(OpPushIntermediateToB, 0)
	switch cmd.Kind {
	case ast.CmdConvertToInteger:
		c.emit(OpConvertToInt, 0)
	case ast.CmdConvertToNumber:
		c.emit(OpConvertToNum, 0)
	case ast.CmdConvertToText:
		c.emit(OpConvertToString, 0)
	}
	c.emitWrite(sym)
	return nil
}
