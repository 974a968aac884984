// Package diagnostics defines the error kinds shared by the front end, the
// compiler and the VM. Callers match kinds with errors.Is; the concrete
// errors carry position information.
package diagnostics

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is malformed syntax found by the lexer or the line parser.
	ErrParse = errors.New("parse error")
	// ErrUnknownIdentifier is a reference to an undeclared variable or function.
	ErrUnknownIdentifier = errors.New("unknown identifier")
	// ErrArity is a call or command with the wrong number of arguments.
	ErrArity = errors.New("wrong number of arguments")
	// ErrType covers incompatible operands, incompatible call arguments and
	// conversions of Null.
	ErrType = errors.New("type error")
	// ErrParseValue is a text-to-number conversion of malformed input.
	ErrParseValue = errors.New("invalid number")
	// ErrScopeMismatch is a block closed out of order.
	ErrScopeMismatch = errors.New("scope mismatch")
	// ErrStorageMiss is a dangling text id.
	ErrStorageMiss = errors.New("text storage miss")
	// ErrInternal marks a broken VM invariant.
	ErrInternal = errors.New("internal error")
	// ErrDivisionByZero is an integer division by zero.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrRedeclared is a second declaration of a function or a repeated
	// parameter name.
	ErrRedeclared = errors.New("already declared")
	// ErrReadOnly is an assignment to a read-only host global.
	ErrReadOnly = errors.New("read-only variable")
	// ErrFrameOverflow means a frame has no free address left.
	ErrFrameOverflow = fmt.Errorf("%w: frame is full", ErrInternal)
)

// SyntaxError is a front-end error with a source position.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("line %d, column %d: parse error: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("line %d: parse error: %s", e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrParse }

// NewSyntaxError formats a SyntaxError.
func NewSyntaxError(line, column int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Column: column, Msg: fmt.Sprintf(format, args...)}
}
