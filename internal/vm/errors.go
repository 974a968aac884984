package vm

import "fmt"

// CompileError is a failure to compile one source line.
type CompileError struct {
	Line int
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// RuntimeError is a failure while executing an instruction.
type RuntimeError struct {
	Line     int
	Function string
	Err      error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error in %s at line %d: %v", e.Function, e.Line, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }
