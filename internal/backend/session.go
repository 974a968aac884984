// Package backend drives source lines through the front end, the compiler
// and the VM.
package backend

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/birl-lang/birl/internal/diagnostics"
	"github.com/birl-lang/birl/internal/lexer"
	"github.com/birl-lang/birl/internal/parser"
	"github.com/birl-lang/birl/internal/pipeline"
	"github.com/birl-lang/birl/internal/stdlib"
	"github.com/birl-lang/birl/internal/vm"
)

// Options configures a Session.
type Options struct {
	// FrameSize is the number of slots per frame (0 selects the default).
	FrameSize int
	// Interactive runs code as soon as every block is closed.
	Interactive bool
	// Stdlib registers the standard library.
	Stdlib bool
	// FilePath is used in logs only.
	FilePath string

	Input  io.Reader
	Output io.Writer
	Logger *zerolog.Logger
}

// Session owns one program, its compiler and the VM running it.
type Session struct {
	opts     Options
	program  *vm.Program
	compiler *vm.Compiler
	machine  *vm.VM
	frontEnd *pipeline.Pipeline
	logger   zerolog.Logger

	line     int
	depth    int // open blocks, counted from the compiler's scope hints
	quit     bool
	entryRun bool
}

func NewSession(opts Options) (*Session, error) {
	program := vm.NewProgram()
	s := &Session{
		opts:     opts,
		program:  program,
		compiler: vm.NewCompiler(program, opts.FrameSize),
		machine:  vm.New(program, opts.FrameSize),
		frontEnd: pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}),
		logger:   zerolog.Nop(),
	}
	if opts.Logger != nil {
		s.logger = *opts.Logger
	}
	s.compiler.SetLogger(s.logger)
	s.machine.SetLogger(s.logger)
	if opts.Input != nil {
		s.machine.SetInput(opts.Input)
	}
	if opts.Output != nil {
		s.machine.SetOutput(opts.Output)
	}
	if opts.Stdlib {
		if err := stdlib.Register(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Session) VM() *vm.VM { return s.machine }

func (s *Session) Program() *vm.Program { return s.program }

// Depth is the number of blocks still open.
func (s *Session) Depth() int { return s.depth }

// Quit reports whether the program executed a quit command.
func (s *Session) Quit() bool { return s.quit }

// Line is the number of lines fed so far.
func (s *Session) Line() int { return s.line }

// RegisterGlobal declares a host variable. Text values must come from
// VM().NewText. Globals are registered before any source is fed.
func (s *Session) RegisterGlobal(name string, value vm.Value, readOnly bool) error {
	addr, err := s.compiler.DeclareGlobal(name, readOnly)
	if err != nil {
		return err
	}
	return s.machine.SetGlobal(addr, value)
}

// SetGlobal assigns a global variable from the host, read-only ones
// included. Text values must come from VM().NewText.
func (s *Session) SetGlobal(name string, value vm.Value) error {
	sym, ok := s.compiler.Global(name)
	if !ok {
		return fmt.Errorf("%w: %s", diagnostics.ErrUnknownIdentifier, name)
	}
	return s.machine.SetGlobal(sym.Address, value)
}

// Global reads a global variable. Text is returned as a VM store value.
func (s *Session) Global(name string) (vm.Value, error) {
	sym, ok := s.compiler.Global(name)
	if !ok {
		return vm.NullVal(), fmt.Errorf("%w: %s", diagnostics.ErrUnknownIdentifier, name)
	}
	return s.machine.Global(sym.Address)
}

// RegisterPlugin makes a host function callable from source code.
func (s *Session) RegisterPlugin(p vm.Plugin) error {
	if p.Fn == nil {
		return fmt.Errorf("plugin %s has no function", p.Name)
	}
	if _, exists := s.compiler.Function(p.Name); exists {
		return fmt.Errorf("plugin %s is already registered", p.Name)
	}
	return s.compiler.RegisterPlugin(p.Name, p.Params, s.machine.RegisterPlugin(p))
}

// Feed compiles one source line. In interactive mode the new code runs as
// soon as no block is open; a runtime error is reported and the VM is
// recovered so that the next line can run.
func (s *Session) Feed(source string) error {
	s.line++
	ctx := pipeline.NewPipelineContext(source, s.line)
	ctx.FilePath = s.opts.FilePath
	ctx = s.frontEnd.Run(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if ctx.Command == nil {
		return nil
	}

	hint, err := s.compiler.Compile(ctx.Command)
	if err != nil {
		return err
	}
	switch hint {
	case vm.HintScopeStart:
		s.depth++
	case vm.HintScopeEnd:
		s.depth--
	}
	s.logger.Debug().Int("line", s.line).Str("command", ctx.Command.Kind.String()).Int("depth", s.Depth()).Msg("compiled")

	if !s.opts.Interactive || s.Depth() > 0 {
		return nil
	}
	return s.run()
}

// FeedSource feeds every line of src and stops at the first error.
func (s *Session) FeedSource(src string) error {
	for _, line := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		if err := s.Feed(line); err != nil {
			return err
		}
		if s.quit {
			return nil
		}
	}
	return nil
}

// RunProgram finishes a batch program: it checks that every block is closed,
// appends the entry point call when one was declared and runs the code.
func (s *Session) RunProgram() (vm.ExecutionStatus, error) {
	if depth := s.Depth(); depth > 0 {
		return vm.StatusHalt, &vm.CompileError{
			Line: s.line,
			Err:  fmt.Errorf("%w: %d block(s) left open at end of input", diagnostics.ErrScopeMismatch, depth),
		}
	}
	if s.compiler.HasEntryPoint() && !s.entryRun {
		s.compiler.AppendEntryCall(s.line)
		s.entryRun = true
	}
	s.logger.Debug().Str("file", s.opts.FilePath).Int("segments", len(s.program.Segments)).Msg("running program")
	status, err := s.machine.Run()
	if status == vm.StatusQuit {
		s.quit = true
	}
	return status, err
}

// RunEntryPoint calls SHOW in interactive mode, once, after the global code
// that declared it has run. It does nothing while a block is open, when no
// entry point is declared or when the program has quit.
func (s *Session) RunEntryPoint() error {
	if !s.opts.Interactive || s.entryRun || s.quit || s.depth > 0 || !s.compiler.HasEntryPoint() {
		return nil
	}
	s.entryRun = true
	s.compiler.AppendEntryCall(s.line)
	s.logger.Debug().Int("line", s.line).Msg("calling entry point")
	return s.run()
}

// Recover resets the VM after a runtime error. Compiled code and global
// values are kept.
func (s *Session) Recover() {
	s.machine.Recover()
}

// Disassemble lists the compiled program.
func (s *Session) Disassemble() string {
	return vm.Disassemble(s.program)
}

func (s *Session) run() error {
	status, err := s.machine.Run()
	if err != nil {
		s.machine.Recover()
		return err
	}
	if status == vm.StatusQuit {
		s.quit = true
	}
	return nil
}
