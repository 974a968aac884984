// Package cli implements the birl command.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/birl-lang/birl/internal/backend"
	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/diagnostics"
	"github.com/birl-lang/birl/internal/logging"
	"github.com/birl-lang/birl/internal/prettyprinter"
	"github.com/birl-lang/birl/internal/vm"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Main runs the command with the process arguments and streams.
func Main() int {
	return Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run executes the birl command and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(stderr, "Internal error: %v\n", r)
			fmt.Fprintln(stderr, "This is a bug. Please report it.")
			code = ExitError
		}
	}()

	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "birl: %v\n\n%s", err, usage)
		return ExitUsage
	}
	if opts.help {
		fmt.Fprint(stdout, usage)
		return ExitOK
	}
	if opts.version {
		fmt.Fprintln(stdout, "birl "+config.Version)
		return ExitOK
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	settings, err := config.Resolve(opts.configPath, wd)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return ExitError
	}
	applyFlags(settings, opts)

	logger := logging.New(logging.Options{
		Level:  settings.Log.Level,
		Format: settings.Log.Format,
		Out:    stderr,
	})
	logger.Debug().Str("config", settings.Path).Int("frame_size", settings.FrameSize).Bool("stdlib", settings.StdlibEnabled()).Msg("settings resolved")

	r := &runner{
		opts:     opts,
		settings: settings,
		logger:   logger,
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}

	stdinTTY := isTerminal(stdin)
	switch {
	case opts.format:
		sources := opts.sources
		if len(sources) == 0 {
			sources = []source{{name: "<stdin>", path: "-"}}
		}
		return r.formatSources(sources)
	case opts.interactive:
		return r.interactive(stdinTTY)
	case opts.hasSources():
		return r.batch(opts.sources)
	case stdinTTY:
		return r.interactive(true)
	default:
		return r.batch([]source{{name: "<stdin>", path: "-"}})
	}
}

// applyFlags lets command line flags override the settings file.
func applyFlags(s *config.Settings, opts *options) {
	if opts.noStdlib {
		disabled := false
		s.Stdlib = &disabled
	}
	if opts.trace {
		s.Trace = true
	}
	switch {
	case s.Trace:
		s.Log.Level = "trace"
	case opts.verbose:
		s.Log.Level = "debug"
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type runner struct {
	opts     *options
	settings *config.Settings
	logger   zerolog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer

	files []fileSpan
}

// fileSpan maps session line numbers back to the source they came from.
type fileSpan struct {
	name  string
	first int // session line of the first line of the file
	last  int
}

func (r *runner) newSession(interactive bool, input io.Reader, filePath string) (*backend.Session, error) {
	logger := r.logger
	return backend.NewSession(backend.Options{
		FrameSize:   r.settings.FrameSize,
		Interactive: interactive,
		Stdlib:      r.settings.StdlibEnabled(),
		FilePath:    filePath,
		Input:       input,
		Output:      r.stdout,
		Logger:      &logger,
	})
}

func (r *runner) readSource(src source) (string, error) {
	switch src.path {
	case "":
		return src.text, nil
	case "-":
		data, err := io.ReadAll(r.stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	if !config.HasSourceExt(src.path) {
		r.logger.Warn().Str("file", src.path).Msg("unrecognized source file extension")
	}
	data, err := os.ReadFile(src.path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// feedAll compiles every source into s, remembering which lines came from
// which source.
func (r *runner) feedAll(s *backend.Session, sources []source) error {
	for _, src := range sources {
		text, err := r.readSource(src)
		if err != nil {
			return err
		}
		first := s.Line() + 1
		err = s.FeedSource(text)
		r.files = append(r.files, fileSpan{name: src.name, first: first, last: s.Line()})
		if err != nil || s.Quit() {
			return err
		}
	}
	return nil
}

// batch compiles every source as one program and runs it.
func (r *runner) batch(sources []source) int {
	input := r.stdin
	for _, src := range sources {
		if src.path == "-" {
			// The program consumes stdin; input commands see end of input.
			input = strings.NewReader("")
		}
	}
	s, err := r.newSession(false, input, sources[0].path)
	if err != nil {
		fmt.Fprintf(r.stderr, "Error: %s\n", err)
		return ExitError
	}
	if err := r.feedAll(s, sources); err != nil {
		r.report(err)
		return ExitError
	}
	if r.opts.dump {
		fmt.Fprint(r.stdout, s.Disassemble())
	}
	if _, err := s.RunProgram(); err != nil {
		r.report(err)
		return ExitError
	}
	return ExitOK
}

// interactive runs the given sources line by line, calls SHOW when they
// declared it and then reads more lines from stdin, with line editing when
// stdin is a terminal.
func (r *runner) interactive(tty bool) int {
	var input io.Reader = os.Stdin
	var lines *bufio.Reader
	if !tty {
		// Source lines and input commands read the same stream.
		lines = bufio.NewReader(r.stdin)
		input = lines
	}
	s, err := r.newSession(true, input, "")
	if err != nil {
		fmt.Fprintf(r.stderr, "Error: %s\n", err)
		return ExitError
	}
	if err := r.feedAll(s, r.opts.sources); err != nil {
		r.report(err)
		return ExitError
	}
	if err := s.RunEntryPoint(); err != nil {
		r.report(err)
		return ExitError
	}
	if s.Quit() {
		return ExitOK
	}
	var code int
	if tty {
		code = r.repl(s)
	} else {
		code = r.readLines(s, lines)
	}
	// SHOW declared at the prompt runs once input ends.
	if err := s.RunEntryPoint(); err != nil {
		r.report(err)
		return ExitError
	}
	return code
}

// formatSources prints every source in canonical form.
func (r *runner) formatSources(sources []source) int {
	for _, src := range sources {
		text, err := r.readSource(src)
		if err != nil {
			fmt.Fprintf(r.stderr, "Error: %s\n", err)
			return ExitError
		}
		formatted, err := prettyprinter.Format(text)
		if err != nil {
			line, msg := describe(err)
			fmt.Fprintf(r.stderr, "%s:%d: %s\n", src.name, line, msg)
			return ExitError
		}
		fmt.Fprint(r.stdout, formatted)
	}
	return ExitOK
}

// report prints err with the source name and the line inside that source.
func (r *runner) report(err error) {
	line, msg := describe(err)
	if line > 0 {
		name, local := r.locate(line)
		if name != "" {
			fmt.Fprintf(r.stderr, "%s:%d: %s\n", name, local, msg)
			return
		}
	}
	fmt.Fprintf(r.stderr, "Error: %s\n", msg)
}

func (r *runner) locate(line int) (string, int) {
	for _, f := range r.files {
		if line >= f.first && line <= f.last {
			return f.name, line - f.first + 1
		}
	}
	return "", line
}

// describe splits err into its session line and a message without the line.
func describe(err error) (int, string) {
	var syntaxErr *diagnostics.SyntaxError
	var compileErr *vm.CompileError
	var runtimeErr *vm.RuntimeError

	switch {
	case errors.As(err, &syntaxErr):
		if syntaxErr.Column > 0 {
			return syntaxErr.Line, fmt.Sprintf("column %d: %v: %s", syntaxErr.Column, diagnostics.ErrParse, syntaxErr.Msg)
		}
		return syntaxErr.Line, fmt.Sprintf("%v: %s", diagnostics.ErrParse, syntaxErr.Msg)
	case errors.As(err, &compileErr):
		return compileErr.Line, compileErr.Err.Error()
	case errors.As(err, &runtimeErr):
		return runtimeErr.Line, fmt.Sprintf("runtime error in %s: %v", runtimeErr.Function, runtimeErr.Err)
	}
	return 0, err.Error()
}
