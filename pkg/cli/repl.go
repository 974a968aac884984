package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/birl-lang/birl/internal/backend"
	"github.com/birl-lang/birl/internal/config"
)

const banner = "BIRL %s - digite NUM VAI DÁ NÃO ou Ctrl-D pra sair"

// prompt is the prompt for the next line: the main prompt at depth 0, the
// continuation prompt once per open block otherwise.
func prompt(s *config.Settings, depth int) string {
	if depth == 0 {
		return s.Prompt
	}
	return strings.Repeat(s.ContinuationPrompt, depth)
}

// historyPath resolves the configured history file. Relative paths live in
// the home directory.
func historyPath(file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, file)
}

// repl reads lines with line editing and history until end of input or a
// quit command.
func (r *runner) repl(s *backend.Session) int {
	fmt.Fprintf(r.stdout, banner+"\n", config.Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath(r.settings.HistoryFile)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			} else {
				r.logger.Warn().Err(err).Str("file", histPath).Msg("cannot save history")
			}
		}()
	}

	for !s.Quit() {
		line, err := ln.Prompt(prompt(r.settings, s.Depth()))
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.stdout)
			break
		}
		if err != nil {
			fmt.Fprintf(r.stderr, "Error: %s\n", err)
			return ExitError
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if err := s.Feed(line); err != nil {
			r.report(err)
		}
	}
	return ExitOK
}

// readLines feeds in line by line without prompts. The exit code is 1 when
// any line failed.
func (r *runner) readLines(s *backend.Session, in *bufio.Reader) int {
	code := ExitOK
	for !s.Quit() {
		line, err := in.ReadString('\n')
		if line != "" || err == nil {
			if ferr := s.Feed(strings.TrimRight(line, "\r\n")); ferr != nil {
				r.report(ferr)
				code = ExitError
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintf(r.stderr, "Error: %s\n", err)
			return ExitError
		}
	}
	return code
}
