// Package logging configures the zerolog logger shared by the CLI, the
// driver and the VM.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Options selects level and output format.
type Options struct {
	Level  string // trace, debug, info, warn, error, disabled
	Format string // console or json
	Out    io.Writer
}

// ParseLevel maps a level name to a zerolog level. Unknown names map to warn.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(name) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// New builds a logger. Every logger carries a run id so that events from one
// interpreter run can be told apart when several runs share a log sink.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if !strings.EqualFold(opts.Format, "json") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}
	level := ParseLevel(opts.Level)
	if level < zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(level)
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("run", uuid.NewString()).
		Logger()
}

// Nop returns a disabled logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
