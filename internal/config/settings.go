package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ConfigFileNames are searched, in order, in every directory from the
// working directory up to the filesystem root.
var ConfigFileNames = []string{"birl.yaml", "birl.yml", "birl.toml"}

// Settings represents the birl.yaml / birl.toml configuration.
type Settings struct {
	// FrameSize is the number of local slots per function frame.
	FrameSize int `yaml:"frame_size" toml:"frame_size"`

	// Stdlib enables the built-in globals and plugins.
	// A nil value means "not set" so that the default (enabled) applies.
	Stdlib *bool `yaml:"stdlib" toml:"stdlib"`

	// Prompt is shown by the interactive shell at scope depth 0.
	Prompt string `yaml:"prompt" toml:"prompt"`

	// ContinuationPrompt is shown while a function or conditional block is open.
	// It is repeated once per open scope.
	ContinuationPrompt string `yaml:"continuation_prompt" toml:"continuation_prompt"`

	// HistoryFile stores interactive history. Relative paths are resolved
	// against the user's home directory. Empty disables history.
	HistoryFile string `yaml:"history_file" toml:"history_file"`

	// Trace logs every executed instruction at trace level.
	Trace bool `yaml:"trace" toml:"trace"`

	Log LogSettings `yaml:"log" toml:"log"`

	// Path is the file the settings were loaded from (empty for defaults).
	Path string `yaml:"-" toml:"-"`
}

// LogSettings configures the process logger.
type LogSettings struct {
	// Level is one of trace, debug, info, warn, error, disabled.
	Level string `yaml:"level" toml:"level"`

	// Format is "console" (default) or "json".
	Format string `yaml:"format" toml:"format"`
}

// DefaultSettings returns the settings used when no config file is found.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.setDefaults()
	return s
}

// StdlibEnabled reports whether the standard library should be registered.
func (s *Settings) StdlibEnabled() bool {
	return s.Stdlib == nil || *s.Stdlib
}

// LoadSettings reads and parses a configuration file. The format is chosen
// by extension: .toml is TOML, anything else is YAML.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseSettings(data, path)
}

// ParseSettings parses configuration content from bytes.
// The path argument selects the format and is used in error messages.
func ParseSettings(data []byte, path string) (*Settings, error) {
	var s Settings
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := s.validate(path); err != nil {
		return nil, err
	}
	s.setDefaults()
	s.Path = path
	return &s, nil
}

// FindSettings searches for a config file starting from dir and walking up
// to parent directories. Returns an empty path and nil error if none exists.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Resolve loads explicitPath when given, otherwise the nearest config file
// above dir, otherwise the defaults.
func Resolve(explicitPath, dir string) (*Settings, error) {
	if explicitPath != "" {
		return LoadSettings(explicitPath)
	}
	path, err := FindSettings(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return DefaultSettings(), nil
	}
	return LoadSettings(path)
}

func (s *Settings) validate(path string) error {
	if s.FrameSize < 0 {
		return fmt.Errorf("%s: frame_size must not be negative", path)
	}
	if s.FrameSize != 0 && s.FrameSize < 2 {
		return fmt.Errorf("%s: frame_size must leave room for the return slot", path)
	}
	switch strings.ToLower(s.Log.Level) {
	case "", "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("%s: log.level %q is not a known level", path, s.Log.Level)
	}
	switch strings.ToLower(s.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("%s: log.format %q must be console or json", path, s.Log.Format)
	}
	return nil
}

// setDefaults fills in default values for omitted fields.
func (s *Settings) setDefaults() {
	if s.FrameSize == 0 {
		s.FrameSize = DefaultFrameSize
	}
	if s.Prompt == "" {
		s.Prompt = "birl> "
	}
	if s.ContinuationPrompt == "" {
		s.ContinuationPrompt = "..   "
	}
	if s.Log.Level == "" {
		s.Log.Level = "warn"
	}
	if s.Log.Format == "" {
		s.Log.Format = "console"
	}
}
