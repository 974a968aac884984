package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseSettings_YAML(t *testing.T) {
	yaml := `
frame_size: 64
stdlib: false
prompt: "bambam> "
trace: true
log:
  level: debug
  format: json
`
	s, err := ParseSettings([]byte(yaml), "birl.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.FrameSize != 64 {
		t.Errorf("frame_size = %d, want 64", s.FrameSize)
	}
	if s.StdlibEnabled() {
		t.Error("expected stdlib to be disabled")
	}
	if s.Prompt != "bambam> " {
		t.Errorf("prompt = %q, want %q", s.Prompt, "bambam> ")
	}
	if !s.Trace {
		t.Error("expected trace to be enabled")
	}
	if s.Log.Level != "debug" || s.Log.Format != "json" {
		t.Errorf("log = %+v, want debug/json", s.Log)
	}
	if s.Path != "birl.yaml" {
		t.Errorf("path = %q, want birl.yaml", s.Path)
	}
}

func TestParseSettings_TOML(t *testing.T) {
	data := `
frame_size = 32
history_file = ".birl_history"

[log]
level = "info"
`
	s, err := ParseSettings([]byte(data), "birl.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.FrameSize != 32 {
		t.Errorf("frame_size = %d, want 32", s.FrameSize)
	}
	if s.HistoryFile != ".birl_history" {
		t.Errorf("history_file = %q", s.HistoryFile)
	}
	if s.Log.Level != "info" {
		t.Errorf("log.level = %q, want info", s.Log.Level)
	}
	if !s.StdlibEnabled() {
		t.Error("stdlib should default to enabled")
	}
}

func TestParseSettings_Defaults(t *testing.T) {
	s, err := ParseSettings([]byte(""), "birl.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.FrameSize != DefaultFrameSize {
		t.Errorf("frame_size = %d, want %d", s.FrameSize, DefaultFrameSize)
	}
	if s.Prompt == "" || s.ContinuationPrompt == "" {
		t.Error("prompts should have defaults")
	}
	if s.Log.Level != "warn" || s.Log.Format != "console" {
		t.Errorf("log defaults = %+v", s.Log)
	}
}

func TestParseSettings_Invalid(t *testing.T) {
	tests := []struct {
		name string
		path string
		data string
	}{
		{"negative frame", "birl.yaml", "frame_size: -1"},
		{"frame too small", "birl.yaml", "frame_size: 1"},
		{"bad level", "birl.yaml", "log:\n  level: loud"},
		{"bad format", "birl.toml", "[log]\nformat = \"xml\""},
		{"bad yaml", "birl.yaml", "frame_size: [1"},
		{"bad toml", "birl.toml", "frame_size = "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSettings([]byte(tt.data), tt.path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFindSettings_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(root, "birl.toml")
	if err := os.WriteFile(want, []byte("frame_size = 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindSettings(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("FindSettings = %q, want %q", got, want)
	}

	s, err := Resolve("", nested)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s.FrameSize != 16 {
		t.Errorf("frame_size = %d, want 16", s.FrameSize)
	}
}

func TestHasSourceExt(t *testing.T) {
	if !HasSourceExt("prog.birl") {
		t.Error("prog.birl should be a source file")
	}
	if HasSourceExt("prog.go") {
		t.Error("prog.go should not be a source file")
	}
	if got := TrimSourceExt("dir/prog.birl"); got != "dir/prog" {
		t.Errorf("TrimSourceExt = %q", got)
	}
}
