package config

import "strings"

const SourceFileExt = ".birl"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".birl", ".bambam"}

// Version is reported by --version and exposed to programs as BIRL_VERSAO.
var Version = "0.4.0"

// DefaultFrameSize is the number of local slots in every function frame.
// Slot 0 holds the return value.
const DefaultFrameSize = 256

// Reserved names
const (
	// ReturnValueName is the source-level name bound to slot 0 of every frame.
	ReturnValueName = "TREZE"
	// EntryPointName is the function run after the global code, if declared.
	EntryPointName = "SHOW"
)

// Reserved code segment ids
const (
	GlobalCodeID = 0
	EntryCodeID  = 1
)

// Type keywords used in function headers
const (
	IntegerKindName = "MONSTRO"
	NumberKindName  = "TRAPEZIO"
	TextKindName    = "FRANGO"
)

// NullText is how Null is rendered by print and text conversion.
const NullText = "<Null>"

// HasSourceExt reports whether path ends with a recognized source extension
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// TrimSourceExt removes a recognized source extension from path
func TrimSourceExt(path string) string {
	for _, ext := range SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext)
		}
	}
	return path
}
