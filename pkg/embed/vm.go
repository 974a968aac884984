// Package birl embeds the BIRL interpreter in Go programs.
package birl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/birl-lang/birl/internal/backend"
	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/vm"
)

// VM wraps an interpreter session and provides a high-level embedding API.
// Code passed to Eval runs line by line, as in the interactive shell.
type VM struct {
	session    *backend.Session
	marshaller *Marshaller
}

// New creates a VM with the standard library registered. Output goes to
// os.Stdout and input commands read os.Stdin until redirected.
func New() *VM {
	session, err := backend.NewSession(backend.Options{
		Interactive: true,
		Stdlib:      true,
		Input:       os.Stdin,
		Output:      os.Stdout,
	})
	if err != nil {
		// The standard library always registers into a fresh session.
		panic(fmt.Sprintf("birl: %v", err))
	}
	return &VM{session: session, marshaller: NewMarshaller()}
}

// SetOutput redirects program output.
func (v *VM) SetOutput(w io.Writer) {
	v.session.VM().SetOutput(w)
}

// SetInput replaces the stream read by input commands.
func (v *VM) SetInput(r io.Reader) {
	v.session.VM().SetInput(r)
}

// Set assigns a global variable, declaring it on first use. Integers,
// floats, bools and strings are accepted; nil sets Null.
func (v *VM) Set(name string, val interface{}) error {
	value, err := v.marshaller.ToValue(v.session.VM(), val)
	if err != nil {
		return err
	}
	if _, err := v.session.Global(name); err == nil {
		return v.session.SetGlobal(name, value)
	}
	return v.session.RegisterGlobal(name, value, false)
}

// Get reads a global variable as int64, float64, string or nil.
func (v *VM) Get(name string) (interface{}, error) {
	value, err := v.session.Global(name)
	if err != nil {
		return nil, err
	}
	return v.natural(value)
}

// Bind makes a Go function callable with É HORA DO. See Marshaller.Plugin
// for the supported signatures.
func (v *VM) Bind(name string, fn interface{}) error {
	plugin, err := v.marshaller.Plugin(name, fn)
	if err != nil {
		return err
	}
	return v.session.RegisterPlugin(plugin)
}

// Eval runs BIRL code and returns the value of TREZE afterwards, that is the
// result of the last call. Code inside an unfinished block runs once a
// later Eval closes it.
func (v *VM) Eval(code string) (interface{}, error) {
	if v.session.Quit() {
		return nil, fmt.Errorf("program has quit")
	}
	if err := v.session.FeedSource(code); err != nil {
		return nil, err
	}
	return v.Get(config.ReturnValueName)
}

// LoadFile runs a source file with Eval and then calls SHOW when the file
// declared it.
func (v *VM) LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := v.Eval(strings.TrimSuffix(string(content), "\n")); err != nil {
		return err
	}
	return v.session.RunEntryPoint()
}

func (v *VM) natural(value vm.Value) (interface{}, error) {
	rv, err := v.marshaller.FromValue(v.session.VM(), value, nil)
	if err != nil || !rv.IsValid() {
		return nil, err
	}
	return rv.Interface(), nil
}
