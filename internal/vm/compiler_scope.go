package vm

import (
	"fmt"

	"github.com/birl-lang/birl/internal/config"
	"github.com/birl-lang/birl/internal/diagnostics"
)

// ScopeTag is the kind of block a scope belongs to.
type ScopeTag int

const (
	ScopeFunction ScopeTag = iota
	ScopeRegular
	ScopeForLoop
	ScopeWhileLoop
	ScopeExecuteIf
)

func (t ScopeTag) String() string {
	switch t {
	case ScopeFunction:
		return "Function"
	case ScopeRegular:
		return "Regular"
	case ScopeForLoop:
		return "ForLoop"
	case ScopeWhileLoop:
		return "WhileLoop"
	case ScopeExecuteIf:
		return "ExecuteIf"
	}
	return fmt.Sprintf("ScopeTag(%d)", int(t))
}

// Symbol is a resolved variable.
type Symbol struct {
	Address  int
	Global   bool
	ReadOnly bool
}

// Scope holds the variables declared in one block.
type Scope struct {
	Tag       ScopeTag
	Global    bool // variables live in the global frame
	Vars      map[string]Symbol
	SavedNext int // nextAddr when the scope opened
}

func newScope(tag ScopeTag, global bool, savedNext int) *Scope {
	return &Scope{Tag: tag, Global: global, Vars: make(map[string]Symbol), SavedNext: savedNext}
}

func (c *Compiler) currentScope() *Scope {
	return c.scopes[len(c.scopes)-1]
}

func (c *Compiler) inGlobalFunction() bool {
	return c.currentCode == config.GlobalCodeID
}

// beginScope opens a block inside the current function.
func (c *Compiler) beginScope(tag ScopeTag) {
	c.scopes = append(c.scopes, newScope(tag, c.inGlobalFunction(), c.nextAddr))
}

// endScope closes the innermost scope and frees its addresses.
func (c *Compiler) endScope() {
	s := c.currentScope()
	c.scopes = c.scopes[:len(c.scopes)-1]
	c.nextAddr = s.SavedNext
}

// resolve looks a name up from the innermost scope outwards. Inside a
// function the walk goes from its scopes straight to the global scope.
func (c *Compiler) resolve(name string) (Symbol, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if sym, ok := c.scopes[i].Vars[name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

func (c *Compiler) allocAddress() (int, error) {
	if c.nextAddr >= c.frameSize {
		return 0, fmt.Errorf("%w: more than %d variables", diagnostics.ErrFrameOverflow, c.frameSize-1)
	}
	addr := c.nextAddr
	c.nextAddr++
	return addr, nil
}

// declare adds a variable to the innermost scope. Declaring a name the
// scope already holds rebinds it: the later declaration wins and keeps the
// old slot, unless that slot is read-only.
func (c *Compiler) declare(name string, readOnly bool) (Symbol, error) {
	scope := c.currentScope()
	if prev, exists := scope.Vars[name]; exists && !prev.ReadOnly {
		prev.ReadOnly = readOnly
		scope.Vars[name] = prev
		return prev, nil
	}
	addr, err := c.allocAddress()
	if err != nil {
		return Symbol{}, err
	}
	sym := Symbol{Address: addr, Global: scope.Global, ReadOnly: readOnly}
	scope.Vars[name] = sym
	return sym, nil
}

// allocTemp reserves a hidden slot. Temporaries are released by restoring
// nextAddr once the expression is compiled.
func (c *Compiler) allocTemp() (Symbol, error) {
	addr, err := c.allocAddress()
	if err != nil {
		return Symbol{}, err
	}
	return Symbol{Address: addr, Global: c.inGlobalFunction()}, nil
}
