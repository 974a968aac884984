package vm

// Comparison is the outcome of the last Compare executed in a frame.
type Comparison uint8

const (
	CmpNone Comparison = iota
	CmpEqual
	CmpNotEqual
	CmpLess
	CmpMore
)

func (c Comparison) String() string {
	switch c {
	case CmpEqual:
		return "Equal"
	case CmpNotEqual:
		return "NotEqual"
	case CmpLess:
		return "LessThan"
	case CmpMore:
		return "MoreThan"
	}
	return "None"
}

// PluginFrameID marks a frame that only carries plugin arguments.
const PluginFrameID = -1

// Frame is one activation of a function. Slot 0 holds the value returned
// by the last call made from this frame.
type Frame struct {
	ID             int
	Stack          []Value
	PC             int
	LastComparison Comparison
	Texts          *TextStore
	// Ready is false while the caller is still writing arguments.
	Ready bool
	// SkipLevel > 0 means instructions are being skipped by a failed
	// ExecuteIf; only ExecuteIf and EndExecuteIf change it.
	SkipLevel int
}

func newFrame(id, size int) *Frame {
	return &Frame{
		ID:    id,
		Stack: make([]Value, size),
		Texts: NewTextStore(),
	}
}

// store writes v, a value from the VM store, into slot addr. Text is copied
// into the frame store; a slot that already holds Text keeps its id.
func (f *Frame) store(addr int, v Value, vmTexts *TextStore) error {
	if v.Type != ValText {
		f.Stack[addr] = v
		return nil
	}
	s, err := vmTexts.Get(v.TextID())
	if err != nil {
		return err
	}
	if old := f.Stack[addr]; old.Type == ValText {
		if err := f.Texts.Set(old.TextID(), s); err == nil {
			return nil
		}
	}
	f.Stack[addr] = TextVal(f.Texts.Add(s))
	return nil
}

// load reads slot addr, copying Text into the VM store.
func (f *Frame) load(addr int, vmTexts *TextStore) (Value, error) {
	v := f.Stack[addr]
	if v.Type != ValText {
		return v, nil
	}
	s, err := f.Texts.Get(v.TextID())
	if err != nil {
		return NullVal(), err
	}
	return TextVal(vmTexts.Add(s)), nil
}
