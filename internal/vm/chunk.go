package vm

import "github.com/birl-lang/birl/internal/config"

// Instruction is one decoded VM instruction.
type Instruction struct {
	Op      Opcode
	Operand int      // address, code id, plugin index, Requirement or TypeKind
	Const   Constant // PushValA / PushValB only
	Line    int      // source line, for errors and disassembly
}

// Segment is the code of one function.
type Segment struct {
	Name string
	Code []Instruction
}

// Program holds every code segment, indexed by code id. Segment 0 is the
// implicit global function and segment 1 is reserved for the entry point.
// Segments only ever grow.
type Program struct {
	Segments []*Segment
}

func NewProgram() *Program {
	return &Program{
		Segments: []*Segment{
			{Name: "<global>"},
			{Name: config.EntryPointName},
		},
	}
}

// NewSegment allocates a code id for a function.
func (p *Program) NewSegment(name string) int {
	p.Segments = append(p.Segments, &Segment{Name: name})
	return len(p.Segments) - 1
}

// Append adds instructions to the end of a segment.
func (p *Program) Append(codeID int, code []Instruction) {
	seg := p.Segments[codeID]
	seg.Code = append(seg.Code, code...)
}

// Segment returns the segment for a code id, or nil.
func (p *Program) Segment(codeID int) *Segment {
	if codeID < 0 || codeID >= len(p.Segments) {
		return nil
	}
	return p.Segments[codeID]
}
