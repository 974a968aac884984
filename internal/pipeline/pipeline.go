package pipeline

import (
	"github.com/birl-lang/birl/internal/ast"
	"github.com/birl-lang/birl/internal/token"
)

// Processor is a single stage of the front end.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// PipelineContext carries one source line through the front end.
type PipelineContext struct {
	SourceCode string
	FilePath   string
	Line       int

	Tokens  []token.Token
	Command *ast.Command

	Errors []error
}

func NewPipelineContext(source string, line int) *PipelineContext {
	return &PipelineContext{SourceCode: source, Line: line}
}

func (ctx *PipelineContext) AddError(err error) {
	ctx.Errors = append(ctx.Errors, err)
}

// Err returns the first error collected by any stage.
func (ctx *PipelineContext) Err() error {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. A stage that fails stops the remaining ones,
// since every later stage needs the output of the earlier.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		if len(ctx.Errors) > 0 {
			break
		}
	}
	return ctx
}
