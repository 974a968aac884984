package parser

import (
	"github.com/birl-lang/birl/internal/pipeline"
)

// ParserProcessor is the second pipeline stage: tokens -> command.
type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	cmd, err := ParseLine(ctx.Tokens, ctx.Line)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Command = cmd
	return ctx
}
