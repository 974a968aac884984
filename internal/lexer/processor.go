package lexer

import "github.com/birl-lang/birl/internal/pipeline"

// LexerProcessor is the first pipeline stage: source line -> tokens.
type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	tokens, err := Tokenize(ctx.SourceCode, ctx.Line)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Tokens = tokens
	return ctx
}
