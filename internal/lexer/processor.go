package lexer

import (
	"github.com/funvibe/quill/internal/pipeline"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	tokens, err := Tokenize(ctx.SourceCode)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Tokens = tokens
	return ctx
}
