package parser

import (
	"github.com/funvibe/quill/internal/diagnostics"
	"github.com/funvibe/quill/internal/pipeline"
)

type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Tokens == nil {
		// Lexer did not run; nothing to parse.
		ctx.AddError(diagnostics.At(diagnostics.Syntax, 0, 0, "parser: token stream is nil"))
		return ctx
	}

	program, err := New(ctx.Tokens).ParseProgram()
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	program.File = ctx.FilePath
	ctx.AstRoot = program
	return ctx
}
