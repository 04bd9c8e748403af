package backend

import (
	"github.com/funvibe/quill/internal/evaluator"
	"github.com/funvibe/quill/internal/lexer"
	"github.com/funvibe/quill/internal/parser"
	"github.com/funvibe/quill/internal/pipeline"
)

// ExecutionProcessor implements pipeline.Processor to run a Backend
type ExecutionProcessor struct {
	Backend Backend

	// Result is the value of the last statement of the most recent run.
	Result evaluator.Object
}

// NewExecutionProcessor creates a new pipeline step for the given backend
func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	p.Result = nil
	// If previous steps failed, don't run execution
	if ctx.AstRoot == nil || len(ctx.Errors) > 0 {
		return ctx
	}

	result, err := p.Backend.Run(ctx)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	p.Result = result
	return ctx
}

// Execute runs source through the full pipeline on b. file names the
// source for diagnostics and import resolution and may be empty.
func Execute(b Backend, source, file string) (evaluator.Object, error) {
	exec := NewExecutionProcessor(b)
	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = file
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}, exec).Run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return exec.Result, nil
}
