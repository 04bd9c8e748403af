package backend

import (
	"errors"

	"github.com/funvibe/quill/internal/evaluator"
	"github.com/funvibe/quill/internal/modules"
	"github.com/funvibe/quill/internal/pipeline"
)

// TreeWalkBackend runs programs on the tree-walking evaluator. The global
// environment persists across runs, so a REPL session can feed it one
// input at a time.
type TreeWalkBackend struct {
	Evaluator *evaluator.Evaluator
	Env       *evaluator.Environment
}

// NewTreeWalk creates a backend around eval with a fresh global
// environment. A nil eval gets default settings.
func NewTreeWalk(eval *evaluator.Evaluator) *TreeWalkBackend {
	if eval == nil {
		eval = evaluator.New()
	}
	if eval.Loader == nil {
		eval.Loader = modules.NewLoader()
	}
	return &TreeWalkBackend{
		Evaluator: eval,
		Env:       evaluator.NewRootEnvironment(),
	}
}

// Run executes the program using tree-walk interpretation
func (b *TreeWalkBackend) Run(ctx *pipeline.PipelineContext) (evaluator.Object, error) {
	if ctx.AstRoot == nil {
		return nil, errors.New("no AST to execute")
	}
	if len(ctx.Errors) > 0 {
		return nil, ctx.Errors[0]
	}

	results, err := b.Evaluator.Run(ctx.AstRoot, b.Env)
	if err != nil {
		return nil, err
	}
	return last(results), nil
}

// Name returns the backend name
func (b *TreeWalkBackend) Name() string {
	return "tree-walk"
}

func last(results []evaluator.Object) evaluator.Object {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i] != nil {
			return results[i]
		}
	}
	return nil
}
