// Package backend runs parsed programs. The pipeline hands a parsed
// context to a Backend, which owns the interpreter session.
package backend

import (
	"github.com/funvibe/quill/internal/evaluator"
	"github.com/funvibe/quill/internal/pipeline"
)

// Backend is the interface for execution backends
type Backend interface {
	// Run executes the program from pipeline context and returns the value
	// of the last statement that produced one.
	Run(ctx *pipeline.PipelineContext) (evaluator.Object, error)

	// Name returns the backend name for display
	Name() string
}
