package testutil

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/funvibe/quill/internal/backend"
	"github.com/funvibe/quill/internal/evaluator"
)

type runConfig struct {
	file           string
	recursionLimit int
	ignoreOverflow bool
	logger         *slog.Logger
}

// Option adjusts how Run executes a program.
type Option func(*runConfig)

// WithFile names the program, so imports resolve next to path.
func WithFile(path string) Option {
	return func(c *runConfig) { c.file = path }
}

func WithRecursionLimit(n int) Option {
	return func(c *runConfig) { c.recursionLimit = n }
}

func WithIgnoreOverflow() Option {
	return func(c *runConfig) { c.ignoreOverflow = true }
}

// WithLogger replaces the t.Log backed logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

// Run executes src in a fresh session and returns everything it printed.
// The output written before a runtime error is returned with the error.
func Run(t testing.TB, src string, opts ...Option) (string, error) {
	t.Helper()
	cfg := &runConfig{logger: NewTestLogger(t)}
	for _, opt := range opts {
		opt(cfg)
	}

	var out bytes.Buffer
	eval := evaluator.New()
	eval.Out = &out
	eval.Logger = cfg.logger
	if cfg.recursionLimit > 0 {
		eval.RecursionLimit = cfg.recursionLimit
	}
	eval.IgnoreOverflow = cfg.ignoreOverflow

	_, err := backend.Execute(backend.NewTreeWalk(eval), src, cfg.file)
	return out.String(), err
}
