package evaluator_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/quill/internal/backend"
	"github.com/funvibe/quill/internal/diagnostics"
	"github.com/funvibe/quill/internal/evaluator"
	"github.com/funvibe/quill/internal/testutil"
)

const countdown = `
func r(n) {
    if n == 0 { return 0; }
    return 1 + r(n - 1);
}
`

func TestRecursionLimit(t *testing.T) {
	out := run(t, countdown+"print(r(40));", testutil.WithRecursionLimit(50))
	assert.Equal(t, "40\n", out)

	_, err := runError(t, countdown+"r(100);", testutil.WithRecursionLimit(50))
	assert.Equal(t, diagnostics.StackOverflow, err.Kind)
	assert.Contains(t, err.Message, "maximum recursion depth exceeded in 'r' (limit 50)")
}

func TestRecursionLimitIsPerFunction(t *testing.T) {
	// Mutual recursion splits the depth between two functions.
	src := `
func even(n) { if n == 0 { return true; } return odd(n - 1); }
func odd(n) { if n == 0 { return false; } return even(n - 1); }
print(even(80));
`
	assert.Equal(t, "true\n", run(t, src, testutil.WithRecursionLimit(50)))
}

func TestIgnoreOverflow(t *testing.T) {
	logger, rec := testutil.NewRecordingLogger()
	out := run(t, countdown+"print(r(100));",
		testutil.WithRecursionLimit(50), testutil.WithIgnoreOverflow(), testutil.WithLogger(logger))
	assert.Equal(t, "100\n", out)
	assert.Equal(t, []string{"recursion limit exceeded"}, rec.Messages(slog.LevelWarn))
}

func TestIgnoreOverflowStopsAtHardLimit(t *testing.T) {
	src := `func forever(n) { return forever(n + 1); } forever(0);`
	_, err := runError(t, src, testutil.WithIgnoreOverflow())
	assert.Equal(t, diagnostics.StackOverflow, err.Kind)
}

func TestCallDepthUnwindsAfterError(t *testing.T) {
	var out bytes.Buffer
	eval := evaluator.New()
	eval.Out = &out
	eval.RecursionLimit = 20
	b := backend.NewTreeWalk(eval)

	_, err := backend.Execute(b, countdown+"r(30);", "")
	require.Error(t, err)

	fn, ok := b.Env.Get("r")
	require.True(t, ok)
	assert.Equal(t, 0, eval.CallDepth(fn.(*evaluator.Function)))

	// The session stays usable.
	_, err = backend.Execute(b, "print(r(10));", "")
	require.NoError(t, err)
	assert.Equal(t, "10\n", out.String())
}

func TestCallDepthUnwindsAfterThrow(t *testing.T) {
	eval := evaluator.New()
	eval.Out = &bytes.Buffer{}
	b := backend.NewTreeWalk(eval)

	_, err := backend.Execute(b, `func f(n) { if n == 0 { throw "bottom"; } f(n - 1); } f(5);`, "")
	require.Error(t, err)

	fn, _ := b.Env.Get("f")
	assert.Equal(t, 0, eval.CallDepth(fn.(*evaluator.Function)))
}
