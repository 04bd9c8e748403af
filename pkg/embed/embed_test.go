package quill_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/quill/internal/config"
	"github.com/funvibe/quill/internal/diagnostics"
	quill "github.com/funvibe/quill/pkg/embed"
)

// User is a Go struct handed to scripts as a dictionary.
type User struct {
	Name  string
	Score int
	tag   string
}

func TestEmbedAPI(t *testing.T) {
	var out bytes.Buffer
	in := quill.New(quill.WithOutput(&out))

	require.NoError(t, in.RegisterFunc("double", func(x int) int { return x * 2 }))
	require.NoError(t, in.Set("player", User{Name: "Alice", Score: 10, tag: "hidden"}))

	res, err := in.Eval(`
doubled = double(21);
player["Score"] += 5;
print(player);
[doubled, player["Name"], player["Score"], None, 1.5, true];
`)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{42, "Alice", 15, nil, 1.5, true}, res)
	assert.Equal(t, "{\"Name\": \"Alice\", \"Score\": 15}\n", out.String())

	doubled, err := in.Get("doubled")
	require.NoError(t, err)
	assert.Equal(t, 42, doubled)
	assert.Contains(t, in.Globals(), "player")
}

func TestEvalWithoutValue(t *testing.T) {
	var out bytes.Buffer
	in := quill.New(quill.WithOutput(&out))

	res, err := in.Eval(`print("hi");`)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Equal(t, "hi\n", out.String())

	var other bytes.Buffer
	in.SetOutput(&other)
	_, err = in.Eval(`print("there");`)
	require.NoError(t, err)
	assert.Equal(t, "there\n", other.String())
	assert.Equal(t, "hi\n", out.String())
}

func TestCallScriptFunction(t *testing.T) {
	in := quill.New()
	_, err := in.Eval(`func add(a, b) { return a + b; }`)
	require.NoError(t, err)

	res, err := in.Call("add", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, res)

	res, err = in.Call("add", []int{1}, []int{2})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2}, res)

	res, err = in.Call("len", "four")
	require.NoError(t, err)
	assert.Equal(t, 4, res)

	_, err = in.Call("missing")
	assert.EqualError(t, err, "function 'missing' not found")

	_, err = in.Call("add", 1)
	require.Error(t, err)
	kind, ok := diagnostics.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, diagnostics.Arity, kind)
}

func TestRegisterFuncConversions(t *testing.T) {
	in := quill.New()
	require.NoError(t, in.RegisterFunc("half", func(x float64) float64 { return x / 2 }))
	require.NoError(t, in.RegisterFunc("sum", func(xs ...int) int {
		total := 0
		for _, x := range xs {
			total += x
		}
		return total
	}))
	require.NoError(t, in.RegisterFunc("split", func(s string) (string, int) { return s + "!", len(s) }))
	require.NoError(t, in.RegisterFunc("names", func(m map[string]int) []string {
		var names []string
		for k := range m {
			names = append(names, k)
		}
		return names
	}))

	res, err := in.Eval(`[half(3), sum(), sum(1, 2, 3), split("ab"), names({"only": 1})];`)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1.5, 0, 6, []interface{}{"ab!", 2}, []interface{}{"only"}}, res)

	assert.Error(t, in.RegisterFunc("bad", 42))
}

func TestRegisterFuncErrors(t *testing.T) {
	in := quill.New()
	require.NoError(t, in.RegisterFunc("fail", func() error { return errors.New("boom") }))
	require.NoError(t, in.RegisterFunc("one", func(x int) int { return x }))

	_, err := in.Eval("x = 1;\nfail();")
	require.Error(t, err)
	var diag *diagnostics.Error
	require.ErrorAs(t, err, &diag)
	assert.Equal(t, diagnostics.Runtime, diag.Kind)
	assert.Equal(t, "boom", diag.Message)
	assert.Equal(t, 2, diag.Line)

	_, err = in.Eval(`one(1, 2);`)
	assert.ErrorContains(t, err, "expected 1 arguments, got 2")

	_, err = in.Eval(`one("a");`)
	assert.ErrorContains(t, err, "argument 1: cannot convert string to int")
}

func TestGetConversions(t *testing.T) {
	in := quill.New()
	_, err := in.Eval(`
class Point {
    x = 0;
    y = 0;
    func Point(x, y) { this.x = x; this.y = y; }
}
p = Point(1, 2);
mixed = {1: "a", "b": 2};
user = {"Name": "Bob", "Score": 7, "Extra": true};
cyclic = [1];
cyclic.append(cyclic);
`)
	require.NoError(t, err)

	p, err := in.Get("p")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"x": 1, "y": 2}, p)

	mixed, err := in.Get("mixed")
	require.NoError(t, err)
	assert.Equal(t, map[interface{}]interface{}{1: "a", "b": 2}, mixed)

	var u User
	require.NoError(t, in.GetInto("user", &u))
	assert.Equal(t, User{Name: "Bob", Score: 7}, u)

	var scores map[string]interface{}
	require.NoError(t, in.GetInto("user", &scores))
	assert.Equal(t, "Bob", scores["Name"])

	_, err = in.Get("cyclic")
	assert.ErrorContains(t, err, "cyclic List")

	_, err = in.Get("nope")
	assert.EqualError(t, err, "variable 'nope' not found")

	assert.Error(t, in.GetInto("user", u))
}

func TestSetConversions(t *testing.T) {
	in := quill.New()
	var nilUser *User
	require.NoError(t, in.Set("m", map[string]int{"b": 2, "a": 1}))
	require.NoError(t, in.Set("u", &User{Name: "Ann"}))
	require.NoError(t, in.Set("none", nilUser))
	require.NoError(t, in.Set("arr", [2]uint8{7, 8}))

	res, err := in.Eval(`[string(m), u["Name"], none == None, arr[1]];`)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{`{"a": 1, "b": 2}`, "Ann", true, 8}, res)

	assert.Error(t, in.Set("ch", make(chan int)))
}

func TestEvalFileResolvesImports(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "shared")
	require.NoError(t, os.MkdirAll(lib, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "helper.ql"), []byte(`greeting = "hello";`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(lib, "names.ql"), []byte(`name = "world";`), 0o644))
	main := filepath.Join(dir, "main.ql")
	require.NoError(t, os.WriteFile(main, []byte("import \"helper\";\nimport \"names\";\ngreeting + \" \" + name;"), 0o644))

	settings := config.DefaultSettings()
	settings.Paths = []string{lib}
	in := quill.New(quill.WithSettings(settings))

	res, err := in.EvalFile(main)
	require.NoError(t, err)
	assert.Equal(t, "hello world", res)

	_, err = in.EvalFile(filepath.Join(dir, "absent.ql"))
	assert.Error(t, err)
}

func TestRecursionSettings(t *testing.T) {
	src := `func down(n) { if n == 0 { return 0; } return down(n - 1); } down(30);`

	_, err := quill.New(quill.WithRecursionLimit(10)).Eval(src)
	require.Error(t, err)
	kind, _ := diagnostics.KindOf(err)
	assert.Equal(t, diagnostics.StackOverflow, kind)

	res, err := quill.New(quill.WithRecursionLimit(10), quill.WithIgnoreOverflow(true)).Eval(src)
	require.NoError(t, err)
	assert.Equal(t, 0, res)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := quill.New(quill.WithContext(ctx)).Eval(`while true { }`)
	assert.ErrorContains(t, err, "execution cancelled")
}

func ExampleInterpreter_Call() {
	in := quill.New()
	_, _ = in.Eval(`func greet(who) { return "hello " + who; }`)
	res, _ := in.Call("greet", "gopher")
	fmt.Println(res)
	// Output: hello gopher
}
