// Package quill embeds the Quill interpreter in Go programs.
package quill

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"

	"github.com/funvibe/quill/internal/backend"
	"github.com/funvibe/quill/internal/config"
	"github.com/funvibe/quill/internal/evaluator"
	"github.com/funvibe/quill/internal/modules"
)

// Interpreter is one interpreter session. Globals persist across Eval
// calls. An Interpreter is not safe for concurrent use.
type Interpreter struct {
	session    *backend.TreeWalkBackend
	loader     *modules.Loader
	marshaller *Marshaller
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithSettings applies the recursion, overflow and import path settings.
func WithSettings(s *config.Settings) Option {
	return func(in *Interpreter) {
		in.session.Evaluator.RecursionLimit = s.RecursionLimit
		in.session.Evaluator.IgnoreOverflow = s.IgnoreOverflow
		in.loader.SearchPaths = append([]string(nil), s.Paths...)
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.session.Evaluator.Out = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) {
		in.session.Evaluator.Logger = l
		in.loader.Logger = l
	}
}

func WithRecursionLimit(n int) Option {
	return func(in *Interpreter) { in.session.Evaluator.RecursionLimit = n }
}

// WithIgnoreOverflow lets recursion continue past the limit with a
// warning, up to the hard limit.
func WithIgnoreOverflow(ignore bool) Option {
	return func(in *Interpreter) { in.session.Evaluator.IgnoreOverflow = ignore }
}

// WithContext stops evaluation once ctx is done.
func WithContext(ctx context.Context) Option {
	return func(in *Interpreter) { in.session.Evaluator.Context = ctx }
}

// New creates a new interpreter with the builtin library registered.
func New(opts ...Option) *Interpreter {
	loader := modules.NewLoader()
	eval := evaluator.New()
	eval.Loader = loader

	in := &Interpreter{
		session:    backend.NewTreeWalk(eval),
		loader:     loader,
		marshaller: NewMarshaller(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// SetOutput redirects print for subsequent calls.
func (in *Interpreter) SetOutput(w io.Writer) {
	in.session.Evaluator.Out = w
}

// Exec runs source in the session and returns the raw value of its last
// statement that produced one. file names the source for diagnostics and
// import resolution and may be empty.
func (in *Interpreter) Exec(code, file string) (evaluator.Object, error) {
	return backend.Execute(in.session, code, file)
}

// Eval executes Quill source and returns the value of its last statement
// that produced one, converted to Go. Imports resolve against the
// working directory.
func (in *Interpreter) Eval(code string) (interface{}, error) {
	res, err := in.Exec(code, "")
	if err != nil {
		return nil, err
	}
	return in.marshaller.FromValue(res, nil)
}

// EvalFile reads and executes a file. Imports resolve next to it.
func (in *Interpreter) EvalFile(path string) (interface{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := in.Exec(string(content), path)
	if err != nil {
		return nil, err
	}
	return in.marshaller.FromValue(res, nil)
}

// Set binds a global variable, converting val to a Quill value.
func (in *Interpreter) Set(name string, val interface{}) error {
	obj, err := in.marshaller.ToValue(val)
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	in.session.Env.Set(name, obj)
	return nil
}

// Get retrieves a global variable converted to Go.
func (in *Interpreter) Get(name string) (interface{}, error) {
	obj, ok := in.session.Env.Get(name)
	if !ok {
		return nil, fmt.Errorf("variable '%s' not found", name)
	}
	return in.marshaller.FromValue(obj, nil)
}

// GetInto retrieves a global variable and converts it to the type target
// points to.
func (in *Interpreter) GetInto(name string, target interface{}) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer, got %T", target)
	}
	obj, ok := in.session.Env.Get(name)
	if !ok {
		return fmt.Errorf("variable '%s' not found", name)
	}
	val, err := in.marshaller.FromValue(obj, rv.Elem().Type())
	if err != nil {
		return err
	}
	conv, err := assignable(val, rv.Elem().Type())
	if err != nil {
		return err
	}
	rv.Elem().Set(conv)
	return nil
}

// RegisterFunc makes a Go function callable from scripts under name, like
// a builtin. Arguments are converted to the parameter types; a trailing
// error result becomes a runtime error at the call site.
func (in *Interpreter) RegisterFunc(name string, fn interface{}) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("register %s: expected a function, got %T", name, fn)
	}
	in.session.Env.AddBuiltin(name, in.marshaller.wrapFunc(v))
	return nil
}

// Call calls a function defined in Quill (or registered from Go) by name.
func (in *Interpreter) Call(funcName string, args ...interface{}) (interface{}, error) {
	var fn evaluator.Object
	if obj, ok := in.session.Env.Get(funcName); ok {
		fn = obj
	} else if builtin, ok := in.session.Env.LookupBuiltin(funcName); ok {
		fn = builtin
	} else {
		return nil, fmt.Errorf("function '%s' not found", funcName)
	}

	quillArgs := make([]evaluator.Object, len(args))
	for i, arg := range args {
		obj, err := in.marshaller.ToValue(arg)
		if err != nil {
			return nil, err
		}
		quillArgs[i] = obj
	}

	result, err := in.session.Evaluator.Call(fn, quillArgs, in.session.Env)
	if err != nil {
		return nil, err
	}
	return in.marshaller.FromValue(result, nil)
}

// Lookup returns the raw value bound to a global name.
func (in *Interpreter) Lookup(name string) (evaluator.Object, bool) {
	return in.session.Env.Get(name)
}

// Globals lists the names bound in the global scope in definition order.
func (in *Interpreter) Globals() []string {
	return in.session.Env.Global().Names()
}

// DefaultSettings reads settings from the environment and quill.yaml in
// the working directory, for hosts that want the CLI's configuration.
func DefaultSettings() (*config.Settings, error) {
	return config.LoadSettings("", nil)
}
