package evaluator

import (
	"github.com/funvibe/quill/internal/ast"

	"github.com/google/uuid"
)

// Function is a closure: a function literal paired with the environment
// captured when the literal was evaluated.
type Function struct {
	Literal *ast.FunctionLiteral
	Env     *Environment

	// Receiver is set when the function was read from an instance; calls
	// then run with that instance as the attribute context.
	Receiver *Instance

	id uint64
}

func newFunction(lit *ast.FunctionLiteral, env *Environment) *Function {
	return &Function{Literal: lit, Env: env.closure(), id: nextSerial()}
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string {
	if f.Literal.Name == "" {
		return "<function>"
	}
	return "<function " + f.Literal.Name + ">"
}

func (f *Function) Name() string {
	if f.Literal.Name == "" {
		return "<anonymous>"
	}
	return f.Literal.Name
}

// bind returns a copy of f that runs against inst.
func (f *Function) bind(inst *Instance) *Function {
	bound := *f
	bound.Receiver = inst
	return &bound
}

// BuiltinFunction is the calling contract for library functions. A nil
// Object result means the call produced no value. Errors are re-wrapped
// with the caller's source position.
type BuiltinFunction func(e *Evaluator, env *Environment, args ...Object) (Object, error)

type Builtin struct {
	Name string
	Fn   BuiltinFunction

	// Receiver is prepended to the arguments of a member function read
	// without calling it, e.g. f = xs.append
	Receiver Object
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string  { return "<builtin " + b.Name + ">" }

// Class pairs a name with its defining environment and the template
// attribute scope produced by evaluating the class body.
type Class struct {
	Name     string
	Env      *Environment
	Template *Scope

	id uint64
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string  { return "<class " + c.Name + ">" }

// Instance owns a private copy of its class's template scope.
type Instance struct {
	ID    uuid.UUID
	Class *Class
	Attrs *Scope
}

func newInstance(class *Class) *Instance {
	return &Instance{
		ID:    uuid.New(),
		Class: class,
		Attrs: class.Template.Copy(),
	}
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string {
	return "<" + i.Class.Name + " instance " + i.ID.String()[:8] + ">"
}
