package evaluator

import (
	"github.com/funvibe/quill/internal/ast"
	"github.com/funvibe/quill/internal/config"
	"github.com/funvibe/quill/internal/diagnostics"
)

func (e *Evaluator) evalCallExpression(node *ast.CallExpression, env *Environment) Object {
	callee := e.evalValue(node.Function, env)
	if isError(callee) {
		return callee
	}
	args := e.evalExpressions(node.Arguments, env)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}
	return e.applyFunction(callee, args, env)
}

// applyFunction calls fn with already evaluated arguments. env is the
// caller's environment.
func (e *Evaluator) applyFunction(fn Object, args []Object, env *Environment) Object {
	switch f := fn.(type) {
	case *Function:
		return e.callFunction(f, args, env)
	case *Builtin:
		return e.callBuiltin(f, args, env)
	case *Class:
		return e.instantiate(f, args, env)
	}
	return newError("%s value is not callable", fn.Type())
}

// Call invokes a callable value from host code.
func (e *Evaluator) Call(fn Object, args []Object, env *Environment) (Object, error) {
	res := e.applyFunction(fn, args, env)
	if err, ok := res.(*Error); ok {
		return nil, err.Diagnostic()
	}
	return res, nil
}

func (e *Evaluator) callBuiltin(b *Builtin, args []Object, env *Environment) Object {
	if b.Receiver != nil {
		args = append([]Object{b.Receiver}, args...)
	}
	res, err := b.Fn(e, env, args...)
	if err != nil {
		return fromGoError(err)
	}
	return res
}

// enterCall increments the recursion counter of lit and reports an error
// when the limit is exceeded. On success the caller must call leaveCall.
func (e *Evaluator) enterCall(fn *Function) *Error {
	lit := fn.Literal
	depth := e.depths[lit] + 1
	if depth > e.RecursionLimit {
		if !e.IgnoreOverflow || depth > config.HardRecursionLimit {
			return newKindError(diagnostics.StackOverflow,
				"maximum recursion depth exceeded in '%s' (limit %d)", fn.Name(), e.RecursionLimit)
		}
		if depth == e.RecursionLimit+1 {
			e.Logger.Warn("recursion limit exceeded", "function", fn.Name(), "limit", e.RecursionLimit)
		}
	}
	e.depths[lit] = depth
	return nil
}

func (e *Evaluator) leaveCall(fn *Function) {
	lit := fn.Literal
	if e.depths[lit] <= 1 {
		delete(e.depths, lit)
		return
	}
	e.depths[lit]--
}

// CallDepth reports how many calls of fn are currently active.
func (e *Evaluator) CallDepth(fn *Function) int {
	return e.depths[fn.Literal]
}

func (e *Evaluator) callFunction(fn *Function, args []Object, env *Environment) Object {
	params := fn.Literal.Parameters
	if len(args) != len(params) {
		return newKindError(diagnostics.Arity,
			"function '%s' expects %d argument(s), got %d", fn.Name(), len(params), len(args))
	}

	if err := e.enterCall(fn); err != nil {
		return err
	}
	defer e.leaveCall(fn)

	callEnv := fn.Env.Extend()
	if fn.Receiver != nil {
		callEnv.enterAttributes(fn.Receiver.Attrs, callEnv.Depth()-1)
		callEnv.self = fn.Receiver
		callEnv.SetLocal(config.ThisName, fn.Receiver)
	}
	for i, param := range params {
		callEnv.SetLocal(param.Value, args[i])
	}

	res := e.evalStatements(fn.Literal.Body.Statements, callEnv)
	env.propagateGlobals(callEnv)

	switch r := res.(type) {
	case *Error:
		return r
	case *ReturnValue:
		return r.Value
	}
	return nil
}

// instantiate creates an instance of class and runs its constructor with
// the instance as the attribute context.
func (e *Evaluator) instantiate(class *Class, args []Object, env *Environment) Object {
	inst := newInstance(class)
	ctor, ok := inst.Attrs.Get(class.Name)
	fn, isFn := ctor.(*Function)
	if !ok || !isFn {
		return newError("class '%s' has no constructor", class.Name)
	}
	if res := e.callFunction(fn.bind(inst), args, env); isError(res) {
		return res
	}
	return inst
}
