package evaluator

import (
	"strings"

	"github.com/funvibe/quill/internal/ast"
)

// lvalue is a resolved assignment target. Container and index operands are
// evaluated once, so compound assignment does not repeat side effects.
type lvalue struct {
	get func() Object
	set func(Object) Object
}

func (e *Evaluator) evalAssignStatement(node *ast.AssignStatement, env *Environment) Object {
	if list, ok := node.Target.(*ast.ListLiteral); ok {
		val := e.evalValue(node.Value, env)
		if isError(val) {
			return val
		}
		return e.destructure(list, val, env)
	}

	target := e.resolveTarget(node.Target, env)
	if target.set == nil {
		return target.get()
	}

	if node.Operator == "=" {
		val := e.evalValue(node.Value, env)
		if isError(val) {
			return val
		}
		return target.set(val)
	}

	current := target.get()
	if isError(current) {
		return current
	}
	operand := e.evalValue(node.Value, env)
	if isError(operand) {
		return operand
	}
	result := e.binaryOp(strings.TrimSuffix(node.Operator, "="), current, operand)
	if isError(result) {
		return result
	}
	return target.set(result)
}

// resolveTarget evaluates the operands of an assignment target. When the
// operands fail, the returned lvalue has a nil set and get yields the error.
func (e *Evaluator) resolveTarget(target ast.Expression, env *Environment) lvalue {
	fail := func(err Object) lvalue {
		return lvalue{get: func() Object { return err }}
	}

	switch t := target.(type) {
	case *ast.Identifier:
		return lvalue{
			get: func() Object { return e.evalIdentifier(t, env) },
			set: func(val Object) Object {
				// Class bodies define attributes in the template scope.
				if env.inClass && env.attrs == env.Local() && !env.isGlobal(t.Value) {
					env.SetLocal(t.Value, val)
					return nil
				}
				env.Set(t.Value, val)
				return nil
			},
		}

	case *ast.MemberExpression:
		left := e.evalValue(t.Left, env)
		if isError(left) {
			return fail(left)
		}
		inst, ok := left.(*Instance)
		if !ok {
			return fail(newError("cannot set attribute '%s' on %s value", t.Member.Value, left.Type()))
		}
		name := t.Member.Value
		return lvalue{
			get: func() Object {
				if val, ok := inst.Attrs.Get(name); ok {
					return val
				}
				return newError("'%s' instance has no attribute '%s'", inst.Class.Name, name)
			},
			set: func(val Object) Object {
				inst.Attrs.Set(name, val)
				return nil
			},
		}

	case *ast.IndexExpression:
		container := e.evalValue(t.Left, env)
		if isError(container) {
			return fail(container)
		}
		if t.IsSlice {
			start, end, err := e.evalSliceBounds(t, env)
			if err != nil {
				return fail(err)
			}
			return lvalue{
				get: func() Object { return sliceValue(container, start, end) },
				set: func(val Object) Object { return setSlice(container, start, end, val) },
			}
		}
		index := e.evalValue(t.Index, env)
		if isError(index) {
			return fail(index)
		}
		return lvalue{
			get: func() Object { return indexValue(container, index) },
			set: func(val Object) Object { return setIndex(container, index, val) },
		}
	}

	return fail(newError("cannot assign to %T", target))
}

// destructure assigns the elements of a list value to the targets of a
// list literal pattern.
func (e *Evaluator) destructure(pattern *ast.ListLiteral, val Object, env *Environment) Object {
	list, err := AsList(val)
	if err != nil {
		return fromGoError(err)
	}
	if err := checkUnpack(len(pattern.Elements), len(list.Elements)); err != nil {
		return err
	}
	values := list.Copy().Elements
	for i, el := range pattern.Elements {
		target := e.resolveTarget(el, env)
		if target.set == nil {
			return target.get()
		}
		if res := target.set(values[i]); isError(res) {
			return res
		}
	}
	return nil
}

func checkUnpack(want, got int) *Error {
	switch {
	case got > want:
		return newError("too many values to unpack (expected %d, got %d)", want, got)
	case got < want:
		return newError("too few values to unpack (expected %d, got %d)", want, got)
	}
	return nil
}

func (e *Evaluator) evalBlockStatement(block *ast.BlockStatement, env *Environment) Object {
	env.PushScope()
	defer env.PopScope()
	return e.evalStatements(block.Statements, env)
}

func (e *Evaluator) evalIfStatement(node *ast.IfStatement, env *Environment) Object {
	for _, branch := range node.Branches {
		cond := e.evalValue(branch.Condition, env)
		if isError(cond) {
			return cond
		}
		if isTruthy(cond) {
			return e.evalBlockStatement(branch.Body, env)
		}
	}
	if node.Alternative != nil {
		return e.evalBlockStatement(node.Alternative, env)
	}
	return nil
}

// loopControl interprets the result of one loop iteration. It reports
// whether the loop must stop and the result to return when it does.
func loopControl(res Object) (stop bool, out Object) {
	switch res.(type) {
	case *BreakSignal:
		return true, nil
	case *ContinueSignal:
		return false, nil
	case *Error, *ReturnValue:
		return true, res
	}
	return false, nil
}

func (e *Evaluator) evalWhileStatement(node *ast.WhileStatement, env *Environment) Object {
	env.PushLoop()
	defer env.PopLoop()

	for {
		cond := e.evalValue(node.Condition, env)
		if isError(cond) {
			return cond
		}
		if !isTruthy(cond) {
			return nil
		}
		if stop, out := loopControl(e.evalBlockStatement(node.Body, env)); stop {
			return out
		}
	}
}

func (e *Evaluator) evalForInStatement(node *ast.ForStatement, env *Environment) Object {
	iterable := e.evalValue(node.Iterable, env)
	if isError(iterable) {
		return iterable
	}

	pattern, destructuring := node.Target.(*ast.ListLiteral)
	items, err := iterationItems(iterable, destructuring)
	if err != nil {
		return err
	}

	env.PushLoop()
	defer env.PopLoop()

	for _, item := range items {
		env.PushScope()
		res := e.bindLoopTarget(node.Target, pattern, item, env)
		if res == nil {
			res = e.evalStatements(node.Body.Statements, env)
		}
		env.PopScope()
		if stop, out := loopControl(res); stop {
			return out
		}
	}
	return nil
}

func (e *Evaluator) bindLoopTarget(target ast.Expression, pattern *ast.ListLiteral, item Object, env *Environment) Object {
	if pattern == nil {
		env.SetLocal(target.(*ast.Identifier).Value, item)
		return nil
	}
	list, ok := item.(*List)
	if !ok {
		return newError("cannot unpack %s value", item.Type())
	}
	if err := checkUnpack(len(pattern.Elements), len(list.Elements)); err != nil {
		return err
	}
	for i, el := range pattern.Elements {
		env.SetLocal(el.(*ast.Identifier).Value, list.Elements[i])
	}
	return nil
}

// iterationItems snapshots what a for-in loop visits: list elements,
// dictionary keys (or [key, value] pairs when destructuring) and the
// characters of a string.
func iterationItems(iterable Object, pairs bool) ([]Object, *Error) {
	switch it := iterable.(type) {
	case *List:
		return it.Copy().Elements, nil
	case *Dictionary:
		if !pairs {
			return it.Keys(), nil
		}
		items := make([]Object, 0, it.Len())
		it.Each(func(k, v Object) bool {
			items = append(items, newList([]Object{k, v}))
			return true
		})
		return items, nil
	case *String:
		runes := []rune(it.Value)
		items := make([]Object, len(runes))
		for i, r := range runes {
			items[i] = &String{Value: string(r)}
		}
		return items, nil
	}
	return nil, newError("%s value is not iterable", iterable.Type())
}

func (e *Evaluator) evalCountingForStatement(node *ast.ForStatement, env *Environment) Object {
	env.PushScope()
	defer env.PopScope()

	init := e.evalValue(node.Init, env)
	if isError(init) {
		return init
	}
	if _, ok := init.(*Integer); !ok {
		return newError("for loop variable '%s' must be an Integer, got %s", node.Variable.Value, init.Type())
	}
	env.SetLocal(node.Variable.Value, init)

	env.PushLoop()
	defer env.PopLoop()

	for {
		cond := e.evalValue(node.Condition, env)
		if isError(cond) {
			return cond
		}
		if !isTruthy(cond) {
			return nil
		}
		if stop, out := loopControl(e.evalBlockStatement(node.Body, env)); stop {
			return out
		}
		if res := e.Eval(node.Update, env); isError(res) {
			return res
		}
	}
}

func (e *Evaluator) evalReturnStatement(node *ast.ReturnStatement, env *Environment) Object {
	if node.Value == nil {
		return &ReturnValue{}
	}
	val := e.Eval(node.Value, env)
	if isError(val) {
		return val
	}
	return &ReturnValue{Value: val}
}

// evalClassStatement runs the class body in its own scope, which becomes
// the template copied into every instance.
func (e *Evaluator) evalClassStatement(node *ast.ClassStatement, env *Environment) Object {
	name := node.Name.Value

	env.PushScope()
	template := env.Local()
	restore := env.enterAttributes(template, env.Depth()-1)
	res := e.evalStatements(node.Body.Statements, env)
	restore()
	env.PopScope()

	if isError(res) {
		return res
	}
	if isSignal(res) {
		return newError("unexpected '%s' in body of class '%s'", res.Inspect(), name)
	}

	ctor, ok := template.Get(name)
	if _, isFn := ctor.(*Function); !ok || !isFn {
		return newError("class '%s' must define a constructor function '%s'", name, name)
	}

	class := &Class{Name: name, Env: env.Capture(), Template: template, id: nextSerial()}
	env.SetLocal(name, class)
	return nil
}
