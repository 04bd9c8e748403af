package evaluator

import (
	"github.com/funvibe/quill/internal/ast"
)

func (e *Evaluator) evalIndexExpression(node *ast.IndexExpression, env *Environment) Object {
	left := e.evalValue(node.Left, env)
	if isError(left) {
		return left
	}
	if node.IsSlice {
		start, end, err := e.evalSliceBounds(node, env)
		if err != nil {
			return err
		}
		return sliceValue(left, start, end)
	}
	index := e.evalValue(node.Index, env)
	if isError(index) {
		return index
	}
	return indexValue(left, index)
}

// evalSliceBounds evaluates the optional bounds of a slice. Missing bounds
// are returned as nil.
func (e *Evaluator) evalSliceBounds(node *ast.IndexExpression, env *Environment) (start, end *int64, err Object) {
	bound := func(exp ast.Expression) (*int64, Object) {
		if exp == nil {
			return nil, nil
		}
		val := e.evalValue(exp, env)
		if isError(val) {
			return nil, val
		}
		if _, ok := val.(*None); ok {
			return nil, nil
		}
		i, ok := val.(*Integer)
		if !ok {
			return nil, newError("slice indices must be Integer, not %s", val.Type())
		}
		return &i.Value, nil
	}
	if start, err = bound(node.Start); err != nil {
		return nil, nil, err
	}
	if end, err = bound(node.End); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

// normalizeIndex applies negative wraparound and checks bounds.
func normalizeIndex(container Object, index Object, length int) (int, Object) {
	i, ok := index.(*Integer)
	if !ok {
		return 0, newError("%s indices must be Integer, not %s", container.Type(), index.Type())
	}
	idx := i.Value
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, newError("index %d out of range for %s of length %d", i.Value, container.Type(), length)
	}
	return int(idx), nil
}

func indexValue(container, index Object) Object {
	switch c := container.(type) {
	case *List:
		idx, err := normalizeIndex(c, index, len(c.Elements))
		if err != nil {
			return err
		}
		return c.Elements[idx]
	case *String:
		runes := []rune(c.Value)
		idx, err := normalizeIndex(c, index, len(runes))
		if err != nil {
			return err
		}
		return &String{Value: string(runes[idx])}
	case *Dictionary:
		val, ok := c.Get(index)
		if !ok {
			return newError("key not found: %s", render(index, true, nil))
		}
		return val
	}
	return newError("%s value is not subscriptable", container.Type())
}

// clampSlice resolves slice bounds against length. Negative bounds count
// from the end, then both ends are clamped into [0, length].
func clampSlice(start, end *int64, length int) (int, int) {
	resolve := func(b *int64, def int) int {
		if b == nil {
			return def
		}
		v := *b
		if v < 0 {
			v += int64(length)
		}
		if v < 0 {
			return 0
		}
		if v > int64(length) {
			return length
		}
		return int(v)
	}
	lo, hi := resolve(start, 0), resolve(end, length)
	if lo > hi {
		hi = lo
	}
	return lo, hi
}

func sliceValue(container Object, start, end *int64) Object {
	switch c := container.(type) {
	case *List:
		lo, hi := clampSlice(start, end, len(c.Elements))
		elements := make([]Object, hi-lo)
		copy(elements, c.Elements[lo:hi])
		return newList(elements)
	case *String:
		runes := []rune(c.Value)
		lo, hi := clampSlice(start, end, len(runes))
		return &String{Value: string(runes[lo:hi])}
	case *Dictionary:
		return newError("Dictionary values cannot be sliced")
	}
	return newError("%s value is not subscriptable", container.Type())
}

func setIndex(container, index, val Object) Object {
	switch c := container.(type) {
	case *List:
		idx, err := normalizeIndex(c, index, len(c.Elements))
		if err != nil {
			return err
		}
		c.Elements[idx] = val
		return nil
	case *Dictionary:
		c.Set(index, val)
		return nil
	case *String:
		return newError("String values are immutable")
	}
	return newError("%s value does not support item assignment", container.Type())
}

// setSlice replaces the clamped range of a list with the elements of val.
func setSlice(container Object, start, end *int64, val Object) Object {
	list, ok := container.(*List)
	if !ok {
		if container.Type() == STRING_OBJ {
			return newError("String values are immutable")
		}
		return newError("%s value does not support slice assignment", container.Type())
	}
	repl, ok := val.(*List)
	if !ok {
		return newError("can only assign a List to a slice, not %s", val.Type())
	}
	lo, hi := clampSlice(start, end, len(list.Elements))
	inserted := repl.Copy().Elements

	elements := make([]Object, 0, len(list.Elements)-(hi-lo)+len(inserted))
	elements = append(elements, list.Elements[:lo]...)
	elements = append(elements, inserted...)
	elements = append(elements, list.Elements[hi:]...)
	list.Elements = elements
	return nil
}

func (e *Evaluator) evalMemberExpression(node *ast.MemberExpression, env *Environment) Object {
	left := e.evalValue(node.Left, env)
	if isError(left) {
		return left
	}
	return e.member(left, node.Member.Value, env)
}

// member reads obj.name: an instance attribute (methods come back bound),
// a class template attribute, or a type member function bound to obj.
func (e *Evaluator) member(obj Object, name string, env *Environment) Object {
	switch o := obj.(type) {
	case *Instance:
		val, ok := o.Attrs.Get(name)
		if !ok {
			return newError("'%s' instance has no attribute '%s'", o.Class.Name, name)
		}
		if fn, isFn := val.(*Function); isFn {
			return fn.bind(o)
		}
		return val
	case *Class:
		val, ok := o.Template.Get(name)
		if !ok {
			return newError("class '%s' has no attribute '%s'", o.Name, name)
		}
		return val
	}

	fn, ok := env.LookupMember(obj.Type(), name)
	if !ok {
		return newError("%s has no member '%s'", obj.Type(), name)
	}
	return &Builtin{Name: fn.Name, Fn: fn.Fn, Receiver: obj}
}

func (e *Evaluator) evalMethodCall(node *ast.MethodCall, env *Environment) Object {
	left := e.evalValue(node.Left, env)
	if isError(left) {
		return left
	}
	callee := e.member(left, node.Member.Value, env)
	if isError(callee) {
		return callee
	}
	args := e.evalExpressions(node.Arguments, env)
	if len(args) == 1 && isError(args[0]) {
		return args[0]
	}
	return e.applyFunction(callee, args, env)
}
