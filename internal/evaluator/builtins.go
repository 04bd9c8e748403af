package evaluator

import (
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/quill/internal/config"
	"github.com/funvibe/quill/internal/diagnostics"
	"github.com/funvibe/quill/internal/lexer"
	"github.com/funvibe/quill/internal/parser"
)

// RegisterBuiltins installs the free functions and the member tables into
// env's registry.
func RegisterBuiltins(env *Environment) {
	for name, fn := range Builtins() {
		env.AddBuiltin(name, fn)
	}
	registerListMembers(env)
	registerDictionaryMembers(env)
	registerStringMembers(env)
}

// Builtins returns the free functions by name.
func Builtins() map[string]BuiltinFunction {
	return map[string]BuiltinFunction{
		config.PrintFuncName:      builtinPrint,
		config.StringFuncName:     builtinString,
		config.IntFuncName:        builtinInt,
		config.FloatFuncName:      builtinFloat,
		config.BoolFuncName:       builtinBool,
		config.TypeFuncName:       builtinType,
		config.LenFuncName:        builtinLen,
		config.RangeFuncName:      builtinRange,
		config.CopyFuncName:       builtinCopy,
		config.LocalsFuncName:     builtinLocals,
		config.GlobalsFuncName:    builtinGlobals,
		config.ParseFuncName:      builtinParse,
		config.YamlDecodeFuncName: builtinYamlDecode,
		config.YamlEncodeFuncName: builtinYamlEncode,
		config.AssertFuncName:     builtinAssert,
		config.SetAttrFuncName:    builtinSetAttr,
		config.GetAttrFuncName:    builtinGetAttr,
		config.HasAttrFuncName:    builtinHasAttr,
		config.DelAttrFuncName:    builtinDelAttr,
	}
}

func arityError(name string, want string, got int) *Error {
	return newKindError(diagnostics.Arity, "%s() takes %s argument(s), got %d", name, want, got)
}

func checkArgs(name string, args []Object, n int) *Error {
	if len(args) != n {
		return arityError(name, strconv.Itoa(n), len(args))
	}
	return nil
}

func builtinPrint(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = render(arg, false, nil)
	}
	_, err := io.WriteString(e.Out, strings.Join(parts, " ")+"\n")
	return nil, err
}

func builtinString(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("string", args, 1); err != nil {
		return nil, err
	}
	return &String{Value: render(args[0], false, nil)}, nil
}

func builtinInt(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("int", args, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *Integer:
		return a, nil
	case *Float:
		if math.IsNaN(a.Value) || math.IsInf(a.Value, 0) {
			return nil, newError("int(): cannot convert %s", a.Inspect())
		}
		return &Integer{Value: int64(a.Value)}, nil
	case *Boolean:
		return &Integer{Value: int64(boolToInt(a.Value))}, nil
	case *String:
		v, err := strconv.ParseInt(strings.TrimSpace(a.Value), 10, 64)
		if err != nil {
			return nil, newError("int(): invalid literal %q", a.Value)
		}
		return &Integer{Value: v}, nil
	}
	return nil, newError("int(): cannot convert %s", args[0].Type())
}

func builtinFloat(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("float", args, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *Integer, *Float, *Boolean:
		return &Float{Value: toFloat(a)}, nil
	case *String:
		v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
		if err != nil {
			return nil, newError("float(): invalid literal %q", a.Value)
		}
		return &Float{Value: v}, nil
	}
	return nil, newError("float(): cannot convert %s", args[0].Type())
}

func builtinBool(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("bool", args, 1); err != nil {
		return nil, err
	}
	return nativeBoolToBooleanObject(isTruthy(args[0])), nil
}

func builtinType(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("type", args, 1); err != nil {
		return nil, err
	}
	return &TypeValue{Name: args[0].Type()}, nil
}

func builtinLen(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("len", args, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *String:
		return &Integer{Value: int64(len([]rune(a.Value)))}, nil
	case *List:
		return &Integer{Value: int64(len(a.Elements))}, nil
	case *Dictionary:
		return &Integer{Value: int64(a.Len())}, nil
	}
	return nil, newError("len(): %s value has no length", args[0].Type())
}

// builtinRange accepts (stop), (start, stop) or (start, stop, step).
func builtinRange(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if len(args) < 1 || len(args) > 3 {
		return nil, arityError("range", "1 to 3", len(args))
	}
	bounds := make([]int64, len(args))
	for i, arg := range args {
		v, err := AsInteger(arg)
		if err != nil {
			return nil, err
		}
		bounds[i] = v
	}
	var start, stop, step int64 = 0, bounds[0], 1
	if len(bounds) >= 2 {
		start, stop = bounds[0], bounds[1]
	}
	if len(bounds) == 3 {
		step = bounds[2]
	}
	if step == 0 {
		return nil, newError("range(): step must not be zero")
	}
	var elements []Object
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		elements = append(elements, &Integer{Value: i})
	}
	return newList(elements), nil
}

func builtinCopy(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("copy", args, 1); err != nil {
		return nil, err
	}
	switch a := args[0].(type) {
	case *List:
		return a.Copy(), nil
	case *Dictionary:
		return a.Copy(), nil
	}
	return args[0], nil
}

func scopeToDictionary(s *Scope) *Dictionary {
	dict := NewDictionary()
	for _, name := range s.Names() {
		v, _ := s.Get(name)
		dict.Set(&String{Value: name}, v)
	}
	return dict
}

func builtinLocals(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("locals", args, 0); err != nil {
		return nil, err
	}
	return scopeToDictionary(env.Local()), nil
}

func builtinGlobals(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("globals", args, 0); err != nil {
		return nil, err
	}
	return scopeToDictionary(env.Global()), nil
}

// builtinParse converts a string holding a single expression into a value
// by evaluating it in a fresh environment.
func builtinParse(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if err := checkArgs("parse", args, 1); err != nil {
		return nil, err
	}
	src, err := AsString(args[0])
	if err != nil {
		return nil, err
	}
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		return nil, parseError(err)
	}
	expr, err := parser.New(tokens).ParseExpression()
	if err != nil {
		return nil, parseError(err)
	}
	res := e.evalValue(expr, NewEnvironment(env.Registry()))
	if err, ok := res.(*Error); ok {
		// Positions refer to the argument string; report at the call site.
		err.Line, err.Column = 0, 0
		return nil, err
	}
	return res, nil
}

// parseError reports a syntax error in a parse() argument without its
// position, which refers to the argument string rather than the program.
func parseError(err error) *Error {
	msg := err.Error()
	if d, ok := err.(*diagnostics.Error); ok {
		msg = d.Message
	}
	return newKindError(diagnostics.Syntax, "parse(): %s", msg)
}

func builtinAssert(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, arityError("assert", "1 or 2", len(args))
	}
	if isTruthy(args[0]) {
		return nil, nil
	}
	if len(args) == 2 {
		return nil, newError("assertion failed: %s", render(args[1], false, nil))
	}
	return nil, newError("assertion failed")
}

// attrTarget splits an optional leading instance off the arguments of an
// attribute builtin. Without one the call works on env's attribute context.
func attrTarget(fn string, args []Object, n int) (*Instance, []Object, error) {
	switch len(args) {
	case n:
		return nil, args, nil
	case n + 1:
		inst, err := AsInstance(args[0])
		if err != nil {
			return nil, nil, err
		}
		return inst, args[1:], nil
	}
	return nil, nil, arityError(fn, strconv.Itoa(n)+" or "+strconv.Itoa(n+1), len(args))
}

func missingAttribute(inst *Instance, name string) error {
	return newError("'%s' instance has no attribute '%s'", inst.Class.Name, name)
}

func builtinSetAttr(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	inst, rest, err := attrTarget("setattr", args, 2)
	if err != nil {
		return nil, err
	}
	name, err := AsString(rest[0])
	if err != nil {
		return nil, err
	}
	if inst != nil {
		inst.Attrs.Set(name, rest[1])
		return nil, nil
	}
	return nil, env.SetAttribute(name, rest[1])
}

func builtinGetAttr(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	inst, rest, err := attrTarget("getattr", args, 1)
	if err != nil {
		return nil, err
	}
	name, err := AsString(rest[0])
	if err != nil {
		return nil, err
	}
	if inst != nil {
		v, ok := inst.Attrs.Get(name)
		if !ok {
			return nil, missingAttribute(inst, name)
		}
		return v, nil
	}
	return env.GetAttribute(name)
}

func builtinHasAttr(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	inst, rest, err := attrTarget("hasattr", args, 1)
	if err != nil {
		return nil, err
	}
	name, err := AsString(rest[0])
	if err != nil {
		return nil, err
	}
	if inst != nil {
		return nativeBoolToBooleanObject(inst.Attrs.Has(name)), nil
	}
	ok, err := env.HasAttribute(name)
	if err != nil {
		return nil, err
	}
	return nativeBoolToBooleanObject(ok), nil
}

func builtinDelAttr(e *Evaluator, env *Environment, args ...Object) (Object, error) {
	inst, rest, err := attrTarget("delattr", args, 1)
	if err != nil {
		return nil, err
	}
	name, err := AsString(rest[0])
	if err != nil {
		return nil, err
	}
	if inst != nil {
		if !inst.Attrs.Delete(name) {
			return nil, missingAttribute(inst, name)
		}
		return nil, nil
	}
	return nil, env.DeleteAttribute(name)
}
