package evaluator

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/funvibe/quill/internal/ast"
	"github.com/funvibe/quill/internal/config"
	"github.com/funvibe/quill/internal/diagnostics"
)

// SourceLoader is the import collaborator. Load resolves path against the
// current execution context, reads and parses it, and returns a program
// whose File is the resolved path. Enter and Leave maintain the context
// stack; Enter fails on a circular import.
type SourceLoader interface {
	Load(path string) (*ast.Program, error)
	Enter(file string) error
	Leave()
	Current() string
}

// Evaluator is one interpreter session. It owns the settings read on every
// call (recursion limit and overflow mode) and the per-function recursion
// counters.
type Evaluator struct {
	// Context for cancellation
	Context context.Context

	Out    io.Writer
	Logger *slog.Logger
	Loader SourceLoader

	RecursionLimit int
	IgnoreOverflow bool

	// depths counts active calls per function literal.
	depths map[*ast.FunctionLiteral]int

	// evalDepth tracks the current nesting depth of Eval calls to prevent
	// exhausting the Go stack
	evalDepth int
}

func New() *Evaluator {
	return &Evaluator{
		Out:            os.Stdout,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		RecursionLimit: config.DefaultRecursionLimit,
		depths:         make(map[*ast.FunctionLiteral]int),
	}
}

// NewRootEnvironment returns an empty global environment with the builtin
// library registered.
func NewRootEnvironment() *Environment {
	env := NewEnvironment(NewRegistry())
	RegisterBuiltins(env)
	return env
}

// EvalStatements evaluates top-level statements in order and returns one
// result per statement (nil where a statement produced no value). The first
// error halts evaluation; a break, continue or return escaping to the top
// level is reported as a runtime error.
func (e *Evaluator) EvalStatements(stmts []ast.Statement, env *Environment) ([]Object, error) {
	results := make([]Object, 0, len(stmts))
	for _, stmt := range stmts {
		res := e.Eval(stmt, env)
		if err := e.escaped(res, stmt); err != nil {
			e.Logger.Debug("statement failed", "line", stmt.GetToken().Line, "error", err)
			return results, err.Diagnostic()
		}
		results = append(results, res)
	}
	return results, nil
}

// Run evaluates a parsed program in env, pushing its file as the
// execution context when a loader is configured.
func (e *Evaluator) Run(program *ast.Program, env *Environment) ([]Object, error) {
	if e.Loader != nil && program.File != "" {
		if err := e.Loader.Enter(program.File); err != nil {
			return nil, err
		}
		defer e.Loader.Leave()
	}
	return e.EvalStatements(program.Statements, env)
}

// escaped converts a result that must not leave a top-level statement into
// an error.
func (e *Evaluator) escaped(res Object, node ast.Node) *Error {
	var err *Error
	switch r := res.(type) {
	case *Error:
		err = r
	case *ReturnValue:
		err = newError("'return' outside function")
	case *BreakSignal:
		err = newError("'break' outside loop")
	case *ContinueSignal:
		err = newError("'continue' outside loop")
	default:
		return nil
	}
	e.stamp(err, node)
	return err
}

func (e *Evaluator) Eval(node ast.Node, env *Environment) Object {
	e.evalDepth++
	defer func() { e.evalDepth-- }()
	if e.evalDepth > config.MaxEvalDepth {
		return newKindError(diagnostics.StackOverflow, "maximum evaluation depth exceeded")
	}

	if e.Context != nil {
		select {
		case <-e.Context.Done():
			return newError("execution cancelled: %v", e.Context.Err())
		default:
		}
	}

	obj := e.evalCore(node, env)
	if err, ok := obj.(*Error); ok {
		e.stamp(err, node)
	}
	return obj
}

// stamp fills in the position of an error raised without one.
func (e *Evaluator) stamp(err *Error, node ast.Node) {
	if err.Line == 0 && node != nil {
		tok := node.GetToken()
		err.Line = tok.Line
		err.Column = tok.Column
	}
	if err.File == "" && e.Loader != nil {
		err.File = e.Loader.Current()
	}
}

func (e *Evaluator) evalCore(node ast.Node, env *Environment) Object {
	switch node := node.(type) {
	// Statements
	case *ast.Program:
		return e.evalProgram(node, env)
	case *ast.ExpressionStatement:
		return e.Eval(node.Expression, env)
	case *ast.AssignStatement:
		return e.evalAssignStatement(node, env)
	case *ast.BlockStatement:
		return e.evalBlockStatement(node, env)
	case *ast.IfStatement:
		return e.evalIfStatement(node, env)
	case *ast.WhileStatement:
		return e.evalWhileStatement(node, env)
	case *ast.ForStatement:
		if node.Iterable != nil {
			return e.evalForInStatement(node, env)
		}
		return e.evalCountingForStatement(node, env)
	case *ast.FunctionStatement:
		env.SetLocal(node.Name.Value, newFunction(node.Function, env))
		return nil
	case *ast.ClassStatement:
		return e.evalClassStatement(node, env)
	case *ast.ReturnStatement:
		return e.evalReturnStatement(node, env)
	case *ast.BreakStatement:
		if !env.InLoop() {
			return newError("'break' outside loop")
		}
		return BREAK
	case *ast.ContinueStatement:
		if !env.InLoop() {
			return newError("'continue' outside loop")
		}
		return CONTINUE
	case *ast.GlobalStatement:
		for _, name := range node.Names {
			env.DeclareGlobal(name.Value)
		}
		return nil
	case *ast.ImportStatement:
		return e.evalImportStatement(node, env)
	case *ast.ThrowStatement:
		val := e.evalValue(node.Value, env)
		if isError(val) {
			return val
		}
		return newKindError(diagnostics.Thrown, "%s", render(val, false, nil))

	// Expressions
	case *ast.IntegerLiteral:
		return &Integer{Value: node.Value}
	case *ast.FloatLiteral:
		return &Float{Value: node.Value}
	case *ast.StringLiteral:
		return &String{Value: node.Value}
	case *ast.BooleanLiteral:
		return nativeBoolToBooleanObject(node.Value)
	case *ast.NoneLiteral:
		return NONE
	case *ast.TypeLiteral:
		return &TypeValue{Name: ObjectType(node.Name)}
	case *ast.Identifier:
		return e.evalIdentifier(node, env)
	case *ast.ParenExpression:
		return e.Eval(node.Inner, env)
	case *ast.PrefixExpression:
		return e.evalPrefixExpression(node, env)
	case *ast.InfixExpression:
		return e.evalInfixExpression(node, env)
	case *ast.ListLiteral:
		elements := e.evalExpressions(node.Elements, env)
		if len(elements) == 1 && isError(elements[0]) {
			return elements[0]
		}
		return newList(elements)
	case *ast.DictLiteral:
		return e.evalDictLiteral(node, env)
	case *ast.IndexExpression:
		return e.evalIndexExpression(node, env)
	case *ast.MemberExpression:
		return e.evalMemberExpression(node, env)
	case *ast.MethodCall:
		return e.evalMethodCall(node, env)
	case *ast.CallExpression:
		return e.evalCallExpression(node, env)
	case *ast.FunctionLiteral:
		return newFunction(node, env)
	}
	return newError("cannot evaluate %T", node)
}

// evalValue evaluates an expression whose result is used as a value; an
// absent result is an error.
func (e *Evaluator) evalValue(node ast.Expression, env *Environment) Object {
	obj := e.Eval(node, env)
	if obj == nil {
		err := newError("expression produced no value")
		e.stamp(err, node)
		return err
	}
	return obj
}

// evalExpressions evaluates a list of value expressions. On failure it
// returns a single-element slice holding the error.
func (e *Evaluator) evalExpressions(exps []ast.Expression, env *Environment) []Object {
	result := make([]Object, 0, len(exps))
	for _, exp := range exps {
		evaluated := e.evalValue(exp, env)
		if isError(evaluated) {
			return []Object{evaluated}
		}
		result = append(result, evaluated)
	}
	return result
}

// evalStatements runs a statement sequence in the current frame and stops
// at the first error or signal.
func (e *Evaluator) evalStatements(stmts []ast.Statement, env *Environment) Object {
	var result Object
	for _, stmt := range stmts {
		result = e.Eval(stmt, env)
		if isError(result) || isSignal(result) {
			return result
		}
	}
	return result
}

func (e *Evaluator) evalProgram(program *ast.Program, env *Environment) Object {
	for _, stmt := range program.Statements {
		res := e.Eval(stmt, env)
		if err := e.escaped(res, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (e *Evaluator) evalIdentifier(node *ast.Identifier, env *Environment) Object {
	if val, ok := env.Get(node.Value); ok {
		// Sibling methods called by bare name run on the same instance.
		if fn, isFn := val.(*Function); isFn && fn.Receiver == nil && env.boundAttribute(node.Value) {
			return fn.bind(env.self)
		}
		return val
	}
	if builtin, ok := env.LookupBuiltin(node.Value); ok {
		return builtin
	}
	return newError("unrecognized variable '%s'", node.Value)
}

func (e *Evaluator) evalDictLiteral(node *ast.DictLiteral, env *Environment) Object {
	dict := NewDictionary()
	for _, pair := range node.Pairs {
		key := e.evalValue(pair.Key, env)
		if isError(key) {
			return key
		}
		value := e.evalValue(pair.Value, env)
		if isError(value) {
			return value
		}
		dict.Set(key, value)
	}
	return dict
}

func (e *Evaluator) evalImportStatement(node *ast.ImportStatement, env *Environment) Object {
	if e.Loader == nil {
		return newError("import is not available")
	}
	program, err := e.Loader.Load(node.Path.Value)
	if err != nil {
		return fromGoError(err)
	}
	if err := e.Loader.Enter(program.File); err != nil {
		return fromGoError(err)
	}
	defer e.Loader.Leave()

	e.Logger.Debug("import", "path", program.File)
	res := e.evalProgram(program, env.Root())
	e.Logger.Debug("import done", "path", program.File, "ok", !isError(res))
	return res
}
