package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intValue(t *testing.T, env *Environment, name string) int64 {
	t.Helper()
	v, ok := env.Get(name)
	require.True(t, ok, "%s is not bound", name)
	return v.(*Integer).Value
}

func TestScopeKeepsInsertionOrder(t *testing.T) {
	s := NewScope()
	s.Set("b", NONE)
	s.Set("a", NONE)
	s.Set("c", NONE)
	s.Set("b", TRUE)
	assert.Equal(t, []string{"b", "a", "c"}, s.Names())

	assert.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))
	assert.Equal(t, []string{"b", "c"}, s.Names())
	assert.Equal(t, 2, s.Len())
}

func TestSetUpdatesNearestBinding(t *testing.T) {
	env := NewEnvironment(nil)
	env.Set("x", &Integer{Value: 1})
	env.PushScope()
	env.Set("x", &Integer{Value: 2})
	env.Set("y", &Integer{Value: 3})
	assert.Equal(t, int64(2), intValue(t, env, "x"))
	env.PopScope()

	assert.Equal(t, int64(2), intValue(t, env, "x"))
	assert.False(t, env.Contains("y"))
}

func TestSetLocalShadows(t *testing.T) {
	env := NewEnvironment(nil)
	env.Set("x", &Integer{Value: 1})
	env.PushScope()
	env.SetLocal("x", &Integer{Value: 2})
	assert.Equal(t, int64(2), intValue(t, env, "x"))
	env.PopScope()
	assert.Equal(t, int64(1), intValue(t, env, "x"))
}

func TestGlobalDeclarationIsForgottenWithItsBlock(t *testing.T) {
	env := NewEnvironment(nil)
	env.PushScope()
	env.SetLocal("v", &Integer{Value: 1})

	env.PushScope()
	env.DeclareGlobal("v")
	env.Set("v", &Integer{Value: 2})
	assert.Equal(t, int64(2), intValue(t, env, "v"))
	env.PopScope()

	assert.Equal(t, int64(1), intValue(t, env, "v"))
	g, ok := env.Global().Get("v")
	require.True(t, ok)
	assert.Equal(t, int64(2), g.(*Integer).Value)
}

func TestOutermostFrameIsNeverPopped(t *testing.T) {
	env := NewEnvironment(nil)
	env.Set("x", TRUE)
	env.PopScope()
	assert.Equal(t, 1, env.Depth())
	assert.True(t, env.Contains("x"))
}

func TestCaptureSharesScopes(t *testing.T) {
	env := NewEnvironment(nil)
	env.PushScope()
	env.SetLocal("n", &Integer{Value: 1})
	closure := env.Capture()

	env.Set("n", &Integer{Value: 5})
	assert.Equal(t, int64(5), intValue(t, closure, "n"))

	// Frames pushed after capture are not visible to the closure.
	env.PushScope()
	env.SetLocal("later", TRUE)
	assert.False(t, closure.Contains("later"))
}

func TestExtendStartsWithoutLoopsOrGlobals(t *testing.T) {
	env := NewEnvironment(nil)
	env.PushLoop()
	env.DeclareGlobal("g")

	call := env.Extend()
	assert.False(t, call.InLoop())
	assert.False(t, call.isGlobal("g"))
	assert.Equal(t, env.Depth()+1, call.Depth())
	assert.Same(t, env.Global(), call.Global())
}

func TestPropagateGlobalsAcrossDistinctRoots(t *testing.T) {
	caller := NewEnvironment(nil)
	other := NewEnvironment(caller.Registry())
	call := other.Extend()
	call.DeclareGlobal("out")
	call.Set("out", &Integer{Value: 9})

	caller.propagateGlobals(call)
	assert.Equal(t, int64(9), intValue(t, caller, "out"))
}

func TestAttributeContextLookupOrder(t *testing.T) {
	env := NewEnvironment(nil)
	env.Set("name", &String{Value: "global"})
	env.Set("only_global", TRUE)

	attrs := NewScope()
	attrs.Set("name", &String{Value: "attr"})
	env.PushScope()
	assert.False(t, env.InClassContext())
	restore := env.enterAttributes(attrs, env.Depth()-1)
	assert.True(t, env.InClassContext())

	v, _ := env.Get("name")
	assert.Equal(t, "attr", v.(*String).Value)
	assert.True(t, env.Contains("only_global"))

	env.SetLocal("name", &String{Value: "local"})
	v, _ = env.Get("name")
	assert.Equal(t, "local", v.(*String).Value)

	require.NoError(t, env.SetAttribute("extra", NONE))
	has, err := env.HasAttribute("extra")
	require.NoError(t, err)
	assert.True(t, has)

	restore()
	env.PopScope()
	assert.False(t, env.InClassContext())
	_, err = env.HasAttribute("extra")
	assert.Error(t, err)
	v, _ = env.Get("name")
	assert.Equal(t, "global", v.(*String).Value)
}

func TestClosureInClassBodySkipsTemplate(t *testing.T) {
	env := NewEnvironment(nil)
	env.Set("outer", TRUE)
	env.PushScope()
	template := env.Local()
	restore := env.enterAttributes(template, env.Depth()-1)
	defer restore()
	env.SetLocal("field", &Integer{Value: 1})

	c := env.closure()
	assert.Equal(t, 1, c.Depth())
	assert.False(t, c.InClassContext())
	assert.True(t, c.Contains("outer"))
	assert.False(t, c.Contains("field"))

	// Inside a method call the attribute scope is not a frame, so closures
	// keep everything.
	inst := &Instance{Attrs: template.Copy()}
	call := env.Extend()
	call.enterAttributes(inst.Attrs, call.Depth()-1)
	call.self = inst
	kept := call.closure()
	assert.Equal(t, call.Depth(), kept.Depth())
	assert.True(t, kept.boundAttribute("field"))
	kept.SetLocal("field", NONE)
	assert.False(t, kept.boundAttribute("field"))
}

func TestRegistryIsShared(t *testing.T) {
	root := NewRootEnvironment()
	_, ok := root.LookupBuiltin("print")
	assert.True(t, ok)

	child := root.Extend()
	_, ok = child.LookupMember(LIST_OBJ, "append")
	assert.True(t, ok)
	_, ok = child.LookupMember(INTEGER_OBJ, "append")
	assert.False(t, ok)
}
