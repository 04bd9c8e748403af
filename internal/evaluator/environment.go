package evaluator

// Scope is one lexical frame. Names iterate in insertion order.
type Scope struct {
	store map[string]Object
	order []string
}

func NewScope() *Scope {
	return &Scope{store: make(map[string]Object)}
}

func (s *Scope) Get(name string) (Object, bool) {
	obj, ok := s.store[name]
	return obj, ok
}

func (s *Scope) Has(name string) bool {
	_, ok := s.store[name]
	return ok
}

func (s *Scope) Set(name string, val Object) {
	if _, ok := s.store[name]; !ok {
		s.order = append(s.order, name)
	}
	s.store[name] = val
}

func (s *Scope) Delete(name string) bool {
	if _, ok := s.store[name]; !ok {
		return false
	}
	delete(s.store, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Scope) Len() int { return len(s.order) }

// Names returns the bound names in insertion order.
func (s *Scope) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Copy returns a scope with the same bindings. Values are shared.
func (s *Scope) Copy() *Scope {
	c := &Scope{store: make(map[string]Object, len(s.store)), order: s.Names()}
	for k, v := range s.store {
		c.store[k] = v
	}
	return c
}

// Registry holds the library functions and the per-type member tables.
// Every environment derived from one root shares its registry.
type Registry struct {
	functions map[string]*Builtin
	members   map[ObjectType]map[string]*Builtin
}

func NewRegistry() *Registry {
	return &Registry{
		functions: make(map[string]*Builtin),
		members:   make(map[ObjectType]map[string]*Builtin),
	}
}

// Environment is a stack of scopes, innermost last, plus the bookkeeping
// for loops, global declarations and the class/instance attribute context.
type Environment struct {
	frames []*Scope

	// globals records names declared global, keyed by the stack depth of
	// the declaring block. Popping that block forgets them.
	globals map[int]map[string]bool

	loops int

	// Attribute context. While inClass is set, attrs is searched after
	// frames[attrBase:] and before the frames below it.
	inClass  bool
	attrs    *Scope
	attrBase int

	// self is the instance whose attributes are in context, nil in a
	// class body.
	self *Instance

	registry *Registry

	// written tracks global names assigned through this environment, for
	// propagation back to a caller with a different global frame.
	written map[string]bool
}

func NewEnvironment(registry *Registry) *Environment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Environment{
		frames:   []*Scope{NewScope()},
		globals:  make(map[int]map[string]bool),
		registry: registry,
	}
}

// Capture snapshots the frame stack for a closure. Scopes are shared, so
// later writes to captured variables remain visible.
func (env *Environment) Capture() *Environment {
	frames := make([]*Scope, len(env.frames))
	copy(frames, env.frames)
	return &Environment{
		frames:   frames,
		globals:  make(map[int]map[string]bool),
		inClass:  env.inClass,
		attrs:    env.attrs,
		attrBase: env.attrBase,
		self:     env.self,
		registry: env.registry,
	}
}

// closure captures env for a function literal. A literal evaluated in a
// class body does not close over the body frame, which is the class
// template: methods reach attributes only through a bound instance.
func (env *Environment) closure() *Environment {
	c := env.Capture()
	if c.attrs != nil && c.attrBase < len(c.frames) && c.frames[c.attrBase] == c.attrs {
		c.frames = c.frames[:c.attrBase]
		c.inClass, c.attrs, c.attrBase, c.self = false, nil, 0, nil
	}
	return c
}

// Extend returns a call environment: the captured frames plus a fresh
// local frame, with no loops and no global declarations.
func (env *Environment) Extend() *Environment {
	call := env.Capture()
	call.frames = append(call.frames, NewScope())
	return call
}

// Root returns an environment holding only the outermost frame.
func (env *Environment) Root() *Environment {
	return &Environment{
		frames:   []*Scope{env.frames[0]},
		globals:  make(map[int]map[string]bool),
		registry: env.registry,
	}
}

func (env *Environment) Registry() *Registry { return env.registry }
func (env *Environment) Depth() int          { return len(env.frames) }
func (env *Environment) Global() *Scope      { return env.frames[0] }
func (env *Environment) Local() *Scope       { return env.frames[len(env.frames)-1] }

func (env *Environment) PushScope() {
	env.frames = append(env.frames, NewScope())
}

// PopScope drops the innermost frame and the globals it declared. The
// outermost frame is never popped.
func (env *Environment) PopScope() {
	if len(env.frames) <= 1 {
		return
	}
	delete(env.globals, len(env.frames))
	env.frames = env.frames[:len(env.frames)-1]
}

func (env *Environment) PushLoop()    { env.loops++ }
func (env *Environment) PopLoop()     { env.loops-- }
func (env *Environment) InLoop() bool { return env.loops > 0 }

// DeclareGlobal makes name resolve to the outermost frame for the rest of
// the current block.
func (env *Environment) DeclareGlobal(name string) {
	depth := len(env.frames)
	if env.globals[depth] == nil {
		env.globals[depth] = make(map[string]bool)
	}
	env.globals[depth][name] = true
}

func (env *Environment) isGlobal(name string) bool {
	for depth, names := range env.globals {
		if depth <= len(env.frames) && names[name] {
			return true
		}
	}
	return false
}

// find returns the scope that currently binds name, in lookup order.
func (env *Environment) find(name string) *Scope {
	base := 0
	if env.attrs != nil {
		base = env.attrBase
	}
	for i := len(env.frames) - 1; i >= base; i-- {
		if env.frames[i].Has(name) {
			return env.frames[i]
		}
	}
	if env.attrs == nil {
		return nil
	}
	if env.attrs.Has(name) {
		return env.attrs
	}
	for i := base - 1; i >= 0; i-- {
		if env.frames[i].Has(name) {
			return env.frames[i]
		}
	}
	return nil
}

// Get resolves name: global declarations go to the outermost frame,
// everything else searches innermost to outermost.
func (env *Environment) Get(name string) (Object, bool) {
	if env.isGlobal(name) {
		return env.frames[0].Get(name)
	}
	if s := env.find(name); s != nil {
		return s.Get(name)
	}
	return nil, false
}

func (env *Environment) Contains(name string) bool {
	_, ok := env.Get(name)
	return ok
}

// Set writes to the first scope that already binds name, or creates the
// name in the innermost frame.
func (env *Environment) Set(name string, val Object) {
	if env.isGlobal(name) {
		env.setGlobal(name, val)
		return
	}
	s := env.find(name)
	if s == nil {
		s = env.Local()
	}
	if s == env.frames[0] {
		env.setGlobal(name, val)
		return
	}
	s.Set(name, val)
}

func (env *Environment) setGlobal(name string, val Object) {
	env.frames[0].Set(name, val)
	if env.written == nil {
		env.written = make(map[string]bool)
	}
	env.written[name] = true
}

// SetLocal binds name in the innermost frame, shadowing outer bindings.
func (env *Environment) SetLocal(name string, val Object) {
	env.Local().Set(name, val)
}

// propagateGlobals copies globals written through call into env's
// outermost frame when the two do not share it.
func (env *Environment) propagateGlobals(call *Environment) {
	if call.frames[0] == env.frames[0] {
		return
	}
	for name := range call.written {
		if v, ok := call.frames[0].Get(name); ok {
			env.setGlobal(name, v)
		}
	}
}

// enterAttributes makes scope the attribute context for frames from base
// up. The returned function restores the previous context.
func (env *Environment) enterAttributes(scope *Scope, base int) func() {
	inClass, attrs, attrBase := env.inClass, env.attrs, env.attrBase
	env.inClass, env.attrs, env.attrBase = true, scope, base
	return func() {
		env.inClass, env.attrs, env.attrBase = inClass, attrs, attrBase
	}
}

func (env *Environment) InClassContext() bool { return env.inClass && env.attrs != nil }

// boundAttribute reports whether name currently resolves to an attribute
// of the instance in context.
func (env *Environment) boundAttribute(name string) bool {
	return env.self != nil && !env.isGlobal(name) && env.find(name) == env.attrs
}

func (env *Environment) attributeScope() (*Scope, error) {
	if !env.InClassContext() {
		return nil, newError("attribute access outside of a class or instance context")
	}
	return env.attrs, nil
}

func (env *Environment) SetAttribute(name string, val Object) error {
	attrs, err := env.attributeScope()
	if err != nil {
		return err
	}
	attrs.Set(name, val)
	return nil
}

func (env *Environment) GetAttribute(name string) (Object, error) {
	attrs, err := env.attributeScope()
	if err != nil {
		return nil, err
	}
	v, ok := attrs.Get(name)
	if !ok {
		return nil, newError("no attribute '%s'", name)
	}
	return v, nil
}

func (env *Environment) HasAttribute(name string) (bool, error) {
	attrs, err := env.attributeScope()
	if err != nil {
		return false, err
	}
	return attrs.Has(name), nil
}

func (env *Environment) DeleteAttribute(name string) error {
	attrs, err := env.attributeScope()
	if err != nil {
		return err
	}
	if !attrs.Delete(name) {
		return newError("no attribute '%s'", name)
	}
	return nil
}

func (env *Environment) AddBuiltin(name string, fn BuiltinFunction) {
	env.registry.functions[name] = &Builtin{Name: name, Fn: fn}
}

func (env *Environment) LookupBuiltin(name string) (*Builtin, bool) {
	b, ok := env.registry.functions[name]
	return b, ok
}

// AddMember registers fn as member name of values of type t. The receiver
// is passed as the first argument.
func (env *Environment) AddMember(t ObjectType, name string, fn BuiltinFunction) {
	table := env.registry.members[t]
	if table == nil {
		table = make(map[string]*Builtin)
		env.registry.members[t] = table
	}
	table[name] = &Builtin{Name: name, Fn: fn}
}

func (env *Environment) LookupMember(t ObjectType, name string) (*Builtin, bool) {
	b, ok := env.registry.members[t][name]
	return b, ok
}
