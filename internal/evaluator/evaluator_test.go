package evaluator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/quill/internal/diagnostics"
	"github.com/funvibe/quill/internal/testutil"
)

// run executes src and fails the test on any error.
func run(t *testing.T, src string, opts ...testutil.Option) string {
	t.Helper()
	out, err := testutil.Run(t, src, opts...)
	require.NoError(t, err, "source:\n%s", src)
	return out
}

// runError executes src and returns the diagnostic it fails with.
func runError(t *testing.T, src string, opts ...testutil.Option) (string, *diagnostics.Error) {
	t.Helper()
	out, err := testutil.Run(t, src, opts...)
	require.Error(t, err, "source:\n%s", src)
	var diag *diagnostics.Error
	require.ErrorAs(t, err, &diag)
	return out, diag
}

func TestEndToEnd(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"function call", `func f(x){ return x * 2; } print(f(21));`, "42\n"},
		{"index assignment", `x = [1,2,3]; x[1] = 9; print(x);`, "[1, 9, 3]\n"},
		{"elif chain", `if (false) { } elif (true) { print(1); } else { print(2); }`, "1\n"},
		{"else branch", `if 0 { print(1); } elif "" { print(2); } else { print(3); }`, "3\n"},
		{"print several", `print("a", 1, 2.0, None, true, [1, "b"]);`, "a 1 2.0 None true [1, \"b\"]\n"},
		{"while loop", `n = 0; while n < 3 { n += 1; } print(n);`, "3\n"},
		{"counting for", `s = 0; for i = 0, i < 5, i += 1 { s += i; } print(s);`, "10\n"},
		{"for with parens", `for (i = 3, i > 0, i -= 1) { print(i); }`, "3\n2\n1\n"},
		{"for over string", `for c in "héllo" { print(c); }`, "h\né\nl\nl\no\n"},
		{"for over dict", `for k in {"b": 2, "a": 1} { print(k); }`, "a\nb\n"},
		{"for over dict pairs", `for [k, v] in {"b": 2, "a": 1} { print(k, v); }`, "a 1\nb 2\n"},
		{"break and continue", `
for i in range(10) {
    if i == 1 { continue; }
    if i == 4 { break; }
    print(i);
}`, "0\n2\n3\n"},
		{"return from loop", `
func first(xs) {
    for x in xs { if x > 2 { return x; } }
    return None;
}
print(first([1, 5, 3]), first([]));`, "5 None\n"},
		{"return None", `func f() { return None; } print(type(f()) == NoneType);`, "true\n"},
		{"destructuring", `[a, b] = [1, 2]; [a, b] = [b, a]; print(a, b);`, "2 1\n"},
		{"slice assignment", `xs = [1, 2, 3, 4]; xs[1:3] = ["x"]; print(xs);`, "[1, \"x\", 4]\n"},
		{"dict assignment", `d = {}; d["k"] = 1; d["k"] += 1; print(d);`, "{\"k\": 2}\n"},
		{"nested containers", `d = {"a": [1, {"b": 2}]}; d["a"][1]["b"] = 3; print(d);`, "{\"a\": [1, {\"b\": 3}]}\n"},
		{"anonymous function", `sq = func(x) { return x * x; }; print(sq(7), func(y) { return y + 1; }(1));`, "49 2\n"},
		{"string methods", `s = " Hello World "; print(s.strip().lower(), s.strip().upper(), "a-b".split("-"));`, "hello world HELLO WORLD [\"a\", \"b\"]\n"},
		{"title case", `print("hello wide world".title());`, "Hello Wide World\n"},
		{"list methods", `xs = [3, 1, 2]; xs.append(0); xs.sort(); print(xs, xs.size(), xs.index(2)); print(xs.pop(), xs);`, "[0, 1, 2, 3] 4 2\n3 [0, 1, 2]\n"},
		{"list insert and reverse", `xs = [1, 2]; xs.insert(0, "a"); xs.insert(-1, "b"); xs.reverse(); print(xs);`, "[2, \"b\", 1, \"a\"]\n"},
		{"member read as value", `xs = []; add = xs.append; add(1); add(2); print(xs);`, "[1, 2]\n"},
		{"dict methods", `d = {"a": 1}; print(d.get("a"), d.get("z"), d.get("z", 0), d.contains("a"), d.keys(), d.items());`, "1 None 0 true [\"a\"] [[\"a\", 1]]\n"},
		{"join", `print([1, "a", 2.5].join(", "));`, "1, a, 2.5\n"},
		{"sort descending", `xs = [2, 3.5, 1]; xs.sort(true); print(xs);`, "[3.5, 2, 1]\n"},
		{"dict update", `d = {"a": 1}; d.update({"b": 2, "a": 0}); d.update(d); print(d);`, "{\"a\": 0, \"b\": 2}\n"},
		{"conversions", `print(int("42") + 1, float("1.5"), string(12) + "!", bool([]), int(3.9), int(-3.9));`, "43 1.5 12! false 3 -3\n"},
		{"type values", `print(type(1), type(1) == Integer, type("s") == String, type([]) != Dictionary);`, "<type Integer> true true true\n"},
		{"len", `print(len("héllo"), len([1, 2]), len({1: 2}));`, "5 2 1\n"},
		{"range", `print(range(3), range(1, 4), range(5, 0, -2));`, "[0, 1, 2] [1, 2, 3] [5, 3, 1]\n"},
		{"in operator", `print(2 in [1, 2], "a" in {"a": 1}, "ell" in "hello", 3 in [1.0, 3.0], "z" in "abc");`, "true true true true false\n"},
		{"string repetition", `print("ab" * 3, 2 * "xy", "q" * 0);`, "ababab xyxy \n"},
		{"string comparison", `print("abc" < "abd", "b" >= "a", "a" + "b" == "ab");`, "true true true\n"},
		{"short circuit", `func boom() { throw "evaluated"; } print(false and boom(), true or boom(), 1 and "x");`, "false true true\n"},
		{"truthiness", `print(bool(None), bool(0), bool(0.0), bool(""), bool({}), bool(Integer), bool(NoneType), bool(print));`, "false false false false false true false true\n"},
		{"parse", `v = parse("[1, 2 + 3, {\"k\": None}]"); print(v, type(v));`, "[1, 5, {\"k\": None}] <type List>\n"},
		{"locals and globals", `a = 1; func f(x) { y = 2; return locals(); } print(f(0), globals().contains("a"));`, "{\"x\": 0, \"y\": 2} true\n"},
		{"comments", "# heading\nx = 1; /* inline */ print(x) # trailing", "1\n"},
		{"cyclic list", `xs = [1]; xs.append(xs); print(xs);`, "[1, [...]]\n"},
		{"cyclic dict", `d = {}; d["self"] = d; print(d);`, "{\"self\": {...}}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, tt.src))
		})
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"7 / 2", "3"},
		{"-7 / 2", "-3"},
		{"7 // 2", "3"},
		{"-7 // 2", "-3"},
		{"7.0 // 2", "3.0"},
		{"-7.5 // 2", "-3.0"},
		{"7 % 3", "1"},
		{"-7 % 3", "-1"},
		{"7 % -3", "1"},
		{"-7.5 % 2", "-1.5"},
		{"7 / 2.0", "3.5"},
		{"2 ** 10", "1024"},
		{"2 ^ 3", "8"},
		{"2 ** -1", "0.5"},
		{"2.0 ** 2", "4.0"},
		{"-2 ** 2", "-4"},
		{"(-2) ** 2", "4"},
		{"2 ** 3 ** 2", "512"},
		{"1 + 2 * 3 - 4", "3"},
		{"true + true", "2"},
		{"true * 2.5", "2.5"},
		{"-true", "-1"},
		{"1 == 1.0", "true"},
		{"1 != 1.0", "false"},
		{"true == 1", "true"},
		{"0.1 + 0.2", "0.30000000000000004"},
		{"3 < 3.5", "true"},
		{"[1, 2] + [3]", "[1, 2, 3]"},
		{"[1, [2]] == [1, [2]]", "true"},
		{"[1, 2] != [2, 1]", "true"},
		{"{\"a\": [1]} == {\"a\": [1]}", "true"},
		{"\"1\" == 1", "false"},
		{"\"1\" != 1", "true"},
		{"None == None", "true"},
		{"None == false", "false"},
		{"not 0", "true"},
		{"!\"\"", "true"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want+"\n", run(t, "print("+tt.expr+");"))
		})
	}
}

func TestFloorDivisionModuloIdentity(t *testing.T) {
	src := `
ok = true;
for a in range(-9, 10) {
    for b in [-4, -3, -1, 1, 2, 5] {
        if a // b * b + a % b != a { ok = false; print(a, b); }
        q = float(a) / b;
        if a // b != int(q) { ok = false; print("trunc", a, b); }
    }
}
print(ok);
`
	assert.Equal(t, "true\n", run(t, src))
}

func TestZeroDivision(t *testing.T) {
	for _, expr := range []string{"1 / 0", "1 // 0", "1 % 0", "1.5 / 0", "1 // 0.0", "2.0 % 0"} {
		t.Run(expr, func(t *testing.T) {
			_, err := runError(t, "x = "+expr+";")
			assert.Equal(t, diagnostics.ZeroDivision, err.Kind)
		})
	}
}

func TestIntegerOverflow(t *testing.T) {
	big := "9223372036854775807"
	for _, expr := range []string{
		"2 ** 63",
		"3 ** 40",
		big + " + 1",
		"-" + big + " - 2",
		big + " * 2",
		"(-" + big + " - 1) / -1",
		"-(-" + big + " - 1)",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := runError(t, "x = "+expr+";")
			assert.Equal(t, diagnostics.Runtime, err.Kind)
			assert.Contains(t, err.Message, "integer overflow")
		})
	}

	assert.Equal(t, "-9223372036854775808 4611686018427387904 -8\n",
		run(t, "print(-"+big+" - 1, 2 ** 62, (-2) ** 3);"))
}

func TestListCopyVersusAlias(t *testing.T) {
	src := `
a = [1, 2, 3];
alias = a;
snapshot = a.copy();
other = copy(a);
alias.append(4);
snapshot[0] = 99;
other.remove(1);
print(a);
print(alias);
print(snapshot);
print(other);
`
	assert.Equal(t, "[1, 2, 3, 4]\n[1, 2, 3, 4]\n[99, 2, 3]\n[2, 3]\n", run(t, src))
}

func TestAliasingThroughFunctions(t *testing.T) {
	src := `
func push(xs, v) { xs.append(v); }
func rebind(xs) { xs = [0]; }
items = [];
push(items, 1);
rebind(items);
print(items);
d = {};
func put(m) { m["k"] = "v"; }
put(d);
print(d);
`
	assert.Equal(t, "[1]\n{\"k\": \"v\"}\n", run(t, src))
}

func TestDictionaryKeyOrder(t *testing.T) {
	src := `
d = {};
d["b"] = 1;
d[[1]] = 2;
d[1.5] = 3;
d[2] = 4;
d["a"] = 5;
d[true] = 6;
d[None] = 7;
print(d.keys());
print(d[[1]], d[None]);
`
	assert.Equal(t, "[None, true, 2, 1.5, \"a\", \"b\", [1]]\n2 7\n", run(t, src))
}

func TestDictionaryKeysAreOrderIndependent(t *testing.T) {
	a := run(t, `d = {3: "c", 1: "a", 2: "b"}; print(d);`)
	b := run(t, `d = {}; d[2] = "b"; d[1] = "a"; d[3] = "c"; print(d);`)
	assert.Equal(t, "{1: \"a\", 2: \"b\", 3: \"c\"}\n", a)
	assert.Equal(t, a, b)
}

func TestDictionaryIntegerAndFloatKeysAreDistinct(t *testing.T) {
	out := run(t, `d = {1: "int"}; d[1.0] = "float"; print(d.size(), d[1], d[1.0], 1 == 1.0);`)
	assert.Equal(t, "2 int float true\n", out)
}

func TestDictionaryKeysAreCopied(t *testing.T) {
	out := run(t, `k = [1]; d = {}; d[k] = "v"; k.append(2); print(d.contains([1]), d.contains(k));`)
	assert.Equal(t, "true false\n", out)
}

func TestMissingKey(t *testing.T) {
	_, err := runError(t, `d = {"a": 1}; print(d["b"]);`)
	assert.Contains(t, err.Message, `key not found: "b"`)
}

func TestSlicing(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"xs[2:100]", "[3, 4, 5]"},
		{"xs[3:1]", "[]"},
		{"xs[:2]", "[1, 2]"},
		{"xs[3:]", "[4, 5]"},
		{"xs[:]", "[1, 2, 3, 4, 5]"},
		{"xs[-2:]", "[4, 5]"},
		{"xs[-100:2]", "[1, 2]"},
		{"xs[None:None]", "[1, 2, 3, 4, 5]"},
		{"xs[-1]", "5"},
		{"xs[-5]", "1"},
		{"\"hello\"[1:3]", "el"},
		{"\"hello\"[-1]", "o"},
		{"\"hello\"[4:2]", ""},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want+"\n", run(t, "xs = [1, 2, 3, 4, 5]; print("+tt.expr+");"))
		})
	}
}

func TestSliceIsIndependent(t *testing.T) {
	out := run(t, `xs = [1, 2, 3]; ys = xs[:]; ys[0] = 9; print(xs, ys);`)
	assert.Equal(t, "[1, 2, 3] [9, 2, 3]\n", out)
}

func TestIndexErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`xs = [1, 2]; print(xs[2]);`, "index 2 out of range"},
		{`xs = [1, 2]; print(xs[-3]);`, "index -3 out of range"},
		{`xs = [1]; print(xs["a"]);`, "indices must be Integer"},
		{`d = {}; print(d[1:2]);`, "cannot be sliced"},
		{`s = "abc"; s[0] = "x";`, "immutable"},
		{`x = 5; print(x[0]);`, "not subscriptable"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := runError(t, tt.src)
			assert.Equal(t, diagnostics.Runtime, err.Kind)
			assert.Contains(t, err.Message, tt.want)
		})
	}
}

func TestLoopBodyScoping(t *testing.T) {
	_, err := runError(t, `for i in [1, 2] { inner = i; } print(inner);`)
	assert.Contains(t, err.Message, "unrecognized variable 'inner'")

	_, err = runError(t, `n = 0; while n < 2 { n += 1; w = n; } print(w);`)
	assert.Contains(t, err.Message, "unrecognized variable 'w'")

	_, err = runError(t, `for i = 0, i < 2, i += 1 { } print(i);`)
	assert.Contains(t, err.Message, "unrecognized variable 'i'")

	// Existing outer bindings are updated in place.
	assert.Equal(t, "3\n", run(t, `total = 0; for x in [1, 2] { total += x; } print(total);`))
}

func TestLoopIteratesSnapshot(t *testing.T) {
	out := run(t, `xs = [1, 2]; for x in xs { xs.append(x); } print(xs);`)
	assert.Equal(t, "[1, 2, 1, 2]\n", out)
}

func TestGlobalFromFunction(t *testing.T) {
	src := `
func set() { global x; x = 5; }
set();
print(x == 5);
`
	assert.Equal(t, "true\n", run(t, src))
}

func TestGlobalIsScopedToItsBlock(t *testing.T) {
	src := `
func f() {
    v = "local";
    if true { global v; v = "global"; print(v); }
    if true { print(v); }
}
f();
print(v);
`
	assert.Equal(t, "global\nlocal\nglobal\n", run(t, src))
}

func TestFunctionLocalsDoNotLeak(t *testing.T) {
	_, err := runError(t, `func f() { hidden = 1; } f(); print(hidden);`)
	assert.Contains(t, err.Message, "unrecognized variable 'hidden'")
}

func TestClosures(t *testing.T) {
	src := `
func counter() {
    n = 0;
    return func() { n += 1; return n; };
}
a = counter();
b = counter();
a(); a();
print(a(), b());

adders = [];
for i in [1, 2, 3] {
    adders.append(func(x) { return x + i; });
}
print(adders[0](10), adders[2](10));
`
	assert.Equal(t, "3 1\n11 13\n", run(t, src))
}

func TestRecursion(t *testing.T) {
	src := `
func fib(n) { if n < 2 { return n; } return fib(n - 1) + fib(n - 2); }
print(fib(15));
func fact(n) { if n <= 1 { return 1; } return n * fact(n - 1); }
print(fact(20));
`
	assert.Equal(t, "610\n2432902008176640000\n", run(t, src))
}

func TestArityMismatch(t *testing.T) {
	_, err := runError(t, `func f(a, b) { } f(1);`)
	assert.Equal(t, diagnostics.Arity, err.Kind)
	assert.Contains(t, err.Message, "expects 2 argument(s), got 1")

	_, err = runError(t, `len(1, 2);`)
	assert.Equal(t, diagnostics.Arity, err.Kind)

	_, err = runError(t, `[].append();`)
	assert.Equal(t, diagnostics.Arity, err.Kind)
}

func TestClasses(t *testing.T) {
	src := `
class Counter {
    count = 0;
    func Counter(start) { count = start; }
    func inc() { count += 1; return count; }
}
a = Counter(6);
b = Counter(0);
print(a.inc());
print(b.count);
print(a.count);
`
	assert.Equal(t, "7\n0\n7\n", run(t, src))
}

func TestClassThisAndAttributes(t *testing.T) {
	src := `
class Point {
    x = 0;
    y = 0;
    func Point(x, y) { this.x = x; this.y = y; }
    func norm1() { return x + y; }
    func shifted(dx) { return this.x + dx; }
}
p = Point(1, 2);
q = Point(3, 4);
p.y = 5;
print(p.norm1(), p.shifted(10), q.norm1(), type(p), Point.x);
`
	assert.Equal(t, "6 11 7 <type Instance> 0\n", run(t, src))
}

func TestClassAttributesDoNotTouchGlobals(t *testing.T) {
	src := `
count = 100;
class C { count = 0; func C() { } }
c = C();
print(count, c.count);
`
	assert.Equal(t, "100 0\n", run(t, src))
}

func TestBoundMethodKeepsReceiver(t *testing.T) {
	src := `
class Box {
    v = None;
    func Box(v) { this.v = v; }
    func get() { return v; }
}
g = Box(42).get;
print(g());
`
	assert.Equal(t, "42\n", run(t, src))
}

func TestAttributeBuiltins(t *testing.T) {
	src := `
class Bag {
    func Bag() { setattr("extra", 1); }
    func has(name) { return hasattr(name); }
    func drop(name) { delattr(name); }
    func read(name) { return getattr(name); }
}
b = Bag();
print(b.extra, b.has("extra"), b.read("extra"));
b.drop("extra");
print(b.has("extra"));
`
	assert.Equal(t, "1 true 1\nfalse\n", run(t, src))

	_, err := runError(t, `setattr("x", 1);`)
	assert.Contains(t, err.Message, "outside of a class or instance context")

	src = `
class Bag { func Bag() { } }
b = Bag();
setattr(b, "k", 2);
print(getattr(b, "k"), hasattr(b, "k"), b.k);
delattr(b, "k");
print(hasattr(b, "k"));
`
	assert.Equal(t, "2 true 2\nfalse\n", run(t, src))

	_, err = runError(t, `setattr(1, "k", 2);`)
	assert.Equal(t, diagnostics.TypeAccess, err.Kind)
	_, err = runError(t, `class B { func B() { } } getattr(B(), "nope");`)
	assert.Contains(t, err.Message, "'B' instance has no attribute 'nope'")
	_, err = runError(t, `hasattr();`)
	assert.Equal(t, diagnostics.Arity, err.Kind)
}

func TestClassTemplateIsUntouched(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"sibling methods by bare name",
			`class P {
    a = 1;
    func P(v) { a = v; }
    func helper() { return a; }
    func bump() { a += 10; }
    func get() { bump(); return helper(); }
}
p = P(5);
print(p.get(), p.a, P.a, P(2).a);`,
			"15 15 1 2\n",
		},
		{
			"method read from the class",
			`class P { a = 1; func P() { } func set(v) { a = v; } }
P.set(9);
q = P();
print(q.a, P.a);`,
			"1 1\n",
		},
		{
			"write after delattr",
			`class P { a = 1; func P() { delattr("a"); a = 7; } func has() { return hasattr("a"); } }
p = P();
print(P.a, p.has());`,
			"1 false\n",
		},
		{
			"closure inside a method",
			`class C {
    n = 0;
    func C() { }
    func inc() { n += 1; }
    func twice() { f = func() { inc(); }; f(); f(); return n; }
}
c = C();
print(c.twice(), c.n, C.n);`,
			"2 2 0\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(t, tt.src))
		})
	}

	_, err := runError(t, `class P { a = 1; func P() { delattr("a"); print(a); } } P();`)
	assert.Contains(t, err.Message, "unrecognized variable 'a'")
}

func TestClassErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`class A { x = 1; }`, "must define a constructor function 'A'"},
		{`class A { func A() { } } a = A(); print(a.missing);`, "has no attribute 'missing'"},
		{`x = 1; x.y = 2;`, "cannot set attribute 'y' on Integer value"},
		{`class A { func A(v) { } } A();`, "expects 1 argument(s), got 0"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := runError(t, tt.src)
			assert.Contains(t, err.Message, tt.want)
		})
	}
}

func TestThrow(t *testing.T) {
	out, err := runError(t, "print(\"before\");\nthrow \"boom \" + string(42);\nprint(\"after\");")
	assert.Equal(t, "before\n", out)
	assert.Equal(t, diagnostics.Thrown, err.Kind)
	assert.Equal(t, "boom 42", err.Message)
	assert.Equal(t, 2, err.Line)
}

func TestSignalsOutsideTheirConstruct(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`break;`, "'break' outside loop"},
		{`continue;`, "'continue' outside loop"},
		{`return 1;`, "'return' outside function"},
		{`if true { return; }`, "'return' outside function"},
		{`func f() { break; } for x in [1] { f(); }`, "'break' outside loop"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := runError(t, tt.src)
			assert.Equal(t, diagnostics.Runtime, err.Kind)
			assert.Contains(t, err.Message, tt.want)
		})
	}
}

func TestRuntimeErrors(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`print(y);`, "unrecognized variable 'y'"},
		{`x = 1 + "a";`, "unsupported operand types for +: 'Integer' and 'String'"},
		{`x = [1] - [1];`, "unsupported operand types for -"},
		{`x = -"a";`, "unsupported operand type for unary -"},
		{`x = 5(1);`, "Integer value is not callable"},
		{`x = 1 in 5;`, "not a container"},
		{`x = print("");`, "expression produced no value"},
		{`func f() { return; } x = f();`, "expression produced no value"},
		{`[a, b] = [1];`, "too few values to unpack"},
		{`[a] = [1, 2];`, "too many values to unpack"},
		{`[a, b] = 5;`, "expected List, got Integer"},
		{`for [a, b] in [[1, 2, 3]] { }`, "too many values to unpack"},
		{`for x in 5 { }`, "not iterable"},
		{`for i = "a", false, i += 1 { }`, "must be an Integer"},
		{`"abc".nope();`, "String has no member 'nope'"},
		{`assert(1 == 2, "math");`, "assertion failed: math"},
		{`parse("1 +");`, "parse():"},
		{`int("x");`, "invalid literal"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := runError(t, tt.src)
			assert.Contains(t, err.Message, tt.want)
		})
	}
}

func TestTypeAccessErrors(t *testing.T) {
	_, err := runError(t, `range("a");`)
	assert.Equal(t, diagnostics.TypeAccess, err.Kind)
	assert.Contains(t, err.Message, "expected Integer, got String")
}

func TestErrorPositions(t *testing.T) {
	out, err := runError(t, "print(1);\nx = 2;\ny = x +\n    undefined_name;\nprint(3);")
	assert.Equal(t, "1\n", out)
	assert.Equal(t, 4, err.Line)
	assert.Equal(t, 5, err.Column)

	_, err = runError(t, "func f() {\n  return 1 / 0;\n}\nf();")
	assert.Equal(t, 2, err.Line)
	assert.Equal(t, 12, err.Column)
}

func TestSyntaxErrorHaltsBeforeExecution(t *testing.T) {
	out, err := runError(t, "print(1);\nprint(2;")
	assert.Empty(t, out)
	assert.Equal(t, diagnostics.Syntax, err.Kind)
	assert.Equal(t, 2, err.Line)
}

func TestYamlRoundTrip(t *testing.T) {
	src := `
doc = yaml_decode("name: quill\nversion: 3\ntags: [a, b]\nratio: 0.5\nnested: {ok: true, none: null}\n");
print(doc["name"], doc["version"], doc["tags"], doc["ratio"], doc["nested"]["ok"], doc["nested"]["none"]);
text = yaml_encode({"b": [1, 2.0], "a": "x"});
print(yaml_decode(text) == {"a": "x", "b": [1, 2.0]});
print(text);
`
	out := run(t, src)
	assert.True(t, strings.HasPrefix(out, "quill 3 [\"a\", \"b\"] 0.5 true None\ntrue\n"), out)
	assert.Contains(t, out, "a: x\nb:\n")
	assert.Less(t, strings.Index(out, "a: x"), strings.Index(out, "b:"))

	_, err := runError(t, `xs = []; xs.append(xs); yaml_encode(xs);`)
	assert.Contains(t, err.Message, "cyclic list")
}
