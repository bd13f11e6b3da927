package wings

import "testing"

func TestArgumentBinding(t *testing.T) {
	runScript(t, `def f(a, b, c=3, d=4):
	return (a, b, c, d)
def g(*args):
	return args
def h(**kwargs):
	return kwargs
def mix(a, *rest, **extra):
	return (a, rest, extra)`)
	cases := map[string]ScriptTestCase{
		"Positional":    {"f(1, 2) == (1, 2, 3, 4)", PassBool(true)},
		"OverrideOne":   {"f(1, 2, 30) == (1, 2, 30, 4)", PassBool(true)},
		"Keyword":       {"f(1, 2, d=40) == (1, 2, 3, 40)", PassBool(true)},
		"KeywordAll":    {"f(a=1, b=2) == (1, 2, 3, 4)", PassBool(true)},
		"VarArgs":       {"g(1, 2, 3) == (1, 2, 3)", PassBool(true)},
		"VarArgsEmpty":  {"g() == ()", PassBool(true)},
		"KwArgsLen":     {`len(h(x=1, y=2))`, PassInt(2)},
		"KwArgsValue":   {`h(x=1)["x"]`, PassInt(1)},
		"MixRest":       {"mix(1, 2, 3) == (1, (2, 3), {})", PassBool(false)},
		"MixFirst":      {"mix(1, 2, 3)[0]", PassInt(1)},
		"MixVar":        {"mix(1, 2, 3)[1] == (2, 3)", PassBool(true)},
		"MissingArg":    {"f(1)", PassRaises(TypeError)},
		"TooManyArgs":   {"f(1, 2, 3, 4, 5)", PassRaises(TypeError)},
		"UnknownKw":     {"f(1, 2, zz=1)", PassRaises(TypeError)},
		"DuplicateArg":  {"f(1, 2, a=9)", PassRaises(TypeError)},
		"DefaultsTail":  {"f(1, 2, c=30) == (1, 2, 30, 4)", PassBool(true)},
		"KwIntoKwargs":  {`mix(1, zz=9)[2]["zz"]`, PassInt(9)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestCallNonCallableDispatchesDunder(t *testing.T) {
	runScript(t, `class Adder:
	def __call__(self, x):
		return x + 1
add1 = Adder()`)
	c := ScriptTestCase{"add1(41)", PassInt(42)}
	t.Run("DunderCall", c.TestFunc())
}

func TestRecursionGuard(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	if ctx.Execute("def loop():\n\treturn loop()", "test") == nil {
		t.Fatalf("setup failed: %s", ctx.ErrorMessage())
	}
	if ctx.Execute("loop()", "test") != nil {
		t.Fatal("unbounded recursion should fail")
	}
	exc := ctx.CurrentException()
	if exc == nil || !ctx.IsInstance(exc, []*Value{ctx.excClass(RecursionError)}) {
		t.Errorf("expected RecursionError, got %s", testRepr(ctx, exc))
	}
	ctx.ClearException()
}

func TestKwargsMustBeStringKeyedMap(t *testing.T) {
	ctx := TestingContext(t)
	fn := ctx.GetGlobal("print")
	if fn == nil {
		t.Fatal("print not found")
	}
	bad := ctx.Protect(ctx.NewList(nil))
	defer ctx.Unprotect(bad)
	if ctx.Call(fn, nil, bad) != nil {
		t.Error("non-map kwargs should fail")
	}
	ctx.ClearException()

	m := ctx.Protect(ctx.NewMap())
	defer ctx.Unprotect(m)
	m.Dict().Set(ctx.NewInt(1), ctx.None())
	if ctx.Call(fn, nil, m) != nil {
		t.Error("non-string kwargs keys should fail")
	}
	ctx.ClearException()
}

func TestNativeFunctionAndUserdata(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	fn := ctx.NewFunction(func(ctx *Context, args []*Value, kwargs *Value, userdata interface{}) *Value {
		base := userdata.(int64)
		return ctx.NewInt(base + args[0].Int())
	}, int64(100), "offset")
	if fn == nil {
		t.Fatalf("NewFunction failed: %s", ctx.ErrorMessage())
	}
	ctx.SetGlobal("offset", fn)
	result := ctx.ExecuteExpression("offset(11)", "test")
	if result == nil {
		t.Fatalf("call failed: %s", ctx.ErrorMessage())
	}
	if result.Int() != 111 {
		t.Errorf("offset(11) = %d, want 111", result.Int())
	}
}

func TestParseKwargs(t *testing.T) {
	ctx := TestingContext(t)
	m := ctx.Protect(ctx.NewMap())
	defer ctx.Unprotect(m)
	k := ctx.Protect(ctx.NewString("mode"))
	defer ctx.Unprotect(k)
	m.Dict().Set(k, ctx.NewInt(7))
	out := ctx.ParseKwargs(m, []string{"mode", "missing"})
	if out[0] == nil || out[0].Int() != 7 {
		t.Errorf("mode = %s", testRepr(ctx, out[0]))
	}
	if out[1] != nil {
		t.Errorf("missing = %s", testRepr(ctx, out[1]))
	}
}

func TestBoundMethodSelfPrepended(t *testing.T) {
	out := runScript(t, `class Greeter:
	def __init__(self, name):
		self.name = name
	def greet(self, suffix):
		return self.name + suffix
g = Greeter("hi")
m = g.greet
print(m("!"))`)
	if out != "hi!\n" {
		t.Errorf("output = %q, want %q", out, "hi!\n")
	}
}
