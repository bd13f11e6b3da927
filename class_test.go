package wings

import "testing"

func TestMethodResolutionThroughBases(t *testing.T) {
	out := runScript(t, `class A:
	def f(self):
		return 1
class B(A):
	pass
print(B().f())`)
	if out != "1\n" {
		t.Errorf("output = %q, want %q", out, "1\n")
	}
}

func TestMultipleInheritanceOrder(t *testing.T) {
	// Depth-first, left-to-right over bases: Left's f wins, Right's g is
	// still reachable.
	runScript(t, `class Left:
	def f(self):
		return "left"
class Right:
	def f(self):
		return "right"
	def g(self):
		return "g"
class Both(Left, Right):
	pass
both = Both()`)
	cases := map[string]ScriptTestCase{
		"FirstBaseWins": {"both.f()", PassString("left")},
		"SecondBase":    {"both.g()", PassString("g")},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestInstanceLifecycle(t *testing.T) {
	runScript(t, `class Point:
	def __init__(self, x, y):
		self.x = x
		self.y = y
p = Point(3, 4)`)
	cases := map[string]ScriptTestCase{
		"InitRan":  {"p.x + p.y", PassInt(7)},
		"ClassTag": {"p.__class__ == Point", PassBool(true)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestInitMustReturnNone(t *testing.T) {
	runScript(t, `class Bad:
	def __init__(self):
		return 1`)
	c := ScriptTestCase{"Bad()", PassRaises(TypeError)}
	t.Run("NonNoneInit", c.TestFunc())
}

func TestInstanceWritesStayLocal(t *testing.T) {
	runScript(t, `class Counter:
	limit = 10
a = Counter()
b = Counter()
a.limit = 99`)
	cases := map[string]ScriptTestCase{
		"Written":    {"a.limit", PassInt(99)},
		"Untouched":  {"b.limit", PassInt(10)},
		"ClassAttr":  {"Counter().limit", PassInt(10)},
		"Isinstance": {"isinstance(a, Counter)", PassBool(true)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestBasesTuple(t *testing.T) {
	runScript(t, `class A:
	pass
class B(A):
	pass`)
	cases := map[string]ScriptTestCase{
		"DirectBase":  {"B.__bases__ == (A,)", PassBool(true)},
		"ObjectBase":  {"A.__bases__ == (object,)", PassBool(true)},
		"ObjectEmpty": {"object.__bases__ == ()", PassBool(true)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestIsInstanceHierarchy(t *testing.T) {
	cases := map[string]ScriptTestCase{
		"Direct":     {`isinstance(ValueError("x"), ValueError)`, PassBool(true)},
		"Ancestor":   {`isinstance(ValueError("x"), Exception)`, PassBool(true)},
		"Root":       {`isinstance(ValueError("x"), BaseException)`, PassBool(true)},
		"Unrelated":  {`isinstance(ValueError("x"), KeyError)`, PassBool(false)},
		"IndexChain": {`isinstance(IndexError(""), LookupError)`, PassBool(true)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestNewClassFromAPI(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	cls := ctx.NewClass("Widget", nil)
	if cls == nil {
		t.Fatalf("NewClass failed: %s", ctx.ErrorMessage())
	}
	ctx.BindMethod(cls, "area", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		w := ctx.GetAttr(args[0], "w")
		if w == nil {
			return nil
		}
		h := ctx.GetAttr(args[0], "h")
		if h == nil {
			return nil
		}
		return ctx.NewInt(w.Int() * h.Int())
	}, nil)

	obj := ctx.Call(cls, nil, nil)
	if obj == nil {
		t.Fatalf("Call(class) failed: %s", ctx.ErrorMessage())
	}
	ctx.Protect(obj)
	defer ctx.Unprotect(obj)
	ctx.SetAttr(obj, "w", ctx.Protect(ctx.NewInt(6)))
	ctx.SetAttr(obj, "h", ctx.Protect(ctx.NewInt(7)))
	area := ctx.CallMethod(obj, "area", nil, nil)
	if area == nil {
		t.Fatalf("CallMethod failed: %s", ctx.ErrorMessage())
	}
	if area.Int() != 42 {
		t.Errorf("area = %d, want 42", area.Int())
	}
}

func TestMethodBindingAllocatesFreshValue(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	cls := ctx.NewClass("Holder", nil)
	ctx.BindMethod(cls, "id", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return args[0]
	}, nil)
	obj := ctx.Protect(ctx.Call(cls, nil, nil))
	defer ctx.Unprotect(obj)

	m1 := ctx.GetAttr(obj, "id")
	m2 := ctx.GetAttr(obj, "id")
	if m1 == nil || m2 == nil {
		t.Fatalf("GetAttr failed: %s", ctx.ErrorMessage())
	}
	if m1 == m2 {
		t.Error("lookup returned a shared bound method value")
	}
	if m1.Func().Self != obj {
		t.Error("bound method self is not the receiver")
	}
	// The template's method stays unbound.
	tmpl := cls.Class().Template.Get("id")
	if tmpl.Func().Self != nil {
		t.Error("lookup mutated the shared method value")
	}
}
