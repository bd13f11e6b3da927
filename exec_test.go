package wings

import "testing"

func TestPrintArithmetic(t *testing.T) {
	if out := runScript(t, "print(1 + 2)"); out != "3\n" {
		t.Errorf("output = %q, want %q", out, "3\n")
	}
}

func TestForRangeAppend(t *testing.T) {
	out := runScript(t, `a = []
for i in range(3):
	a.append(i * i)
print(a)`)
	if out != "[0, 1, 4]\n" {
		t.Errorf("output = %q, want %q", out, "[0, 1, 4]\n")
	}
}

func TestClosureCapturesOuter(t *testing.T) {
	cases := map[string]ScriptTestCase{
		"Simple": {`(lambda: 1)()`, PassInt(1)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
	runScript(t, `def outer():
	x = 1
	def inner():
		return x
	return inner()
r = outer()`)
	c := ScriptTestCase{"r", PassInt(1)}
	t.Run("NestedRead", c.TestFunc())

	runScript(t, `def make_adder(n):
	return lambda x: x + n
add5 = make_adder(5)`)
	c = ScriptTestCase{"add5(3)", PassInt(8)}
	t.Run("LambdaCapture", c.TestFunc())
}

func TestInsertionOrderedMap(t *testing.T) {
	out := runScript(t, `d = {}
d["a"] = 1
d["b"] = 2
d["a"] = 3
print(d.keys())
print(d["a"])`)
	want := "[a, b]\n3\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestNegativeIndexing(t *testing.T) {
	cases := map[string]ScriptTestCase{
		"Last":        {"[1, 2, 3][-1]", PassInt(3)},
		"First":       {"[1, 2, 3][-3]", PassInt(1)},
		"OutOfRange":  {"[1, 2, 3][-4]", PassRaises(IndexError)},
		"PosTooLarge": {"[1, 2, 3][3]", PassRaises(IndexError)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestWhileBreakContinue(t *testing.T) {
	out := runScript(t, `n = 0
total = 0
while True:
	n = n + 1
	if n > 10:
		break
	if n % 2 == 0:
		continue
	total = total + n
print(total)`)
	if out != "25\n" {
		t.Errorf("output = %q, want %q", out, "25\n")
	}
}

func TestAugmentedAssignment(t *testing.T) {
	runScript(t, `x = 10
x += 5
x -= 3
x *= 2
x //= 3
ys = [1]
ys += [2]`)
	cases := map[string]ScriptTestCase{
		"Number": {"x", PassInt(8)},
		"List":   {"ys == [1, 2]", PassBool(true)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestTupleAssignment(t *testing.T) {
	runScript(t, `a, b = (1, 2)
a, b = b, a`)
	cases := map[string]ScriptTestCase{
		"Swap": {"(a, b) == (2, 1)", PassBool(true)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestForTupleTargets(t *testing.T) {
	out := runScript(t, `for i, v in enumerate(["a", "b"]):
	print(i, v)`)
	want := "0 a\n1 b\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestConditionals(t *testing.T) {
	cases := map[string]ScriptTestCase{
		"AndShort": {"False and (1 / 0)", PassBool(false)},
		"OrShort":  {"True or (1 / 0)", PassBool(true)},
		"NotTrue":  {"not True", PassBool(false)},
		"InList":   {"2 in [1, 2, 3]", PassBool(true)},
		"NotInMap": {`"x" not in {"y": 1}`, PassBool(true)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
	out := runScript(t, `x = 7
if x > 10:
	print("big")
elif x > 5:
	print("mid")
else:
	print("small")`)
	if out != "mid\n" {
		t.Errorf("output = %q, want %q", out, "mid\n")
	}
}

func TestGlobalsAPI(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	ctx.SetGlobal("answer", ctx.NewInt(42))
	r := ctx.ExecuteExpression("answer", "test")
	if r == nil || r.Int() != 42 {
		t.Fatalf("answer = %s", testRepr(ctx, r))
	}
	if ctx.Execute("doubled = answer * 2", "test") == nil {
		t.Fatalf("script failed: %s", ctx.ErrorMessage())
	}
	d := ctx.GetGlobal("doubled")
	if d == nil || d.Int() != 84 {
		t.Errorf("doubled = %s", testRepr(ctx, d))
	}
}

func TestPrintKwargs(t *testing.T) {
	out := runScript(t, `print(1, 2, sep="-", end=";")`)
	if out != "1-2;" {
		t.Errorf("output = %q, want %q", out, "1-2;")
	}
}

func TestStringIteration(t *testing.T) {
	out := runScript(t, `for c in "ab":
	print(c)`)
	if out != "a\nb\n" {
		t.Errorf("output = %q, want %q", out, "a\nb\n")
	}
}

func TestSetLiteralAndMembership(t *testing.T) {
	cases := map[string]ScriptTestCase{
		"Member": {"2 in {1, 2, 3}", PassBool(true)},
		"Len":    {"len({1, 2, 2, 3})", PassInt(3)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestUnhashableKeyRaises(t *testing.T) {
	cases := map[string]ScriptTestCase{
		"ListKey":  {"{[1]: 2}", PassRaises(TypeError)},
		"MapInSet": {"{{}}", PassRaises(TypeError)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestTupleOfHashablesAsKey(t *testing.T) {
	out := runScript(t, `d = {}
d[(1, "a")] = 9
print(d[(1, "a")])`)
	if out != "9\n" {
		t.Errorf("output = %q, want %q", out, "9\n")
	}
}

func TestListTupleRoundTrip(t *testing.T) {
	cases := map[string]ScriptTestCase{
		"Hashable": {"list(tuple([1, 2])) == list([1, 2])", PassBool(true)},
		"Nested":   {"list(tuple([[1], [2]]))[0] == [1]", PassBool(true)},
	}
	for name, c := range cases {
		t.Run(name, c.TestFunc())
	}
}

func TestAttributeDeterminism(t *testing.T) {
	runScript(t, `class D:
	x = 5
dd = D()`)
	ctx := TestingContext(t)
	obj := ctx.GetGlobal("dd")
	a := ctx.GetAttr(obj, "x")
	b := ctx.GetAttr(obj, "x")
	if a == nil || b == nil {
		t.Fatalf("GetAttr failed: %s", ctx.ErrorMessage())
	}
	if a != b {
		t.Error("non-method attribute lookup should return the same value")
	}
}
