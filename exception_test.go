package wings

import (
	"strings"
	"testing"
)

func TestTryExceptFinally(t *testing.T) {
	out := runScript(t, `try:
	raise ValueError("x")
except ValueError as e:
	print(e.message)
finally:
	print("done")`)
	if out != "x\ndone\n" {
		t.Errorf("output = %q, want %q", out, "x\ndone\n")
	}
}

func TestExceptMatchOrder(t *testing.T) {
	out := runScript(t, `try:
	raise KeyError("k")
except ValueError:
	print("wrong")
except LookupError:
	print("lookup")
except:
	print("bare")`)
	if out != "lookup\n" {
		t.Errorf("output = %q, want %q", out, "lookup\n")
	}
}

func TestUnmatchedExceptionPropagates(t *testing.T) {
	ctx := TestingContext(t)
	result := ctx.Execute(`try:
	raise ValueError("boom")
except KeyError:
	pass`, "test")
	if result != nil {
		t.Fatal("expected the exception to propagate")
	}
	exc := ctx.CurrentException()
	if exc == nil || !ctx.IsInstance(exc, []*Value{ctx.excClass(ValueError)}) {
		t.Errorf("pending exception = %s", testRepr(ctx, exc))
	}
	ctx.ClearException()
}

func TestFinallyRunsOnAllPaths(t *testing.T) {
	out := runScript(t, `def f():
	try:
		return 1
	finally:
		print("f1")
def g():
	for i in range(3):
		try:
			if i == 1:
				break
		finally:
			print("g1")
print(f())
g()`)
	want := "f1\n1\ng1\ng1\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestNestedFinallyOrder(t *testing.T) {
	out := runScript(t, `def f():
	try:
		try:
			return "v"
		finally:
			print("inner")
	finally:
		print("outer")
print(f())`)
	want := "inner\nouter\nv\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRaiseNonException(t *testing.T) {
	ctx := TestingContext(t)
	if ctx.Execute("raise 5", "test") != nil {
		t.Fatal("raise 5 should fail")
	}
	exc := ctx.CurrentException()
	if exc == nil || !ctx.IsInstance(exc, []*Value{ctx.excClass(TypeError)}) {
		t.Errorf("raising a non-exception should raise TypeError, got %s", testRepr(ctx, exc))
	}
	ctx.ClearException()
}

func TestBareRaiseRethrows(t *testing.T) {
	ctx := TestingContext(t)
	result := ctx.Execute(`try:
	raise ValueError("again")
except ValueError:
	raise`, "test")
	if result != nil {
		t.Fatal("expected re-raised exception")
	}
	exc := ctx.CurrentException()
	if exc == nil || !ctx.IsInstance(exc, []*Value{ctx.excClass(ValueError)}) {
		t.Errorf("re-raise lost the exception: %s", testRepr(ctx, exc))
	}
	ctx.ClearException()
}

func TestUserDefinedException(t *testing.T) {
	out := runScript(t, `class AppError(Exception):
	pass
try:
	raise AppError("custom")
except Exception as e:
	print(e.message)`)
	if out != "custom\n" {
		t.Errorf("output = %q, want %q", out, "custom\n")
	}
}

func TestTracebackFormat(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	if ctx.Execute(`def inner():
	raise RuntimeError("broken")
def outer():
	inner()
outer()`, "test") != nil {
		t.Fatal("expected failure")
	}
	msg := ctx.ErrorMessage()
	for _, want := range []string{
		"Traceback (most recent call last):",
		"Module __main__",
		"Function inner()",
		"Function outer()",
		"RuntimeError: broken",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("traceback missing %q:\n%s", want, msg)
		}
	}
	ctx.ClearException()
}

func TestSyntaxErrorCaret(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	if ctx.Execute("x = (1 +", "bad") != nil {
		t.Fatal("expected syntax error")
	}
	msg := ctx.ErrorMessage()
	if !strings.Contains(msg, "SyntaxError") {
		t.Errorf("message missing SyntaxError:\n%s", msg)
	}
	if !strings.Contains(msg, "^") {
		t.Errorf("message missing caret marker:\n%s", msg)
	}
	ctx.ClearException()
}

func TestErrorMessageOkWhenClear(t *testing.T) {
	ctx := TestingContext(t)
	ctx.ClearException()
	if msg := ctx.ErrorMessage(); msg != "Ok" {
		t.Errorf("ErrorMessage with no exception = %q", msg)
	}
}

func TestRaiseFromAPI(t *testing.T) {
	ctx := TestingContext(t)
	ctx.RaiseExceptionf(IndexError, "index %d out of range", 9)
	exc := ctx.CurrentException()
	if exc == nil || !ctx.IsInstance(exc, []*Value{ctx.excClass(IndexError)}) {
		t.Fatalf("expected IndexError, got %s", testRepr(ctx, exc))
	}
	msg := ctx.GetAttr(exc, "message")
	if msg == nil || msg.String() != "index 9 out of range" {
		t.Errorf("message = %s", testRepr(ctx, msg))
	}
	ctx.ClearException()
}
