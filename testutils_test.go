package wings

import (
	"strings"
	"sync"
	"testing"
)

// testCtx is the Context shared by script tests. Output from print is
// captured in testOutput.
var (
	testCtx     *Context
	testCtxInit sync.Once
	testOutput  strings.Builder
)

// TestingContext returns a Context for testing scripts. It is shared by all
// tests; tests that measure the heap should create their own.
func TestingContext(t *testing.T) *Context {
	testCtxInit.Do(func() {
		cfg := DefaultConfig()
		cfg.Print = func(message string) {
			testOutput.WriteString(message)
		}
		ctx, err := NewContext(&cfg)
		if err != nil {
			panic(err)
		}
		testCtx = ctx
	})
	if testCtx == nil {
		t.Fatal("testing context failed to initialize")
	}
	return testCtx
}

// newTestContext creates an isolated Context with captured output.
func newTestContext(t *testing.T) (*Context, *strings.Builder) {
	t.Helper()
	var out strings.Builder
	cfg := DefaultConfig()
	cfg.Print = func(message string) {
		out.WriteString(message)
	}
	ctx, err := NewContext(&cfg)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return ctx, &out
}

// A ScriptTestCase is a test case containing source code and a predicate to
// check the result of evaluating it as an expression.
type ScriptTestCase struct {
	Source string
	Pass   func(ctx *Context, result *Value) bool
}

// TestFunc returns a test function for the test case.
func (c ScriptTestCase) TestFunc() func(*testing.T) {
	return func(t *testing.T) {
		ctx := TestingContext(t)
		result := ctx.ExecuteExpression(c.Source, "test")
		if !c.Pass(ctx, result) {
			if result == nil {
				t.Errorf("%q failed: %s", c.Source, ctx.ErrorMessage())
				ctx.ClearException()
			} else {
				t.Errorf("%q produced wrong result: %s", c.Source, testRepr(ctx, result))
			}
		}
	}
}

func testRepr(ctx *Context, v *Value) string {
	if v == nil {
		return "<nil>"
	}
	if s := ctx.ToRepr(v); s != nil {
		return s.String()
	}
	ctx.ClearException()
	return "<unprintable>"
}

// PassInt predicates on an int result.
func PassInt(want int64) func(*Context, *Value) bool {
	return func(ctx *Context, result *Value) bool {
		return result != nil && result.IsInt() && result.Int() == want
	}
}

// PassFloat predicates on a float result.
func PassFloat(want float64) func(*Context, *Value) bool {
	return func(ctx *Context, result *Value) bool {
		return result != nil && result.IsFloat() && result.Float() == want
	}
}

// PassString predicates on a str result.
func PassString(want string) func(*Context, *Value) bool {
	return func(ctx *Context, result *Value) bool {
		return result != nil && result.IsString() && result.String() == want
	}
}

// PassBool predicates on a bool result.
func PassBool(want bool) func(*Context, *Value) bool {
	return func(ctx *Context, result *Value) bool {
		return result != nil && result.IsBool() && result.Bool() == want
	}
}

// PassNone predicates on the None result.
func PassNone() func(*Context, *Value) bool {
	return func(ctx *Context, result *Value) bool {
		return result != nil && result.IsNone()
	}
}

// PassRaises predicates on the named exception kind being raised. The
// pending exception is cleared so later tests start clean.
func PassRaises(kind ExcKind) func(*Context, *Value) bool {
	return func(ctx *Context, result *Value) bool {
		if result != nil {
			return false
		}
		exc := ctx.CurrentException()
		if exc == nil {
			return false
		}
		ok := ctx.IsInstance(exc, []*Value{ctx.excClass(kind)})
		ctx.ClearException()
		return ok
	}
}

// runScript executes statements in the shared context, failing the test on
// an exception, and returns the captured output since the previous call.
func runScript(t *testing.T, src string) string {
	t.Helper()
	ctx := TestingContext(t)
	testOutput.Reset()
	if ctx.Execute(src, "test") == nil {
		t.Fatalf("script failed: %s", ctx.ErrorMessage())
	}
	return testOutput.String()
}
