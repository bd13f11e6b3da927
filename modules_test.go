package wings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestImportMath(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	if ctx.Execute("import math\nr = math.sqrt(9.0)", "test") == nil {
		t.Fatalf("import failed: %s", ctx.ErrorMessage())
	}
	r := ctx.GetGlobal("r")
	if r == nil || r.Float() != 3 {
		t.Errorf("math.sqrt(9.0) = %s", testRepr(ctx, r))
	}
}

func TestFromImport(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	if ctx.Execute("from math import sqrt as root\nr = root(16.0)", "test") == nil {
		t.Fatalf("from-import failed: %s", ctx.ErrorMessage())
	}
	r := ctx.GetGlobal("r")
	if r == nil || r.Float() != 4 {
		t.Errorf("root(16.0) = %s", testRepr(ctx, r))
	}
}

func TestImportMissingModule(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	if ctx.Execute("import nonexistent", "test") != nil {
		t.Fatal("importing a missing module should fail")
	}
	exc := ctx.CurrentException()
	if exc == nil || !ctx.IsInstance(exc, []*Value{ctx.excClass(ImportError)}) {
		t.Errorf("expected ImportError, got %s", testRepr(ctx, exc))
	}
	ctx.ClearException()
}

func TestRegisterModule(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	ctx.RegisterModule("host", func(ctx *Context) bool {
		v := ctx.NewInt(99)
		if v == nil {
			return false
		}
		ctx.SetGlobal("magic", v)
		return true
	})
	if ctx.Execute("from host import magic", "test") == nil {
		t.Fatalf("import failed: %s", ctx.ErrorMessage())
	}
	m := ctx.GetGlobal("magic")
	if m == nil || m.Int() != 99 {
		t.Errorf("magic = %s", testRepr(ctx, m))
	}
}

func TestFileModule(t *testing.T) {
	dir := t.TempDir()
	src := "value = 7\n\ndef double(x):\n\treturn x * 2\n"
	if err := os.WriteFile(filepath.Join(dir, "helper.py"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	ctx.SetImportPath(dir)
	if ctx.Execute("import helper\nr = helper.double(helper.value)", "test") == nil {
		t.Fatalf("file import failed: %s", ctx.ErrorMessage())
	}
	r := ctx.GetGlobal("r")
	if r == nil || r.Int() != 14 {
		t.Errorf("r = %s", testRepr(ctx, r))
	}
}

func TestSysModule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Print = func(string) {}
	cfg.Argv = []string{"one", "two"}
	ctx, err := NewContext(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Destroy()
	if ctx.Execute("import sys\nn = len(sys.argv)\nfirst = sys.argv[0]", "test") == nil {
		t.Fatalf("sys import failed: %s", ctx.ErrorMessage())
	}
	if n := ctx.GetGlobal("n"); n == nil || n.Int() != 2 {
		t.Errorf("len(sys.argv) = %s", testRepr(ctx, n))
	}
	if first := ctx.GetGlobal("first"); first == nil || first.String() != "one" {
		t.Errorf("sys.argv[0] = %s", testRepr(ctx, first))
	}
}

func TestOSModuleGated(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	if ctx.Execute("import os", "test") != nil {
		t.Fatal("os module should not be registered by default")
	}
	ctx.ClearException()

	cfg := DefaultConfig()
	cfg.Print = func(string) {}
	cfg.EnableOSAccess = true
	osCtx, err := NewContext(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer osCtx.Destroy()
	if osCtx.Execute("import os\nwd = os.getcwd()", "test") == nil {
		t.Fatalf("os import failed: %s", osCtx.ErrorMessage())
	}
	if wd := osCtx.GetGlobal("wd"); wd == nil || !wd.IsString() {
		t.Errorf("os.getcwd() = %s", testRepr(osCtx, wd))
	}
}

func TestModuleGlobalsIsolated(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "other.py"), []byte("hidden = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	ctx.SetImportPath(dir)
	if ctx.Execute("import other", "test") == nil {
		t.Fatalf("import failed: %s", ctx.ErrorMessage())
	}
	// The module's global is visible through the module object only.
	if ctx.Execute("x = hidden", "test") != nil {
		t.Error("module globals should not leak into the importer")
	}
	ctx.ClearException()
	if ctx.Execute("x = other.hidden", "test") == nil {
		t.Fatalf("attribute access failed: %s", ctx.ErrorMessage())
	}
	if x := ctx.GetGlobal("x"); x == nil || x.Int() != 1 {
		t.Errorf("other.hidden = %s", testRepr(ctx, x))
	}
}
