package wings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxAlloc != 100000 {
		t.Errorf("MaxAlloc = %d", cfg.MaxAlloc)
	}
	if cfg.MaxRecursion != 100 {
		t.Errorf("MaxRecursion = %d", cfg.MaxRecursion)
	}
	if cfg.MaxCollectionSize != 1000000000 {
		t.Errorf("MaxCollectionSize = %d", cfg.MaxCollectionSize)
	}
	if cfg.GCRunFactor != 2.0 {
		t.Errorf("GCRunFactor = %v", cfg.GCRunFactor)
	}
	if cfg.EnableOSAccess {
		t.Error("EnableOSAccess should default to false")
	}
}

func TestGCRunFactorClamped(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GCRunFactor = 0.5
	if err := cfg.validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.GCRunFactor != 1.0 {
		t.Errorf("GCRunFactor = %v, want clamp to 1.0", cfg.GCRunFactor)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wings.yaml")
	data := "maxAlloc: 5000\nmaxRecursion: 32\nenableOSAccess: true\nargv:\n  - a\n  - b\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MaxAlloc != 5000 || cfg.MaxRecursion != 32 {
		t.Errorf("limits = %d, %d", cfg.MaxAlloc, cfg.MaxRecursion)
	}
	if !cfg.EnableOSAccess {
		t.Error("enableOSAccess not applied")
	}
	if len(cfg.Argv) != 2 || cfg.Argv[0] != "a" {
		t.Errorf("argv = %v", cfg.Argv)
	}
	// Unset fields keep defaults.
	if cfg.MaxCollectionSize != 1000000000 {
		t.Errorf("MaxCollectionSize = %d", cfg.MaxCollectionSize)
	}
}

func TestLoadConfigRejectsNegative(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("maxAlloc: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("negative maxAlloc should be rejected")
	}
}

func TestMaxCollectionSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCollectionSize = 4
	cfg.Print = func(string) {}
	ctx, err := NewContext(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Destroy()
	if ctx.Execute("xs = [1, 2, 3, 4]\nxs.append(5)", "test") != nil {
		t.Fatal("appending past the collection cap should fail")
	}
	exc := ctx.CurrentException()
	if exc == nil || !ctx.IsInstance(exc, []*Value{ctx.excClass(MemoryError)}) {
		t.Errorf("expected MemoryError, got %s", testRepr(ctx, exc))
	}
	ctx.ClearException()
}
