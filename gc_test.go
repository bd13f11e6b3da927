package wings

import "testing"

// finalizerFlag reports whether a value was swept.
func finalizerFlag(v *Value) *bool {
	flag := new(bool)
	v.SetFinalizer(func(*Value, interface{}) {
		*flag = true
	}, nil)
	return flag
}

func TestReachableSurvivesCollection(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	v := ctx.NewList(nil)
	ctx.SetGlobal("keep", v)
	swept := finalizerFlag(v)
	ctx.CollectGarbage()
	ctx.CollectGarbage()
	if *swept {
		t.Error("value reachable from globals was swept")
	}
}

func TestUnreachableIsSwept(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	v := ctx.NewList(nil)
	swept := finalizerFlag(v)
	ctx.CollectGarbage()
	if !*swept {
		t.Error("unreachable value was not swept")
	}
}

func TestProtectionPinsValues(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	v := ctx.NewString("pinned")
	swept := finalizerFlag(v)
	ctx.Protect(v)
	ctx.Protect(v)
	ctx.CollectGarbage()
	if *swept {
		t.Fatal("protected value was swept")
	}
	ctx.Unprotect(v)
	ctx.CollectGarbage()
	if *swept {
		t.Fatal("value with one remaining protection was swept")
	}
	ctx.Unprotect(v)
	ctx.CollectGarbage()
	if !*swept {
		t.Error("unprotected value was not swept")
	}
}

func TestCyclicMapCollected(t *testing.T) {
	// A self-referential map survives while externally referenced and is
	// collected once the external reference drops.
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	d := ctx.NewMap()
	ctx.SetGlobal("d", d)
	k := ctx.NewString("k")
	if !k.IsHashable() {
		t.Fatal("string key should be hashable")
	}
	d.Dict().Set(k, d)
	swept := finalizerFlag(d)

	ctx.CollectGarbage()
	if *swept {
		t.Fatal("cyclic map was swept while still referenced")
	}

	ctx.SetGlobal("d", ctx.None())
	ctx.CollectGarbage()
	if !*swept {
		t.Error("unreachable cycle was not collected")
	}
}

func TestLinkedReferencesKeepValuesAlive(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	parent := ctx.NewList(nil)
	ctx.SetGlobal("parent", parent)
	child := ctx.NewString("child")
	swept := finalizerFlag(child)
	parent.LinkReference(child)

	ctx.CollectGarbage()
	if *swept {
		t.Fatal("linked child was swept")
	}
	parent.UnlinkReference(child)
	ctx.CollectGarbage()
	if !*swept {
		t.Error("unlinked child was not collected")
	}
}

func TestBoundSelfTraversed(t *testing.T) {
	// A bound method keeps its receiver alive.
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	cls := ctx.NewClass("Holder", nil)
	ctx.SetGlobal("Holder", cls)
	ctx.BindMethod(cls, "m", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.None()
	}, nil)
	obj := ctx.Protect(ctx.Call(cls, nil, nil))
	bound := ctx.GetAttr(obj, "m")
	ctx.SetGlobal("bound", bound)
	swept := finalizerFlag(obj)
	ctx.Unprotect(obj)

	ctx.CollectGarbage()
	if *swept {
		t.Error("receiver of a rooted bound method was swept")
	}
	ctx.SetGlobal("bound", ctx.None())
	ctx.CollectGarbage()
	if !*swept {
		t.Error("receiver was not collected after the bound method dropped")
	}
}

func TestFinalizerRunsExactlyOnce(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	count := 0
	v := ctx.NewList(nil)
	v.SetFinalizer(func(*Value, interface{}) {
		count++
	}, nil)
	ctx.CollectGarbage()
	ctx.CollectGarbage()
	if count != 1 {
		t.Errorf("finalizer ran %d times, want 1", count)
	}
}

func TestFinalizerPanicReported(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	var reports []string
	ctx.SetErrorCallback(func(msg string) {
		reports = append(reports, msg)
	})
	v := ctx.NewList(nil)
	v.SetFinalizer(func(*Value, interface{}) {
		panic("boom")
	}, nil)
	ctx.CollectGarbage()
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
}

func TestAllocationLimitRaisesMemoryError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAlloc = 20000
	cfg.Print = func(string) {}
	ctx, err := NewContext(&cfg)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Destroy()

	var pinned []*Value
	defer func() {
		for _, v := range pinned {
			ctx.Unprotect(v)
		}
	}()
	for i := 0; i < cfg.MaxAlloc+1; i++ {
		v := ctx.NewInt(int64(i))
		if v == nil {
			exc := ctx.CurrentException()
			if exc == nil || !ctx.IsInstance(exc, []*Value{ctx.excClass(MemoryError)}) {
				t.Fatalf("expected MemoryError, got %s", testRepr(ctx, exc))
			}
			ctx.ClearException()
			return
		}
		ctx.Protect(v)
		pinned = append(pinned, v)
	}
	t.Fatal("allocation limit was never enforced")
}

func TestGCDuringExecution(t *testing.T) {
	// Heavy allocation inside a script exercises the trigger policy; the
	// program must still observe correct results.
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	if ctx.Execute(`total = 0
for i in range(200):
	s = str(i) + "x"
	total = total + len(s)`, "test") == nil {
		t.Fatalf("script failed: %s", ctx.ErrorMessage())
	}
	total := ctx.GetGlobal("total")
	// 0..9 -> 2 bytes, 10..99 -> 3 bytes, 100..199 -> 4 bytes.
	if total.Int() != 10*2+90*3+100*4 {
		t.Errorf("total = %d", total.Int())
	}
}
