package wings

import "testing"

func TestAttrTableLookupOrder(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	one := ctx.Protect(ctx.NewInt(1))
	two := ctx.Protect(ctx.NewInt(2))
	three := ctx.Protect(ctx.NewInt(3))
	defer func() {
		ctx.Unprotect(one)
		ctx.Unprotect(two)
		ctx.Unprotect(three)
	}()

	// Diamond: child -> (left, right) -> root. Depth-first, left-to-right
	// means left's ancestors are searched before right's local entries.
	root := NewAttrTable()
	left := NewAttrTable()
	right := NewAttrTable()
	child := NewAttrTable()
	left.AddParent(root, false)
	right.AddParent(root, false)
	child.AddParent(left, false)
	child.AddParent(right, false)

	root.Set("a", one)
	right.Set("a", two)
	if got := child.Get("a"); got != one {
		t.Errorf("diamond lookup found %v, want the left-branch ancestor value", got)
	}

	left.Set("a", three)
	if got := child.Get("a"); got != three {
		t.Error("left parent should shadow its ancestors")
	}

	child.Set("a", two)
	if got := child.Get("a"); got != two {
		t.Error("local entry should shadow all parents")
	}
	if got := child.GetFromBase("a"); got != three {
		t.Error("GetFromBase should skip the local entry")
	}
}

func TestAttrTableCopySharesParents(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	v := ctx.Protect(ctx.NewInt(7))
	w := ctx.Protect(ctx.NewInt(8))
	defer func() {
		ctx.Unprotect(v)
		ctx.Unprotect(w)
	}()

	parent := NewAttrTable()
	parent.Set("p", v)
	orig := NewAttrTable()
	orig.AddParent(parent, false)
	orig.Set("local", v)

	cp := orig.Copy()
	if cp.Get("p") != v {
		t.Error("copy lost the parent chain")
	}
	if cp.Get("local") != v {
		t.Error("copy lost local entries")
	}
	// Writes on the copy do not touch the original; writes on the parent
	// show through both.
	cp.Set("local", w)
	if orig.Get("local") != v {
		t.Error("copy write leaked into the original")
	}
	parent.Set("p2", w)
	if cp.Get("p2") != w || orig.Get("p2") != w {
		t.Error("shared parent update should be visible to both tables")
	}
}

func TestAttrTablePrepend(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	one := ctx.Protect(ctx.NewInt(1))
	two := ctx.Protect(ctx.NewInt(2))
	defer func() {
		ctx.Unprotect(one)
		ctx.Unprotect(two)
	}()

	a := NewAttrTable()
	b := NewAttrTable()
	a.Set("x", one)
	b.Set("x", two)
	tab := NewAttrTable()
	tab.AddParent(a, false)
	tab.AddParent(b, true)
	if tab.Get("x") != two {
		t.Error("prepended parent should be searched first")
	}
}

func TestAttrTableForEachOrder(t *testing.T) {
	ctx, _ := newTestContext(t)
	defer ctx.Destroy()
	v := ctx.Protect(ctx.NewInt(0))
	defer ctx.Unprotect(v)

	tab := NewAttrTable()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		tab.Set(n, v)
	}
	var got []string
	tab.ForEach(func(name string, _ *Value) bool {
		got = append(got, name)
		return true
	})
	if len(got) != 3 || got[0] != "c" || got[1] != "a" || got[2] != "b" {
		t.Errorf("ForEach order = %v, want insertion order %v", got, names)
	}

	tab.Delete("a")
	got = got[:0]
	tab.ForEach(func(name string, _ *Value) bool {
		got = append(got, name)
		return true
	})
	if len(got) != 2 || got[0] != "c" || got[1] != "b" {
		t.Errorf("ForEach after delete = %v", got)
	}
}

func TestAttrTableCycleSafe(t *testing.T) {
	// A cyclic parent chain must terminate lookup.
	a := NewAttrTable()
	b := NewAttrTable()
	a.AddParent(b, false)
	b.AddParent(a, false)
	if a.Get("missing") != nil {
		t.Error("lookup in a cyclic chain should miss cleanly")
	}
}
