package wings

import (
	"fmt"

	"github.com/zephyrtronium/contains"
)

// The heap is an arena owned by the Context. Inter-value edges are
// non-owning; reachability from the root set alone keeps a value alive.
// Collection is mark-and-sweep over the arena.

// alloc registers a new default-initialized value in the arena, running a
// collection first if the trigger policy calls for one. It returns nil with
// MemoryError pending if the live count would exceed the configured cap.
func (ctx *Context) alloc() *Value {
	if ctx.gcLock == 0 && float64(len(ctx.mem)) > float64(ctx.lastLive)*ctx.config.GCRunFactor {
		ctx.CollectGarbage()
	}
	if ctx.config.MaxAlloc > 0 && len(ctx.mem) >= ctx.config.MaxAlloc && !ctx.raisingOOM {
		ctx.CollectGarbage()
		if len(ctx.mem) >= ctx.config.MaxAlloc {
			// Constructing the MemoryError itself needs a little headroom,
			// so the cap is suspended while it is raised.
			ctx.raisingOOM = true
			ctx.RaiseException(MemoryError, "allocation limit reached")
			ctx.raisingOOM = false
			return nil
		}
	}
	v := &Value{
		kind:  KindNone,
		typ:   kindNames[KindNone],
		attrs: NewAttrTable(),
		ctx:   ctx,
		id:    nextID(),
	}
	ctx.mem = append(ctx.mem, v)
	return v
}

// newValue allocates a value of the given kind with the given payload. The
// value's attribute table gets the kind's builtin class template as a parent
// when that class exists, which is always outside bootstrap.
func (ctx *Context) newValue(kind Kind, data interface{}) *Value {
	v := ctx.alloc()
	if v == nil {
		return nil
	}
	v.kind = kind
	v.typ = kindNames[kind]
	v.data = data
	if cls := ctx.builtinClassFor(kind); cls != nil {
		v.attrs.AddParent(cls.Class().Template, false)
	}
	return v
}

func (ctx *Context) builtinClassFor(kind Kind) *Value {
	b := &ctx.builtins
	switch kind {
	case KindNone:
		return b.noneClass
	case KindBool:
		return b.boolClass
	case KindInt:
		return b.intClass
	case KindFloat:
		return b.floatClass
	case KindString:
		return b.strClass
	case KindTuple:
		return b.tupleClass
	case KindList:
		return b.listClass
	case KindMap:
		return b.dictClass
	case KindSet:
		return b.setClass
	case KindFunc:
		return b.funcClass
	}
	return nil
}

// Protect pins v in the protection multiset so it survives collections while
// native code holds it across allocations. Calls nest; each Protect needs a
// matching Unprotect. Protecting nil is a no-op. Returns v.
func (ctx *Context) Protect(v *Value) *Value {
	if v == nil {
		return nil
	}
	if e, ok := ctx.protected[v.id]; ok {
		e.n++
	} else {
		ctx.protected[v.id] = &protEntry{v: v, n: 1}
	}
	return v
}

// Unprotect releases one pin on v, erasing the entry at zero.
func (ctx *Context) Unprotect(v *Value) {
	if v == nil {
		return
	}
	e, ok := ctx.protected[v.id]
	if !ok {
		return
	}
	if e.n == 1 {
		delete(ctx.protected, v.id)
	} else {
		e.n--
	}
}

// CollectGarbage runs a full mark-and-sweep collection. Unreachable values
// have their finalizers run, then are removed from the arena. Collection is
// suppressed while the GC lock is held.
func (ctx *Context) CollectGarbage() {
	if ctx.gcLock > 0 {
		return
	}

	var marked contains.Set
	var tables contains.Set
	var work []*Value

	push := func(v *Value) {
		if v != nil && marked.Add(v.id) {
			work = append(work, v)
		}
	}
	var markTable func(t *AttrTable)
	markTable = func(t *AttrTable) {
		if t == nil || !tables.Add(t.id) {
			return
		}
		for _, name := range t.names {
			push(t.slots[name])
		}
		for _, p := range t.parents {
			markTable(p)
		}
	}
	markScope := func(s *scope) {
		for ; s != nil; s = s.parent {
			for _, c := range s.vars {
				push(c.v)
			}
		}
	}

	// Root set.
	push(ctx.currentException)
	push(ctx.lastHandled)
	for _, g := range ctx.globals {
		for _, v := range g {
			push(v)
		}
	}
	for _, e := range ctx.protected {
		push(e.v)
	}
	for _, kw := range ctx.kwargsStack {
		push(kw)
	}
	for _, v := range ctx.builtins.all() {
		push(v)
	}
	push(ctx.argv)
	for _, s := range ctx.scopes {
		markScope(s)
	}

	// Transitive reachability.
	for len(work) > 0 {
		v := work[len(work)-1]
		work = work[:len(work)-1]

		switch v.kind {
		case KindTuple, KindList:
			for _, e := range v.Elems() {
				push(e)
			}
		case KindMap, KindSet:
			v.Dict().forEach(func(k, val *Value) bool {
				push(k)
				push(val)
				return true
			})
		case KindFunc:
			fn := v.Func()
			push(fn.Self)
			if fn.Def != nil {
				for _, d := range fn.Def.Defaults {
					push(d)
				}
				markScope(fn.Def.Enclosing)
			}
		case KindClass:
			cls := v.Class()
			for _, b := range cls.Bases {
				push(b)
			}
			markTable(cls.Template)
		}

		markTable(v.attrs)
		for _, r := range v.refs {
			push(r)
		}
	}

	// Partition the arena. Add reports whether the id was absent from the
	// mark set, so a successful Add here identifies garbage.
	var dead []*Value
	live := ctx.mem[:0]
	for _, v := range ctx.mem {
		if marked.Add(v.id) {
			dead = append(dead, v)
		} else {
			live = append(live, v)
		}
	}
	for i := len(live); i < len(ctx.mem); i++ {
		ctx.mem[i] = nil
	}

	// Finalizers run before storage is released. They must not allocate, so
	// the GC lock is held while they run. A finalizer that panics is
	// reported and the sweep continues.
	ctx.gcLock++
	for _, v := range dead {
		if v.fin != nil {
			fin := v.fin
			v.fin = nil
			ctx.runFinalizer(v, fin)
		}
	}
	ctx.gcLock--

	ctx.mem = live
	ctx.lastLive = len(ctx.mem)
}

func (ctx *Context) runFinalizer(v *Value, fin *Finalizer) {
	defer func() {
		if r := recover(); r != nil {
			ctx.reportError(fmt.Sprintf("wings: finalizer for %s value panicked: %v", v.TypeName(), r))
		}
	}()
	fin.Fn(v, fin.Userdata)
}

// LiveCount returns the number of values currently in the arena.
func (ctx *Context) LiveCount() int { return len(ctx.mem) }
