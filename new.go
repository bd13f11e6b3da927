package wings

// Value constructors for the embedding API. Every constructor returns nil
// with an exception pending on failure, like all other runtime primitives.

// defaultFuncName is the pretty name given to anonymous functions.
const defaultFuncName = "<anonymous>"

// NewBool returns the canonical boolean singleton for b.
func (ctx *Context) NewBool(b bool) *Value { return ctx.Bool(b) }

// NewInt creates an int value.
func (ctx *Context) NewInt(i int64) *Value {
	return ctx.newValue(KindInt, i)
}

// NewFloat creates a float value.
func (ctx *Context) NewFloat(f float64) *Value {
	return ctx.newValue(KindFloat, f)
}

// NewString creates a str value.
func (ctx *Context) NewString(s string) *Value {
	return ctx.newValue(KindString, s)
}

// NewTuple creates a tuple of the given elements. The elements are copied.
func (ctx *Context) NewTuple(elems []*Value) *Value {
	if len(elems) > ctx.config.MaxCollectionSize {
		ctx.RaiseException(MemoryError, "collection size limit reached")
		return nil
	}
	return ctx.newValue(KindTuple, append([]*Value{}, elems...))
}

// NewList creates a list of the given elements. The elements are copied.
func (ctx *Context) NewList(elems []*Value) *Value {
	if len(elems) > ctx.config.MaxCollectionSize {
		ctx.RaiseException(MemoryError, "collection size limit reached")
		return nil
	}
	return ctx.newValue(KindList, append([]*Value{}, elems...))
}

// NewMap creates an empty map value.
func (ctx *Context) NewMap() *Value {
	return ctx.newValue(KindMap, NewDict())
}

// NewMapOf creates a map value from parallel key and value slices. Keys must
// be hashable; an unhashable key raises TypeError.
func (ctx *Context) NewMapOf(keys, values []*Value) *Value {
	m := ctx.NewMap()
	if m == nil {
		return nil
	}
	ctx.Protect(m)
	defer ctx.Unprotect(m)
	for i, k := range keys {
		if !k.IsHashable() {
			ctx.RaiseExceptionf(TypeError, "unhashable type: '%s'", k.TypeName())
			return nil
		}
		m.Dict().Set(k, values[i])
	}
	return m
}

// NewSet creates a set value of the given elements. Elements must be
// hashable; an unhashable element raises TypeError.
func (ctx *Context) NewSet(elems []*Value) *Value {
	s := ctx.newValue(KindSet, NewDict())
	if s == nil {
		return nil
	}
	ctx.Protect(s)
	defer ctx.Unprotect(s)
	for _, e := range elems {
		if !e.IsHashable() {
			ctx.RaiseExceptionf(TypeError, "unhashable type: '%s'", e.TypeName())
			return nil
		}
		s.Dict().Set(e, ctx.builtins.none)
	}
	return s
}

// NewFunction creates a native function value. The pretty name appears in
// tracebacks; an empty name gets a default.
func (ctx *Context) NewFunction(fn NativeFunc, userdata interface{}, prettyName string) *Value {
	if prettyName == "" {
		prettyName = defaultFuncName
	}
	return ctx.newValue(KindFunc, &Func{
		Native:   fn,
		Userdata: userdata,
		Name:     prettyName,
		Module:   ctx.CurrentModule(),
	})
}

// NewMethod creates a native function value flagged as a method, so that
// attribute lookup binds it to its receiver.
func (ctx *Context) NewMethod(fn NativeFunc, userdata interface{}, prettyName string) *Value {
	v := ctx.NewFunction(fn, userdata, prettyName)
	if v == nil {
		return nil
	}
	v.Func().IsMethod = true
	return v
}

// NewUserdata wraps an opaque host pointer with a type tag.
func (ctx *Context) NewUserdata(typ string, data interface{}) *Value {
	v := ctx.alloc()
	if v == nil {
		return nil
	}
	v.kind = KindUserdata
	v.typ = typ
	v.data = data
	return v
}

// HasAttr looks up an attribute, returning nil without raising when it does
// not exist. A found method is returned as a fresh bound function.
func (ctx *Context) HasAttr(v *Value, name string) *Value {
	attr := v.attrs.Get(name)
	if attr == nil {
		return nil
	}
	return ctx.bind(v, attr)
}

// GetAttr looks up an attribute, raising AttributeError when it does not
// exist. A found method is returned as a fresh bound function.
func (ctx *Context) GetAttr(v *Value, name string) *Value {
	attr := v.attrs.Get(name)
	if attr == nil {
		ctx.RaiseAttributeError(v, name)
		return nil
	}
	return ctx.bind(v, attr)
}

// GetAttrFromBase looks up an attribute skipping v's own entries. With a
// non-nil base class, only that class's instance template is searched; used
// to reach an overridden method from a subclass. Returns nil without raising
// when the attribute does not exist.
func (ctx *Context) GetAttrFromBase(v *Value, name string, base *Value) *Value {
	var attr *Value
	if base == nil {
		attr = v.attrs.GetFromBase(name)
	} else {
		attr = base.Class().Template.Get(name)
	}
	if attr == nil {
		return nil
	}
	return ctx.bind(v, attr)
}

// SetAttr sets an attribute on v's own table. Writes never mutate parent
// tables.
func (ctx *Context) SetAttr(v *Value, name string, value *Value) {
	v.attrs.Set(name, value)
}

// bind returns attr, replaced by a fresh bound copy when it is a method.
// Each lookup allocates its own bound function rather than mutating the
// shared method value.
func (ctx *Context) bind(recv, attr *Value) *Value {
	if attr.kind != KindFunc || !attr.Func().IsMethod || attr.Func().Self != nil {
		return attr
	}
	fn := *attr.Func()
	fn.Self = recv
	// The receiver and method are reachable through the caller's object, but
	// the fresh copy must not be swept before it is returned.
	ctx.gcLock++
	bound := ctx.newValue(KindFunc, &fn)
	ctx.gcLock--
	return bound
}
