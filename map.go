package wings

// Builtin methods for dict and set.

// hashableKey validates that a value may be used as a key, raising TypeError
// otherwise.
func hashableKey(ctx *Context, v *Value) bool {
	if !v.IsHashable() {
		ctx.RaiseExceptionf(TypeError, "unhashable type: '%s'", v.TypeName())
		return false
	}
	return true
}

func initDictClass(ctx *Context) {
	cls := ctx.builtins.dictClass
	bind := func(name string, fn NativeFunc) { ctx.BindMethod(cls, name, fn, nil) }

	bind("__len__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewInt(int64(args[0].Dict().Len()))
	})
	bind("__nonzero__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.Bool(args[0].Dict().Len() > 0)
	})
	bind("__getitem__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !hashableKey(ctx, args[1]) {
			return nil
		}
		v, ok := args[0].Dict().Get(args[1])
		if !ok {
			ctx.raiseKeyError(args[1])
			return nil
		}
		return v
	})
	bind("__setitem__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 3) {
			return nil
		}
		if !hashableKey(ctx, args[1]) {
			return nil
		}
		d := args[0].Dict()
		if d.Len() >= ctx.config.MaxCollectionSize {
			ctx.RaiseException(MemoryError, "collection size limit reached")
			return nil
		}
		d.Set(args[1], args[2])
		return ctx.None()
	})
	bind("__contains__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !hashableKey(ctx, args[1]) {
			return nil
		}
		_, ok := args[0].Dict().Get(args[1])
		return ctx.Bool(ok)
	})
	bind("__str__", containerStr)
	bind("keys", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewList(args[0].Dict().Keys())
	})
	bind("values", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		var vals []*Value
		args[0].Dict().forEach(func(_, v *Value) bool {
			vals = append(vals, v)
			return true
		})
		return ctx.NewList(vals)
	})
	bind("items", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		out := ctx.NewList(nil)
		if out == nil {
			return nil
		}
		ctx.Protect(out)
		defer ctx.Unprotect(out)
		failed := false
		args[0].Dict().forEach(func(k, v *Value) bool {
			pair := ctx.NewTuple([]*Value{k, v})
			if pair == nil {
				failed = true
				return false
			}
			out.data = append(out.Elems(), pair)
			return true
		})
		if failed {
			return nil
		}
		return out
	})
	bind("get", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		var def *Value
		switch len(args) {
		case 2:
			def = ctx.None()
		case 3:
			def = args[2]
		default:
			ctx.RaiseArgumentCountError(len(args), 3)
			return nil
		}
		if !hashableKey(ctx, args[1]) {
			return nil
		}
		if v, ok := args[0].Dict().Get(args[1]); ok {
			return v
		}
		return def
	})
	bind("pop", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !hashableKey(ctx, args[1]) {
			return nil
		}
		d := args[0].Dict()
		v, ok := d.Get(args[1])
		if !ok {
			ctx.raiseKeyError(args[1])
			return nil
		}
		d.Delete(args[1])
		return v
	})
	bind("clear", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		args[0].data = NewDict()
		return ctx.None()
	})
}

func initSetClass(ctx *Context) {
	cls := ctx.builtins.setClass
	bind := func(name string, fn NativeFunc) { ctx.BindMethod(cls, name, fn, nil) }

	bind("__len__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewInt(int64(args[0].Dict().Len()))
	})
	bind("__nonzero__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.Bool(args[0].Dict().Len() > 0)
	})
	bind("__contains__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !hashableKey(ctx, args[1]) {
			return nil
		}
		_, ok := args[0].Dict().Get(args[1])
		return ctx.Bool(ok)
	})
	bind("__str__", containerStr)
	bind("add", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !hashableKey(ctx, args[1]) {
			return nil
		}
		d := args[0].Dict()
		if d.Len() >= ctx.config.MaxCollectionSize {
			ctx.RaiseException(MemoryError, "collection size limit reached")
			return nil
		}
		d.Set(args[1], ctx.None())
		return ctx.None()
	})
	bind("remove", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !hashableKey(ctx, args[1]) {
			return nil
		}
		if !args[0].Dict().Delete(args[1]) {
			ctx.raiseKeyError(args[1])
			return nil
		}
		return ctx.None()
	})
	bind("discard", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !hashableKey(ctx, args[1]) {
			return nil
		}
		args[0].Dict().Delete(args[1])
		return ctx.None()
	})
	bind("elems", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewList(args[0].Dict().Keys())
	})
}

// raiseKeyError raises KeyError carrying the repr of the missing key.
func (ctx *Context) raiseKeyError(key *Value) {
	s := "<exception str() failed>"
	if repr := ctx.ToRepr(key); repr != nil {
		s = repr.String()
	} else {
		ctx.ClearException()
	}
	ctx.RaiseException(KeyError, s)
}
