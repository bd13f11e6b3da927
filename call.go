package wings

// Call invokes a callable with positional arguments and an optional keyword
// map. Functions and classes are called directly; any other value dispatches
// through its __call__ attribute. kwargs must be nil or a map with string
// keys. Returns nil with an exception pending on failure.
func (ctx *Context) Call(callable *Value, args []*Value, kwargs *Value) *Value {
	if callable.kind != KindFunc && callable.kind != KindClass {
		return ctx.CallMethod(callable, "__call__", args, kwargs)
	}

	if kwargs != nil {
		if !kwargs.IsMap() {
			ctx.RaiseException(TypeError, "keyword arguments must be a dictionary")
			return nil
		}
		ok := true
		kwargs.Dict().forEach(func(k, _ *Value) bool {
			ok = k.IsString()
			return ok
		})
		if !ok {
			ctx.RaiseException(TypeError, "keyword arguments dictionary must only contain string keys")
			return nil
		}
	}

	if len(ctx.currentTrace) >= ctx.config.MaxRecursion {
		// Building the RecursionError calls its class and __init__, which
		// would trip this same check, so the limit is lifted while it is
		// raised.
		limit := ctx.config.MaxRecursion
		ctx.config.MaxRecursion = len(ctx.currentTrace) + 16
		ctx.RaiseException(RecursionError, "maximum recursion depth exceeded")
		ctx.config.MaxRecursion = limit
		return nil
	}

	ctx.Protect(callable)
	defer ctx.Unprotect(callable)
	positional := args
	for _, a := range positional {
		ctx.Protect(a)
	}
	defer func() {
		for _, a := range positional {
			ctx.Unprotect(a)
		}
	}()
	ctx.Protect(kwargs)
	defer ctx.Unprotect(kwargs)

	var (
		fn       *Func
		native   NativeFunc
		userdata interface{}
		module   string
		isFunc   = callable.kind == KindFunc
	)
	if isFunc {
		fn = callable.Func()
		native = fn.Native
		userdata = fn.Userdata
		module = fn.Module
		if fn.Self != nil {
			withSelf := make([]*Value, 0, len(args)+1)
			withSelf = append(withSelf, fn.Self)
			args = append(withSelf, args...)
			ctx.Protect(fn.Self)
			defer ctx.Unprotect(fn.Self)
		}
	} else {
		cls := callable.Class()
		native = cls.Ctor
		userdata = cls.Userdata
		module = cls.Module
	}

	ctx.currentModule = append(ctx.currentModule, module)
	ctx.userdataStack = append(ctx.userdataStack, userdata)
	ctx.kwargsStack = append(ctx.kwargsStack, kwargs)
	if isFunc {
		ctx.currentTrace = append(ctx.currentTrace, TraceFrame{Module: module, Func: fn.Name})
	}

	var ret *Value
	if native != nil {
		ret = native(ctx, args, kwargs, userdata)
	} else {
		ret = ctx.callScripted(fn, args, kwargs)
	}

	if isFunc {
		ctx.currentTrace = ctx.currentTrace[:len(ctx.currentTrace)-1]
	}
	ctx.kwargsStack = ctx.kwargsStack[:len(ctx.kwargsStack)-1]
	ctx.userdataStack = ctx.userdataStack[:len(ctx.userdataStack)-1]
	ctx.currentModule = ctx.currentModule[:len(ctx.currentModule)-1]

	return ret
}

// CallMethod looks up a method on obj and calls it with the given arguments.
func (ctx *Context) CallMethod(obj *Value, name string, args []*Value, kwargs *Value) *Value {
	method := ctx.HasAttr(obj, name)
	if method == nil {
		ctx.RaiseExceptionf(TypeError, "object of type '%s' has no attribute '%s'", obj.TypeName(), name)
		return nil
	}
	return ctx.Call(method, args, kwargs)
}

// CallMethodFromBase looks up a method skipping obj's own attributes, or on a
// specific base class's template, and calls it. Used by scripted super-style
// dispatch.
func (ctx *Context) CallMethodFromBase(obj *Value, name string, args []*Value, kwargs *Value, base *Value) *Value {
	method := ctx.GetAttrFromBase(obj, name, base)
	if method == nil {
		ctx.RaiseAttributeError(obj, name)
		return nil
	}
	return ctx.Call(method, args, kwargs)
}

// callScripted binds declared parameters and executes a compiled body.
//
// Binding order: declared parameters fill left-to-right from positionals,
// then from keywords, then from defaults. Excess positionals go to *args if
// declared, excess keywords to **kwargs if declared; otherwise TypeError.
func (ctx *Context) callScripted(fn *Func, args []*Value, kwargs *Value) *Value {
	def := fn.Def
	sc := newScope(def.Enclosing)
	sc.moduleLevel = def.ModuleLevel

	np := len(def.Params)
	filled := make([]bool, np)

	// Positional parameters.
	n := len(args)
	if n > np {
		n = np
	}
	for i := 0; i < n; i++ {
		sc.define(def.Params[i], args[i])
		filled[i] = true
	}
	if len(args) > np {
		if def.VarArgs == "" {
			ctx.RaiseArgumentCountError(len(args), np)
			return nil
		}
		rest := ctx.NewTuple(args[np:])
		if rest == nil {
			return nil
		}
		sc.define(def.VarArgs, rest)
	} else if def.VarArgs != "" {
		empty := ctx.NewTuple(nil)
		if empty == nil {
			return nil
		}
		sc.define(def.VarArgs, empty)
	}

	// Keyword parameters.
	var extra *Value
	if def.KwArgs != "" {
		extra = ctx.NewMap()
		if extra == nil {
			return nil
		}
		sc.define(def.KwArgs, extra)
	}
	failed := false
	if kwargs != nil {
		kwargs.Dict().forEach(func(k, v *Value) bool {
			name := k.String()
			for i, p := range def.Params {
				if p == name {
					if filled[i] {
						ctx.RaiseExceptionf(TypeError, "got multiple values for argument '%s'", name)
						failed = true
						return false
					}
					sc.define(name, v)
					filled[i] = true
					return true
				}
			}
			if extra == nil {
				ctx.RaiseExceptionf(TypeError, "got an unexpected keyword argument '%s'", name)
				failed = true
				return false
			}
			extra.Dict().Set(k, v)
			return true
		})
	}
	if failed {
		return nil
	}

	// Defaults are declared in reverse from the tail.
	for i := range def.Params {
		if filled[i] {
			continue
		}
		di := i - (np - len(def.Defaults))
		if di < 0 {
			ctx.RaiseExceptionf(TypeError, "missing required argument '%s'", def.Params[i])
			return nil
		}
		sc.define(def.Params[i], def.Defaults[di])
	}

	ctx.scopes = append(ctx.scopes, sc)
	ret, ctrl := ctx.execBlock(def.Body, sc)
	ctx.scopes = ctx.scopes[:len(ctx.scopes)-1]

	switch ctrl {
	case ctrlNone:
		return ctx.builtins.none
	case ctrlReturn:
		if ret == nil {
			return ctx.builtins.none
		}
		return ret
	case ctrlError:
		return nil
	}
	// break or continue escaping a function body
	ctx.RaiseException(SyntaxError, "'break' or 'continue' outside of loop")
	return nil
}

// ParseKwargs extracts the named keys from a kwargs map. Missing keys yield
// nil entries. A nil kwargs map yields all nils.
func (ctx *Context) ParseKwargs(kwargs *Value, keys []string) []*Value {
	out := make([]*Value, len(keys))
	if kwargs == nil {
		return out
	}
	for i, key := range keys {
		kwargs.Dict().forEach(func(k, v *Value) bool {
			if k.IsString() && k.String() == key {
				out[i] = v
				return false
			}
			return true
		})
	}
	return out
}
