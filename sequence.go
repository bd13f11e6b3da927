package wings

import (
	"strconv"
	"strings"
)

// Builtin methods for str, tuple, and list.

// normIndex converts a possibly negative index, reporting false when it is
// out of bounds.
func normIndex(i int64, size int) (int, bool) {
	if i < 0 {
		i += int64(size)
	}
	if i < 0 || i >= int64(size) {
		return 0, false
	}
	return int(i), true
}

// sliceBounds extracts and normalizes a slice object's start, stop, and step
// against a sequence size.
func sliceBounds(ctx *Context, sl *Value, size int) (start, stop, step int, ok bool) {
	get := func(name string, def int) (int, bool) {
		v := ctx.HasAttr(sl, name)
		if v == nil || v.IsNone() {
			return def, true
		}
		if !v.IsInt() {
			ctx.RaiseException(TypeError, "slice indices must be integers or None")
			return 0, false
		}
		return int(v.Int()), true
	}
	step, ok = get("step", 1)
	if !ok {
		return
	}
	if step == 0 {
		ctx.RaiseException(ValueError, "slice step cannot be zero")
		return 0, 0, 0, false
	}
	defStart, defStop := 0, size
	if step < 0 {
		defStart, defStop = size-1, -size-1
	}
	start, ok = get("start", defStart)
	if !ok {
		return
	}
	stop, ok = get("stop", defStop)
	if !ok {
		return
	}
	clamp := func(i int) int {
		if i < 0 {
			i += size
		}
		if i < 0 {
			if step < 0 {
				return -1
			}
			return 0
		}
		if i >= size {
			if step < 0 {
				return size - 1
			}
			return size
		}
		return i
	}
	return clamp(start), clamp(stop), step, true
}

func isSlice(ctx *Context, v *Value) bool {
	return ctx.builtins.sliceClass != nil && v.kind == KindInstance &&
		ctx.IsInstance(v, []*Value{ctx.builtins.sliceClass})
}

func initStrClass(ctx *Context) {
	cls := ctx.builtins.strClass
	bind := func(name string, fn NativeFunc) { ctx.BindMethod(cls, name, fn, nil) }

	bind("__nonzero__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.Bool(len(args[0].String()) > 0)
	})
	bind("__len__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewInt(int64(len(args[0].String())))
	})
	bind("__str__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return args[0]
	})
	bind("__repr__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewString(strconv.Quote(args[0].String()))
	})
	bind("__hash__", hashSelf)
	bind("__int__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		s := strings.TrimSpace(args[0].String())
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			ctx.RaiseExceptionf(ValueError, "invalid literal for int(): '%s'", args[0].String())
			return nil
		}
		return ctx.NewInt(i)
	})
	bind("__float__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		s := strings.TrimSpace(args[0].String())
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			ctx.RaiseExceptionf(ValueError, "could not convert string to float: '%s'", args[0].String())
			return nil
		}
		return ctx.NewFloat(f)
	})
	bind("__eq__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		return ctx.Bool(args[1].IsString() && args[0].String() == args[1].String())
	})
	bind("__lt__", strCompare(func(c int) bool { return c < 0 }))
	bind("__le__", strCompare(func(c int) bool { return c <= 0 }))
	bind("__gt__", strCompare(func(c int) bool { return c > 0 }))
	bind("__ge__", strCompare(func(c int) bool { return c >= 0 }))
	bind("__add__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !args[1].IsString() {
			ctx.RaiseExceptionf(TypeError, "can only concatenate str to str, not '%s'", args[1].TypeName())
			return nil
		}
		return ctx.NewString(args[0].String() + args[1].String())
	})
	bind("__mul__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !args[1].IsInt() {
			ctx.RaiseExceptionf(TypeError, "can't multiply str by non-int of type '%s'", args[1].TypeName())
			return nil
		}
		return replicateString(ctx, args[0].String(), args[1].Int())
	})
	bind("__contains__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !args[1].IsString() {
			ctx.RaiseArgumentTypeError(1, "str")
			return nil
		}
		return ctx.Bool(strings.Contains(args[0].String(), args[1].String()))
	})
	bind("__getitem__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		s := args[0].String()
		if isSlice(ctx, args[1]) {
			start, stop, step, ok := sliceBounds(ctx, args[1], len(s))
			if !ok {
				return nil
			}
			var sb strings.Builder
			for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
				sb.WriteByte(s[i])
			}
			return ctx.NewString(sb.String())
		}
		if !args[1].IsInt() {
			ctx.RaiseArgumentTypeError(1, "int")
			return nil
		}
		i, ok := normIndex(args[1].Int(), len(s))
		if !ok {
			ctx.RaiseException(IndexError, "index out of range")
			return nil
		}
		return ctx.NewString(s[i : i+1])
	})

	bind("upper", strMap(strings.ToUpper))
	bind("lower", strMap(strings.ToLower))
	bind("strip", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewString(strings.TrimSpace(args[0].String()))
	})
	bind("startswith", strPredicate(strings.HasPrefix))
	bind("endswith", strPredicate(strings.HasSuffix))
	bind("find", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !args[1].IsString() {
			ctx.RaiseArgumentTypeError(1, "str")
			return nil
		}
		return ctx.NewInt(int64(strings.Index(args[0].String(), args[1].String())))
	})
	bind("replace", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 3) {
			return nil
		}
		if !args[1].IsString() || !args[2].IsString() {
			ctx.RaiseArgumentTypeError(1, "str")
			return nil
		}
		return ctx.NewString(strings.ReplaceAll(args[0].String(), args[1].String(), args[2].String()))
	})
	bind("split", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		var parts []string
		switch len(args) {
		case 1:
			parts = strings.Fields(args[0].String())
		case 2:
			if !args[1].IsString() {
				ctx.RaiseArgumentTypeError(1, "str")
				return nil
			}
			parts = strings.Split(args[0].String(), args[1].String())
		default:
			ctx.RaiseArgumentCountError(len(args), 2)
			return nil
		}
		elems := make([]*Value, 0, len(parts))
		for _, p := range parts {
			s := ctx.NewString(p)
			if s == nil {
				return nil
			}
			ctx.Protect(s)
			elems = append(elems, s)
		}
		defer func() {
			for _, e := range elems {
				ctx.Unprotect(e)
			}
		}()
		return ctx.NewList(elems)
	})
	bind("join", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		sep := args[0].String()
		var parts []string
		ok := ctx.Iterate(args[1], func(v *Value) bool {
			if !v.IsString() {
				ctx.RaiseExceptionf(TypeError, "sequence item: expected str, got '%s'", v.TypeName())
				return false
			}
			parts = append(parts, v.String())
			return true
		})
		if !ok {
			return nil
		}
		return ctx.NewString(strings.Join(parts, sep))
	})
}

func strMap(fn func(string) string) NativeFunc {
	return func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 1) {
			return nil
		}
		return ctx.NewString(fn(args[0].String()))
	}
}

func strPredicate(fn func(s, affix string) bool) NativeFunc {
	return func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !args[1].IsString() {
			ctx.RaiseArgumentTypeError(1, "str")
			return nil
		}
		return ctx.Bool(fn(args[0].String(), args[1].String()))
	}
}

func strCompare(pass func(c int) bool) NativeFunc {
	return func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !args[1].IsString() {
			ctx.RaiseArgumentTypeError(1, "str")
			return nil
		}
		return ctx.Bool(pass(strings.Compare(args[0].String(), args[1].String())))
	}
}

// seqGetItem serves __getitem__ for tuples and lists, including slices.
func seqGetItem(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 2) {
		return nil
	}
	elems := args[0].Elems()
	if isSlice(ctx, args[1]) {
		start, stop, step, ok := sliceBounds(ctx, args[1], len(elems))
		if !ok {
			return nil
		}
		var out []*Value
		for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
			out = append(out, elems[i])
		}
		if args[0].IsTuple() {
			return ctx.NewTuple(out)
		}
		return ctx.NewList(out)
	}
	if !args[1].IsInt() {
		ctx.RaiseArgumentTypeError(1, "int")
		return nil
	}
	i, ok := normIndex(args[1].Int(), len(elems))
	if !ok {
		ctx.RaiseException(IndexError, "index out of range")
		return nil
	}
	return elems[i]
}

func seqLen(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 1) {
		return nil
	}
	return ctx.NewInt(int64(len(args[0].Elems())))
}

// seqContains tests membership by dispatching == against each element.
func seqContains(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 2) {
		return nil
	}
	for _, e := range args[0].Elems() {
		eq := ctx.BinaryOp(BinOpEq, e, args[1])
		if eq == nil {
			return nil
		}
		if eq.Bool() {
			return ctx.True()
		}
	}
	return ctx.False()
}

// seqEq compares element-wise, dispatching == per element.
func seqEq(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 2) {
		return nil
	}
	if args[1].kind != args[0].kind {
		return ctx.False()
	}
	a, b := args[0].Elems(), args[1].Elems()
	if len(a) != len(b) {
		return ctx.False()
	}
	for i := range a {
		eq := ctx.BinaryOp(BinOpEq, a[i], b[i])
		if eq == nil {
			return nil
		}
		if !eq.Bool() {
			return ctx.False()
		}
	}
	return ctx.True()
}

func initTupleClass(ctx *Context) {
	cls := ctx.builtins.tupleClass
	ctx.BindMethod(cls, "__getitem__", seqGetItem, nil)
	ctx.BindMethod(cls, "__len__", seqLen, nil)
	ctx.BindMethod(cls, "__contains__", seqContains, nil)
	ctx.BindMethod(cls, "__eq__", seqEq, nil)
	ctx.BindMethod(cls, "__nonzero__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.Bool(len(args[0].Elems()) > 0)
	}, nil)
	ctx.BindMethod(cls, "__hash__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !args[0].IsHashable() {
			ctx.RaiseExceptionf(TypeError, "unhashable type: 'tuple'")
			return nil
		}
		return ctx.NewInt(int64(args[0].primHash()))
	}, nil)
	ctx.BindMethod(cls, "__add__", seqConcat, nil)
	ctx.BindMethod(cls, "__str__", containerStr, nil)
}

func initListClass(ctx *Context) {
	cls := ctx.builtins.listClass
	bind := func(name string, fn NativeFunc) { ctx.BindMethod(cls, name, fn, nil) }

	bind("__getitem__", seqGetItem)
	bind("__len__", seqLen)
	bind("__contains__", seqContains)
	bind("__eq__", seqEq)
	bind("__add__", seqConcat)
	bind("__str__", containerStr)
	bind("__nonzero__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.Bool(len(args[0].Elems()) > 0)
	})
	bind("__setitem__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 3) {
			return nil
		}
		if !args[1].IsInt() {
			ctx.RaiseArgumentTypeError(1, "int")
			return nil
		}
		elems := args[0].Elems()
		i, ok := normIndex(args[1].Int(), len(elems))
		if !ok {
			ctx.RaiseException(IndexError, "index out of range")
			return nil
		}
		elems[i] = args[2]
		return ctx.None()
	})
	bind("append", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if len(args[0].Elems()) >= ctx.config.MaxCollectionSize {
			ctx.RaiseException(MemoryError, "collection size limit reached")
			return nil
		}
		args[0].data = append(args[0].Elems(), args[1])
		return ctx.None()
	})
	bind("insert", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 3) {
			return nil
		}
		if !args[1].IsInt() {
			ctx.RaiseArgumentTypeError(1, "int")
			return nil
		}
		elems := args[0].Elems()
		i := args[1].Int()
		if i < 0 {
			i += int64(len(elems))
		}
		if i < 0 {
			i = 0
		}
		if i > int64(len(elems)) {
			i = int64(len(elems))
		}
		elems = append(elems, nil)
		copy(elems[i+1:], elems[i:])
		elems[i] = args[2]
		args[0].data = elems
		return ctx.None()
	})
	bind("pop", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		elems := args[0].Elems()
		i := int64(len(elems) - 1)
		switch len(args) {
		case 1:
		case 2:
			if !args[1].IsInt() {
				ctx.RaiseArgumentTypeError(1, "int")
				return nil
			}
			i = args[1].Int()
		default:
			ctx.RaiseArgumentCountError(len(args), 2)
			return nil
		}
		k, ok := normIndex(i, len(elems))
		if !ok {
			ctx.RaiseException(IndexError, "pop index out of range")
			return nil
		}
		v := elems[k]
		args[0].data = append(elems[:k], elems[k+1:]...)
		return v
	})
	bind("remove", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		elems := args[0].Elems()
		for i, e := range elems {
			eq := ctx.BinaryOp(BinOpEq, e, args[1])
			if eq == nil {
				return nil
			}
			if eq.Bool() {
				args[0].data = append(elems[:i], elems[i+1:]...)
				return ctx.None()
			}
		}
		ctx.RaiseException(ValueError, "list.remove(x): x not in list")
		return nil
	})
	bind("extend", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		ok := ctx.Iterate(args[1], func(v *Value) bool {
			if len(args[0].Elems()) >= ctx.config.MaxCollectionSize {
				ctx.RaiseException(MemoryError, "collection size limit reached")
				return false
			}
			args[0].data = append(args[0].Elems(), v)
			return true
		})
		if !ok {
			return nil
		}
		return ctx.None()
	})
	bind("index", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		for i, e := range args[0].Elems() {
			eq := ctx.BinaryOp(BinOpEq, e, args[1])
			if eq == nil {
				return nil
			}
			if eq.Bool() {
				return ctx.NewInt(int64(i))
			}
		}
		ctx.RaiseException(ValueError, "value not in list")
		return nil
	})
	bind("count", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		var n int64
		for _, e := range args[0].Elems() {
			eq := ctx.BinaryOp(BinOpEq, e, args[1])
			if eq == nil {
				return nil
			}
			if eq.Bool() {
				n++
			}
		}
		return ctx.NewInt(n)
	})
	bind("reverse", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		elems := args[0].Elems()
		for i, j := 0, len(elems)-1; i < j; i, j = i+1, j-1 {
			elems[i], elems[j] = elems[j], elems[i]
		}
		return ctx.None()
	})
	bind("clear", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		args[0].data = []*Value{}
		return ctx.None()
	})
}

func seqConcat(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 2) {
		return nil
	}
	if args[1].kind != args[0].kind {
		ctx.RaiseExceptionf(TypeError, "can only concatenate %s to %s", args[0].TypeName(), args[0].TypeName())
		return nil
	}
	joined := append(append([]*Value{}, args[0].Elems()...), args[1].Elems()...)
	if args[0].IsTuple() {
		return ctx.NewTuple(joined)
	}
	return ctx.NewList(joined)
}
