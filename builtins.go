package wings

import (
	"fmt"
	"strconv"
	"strings"
)

// Builtin class bootstrap. Classes are created raw in a fixed order so the
// cyclic dependencies resolve: object first, then the remaining builtin
// classes, then base wiring, dunder installation, singletons, and finally
// the prelude, which is written in the scripting language itself.

func initLibrary(ctx *Context) error {
	b := &ctx.builtins

	// Everything created here belongs to the __builtins__ module.
	ctx.currentModule = append(ctx.currentModule, "__builtins__")
	defer func() {
		ctx.currentModule = ctx.currentModule[:len(ctx.currentModule)-1]
	}()

	// Step 1: raw class values. Each is assigned to the registry as soon as
	// it exists so it is a collection root from the start.
	b.object = newBuiltinClass(ctx, "object", objectCtor)
	b.typeClass = newBuiltinClass(ctx, "type", typeCtor)
	b.noneClass = newBuiltinClass(ctx, "NoneType", noneCtor)
	b.boolClass = newBuiltinClass(ctx, "bool", boolCtor)
	b.intClass = newBuiltinClass(ctx, "int", intCtor)
	b.floatClass = newBuiltinClass(ctx, "float", floatCtor)
	b.strClass = newBuiltinClass(ctx, "str", strCtor)
	b.tupleClass = newBuiltinClass(ctx, "tuple", tupleCtor)
	b.listClass = newBuiltinClass(ctx, "list", listCtor)
	b.dictClass = newBuiltinClass(ctx, "dict", dictCtor)
	b.setClass = newBuiltinClass(ctx, "set", setCtor)
	b.funcClass = newBuiltinClass(ctx, "function", funcCtor)
	for _, cls := range []*Value{
		b.object, b.typeClass, b.noneClass, b.boolClass, b.intClass,
		b.floatClass, b.strClass, b.tupleClass, b.listClass, b.dictClass,
		b.setClass, b.funcClass,
	} {
		if cls == nil {
			return ctx.errorFromPending()
		}
	}

	// Step 2: object is the universal ancestor.
	objTemplate := b.object.Class().Template
	b.object.attrs.AddParent(objTemplate, false)
	emptyBases := ctx.NewTuple(nil)
	if emptyBases == nil {
		return ctx.errorFromPending()
	}
	b.object.attrs.Set("__bases__", emptyBases)

	// Step 3: every other builtin class subclasses object.
	objBases := ctx.NewTuple([]*Value{b.object})
	if objBases == nil {
		return ctx.errorFromPending()
	}
	for _, cls := range []*Value{
		b.typeClass, b.noneClass, b.boolClass, b.intClass, b.floatClass,
		b.strClass, b.tupleClass, b.listClass, b.dictClass, b.setClass,
		b.funcClass,
	} {
		c := cls.Class()
		c.Template.AddParent(objTemplate, false)
		c.Bases = append(c.Bases, b.object)
		cls.attrs.AddParent(objTemplate, false)
		cls.attrs.Set("__bases__", objBases)
	}

	// Step 4: dunder methods.
	initObjectClass(ctx)
	initNoneClass(ctx)
	initBoolClass(ctx)
	initIntClass(ctx)
	initFloatClass(ctx)
	initStrClass(ctx)
	initTupleClass(ctx)
	initListClass(ctx)
	initDictClass(ctx)
	initSetClass(ctx)

	// Step 5: singletons. Bool values are canonicalized to these two.
	b.none = ctx.newValue(KindNone, nil)
	b.trueV = ctx.newValue(KindBool, true)
	b.falseV = ctx.newValue(KindBool, false)
	if b.none == nil || b.trueV == nil || b.falseV == nil {
		return ctx.errorFromPending()
	}

	// Builtin functions and class names become __builtins__ globals.
	g := map[string]*Value{}
	ctx.globals["__builtins__"] = g

	for name, cls := range map[string]*Value{
		"object": b.object, "type": b.typeClass, "bool": b.boolClass,
		"int": b.intClass, "float": b.floatClass, "str": b.strClass,
		"tuple": b.tupleClass, "list": b.listClass, "dict": b.dictClass,
		"set": b.setClass,
	} {
		g[name] = cls
	}
	for name, fn := range map[string]NativeFunc{
		"print":          builtinPrint,
		"len":            builtinLen,
		"repr":           builtinRepr,
		"hash":           builtinHash,
		"set_class_attr": builtinSetClassAttr,
	} {
		v := ctx.NewFunction(fn, nil, name)
		if v == nil {
			return ctx.errorFromPending()
		}
		g[name] = v
	}
	b.lenFn = g["len"]
	b.reprFn = g["repr"]
	b.hashFn = g["hash"]

	// Step 6: the prelude defines the exception tree, range, slice, the
	// generic sequence iterator, and isinstance.
	if err := ctx.runPrelude(); err != nil {
		return err
	}

	fetch := func(name string) *Value {
		return g[name]
	}
	b.baseException = fetch("BaseException")
	b.systemExit = fetch("SystemExit")
	b.exception = fetch("Exception")
	b.stopIteration = fetch("StopIteration")
	b.arithmeticError = fetch("ArithmeticError")
	b.overflowError = fetch("OverflowError")
	b.zeroDivisionError = fetch("ZeroDivisionError")
	b.attributeError = fetch("AttributeError")
	b.importError = fetch("ImportError")
	b.lookupError = fetch("LookupError")
	b.indexError = fetch("IndexError")
	b.keyError = fetch("KeyError")
	b.memoryError = fetch("MemoryError")
	b.nameError = fetch("NameError")
	b.osError = fetch("OSError")
	b.isADirectoryError = fetch("IsADirectoryError")
	b.runtimeError = fetch("RuntimeError")
	b.notImplementedError = fetch("NotImplementedError")
	b.recursionError = fetch("RecursionError")
	b.syntaxError = fetch("SyntaxError")
	b.typeError = fetch("TypeError")
	b.valueError = fetch("ValueError")
	b.isinstance = fetch("isinstance")
	b.sliceClass = fetch("__Slice")
	b.moduleClass = fetch("__Module")
	for _, v := range ctx.builtins.all() {
		if v == nil {
			return fmt.Errorf("wings: incomplete builtin bootstrap")
		}
	}
	return nil
}

// newBuiltinClass allocates a raw class value without consulting any other
// builtin. The class registers itself in its own instance template under
// __class__.
func newBuiltinClass(ctx *Context, name string, ctor NativeFunc) *Value {
	cls := ctx.alloc()
	if cls == nil {
		return nil
	}
	c := &Class{
		Name:     name,
		Template: NewAttrTable(),
		Ctor:     ctor,
		Module:   "__builtins__",
	}
	cls.kind = KindClass
	cls.typ = kindNames[KindClass]
	cls.data = c
	c.Userdata = cls
	c.Template.Set("__class__", cls)
	return cls
}

// initObjectClass installs the defaults every value inherits.
func initObjectClass(ctx *Context) {
	cls := ctx.builtins.object
	ctx.BindMethod(cls, "__str__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 1) {
			return nil
		}
		return ctx.NewString(fmt.Sprintf("<%s object at 0x%x>", args[0].TypeName(), args[0].id))
	}, nil)
	ctx.BindMethod(cls, "__eq__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		return ctx.Bool(args[0] == args[1])
	}, nil)
	ctx.BindMethod(cls, "__ne__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		eq := ctx.BinaryOp(BinOpEq, args[0], args[1])
		if eq == nil {
			return nil
		}
		return ctx.Bool(!eq.Bool())
	}, nil)
	ctx.BindMethod(cls, "__nonzero__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.True()
	}, nil)
}

// Builtin class constructors. Each tolerates a nil kwargs map, which callers
// pass whenever there are no keyword arguments, including during bootstrap
// before the dict class exists.

func objectCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if len(args) != 0 {
		ctx.RaiseArgumentCountError(len(args), 0)
		return nil
	}
	v := ctx.alloc()
	if v == nil {
		return nil
	}
	v.kind = KindInstance
	v.typ = "object"
	v.attrs = ctx.builtins.object.Class().Template.Copy()
	return v
}

func typeCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if len(args) != 1 {
		ctx.RaiseArgumentCountError(len(args), 1)
		return nil
	}
	if cls := args[0].attrs.Get("__class__"); cls != nil {
		return cls
	}
	ctx.RaiseException(TypeError, "object has no class")
	return nil
}

func noneCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if len(args) != 0 {
		ctx.RaiseArgumentCountError(len(args), 0)
		return nil
	}
	return ctx.builtins.none
}

func boolCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	switch len(args) {
	case 0:
		return ctx.False()
	case 1:
		return ctx.ToBool(args[0])
	}
	ctx.RaiseArgumentCountError(len(args), 1)
	return nil
}

func intCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	switch len(args) {
	case 0:
		return ctx.NewInt(0)
	case 1:
		return ctx.ToInt(args[0])
	}
	ctx.RaiseArgumentCountError(len(args), 1)
	return nil
}

func floatCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	switch len(args) {
	case 0:
		return ctx.NewFloat(0)
	case 1:
		res := ctx.ToFloat(args[0])
		if res == nil {
			return nil
		}
		if res.IsInt() {
			return ctx.NewFloat(res.Float())
		}
		return res
	}
	ctx.RaiseArgumentCountError(len(args), 1)
	return nil
}

func strCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	switch len(args) {
	case 0:
		return ctx.NewString("")
	case 1:
		return ctx.ToStr(args[0])
	}
	ctx.RaiseArgumentCountError(len(args), 1)
	return nil
}

func tupleCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	switch len(args) {
	case 0:
		return ctx.NewTuple(nil)
	case 1:
		elems, ok := collectIterable(ctx, args[0])
		if !ok {
			return nil
		}
		defer ctx.unprotectAll(elems)
		return ctx.NewTuple(elems)
	}
	ctx.RaiseArgumentCountError(len(args), 1)
	return nil
}

func listCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	switch len(args) {
	case 0:
		return ctx.NewList(nil)
	case 1:
		elems, ok := collectIterable(ctx, args[0])
		if !ok {
			return nil
		}
		defer ctx.unprotectAll(elems)
		return ctx.NewList(elems)
	}
	ctx.RaiseArgumentCountError(len(args), 1)
	return nil
}

func dictCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if len(args) != 0 {
		ctx.RaiseArgumentCountError(len(args), 0)
		return nil
	}
	return ctx.NewMap()
}

func setCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	switch len(args) {
	case 0:
		return ctx.NewSet(nil)
	case 1:
		elems, ok := collectIterable(ctx, args[0])
		if !ok {
			return nil
		}
		defer ctx.unprotectAll(elems)
		return ctx.NewSet(elems)
	}
	ctx.RaiseArgumentCountError(len(args), 1)
	return nil
}

func funcCtor(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	ctx.RaiseException(TypeError, "cannot create function instances")
	return nil
}

// collectIterable drains an iterable into a slice whose elements are still
// protected, so the caller can allocate the container that will hold them.
// The caller must unprotect every element once they are attached.
func collectIterable(ctx *Context, obj *Value) ([]*Value, bool) {
	var elems []*Value
	ok := ctx.Iterate(obj, func(v *Value) bool {
		ctx.Protect(v)
		elems = append(elems, v)
		return true
	})
	if !ok {
		ctx.unprotectAll(elems)
		return nil, false
	}
	return elems, true
}

// Builtin functions.

func builtinPrint(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	sep, end := " ", "\n"
	for i, opt := range ctx.ParseKwargs(kwargs, []string{"sep", "end"}) {
		if opt == nil {
			continue
		}
		if !opt.IsString() {
			ctx.RaiseException(TypeError, "sep and end must be strings")
			return nil
		}
		if i == 0 {
			sep = opt.String()
		} else {
			end = opt.String()
		}
	}
	parts := make([]string, 0, len(args))
	for _, a := range args {
		s := ctx.ToStr(a)
		if s == nil {
			return nil
		}
		parts = append(parts, s.String())
	}
	ctx.Print(strings.Join(parts, sep) + end)
	return ctx.None()
}

func builtinLen(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 1) {
		return nil
	}
	return ctx.Len(args[0])
}

func builtinRepr(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 1) {
		return nil
	}
	return ctx.ToRepr(args[0])
}

func builtinHash(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 1) {
		return nil
	}
	return ctx.Hash(args[0])
}

// builtinSetClassAttr installs an attribute on a class's instance template.
// Functions become methods so attribute lookup binds them. The prelude uses
// it to attach the generic iterator to the builtin sequence classes.
func builtinSetClassAttr(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 3) {
		return nil
	}
	if !args[0].IsClass() {
		ctx.RaiseArgumentTypeError(0, "class")
		return nil
	}
	if !args[1].IsString() {
		ctx.RaiseArgumentTypeError(1, "str")
		return nil
	}
	if args[2].IsFunc() {
		args[2].Func().IsMethod = true
	}
	ctx.AddAttributeToClass(args[0], args[1].String(), args[2])
	return ctx.None()
}

// containerStr is the shared __str__ of tuples, lists, dicts, and sets.
// Recursive references render elided, as "[...]" or "{...}".
func containerStr(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 1) {
		return nil
	}
	s, ok := valueToString(ctx, args[0], map[uintptr]bool{})
	if !ok {
		return nil
	}
	return ctx.NewString(s)
}

func valueToString(ctx *Context, v *Value, seen map[uintptr]bool) (string, bool) {
	switch v.kind {
	case KindNone:
		return "None", true
	case KindBool:
		if v.Bool() {
			return "True", true
		}
		return "False", true
	case KindInt:
		return strconv.FormatInt(v.Int(), 10), true
	case KindFloat:
		return formatFloat(v.Float()), true
	case KindString:
		return v.String(), true
	case KindFunc:
		return fmt.Sprintf("<function %s at 0x%x>", v.Func().Name, v.id), true
	case KindClass:
		return fmt.Sprintf("<class '%s'>", v.Class().Name), true
	case KindUserdata:
		return fmt.Sprintf("<userdata at 0x%x>", v.id), true
	case KindTuple, KindList:
		lb, rb := "[", "]"
		if v.IsTuple() {
			lb, rb = "(", ")"
		}
		if seen[v.id] {
			return lb + "..." + rb, true
		}
		seen[v.id] = true
		defer delete(seen, v.id)
		parts := make([]string, 0, len(v.Elems()))
		for _, e := range v.Elems() {
			s, ok := valueToString(ctx, e, seen)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		body := strings.Join(parts, ", ")
		if v.IsTuple() && len(parts) == 1 {
			body += ","
		}
		return lb + body + rb, true
	case KindMap:
		if seen[v.id] {
			return "{...}", true
		}
		seen[v.id] = true
		defer delete(seen, v.id)
		var parts []string
		ok := true
		v.Dict().forEach(func(k, val *Value) bool {
			ks, kok := valueToString(ctx, k, seen)
			vs, vok := valueToString(ctx, val, seen)
			if !kok || !vok {
				ok = false
				return false
			}
			parts = append(parts, ks+": "+vs)
			return true
		})
		if !ok {
			return "", false
		}
		return "{" + strings.Join(parts, ", ") + "}", true
	case KindSet:
		if seen[v.id] {
			return "{...}", true
		}
		seen[v.id] = true
		defer delete(seen, v.id)
		var parts []string
		ok := true
		v.Dict().forEach(func(k, _ *Value) bool {
			s, kok := valueToString(ctx, k, seen)
			if !kok {
				ok = false
				return false
			}
			parts = append(parts, s)
			return true
		})
		if !ok {
			return "", false
		}
		if len(parts) == 0 {
			return "set()", true
		}
		return "{" + strings.Join(parts, ", ") + "}", true
	}
	s := ctx.ToStr(v)
	if s == nil {
		return "", false
	}
	return s.String(), true
}
