package wings

// NewClass creates a class value with the given direct bases. With no bases,
// object becomes the sole base. The class's instance-attribute template
// inherits every base's template in declaration order, giving depth-first
// left-to-right method resolution.
func (ctx *Context) NewClass(name string, bases []*Value) *Value {
	for _, b := range bases {
		if !b.IsClass() {
			ctx.RaiseException(TypeError, "class bases must be classes")
			return nil
		}
		ctx.Protect(b)
	}
	defer func() {
		for _, b := range bases {
			ctx.Unprotect(b)
		}
	}()

	cls := ctx.alloc()
	if cls == nil {
		return nil
	}
	ctx.Protect(cls)
	defer ctx.Unprotect(cls)

	c := &Class{
		Name:     name,
		Template: NewAttrTable(),
		Module:   ctx.CurrentModule(),
	}
	cls.kind = KindClass
	cls.typ = kindNames[KindClass]
	cls.data = c
	c.Template.Set("__class__", cls)
	cls.attrs.AddParent(ctx.builtins.object.Class().Template, false)

	if len(bases) == 0 {
		bases = []*Value{ctx.builtins.object}
	}
	for _, b := range bases {
		c.Template.AddParent(b.Class().Template, false)
		c.Bases = append(c.Bases, b)
	}
	basesTuple := ctx.NewTuple(bases)
	if basesTuple == nil {
		return nil
	}
	cls.attrs.Set("__bases__", basesTuple)

	tostr := ctx.NewMethod(classStr, nil, "__str__")
	if tostr == nil {
		return nil
	}
	cls.attrs.Set("__str__", tostr)

	// The constructor thunk allocates an instance and forwards to __init__.
	c.Userdata = cls
	c.Ctor = instanceCtor

	// The default __init__ chains to the first base's.
	init := ctx.NewMethod(defaultInit, cls, name+".__init__")
	if init == nil {
		return nil
	}
	init.LinkReference(cls)
	c.Template.Set("__init__", init)

	return cls
}

// classStr is the __str__ of class objects themselves.
func classStr(ctx *Context, args []*Value, kwargs *Value, userdata interface{}) *Value {
	if len(args) != 1 {
		ctx.RaiseArgumentCountError(len(args), 1)
		return nil
	}
	return ctx.NewString("<class '" + args[0].Class().Name + "'>")
}

// instanceCtor implements instance = class(args...): allocate a raw value
// tagged with the class name, materialize the instance-attribute template,
// then invoke __init__ if the instance has one.
func instanceCtor(ctx *Context, args []*Value, kwargs *Value, userdata interface{}) *Value {
	cls := userdata.(*Value)
	c := cls.Class()

	instance := ctx.alloc()
	if instance == nil {
		return nil
	}
	ctx.Protect(instance)
	defer ctx.Unprotect(instance)

	instance.kind = KindInstance
	instance.typ = c.Name
	instance.attrs = c.Template.Copy()

	if init := ctx.HasAttr(instance, "__init__"); init != nil && init.IsFunc() {
		ret := ctx.Call(init, args, kwargs)
		if ret == nil {
			return nil
		}
		if !ret.IsNone() {
			ctx.RaiseException(TypeError, "__init__() returned a non NoneType type")
			return nil
		}
	}
	return instance
}

// defaultInit forwards construction arguments to the first base's __init__.
func defaultInit(ctx *Context, args []*Value, kwargs *Value, userdata interface{}) *Value {
	cls := userdata.(*Value)
	if len(args) < 1 {
		ctx.RaiseArgumentCountError(len(args), -1)
		return nil
	}
	bases := cls.Class().Bases
	if len(bases) == 0 {
		return ctx.builtins.none
	}
	if baseInit := ctx.GetAttrFromBase(args[0], "__init__", bases[0]); baseInit != nil {
		ret := ctx.Call(baseInit, args[1:], kwargs)
		if ret == nil {
			return nil
		}
		if !ret.IsNone() {
			ctx.RaiseException(TypeError, "__init__() returned a non NoneType type")
			return nil
		}
	}
	return ctx.builtins.none
}

// BindMethod installs a native method on a class's instance template.
func (ctx *Context) BindMethod(cls *Value, name string, fn NativeFunc, userdata interface{}) *Value {
	ctx.Protect(cls)
	defer ctx.Unprotect(cls)
	m := ctx.NewMethod(fn, userdata, name)
	if m == nil {
		return nil
	}
	cls.Class().Template.Set(name, m)
	return m
}

// AddAttributeToClass sets an attribute on a class's instance template, so
// existing template copies are unaffected but new instances see it.
func (ctx *Context) AddAttributeToClass(cls *Value, name string, value *Value) {
	cls.Class().Template.Set(name, value)
}

// IsInstance reports whether obj's class, or any ancestor reached through
// __bases__, is one of types.
func (ctx *Context) IsInstance(obj *Value, types []*Value) bool {
	cls := obj.attrs.Get("__class__")
	if cls == nil {
		return false
	}
	queue := []*Value{cls}
	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]
		for _, t := range types {
			if head == t {
				return true
			}
		}
		if bases := head.attrs.GetLocal("__bases__"); bases != nil && bases.IsTuple() {
			queue = append(queue, bases.Elems()...)
		}
	}
	return false
}
