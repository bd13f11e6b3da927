/*
Package wings implements an embeddable interpreter for a dynamically typed,
indentation-structured scripting language with classes, exceptions,
closures, an iteration protocol, and keyword arguments.

The interpreter is organized around a Context, which owns one instance's
heap, per-module globals, builtin classes, exception state, and call trace.
Contexts share nothing, so a host may run many of them concurrently as long
as each individual Context stays on one goroutine. To start, create a
Context and execute some code:

	ctx, err := wings.NewContext(nil)
	if err != nil {
		log.Fatal(err)
	}
	if ctx.Execute("print(1 + 2)", "example") == nil {
		log.Fatal(ctx.ErrorMessage())
	}

Everything user code touches is a Value: a tagged object carrying its own
attribute table, a back-reference to its Context, and optionally a finalizer
and explicit reference links. Attribute tables form parent chains searched
depth-first, left to right, which is also how multiple inheritance resolves:
a class's instance-attribute template lists its bases' templates as parents,
and an instance's table lists its class's template.

Every operator, conversion, and iteration dispatches through a fixed dunder
name on the left operand — x + y looks up __add__, iter(x) looks up __iter__
— so operator overloading and method dispatch are one mechanism.

Failure is uniform: every runtime primitive returns nil and leaves the
pending exception on the Context, where the host reads it with
CurrentException or formats it with ErrorMessage. Exceptions raised by user
code follow the same path.

Values live in an arena owned by the Context and are reclaimed by a tracing
mark-and-sweep collector; cycles are collected by the first collection that
runs after they become unreachable. Native code that holds a Value across an allocation must pin it
with Protect and release it with Unprotect:

	v := ctx.NewString("held across allocations")
	ctx.Protect(v)
	defer ctx.Unprotect(v)

Hosts extend the interpreter by registering native functions and modules:

	greet := ctx.NewFunction(func(ctx *wings.Context, args []*wings.Value, kwargs *wings.Value, _ interface{}) *wings.Value {
		ctx.Print("hello from Go\n")
		return ctx.None()
	}, nil, "greet")
	ctx.SetGlobal("greet", greet)
*/
package wings
