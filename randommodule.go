package wings

import "math/rand"

// The random module. Each Context gets its own generator so interpreter
// instances do not share a stream.

func importRandom(ctx *Context) bool {
	rng := rand.New(rand.NewSource(0))

	funcs := map[string]NativeFunc{
		"seed": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 1) {
				return nil
			}
			if !args[0].IsInt() {
				ctx.RaiseArgumentTypeError(0, "int")
				return nil
			}
			rng.Seed(args[0].Int())
			return ctx.None()
		},
		"random": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 0) {
				return nil
			}
			return ctx.NewFloat(rng.Float64())
		},
		"randint": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 2) {
				return nil
			}
			if !args[0].IsInt() || !args[1].IsInt() {
				ctx.RaiseArgumentTypeError(0, "int")
				return nil
			}
			lo, hi := args[0].Int(), args[1].Int()
			if hi < lo {
				ctx.RaiseException(ValueError, "empty range for randint()")
				return nil
			}
			return ctx.NewInt(lo + rng.Int63n(hi-lo+1))
		},
		"choice": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 1) {
				return nil
			}
			if !args[0].IsList() && !args[0].IsTuple() {
				ctx.RaiseArgumentTypeError(0, "list")
				return nil
			}
			elems := args[0].Elems()
			if len(elems) == 0 {
				ctx.RaiseException(IndexError, "cannot choose from an empty sequence")
				return nil
			}
			return elems[rng.Intn(len(elems))]
		},
		"shuffle": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 1) {
				return nil
			}
			if !args[0].IsList() {
				ctx.RaiseArgumentTypeError(0, "list")
				return nil
			}
			elems := args[0].Elems()
			rng.Shuffle(len(elems), func(i, j int) {
				elems[i], elems[j] = elems[j], elems[i]
			})
			return ctx.None()
		},
	}
	for name, fn := range funcs {
		v := ctx.NewFunction(fn, nil, name)
		if v == nil {
			return false
		}
		ctx.SetGlobal(name, v)
	}
	return true
}
