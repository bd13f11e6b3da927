package wings

import "math"

// The math module.

func importMath(ctx *Context) bool {
	consts := map[string]float64{
		"pi":  math.Pi,
		"e":   math.E,
		"tau": 2 * math.Pi,
		"inf": math.Inf(1),
		"nan": math.NaN(),
	}
	for name, v := range consts {
		f := ctx.NewFloat(v)
		if f == nil {
			return false
		}
		ctx.SetGlobal(name, f)
	}

	unary := map[string]func(float64) float64{
		"sqrt":  math.Sqrt,
		"floor": math.Floor,
		"ceil":  math.Ceil,
		"fabs":  math.Abs,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"exp":   math.Exp,
		"log":   math.Log,
		"log2":  math.Log2,
		"log10": math.Log10,
	}
	for name, fn := range unary {
		f := fn
		v := ctx.NewFunction(func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 1) {
				return nil
			}
			if !args[0].IsNumber() {
				ctx.RaiseArgumentTypeError(0, "float")
				return nil
			}
			return ctx.NewFloat(f(args[0].Float()))
		}, nil, name)
		if v == nil {
			return false
		}
		ctx.SetGlobal(name, v)
	}

	pow := ctx.NewFunction(func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !args[0].IsNumber() || !args[1].IsNumber() {
			ctx.RaiseArgumentTypeError(0, "float")
			return nil
		}
		return ctx.NewFloat(math.Pow(args[0].Float(), args[1].Float()))
	}, nil, "pow")
	if pow == nil {
		return false
	}
	ctx.SetGlobal("pow", pow)
	return true
}
