package wings

import (
	"math"
	"strconv"
	"strings"
)

// Builtin methods for NoneType, bool, int, and float. Every method receives
// its receiver as args[0], already bound by attribute lookup.

// checkArity raises TypeError unless exactly want arguments were given.
func checkArity(ctx *Context, args []*Value, want int) bool {
	if len(args) != want {
		ctx.RaiseArgumentCountError(len(args), want)
		return false
	}
	return true
}

// binOperand validates the second operand of a numeric binary method,
// raising TypeError with the operator's surface name when it is not numeric.
func binOperand(ctx *Context, args []*Value, op string) bool {
	if !checkArity(ctx, args, 2) {
		return false
	}
	if !args[1].IsNumber() {
		ctx.RaiseExceptionf(TypeError, "unsupported operand type(s) for %s: '%s' and '%s'",
			op, args[0].TypeName(), args[1].TypeName())
		return false
	}
	return true
}

// bothInt reports whether both operands are ints, promoting to float
// semantics otherwise.
func bothInt(args []*Value) bool {
	return args[0].IsInt() && args[1].IsInt()
}

func initNoneClass(ctx *Context) {
	cls := ctx.builtins.noneClass
	ctx.BindMethod(cls, "__nonzero__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.False()
	}, nil)
	ctx.BindMethod(cls, "__eq__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		return ctx.Bool(args[1].IsNone())
	}, nil)
	ctx.BindMethod(cls, "__str__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewString("None")
	}, nil)
	ctx.BindMethod(cls, "__hash__", hashSelf, nil)
}

func initBoolClass(ctx *Context) {
	cls := ctx.builtins.boolClass
	ctx.BindMethod(cls, "__nonzero__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return args[0]
	}, nil)
	ctx.BindMethod(cls, "__int__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if args[0].Bool() {
			return ctx.NewInt(1)
		}
		return ctx.NewInt(0)
	}, nil)
	ctx.BindMethod(cls, "__float__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if args[0].Bool() {
			return ctx.NewFloat(1)
		}
		return ctx.NewFloat(0)
	}, nil)
	ctx.BindMethod(cls, "__str__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if args[0].Bool() {
			return ctx.NewString("True")
		}
		return ctx.NewString("False")
	}, nil)
	ctx.BindMethod(cls, "__eq__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		return ctx.Bool(args[1].IsBool() && args[0].Bool() == args[1].Bool())
	}, nil)
	ctx.BindMethod(cls, "__hash__", hashSelf, nil)
}

func hashSelf(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	return ctx.NewInt(int64(args[0].primHash()))
}

func initIntClass(ctx *Context) {
	cls := ctx.builtins.intClass
	bind := func(name string, fn NativeFunc) { ctx.BindMethod(cls, name, fn, nil) }

	bind("__nonzero__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.Bool(args[0].Int() != 0)
	})
	bind("__int__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return args[0]
	})
	bind("__float__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewFloat(float64(args[0].Int()))
	})
	bind("__str__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewString(strconv.FormatInt(args[0].Int(), 10))
	})
	bind("__hash__", hashSelf)

	bind("__eq__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		return ctx.Bool(args[1].IsNumber() && primEqual(args[0], args[1]))
	})
	bind("__lt__", numCompare(func(c int) bool { return c < 0 }, "<"))
	bind("__le__", numCompare(func(c int) bool { return c <= 0 }, "<="))
	bind("__gt__", numCompare(func(c int) bool { return c > 0 }, ">"))
	bind("__ge__", numCompare(func(c int) bool { return c >= 0 }, ">="))

	bind("__pos__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return args[0]
	})
	bind("__neg__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewInt(-args[0].Int())
	})
	bind("__invert__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewInt(^args[0].Int())
	})

	bind("__add__", arith("+",
		func(a, b int64) (int64, bool) { return a + b, true },
		func(a, b float64) (float64, bool) { return a + b, true }))
	bind("__sub__", arith("-",
		func(a, b int64) (int64, bool) { return a - b, true },
		func(a, b float64) (float64, bool) { return a - b, true }))
	bind("__mul__", intMul)
	bind("__truediv__", trueDiv)
	bind("__floordiv__", arith("//",
		func(a, b int64) (int64, bool) { return floorDivInt(a, b), b != 0 },
		func(a, b float64) (float64, bool) { return math.Floor(a / b), b != 0 }))
	bind("__mod__", arith("%",
		func(a, b int64) (int64, bool) { return floorModInt(a, b), b != 0 },
		func(a, b float64) (float64, bool) { return floorModFloat(a, b), b != 0 }))
	bind("__pow__", numPow)

	bind("__and__", bitwise("&", func(a, b int64) int64 { return a & b }))
	bind("__or__", bitwise("|", func(a, b int64) int64 { return a | b }))
	bind("__xor__", bitwise("^", func(a, b int64) int64 { return a ^ b }))
	bind("__lshift__", shift("<<", func(a int64, n uint) int64 { return a << n }))
	bind("__rshift__", shift(">>", func(a int64, n uint) int64 { return a >> n }))
}

func initFloatClass(ctx *Context) {
	cls := ctx.builtins.floatClass
	bind := func(name string, fn NativeFunc) { ctx.BindMethod(cls, name, fn, nil) }

	bind("__nonzero__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.Bool(args[0].Float() != 0)
	})
	bind("__int__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewInt(int64(args[0].Float()))
	})
	bind("__float__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return args[0]
	})
	bind("__str__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewString(formatFloat(args[0].Float()))
	})
	bind("__hash__", hashSelf)

	bind("__eq__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		return ctx.Bool(args[1].IsNumber() && args[0].Float() == args[1].Float())
	})
	bind("__lt__", numCompare(func(c int) bool { return c < 0 }, "<"))
	bind("__le__", numCompare(func(c int) bool { return c <= 0 }, "<="))
	bind("__gt__", numCompare(func(c int) bool { return c > 0 }, ">"))
	bind("__ge__", numCompare(func(c int) bool { return c >= 0 }, ">="))

	bind("__pos__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return args[0]
	})
	bind("__neg__", func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		return ctx.NewFloat(-args[0].Float())
	})

	bind("__add__", floatArith("+", func(a, b float64) (float64, bool) { return a + b, true }))
	bind("__sub__", floatArith("-", func(a, b float64) (float64, bool) { return a - b, true }))
	bind("__mul__", floatArith("*", func(a, b float64) (float64, bool) { return a * b, true }))
	bind("__truediv__", trueDiv)
	bind("__floordiv__", floatArith("//", func(a, b float64) (float64, bool) { return math.Floor(a / b), b != 0 }))
	bind("__mod__", floatArith("%", func(a, b float64) (float64, bool) { return floorModFloat(a, b), b != 0 }))
	bind("__pow__", numPow)
}

// arith builds a numeric method that stays in int when both operands are
// ints and promotes to float otherwise. The op functions report false to
// raise ZeroDivisionError.
func arith(op string, intFn func(a, b int64) (int64, bool), floatFn func(a, b float64) (float64, bool)) NativeFunc {
	return func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !binOperand(ctx, args, op) {
			return nil
		}
		if bothInt(args) {
			r, ok := intFn(args[0].Int(), args[1].Int())
			if !ok {
				ctx.RaiseException(ZeroDivisionError, "division by zero")
				return nil
			}
			return ctx.NewInt(r)
		}
		r, ok := floatFn(args[0].Float(), args[1].Float())
		if !ok {
			ctx.RaiseException(ZeroDivisionError, "division by zero")
			return nil
		}
		return ctx.NewFloat(r)
	}
}

func floatArith(op string, fn func(a, b float64) (float64, bool)) NativeFunc {
	return func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !binOperand(ctx, args, op) {
			return nil
		}
		r, ok := fn(args[0].Float(), args[1].Float())
		if !ok {
			ctx.RaiseException(ZeroDivisionError, "division by zero")
			return nil
		}
		return ctx.NewFloat(r)
	}
}

// intMul multiplies numbers, and also replicates strings when the right
// operand is one.
func intMul(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !checkArity(ctx, args, 2) {
		return nil
	}
	if args[1].IsString() {
		return replicateString(ctx, args[1].String(), args[0].Int())
	}
	if !args[1].IsNumber() {
		ctx.RaiseExceptionf(TypeError, "unsupported operand type(s) for *: '%s' and '%s'",
			args[0].TypeName(), args[1].TypeName())
		return nil
	}
	if bothInt(args) {
		return ctx.NewInt(args[0].Int() * args[1].Int())
	}
	return ctx.NewFloat(args[0].Float() * args[1].Float())
}

// trueDiv always produces a float. A zero divisor raises ZeroDivisionError,
// even for 0.0 / 0.0.
func trueDiv(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !binOperand(ctx, args, "/") {
		return nil
	}
	if args[1].Float() == 0 {
		ctx.RaiseException(ZeroDivisionError, "division by zero")
		return nil
	}
	return ctx.NewFloat(args[0].Float() / args[1].Float())
}

func numPow(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
	if !binOperand(ctx, args, "**") {
		return nil
	}
	if bothInt(args) && args[1].Int() >= 0 {
		base, exp := args[0].Int(), args[1].Int()
		var r int64 = 1
		for exp > 0 {
			if exp&1 == 1 {
				r *= base
			}
			base *= base
			exp >>= 1
		}
		return ctx.NewInt(r)
	}
	return ctx.NewFloat(math.Pow(args[0].Float(), args[1].Float()))
}

func numCompare(pass func(c int) bool, op string) NativeFunc {
	return func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !binOperand(ctx, args, op) {
			return nil
		}
		a, b := args[0].Float(), args[1].Float()
		c := 0
		if a < b {
			c = -1
		} else if a > b {
			c = 1
		}
		return ctx.Bool(pass(c))
	}
}

func bitwise(op string, fn func(a, b int64) int64) NativeFunc {
	return func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !args[0].IsInt() || !args[1].IsInt() {
			ctx.RaiseExceptionf(TypeError, "unsupported operand type(s) for %s: '%s' and '%s'",
				op, args[0].TypeName(), args[1].TypeName())
			return nil
		}
		return ctx.NewInt(fn(args[0].Int(), args[1].Int()))
	}
}

// shift validates the amount: negative raises ValueError, and amounts beyond
// the word width clamp to 64.
func shift(op string, fn func(a int64, n uint) int64) NativeFunc {
	return func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 2) {
			return nil
		}
		if !args[0].IsInt() || !args[1].IsInt() {
			ctx.RaiseExceptionf(TypeError, "unsupported operand type(s) for %s: '%s' and '%s'",
				op, args[0].TypeName(), args[1].TypeName())
			return nil
		}
		n := args[1].Int()
		if n < 0 {
			ctx.RaiseException(ValueError, "negative shift count")
			return nil
		}
		if n > 64 {
			n = 64
		}
		return ctx.NewInt(fn(args[0].Int(), uint(n)))
	}
}

// floorDivInt implements floored integer division: the quotient rounds
// toward negative infinity.
func floorDivInt(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// floorModInt implements floored modulo: the result has the sign of b.
func floorModInt(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func floorModFloat(a, b float64) float64 {
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

// formatFloat renders a float with enough precision to round-trip. Finite
// values always show a fractional part or exponent; infinities and NaN do
// not.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) && !math.IsNaN(f) {
		s += ".0"
	}
	return s
}

func replicateString(ctx *Context, s string, n int64) *Value {
	if n < 0 {
		n = 0
	}
	if int64(len(s))*n > int64(ctx.config.MaxCollectionSize) {
		ctx.RaiseException(MemoryError, "collection size limit reached")
		return nil
	}
	return ctx.NewString(strings.Repeat(s, int(n)))
}
