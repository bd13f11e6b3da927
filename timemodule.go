package wings

import (
	"time"

	"gitlab.com/variadico/lctime"
)

// The time module.

func importTime(ctx *Context) bool {
	funcs := map[string]NativeFunc{
		"time": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 0) {
				return nil
			}
			return ctx.NewFloat(float64(time.Now().UnixNano()) / 1e9)
		},
		"sleep": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 1) {
				return nil
			}
			if !args[0].IsNumber() {
				ctx.RaiseArgumentTypeError(0, "float")
				return nil
			}
			time.Sleep(time.Duration(args[0].Float() * float64(time.Second)))
			return ctx.None()
		},
		// strftime(format[, epoch]) formats a time with locale-aware
		// strftime directives.
		"strftime": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			var t time.Time
			switch len(args) {
			case 1:
				t = time.Now()
			case 2:
				if !args[1].IsNumber() {
					ctx.RaiseArgumentTypeError(1, "float")
					return nil
				}
				sec := args[1].Float()
				t = time.Unix(int64(sec), int64((sec-float64(int64(sec)))*1e9))
			default:
				ctx.RaiseArgumentCountError(len(args), 2)
				return nil
			}
			if !args[0].IsString() {
				ctx.RaiseArgumentTypeError(0, "str")
				return nil
			}
			return ctx.NewString(lctime.Strftime(args[0].String(), t))
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
