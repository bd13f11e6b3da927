package wings

import "os"

// The os module. Registration is gated by the enableOSAccess config option.

func importOS(ctx *Context) bool {
	funcs := map[string]NativeFunc{
		"getcwd": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 0) {
				return nil
			}
			wd, err := os.Getwd()
			if err != nil {
				ctx.RaiseException(OSError, err.Error())
				return nil
			}
			return ctx.NewString(wd)
		},
		"getenv": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 1) {
				return nil
			}
			if !args[0].IsString() {
				ctx.RaiseArgumentTypeError(0, "str")
				return nil
			}
			v, ok := os.LookupEnv(args[0].String())
			if !ok {
				return ctx.None()
			}
			return ctx.NewString(v)
		},
		"listdir": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			dir := "."
			switch len(args) {
			case 0:
			case 1:
				if !args[0].IsString() {
					ctx.RaiseArgumentTypeError(0, "str")
					return nil
				}
				dir = args[0].String()
			default:
				ctx.RaiseArgumentCountError(len(args), 1)
				return nil
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				ctx.RaiseException(OSError, err.Error())
				return nil
			}
			var names []*Value
			for _, e := range entries {
				s := ctx.NewString(e.Name())
				if s == nil {
					return nil
				}
				ctx.Protect(s)
				names = append(names, s)
			}
			defer ctx.unprotectAll(names)
			return ctx.NewList(names)
		},
		"remove": func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
			if !checkArity(ctx, args, 1) {
				return nil
			}
			if !args[0].IsString() {
				ctx.RaiseArgumentTypeError(0, "str")
				return nil
			}
			path := args[0].String()
			if info, err := os.Stat(path); err == nil && info.IsDir() {
				ctx.RaiseExceptionf(IsADirectoryError, "is a directory: '%s'", path)
				return nil
			}
			if err := os.Remove(path); err != nil {
				ctx.RaiseException(OSError, err.Error())
				return nil
			}
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
