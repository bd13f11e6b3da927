package wings

// The sys module: argv, version, isatty, and exit.

// Version is the interpreter version reported by sys.version.
const Version = "1.0"

func importSys(ctx *Context) bool {
	if ctx.argv == nil {
		argv := ctx.NewTuple(nil)
		if argv == nil {
			return false
		}
		ctx.argv = argv
	}
	ctx.SetGlobal("argv", ctx.argv)

	version := ctx.NewString(Version)
	if version == nil {
		return false
	}
	ctx.SetGlobal("version", version)

	isatty := ctx.NewFunction(func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		if !checkArity(ctx, args, 0) {
			return nil
		}
		return ctx.Bool(ctx.config.IsATTY || stdoutIsTerminal())
	}, nil, "isatty")
	if isatty == nil {
		return false
	}
	ctx.SetGlobal("isatty", isatty)

	exit := ctx.NewFunction(func(ctx *Context, args []*Value, kwargs *Value, _ interface{}) *Value {
		msg := ""
		if len(args) > 0 {
			s := ctx.ToStr(args[0])
			if s == nil {
				return nil
			}
			msg = s.String()
		}
		ctx.RaiseException(SystemExit, msg)
		return nil
	}, nil, "exit")
	if exit == nil {
		return false
	}
	ctx.SetGlobal("exit", exit)
	return true
}
