package wings

// A Context owns one interpreter instance: its heap, per-module globals, the
// builtin registry, the current exception, the call trace, and the stack of
// in-flight keyword-argument maps. Contexts share nothing; a host may run
// many of them on separate goroutines, but a single Context must never be
// entered from two goroutines at once.
type Context struct {
	config Config

	// mem is the arena of all live values.
	mem []*Value
	// protected is the protection multiset: values pinned by native code.
	protected map[uintptr]*protEntry
	// lastLive is the live count recorded after the previous collection.
	lastLive int
	// gcLock disables collection while reentrant allocation is in flight.
	gcLock int
	// raisingOOM suspends the allocation cap while MemoryError is built.
	raisingOOM bool

	// globals maps module name to that module's global variables.
	globals map[string]map[string]*Value
	// moduleLoaders maps module name to its registered loader.
	moduleLoaders map[string]ModuleLoader
	// currentModule is the stack of modules being executed; the top is the
	// module that get-global and set-global address.
	currentModule []string
	importPath    string

	// currentException is the pending exception, nil when none.
	currentException *Value
	// lastHandled is the most recently caught exception, for bare raise.
	lastHandled *Value
	// exceptionTrace is the trace snapshotted at the moment of raise.
	exceptionTrace []TraceFrame
	// currentTrace is the live call stack.
	currentTrace []TraceFrame

	// kwargsStack holds the in-flight kwargs map of each active call. A nil
	// entry is lazily materialized by Kwargs.
	kwargsStack []*Value
	// userdataStack holds the userdata of each active native call.
	userdataStack []interface{}

	// scopes is the stack of executor scopes, rooted for collection.
	scopes []*scope

	builtins builtinObjects
	// argv is the argument tuple exposed through sys, nil until built.
	argv *Value

	// errorCallback receives internal failure reports; nil falls back to
	// the print sink.
	errorCallback func(message string)
}

// protEntry is one entry of the protection multiset.
type protEntry struct {
	v *Value
	n int
}

// TraceFrame is one entry of the call stack.
type TraceFrame struct {
	Module string
	// Func is the pretty name of the called function.
	Func string
	// Line and Col are one-based; zero when unknown.
	Line, Col int
	// LineText is the source text of the line, if known.
	LineText string
	// Syntax marks a syntax-error frame, which formats with a caret.
	Syntax bool
}

// builtinObjects is the registry of builtin classes and singletons. Every
// entry is a garbage collection root.
type builtinObjects struct {
	object, typeClass, noneClass, boolClass, intClass, floatClass *Value
	strClass, tupleClass, listClass, dictClass, setClass, funcClass *Value

	none, trueV, falseV *Value

	baseException, systemExit, exception, stopIteration *Value
	arithmeticError, overflowError, zeroDivisionError *Value
	attributeError, importError, lookupError, indexError, keyError *Value
	memoryError, nameError, osError, isADirectoryError *Value
	runtimeError, notImplementedError, recursionError *Value
	syntaxError, typeError, valueError *Value

	isinstance, lenFn, reprFn, hashFn, sliceClass, moduleClass *Value
}

func (b *builtinObjects) all() []*Value {
	return []*Value{
		b.object, b.typeClass, b.noneClass, b.boolClass, b.intClass,
		b.floatClass, b.strClass, b.tupleClass, b.listClass, b.dictClass,
		b.setClass, b.funcClass,
		b.none, b.trueV, b.falseV,
		b.baseException, b.systemExit, b.exception, b.stopIteration,
		b.arithmeticError, b.overflowError, b.zeroDivisionError,
		b.attributeError, b.importError, b.lookupError, b.indexError,
		b.keyError, b.memoryError, b.nameError, b.osError,
		b.isADirectoryError, b.runtimeError, b.notImplementedError,
		b.recursionError, b.syntaxError, b.typeError, b.valueError,
		b.isinstance, b.lenFn, b.reprFn, b.hashFn, b.sliceClass,
		b.moduleClass,
	}
}

// NewContext creates a Context, bootstraps the builtin classes and the
// prelude, and registers the standard modules. A nil config selects the
// defaults.
func NewContext(config *Config) (*Context, error) {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	ctx := &Context{
		config:        cfg,
		protected:     map[uintptr]*protEntry{},
		globals:       map[string]map[string]*Value{},
		moduleLoaders: map[string]ModuleLoader{},
		importPath:    cfg.ImportPath,
	}
	ctx.currentModule = append(ctx.currentModule, "__main__")
	ctx.globals["__main__"] = map[string]*Value{}

	ctx.RegisterModule("__builtins__", importBuiltins)
	ctx.RegisterModule("math", importMath)
	ctx.RegisterModule("random", importRandom)
	ctx.RegisterModule("sys", importSys)
	ctx.RegisterModule("time", importTime)
	if cfg.EnableOSAccess {
		ctx.RegisterModule("os", importOS)
	}

	if err := initLibrary(ctx); err != nil {
		return nil, err
	}
	if !ctx.ImportAllFromModule("__builtins__") {
		return nil, ctx.errorFromPending()
	}
	if len(cfg.Argv) > 0 {
		if !ctx.initArgv(cfg.Argv) {
			return nil, ctx.errorFromPending()
		}
	}
	return ctx, nil
}

// Destroy releases every value in the Context, running finalizers. The
// Context must not be used afterwards.
func (ctx *Context) Destroy() {
	for _, v := range ctx.mem {
		if v.fin != nil {
			fin := v.fin
			v.fin = nil
			ctx.runFinalizer(v, fin)
		}
	}
	ctx.mem = nil
	ctx.protected = map[uintptr]*protEntry{}
	ctx.globals = map[string]map[string]*Value{}
	ctx.currentException = nil
}

// Config returns the Context's effective configuration.
func (ctx *Context) Config() Config { return ctx.config }

// Print writes a message through the configured print sink.
func (ctx *Context) Print(message string) {
	if ctx.config.Print != nil {
		ctx.config.Print(message)
	}
}

// SetPrint replaces the print sink.
func (ctx *Context) SetPrint(fn func(message string)) {
	ctx.config.Print = fn
	if ctx.config.Print == nil {
		ctx.config.Print = func(string) {}
	}
}

// SetErrorCallback installs a sink for internal failure reports, such as a
// finalizer panicking during sweep. With no callback installed, reports go
// to the print sink.
func (ctx *Context) SetErrorCallback(fn func(message string)) {
	ctx.errorCallback = fn
}

// reportError delivers an internal failure report.
func (ctx *Context) reportError(message string) {
	if ctx.errorCallback != nil {
		ctx.errorCallback(message)
		return
	}
	ctx.Print(message + "\n")
}

// None returns the None singleton.
func (ctx *Context) None() *Value { return ctx.builtins.none }

// True returns the True singleton.
func (ctx *Context) True() *Value { return ctx.builtins.trueV }

// False returns the False singleton.
func (ctx *Context) False() *Value { return ctx.builtins.falseV }

// Bool returns the canonical boolean singleton for b.
func (ctx *Context) Bool(b bool) *Value {
	if b {
		return ctx.builtins.trueV
	}
	return ctx.builtins.falseV
}

// GetGlobal returns a global of the currently executing module, or nil if it
// is not defined.
func (ctx *Context) GetGlobal(name string) *Value {
	module := ctx.currentModule[len(ctx.currentModule)-1]
	return ctx.globals[module][name]
}

// SetGlobal sets a global of the currently executing module.
func (ctx *Context) SetGlobal(name string, v *Value) {
	module := ctx.currentModule[len(ctx.currentModule)-1]
	g := ctx.globals[module]
	if g == nil {
		g = map[string]*Value{}
		ctx.globals[module] = g
	}
	g[name] = v
}

// CurrentModule returns the name of the currently executing module.
func (ctx *Context) CurrentModule() string {
	return ctx.currentModule[len(ctx.currentModule)-1]
}

// Kwargs returns the keyword-arguments map of the innermost active call,
// materializing an empty map on first use.
func (ctx *Context) Kwargs() *Value {
	if len(ctx.kwargsStack) == 0 {
		return nil
	}
	if ctx.kwargsStack[len(ctx.kwargsStack)-1] == nil {
		ctx.kwargsStack[len(ctx.kwargsStack)-1] = ctx.NewMap()
	}
	return ctx.kwargsStack[len(ctx.kwargsStack)-1]
}

// FuncUserdata returns the userdata of the innermost active native call.
func (ctx *Context) FuncUserdata() interface{} {
	if len(ctx.userdataStack) == 0 {
		return nil
	}
	return ctx.userdataStack[len(ctx.userdataStack)-1]
}

// initArgv builds the sys.argv tuple.
func (ctx *Context) initArgv(args []string) bool {
	elems := make([]*Value, 0, len(args))
	for _, a := range args {
		s := ctx.NewString(a)
		if s == nil {
			return false
		}
		ctx.Protect(s)
		elems = append(elems, s)
	}
	defer func() {
		for _, e := range elems {
			ctx.Unprotect(e)
		}
	}()
	ctx.argv = ctx.NewTuple(elems)
	return ctx.argv != nil
}
