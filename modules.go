package wings

import (
	"os"
	"path/filepath"
	"strings"
)

// ModuleLoader populates the current module's globals, reporting success.
// Loaders run with the module already pushed as the current module.
type ModuleLoader func(ctx *Context) bool

// RegisterModule registers a loader invoked the first time the module is
// imported.
func (ctx *Context) RegisterModule(name string, loader ModuleLoader) {
	ctx.moduleLoaders[name] = loader
}

// SetImportPath sets the directory searched for file modules.
func (ctx *Context) SetImportPath(path string) {
	ctx.importPath = path
}

// importBuiltins is the __builtins__ loader. Its globals are populated
// during bootstrap, before any import can run.
func importBuiltins(ctx *Context) bool { return true }

func (ctx *Context) loadModule(name string) bool {
	if _, ok := ctx.globals[name]; ok {
		return true
	}
	ctx.globals[name] = map[string]*Value{}
	ctx.currentModule = append(ctx.currentModule, name)

	success := true
	if name != "__builtins__" {
		success = ctx.ImportAllFromModule("__builtins__")
	}
	if success {
		if loader, ok := ctx.moduleLoaders[name]; ok {
			success = loader(ctx)
		} else {
			success = ctx.loadFileModule(name)
		}
	}

	ctx.currentModule = ctx.currentModule[:len(ctx.currentModule)-1]
	if !success {
		delete(ctx.globals, name)
		return false
	}
	return true
}

func (ctx *Context) loadFileModule(name string) bool {
	if !moduleNameOK(name) {
		ctx.RaiseExceptionf(ImportError, "no module named '%s'", name)
		return false
	}
	path := filepath.Join(ctx.importPath, name+".py")
	data, err := os.ReadFile(path)
	if err != nil {
		ctx.RaiseExceptionf(ImportError, "no module named '%s'", name)
		return false
	}
	src, err := decodeSource(data)
	if err != nil {
		ctx.RaiseExceptionf(ImportError, "cannot decode module '%s'", name)
		return false
	}
	fn := ctx.Compile(src, name)
	if fn == nil {
		return false
	}
	return ctx.Call(fn, nil, nil) != nil
}

// ImportModule imports a module and binds a module object to alias (or the
// module's own name) in the current module's globals.
func (ctx *Context) ImportModule(module, alias string) *Value {
	if alias == "" {
		alias = module
	}
	if !ctx.loadModule(module) {
		return nil
	}
	obj := ctx.Call(ctx.builtins.moduleClass, nil, nil)
	if obj == nil {
		return nil
	}
	ctx.Protect(obj)
	defer ctx.Unprotect(obj)
	for name, v := range ctx.globals[module] {
		ctx.SetAttr(obj, name, v)
	}
	ctx.SetGlobal(alias, obj)
	return obj
}

// ImportFromModule imports one name from a module into the current module's
// globals under alias (or its own name).
func (ctx *Context) ImportFromModule(module, name, alias string) *Value {
	if alias == "" {
		alias = name
	}
	if !ctx.loadModule(module) {
		return nil
	}
	v, ok := ctx.globals[module][name]
	if !ok {
		ctx.RaiseExceptionf(ImportError, "cannot import '%s' from '%s'", name, module)
		return nil
	}
	ctx.SetGlobal(alias, v)
	return v
}

// ImportAllFromModule imports every public name from a module into the
// current module's globals. Dunder-prefixed helper names still import so the
// prelude's support classes resolve everywhere.
func (ctx *Context) ImportAllFromModule(module string) bool {
	if !ctx.loadModule(module) {
		return false
	}
	current := ctx.CurrentModule()
	if current == module {
		return true
	}
	g := ctx.globals[current]
	if g == nil {
		g = map[string]*Value{}
		ctx.globals[current] = g
	}
	for name, v := range ctx.globals[module] {
		g[name] = v
	}
	return true
}

// moduleNameOK reports whether a name is a plausible module identifier for
// file lookup, rejecting path traversal.
func moduleNameOK(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, `/\.`)
}
