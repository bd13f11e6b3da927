package wings

// The executor walks statement trees against the runtime. Failure is always
// a pending exception plus a sentinel nil; break, continue, and return are
// carried as control values so that intervening finally bodies run before
// the jump completes.

// FuncDef is the compiled body of a scripted function.
type FuncDef struct {
	Params   []string
	Defaults []*Value
	VarArgs  string
	KwArgs   string
	Body     []stmt
	// Enclosing is the scope chain captured at definition time.
	Enclosing *scope
	// ModuleLevel marks the synthetic function wrapping a module body, whose
	// assignments address module globals.
	ModuleLevel bool
	Name        string
	Module      string
}

type cell struct {
	v *Value
}

// scope is one level of the lexical environment. Lookups walk the chain;
// assignments bind in the innermost scope, or in module globals for a
// module-level scope.
type scope struct {
	vars        map[string]*cell
	parent      *scope
	moduleLevel bool
}

func newScope(parent *scope) *scope {
	return &scope{vars: map[string]*cell{}, parent: parent}
}

func (s *scope) define(name string, v *Value) {
	if c, ok := s.vars[name]; ok {
		c.v = v
		return
	}
	s.vars[name] = &cell{v: v}
}

// resolveName looks up a name through the scope chain, then the current
// module's globals, then the builtins module. Raises NameError when absent.
func (ctx *Context) resolveName(sc *scope, name string) *Value {
	for s := sc; s != nil; s = s.parent {
		if c, ok := s.vars[name]; ok {
			return c.v
		}
	}
	if v := ctx.GetGlobal(name); v != nil {
		return v
	}
	if v := ctx.globals["__builtins__"][name]; v != nil {
		return v
	}
	ctx.RaiseExceptionf(NameError, "the name '%s' is not defined", name)
	return nil
}

func (ctx *Context) assignName(sc *scope, name string, v *Value) {
	if sc == nil || sc.moduleLevel {
		ctx.SetGlobal(name, v)
		return
	}
	sc.define(name, v)
}

// ctrl is the executor's control-flow status.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
	ctrlError
)

// setTracePos records the executing statement's position on the current
// trace frame, so a raise snapshots an accurate stack.
func (ctx *Context) setTracePos(line int, text string) {
	if len(ctx.currentTrace) == 0 {
		return
	}
	f := &ctx.currentTrace[len(ctx.currentTrace)-1]
	f.Line = line
	f.LineText = text
}

func (ctx *Context) execBlock(stmts []stmt, sc *scope) (*Value, ctrl) {
	for _, s := range stmts {
		line, text := s.pos()
		ctx.setTracePos(line, text)
		if r, c := ctx.execStmt(s, sc); c != ctrlNone {
			return r, c
		}
	}
	return nil, ctrlNone
}

func (ctx *Context) execStmt(s stmt, sc *scope) (*Value, ctrl) {
	switch s := s.(type) {
	case *exprStmt:
		if ctx.evalExpr(s.x, sc) == nil {
			return nil, ctrlError
		}
		return nil, ctrlNone

	case *assignStmt:
		v := ctx.evalExpr(s.value, sc)
		if v == nil {
			return nil, ctrlError
		}
		if !ctx.assignTo(s.target, v, sc) {
			return nil, ctrlError
		}
		return nil, ctrlNone

	case *augAssignStmt:
		cur := ctx.evalExpr(s.target, sc)
		if cur == nil {
			return nil, ctrlError
		}
		ctx.Protect(cur)
		rhs := ctx.evalExpr(s.value, sc)
		ctx.Unprotect(cur)
		if rhs == nil {
			return nil, ctrlError
		}
		res := ctx.BinaryOp(s.op, cur, rhs)
		if res == nil {
			return nil, ctrlError
		}
		if !ctx.assignTo(s.target, res, sc) {
			return nil, ctrlError
		}
		return nil, ctrlNone

	case *ifStmt:
		cond := ctx.evalExpr(s.cond, sc)
		if cond == nil {
			return nil, ctrlError
		}
		b := ctx.ToBool(cond)
		if b == nil {
			return nil, ctrlError
		}
		if b.Bool() {
			return ctx.execBlock(s.body, sc)
		}
		return ctx.execBlock(s.alt, sc)

	case *whileStmt:
		for {
			cond := ctx.evalExpr(s.cond, sc)
			if cond == nil {
				return nil, ctrlError
			}
			b := ctx.ToBool(cond)
			if b == nil {
				return nil, ctrlError
			}
			if !b.Bool() {
				return nil, ctrlNone
			}
			r, c := ctx.execBlock(s.body, sc)
			switch c {
			case ctrlNone, ctrlContinue:
			case ctrlBreak:
				return nil, ctrlNone
			default:
				return r, c
			}
		}

	case *forStmt:
		return ctx.execFor(s, sc)

	case *defStmt:
		fn := ctx.makeFunction(s.name, s.params, s.defaults, s.varArgs, s.kwArgs, s.body, sc)
		if fn == nil {
			return nil, ctrlError
		}
		ctx.assignName(sc, s.name, fn)
		return nil, ctrlNone

	case *classStmt:
		return ctx.execClass(s, sc)

	case *returnStmt:
		if s.value == nil {
			return ctx.builtins.none, ctrlReturn
		}
		v := ctx.evalExpr(s.value, sc)
		if v == nil {
			return nil, ctrlError
		}
		return v, ctrlReturn

	case *breakStmt:
		return nil, ctrlBreak

	case *continueStmt:
		return nil, ctrlContinue

	case *passStmt:
		return nil, ctrlNone

	case *raiseStmt:
		if s.value == nil {
			if ctx.lastHandled == nil {
				ctx.RaiseException(RuntimeError, "no active exception to reraise")
				return nil, ctrlError
			}
			ctx.RaiseExceptionObject(ctx.lastHandled)
			return nil, ctrlError
		}
		v := ctx.evalExpr(s.value, sc)
		if v == nil {
			return nil, ctrlError
		}
		if v.IsClass() {
			v = ctx.Call(v, nil, nil)
			if v == nil {
				return nil, ctrlError
			}
		}
		ctx.RaiseExceptionObject(v)
		return nil, ctrlError

	case *tryStmt:
		return ctx.execTry(s, sc)

	case *importStmt:
		if ctx.ImportModule(s.module, s.alias) == nil {
			return nil, ctrlError
		}
		return nil, ctrlNone

	case *fromImportStmt:
		if s.star {
			if !ctx.ImportAllFromModule(s.module) {
				return nil, ctrlError
			}
			return nil, ctrlNone
		}
		for _, n := range s.names {
			if ctx.ImportFromModule(s.module, n[0], n[1]) == nil {
				return nil, ctrlError
			}
		}
		return nil, ctrlNone
	}
	ctx.RaiseException(RuntimeError, "invalid statement")
	return nil, ctrlError
}

func (ctx *Context) execFor(s *forStmt, sc *scope) (*Value, ctrl) {
	iterable := ctx.evalExpr(s.iter, sc)
	if iterable == nil {
		return nil, ctrlError
	}
	iter := ctx.CallMethod(iterable, "__iter__", nil, nil)
	if iter == nil {
		return nil, ctrlError
	}
	ctx.Protect(iter)
	defer ctx.Unprotect(iter)

	for {
		v := ctx.CallMethod(iter, "__next__", nil, nil)
		if v == nil {
			if exc := ctx.currentException; exc != nil && ctx.IsInstance(exc, []*Value{ctx.builtins.stopIteration}) {
				ctx.ClearException()
				return nil, ctrlNone
			}
			return nil, ctrlError
		}
		if len(s.targets) == 1 {
			ctx.assignName(sc, s.targets[0], v)
		} else {
			parts := ctx.Unpack(v, len(s.targets))
			if parts == nil {
				return nil, ctrlError
			}
			for i, name := range s.targets {
				ctx.assignName(sc, name, parts[i])
			}
		}
		r, c := ctx.execBlock(s.body, sc)
		switch c {
		case ctrlNone, ctrlContinue:
		case ctrlBreak:
			return nil, ctrlNone
		default:
			return r, c
		}
	}
}

// execClass evaluates a class statement: the body runs in its own scope,
// then every binding becomes a class attribute, with functions marked as
// methods.
func (ctx *Context) execClass(s *classStmt, sc *scope) (*Value, ctrl) {
	var bases []*Value
	for _, b := range s.bases {
		v := ctx.evalExpr(b, sc)
		if v == nil {
			return nil, ctrlError
		}
		ctx.Protect(v)
		bases = append(bases, v)
	}
	defer func() {
		for _, b := range bases {
			ctx.Unprotect(b)
		}
	}()

	cls := ctx.NewClass(s.name, bases)
	if cls == nil {
		return nil, ctrlError
	}
	ctx.Protect(cls)
	defer ctx.Unprotect(cls)

	body := newScope(sc)
	ctx.scopes = append(ctx.scopes, body)
	_, c := ctx.execBlock(s.body, body)
	ctx.scopes = ctx.scopes[:len(ctx.scopes)-1]
	if c == ctrlError {
		return nil, ctrlError
	}

	for name, cl := range body.vars {
		if cl.v == nil {
			continue
		}
		if cl.v.IsFunc() {
			cl.v.Func().IsMethod = true
		}
		ctx.AddAttributeToClass(cls, name, cl.v)
	}
	ctx.assignName(sc, s.name, cls)
	return nil, ctrlNone
}

func (ctx *Context) execTry(s *tryStmt, sc *scope) (*Value, ctrl) {
	r, c := ctx.execBlock(s.body, sc)

	if c == ctrlError && len(s.handlers) > 0 {
		// Once cleared, the exception is reachable from no root until it is
		// bound to a handler name or restored, and evaluating handler types
		// can allocate.
		exc := ctx.Protect(ctx.currentException)
		frozen := append([]TraceFrame(nil), ctx.exceptionTrace...)
		ctx.ClearException()

		matched := false
		for _, h := range s.handlers {
			var types []*Value
			if h.typ != nil {
				tv := ctx.evalExpr(h.typ, sc)
				if tv == nil {
					// Evaluating the handler type failed; its exception
					// replaces the original.
					r, c = nil, ctrlError
					matched = true
					break
				}
				if tv.IsTuple() {
					types = tv.Elems()
				} else {
					types = []*Value{tv}
				}
				if !ctx.IsInstance(exc, types) {
					continue
				}
			}
			matched = true
			if h.name != "" {
				ctx.assignName(sc, h.name, exc)
			}
			ctx.lastHandled = exc
			r, c = ctx.execBlock(h.body, sc)
			break
		}
		if !matched {
			ctx.currentException = exc
			ctx.exceptionTrace = frozen
			r, c = nil, ctrlError
		}
		ctx.Unprotect(exc)
	}

	if len(s.finally) > 0 {
		// The finally body runs on every exit path. A pending exception is
		// stashed so the body's own operations start clean; it resumes
		// unless the body raises or jumps. The stash is pinned while the
		// body runs, which may allocate.
		exc := ctx.Protect(ctx.currentException)
		frozen := append([]TraceFrame(nil), ctx.exceptionTrace...)
		ctx.ClearException()

		fr, fc := ctx.execBlock(s.finally, sc)
		if fc != ctrlNone {
			ctx.Unprotect(exc)
			return fr, fc
		}
		if exc != nil {
			ctx.currentException = exc
			ctx.exceptionTrace = frozen
		}
		ctx.Unprotect(exc)
	}
	return r, c
}

func (ctx *Context) assignTo(target expr, v *Value, sc *scope) bool {
	// Evaluating an attribute or index target can allocate, so the value
	// being stored is pinned for the duration.
	ctx.Protect(v)
	defer ctx.Unprotect(v)
	switch t := target.(type) {
	case nameExpr:
		ctx.assignName(sc, t.name, v)
		return true
	case *attrExpr:
		obj := ctx.evalExpr(t.x, sc)
		if obj == nil {
			return false
		}
		ctx.SetAttr(obj, t.name, v)
		return true
	case *indexExpr:
		obj := ctx.evalExpr(t.x, sc)
		if obj == nil {
			return false
		}
		ctx.Protect(obj)
		idx := ctx.evalIndex(t.idx, sc)
		ctx.Unprotect(obj)
		if idx == nil {
			return false
		}
		return ctx.SetIndex(obj, idx, v) != nil
	case *tupleExpr:
		parts := ctx.Unpack(v, len(t.elems))
		if parts == nil {
			return false
		}
		for i, el := range t.elems {
			ctx.assignName(sc, el.(nameExpr).name, parts[i])
		}
		return true
	}
	ctx.RaiseException(SyntaxError, "invalid assignment target")
	return false
}

func (ctx *Context) makeFunction(name string, params []string, defaults []expr, varArgs, kwArgs string, body []stmt, sc *scope) *Value {
	var dv []*Value
	for _, d := range defaults {
		v := ctx.evalExpr(d, sc)
		if v == nil {
			for _, p := range dv {
				ctx.Unprotect(p)
			}
			return nil
		}
		ctx.Protect(v)
		dv = append(dv, v)
	}
	defer func() {
		for _, p := range dv {
			ctx.Unprotect(p)
		}
	}()
	def := &FuncDef{
		Params:    params,
		Defaults:  dv,
		VarArgs:   varArgs,
		KwArgs:    kwArgs,
		Body:      body,
		Enclosing: sc,
		Name:      name,
		Module:    ctx.CurrentModule(),
	}
	return ctx.newValue(KindFunc, &Func{
		Def:    def,
		Name:   name,
		Module: def.Module,
	})
}

func (ctx *Context) evalExpr(e expr, sc *scope) *Value {
	switch e := e.(type) {
	case nameExpr:
		return ctx.resolveName(sc, e.name)
	case intLit:
		return ctx.NewInt(e.v)
	case floatLit:
		return ctx.NewFloat(e.v)
	case strLit:
		return ctx.NewString(e.v)
	case boolLit:
		return ctx.Bool(e.v)
	case noneLit:
		return ctx.builtins.none

	case *tupleExpr:
		elems, ok := ctx.evalElems(e.elems, sc)
		if !ok {
			return nil
		}
		defer ctx.unprotectAll(elems)
		return ctx.NewTuple(elems)
	case *listExpr:
		elems, ok := ctx.evalElems(e.elems, sc)
		if !ok {
			return nil
		}
		defer ctx.unprotectAll(elems)
		return ctx.NewList(elems)
	case *setExpr:
		elems, ok := ctx.evalElems(e.elems, sc)
		if !ok {
			return nil
		}
		defer ctx.unprotectAll(elems)
		return ctx.NewSet(elems)
	case *mapExpr:
		keys, ok := ctx.evalElems(e.keys, sc)
		if !ok {
			return nil
		}
		defer ctx.unprotectAll(keys)
		values, ok := ctx.evalElems(e.values, sc)
		if !ok {
			return nil
		}
		defer ctx.unprotectAll(values)
		return ctx.NewMapOf(keys, values)

	case *unaryExpr:
		x := ctx.evalExpr(e.x, sc)
		if x == nil {
			return nil
		}
		return ctx.UnaryOp(e.op, x)

	case *binaryExpr:
		l := ctx.evalExpr(e.l, sc)
		if l == nil {
			return nil
		}
		// and/or short-circuit before evaluating the right side.
		if e.op == BinOpAnd || e.op == BinOpOr {
			lb := ctx.ToBool(l)
			if lb == nil {
				return nil
			}
			if e.op == BinOpAnd && !lb.Bool() {
				return lb
			}
			if e.op == BinOpOr && lb.Bool() {
				return lb
			}
			r := ctx.evalExpr(e.r, sc)
			if r == nil {
				return nil
			}
			return ctx.ToBool(r)
		}
		ctx.Protect(l)
		r := ctx.evalExpr(e.r, sc)
		ctx.Unprotect(l)
		if r == nil {
			return nil
		}
		return ctx.BinaryOp(e.op, l, r)

	case *callExpr:
		fn := ctx.evalExpr(e.fn, sc)
		if fn == nil {
			return nil
		}
		ctx.Protect(fn)
		defer ctx.Unprotect(fn)
		args, ok := ctx.evalElems(e.args, sc)
		if !ok {
			return nil
		}
		defer ctx.unprotectAll(args)
		var kwargs *Value
		if len(e.kwNames) > 0 {
			kwargs = ctx.NewMap()
			if kwargs == nil {
				return nil
			}
			ctx.Protect(kwargs)
			defer ctx.Unprotect(kwargs)
			for i, name := range e.kwNames {
				k := ctx.NewString(name)
				if k == nil {
					return nil
				}
				ctx.Protect(k)
				v := ctx.evalExpr(e.kwValues[i], sc)
				ctx.Unprotect(k)
				if v == nil {
					return nil
				}
				kwargs.Dict().Set(k, v)
			}
		}
		return ctx.Call(fn, args, kwargs)

	case *attrExpr:
		obj := ctx.evalExpr(e.x, sc)
		if obj == nil {
			return nil
		}
		return ctx.GetAttr(obj, e.name)

	case *indexExpr:
		obj := ctx.evalExpr(e.x, sc)
		if obj == nil {
			return nil
		}
		ctx.Protect(obj)
		idx := ctx.evalIndex(e.idx, sc)
		ctx.Unprotect(obj)
		if idx == nil {
			return nil
		}
		return ctx.GetIndex(obj, idx)

	case *lambdaExpr:
		return ctx.makeFunction(defaultFuncName, e.params, e.defaults,
			"", "", []stmt{&returnStmt{value: e.body}}, sc)
	}
	ctx.RaiseException(RuntimeError, "invalid expression")
	return nil
}

// evalIndex evaluates a subscript, materializing slice objects.
func (ctx *Context) evalIndex(e expr, sc *scope) *Value {
	sl, ok := e.(*sliceExpr)
	if !ok {
		return ctx.evalExpr(e, sc)
	}
	part := func(x expr) *Value {
		if x == nil {
			return ctx.builtins.none
		}
		return ctx.evalExpr(x, sc)
	}
	lo := part(sl.lo)
	if lo == nil {
		return nil
	}
	ctx.Protect(lo)
	defer ctx.Unprotect(lo)
	hi := part(sl.hi)
	if hi == nil {
		return nil
	}
	ctx.Protect(hi)
	defer ctx.Unprotect(hi)
	step := part(sl.step)
	if step == nil {
		return nil
	}
	ctx.Protect(step)
	defer ctx.Unprotect(step)
	return ctx.Call(ctx.builtins.sliceClass, []*Value{lo, hi, step}, nil)
}

func (ctx *Context) evalElems(exprs []expr, sc *scope) ([]*Value, bool) {
	elems := make([]*Value, 0, len(exprs))
	for _, e := range exprs {
		v := ctx.evalExpr(e, sc)
		if v == nil {
			ctx.unprotectAll(elems)
			return nil, false
		}
		ctx.Protect(v)
		elems = append(elems, v)
	}
	return elems, true
}

func (ctx *Context) unprotectAll(vs []*Value) {
	for _, v := range vs {
		ctx.Unprotect(v)
	}
}

// Compile parses source text into a callable function value whose body is
// the module-level program. On a syntax error it raises SyntaxError with a
// caret-marked trace frame and returns nil.
func (ctx *Context) Compile(code, prettyName string) *Value {
	stmts, lines, err := parseProgram(code)
	if err != nil {
		ctx.raiseSyntax(err, prettyName, lines)
		return nil
	}
	return ctx.moduleFunction(stmts)
}

// CompileExpression parses a single expression into a callable returning its
// value.
func (ctx *Context) CompileExpression(code, prettyName string) *Value {
	stmts, lines, err := parseProgram(code)
	if err != nil {
		ctx.raiseSyntax(err, prettyName, lines)
		return nil
	}
	if len(stmts) != 1 {
		ctx.RaiseException(SyntaxError, "expected a single expression")
		return nil
	}
	es, ok := stmts[0].(*exprStmt)
	if !ok {
		ctx.RaiseException(SyntaxError, "expected a single expression")
		return nil
	}
	ret := &returnStmt{stmtBase: es.stmtBase, value: es.x}
	return ctx.moduleFunction([]stmt{ret})
}

func (ctx *Context) moduleFunction(stmts []stmt) *Value {
	def := &FuncDef{
		Body:        stmts,
		ModuleLevel: true,
		Name:        defaultFuncName,
		Module:      ctx.CurrentModule(),
	}
	return ctx.newValue(KindFunc, &Func{
		Def:    def,
		Name:   defaultFuncName,
		Module: def.Module,
	})
}

func (ctx *Context) raiseSyntax(err error, prettyName string, lines []string) {
	line, col := 0, 0
	switch e := err.(type) {
	case *lexError:
		line, col = e.line, e.col
	case *parseError:
		line, col = e.line, e.col
	}
	ctx.RaiseException(SyntaxError, err.Error())
	frame := TraceFrame{Module: prettyName, Line: line, Col: col, Syntax: true}
	if line-1 >= 0 && line-1 < len(lines) {
		frame.LineText = lines[line-1]
	}
	ctx.exceptionTrace = append(ctx.exceptionTrace, frame)
}

// Execute compiles and runs source in the current module. Returns the None
// value on success and nil with an exception pending on failure.
func (ctx *Context) Execute(code, prettyName string) *Value {
	fn := ctx.Compile(code, prettyName)
	if fn == nil {
		return nil
	}
	return ctx.Call(fn, nil, nil)
}

// ExecuteFile decodes raw source bytes, honoring a byte-order mark, then
// compiles and runs them in the current module.
func (ctx *Context) ExecuteFile(data []byte, prettyName string) *Value {
	src, err := decodeSource(data)
	if err != nil {
		ctx.RaiseExceptionf(SyntaxError, "cannot decode source: %v", err)
		return nil
	}
	return ctx.Execute(src, prettyName)
}

// ExecuteExpression compiles and evaluates a single expression in the
// current module.
func (ctx *Context) ExecuteExpression(code, prettyName string) *Value {
	fn := ctx.CompileExpression(code, prettyName)
	if fn == nil {
		return nil
	}
	return ctx.Call(fn, nil, nil)
}
