package wings

// Every operator and conversion routes through attribute lookup of a fixed
// dunder name on the left operand, so "operator overloading" and method
// dispatch are one mechanism.

// UnOp identifies a unary operation.
type UnOp int

// Unary operations.
const (
	UnOpPos UnOp = iota
	UnOpNeg
	UnOpInvert
	UnOpNot
	UnOpBool
	UnOpInt
	UnOpFloat
	UnOpStr
	UnOpRepr
	UnOpHash
	UnOpLen
)

// BinOp identifies a binary operation.
type BinOp int

// Binary operations.
const (
	BinOpAdd BinOp = iota
	BinOpSub
	BinOpMul
	BinOpDiv
	BinOpFloorDiv
	BinOpMod
	BinOpPow
	BinOpBitAnd
	BinOpBitOr
	BinOpBitXor
	BinOpShl
	BinOpShr
	BinOpEq
	BinOpNe
	BinOpLt
	BinOpLe
	BinOpGt
	BinOpGe
	BinOpIn
	BinOpNotIn
	BinOpAnd
	BinOpOr
)

var binOpMethods = map[BinOp]string{
	BinOpAdd:      "__add__",
	BinOpSub:      "__sub__",
	BinOpMul:      "__mul__",
	BinOpDiv:      "__truediv__",
	BinOpFloorDiv: "__floordiv__",
	BinOpMod:      "__mod__",
	BinOpPow:      "__pow__",
	BinOpBitAnd:   "__and__",
	BinOpBitOr:    "__or__",
	BinOpBitXor:   "__xor__",
	BinOpShl:      "__lshift__",
	BinOpShr:      "__rshift__",
	BinOpEq:       "__eq__",
	BinOpNe:       "__ne__",
	BinOpLt:       "__lt__",
	BinOpLe:       "__le__",
	BinOpGt:       "__gt__",
	BinOpGe:       "__ge__",
	BinOpIn:       "__contains__",
}

// UnaryOp applies a unary operation or conversion to v.
func (ctx *Context) UnaryOp(op UnOp, v *Value) *Value {
	switch op {
	case UnOpPos:
		return ctx.CallMethod(v, "__pos__", nil, nil)
	case UnOpNeg:
		return ctx.CallMethod(v, "__neg__", nil, nil)
	case UnOpInvert:
		return ctx.CallMethod(v, "__invert__", nil, nil)
	case UnOpNot:
		b := ctx.ToBool(v)
		if b == nil {
			return nil
		}
		return ctx.Bool(!b.Bool())
	case UnOpBool:
		return ctx.ToBool(v)
	case UnOpInt:
		return ctx.ToInt(v)
	case UnOpFloat:
		return ctx.ToFloat(v)
	case UnOpStr:
		return ctx.ToStr(v)
	case UnOpRepr:
		return ctx.ToRepr(v)
	case UnOpHash:
		return ctx.Hash(v)
	case UnOpLen:
		return ctx.Len(v)
	}
	ctx.RaiseException(RuntimeError, "invalid unary operation")
	return nil
}

// BinaryOp applies a binary operation to l and r. Comparison and containment
// results must be bools; any other result raises TypeError.
func (ctx *Context) BinaryOp(op BinOp, l, r *Value) *Value {
	if op == BinOpIn {
		l, r = r, l
	}
	switch op {
	case BinOpAdd, BinOpSub, BinOpMul, BinOpDiv, BinOpFloorDiv, BinOpMod,
		BinOpPow, BinOpBitAnd, BinOpBitOr, BinOpBitXor, BinOpShl, BinOpShr:
		return ctx.CallMethod(l, binOpMethods[op], []*Value{r}, nil)
	case BinOpEq, BinOpNe, BinOpLt, BinOpLe, BinOpGt, BinOpGe, BinOpIn:
		name := binOpMethods[op]
		res := ctx.CallMethod(l, name, []*Value{r}, nil)
		if res == nil {
			return nil
		}
		if !res.IsBool() {
			ctx.RaiseExceptionf(TypeError, "%s() returned a non bool type", name)
			return nil
		}
		return res
	case BinOpNotIn:
		in := ctx.BinaryOp(BinOpIn, l, r)
		if in == nil {
			return nil
		}
		return ctx.Bool(!in.Bool())
	case BinOpAnd:
		lb := ctx.ToBool(l)
		if lb == nil {
			return nil
		}
		if !lb.Bool() {
			return lb
		}
		return ctx.ToBool(r)
	case BinOpOr:
		lb := ctx.ToBool(l)
		if lb == nil {
			return nil
		}
		if lb.Bool() {
			return lb
		}
		return ctx.ToBool(r)
	}
	ctx.RaiseException(RuntimeError, "invalid binary operation")
	return nil
}

// GetIndex evaluates obj[index].
func (ctx *Context) GetIndex(obj, index *Value) *Value {
	return ctx.CallMethod(obj, "__getitem__", []*Value{index}, nil)
}

// SetIndex evaluates obj[index] = value.
func (ctx *Context) SetIndex(obj, index, value *Value) *Value {
	return ctx.CallMethod(obj, "__setitem__", []*Value{index, value}, nil)
}

// ToBool converts through __nonzero__, which must return a bool.
func (ctx *Context) ToBool(v *Value) *Value {
	res := ctx.CallMethod(v, "__nonzero__", nil, nil)
	if res == nil {
		return nil
	}
	if !res.IsBool() {
		ctx.RaiseException(TypeError, "__nonzero__() returned a non bool type")
		return nil
	}
	return res
}

// ToInt converts through __int__, which must return an int.
func (ctx *Context) ToInt(v *Value) *Value {
	res := ctx.CallMethod(v, "__int__", nil, nil)
	if res == nil {
		return nil
	}
	if !res.IsInt() {
		ctx.RaiseException(TypeError, "__int__() returned a non int type")
		return nil
	}
	return res
}

// ToFloat converts through __float__, which must return a float.
func (ctx *Context) ToFloat(v *Value) *Value {
	res := ctx.CallMethod(v, "__float__", nil, nil)
	if res == nil {
		return nil
	}
	if !res.IsFloat() {
		ctx.RaiseException(TypeError, "__float__() returned a non float type")
		return nil
	}
	return res
}

// ToStr converts through __str__, which must return a str.
func (ctx *Context) ToStr(v *Value) *Value {
	res := ctx.CallMethod(v, "__str__", nil, nil)
	if res == nil {
		return nil
	}
	if !res.IsString() {
		ctx.RaiseException(TypeError, "__str__() returned a non str type")
		return nil
	}
	return res
}

// ToRepr converts through __repr__, falling back to __str__ when the value
// does not define a representation.
func (ctx *Context) ToRepr(v *Value) *Value {
	if method := ctx.HasAttr(v, "__repr__"); method != nil {
		res := ctx.Call(method, nil, nil)
		if res == nil {
			return nil
		}
		if !res.IsString() {
			ctx.RaiseException(TypeError, "__repr__() returned a non str type")
			return nil
		}
		return res
	}
	return ctx.ToStr(v)
}

// Len dispatches __len__, which must return an int.
func (ctx *Context) Len(v *Value) *Value {
	res := ctx.CallMethod(v, "__len__", nil, nil)
	if res == nil {
		return nil
	}
	if !res.IsInt() {
		ctx.RaiseException(TypeError, "__len__() returned a non int type")
		return nil
	}
	return res
}

// Hash dispatches __hash__, which must return an int.
func (ctx *Context) Hash(v *Value) *Value {
	res := ctx.CallMethod(v, "__hash__", nil, nil)
	if res == nil {
		return nil
	}
	if !res.IsInt() {
		ctx.RaiseException(TypeError, "__hash__() returned a non int type")
		return nil
	}
	return res
}

// Iterate obtains an iterator from obj via __iter__ and calls fn with each
// value produced by __next__ until the iterator raises StopIteration, which
// is caught and cleared. fn returning false stops early. Reports whether
// iteration finished without an exception.
func (ctx *Context) Iterate(obj *Value, fn func(v *Value) bool) bool {
	iter := ctx.CallMethod(obj, "__iter__", nil, nil)
	if iter == nil {
		return false
	}
	ctx.Protect(iter)
	defer ctx.Unprotect(iter)

	for {
		yielded := ctx.CallMethod(iter, "__next__", nil, nil)
		if yielded == nil {
			if exc := ctx.currentException; exc != nil && ctx.IsInstance(exc, []*Value{ctx.builtins.stopIteration}) {
				ctx.ClearException()
				return true
			}
			return false
		}
		ctx.Protect(yielded)
		ok := fn(yielded)
		ctx.Unprotect(yielded)
		if !ok {
			return ctx.currentException == nil
		}
	}
}

// Unpack iterates obj and returns exactly n values, raising ValueError when
// the iterable yields too few or too many.
func (ctx *Context) Unpack(obj *Value, n int) []*Value {
	out := make([]*Value, 0, n)
	ok := ctx.Iterate(obj, func(v *Value) bool {
		if len(out) >= n {
			ctx.RaiseException(ValueError, "too many values to unpack")
			return false
		}
		ctx.Protect(v)
		out = append(out, v)
		return true
	})
	defer func() {
		for _, v := range out {
			ctx.Unprotect(v)
		}
	}()
	if !ok {
		return nil
	}
	if len(out) < n {
		ctx.RaiseException(ValueError, "not enough values to unpack")
		return nil
	}
	return out
}
