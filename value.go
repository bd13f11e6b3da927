package wings

import (
	"fmt"
	"sync/atomic"
)

// Kind is the type indicator of a Value. Instances of user classes share
// KindInstance; their class is recorded in the value's type name.
type Kind int

// Value kinds.
const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTuple
	KindList
	KindMap
	KindSet
	KindFunc
	KindClass
	KindInstance
	KindUserdata
)

var kindNames = [...]string{
	"NoneType", "bool", "int", "float", "str", "tuple", "list", "dict",
	"set", "function", "class", "object", "userdata",
}

// String returns the user-visible name of the kind.
func (k Kind) String() string {
	if k < KindNone || k > KindUserdata {
		return "invalid"
	}
	return kindNames[k]
}

// Value is the uniform runtime object. Everything visible to user code is a
// Value. Always obtain Values through a Context; Values created directly do
// not participate in garbage collection and will misbehave arbitrarily.
type Value struct {
	// data is the kind-specific payload: nil, bool, int64, float64, string,
	// []*Value for tuples and lists, *Dict for maps and sets, *Func, *Class,
	// or an arbitrary host pointer for userdata.
	data interface{}
	kind Kind
	// typ is the type name: the kind name for builtins, the class name for
	// instances, and the host-chosen tag for userdata.
	typ string

	// attrs is the value's own attribute table.
	attrs *AttrTable
	// ctx is the owning Context.
	ctx *Context

	// fin is the finalizer to run when the value is swept, if any.
	fin *Finalizer
	// refs holds explicit strong edges added by LinkReference.
	refs []*Value

	// id is the value's unique ID, used by the collector's mark set.
	id uintptr
}

// Finalizer is a callback fired exactly once when a Value is swept. It must
// not allocate through the Context.
type Finalizer struct {
	Fn       func(v *Value, userdata interface{})
	Userdata interface{}
}

// NativeFunc is a compiled-in function callable from user code. args includes
// the bound self, if any, as the first element. kwargs is the caller's Map
// value, or nil when the caller passed no keyword arguments; Context.Kwargs
// materializes an empty map on demand. A NativeFunc returns
// nil if and only if it leaves an exception pending on the Context.
type NativeFunc func(ctx *Context, args []*Value, kwargs *Value, userdata interface{}) *Value

// Func is the payload of a function Value: either a native function or a
// compiled body with its captured scope.
type Func struct {
	// Native is the compiled-in implementation, nil for scripted functions.
	Native   NativeFunc
	Userdata interface{}
	// Def is the scripted body, nil for native functions.
	Def *FuncDef

	// Self is the bound receiver, set by attribute lookup on methods.
	Self     *Value
	IsMethod bool

	// Name is the pretty name used in tracebacks.
	Name string
	// Module is the home module.
	Module string
}

// Class is the payload of a class Value.
type Class struct {
	Name string
	// Bases are the direct parent classes in declaration order.
	Bases []*Value
	// Template is the instance-attribute template. New instances copy it.
	Template *AttrTable
	// Ctor is the constructor thunk invoked when the class is called.
	Ctor     NativeFunc
	Userdata interface{}
	Module   string
}

// valueCounter issues unique IDs for values and attribute tables.
var valueCounter uintptr

func nextID() uintptr {
	return atomic.AddUintptr(&valueCounter, 1)
}

// Kind returns the value's kind.
func (v *Value) Kind() Kind { return v.kind }

// TypeName returns the value's type name: the builtin type name, the class
// name for instances, or the userdata tag.
func (v *Value) TypeName() string { return v.typ }

// Context returns the owning Context.
func (v *Value) Context() *Context { return v.ctx }

// Attrs returns the value's own attribute table.
func (v *Value) Attrs() *AttrTable { return v.attrs }

// IsNone reports whether the value is the None singleton.
func (v *Value) IsNone() bool { return v.kind == KindNone }

// IsBool reports whether the value is a boolean.
func (v *Value) IsBool() bool { return v.kind == KindBool }

// IsInt reports whether the value is an integer.
func (v *Value) IsInt() bool { return v.kind == KindInt }

// IsFloat reports whether the value is a float.
func (v *Value) IsFloat() bool { return v.kind == KindFloat }

// IsNumber reports whether the value is an integer or a float.
func (v *Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

// IsString reports whether the value is a string.
func (v *Value) IsString() bool { return v.kind == KindString }

// IsTuple reports whether the value is a tuple.
func (v *Value) IsTuple() bool { return v.kind == KindTuple }

// IsList reports whether the value is a list.
func (v *Value) IsList() bool { return v.kind == KindList }

// IsMap reports whether the value is a map.
func (v *Value) IsMap() bool { return v.kind == KindMap }

// IsSet reports whether the value is a set.
func (v *Value) IsSet() bool { return v.kind == KindSet }

// IsFunc reports whether the value is a function.
func (v *Value) IsFunc() bool { return v.kind == KindFunc }

// IsClass reports whether the value is a class.
func (v *Value) IsClass() bool { return v.kind == KindClass }

// Bool returns the boolean payload. The value must be a bool.
func (v *Value) Bool() bool { return v.data.(bool) }

// Int returns the integer payload. The value must be an int.
func (v *Value) Int() int64 { return v.data.(int64) }

// Float returns the numeric payload widened to float64. The value must be an
// int or a float.
func (v *Value) Float() float64 {
	if v.kind == KindInt {
		return float64(v.data.(int64))
	}
	return v.data.(float64)
}

// String returns the string payload of a str value. For any other kind it
// returns a placeholder naming the type, so formatting a Value never panics.
func (v *Value) String() string {
	if v.kind == KindString {
		return v.data.(string)
	}
	return fmt.Sprintf("<%s>", v.typ)
}

// Elems returns the element slice of a tuple or list.
func (v *Value) Elems() []*Value { return v.data.([]*Value) }

// Dict returns the mapping payload of a map or set value.
func (v *Value) Dict() *Dict { return v.data.(*Dict) }

// Func returns the function payload. The value must be a function.
func (v *Value) Func() *Func { return v.data.(*Func) }

// Class returns the class payload. The value must be a class.
func (v *Value) Class() *Class { return v.data.(*Class) }

// TryGetUserdata returns the host pointer if the value is userdata carrying
// the given type tag.
func (v *Value) TryGetUserdata(typ string) (interface{}, bool) {
	if v.kind == KindUserdata && v.typ == typ {
		return v.data, true
	}
	return nil, false
}

// SetFinalizer installs a finalizer to run when the value is swept.
func (v *Value) SetFinalizer(fn func(v *Value, userdata interface{}), userdata interface{}) {
	v.fin = &Finalizer{Fn: fn, Userdata: userdata}
}

// LinkReference adds an explicit strong edge from v to child so that child
// stays alive as long as v does.
func (v *Value) LinkReference(child *Value) {
	v.refs = append(v.refs, child)
}

// UnlinkReference removes one previously linked edge from v to child.
func (v *Value) UnlinkReference(child *Value) {
	for i, r := range v.refs {
		if r == child {
			v.refs = append(v.refs[:i], v.refs[i+1:]...)
			return
		}
	}
}

// IsHashable reports whether the value may be used as a mapping key or set
// element. Only None, bools, numbers, strings, and tuples of hashable values
// are hashable.
func (v *Value) IsHashable() bool {
	switch v.kind {
	case KindNone, KindBool, KindInt, KindFloat, KindString:
		return true
	case KindTuple:
		for _, e := range v.Elems() {
			if !e.IsHashable() {
				return false
			}
		}
		return true
	}
	return false
}

// primHash returns the hash of a hashable value. Equal values hash equally;
// in particular an int and a float with the same numeric value collide.
func (v *Value) primHash() uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	switch v.kind {
	case KindNone:
		return 0x9e3779b97f4a7c15
	case KindBool:
		if v.Bool() {
			return 1
		}
		return 2
	case KindInt:
		return uint64(v.Int()) * prime64
	case KindFloat:
		f := v.data.(float64)
		if f == float64(int64(f)) {
			return uint64(int64(f)) * prime64
		}
		h := offset64 ^ uint64(int64(f*4096))
		return h * prime64
	case KindString:
		h := uint64(offset64)
		for i := 0; i < len(v.String()); i++ {
			h ^= uint64(v.String()[i])
			h *= prime64
		}
		return h
	case KindTuple:
		h := uint64(offset64)
		for _, e := range v.Elems() {
			h ^= e.primHash()
			h *= prime64
		}
		return h
	}
	return 0
}

// primEqual reports equality of hashable values without dispatching through
// user code. Numeric values compare across int and float.
func primEqual(a, b *Value) bool {
	if a == b {
		return true
	}
	switch a.kind {
	case KindNone:
		return b.kind == KindNone
	case KindBool:
		return b.kind == KindBool && a.Bool() == b.Bool()
	case KindInt, KindFloat:
		if !b.IsNumber() {
			return false
		}
		if a.kind == KindInt && b.kind == KindInt {
			return a.Int() == b.Int()
		}
		return a.Float() == b.Float()
	case KindString:
		return b.kind == KindString && a.String() == b.String()
	case KindTuple:
		if b.kind != KindTuple || len(a.Elems()) != len(b.Elems()) {
			return false
		}
		for i, e := range a.Elems() {
			if !primEqual(e, b.Elems()[i]) {
				return false
			}
		}
		return true
	}
	return false
}
