package wings

// The prelude is written in the scripting language and executed during
// bootstrap in the __builtins__ module. It defines the exception tree, the
// generic sequence iterator, range, slice, enumerate, and isinstance.
const preludeSource = `class BaseException:
	def __init__(self, message=""):
		self.message = message
	def __str__(self):
		return self.message

class SystemExit(BaseException):
	pass

class Exception(BaseException):
	pass

class StopIteration(Exception):
	pass

class ArithmeticError(Exception):
	pass

class OverflowError(ArithmeticError):
	pass

class ZeroDivisionError(ArithmeticError):
	pass

class AttributeError(Exception):
	pass

class ImportError(Exception):
	pass

class LookupError(Exception):
	pass

class IndexError(LookupError):
	pass

class KeyError(LookupError):
	pass

class MemoryError(BaseException):
	pass

class NameError(Exception):
	pass

class OSError(Exception):
	pass

class IsADirectoryError(OSError):
	pass

class RuntimeError(Exception):
	pass

class NotImplementedError(RuntimeError):
	pass

class RecursionError(RuntimeError):
	pass

class SyntaxError(Exception):
	pass

class TypeError(Exception):
	pass

class ValueError(Exception):
	pass

class __SeqIter:
	def __init__(self, seq):
		self.seq = seq
		self.i = 0
	def __iter__(self):
		return self
	def __next__(self):
		if self.i >= len(self.seq):
			raise StopIteration()
		v = self.seq[self.i]
		self.i = self.i + 1
		return v

set_class_attr(list, "__iter__", lambda self: __SeqIter(self))
set_class_attr(tuple, "__iter__", lambda self: __SeqIter(self))
set_class_attr(str, "__iter__", lambda self: __SeqIter(self))
set_class_attr(dict, "__iter__", lambda self: __SeqIter(self.keys()))
set_class_attr(set, "__iter__", lambda self: __SeqIter(self.elems()))

def isinstance(o, t):
	def f(cls):
		if cls == t:
			return True
		for base in cls.__bases__:
			if f(base):
				return True
		return False
	return f(o.__class__)

class __Slice:
	def __init__(self, start, stop, step):
		self.start = start
		self.stop = stop
		self.step = step

def slice(start, stop=None, step=None):
	if stop == None:
		return __Slice(None, start, None)
	elif step == None:
		return __Slice(start, stop, None)
	else:
		return __Slice(start, stop, step)

class __Range:
	def __init__(self, start, end, step):
		self.start = start
		self.end = end
		self.step = step
	def __iter__(self):
		return __RangeIter(self.start, self.end, self.step)

class __RangeIter:
	def __init__(self, start, end, step):
		self.cur = start
		self.end = end
		self.step = step
	def __iter__(self):
		return self
	def __next__(self):
		if self.step > 0:
			if self.cur >= self.end:
				raise StopIteration()
		else:
			if self.cur <= self.end:
				raise StopIteration()
		v = self.cur
		self.cur = self.cur + self.step
		return v

def range(start, end=None, step=None):
	if end == None:
		return __Range(0, start, 1)
	elif step == None:
		return __Range(start, end, 1)
	else:
		return __Range(start, end, step)

class __Enumerate:
	def __init__(self, it, start):
		self.it = it
		self.i = start
	def __iter__(self):
		return self
	def __next__(self):
		v = self.it.__next__()
		i = self.i
		self.i = self.i + 1
		return (i, v)

def enumerate(x, start=0):
	return __Enumerate(x.__iter__(), start)

class __Module:
	pass
`

// runPrelude compiles and executes the prelude in the __builtins__ module.
func (ctx *Context) runPrelude() error {
	ctx.currentModule = append(ctx.currentModule, "__builtins__")
	defer func() {
		ctx.currentModule = ctx.currentModule[:len(ctx.currentModule)-1]
	}()
	fn := ctx.Compile(preludeSource, "__builtins__")
	if fn == nil {
		return ctx.errorFromPending()
	}
	if ctx.Call(fn, nil, nil) == nil {
		return ctx.errorFromPending()
	}
	return nil
}
