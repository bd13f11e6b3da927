package wings

import (
	"errors"
	"fmt"
	"strings"
)

// ExcKind identifies a builtin exception class for RaiseException.
type ExcKind int

// The closed set of builtin exception kinds.
const (
	BaseException ExcKind = iota
	SystemExit
	Exception
	StopIteration
	ArithmeticError
	OverflowError
	ZeroDivisionError
	AttributeError
	ImportError
	LookupError
	IndexError
	KeyError
	MemoryError
	NameError
	OSError
	IsADirectoryError
	RuntimeError
	NotImplementedError
	RecursionError
	SyntaxError
	TypeError
	ValueError
)

func (ctx *Context) excClass(kind ExcKind) *Value {
	b := &ctx.builtins
	switch kind {
	case BaseException:
		return b.baseException
	case SystemExit:
		return b.systemExit
	case Exception:
		return b.exception
	case StopIteration:
		return b.stopIteration
	case ArithmeticError:
		return b.arithmeticError
	case OverflowError:
		return b.overflowError
	case ZeroDivisionError:
		return b.zeroDivisionError
	case AttributeError:
		return b.attributeError
	case ImportError:
		return b.importError
	case LookupError:
		return b.lookupError
	case IndexError:
		return b.indexError
	case KeyError:
		return b.keyError
	case MemoryError:
		return b.memoryError
	case NameError:
		return b.nameError
	case OSError:
		return b.osError
	case IsADirectoryError:
		return b.isADirectoryError
	case RuntimeError:
		return b.runtimeError
	case NotImplementedError:
		return b.notImplementedError
	case RecursionError:
		return b.recursionError
	case SyntaxError:
		return b.syntaxError
	case TypeError:
		return b.typeError
	case ValueError:
		return b.valueError
	}
	return nil
}

// RaiseException raises a builtin exception with the given message. The
// current trace is snapshotted into the exception at this moment.
func (ctx *Context) RaiseException(kind ExcKind, message string) {
	cls := ctx.excClass(kind)
	if cls == nil {
		// Bootstrap has not reached the prelude yet. Record the failure
		// through a bare instance so callers still observe a pending
		// exception.
		ctx.raiseBootstrap(message)
		return
	}
	ctx.RaiseExceptionClass(cls, message)
}

// RaiseExceptionf raises a builtin exception with a formatted message.
func (ctx *Context) RaiseExceptionf(kind ExcKind, format string, args ...interface{}) {
	ctx.RaiseException(kind, fmt.Sprintf(format, args...))
}

// RaiseExceptionClass instantiates the given exception class with message as
// its sole argument and raises the instance.
func (ctx *Context) RaiseExceptionClass(cls *Value, message string) {
	ctx.Protect(cls)
	defer ctx.Unprotect(cls)
	msg := ctx.NewString(message)
	if msg == nil {
		return
	}
	// If instantiation fails, the failure's own exception is already set.
	if exc := ctx.Call(cls, []*Value{msg}, nil); exc != nil {
		ctx.RaiseExceptionObject(exc)
	}
}

// RaiseExceptionObject raises an existing exception instance. Raising a
// value that is not a BaseException instance raises TypeError instead.
func (ctx *Context) RaiseExceptionObject(exc *Value) {
	if ctx.builtins.baseException != nil && !ctx.IsInstance(exc, []*Value{ctx.builtins.baseException}) {
		ctx.RaiseException(TypeError, "exceptions must derive from BaseException")
		return
	}
	ctx.currentException = exc
	ctx.exceptionTrace = append(ctx.exceptionTrace[:0], ctx.currentTrace...)
}

// raiseBootstrap reports a failure that occurs before the exception classes
// exist. The pending exception is a raw instance carrying only a message.
func (ctx *Context) raiseBootstrap(message string) {
	if ctx.currentException != nil {
		return
	}
	ctx.gcLock++
	v := ctx.alloc()
	ctx.gcLock--
	if v == nil {
		return
	}
	v.kind = KindInstance
	v.typ = "Exception"
	m := ctx.NewString(message)
	if m != nil {
		v.attrs.Set("message", m)
	}
	ctx.currentException = v
	ctx.exceptionTrace = append(ctx.exceptionTrace[:0], ctx.currentTrace...)
}

// RaiseArgumentCountError raises TypeError for a call with the wrong number
// of arguments. expected may be -1 when no single count is correct.
func (ctx *Context) RaiseArgumentCountError(given, expected int) {
	var msg string
	if expected != -1 {
		was := "were"
		if given == 1 {
			was = "was"
		}
		msg = fmt.Sprintf("function takes %d argument(s) but %d %s given", expected, given, was)
	} else {
		msg = fmt.Sprintf("function does not take %d argument(s)", given)
	}
	ctx.RaiseException(TypeError, msg)
}

// RaiseArgumentTypeError raises TypeError naming the 1-based argument that
// had the wrong type.
func (ctx *Context) RaiseArgumentTypeError(argIndex int, expected string) {
	ctx.RaiseExceptionf(TypeError, "argument %d expected type %s", argIndex+1, expected)
}

// RaiseAttributeError raises AttributeError for a missing attribute.
func (ctx *Context) RaiseAttributeError(v *Value, name string) {
	ctx.RaiseExceptionf(AttributeError, "'%s' object has no attribute '%s'", v.TypeName(), name)
}

// CurrentException returns the pending exception, or nil.
func (ctx *Context) CurrentException() *Value { return ctx.currentException }

// ClearException clears the pending exception and its frozen trace.
func (ctx *Context) ClearException() {
	ctx.currentException = nil
	ctx.exceptionTrace = ctx.exceptionTrace[:0]
}

// ErrorMessage formats the pending exception as a traceback. Returns "Ok"
// when no exception is pending.
func (ctx *Context) ErrorMessage() string {
	exc := ctx.currentException
	if exc == nil {
		return "Ok"
	}
	var sb strings.Builder
	sb.WriteString("Traceback (most recent call last):\n")
	for _, frame := range ctx.exceptionTrace {
		sb.WriteString("  Module ")
		sb.WriteString(frame.Module)
		if frame.Line > 0 {
			fmt.Fprintf(&sb, ", Line %d", frame.Line)
		}
		if frame.Func != "" && frame.Func != defaultFuncName {
			fmt.Fprintf(&sb, ", Function %s()", frame.Func)
		}
		sb.WriteByte('\n')
		if frame.LineText != "" {
			text := strings.ReplaceAll(frame.LineText, "\t", " ")
			skip := len(text) - len(strings.TrimLeft(text, " "))
			sb.WriteString("    ")
			sb.WriteString(text[skip:])
			sb.WriteByte('\n')
			if frame.Syntax && skip <= frame.Col-1 {
				sb.WriteString(strings.Repeat(" ", frame.Col-1+4-skip))
				sb.WriteString("^\n")
			}
		}
	}
	sb.WriteString(exc.TypeName())
	if msg := exc.attrs.Get("message"); msg != nil && msg.IsString() && msg.String() != "" {
		sb.WriteString(": ")
		sb.WriteString(msg.String())
	}
	sb.WriteByte('\n')
	return sb.String()
}

// errorFromPending converts the pending exception into a Go error for the
// embedding boundary, clearing it.
func (ctx *Context) errorFromPending() error {
	if ctx.currentException == nil {
		return errors.New("wings: unknown failure with no pending exception")
	}
	msg := ctx.ErrorMessage()
	ctx.ClearException()
	return errors.New(strings.TrimRight(msg, "\n"))
}
