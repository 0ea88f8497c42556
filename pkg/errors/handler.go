package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// handlerBox lets atomic.Pointer hold an interface value.
type handlerBox struct{ h ErrorHandler }

var current atomic.Pointer[handlerBox]

// Handler returns the handler that Report and ReportPanic deliver to.
// Until SetHandler is called it is a non-verbose LogHandler.
func Handler() ErrorHandler {
	if b := current.Load(); b != nil {
		return b.h
	}
	return defaultHandler
}

var defaultHandler ErrorHandler = &LogHandler{}

// SetHandler installs h and returns the previous handler, so tests can
// restore it. A nil h restores the default LogHandler.
func SetHandler(h ErrorHandler) ErrorHandler {
	if h == nil {
		h = defaultHandler
	}
	prev := current.Swap(&handlerBox{h: h})
	if prev == nil {
		return defaultHandler
	}
	return prev.h
}

// HandlerFuncs adapts plain functions to ErrorHandler. Nil fields drop the
// corresponding reports.
type HandlerFuncs struct {
	Error func(*MotionError)
	Panic func(*PanicError)
}

// HandleError calls f.Error.
func (f HandlerFuncs) HandleError(err *MotionError) {
	if f.Error != nil {
		f.Error(err)
	}
}

// HandlePanic calls f.Panic.
func (f HandlerFuncs) HandlePanic(err *PanicError) {
	if f.Panic != nil {
		f.Panic(err)
	}
}

// Report stamps err with the current time if it has none and delivers it to
// the installed handler.
func Report(err *MotionError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandleError(err)
}

// ReportPanic is Report for recovered panics.
func ReportPanic(err *PanicError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	Handler().HandlePanic(err)
}

// Recover reports a panic in progress as a PanicError for op. It must be
// called directly by a deferred statement:
//
//	defer errors.Recover("animation.Value.notify")
func Recover(op string) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
	}
}

// RecoverWithCallback is Recover followed by callback(r), which lets the
// caller turn the panic into a failed result.
func RecoverWithCallback(op string, callback func(r any)) {
	if r := recover(); r != nil {
		reportRecovered(op, r)
		if callback != nil {
			callback(r)
		}
	}
}

func reportRecovered(op string, r any) {
	ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
}

const ownPackage = "github.com/go-drift/motion/pkg/errors."

// recoveryFrames are left out of captured stacks.
var recoveryFrames = map[string]bool{
	ownPackage + "CaptureStack":        true,
	ownPackage + "reportRecovered":     true,
	ownPackage + "Recover":             true,
	ownPackage + "RecoverWithCallback": true,
}

// CaptureStack formats the caller's stack, one "function\n\tfile:line" entry
// per frame. Recovery helpers and runtime frames are left out, so a stack
// captured from a recovered panic starts at the panicking function.
func CaptureStack() string {
	var pcs [64]uintptr
	n := runtime.Callers(1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fn := frame.Function
		if !recoveryFrames[fn] && !strings.HasPrefix(fn, "runtime.") {
			sb.WriteString(fn)
			sb.WriteString("\n\t")
			sb.WriteString(frame.File)
			sb.WriteByte(':')
			sb.WriteString(strconv.Itoa(frame.Line))
			sb.WriteByte('\n')
		}
		if !more {
			break
		}
	}
	return sb.String()
}
