package errors

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler is the process-wide fallback handler used by owners that
	// were not given one explicitly. It defaults to LogHandler.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler configures the fallback error handler.
// Pass nil to restore the default LogHandler.
func SetHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		DefaultHandler = &LogHandler{}
	} else {
		DefaultHandler = h
	}
}

// Handler returns the current fallback handler.
func Handler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return DefaultHandler
}

// Report sends an error to h, or to the fallback handler when h is nil.
// If err.Timestamp is zero, it is set to the current time.
func Report(h ErrorHandler, err *RenderError) {
	if err == nil {
		return
	}
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	if h == nil {
		h = Handler()
	}
	if h != nil {
		h.HandleError(err)
	}
}

// ReportPanic sends a panic error to h, or to the fallback handler when h is nil.
func ReportPanic(h ErrorHandler, err *PanicError) {
	if err == nil {
		return
	}
	if h == nil {
		h = Handler()
	}
	if h != nil {
		h.HandlePanic(err)
	}
}

// Recover is a helper for deferred panic recovery at goroutine entry
// points. It recovers every panic, programming violations included, reports
// it to the fallback handler and, when errp is not nil, stores it in *errp.
// Usage: defer errors.Recover("operation.name", &err)
func Recover(op string, errp *error) {
	r := recover()
	if r == nil {
		return
	}
	p := &PanicError{
		Op:         op,
		Value:      r,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
	ReportPanic(nil, p)
	if errp != nil {
		*errp = p
	}
}

// RecoverWithCallback is like Recover but reports to h and then calls the
// callback with the constructed PanicError. Programming violations
// (panics carrying a *RenderError) are re-raised untouched.
func RecoverWithCallback(h ErrorHandler, op string, callback func(p *PanicError)) {
	r := recover()
	if r == nil {
		return
	}
	if re, ok := r.(*RenderError); ok && (re.Kind == KindProgramming || re.Kind == KindStaleReference) {
		panic(re)
	}
	p := &PanicError{
		Op:         op,
		Value:      r,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
	ReportPanic(h, p)
	if callback != nil {
		callback(p)
	}
}

// CaptureStack returns the current call stack as a string.
// It skips the first few frames to exclude the CaptureStack call itself.
func CaptureStack() string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		frame, more := frames.Next()
		sb.WriteString(frame.Function)
		sb.WriteString("\n\t")
		sb.WriteString(frame.File)
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(frame.Line))
		sb.WriteString("\n")
		if !more {
			break
		}
	}
	return sb.String()
}
