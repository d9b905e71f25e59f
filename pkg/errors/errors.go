// Package errors provides the structured error taxonomy of the render pipeline.
//
// Arity and protocol violations are returned synchronously from tree mutations.
// Programming violations (stale identifiers, marking detached nodes dirty,
// mutating children mid-layout) are raised with panic(*RenderError).
// Layout and paint failures are aggregated per flush and returned to the caller
// that requested the frame.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindArity indicates a child mutation that contradicts a node's arity.
	KindArity
	// KindProgramming indicates a broken caller, such as dirtying a detached node.
	KindProgramming
	// KindStaleReference indicates an identifier that no longer resolves.
	KindStaleReference
	// KindProtocol indicates a child whose layout protocol the parent cannot host.
	KindProtocol
	// KindLayout indicates a node kind that could not produce valid geometry.
	KindLayout
	// KindPaint indicates a node kind that could not produce valid paint output.
	KindPaint
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates an invalid configuration file.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindArity:
		return "arity"
	case KindProgramming:
		return "programming"
	case KindStaleReference:
		return "stale reference"
	case KindProtocol:
		return "protocol"
	case KindLayout:
		return "layout"
	case KindPaint:
		return "paint"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// kindSentinel is matched by errors.Is against any RenderError of that kind.
type kindSentinel ErrorKind

func (k kindSentinel) Error() string {
	return ErrorKind(k).String() + " violation"
}

// Sentinels for use with the standard library's errors.Is.
var (
	ErrArityViolation       error = kindSentinel(KindArity)
	ErrProgrammingViolation error = kindSentinel(KindProgramming)
	ErrStaleReference       error = kindSentinel(KindStaleReference)
	ErrProtocolMismatch     error = kindSentinel(KindProtocol)
	ErrLayoutFailure        error = kindSentinel(KindLayout)
	ErrPaintFailure         error = kindSentinel(KindPaint)
	ErrInvalidConfig        error = kindSentinel(KindConfig)
)

// RenderError represents a structured error in the render pipeline.
type RenderError struct {
	// Op is the operation that failed (e.g., "render.Owner.AppendChild").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Node is a debug label for the node involved, if any.
	Node string
	// ID is the raw identifier of the node involved, or zero.
	ID uint64
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *RenderError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s [%s] node=%s: %v", e.Op, e.Kind, e.Node, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels (ErrArityViolation and friends).
func (e *RenderError) Is(target error) bool {
	k, ok := target.(kindSentinel)
	return ok && ErrorKind(k) == e.Kind
}

// New builds a RenderError with the current timestamp.
func New(op string, kind ErrorKind, err error) *RenderError {
	return &RenderError{Op: op, Kind: kind, Err: err, Timestamp: time.Now()}
}

// Newf builds a RenderError with a formatted message.
func Newf(op string, kind ErrorKind, format string, args ...any) *RenderError {
	return New(op, kind, fmt.Errorf(format, args...))
}

// Violation panics with a programming violation. It never returns.
func Violation(op string, kind ErrorKind, format string, args ...any) {
	err := Newf(op, kind, format, args...)
	err.StackTrace = CaptureStack()
	panic(err)
}

// ArityError describes a child count rejected by an arity tag.
type ArityError struct {
	// Arity is the name of the arity tag (e.g., "Single").
	Arity string
	// Count is the child count the mutation would have produced.
	Count int
	// Op is the mutation that was attempted ("add" or "remove").
	Op string
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s child would leave %s node with %d children", e.Op, e.Arity, e.Count)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "render.paint").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// ErrorHandler receives errors reported by the render pipeline.
type ErrorHandler interface {
	// HandleError is called when a frame phase fails.
	HandleError(err *RenderError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
