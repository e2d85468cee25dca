// Package errors provides structured error handling for the repeater layout engine.
//
// Misuse of the engine by hosting code (a wrong layout state, an offset layout
// origin under an unbounded window, a bad template registration, phases that do
// not increase) is a programming defect. Such errors are raised with [Raise],
// which reports the error and then panics with a *UsageError so the current
// layout pass aborts visibly.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindLayoutState indicates a layout state of the wrong type for a layout.
	KindLayoutState
	// KindLayoutOrigin indicates an invalid layout origin for the realization window.
	KindLayoutOrigin
	// KindTemplate indicates an empty or ambiguous template registration.
	KindTemplate
	// KindPhase indicates a non-increasing phase from a content-changing handler.
	KindPhase
	// KindOwner indicates an invalid owner passed to the recycle pool.
	KindOwner
	// KindReentrancy indicates layout re-entered itself or ran during a collection change.
	KindReentrancy
	// KindIndex indicates an index outside the items source.
	KindIndex
	// KindCollection indicates an unsupported collection change.
	KindCollection
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindLayoutState:
		return "layout_state"
	case KindLayoutOrigin:
		return "layout_origin"
	case KindTemplate:
		return "template"
	case KindPhase:
		return "phase"
	case KindOwner:
		return "owner"
	case KindReentrancy:
		return "reentrancy"
	case KindIndex:
		return "index"
	case KindCollection:
		return "collection"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinel causes wrapped by UsageError. Test for them with [Is].
var (
	ErrInvalidLayoutState     = stderrors.New("layout state has the wrong type for this layout")
	ErrLayoutOriginNotZero    = stderrors.New("layout origin must be (0,0) when the realization rect is unbounded")
	ErrNoTemplates            = stderrors.New("templates cannot be empty")
	ErrEmptyTemplateKey       = stderrors.New("template key cannot be empty")
	ErrUnknownTemplateKey     = stderrors.New("no template registered for key")
	ErrPhaseOrder             = stderrors.New("phases must be monotonically increasing")
	ErrInvalidOwner           = stderrors.New("element is attached to a container other than the owner")
	ErrReentrantLayout        = stderrors.New("reentrancy detected during layout")
	ErrLayoutDuringChange     = stderrors.New("cannot run layout in the middle of a collection change")
	ErrNestedCollectionChange = stderrors.New("collection changed while another change was being processed")
	ErrIndexOutOfRange        = stderrors.New("index is outside the items source")
	ErrInvalidReplace         = stderrors.New("replace must keep its start index and replace at least one item")
)

// UsageError represents misuse of the engine by hosting code.
type UsageError struct {
	// Op is the operation that failed (e.g., "flow.StackLayout.InitializeForContext").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "engine.StepFrame").
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

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when a usage error is raised.
	HandleError(err *UsageError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return stderrors.New(text)
}
