// Package errors provides the warning model for the choreo engine.
//
// Nothing in the engine unwinds mid-frame. Fallible operations return a
// *Warning as their error value and callers report it and keep going, so a
// malformed tween degrades locally instead of breaking its siblings.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies the category of a warning.
type Kind int

const (
	// KindUnknown indicates a warning of unknown type.
	KindUnknown Kind = iota
	// KindMissingTarget indicates a nil or unadaptable animation target.
	KindMissingTarget
	// KindUnknownEase indicates an ease name that is not registered.
	KindUnknownEase
	// KindPosition indicates a malformed position or label string.
	KindPosition
	// KindInterpolation indicates a NaN or unparsable property value.
	KindInterpolation
	// KindProperty indicates a target that does not expose a property.
	KindProperty
	// KindCallback indicates a recovered panic in a user callback.
	KindCallback
	// KindConfig indicates an invalid scene or engine configuration.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindMissingTarget:
		return "missing-target"
	case KindUnknownEase:
		return "unknown-ease"
	case KindPosition:
		return "position"
	case KindInterpolation:
		return "interpolation"
	case KindProperty:
		return "property"
	case KindCallback:
		return "callback"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal problem reported by the engine.
type Warning struct {
	// Op is the operation that degraded (e.g., "animation.ParseEase").
	Op string
	// Kind categorizes the warning.
	Kind Kind
	// Err is the underlying error.
	Err error
	// ID is the id of the animation involved, if any.
	ID string
	// Property is the animated property involved, if any.
	Property string
	// Target is the animation target involved, if any.
	Target any
	// StackTrace contains the call stack, when captured.
	StackTrace string
	// Timestamp is when the warning occurred.
	Timestamp time.Time
}

func (w *Warning) Error() string {
	switch {
	case w.Property != "" && w.ID != "":
		return fmt.Sprintf("%s [%s] id=%s property=%s: %v", w.Op, w.Kind, w.ID, w.Property, w.Err)
	case w.Property != "":
		return fmt.Sprintf("%s [%s] property=%s: %v", w.Op, w.Kind, w.Property, w.Err)
	case w.ID != "":
		return fmt.Sprintf("%s [%s] id=%s: %v", w.Op, w.Kind, w.ID, w.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", w.Op, w.Kind, w.Err)
}

func (w *Warning) Unwrap() error {
	return w.Err
}

// New returns a Warning for op with a formatted message.
func New(op string, kind Kind, format string, args ...any) *Warning {
	return &Warning{
		Op:   op,
		Kind: kind,
		Err:  fmt.Errorf(format, args...),
	}
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "animation.onComplete").
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

// ParseError represents a value that could not be parsed.
type ParseError struct {
	// Input is the offending text.
	Input string
	// DataType is the expected type name.
	DataType string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s from %q", e.DataType, e.Input)
}

// Handler receives warnings reported by the engine.
type Handler interface {
	// HandleWarning is called when an operation degrades.
	HandleWarning(w *Warning)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
