// Package errors provides structured error handling for the motion engine.
//
// Errors fall into two families. Configuration and state errors are returned
// synchronously from constructors, Start calls, and gesture entry points.
// Failures that happen while a frame is being advanced are never returned;
// they are wrapped in a [MotionError], passed to the global [ErrorHandler],
// and delivered to the affected animation's completion callback.
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
	// KindConfig indicates malformed animation, easing, interpolation or file configuration.
	KindConfig
	// KindState indicates an operation invalid for the current lifecycle state.
	KindState
	// KindTick indicates a failure while advancing an animation during a frame.
	KindTick
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindState:
		return "state"
	case KindTick:
		return "tick"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// MotionError represents a structured error raised by the engine.
type MotionError struct {
	// Op is the operation that failed (e.g., "animation.Scheduler.Tick").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Run is the animation run identifier, if applicable.
	Run string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *MotionError) Error() string {
	if e.Run != "" {
		return fmt.Sprintf("%s [%s] run=%s: %v", e.Op, e.Kind, e.Run, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *MotionError) Unwrap() error {
	return e.Err
}

// ConfigError reports malformed configuration: interpolation ranges, easing
// composition, or driver parameters that cannot converge.
type ConfigError struct {
	// Field names the offending setting (e.g., "InputRange", "Deceleration").
	Field string
	// Reason describes what is wrong with it.
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Configf returns a ConfigError for field with a formatted reason.
func Configf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// StateError reports an operation that is not valid in the current
// lifecycle state, such as restarting a finished animation or sending
// events to a terminated gesture sequence.
type StateError struct {
	// Op is the rejected operation.
	Op string
	// State is the state the target was in.
	State string
	// Reason is optional extra context.
	Reason string
}

func (e *StateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: invalid in state %s: %s", e.Op, e.State, e.Reason)
	}
	return fmt.Sprintf("%s: invalid in state %s", e.Op, e.State)
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "animation.Scheduler.Tick").
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

// ErrorHandler receives errors reported by the engine.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *MotionError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
