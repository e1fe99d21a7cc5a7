package driver

import (
	"errors"
	"fmt"
)

// ErrorClass classifies run failures so callers can choose an exit code.
type ErrorClass string

const (
	// ErrorClassConfig indicates an invalid configuration, rejected before
	// any cycle runs.
	ErrorClassConfig ErrorClass = "config"

	// ErrorClassResource indicates an output resource could not be acquired,
	// such as an output file that cannot be opened for writing.
	ErrorClassResource ErrorClass = "resource"

	// ErrorClassOutput indicates a write to a sink failed mid-run.
	ErrorClassOutput ErrorClass = "output"

	// ErrorClassHistory indicates the run history store failed.
	ErrorClassHistory ErrorClass = "history"
)

// Common error codes.
const (
	ErrCodeInvalidConfig = "INVALID_CONFIG"
	ErrCodeOpenFailed    = "OPEN_FAILED"
	ErrCodeWriteFailed   = "WRITE_FAILED"
	ErrCodeFlushFailed   = "FLUSH_FAILED"
	ErrCodeHistoryFailed = "HISTORY_FAILED"
)

// RunError is a classified error with context.
type RunError struct {
	// Class is the error classification.
	Class ErrorClass `json:"class"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Code is an optional error code for programmatic handling.
	Code string `json:"code,omitempty"`

	// Cycle is the cycle in progress when the error occurred, if any.
	Cycle uint64 `json:"cycle,omitempty"`

	// Err is the underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *RunError) Error() string {
	if e.Cycle != 0 {
		return fmt.Sprintf("[%s] %s (cycle=%d): %s", e.Class, e.Message, e.Cycle, e.unwrapMessage())
	}
	return fmt.Sprintf("[%s] %s: %s", e.Class, e.Message, e.unwrapMessage())
}

// Unwrap returns the underlying error for error chain inspection.
func (e *RunError) Unwrap() error {
	return e.Err
}

func (e *RunError) unwrapMessage() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// Is reports whether target is a RunError with the same class and code.
func (e *RunError) Is(target error) bool {
	t, ok := target.(*RunError)
	if !ok {
		return false
	}
	return e.Class == t.Class && e.Code == t.Code
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, err error) *RunError {
	return &RunError{
		Class:   ErrorClassConfig,
		Message: message,
		Code:    ErrCodeInvalidConfig,
		Err:     err,
	}
}

// NewResourceError creates a new resource acquisition error.
func NewResourceError(message string, err error) *RunError {
	return &RunError{
		Class:   ErrorClassResource,
		Message: message,
		Code:    ErrCodeOpenFailed,
		Err:     err,
	}
}

// NewOutputError creates a new sink write error.
func NewOutputError(message string, err error) *RunError {
	return &RunError{
		Class:   ErrorClassOutput,
		Message: message,
		Code:    ErrCodeWriteFailed,
		Err:     err,
	}
}

// NewHistoryError creates a new history store error.
func NewHistoryError(message string, err error) *RunError {
	return &RunError{
		Class:   ErrorClassHistory,
		Message: message,
		Code:    ErrCodeHistoryFailed,
		Err:     err,
	}
}

// WithCode sets the error code.
func (e *RunError) WithCode(code string) *RunError {
	e.Code = code
	return e
}

// WithCycle records the cycle in progress.
func (e *RunError) WithCycle(cycle uint64) *RunError {
	e.Cycle = cycle
	return e
}

// ClassOf returns the class of the first RunError in err's chain, or the
// empty class when there is none.
func ClassOf(err error) ErrorClass {
	var e *RunError
	if errors.As(err, &e) {
		return e.Class
	}
	return ""
}

// IsConfig returns true if the error is classified as a configuration error.
func IsConfig(err error) bool {
	return ClassOf(err) == ErrorClassConfig
}

// IsResource returns true if the error is classified as a resource error.
func IsResource(err error) bool {
	return ClassOf(err) == ErrorClassResource
}
