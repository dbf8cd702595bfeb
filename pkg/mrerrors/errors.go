// Package mrerrors defines the error kinds raised by the MapReduce runtime.
package mrerrors

import (
	"errors"
	"fmt"
)

// Error codes for the runtime.
const (
	CodePoolCreation       = "POOL_CREATION_ERROR"
	CodeLockCreation       = "LOCK_CREATION_ERROR"
	CodeAllocation         = "ALLOCATION_ERROR"
	CodeInvariantViolation = "INVARIANT_VIOLATION"
	CodeUserFunc           = "USER_FUNC_ERROR"
	CodeEmptyInput         = "EMPTY_INPUT"
	CodeInvalidConfig      = "INVALID_CONFIG"
)

// AppError represents a runtime error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Resource exhaustion errors: returned, never panicked.
var (
	ErrPoolCreation  = New(CodePoolCreation, "failed to create worker pool")
	ErrLockCreation  = New(CodeLockCreation, "failed to create lock")
	ErrAllocation    = New(CodeAllocation, "failed to allocate container storage")
	ErrEmptyInput    = New(CodeEmptyInput, "no input data supplied")
	ErrInvalidConfig = New(CodeInvalidConfig, "invalid configuration")
)

// Invariant builds the error carried by a panic raised when an internal
// invariant is violated. Callers panic with the result; they do not
// return it, since an invariant violation is a programming bug in the
// runtime, not a recoverable status.
func Invariant(message string) *AppError {
	return New(CodeInvariantViolation, message)
}

// UserFunc wraps a panic or error raised inside a user-supplied map/reduce
// callback so it surfaces on the caller's goroutine with the original
// value reachable via Unwrap.
func UserFunc(err error) *AppError {
	return Wrap(CodeUserFunc, "user map/reduce function failed", err)
}

// IsInvariantViolation reports whether err is an internal invariant panic.
func IsInvariantViolation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == CodeInvariantViolation
}

// IsUserFuncError reports whether err originated from user callback code.
func IsUserFuncError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == CodeUserFunc
}

// Code extracts the error code from an error, or CodeUnknown-equivalent
// empty string if err does not wrap an AppError.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
