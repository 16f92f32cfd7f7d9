// Package errors provides structured error types for gridkit.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the grouping core, the layout core and their hosts
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The codes mirror the failure taxonomy of the engine:
//   - CONFIGURATION: mismatched grouping/header arrays, conforming a function-derived key
//   - LOOKUP_MISS: moving or removing a record the tree does not hold
//   - CONSTRAINT_UNSATISFIABLE: minimum widths cannot fit the viewport
//   - INVALID_*: input validation failures
//
// None of these are fatal. The engine logs them as warnings and continues with a
// best-effort result; operations that abort return the error and keep their prior state.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfiguration, "level %d has no field", level)
//	if errors.Is(err, errors.ErrCodeConfiguration) {
//	    // Handle configuration error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Engine errors
	ErrCodeConfiguration           Code = "CONFIGURATION"
	ErrCodeLookupMiss              Code = "LOOKUP_MISS"
	ErrCodeConstraintUnsatisfiable Code = "CONSTRAINT_UNSATISFIABLE"

	// Input validation errors
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidWidth Code = "INVALID_WIDTH"
	ErrCodeInvalidMode  Code = "INVALID_MODE"
	ErrCodeInvalidField Code = "INVALID_FIELD"
	ErrCodeInvalidPath  Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// ConstraintError describes a width distribution that could not honor every
// minimum width inside the available space.
type ConstraintError struct {
	Available int // Width the columns had to fit into
	Required  int // Width actually used after clamping to minimums
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	return fmt.Sprintf("columns need %dpx but only %dpx available (overflow %dpx)",
		e.Required, e.Available, e.Overflow())
}

// Overflow returns how many pixels the columns exceed the available width by.
func (e *ConstraintError) Overflow() int {
	if e.Required <= e.Available {
		return 0
	}
	return e.Required - e.Available
}

// Code returns the error code for this error type.
func (e *ConstraintError) Code() Code {
	return ErrCodeConstraintUnsatisfiable
}
