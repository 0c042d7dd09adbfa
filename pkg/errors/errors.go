// Package errors provides structured error types for circuitry.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and library packages
//   - Machine-readable error codes for programmatic handling
//   - A split between blocking failures and non-blocking warnings
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Data-quality codes (MALFORMED_CAPACITY, ZONE_SPLIT_CONNECTION,
// MULTI_PARENT_NODE, UNKNOWN_ITEM) describe problems in inventory data that the
// engine recovers from. PORT_ALREADY_USED and INVALID_PORT reject a caller's
// choice without touching stored state. STORE_UNAVAILABLE is the only code a
// presentation layer should treat as blocking, with a retry action.
//
// # Usage
//
//	err := errors.New(errors.ErrCodePortAlreadyUsed, "%s on %s is connected to %s", port, item, peer)
//	if errors.Is(err, errors.ErrCodePortAlreadyUsed) {
//	    // show "port already in use"
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStoreUnavailable, origErr, "list connections for %s", deployment)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidVizType Code = "INVALID_VIZ_TYPE"
	ErrCodeInvalidPort    Code = "INVALID_PORT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Inventory data-quality findings (recovered locally)
	ErrCodeMalformedCapacity   Code = "MALFORMED_CAPACITY"
	ErrCodeZoneSplitConnection Code = "ZONE_SPLIT_CONNECTION"
	ErrCodeMultiParentNode     Code = "MULTI_PARENT_NODE"
	ErrCodeUnknownItem         Code = "UNKNOWN_ITEM"

	// Port allocation errors
	ErrCodePortAlreadyUsed Code = "PORT_ALREADY_USED"
	ErrCodeSelectorClosed  Code = "SELECTOR_CLOSED"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Store errors
	ErrCodeStoreUnavailable Code = "STORE_UNAVAILABLE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// IsWarning reports whether code should surface as a non-blocking warning.
// Store outages and internal failures block the view; everything else is
// something the user can read past.
func IsWarning(code Code) bool {
	switch code {
	case ErrCodeStoreUnavailable, ErrCodeInternal, "":
		return false
	default:
		return true
	}
}
