// Package domainerrors defines the code-carrying error type used across the
// portal. Services attach a stable machine-readable code to every failure;
// the HTTP layer maps codes to status codes, and callers branch on codes with
// HasCode instead of matching message strings.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping and caller branching.
type Code string

const (
	// CodeValidation marks input that fails a domain rule.
	CodeValidation Code = "validation"
	// CodeNotEditable marks a write against a record whose status locks it.
	CodeNotEditable Code = "not_editable"
	// CodeIllegalTransition marks a status change the state machine forbids.
	CodeIllegalTransition Code = "illegal_transition"
	// CodeBadRequest marks a request the transport layer could not decode.
	CodeBadRequest Code = "bad_request"
	// CodeUnauthorized marks a missing or failed authentication.
	CodeUnauthorized Code = "unauthorized"
	// CodeForbidden marks an authenticated actor lacking permission.
	CodeForbidden Code = "forbidden"
	// CodeNotFound marks a record that does not exist.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a uniqueness clash or a lost concurrent-write race.
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks a state the system promises never to reach.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeTimeout marks an operation cancelled by deadline.
	CodeTimeout Code = "timeout"
	// CodeInternal marks everything else.
	CodeInternal Code = "internal"
)

// Error is a domain error with a classification code and optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a domain error that preserves err as the cause for errors.Is
// and errors.As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
