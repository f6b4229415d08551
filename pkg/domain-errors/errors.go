// Package domainerrors provides coded domain errors so callers can branch on
// kind instead of matching strings. Stores return sentinel errors for
// infrastructure facts; services translate them into these coded errors at the
// domain boundary.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code discriminates domain error kinds.
type Code string

const (
	CodeInvalidInput         Code = "invalid_input"
	CodeNotFound             Code = "not_found"
	CodeDuplicateDocument    Code = "duplicate_document"
	CodeNotCurrent           Code = "not_current_version"
	CodeConflict             Code = "conflict"
	CodeImmutableState       Code = "immutable_state"
	CodeIncompleteCompliance Code = "incomplete_compliance"
	CodeStorageFailure       Code = "storage_failure"
	CodeInternal             Code = "internal"
)

// Error carries a code, a human-readable message, and optional structured
// details (field-level validation messages, outstanding document lists).
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	wrapped error
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.wrapped
}

// New creates a coded domain error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a coded domain error that preserves the underlying cause for
// errors.Is/errors.As chains.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, wrapped: cause}
}

// WithDetails attaches structured details and returns the same error.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// Is reports whether err (or anything it wraps) is a domain error with the
// given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// DetailsOf extracts structured details from err, if any.
func DetailsOf(err error) map[string]any {
	var de *Error
	if errors.As(err, &de) {
		return de.Details
	}
	return nil
}

// ToHTTPStatus maps a domain error code to an HTTP status so transports stay
// consistent without re-deriving the mapping per handler.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateDocument, CodeConflict, CodeImmutableState, CodeIncompleteCompliance:
		return http.StatusConflict
	case CodeNotCurrent:
		return http.StatusUnprocessableEntity
	case CodeStorageFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
