// Package apperr defines the failure taxonomy shared by every domain handler
// and the echo error handler that renders it at the boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for status-code mapping at the HTTP boundary.
type Kind int

const (
	KindUnclassified Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindProtectedResource
	KindNotFound
	KindConflict
	KindUploadRejected
)

// Error is a typed failure raised by services and rendered by the error
// handler. Fields carries per-field validation messages when Kind is
// KindValidation.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Status maps the error kind to its HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindUploadRejected:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden, KindProtectedResource:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Protected marks an attempt to delete or deactivate the primary admin
// account. It is rejected before any store access, for every caller role.
func Protected(message string) *Error {
	return &Error{Kind: KindProtectedResource, Message: message}
}

func NotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// Conflict wraps a uniqueness or referential-integrity violation. The raw
// store error stays in the cause and never reaches the client.
func Conflict(message string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: message, cause: cause}
}

func UploadRejected(message string) *Error {
	return &Error{Kind: KindUploadRejected, Message: message}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindUnclassified, Message: message, cause: cause}
}

// As extracts an *Error from err, or nil when err is of another type.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
