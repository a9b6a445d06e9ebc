// Package apperr defines the typed application errors surfaced by the API.
// Every error carries a stable code, an HTTP status and a client-safe message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned in the error envelope.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "RESOURCE_NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
)

// Error is a typed application error.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// BadRequest returns a 400 error for malformed input.
func BadRequest(message string) *Error {
	return &Error{Code: CodeBadRequest, Status: http.StatusBadRequest, Message: message}
}

// Unauthorized returns a 401 error for missing or rejected credentials.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "not authorized"
	}
	return &Error{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

// Forbidden returns a 403 error for invalid or expired tokens.
func Forbidden(message string) *Error {
	if message == "" {
		message = "access denied"
	}
	return &Error{Code: CodeForbidden, Status: http.StatusForbidden, Message: message}
}

// NotFound returns a 404 error for an unknown resource.
func NotFound(resource, id string) *Error {
	message := fmt.Sprintf("resource %s was not found", resource)
	if id != "" {
		message = fmt.Sprintf("resource %s with id %s was not found", resource, id)
	}
	return &Error{Code: CodeNotFound, Status: http.StatusNotFound, Message: message}
}

// Conflict returns a 409 error. Reserved, no current producer.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Status: http.StatusConflict, Message: message}
}

// Validation returns a 400 error aggregating field-level messages.
func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Status: http.StatusBadRequest, Message: message}
}

// Internal returns a 500 error with a client-safe message.
func Internal(message string) *Error {
	if message == "" {
		message = "an unexpected error occurred"
	}
	return &Error{Code: CodeInternal, Status: http.StatusInternalServerError, Message: message}
}

// From unwraps err into an *Error, or nil when err is not an
// application error.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// IsClientError reports whether err is an application error with a 4xx
// status. The transaction interceptor logs these as warnings rather
// than errors.
func IsClientError(err error) bool {
	e := From(err)
	return e != nil && e.Status >= 400 && e.Status < 500
}
