// Package apierr defines the user-facing error taxonomy shared by every
// HTTP handler. Each error carries a stable status code and a human-readable
// message and serializes to the uniform {message, status, statusCode} shape.
package apierr

import (
	"errors"
	"net/http"
)

// Error is a user-facing API error. It propagates unmodified from the
// service layer to the HTTP boundary.
type Error struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	cause      error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the wrapped downstream error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Status returns the textual form of the status code, e.g. "Bad Request".
func (e *Error) Status() string {
	return http.StatusText(e.StatusCode)
}

// WithCause attaches a downstream error without changing what the client sees.
func (e *Error) WithCause(err error) *Error {
	return &Error{Message: e.Message, StatusCode: e.StatusCode, cause: err}
}

func New(statusCode int, message string) *Error {
	return &Error{Message: message, StatusCode: statusCode}
}

// BadRequest reports a validation, uniqueness or confirmation failure.
func BadRequest(message string) *Error {
	return New(http.StatusBadRequest, message)
}

// Unauthorized reports missing, invalid or mismatched credentials or tokens.
func Unauthorized(message string) *Error {
	return New(http.StatusUnauthorized, message)
}

// NotFound reports that no matching record or token exists.
func NotFound(message string) *Error {
	return New(http.StatusNotFound, message)
}

// Server reports a downstream I/O or upload failure.
func Server(message string) *Error {
	return New(http.StatusInternalServerError, message)
}

// From extracts an *Error from err's chain. Unrecognized errors map to a
// generic server failure so nothing leaks internals to the client.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Server("Server error. Try again.").WithCause(err)
}
