// Package httperr carries an HTTP status code and a user-facing message along
// with an error, so handlers can just return errors.
package httperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an error with an HTTP status. The error text is for logs, the
// message is what gets sent back to the user.
type Error struct {
	code    int
	err     error
	userMsg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %v", e.code, e.err)
}

func (e *Error) Unwrap() error {
	return e.err
}

// Code returns the HTTP status code for the error.
func (e *Error) Code() int {
	return e.code
}

// WithMessage sets the message shown to the user, which defaults to the
// status text.
func (e *Error) WithMessage(msg string) *Error {
	e.userMsg = msg
	return e
}

func newErr(code int, format string, args ...interface{}) *Error {
	return &Error{code: code, err: fmt.Errorf(format, args...)}
}

func BadRequest(format string, args ...interface{}) *Error {
	return newErr(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...interface{}) *Error {
	return newErr(http.StatusUnauthorized, format, args...)
}

func Forbidden(format string, args ...interface{}) *Error {
	return newErr(http.StatusForbidden, format, args...)
}

func NotFound(format string, args ...interface{}) *Error {
	return newErr(http.StatusNotFound, format, args...)
}

func MethodNotAllowed(format string, args ...interface{}) *Error {
	return newErr(http.StatusMethodNotAllowed, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newErr(http.StatusConflict, format, args...)
}

func Internal(format string, args ...interface{}) *Error {
	return newErr(http.StatusInternalServerError, format, args...)
}

// Extract returns the status code and user message for err. Errors that
// didn't come from this package are internal errors, and their details aren't
// shown to the user.
func Extract(err error) (int, string) {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
	if e.userMsg != "" {
		return e.code, e.userMsg
	}
	return e.code, http.StatusText(e.code)
}
