package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Code    string
	Err     error
	Details []string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func newf(status int, code, format string, args ...interface{}) *Error {
	return New(status, code, fmt.Errorf(format, args...))
}

func BadRequest(code, format string, args ...interface{}) *Error {
	return newf(http.StatusBadRequest, code, format, args...)
}

func Unauthorized(code, format string, args ...interface{}) *Error {
	return newf(http.StatusUnauthorized, code, format, args...)
}

func PaymentRequired(code, format string, args ...interface{}) *Error {
	return newf(http.StatusPaymentRequired, code, format, args...)
}

func Forbidden(code, format string, args ...interface{}) *Error {
	return newf(http.StatusForbidden, code, format, args...)
}

func NotFound(code, format string, args ...interface{}) *Error {
	return newf(http.StatusNotFound, code, format, args...)
}

func Conflict(code, format string, args ...interface{}) *Error {
	return newf(http.StatusConflict, code, format, args...)
}

func TooLarge(code, format string, args ...interface{}) *Error {
	return newf(http.StatusRequestEntityTooLarge, code, format, args...)
}

func Unavailable(code, format string, args ...interface{}) *Error {
	return newf(http.StatusServiceUnavailable, code, format, args...)
}

// Validation wraps binder or field errors into a 400 with per-field details.
func Validation(details ...string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    "validation_failed",
		Err:     errors.New("request validation failed"),
		Details: details,
	}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Is reports whether err carries the given HTTP status.
func Is(err error, status int) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Status == status
}
