package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a service-layer error that carries the HTTP status and a
// stable machine-readable code for the response envelope.
type Error struct {
	Status int
	Code   string
	Err    error
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

func NotFound(code string) *Error {
	return &Error{Status: http.StatusNotFound, Code: code}
}

func BadRequest(code string, err error) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Err: err}
}

func Conflict(code string) *Error {
	return &Error{Status: http.StatusConflict, Code: code}
}

func Forbidden(code string) *Error {
	return &Error{Status: http.StatusForbidden, Code: code}
}

func Unauthorized(code string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: code}
}

// From extracts an *Error from err, or wraps it as a 500.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Err: err}
}
