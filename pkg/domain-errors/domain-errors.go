package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a failure raised by the facade itself (as opposed to a
// failure reported by the upstream employee service).
type Code string

const (
	CodeNotFound   Code = "not_found"
	CodeBadRequest Code = "bad_request"
	CodeValidation Code = "validation_failed"
	CodeInternal   Code = "internal_error"
	CodeTimeout    Code = "timeout"
)

// Error wraps a facade failure with a stable code.
type Error struct {
	Code    Code
	Message string
	// Fields maps a request field name to what is wrong with it.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches by code so errors.Is(err, &Error{Code: CodeNotFound}) works
// regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// NewFields builds an error that reports one message per offending field.
func NewFields(code Code, msg string, fields map[string]string) error {
	return &Error{Code: code, Message: msg, Fields: fields}
}

func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err. An existing domain code in the
// chain wins over the one passed in.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the domain code carried by err, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
