// Package failure defines the closed set of ways an upstream employee call
// can fail.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The set is closed; callers switch on it
// exhaustively.
type Kind string

const (
	// KindUnavailable is a transport failure: connection refused, reset, timeout.
	KindUnavailable Kind = "upstream_unavailable"

	// KindRateLimited means upstream answered 429. It is never retried here.
	KindRateLimited Kind = "upstream_rate_limited"

	// KindRejected means upstream answered with a 4xx other than 404 and 429.
	KindRejected Kind = "upstream_rejected"

	// KindNotFound means upstream answered 404.
	KindNotFound Kind = "upstream_not_found"

	// KindFault means upstream answered 5xx.
	KindFault Kind = "upstream_fault"

	// KindDecode means the envelope or its data did not match the expected shape.
	KindDecode Kind = "decode_error"
)

// Kinds lists every Kind.
func Kinds() []Kind {
	return []Kind{KindUnavailable, KindRateLimited, KindRejected, KindNotFound, KindFault, KindDecode}
}

func (k Kind) String() string {
	return string(k)
}

// Error is the error returned by the upstream client and envelope codec.
type Error struct {
	Kind       Kind
	Op         string // upstream operation: list, get, create, delete
	StatusCode int    // upstream HTTP status, 0 when no response was received
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s]", e.Kind)
	if e.Op != "" {
		msg = e.Op + " " + msg
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s status %d", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind, so errors.Is(err, &Error{Kind: k}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

func Wrap(kind Kind, op string, err error, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// FromStatus classifies a non-2xx upstream status. It returns nil for 2xx.
func FromStatus(op string, status int, message string) *Error {
	var kind Kind
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == 429:
		kind = KindRateLimited
	case status == 404:
		kind = KindNotFound
	case status >= 400 && status < 500:
		kind = KindRejected
	default:
		kind = KindFault
	}
	return &Error{Kind: kind, Op: op, StatusCode: status, Message: message}
}

// KindOf returns the Kind carried by err, or "" when err is not a failure.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
