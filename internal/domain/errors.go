package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without
// matching on message text.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrBadRequest      = errors.New("bad request")
	ErrTooManyRequests = errors.New("too many requests")
)

// E pairs a client-facing message with a sentinel kind. Error() returns just
// the message, so handlers can surface it verbatim while still branching on
// the kind with errors.Is.
func E(kind error, msg string) error { return &taggedError{kind: kind, msg: msg} }

type taggedError struct {
	kind error
	msg  string
}

func (e *taggedError) Error() string { return e.msg }
func (e *taggedError) Unwrap() error { return e.kind }

// RateLimitError carries the number of seconds the caller must wait before
// retrying. It unwraps to ErrTooManyRequests.
type RateLimitError struct {
	RetryAfter int // seconds
	Reason     string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry after %ds", e.Reason, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrTooManyRequests }
