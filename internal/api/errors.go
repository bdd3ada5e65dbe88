package api

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnauthorized is returned when the backend answers 401. By the time
	// the caller sees it, the token cookie has been purged and the
	// auth-failure handler has fired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is returned when a payload is rejected locally, before
	// any network request is made.
	ErrValidation = errors.New("validation failed")
)

// APIError is a server-rejected request: the backend answered with a
// non-2xx status. Detail carries the server-supplied message when the
// error payload had one, or the operation's generic fallback otherwise.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Op is the logical operation that failed (e.g. "login", "create_post").
	Op string

	// Detail is the human-readable message. Never empty.
	Detail string
}

// Error returns the human-readable message.
func (e *APIError) Error() string {
	return e.Detail
}

// Is reports whether this error matches the target error.
// A 401 APIError matches ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == 401
}

// TransportError is a transport-level failure (network unreachable,
// malformed response). No structured detail is available, so Message is
// the operation's generic fallback.
type TransportError struct {
	// Op is the logical operation that failed.
	Op string

	// Message is the operation-specific generic message. Never empty.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error returns the generic operation message.
func (e *TransportError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ValidationError is a locally rejected payload. It is produced before any
// request is sent.
type ValidationError struct {
	// Op is the logical operation whose payload was rejected.
	Op string

	// Problems are the per-field messages.
	Problems []string
}

// Error returns the joined per-field messages.
func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// errorBody is the backend's error payload shape.
type errorBody struct {
	Detail string `json:"detail"`
}

// httpStatusText is used in debug logs only; user-facing messages come
// from Detail or the operation fallback.
func httpStatusText(status int) string {
	return fmt.Sprintf("HTTP_%d", status)
}
