package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the machine-readable classification of a pipeline failure.
type ErrorKind string

const (
	// KindInvalidInput marks malformed or missing caller input. Never retried.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindNotFound marks an unknown product id in mock mode. Never retried.
	KindNotFound ErrorKind = "not_found"
	// KindTransientProvider marks a retryable reasoning-backend failure
	// (timeout, rate limit, unavailable).
	KindTransientProvider ErrorKind = "transient_provider_failure"
	// KindUnparsableResponse marks backend text no recovery stage could parse.
	KindUnparsableResponse ErrorKind = "unparsable_response"
	// KindSchemaViolation marks parsed output that fails validation.
	KindSchemaViolation ErrorKind = "schema_violation"
	// KindCanceled marks a request abandoned by the caller before the
	// pipeline finished.
	KindCanceled ErrorKind = "canceled"
	// KindAllProvidersFailed is terminal: every configured provider was
	// exhausted and no decision was produced.
	KindAllProvidersFailed ErrorKind = "all_providers_failed"
)

// Error is the structured failure type surfaced by the decision pipeline.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a structured pipeline error.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a cause to a structured pipeline error.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the error kind, or empty string for untyped errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
