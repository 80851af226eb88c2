// Package errors defines the structured error type shared by the
// searcher's components. Every error that crosses a component boundary
// carries a Kind so the HTTP layer and the stream consumer can decide
// how to surface or recover from it.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation decisions.
type Kind int

const (
	// KindValidation is a rejected query. Surfaced as HTTP 422.
	KindValidation Kind = iota

	// KindStoreTransient is a connection reset or timeout talking to the
	// document store. Retryable on the ingest path, 5xx on the read path.
	KindStoreTransient

	// KindStoreContract is a store response that violates the adapter
	// contract (e.g. a hit without an _id). Indicates a programming error.
	KindStoreContract

	// KindStartup is a fatal initialization failure; the process exits.
	KindStartup

	// KindStream is an unexpected stream-consumer failure.
	KindStream
)

// String returns the kind's wire-stable name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStoreTransient:
		return "store_transient"
	case KindStoreContract:
		return "store_contract"
	case KindStartup:
		return "startup"
	case KindStream:
		return "stream"
	default:
		return "unknown"
	}
}

// Error is the structured error type for the searcher.
type Error struct {
	// Kind is the error taxonomy entry.
	Kind Kind

	// Message is the human-readable error message.
	Message string

	// Field optionally names the query field that caused a validation
	// error, using the request's parameter name.
	Field string

	// Input optionally carries the offending input value.
	Input any

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind, enabling errors.Is against kind sentinels.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Retryable reports whether the operation that produced the error may be
// retried. Only transient store errors qualify.
func (e *Error) Retryable() bool {
	return e.Kind == KindStoreTransient
}

// Validation creates a query-validation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// ValidationField creates a query-validation error attributed to a field.
func ValidationField(field, message string, input any) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field, Input: input}
}

// StoreTransient wraps a transient store failure.
func StoreTransient(message string, cause error) *Error {
	return &Error{Kind: KindStoreTransient, Message: message, Cause: cause}
}

// StoreContract wraps a store response that broke the adapter contract.
func StoreContract(message string, cause error) *Error {
	return &Error{Kind: KindStoreContract, Message: message, Cause: cause}
}

// Startup wraps a fatal initialization failure.
func Startup(message string, cause error) *Error {
	return &Error{Kind: KindStartup, Message: message, Cause: cause}
}

// Stream wraps an unexpected stream-consumer failure.
func Stream(message string, cause error) *Error {
	return &Error{Kind: KindStream, Message: message, Cause: cause}
}

// IsKind reports whether err (or anything it wraps) is an Error of the
// given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// AsError extracts the structured error from a chain, or nil.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
