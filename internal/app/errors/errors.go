package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error for propagation decisions at component boundaries.
type Kind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown Kind = iota
	// KindValidation is bad input, rejected before any external call.
	KindValidation
	// KindNotFound is an unknown job handle or a video reference that stayed
	// invisible after the retry budget was exhausted. Terminal.
	KindNotFound
	// KindTransientBackend is a timeout or throttle from an external backend;
	// retried a bounded number of times before being surfaced.
	KindTransientBackend
)

// Error is the standard error carrier: a message, an optional cause, and a
// kind used by callers to decide retry/report behavior.
type Error struct {
	kind    Kind
	message string
	cause   error
}

// New creates a new unclassified error.
func New(message string) *Error {
	return &Error{kind: KindUnknown, message: message}
}

// Newf creates a new formatted unclassified error.
func Newf(format string, args ...interface{}) *Error {
	return &Error{kind: KindUnknown, message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{kind: KindValidation, message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not-found error for an item and its identifier.
func NotFound(itemType, identifier string) *Error {
	return &Error{kind: KindNotFound, message: fmt.Sprintf("%s not found: %s", itemType, identifier)}
}

// Transient creates a transient-backend error wrapping its cause.
func Transient(cause error, format string, args ...interface{}) *Error {
	return &Error{kind: KindTransientBackend, message: fmt.Sprintf(format, args...), cause: cause}
}

// Wrap wraps an error with additional context, preserving its kind.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{kind: KindOf(err), message: message, cause: err}
}

// Wrapf wraps an error with formatted context, preserving its kind.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{kind: KindOf(err), message: fmt.Sprintf(format, args...), cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// KindOf returns the classification of err, walking the cause chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsTransient reports whether err is a transient backend error.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransientBackend
}

// RequiredField returns a validation error for a missing required field.
func RequiredField(field string) error {
	return Validation("%s is required", field)
}

// InvalidField returns a validation error for an invalid field value.
func InvalidField(field, reason string) error {
	return Validation("%s is invalid: %s", field, reason)
}

// Timeout returns a transient error for an operation that exceeded its budget.
func Timeout(operation string, duration string) error {
	return Transient(nil, "%s timeout after %s", operation, duration)
}
