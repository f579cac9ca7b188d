// Package apperr holds the error kinds flightcast distinguishes between.
// Network and parse failures come from upstream calls, validation failures are
// shown to the user, quota failures come from the durable cache.
package apperr

import (
	"errors"
	"fmt"
)

// Kind represents the category of error.
type Kind int

const (
	KindUnknown Kind = iota
	// KindNetwork is a transport error or a non-success HTTP status.
	KindNetwork
	// KindParse is an upstream payload with an unexpected shape.
	KindParse
	// KindValidation is user input that breaks a form rule.
	KindValidation
	// KindStorageQuota is a durable cache write that was rejected for lack of space.
	KindStorageQuota
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindValidation:
		return "validation"
	case KindStorageQuota:
		return "storage_quota"
	default:
		return "unknown"
	}
}

// Error is a flightcast error with a typed Kind.
type Error struct {
	Kind    Kind
	Message string
	Op      string // Operation that failed (optional)
	Field   string // Form field a validation error refers to (optional)
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the operation that failed.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// Network creates a network failure.
func Network(message string, err error) *Error {
	return Wrap(KindNetwork, message, err)
}

// Parse creates a payload parse failure.
func Parse(message string, err error) *Error {
	return Wrap(KindParse, message, err)
}

// Validation creates a validation failure bound to a form field.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// Quota creates a storage quota failure.
func Quota(message string, err error) *Error {
	return Wrap(KindStorageQuota, message, err)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsUpstream reports whether err is a network or parse failure. Parse failures
// are handled exactly like network failures.
func IsUpstream(err error) bool {
	k := KindOf(err)
	return k == KindNetwork || k == KindParse
}
