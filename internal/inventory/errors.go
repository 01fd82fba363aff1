package inventory

import (
	"errors"
	"fmt"
)

// Kind classifies inventory errors
type Kind string

const (
	// KindInvalidValue: a parameter failed format, range or existence checks
	KindInvalidValue Kind = "INVALID_VALUE"
	// KindInvalidAction: the transition is not legal in the current state
	KindInvalidAction Kind = "INVALID_ACTION"
	// KindNotFound: the box or pallet being acted on does not exist
	KindNotFound Kind = "NOT_FOUND"
	// KindInternal: the store rejected a ledger write; operators must look at it
	KindInternal Kind = "INTERNAL_ERROR"
)

// Error is the error type returned by every Manager operation for
// expected failures
type Error struct {
	Kind    Kind              `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a single detail to the error
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Wrap attaches the underlying cause
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrInvalidValue creates an invalid value error
func ErrInvalidValue(format string, args ...interface{}) *Error {
	return newError(KindInvalidValue, format, args...)
}

// ErrInvalidAction creates an invalid action error
func ErrInvalidAction(format string, args ...interface{}) *Error {
	return newError(KindInvalidAction, format, args...)
}

// ErrNotFound creates a not found error for a resource id
func ErrNotFound(resource, id string) *Error {
	return newError(KindNotFound, "%s not found", resource).WithDetail("id", id)
}

// KindOf returns the kind of err, or "" when err is not an inventory error
func KindOf(err error) Kind {
	var invErr *Error
	if errors.As(err, &invErr) {
		return invErr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// withBoxNumber tags an inventory error with the box it concerns
func withBoxNumber(err error, number string) error {
	var invErr *Error
	if errors.As(err, &invErr) {
		invErr.WithDetail("box_number", number)
	}
	return err
}
