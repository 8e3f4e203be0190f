package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind represents the type of error
type Kind int

const (
	// ErrStore is a persistence failure (500-class)
	ErrStore Kind = iota
	// ErrNotFound means the operation targeted a nonexistent identifier
	ErrNotFound
	// ErrValidation means a required field was missing or invalid
	ErrValidation
	// ErrTransport is a client-side network or decode failure with no usable server response
	ErrTransport
)

func (k Kind) String() string {
	switch k {
	case ErrNotFound:
		return "not_found"
	case ErrValidation:
		return "validation"
	case ErrTransport:
		return "transport"
	default:
		return "store"
	}
}

// Error is an application-level error with a kind for classification
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Constructor functions for common error types

func NotFound(msg string) *Error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Store wraps a persistence failure; msg is safe to show, err is not
func Store(msg string, err error) *Error {
	return &Error{Kind: ErrStore, Message: msg, Err: err}
}

func Transport(msg string, err error) *Error {
	return &Error{Kind: ErrTransport, Message: msg, Err: err}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
// Errors that carry no kind are treated as store failures.
func KindOf(err error) Kind {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return ErrStore
}

// Is reports whether err is an *Error of the given kind
func Is(err error, kind Kind) bool {
	var appErr *Error
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}

// UserFacing reports whether the error should be shown to the user as an
// actionable message rather than a generic failure notice
func UserFacing(err error) bool {
	return Is(err, ErrValidation) || Is(err, ErrNotFound)
}
