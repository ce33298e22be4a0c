package client

import (
	"errors"
	"fmt"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrGone             = errors.New("gone")
	ErrTeapot           = errors.New("teapot")
	ErrSendingError     = errors.New("sending error")
	ErrTooManyRequests  = errors.New("too many requests")
	ErrServerError      = errors.New("server error")
	// ErrUnexpectedStatus is the fallback for any >= 400 code not in the table.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrNotReady         = errors.New("not ready")

	// ErrTransport wraps network, timeout and body read failures.
	ErrTransport = errors.New("transport failure")

	ErrPathSegments   = errors.New("path segment count does not match template")
	ErrNotCallable    = errors.New("callable function required")
	ErrInvalidRequest = errors.New("invalid request")
)

// Error is the single error type returned by the dispatchers. Kind and Code
// identify the taxonomy entry; Err holds the kind's sentinel, optionally
// joined with the underlying cause.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("nylas: %s", e.Message)
	}
	return fmt.Sprintf("nylas: %d: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError returns the taxonomy entry for kind as an *Error.
func NewError(kind Kind) *Error {
	ent := entryFor(kind)
	return &Error{
		Kind:    kind,
		Code:    ent.code,
		Message: ent.message,
		Err:     ent.sentinel,
	}
}

// AsError finds the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return nil, false
	}
	return e, true
}

// KindOf reports the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	e, ok := AsError(err)
	if !ok {
		return KindUnknown
	}
	return e.Kind
}

// transportError wraps a non-domain failure into the domain error type.
// An *Error already present in the chain is returned as is.
func transportError(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := AsError(err); ok {
		return e
	}
	return &Error{
		Kind:    KindTransport,
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %w", ErrTransport, err),
	}
}

// callerError reports misuse of the gateway detected before any I/O.
func callerError(sentinel error, detail string) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Message: fmt.Sprintf("%s: %s", sentinel, detail),
		Err:     sentinel,
	}
}

// InvalidInput reports a caller mistake caught before sending, such as a
// model that failed validation. err stays reachable with errors.As.
func InvalidInput(err error) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %w", ErrInvalidRequest, err),
	}
}
