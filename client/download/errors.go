package download

import (
	"errors"
	"fmt"
)

// Checks that can reject a downloaded attachment.
var (
	ErrContentLengthMismatch = errors.New("content length mismatch")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrTooLarge              = errors.New("attachment too large")
	ErrDownloadCancelled     = errors.New("download cancelled")
)

// Error reports which check rejected the attachment at Path.
type Error struct {
	Path     string
	Expected string
	Actual   string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v (expected %s, got %s)", e.Path, e.Err, e.Expected, e.Actual)
}

func (e *Error) Unwrap() error {
	return e.Err
}
