package irrecoverable

import (
	"errors"
	"fmt"
)

// exception represents an unexpected error. An unexpected error is any error returned
// by a function, other than the error specifically documented as expected in that
// function's interface.
//
// It wraps the original error, which is useful for debugging. Callers use
// IsException to tell a storage corruption or a bug apart from benign failures.
type exception struct {
	err error
}

var _ error = (*exception)(nil)

func (e exception) Error() string {
	return e.err.Error()
}

func (e exception) Unwrap() error {
	return e.err
}

// NewException wraps the input error as an exception, stripping any sentinel error
// information from the error type chain.
func NewException(err error) error {
	return exception{err: err}
}

// NewExceptionf is NewException with the ability to add formatting and context to the
// error message.
func NewExceptionf(msg string, args ...any) error {
	return NewException(fmt.Errorf(msg, args...))
}

// IsException returns true if the error, or any error it wraps, is an exception.
func IsException(err error) bool {
	var e exception
	return errors.As(err, &e)
}
