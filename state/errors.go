package state

import (
	"errors"
	"fmt"
)

var (
	// ErrNotBootstrapped indicates that no chain record exists for the chain id.
	ErrNotBootstrapped = errors.New("chain state is not bootstrapped")

	// ErrUnknownAncestor indicates that a block id is not on the ancestor path
	// it was expected on.
	ErrUnknownAncestor = errors.New("block is not an ancestor on the queried path")
)

// InvalidExtensionError is an error for a block that can never extend the
// state, e.g. because its height does not follow its parent or it belongs to
// another chain.
type InvalidExtensionError struct {
	error
}

func NewInvalidExtensionErrorf(msg string, args ...interface{}) error {
	return InvalidExtensionError{
		error: fmt.Errorf(msg, args...),
	}
}

func (e InvalidExtensionError) Unwrap() error {
	return e.error
}

// IsInvalidExtensionError returns whether the given error is an InvalidExtensionError error
func IsInvalidExtensionError(err error) bool {
	return errors.As(err, &InvalidExtensionError{})
}
