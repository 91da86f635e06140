package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned by stores and operations for missing entries.
	// badger.ErrKeyNotFound never leaves the storage/badger packages.
	ErrNotFound = errors.New("key not found")

	// ErrAlreadyExists is returned when inserting an entry under a taken key.
	ErrAlreadyExists = errors.New("key already exists")

	// ErrInvalidStatusTransition is returned when a chain block link would leave a
	// terminal execution status.
	ErrInvalidStatusTransition = errors.New("invalid execution status transition")
)
