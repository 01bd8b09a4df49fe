package store

import "errors"

var (
	// ErrValidation is returned when caller-supplied data breaks a task invariant
	ErrValidation = errors.New("validation error")
	// ErrNotFound is returned when an id does not exist in the target collection
	ErrNotFound = errors.New("not found")
	// ErrPersistence is returned when the durable store could not be written
	ErrPersistence = errors.New("persistence error")
)
