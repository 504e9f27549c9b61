package domain

import (
	"errors"
	"fmt"
)

var ErrUserNotFound = errors.New("user not found")

// ValidationError is a client input error.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string) error {
	return &ValidationError{Message: message}
}

// ConflictError reports a write rejected by a unique constraint.
type ConflictError struct {
	Field string
	Err   error
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return "duplicate value"
	}
	return fmt.Sprintf("duplicate value for %s", e.Field)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// StorageError wraps any other failure coming from the store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
