package domain

import (
	"errors"
	"fmt"
)

// ErrValidation matches any *ValidationError via errors.Is.
var ErrValidation = errors.New("validation error")

// ErrStorage matches any *StorageError via errors.Is.
var ErrStorage = errors.New("storage error")

// ValidationError reports malformed or out-of-domain input to the store.
// Nothing has been written when it is returned.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError wraps a failure of the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// ParseFailure means the assistant could not turn free text into a usable
// transaction candidate.
type ParseFailure struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not interpret input: %s: %v", e.Reason, e.Err)
	}
	return "could not interpret input: " + e.Reason
}

func (e *ParseFailure) Unwrap() error {
	return e.Err
}

// MirrorFailure reports a failed replication of a stored transaction.
// It is logged, never returned from the store.
type MirrorFailure struct {
	TransactionID int64
	Err           error
}

func (e *MirrorFailure) Error() string {
	return fmt.Sprintf("mirror transaction %d: %v", e.TransactionID, e.Err)
}

func (e *MirrorFailure) Unwrap() error {
	return e.Err
}

// AssistantFailure reports a failed summarization call.
type AssistantFailure struct {
	Mode string
	Err  error
}

func (e *AssistantFailure) Error() string {
	return fmt.Sprintf("assistant %s: %v", e.Mode, e.Err)
}

func (e *AssistantFailure) Unwrap() error {
	return e.Err
}
