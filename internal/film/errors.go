package film

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a stored film does not exist.
var ErrNotFound = errors.New("film not found")

// NetworkError represents a failed fetch: a transport failure or a non-2xx
// response from the remote server.
type NetworkError struct {
	Operation  string // The operation that failed (e.g., "download", "load_catalog")
	URL        string // Remote URL that was requested
	StatusCode int    // HTTP status code, 0 for transport failures
	Message    string // Human-readable reason
	Err        error  // Underlying error, if any
}

func (e *NetworkError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("network error during %s (HTTP %d): %s", e.Operation, e.StatusCode, e.Message)
	}

	return fmt.Sprintf("network error during %s: %s", e.Operation, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ConstraintError is returned when a save violates a uniqueness constraint of
// the store, in practice a second film with an already stored URL.
type ConstraintError struct {
	Field string
	Value string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation: %s %q is already stored", e.Field, e.Value)
}

func (e *ConstraintError) Unwrap() error {
	return e.Err
}

// StorageError represents any other failure of the local store.
type StorageError struct {
	Operation string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Operation, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
