package camguard

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a referenced entity does not exist or is
	// soft-deleted.
	ErrNotFound = errors.New("camguard: not found")
	// ErrPermissionDenied reports a company-scope mismatch between the
	// caller and the target entity.
	ErrPermissionDenied = errors.New("camguard: permission denied")
)

// ValidationError reports a malformed item in a batch submission. Index is
// the 0-based position of the offending item in the submitted list.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("camguard: invalid %s at index %d: %s", e.Field, e.Index, e.Reason)
}

// StorageError wraps a failed store operation. The core never retries it.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("camguard: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
