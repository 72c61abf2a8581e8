package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes storage failures.
type ErrorCode string

const (
	// ErrCodeRead indicates a read failed or returned a malformed document.
	ErrCodeRead ErrorCode = "STORAGE_READ"

	// ErrCodeWrite indicates a write failed or the document could not be serialized.
	ErrCodeWrite ErrorCode = "STORAGE_WRITE"
)

// Error is returned by every KV operation that fails.
//
// A write failure never rolls back in-memory state. Writes are full-document
// overwrites, so retrying the same Set is always safe.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Namespace and Key identify the affected document.
	Namespace string
	Key       string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Namespace != "" {
		return fmt.Sprintf("%s: %s/%s: %v", e.Code, e.Namespace, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Key, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewReadError creates an Error for a failed or malformed read of key.
func NewReadError(key string, err error) *Error {
	return &Error{Code: ErrCodeRead, Key: key, Err: err}
}

// NewWriteError creates an Error for a failed write of key.
func NewWriteError(key string, err error) *Error {
	return &Error{Code: ErrCodeWrite, Key: key, Err: err}
}

// IsReadError returns true if err is a storage read error.
// Uses errors.As to handle wrapped errors.
func IsReadError(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeRead
	}
	return false
}

// IsWriteError returns true if err is a storage write error.
// Uses errors.As to handle wrapped errors.
func IsWriteError(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == ErrCodeWrite
	}
	return false
}
