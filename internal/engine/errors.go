package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes engine errors.
type ErrorCode string

const (
	// ErrCodeEmptyScene indicates a commit of a scene with no items.
	ErrCodeEmptyScene ErrorCode = "EMPTY_SCENE"

	// ErrCodeUnknownItem indicates a catalog id that is not in the wardrobe.
	ErrCodeUnknownItem ErrorCode = "UNKNOWN_ITEM"

	// ErrCodeNoBackground indicates an occasion operation without a background,
	// or an occasion-only operation on an outfit surface.
	ErrCodeNoBackground ErrorCode = "NO_BACKGROUND"

	// ErrCodeSurfaceClosed indicates use of a surface after Close.
	ErrCodeSurfaceClosed ErrorCode = "SURFACE_CLOSED"

	// ErrCodeNothingPending indicates a retry with no uncommitted entries.
	ErrCodeNothingPending ErrorCode = "NOTHING_PENDING"
)

// Error is returned by Surface and Engine operations that fail for a
// reason other than storage. Storage failures are returned as store.Error.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// SceneID identifies the affected scene, if any.
	SceneID string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.SceneID != "" {
		return fmt.Sprintf("%s: %s (scene=%s)", e.Code, e.Message, e.SceneID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, sceneID, message string, cause error) *Error {
	return &Error{Code: code, Message: message, SceneID: sceneID, Err: cause}
}

// HasCode reports whether err is an *Error with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code ErrorCode) bool {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

// IsEmptySceneError returns true if err is an EMPTY_SCENE error.
func IsEmptySceneError(err error) bool {
	return HasCode(err, ErrCodeEmptyScene)
}

// IsUnknownItemError returns true if err is an UNKNOWN_ITEM error.
func IsUnknownItemError(err error) bool {
	return HasCode(err, ErrCodeUnknownItem)
}

// IsNoBackgroundError returns true if err is a NO_BACKGROUND error.
func IsNoBackgroundError(err error) bool {
	return HasCode(err, ErrCodeNoBackground)
}

// IsSurfaceClosedError returns true if err is a SURFACE_CLOSED error.
func IsSurfaceClosedError(err error) bool {
	return HasCode(err, ErrCodeSurfaceClosed)
}

// IsNothingPendingError returns true if err is a NOTHING_PENDING error.
func IsNothingPendingError(err error) bool {
	return HasCode(err, ErrCodeNothingPending)
}
