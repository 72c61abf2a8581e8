package cli

import (
	"errors"

	"github.com/Arterning/style-mirror/internal/engine"
	"github.com/Arterning/style-mirror/internal/journal"
	"github.com/Arterning/style-mirror/internal/occasion"
	"github.com/Arterning/style-mirror/internal/store"
	"github.com/Arterning/style-mirror/internal/wardrobe"
)

// errorCode maps a domain error to the code reported in CLI output.
func errorCode(err error) string {
	var ee *engine.Error
	if errors.As(err, &ee) {
		return string(ee.Code)
	}
	var se *store.Error
	if errors.As(err, &se) {
		return string(se.Code)
	}
	switch {
	case errors.Is(err, wardrobe.ErrNotFound),
		errors.Is(err, occasion.ErrNotFound),
		errors.Is(err, journal.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, wardrobe.ErrUnknownCategory):
		return "UNKNOWN_CATEGORY"
	case errors.Is(err, wardrobe.ErrEmptyImageRef),
		errors.Is(err, occasion.ErrEmptyImageRef):
		return "EMPTY_IMAGE_REF"
	}
	return "ERROR"
}

// fail reports err and returns it as an ExitFailure.
// In text mode the message is left to the caller of Execute.
func fail(out *OutputFormatter, msg string, err error) error {
	if out.Format == "json" {
		if encErr := out.Error(errorCode(err), err.Error(), nil); encErr != nil {
			return encErr
		}
	}
	return WrapExitError(ExitFailure, msg, err)
}
