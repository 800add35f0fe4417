package services

import (
	"errors"
	"fmt"

	"github.com/gookit/validate"
)

// ErrInvalidDraft is returned when a create request fails validation.
var ErrInvalidDraft = errors.New("invalid draft")

func validateDraft(draft interface{}) error {
	v := validate.Struct(draft)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalidDraft, v.Errors.One())
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidDraft, fmt.Sprintf(format, args...))
}
