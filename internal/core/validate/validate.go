// Package validate provides shared validation functions and the validation
// error kind used for malformed local state.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// ErrValidation marks errors caused by malformed local state, such as a
// reference to a list or staple that does not exist.
var ErrValidation = errors.New("validation error")

// Errorf formats an error that matches ErrValidation.
func Errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Wrap marks err as a validation error. A nil err returns nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// Required validates a value is non-empty after trimming whitespace.
func Required(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("is required")
	}
	return nil
}

// Positive validates an integer is at least 1.
func Positive(n int) error {
	if n < 1 {
		return fmt.Errorf("must be at least 1, got %d", n)
	}
	return nil
}

// RequiredField returns a criterio validator for required strings.
func RequiredField(field, value string) error {
	return criterio.Run(field, value, Required)
}

// PositiveField returns a criterio validator for positive integers.
func PositiveField(field string, n int) error {
	if err := Positive(n); err != nil {
		return criterio.NewFieldErrors(field, err)
	}
	return nil
}
