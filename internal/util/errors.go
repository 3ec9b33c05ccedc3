// internal/util/errors.go
package util

import (
	"errors"
	"fmt"
)

// Error taxonomy exposed by the storage facade.
// Backend-specific errors are translated into one of these before they reach a caller.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("conflict with existing data")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBackendUnavailable = errors.New("storage backend unavailable")
	ErrValidationFailed   = errors.New("validation failed")
	ErrTransactionFailed  = errors.New("transaction failed")
	ErrInternal           = errors.New("internal storage error")
)

// Refinements of the taxonomy. errors.Is matches both the refinement and its parent.
var (
	ErrUsernameTaken = fmt.Errorf("%w: username already taken", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrEmptyCart     = fmt.Errorf("%w: cart is empty", ErrValidationFailed)
	ErrStaleAccount  = fmt.Errorf("%w: account record is stale", ErrConflict)
)

// IsError reports whether err matches target anywhere in its chain.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}

// Validationf builds an ErrValidationFailed with a specific reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

// IsTaxonomy reports whether err already belongs to the facade's error taxonomy.
func IsTaxonomy(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrConflict, ErrInvalidCredentials, ErrBackendUnavailable,
		ErrValidationFailed, ErrTransactionFailed, ErrInternal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
