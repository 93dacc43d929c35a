package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks user-correctable input errors.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when a shortcut is already taken for the user.
	ErrConflict = errors.New("a bang with this shortcut already exists")
	// ErrNotFound is returned for unknown or not-owned records.
	ErrNotFound = errors.New("not found")
	// ErrQuotaExceeded is returned when the per-user custom bang limit is reached.
	ErrQuotaExceeded = fmt.Errorf("custom bang limit reached (max %d)", MaxCustomBangsPerUser)
	// ErrUnsupportedVersion aborts an import with an unknown format version.
	ErrUnsupportedVersion = errors.New("unsupported import format version")
	// ErrUnauthorized is returned for bad credentials or tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError describes which field was rejected and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a *ValidationError.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
