package engine

import (
	"errors"
	"fmt"

	"foreman/internal/repo"
)

var (
	// ErrNotFound is shared with the repo layer so errors.Is matches both.
	ErrNotFound          = repo.ErrNotFound
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")

	ErrAlreadySeeded    = fmt.Errorf("%w: phase already seeded", ErrInvalidTransition)
	ErrRevisionConflict = fmt.Errorf("%w: revision mismatch", ErrConflict)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func badTransition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidTransition, fmt.Sprintf(format, args...))
}

func wrapNotFound(err error, kind, id string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return err
}

func required(field, value string) error {
	if value == "" {
		return invalid("%s is required", field)
	}
	return nil
}

// IsAlreadySeeded reports whether err came from seeding a phase twice.
func IsAlreadySeeded(err error) bool {
	return errors.Is(err, ErrAlreadySeeded)
}
