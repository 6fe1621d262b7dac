// Package errs holds the error kinds shared by repositories and services.
// Callers classify failures with errors.Is against the sentinels below.
package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflict         = errors.New("conflict")
)

// NotFound reports a missing entity, e.g. NotFound("kit", 7) -> "kit 7: not found".
func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// Kind returns the sentinel matching err, or nil for unclassified errors.
func Kind(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case errors.Is(err, ErrInvalidOperation):
		return ErrInvalidOperation
	case errors.Is(err, ErrConflict):
		return ErrConflict
	}
	return nil
}
