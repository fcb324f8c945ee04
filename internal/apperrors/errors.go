// Package apperrors defines the error kinds every layer uses to classify failures.
// Callers test with errors.Is; the wrapped message carries the detail.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrReferentialIntegrity = errors.New("referential integrity violated")
	ErrDecode               = errors.New("corrupted encoded field")
	ErrStorage              = errors.New("storage failure")
)

// Validation returns an ErrValidation carrying a formatted reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound returns an ErrNotFound naming the entity and id.
func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, entity, id)
}

// MissingReference returns an ErrReferentialIntegrity listing the ids that do not exist.
func MissingReference(entity string, ids ...string) error {
	return fmt.Errorf("%w: unknown %s %v", ErrReferentialIntegrity, entity, ids)
}

// Storage wraps a persistence failure, keeping the cause reachable through errors.Is/As.
func Storage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// Kind reports which sentinel err belongs to, or nil for unclassified errors.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrReferentialIntegrity, ErrDecode, ErrStorage} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
