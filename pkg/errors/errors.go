// Package errors holds the error categories shared by every service.
// Business errors wrap exactly one category so the HTTP layer can map
// them without knowing every sentinel.
package errors

import "errors"

var (
	// ErrUnauthenticated no identity attached to the call
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden identity present but not allowed
	ErrForbidden = errors.New("permission denied")
	// ErrNotFound referenced record does not exist
	ErrNotFound = errors.New("resource not found")
	// ErrInvalid input rejected by a validation rule
	ErrInvalid = errors.New("invalid input")
	// ErrConflict record already exists
	ErrConflict = errors.New("resource already exists")
)

// Category returns the category sentinel err wraps, or nil.
func Category(err error) error {
	for _, c := range []error{ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrInvalid, ErrConflict} {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
