// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across storage/identity/facade layers.
var (
	// ErrNotFound indicates the requested key or entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthenticated indicates an operation that requires a signed-in user.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUnauthorized indicates failed credential verification.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyExists indicates a uniqueness violation (e.g., email taken).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidRating indicates an empathy rating outside the 1..5 range.
	ErrInvalidRating = errors.New("invalid rating")
)
