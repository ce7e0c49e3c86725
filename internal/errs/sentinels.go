// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrValidation indicates malformed or empty input the caller can fix.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the entity does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a uniqueness violation (duplicate item, taken name).
	ErrConflict = errors.New("conflict")

	// ErrCapacityExceeded indicates the collection item ceiling was reached.
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrNameExhausted indicates the naming resolver ran out of attempts.
	ErrNameExhausted = errors.New("name attempts exhausted")

	// ErrUnauthenticated indicates a missing caller identity.
	ErrUnauthenticated = errors.New("unauthenticated")
)
