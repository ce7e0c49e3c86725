// Package repository defines storage interfaces implemented by concrete backends.
package repository

import "context"

// UserRepository provisions caller identities.
type UserRepository interface {
	// Ensure inserts the user if it does not exist yet; no-op otherwise.
	Ensure(ctx context.Context, id string) error
}
