package repository

import (
	"context"

	"github.com/andrsk/listkeeper/internal/model"
)

// CollectionRepository provides transactional access to collections and their items.
type CollectionRepository interface {
	// Insert creates a collection with exactly the given name.
	// Returns errs.ErrConflict if the name is already taken by the same user.
	Insert(ctx context.Context, userID, name, description string) (*model.Collection, error)

	// AddItem inserts an item into a collection owned by userID, holding row
	// locks while checking ownership, duplicates and capacity.
	AddItem(ctx context.Context, userID string, collectionID int64, itemID, note string) error

	// MoveItem atomically relocates an item between two collections owned by
	// userID, carrying over its note. All-or-nothing.
	MoveItem(ctx context.Context, userID, itemID string, sourceID, targetID int64) error

	// ListWithStats returns the user's collections with item count and
	// relevance score, ordered by score desc, then creation time desc.
	ListWithStats(ctx context.Context, userID string) ([]model.CollectionSummary, error)
}
