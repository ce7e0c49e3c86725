// Package model defines domain entities used by services and repositories.
package model

import "time"

// MaxItems is the hard per-collection item ceiling, enforced in storage.
const MaxItems = 5

// User is a caller identity provisioned lazily on first write.
type User struct {
	ID        string // externally supplied opaque identifier
	CreatedAt time.Time
}

// Collection is a named per-user container of external items.
// (user_id, name) is unique per user; item membership is capped at MaxItems.
type Collection struct {
	ID          int64
	UserID      string // FK -> users.id
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time // touched whenever item membership changes
}

// CollectionItem references an external item inside a collection.
// (collection_id, item_id) is unique; rows are immutable once written.
type CollectionItem struct {
	ID           int64
	CollectionID int64 // FK -> collections.id
	ItemID       string
	Note         string // empty means no note
	CreatedAt    time.Time
}

// CollectionSummary is a collection annotated with its derived ranking values.
type CollectionSummary struct {
	Collection
	ItemCount      int64
	RelevanceScore int64 // 2 per noted item, 1 per unnoted item
}
