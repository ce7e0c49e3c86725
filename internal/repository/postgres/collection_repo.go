package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/andrsk/listkeeper/internal/errs"
	"github.com/andrsk/listkeeper/internal/model"
)

// CollectionRepo implements CollectionRepository using PostgreSQL.
type CollectionRepo struct{ db *DB }

// NewCollectionRepo constructs a collection repository.
func NewCollectionRepo(db *DB) *CollectionRepo { return &CollectionRepo{db: db} }

// Insert creates a collection with exactly the given name. The unique index on
// (user_id, name) is the arbiter: a duplicate surfaces as errs.ErrConflict so
// the naming resolver above can advance its counter. The statement runs in its
// own implicit transaction, making each naming attempt a single atomic
// insert-and-detect-conflict step.
func (r *CollectionRepo) Insert(ctx context.Context, userID, name, description string) (*model.Collection, error) {
	const q = `
INSERT INTO collections (user_id, name, description)
VALUES ($1, $2, $3)
RETURNING id, user_id, name, description, created_at, updated_at`
	row := r.db.Pool.QueryRow(ctx, q, userID, name, description)
	var c model.Collection
	if err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if cn, ok := violatedConstraint(err); ok && cn == constraintCollectionName {
			return nil, errs.ErrConflict
		}
		return nil, err
	}
	return &c, nil
}

// AddItem inserts an item under row locks.
//
// Lock order (collection row, duplicate probe, full item set) is shared with
// MoveItem; changing it in one place without the other invites deadlocks
// between concurrent writers on the same collection.
func (r *CollectionRepo) AddItem(ctx context.Context, userID string, collectionID int64, itemID, note string) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	if err = lockCollection(ctx, tx, collectionID, userID); err != nil {
		return err
	}

	const dup = `SELECT id FROM collection_items WHERE collection_id=$1 AND item_id=$2 FOR UPDATE`
	var dupID int64
	scanErr := tx.QueryRow(ctx, dup, collectionID, itemID).Scan(&dupID)
	switch {
	case scanErr == nil:
		return errs.ErrConflict
	case !errors.Is(scanErr, pgx.ErrNoRows):
		return scanErr
	}

	var count int64
	if count, err = lockAndCountItems(ctx, tx, collectionID); err != nil {
		return err
	}
	if count >= model.MaxItems {
		return errs.ErrCapacityExceeded
	}

	const ins = `INSERT INTO collection_items (collection_id, item_id, note) VALUES ($1, $2, $3)`
	if _, err = tx.Exec(ctx, ins, collectionID, itemID, note); err != nil {
		return mapItemConstraint(err)
	}
	return touchCollections(ctx, tx, collectionID, collectionID)
}

// MoveItem relocates an item between two collections of the same user in one
// transaction. Lock order: source collection, target collection, source item,
// target item set, target duplicate probe. Any failure rolls the whole
// transaction back, leaving the item exactly where it was.
func (r *CollectionRepo) MoveItem(ctx context.Context, userID, itemID string, sourceID, targetID int64) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	if err = lockCollection(ctx, tx, sourceID, userID); err != nil {
		return err
	}
	if err = lockCollection(ctx, tx, targetID, userID); err != nil {
		return err
	}

	const sel = `SELECT id, note FROM collection_items WHERE collection_id=$1 AND item_id=$2 FOR UPDATE`
	var (
		rowID int64
		note  string
	)
	if err = tx.QueryRow(ctx, sel, sourceID, itemID).Scan(&rowID, &note); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}

	var count int64
	if count, err = lockAndCountItems(ctx, tx, targetID); err != nil {
		return err
	}
	if count >= model.MaxItems {
		return errs.ErrCapacityExceeded
	}

	const dup = `SELECT id FROM collection_items WHERE collection_id=$1 AND item_id=$2 FOR UPDATE`
	var dupID int64
	scanErr := tx.QueryRow(ctx, dup, targetID, itemID).Scan(&dupID)
	switch {
	case scanErr == nil:
		return errs.ErrConflict
	case !errors.Is(scanErr, pgx.ErrNoRows):
		return scanErr
	}

	const ins = `INSERT INTO collection_items (collection_id, item_id, note) VALUES ($1, $2, $3)`
	if _, err = tx.Exec(ctx, ins, targetID, itemID, note); err != nil {
		return mapItemConstraint(err)
	}
	const del = `DELETE FROM collection_items WHERE id=$1`
	if _, err = tx.Exec(ctx, del, rowID); err != nil {
		return err
	}
	return touchCollections(ctx, tx, sourceID, targetID)
}

// ListWithStats aggregates counts and relevance in the database so the result
// is consistent with concurrent writers. Items without a meaningful note score
// 1, noted items score 2, empty collections score 0.
func (r *CollectionRepo) ListWithStats(ctx context.Context, userID string) ([]model.CollectionSummary, error) {
	const q = `
SELECT c.id, c.user_id, c.name, c.description, c.created_at, c.updated_at,
       COUNT(i.id) AS item_count,
       COALESCE(SUM(CASE
           WHEN i.id IS NULL THEN 0
           WHEN btrim(i.note) <> '' THEN 2
           ELSE 1
       END), 0) AS relevance_score
FROM collections c
LEFT JOIN collection_items i ON i.collection_id = c.id
WHERE c.user_id = $1
GROUP BY c.id
ORDER BY relevance_score DESC, c.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.CollectionSummary, 0)
	for rows.Next() {
		var s model.CollectionSummary
		if err = rows.Scan(
			&s.ID, &s.UserID, &s.Name, &s.Description, &s.CreatedAt, &s.UpdatedAt,
			&s.ItemCount, &s.RelevanceScore,
		); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// lockCollection takes an exclusive lock on a collection row scoped to its
// owner. A missing row and a foreign owner are indistinguishable to the caller.
func lockCollection(ctx context.Context, tx pgx.Tx, collectionID int64, userID string) error {
	const q = `SELECT id FROM collections WHERE id=$1 AND user_id=$2 FOR UPDATE`
	var id int64
	if err := tx.QueryRow(ctx, q, collectionID, userID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	return nil
}

// lockAndCountItems locks every item row of a collection and returns the
// authoritative count as of lock acquisition.
func lockAndCountItems(ctx context.Context, tx pgx.Tx, collectionID int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM (SELECT id FROM collection_items WHERE collection_id=$1 FOR UPDATE) locked`
	var count int64
	if err := tx.QueryRow(ctx, q, collectionID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// touchCollections bumps updated_at on the collections whose membership changed.
func touchCollections(ctx context.Context, tx pgx.Tx, a, b int64) error {
	const q = `UPDATE collections SET updated_at=now() WHERE id=$1 OR id=$2`
	_, err := tx.Exec(ctx, q, a, b)
	return err
}

// mapItemConstraint remaps storage-level violations that slipped past the
// locked application checks onto the domain taxonomy. Defense in depth: the
// unique index and the capacity trigger hold even for writers that bypass
// this repository.
func mapItemConstraint(err error) error {
	cn, ok := violatedConstraint(err)
	if !ok {
		return err
	}
	switch cn {
	case constraintCollectionItem:
		return errs.ErrConflict
	case constraintItemCapacity:
		return errs.ErrCapacityExceeded
	}
	return err
}
