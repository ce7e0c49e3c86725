// Package service contains the application service for collections.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andrsk/listkeeper/internal/errs"
	"github.com/andrsk/listkeeper/internal/model"
	"github.com/andrsk/listkeeper/internal/repository"
)

// maxNameAttempts bounds the naming resolver. Hitting it means something is
// systematically wrong (a conflict storm), not normal user behavior.
const maxNameAttempts = 25

// CollectionService defines the collection operations exposed to transports.
type CollectionService interface {
	// Create resolves a unique name for the user and persists a new collection.
	Create(ctx context.Context, userID, name, description string) (*model.Collection, error)
	// AddItem inserts an external item into a collection owned by the user.
	AddItem(ctx context.Context, userID string, collectionID int64, itemID, note string) error
	// MoveItem relocates an item between two collections of the user atomically.
	MoveItem(ctx context.Context, userID, itemID string, sourceID, targetID int64) error
	// List returns the user's collections ranked by relevance.
	List(ctx context.Context, userID string) ([]model.CollectionSummary, error)
}

type CollectionServiceImpl struct {
	users       repository.UserRepository
	collections repository.CollectionRepository
}

// NewCollectionService constructs CollectionService with required repositories.
func NewCollectionService(users repository.UserRepository, collections repository.CollectionRepository) *CollectionServiceImpl {
	return &CollectionServiceImpl{users: users, collections: collections}
}

// Create provisions the user, then probes counter-suffixed names until the
// unique index accepts one: "Name", "Name (1)", "Name (2)", ... Each probe is
// an optimistic insert; only the specific name conflict advances the counter.
func (s *CollectionServiceImpl) Create(ctx context.Context, userID, name, description string) (*model.Collection, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", errs.ErrValidation)
	}
	base := strings.TrimSpace(name)
	if base == "" {
		return nil, fmt.Errorf("%w: empty name", errs.ErrValidation)
	}
	if err := s.users.Ensure(ctx, userID); err != nil {
		return nil, err
	}
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = fmt.Sprintf("%s (%d)", base, attempt)
		}
		c, err := s.collections.Insert(ctx, userID, candidate, description)
		if errors.Is(err, errs.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: no free name for %q", errs.ErrNameExhausted, base)
}

// AddItem validates input, provisions the user, and delegates the locked
// insert to the repository.
func (s *CollectionServiceImpl) AddItem(ctx context.Context, userID string, collectionID int64, itemID, note string) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", errs.ErrValidation)
	}
	if collectionID <= 0 {
		return fmt.Errorf("%w: invalid collection id", errs.ErrValidation)
	}
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("%w: empty item id", errs.ErrValidation)
	}
	if err := s.users.Ensure(ctx, userID); err != nil {
		return err
	}
	return s.collections.AddItem(ctx, userID, collectionID, itemID, note)
}

// MoveItem validates input, provisions the user, and delegates the atomic
// relocation to the repository.
func (s *CollectionServiceImpl) MoveItem(ctx context.Context, userID, itemID string, sourceID, targetID int64) error {
	if userID == "" {
		return fmt.Errorf("%w: empty user id", errs.ErrValidation)
	}
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("%w: empty item id", errs.ErrValidation)
	}
	if sourceID <= 0 || targetID <= 0 {
		return fmt.Errorf("%w: invalid collection id", errs.ErrValidation)
	}
	if sourceID == targetID {
		return fmt.Errorf("%w: source and target collections are identical", errs.ErrValidation)
	}
	if err := s.users.Ensure(ctx, userID); err != nil {
		return err
	}
	return s.collections.MoveItem(ctx, userID, itemID, sourceID, targetID)
}

// List returns ranked collections. An unseen user simply owns none.
func (s *CollectionServiceImpl) List(ctx context.Context, userID string) ([]model.CollectionSummary, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: empty user id", errs.ErrValidation)
	}
	return s.collections.ListWithStats(ctx, userID)
}
