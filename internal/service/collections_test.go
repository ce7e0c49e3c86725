package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/andrsk/listkeeper/internal/errs"
	"github.com/andrsk/listkeeper/internal/model"
)

type fakeUsers struct {
	ensured []string
	err     error
}

func (f *fakeUsers) Ensure(_ context.Context, id string) error {
	f.ensured = append(f.ensured, id)
	return f.err
}

type fakeCollections struct {
	insertNames []string
	insertErrs  []error // outcome per attempt; nil means success

	addErr  error
	addArgs []any

	moveErr  error
	moveArgs []any

	list    []model.CollectionSummary
	listErr error
}

func (f *fakeCollections) Insert(_ context.Context, userID, name, description string) (*model.Collection, error) {
	attempt := len(f.insertNames)
	f.insertNames = append(f.insertNames, name)
	if attempt < len(f.insertErrs) && f.insertErrs[attempt] != nil {
		return nil, f.insertErrs[attempt]
	}
	return &model.Collection{ID: 1, UserID: userID, Name: name, Description: description}, nil
}

func (f *fakeCollections) AddItem(_ context.Context, userID string, collectionID int64, itemID, note string) error {
	f.addArgs = []any{userID, collectionID, itemID, note}
	return f.addErr
}

func (f *fakeCollections) MoveItem(_ context.Context, userID, itemID string, sourceID, targetID int64) error {
	f.moveArgs = []any{userID, itemID, sourceID, targetID}
	return f.moveErr
}

func (f *fakeCollections) ListWithStats(_ context.Context, _ string) ([]model.CollectionSummary, error) {
	return f.list, f.listErr
}

func newService() (*CollectionServiceImpl, *fakeUsers, *fakeCollections) {
	users := &fakeUsers{}
	colls := &fakeCollections{}
	return NewCollectionService(users, colls), users, colls
}

func conflicts(n int) []error {
	out := make([]error, n)
	for i := range out {
		out[i] = errs.ErrConflict
	}
	return out
}

func TestCreate_TrimsName_FirstAttemptWins(t *testing.T) {
	s, users, colls := newService()

	c, err := s.Create(context.Background(), "u1", "  My List  ", "desc")
	require.NoError(t, err)
	require.Equal(t, "My List", c.Name)
	require.Equal(t, []string{"u1"}, users.ensured)
	require.Equal(t, []string{"My List"}, colls.insertNames)
}

func TestCreate_SuffixesOnConflict(t *testing.T) {
	s, _, colls := newService()
	colls.insertErrs = conflicts(2)

	c, err := s.Create(context.Background(), "u1", "My List", "")
	require.NoError(t, err)
	require.Equal(t, "My List (2)", c.Name)
	require.Equal(t, []string{"My List", "My List (1)", "My List (2)"}, colls.insertNames)
}

func TestCreate_ExhaustsAttempts(t *testing.T) {
	s, _, colls := newService()
	colls.insertErrs = conflicts(maxNameAttempts)

	_, err := s.Create(context.Background(), "u1", "My List", "")
	require.ErrorIs(t, err, errs.ErrNameExhausted)
	require.Len(t, colls.insertNames, maxNameAttempts)
	require.Equal(t, fmt.Sprintf("My List (%d)", maxNameAttempts-1), colls.insertNames[maxNameAttempts-1])
}

func TestCreate_EmptyNameAfterTrim(t *testing.T) {
	s, users, colls := newService()

	_, err := s.Create(context.Background(), "u1", "   ", "")
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Empty(t, users.ensured)
	require.Empty(t, colls.insertNames)
}

func TestCreate_EmptyUserID(t *testing.T) {
	s, _, _ := newService()
	_, err := s.Create(context.Background(), "", "My List", "")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestCreate_NonConflictInsertErrorStopsLoop(t *testing.T) {
	s, _, colls := newService()
	boom := errors.New("store down")
	colls.insertErrs = []error{boom}

	_, err := s.Create(context.Background(), "u1", "My List", "")
	require.ErrorIs(t, err, boom)
	require.Len(t, colls.insertNames, 1)
}

func TestCreate_EnsureUserFails(t *testing.T) {
	s, users, colls := newService()
	users.err = errors.New("store down")

	_, err := s.Create(context.Background(), "u1", "My List", "")
	require.ErrorIs(t, err, users.err)
	require.Empty(t, colls.insertNames)
}

func TestAddItem_Validation(t *testing.T) {
	s, users, _ := newService()
	ctx := context.Background()

	require.ErrorIs(t, s.AddItem(ctx, "", 1, "ext", ""), errs.ErrValidation)
	require.ErrorIs(t, s.AddItem(ctx, "u1", 0, "ext", ""), errs.ErrValidation)
	require.ErrorIs(t, s.AddItem(ctx, "u1", -4, "ext", ""), errs.ErrValidation)
	require.ErrorIs(t, s.AddItem(ctx, "u1", 1, "   ", ""), errs.ErrValidation)
	require.Empty(t, users.ensured)
}

func TestAddItem_Delegates(t *testing.T) {
	s, users, colls := newService()

	require.NoError(t, s.AddItem(context.Background(), "u1", 3, "ext-1", "note"))
	require.Equal(t, []string{"u1"}, users.ensured)
	require.Equal(t, []any{"u1", int64(3), "ext-1", "note"}, colls.addArgs)
}

func TestAddItem_RepoErrorsPassThrough(t *testing.T) {
	for _, sentinel := range []error{errs.ErrNotFound, errs.ErrConflict, errs.ErrCapacityExceeded} {
		s, _, colls := newService()
		colls.addErr = sentinel
		require.ErrorIs(t, s.AddItem(context.Background(), "u1", 3, "ext-1", ""), sentinel)
	}
}

func TestMoveItem_Validation(t *testing.T) {
	s, users, _ := newService()
	ctx := context.Background()

	require.ErrorIs(t, s.MoveItem(ctx, "", "ext", 1, 2), errs.ErrValidation)
	require.ErrorIs(t, s.MoveItem(ctx, "u1", "", 1, 2), errs.ErrValidation)
	require.ErrorIs(t, s.MoveItem(ctx, "u1", "ext", 0, 2), errs.ErrValidation)
	require.ErrorIs(t, s.MoveItem(ctx, "u1", "ext", 1, 0), errs.ErrValidation)
	require.ErrorIs(t, s.MoveItem(ctx, "u1", "ext", 2, 2), errs.ErrValidation)
	require.Empty(t, users.ensured)
}

func TestMoveItem_Delegates(t *testing.T) {
	s, users, colls := newService()

	require.NoError(t, s.MoveItem(context.Background(), "u1", "ext-1", 1, 2))
	require.Equal(t, []string{"u1"}, users.ensured)
	require.Equal(t, []any{"u1", "ext-1", int64(1), int64(2)}, colls.moveArgs)
}

func TestList_EmptyUserID(t *testing.T) {
	s, _, _ := newService()
	_, err := s.List(context.Background(), "")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestList_Delegates(t *testing.T) {
	s, _, colls := newService()
	colls.list = []model.CollectionSummary{
		{Collection: model.Collection{ID: 2, Name: "B"}, ItemCount: 1, RelevanceScore: 2},
		{Collection: model.Collection{ID: 1, Name: "A"}, ItemCount: 1, RelevanceScore: 1},
	}

	list, err := s.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, colls.list, list)
}
