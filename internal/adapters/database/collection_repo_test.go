package database

import (
	"context"
	"strconv"
	"testing"
	"time"

	"cardbinder.app/internal/mocks"
	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCollection(id string) *ports.CollectionData {
	return &ports.CollectionData{
		ID:         id,
		Name:       "Jungle",
		Game:       "pokemon",
		Language:   "en",
		SetID:      "base2",
		OwnerID:    "owner",
		TotalCards: 64,
	}
}

func TestCollectionRepository_CreateWithPrefill(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepositoryAdapter(db, nil, nil)
	ctx := context.Background()

	initial := make([]ports.OwnershipData, 0, 64)
	for i := 1; i <= 64; i++ {
		record := ownedRecord("base2-" + strconv.Itoa(i))
		record.UserID = "owner"
		initial = append(initial, record)
	}

	col := newCollection("col-1")
	require.NoError(t, repo.Create(ctx, col, initial))

	assert.Equal(t, 64, col.OwnedCards)
	assert.Equal(t, "owner", col.Members["owner"])
	assert.False(t, col.CreatedAt.IsZero())
	assert.Equal(t, 64, collectionCounter(t, db, "col-1"))

	var records int64
	require.NoError(t, db.Model(&OwnershipModel{}).Where("collection_id = ?", "col-1").Count(&records).Error)
	assert.Equal(t, int64(64), records, "counter equals records written")
}

func TestCollectionRepository_CreateWithoutPrefill(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepositoryAdapter(db, nil, nil)
	ctx := context.Background()

	col := newCollection("col-1")
	col.Members = map[string]string{"friend": "editor"}
	require.NoError(t, repo.Create(ctx, col, nil))

	found, err := repo.FindByID(ctx, "col-1")
	require.NoError(t, err)
	assert.Equal(t, "Jungle", found.Name)
	assert.Equal(t, 64, found.TotalCards)
	assert.Zero(t, found.OwnedCards)
	assert.Equal(t, map[string]string{"owner": "owner", "friend": "editor"}, found.Members)
}

func TestCollectionRepository_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepositoryAdapter(db, nil, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCollection("col-1"), nil))
	err := repo.Create(ctx, newCollection("col-1"), nil)

	assert.True(t, errors.IsAlreadyExistsError(err))
}

func TestCollectionRepository_CreateRollsBackOnBadRecord(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepositoryAdapter(db, nil, nil)
	ctx := context.Background()

	bad := ownedRecord("base2-2")
	bad.UserID = "owner"
	bad.Quantity = -1
	good := ownedRecord("base2-1")
	good.UserID = "owner"

	err := repo.Create(ctx, newCollection("col-1"), []ports.OwnershipData{good, bad})
	assert.True(t, errors.IsDatabaseError(err))

	_, err = repo.FindByID(ctx, "col-1")
	assert.True(t, errors.IsNotFoundError(err), "collection row is rolled back with its records")
}

func TestCollectionRepository_CreateValidation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepositoryAdapter(db, nil, nil)

	tests := []struct {
		name string
		col  *ports.CollectionData
	}{
		{name: "nil collection", col: nil},
		{name: "missing ID", col: &ports.CollectionData{OwnerID: "owner"}},
		{name: "missing owner", col: &ports.CollectionData{ID: "col-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(context.Background(), tt.col, nil)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestCollectionRepository_ListForUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCollectionRepositoryAdapter(db, nil, nil)
	ctx := context.Background()

	first := newCollection("col-1")
	require.NoError(t, repo.Create(ctx, first, nil))
	time.Sleep(10 * time.Millisecond)
	second := newCollection("col-2")
	second.Members = map[string]string{"friend": "viewer"}
	require.NoError(t, repo.Create(ctx, second, nil))

	owned, err := repo.ListForUser(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "col-2", owned[0].ID, "newest first")
	assert.Equal(t, "col-1", owned[1].ID)
	assert.Len(t, owned[0].Members, 2, "members are loaded in full, not only the matching row")

	shared, err := repo.ListForUser(ctx, "friend")
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "col-2", shared[0].ID)

	none, err := repo.ListForUser(ctx, "stranger")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCollectionRepository_Membership(t *testing.T) {
	db := setupTestDB(t)
	notifier := mocks.NewChangeNotifier()
	repo := NewCollectionRepositoryAdapter(db, notifier, mocks.NewLogger())
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newCollection("col-1"), nil))

	role, err := repo.MemberRole(ctx, "col-1", "owner")
	require.NoError(t, err)
	assert.Equal(t, "owner", role)

	_, err = repo.MemberRole(ctx, "col-1", "friend")
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, repo.AddMember(ctx, "col-1", "friend", "viewer"))
	require.NoError(t, repo.AddMember(ctx, "col-1", "friend", "editor"))
	role, err = repo.MemberRole(ctx, "col-1", "friend")
	require.NoError(t, err)
	assert.Equal(t, "editor", role, "adding an existing member updates the role")

	require.NoError(t, repo.RemoveMember(ctx, "col-1", "friend"))
	_, err = repo.MemberRole(ctx, "col-1", "friend")
	assert.True(t, errors.IsNotFoundError(err))

	err = repo.RemoveMember(ctx, "col-1", "friend")
	assert.True(t, errors.IsNotFoundError(err))

	err = repo.AddMember(ctx, "missing", "friend", "viewer")
	assert.True(t, errors.IsNotFoundError(err))

	assert.Equal(t, []string{"ownership:col-1", "ownership:col-1", "ownership:col-1"}, notifier.Published())
}

func TestCollectionRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	notifier := mocks.NewChangeNotifier()
	repo := NewCollectionRepositoryAdapter(db, notifier, mocks.NewLogger())
	ownership := NewOwnershipRepositoryAdapter(db, nil, nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCollection("col-1"), nil))
	require.NoError(t, repo.Create(ctx, newCollection("col-2"), nil))
	require.NoError(t, ownership.Apply(ctx, "owner", "col-1", []ports.OwnershipData{ownedRecord("a")}, nil))
	require.NoError(t, ownership.Apply(ctx, "owner", "col-2", []ports.OwnershipData{ownedRecord("a")}, nil))

	require.NoError(t, repo.Delete(ctx, "col-1"))

	_, err := repo.FindByID(ctx, "col-1")
	assert.True(t, errors.IsNotFoundError(err))

	var records, members int64
	require.NoError(t, db.Model(&OwnershipModel{}).Where("collection_id = ?", "col-1").Count(&records).Error)
	require.NoError(t, db.Model(&CollectionMemberModel{}).Where("collection_id = ?", "col-1").Count(&members).Error)
	assert.Zero(t, records)
	assert.Zero(t, members)

	kept, err := ownership.ListOwned(ctx, "owner", "col-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, kept)

	err = repo.Delete(ctx, "col-1")
	assert.True(t, errors.IsNotFoundError(err))
	assert.Equal(t, []string{"ownership:col-1"}, notifier.Published())
}
