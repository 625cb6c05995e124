package database

import (
	"context"
	"testing"
	"time"

	"cardbinder.app/internal/mocks"
	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// Every pooled connection to :memory: would open its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return db
}

func seedCollection(t *testing.T, db *gorm.DB, id string, members map[string]string) {
	t.Helper()

	require.NoError(t, db.Create(&CollectionModel{
		ID:         id,
		Name:       "Base Set binder",
		Game:       "pokemon",
		Language:   "en",
		SetID:      "base1",
		OwnerID:    "owner",
		TotalCards: 102,
	}).Error)

	for userID, role := range members {
		require.NoError(t, db.Create(&CollectionMemberModel{CollectionID: id, UserID: userID, Role: role}).Error)
	}
}

func ownedRecord(cardID string) ports.OwnershipData {
	return ports.OwnershipData{CardID: cardID, Owned: true, Quantity: 1, Condition: "mint"}
}

func collectionCounter(t *testing.T, db *gorm.DB, id string) int {
	t.Helper()
	var model CollectionModel
	require.NoError(t, db.Where("id = ?", id).First(&model).Error)
	return model.OwnedCards
}

func TestOwnershipRepository_ApplyUpsertsAndCounts(t *testing.T) {
	db := setupTestDB(t)
	notifier := mocks.NewChangeNotifier()
	repo := NewOwnershipRepositoryAdapter(db, notifier, mocks.NewLogger())
	ctx := context.Background()
	seedCollection(t, db, "col-1", map[string]string{"owner": "owner"})

	err := repo.Apply(ctx, "owner", "col-1", []ports.OwnershipData{
		ownedRecord("base1-4"),
		ownedRecord("base1-2"),
	}, nil)
	require.NoError(t, err)

	owned, err := repo.ListOwned(ctx, "owner", "col-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"base1-2", "base1-4"}, owned)
	assert.Equal(t, 2, collectionCounter(t, db, "col-1"))
	assert.Equal(t, []string{"ownership:col-1"}, notifier.Published())
}

func TestOwnershipRepository_UpsertKeepsAddedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnershipRepositoryAdapter(db, nil, nil)
	ctx := context.Background()
	seedCollection(t, db, "col-1", nil)

	require.NoError(t, repo.Apply(ctx, "owner", "col-1", []ports.OwnershipData{ownedRecord("base1-4")}, nil))
	first, err := repo.Get(ctx, "owner", "col-1", "base1-4")
	require.NoError(t, err)
	assert.False(t, first.AddedAt.IsZero())

	time.Sleep(10 * time.Millisecond)
	update := ownedRecord("base1-4")
	update.Quantity = 3
	update.Condition = "played"
	update.Notes = "binder page 2"
	require.NoError(t, repo.Apply(ctx, "owner", "col-1", []ports.OwnershipData{update}, nil))

	second, err := repo.Get(ctx, "owner", "col-1", "base1-4")
	require.NoError(t, err)
	assert.Equal(t, 3, second.Quantity)
	assert.Equal(t, "played", second.Condition)
	assert.Equal(t, "binder page 2", second.Notes)
	assert.True(t, first.AddedAt.Equal(second.AddedAt), "addedAt is assigned once by storage")
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	var count int64
	require.NoError(t, db.Model(&OwnershipModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "one record per (user, collection, card)")
}

func TestOwnershipRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnershipRepositoryAdapter(db, nil, nil)
	ctx := context.Background()
	seedCollection(t, db, "col-1", nil)

	require.NoError(t, repo.Apply(ctx, "owner", "col-1",
		[]ports.OwnershipData{ownedRecord("a"), ownedRecord("b"), ownedRecord("c")}, nil))
	require.NoError(t, repo.Apply(ctx, "owner", "col-1", nil, []string{"a", "c", "never-owned"}))

	owned, err := repo.ListOwned(ctx, "owner", "col-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, owned)
	assert.Equal(t, 1, collectionCounter(t, db, "col-1"))

	_, err = repo.Get(ctx, "owner", "col-1", "a")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestOwnershipRepository_ApplyIsAtomic(t *testing.T) {
	db := setupTestDB(t)
	notifier := mocks.NewChangeNotifier()
	repo := NewOwnershipRepositoryAdapter(db, notifier, mocks.NewLogger())
	ctx := context.Background()
	seedCollection(t, db, "col-1", nil)

	require.NoError(t, repo.Apply(ctx, "owner", "col-1", []ports.OwnershipData{ownedRecord("keep")}, nil))

	bad := ownedRecord("c3")
	bad.Quantity = -1
	err := repo.Apply(ctx, "owner", "col-1",
		[]ports.OwnershipData{ownedRecord("c1"), ownedRecord("c2"), bad},
		[]string{"keep"})

	assert.True(t, errors.IsDatabaseError(err))
	owned, listErr := repo.ListOwned(ctx, "owner", "col-1")
	require.NoError(t, listErr)
	assert.Equal(t, []string{"keep"}, owned, "no record from the failed batch is visible")
	assert.Equal(t, 1, collectionCounter(t, db, "col-1"))
	assert.Len(t, notifier.Published(), 1, "failed batches are not announced")
}

func TestOwnershipRepository_UnknownCollection(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnershipRepositoryAdapter(db, nil, nil)
	ctx := context.Background()

	err := repo.Apply(ctx, "owner", "missing", []ports.OwnershipData{ownedRecord("a")}, nil)

	assert.True(t, errors.IsNotFoundError(err))
	var count int64
	require.NoError(t, db.Model(&OwnershipModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOwnershipRepository_CounterCountsDistinctCardsAcrossMembers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnershipRepositoryAdapter(db, nil, nil)
	ctx := context.Background()
	seedCollection(t, db, "col-1", map[string]string{"owner": "owner", "friend": "editor"})

	require.NoError(t, repo.Apply(ctx, "owner", "col-1", []ports.OwnershipData{ownedRecord("a"), ownedRecord("b")}, nil))
	require.NoError(t, repo.Apply(ctx, "friend", "col-1", []ports.OwnershipData{ownedRecord("b"), ownedRecord("c")}, nil))

	assert.Equal(t, 3, collectionCounter(t, db, "col-1"))

	friendOwned, err := repo.ListOwned(ctx, "friend", "col-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, friendOwned, "sets are per user")
}

func TestOwnershipRepository_LegacyUnownedRowsAreNotOwned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnershipRepositoryAdapter(db, nil, nil)
	ctx := context.Background()
	seedCollection(t, db, "col-1", nil)

	require.NoError(t, db.Create(&OwnershipModel{
		UserID:       "owner",
		CollectionID: "col-1",
		CardID:       "legacy",
		Owned:        false,
		Quantity:     0,
		Condition:    "mint",
	}).Error)
	require.NoError(t, repo.Apply(ctx, "owner", "col-1", []ports.OwnershipData{ownedRecord("real")}, nil))

	owned, err := repo.ListOwned(ctx, "owner", "col-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"real"}, owned)
	assert.Equal(t, 1, collectionCounter(t, db, "col-1"))
}

func TestOwnershipRepository_EmptyResultIsNotNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnershipRepositoryAdapter(db, nil, nil)

	owned, err := repo.ListOwned(context.Background(), "owner", "col-1")

	require.NoError(t, err)
	assert.NotNil(t, owned)
	assert.Empty(t, owned)
}

func TestOwnershipRepository_Validation(t *testing.T) {
	db := setupTestDB(t)
	repo := NewOwnershipRepositoryAdapter(db, nil, nil)
	ctx := context.Background()

	_, err := repo.ListOwned(ctx, "", "col-1")
	assert.True(t, errors.IsValidationError(err))

	err = repo.Apply(ctx, "owner", "", []ports.OwnershipData{ownedRecord("a")}, nil)
	assert.True(t, errors.IsValidationError(err))

	assert.NoError(t, repo.Apply(ctx, "owner", "col-1", nil, nil), "empty change set is a no-op")
}

func TestOwnershipRepository_PublishFailureDoesNotFailWrite(t *testing.T) {
	db := setupTestDB(t)
	notifier := mocks.NewChangeNotifier()
	notifier.PublishErr = errors.NewExternalAPIError("redis publish failed", nil)
	logger := mocks.NewLogger()
	repo := NewOwnershipRepositoryAdapter(db, notifier, logger)
	seedCollection(t, db, "col-1", nil)

	err := repo.Apply(context.Background(), "owner", "col-1", []ports.OwnershipData{ownedRecord("a")}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, logger.Count("WARN"))
	assert.Equal(t, 1, collectionCounter(t, db, "col-1"))
}
