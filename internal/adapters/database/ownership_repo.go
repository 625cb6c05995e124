package database

import (
	"context"
	stderrors "errors"
	"time"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OwnershipRepositoryAdapter implements the OwnershipRepository port using GORM.
// Every change set runs in one transaction together with the collection counter,
// and watchers are notified only after commit.
type OwnershipRepositoryAdapter struct {
	db       *gorm.DB
	notifier ports.ChangeNotifier
	logger   ports.Logger
}

// NewOwnershipRepositoryAdapter creates a new ownership repository adapter
func NewOwnershipRepositoryAdapter(db *gorm.DB, notifier ports.ChangeNotifier, logger ports.Logger) *OwnershipRepositoryAdapter {
	return &OwnershipRepositoryAdapter{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// ListOwned returns the card IDs the user owns in the collection, sorted.
// Rows stored with owned = false do not count.
func (r *OwnershipRepositoryAdapter) ListOwned(ctx context.Context, userID, collectionID string) ([]string, error) {
	if userID == "" || collectionID == "" {
		return nil, errors.NewValidationError("user ID and collection ID are required")
	}

	var cardIDs []string
	result := r.db.WithContext(ctx).
		Model(&OwnershipModel{}).
		Where("user_id = ? AND collection_id = ? AND owned = ?", userID, collectionID, true).
		Order("card_id").
		Pluck("card_id", &cardIDs)
	if result.Error != nil {
		return nil, errors.NewDatabaseError("failed to list owned cards", result.Error)
	}

	if cardIDs == nil {
		cardIDs = []string{}
	}
	return cardIDs, nil
}

// Get retrieves a single ownership record
func (r *OwnershipRepositoryAdapter) Get(ctx context.Context, userID, collectionID, cardID string) (*ports.OwnershipData, error) {
	var model OwnershipModel
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND collection_id = ? AND card_id = ?", userID, collectionID, cardID).
		First(&model)
	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("ownership record not found")
		}
		return nil, errors.NewDatabaseError("failed to find ownership record", result.Error)
	}

	return ownershipModelToData(&model), nil
}

// Apply upserts and deletes records for one user in one collection atomically
func (r *OwnershipRepositoryAdapter) Apply(ctx context.Context, userID, collectionID string, upserts []ports.OwnershipData, deletes []string) error {
	if userID == "" || collectionID == "" {
		return errors.NewValidationError("user ID and collection ID are required")
	}
	if len(upserts) == 0 && len(deletes) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(deletes) > 0 {
			result := tx.
				Where("user_id = ? AND collection_id = ? AND card_id IN ?", userID, collectionID, deletes).
				Delete(&OwnershipModel{})
			if result.Error != nil {
				return errors.NewDatabaseError("failed to delete ownership records", result.Error)
			}
		}

		if len(upserts) > 0 {
			now := time.Now()
			models := make([]OwnershipModel, 0, len(upserts))
			for i := range upserts {
				model := ownershipDataToModel(&upserts[i])
				model.UserID = userID
				model.CollectionID = collectionID
				model.UpdatedAt = now
				models = append(models, *model)
			}

			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "collection_id"}, {Name: "card_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"owned", "quantity", "condition", "notes", "updated_at"}),
			}).Create(&models)
			if result.Error != nil {
				return errors.NewDatabaseError("failed to upsert ownership records", result.Error)
			}
		}

		_, err := recomputeOwnedCards(tx, collectionID)
		return err
	})
	if err != nil {
		return err
	}

	r.publish(ctx, collectionID)
	return nil
}

func (r *OwnershipRepositoryAdapter) publish(ctx context.Context, collectionID string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Publish(ctx, ports.OwnershipChannel(collectionID)); err != nil && r.logger != nil {
		r.logger.Warn("Failed to publish ownership change",
			ports.F("collection_id", collectionID),
			ports.F("error", err))
	}
}

// recomputeOwnedCards sets collections.owned_cards to the number of distinct owned
// cards across all members. It fails with NotFound when the collection does not exist.
func recomputeOwnedCards(tx *gorm.DB, collectionID string) (int, error) {
	var count int64
	result := tx.Model(&OwnershipModel{}).
		Where("collection_id = ? AND owned = ?", collectionID, true).
		Distinct("card_id").
		Count(&count)
	if result.Error != nil {
		return 0, errors.NewDatabaseError("failed to count owned cards", result.Error)
	}

	result = tx.Model(&CollectionModel{}).
		Where("id = ?", collectionID).
		Update("owned_cards", count)
	if result.Error != nil {
		return 0, errors.NewDatabaseError("failed to update collection counter", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, errors.NewNotFoundError("collection not found")
	}

	return int(count), nil
}

func ownershipDataToModel(data *ports.OwnershipData) *OwnershipModel {
	return &OwnershipModel{
		UserID:       data.UserID,
		CollectionID: data.CollectionID,
		CardID:       data.CardID,
		Owned:        data.Owned,
		Quantity:     data.Quantity,
		Condition:    data.Condition,
		Notes:        data.Notes,
		AddedAt:      data.AddedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func ownershipModelToData(model *OwnershipModel) *ports.OwnershipData {
	return &ports.OwnershipData{
		UserID:       model.UserID,
		CollectionID: model.CollectionID,
		CardID:       model.CardID,
		Owned:        model.Owned,
		Quantity:     model.Quantity,
		Condition:    model.Condition,
		Notes:        model.Notes,
		AddedAt:      model.AddedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
