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

const ownershipBatchSize = 200

// CollectionRepositoryAdapter implements the CollectionRepository port using GORM
type CollectionRepositoryAdapter struct {
	db       *gorm.DB
	notifier ports.ChangeNotifier
	logger   ports.Logger
}

// NewCollectionRepositoryAdapter creates a new collection repository adapter.
// Membership changes are published on the ownership channel so live watchers re-check access.
func NewCollectionRepositoryAdapter(db *gorm.DB, notifier ports.ChangeNotifier, logger ports.Logger) *CollectionRepositoryAdapter {
	return &CollectionRepositoryAdapter{
		db:       db,
		notifier: notifier,
		logger:   logger,
	}
}

// Create stores the collection, the owner membership and the initial ownership
// records in one transaction. col.OwnedCards is set from what was written.
func (r *CollectionRepositoryAdapter) Create(ctx context.Context, col *ports.CollectionData, initial []ports.OwnershipData) error {
	if col == nil {
		return errors.NewValidationError("collection cannot be nil")
	}
	if col.ID == "" || col.OwnerID == "" {
		return errors.NewValidationError("collection ID and owner are required")
	}

	model := collectionDataToModel(col)
	model.OwnedCards = 0
	model.Members = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			if stderrors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.NewAlreadyExistsError("collection already exists")
			}
			return errors.NewDatabaseError("failed to create collection", err)
		}

		members := make([]CollectionMemberModel, 0, len(col.Members)+1)
		members = append(members, CollectionMemberModel{CollectionID: col.ID, UserID: col.OwnerID, Role: ports.RoleOwner})
		for userID, role := range col.Members {
			if userID != col.OwnerID {
				members = append(members, CollectionMemberModel{CollectionID: col.ID, UserID: userID, Role: role})
			}
		}
		if err := tx.Create(&members).Error; err != nil {
			return errors.NewDatabaseError("failed to create collection members", err)
		}

		if len(initial) > 0 {
			now := time.Now()
			records := make([]OwnershipModel, 0, len(initial))
			for i := range initial {
				record := ownershipDataToModel(&initial[i])
				record.CollectionID = col.ID
				record.UpdatedAt = now
				records = append(records, *record)
			}
			if err := tx.CreateInBatches(&records, ownershipBatchSize).Error; err != nil {
				return errors.NewDatabaseError("failed to create initial ownership records", err)
			}
		}

		owned, err := recomputeOwnedCards(tx, col.ID)
		if err != nil {
			return err
		}
		col.OwnedCards = owned
		return nil
	})
	if err != nil {
		return err
	}

	col.CreatedAt = model.CreatedAt
	col.UpdatedAt = model.UpdatedAt
	if col.Members == nil {
		col.Members = map[string]string{}
	}
	col.Members[col.OwnerID] = ports.RoleOwner
	return nil
}

func (r *CollectionRepositoryAdapter) FindByID(ctx context.Context, id string) (*ports.CollectionData, error) {
	if id == "" {
		return nil, errors.NewValidationError("collection ID cannot be empty")
	}

	var model CollectionModel
	result := r.db.WithContext(ctx).Preload("Members").Where("id = ?", id).First(&model)
	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("collection not found")
		}
		return nil, errors.NewDatabaseError("failed to find collection", result.Error)
	}

	return collectionModelToData(&model), nil
}

// ListForUser returns every collection the user is a member of, newest first
func (r *CollectionRepositoryAdapter) ListForUser(ctx context.Context, userID string) ([]*ports.CollectionData, error) {
	if userID == "" {
		return nil, errors.NewValidationError("user ID cannot be empty")
	}

	var models []CollectionModel
	result := r.db.WithContext(ctx).
		Select("collections.*").
		Preload("Members").
		Joins("JOIN collection_members ON collection_members.collection_id = collections.id").
		Where("collection_members.user_id = ?", userID).
		Order("collections.created_at DESC").
		Find(&models)
	if result.Error != nil {
		return nil, errors.NewDatabaseError("failed to list collections", result.Error)
	}

	collections := make([]*ports.CollectionData, len(models))
	for i := range models {
		collections[i] = collectionModelToData(&models[i])
	}
	return collections, nil
}

// MemberRole returns the user's role, or NotFound when the user is not a member
func (r *CollectionRepositoryAdapter) MemberRole(ctx context.Context, collectionID, userID string) (string, error) {
	var member CollectionMemberModel
	result := r.db.WithContext(ctx).
		Where("collection_id = ? AND user_id = ?", collectionID, userID).
		First(&member)
	if result.Error != nil {
		if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", errors.NewNotFoundError("membership not found")
		}
		return "", errors.NewDatabaseError("failed to find membership", result.Error)
	}
	return member.Role, nil
}

// AddMember inserts the membership or updates the role of an existing one
func (r *CollectionRepositoryAdapter) AddMember(ctx context.Context, collectionID, userID, role string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&CollectionModel{}).Where("id = ?", collectionID).Count(&count).Error; err != nil {
			return errors.NewDatabaseError("failed to find collection", err)
		}
		if count == 0 {
			return errors.NewNotFoundError("collection not found")
		}

		member := CollectionMemberModel{CollectionID: collectionID, UserID: userID, Role: role}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).Create(&member)
		if result.Error != nil {
			return errors.NewDatabaseError("failed to add member", result.Error)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.publish(ctx, collectionID)
	return nil
}

func (r *CollectionRepositoryAdapter) RemoveMember(ctx context.Context, collectionID, userID string) error {
	result := r.db.WithContext(ctx).
		Where("collection_id = ? AND user_id = ?", collectionID, userID).
		Delete(&CollectionMemberModel{})
	if result.Error != nil {
		return errors.NewDatabaseError("failed to remove member", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("membership not found")
	}

	r.publish(ctx, collectionID)
	return nil
}

// Delete removes the collection with its members and ownership records
func (r *CollectionRepositoryAdapter) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&OwnershipModel{}).Error; err != nil {
			return errors.NewDatabaseError("failed to delete ownership records", err)
		}
		if err := tx.Where("collection_id = ?", id).Delete(&CollectionMemberModel{}).Error; err != nil {
			return errors.NewDatabaseError("failed to delete collection members", err)
		}

		result := tx.Where("id = ?", id).Delete(&CollectionModel{})
		if result.Error != nil {
			return errors.NewDatabaseError("failed to delete collection", result.Error)
		}
		if result.RowsAffected == 0 {
			return errors.NewNotFoundError("collection not found")
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.publish(ctx, id)
	return nil
}

func (r *CollectionRepositoryAdapter) publish(ctx context.Context, collectionID string) {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Publish(ctx, ports.OwnershipChannel(collectionID)); err != nil && r.logger != nil {
		r.logger.Warn("Failed to publish collection change",
			ports.F("collection_id", collectionID),
			ports.F("error", err))
	}
}

func collectionDataToModel(data *ports.CollectionData) *CollectionModel {
	model := &CollectionModel{
		ID:         data.ID,
		Name:       data.Name,
		Game:       data.Game,
		Language:   data.Language,
		SetID:      data.SetID,
		OwnerID:    data.OwnerID,
		TotalCards: data.TotalCards,
		OwnedCards: data.OwnedCards,
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
	}
	for userID, role := range data.Members {
		model.Members = append(model.Members, CollectionMemberModel{
			CollectionID: data.ID,
			UserID:       userID,
			Role:         role,
		})
	}
	return model
}

func collectionModelToData(model *CollectionModel) *ports.CollectionData {
	members := make(map[string]string, len(model.Members))
	for _, m := range model.Members {
		members[m.UserID] = m.Role
	}
	return &ports.CollectionData{
		ID:         model.ID,
		Name:       model.Name,
		Game:       model.Game,
		Language:   model.Language,
		SetID:      model.SetID,
		OwnerID:    model.OwnerID,
		Members:    members,
		TotalCards: model.TotalCards,
		OwnedCards: model.OwnedCards,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}
