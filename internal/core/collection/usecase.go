// Package collection manages binders: one collection per card set, shared between members.
package collection

import (
	"context"
	"fmt"
	"strings"

	"cardbinder.app/internal/core/catalog"
	"cardbinder.app/internal/core/ownership"
	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"github.com/google/uuid"
)

// SetSource resolves a set together with its card list
type SetSource interface {
	GetSet(ctx context.Context, lang, setID string) (*catalog.Set, error)
}

type UseCase struct {
	repo   ports.CollectionRepository
	sets   SetSource
	config ports.ConfigProvider
	logger ports.Logger
	newID  func() string
}

type UseCaseDependencies struct {
	Repository ports.CollectionRepository
	Sets       SetSource
	Config     ports.ConfigProvider
	Logger     ports.Logger
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Repository == nil {
		return nil, errors.NewValidationError("collection repository is required")
	}
	if deps.Sets == nil {
		return nil, errors.NewValidationError("set source is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		repo:   deps.Repository,
		sets:   deps.Sets,
		config: deps.Config,
		logger: deps.Logger,
		newID:  func() string { return uuid.New().String() },
	}, nil
}

// Create makes a collection for one set. With PrefillOwned every card of the set
// starts out owned by the creator, written in the same transaction as the collection.
func (uc *UseCase) Create(ctx context.Context, params CreateParams) (*Collection, error) {
	params = params.normalize()
	if params.Language == "" {
		params.Language = uc.config.GetCatalogConfig().DefaultLanguage
	}
	if err := params.Validate(); err != nil {
		return nil, errors.NewValidationError("invalid collection: " + err.Error())
	}

	set, err := uc.sets.GetSet(ctx, params.Language, params.SetID)
	if err != nil {
		return nil, fmt.Errorf("resolve set %s: %w", params.SetID, err)
	}

	total := len(set.Cards)
	if total == 0 {
		total = set.Total
	}

	var initial []ports.OwnershipData
	if params.PrefillOwned {
		cardIDs := make([]string, len(set.Cards))
		for i, card := range set.Cards {
			cardIDs[i] = card.ID
		}
		initial, err = ownership.InitialRecords(params.OwnerID, cardIDs)
		if err != nil {
			return nil, fmt.Errorf("prefill set %s: %w", params.SetID, err)
		}
	}

	data := &ports.CollectionData{
		ID:         uc.newID(),
		Name:       params.Name,
		Game:       params.Game,
		Language:   params.Language,
		SetID:      set.ID,
		OwnerID:    params.OwnerID,
		TotalCards: total,
	}
	if err := uc.repo.Create(ctx, data, initial); err != nil {
		uc.logger.Error("Failed to create collection",
			ports.F("owner_id", params.OwnerID),
			ports.F("set_id", params.SetID),
			ports.F("error", err))
		return nil, fmt.Errorf("create collection: %w", err)
	}

	uc.logger.Info("Collection created",
		ports.F("collection_id", data.ID),
		ports.F("set_id", data.SetID),
		ports.F("total_cards", data.TotalCards),
		ports.F("owned_cards", data.OwnedCards))
	return fromData(data), nil
}

// Get returns the collection if userID is one of its members
func (uc *UseCase) Get(ctx context.Context, userID, collectionID string) (*Collection, error) {
	if err := requireIDs(userID, collectionID); err != nil {
		return nil, err
	}

	col, err := uc.find(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if _, ok := col.Members[userID]; !ok {
		return nil, errors.NewPermissionError("user is not a member of this collection")
	}
	return col, nil
}

func (uc *UseCase) ListForUser(ctx context.Context, userID string) ([]*Collection, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.NewValidationError("user ID is required")
	}

	data, err := uc.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	collections := make([]*Collection, len(data))
	for i := range data {
		collections[i] = fromData(data[i])
	}
	return collections, nil
}

// AddMember grants userID a role, or changes the role of an existing member.
// Only the owner may do this and ownership cannot be transferred.
func (uc *UseCase) AddMember(ctx context.Context, actorID, collectionID, userID string, role Role) error {
	if err := requireIDs(actorID, collectionID); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.NewValidationError("member user ID is required")
	}
	if !role.IsValid() || role == RoleOwner {
		return errors.NewValidationError(fmt.Sprintf("invalid member role %q", role))
	}

	col, err := uc.requireOwner(ctx, actorID, collectionID)
	if err != nil {
		return err
	}
	if userID == col.OwnerID {
		return errors.NewValidationError("the owner's role cannot be changed")
	}

	if err := uc.repo.AddMember(ctx, collectionID, userID, string(role)); err != nil {
		return fmt.Errorf("add member to collection %s: %w", collectionID, err)
	}

	uc.logger.Info("Collection member added",
		ports.F("collection_id", collectionID),
		ports.F("user_id", userID),
		ports.F("role", string(role)))
	return nil
}

// RemoveMember revokes userID's access. The owner may remove anyone else and
// any member may remove themselves.
func (uc *UseCase) RemoveMember(ctx context.Context, actorID, collectionID, userID string) error {
	if err := requireIDs(actorID, collectionID); err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.NewValidationError("member user ID is required")
	}

	col, err := uc.find(ctx, collectionID)
	if err != nil {
		return err
	}
	if userID == col.OwnerID {
		return errors.NewValidationError("the owner cannot be removed")
	}
	if actorID != col.OwnerID && actorID != userID {
		return errors.NewPermissionError("only the owner can remove other members")
	}

	if err := uc.repo.RemoveMember(ctx, collectionID, userID); err != nil {
		return fmt.Errorf("remove member from collection %s: %w", collectionID, err)
	}

	uc.logger.Info("Collection member removed",
		ports.F("collection_id", collectionID),
		ports.F("user_id", userID))
	return nil
}

// Delete removes the collection with every member and ownership record
func (uc *UseCase) Delete(ctx context.Context, actorID, collectionID string) error {
	if err := requireIDs(actorID, collectionID); err != nil {
		return err
	}
	if _, err := uc.requireOwner(ctx, actorID, collectionID); err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, collectionID); err != nil {
		return fmt.Errorf("delete collection %s: %w", collectionID, err)
	}

	uc.logger.Info("Collection deleted", ports.F("collection_id", collectionID))
	return nil
}

func (uc *UseCase) find(ctx context.Context, collectionID string) (*Collection, error) {
	data, err := uc.repo.FindByID(ctx, collectionID)
	if err != nil {
		return nil, fmt.Errorf("find collection %s: %w", collectionID, err)
	}
	return fromData(data), nil
}

func (uc *UseCase) requireOwner(ctx context.Context, actorID, collectionID string) (*Collection, error) {
	col, err := uc.find(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if col.OwnerID != actorID {
		return nil, errors.NewPermissionError("only the owner can manage this collection")
	}
	return col, nil
}

func requireIDs(userID, collectionID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.NewValidationError("user ID is required")
	}
	if strings.TrimSpace(collectionID) == "" {
		return errors.NewValidationError("collection ID is required")
	}
	return nil
}
