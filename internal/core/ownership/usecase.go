// Package ownership maintains the per-user owned-card read-model of a collection.
package ownership

import (
	"context"
	"fmt"
	"strings"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
)

type UseCase struct {
	repo        ports.OwnershipRepository
	feed        ports.OwnershipFeed
	collections ports.CollectionRepository
	metrics     ports.OwnershipMetrics
	logger      ports.Logger
}

type UseCaseDependencies struct {
	Repository  ports.OwnershipRepository
	Feed        ports.OwnershipFeed
	Collections ports.CollectionRepository
	Metrics     ports.OwnershipMetrics
	Logger      ports.Logger
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Repository == nil {
		return nil, errors.NewValidationError("ownership repository is required")
	}
	if deps.Feed == nil {
		return nil, errors.NewValidationError("ownership feed is required")
	}
	if deps.Collections == nil {
		return nil, errors.NewValidationError("collection repository is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		repo:        deps.Repository,
		feed:        deps.Feed,
		collections: deps.Collections,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}, nil
}

// Subscribe opens a live view of the user's owned set. The returned subscription
// starts in StatusLoading. It ends with a permission error if the user stops
// being a member of the collection while it is open.
func (uc *UseCase) Subscribe(ctx context.Context, userID, collectionID string) (*Subscription, error) {
	if err := requireIDs(userID, collectionID); err != nil {
		return nil, err
	}
	if _, err := uc.authorize(ctx, userID, collectionID, false); err != nil {
		return nil, err
	}

	sub := newSubscription(func() {
		if uc.metrics != nil {
			uc.metrics.SubscriptionClosed()
		}
		uc.logger.Debug("Ownership subscription closed",
			ports.F("user_id", userID),
			ports.F("collection_id", collectionID))
	})

	onNext := func(cardIDs []string) {
		if _, err := uc.authorize(ctx, userID, collectionID, false); err != nil {
			if ctx.Err() == nil {
				sub.fail(err)
			}
			return
		}
		sub.deliver(NewOwnedSet(cardIDs))
	}
	onError := func(err error) {
		uc.logger.Warn("Ownership subscription failed",
			ports.F("user_id", userID),
			ports.F("collection_id", collectionID),
			ports.F("error", err))
		sub.fail(err)
	}

	unsubscribe, err := uc.feed.Watch(ctx, userID, collectionID, onNext, onError)
	if err != nil {
		return nil, fmt.Errorf("watch ownership of collection %s: %w", collectionID, err)
	}
	if uc.metrics != nil {
		uc.metrics.SubscriptionOpened()
	}
	sub.attach(unsubscribe)

	go func() {
		select {
		case <-ctx.Done():
			sub.Cancel()
		case <-sub.Done():
		}
	}()

	uc.logger.Debug("Ownership subscription opened",
		ports.F("user_id", userID),
		ports.F("collection_id", collectionID))
	return sub, nil
}

// Owned reads the current owned set once
func (uc *UseCase) Owned(ctx context.Context, userID, collectionID string) (OwnedSet, error) {
	if err := requireIDs(userID, collectionID); err != nil {
		return OwnedSet{}, err
	}
	if _, err := uc.authorize(ctx, userID, collectionID, false); err != nil {
		return OwnedSet{}, err
	}

	cardIDs, err := uc.repo.ListOwned(ctx, userID, collectionID)
	if err != nil {
		return OwnedSet{}, fmt.Errorf("list owned cards of collection %s: %w", collectionID, err)
	}
	return NewOwnedSet(cardIDs), nil
}

// Progress returns the owned set together with its stats against the collection size
func (uc *UseCase) Progress(ctx context.Context, userID, collectionID string) (OwnedSet, Stats, error) {
	if err := requireIDs(userID, collectionID); err != nil {
		return OwnedSet{}, Stats{}, err
	}
	col, err := uc.collections.FindByID(ctx, collectionID)
	if err != nil {
		return OwnedSet{}, Stats{}, fmt.Errorf("find collection %s: %w", collectionID, err)
	}

	owned, err := uc.Owned(ctx, userID, collectionID)
	if err != nil {
		return OwnedSet{}, Stats{}, err
	}
	return owned, ComputeStats(owned.Len(), col.TotalCards), nil
}

// SetOwnership writes or deletes the record for one card. Not owning a card
// deletes its record.
func (uc *UseCase) SetOwnership(ctx context.Context, params SetOwnershipParams) error {
	if err := requireIDs(params.UserID, params.CollectionID); err != nil {
		return err
	}
	card, err := params.Card.normalize()
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	if _, err := uc.authorize(ctx, params.UserID, params.CollectionID, true); err != nil {
		return err
	}

	var upserts []ports.OwnershipData
	var deletes []string
	if params.ShouldOwn {
		upserts = []ports.OwnershipData{recordFor(params.UserID, params.CollectionID, card)}
	} else {
		deletes = []string{card.ID}
	}

	err = uc.repo.Apply(ctx, params.UserID, params.CollectionID, upserts, deletes)
	uc.recordWrite("set", 1, err == nil)
	if err != nil {
		uc.logger.Error("Failed to set card ownership",
			ports.F("user_id", params.UserID),
			ports.F("collection_id", params.CollectionID),
			ports.F("card_id", card.ID),
			ports.F("error", err))
		return fmt.Errorf("set ownership of card %s: %w", card.ID, err)
	}

	uc.logger.Debug("Card ownership set",
		ports.F("collection_id", params.CollectionID),
		ports.F("card_id", card.ID),
		ports.F("owned", params.ShouldOwn))
	return nil
}

// BulkSetOwnership applies one ownership value to many cards in a single batch.
// Either every record changes or none does. Repeated card IDs collapse to the last one.
func (uc *UseCase) BulkSetOwnership(ctx context.Context, params BulkSetOwnershipParams) error {
	if err := requireIDs(params.UserID, params.CollectionID); err != nil {
		return err
	}
	cards, err := dedupe(params.Cards)
	if err != nil {
		return errors.NewValidationError(err.Error())
	}
	if len(cards) == 0 {
		return nil
	}
	if _, err := uc.authorize(ctx, params.UserID, params.CollectionID, true); err != nil {
		return err
	}

	var upserts []ports.OwnershipData
	var deletes []string
	for _, card := range cards {
		if params.ShouldOwn {
			upserts = append(upserts, recordFor(params.UserID, params.CollectionID, card))
		} else {
			deletes = append(deletes, card.ID)
		}
	}

	err = uc.repo.Apply(ctx, params.UserID, params.CollectionID, upserts, deletes)
	uc.recordWrite("bulk_set", len(cards), err == nil)
	if err != nil {
		uc.logger.Error("Failed to bulk set card ownership",
			ports.F("user_id", params.UserID),
			ports.F("collection_id", params.CollectionID),
			ports.F("cards", len(cards)),
			ports.F("error", err))
		return fmt.Errorf("bulk set ownership of %d cards: %w", len(cards), err)
	}

	uc.logger.Info("Bulk ownership applied",
		ports.F("collection_id", params.CollectionID),
		ports.F("cards", len(cards)),
		ports.F("owned", params.ShouldOwn))
	return nil
}

// InitialRecords builds the owned records written when a collection is created pre-filled
func InitialRecords(userID string, cardIDs []string) ([]ports.OwnershipData, error) {
	refs := make([]CardRef, len(cardIDs))
	for i, id := range cardIDs {
		refs[i] = CardRef{ID: id}
	}
	cards, err := dedupe(refs)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	records := make([]ports.OwnershipData, len(cards))
	for i, card := range cards {
		records[i] = recordFor(userID, "", card)
	}
	return records, nil
}

// authorize returns the member's role. Non-members get a permission error;
// write access needs the owner or editor role.
func (uc *UseCase) authorize(ctx context.Context, userID, collectionID string, write bool) (string, error) {
	role, err := uc.collections.MemberRole(ctx, collectionID, userID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return "", errors.NewPermissionError("user is not a member of this collection")
		}
		return "", fmt.Errorf("check membership: %w", err)
	}
	if write && role != ports.RoleOwner && role != ports.RoleEditor {
		return "", errors.NewPermissionError("user cannot edit this collection")
	}
	return role, nil
}

func (uc *UseCase) recordWrite(operation string, records int, success bool) {
	if uc.metrics != nil {
		uc.metrics.RecordWrite(operation, records, success)
	}
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

func dedupe(refs []CardRef) ([]CardRef, error) {
	position := make(map[string]int, len(refs))
	cards := make([]CardRef, 0, len(refs))
	for _, ref := range refs {
		card, err := ref.normalize()
		if err != nil {
			return nil, err
		}
		if i, seen := position[card.ID]; seen {
			cards[i] = card
			continue
		}
		position[card.ID] = len(cards)
		cards = append(cards, card)
	}
	return cards, nil
}

func recordFor(userID, collectionID string, card CardRef) ports.OwnershipData {
	return ports.OwnershipData{
		UserID:       userID,
		CollectionID: collectionID,
		CardID:       card.ID,
		Owned:        true,
		Quantity:     card.Quantity,
		Condition:    string(card.Condition),
		Notes:        card.Notes,
	}
}
