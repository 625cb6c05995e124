package ports

import (
	"context"
	"time"
)

// OwnershipData represents one ownership record for persistence
type OwnershipData struct {
	UserID       string
	CollectionID string
	CardID       string
	Owned        bool
	Quantity     int
	Condition    string
	Notes        string
	AddedAt      time.Time
	UpdatedAt    time.Time
}

// CancelFunc stops a live subscription. Calling it more than once is a no-op.
type CancelFunc func()

// OwnershipRepository defines the contract for ownership persistence.
// Apply writes upserts and deletes in one transaction: either every change lands or none does.
type OwnershipRepository interface {
	ListOwned(ctx context.Context, userID, collectionID string) ([]string, error)
	Get(ctx context.Context, userID, collectionID, cardID string) (*OwnershipData, error)
	Apply(ctx context.Context, userID, collectionID string, upserts []OwnershipData, deletes []string) error
}

// OwnershipFeed is an observable owned-card set. onNext receives the full set after every
// change; onError is called at most once, after which no further callbacks happen.
type OwnershipFeed interface {
	Watch(ctx context.Context, userID, collectionID string, onNext func(cardIDs []string), onError func(error)) (CancelFunc, error)
}

// ChangeNotifier carries "something changed" signals between writers and watchers
type ChangeNotifier interface {
	Publish(ctx context.Context, channel string) error
	Subscribe(ctx context.Context, channel string, onEvent func(), onError func(error)) (CancelFunc, error)
}

// OwnershipChannel names the notifier channel for a collection
func OwnershipChannel(collectionID string) string {
	return "ownership:" + collectionID
}
