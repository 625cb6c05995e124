package ports

import (
	"context"
	"time"
)

// Collection member roles
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// CollectionData represents collection data for persistence
type CollectionData struct {
	ID         string
	Name       string
	Game       string
	Language   string
	SetID      string
	OwnerID    string
	Members    map[string]string
	TotalCards int
	OwnedCards int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CollectionRepository defines the contract for collection persistence.
// Create stores the collection, its owner membership and the initial ownership records atomically.
type CollectionRepository interface {
	Create(ctx context.Context, col *CollectionData, initial []OwnershipData) error
	FindByID(ctx context.Context, id string) (*CollectionData, error)
	ListForUser(ctx context.Context, userID string) ([]*CollectionData, error)
	MemberRole(ctx context.Context, collectionID, userID string) (string, error)
	AddMember(ctx context.Context, collectionID, userID, role string) error
	RemoveMember(ctx context.Context, collectionID, userID string) error
	Delete(ctx context.Context, id string) error
}
