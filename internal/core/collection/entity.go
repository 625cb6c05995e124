package collection

import (
	"fmt"
	"strings"
	"time"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/validation"
)

// Role is a member's access level in a collection
type Role string

const (
	RoleOwner  Role = ports.RoleOwner
	RoleEditor Role = ports.RoleEditor
	RoleViewer Role = ports.RoleViewer
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// CanEdit reports whether r may change ownership records
func (r Role) CanEdit() bool {
	return r == RoleOwner || r == RoleEditor
}

// Collection is a user's binder for one card set
type Collection struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Game       string          `json:"game"`
	Language   string          `json:"language"`
	SetID      string          `json:"setId"`
	OwnerID    string          `json:"ownerId"`
	Members    map[string]Role `json:"members"`
	TotalCards int             `json:"totalCards"`
	OwnedCards int             `json:"ownedCards"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// DefaultGame is used when a collection does not name one
const DefaultGame = "pokemon"

const maxNameLength = 100

// CreateParams describes a new collection
type CreateParams struct {
	OwnerID      string
	Name         string
	Game         string
	Language     string
	SetID        string
	PrefillOwned bool
}

func (p CreateParams) normalize() CreateParams {
	p.OwnerID = strings.TrimSpace(p.OwnerID)
	p.Name = strings.TrimSpace(p.Name)
	p.Game = strings.ToLower(strings.TrimSpace(p.Game))
	if p.Game == "" {
		p.Game = DefaultGame
	}
	p.Language = validation.NormalizeLanguage(p.Language)
	p.SetID = strings.TrimSpace(p.SetID)
	return p
}

// Validate checks the parameters. Language may be empty and falls back to the catalog default.
func (p CreateParams) Validate() error {
	if p.OwnerID == "" {
		return fmt.Errorf("owner is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(p.Name) > maxNameLength {
		return fmt.Errorf("name cannot exceed %d characters", maxNameLength)
	}
	if p.Game != DefaultGame {
		return fmt.Errorf("unsupported game %q", p.Game)
	}
	if p.Language != "" && !validation.IsSupportedLanguage(p.Language) {
		return fmt.Errorf("unsupported language %q", p.Language)
	}
	if !validation.IsValidIdentifier(p.SetID) {
		return fmt.Errorf("invalid set ID %q", p.SetID)
	}
	return nil
}

func fromData(data *ports.CollectionData) *Collection {
	members := make(map[string]Role, len(data.Members))
	for userID, role := range data.Members {
		members[userID] = Role(role)
	}
	return &Collection{
		ID:         data.ID,
		Name:       data.Name,
		Game:       data.Game,
		Language:   data.Language,
		SetID:      data.SetID,
		OwnerID:    data.OwnerID,
		Members:    members,
		TotalCards: data.TotalCards,
		OwnedCards: data.OwnedCards,
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
	}
}
