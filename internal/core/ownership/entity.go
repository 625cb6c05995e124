package ownership

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"cardbinder.app/pkg/validation"
)

// Condition grades the physical state of an owned card
type Condition string

const (
	ConditionMint        Condition = "mint"
	ConditionNearMint    Condition = "near_mint"
	ConditionExcellent   Condition = "excellent"
	ConditionGood        Condition = "good"
	ConditionLightPlayed Condition = "light_played"
	ConditionPlayed      Condition = "played"
	ConditionPoor        Condition = "poor"
)

// DefaultCondition is assigned when a record does not name one
const DefaultCondition = ConditionMint

// DefaultQuantity is assigned when a record does not name one
const DefaultQuantity = 1

var validConditions = map[Condition]bool{
	ConditionMint:        true,
	ConditionNearMint:    true,
	ConditionExcellent:   true,
	ConditionGood:        true,
	ConditionLightPlayed: true,
	ConditionPlayed:      true,
	ConditionPoor:        true,
}

// IsValid reports whether c is a known grade
func (c Condition) IsValid() bool {
	return validConditions[c]
}

// Status describes where a subscription is in its lifecycle
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// OwnedSet is an immutable set of owned card IDs
type OwnedSet struct {
	ids   []string
	index map[string]struct{}
}

// NewOwnedSet builds a set from card IDs; duplicates collapse
func NewOwnedSet(cardIDs []string) OwnedSet {
	index := make(map[string]struct{}, len(cardIDs))
	ids := make([]string, 0, len(cardIDs))
	for _, id := range cardIDs {
		if _, seen := index[id]; seen {
			continue
		}
		index[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return OwnedSet{ids: ids, index: index}
}

// Has reports whether cardID is owned
func (s OwnedSet) Has(cardID string) bool {
	_, ok := s.index[cardID]
	return ok
}

// Len returns the number of owned cards
func (s OwnedSet) Len() int {
	return len(s.ids)
}

// IDs returns the owned card IDs in sorted order
func (s OwnedSet) IDs() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Snapshot is the observable state of a subscription.
// Owned is meaningful only when Status is StatusReady.
type Snapshot struct {
	Status Status
	Owned  OwnedSet
	Err    error
}

// Stats summarizes collection progress
type Stats struct {
	Owned             int `json:"owned"`
	Total             int `json:"total"`
	Needed            int `json:"needed"`
	CompletionPercent int `json:"completionPercent"`
}

// ComputeStats derives progress from an owned count and the collection size.
// CompletionPercent is owned/total*100 rounded half up, and 0 when total is 0.
func ComputeStats(owned, total int) Stats {
	stats := Stats{Owned: owned, Total: total}
	if needed := total - owned; needed > 0 {
		stats.Needed = needed
	}
	if total > 0 {
		stats.CompletionPercent = int(math.Round(float64(owned) / float64(total) * 100))
	}
	return stats
}

// CardRef names a card together with the attributes stored when it is owned
type CardRef struct {
	ID        string
	Quantity  int
	Condition Condition
	Notes     string
}

// normalize applies defaults and validates the reference
func (c CardRef) normalize() (CardRef, error) {
	c.ID = strings.TrimSpace(c.ID)
	if !validation.IsValidIdentifier(c.ID) {
		return c, fmt.Errorf("invalid card ID %q", c.ID)
	}
	if c.Quantity < 0 {
		return c, fmt.Errorf("quantity for card %s cannot be negative", c.ID)
	}
	if c.Quantity == 0 {
		c.Quantity = DefaultQuantity
	}
	if c.Condition == "" {
		c.Condition = DefaultCondition
	}
	if !c.Condition.IsValid() {
		return c, fmt.Errorf("invalid condition %q for card %s", c.Condition, c.ID)
	}
	return c, nil
}

// SetOwnershipParams toggles one card
type SetOwnershipParams struct {
	UserID       string
	CollectionID string
	Card         CardRef
	ShouldOwn    bool
}

// BulkSetOwnershipParams toggles many cards in one batch
type BulkSetOwnershipParams struct {
	UserID       string
	CollectionID string
	Cards        []CardRef
	ShouldOwn    bool
}
