package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/validation"
)

const maxPageSize = 250

// Image holds the two rendition URLs every provider is normalized into
type Image struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// SetRef is the back-reference a card carries to its set
type SetRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Card is a catalog card in canonical form
type Card struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Number string   `json:"number"`
	Rarity string   `json:"rarity"`
	Types  []string `json:"types"`
	Image  Image    `json:"image"`
	Set    SetRef   `json:"set"`
}

// Set is a catalog set. Cards is only populated by GetSet.
type Set struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Series      string `json:"series,omitempty"`
	Total       int    `json:"total"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Cards       []Card `json:"cards,omitempty"`
}

// SearchParams narrows a card search; empty fields match everything
type SearchParams struct {
	Name     string
	Rarity   string
	Type     string
	SetID    string
	Page     int
	PageSize int
}

// Validate checks the paging bounds
func (p SearchParams) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("page cannot be negative")
	}
	if p.PageSize < 0 || p.PageSize > maxPageSize {
		return fmt.Errorf("page size must be between 0 and %d", maxPageSize)
	}
	if p.SetID != "" && !validation.IsValidIdentifier(p.SetID) {
		return fmt.Errorf("invalid set ID")
	}
	return nil
}

// normalize trims the text filters so equivalent searches share a cache key
func (p SearchParams) normalize() SearchParams {
	p.Name = strings.TrimSpace(p.Name)
	p.Rarity = strings.TrimSpace(p.Rarity)
	p.Type = strings.TrimSpace(p.Type)
	p.SetID = strings.TrimSpace(p.SetID)
	return p
}

// cacheParams escapes every filter value so a value holding '&' or '=' cannot
// forge a different search's key
func (p SearchParams) cacheParams() map[string]string {
	params := map[string]string{}
	if p.Name != "" {
		params["name"] = url.QueryEscape(strings.ToLower(p.Name))
	}
	if p.Rarity != "" {
		params["rarity"] = url.QueryEscape(p.Rarity)
	}
	if p.Type != "" {
		params["type"] = url.QueryEscape(p.Type)
	}
	if p.SetID != "" {
		params["set"] = url.QueryEscape(p.SetID)
	}
	if p.Page > 0 {
		params["page"] = strconv.Itoa(p.Page)
	}
	if p.PageSize > 0 {
		params["pageSize"] = strconv.Itoa(p.PageSize)
	}
	return params
}

func (p SearchParams) toQuery() ports.CardQuery {
	return ports.CardQuery{
		Name:     p.Name,
		Rarity:   p.Rarity,
		Type:     p.Type,
		SetID:    p.SetID,
		Page:     p.Page,
		PageSize: p.PageSize,
	}
}

func cardFromData(data ports.CardData) Card {
	types := data.Types
	if types == nil {
		types = []string{}
	}
	return Card{
		ID:     data.ID,
		Name:   data.Name,
		Number: data.Number,
		Rarity: data.Rarity,
		Types:  types,
		Image:  Image{Small: data.ImageSmall, Large: data.ImageLarge},
		Set:    SetRef{ID: data.SetID, Name: data.SetName},
	}
}

func cardsFromData(data []ports.CardData) []Card {
	cards := make([]Card, len(data))
	for i := range data {
		cards[i] = cardFromData(data[i])
	}
	return cards
}

func setFromData(data *ports.SetData) *Set {
	set := &Set{
		ID:          data.ID,
		Name:        data.Name,
		Series:      data.Series,
		Total:       data.Total,
		ReleaseDate: data.ReleaseDate,
		Logo:        data.LogoURL,
	}
	if data.Cards != nil {
		set.Cards = cardsFromData(data.Cards)
	}
	return set
}
