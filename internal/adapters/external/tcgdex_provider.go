// Package external provides adapters for external services.
// These adapters implement ports for catalog providers, persisted cache stores and change notifiers.
package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"cardbinder.app/pkg/validation"
)

const defaultProviderTimeout = 10 * time.Second

// HTTPClient interface for HTTP requests (for testing)
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TCGdexProviderAdapter implements CatalogProvider port for the TCGdex API
type TCGdexProviderAdapter struct {
	baseURL string
	client  HTTPClient
	logger  ports.Logger
}

// TCGdexProviderParams holds parameters for creating TCGdex provider
type TCGdexProviderParams struct {
	BaseURL string
	Timeout time.Duration
	Client  HTTPClient
	Logger  ports.Logger
}

type tcgdexCardBrief struct {
	ID      string `json:"id"`
	LocalID string `json:"localId"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

type tcgdexCard struct {
	tcgdexCardBrief
	Rarity string   `json:"rarity"`
	Types  []string `json:"types"`
	Set    struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"set"`
}

type tcgdexCardCount struct {
	Total    int `json:"total"`
	Official int `json:"official"`
}

type tcgdexSetBrief struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Logo      string          `json:"logo"`
	CardCount tcgdexCardCount `json:"cardCount"`
}

type tcgdexSet struct {
	tcgdexSetBrief
	ReleaseDate string `json:"releaseDate"`
	Serie       struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"serie"`
	Cards []tcgdexCardBrief `json:"cards"`
}

// NewTCGdexProviderAdapter creates a new TCGdex provider adapter
func NewTCGdexProviderAdapter(params TCGdexProviderParams) ports.CatalogProvider {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = "https://api.tcgdex.net/v2"
	}

	client := params.Client
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = defaultProviderTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &TCGdexProviderAdapter{
		baseURL: baseURL,
		client:  client,
		logger:  params.Logger,
	}
}

func (p *TCGdexProviderAdapter) ListSets(ctx context.Context, lang string) ([]ports.SetData, error) {
	var payload []tcgdexSetBrief
	if err := p.get(ctx, fmt.Sprintf("%s/%s/sets", p.baseURL, lang), &payload); err != nil {
		return nil, err
	}

	sets := make([]ports.SetData, 0, len(payload))
	for _, s := range payload {
		sets = append(sets, ports.SetData{
			ID:      s.ID,
			Name:    s.Name,
			Total:   s.CardCount.Total,
			LogoURL: tcgdexLogoURL(s.Logo),
		})
	}
	return sets, nil
}

func (p *TCGdexProviderAdapter) GetSet(ctx context.Context, lang, setID string) (*ports.SetData, error) {
	if setID == "" {
		return nil, errors.NewValidationError("set id cannot be empty")
	}

	var payload tcgdexSet
	endpoint := fmt.Sprintf("%s/%s/sets/%s", p.baseURL, lang, url.PathEscape(setID))
	if err := p.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	set := &ports.SetData{
		ID:          payload.ID,
		Name:        payload.Name,
		Series:      payload.Serie.Name,
		Total:       payload.CardCount.Total,
		ReleaseDate: payload.ReleaseDate,
		LogoURL:     tcgdexLogoURL(payload.Logo),
		Cards:       make([]ports.CardData, 0, len(payload.Cards)),
	}
	for _, c := range payload.Cards {
		card := tcgdexBriefToCard(c)
		card.SetID = payload.ID
		card.SetName = payload.Name
		set.Cards = append(set.Cards, card)
	}
	if set.Total == 0 {
		set.Total = len(set.Cards)
	}
	return set, nil
}

func (p *TCGdexProviderAdapter) ListCards(ctx context.Context, lang string, query ports.CardQuery) ([]ports.CardData, error) {
	values := url.Values{}
	if query.Name != "" {
		values.Set("name", query.Name)
	}
	if query.Rarity != "" {
		values.Set("rarity", query.Rarity)
	}
	if query.Type != "" {
		values.Set("types", query.Type)
	}
	if query.SetID != "" {
		values.Set("set.id", query.SetID)
	}
	if query.Page > 0 {
		values.Set("pagination:page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		values.Set("pagination:itemsPerPage", strconv.Itoa(query.PageSize))
	}

	endpoint := fmt.Sprintf("%s/%s/cards", p.baseURL, lang)
	if encoded := values.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var payload []tcgdexCard
	if err := p.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	cards := make([]ports.CardData, 0, len(payload))
	for _, c := range payload {
		card := tcgdexBriefToCard(c.tcgdexCardBrief)
		card.Rarity = c.Rarity
		card.Types = c.Types
		card.SetID = c.Set.ID
		card.SetName = c.Set.Name
		cards = append(cards, card)
	}
	return cards, nil
}

// SupportsLanguage reports true for every language the application accepts
func (p *TCGdexProviderAdapter) SupportsLanguage(lang string) bool {
	return validation.IsSupportedLanguage(lang)
}

// GetProviderName returns the name of this catalog provider
func (p *TCGdexProviderAdapter) GetProviderName() string {
	return "tcgdex"
}

func (p *TCGdexProviderAdapter) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewExternalAPIError("failed to build TCGdex request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.NewExternalAPIError("failed to call TCGdex", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && p.logger != nil {
			p.logger.Warn("Failed to close TCGdex response body", ports.F("error", closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return errors.NewNotFoundError("catalog resource not found")
		}
		return errors.NewExternalAPIError(fmt.Sprintf("TCGdex returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewExternalAPIError("failed to decode TCGdex response", err)
	}
	return nil
}

func tcgdexBriefToCard(c tcgdexCardBrief) ports.CardData {
	card := ports.CardData{
		ID:     c.ID,
		Name:   c.Name,
		Number: c.LocalID,
	}
	// TCGdex hands out an image base; quality and extension are appended by the client.
	if c.Image != "" {
		card.ImageSmall = c.Image + "/low.png"
		card.ImageLarge = c.Image + "/high.png"
	}
	return card
}

func tcgdexLogoURL(logo string) string {
	if logo == "" {
		return ""
	}
	return logo + ".png"
}
