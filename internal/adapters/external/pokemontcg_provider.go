package external

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
)

const pokemonTCGMaxPageSize = 250

// PokemonTCGProviderAdapter implements CatalogProvider port for the Pokémon TCG API.
// The API only serves English card data.
type PokemonTCGProviderAdapter struct {
	apiKey  string
	baseURL string
	client  HTTPClient
	logger  ports.Logger
}

// PokemonTCGProviderParams holds parameters for creating Pokémon TCG provider
type PokemonTCGProviderParams struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Client  HTTPClient
	Logger  ports.Logger
}

type pokemonTCGImages struct {
	Small  string `json:"small"`
	Large  string `json:"large"`
	Symbol string `json:"symbol"`
	Logo   string `json:"logo"`
}

type pokemonTCGSet struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Series      string           `json:"series"`
	Total       int              `json:"total"`
	ReleaseDate string           `json:"releaseDate"`
	Images      pokemonTCGImages `json:"images"`
}

type pokemonTCGCard struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Number string           `json:"number"`
	Rarity string           `json:"rarity"`
	Types  []string         `json:"types"`
	Images pokemonTCGImages `json:"images"`
	Set    pokemonTCGSet    `json:"set"`
}

// NewPokemonTCGProviderAdapter creates a new Pokémon TCG provider adapter
func NewPokemonTCGProviderAdapter(params PokemonTCGProviderParams) ports.CatalogProvider {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = "https://api.pokemontcg.io/v2"
	}

	client := params.Client
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = defaultProviderTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &PokemonTCGProviderAdapter{
		apiKey:  params.APIKey,
		baseURL: baseURL,
		client:  client,
		logger:  params.Logger,
	}
}

func (p *PokemonTCGProviderAdapter) ListSets(ctx context.Context, lang string) ([]ports.SetData, error) {
	if err := p.checkLanguage(lang); err != nil {
		return nil, err
	}

	var payload struct {
		Data []pokemonTCGSet `json:"data"`
	}
	if err := p.get(ctx, p.baseURL+"/sets?orderBy=releaseDate", &payload); err != nil {
		return nil, err
	}

	sets := make([]ports.SetData, 0, len(payload.Data))
	for _, s := range payload.Data {
		sets = append(sets, pokemonTCGToSet(s))
	}
	return sets, nil
}

// GetSet fetches the set record and then every card in it
func (p *PokemonTCGProviderAdapter) GetSet(ctx context.Context, lang, setID string) (*ports.SetData, error) {
	if err := p.checkLanguage(lang); err != nil {
		return nil, err
	}
	if setID == "" {
		return nil, errors.NewValidationError("set id cannot be empty")
	}

	var payload struct {
		Data pokemonTCGSet `json:"data"`
	}
	if err := p.get(ctx, fmt.Sprintf("%s/sets/%s", p.baseURL, url.PathEscape(setID)), &payload); err != nil {
		return nil, err
	}

	set := pokemonTCGToSet(payload.Data)
	cards, err := p.ListCards(ctx, lang, ports.CardQuery{SetID: setID, PageSize: pokemonTCGMaxPageSize})
	if err != nil {
		return nil, err
	}
	set.Cards = cards
	return &set, nil
}

func (p *PokemonTCGProviderAdapter) ListCards(ctx context.Context, lang string, query ports.CardQuery) ([]ports.CardData, error) {
	if err := p.checkLanguage(lang); err != nil {
		return nil, err
	}

	var clauses []string
	if query.Name != "" {
		clauses = append(clauses, fmt.Sprintf("name:%q", query.Name))
	}
	if query.Rarity != "" {
		clauses = append(clauses, fmt.Sprintf("rarity:%q", query.Rarity))
	}
	if query.Type != "" {
		clauses = append(clauses, "types:"+query.Type)
	}
	if query.SetID != "" {
		clauses = append(clauses, "set.id:"+query.SetID)
	}

	values := url.Values{}
	if len(clauses) > 0 {
		values.Set("q", strings.Join(clauses, " "))
	}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.PageSize > 0 {
		pageSize := query.PageSize
		if pageSize > pokemonTCGMaxPageSize {
			pageSize = pokemonTCGMaxPageSize
		}
		values.Set("pageSize", strconv.Itoa(pageSize))
	}

	endpoint := p.baseURL + "/cards"
	if encoded := values.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var payload struct {
		Data []pokemonTCGCard `json:"data"`
	}
	if err := p.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	cards := make([]ports.CardData, 0, len(payload.Data))
	for _, c := range payload.Data {
		cards = append(cards, ports.CardData{
			ID:         c.ID,
			Name:       c.Name,
			Number:     c.Number,
			Rarity:     c.Rarity,
			Types:      c.Types,
			ImageSmall: c.Images.Small,
			ImageLarge: c.Images.Large,
			SetID:      c.Set.ID,
			SetName:    c.Set.Name,
		})
	}
	return cards, nil
}

func (p *PokemonTCGProviderAdapter) SupportsLanguage(lang string) bool {
	return lang == "en"
}

// GetProviderName returns the name of this catalog provider
func (p *PokemonTCGProviderAdapter) GetProviderName() string {
	return "pokemontcg"
}

func (p *PokemonTCGProviderAdapter) checkLanguage(lang string) error {
	if !p.SupportsLanguage(lang) {
		return errors.NewValidationError(fmt.Sprintf("pokemontcg does not serve language %q", lang))
	}
	return nil
}

func (p *PokemonTCGProviderAdapter) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return errors.NewExternalAPIError("failed to build Pokémon TCG request", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-Api-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.NewExternalAPIError("failed to call Pokémon TCG API", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && p.logger != nil {
			p.logger.Warn("Failed to close Pokémon TCG response body", ports.F("error", closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return errors.NewNotFoundError("catalog resource not found")
		}
		return errors.NewExternalAPIError(fmt.Sprintf("Pokémon TCG API returned status %d", resp.StatusCode), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewExternalAPIError("failed to decode Pokémon TCG response", err)
	}
	return nil
}

func pokemonTCGToSet(s pokemonTCGSet) ports.SetData {
	return ports.SetData{
		ID:          s.ID,
		Name:        s.Name,
		Series:      s.Series,
		Total:       s.Total,
		ReleaseDate: s.ReleaseDate,
		LogoURL:     s.Images.Logo,
	}
}
