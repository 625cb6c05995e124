package ports

import "context"

// CardData is the canonical card record every provider normalizes into
type CardData struct {
	ID         string
	Name       string
	Number     string
	Rarity     string
	Types      []string
	ImageSmall string
	ImageLarge string
	SetID      string
	SetName    string
}

// SetData is the canonical set record; Cards is only filled by GetSet
type SetData struct {
	ID          string
	Name        string
	Series      string
	Total       int
	ReleaseDate string
	LogoURL     string
	Cards       []CardData
}

// CardQuery narrows a card listing; zero values mean "any"
type CardQuery struct {
	Name     string
	Rarity   string
	Type     string
	SetID    string
	Page     int
	PageSize int
}

// CatalogProvider defines the contract for a single card-catalog service
type CatalogProvider interface {
	ListSets(ctx context.Context, lang string) ([]SetData, error)
	GetSet(ctx context.Context, lang, setID string) (*SetData, error)
	ListCards(ctx context.Context, lang string, query CardQuery) ([]CardData, error)
	SupportsLanguage(lang string) bool
	GetProviderName() string
}

// CatalogProviderManager fronts the configured providers with failover
type CatalogProviderManager interface {
	ListSets(ctx context.Context, lang string) ([]SetData, error)
	GetSet(ctx context.Context, lang, setID string) (*SetData, error)
	ListCards(ctx context.Context, lang string, query CardQuery) ([]CardData, error)
	GetProviderInfo() map[string]interface{}
}
