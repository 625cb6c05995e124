package external

import (
	"context"
	"time"

	"cardbinder.app/internal/ports"
)

// CatalogProviderLoggingDecorator decorates catalog providers with structured logging
type CatalogProviderLoggingDecorator struct {
	provider ports.CatalogProvider
	logger   ports.Logger
}

// NewCatalogProviderLoggingDecorator creates a new logging decorator for catalog providers
func NewCatalogProviderLoggingDecorator(provider ports.CatalogProvider, logger ports.Logger) ports.CatalogProvider {
	return &CatalogProviderLoggingDecorator{
		provider: provider,
		logger:   logger,
	}
}

func (d *CatalogProviderLoggingDecorator) ListSets(ctx context.Context, lang string) ([]ports.SetData, error) {
	start := d.started("list_sets", ports.F("language", lang))
	sets, err := d.provider.ListSets(ctx, lang)
	d.finished("list_sets", start, err, ports.F("language", lang), ports.F("sets", len(sets)))
	return sets, err
}

func (d *CatalogProviderLoggingDecorator) GetSet(ctx context.Context, lang, setID string) (*ports.SetData, error) {
	start := d.started("get_set", ports.F("language", lang), ports.F("set_id", setID))
	set, err := d.provider.GetSet(ctx, lang, setID)
	cards := 0
	if set != nil {
		cards = len(set.Cards)
	}
	d.finished("get_set", start, err, ports.F("language", lang), ports.F("set_id", setID), ports.F("cards", cards))
	return set, err
}

func (d *CatalogProviderLoggingDecorator) ListCards(ctx context.Context, lang string, query ports.CardQuery) ([]ports.CardData, error) {
	start := d.started("list_cards", ports.F("language", lang), ports.F("name", query.Name), ports.F("set_id", query.SetID))
	cards, err := d.provider.ListCards(ctx, lang, query)
	d.finished("list_cards", start, err, ports.F("language", lang), ports.F("cards", len(cards)))
	return cards, err
}

func (d *CatalogProviderLoggingDecorator) SupportsLanguage(lang string) bool {
	return d.provider.SupportsLanguage(lang)
}

// GetProviderName returns the wrapped provider name so metrics labels stay stable
func (d *CatalogProviderLoggingDecorator) GetProviderName() string {
	return d.provider.GetProviderName()
}

func (d *CatalogProviderLoggingDecorator) started(operation string, fields ...ports.Field) time.Time {
	d.logger.Info("Catalog API request started", append([]ports.Field{
		ports.F("provider", d.provider.GetProviderName()),
		ports.F("operation", operation),
		ports.F("event", "request"),
	}, fields...)...)
	return time.Now()
}

func (d *CatalogProviderLoggingDecorator) finished(operation string, start time.Time, err error, fields ...ports.Field) {
	base := []ports.Field{
		ports.F("provider", d.provider.GetProviderName()),
		ports.F("operation", operation),
		ports.F("duration_ms", time.Since(start).Milliseconds()),
	}

	if err != nil {
		d.logger.Error("Catalog API request failed", append(base,
			ports.F("event", "error"),
			ports.F("error", err.Error()))...)
		return
	}

	d.logger.Info("Catalog API request completed", append(append(base, ports.F("event", "response")), fields...)...)
}
