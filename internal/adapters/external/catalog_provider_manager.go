package external

import (
	"context"
	"fmt"
	"time"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"golang.org/x/time/rate"
)

// CatalogProviderManagerAdapter implements Chain of Responsibility pattern for catalog providers.
// Providers that do not serve the requested language are skipped; every outbound call waits
// on a shared rate limiter.
type CatalogProviderManagerAdapter struct {
	providers []ports.CatalogProvider
	limiter   *rate.Limiter
	rps       int
	metrics   ports.CatalogMetrics
	logger    ports.Logger
}

// ProviderManagerConfig holds configuration for creating the provider manager
type ProviderManagerConfig struct {
	TCGdexBaseURL     string
	PokemonTCGBaseURL string
	PokemonTCGAPIKey  string
	ProviderOrder     []string
	RequestsPerSecond int
	Timeout           time.Duration
	EnableLogging     bool
	Metrics           ports.CatalogMetrics
	Logger            ports.Logger
}

// NewCatalogProviderManagerAdapter builds the configured providers in order
func NewCatalogProviderManagerAdapter(config ProviderManagerConfig) ports.CatalogProviderManager {
	available := map[string]ports.CatalogProvider{}

	if config.TCGdexBaseURL != "" {
		available["tcgdex"] = NewTCGdexProviderAdapter(TCGdexProviderParams{
			BaseURL: config.TCGdexBaseURL,
			Timeout: config.Timeout,
			Logger:  config.Logger,
		})
	}
	if config.PokemonTCGBaseURL != "" {
		available["pokemontcg"] = NewPokemonTCGProviderAdapter(PokemonTCGProviderParams{
			APIKey:  config.PokemonTCGAPIKey,
			BaseURL: config.PokemonTCGBaseURL,
			Timeout: config.Timeout,
			Logger:  config.Logger,
		})
	}

	var providers []ports.CatalogProvider
	for _, name := range config.ProviderOrder {
		provider, exists := available[name]
		if !exists {
			continue
		}
		if config.EnableLogging && config.Logger != nil {
			provider = NewCatalogProviderLoggingDecorator(provider, config.Logger)
		}
		providers = append(providers, provider)
		if config.Logger != nil {
			config.Logger.Debug("Created catalog provider", ports.F("provider", name))
		}
	}

	return NewCatalogProviderChain(providers, config.RequestsPerSecond, config.Metrics, config.Logger)
}

// NewCatalogProviderChain wires an explicit provider list; requestsPerSecond <= 0 disables limiting
func NewCatalogProviderChain(providers []ports.CatalogProvider, requestsPerSecond int, metrics ports.CatalogMetrics, logger ports.Logger) *CatalogProviderManagerAdapter {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}

	return &CatalogProviderManagerAdapter{
		providers: providers,
		limiter:   limiter,
		rps:       requestsPerSecond,
		metrics:   metrics,
		logger:    logger,
	}
}

func (m *CatalogProviderManagerAdapter) ListSets(ctx context.Context, lang string) ([]ports.SetData, error) {
	var sets []ports.SetData
	err := m.try(ctx, "list_sets", lang, func(p ports.CatalogProvider) error {
		var err error
		sets, err = p.ListSets(ctx, lang)
		return err
	})
	return sets, err
}

func (m *CatalogProviderManagerAdapter) GetSet(ctx context.Context, lang, setID string) (*ports.SetData, error) {
	var set *ports.SetData
	err := m.try(ctx, "get_set", lang, func(p ports.CatalogProvider) error {
		var err error
		set, err = p.GetSet(ctx, lang, setID)
		return err
	})
	return set, err
}

func (m *CatalogProviderManagerAdapter) ListCards(ctx context.Context, lang string, query ports.CardQuery) ([]ports.CardData, error) {
	var cards []ports.CardData
	err := m.try(ctx, "list_cards", lang, func(p ports.CatalogProvider) error {
		var err error
		cards, err = p.ListCards(ctx, lang, query)
		return err
	})
	return cards, err
}

// try walks the chain until one provider succeeds. When every provider fails the
// last error is returned wrapped, so its type survives for the caller.
func (m *CatalogProviderManagerAdapter) try(ctx context.Context, operation, lang string, call func(ports.CatalogProvider) error) error {
	if len(m.providers) == 0 {
		return errors.NewExternalAPIError("no catalog providers configured", nil)
	}

	var lastErr error
	tried := 0

	for _, provider := range m.providers {
		providerName := provider.GetProviderName()
		if !provider.SupportsLanguage(lang) {
			continue
		}

		if err := m.limiter.Wait(ctx); err != nil {
			return errors.NewExternalAPIError("catalog rate limit wait aborted", err)
		}

		tried++
		m.debug("Trying catalog provider",
			ports.F("provider", providerName),
			ports.F("operation", operation),
			ports.F("attempt", tried),
			ports.F("language", lang))

		start := time.Now()
		err := call(provider)
		m.recordFetch(providerName, operation, err == nil, time.Since(start))
		if err == nil {
			return nil
		}

		lastErr = err
		if m.logger != nil {
			m.logger.Warn("Catalog provider failed, trying next",
				ports.F("provider", providerName),
				ports.F("operation", operation),
				ports.F("error", err.Error()))
		}
	}

	if tried == 0 {
		return errors.NewValidationError(fmt.Sprintf("no catalog provider serves language %q", lang))
	}

	if m.logger != nil {
		m.logger.Error("All catalog providers failed",
			ports.F("operation", operation),
			ports.F("language", lang),
			ports.F("providers_tried", tried),
			ports.F("last_error", lastErr.Error()))
	}

	return fmt.Errorf("all catalog providers failed (tried %d providers): %w", tried, lastErr)
}

// GetProviderInfo returns information about configured providers
func (m *CatalogProviderManagerAdapter) GetProviderInfo() map[string]interface{} {
	providerNames := make([]string, len(m.providers))
	for i, provider := range m.providers {
		providerNames[i] = provider.GetProviderName()
	}

	return map[string]interface{}{
		"total_providers":  len(m.providers),
		"provider_order":   providerNames,
		"chain_enabled":    true,
		"fallback_enabled": len(m.providers) > 1,
		"requests_per_sec": m.rps,
	}
}

func (m *CatalogProviderManagerAdapter) recordFetch(provider, operation string, success bool, d time.Duration) {
	if m.metrics != nil {
		m.metrics.RecordFetch(provider, operation, success, d)
	}
}

func (m *CatalogProviderManagerAdapter) debug(msg string, fields ...ports.Field) {
	if m.logger != nil {
		m.logger.Debug(msg, fields...)
	}
}
