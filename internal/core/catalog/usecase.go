// Package catalog is the read-through boundary between the service and the card catalog providers.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"cardbinder.app/internal/core/cache"
	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"cardbinder.app/pkg/validation"
	"golang.org/x/sync/singleflight"
)

// Cache is the slice of the TTL cache the catalog reads through
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type UseCase struct {
	provider ports.CatalogProviderManager
	cache    Cache
	config   ports.ConfigProvider
	logger   ports.Logger
	group    singleflight.Group
	shuffle  func(n int, swap func(i, j int))
}

type UseCaseDependencies struct {
	Provider ports.CatalogProviderManager
	Cache    Cache
	Config   ports.ConfigProvider
	Logger   ports.Logger
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Provider == nil {
		return nil, errors.NewValidationError("catalog provider is required")
	}
	if deps.Cache == nil {
		return nil, errors.NewValidationError("cache is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		provider: deps.Provider,
		cache:    deps.Cache,
		config:   deps.Config,
		logger:   deps.Logger,
		shuffle:  rand.Shuffle,
	}, nil
}

// ListSets returns every set published in lang
func (uc *UseCase) ListSets(ctx context.Context, lang string) ([]Set, error) {
	lang, err := uc.language(lang)
	if err != nil {
		return nil, err
	}

	var sets []Set
	err = uc.readThrough(ctx, lang, "sets", nil, &sets, func(ctx context.Context) (interface{}, error) {
		data, err := uc.provider.ListSets(ctx, lang)
		if err != nil {
			return nil, err
		}
		sets := make([]Set, len(data))
		for i := range data {
			sets[i] = *setFromData(&data[i])
		}
		return sets, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list sets (%s): %w", lang, err)
	}
	return sets, nil
}

// GetSet returns one set together with its full card list
func (uc *UseCase) GetSet(ctx context.Context, lang, setID string) (*Set, error) {
	lang, err := uc.language(lang)
	if err != nil {
		return nil, err
	}
	if !validation.IsValidIdentifier(setID) {
		return nil, errors.NewValidationError("invalid set ID")
	}

	var set Set
	err = uc.readThrough(ctx, lang, "set/"+setID, nil, &set, func(ctx context.Context) (interface{}, error) {
		data, err := uc.provider.GetSet(ctx, lang, setID)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, errors.NewNotFoundError("set not found")
		}
		return setFromData(data), nil
	})
	if err != nil {
		return nil, fmt.Errorf("get set %s (%s): %w", setID, lang, err)
	}
	return &set, nil
}

// SearchCards lists cards matching params
func (uc *UseCase) SearchCards(ctx context.Context, lang string, params SearchParams) ([]Card, error) {
	lang, err := uc.language(lang)
	if err != nil {
		return nil, err
	}
	params = params.normalize()
	if err := params.Validate(); err != nil {
		return nil, errors.NewValidationError("invalid card search: " + err.Error())
	}

	cards, err := uc.searchCards(ctx, lang, params)
	if err != nil {
		return nil, fmt.Errorf("search cards (%s): %w", lang, err)
	}
	return cards, nil
}

// RandomCards draws count distinct cards from the full card listing of lang.
// Fewer are returned when the catalog holds fewer than count cards.
func (uc *UseCase) RandomCards(ctx context.Context, lang string, count int) ([]Card, error) {
	lang, err := uc.language(lang)
	if err != nil {
		return nil, err
	}
	limit := uc.config.GetCatalogConfig().MaxRandomCards
	if count < 1 {
		return nil, errors.NewValidationError("count must be at least 1")
	}
	if limit > 0 && count > limit {
		return nil, errors.NewValidationError(fmt.Sprintf("count must be between 1 and %d", limit))
	}

	all, err := uc.searchCards(ctx, lang, SearchParams{})
	if err != nil {
		return nil, fmt.Errorf("random cards (%s): %w", lang, err)
	}

	picked := make([]Card, len(all))
	copy(picked, all)
	uc.shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	if count < len(picked) {
		picked = picked[:count]
	}
	return picked, nil
}

func (uc *UseCase) searchCards(ctx context.Context, lang string, params SearchParams) ([]Card, error) {
	var cards []Card
	err := uc.readThrough(ctx, lang, "cards", params.cacheParams(), &cards, func(ctx context.Context) (interface{}, error) {
		data, err := uc.provider.ListCards(ctx, lang, params.toQuery())
		if err != nil {
			return nil, err
		}
		return cardsFromData(data), nil
	})
	return cards, err
}

func (uc *UseCase) language(lang string) (string, error) {
	lang = validation.NormalizeLanguage(lang)
	if lang == "" {
		lang = uc.config.GetCatalogConfig().DefaultLanguage
	}
	if !validation.IsSupportedLanguage(lang) {
		return "", errors.NewValidationError(fmt.Sprintf("unsupported language %q", lang))
	}
	return lang, nil
}

// readThrough serves key from the cache or runs fetch once per key across concurrent callers.
// Only successful results are stored.
func (uc *UseCase) readThrough(ctx context.Context, lang, namespace string, params map[string]string, out interface{}, fetch func(context.Context) (interface{}, error)) error {
	key := cache.GenerateKey(namespace, lang, params)

	if raw, ok := uc.cache.Get(ctx, key); ok {
		if err := json.Unmarshal(raw, out); err == nil {
			uc.logger.Debug("Catalog cache hit", ports.F("key", key))
			return nil
		}
		uc.logger.Warn("Discarding undecodable catalog cache entry", ports.F("key", key))
	}

	raw, err, shared := uc.group.Do(key, func() (interface{}, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, errors.NewCacheError("failed to encode catalog payload", err)
		}
		uc.cache.Set(ctx, key, encoded, uc.config.GetCatalogConfig().CacheTTL)
		return encoded, nil
	})
	if err != nil {
		uc.logger.Warn("Catalog fetch failed",
			ports.F("key", key),
			ports.F("error", err))
		return err
	}
	if shared {
		uc.logger.Debug("Catalog fetch coalesced", ports.F("key", key))
	}

	return json.Unmarshal(raw.([]byte), out)
}
