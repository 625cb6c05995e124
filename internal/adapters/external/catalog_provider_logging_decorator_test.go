package external

import (
	"context"
	"testing"

	"cardbinder.app/internal/mocks"
	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogProviderLoggingDecorator_Success(t *testing.T) {
	provider := &stubProvider{
		name:      "tcgdex",
		languages: map[string]bool{"en": true},
		sets:      []ports.SetData{{ID: "base1"}, {ID: "jungle"}},
	}
	logger := mocks.NewLogger()

	decorated := NewCatalogProviderLoggingDecorator(provider, logger)

	sets, err := decorated.ListSets(context.Background(), "en")

	require.NoError(t, err)
	assert.Len(t, sets, 2)
	assert.Equal(t, "tcgdex", decorated.GetProviderName())
	assert.True(t, decorated.SupportsLanguage("en"))

	entries := logger.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Catalog API request started", entries[0].Message)
	assert.Equal(t, "Catalog API request completed", entries[1].Message)
	assert.Contains(t, entries[1].Fields, ports.F("sets", 2))
}

func TestCatalogProviderLoggingDecorator_Failure(t *testing.T) {
	provider := &stubProvider{
		name:      "tcgdex",
		languages: map[string]bool{"en": true},
		err:       errors.NewExternalAPIError("TCGdex returned status 500", nil),
	}
	logger := mocks.NewLogger()

	decorated := NewCatalogProviderLoggingDecorator(provider, logger)

	set, err := decorated.GetSet(context.Background(), "en", "base1")

	assert.Nil(t, set)
	assert.True(t, errors.IsExternalAPIError(err))
	assert.Equal(t, 1, logger.Count("INFO"))
	assert.Equal(t, 1, logger.Count("ERROR"))
}
