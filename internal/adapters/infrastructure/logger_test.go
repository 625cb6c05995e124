package infrastructure

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"cardbinder.app/internal/ports"
	"cardbinder.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLoggerAdapter_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLoggerAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.With(ports.F("component", "catalog")).Warn("Catalog fetch failed",
		ports.F("provider", "tcgdex"),
		ports.F("attempt", 2),
		ports.F("error", errors.NewExternalAPIError("tcgdex returned status 502", nil)))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "Catalog fetch failed", entry["msg"])
	assert.Equal(t, "catalog", entry["component"])
	assert.Equal(t, "tcgdex", entry["provider"])
	assert.Equal(t, float64(2), entry["attempt"])
	assert.Equal(t, "EXTERNAL_API_ERROR: tcgdex returned status 502", entry["error"])
}

func TestSlogLoggerAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLoggerAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	logger.Debug("Cache hit", ports.F("key", "en:sets"))
	assert.Empty(t, buf.String())

	logger.Error("Cache sweep failed")
	assert.Contains(t, buf.String(), "Cache sweep failed")
}

func TestSlogLoggerAdapter_ZeroValueUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(previous)

	(&SlogLoggerAdapter{}).Info("Application started", ports.F("port", 8080))

	assert.Contains(t, buf.String(), `"port":8080`)
}
