package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	assert.Equal(t, []string{"frankfurter", "exchangerate-api", "currencyapi"}, cfg.RateProviders)
	assert.Equal(t, 80, cfg.FuzzyThreshold)
	assert.Equal(t, 100, cfg.XIRRMaxIterations)
	assert.InDelta(t, 1e-7, cfg.XIRRTolerance, 1e-12)
	assert.Empty(t, cfg.ExchangeRateAPIKey)
	assert.Equal(t, 10*time.Minute, cfg.RateMissTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("RATE_PROVIDERS", "currencyapi,frankfurter")
	t.Setenv("CURRENCYAPI_KEY", "key")
	t.Setenv("IMPORT_MAX_BATCH", "500")
	t.Setenv("AUTO_MIGRATE", "true")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	assert.Equal(t, []string{"currencyapi", "frankfurter"}, cfg.RateProviders)
	assert.Equal(t, "key", cfg.CurrencyAPIKey)
	assert.Equal(t, 500, cfg.ImportMaxBatch)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadTransactionTypes(t *testing.T) {
	table, err := config.LoadTransactionTypes("")
	require.NoError(t, err)
	assert.Equal(t, len(domain.DefaultTransactionTypes()), table.Len())

	dir := t.TempDir()

	good := filepath.Join(dir, "types.json")
	require.NoError(t, os.WriteFile(good, []byte(`[
		{"type":"Call","category":"capital_call","rule":"always_negative"},
		{"type":"קריאת הון","category":"capital_call","rule":"always_negative"}
	]`), 0o600))

	table, err = config.LoadTransactionTypes(good)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	rule, ok := table.Lookup("  call ")
	require.True(t, ok)
	assert.Equal(t, domain.RuleAlwaysNegative, rule.Rule)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"type":"Call","rule":"upside_down"}]`), 0o600))

	_, err = config.LoadTransactionTypes(bad)
	assert.ErrorIs(t, err, domain.ErrUnknownDirectionality)

	_, err = config.LoadTransactionTypes(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
