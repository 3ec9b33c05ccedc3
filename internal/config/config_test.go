// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SERVER_PORT", "LOG_LEVEL", "STORAGE_BACKEND", "LOCAL_DB_PATH",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CATALOG_CACHE_TTL",
		"CATALOG_SEED_FILE", "STARTING_BALANCE", "POINTS_PER_UNIT",
	} {
		t.Setenv(key, "")
	}
	// Keep a stray .env in the package directory from leaking into the test.
	t.Chdir(t.TempDir())
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, "storefront.db", cfg.LocalDBPath)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "gamestore", cfg.DB.DBName)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.CatalogTTL)
	assert.True(t, decimal.NewFromInt(999999).Equal(cfg.Store.StartingBalance))
	assert.Equal(t, int64(1), cfg.Store.PointsPerUnit)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_BACKEND", "LOCAL")
	t.Setenv("LOCAL_DB_PATH", "/tmp/shop.db")
	t.Setenv("STARTING_BALANCE", "100.50")
	t.Setenv("POINTS_PER_UNIT", "2")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CATALOG_CACHE_TTL", "30s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, "/tmp/shop.db", cfg.LocalDBPath)
	assert.Equal(t, "100.5", cfg.Store.StartingBalance.String())
	assert.Equal(t, int64(2), cfg.Store.PointsPerUnit)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.CatalogTTL)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"UnknownBackend", "STORAGE_BACKEND", "mongo"},
		{"BadPort", "DB_PORT", "abc"},
		{"BadTTL", "CATALOG_CACHE_TTL", "soon"},
		{"NegativeBalance", "STARTING_BALANCE", "-1"},
		{"BadBalance", "STARTING_BALANCE", "lots"},
		{"NegativePoints", "POINTS_PER_UNIT", "-2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := LoadConfig()
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
