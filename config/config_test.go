package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/mlsbridge_test")
	t.Setenv("DB_SCHEMA", "mlsbridge_test")
	t.Setenv("USE_STRICT_CONFIG", "false")
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing DB_URL fails", func(t *testing.T) {
		t.Setenv("DB_URL", "")
		t.Setenv("DB_SCHEMA", "mlsbridge_test")

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DB_URL")
	})

	t.Run("defaults apply when optional vars are unset", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "*", cfg.CORSAllowedOrigins)
		assert.Equal(t, 2*time.Second, cfg.SyncStepDelay)
		assert.Equal(t, time.Duration(0), cfg.SyncInterval)
		assert.Equal(t, 100, cfg.ListingsPageSize)
	})

	t.Run("provider credentials resolve through alias names", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("MLS_BASE_URL", "https://api.example.com")
		t.Setenv("RESO_CLIENT_ID", "cid-from-alias")
		t.Setenv("MLS_CLIENT_SECRET", "secret-from-alias")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "https://api.example.com", cfg.RealtynaConfig.BaseURL)
		assert.Equal(t, "cid-from-alias", cfg.RealtynaConfig.ClientID)
		assert.Equal(t, "secret-from-alias", cfg.RealtynaConfig.ClientSecret)
		assert.True(t, cfg.RealtynaConfig.IsConfigured())
	})

	t.Run("canonical names win over aliases", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("REALTYNA_CLIENT_ID", "canonical")
		t.Setenv("MLS_CLIENT_ID", "alias")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "canonical", cfg.RealtynaConfig.ClientID)
	})

	t.Run("strict config rejects a partial provider setup", func(t *testing.T) {
		t.Setenv("DB_URL", "postgres://localhost/mlsbridge_test")
		t.Setenv("DB_SCHEMA", "mlsbridge_test")
		t.Setenv("USE_STRICT_CONFIG", "true")
		t.Setenv("REALTYNA_BASE_URL", "https://api.example.com")
		t.Setenv("REALTYNA_CLIENT_ID", "")
		t.Setenv("REALTYNA_CLIENT_SECRET", "")

		_, err := LoadConfig()
		require.Error(t, err)
	})

	t.Run("sync tuning parses durations and sizes", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SYNC_STEP_DELAY", "500ms")
		t.Setenv("SYNC_INTERVAL", "15m")
		t.Setenv("LISTINGS_PAGE_SIZE", "250")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, 500*time.Millisecond, cfg.SyncStepDelay)
		assert.Equal(t, 15*time.Minute, cfg.SyncInterval)
		assert.Equal(t, 250, cfg.ListingsPageSize)
	})

	t.Run("invalid duration falls back to the default", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SYNC_STEP_DELAY", "soon")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.SyncStepDelay)
	})

	t.Run("county filter splits and trims", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LISTING_FILTER_COUNTIES", " Leelanau , Benzie ,")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, []string{"Leelanau", "Benzie"}, cfg.ListingFilter.Counties)
	})
}
