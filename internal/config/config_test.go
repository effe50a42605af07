package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_TTL_HOURS", "")
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("CHECKOUT_RATE_LIMIT", "-4")

	cfg := Load()
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 10, cfg.CheckoutRateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CART_TTL_HOURS", "6")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("APP_ENV", "development")

	cfg := Load()
	assert.Equal(t, "9090", cfg.AppPort)
	assert.Equal(t, 6*time.Hour, cfg.CartTTL)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Logging.Development)
}

func TestValidate(t *testing.T) {
	cfg := &Config{AppPort: "8080", SessionSecret: "s3cret", StorageDriver: StorageMemory}
	require.NoError(t, cfg.Validate())

	cfg.SessionSecret = ""
	cfg.StorageDriver = "redis"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
	assert.Contains(t, err.Error(), "STORAGE_DRIVER")
}
