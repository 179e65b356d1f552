package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminkit/adminkit/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_USER", "admin")
	t.Setenv("DB_NAME", "adminkit")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "dev", cfg.Version)
	assert.Equal(t, "strict", cfg.ValidationMode)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "admin-db", cfg.DBOwnerKey)
	assert.Equal(t, "127.0.0.1", cfg.DBHost)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, "admin", cfg.DBUser)
	assert.Equal(t, "adminkit", cfg.DBName)
	assert.Equal(t, int32(0), cfg.DBPoolMin)
	assert.Equal(t, int32(10), cfg.DBPoolMax)
	assert.Equal(t, 30*time.Second, cfg.DBIdleTimeout)
	assert.Equal(t, 10*time.Second, cfg.DBConnTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_USER", "admin")
	t.Setenv("DB_NAME", "adminkit")
	t.Setenv("PORT", "8080")
	t.Setenv("VALIDATION_MODE", "lenient")
	t.Setenv("DB_POOL_MAX", "25")
	t.Setenv("DB_CONNECT_TIMEOUT", "3s")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "lenient", cfg.ValidationMode)
	assert.Equal(t, int32(25), cfg.DBPoolMax)
	assert.Equal(t, 3*time.Second, cfg.DBConnTimeout)
}

func TestLoad_MissingRequired(t *testing.T) {
	// t.Setenv registers the restore; the vars must be absent, not empty.
	for _, key := range []string{"DB_USER", "DB_NAME"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("DB_USER", "admin")
	t.Setenv("DB_NAME", "adminkit")
	t.Setenv("PORT", "not-a-number")

	_, err := config.Load()
	assert.Error(t, err)
}
