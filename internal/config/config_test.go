package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("DEBUG", "true")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, 20, cfg.DBMaxOpenConns)
	assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, 10, cfg.RecentPaymentsLimit)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("HTTP_WRITE_TIMEOUT", "45s")
	t.Setenv("RECENT_PAYMENTS_LIMIT", "25")
	t.Setenv("MIGRATE_ON_START", "false")

	cfg, err := FromViper(newViper())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 45*time.Second, cfg.HTTPWriteTimeout)
	assert.Equal(t, 25, cfg.RecentPaymentsLimit)
	assert.False(t, cfg.MigrateOnStart)
}

func TestFromViper_RequiresSecretOutsideDebug(t *testing.T) {
	t.Setenv("DEBUG", "false")
	t.Setenv("JWT_SECRET", "")

	_, err := FromViper(newViper())
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DUESLEDGER_TEST_KEY=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DUESLEDGER_TEST_KEY") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("DUESLEDGER_TEST_KEY"))

	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
