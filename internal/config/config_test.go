package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.AutoApprove)
	assert.False(t, cfg.GrowMaxXP)
	assert.Equal(t, []string{"en", "vi"}, cfg.Locales)
	assert.Equal(t, "Asia/Ho_Chi_Minh", cfg.Timezone.String())
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MJ_DB", "/tmp/mj.db")
	t.Setenv("MJ_AUTO_APPROVE", "true")
	t.Setenv("MJ_GROW_MAX_XP", "1")
	t.Setenv("MJ_LOCALES", "en, ja ,vi")
	t.Setenv("MJ_TIMEZONE", "UTC")
	t.Setenv("MJ_CACHE_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/mj.db", cfg.DBPath)
	assert.True(t, cfg.AutoApprove)
	assert.True(t, cfg.GrowMaxXP)
	assert.Equal(t, []string{"en", "ja", "vi"}, cfg.Locales)
	assert.Equal(t, time.UTC, cfg.Timezone)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestLoadBadTimezone(t *testing.T) {
	t.Setenv("MJ_TIMEZONE", "Mars/Olympus_Mons")

	_, err := Load()
	require.Error(t, err)
}

func TestEnvHelpersIgnoreGarbage(t *testing.T) {
	t.Setenv("MJ_AUTO_APPROVE", "definitely")
	t.Setenv("MJ_CACHE_TTL", "soon")

	assert.False(t, getEnvAsBool("MJ_AUTO_APPROVE", false))
	assert.Equal(t, time.Minute, getEnvAsDuration("MJ_CACHE_TTL", time.Minute))
}
