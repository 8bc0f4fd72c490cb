package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "token")
	t.Setenv("OWNER_IDS", " 1, 2 ,,3")

	cfg, err := LoadConfig(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "secrets", cfg.DataDir)
	assert.Equal(t, "!", cfg.DiscordConfig.CommandPrefix)
	assert.Equal(t, []string{"1", "2", "3"}, cfg.DiscordConfig.OwnerIDs)
	assert.True(t, cfg.DiscordConfig.IsOwner("2"))
	assert.False(t, cfg.DiscordConfig.IsOwner("4"))
	assert.Equal(t, time.Second, cfg.ReconcileConfig.Interval)
	assert.Equal(t, 1440, cfg.ReconcileConfig.AutoArchiveDuration)
	assert.Equal(t, 30*time.Second, cfg.SessionConfig.ConfirmTimeout)
	assert.Equal(t, 20*time.Second, cfg.SessionConfig.ButtonConfirmTimeout)
	assert.Equal(t, time.Second, cfg.CourseLookupConfig.Delay)
	assert.Equal(t, 3, cfg.CourseLookupConfig.Retries)
	assert.Equal(t, 4, cfg.EventWorkers)
}

func TestLoadConfig_MissingToken(t *testing.T) {
	t.Setenv("DISCORD_BOT_TOKEN", "")

	_, err := LoadConfig(missingEnvFile(t))
	assert.EqualError(t, err, "DISCORD_BOT_TOKEN is not set")
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "Bad interval", key: "RECONCILE_INTERVAL", value: "soon"},
		{name: "Zero interval", key: "RECONCILE_INTERVAL", value: "0s"},
		{name: "Bad archive duration", key: "AUTO_ARCHIVE_DURATION", value: "a day"},
		{name: "Zero workers", key: "EVENT_WORKERS", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_BOT_TOKEN", "token")
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig(missingEnvFile(t))
			assert.Error(t, err)
		})
	}
}
