package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_TOKEN", "test-token")
	t.Setenv("DBOT_AUTH_KEY", "test-key")
	t.Setenv("DISCORD_GUILD_ID", "123456789")
}

// unset removes a variable for the duration of the test. t.Setenv first so
// the original value is restored on cleanup.
func unset(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestLoadMissingRequired(t *testing.T) {
	for _, name := range []string{"DISCORD_TOKEN", "DBOT_AUTH_KEY", "DISCORD_GUILD_ID"} {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			unset(t, name)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), name)
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	unset(t, "DBOT_API_URL")
	unset(t, "DEBUG")
	unset(t, "LOGFIRE_ENVIRONMENT")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/dbot", cfg.API.URL)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.Debug)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DBOT_API_URL", "https://team.example.com/api/dbot")
	t.Setenv("DEBUG", "true")
	t.Setenv("LOGFIRE_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Discord.Token)
	assert.Equal(t, "test-key", cfg.API.Key)
	assert.Equal(t, "123456789", cfg.Discord.GuildID)
	assert.Equal(t, "https://team.example.com/api/dbot", cfg.API.URL)
	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.Debug)
}

func TestLoadDebugWeakTyping(t *testing.T) {
	setRequired(t)
	t.Setenv("DEBUG", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
}

func TestLoadIgnoresUnknownVariables(t *testing.T) {
	setRequired(t)
	t.Setenv("DISCORD_SOMETHING_ELSE", "value")

	_, err := Load()
	require.NoError(t, err)
}
