// Package config loads the bot's configuration from defaults, an optional
// YAML file, and the process environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AppConfig holds all configuration for the bot.
type AppConfig struct {
	Discord struct {
		Token   string `koanf:"token"`
		GuildID string `koanf:"guild_id"`
	} `koanf:"discord"`

	API struct {
		URL string `koanf:"url"`
		Key string `koanf:"key"`
	} `koanf:"api"`

	Debug       bool   `koanf:"debug"`
	Environment string `koanf:"environment"`
}

// envKeys maps the environment variables the bot recognizes to their config
// paths. Variables outside this map are ignored.
var envKeys = map[string]string{
	"DISCORD_TOKEN":       "discord.token",
	"DISCORD_GUILD_ID":    "discord.guild_id",
	"DBOT_API_URL":        "api.url",
	"DBOT_AUTH_KEY":       "api.key",
	"DEBUG":               "debug",
	"LOGFIRE_ENVIRONMENT": "environment",
}

// Load reads configuration from defaults, an optional config file, and the
// environment (highest priority). It returns an error naming the first
// missing required variable.
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"api.url":     "http://localhost:8000/api/dbot",
		"debug":       false,
		"environment": "development",
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	// Optional configuration file, tried in order.
	configLocations := []string{
		"/etc/dbot/config.yaml",
		"/config/config.yaml",
		filepath.Join(".", "config.yaml"),
	}
	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err != nil {
			continue
		}
		slog.Info("loading configuration file", "path", loc)
		if err := k.Load(file.Provider(loc), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file %s: %w", loc, err)
		}
		break
	}

	// Environment variables override everything else. The callback maps
	// known variable names to config paths and drops the rest.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var cfg AppConfig
	decoderConfig := koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, decoderConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	slog.Debug("configuration loaded",
		"api_url", cfg.API.URL,
		"guild_id", cfg.Discord.GuildID,
		"token_present", cfg.Discord.Token != "",
		"api_key_present", cfg.API.Key != "",
		"debug", cfg.Debug,
		"environment", cfg.Environment)

	if cfg.Discord.Token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.API.Key == "" {
		return nil, fmt.Errorf("DBOT_AUTH_KEY is required")
	}
	if cfg.Discord.GuildID == "" {
		return nil, fmt.Errorf("DISCORD_GUILD_ID is required")
	}

	return &cfg, nil
}
