// Package config loads the TOML configuration and applies .env and
// environment overrides on top of it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"videoprompt/core"
	"videoprompt/core/llm"
	"videoprompt/log"
	"videoprompt/platforms/discord"
	"videoprompt/platforms/matrix"
)

type VideoConfig struct {
	// MaxBytes rejects larger uploads before they are read. Zero disables the check.
	MaxBytes int64 `toml:"max_bytes"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Gemini  llm.Config     `toml:"gemini"`
	Video   VideoConfig    `toml:"video"`
	Matrix  matrix.Config  `toml:"matrix"`
	Discord discord.Config `toml:"discord"`
	Bot     core.BotConfig `toml:"bot"`
	Log     LogConfig      `toml:"log"`
}

// env lists the variables that override the file. Unset ones leave the
// file value alone.
type env struct {
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string `envconfig:"GEMINI_MODEL"`
	MaxVideoBytes int64  `envconfig:"MAX_VIDEO_BYTES"`
	LogLevel      string `envconfig:"LOG_LEVEL"`
	DiscordToken  string `envconfig:"DISCORD_TOKEN"`
}

func defaults() *Config {
	return &Config{
		Gemini: llm.Config{Model: llm.DefaultModel},
		Bot:    core.BotConfig{Name: "scribe"},
		Log:    LogConfig{Level: log.LevelInfo},
	}
}

// Load reads path, then the .env files, then the environment. A missing
// TOML file or .env file is not an error.
func Load(path string, dotenvFiles ...string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debugf("config file %s not found, using environment only", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := loadDotenv(dotenvFiles...); err != nil {
		return nil, err
	}

	var e env
	if err := envconfig.Process("", &e); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	e.apply(cfg)

	return cfg, nil
}

// loadDotenv loads .env files without overriding variables already set.
func loadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func (e env) apply(cfg *Config) {
	if e.GeminiAPIKey != "" {
		cfg.Gemini.APIKey = e.GeminiAPIKey
	}
	if e.GeminiModel != "" {
		cfg.Gemini.Model = e.GeminiModel
	}
	if e.MaxVideoBytes != 0 {
		cfg.Video.MaxBytes = e.MaxVideoBytes
	}
	if e.LogLevel != "" {
		cfg.Log.Level = e.LogLevel
	}
	if e.DiscordToken != "" {
		cfg.Discord.Token = e.DiscordToken
	}
}
