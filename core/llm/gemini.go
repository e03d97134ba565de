package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when the config leaves it empty.
const DefaultModel = "gemini-2.0-flash"

// ErrMissingAPIKey is returned by NewClient when no API key is configured.
var ErrMissingAPIKey = errors.New("gemini api key is not configured")

var keyRedactor = regexp.MustCompile(`(key=)[^&"\s]+`)

type Config struct {
	APIKey     string `toml:"api_key"`
	BaseURL    string `toml:"base_url"`
	APIVersion string `toml:"api_version"`
	Model      string `toml:"model"`
}

// ModelOrDefault returns the configured model id without a "models/" prefix.
func (c Config) ModelOrDefault() string {
	model := strings.TrimPrefix(c.Model, "models/")
	if model == "" {
		return DefaultModel
	}
	return model
}

// NewClient creates a genai client on the Gemini API backend.
func NewClient(ctx context.Context, cfg Config) (*genai.Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
			APIVersion: cfg.APIVersion,
		},
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return client, nil
}

// RedactKey removes key query parameters and the literal key from msg.
func RedactKey(msg, apiKey string) string {
	msg = keyRedactor.ReplaceAllString(msg, "$1[REDACTED]")
	if apiKey != "" {
		msg = strings.ReplaceAll(msg, apiKey, "[REDACTED]")
	}
	return msg
}
