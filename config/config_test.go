package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videoprompt/core/llm"
)

const sampleTOML = `
[gemini]
api_key = "file-key"
model = "gemini-2.5-flash"

[video]
max_bytes = 20971520

[bot]
name = "Scribe"
spool_dir = "/var/spool/videoprompt"

[matrix]
homeserver = "https://matrix.example.org"
user_id = "@scribe:example.org"
auto_join_invites = true

[discord]
enabled = true

[log]
level = "debug"
`

// clearEnv unsets the overrides for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GEMINI_MODEL", "MAX_VIDEO_BYTES", "LOG_LEVEL", "DISCORD_TOKEN"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(writeFile(t, dir, "config.toml", sampleTOML), filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, int64(20971520), cfg.Video.MaxBytes)
	assert.Equal(t, "Scribe", cfg.Bot.Name)
	assert.Equal(t, "/var/spool/videoprompt", cfg.Bot.SpoolDir)
	assert.Equal(t, "https://matrix.example.org", cfg.Matrix.Homeserver)
	assert.True(t, cfg.Matrix.AutoJoinInvites)
	assert.True(t, cfg.Discord.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	cfg, err := Load(filepath.Join(dir, "config.toml"), filepath.Join(dir, ".env"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Gemini.APIKey)
	assert.Equal(t, llm.DefaultModel, cfg.Gemini.Model)
	assert.Equal(t, "scribe", cfg.Bot.Name)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Zero(t, cfg.Video.MaxBytes)
}

func TestLoadDotenvAndEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.toml", sampleTOML)
	dotenv := writeFile(t, dir, ".env", "GEMINI_API_KEY=dotenv-key\nDISCORD_TOKEN=dotenv-token\n")

	t.Setenv("GEMINI_MODEL", "gemini-env")
	t.Setenv("MAX_VIDEO_BYTES", "1024")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(configPath, dotenv)
	require.NoError(t, err)
	t.Cleanup(func() {
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("DISCORD_TOKEN")
	})

	assert.Equal(t, "dotenv-key", cfg.Gemini.APIKey)
	assert.Equal(t, "dotenv-token", cfg.Discord.Token)
	assert.Equal(t, "gemini-env", cfg.Gemini.Model)
	assert.Equal(t, int64(1024), cfg.Video.MaxBytes)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestDotenvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	dotenv := writeFile(t, dir, ".env", "GEMINI_API_KEY=dotenv-key\n")
	t.Setenv("GEMINI_API_KEY", "process-key")

	cfg, err := Load(filepath.Join(dir, "none.toml"), dotenv)
	require.NoError(t, err)
	assert.Equal(t, "process-key", cfg.Gemini.APIKey)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(writeFile(t, dir, "config.toml", "[gemini\napi_key = 1"), filepath.Join(dir, ".env"))
	assert.ErrorContains(t, err, "failed to parse config")

	t.Setenv("MAX_VIDEO_BYTES", "lots")
	_, err = Load(filepath.Join(dir, "none.toml"), filepath.Join(dir, ".env"))
	assert.ErrorContains(t, err, "failed to read environment")
}
