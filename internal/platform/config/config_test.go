package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Not parallel: these tests modify environment variables.

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(FileEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "deriv", cfg.Candles.Source)
	assert.Equal(t, 200, cfg.Candles.Count)
	assert.Equal(t, 15*time.Second, cfg.Candles.Timeout)
	assert.Equal(t, "1089", cfg.Deriv.AppID)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "analyst", cfg.Prompt.Strategy)
	assert.Equal(t, 100, cfg.Prompt.Window)
	assert.InDelta(t, 1.5, cfg.Prompt.MinRewardRisk, 1e-9)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("CANDLES_SOURCE", "binance")
	t.Setenv("CANDLES_TIMEOUT", "5s")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("PROMPT_WINDOW", "150")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "binance", cfg.Candles.Source)
	assert.Equal(t, 5*time.Second, cfg.Candles.Timeout)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 150, cfg.Prompt.Window)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr())
}

func TestLoad_EnvAliases(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("TWELVE_DATA_API_KEY", "td-key")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gem-key", cfg.LLM.APIKey)
	assert.Equal(t, "td-key", cfg.TwelveData.APIKey)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
candles:
  source: twelvedata
  count: 300
llm:
  provider: openai
  base_url: http://localhost:11434/v1
prompt:
  strategy: swing
`), 0o600))
	t.Setenv(FileEnv, path)
	// env still wins over the file
	t.Setenv("CANDLES_COUNT", "250")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "twelvedata", cfg.Candles.Source)
	assert.Equal(t, 250, cfg.Candles.Count)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "swing", cfg.Prompt.Strategy)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file failed")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"unknown source", "CANDLES_SOURCE", "yahoo", "candles.source"},
		{"unknown provider", "LLM_PROVIDER", "claude", "llm.provider"},
		{"unknown driver", "DB_DRIVER", "mysql", "db.driver"},
		{"zero count", "CANDLES_COUNT", "0", "candles.count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(FileEnv, "")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
