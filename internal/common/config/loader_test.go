package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "intel-agent/internal/common/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "agent_config.json"))
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.ProviderName)
	assert.Empty(t, cfg.APIKeys)
	assert.Empty(t, cfg.SourceFile)
	assert.Equal(t, 10000, cfg.Sources.Timeout)
	assert.Equal(t, 800, cfg.Sources.PreviewChars)
	assert.Equal(t, 5, cfg.Sources.MaxEmails)
	assert.Equal(t, 3, cfg.Sources.MaxPhones)
	assert.False(t, cfg.Cache.Enabled())
	assert.True(t, cfg.Workers[GatherIntelligenceTask].Enabled)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "agent_config.json", `{
		"ai_provider": "OpenRouter",
		"api_keys": {"openrouter": "sk-test"},
		"sources": {"timeout": 2500, "max_concurrent_fetches": 2},
		"cache": {"redis": {"address": "localhost:6379"}, "ttl": 60}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "openrouter", cfg.ProviderName)
	assert.Equal(t, "sk-test", cfg.APIKey())
	assert.Equal(t, 2500, cfg.Sources.Timeout)
	assert.Equal(t, 2, cfg.Sources.MaxConcurrentFetches)
	assert.Equal(t, 800, cfg.Sources.PreviewChars, "unset keys keep defaults")
	assert.True(t, cfg.Cache.Enabled())
	assert.Equal(t, path, cfg.SourceFile)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "agent_config.yaml", `
ai_provider: mock
logging:
  level: debug
  format: json
workers:
  gather-intelligence:
    enabled: false
    max_jobs_active: 2
    timeout: 1000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Workers[GatherIntelligenceTask].Enabled)
	assert.Equal(t, 2, cfg.Workers[GatherIntelligenceTask].MaxJobsActive)
}

func TestLoad_MalformedFileIsConfigError(t *testing.T) {
	path := writeFile(t, "agent_config.json", `{"ai_provider": `)

	cfg, err := Load(path)
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid))
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("INTEL_AGENT_AI_PROVIDER", "genai")
	t.Setenv("INTEL_AGENT_SOURCES_TIMEOUT", "1500")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "genai", cfg.ProviderName)
	assert.Equal(t, 1500, cfg.Sources.Timeout)
}

func TestLoad_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis:6379")
	path := writeFile(t, "agent_config.yaml", "cache:\n  redis:\n    address: ${TEST_REDIS_ADDR}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Address)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "mock", cfg.ProviderName)
	assert.Equal(t, 4, cfg.Sources.MaxConcurrentFetches)
	assert.Equal(t, ":8080", cfg.Metrics.Address)
}
