package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  port: 9090
  read_timeout: 10s
  write_timeout: 60s
  metrics_port: 9091

backends:
  openai:
    dialect: openai
    api_key: ${TEST_API_KEY}
    base_url: https://api.openai.com/v1
    models:
      - gpt-4o
      - gpt-4o-mini
    cost_per_million_tokens: 5.0

router:
  strategy: cost_optimized
  fallback: sequential
  circuit_breaker_threshold: 5
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("TEST_API_KEY", "my-secret-key")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 9091, cfg.Server.MetricsPort)

	openai, ok := cfg.Backends["openai"]
	assert.True(t, ok, "openai backend should exist")
	assert.Equal(t, "my-secret-key", openai.APIKey)
	assert.Equal(t, []string{"gpt-4o", "gpt-4o-mini"}, openai.Models)
	assert.Equal(t, 5.0, openai.CostPerMillionTokens)

	assert.Equal(t, "cost_optimized", cfg.Router.Strategy)
	assert.Equal(t, 5, cfg.Router.CircuitBreakerThreshold)
}

func TestLoadEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  port: 8080
  read_timeout: 30s
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	t.Setenv("MEDIATOR_SERVER_PORT", "3000")

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
}
