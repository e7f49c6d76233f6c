package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/NeuralTrust/TextModerator/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	require.NoError(t, config.Load(t.TempDir()))
	cfg := config.GetConfig()

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 20, cfg.RateLimit.Requests)
	assert.Equal(t, time.Hour, cfg.RateLimit.Window)
	assert.Equal(t, "memory", cfg.RateLimit.Backend)
	assert.Equal(t, 30*time.Second, cfg.Moderation.StrategyTimeout)
	assert.Equal(t, []string{"primary", "huggingface", "openai", "local"}, cfg.Moderation.Order)
	assert.Equal(t, "fetch_toxicity_level", cfg.Primary.APIName)
	assert.False(t, cfg.Moderation.Strict)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
rate_limit:
  requests: 5
  window: 10m
moderation:
  strict: true
  order: [primary]
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0600))

	t.Setenv("PORT", "9001")
	t.Setenv("HUGGINGFACE_TOKEN", "hf_test")

	require.NoError(t, config.Load(dir))
	cfg := config.GetConfig()

	assert.Equal(t, 5, cfg.RateLimit.Requests)
	assert.Equal(t, 10*time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.Moderation.Strict)
	assert.Equal(t, []string{"primary"}, cfg.Moderation.Order)
	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "hf_test", cfg.HuggingFace.Token)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [unclosed"), 0600))

	err := config.Load(dir)
	assert.Error(t, err)
}

func TestLoad_ListFromEnvironment(t *testing.T) {
	t.Setenv("MODERATION_ORDER", "openai,primary")
	t.Setenv("MODERATION_STRATEGY_TIMEOUT", "5s")

	require.NoError(t, config.Load(t.TempDir()))
	cfg := config.GetConfig()

	assert.Equal(t, []string{"openai", "primary"}, cfg.Moderation.Order)
	assert.Equal(t, 5*time.Second, cfg.Moderation.StrategyTimeout)
}
