package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "data/jobs.db", cfg.DBPath)
	assert.Equal(t, 5, cfg.BatchSize)
	assert.True(t, cfg.SemanticDedup)
	assert.Equal(t, 2*time.Second, cfg.AIBackoffInitialInterval)
	assert.Equal(t, 60*time.Second, cfg.ProviderTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("BATCH_SIZE", "10")
	t.Setenv("SEMANTIC_DEDUP", "false")
	t.Setenv("DB_PATH", "/var/lib/jobhunter/jobs.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.False(t, cfg.IsDev())
	assert.Equal(t, 10, cfg.BatchSize)
	assert.False(t, cfg.SemanticDedup)
	assert.Equal(t, "/var/lib/jobhunter/jobs.db", cfg.DBPath)
}

func TestEnvHelpers(t *testing.T) {
	assert.True(t, Config{AppEnv: "DEV"}.IsDev())
	assert.True(t, Config{AppEnv: "Test"}.IsTest())
	assert.False(t, Config{AppEnv: "prod"}.IsDev())
}

func TestGetAIBackoffConfig(t *testing.T) {
	cfg := Config{
		AppEnv:                   "prod",
		AIBackoffInitialInterval: 2 * time.Second,
		AIBackoffMaxInterval:     30 * time.Second,
		AIBackoffMultiplier:      2.0,
	}
	initial, max, mult := cfg.GetAIBackoffConfig()
	assert.Equal(t, 2*time.Second, initial)
	assert.Equal(t, 30*time.Second, max)
	assert.Equal(t, 2.0, mult)

	cfg.AppEnv = "test"
	initial, max, _ = cfg.GetAIBackoffConfig()
	assert.Equal(t, 10*time.Millisecond, initial)
	assert.Equal(t, 100*time.Millisecond, max)
}
