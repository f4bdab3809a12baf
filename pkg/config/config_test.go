package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.01, cfg.Builder.FalsePositiveRate)
	assert.Equal(t, uint32(8), cfg.Builder.CounterWidth)
	assert.Equal(t, 10, cfg.Search.DefaultLimit)
	assert.Contains(t, cfg.Postgres.DSN(), "dbname=staticsearch")
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9999
builder:
  falsePositiveRate: 0.05
  counterWidth: 4
  minimizeWidths: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 0.05, cfg.Builder.FalsePositiveRate)
	assert.Equal(t, uint32(4), cfg.Builder.CounterWidth)
	assert.True(t, cfg.Builder.MinimizeWidths)
	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SWS_POSTGRES_HOST", "db.internal")
	t.Setenv("SWS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SWS_BUILDER_COUNTER_WIDTH", "16")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, uint32(16), cfg.Builder.CounterWidth)
}

func TestLoadRejectsInvalidBuilderSettings(t *testing.T) {
	t.Setenv("SWS_BUILDER_FP_RATE", "1.5")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("SWS_BUILDER_FP_RATE", "0.01")
	t.Setenv("SWS_BUILDER_COUNTER_WIDTH", "33")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does/not/exist.yaml")
	assert.Error(t, err)
}
