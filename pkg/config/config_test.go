package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, 60, c.Predictor.Lookback)
	assert.Equal(t, 3, c.Predictor.ConfirmCount)
	assert.Equal(t, 0.30, c.Predictor.MinMovePct)
	assert.Equal(t, 90.0, c.Predictor.ConfidenceLimit)
	assert.Equal(t, time.Hour, c.Data.CacheTTL)
	assert.Equal(t, "", c.Data.DefaultSuffix)
	assert.Equal(t, []string{".NS", ".BO"}, c.Data.KnownSuffixes)
	assert.Equal(t, "memory", c.Cache.Backend)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, c.Server.Port)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: test
data:
  cache_ttl: 5m
  default_suffix: .NS
predictor:
  lookback: 30
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Environment)
	assert.Equal(t, 5*time.Minute, c.Data.CacheTTL)
	assert.Equal(t, ".NS", c.Data.DefaultSuffix)
	assert.Equal(t, 30, c.Predictor.Lookback)
	assert.Equal(t, 3, c.Predictor.ConfirmCount)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  source: bloomberg\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DATA_SOURCE":    "mock",
		"DEFAULT_SUFFIX": "none",
		"KAFKA_BROKERS":  "a:9092, b:9092",
		"PREDICTOR_URL":  "http://model:8001",
		"PORT":           "9090",
		"RATE_LIMIT_RPS": "not-a-number",
	}
	c := Default()
	c.Data.DefaultSuffix = ".NS"
	c.applyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "mock", c.Data.Source)
	assert.Equal(t, "", c.Data.DefaultSuffix)
	assert.True(t, c.Kafka.Enabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "http", c.Predictor.Kind)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 5.0, c.Server.RateLimit.RPS)
	require.NoError(t, c.Validate())
}

func TestValidateHTTPPredictorNeedsURL(t *testing.T) {
	c := Default()
	c.Predictor.Kind = "http"
	assert.Error(t, c.Validate())
}
