package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "data/labels.csv", cfg.Data.Labels)
	assert.Equal(t, "user_data/user_data.json", cfg.Data.UserData)
	assert.Equal(t, "https://api.twitter.com/2", cfg.Twitter.BaseURL)
	assert.Equal(t, 100, cfg.Collect.BatchSize)
	assert.Equal(t, 15*time.Minute, cfg.Collect.Cooldown)
	assert.Equal(t, "citegraph.db", cfg.Collect.CheckpointDB)
	assert.Equal(t, "probabilistic", cfg.Network.Metric)
	assert.InDelta(t, 1.0, cfg.Network.Alpha, 0.001)
	assert.Equal(t, 5, cfg.Network.MinDegree)
	assert.False(t, cfg.Network.Scaling)
}

func TestLoadFromFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  database: nela-gt-2020.db
twitter:
  bearer_token: secret
network:
  metric: jaccard
  scaling: true
  alpha: 0.5
  exclude_authors: [realDonaldTrump]
collect:
  cooldown: 2m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "citegraph.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nela-gt-2020.db", cfg.Data.Database)
	assert.Equal(t, "secret", cfg.Twitter.BearerToken)
	assert.Equal(t, "jaccard", cfg.Network.Metric)
	assert.True(t, cfg.Network.Scaling)
	assert.InDelta(t, 0.5, cfg.Network.Alpha, 0.001)
	assert.Equal(t, []string{"realDonaldTrump"}, cfg.Network.ExcludeAuthors)
	assert.Equal(t, 2*time.Minute, cfg.Collect.Cooldown)
	// Untouched keys keep defaults.
	assert.Equal(t, 100, cfg.Collect.BatchSize)
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CITEGRAPH_TWITTER_BEARER_TOKEN", "env-token")
	t.Setenv("CITEGRAPH_NETWORK_METRIC", "cosine")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Twitter.BearerToken)
	assert.Equal(t, "cosine", cfg.Network.Metric)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	err := InitLogger(LogConfig{Level: "not-a-level"})
	require.Error(t, err)
}
