package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpatminer.yaml")
	yaml := `
store:
  path: mined.db
corpus:
  root: ./corpus
mining:
  workers: 3
  max_hops: 1
  passes:
    assignments: true
    unary: false
    literals: true
    duplicate_edges: false
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mined.db", cfg.Store.Path)
	assert.Equal(t, "./corpus", cfg.Corpus.Root)
	assert.Equal(t, "**/*.json", cfg.Corpus.Pattern, "unset keys keep their default")
	assert.Equal(t, 3, cfg.Mining.Workers)
	assert.Equal(t, 1, cfg.Mining.MaxHops)
	assert.Equal(t, 8, cfg.Mining.MaxFragmentNodes)
	assert.True(t, cfg.Mining.Passes.Assignments)
	assert.False(t, cfg.Mining.Passes.Unary)
	assert.False(t, cfg.Mining.Passes.DuplicateEdges)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Run("Environment overrides", func(t *testing.T) {
		t.Setenv("CPATMINER_DB", "env.db")
		t.Setenv("CPATMINER_WORKERS", "0")
		t.Setenv("CPATMINER_LOG_LEVEL", "warn")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "env.db", cfg.Store.Path)
		assert.Equal(t, 1, cfg.Mining.Workers, "worker count is at least one")
		assert.Equal(t, "warn", cfg.Log.Level)
	})

	t.Run("Bad worker count", func(t *testing.T) {
		t.Setenv("CPATMINER_WORKERS", "many")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mining: [oops"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
