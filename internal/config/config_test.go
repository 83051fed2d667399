package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan:
// - Default() returns a valid configuration (passes Validate)
// - Loader.Load() falls back to defaults when no config file exists
// - Loader.Load() merges a config file's values over the defaults
// - environment variables override both defaults and the config file

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	require.NotNil(t, cfg)
	assert.NoError(t, Validate(cfg))
	assert.Equal(t, "mock", cfg.Embedding.Provider)
	assert.Equal(t, 384, cfg.Embedding.Dimensions)
	assert.NotEmpty(t, cfg.Router.Models)
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, Default().Embedding.Provider, cfg.Embedding.Provider)
	assert.Equal(t, Default().Chunking.MaxLines, cfg.Chunking.MaxLines)
	assert.NotEmpty(t, cfg.Router.Models)
}

func TestLoad_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".prism"), 0o755))
	yaml := []byte("embedding:\n  provider: http\n  endpoint: http://localhost:9000/embed\n  dimensions: 512\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".prism", "config.yml"), yaml, 0o644))

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, "http", cfg.Embedding.Provider)
	assert.Equal(t, "http://localhost:9000/embed", cfg.Embedding.Endpoint)
	assert.Equal(t, 512, cfg.Embedding.Dimensions)
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".prism"), 0o755))
	yaml := []byte("embedding:\n  provider: http\n  endpoint: http://localhost:9000/embed\n  dimensions: 512\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".prism", "config.yml"), yaml, 0o644))

	t.Setenv("PRISM_EMBEDDING_DIMENSIONS", "768")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)
	assert.Equal(t, 768, cfg.Embedding.Dimensions)
}
