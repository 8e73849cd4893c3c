package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "artifacts"))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.APIEndpoint)
	assert.Equal(t, "qwen/qwen3-32b", cfg.LLM.Model)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "@hourly", cfg.Upload.CleanupCron)
	assert.Equal(t, 24*time.Hour, cfg.Upload.MaxArtifactAge)

	// The artifact directory must exist after loading.
	assert.DirExists(t, filepath.Join(dir, "artifacts"))
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	// a set-but-empty credential must be rejected the same as an unset one
	t.Setenv("GROQ_API_KEY", "")
	artifactDir := filepath.Join(t.TempDir(), "artifacts")
	t.Setenv("UPLOAD_DIR", artifactDir)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")

	// validation happens before any filesystem side effects
	assert.NoDirExists(t, artifactDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "k")
	t.Setenv("UPLOAD_DIR", t.TempDir())
	t.Setenv("LLM_MODEL", "llama-3.3-70b-versatile")
	t.Setenv("SEARCH_MAX_RESULTS", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Search.MaxResults)
}
