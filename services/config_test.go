package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "rag", cfg.CollectionName)
	assert.Equal(t, 2000, cfg.MaxChunkLen)
	assert.Equal(t, 20, cfg.MinTextLen)
	assert.Equal(t, 4, cfg.TopK)
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadConfig()
	require.Error(t, err)

	var cErr *ConfigurationError
	require.ErrorAs(t, err, &cErr)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("TOP_K", "7")
	t.Setenv("EMBEDDING_MODEL", "mxbai-embed-large")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.TopK)
	assert.Equal(t, "mxbai-embed-large", cfg.EmbeddingModel)
}
