package openai

import (
	"testing"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	cfg := ai.NewConfig(ai.WithHost("http://localhost:8000"), ai.WithAPIKey("sk-test"))

	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	defer provider.Close()

	assert.NotNil(t, provider.Embedder())
	assert.NotNil(t, provider.Completer())
	assert.Equal(t, "http://localhost:8000/v1", cfg.EmbeddingHost)
}

func TestNewProvider_RejectsOtherProvider(t *testing.T) {
	cfg := ai.NewConfig(ai.WithProvider(ai.ProviderOllama), ai.WithHost("http://localhost:11434"))

	_, err := NewProvider(cfg)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestNewEmbedder_MissingKey(t *testing.T) {
	t.Setenv(ai.APIKeyEnv, "")

	_, err := NewEmbedder(ai.NewConfig())
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
