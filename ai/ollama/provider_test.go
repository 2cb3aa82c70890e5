package ollama

import (
	"testing"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	cfg := ai.NewConfig(
		ai.WithProvider(ai.ProviderOllama),
		ai.WithHost("http://localhost:11434/v1"),
		ai.WithEmbeddingModel("nomic-embed-text"),
		ai.WithCompletionModel("qwen2.5:3b"),
	)

	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	defer provider.Close()

	assert.NotNil(t, provider.Embedder())
	assert.NotNil(t, provider.Completer())
	assert.Equal(t, "http://localhost:11434", cfg.EmbeddingHost)
}

func TestNewProvider_RejectsOpenAI(t *testing.T) {
	cfg := ai.NewConfig(ai.WithHost("http://localhost:8000"))

	_, err := NewProvider(cfg)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
