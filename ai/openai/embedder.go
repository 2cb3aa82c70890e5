package openai

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/ai/langchain"
	"github.com/poiesic/tabula/core"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

func checkProvider(config *ai.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Provider != ai.ProviderOpenAI {
		return fmt.Errorf("%w: openai: provider is %q", core.ErrConfiguration, config.Provider)
	}
	return nil
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*langchain.Embedder, error) {
	if err := checkProvider(config); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.Token()),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %w", core.ErrConfiguration, err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %w", core.ErrConfiguration, err)
	}

	return langchain.NewEmbedder(embedder, slog.Default().With("provider", "openai")), nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}
