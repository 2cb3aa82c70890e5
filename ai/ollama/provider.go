package ollama

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/ai/langchain"
	"github.com/poiesic/tabula/core"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
)

func checkProvider(config *ai.Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Provider != ai.ProviderOllama {
		return fmt.Errorf("%w: ollama: provider is %q", core.ErrConfiguration, config.Provider)
	}
	return nil
}

func newEmbedder(config *ai.Config) (*langchain.Embedder, error) {
	if err := checkProvider(config); err != nil {
		return nil, err
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.EmbeddingHost),
		ollama.WithModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %w", core.ErrConfiguration, err)
	}

	embedder, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %w", core.ErrConfiguration, err)
	}
	return langchain.NewEmbedder(embedder, slog.Default().With("provider", "ollama")), nil
}

func newCompleter(config *ai.Config) (*langchain.Completer, error) {
	if err := checkProvider(config); err != nil {
		return nil, err
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.CompletionHost),
		ollama.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: ollama: %w", core.ErrConfiguration, err)
	}
	return langchain.NewCompleter(client, config.Temperature, slog.Default().With("provider", "ollama")), nil
}

// NewEmbedder creates an embedder for config.EmbeddingModel.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// NewCompleter creates a completer for config.CompletionModel.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}

// Provider implements ai.AIProvider against an Ollama server.
type Provider struct {
	embedder  *langchain.Embedder
	completer *langchain.Completer
	logger    *slog.Logger
}

// NewProvider validates config and creates both services.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	completer, err := newCompleter(config)
	if err != nil {
		return nil, err
	}
	return &Provider{
		embedder:  embedder,
		completer: completer,
		logger:    slog.Default().With("component", "ollama-provider"),
	}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) Completer() ai.Completer {
	return p.completer
}

func (p *Provider) Close() error {
	p.logger.Debug("closing Ollama provider")
	return nil
}
