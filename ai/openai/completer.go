package openai

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/ai/langchain"
	"github.com/poiesic/tabula/core"
	"github.com/tmc/langchaingo/llms/openai"
)

func newCompleter(config *ai.Config) (*langchain.Completer, error) {
	if err := checkProvider(config); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.CompletionHost),
		openai.WithToken(config.Token()),
		openai.WithModel(config.CompletionModel),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %w", core.ErrConfiguration, err)
	}

	return langchain.NewCompleter(client, config.Temperature, slog.Default().With("provider", "openai")), nil
}

// NewCompleter creates a chat completer using the provided configuration.
func NewCompleter(config *ai.Config) (ai.Completer, error) {
	return newCompleter(config)
}
