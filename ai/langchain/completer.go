package langchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/core"
	"github.com/tmc/langchaingo/llms"
)

// Completer implements ai.Completer over a langchaingo chat model.
type Completer struct {
	model       llms.Model
	temperature float64
	logger      *slog.Logger
}

var _ ai.Completer = (*Completer)(nil)

// NewCompleter wraps model. A nil logger means slog.Default().
func NewCompleter(model llms.Model, temperature float64, logger *slog.Logger) *Completer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Completer{
		model:       model,
		temperature: temperature,
		logger:      logger.With("component", "langchain-completer"),
	}
}

// Complete sends messages in order and returns the first choice's content.
func (c *Completer) Complete(ctx context.Context, messages []ai.Message) (string, error) {
	content, err := toMessageContent(messages)
	if err != nil {
		return "", err
	}

	c.logger.Debug("generating completion", "messages", len(content))
	response, err := c.model.GenerateContent(ctx, content, llms.WithTemperature(c.temperature))
	if err != nil {
		c.logger.Error("failed to generate content", "err", err)
		return "", Classify(err)
	}
	if response == nil || len(response.Choices) < 1 {
		return "", core.Permanent(errors.New("model returned no choices"))
	}
	return response.Choices[0].Content, nil
}

func toMessageContent(messages []ai.Message) ([]llms.MessageContent, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		role, err := chatRole(m.Role)
		if err != nil {
			return nil, err
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(m.Content)},
		})
	}
	return content, nil
}

func chatRole(r ai.Role) (llms.ChatMessageType, error) {
	switch r {
	case ai.RoleSystem:
		return llms.ChatMessageTypeSystem, nil
	case ai.RoleHuman:
		return llms.ChatMessageTypeHuman, nil
	case ai.RoleAI:
		return llms.ChatMessageTypeAI, nil
	default:
		return "", core.Permanent(fmt.Errorf("unknown message role %q", r))
	}
}
