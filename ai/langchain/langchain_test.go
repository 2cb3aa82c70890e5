package langchain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := f.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

type fakeModel struct {
	response *llms.ContentResponse
	err      error
	got      []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.got = messages
	return f.response, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestEmbedder(t *testing.T) {
	fake := &fakeEmbedder{}
	e := NewEmbedder(fake, nil)

	vectors, err := e.EmbedTexts(context.Background(), []string{"a", "bbb"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}, {3, 1}}, vectors)

	vec, err := e.EmbedText(context.Background(), "cc")
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 1}, vec)
	assert.Equal(t, 2, fake.calls)
}

func TestEmbedder_ClassifiesErrors(t *testing.T) {
	e := NewEmbedder(&fakeEmbedder{err: errors.New("API returned unexpected status code: 429: Rate limit reached")}, nil)
	_, err := e.EmbedTexts(context.Background(), []string{"a"})
	assert.True(t, core.IsTransient(err))

	e = NewEmbedder(&fakeEmbedder{err: errors.New("API returned unexpected status code: 401: invalid key")}, nil)
	_, err = e.EmbedText(context.Background(), "a")
	assert.False(t, core.IsTransient(err))
	assert.ErrorIs(t, err, core.ErrProvider)
}

func TestCompleter(t *testing.T) {
	model := &fakeModel{response: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "North has 3 schools."}},
	}}
	c := NewCompleter(model, 0, nil)

	answer, err := c.Complete(context.Background(), []ai.Message{
		ai.SystemMessage("context"),
		ai.HumanMessage("earlier"),
		ai.AIMessage("reply"),
		ai.HumanMessage("how many schools?"),
	})
	require.NoError(t, err)
	assert.Equal(t, "North has 3 schools.", answer)

	require.Len(t, model.got, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.got[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.got[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.got[2].Role)
	assert.Equal(t, []llms.ContentPart{llms.TextPart("how many schools?")}, model.got[3].Parts)
}

func TestCompleter_NoChoices(t *testing.T) {
	c := NewCompleter(&fakeModel{response: &llms.ContentResponse{}}, 0, nil)
	_, err := c.Complete(context.Background(), []ai.Message{ai.HumanMessage("q")})
	assert.ErrorIs(t, err, core.ErrProvider)
}

func TestCompleter_UnknownRole(t *testing.T) {
	model := &fakeModel{}
	c := NewCompleter(model, 0, nil)
	_, err := c.Complete(context.Background(), []ai.Message{{Role: "tool", Content: "x"}})
	assert.ErrorIs(t, err, core.ErrProvider)
	assert.Nil(t, model.got, "model should not be called")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"openai rate limit", errors.New("API returned unexpected status code: 429: slow down"), true},
		{"openai server error", errors.New("API returned unexpected status code: 503"), true},
		{"request timeout status", errors.New("status 408"), true},
		{"ollama status", errors.New("500 Internal Server Error: model failed"), true},
		{"unauthorized", errors.New("API returned unexpected status code: 401: bad key"), false},
		{"bad request", errors.New("400 Bad Request: input too long"), false},
		{"rate limit text", errors.New("you hit the Rate Limit"), true},
		{"dial error", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"wrapped timeout text", fmt.Errorf("embed: %w", errors.New("i/o timeout")), true},
		{"unknown", errors.New("model not found"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.err)
			assert.Equal(t, tt.transient, core.IsTransient(err))
			assert.ErrorIs(t, err, tt.err)
			if !tt.transient {
				assert.ErrorIs(t, err, core.ErrProvider)
			}
		})
	}
}

func TestClassify_PassThrough(t *testing.T) {
	assert.Nil(t, Classify(nil))

	canceled := fmt.Errorf("request: %w", context.Canceled)
	assert.Equal(t, canceled, Classify(canceled))

	cfg := fmt.Errorf("%w: missing key", core.ErrConfiguration)
	assert.Equal(t, cfg, Classify(cfg))

	transient := core.Transient(errors.New("x"))
	assert.Equal(t, transient, Classify(transient))
}

func TestStatusCode(t *testing.T) {
	code, ok := StatusCode("API returned unexpected status code: 429: x")
	require.True(t, ok)
	assert.Equal(t, 429, code)

	_, ok = StatusCode("no code here")
	assert.False(t, ok)
}
