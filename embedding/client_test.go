package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/tabula/ai/mock"
	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func newTestClient(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithRetryPolicy(fastPolicy())}, opts...)
	c, err := NewClient(embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(c.Release)
	return c
}

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("row: %d", i)
	}
	return out
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	tests := []struct {
		name string
		opt  Option
	}{
		{"request size", WithMaxRequestSize(0)},
		{"concurrency", WithConcurrency(0)},
		{"dimensions", WithDimensions(-1)},
		{"policy", WithRetryPolicy(retry.Policy{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(mock.NewMockEmbedder(), tt.opt)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, core.ErrConfiguration)
		})
	}
}

func TestEmbed_Empty(t *testing.T) {
	m := mock.NewMockEmbedder()
	c := newTestClient(t, m)

	vectors, err := c.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Zero(t, m.CallCount(), "empty input should not reach the provider")
}

func TestEmbed_PreservesOrderAcrossRequests(t *testing.T) {
	m := mock.NewMockEmbedder()
	m.Dimensions = 8
	c := newTestClient(t, m, WithMaxRequestSize(3), WithConcurrency(4))

	input := texts(10)
	vectors, err := c.Embed(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, vectors, len(input))

	for i, text := range input {
		assert.Equal(t, mock.DeterministicVector(text, 8), vectors[i], "vector %d out of order", i)
	}
	assert.Equal(t, 4, m.CallCount(), "10 texts in requests of 3")
	assert.Equal(t, 8, c.Dimensions())
}

func TestEmbed_FailsTwiceThenSucceeds(t *testing.T) {
	m := mock.NewMockEmbedder()
	m.FailTimes = 2
	c := newTestClient(t, m)

	input := texts(5)
	vectors, err := c.Embed(context.Background(), input)
	require.NoError(t, err)
	assert.Len(t, vectors, 5)
	assert.Equal(t, 3, m.CallCount())

	batches := m.Batches()
	assert.Equal(t, batches[0], batches[2], "retry should resend the same texts")
}

func TestEmbed_RetryBudgetExhausted(t *testing.T) {
	m := mock.NewMockEmbedder()
	m.FailTimes = 4
	c := newTestClient(t, m)

	_, err := c.Embed(context.Background(), texts(2))
	require.Error(t, err)
	assert.True(t, core.IsTransient(err))
	assert.ErrorIs(t, err, mock.ErrMockRateLimited)
	assert.Contains(t, err.Error(), "3 attempts")
	assert.Equal(t, 3, m.CallCount())
}

func TestEmbed_PermanentErrorNotRetried(t *testing.T) {
	m := mock.NewMockEmbedder()
	m.FailTimes = 5
	m.FailErr = errors.New("401 unauthorized")
	c := newTestClient(t, m)

	_, err := c.Embed(context.Background(), texts(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrProvider)
	assert.False(t, core.IsTransient(err))
	assert.Equal(t, 1, m.CallCount())
}

func TestEmbed_ResultCountMismatch(t *testing.T) {
	m := mock.NewMockEmbedder()
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}
	c := newTestClient(t, m)

	_, err := c.Embed(context.Background(), texts(3))
	assert.ErrorIs(t, err, ErrResultMismatch)
	assert.ErrorIs(t, err, core.ErrProvider)
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	m := mock.NewMockEmbedder()
	m.Dimensions = 4
	c := newTestClient(t, m, WithDimensions(8))

	_, err := c.Embed(context.Background(), texts(1))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.ErrorIs(t, err, core.ErrProvider)
}

func TestEmbed_InconsistentResponses(t *testing.T) {
	m := mock.NewMockEmbedder()
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}, {1, 0, 0}}, nil
	}
	c := newTestClient(t, m)

	_, err := c.Embed(context.Background(), texts(2))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestEmbedQuery(t *testing.T) {
	m := mock.NewMockEmbedder()
	c := newTestClient(t, m)

	vec, err := c.EmbedQuery(context.Background(), "district: North")
	require.NoError(t, err)
	assert.Equal(t, mock.DeterministicVector("district: North", mock.DefaultDimensions), vec)
}

func TestEmbed_ContextCanceled(t *testing.T) {
	m := mock.NewMockEmbedder()
	c := newTestClient(t, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Embed(ctx, texts(2))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, core.ErrProvider))
	assert.Zero(t, m.CallCount())
}
