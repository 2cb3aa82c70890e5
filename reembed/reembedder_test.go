package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/tabula/ai/mock"
	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/embedding"
	"github.com/poiesic/tabula/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, embedder *mock.MockEmbedder) *embedding.Client {
	t.Helper()
	client, err := embedding.NewClient(embedder, embedding.WithRetryPolicy(retry.Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	}))
	require.NoError(t, err)
	t.Cleanup(client.Release)
	return client
}

func TestNewReembedder(t *testing.T) {
	_, err := NewReembedder(nil, nil, nil)
	assert.ErrorIs(t, err, ErrClientRequired)
	assert.ErrorIs(t, err, core.ErrConfiguration)

	r, err := NewReembedder(newTestClient(t, mock.NewMockEmbedder()), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSize, r.config.BatchSize)
}

func TestRun_NewModelDimensions(t *testing.T) {
	source := buildIndex(t, 5, 4)
	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 8

	var progress bytes.Buffer
	r, err := NewReembedder(newTestClient(t, embedder), &Config{BatchSize: 2, ReportInterval: 1}, &progress)
	require.NoError(t, err)

	rebuilt, err := r.Run(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 5, rebuilt.Len())
	assert.Equal(t, 8, rebuilt.Dimensions())
	assert.Equal(t, source.Fragments(), rebuilt.Fragments(), "fragment order should be preserved")
	assert.Equal(t, 3, embedder.CallCount())

	// The source is left untouched
	assert.Equal(t, 4, source.Dimensions())

	hits, err := rebuilt.Search(mock.DeterministicVector(source.Fragments()[3].Content, 8), 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, source.Fragments()[3].Content, hits[0].Fragment.Content)

	out := progress.String()
	assert.Contains(t, out, "Starting reembedding of 5 fragments (batch size: 2)")
	assert.Contains(t, out, "5/5 rows")
	assert.Contains(t, out, "Reembedding complete. Processed 5 fragments")
}

func TestRun_EmptyIndex(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var progress bytes.Buffer
	r, err := NewReembedder(newTestClient(t, embedder), nil, &progress)
	require.NoError(t, err)

	rebuilt, err := r.Run(context.Background(), buildIndex(t, 0, 4))
	require.NoError(t, err)
	assert.Zero(t, rebuilt.Len())
	assert.Zero(t, embedder.CallCount())
	assert.Contains(t, progress.String(), "No fragments found")
}

func TestRun_RetriesTransientFailures(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.FailTimes = 2

	r, err := NewReembedder(newTestClient(t, embedder), &Config{BatchSize: 10, ReportInterval: 10}, nil)
	require.NoError(t, err)

	rebuilt, err := r.Run(context.Background(), buildIndex(t, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, 3, rebuilt.Len())
	assert.Equal(t, 3, embedder.CallCount())
}

func TestRun_PermanentFailure(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.FailTimes = 1
	embedder.FailErr = core.Permanent(errors.New("401 unauthorized"))

	r, err := NewReembedder(newTestClient(t, embedder), &Config{BatchSize: 2, ReportInterval: 2}, nil)
	require.NoError(t, err)

	rebuilt, err := r.Run(context.Background(), buildIndex(t, 4, 4))
	assert.Nil(t, rebuilt)
	assert.ErrorIs(t, err, core.ErrProvider)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestRun_NilSource(t *testing.T) {
	r, err := NewReembedder(newTestClient(t, mock.NewMockEmbedder()), nil, nil)
	require.NoError(t, err)

	_, err = r.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrSourceRequired)
}

func TestBatchProcessor_Empty(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	idx, err := NewBatchProcessor(newTestClient(t, embedder)).Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
	assert.Zero(t, embedder.CallCount())
}
