package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/tabula/ai"
	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/retry"
)

// DefaultMaxRequestSize is the number of texts sent per provider request.
const DefaultMaxRequestSize = 100

// Client embeds batches of text through an ai.Embedder.
type Client struct {
	embedder       ai.Embedder
	policy         retry.Policy
	maxRequestSize int
	pool           *ants.Pool
	logger         *slog.Logger

	mu         sync.Mutex
	dimensions int
}

// Option configures a Client.
type Option func(*Client) error

// WithRetryPolicy sets the retry policy applied to every provider request.
// Default is retry.DefaultPolicy().
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) error {
		if err := policy.Validate(); err != nil {
			return err
		}
		c.policy = policy
		return nil
	}
}

// WithMaxRequestSize sets the maximum number of texts per provider request.
// Default is DefaultMaxRequestSize.
func WithMaxRequestSize(n int) Option {
	return func(c *Client) error {
		if n < 1 {
			return ErrInvalidRequestSize
		}
		c.maxRequestSize = n
		return nil
	}
}

// WithConcurrency sets how many provider requests of one batch may be in
// flight at once. Default is 1.
func WithConcurrency(n int) Option {
	return func(c *Client) error {
		if n < 1 {
			return ErrInvalidConcurrency
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		if c.pool != nil {
			c.pool.Release()
		}
		c.pool = pool
		return nil
	}
}

// WithDimensions sets the expected vector length. Zero learns it from the
// first response.
func WithDimensions(n int) Option {
	return func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("%w: dimensions must not be negative", core.ErrConfiguration)
		}
		c.dimensions = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewClient creates a client around embedder.
func NewClient(embedder ai.Embedder, opts ...Option) (*Client, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	c := &Client{
		embedder:       embedder,
		policy:         retry.DefaultPolicy(),
		maxRequestSize: DefaultMaxRequestSize,
		pool:           pool,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}
	c.logger = c.logger.With("component", "embedding-client")
	return c, nil
}

// Dimensions returns the vector length, or 0 before the first response
// when none was configured.
func (c *Client) Dimensions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimensions
}

// Release frees the worker pool.
func (c *Client) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// EmbedQuery embeds a single text.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

type span struct {
	start, end int
}

// Embed returns one vector per text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var spans []span
	for start := 0; start < len(texts); start += c.maxRequestSize {
		spans = append(spans, span{start: start, end: min(start+c.maxRequestSize, len(texts))})
	}

	results := make([][]float32, len(texts))
	if len(spans) == 1 {
		if err := c.request(ctx, texts, results); err != nil {
			return nil, err
		}
		return results, nil
	}

	errs := make([]error, len(spans))
	var wg sync.WaitGroup
	for i, s := range spans {
		wg.Add(1)
		submitErr := c.pool.Submit(func() {
			defer wg.Done()
			errs[i] = c.request(ctx, texts[s.start:s.end], results[s.start:s.end])
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// request embeds one provider request under the retry policy and writes the
// vectors into out.
func (c *Client) request(ctx context.Context, texts []string, out [][]float32) error {
	c.logger.Debug("embedding request", "texts", len(texts))

	var vectors [][]float32
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		v, err := c.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		vectors = v
		return nil
	})
	if err != nil {
		c.logger.Warn("embedding request failed", "texts", len(texts), "err", err)
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return err
		}
		if core.IsTransient(err) {
			return err
		}
		return core.Permanent(err)
	}

	if len(vectors) != len(texts) {
		return core.Permanent(fmt.Errorf("%w: expected %d, received %d", ErrResultMismatch, len(texts), len(vectors)))
	}
	for i, v := range vectors {
		if err := core.ValidateVector(v); err != nil {
			return core.Permanent(fmt.Errorf("vector %d: %w", i, err))
		}
		if err := c.checkDimensions(len(v)); err != nil {
			return core.Permanent(fmt.Errorf("vector %d: %w", i, err))
		}
	}
	copy(out, vectors)
	return nil
}

func (c *Client) checkDimensions(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dimensions == 0 {
		c.dimensions = n
		return nil
	}
	if n != c.dimensions {
		return fmt.Errorf("%w: expected %d, received %d", ErrDimensionMismatch, c.dimensions, n)
	}
	return nil
}
