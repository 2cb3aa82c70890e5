package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/tabula/embedding"
	"github.com/poiesic/tabula/vectorindex"
)

// Searcher finds the fragments nearest to a natural-language query.
// The index is only read, so a Searcher may be shared between goroutines.
type Searcher struct {
	index  *vectorindex.Index
	client *embedding.Client
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(index *vectorindex.Index, client *embedding.Client, opts ...Option) (*Searcher, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if client == nil {
		return nil, ErrClientRequired
	}

	s := &Searcher{
		index:  index,
		client: client,
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Index returns the searched index.
func (s *Searcher) Index() *vectorindex.Index {
	return s.index
}

// FindSimilar returns up to maxHits fragments nearest to query.
// An empty index yields no hits and no error, without calling the embedder.
func (s *Searcher) FindSimilar(ctx context.Context, query string, maxHits int) ([]vectorindex.Hit, error) {
	return s.FindSimilarWithMonitor(ctx, query, maxHits, nil)
}

// FindSimilarWithMonitor is FindSimilar with a monitor receiving callbacks
// at each stage of the search process.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]vectorindex.Hit, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)
	if maxHits <= 0 || s.index.Len() == 0 {
		monitor.Finish([]vectorindex.Hit{})
		return []vectorindex.Hit{}, nil
	}

	vector, err := s.client.EmbedQuery(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(vector)

	hits, err := s.index.Search(vector, maxHits)
	if err != nil {
		s.logger.Error("error searching index", "err", err)
		return nil, err
	}
	monitor.AfterIndexSearch(hits)

	for _, hit := range hits {
		if containsAllQueryWords(hit.Fragment.Content, query) {
			monitor.VerbatimHit(hit)
		}
	}
	monitor.Finish(hits)

	return hits, nil
}
