package search

import (
	"log/slog"

	"github.com/poiesic/tabula/vectorindex"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(vector []float32)
	AfterIndexSearch(hits []vectorindex.Hit)
	VerbatimHit(hit vectorindex.Hit)
	Finish(hits []vectorindex.Hit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)      {}
func (n *noopMonitor) AfterIndexSearch(_ []vectorindex.Hit) {}
func (n *noopMonitor) VerbatimHit(_ vectorindex.Hit)        {}
func (n *noopMonitor) Finish(_ []vectorindex.Hit)           {}

// LogMonitor reports every search stage at debug level.
type LogMonitor struct {
	Logger *slog.Logger
}

var _ SearchMonitor = (*LogMonitor)(nil)

func (m *LogMonitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *LogMonitor) Start(query string) {
	m.logger().Debug("search started", "query", query)
}

func (m *LogMonitor) AfterQueryEmbedding(vector []float32) {
	m.logger().Debug("query embedded", "dimensions", len(vector))
}

func (m *LogMonitor) AfterIndexSearch(hits []vectorindex.Hit) {
	m.logger().Debug("index searched", "hits", len(hits))
}

func (m *LogMonitor) VerbatimHit(hit vectorindex.Hit) {
	m.logger().Debug("verbatim hit", "key", hit.Fragment.Key(), "distance", hit.Distance)
}

func (m *LogMonitor) Finish(hits []vectorindex.Hit) {
	for i, hit := range hits {
		m.logger().Debug("hit", "rank", i+1, "key", hit.Fragment.Key(), "distance", hit.Distance)
	}
}
