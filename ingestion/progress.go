package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports ingestion throughput to a writer.
// The total number of rows is usually unknown while streaming, so only
// counts and rates are printed unless a total is set.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	rows           int
	fragments      int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewProgressTracker creates a tracker that reports every reportInterval
// rows. A total of 0 means unknown.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()
	p.started = true
	p.rows = 0
	p.fragments = 0
	p.lastReported = 0
}

// Add records rows read and fragments merged.
func (p *ProgressTracker) Add(rows, fragments int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.rows += rows
	p.fragments += fragments
	if p.total > 0 && p.rows > p.total {
		p.rows = p.total
	}

	if p.rows-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.rows
	}
}

// Finish prints the final counts followed by a newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.report()
	fmt.Fprintln(p.writer)
	p.started = false
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}

	return time.Since(p.startTime)
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	seconds := time.Since(p.startTime).Seconds()
	if seconds <= 0 {
		seconds = 1e-9
	}
	rowRate := float64(p.rows) / seconds
	fragmentRate := float64(p.fragments) / seconds

	if p.total > 0 {
		percentage := float64(p.rows) / float64(p.total) * 100.0
		fmt.Fprintf(p.writer, "\rProgress: %d/%d rows (%.1f%%), %d fragments - %.1f rows/s, %.1f fragments/s",
			p.rows, p.total, percentage, p.fragments, rowRate, fragmentRate)
		return
	}
	fmt.Fprintf(p.writer, "\rProgress: %d rows, %d fragments - %.1f rows/s, %.1f fragments/s",
		p.rows, p.fragments, rowRate, fragmentRate)
}
