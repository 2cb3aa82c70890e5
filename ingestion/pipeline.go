// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/poiesic/tabula/chunking"
	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/embedding"
	"github.com/poiesic/tabula/tabular"
	"github.com/poiesic/tabula/vectorindex"
)

const (
	// DefaultBatchSize is the number of fragments embedded per flush.
	DefaultBatchSize = 100

	// DefaultReadChunkSize is the number of rows read from a file at once.
	DefaultReadChunkSize = 2000

	// DefaultCooldown is the pause between consecutive flushes.
	DefaultCooldown = time.Second
)

// Pipeline ingests tabular files into a vector index.
// A Pipeline is not safe for concurrent use.
type Pipeline struct {
	client        *embedding.Client
	splitter      *chunking.Splitter
	batchSize     int
	readChunkSize int
	cooldown      time.Duration
	indexDir      string
	model         string
	index         *vectorindex.Index
	progress      io.Writer
	logger        *slog.Logger
	flushes       int
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithBatchSize sets the number of fragments embedded per flush.
// Default is DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = n
		return nil
	}
}

// WithReadChunkSize sets the number of rows streamed from a file at once.
// Default is DefaultReadChunkSize.
func WithReadChunkSize(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return ErrInvalidReadChunkSize
		}
		p.readChunkSize = n
		return nil
	}
}

// WithCooldown sets the pause between consecutive flushes.
// Default is DefaultCooldown.
func WithCooldown(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d < 0 {
			return ErrInvalidCooldown
		}
		p.cooldown = d
		return nil
	}
}

// WithIndexDir persists the index into dir after every Ingest call.
func WithIndexDir(dir string) Option {
	return func(p *Pipeline) error {
		p.indexDir = dir
		return nil
	}
}

// WithManifest sets the embedding model recorded with the persisted index.
func WithManifest(model string) Option {
	return func(p *Pipeline) error {
		p.model = model
		return nil
	}
}

// WithIndex continues ingestion into an existing index instead of an
// empty one. The pipeline takes ownership of idx.
func WithIndex(idx *vectorindex.Index) Option {
	return func(p *Pipeline) error {
		if idx != nil {
			p.index = idx
		}
		return nil
	}
}

// WithProgress writes throughput reports to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(client *embedding.Client, splitter *chunking.Splitter, opts ...Option) (*Pipeline, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	if splitter == nil {
		return nil, ErrSplitterRequired
	}

	p := &Pipeline{
		client:        client,
		splitter:      splitter,
		batchSize:     DefaultBatchSize,
		readChunkSize: DefaultReadChunkSize,
		cooldown:      DefaultCooldown,
		index:         vectorindex.New(client.Dimensions()),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// Index returns the running index. It must not be modified while the
// pipeline is in use.
func (p *Pipeline) Index() *vectorindex.Index {
	return p.index
}

// Ingest processes paths in order and merges their fragments into the
// running index. A file that fails is recorded in the report and the
// remaining files are still processed; the returned error joins every
// per-file error. Cancelling ctx stops after the current file.
func (p *Pipeline) Ingest(ctx context.Context, paths ...string) (*Report, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	start := time.Now()
	progress := p.progress
	if progress == nil {
		progress = io.Discard
	}
	tracker := NewProgressTracker(progress, 0, p.readChunkSize)
	tracker.Start()

	report := &Report{}
	var errs []error
	succeeded := false
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		fr := p.ingestFile(ctx, path, tracker)
		report.Files = append(report.Files, fr)
		if fr.Err != nil {
			p.logger.Error("file ingestion failed", "path", path, "fragments", fr.Fragments, "err", fr.Err)
			errs = append(errs, fr.Err)
			continue
		}
		succeeded = true
		p.logger.Info("file ingested", "path", path, "rows", fr.Rows, "fragments", fr.Fragments, "batches", fr.Batches)
	}
	tracker.Finish()

	report.Fragments = p.index.Len()
	if p.indexDir != "" && (p.index.Len() > 0 || succeeded) {
		if err := p.persist(context.WithoutCancel(ctx)); err != nil {
			errs = append(errs, err)
		}
	}
	report.Elapsed = time.Since(start)
	return report, errors.Join(errs...)
}

func (p *Pipeline) persist(ctx context.Context) error {
	manifest := core.Manifest{EmbeddingModel: p.model}
	if p.index.Len() == 0 {
		manifest.Dimensions = p.client.Dimensions()
	}
	if err := vectorindex.Persist(ctx, p.index, p.indexDir, manifest); err != nil {
		return fmt.Errorf("persist index to %s: %w", p.indexDir, err)
	}
	p.logger.Info("index persisted", "dir", p.indexDir, "entries", p.index.Len())
	return nil
}

// ingestFile streams one file through the splitter and flushes full
// batches. Leftover fragments are flushed at end of file.
func (p *Pipeline) ingestFile(ctx context.Context, path string, tracker *ProgressTracker) FileReport {
	fr := FileReport{Path: path}
	fail := func(err error) FileReport {
		fr.Err = &core.PartialIngestionError{File: path, Ingested: fr.Fragments, Err: err}
		return fr
	}

	reader, err := tabular.Open(path)
	if err != nil {
		return fail(err)
	}
	defer reader.Close()

	// Fragments from same-named files in different directories must not collide
	source, err := filepath.Abs(path)
	if err != nil {
		source = filepath.Clean(path)
	}
	flush := func(batch []core.Fragment) error {
		if err := p.flush(ctx, batch); err != nil {
			return err
		}
		fr.Fragments += len(batch)
		fr.Batches++
		tracker.Add(0, len(batch))
		return nil
	}

	var buffer []core.Fragment
	for chunk := 0; ; chunk++ {
		rows, err := tabular.ReadChunk(reader, p.readChunkSize)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(fmt.Errorf("read %s: %w", source, err))
		}

		for _, row := range rows {
			fr.Rows++
			for i, span := range p.splitter.SplitSpans(tabular.EncodeRow(row)) {
				buffer = append(buffer, core.Fragment{
					Content: span.Text,
					Metadata: core.FragmentMetadata{
						SourceFile:  source,
						RowIndex:    row.Index,
						ChunkIndex:  chunk,
						SplitIndex:  i,
						SplitOffset: span.Offset,
					},
				})
			}
			for len(buffer) >= p.batchSize {
				if err := flush(buffer[:p.batchSize]); err != nil {
					return fail(err)
				}
				buffer = buffer[p.batchSize:]
			}
		}
		tracker.Add(len(rows), 0)
	}

	if len(buffer) > 0 {
		if err := flush(buffer); err != nil {
			return fail(err)
		}
	}
	return fr
}

// flush embeds batch and merges it into the running index. Every flush
// after the first waits for the cooldown.
func (p *Pipeline) flush(ctx context.Context, batch []core.Fragment) error {
	if p.flushes > 0 && p.cooldown > 0 {
		timer := time.NewTimer(p.cooldown)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	p.flushes++

	texts := make([]string, len(batch))
	for i, fragment := range batch {
		texts[i] = fragment.Content
	}

	vectors, err := p.client.Embed(ctx, texts)
	if err != nil {
		return err
	}
	built, err := vectorindex.Build(vectors, batch)
	if err != nil {
		return err
	}
	if err := p.index.MergeFrom(built); err != nil {
		return err
	}
	p.logger.Debug("batch merged", "fragments", len(batch), "entries", p.index.Len())
	return nil
}

// Release frees the embedding client's worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.client != nil {
		p.client.Release()
	}
}
