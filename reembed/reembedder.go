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


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/embedding"
	"github.com/poiesic/tabula/ingestion"
	"github.com/poiesic/tabula/vectorindex"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of fragments to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of fragments)
	ReportInterval int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
	}
}

// Reembedder re-embeds every fragment of an index with a new client.
type Reembedder struct {
	client    *embedding.Client
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr); nil
// discards it.
func NewReembedder(client *embedding.Client, config *Config, progress io.Writer) (*Reembedder, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		client:    client,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(client),
	}, nil
}

// Run embeds every fragment of source again and returns the new index.
// Fragment order is preserved; source is left untouched. On failure the
// partially built index is discarded.
func (r *Reembedder) Run(ctx context.Context, source *vectorindex.Index) (*vectorindex.Index, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}

	total := source.Len()
	rebuilt := vectorindex.New(r.client.Dimensions())
	if total == 0 {
		fmt.Fprintf(r.progress, "No fragments found in index (0 fragments)\n")
		return rebuilt, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d fragments (batch size: %d)\n",
		total, r.config.BatchSize)

	tracker := ingestion.NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()
	started := time.Now()

	iterator := NewFragmentIterator(source, r.config.BatchSize)
	err := iterator.ForEach(ctx, func(fragments []core.Fragment) error {
		batch, err := r.processor.Process(ctx, fragments)
		if err != nil {
			return err
		}
		if err := rebuilt.MergeFrom(batch); err != nil {
			return err
		}

		// Rows and fragments are the same unit here
		tracker.Add(len(fragments), len(fragments))
		return nil
	})
	if err != nil {
		return nil, err
	}

	tracker.Finish()

	elapsed := time.Since(started)
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d fragments in %v (%.1f fragments/sec)\n",
		total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())

	return rebuilt, nil
}
