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

	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/vectorindex"
)

const (
	// DefaultBatchSize is the default number of fragments embedded per batch
	DefaultBatchSize = 100
)

// FragmentIterator walks the fragments of an index in insertion order.
type FragmentIterator struct {
	index     *vectorindex.Index
	batchSize int
}

// NewFragmentIterator creates an iterator over index. A batchSize of zero
// or less uses DefaultBatchSize.
func NewFragmentIterator(index *vectorindex.Index, batchSize int) *FragmentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &FragmentIterator{
		index:     index,
		batchSize: batchSize,
	}
}

// ForEach calls fn with consecutive batches of at most batchSize fragments.
// It stops at the first error from fn or when ctx is done.
func (it *FragmentIterator) ForEach(ctx context.Context, fn func([]core.Fragment) error) error {
	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fragments := it.index.Fragments()
	for i := 0; i < len(fragments); i += it.batchSize {
		end := min(i+it.batchSize, len(fragments))

		if err := fn(fragments[i:end]); err != nil {
			return err
		}

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
