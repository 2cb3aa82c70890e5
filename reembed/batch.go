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

	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/embedding"
	"github.com/poiesic/tabula/vectorindex"
)

// BatchProcessor embeds one batch of fragments into a small index.
type BatchProcessor struct {
	client *embedding.Client
}

// NewBatchProcessor creates a processor that embeds through client. The
// client carries the retry policy.
func NewBatchProcessor(client *embedding.Client) *BatchProcessor {
	return &BatchProcessor{client: client}
}

// Process embeds fragments and returns them as an index in the same order.
func (bp *BatchProcessor) Process(ctx context.Context, fragments []core.Fragment) (*vectorindex.Index, error) {
	if len(fragments) == 0 {
		return vectorindex.New(bp.client.Dimensions()), nil
	}

	// Extract text content
	texts := make([]string, len(fragments))
	for i, f := range fragments {
		texts[i] = f.Content
	}

	vectors, err := bp.client.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed batch of %d fragments: %w", len(fragments), err)
	}

	return vectorindex.Build(vectors, fragments)
}
