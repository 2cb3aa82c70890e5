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


package storage

import (
	"context"

	"github.com/poiesic/tabula/core"
)

// IndexRepository persists vector index snapshots.
// Implementations must be thread-safe.
type IndexRepository interface {
	// SaveSnapshot replaces the stored snapshot with manifest and entries.
	// Entries are stored in the given order.
	SaveSnapshot(ctx context.Context, manifest core.Manifest, entries []core.Entry) error

	// LoadManifest returns the manifest of the current snapshot.
	// Returns ErrNotFound if no snapshot exists.
	LoadManifest(ctx context.Context) (*core.Manifest, error)

	// LoadEntries returns the entries of the current snapshot in insertion order.
	// Returns ErrNotFound if no snapshot exists.
	LoadEntries(ctx context.Context) ([]core.Entry, error)

	// Count returns the number of entries in the current snapshot.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
