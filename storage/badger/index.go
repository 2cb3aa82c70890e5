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


package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/storage"
)

// IndexRepository implements storage.IndexRepository for BadgerDB.
//
// Each snapshot is written under a fresh generation number. Entries go in
// through a write batch, then the manifest and the generation pointer are
// committed together in one transaction, and finally the previous
// generation is dropped. A crash before the pointer commit leaves the old
// snapshot current.
type IndexRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.IndexRepository = (*IndexRepository)(nil)

// NewIndexRepository creates a new IndexRepository over backend.
func NewIndexRepository(backend *Backend) (*IndexRepository, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &IndexRepository{
		backend: backend,
		logger:  backend.logger.With("repository", "index"),
	}, nil
}

// currentGeneration returns the committed generation, or 0 when none.
func currentGeneration(tx *badger.Txn) (uint64, error) {
	item, err := tx.Get([]byte(indexGenerationKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var generation uint64
	err = item.Value(func(val []byte) error {
		var decodeErr error
		generation, decodeErr = decodeGeneration(val)
		return decodeErr
	})
	return generation, err
}

func (r *IndexRepository) generation() (uint64, error) {
	var generation uint64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		generation, err = currentGeneration(tx)
		return err
	}, false)
	return generation, err
}

// SaveSnapshot replaces the stored snapshot with manifest and entries.
func (r *IndexRepository) SaveSnapshot(ctx context.Context, manifest core.Manifest, entries []core.Entry) error {
	previous, err := r.generation()
	if err != nil {
		return err
	}
	next := previous + 1

	// Leftovers of an interrupted save under the same generation
	if err := r.backend.DropPrefix(makeEntryPrefix(next), makeManifestKey(next)); err != nil {
		return err
	}

	err = r.backend.WriteBatch(func(set func(key, value []byte) error) error {
		for i, entry := range entries {
			if i%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := set(makeEntryKey(next, i), storage.MarshalEntry(entry)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	manifest.Count = len(entries)
	err = r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeManifestKey(next), storage.MarshalManifest(manifest)); err != nil {
			return err
		}
		if err := tx.Set([]byte(indexGenerationKey), encodeGeneration(next)); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
		return nil
	}, true)
	if err != nil {
		return err
	}

	if previous > 0 {
		if err := r.backend.DropPrefix(makeEntryPrefix(previous), makeManifestKey(previous)); err != nil {
			r.logger.Warn("failed to drop previous snapshot", "generation", previous, "err", err)
		}
	}
	r.logger.Debug("saved snapshot", "generation", next, "entries", len(entries))
	return nil
}

// LoadManifest returns the manifest of the current snapshot.
func (r *IndexRepository) LoadManifest(ctx context.Context) (*core.Manifest, error) {
	var manifest *core.Manifest
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		generation, err := currentGeneration(tx)
		if err != nil {
			return err
		}
		if generation == 0 {
			return storage.ErrNotFound
		}

		item, err := tx.Get(makeManifestKey(generation))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			manifest, unmarshalErr = storage.UnmarshalManifest(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return manifest, nil
}

// LoadEntries returns the entries of the current snapshot in insertion order.
func (r *IndexRepository) LoadEntries(ctx context.Context) ([]core.Entry, error) {
	var entries []core.Entry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		generation, err := currentGeneration(tx)
		if err != nil {
			return err
		}
		if generation == 0 {
			return storage.ErrNotFound
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryPrefix(generation)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				entry, unmarshalErr := storage.UnmarshalEntry(val)
				if unmarshalErr != nil {
					return unmarshalErr
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of entries in the current snapshot.
func (r *IndexRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		generation, err := currentGeneration(tx)
		if err != nil || generation == 0 {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEntryPrefix(generation)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Close is a no-op; the backend is owned by the caller.
func (r *IndexRepository) Close() error {
	return nil
}
