package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/poiesic/tabula/core"
	"github.com/poiesic/tabula/storage"
	"github.com/poiesic/tabula/storage/badger"
)

// Expectation describes the index a caller can use. Empty fields are not
// checked.
type Expectation struct {
	EmbeddingModel string
	Dimensions     int
}

// check reports whether manifest satisfies the expectation.
func (e Expectation) check(manifest *core.Manifest) error {
	if e.EmbeddingModel != "" && manifest.EmbeddingModel != e.EmbeddingModel {
		return fmt.Errorf("%w: %w: built with model %q, configured %q",
			core.ErrConfiguration, ErrIncompatibleIndex, manifest.EmbeddingModel, e.EmbeddingModel)
	}
	if e.Dimensions > 0 && manifest.Dimensions != e.Dimensions {
		return fmt.Errorf("%w: %w: built with %d dimensions, configured %d",
			core.ErrConfiguration, ErrIncompatibleIndex, manifest.Dimensions, e.Dimensions)
	}
	return nil
}

// PersistTo saves idx to repo. Missing manifest fields are filled from the
// index: dimensions, metric, count and creation time.
func PersistTo(ctx context.Context, repo storage.IndexRepository, idx *Index, manifest core.Manifest) error {
	if manifest.Dimensions == 0 {
		manifest.Dimensions = idx.Dimensions()
	} else if idx.Len() > 0 && manifest.Dimensions != idx.Dimensions() {
		return fmt.Errorf("%w: %w: manifest %d, index %d",
			core.ErrConfiguration, ErrDimensionMismatch, manifest.Dimensions, idx.Dimensions())
	}
	if manifest.Metric == "" {
		manifest.Metric = core.MetricCosine
	}
	if manifest.CreatedAt.IsZero() {
		manifest.CreatedAt = time.Now().UTC()
	}
	manifest.Count = idx.Len()

	var entries []core.Entry
	if idx != nil {
		entries = idx.entries
	}
	return repo.SaveSnapshot(ctx, manifest, entries)
}

// LoadFrom reads the current snapshot from repo and checks it against expect.
func LoadFrom(ctx context.Context, repo storage.IndexRepository, expect Expectation) (*Index, *core.Manifest, error) {
	manifest, err := repo.LoadManifest(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %w", core.ErrConfiguration, ErrIndexNotFound)
		}
		return nil, nil, err
	}
	if err := expect.check(manifest); err != nil {
		return nil, nil, err
	}

	entries, err := repo.LoadEntries(ctx)
	if err != nil {
		return nil, nil, err
	}
	idx, err := FromEntries(entries)
	if err != nil {
		return nil, nil, err
	}
	if idx.Len() > 0 && idx.Dimensions() != manifest.Dimensions {
		return nil, nil, fmt.Errorf("%w: %w: manifest %d, entries %d",
			core.ErrConfiguration, ErrIncompatibleIndex, manifest.Dimensions, idx.Dimensions())
	}
	if idx.Len() == 0 {
		idx.dims = manifest.Dimensions
	}
	return idx, manifest, nil
}

// Persist saves idx into the BadgerDB directory dir, replacing any
// previous snapshot.
func Persist(ctx context.Context, idx *Index, dir string, manifest core.Manifest) error {
	backend, err := badger.OpenBackend(dir, false)
	if err != nil {
		return err
	}
	defer backend.Close()

	repo, err := badger.NewIndexRepository(backend)
	if err != nil {
		return err
	}
	return PersistTo(ctx, repo, idx, manifest)
}

// Load reads the index persisted in dir. A missing directory or snapshot is
// ErrIndexNotFound; a model or dimension different from expect is
// ErrIncompatibleIndex. Both wrap core.ErrConfiguration.
func Load(ctx context.Context, dir string, expect Expectation) (*Index, *core.Manifest, error) {
	backend, err := openExisting(dir)
	if err != nil {
		return nil, nil, err
	}
	defer backend.Close()

	repo, err := badger.NewIndexRepository(backend)
	if err != nil {
		return nil, nil, err
	}
	return LoadFrom(ctx, repo, expect)
}

// Inspect returns the manifest and entry count of the index in dir
// without loading vectors.
func Inspect(ctx context.Context, dir string) (*core.Manifest, int, error) {
	backend, err := openExisting(dir)
	if err != nil {
		return nil, 0, err
	}
	defer backend.Close()

	repo, err := badger.NewIndexRepository(backend)
	if err != nil {
		return nil, 0, err
	}
	manifest, err := repo.LoadManifest(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, 0, fmt.Errorf("%w: %w", core.ErrConfiguration, ErrIndexNotFound)
		}
		return nil, 0, err
	}
	count, err := repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return manifest, count, nil
}

func openExisting(dir string) (*badger.Backend, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %w: %s", core.ErrConfiguration, ErrIndexNotFound, dir)
		}
		return nil, err
	}
	return badger.OpenBackend(dir, false)
}
