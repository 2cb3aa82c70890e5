package vectorindex

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/tabula/core"
)

// Hit is one search result.
type Hit struct {
	Fragment core.Fragment
	// Distance is the cosine distance 1 - cos(query, vector); lower is nearer.
	Distance float32
}

// Index is an in-memory vector index. It is not safe for concurrent
// mutation; Search may be called concurrently once the index is built.
type Index struct {
	dims      int
	entries   []core.Entry
	norms     []float64
	positions map[core.ID]int
}

// New returns an empty index of known dimensionality. Zero means unknown.
func New(dimensions int) *Index {
	return &Index{
		dims:      dimensions,
		positions: make(map[core.ID]int),
	}
}

// Build creates an index from parallel slices. Empty input gives an empty
// index of dimension 0.
func Build(vectors [][]float32, fragments []core.Fragment) (*Index, error) {
	if len(vectors) != len(fragments) {
		return nil, fmt.Errorf("%w: %d vectors, %d fragments", ErrLengthMismatch, len(vectors), len(fragments))
	}

	idx := New(0)
	for i := range vectors {
		if err := core.ValidateFragment(&fragments[i]); err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		if err := idx.add(core.Entry{Fragment: fragments[i], Vector: vectors[i]}); err != nil {
			return nil, fmt.Errorf("vector %d: %w", i, err)
		}
	}
	return idx, nil
}

// FromEntries creates an index from entries in order.
func FromEntries(entries []core.Entry) (*Index, error) {
	idx := New(0)
	for i, entry := range entries {
		if err := core.ValidateFragment(&entry.Fragment); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := idx.add(entry); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return idx, nil
}

// add appends entry, or replaces the entry with the same identity.
// The vector is copied.
func (idx *Index) add(entry core.Entry) error {
	if err := core.ValidateVector(entry.Vector); err != nil {
		return err
	}
	if idx.dims == 0 {
		idx.dims = len(entry.Vector)
	} else if len(entry.Vector) != idx.dims {
		return fmt.Errorf("%w: expected %d, received %d", ErrDimensionMismatch, idx.dims, len(entry.Vector))
	}

	entry.Vector = slices.Clone(entry.Vector)
	n := norm(entry.Vector)

	id := entry.Fragment.ID()
	if pos, ok := idx.positions[id]; ok {
		if err := sameIdentity(idx.entries[pos].Fragment, entry.Fragment); err != nil {
			return err
		}
		idx.entries[pos] = entry
		idx.norms[pos] = n
		return nil
	}
	idx.positions[id] = len(idx.entries)
	idx.entries = append(idx.entries, entry)
	idx.norms = append(idx.norms, n)
	return nil
}

// Merge returns a new index holding base's entries followed by addition's.
// An addition entry whose identity already exists in base replaces that
// entry at its original position. Either argument may be nil or empty, and
// neither is modified.
func Merge(base, addition *Index) (*Index, error) {
	if base.Len() > 0 && addition.Len() > 0 && base.dims != addition.dims {
		return nil, fmt.Errorf("%w: base %d, addition %d", ErrDimensionMismatch, base.dims, addition.dims)
	}

	merged := New(base.Dimensions())
	merged.entries = make([]core.Entry, 0, base.Len()+addition.Len())
	merged.norms = make([]float64, 0, base.Len()+addition.Len())
	if err := merged.MergeFrom(base); err != nil {
		return nil, err
	}
	if err := merged.MergeFrom(addition); err != nil {
		return nil, err
	}
	return merged, nil
}

// sameIdentity rejects two distinct fragment keys that hash to one ID.
func sameIdentity(existing, incoming core.Fragment) error {
	if existing.Key() != incoming.Key() {
		return fmt.Errorf("%w: %q and %q", ErrIDCollision, existing.Key(), incoming.Key())
	}
	return nil
}

// MergeFrom merges addition into idx in place with the same rules as Merge.
// Vectors are shared with addition, which must not be modified afterwards.
func (idx *Index) MergeFrom(addition *Index) error {
	if addition.Len() == 0 {
		if idx.Len() == 0 && addition.Dimensions() != 0 {
			idx.dims = addition.Dimensions()
		}
		return nil
	}
	if idx.Len() > 0 && idx.dims != addition.dims {
		return fmt.Errorf("%w: index %d, addition %d", ErrDimensionMismatch, idx.dims, addition.dims)
	}
	idx.dims = addition.dims

	for i, entry := range addition.entries {
		id := entry.Fragment.ID()
		if pos, ok := idx.positions[id]; ok {
			if err := sameIdentity(idx.entries[pos].Fragment, entry.Fragment); err != nil {
				return err
			}
			idx.entries[pos] = entry
			idx.norms[pos] = addition.norms[i]
			continue
		}
		idx.positions[id] = len(idx.entries)
		idx.entries = append(idx.entries, entry)
		idx.norms = append(idx.norms, addition.norms[i])
	}
	return nil
}

// Search returns up to k entries nearest to query, nearest first.
// An empty index, or k <= 0, yields no hits and no error.
func (idx *Index) Search(query []float32, k int) ([]Hit, error) {
	if k <= 0 || idx.Len() == 0 {
		return []Hit{}, nil
	}
	if err := core.ValidateVector(query); err != nil {
		return nil, err
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: index %d, query %d", ErrDimensionMismatch, idx.dims, len(query))
	}

	type scored struct {
		pos      int
		distance float64
	}
	qnorm := norm(query)
	scores := make([]scored, len(idx.entries))
	for i, entry := range idx.entries {
		scores[i] = scored{pos: i, distance: cosineDistance(query, qnorm, entry.Vector, idx.norms[i])}
	}
	slices.SortStableFunc(scores, func(a, b scored) int {
		return cmp.Compare(a.distance, b.distance)
	})

	k = min(k, len(scores))
	hits := make([]Hit, k)
	for i := 0; i < k; i++ {
		hits[i] = Hit{
			Fragment: idx.entries[scores[i].pos].Fragment,
			Distance: float32(scores[i].distance),
		}
	}
	return hits, nil
}

// Len returns the number of entries. A nil index has none.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Dimensions returns the vector length, or 0 when unknown.
func (idx *Index) Dimensions() int {
	if idx == nil {
		return 0
	}
	return idx.dims
}

// Fragments returns the fragments in insertion order.
func (idx *Index) Fragments() []core.Fragment {
	if idx == nil {
		return nil
	}
	out := make([]core.Fragment, len(idx.entries))
	for i, entry := range idx.entries {
		out[i] = entry.Fragment
	}
	return out
}

// Entries returns the entries in insertion order. Vectors are shared with
// the index and must not be modified.
func (idx *Index) Entries() []core.Entry {
	if idx == nil {
		return nil
	}
	return slices.Clone(idx.entries)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosineDistance treats a zero vector as orthogonal to everything.
func cosineDistance(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1 - dot/(anorm*bnorm)
}
