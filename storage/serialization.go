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
	"fmt"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/tabula/core"
)

// Serializers for the persisted types. Fields are written in declaration
// order; times are stored as Unix microseconds.
var (
	FragmentMUS mus.Serializer[core.Fragment] = fragmentMUS{}
	VectorMUS   mus.Serializer[[]float32]     = vectorMUS{}
	EntryMUS    mus.Serializer[core.Entry]    = entryMUS{}
	ManifestMUS mus.Serializer[core.Manifest] = manifestMUS{}
)

type fragmentMUS struct{}

func (fragmentMUS) Marshal(v core.Fragment, bs []byte) (n int) {
	n = ord.String.Marshal(v.Content, bs)
	n += ord.String.Marshal(v.Metadata.SourceFile, bs[n:])
	n += varint.Int.Marshal(v.Metadata.RowIndex, bs[n:])
	n += varint.Int.Marshal(v.Metadata.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(v.Metadata.SplitIndex, bs[n:])
	return n + varint.Int.Marshal(v.Metadata.SplitOffset, bs[n:])
}

func (fragmentMUS) Unmarshal(bs []byte) (v core.Fragment, n int, err error) {
	var n1 int
	if v.Content, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Metadata.SourceFile, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		n += n1
		return
	}
	n += n1
	ints := []*int{&v.Metadata.RowIndex, &v.Metadata.ChunkIndex, &v.Metadata.SplitIndex, &v.Metadata.SplitOffset}
	for _, p := range ints {
		*p, n1, err = varint.Int.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (fragmentMUS) Size(v core.Fragment) (size int) {
	size = ord.String.Size(v.Content)
	size += ord.String.Size(v.Metadata.SourceFile)
	size += varint.Int.Size(v.Metadata.RowIndex)
	size += varint.Int.Size(v.Metadata.ChunkIndex)
	size += varint.Int.Size(v.Metadata.SplitIndex)
	return size + varint.Int.Size(v.Metadata.SplitOffset)
}

func (fragmentMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	for i := 0; i < 2; i++ {
		n1, err = ord.String.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	for i := 0; i < 4; i++ {
		n1, err = varint.Int.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

// vectorMUS writes the length followed by fixed-width float32 values.
type vectorMUS struct{}

func (vectorMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.PositiveInt.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (vectorMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	if length < 0 || length > len(bs)-n {
		err = fmt.Errorf("%w: vector length %d", ErrTruncatedData, length)
		return
	}
	v = make([]float32, length)
	var n1 int
	for i := range v {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (vectorMUS) Size(v []float32) (size int) {
	size = varint.PositiveInt.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

func (vectorMUS) Skip(bs []byte) (n int, err error) {
	length, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	for i := 0; i < length; i++ {
		n1, err = raw.Float32.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

type entryMUS struct{}

func (entryMUS) Marshal(v core.Entry, bs []byte) (n int) {
	n = FragmentMUS.Marshal(v.Fragment, bs)
	return n + VectorMUS.Marshal(v.Vector, bs[n:])
}

func (entryMUS) Unmarshal(bs []byte) (v core.Entry, n int, err error) {
	if v.Fragment, n, err = FragmentMUS.Unmarshal(bs); err != nil {
		return
	}
	var n1 int
	v.Vector, n1, err = VectorMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (entryMUS) Size(v core.Entry) int {
	return FragmentMUS.Size(v.Fragment) + VectorMUS.Size(v.Vector)
}

func (entryMUS) Skip(bs []byte) (n int, err error) {
	if n, err = FragmentMUS.Skip(bs); err != nil {
		return
	}
	n1, err := VectorMUS.Skip(bs[n:])
	return n + n1, err
}

type manifestMUS struct{}

func (manifestMUS) Marshal(v core.Manifest, bs []byte) (n int) {
	n = ord.String.Marshal(v.EmbeddingModel, bs)
	n += varint.Int.Marshal(v.Dimensions, bs[n:])
	n += ord.String.Marshal(v.Metric, bs[n:])
	n += varint.Int.Marshal(v.Count, bs[n:])
	return n + varint.Int64.Marshal(unixMicro(v.CreatedAt), bs[n:])
}

func (manifestMUS) Unmarshal(bs []byte) (v core.Manifest, n int, err error) {
	var n1 int
	if v.EmbeddingModel, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Dimensions, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Metric, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	micros, n1, err := varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if micros != 0 {
		v.CreatedAt = time.UnixMicro(micros).UTC()
	}
	return
}

func (manifestMUS) Size(v core.Manifest) (size int) {
	size = ord.String.Size(v.EmbeddingModel)
	size += varint.Int.Size(v.Dimensions)
	size += ord.String.Size(v.Metric)
	size += varint.Int.Size(v.Count)
	return size + varint.Int64.Size(unixMicro(v.CreatedAt))
}

func (manifestMUS) Skip(bs []byte) (n int, err error) {
	skips := []func([]byte) (int, error){
		ord.String.Skip, varint.Int.Skip, ord.String.Skip, varint.Int.Skip, varint.Int64.Skip,
	}
	var n1 int
	for _, skip := range skips {
		n1, err = skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func unixMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

// MarshalEntry serializes an Entry to bytes.
func MarshalEntry(entry core.Entry) []byte {
	buf := make([]byte, EntryMUS.Size(entry))
	EntryMUS.Marshal(entry, buf)
	return buf
}

// UnmarshalEntry deserializes an Entry from bytes.
func UnmarshalEntry(data []byte) (core.Entry, error) {
	entry, _, err := EntryMUS.Unmarshal(data)
	if err != nil {
		return core.Entry{}, fmt.Errorf("%w: entry: %w", ErrSerializationFailed, err)
	}
	return entry, nil
}

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(manifest core.Manifest) []byte {
	buf := make([]byte, ManifestMUS.Size(manifest))
	ManifestMUS.Marshal(manifest, buf)
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*core.Manifest, error) {
	manifest, _, err := ManifestMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrSerializationFailed, err)
	}
	return &manifest, nil
}
