package storage

import (
	"testing"
	"time"

	"github.com/poiesic/tabula/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry core.Entry
	}{
		{
			name: "first fragment of a row",
			entry: core.Entry{
				Fragment: core.Fragment{
					Content:  "school: Lincoln\ndistrict: North",
					Metadata: core.FragmentMetadata{SourceFile: "sessions.csv"},
				},
				Vector: []float32{0.1, -0.2, 0.3},
			},
		},
		{
			name: "later split with unicode",
			entry: core.Entry{
				Fragment: core.Fragment{
					Content: "notes: élève très motivé",
					Metadata: core.FragmentMetadata{
						SourceFile:  "journey.xlsx",
						RowIndex:    2041,
						ChunkIndex:  1,
						SplitIndex:  3,
						SplitOffset: 5400,
					},
				},
				Vector: []float32{1, 0, 0, 0},
			},
		},
		{
			name: "empty vector",
			entry: core.Entry{
				Fragment: core.Fragment{Content: "x", Metadata: core.FragmentMetadata{SourceFile: "a.csv"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalEntry(tt.entry)
			require.NotEmpty(t, data)
			assert.Len(t, data, EntryMUS.Size(tt.entry))

			decoded, err := UnmarshalEntry(data)
			require.NoError(t, err)
			assert.Equal(t, tt.entry.Fragment, decoded.Fragment)
			assert.Equal(t, len(tt.entry.Vector), len(decoded.Vector))
			for i := range tt.entry.Vector {
				assert.Equal(t, tt.entry.Vector[i], decoded.Vector[i])
			}

			n, err := EntryMUS.Skip(data)
			require.NoError(t, err)
			assert.Equal(t, len(data), n)
		})
	}
}

func TestUnmarshalEntry_Truncated(t *testing.T) {
	entry := core.Entry{
		Fragment: core.Fragment{Content: "school: Lincoln", Metadata: core.FragmentMetadata{SourceFile: "a.csv"}},
		Vector:   []float32{0.5, 0.5},
	}
	data := MarshalEntry(entry)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"cut in vector", data[:len(data)-2]},
		{"cut in content", data[:3]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEntry(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestMarshalUnmarshalManifest(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name     string
		manifest core.Manifest
	}{
		{
			name: "full manifest",
			manifest: core.Manifest{
				EmbeddingModel: "text-embedding-3-small",
				Dimensions:     1536,
				Metric:         core.MetricCosine,
				Count:          120000,
				CreatedAt:      now,
			},
		},
		{
			name:     "zero time",
			manifest: core.Manifest{EmbeddingModel: "nomic-embed-text", Dimensions: 768},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalManifest(tt.manifest)
			decoded, err := UnmarshalManifest(data)
			require.NoError(t, err)
			assert.Equal(t, tt.manifest, *decoded)
		})
	}
}

func TestUnmarshalManifest_Invalid(t *testing.T) {
	_, err := UnmarshalManifest([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
