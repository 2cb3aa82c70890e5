package core

import (
	"encoding/binary"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// FragmentMetadata locates a fragment inside the tabular source it came from.
type FragmentMetadata struct {
	SourceFile  string // Absolute, cleaned path of the source file
	RowIndex    int    // Zero-based data row index across the whole file
	ChunkIndex  int    // Zero-based number of the streamed read chunk holding the row
	SplitIndex  int    // Ordinal of the fragment within its row
	SplitOffset int    // Character offset of the fragment within the row text
}

// Fragment is the atomic unit of embedding and retrieval.
// Fragments are immutable once created.
type Fragment struct {
	Content  string
	Metadata FragmentMetadata
}

// Key returns the identity of the fragment as "file:row:chunk:offset".
func (f Fragment) Key() string {
	var b strings.Builder
	b.WriteString(f.Metadata.SourceFile)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(f.Metadata.RowIndex))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(f.Metadata.ChunkIndex))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(f.Metadata.SplitOffset))
	return b.String()
}

// SourceName returns the base name of the source file for display.
func (f Fragment) SourceName() string {
	return filepath.Base(f.Metadata.SourceFile)
}

// ID returns the content-based identifier derived from Key.
func (f Fragment) ID() ID {
	return IDFromContent(f.Key())
}

// Entry pairs a fragment with its embedding vector.
type Entry struct {
	Fragment Fragment
	Vector   []float32
}

// MetricCosine names the cosine distance metric.
const MetricCosine = "cosine"

// Manifest attributes a persisted index to the embedding model that produced it.
type Manifest struct {
	EmbeddingModel string
	Dimensions     int
	Metric         string
	Count          int
	CreatedAt      time.Time
}

// ConversationTurn is one question/answer exchange in a session.
type ConversationTurn struct {
	UserQuery string
	Answer    string
	Sources   []Fragment
	Timestamp time.Time
}
