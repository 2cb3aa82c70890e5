package chunking

import (
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/tabula/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSplitter(t *testing.T, size, overlap int) *Splitter {
	t.Helper()
	s, err := NewSplitter(WithChunkSize(size), WithChunkOverlap(overlap))
	require.NoError(t, err)
	return s
}

func assertWellFormed(t *testing.T, s *Splitter, text string, spans []Span) {
	t.Helper()
	runes := []rune(text)
	for i, sp := range spans {
		n := utf8.RuneCountInString(sp.Text)
		assert.LessOrEqual(t, n, s.Size(), "span %d exceeds size", i)
		assert.Greater(t, n, 0, "span %d is empty", i)
		require.LessOrEqual(t, sp.Offset+n, len(runes))
		assert.Equal(t, string(runes[sp.Offset:sp.Offset+n]), sp.Text, "span %d is not a substring at its offset", i)

		if i > 0 {
			prev := spans[i-1]
			prevEnd := prev.Offset + utf8.RuneCountInString(prev.Text)
			assert.Greater(t, sp.Offset, prev.Offset, "span %d does not advance", i)
			assert.LessOrEqual(t, sp.Offset, prevEnd, "gap before span %d", i)
			assert.LessOrEqual(t, prevEnd-sp.Offset, s.Overlap(), "span %d overlaps too much", i)
		}
	}
	assert.Equal(t, text, Reassemble(spans))
}

func TestNewSplitter_Defaults(t *testing.T) {
	s, err := NewSplitter()
	require.NoError(t, err)
	assert.Equal(t, DefaultChunkSize, s.Size())
	assert.Equal(t, DefaultChunkOverlap, s.Overlap())
}

func TestNewSplitter_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap above size", 10, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSplitter(WithChunkSize(tt.size), WithChunkOverlap(tt.overlap))
			assert.Nil(t, s)
			assert.ErrorIs(t, err, core.ErrConfiguration)
		})
	}
}

func TestSplit_ShortInputSingleFragment(t *testing.T) {
	s := newTestSplitter(t, 100, 10)
	text := "  school: Lincoln Elementary\nscore: 42 \n"

	got := s.Split(text)
	require.Len(t, got, 1)
	assert.Equal(t, text, got[0], "short input must not be trimmed")
}

func TestSplit_Empty(t *testing.T) {
	s := newTestSplitter(t, 100, 10)
	assert.Empty(t, s.Split(""))
}

func TestSplitSpans_PrefersCoarseSeparators(t *testing.T) {
	s := newTestSplitter(t, 30, 0)
	text := "first paragraph is here.\n\nsecond paragraph follows."

	spans := s.SplitSpans(text)
	require.Len(t, spans, 2)
	assert.Equal(t, "first paragraph is here.\n\n", spans[0].Text)
	assert.Equal(t, "second paragraph follows.", spans[1].Text)
	assert.Equal(t, 26, spans[1].Offset)
	assertWellFormed(t, s, text, spans)
}

func TestSplitSpans_Overlap(t *testing.T) {
	s := newTestSplitter(t, 20, 8)
	text := "alpha beta gamma delta epsilon zeta eta theta iota kappa"

	spans := s.SplitSpans(text)
	require.Greater(t, len(spans), 2)
	assertWellFormed(t, s, text, spans)

	// Word boundaries are kept, so some overlap must be shared
	shared := 0
	for i := 1; i < len(spans); i++ {
		prevEnd := spans[i-1].Offset + len([]rune(spans[i-1].Text))
		shared += prevEnd - spans[i].Offset
	}
	assert.Greater(t, shared, 0)
}

func TestSplitSpans_CharacterFallback(t *testing.T) {
	s := newTestSplitter(t, 7, 2)
	text := strings.Repeat("x", 50)

	spans := s.SplitSpans(text)
	assertWellFormed(t, s, text, spans)
}

func TestSplitSpans_Unicode(t *testing.T) {
	s := newTestSplitter(t, 5, 1)
	text := "école über naïve façade 日本語のテキスト"

	spans := s.SplitSpans(text)
	assertWellFormed(t, s, text, spans)
}

func TestSplitSpans_ReconstructsRandomInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []string{"a", "b", "c", " ", " ", "\n", "\n\n", ". ", "é", "z"}

	for i := 0; i < 200; i++ {
		var b strings.Builder
		n := rng.Intn(400)
		for j := 0; j < n; j++ {
			b.WriteString(alphabet[rng.Intn(len(alphabet))])
		}
		text := b.String()

		size := 1 + rng.Intn(60)
		overlap := rng.Intn(size)
		s := newTestSplitter(t, size, overlap)

		spans := s.SplitSpans(text)
		if text == "" {
			assert.Empty(t, spans)
			continue
		}
		assertWellFormed(t, s, text, spans)
	}
}

func TestReassemble_Empty(t *testing.T) {
	assert.Equal(t, "", Reassemble(nil))
}
