package chunking

import (
	"fmt"

	"github.com/poiesic/tabula/core"
)

const (
	// DefaultChunkSize is the default maximum fragment length in characters.
	DefaultChunkSize = 2000

	// DefaultChunkOverlap is the default overlap between consecutive fragments.
	DefaultChunkOverlap = 200
)

// DefaultSeparators lists split points from coarsest to finest.
// Character-level splitting is always the final fallback.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Span is a fragment together with its character offset in the input.
type Span struct {
	Text   string
	Offset int
}

// Splitter breaks text into fragments of at most Size characters.
type Splitter struct {
	size       int
	overlap    int
	separators [][]rune
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum fragment length in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		s.size = size
	}
}

// WithChunkOverlap sets how many characters consecutive fragments may share.
func WithChunkOverlap(overlap int) Option {
	return func(s *Splitter) {
		s.overlap = overlap
	}
}

// WithSeparators replaces the separator priority list. Empty strings are ignored.
func WithSeparators(separators []string) Option {
	return func(s *Splitter) {
		s.separators = toRunes(separators)
	}
}

// NewSplitter creates a splitter. Size must be positive and overlap must be
// in [0, size).
func NewSplitter(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		size:       DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: toRunes(DefaultSeparators),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", core.ErrConfiguration, s.size)
	}
	if s.overlap < 0 || s.overlap >= s.size {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", core.ErrConfiguration, s.size, s.overlap)
	}
	return s, nil
}

// Size returns the maximum fragment length.
func (s *Splitter) Size() int {
	return s.size
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split returns the fragments of text in order.
func (s *Splitter) Split(text string) []string {
	spans := s.SplitSpans(text)
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = sp.Text
	}
	return out
}

// SplitSpans returns the fragments of text with their offsets.
// Text that fits in one fragment is returned unchanged as a single span.
// Empty text yields no spans.
func (s *Splitter) SplitSpans(text string) []Span {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= s.size {
		return []Span{{Text: text, Offset: 0}}
	}

	pieces := s.pieces(runes, 0, len(runes), s.separators)
	return s.merge(runes, pieces)
}

// piece is a half-open rune range [start, end).
type piece struct {
	start, end int
}

func (p piece) len() int {
	return p.end - p.start
}

// pieces cuts runes[start:end] into ranges no longer than size, trying each
// separator in turn. Separators stay attached to the piece they terminate.
func (s *Splitter) pieces(runes []rune, start, end int, separators [][]rune) []piece {
	if end-start <= s.size {
		return []piece{{start, end}}
	}

	for i, sep := range separators {
		cuts := cutAfter(runes, start, end, sep)
		if len(cuts) < 2 {
			continue
		}
		out := make([]piece, 0, len(cuts))
		for _, c := range cuts {
			if c.len() <= s.size {
				out = append(out, c)
				continue
			}
			out = append(out, s.pieces(runes, c.start, c.end, separators[i+1:])...)
		}
		return out
	}

	// No separator left: cut at character level
	out := make([]piece, 0, (end-start)/s.size+1)
	for i := start; i < end; i += s.size {
		out = append(out, piece{i, min(i+s.size, end)})
	}
	return out
}

// merge packs consecutive pieces into fragments, carrying up to overlap
// characters of trailing pieces into the next fragment.
func (s *Splitter) merge(runes []rune, pieces []piece) []Span {
	var (
		spans  []Span
		window []piece
		total  int
	)

	emit := func() {
		first, last := window[0], window[len(window)-1]
		spans = append(spans, Span{
			Text:   string(runes[first.start:last.end]),
			Offset: first.start,
		})
	}

	for _, p := range pieces {
		n := p.len()
		if total+n > s.size && len(window) > 0 {
			emit()
			for len(window) > 0 && (total > s.overlap || total+n > s.size) {
				total -= window[0].len()
				window = window[1:]
			}
		}
		window = append(window, p)
		total += n
	}
	if len(window) > 0 {
		emit()
	}
	return spans
}

// Reassemble concatenates spans produced by SplitSpans, dropping the
// characters each span shares with its predecessor.
func Reassemble(spans []Span) string {
	var out []rune
	covered := 0
	for _, sp := range spans {
		r := []rune(sp.Text)
		skip := covered - sp.Offset
		if skip < 0 {
			skip = 0
		}
		if skip < len(r) {
			out = append(out, r[skip:]...)
		}
		if end := sp.Offset + len(r); end > covered {
			covered = end
		}
	}
	return string(out)
}

// cutAfter splits runes[start:end] after every occurrence of sep.
func cutAfter(runes []rune, start, end int, sep []rune) []piece {
	if len(sep) == 0 {
		return nil
	}
	var cuts []piece
	from := start
	for i := start; i+len(sep) <= end; {
		if hasRunesAt(runes, i, sep) {
			i += len(sep)
			cuts = append(cuts, piece{from, i})
			from = i
			continue
		}
		i++
	}
	if from < end {
		cuts = append(cuts, piece{from, end})
	}
	return cuts
}

func hasRunesAt(runes []rune, at int, sep []rune) bool {
	for j, r := range sep {
		if runes[at+j] != r {
			return false
		}
	}
	return true
}

func toRunes(separators []string) [][]rune {
	out := make([][]rune, 0, len(separators))
	for _, sep := range separators {
		if sep == "" {
			continue
		}
		out = append(out, []rune(sep))
	}
	return out
}
