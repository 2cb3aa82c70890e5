package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantSame bool
	}{
		{
			name:     "same content produces same ID",
			content:  "test content",
			wantSame: true,
		},
		{
			name:     "empty string",
			content:  "",
			wantSame: true,
		},
		{
			name:     "long content",
			content:  "This is a much longer piece of content that should still hash consistently",
			wantSame: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if tt.wantSame && id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestFragment_Key(t *testing.T) {
	tests := []struct {
		name     string
		fragment Fragment
		want     string
	}{
		{
			name: "first split of first row",
			fragment: Fragment{
				Content:  "school: Lincoln",
				Metadata: FragmentMetadata{SourceFile: "sessions.csv"},
			},
			want: "sessions.csv:0:0:0",
		},
		{
			name: "later split",
			fragment: Fragment{
				Content: "tail",
				Metadata: FragmentMetadata{
					SourceFile:  "report.csv",
					RowIndex:    2041,
					ChunkIndex:  1,
					SplitIndex:  3,
					SplitOffset: 5400,
				},
			},
			want: "report.csv:2041:1:5400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fragment.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFragment_IDIgnoresContent(t *testing.T) {
	md := FragmentMetadata{SourceFile: "a.csv", RowIndex: 4}
	a := Fragment{Content: "one", Metadata: md}
	b := Fragment{Content: "two", Metadata: md}

	if a.ID() != b.ID() {
		t.Errorf("fragments with the same identity should share an ID")
	}

	b.Metadata.SplitOffset = 10
	if a.ID() == b.ID() {
		t.Errorf("fragments with different split offsets should not share an ID")
	}
}
