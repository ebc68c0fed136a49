package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineDiff(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name      string
		old       string
		new       string
		want      []Segment
		additions int
		deletions int
	}{
		{
			name: "unchanged",
			old:  "x",
			new:  "x",
			want: []Segment{{Op: Equal, Text: "x"}},
		},
		{
			name: "changed line",
			old:  "line1\nline2\n",
			new:  "line1\nline3\n",
			want: []Segment{
				{Op: Equal, Text: "line1\n"},
				{Op: Delete, Text: "line2\n"},
				{Op: Insert, Text: "line3\n"},
			},
			additions: 1,
			deletions: 1,
		},
		{
			name: "appended lines",
			old:  "a\n",
			new:  "a\nb\nc\n",
			want: []Segment{
				{Op: Equal, Text: "a\n"},
				{Op: Insert, Text: "b\nc\n"},
			},
			additions: 2,
		},
		{
			name: "removed middle",
			old:  "a\nb\nc\n",
			new:  "a\nc\n",
			want: []Segment{
				{Op: Equal, Text: "a\n"},
				{Op: Delete, Text: "b\n"},
				{Op: Equal, Text: "c\n"},
			},
			deletions: 1,
		},
		{
			name: "single line without newline",
			old:  "hello",
			new:  "hello world",
			want: []Segment{
				{Op: Delete, Text: "hello"},
				{Op: Insert, Text: "hello world"},
			},
			additions: 1,
			deletions: 1,
		},
		{
			name:      "from empty",
			old:       "",
			new:       "a\nb\n",
			want:      []Segment{{Op: Insert, Text: "a\nb\n"}},
			additions: 2,
		},
		{
			name:      "to empty",
			old:       "a\n",
			new:       "",
			want:      []Segment{{Op: Delete, Text: "a\n"}},
			deletions: 1,
		},
		{
			name: "both empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Diff([]byte(tt.old), []byte(tt.new))
			assert.Equal(t, tt.want, result.Segments)
			assert.Equal(t, tt.additions, result.Stats.Additions)
			assert.Equal(t, tt.deletions, result.Stats.Deletions)
			assert.Equal(t, tt.additions+tt.deletions, result.Stats.Changes)
		})
	}
}

func TestEngineDiffReconstructs(t *testing.T) {
	oldText := "one\ntwo\nthree\nfour\n"
	newText := "zero\none\nthree\nfour\nfive"

	result := NewEngine().Diff([]byte(oldText), []byte(newText))

	var gotOld, gotNew string
	for _, seg := range result.Segments {
		if seg.Op != Insert {
			gotOld += seg.Text
		}
		if seg.Op != Delete {
			gotNew += seg.Text
		}
	}
	assert.Equal(t, oldText, gotOld)
	assert.Equal(t, newText, gotNew)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a"}, splitLines("a"))
	assert.Equal(t, []string{"a\n"}, splitLines("a\n"))
	assert.Equal(t, []string{"a\n", "\n", "b"}, splitLines("a\n\nb"))
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "equal", Equal.String())
	assert.Equal(t, "insert", Insert.String())
	assert.Equal(t, "delete", Delete.String())
}
