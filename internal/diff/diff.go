// internal/diff/diff.go
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Op classifies a segment of a diff
type Op int

const (
	Equal Op = iota
	Insert
	Delete
)

func (o Op) String() string {
	switch o {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "equal"
	}
}

// Segment is a run of consecutive lines sharing one Op. Text keeps the
// original line endings.
type Segment struct {
	Op   Op
	Text string
}

// DiffResult contains the complete diff information
type DiffResult struct {
	Segments []Segment
	Stats    struct {
		Additions int
		Deletions int
		Changes   int
	}
}

// Engine provides line diffing
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Diff generates a line-by-line diff between two contents
func (e *Engine) Diff(oldContent, newContent []byte) *DiffResult {
	oldLines := splitLines(string(oldContent))
	newLines := splitLines(string(newContent))

	result := &DiffResult{}
	matcher := difflib.NewMatcher(oldLines, newLines)

	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'e':
			result.add(Equal, oldLines[op.I1:op.I2])
		case 'd':
			result.add(Delete, oldLines[op.I1:op.I2])
		case 'i':
			result.add(Insert, newLines[op.J1:op.J2])
		case 'r':
			result.add(Delete, oldLines[op.I1:op.I2])
			result.add(Insert, newLines[op.J1:op.J2])
		}
	}
	result.Stats.Changes = result.Stats.Additions + result.Stats.Deletions

	return result
}

// add appends lines as a segment, merging into the previous one when the op
// is the same.
func (r *DiffResult) add(op Op, lines []string) {
	if len(lines) == 0 {
		return
	}

	switch op {
	case Insert:
		r.Stats.Additions += len(lines)
	case Delete:
		r.Stats.Deletions += len(lines)
	}

	text := strings.Join(lines, "")
	if n := len(r.Segments); n > 0 && r.Segments[n-1].Op == op {
		r.Segments[n-1].Text += text
		return
	}
	r.Segments = append(r.Segments, Segment{Op: op, Text: text})
}

// splitLines splits after each newline; a final line without one is kept.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
