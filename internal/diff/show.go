// internal/diff/show.go
package diff

import (
	"fmt"
	"io"
	"strings"

	"bat/internal/commit"
	baterrors "bat/internal/errors"
	"bat/shared/types"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// FileStatus says how a file in a commit relates to the parent commit
type FileStatus string

const (
	StatusInitial  FileStatus = "initial"  // commit has no parent
	StatusNew      FileStatus = "new"      // path absent from the parent
	StatusModified FileStatus = "modified" // diffed against the parent
)

type FileDiff struct {
	Path   string
	Hash   string
	Status FileStatus
	Result *DiffResult // nil unless Status is StatusModified
}

type CommitDiff struct {
	Commit *commit.Commit
	Files  []FileDiff
}

type CommitResolver interface {
	Resolve(hash string) (*commit.Commit, error)
}

type ObjectGetter interface {
	Get(hash string) ([]byte, error)
}

// Differ reconstructs the content a commit replaced and diffs against it.
type Differ struct {
	commits CommitResolver
	objects ObjectGetter
	engine  *Engine
	logger  *zap.Logger
}

func NewDiffer(commits CommitResolver, objects ObjectGetter, logger *zap.Logger) *Differ {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Differ{
		commits: commits,
		objects: objects,
		engine:  NewEngine(),
		logger:  logger,
	}
}

// Diff computes the changes hash introduced relative to its parent. Files are
// reported in the order the commit lists them; when the parent lists a path
// more than once, the first entry is used.
func (d *Differ) Diff(hash string) (*CommitDiff, error) {
	c, err := d.commits.Resolve(hash)
	if err != nil {
		return nil, err
	}

	var parent *commit.Commit
	if c.Parent != "" {
		parent, err = d.commits.Resolve(c.Parent)
		if err != nil {
			return nil, baterrors.MissingParent(hash, c.Parent, err)
		}
	}

	result := &CommitDiff{Commit: c}
	for _, f := range c.Files {
		fd, err := d.diffFile(f, parent)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, fd)
	}

	return result, nil
}

func (d *Differ) diffFile(f shared.Entry, parent *commit.Commit) (FileDiff, error) {
	fd := FileDiff{Path: f.Path, Hash: f.Hash}

	current, err := d.objects.Get(f.Hash)
	if err != nil {
		return fd, fmt.Errorf("reading %s: %w", f.Path, err)
	}

	if parent == nil {
		fd.Status = StatusInitial
		return fd, nil
	}

	prev, ok := shared.Lookup(parent.Files, f.Path)
	if !ok {
		fd.Status = StatusNew
		return fd, nil
	}

	old, err := d.objects.Get(prev.Hash)
	if err != nil {
		if !baterrors.IsType(err, baterrors.ErrorTypeObjectNotFound) {
			return fd, fmt.Errorf("reading %s from parent: %w", f.Path, err)
		}
		d.logger.Warn("parent content missing, treating file as new",
			zap.String("path", f.Path),
			zap.String("hash", prev.Hash))
		fd.Status = StatusNew
		return fd, nil
	}

	fd.Status = StatusModified
	fd.Result = d.engine.Diff(old, current)
	return fd, nil
}

// Render writes cd for a terminal: insertions green, deletions red and
// unchanged text faint. Each modified file ends with its line counts.
func Render(w io.Writer, cd *CommitDiff) {
	header := color.New(color.FgCyan)
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)
	same := color.New(color.Faint)

	fmt.Fprintf(w, "Changes in commit %s:\n", cd.Commit.Hash)
	for _, f := range cd.Files {
		header.Fprintf(w, "File: %s\n", f.Path)

		switch f.Status {
		case StatusInitial:
			fmt.Fprintln(w, "First Commit")
		case StatusNew:
			fmt.Fprintln(w, "New File in this commit")
		case StatusModified:
			for _, seg := range f.Result.Segments {
				for _, line := range splitLines(seg.Text) {
					text := strings.TrimSuffix(line, "\n")
					switch seg.Op {
					case Insert:
						added.Fprintln(w, "++"+text)
					case Delete:
						removed.Fprintln(w, "--"+text)
					default:
						same.Fprintln(w, "  "+text)
					}
				}
			}
			same.Fprintf(w, "(+%d -%d)\n", f.Result.Stats.Additions, f.Result.Stats.Deletions)
		}
	}
}
