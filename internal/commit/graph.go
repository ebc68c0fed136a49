// internal/commit/graph.go
package commit

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"strings"
	"time"

	baterrors "bat/internal/errors"
	"bat/shared/types"
	"bat/shared/utils"

	"github.com/google/renameio"
	"go.uber.org/zap"
)

// Graph creates commits and maintains the HEAD pointer. HEAD and the staging
// index are re-read on every call.
type Graph struct {
	objects  ObjectStore
	index    Stager
	headPath string
	now      func() time.Time
	logger   *zap.Logger
}

type Option func(*Graph)

// WithClock overrides the commit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Graph) { g.now = now }
}

func NewGraph(objects ObjectStore, index Stager, headPath string, logger *zap.Logger, opts ...Option) *Graph {
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Graph{
		objects:  objects,
		index:    index,
		headPath: headPath,
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Commit records the current staging snapshot as a new commit on top of
// HEAD, advances HEAD and clears the index. An empty index yields a commit
// with no files.
func (g *Graph) Commit(message string) (*Commit, error) {
	files, err := g.index.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("reading staging index: %w", err)
	}

	parent, err := g.Head()
	if err != nil {
		return nil, err
	}

	c := &Commit{
		Timestamp: g.now().UTC().Format(TimestampLayout),
		Message:   message,
		Files:     append([]shared.Entry{}, files...),
		Parent:    parent,
	}

	data, err := c.Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding commit: %w", err)
	}

	hash, err := g.objects.Store(data)
	if err != nil {
		return nil, fmt.Errorf("storing commit: %w", err)
	}
	c.Hash = hash

	if err := g.SetHead(hash); err != nil {
		return nil, err
	}

	if err := g.index.Clear(); err != nil {
		return nil, fmt.Errorf("clearing staging index: %w", err)
	}

	g.logger.Debug("created commit",
		zap.String("hash", hash),
		zap.String("parent", parent),
		zap.Int("files", len(c.Files)))

	return c, nil
}

// Head returns the hash of the latest commit, or "" before the first one.
func (g *Graph) Head() (string, error) {
	data, err := os.ReadFile(g.headPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", baterrors.HeadRead(baterrors.NotInitialized(g.headPath, err))
		}
		return "", baterrors.HeadRead(err)
	}

	head := strings.TrimSpace(string(data))
	if head != "" && !utils.IsValidHash(head) {
		return "", baterrors.HeadRead(baterrors.InvalidHash(head))
	}
	return head, nil
}

func (g *Graph) SetHead(hash string) error {
	if err := renameio.WriteFile(g.headPath, []byte(hash), 0644); err != nil {
		return fmt.Errorf("writing HEAD: %w", err)
	}
	return nil
}

// Resolve loads the commit stored under hash. Missing objects and objects
// that are not commit records both yield COMMIT_NOT_FOUND.
func (g *Graph) Resolve(hash string) (*Commit, error) {
	if !utils.IsValidHash(hash) {
		return nil, baterrors.CommitNotFound(hash, baterrors.InvalidHash(hash))
	}

	data, err := g.objects.Get(hash)
	if err != nil {
		return nil, baterrors.CommitNotFound(hash, err)
	}

	c, err := Decode(data)
	if err != nil {
		return nil, baterrors.CommitNotFound(hash, err)
	}
	c.Hash = hash
	return c, nil
}

// Walk yields commits from start along parent links, newest first. The
// sequence is recomputed from the store on every iteration and ends after
// the root commit, or with a HISTORY_CYCLE error if a hash repeats.
func (g *Graph) Walk(start string) iter.Seq2[*Commit, error] {
	return func(yield func(*Commit, error) bool) {
		seen := make(map[string]bool)
		for hash := start; hash != ""; {
			if seen[hash] {
				yield(nil, baterrors.HistoryCycle(hash))
				return
			}
			seen[hash] = true

			c, err := g.Resolve(hash)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(c, nil) {
				return
			}
			hash = c.Parent
		}
	}
}

// Log returns the history reachable from HEAD, newest first.
func (g *Graph) Log() ([]*Commit, error) {
	head, err := g.Head()
	if err != nil {
		return nil, err
	}

	var commits []*Commit
	for c, err := range g.Walk(head) {
		if err != nil {
			return nil, fmt.Errorf("walking history: %w", err)
		}
		commits = append(commits, c)
	}
	return commits, nil
}
