// internal/staging/index.go
package staging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	baterrors "bat/internal/errors"
	"bat/shared/types"

	"github.com/google/renameio"
	"go.uber.org/zap"
)

// Index is the persisted list of entries that the next commit will record.
// Every call re-reads the file; nothing is cached between calls, and
// concurrent writers are not coordinated.
type Index struct {
	path   string
	logger *zap.Logger
}

func NewIndex(path string, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		path:   path,
		logger: logger,
	}
}

// Stage appends an entry. Staging a path twice keeps both entries.
func (i *Index) Stage(path, hash string) error {
	entries, err := i.load()
	if err != nil {
		return err
	}

	entries = append(entries, shared.Entry{Path: path, Hash: hash})
	if err := i.save(entries); err != nil {
		return err
	}

	i.logger.Debug("staged entry",
		zap.String("path", path),
		zap.String("hash", hash),
		zap.Int("staged", len(entries)))
	return nil
}

// Snapshot returns the staged entries in insertion order.
func (i *Index) Snapshot() ([]shared.Entry, error) {
	return i.load()
}

// Clear persists an empty index.
func (i *Index) Clear() error {
	return i.save(nil)
}

func (i *Index) load() ([]shared.Entry, error) {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, baterrors.NotInitialized(filepath.Dir(i.path), err)
		}
		return nil, fmt.Errorf("reading staging index: %w", err)
	}

	var entries []shared.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, baterrors.IndexCorrupt(err)
	}

	for n, e := range entries {
		if e.Path == "" || e.Hash == "" {
			return nil, baterrors.IndexCorrupt(fmt.Errorf("entry %d is missing path or hash", n))
		}
	}

	return entries, nil
}

func (i *Index) save(entries []shared.Entry) error {
	if entries == nil {
		entries = []shared.Entry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling staging index: %w", err)
	}

	if err := renameio.WriteFile(i.path, data, 0644); err != nil {
		return fmt.Errorf("writing staging index: %w", err)
	}
	return nil
}
