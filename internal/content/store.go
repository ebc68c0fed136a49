// internal/content/store.go
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	baterrors "bat/internal/errors"
	"bat/shared/utils"

	"github.com/google/renameio"
)

// FileStore keeps one file per object, named by its hash, in a flat directory.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating object directory: %w", err)
	}

	return &FileStore{root: root}, nil
}

func (s *FileStore) path(hash string) string {
	return filepath.Join(s.root, hash)
}

// Put writes data under hash. Concurrent writers of the same hash write the
// same bytes, and the rename keeps readers from seeing a partial file.
func (s *FileStore) Put(hash string, data []byte) error {
	path := s.path(hash)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing object %s: %w", hash, err)
	}
	return nil
}

func (s *FileStore) Get(hash string) ([]byte, error) {
	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, baterrors.ObjectNotFound(hash)
		}
		return nil, fmt.Errorf("reading object %s: %w", hash, err)
	}
	return data, nil
}

func (s *FileStore) Exists(hash string) (bool, error) {
	_, err := os.Stat(s.path(hash))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// List returns the hashes in the object directory in name order. Leftover
// temporary files from interrupted writes are skipped.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}

	var hashes []string
	for _, e := range entries {
		if e.Type().IsRegular() && utils.IsValidHash(e.Name()) {
			hashes = append(hashes, e.Name())
		}
	}
	return hashes, nil
}

func (s *FileStore) Close() error { return nil }
