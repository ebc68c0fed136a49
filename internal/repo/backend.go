package repo

import (
	"fmt"
	"path/filepath"

	"bat/internal/config"
	"bat/internal/content"
	"bat/internal/storage"
)

// objectPrefix namespaces object keys in the badger backend.
const objectPrefix = "object"

// openBackend returns the raw object store selected by cfg. The file backend
// is the documented objects/<hash> layout; badger keeps objects in
// .bat/db instead.
func openBackend(batDir string, cfg *config.Config) (content.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		return content.NewFileStore(filepath.Join(batDir, ObjectsDir))
	case config.BackendBadger:
		return storage.OpenBadgerStore(filepath.Join(batDir, DBDir), objectPrefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
