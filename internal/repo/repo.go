// internal/repo/repo.go
package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"bat/internal/commit"
	"bat/internal/config"
	"bat/internal/diff"
	baterrors "bat/internal/errors"
	"bat/internal/safe"
	"bat/internal/staging"

	"go.uber.org/zap"
)

// Initialize creates the repository layout under root. The objects
// directory is always ensured; HEAD and the index are only created when
// absent, and an existing repository yields ALREADY_INITIALIZED.
func Initialize(root string) error {
	batDir := Dir(root)

	if err := os.MkdirAll(filepath.Join(batDir, ObjectsDir), 0755); err != nil {
		return fmt.Errorf("creating objects directory: %w", err)
	}

	if err := createExclusive(filepath.Join(batDir, HeadFile), nil); err != nil {
		return err
	}
	if err := createExclusive(filepath.Join(batDir, IndexFile), []byte("[]")); err != nil {
		return err
	}

	return nil
}

func createExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return baterrors.AlreadyInitialized(filepath.Dir(filepath.Dir(path)))
		}
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Open initializes root if needed and wires the object store, staging index,
// commit graph and differ.
func Open(root string, cfg *config.Config, logger *zap.Logger) (*Repo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = config.Default()
	}

	absPath, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("getting absolute path for root %s: %w", root, err)
	}

	if err := Initialize(absPath); err != nil {
		if !errors.Is(err, baterrors.ErrAlreadyInitialized) {
			return nil, fmt.Errorf("initializing repository: %w", err)
		}
		logger.Debug("repository already initialized", zap.String("root", absPath))
	} else {
		logger.Info("initialized repository", zap.String("root", absPath))
	}

	batDir := Dir(absPath)

	backend, err := openBackend(batDir, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening object store: %w", err)
	}

	objects, err := safe.New(backend, safe.Options{
		CacheSize: cfg.Storage.CacheSize,
		Compress:  cfg.Storage.Compress,
		Logger:    logger,
	})
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("initializing object store: %w", err)
	}

	index := staging.NewIndex(filepath.Join(batDir, IndexFile), logger)
	graph := commit.NewGraph(objects, index, filepath.Join(batDir, HeadFile), logger)

	return &Repo{
		Root:    absPath,
		Config:  cfg,
		Objects: objects,
		Index:   index,
		Graph:   graph,
		Differ:  diff.NewDiffer(graph, objects, logger),
		Logger:  logger,
	}, nil
}

// Add stores the content of the file at path and stages it.
func (r *Repo) Add(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", baterrors.FileRead(path, err)
	}

	hash, err := r.Objects.Store(data)
	if err != nil {
		return "", fmt.Errorf("storing %s: %w", path, err)
	}

	if err := r.Index.Stage(filepath.Clean(path), hash); err != nil {
		return "", fmt.Errorf("staging %s: %w", path, err)
	}

	r.Logger.Debug("added file", zap.String("path", path), zap.String("hash", hash))
	return hash, nil
}

func (r *Repo) Commit(message string) (*commit.Commit, error) {
	return r.Graph.Commit(message)
}

func (r *Repo) Head() (string, error) {
	return r.Graph.Head()
}

func (r *Repo) Log() ([]*commit.Commit, error) {
	return r.Graph.Log()
}

func (r *Repo) Diff(hash string) (*diff.CommitDiff, error) {
	return r.Differ.Diff(hash)
}

// Verify re-reads every stored object and checks it against its hash.
// Individual failures are collected; only a failure to list the store is
// returned as an error.
func (r *Repo) Verify() (*VerifyResult, error) {
	hashes, err := r.Objects.List()
	if err != nil {
		return nil, err
	}

	result := &VerifyResult{Checked: len(hashes)}
	for _, hash := range hashes {
		if err := r.Objects.Verify(hash); err != nil {
			r.Logger.Warn("object failed verification", zap.String("hash", hash), zap.Error(err))
			result.Failures = append(result.Failures, ObjectFailure{Hash: hash, Err: err})
		}
	}
	return result, nil
}

// Close ensures proper cleanup of resources
func (r *Repo) Close() error {
	if r == nil || r.Objects == nil {
		return nil
	}

	if err := r.Objects.Close(); err != nil {
		return fmt.Errorf("closing object store: %w", err)
	}
	return nil
}
