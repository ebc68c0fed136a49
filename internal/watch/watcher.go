// internal/watch/watcher.go
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Adder stages the current content of a file and returns its hash.
type Adder interface {
	Add(path string) (string, error)
}

// Watcher re-adds files whenever they are written or recreated.
type Watcher struct {
	adder   Adder
	watcher *fsnotify.Watcher
	paths   map[string]bool
	logger  *zap.Logger

	// OnAdd, when set, is called after every successful auto-add.
	OnAdd func(path, hash string)

	closeOnce sync.Once
}

// New watches the parent directories of paths. Files that do not exist yet
// are picked up when they are created.
func New(adder Adder, paths []string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		adder:   adder,
		watcher: fw,
		paths:   make(map[string]bool, len(paths)),
		logger:  logger,
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("getting absolute path for %s: %w", p, err)
		}
		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("adding directory %s to watcher: %w", dir, err)
		}
		logger.Debug("watching directory", zap.String("dir", dir))
	}

	return w, nil
}

// Run processes filesystem events until ctx is cancelled, then closes the
// underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	path := filepath.Clean(event.Name)
	if !w.paths[path] {
		return
	}

	hash, err := w.adder.Add(path)
	if err != nil {
		// The file may be mid-rename or already gone again
		w.logger.Warn("auto-add failed", zap.String("path", path), zap.Error(err))
		return
	}

	w.logger.Info("auto-added file", zap.String("path", path), zap.String("hash", hash))
	if w.OnAdd != nil {
		w.OnAdd(path, hash)
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
	})
	return err
}
