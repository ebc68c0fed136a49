package repo

import (
	"path/filepath"

	"bat/internal/commit"
	"bat/internal/config"
	"bat/internal/diff"
	"bat/internal/safe"
	"bat/internal/staging"

	"go.uber.org/zap"
)

const (
	DirName    = ".bat"
	ObjectsDir = "objects"
	HeadFile   = "HEAD"
	IndexFile  = "index"
	ConfigFile = "config.json"
	DBDir      = "db"
)

// Repo is one repository on disk. It holds no repository state of its own:
// HEAD and the index are read from disk on every operation.
type Repo struct {
	Root    string // directory containing .bat
	Config  *config.Config
	Objects *safe.Safe
	Index   *staging.Index
	Graph   *commit.Graph
	Differ  *diff.Differ
	Logger  *zap.Logger
}

// Dir returns the .bat directory under root.
func Dir(root string) string {
	return filepath.Join(root, DirName)
}

// ConfigPath returns where the repository config file lives under root.
func ConfigPath(root string) string {
	return filepath.Join(Dir(root), ConfigFile)
}

// ObjectFailure is one object that failed verification.
type ObjectFailure struct {
	Hash string
	Err  error
}

// VerifyResult summarizes a full object store check.
type VerifyResult struct {
	Checked  int
	Failures []ObjectFailure
}
