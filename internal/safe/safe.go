// internal/safe/safe.go
package safe

import (
	"bytes"
	"fmt"

	"bat/internal/content"
	baterrors "bat/internal/errors"
	"bat/shared/utils"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// Safe is the content-addressed object store. Blobs and commit records
// share its namespace.
type Safe struct {
	store       content.Store
	cache       *lru.Cache[string, []byte] // Decoded content by hash
	compression *compressionManager
	compress    bool // Store new objects zstd compressed
	logger      *zap.Logger
}

// Options configures Safe behavior
type Options struct {
	CacheSize int  // Number of objects to cache
	Compress  bool // Store objects zstd compressed
	Logger    *zap.Logger
}

// New creates a new Safe on top of a raw object store
func New(store content.Store, opts Options) (*Safe, error) {
	if store == nil {
		return nil, fmt.Errorf("object store is required")
	}

	// Use reasonable defaults
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cache, err := lru.New[string, []byte](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	// Reads always need a decoder: objects written with compression on stay
	// readable after it is turned off.
	cm, err := newCompressionManager(DefaultCompressionOptions())
	if err != nil {
		return nil, fmt.Errorf("creating compression manager: %w", err)
	}

	return &Safe{
		store:       store,
		cache:       cache,
		compression: cm,
		compress:    opts.Compress,
		logger:      opts.Logger,
	}, nil
}

// Store saves content and returns its hash. Storing the same content again
// returns the same hash and leaves the stored object untouched.
func (s *Safe) Store(data []byte) (string, error) {
	if data == nil {
		data = []byte{} // Convert nil to empty slice
	}

	hash := utils.HashContent(data)

	exists, err := s.Exists(hash)
	if err != nil {
		return "", fmt.Errorf("checking existence: %w", err)
	}

	if !exists {
		if err := s.store.Put(hash, s.encode(data)); err != nil {
			return "", fmt.Errorf("storing object: %w", err)
		}
		s.logger.Debug("stored object", zap.String("hash", hash), zap.Int("size", len(data)))
	}

	// The cache owns its copy; callers may reuse data
	s.cache.Add(hash, bytes.Clone(data))
	return hash, nil
}

// Get retrieves content by hash
func (s *Safe) Get(hash string) ([]byte, error) {
	if !utils.IsValidHash(hash) {
		return nil, baterrors.InvalidHash(hash)
	}

	// Check cache first
	if data, ok := s.cache.Get(hash); ok {
		return bytes.Clone(data), nil
	}

	raw, err := s.store.Get(hash)
	if err != nil {
		return nil, err
	}

	data, err := s.decode(hash, raw)
	if err != nil {
		return nil, err
	}

	s.cache.Add(hash, bytes.Clone(data))
	return data, nil
}

// Exists checks if content exists
func (s *Safe) Exists(hash string) (bool, error) {
	if !utils.IsValidHash(hash) {
		return false, baterrors.InvalidHash(hash)
	}

	if s.cache.Contains(hash) {
		return true, nil
	}

	return s.store.Exists(hash)
}

// Verify checks content integrity, bypassing the cache
func (s *Safe) Verify(hash string) error {
	s.cache.Remove(hash)
	_, err := s.Get(hash)
	return err
}

// List returns the hash of every stored object.
func (s *Safe) List() ([]string, error) {
	return s.store.List()
}

func (s *Safe) Close() error {
	s.cache.Purge()
	return s.store.Close()
}

func (s *Safe) encode(data []byte) []byte {
	if !s.compress {
		return data
	}
	return s.compression.compress(data)
}

// decode returns the original bytes for a stored object. Verbatim content
// that happens to begin with the zstd magic still matches its own hash, so
// that check comes first.
func (s *Safe) decode(hash string, raw []byte) ([]byte, error) {
	if utils.HashContent(raw) == hash {
		return raw, nil
	}

	if isCompressed(raw) {
		data, err := s.compression.decompress(raw)
		if err != nil {
			return nil, baterrors.New(baterrors.ErrorTypeObjectCorrupt, "decompressing object "+hash, err)
		}
		if utils.HashContent(data) == hash {
			return data, nil
		}
	}

	return nil, baterrors.ObjectCorrupt(hash)
}
