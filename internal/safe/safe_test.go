package safe

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bat/internal/content"
	baterrors "bat/internal/errors"
	"bat/shared/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSafe(t *testing.T, opts Options) (*Safe, string) {
	root := filepath.Join(t.TempDir(), "objects")
	store, err := content.NewFileStore(root)
	require.NoError(t, err)

	s, err := New(store, opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, root
}

func TestSafe(t *testing.T) {
	s, root := setupSafe(t, Options{CacheSize: 8})

	t.Run("Store returns content hash", func(t *testing.T) {
		hash, err := s.Store([]byte("hello"))
		require.NoError(t, err)
		assert.Equal(t, utils.HashContent([]byte("hello")), hash)

		raw, err := os.ReadFile(filepath.Join(root, hash))
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), raw, "objects are written verbatim")
	})

	t.Run("Store is idempotent", func(t *testing.T) {
		first, err := s.Store([]byte("same"))
		require.NoError(t, err)
		second, err := s.Store([]byte("same"))
		require.NoError(t, err)
		assert.Equal(t, first, second)

		data, err := s.Get(first)
		require.NoError(t, err)
		assert.Equal(t, []byte("same"), data)
	})

	t.Run("Empty content", func(t *testing.T) {
		hash, err := s.Store(nil)
		require.NoError(t, err)

		data, err := s.Get(hash)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("Get missing", func(t *testing.T) {
		_, err := s.Get(utils.HashContent([]byte("never stored")))
		assert.ErrorIs(t, err, baterrors.ErrObjectNotFound)
	})

	t.Run("Invalid hash", func(t *testing.T) {
		_, err := s.Get("../HEAD")
		assert.ErrorIs(t, err, baterrors.ErrInvalidHash)

		_, err = s.Exists("")
		assert.ErrorIs(t, err, baterrors.ErrInvalidHash)
	})

	t.Run("Exists", func(t *testing.T) {
		hash, err := s.Store([]byte("exists"))
		require.NoError(t, err)

		ok, err := s.Exists(hash)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Exists(utils.HashContent([]byte("absent")))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Callers cannot change cached content", func(t *testing.T) {
		input := []byte("mutable")
		hash, err := s.Store(input)
		require.NoError(t, err)
		input[0] = 'J'

		data, err := s.Get(hash)
		require.NoError(t, err)
		assert.Equal(t, []byte("mutable"), data)
		data[1] = 'X'

		again, err := s.Get(hash)
		require.NoError(t, err)
		assert.Equal(t, []byte("mutable"), again)
		assert.NoError(t, s.Verify(hash))
	})
}

func TestSafeReadsFromDisk(t *testing.T) {
	root := filepath.Join(t.TempDir(), "objects")
	store, err := content.NewFileStore(root)
	require.NoError(t, err)

	writer, err := New(store, Options{})
	require.NoError(t, err)
	hash, err := writer.Store([]byte("persisted"))
	require.NoError(t, err)

	// A fresh Safe has an empty cache
	reader, err := New(store, Options{})
	require.NoError(t, err)

	data, err := reader.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), data)
}

func TestSafeDetectsCorruption(t *testing.T) {
	root := filepath.Join(t.TempDir(), "objects")
	store, err := content.NewFileStore(root)
	require.NoError(t, err)

	writer, err := New(store, Options{})
	require.NoError(t, err)
	hash, err := writer.Store([]byte("original"))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, hash), []byte("tampered"), 0644))

	reader, err := New(store, Options{})
	require.NoError(t, err)

	_, err = reader.Get(hash)
	assert.ErrorIs(t, err, baterrors.ErrObjectCorrupt)
	assert.ErrorIs(t, writer.Verify(hash), baterrors.ErrObjectCorrupt)
}

func TestSafeCompression(t *testing.T) {
	s, root := setupSafe(t, Options{Compress: true})
	large := []byte(strings.Repeat("compressible line\n", 200))

	t.Run("Large content is compressed at rest", func(t *testing.T) {
		hash, err := s.Store(large)
		require.NoError(t, err)
		assert.Equal(t, utils.HashContent(large), hash)

		raw, err := os.ReadFile(filepath.Join(root, hash))
		require.NoError(t, err)
		assert.True(t, isCompressed(raw))
		assert.Less(t, len(raw), len(large))

		require.NoError(t, s.Verify(hash))
		data, err := s.Get(hash)
		require.NoError(t, err)
		assert.Equal(t, large, data)
	})

	t.Run("Small content stays verbatim", func(t *testing.T) {
		hash, err := s.Store([]byte("tiny"))
		require.NoError(t, err)

		raw, err := os.ReadFile(filepath.Join(root, hash))
		require.NoError(t, err)
		assert.Equal(t, []byte("tiny"), raw)
	})

	t.Run("Readable with compression off", func(t *testing.T) {
		store, err := content.NewFileStore(root)
		require.NoError(t, err)
		plain, err := New(store, Options{})
		require.NoError(t, err)

		data, err := plain.Get(utils.HashContent(large))
		require.NoError(t, err)
		assert.Equal(t, large, data)
	})

	t.Run("Verbatim content with zstd magic", func(t *testing.T) {
		plain, plainRoot := setupSafe(t, Options{})
		tricky := append(append([]byte{}, zstdMagic...), []byte("not a frame")...)

		hash, err := plain.Store(tricky)
		require.NoError(t, err)

		raw, err := os.ReadFile(filepath.Join(plainRoot, hash))
		require.NoError(t, err)
		assert.True(t, bytes.Equal(tricky, raw))

		require.NoError(t, plain.Verify(hash))
	})
}
