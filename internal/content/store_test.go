package content

import (
	"os"
	"path/filepath"
	"testing"

	baterrors "bat/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	root := filepath.Join(t.TempDir(), "objects")
	store, err := NewFileStore(root)
	require.NoError(t, err)
	defer store.Close()

	const hash = "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d"

	t.Run("Creates directory", func(t *testing.T) {
		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		_, err = NewFileStore(root)
		assert.NoError(t, err)
	})

	t.Run("Put and Get", func(t *testing.T) {
		require.NoError(t, store.Put(hash, []byte("hello")))

		data, err := store.Get(hash)
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), data)

		raw, err := os.ReadFile(filepath.Join(root, hash))
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), raw)
	})

	t.Run("Put is idempotent", func(t *testing.T) {
		require.NoError(t, store.Put(hash, []byte("hello")))
		require.NoError(t, store.Put(hash, []byte("hello")))

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Exists", func(t *testing.T) {
		ok, err := store.Exists(hash)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Exists("da39a3ee5e6b4b0d3255bfef95601890afd80709")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("List skips foreign files", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, ".tmp-write"), []byte("partial"), 0644))
		require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0755))

		hashes, err := store.List()
		require.NoError(t, err)
		assert.Equal(t, []string{hash}, hashes)
	})

	t.Run("Missing object", func(t *testing.T) {
		_, err := store.Get("da39a3ee5e6b4b0d3255bfef95601890afd80709")
		assert.ErrorIs(t, err, baterrors.ErrObjectNotFound)
	})
}
