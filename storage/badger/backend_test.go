package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/tabula/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
	assert.Empty(t, backend.Path())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Embeddings")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
	assert.Equal(t, dir, backend.Path())
	assert.DirExists(t, dir)
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := OpenBackend(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(func(tx *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestWriteBatchAndDropPrefix(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WriteBatch(func(set func(key, value []byte) error) error {
		for i := 0; i < 3; i++ {
			if err := set(makeEntryKey(1, i), []byte{byte(i)}); err != nil {
				return err
			}
		}
		return set(makeEntryKey(10, 0), []byte{9})
	})
	require.NoError(t, err)

	assert.Equal(t, 3, countKeys(t, backend, makeEntryPrefix(1)), "generation 10 must not match generation 1")
	require.NoError(t, backend.DropPrefix(makeEntryPrefix(1)))
	assert.Equal(t, 0, countKeys(t, backend, makeEntryPrefix(1)))
	assert.Equal(t, 1, countKeys(t, backend, makeEntryPrefix(10)))
}

func countKeys(t *testing.T, backend *Backend, prefix []byte) int {
	t.Helper()
	n := 0
	require.NoError(t, backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			n++
		}
		return nil
	}, false))
	return n
}

func TestWriteBatch_FillError(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WriteBatch(func(set func(key, value []byte) error) error {
		return assert.AnError
	})
	assert.Equal(t, assert.AnError, err)
}

func TestEntryKeysSortByPosition(t *testing.T) {
	a := makeEntryKey(3, 9)
	b := makeEntryKey(3, 10)
	assert.Less(t, string(a), string(b))

	gen, err := decodeGeneration(encodeGeneration(42))
	require.NoError(t, err)
	assert.Equal(t, uint64(42), gen)

	_, err = decodeGeneration([]byte{1})
	assert.Error(t, err)
}
