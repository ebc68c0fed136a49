// internal/storage/badger_store.go
package storage

import (
	"errors"
	"fmt"
	"os"

	baterrors "bat/internal/errors"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps objects as values in a badger database, keyed by
// "<prefix>:<hash>".
type BadgerStore struct {
	db     *badger.DB
	prefix string
	owned  bool
}

// NewBadgerStore wraps an already open database. Close leaves db open.
func NewBadgerStore(db *badger.DB, prefix string) *BadgerStore {
	return &BadgerStore{
		db:     db,
		prefix: prefix,
	}
}

// OpenBadgerStore opens (creating if needed) a database at path and owns it.
func OpenBadgerStore(path, prefix string) (*BadgerStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	opts := badger.DefaultOptions(path).
		WithLoggingLevel(badger.WARNING).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := NewBadgerStore(db, prefix)
	s.owned = true
	return s, nil
}

func (s *BadgerStore) makeKey(hash string) []byte {
	return []byte(fmt.Sprintf("%s:%s", s.prefix, hash))
}

func (s *BadgerStore) Put(hash string, data []byte) error {
	key := s.makeKey(hash)
	return s.db.Update(func(txn *badger.Txn) error {
		// Objects are immutable, keep the first write
		_, err := txn.Get(key)
		if err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		return txn.Set(key, data)
	})
}

func (s *BadgerStore) Get(hash string) ([]byte, error) {
	var data []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(hash))
		if err != nil {
			return err
		}

		data, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, baterrors.ObjectNotFound(hash)
	}
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", hash, err)
	}
	return data, nil
}

func (s *BadgerStore) Exists(hash string) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(s.makeKey(hash))
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns every stored hash in key order.
func (s *BadgerStore) List() ([]string, error) {
	var hashes []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(s.prefix + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			hashes = append(hashes, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	return hashes, nil
}

func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
