package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/dhamidi/docsig/source"
)

const (
	keyPrefixFile = "docsig:file:"
	keyPrefixHash = "docsig:hash:"
)

// Store persists scanned files so unchanged sources are not parsed again
// across runs. Entries are keyed by path and validated by content hash.
type Store struct {
	db *badger.DB
}

// OpenStore opens the store in dir, creating it if needed. An empty dir
// opens an in-memory store.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening index store %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored scan of path if it was made from content with the
// given hash.
func (s *Store) Get(path, hash string) (*source.File, bool, error) {
	var file *source.File
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefixHash + path))
		if err != nil {
			return err
		}
		stored, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if string(stored) != hash {
			return nil
		}

		item, err = txn.Get([]byte(keyPrefixFile + path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			file = &source.File{}
			return json.Unmarshal(val, file)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s from index store: %w", path, err)
	}
	return file, file != nil, nil
}

func (s *Store) Put(file *source.File) error {
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", file.Path, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyPrefixFile+file.Path), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyPrefixHash+file.Path), []byte(file.Hash))
	})
	if err != nil {
		return fmt.Errorf("writing %s to index store: %w", file.Path, err)
	}
	return nil
}

func (s *Store) Delete(path string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{keyPrefixFile + path, keyPrefixHash + path} {
			if err := txn.Delete([]byte(key)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting %s from index store: %w", path, err)
	}
	return nil
}

// Paths lists every stored path in key order.
func (s *Store) Paths() ([]string, error) {
	var paths []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefixHash)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			paths = append(paths, strings.TrimPrefix(string(it.Item().Key()), keyPrefixHash))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing index store: %w", err)
	}
	return paths, nil
}
