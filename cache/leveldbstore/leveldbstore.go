// Package leveldbstore backs cache.Store with a durable goleveldb
// database, adapted from the teacher's store/leveldb/leveldb.go. Unlike
// the moss backend it survives a worker restart, which makes it the
// right choice for master.CachingClient's partition-lookup cache: a
// partition's owner rarely changes between runs.
package leveldbstore

import (
	"os"

	ldb "github.com/syndtr/goleveldb/leveldb"
	ldbopt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/thamindumk/jasminegraph/cache"
)

var (
	dopt *ldbopt.Options
	wopt *ldbopt.WriteOptions
	ropt *ldbopt.ReadOptions
)

var _ cache.Store = (*Store)(nil)

// Store is a goleveldb-backed cache.Store.
type Store struct {
	name string
	path string
	db   *ldb.DB
}

// Open opens (creating if absent) the leveldb database rooted at path.
func Open(name, path string) (*Store, error) {
	db, err := ldb.OpenFile(path, dopt)
	if err != nil {
		return nil, err
	}
	return &Store{name: name, path: path, db: db}, nil
}

// Name implements cache.Store.
func (s *Store) Name() string {
	return s.name
}

// Get implements cache.Store.
func (s *Store) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, ropt)
	if err == ldb.ErrNotFound {
		return nil, cache.ErrNotFound
	}
	return value, err
}

// Set implements cache.Store.
func (s *Store) Set(key, value []byte) error {
	return s.db.Put(key, value, wopt)
}

// Close implements cache.Store.
func (s *Store) Close() error {
	err := s.db.Close()
	s.db = nil
	return err
}

// Remove closes the store and erases its contents, mirroring the
// teacher's Remove on the leveldb store.
func (s *Store) Remove() error {
	if err := s.Close(); err != nil {
		return err
	}
	return os.RemoveAll(s.path)
}
