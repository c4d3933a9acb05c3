// Package mossstore backs cache.Store with an in-memory couchbase/moss
// collection, adapted from the teacher's store/moss/moss.go. It is the
// low-latency option for caching master round trips within one query's
// lifetime — nothing here needs to survive a process restart.
package mossstore

import (
	"github.com/couchbase/moss"

	"github.com/thamindumk/jasminegraph/cache"
)

var (
	ropts = moss.ReadOptions{}
	wopts = moss.WriteOptions{}
)

var _ cache.Store = (*Store)(nil)

// Store is a moss-backed cache.Store.
type Store struct {
	name string
	db   moss.Collection
}

// Open starts a new moss collection under the given cache name.
func Open(name string) (*Store, error) {
	db, err := moss.NewCollection(moss.DefaultCollectionOptions)
	if err != nil {
		return nil, err
	}
	if err = db.Start(); err != nil {
		return nil, err
	}
	return &Store{name: name, db: db}, nil
}

// Name implements cache.Store.
func (s *Store) Name() string {
	return s.name
}

// Get implements cache.Store.
func (s *Store) Get(key []byte) ([]byte, error) {
	value, err := s.db.Get(key, ropts)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, cache.ErrNotFound
	}
	return value, nil
}

// Set implements cache.Store.
func (s *Store) Set(key, value []byte) error {
	batch, err := s.db.NewBatch(1, len(key)+len(value))
	if err != nil {
		return err
	}
	defer batch.Close()

	if err = batch.Set(key, value); err != nil {
		return err
	}
	return s.db.ExecuteBatch(batch, wopts)
}

// Close implements cache.Store.
func (s *Store) Close() error {
	err := s.db.Close()
	s.db = nil
	return err
}
