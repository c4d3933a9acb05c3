// Package cache defines a small keyed byte-store contract used to
// memoize repeated round trips to the master (master.CachingClient's
// partition lookups). It is a trimmed-down version of the teacher's
// streams.Store/ROStore contract (store.go) — Name/Get/Set/Close only,
// since cache entries are looked up by exact key, never scanned.
package cache

import "errors"

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("cache: key not found")

// Store is a read/write byte-keyed cache. Implementations must be safe
// for concurrent use.
type Store interface {
	// Name returns this store's instance name, used for state directory
	// layout the way the teacher's leveldb/moss stores do.
	Name() string

	// Get returns the cached value for key, or ErrNotFound.
	Get(key []byte) (value []byte, err error)

	// Set stores value for key, overwriting any previous value.
	Set(key, value []byte) error

	// Close releases the store's resources.
	Close() error
}
