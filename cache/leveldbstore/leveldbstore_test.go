package leveldbstore

import (
	"testing"

	"github.com/thamindumk/jasminegraph/cache"
)

func TestLevelDBStore(t *testing.T) {
	dir := t.TempDir()

	var store *Store
	cache.TestStore(t, func() (cache.Store, error) {
		var err error
		store, err = Open("test-leveldb-cache", dir)
		return store, err
	})
}
