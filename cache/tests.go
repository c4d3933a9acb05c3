package cache

// Shared conformance suite for cache.Store implementations, adapted from
// the teacher's store/tests.go. Trimmed to the point-lookup contract
// this package actually exposes (no Delete/Range: the cache only ever
// memoizes or overwrites, never scans).

import (
	"bytes"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStore exercises a cache.Store implementation supplied by open.
func TestStore(t *testing.T, open func() (Store, error)) {
	var err error
	var store Store

	key := randStringBytes(8)
	value := randStringBytes(32)

	t.Run("open", func(t *testing.T) {
		store, err = open()
		assert.NoError(t, err)
	})

	t.Run("get inexistent key", func(t *testing.T) {
		_, err = store.Get(key)
		assert.Equal(t, ErrNotFound, err)
	})

	t.Run("set and get", func(t *testing.T) {
		err = store.Set(key, value)
		assert.NoError(t, err)

		v, err := store.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, 0, bytes.Compare(v, value))
	})

	t.Run("overwrite", func(t *testing.T) {
		next := randStringBytes(32)
		err = store.Set(key, next)
		assert.NoError(t, err)

		v, err := store.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, 0, bytes.Compare(v, next))
	})

	t.Run("name is stable", func(t *testing.T) {
		assert.Equal(t, store.Name(), store.Name())
	})

	t.Run("concurrent set and get", func(t *testing.T) {
		keys := make([][]byte, 10)
		for i := range keys {
			keys[i] = randStringBytes(4)
		}

		start := make(chan struct{})
		var wg sync.WaitGroup

		wg.Add(1)
		go func() {
			<-start
			for x := 0; x < 50; x++ {
				for _, k := range keys {
					store.Set(k, value)
				}
			}
			wg.Done()
		}()

		wg.Add(1)
		go func() {
			close(start)
			for x := 0; x < 50; x++ {
				for _, k := range keys {
					store.Get(k)
				}
			}
			wg.Done()
		}()

		wg.Wait()
	})

	t.Run("close", func(t *testing.T) {
		assert.NoError(t, store.Close())
	})
}

const (
	letterBytes   = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	letterIdxBits = 6
	letterIdxMask = 1<<letterIdxBits - 1
	letterIdxMax  = 63 / letterIdxBits
)

func randStringBytes(n int) []byte {
	b := make([]byte, n)
	for i, cache, remain := n-1, rand.Int63(), letterIdxMax; i >= 0; {
		if remain == 0 {
			cache, remain = rand.Int63(), letterIdxMax
		}
		if idx := int(cache & letterIdxMask); idx < len(letterBytes) {
			b[i] = letterBytes[idx]
			i--
		}
		cache >>= letterIdxBits
		remain--
	}
	return b
}
