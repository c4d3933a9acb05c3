package mossstore

import (
	"testing"

	"github.com/thamindumk/jasminegraph/cache"
)

func TestMossStore(t *testing.T) {
	cache.TestStore(t, func() (cache.Store, error) {
		return Open("test-moss-cache")
	})
}
