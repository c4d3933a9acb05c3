package buffer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/thamindumk/jasminegraph/tuple"
)

func TestFIFOOrder(t *testing.T) {
	b := New(DefaultCapacity)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 3; i++ {
			assert.NoError(t, b.Add(ctx, tuple.Tuple{"i": tuple.Int(int64(i))}))
		}
		assert.NoError(t, b.Add(ctx, tuple.Sentinel()))
	}()

	var got []int64
	for {
		tp, err := b.Get(ctx)
		assert.NoError(t, err)
		if tp.IsSentinel() {
			break
		}
		got = append(got, tp["i"].Int)
	}
	wg.Wait()

	assert.Equal(t, []int64{0, 1, 2}, got)
}

func TestAddBlocksWhenFull(t *testing.T) {
	b := New(1)
	ctx := context.Background()
	assert.NoError(t, b.Add(ctx, tuple.Tuple{"i": tuple.Int(0)}))

	done := make(chan struct{})
	go func() {
		assert.NoError(t, b.Add(ctx, tuple.Tuple{"i": tuple.Int(1)}))
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Add should have blocked on a full buffer")
	case <-time.After(20 * time.Millisecond):
	}

	_, err := b.Get(ctx)
	assert.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Add did not unblock after Get freed capacity")
	}
}

func TestAddAfterSentinelPanics(t *testing.T) {
	b := New(DefaultCapacity)
	ctx := context.Background()
	assert.NoError(t, b.Add(ctx, tuple.Sentinel()))

	assert.Panics(t, func() {
		_ = b.Add(ctx, tuple.Tuple{"x": tuple.Int(1)})
	})
}

func TestGetRespectsCancellation(t *testing.T) {
	b := New(DefaultCapacity)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
