// Package buffer implements the BoundedBuffer back-pressure primitive:
// a fixed-capacity FIFO of tuples shared by exactly one producer and one
// consumer per instance, grounded on the channel-backed forwarding
// buffer in the teacher's Context (brunotm/streams context.go).
package buffer

import (
	"context"
	"sync"

	"github.com/thamindumk/jasminegraph/tuple"
)

// DefaultCapacity is the design constant from the specification: every
// inter-operator buffer holds at most 5 tuples in flight.
const DefaultCapacity = 5

// Buffer is a bounded, thread-safe FIFO of tuples. Add blocks while
// full, Get blocks while empty; both are FIFO. The sentinel tuple is an
// ordinary value as far as the buffer is concerned, so it is subject to
// the same back-pressure as any other tuple.
type Buffer struct {
	ch chan tuple.Tuple

	mu      sync.Mutex
	sent    bool
	sealErr error
}

// New creates a Buffer with the given capacity. Capacity 0 behaves as an
// unbuffered handoff.
func New(capacity int) *Buffer {
	return &Buffer{ch: make(chan tuple.Tuple, capacity)}
}

// Add enqueues t, blocking while the buffer is full. It returns
// ctx.Err() if ctx is canceled before there is room. Adding a second
// sentinel after one has already been added is a programmer error and
// panics, enforcing the "exactly one sentinel, it is the final element"
// invariant at the source.
func (b *Buffer) Add(ctx context.Context, t tuple.Tuple) error {
	b.mu.Lock()
	if b.sent {
		b.mu.Unlock()
		panic("buffer: Add called after sentinel")
	}
	if t.IsSentinel() {
		b.sent = true
	}
	b.mu.Unlock()

	select {
	case b.ch <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get dequeues the next tuple, blocking while the buffer is empty. It
// returns ctx.Err() if ctx is canceled first.
func (b *Buffer) Get(ctx context.Context) (tuple.Tuple, error) {
	select {
	case t := <-b.ch:
		return t, nil
	case <-ctx.Done():
		var zero tuple.Tuple
		return zero, ctx.Err()
	}
}

// Cap returns the buffer's configured capacity.
func (b *Buffer) Cap() int {
	return cap(b.ch)
}

// Len returns the number of tuples currently queued.
func (b *Buffer) Len() int {
	return len(b.ch)
}
