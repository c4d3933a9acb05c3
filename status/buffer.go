package status

import (
	"context"
	"sync"
)

// Buffer is a thread-safe FIFO queue of Messages, popped by the
// notification goroutine (Notifier) and pushed by any operator.
type Buffer struct {
	ch chan Message

	countsMu sync.Mutex
	counts   map[Type]int
}

// NewBuffer creates a Buffer with the given capacity. Status
// notifications are metadata, not back-pressure carriers, so a larger
// default capacity than BoundedBuffer's is reasonable.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{ch: make(chan Message, capacity), counts: make(map[Type]int)}
}

// Push enqueues a message, and records its type in the running tally
// Counts reports — the debug package's /status endpoint reads this
// without draining the queue itself.
func (b *Buffer) Push(m Message) {
	b.countsMu.Lock()
	b.counts[m.Type]++
	b.countsMu.Unlock()
	b.ch <- m
}

// Counts returns a snapshot of how many messages of each Type have been
// pushed so far.
func (b *Buffer) Counts() map[Type]int {
	b.countsMu.Lock()
	defer b.countsMu.Unlock()

	out := make(map[Type]int, len(b.counts))
	for t, n := range b.counts {
		out[t] = n
	}
	return out
}

// Pop dequeues the next message, blocking until one is available or ctx
// is canceled.
func (b *Buffer) Pop(ctx context.Context) (Message, error) {
	select {
	case m := <-b.ch:
		return m, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}
