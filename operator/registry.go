package operator

import (
	"sync"

	"github.com/thamindumk/jasminegraph/buffer"
)

// Executor runs one plan Node, writing its result tuples (terminated by
// the sentinel) into out.
type Executor func(e *Exec, node *Node, out *buffer.Buffer) error

var (
	registryMu sync.RWMutex
	registry   = map[string]Executor{}
)

// Register associates tag with fn. Each operator file calls this from
// its own init(), building the registry once at process startup and
// leaving it read-only thereafter, directly modeled on the teacher's
// Builder validation pass — generalized from a one-shot DAG build to a
// lookup table consulted afresh for every plan node.
func Register(tag string, fn Executor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[tag]; exists {
		panic("operator: duplicate registration for " + tag)
	}
	registry[tag] = fn
}

func lookup(tag string) (Executor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fn, ok := registry[tag]
	return fn, ok
}
