// Package debug exposes the worker's internal state over HTTP for
// operational inspection: the plan-dispatch trail of running queries,
// status-notification volume by type, and the last computed triangle
// watermark per graph. It is the Go shape of brunotm/streams'
// internal/httpserver-backed debug surface, generalized from that
// library's topology-introspection endpoints to this worker's own
// state (operator.Exec, status.Buffer, triangles.Engine).
package debug

import (
	"sync"

	"github.com/thamindumk/jasminegraph/operator"
)

// Registry tracks the in-flight operator.Exec for every query this
// worker is currently running, keyed by an opaque query id the caller
// assigns at dispatch time. The topology endpoint reads through it.
type Registry struct {
	mu    sync.Mutex
	execs map[string]*operator.Exec
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{execs: make(map[string]*operator.Exec)}
}

// Register associates queryID with exec, for the duration of that
// query's run. Callers should Unregister once the query completes.
func (r *Registry) Register(queryID string, exec *operator.Exec) {
	r.mu.Lock()
	r.execs[queryID] = exec
	r.mu.Unlock()
}

// Unregister removes queryID's association, if any.
func (r *Registry) Unregister(queryID string) {
	r.mu.Lock()
	delete(r.execs, queryID)
	r.mu.Unlock()
}

// Lookup returns the Exec registered for queryID, if any.
func (r *Registry) Lookup(queryID string) (*operator.Exec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exec, ok := r.execs[queryID]
	return exec, ok
}
