// Package memstore is an in-memory reference implementation of
// store.GraphReader, standing in for the native block-structured store
// the real worker reads from. It exists so the operator and triangles
// packages can be exercised end to end without the on-disk store, which
// spec.md explicitly keeps out of scope.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/thamindumk/jasminegraph/store"
)

var _ store.GraphReader = (*Store)(nil)

// Store is a mutable, in-memory GraphReader. Builder methods (AddNode,
// AddLocalRelation, AddCentralRelation) are not part of store.GraphReader
// and are only meant for assembling fixtures in tests.
type Store struct {
	mu sync.RWMutex

	nodes map[int64]*store.Node
	order []int64

	localRelations   []*store.Relation // 1-based: localRelations[i-1] is index i
	centralRelations []*store.Relation
}

// New creates an empty Store.
func New() *Store {
	return &Store{nodes: make(map[int64]*store.Node)}
}

// AddNode registers a node fixture.
func (s *Store) AddNode(n *store.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[n.ID]; !exists {
		s.order = append(s.order, n.ID)
	}
	s.nodes[n.ID] = n
}

// AddLocalRelation appends a local relation fixture and returns its
// assigned 1-based index.
func (s *Store) AddLocalRelation(r *store.Relation) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.localRelations = append(s.localRelations, r)
	r.Index = int64(len(s.localRelations))
	return r.Index
}

// AddCentralRelation appends a central relation fixture and returns its
// assigned 1-based index.
func (s *Store) AddCentralRelation(r *store.Relation) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.centralRelations = append(s.centralRelations, r)
	r.Index = int64(len(s.centralRelations))
	return r.Index
}

// GetNode implements store.GraphReader.
func (s *Store) GetNode(ctx context.Context, id int64) (*store.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return n, nil
}

// NodeIDs implements store.GraphReader, returning ids in ascending
// order for deterministic test assertions.
func (s *Store) NodeIDs(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int64, len(s.order))
	copy(out, s.order)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// GetLocalRelation implements store.GraphReader.
func (s *Store) GetLocalRelation(ctx context.Context, index int64) (*store.Relation, error) {
	return getRelation(s, index, false)
}

// GetCentralRelation implements store.GraphReader.
func (s *Store) GetCentralRelation(ctx context.Context, index int64) (*store.Relation, error) {
	return getRelation(s, index, true)
}

func getRelation(s *Store, index int64, central bool) (*store.Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index == store.NoRef {
		return nil, store.ErrNotFound
	}

	list := s.localRelations
	if central {
		list = s.centralRelations
	}

	if index < 1 || int(index) > len(list) {
		return nil, store.ErrNotFound
	}
	return list[index-1], nil
}

// LocalRelationCount implements store.GraphReader.
func (s *Store) LocalRelationCount(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.localRelations)), nil
}

// CentralRelationCount implements store.GraphReader.
func (s *Store) CentralRelationCount(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.centralRelations)), nil
}
