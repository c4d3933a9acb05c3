// Package store defines the contract this module expects from the
// on-disk native store — the out-of-scope external collaborator
// described in spec.md §1 and §6. It never parses relation/node block
// files itself; GraphReader is the only touch point, so a real
// implementation backed by the native block files can be substituted
// without changing any operator.
package store

import (
	"context"
	"errors"
	"strconv"
)

// Block size constants from the native store file layout (spec.md §6).
// They are carried here only as documentation of the external
// contract's units; this module does no byte-level parsing with them.
const (
	BlockSize        = 512
	CentralBlockSize = 512
)

// ErrNotFound is returned by GraphReader lookups that miss.
var ErrNotFound = errors.New("store: not found")

// NoRef marks the absence of a relation reference, node edge pointer,
// or linked-list sibling — the store's block offset 0 is reserved for
// the file header, so 0 doubles as "no relation" everywhere an index is
// used as a pointer.
const NoRef int64 = 0

// Node is a node block's logical projection: its id, the partition that
// owns it, its property map, and the head of its local/central relation
// linked lists.
type Node struct {
	ID             int64
	PartitionID    int
	Properties     map[string]string
	LocalEdgeRef   int64
	CentralEdgeRef int64
}

// Relation is a relation block's logical projection: its own index, its
// endpoints, its properties (including the reserved "relationship"
// type property), and the four sibling pointers of the doubly linked
// adjacency lists rooted at each endpoint.
type Relation struct {
	Index       int64
	Source      int64
	Destination int64
	Properties  map[string]string

	NextAsSource int64
	PrevAsSource int64
	NextAsDest   int64
	PrevAsDest   int64
}

// Type returns the relation's "relationship" type property, or "" if
// unset.
func (r *Relation) Type() string {
	if r == nil {
		return ""
	}
	return r.Properties["relationship"]
}

// AdjacencySet is the in-memory undirected adjacency representation
// shared by the triangles package: node id -> set of neighbor node ids.
// It mirrors the original's std::map<long, std::unordered_set<long>>.
type AdjacencySet map[int64]map[int64]struct{}

// Add inserts the undirected edge u-v, creating neighbor sets as
// needed. It is idempotent.
func (a AdjacencySet) Add(u, v int64) {
	if a[u] == nil {
		a[u] = make(map[int64]struct{})
	}
	a[u][v] = struct{}{}
}

// Merge folds other's edges into a, used when combining per-partition
// central adjacency responses the way countCentralStoreStreamingTriangles
// merges futures' results.
func (a AdjacencySet) Merge(other AdjacencySet) {
	for u, neighbors := range other {
		for v := range neighbors {
			a.Add(u, v)
		}
	}
}

// BuildAdjacency reads every local relation and every central relation
// whose meta-property partition id matches partitionID from r and
// returns the resulting undirected adjacency set, the Go shape of
// NodeManager::getAdjacencyList used by StreamingTriangles::countTriangles
// and StreamingTriangles::countLocalStreamingTriangles. Central relations
// whose stored partition id differs from partitionID are skipped, the
// same filter UndirectedAllRelationshipScan applies in spec.md §4.2.
func BuildAdjacency(ctx context.Context, r GraphReader, partitionID int) (AdjacencySet, error) {
	adjacency := make(AdjacencySet)

	localCount, err := r.LocalRelationCount(ctx)
	if err != nil {
		return nil, err
	}
	for i := int64(1); i <= localCount; i++ {
		rel, err := r.GetLocalRelation(ctx, i)
		if err != nil {
			return nil, err
		}
		adjacency.Add(rel.Source, rel.Destination)
		adjacency.Add(rel.Destination, rel.Source)
	}

	centralCount, err := r.CentralRelationCount(ctx)
	if err != nil {
		return nil, err
	}
	for i := int64(1); i <= centralCount; i++ {
		rel, err := r.GetCentralRelation(ctx, i)
		if err != nil {
			return nil, err
		}
		if pid, ok := rel.Properties["partitionId"]; ok && pid != fmtInt(partitionID) {
			continue
		}
		adjacency.Add(rel.Source, rel.Destination)
		adjacency.Add(rel.Destination, rel.Source)
	}

	return adjacency, nil
}

func fmtInt(i int) string {
	return strconv.Itoa(i)
}

// GraphReader is the typed reader this module consumes the native store
// through: get_node, get_local_relation(offset), get_central_relation(offset),
// relation linked-list traversal, property maps, and the monotonically
// growing relation-file sizes, per spec.md §1.
type GraphReader interface {
	// GetNode returns the node with the given id, or ErrNotFound.
	GetNode(ctx context.Context, id int64) (*Node, error)

	// NodeIDs returns every node id known to this partition's node
	// index, in an implementation-defined but stable order.
	NodeIDs(ctx context.Context) ([]int64, error)

	// GetLocalRelation returns the local relation at the given 1-based
	// index, or ErrNotFound.
	GetLocalRelation(ctx context.Context, index int64) (*Relation, error)

	// GetCentralRelation returns the central relation at the given
	// 1-based index, or ErrNotFound.
	GetCentralRelation(ctx context.Context, index int64) (*Relation, error)

	// LocalRelationCount returns the current highest valid local
	// relation index (the local relation file's size in blocks, minus
	// the header). It only grows across the worker's lifetime.
	LocalRelationCount(ctx context.Context) (int64, error)

	// CentralRelationCount is LocalRelationCount's central-edge
	// counterpart.
	CentralRelationCount(ctx context.Context) (int64, error)
}
