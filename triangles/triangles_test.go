package triangles

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thamindumk/jasminegraph/internal/glog"
	"github.com/thamindumk/jasminegraph/store"
	"github.com/thamindumk/jasminegraph/store/memstore"
)

func addEdge(s *memstore.Store, central bool, u, v int64, pid int) {
	rel := &store.Relation{Source: u, Destination: v, Properties: map[string]string{}}
	if central {
		rel.Properties["partitionId"] = strconv.Itoa(pid)
		s.AddCentralRelation(rel)
		return
	}
	s.AddLocalRelation(rel)
}

func TestCountLocalStaticTriangle(t *testing.T) {
	s := memstore.New()
	// One local relation per undirected edge: the relation's linked
	// list is walked both ways by ExpandAll, but the relation file
	// itself stores each edge once.
	addEdge(s, false, 1, 2, 0)
	addEdge(s, false, 2, 3, 0)
	addEdge(s, false, 1, 3, 0)

	e := New(glog.New())
	result, err := e.CountLocalStatic(context.Background(), s, 0)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), result.TriangleCount)
	assert.Equal(t, int64(3), result.LocalRelationCount)
}

func TestCountLocalDynamicNoNewRelationsReturnsZero(t *testing.T) {
	s := memstore.New()
	addEdge(s, false, 1, 2, 0)

	e := New(glog.New())
	current := Watermark{LocalRelationCount: 1, CentralRelationCount: 0}
	result, err := e.CountLocalDynamic(context.Background(), s, current)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), result.TriangleCount)
	assert.Equal(t, current, result.Watermark)
}

func TestCountLocalDynamicFindsNewTriangle(t *testing.T) {
	s := memstore.New()
	e := New(glog.New())

	// Insert edges (1,2),(2,3),(1,3) as described in spec.md §8 scenario 3.
	addEdge(s, false, 1, 2, 0)
	addEdge(s, false, 2, 3, 0)
	addEdge(s, false, 1, 3, 0)

	result, err := e.CountLocalDynamic(context.Background(), s, Watermark{})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), result.TriangleCount)
	assert.Equal(t, int64(3), result.LocalRelationCount)
}

// fakeLoader is a PartitionLoader test double backed by per-partition
// memstore.Store instances, standing in for the RPC a real worker would
// make to another partition's owning process.
type fakeLoader struct {
	partitions map[int]*memstore.Store
}

func (f *fakeLoader) CentralAdjacency(ctx context.Context, graphID string, partitionID int) (store.AdjacencySet, error) {
	s := f.partitions[partitionID]
	return store.BuildAdjacency(ctx, s, partitionID)
}

func (f *fakeLoader) CentralEdgesSince(ctx context.Context, graphID string, partitionID int, since int64) ([]Edge, int64, error) {
	s := f.partitions[partitionID]
	count, err := s.CentralRelationCount(ctx)
	if err != nil {
		return nil, 0, err
	}

	var edges []Edge
	for i := since + 1; i <= count; i++ {
		rel, err := s.GetCentralRelation(ctx, i)
		if err != nil {
			return nil, 0, err
		}
		edges = append(edges, Edge{Source: rel.Source, Destination: rel.Destination})
		edges = append(edges, Edge{Source: rel.Destination, Destination: rel.Source})
	}
	return edges, count, nil
}

func TestCountCentralStaticMergesPartitions(t *testing.T) {
	p0 := memstore.New()
	addEdge(p0, true, 1, 2, 0)

	p1 := memstore.New()
	addEdge(p1, true, 2, 3, 1)
	addEdge(p1, true, 1, 3, 1)

	loader := &fakeLoader{partitions: map[int]*memstore.Store{0: p0, 1: p1}}
	e := New(glog.New())

	triples, err := e.CountCentralStatic(context.Background(), loader, "g1", []int{0, 1})
	assert.NoError(t, err)
	assert.Equal(t, "1,2,3", triples)
}

func TestCountCentralDynamicReturnsNewTriples(t *testing.T) {
	p0 := memstore.New()
	addEdge(p0, true, 1, 2, 0)

	p1 := memstore.New()
	addEdge(p1, true, 2, 3, 1)
	addEdge(p1, true, 1, 3, 1)

	loader := &fakeLoader{partitions: map[int]*memstore.Store{0: p0, 1: p1}}
	e := New(glog.New())

	out, counts, err := e.CountCentralDynamic(context.Background(), loader, "g1", []int{0, 1}, []int64{0, 0})
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, counts)
	assert.True(t, strings.Contains(out, "1,2,3"))
}
