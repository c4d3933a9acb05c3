package operator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/internal/config"
	"github.com/thamindumk/jasminegraph/internal/glog"
	"github.com/thamindumk/jasminegraph/status"
	"github.com/thamindumk/jasminegraph/store"
	"github.com/thamindumk/jasminegraph/store/memstore"
	"github.com/thamindumk/jasminegraph/tuple"
)

// fixtureAgesExtra feeds EagerFunction a leaf of numeric-typed tuples
// directly, so the AVG test does not depend on a store fixture or on
// propertyValue's coercion of scanned property strings.
type fixtureAgesExtra struct {
	Variable string  `json:"variable"`
	Ages     []int64 `json:"ages"`
}

func init() {
	Register("fixtureAges", func(e *Exec, node *Node, out *buffer.Buffer) error {
		var extra fixtureAgesExtra
		if err := node.extra(&extra); err != nil {
			return planMalformed("fixtureAges", err)
		}
		for _, age := range extra.Ages {
			row := tuple.Tuple{extra.Variable: tuple.Nested(tuple.Tuple{"age": tuple.Int(age)})}
			if err := out.Add(e.Ctx, row); err != nil {
				return err
			}
		}
		return out.Add(e.Ctx, tuple.Sentinel())
	})
}

func newExec(s *memstore.Store, partitionID, partitions int) *Exec {
	return &Exec{
		Ctx:        context.Background(),
		WorkerID:   0,
		GraphID:    "g1",
		Config:     config.GraphConfig{PartitionID: partitionID},
		Store:      s,
		Partitions: partitions,
		Status:     status.NewBuffer(64),
		Log:        glog.New(),
	}
}

// run parses planJSON, executes it against e, and returns its rows
// (sentinel excluded) plus the run's terminal error.
func run(t *testing.T, e *Exec, planJSON string) ([]tuple.Tuple, error) {
	t.Helper()
	plan, err := ParseNode([]byte(planJSON))
	require.NoError(t, err)

	out := buffer.New(buffer.DefaultCapacity)
	errCh := make(chan error, 1)
	go func() { errCh <- Run(e, plan, out) }()

	var rows []tuple.Tuple
	for {
		tup, getErr := out.Get(context.Background())
		require.NoError(t, getErr)
		if tup.IsSentinel() {
			break
		}
		rows = append(rows, tup)
	}
	return rows, <-errCh
}

// TestAllNodeScanProduceResult covers spec.md §8 scenario 1: scanning
// every node owned by this partition and projecting it through
// ProduceResult.
func TestAllNodeScanProduceResult(t *testing.T) {
	s := memstore.New()
	s.AddNode(&store.Node{ID: 1, PartitionID: 0, Properties: map[string]string{"name": "alice"}})
	s.AddNode(&store.Node{ID: 2, PartitionID: 0, Properties: map[string]string{"name": "bob"}})
	s.AddNode(&store.Node{ID: 3, PartitionID: 1, Properties: map[string]string{"name": "carol"}})

	e := newExec(s, 0, 1)
	rows, err := run(t, e, `{
		"Operator": "ProduceResult",
		"variable": ["n"],
		"NextOperator": "{\"Operator\":\"AllNodeScan\",\"variable\":\"n\"}"
	}`)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	assert.Equal(t, 1, e.Status.Counts()[status.SUCCESS])
	assert.Equal(t, []string{"ProduceResult", "AllNodeScan"}, e.Trail())
}

// TestUndirectedAllRelationshipScan covers spec.md §8 scenario 2: both
// directions of local relations are emitted, and central relations
// outside this partition are filtered out.
func TestUndirectedAllRelationshipScan(t *testing.T) {
	s := memstore.New()
	s.AddLocalRelation(&store.Relation{Source: 1, Destination: 2, Properties: map[string]string{}})
	s.AddCentralRelation(&store.Relation{Source: 2, Destination: 3, Properties: map[string]string{"partitionId": "0"}})
	s.AddCentralRelation(&store.Relation{Source: 5, Destination: 6, Properties: map[string]string{"partitionId": "1"}})

	e := newExec(s, 0, 1)
	rows, err := run(t, e, `{"Operator": "UndirectedAllRelationshipScan", "src": "u", "dst": "v", "r": "rel"}`)
	require.NoError(t, err)

	// local relation (1,2) in both directions, plus the one central
	// relation whose partitionId (0) matches this worker, also both
	// directions: 4 rows total. The partition-1 central relation is
	// filtered out.
	assert.Len(t, rows, 4)
}

// TestExpandAllLocal covers spec.md §8 scenario 4: expanding from a
// locally-owned node walks its local adjacency list.
func TestExpandAllLocal(t *testing.T) {
	s := memstore.New()
	s.AddNode(&store.Node{ID: 1, PartitionID: 0, LocalEdgeRef: 1})
	s.AddNode(&store.Node{ID: 2, PartitionID: 0})
	s.AddLocalRelation(&store.Relation{Source: 1, Destination: 2, Properties: map[string]string{"relationship": "knows"}, NextAsSource: store.NoRef})

	e := newExec(s, 0, 1)
	rows, err := run(t, e, `{
		"Operator": "ExpandAll",
		"variable": "n",
		"relVariable": "r",
		"destVariable": "m",
		"NextOperator": "{\"Operator\":\"AllNodeScan\",\"variable\":\"n\"}"
	}`)
	require.NoError(t, err)

	// Node 2 has a zero LocalEdgeRef so its scan row expands to
	// nothing; only node 1's single outgoing relation yields a row.
	require.Len(t, rows, 1)
	m, ok := rows[0]["m"]
	require.True(t, ok)
	require.Equal(t, tuple.KindTuple, m.Kind)
	assert.Equal(t, int64(2), m.Tuple["id"].Int)
}

// TestCartesianProductSinglePartition covers spec.md §8 scenario 5 with
// e.Partitions=1 (no remote fan-out): the result is the full outer
// product of the two node scans.
func TestCartesianProductSinglePartition(t *testing.T) {
	s := memstore.New()
	s.AddNode(&store.Node{ID: 1, PartitionID: 0})
	s.AddNode(&store.Node{ID: 2, PartitionID: 0})

	e := newExec(s, 0, 1)
	rows, err := run(t, e, `{
		"Operator": "CartesianProduct",
		"left": "{\"Operator\":\"AllNodeScan\",\"variable\":\"a\"}",
		"right": "{\"Operator\":\"AllNodeScan\",\"variable\":\"b\"}"
	}`)
	require.NoError(t, err)
	assert.Len(t, rows, 4) // 2 nodes x 2 nodes
}

// TestOrderByAscending covers spec.md §8 scenario 6: bounded top-K sort
// over a projected numeric field.
func TestOrderByAscending(t *testing.T) {
	s := memstore.New()
	s.AddNode(&store.Node{ID: 3, PartitionID: 0})
	s.AddNode(&store.Node{ID: 1, PartitionID: 0})
	s.AddNode(&store.Node{ID: 2, PartitionID: 0})

	e := newExec(s, 0, 1)
	rows, err := run(t, e, `{
		"Operator": "OrderBy",
		"variable": "id",
		"direction": "ASC",
		"NextOperator": "{\"Operator\":\"Projection\",\"project\":[{\"variable\":\"n\",\"property\":\"id\",\"assign\":\"id\"}],\"NextOperator\":\"{\\\"Operator\\\":\\\"AllNodeScan\\\",\\\"variable\\\":\\\"n\\\"}\"}"
	}`)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var ids []int64
	for _, r := range rows {
		ids = append(ids, r["id"].Int)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

// TestDistinctSuppressesDuplicates exercises the Distinct fix from
// spec.md §9: two parallel edges to the same destination must collapse
// to a single distinct row instead of the source's no-op dedup.
func TestDistinctSuppressesDuplicates(t *testing.T) {
	s := memstore.New()
	s.AddNode(&store.Node{ID: 1, PartitionID: 0, LocalEdgeRef: 1})
	s.AddNode(&store.Node{ID: 2, PartitionID: 0})
	s.AddLocalRelation(&store.Relation{Source: 1, Destination: 2, NextAsSource: 2})
	s.AddLocalRelation(&store.Relation{Source: 1, Destination: 2, NextAsSource: store.NoRef})

	e := newExec(s, 0, 1)
	rows, err := run(t, e, `{
		"Operator": "Distinct",
		"project": [{"variable": "m", "property": "id", "assign": "id"}],
		"NextOperator": "{\"Operator\":\"ExpandAll\",\"variable\":\"n\",\"relVariable\":\"r\",\"destVariable\":\"m\",\"NextOperator\":\"{\\\"Operator\\\":\\\"NodeByIdSeek\\\",\\\"variable\\\":\\\"n\\\",\\\"nodeId\\\":1}\"}"
	}`)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

// TestEagerFunctionAverage covers the EagerFunction AVG aggregate over
// a numeric-typed property.
func TestEagerFunctionAverage(t *testing.T) {
	s := memstore.New()
	e := newExec(s, 0, 1)

	rows, err := run(t, e, `{
		"Operator": "EagerFunction",
		"variable": "n",
		"property": "age",
		"functionName": "AVG",
		"assign": "avgAge",
		"NextOperator": "{\"Operator\":\"fixtureAges\",\"variable\":\"n\",\"ages\":[10,20,30]}"
	}`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 20.0, rows[0]["avgAge"].Float)
}

// TestFilterOrderedComparisonOnScannedProperty covers the fix recorded
// in DESIGN.md's Open Question decisions: a property scanned straight
// off the store (stored as a string, per spec.md §1) must still satisfy
// an ordered Filter comparison once propertyValue recovers its numeric
// Kind.
func TestFilterOrderedComparisonOnScannedProperty(t *testing.T) {
	s := memstore.New()
	s.AddNode(&store.Node{ID: 1, PartitionID: 0, Properties: map[string]string{"age": "17"}})
	s.AddNode(&store.Node{ID: 2, PartitionID: 0, Properties: map[string]string{"age": "42"}})

	e := newExec(s, 0, 1)
	rows, err := run(t, e, `{
		"Operator": "Filter",
		"condition": {"variable": "n", "property": "age", "op": ">=", "value": 18},
		"NextOperator": "{\"Operator\":\"AllNodeScan\",\"variable\":\"n\"}"
	}`)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	n, ok := rows[0]["n"]
	require.True(t, ok)
	assert.Equal(t, int64(2), n.Tuple["id"].Int)
}

// TestCreateStaticElement covers Create with no child: statically
// specified elements are emitted once as nested tuples.
func TestCreateStaticElement(t *testing.T) {
	s := memstore.New()
	e := newExec(s, 0, 1)

	rows, err := run(t, e, `{
		"Operator": "Create",
		"elements": [{"variable": "n", "properties": {"name": "dave"}}]
	}`)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	n, ok := rows[0]["n"]
	require.True(t, ok)
	require.Equal(t, tuple.KindTuple, n.Kind)
	assert.Equal(t, "dave", n.Tuple["name"].Str)
}
