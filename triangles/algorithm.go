package triangles

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/thamindumk/jasminegraph/store"
)

var errMismatchedPartitionCounts = errors.New("triangles: partitionIDs and oldCentralCounts length mismatch")

// triple is a canonicalized (ascending) triangle (a, b, c).
type triple [3]int64

// canonicalTriple sorts u, v, w ascending, the Go shape of the source's
// three XOR-swap blocks in countDynamicCentralTriangles.
func canonicalTriple(u, v, w int64) triple {
	t := triple{u, v, w}
	if t[0] > t[1] {
		t[0], t[1] = t[1], t[0]
	}
	if t[0] > t[2] {
		t[0], t[2] = t[2], t[0]
	}
	if t[1] > t[2] {
		t[1], t[2] = t[2], t[1]
	}
	return t
}

// joinTriples renders triples as "a,b,c:a,b,c:...", the wire form
// StreamingTriangles::countDynamicCentralTriangles and
// countCentralStoreStreamingTriangles both return. An empty slice
// yields "".
func joinTriples(triples []triple) string {
	parts := make([]string, len(triples))
	for i, t := range triples {
		parts[i] = strconv.FormatInt(t[0], 10) + "," + strconv.FormatInt(t[1], 10) + "," + strconv.FormatInt(t[2], 10)
	}
	return strings.Join(parts, ":")
}

// trianglesFromAdjacency enumerates every triangle in adjacency once,
// each vertex triple canonicalized and ascending, the static-count
// analog of the dynamic path's per-edge enumeration: for every edge
// (u,v) with u<v, every common neighbor w>v closes exactly one
// triangle, avoiding the double counting countDynamicCentralTriangles
// leaves in (see spec.md §9 open question 1).
func trianglesFromAdjacency(adjacency store.AdjacencySet) []triple {
	nodes := make([]int64, 0, len(adjacency))
	for n := range adjacency {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	var triples []triple
	for _, u := range nodes {
		for v := range adjacency[u] {
			if v <= u {
				continue
			}
			for w := range adjacency[u] {
				if w <= v {
					continue
				}
				if _, ok := adjacency[v][w]; ok {
					triples = append(triples, triple{u, v, w})
				}
			}
		}
	}
	return triples
}

// countTrianglesStatic is the local collaborator StreamingTriangles
// delegates to as Triangles::count(adjacencyList, distributionMap,
// returnTriangles=false): the triangle count only, not the triple
// listing, over a single full adjacency.
func countTrianglesStatic(adjacency store.AdjacencySet) int64 {
	return int64(len(trianglesFromAdjacency(adjacency)))
}

// countCommon counts, over every edge (u,v) in edges, the size of
// g1[u] ∩ g2[v] — the Go shape of StreamingTriangles::count.
func countCommon(g1, g2 store.AdjacencySet, edges []Edge) int64 {
	var total int64
	for _, edge := range edges {
		for w := range g1[edge.Source] {
			if _, ok := g2[edge.Destination][w]; ok {
				total++
			}
		}
	}
	return total
}

// totalCount computes the differential Triangle-of-Streams new-triangle
// count, ½·((S1−S2)+(S3/3)), with S1, S2, S3 computed concurrently
// exactly as StreamingTriangles::totalCount's three std::async calls
// do. Per spec.md §9 open question 2, S3/3 truncates as integer
// division first (matching the source's `s3 / 3` with `long` operands),
// and only the outer 0.5 multiply is done in floating point so the
// result isn't additionally truncated to zero — the source's literal
// `0.5 * (...)` in an integer-returning function truncates every
// result to 0, which is preserved nowhere deliberately: this is the
// corrected semantics the specification calls for.
func totalCount(g1, g2 store.AdjacencySet, edges []Edge) int64 {
	var s1, s2, s3 int64
	var wg sync.WaitGroup
	wg.Add(3)

	go func() { defer wg.Done(); s1 = countCommon(g1, g1, edges) }()
	go func() { defer wg.Done(); s2 = countCommon(g1, g2, edges) }()
	go func() { defer wg.Done(); s3 = countCommon(g2, g2, edges) }()
	wg.Wait()

	return int64(0.5 * float64((s1-s2)+(s3/3)))
}
