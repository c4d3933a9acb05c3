package operator

import (
	"container/heap"
	"fmt"

	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("OrderBy", execOrderBy)
}

// OrderByMaxRows bounds the in-memory top-K heap OrderBy accumulates
// into before draining, spec.md §9's fix for the source's unbounded
// sort buffer.
const OrderByMaxRows = 5000

type orderByExtra struct {
	Variable  string `json:"variable"`
	Direction string `json:"direction"`
}

// execOrderBy drains its child into a bounded top-K heap keyed on
// Variable with the given Direction ("ASC"/"DESC"); on the child
// sentinel it drains the heap in sorted order to the output — spec.md
// §4.2. A per-tuple decode/shape failure is logged and the row skipped
// rather than treated as fatal, matching the hot-loop policy in §7.
func execOrderBy(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra orderByExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("OrderBy", err)
	}
	desc := extra.Direction == "DESC"

	child, err := node.Child()
	if err != nil {
		return planMalformed("OrderBy", err)
	}
	in, join := e.Child(child)

	h := &rowHeap{desc: desc}
	heap.Init(h)

	for {
		t, err := in.Get(e.Ctx)
		if err != nil {
			_ = join()
			return err
		}
		if t.IsSentinel() {
			break
		}

		key, err := sortKey(t, extra.Variable)
		if err != nil {
			e.Log.Warnw("OrderBy: skipping row with unsortable key", "err", err)
			continue
		}

		heap.Push(h, row{key: key, tuple: t})
		if h.Len() > OrderByMaxRows {
			heap.Pop(h)
		}
	}

	if err := join(); err != nil {
		return err
	}

	sorted := make([]row, h.Len())
	for i := len(sorted) - 1; i >= 0; i-- {
		sorted[i] = heap.Pop(h).(row)
	}
	for _, r := range sorted {
		if err := out.Add(e.Ctx, r.tuple); err != nil {
			return err
		}
	}
	return out.Add(e.Ctx, tuple.Sentinel())
}

func sortKey(t tuple.Tuple, variable string) (float64, error) {
	v, ok := t[variable]
	if !ok {
		return 0, fmt.Errorf("operator: OrderBy: missing sort key %q", variable)
	}
	switch v.Kind {
	case tuple.KindInt:
		return float64(v.Int), nil
	case tuple.KindFloat:
		return v.Float, nil
	default:
		return 0, fmt.Errorf("operator: OrderBy: sort key %q is not numeric", variable)
	}
}

type row struct {
	key   float64
	tuple tuple.Tuple
}

// rowHeap is a bounded max-heap (ASC) or min-heap (DESC) of rows: when
// desc is false the heap root is the largest key so heap.Pop when the
// heap overflows discards the current worst candidate for a top-K
// ascending result, and vice versa for DESC.
type rowHeap struct {
	rows []row
	desc bool
}

func (h *rowHeap) Len() int { return len(h.rows) }

func (h *rowHeap) Less(i, j int) bool {
	if h.desc {
		return h.rows[i].key < h.rows[j].key
	}
	return h.rows[i].key > h.rows[j].key
}

func (h *rowHeap) Swap(i, j int) { h.rows[i], h.rows[j] = h.rows[j], h.rows[i] }

func (h *rowHeap) Push(x interface{}) { h.rows = append(h.rows, x.(row)) }

func (h *rowHeap) Pop() interface{} {
	old := h.rows
	n := len(old)
	item := old[n-1]
	h.rows = old[:n-1]
	return item
}
