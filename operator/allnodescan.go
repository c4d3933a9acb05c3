package operator

import (
	"fmt"

	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/status"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("AllNodeScan", execAllNodeScan)
}

type allNodeScanExtra struct {
	Variable string `json:"variable"`
}

// execAllNodeScan iterates the node index, emitting {variable: node}
// for every node owned by this partition, with PROGRESS notifications
// at 25/50/75% — spec.md §4.2.
func execAllNodeScan(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra allNodeScanExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("AllNodeScan", err)
	}

	ids, err := e.Store.NodeIDs(e.Ctx)
	if err != nil {
		return storeErr("AllNodeScan", err)
	}

	total := len(ids)
	nextMilestone := 0

	for i, id := range ids {
		n, err := e.Store.GetNode(e.Ctx, id)
		if err != nil {
			return storeErr("AllNodeScan", err)
		}
		if n.PartitionID == e.Config.PartitionID {
			if err := out.Add(e.Ctx, tuple.Tuple{extra.Variable: nodeValue(n)}); err != nil {
				return err
			}
		}

		scanned := i + 1
		pct := scanned * 100 / total
		for nextMilestone < 3 && pct >= (nextMilestone+1)*25 {
			nextMilestone++
			e.Status.Push(status.Message{
				WorkerID: e.WorkerID,
				Type:     status.PROGRESS,
				Message:  fmt.Sprintf("Scanned %d nodes out of %d", scanned, total),
			})
		}
	}

	return out.Add(e.Ctx, tuple.Sentinel())
}
