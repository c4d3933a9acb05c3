package operator

import (
	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/store"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("NodeByIdSeek", execNodeByIdSeek)
}

type nodeByIdSeekExtra struct {
	Variable string      `json:"variable"`
	NodeID   interface{} `json:"nodeId"`
}

// execNodeByIdSeek looks up a single node id, emitting it iff it lives
// in this partition — spec.md §4.2.
func execNodeByIdSeek(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra nodeByIdSeekExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("NodeByIdSeek", err)
	}

	id, ok := nodeID(extra.NodeID)
	if !ok {
		return planMalformed("NodeByIdSeek", errInvalidNodeID)
	}

	n, err := e.Store.GetNode(e.Ctx, id)
	if err == store.ErrNotFound {
		return out.Add(e.Ctx, tuple.Sentinel())
	}
	if err != nil {
		return storeErr("NodeByIdSeek", err)
	}

	if n.PartitionID == e.Config.PartitionID {
		if err := out.Add(e.Ctx, tuple.Tuple{extra.Variable: nodeValue(n)}); err != nil {
			return err
		}
	}
	return out.Add(e.Ctx, tuple.Sentinel())
}
