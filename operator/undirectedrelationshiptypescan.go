package operator

import (
	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("UndirectedRelationshipTypeScan", execUndirectedRelationshipTypeScan)
}

type relationshipTypeScanExtra struct {
	Variable string `json:"variable"`
	RelType  string `json:"relType"`
}

// execUndirectedRelationshipTypeScan scans the node index, emitting a
// node under the relType binding iff it is local — spec.md §4.2. The
// relType itself narrows nothing at the node-scan stage (it only
// matters once ExpandAll walks edges from these nodes); it is carried
// through so the plan's binding name survives.
func execUndirectedRelationshipTypeScan(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra relationshipTypeScanExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("UndirectedRelationshipTypeScan", err)
	}

	ids, err := e.Store.NodeIDs(e.Ctx)
	if err != nil {
		return storeErr("UndirectedRelationshipTypeScan", err)
	}

	for _, id := range ids {
		n, err := e.Store.GetNode(e.Ctx, id)
		if err != nil {
			return storeErr("UndirectedRelationshipTypeScan", err)
		}
		if n.PartitionID != e.Config.PartitionID {
			continue
		}
		if err := out.Add(e.Ctx, tuple.Tuple{extra.RelType: nodeValue(n)}); err != nil {
			return err
		}
	}

	return out.Add(e.Ctx, tuple.Sentinel())
}
