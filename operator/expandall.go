package operator

import (
	"encoding/json"

	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/store"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("ExpandAll", execExpandAll)
}

type expandAllExtra struct {
	SourceVar string `json:"variable"`
	RelVar    string `json:"relVariable"`
	DestVar   string `json:"destVariable"`
	RelType   string `json:"relType"`
}

// execExpandAll pulls each input tuple from its child. If the source
// node is local, it walks both directions of the relation linked list
// rooted at the node's local and central edge refs, optionally
// filtering by RelType, emitting one tuple per neighbor. If the source
// is remote, it dispatches a templated sub-plan to the owning
// partition and streams its response back into out — spec.md §4.2, §4.3.
func execExpandAll(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra expandAllExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("ExpandAll", err)
	}

	child, err := node.Child()
	if err != nil {
		return planMalformed("ExpandAll", err)
	}
	in, join := e.Child(child)

	for {
		t, err := in.Get(e.Ctx)
		if err != nil {
			return err
		}
		if t.IsSentinel() {
			if err := out.Add(e.Ctx, t); err != nil {
				return err
			}
			return join()
		}

		if err := e.expandOne(out, extra, t); err != nil {
			_ = join()
			return err
		}
	}
}

func (e *Exec) expandOne(out *buffer.Buffer, extra expandAllExtra, t tuple.Tuple) error {
	bound, ok := t[extra.SourceVar]
	if !ok || bound.Kind != tuple.KindTuple {
		return typeMismatch("ExpandAll", errInvalidNodeID)
	}

	idVal, ok := bound.Tuple["id"]
	if !ok {
		return typeMismatch("ExpandAll", errInvalidNodeID)
	}
	srcID := idVal.Int

	partVal, hasPart := bound.Tuple[tuple.PartitionIDKey]
	local := !hasPart || partVal.Int == int64(e.Config.PartitionID)

	if local {
		return e.expandLocal(out, extra, t, srcID)
	}
	return e.expandRemote(out, extra, t, srcID, partVal.Int)
}

// expandLocal walks the local and central adjacency lists rooted at
// the source node, emitting one tuple per neighbor.
func (e *Exec) expandLocal(out *buffer.Buffer, extra expandAllExtra, t tuple.Tuple, srcID int64) error {
	n, err := e.Store.GetNode(e.Ctx, srcID)
	if err != nil {
		return storeErr("ExpandAll", err)
	}

	for _, walk := range []struct {
		head    int64
		central bool
	}{
		{n.LocalEdgeRef, false},
		{n.CentralEdgeRef, true},
	} {
		if err := e.walkAdjacency(out, extra, t, walk.head, walk.central); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exec) walkAdjacency(out *buffer.Buffer, extra expandAllExtra, t tuple.Tuple, head int64, central bool) error {
	srcID := t[extra.SourceVar].Tuple["id"].Int
	for idx := head; idx != store.NoRef; {
		var r *store.Relation
		var err error
		if central {
			r, err = e.Store.GetCentralRelation(e.Ctx, idx)
		} else {
			r, err = e.Store.GetLocalRelation(e.Ctx, idx)
		}
		if err != nil {
			return storeErr("ExpandAll", err)
		}

		neighborID, next := r.Destination, r.NextAsSource
		if r.Source != srcID {
			neighborID, next = r.Source, r.NextAsDest
		}

		if extra.RelType == "" || r.Type() == extra.RelType {
			neighbor, err := e.Store.GetNode(e.Ctx, neighborID)
			if err != nil {
				return storeErr("ExpandAll", err)
			}

			emitted := t.Clone()
			emitted[extra.RelVar] = relationValue(r)
			emitted[extra.DestVar] = nodeValue(neighbor)
			if err := out.Add(e.Ctx, emitted); err != nil {
				return err
			}
		}

		idx = next
	}
	return nil
}

// expandRemote takes the home partition of srcID from the bound node's
// partitionID (the master is not asked for it) and dispatches a freshly
// templated ExpandAll sub-plan there, streaming its response
// back through pumpUntilSentinel's connector-thread shape. The sub-plan
// is rooted at a NodeByIdSeek(srcID) child, since the owning worker has
// no upstream operator to hand it the source binding ExpandAll needs.
func (e *Exec) expandRemote(out *buffer.Buffer, extra expandAllExtra, t tuple.Tuple, srcID, partition int64) error {
	if e.Master == nil {
		return typeMismatch("ExpandAll", errNoMasterClient)
	}

	childExtra, err := json.Marshal(nodeByIdSeekExtra{Variable: extra.SourceVar, NodeID: srcID})
	if err != nil {
		return typeMismatch("ExpandAll", err)
	}
	childWire, err := stringifyChild(&Node{Operator: "NodeByIdSeek", Extra: childExtra})
	if err != nil {
		return typeMismatch("ExpandAll", err)
	}

	selfExtra, err := json.Marshal(extra)
	if err != nil {
		return typeMismatch("ExpandAll", err)
	}
	subPlan := &Node{Operator: "ExpandAll", NextOperator: childWire, Extra: selfExtra}

	sub, err := e.Master.RunSubPlan(e.Ctx, e.GraphID, int(partition), subPlan)
	if err != nil {
		return err
	}

	for {
		rt, err := sub.Get(e.Ctx)
		if err != nil {
			return err
		}
		if rt.IsSentinel() {
			return nil
		}

		merged := t.Clone()
		for k, v := range rt {
			merged[k] = v
		}
		if err := out.Add(e.Ctx, merged); err != nil {
			return err
		}
	}
}
