package operator

import (
	"strconv"

	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/store"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("UndirectedAllRelationshipScan", execUndirectedAllRelationshipScan)
}

type allRelationshipScanExtra struct {
	Source      string `json:"src"`
	Destination string `json:"dst"`
	Relation    string `json:"r"`
}

// execUndirectedAllRelationshipScan iterates local relations 1..N,
// emitting both (u,v) and (v,u) bindings for each, then does the same
// for central relations whose owning partition (carried as a "partitionId"
// property) matches this worker's — spec.md §4.2.
func execUndirectedAllRelationshipScan(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra allRelationshipScanExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("UndirectedAllRelationshipScan", err)
	}

	localN, err := e.Store.LocalRelationCount(e.Ctx)
	if err != nil {
		return storeErr("UndirectedAllRelationshipScan", err)
	}
	for i := int64(1); i <= localN; i++ {
		r, err := e.Store.GetLocalRelation(e.Ctx, i)
		if err != nil {
			return storeErr("UndirectedAllRelationshipScan", err)
		}
		if err := emitBothDirections(e, out, extra, r); err != nil {
			return err
		}
	}

	centralN, err := e.Store.CentralRelationCount(e.Ctx)
	if err != nil {
		return storeErr("UndirectedAllRelationshipScan", err)
	}
	for i := int64(1); i <= centralN; i++ {
		r, err := e.Store.GetCentralRelation(e.Ctx, i)
		if err != nil {
			return storeErr("UndirectedAllRelationshipScan", err)
		}
		if r.Properties["partitionId"] != "" && r.Properties["partitionId"] != partitionIDString(e) {
			continue
		}
		if err := emitBothDirections(e, out, extra, r); err != nil {
			return err
		}
	}

	return out.Add(e.Ctx, tuple.Sentinel())
}

func partitionIDString(e *Exec) string {
	return strconv.Itoa(e.Config.PartitionID)
}

func emitBothDirections(e *Exec, out *buffer.Buffer, extra allRelationshipScanExtra, r *store.Relation) error {
	forward := tuple.Tuple{
		extra.Source:      tuple.Int(r.Source),
		extra.Destination: tuple.Int(r.Destination),
		extra.Relation:    relationValue(r),
	}
	if err := out.Add(e.Ctx, forward); err != nil {
		return err
	}

	backward := tuple.Tuple{
		extra.Source:      tuple.Int(r.Destination),
		extra.Destination: tuple.Int(r.Source),
		extra.Relation:    relationValue(r),
	}
	return out.Add(e.Ctx, backward)
}
