package operator

import (
	"fmt"

	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("Create", execCreate)
}

// createElement is one node or relation to create, specified statically
// on the plan. Its fields are not filled from an input tuple's bindings.
type createElement struct {
	Variable    string            `json:"variable"`
	Properties  map[string]string `json:"properties"`
	Source      string            `json:"source"`
	Destination string            `json:"destination"`
}

type createExtra struct {
	Elements []createElement `json:"elements"`
}

// execCreate drains NextOperator (if present) and, for every input
// tuple, creates the plan's elements and then forwards the input tuple;
// otherwise it creates the statically specified elements once. A
// foreign creation (an element whose owning partition, resolved via the
// master's partition algorithm, isn't this one) is skipped: it is not
// emitted, and it is not sent to its owning partition. This module does
// not own mutation of the native store (spec.md §1 scope), so a created
// element is emitted downstream as a tuple rather than persisted; a
// real worker wires this into the store's writer.
func execCreate(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra createExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("Create", err)
	}

	child, err := node.Child()
	if err != nil {
		return planMalformed("Create", err)
	}

	if child == nil {
		for _, el := range extra.Elements {
			if err := e.createOne(out, el); err != nil {
				return err
			}
		}
		return out.Add(e.Ctx, tuple.Sentinel())
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

		for _, el := range extra.Elements {
			if err := e.createOne(out, el); err != nil {
				_ = join()
				return err
			}
		}
		if err := out.Add(e.Ctx, t); err != nil {
			_ = join()
			return err
		}
	}
}

func (e *Exec) createOne(out *buffer.Buffer, el createElement) error {
	props := make(tuple.Tuple, len(el.Properties))
	for k, v := range el.Properties {
		props[k] = tuple.String(v)
	}

	if el.Source != "" && e.Master != nil {
		nodeID, ok := nodeID(el.Source)
		if ok {
			owner, err := e.Master.PartitionOf(e.Ctx, e.GraphID, nodeID)
			if err != nil {
				return fmt.Errorf("operator: Create: resolve owner of %d: %w", nodeID, err)
			}
			if owner != e.Config.PartitionID {
				return nil // foreign creation: routing is the master's concern, not modeled further here
			}
		}
	}

	return out.Add(e.Ctx, tuple.Tuple{el.Variable: tuple.Nested(props)})
}
