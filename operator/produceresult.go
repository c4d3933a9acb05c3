package operator

import (
	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/status"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("ProduceResult", execProduceResult)
}

type produceResultExtra struct {
	Variables []string `json:"variable"`
}

// execProduceResult is the plan root: for each child tuple it projects
// onto Variables and emits to out; on the child sentinel it pushes a
// SUCCESS status and forwards the sentinel — spec.md §4.2.
func execProduceResult(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra produceResultExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("ProduceResult", err)
	}

	child, err := node.Child()
	if err != nil {
		return planMalformed("ProduceResult", err)
	}
	in, join := e.Child(child)

	for {
		t, err := in.Get(e.Ctx)
		if err != nil {
			return err
		}
		if t.IsSentinel() {
			if err := join(); err != nil {
				e.Status.Push(status.Message{WorkerID: e.WorkerID, Type: status.ERROR, Message: err.Error()})
				_ = out.Add(e.Ctx, tuple.Sentinel())
				return err
			}
			e.Status.Push(status.Message{WorkerID: e.WorkerID, Type: status.SUCCESS, Message: "query completed"})
			return out.Add(e.Ctx, t)
		}

		projected := make(tuple.Tuple, len(extra.Variables))
		if len(extra.Variables) == 0 {
			projected = t
		} else {
			for _, v := range extra.Variables {
				if bound, ok := t[v]; ok {
					projected[v] = bound
				}
			}
		}

		if err := out.Add(e.Ctx, projected); err != nil {
			_ = join()
			return err
		}
	}
}
