package operator

import (
	"github.com/thamindumk/jasminegraph/buffer"
)

func init() {
	Register("Filter", execFilter)
}

type filterExtra struct {
	Condition condition `json:"condition"`
}

// execFilter pulls from its child, emitting tuples for which Condition
// evaluates true — spec.md §4.2.
func execFilter(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra filterExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("Filter", err)
	}

	child, err := node.Child()
	if err != nil {
		return planMalformed("Filter", err)
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

		ok, err := extra.Condition.eval(t)
		if err != nil {
			_ = join()
			return err
		}
		if ok {
			if err := out.Add(e.Ctx, t); err != nil {
				_ = join()
				return err
			}
		}
	}
}
