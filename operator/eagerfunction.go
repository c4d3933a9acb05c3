package operator

import (
	"fmt"

	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("EagerFunction", execEagerFunction)
}

type eagerFunctionExtra struct {
	Variable     string `json:"variable"`
	Property     string `json:"property"`
	FunctionName string `json:"functionName"`
	Assign       string `json:"assign"`
}

// execEagerFunction drains its child completely, accumulating AVG over
// variable.property, then emits one summary tuple before the sentinel
// — spec.md §4.2. Only AVG is specified; any other functionName is a
// plan error.
func execEagerFunction(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra eagerFunctionExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("EagerFunction", err)
	}
	if extra.FunctionName != "AVG" {
		return planMalformed("EagerFunction", fmt.Errorf("unsupported function %q", extra.FunctionName))
	}

	child, err := node.Child()
	if err != nil {
		return planMalformed("EagerFunction", err)
	}
	in, join := e.Child(child)

	var sum float64
	var count int64

	for {
		t, err := in.Get(e.Ctx)
		if err != nil {
			_ = join()
			return err
		}
		if t.IsSentinel() {
			break
		}

		bound, ok := t[extra.Variable]
		if !ok || bound.Kind != tuple.KindTuple {
			_ = join()
			return typeMismatch("EagerFunction", fmt.Errorf("binding %q is not a node/relation", extra.Variable))
		}
		field, ok := bound.Tuple[extra.Property]
		if !ok {
			continue
		}

		switch field.Kind {
		case tuple.KindInt:
			sum += float64(field.Int)
		case tuple.KindFloat:
			sum += field.Float
		default:
			_ = join()
			return typeMismatch("EagerFunction", fmt.Errorf("property %q is not numeric", extra.Property))
		}
		count++
	}

	if err := join(); err != nil {
		return err
	}

	avg := 0.0
	if count > 0 {
		avg = sum / float64(count)
	}

	if err := out.Add(e.Ctx, tuple.Tuple{extra.Assign: tuple.Float(avg)}); err != nil {
		return err
	}
	return out.Add(e.Ctx, tuple.Sentinel())
}
