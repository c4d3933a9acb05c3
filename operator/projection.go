package operator

import (
	"fmt"

	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/tuple"
)

func init() {
	Register("Projection", execProjection)
}

// projectOperand is either {variable, property, assign} (read a field
// off a bound node/relation) or {functionName, assign} (compute an
// aggregate-free scalar function over the current tuple).
type projectOperand struct {
	Variable     string `json:"variable"`
	Property     string `json:"property"`
	FunctionName string `json:"functionName"`
	Assign       string `json:"assign"`
}

type projectionExtra struct {
	Project []projectOperand `json:"project"`
}

// execProjection pulls from its child; for each operand, computes the
// value and binds it under Assign. With no project array, it is a
// pass-through — spec.md §4.2.
func execProjection(e *Exec, node *Node, out *buffer.Buffer) error {
	var extra projectionExtra
	if err := node.extra(&extra); err != nil {
		return planMalformed("Projection", err)
	}

	child, err := node.Child()
	if err != nil {
		return planMalformed("Projection", err)
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

		projected, err := project(t, extra.Project)
		if err != nil {
			_ = join()
			return err
		}
		if err := out.Add(e.Ctx, projected); err != nil {
			_ = join()
			return err
		}
	}
}

func project(t tuple.Tuple, operands []projectOperand) (tuple.Tuple, error) {
	if len(operands) == 0 {
		return t, nil
	}

	out := make(tuple.Tuple, len(operands))
	for _, op := range operands {
		if op.FunctionName != "" {
			v, err := applyFunction(op.FunctionName, t)
			if err != nil {
				return nil, err
			}
			out[op.Assign] = v
			continue
		}

		bound, ok := t[op.Variable]
		if !ok || bound.Kind != tuple.KindTuple {
			return nil, typeMismatch("Projection", fmt.Errorf("binding %q is not a node/relation", op.Variable))
		}
		out[op.Assign] = bound.Tuple[op.Property]
	}
	return out, nil
}

// applyFunction computes a scalar, per-row function used by plans that
// don't project a bound property directly. Only "count" is supported,
// yielding 1 for every row; any other name is a TypeMismatch error.
func applyFunction(name string, t tuple.Tuple) (tuple.Value, error) {
	switch name {
	case "count":
		return tuple.Int(1), nil
	default:
		return tuple.Value{}, typeMismatch("Projection", fmt.Errorf("unknown function %q", name))
	}
}
