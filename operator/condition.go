package operator

import (
	"encoding/json"
	"fmt"

	"github.com/thamindumk/jasminegraph/tuple"
)

// condition is the JSON AST a Filter node's "condition" field decodes
// into: either a leaf comparison (variable.property <op> literal) or a
// boolean combinator over sub-conditions.
type condition struct {
	And      []condition     `json:"and,omitempty"`
	Or       []condition     `json:"or,omitempty"`
	Not      *condition      `json:"not,omitempty"`
	Variable string          `json:"variable,omitempty"`
	Property string          `json:"property,omitempty"`
	Op       string          `json:"op,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// eval evaluates c against t. Ordered comparisons (<, <=, >, >=) need a
// numeric operand and a numeric field and report a TypeMismatch error
// otherwise; "=" and "!=" treat values of incompatible Kinds as unequal
// rather than as an error. A missing property evaluates to false.
func (c condition) eval(t tuple.Tuple) (bool, error) {
	switch {
	case len(c.And) > 0:
		for _, sub := range c.And {
			ok, err := sub.eval(t)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil

	case len(c.Or) > 0:
		for _, sub := range c.Or {
			ok, err := sub.eval(t)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil

	case c.Not != nil:
		ok, err := c.Not.eval(t)
		return !ok, err

	default:
		return c.evalLeaf(t)
	}
}

func (c condition) evalLeaf(t tuple.Tuple) (bool, error) {
	bound, ok := t[c.Variable]
	if !ok || bound.Kind != tuple.KindTuple {
		return false, typeMismatch("Filter", fmt.Errorf("binding %q is not a node/relation", c.Variable))
	}
	field, ok := bound.Tuple[c.Property]
	if !ok {
		return false, nil
	}

	var want interface{}
	if len(c.Value) > 0 {
		if err := json.Unmarshal(c.Value, &want); err != nil {
			return false, typeMismatch("Filter", err)
		}
	}

	switch c.Op {
	case "=", "":
		return compareEqual(field, want), nil
	case "!=":
		return !compareEqual(field, want), nil
	case "<", "<=", ">", ">=":
		return compareOrdered(field, want, c.Op)
	default:
		return false, typeMismatch("Filter", fmt.Errorf("unknown operator %q", c.Op))
	}
}

func compareEqual(field tuple.Value, want interface{}) bool {
	switch w := want.(type) {
	case string:
		return field.AsString() == w
	case float64:
		switch field.Kind {
		case tuple.KindInt:
			return float64(field.Int) == w
		case tuple.KindFloat:
			return field.Float == w
		}
	case bool:
		return field.Kind == tuple.KindBool && field.Bool == w
	}
	return false
}

func compareOrdered(field tuple.Value, want interface{}, op string) (bool, error) {
	w, ok := want.(float64)
	if !ok {
		return false, typeMismatch("Filter", fmt.Errorf("operator %q requires a numeric operand", op))
	}

	var have float64
	switch field.Kind {
	case tuple.KindInt:
		have = float64(field.Int)
	case tuple.KindFloat:
		have = field.Float
	default:
		return false, typeMismatch("Filter", fmt.Errorf("operator %q requires a numeric field", op))
	}

	switch op {
	case "<":
		return have < w, nil
	case "<=":
		return have <= w, nil
	case ">":
		return have > w, nil
	case ">=":
		return have >= w, nil
	}
	return false, nil
}
