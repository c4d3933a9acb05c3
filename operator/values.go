package operator

import (
	"strconv"

	"github.com/thamindumk/jasminegraph/store"
	"github.com/thamindumk/jasminegraph/tuple"
)

// nodeValue renders a store.Node as the nested Tuple bound under a
// variable name, carrying its id, partitionID and property map so
// downstream operators (Projection, Filter) can read them uniformly.
func nodeValue(n *store.Node) tuple.Value {
	t := tuple.Tuple{
		"id":                 tuple.Int(n.ID),
		tuple.PartitionIDKey: tuple.Int(int64(n.PartitionID)),
	}
	for k, v := range n.Properties {
		t[k] = propertyValue(v)
	}
	return tuple.Nested(t)
}

// relationValue renders a store.Relation the same way, keyed by its own
// index plus endpoint ids.
func relationValue(r *store.Relation) tuple.Value {
	t := tuple.Tuple{
		"id":          tuple.Int(r.Index),
		"source":      tuple.Int(r.Source),
		"destination": tuple.Int(r.Destination),
	}
	for k, v := range r.Properties {
		t[k] = propertyValue(v)
	}
	return tuple.Nested(t)
}

// propertyValue recovers the typed value behind a native-store property
// string: the on-disk format (spec.md §1) stores every property as a
// char-buffer regardless of its original type, so Filter's ordered
// comparisons and EagerFunction's AVG only work if this layer coerces
// numeric-looking property text back to tuple.Int/tuple.Float. Anything
// that doesn't parse stays a tuple.String.
func propertyValue(v string) tuple.Value {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return tuple.Int(i)
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return tuple.Float(f)
	}
	return tuple.String(v)
}

// nodeID extracts an int64 node id out of a JSON-decoded extras map
// value that may arrive as either a number or a numeric string (the
// plan JSON contract from spec.md §6 doesn't pin this down per field).
func nodeID(raw interface{}) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	default:
		return 0, false
	}
}
