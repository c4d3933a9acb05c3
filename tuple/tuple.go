// Package tuple implements the typed row representation that flows
// between operators. The wire format stays JSON (the external contract
// PublishChannel and the planner both speak) but internally a Tuple is a
// small (unordered) map of bindings to a tagged Value union, not a raw JSON
// blob re-parsed at every hop.
package tuple

import (
	"encoding/json"
	"sort"
)

// sentinelKey and sentinelValue mark the in-band end-of-stream marker
// that terminates every BoundedBuffer stream, "-1" in spec terms.
const (
	sentinelKey   = "__end__"
	sentinelValue = "-1"

	// PartitionIDKey is the reserved binding carried on every tuple that
	// represents a node, equal to that node's owning partition.
	PartitionIDKey = "partitionID"
)

// Tuple is a JSON object mapping a binding name to a Value.
type Tuple map[string]Value

// Sentinel returns the terminator tuple for a BoundedBuffer stream.
func Sentinel() Tuple {
	return Tuple{sentinelKey: String(sentinelValue)}
}

// IsSentinel reports whether t is the stream terminator.
func (t Tuple) IsSentinel() bool {
	v, ok := t[sentinelKey]
	return ok && v.Kind == KindString && v.Str == sentinelValue
}

// Clone makes a shallow copy of t, safe to mutate without affecting the
// original (nested Tuple values are copied by reference, matching the
// original's copy-by-assignment semantics for nested JSON objects).
func (t Tuple) Clone() Tuple {
	out := make(Tuple, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Canon returns a canonical, deterministic serialization of t suitable
// as a deduplication key: keys sorted, scalar values only (nested
// tuples are recursively canonicalized).
func (t Tuple) Canon() string {
	b, _ := json.Marshal(canonValue(t))
	return string(b)
}

func canonValue(t Tuple) map[string]interface{} {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(map[string]interface{}, len(t))
	for _, k := range keys {
		out[k] = t[k].toInterface()
	}
	return out
}

// Encode serializes t as JSON, the wire form used by BoundedBuffer and
// PublishChannel alike.
func Encode(t Tuple) ([]byte, error) {
	return json.Marshal(toWire(t))
}

// Decode parses the wire JSON form produced by Encode.
func Decode(data []byte) (Tuple, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return fromWire(raw), nil
}

func toWire(t Tuple) map[string]interface{} {
	out := make(map[string]interface{}, len(t))
	for k, v := range t {
		out[k] = v.toInterface()
	}
	return out
}

func fromWire(raw map[string]interface{}) Tuple {
	out := make(Tuple, len(raw))
	for k, v := range raw {
		out[k] = fromInterface(v)
	}
	return out
}
