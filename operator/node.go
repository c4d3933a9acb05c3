// Package operator is the physical query-plan interpreter: a Node tree
// parsed from plan JSON is walked operator-by-operator, each spawning
// its child into a freshly allocated buffer.Buffer and forwarding the
// child's sentinel once its own output is complete. Grounded on the
// teacher's topology/context/builder trio (topology.go, context.go,
// builder.go), generalized from a statically-built DAG to a
// tree-shaped interpreter since plan shape is only known at query time.
package operator

import "encoding/json"

// Node is one plan-JSON node. Unary operators nest their child under
// NextOperator (itself JSON-stringified, matching the wire contract in
// spec.md §6); CartesianProduct nests Left/Right instead. Operator-
// specific extras (Variable, Property, RelType, Condition, ...) are
// kept as raw JSON and parsed lazily by the operator that owns them.
type Node struct {
	Operator     string          `json:"Operator"`
	NextOperator json.RawMessage `json:"NextOperator,omitempty"`
	Left         json.RawMessage `json:"left,omitempty"`
	Right        json.RawMessage `json:"right,omitempty"`
	Extra        json.RawMessage `json:"-"`
}

// ParseNode decodes one plan-JSON node. The raw bytes are kept on Extra
// so operator-specific fields (which vary per tag) can be decoded a
// second time into the operator's own extras struct.
func ParseNode(raw []byte) (*Node, error) {
	var n Node
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	n.Extra = append(json.RawMessage(nil), raw...)
	return &n, nil
}

// Child decodes NextOperator into a Node. It is nil if this node is a
// leaf (no NextOperator field present).
func (n *Node) Child() (*Node, error) {
	if len(n.NextOperator) == 0 {
		return nil, nil
	}
	return parseNestedNode(n.NextOperator)
}

// LeftNode decodes the Left child of a CartesianProduct node.
func (n *Node) LeftNode() (*Node, error) { return parseNestedNode(n.Left) }

// RightNode decodes the Right child of a CartesianProduct node.
func (n *Node) RightNode() (*Node, error) { return parseNestedNode(n.Right) }

// parseNestedNode decodes a child-plan field, which per spec.md §6 is
// itself JSON-stringified: raw holds a JSON string whose contents are
// the child's plan JSON, not the plan JSON directly.
func parseNestedNode(raw json.RawMessage) (*Node, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return ParseNode([]byte(s))
}

// extra decodes the node's leaf-specific fields into dst.
func (n *Node) extra(dst interface{}) error {
	return json.Unmarshal(n.Extra, dst)
}

// MarshalJSON re-serializes a Node, merging Extra's operator-specific
// fields back in with Operator/NextOperator/Left/Right. A Node ParseNode
// decoded carries its whole wire JSON on Extra, so this round-trips it
// unchanged; a Node built in-process for a remote sub-plan (master.Client
// .RunSubPlan) sets Extra to just its own extras struct's JSON, which
// this merges with the rest.
func (n *Node) MarshalJSON() ([]byte, error) {
	m := map[string]json.RawMessage{}
	if len(n.Extra) > 0 {
		if err := json.Unmarshal(n.Extra, &m); err != nil {
			return nil, err
		}
	}

	opJSON, err := json.Marshal(n.Operator)
	if err != nil {
		return nil, err
	}
	m["Operator"] = opJSON

	if len(n.NextOperator) > 0 {
		m["NextOperator"] = n.NextOperator
	}
	if len(n.Left) > 0 {
		m["left"] = n.Left
	}
	if len(n.Right) > 0 {
		m["right"] = n.Right
	}
	return json.Marshal(m)
}

// stringifyChild encodes n and wraps the result in a JSON string, the
// inverse of parseNestedNode: NextOperator/Left/Right all carry their
// child JSON-stringified per spec.md §6, so code assembling a plan to
// send (rather than one ParseNode decoded off the wire) needs this to
// populate those fields correctly.
func stringifyChild(n *Node) (json.RawMessage, error) {
	raw, err := json.Marshal(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(raw))
}
