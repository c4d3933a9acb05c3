package tuple

// Kind discriminates the Value union.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTuple
)

// Value is a tagged union of the scalar and nested-object types a
// binding can hold. Using a struct instead of interface{} keeps Tuple
// comparisons and canonicalization allocation-free for the scalar case.
type Value struct {
	Kind  Kind
	Str   string
	Int   int64
	Float float64
	Bool  bool
	Tuple Tuple
}

// String wraps a string as a Value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Int wraps an int64 as a Value.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Float wraps a float64 as a Value.
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// Bool wraps a bool as a Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Nested wraps a Tuple as a Value, for node/relation-shaped bindings.
func Nested(t Tuple) Value { return Value{Kind: KindTuple, Tuple: t} }

// IsNull reports whether v holds no data.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsString returns the string form of v regardless of its kind, for
// bindings the planner expects to compare or template as text (node
// ids, partition ids).
func (v Value) AsString() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return itoa(v.Int)
	case KindFloat:
		return ftoa(v.Float)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

func (v Value) toInterface() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindBool:
		return v.Bool
	case KindTuple:
		out := make(map[string]interface{}, len(v.Tuple))
		for k, vv := range v.Tuple {
			out[k] = vv.toInterface()
		}
		return out
	default:
		return nil
	}
}

func fromInterface(raw interface{}) Value {
	switch x := raw.(type) {
	case string:
		return String(x)
	case float64:
		if x == float64(int64(x)) {
			return Int(int64(x))
		}
		return Float(x)
	case bool:
		return Bool(x)
	case map[string]interface{}:
		return Nested(fromWire(x))
	case nil:
		return Value{Kind: KindNull}
	default:
		return Value{Kind: KindNull}
	}
}
