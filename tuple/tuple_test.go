package tuple

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := Tuple{
		"n": Nested(Tuple{
			"id":          String("1"),
			PartitionIDKey: String("0"),
		}),
		"count": Int(42),
		"ratio": Float(0.5),
		"ok":    Bool(true),
	}

	data, err := Encode(in)
	assert.NoError(t, err)

	out, err := Decode(data)
	assert.NoError(t, err)

	assert.Equal(t, in.Canon(), out.Canon())
}

func TestSentinel(t *testing.T) {
	s := Sentinel()
	assert.True(t, s.IsSentinel())

	data, err := Encode(s)
	assert.NoError(t, err)

	out, err := Decode(data)
	assert.NoError(t, err)
	assert.True(t, out.IsSentinel())

	assert.False(t, Tuple{"a": String("b")}.IsSentinel())
}

func TestCanonDeterministic(t *testing.T) {
	a := Tuple{"a": Int(1), "b": String("x")}
	b := Tuple{"b": String("x"), "a": Int(1)}
	assert.Equal(t, a.Canon(), b.Canon())
}
