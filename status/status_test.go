package status

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTrip(t *testing.T) {
	cases := []Message{
		{WorkerID: 3, Type: PROGRESS, Message: "Scanned 10 nodes out of 40"},
		{WorkerID: 0, Type: SUCCESS, Message: "-1"},
		{WorkerID: 7, Type: ERROR, Message: "plan malformed: missing Operator"},
	}

	for _, m := range cases {
		out, err := Parse(m.String())
		assert.NoError(t, err)
		assert.Equal(t, m, out)
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("not-a-status-message")
	assert.Error(t, err)
}

type recordingPublisher struct {
	got []Message
}

func (r *recordingPublisher) PublishStatus(ctx context.Context, m Message) error {
	r.got = append(r.got, m)
	return nil
}

func TestNotifierDrainsUntilSentinel(t *testing.T) {
	buf := NewBuffer(4)
	pub := &recordingPublisher{}
	n := NewNotifier(buf, pub)

	buf.Push(Message{WorkerID: 1, Type: PROGRESS, Message: "working"})
	buf.Push(Message{WorkerID: 1, Type: SUCCESS, Message: "-1"})

	assert.NoError(t, n.Run(context.Background()))
	assert.Len(t, pub.got, 2)
	assert.True(t, pub.got[1].IsSentinel())
}
