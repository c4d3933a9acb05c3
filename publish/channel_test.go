package publish

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thamindumk/jasminegraph/internal/glog"
)

func readTag(t *testing.T, conn net.Conn, n int) string {
	t.Helper()
	buf := make([]byte, n)
	rn, err := conn.Read(buf)
	require.NoError(t, err)
	return string(buf[:rn])
}

func respondAck(t *testing.T, conn net.Conn, tag string) {
	t.Helper()
	_, err := conn.Write([]byte(tag))
	require.NoError(t, err)
}

// fakeMaster answers one PublishTuple round trip with the expected acks.
func fakeMaster(t *testing.T, conn net.Conn) {
	t.Helper()

	assert.Equal(t, QueryDataStart, readTag(t, conn, len(QueryDataStart)))
	respondAck(t, conn, QueryDataAck)

	var lenBuf [4]byte
	_, err := conn.Read(lenBuf[:])
	require.NoError(t, err)
	length := int(binary.BigEndian.Uint32(lenBuf[:]))
	respondAck(t, conn, GraphStreamCLengthAck)

	payload := make([]byte, length)
	_, err = conn.Read(payload)
	require.NoError(t, err)
	respondAck(t, conn, GraphDataSuccess)
}

func TestPublishTupleRoundTrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	ch := New(client, glog.New())

	done := make(chan struct{})
	go func() {
		fakeMaster(t, server)
		close(done)
	}()

	err := ch.PublishTuple(context.Background(), `{"a":1}`)
	assert.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("fake master did not observe the frame")
	}
}

func TestPublishTupleShortWriteMarksExited(t *testing.T) {
	client, server := net.Pipe()
	server.Close() // closed peer: first write fails

	ch := New(client, glog.New())
	err := ch.PublishTuple(context.Background(), "x")
	assert.Error(t, err)
	assert.True(t, ch.Exited())
}
