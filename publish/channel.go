package publish

import (
	"context"
	"encoding/binary"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/thamindumk/jasminegraph/internal/glog"
	jg "github.com/thamindumk/jasminegraph"
	"github.com/thamindumk/jasminegraph/status"
)

// connMutexes ports the fd-keyed mutex map from
// InstanceHandler::connectionLocks/mapMutex: every connection gets its
// own serialization mutex, looked up (and created on first use) under a
// package-wide meta-mutex. A connection-owned mutex on Channel would be
// simpler and is the preferred shape for new code; this map is kept to
// faithfully reproduce the existing contract, and Channel.Close deletes
// its own entry so the map cannot grow without bound.
var (
	metaMu      sync.Mutex
	connMutexes = map[net.Conn]*sync.Mutex{}
)

func mutexFor(conn net.Conn) *sync.Mutex {
	metaMu.Lock()
	defer metaMu.Unlock()

	m, ok := connMutexes[conn]
	if !ok {
		m = &sync.Mutex{}
		connMutexes[conn] = m
	}
	return m
}

func releaseMutex(conn net.Conn) {
	metaMu.Lock()
	defer metaMu.Unlock()
	delete(connMutexes, conn)
}

// Channel is one worker-to-master publish connection: tuple rows,
// cross-partition sub-query requests, and status notifications are all
// multiplexed over the same net.Conn, serialized by the connection's
// mutex so concurrent producers (operator tree + status.Notifier) don't
// interleave frames.
type Channel struct {
	conn net.Conn
	mu   *sync.Mutex
	log  glog.Logger

	exitMu   sync.Mutex
	loopExit bool
}

var _ status.Publisher = (*Channel)(nil)

// New wraps conn in a Channel. The connection must already be dialed.
func New(conn net.Conn, log glog.Logger) *Channel {
	return &Channel{conn: conn, mu: mutexFor(conn), log: log}
}

// Exited reports whether a prior short read/write has already torn
// down this channel's protocol state.
func (c *Channel) Exited() bool {
	c.exitMu.Lock()
	defer c.exitMu.Unlock()
	return c.loopExit
}

func (c *Channel) markExited() {
	c.exitMu.Lock()
	c.loopExit = true
	c.exitMu.Unlock()
}

// Close sends the CLOSE frame and releases the connection, mirroring
// DataPublisher's scoped destructor.
func (c *Channel) Close() error {
	defer releaseMutex(c.conn)
	c.writeTag(Close)
	return c.conn.Close()
}

// PublishTuple sends one streamed tuple row (or the "-1" sentinel) to
// the master, porting InstanceHandler::dataPublishToMaster: tag, ack,
// length, ack, payload, ack.
func (c *Channel) PublishTuple(ctx context.Context, message string) error {
	return c.frame(ctx, "Channel.PublishTuple", QueryDataStart, QueryDataAck, message)
}

// PublishStatus implements status.Publisher, reusing the same framing
// as PublishTuple with the status message's wire encoding as payload.
func (c *Channel) PublishStatus(ctx context.Context, m status.Message) error {
	return c.frame(ctx, "Channel.PublishStatus", QueryDataStart, QueryDataAck, m.String())
}

// frame runs one tag/ack, length/ack, payload/ack round trip. A short
// read or write is a hard error that also marks the channel exited,
// matching *loop_exit_p = true in the original; an ack mismatch is
// logged and the frame carries on (frame still returns nil), without
// marking the channel exited.
func (c *Channel) frame(ctx context.Context, op, startTag, startAck, payload string) error {
	if c.Exited() {
		return jg.Wrap(jg.TransportShortWrite, op, fmt.Errorf("channel already exited"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writeTag(startTag); err != nil {
		return jg.Wrap(jg.TransportShortWrite, op, err)
	}
	if err := c.readAck(startAck); err != nil {
		if jg.KindOf(err) != jg.ProtocolUnexpectedAck {
			return jg.Wrap(jg.TransportShortRead, op, err)
		}
		c.log.Warnw("unexpected start ack", "op", op, "err", err)
	}

	if err := c.writeLength(len(payload)); err != nil {
		return jg.Wrap(jg.TransportShortWrite, op, err)
	}
	if err := c.readAck(GraphStreamCLengthAck); err != nil {
		if jg.KindOf(err) != jg.ProtocolUnexpectedAck {
			return jg.Wrap(jg.TransportShortRead, op, err)
		}
		c.log.Warnw("unexpected length ack", "op", op, "err", err)
	}

	if err := c.writePayload(payload); err != nil {
		return jg.Wrap(jg.TransportShortWrite, op, err)
	}
	if err := c.readAck(GraphDataSuccess); err != nil {
		if jg.KindOf(err) != jg.ProtocolUnexpectedAck {
			return jg.Wrap(jg.TransportShortRead, op, err)
		}
		c.log.Warnw("unexpected success ack", "op", op, "err", err)
	}
	return nil
}

func (c *Channel) writeTag(tag string) error {
	n, err := c.conn.Write([]byte(tag))
	if err != nil || n < 1 {
		c.markExited()
		if err == nil {
			err = fmt.Errorf("short write: wrote %d bytes", n)
		}
		return err
	}
	return nil
}

func (c *Channel) writeLength(n int) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(n))
	wn, err := c.conn.Write(buf[:])
	if err != nil || wn < 1 {
		c.markExited()
		if err == nil {
			err = fmt.Errorf("short write: wrote %d bytes", wn)
		}
		return err
	}
	return nil
}

func (c *Channel) writePayload(payload string) error {
	n, err := c.conn.Write([]byte(payload))
	if err != nil || n < 1 {
		c.markExited()
		if err == nil {
			err = fmt.Errorf("short write: wrote %d bytes", n)
		}
		return err
	}
	return nil
}

func (c *Channel) readAck(expected string) error {
	buf := make([]byte, ackBufSize)
	n, err := c.conn.Read(buf)
	if err != nil || n < 1 {
		c.markExited()
		if err == nil {
			err = fmt.Errorf("short read: read %d bytes", n)
		}
		return err
	}

	got := strings.TrimRight(string(buf[:n]), "\x00")
	if got != expected {
		return jg.Wrap(jg.ProtocolUnexpectedAck, "Channel.readAck",
			fmt.Errorf("expected %q, got %q", expected, got))
	}
	return nil
}
