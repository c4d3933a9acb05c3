package publish

import (
	"bufio"
	"context"
	"fmt"

	jg "github.com/thamindumk/jasminegraph"
)

// PublishQuery sends a cross-partition sub-query to the master and
// blocks for its reply, porting DataPublisher::queryPublish +
// queryDataReciev. The original polls for a QUERY_DATA_START frame
// once a second for up to 200 seconds; this waits on blocking reads
// instead, the redesign noted in spec.md §9 under "ack-driven reads
// instead of sleep-poll". ctx is checked before each reply frame; a
// read that is already blocked is not interrupted by cancellation.
func (c *Channel) PublishQuery(ctx context.Context, graphID, partitionID, message string) (string, error) {
	const op = "Channel.PublishQuery"

	if c.Exited() {
		return "", jg.Wrap(jg.TransportShortWrite, op, fmt.Errorf("channel already exited"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writeTag(QueryStart); err != nil {
		return "", jg.Wrap(jg.TransportShortWrite, op, err)
	}
	if err := c.readAck(QueryStartAck); err != nil {
		if jg.KindOf(err) != jg.ProtocolUnexpectedAck {
			return "", jg.Wrap(jg.TransportShortRead, op, err)
		}
	}

	for _, field := range []string{graphID, partitionID, message} {
		if err := c.sendLengthPrefixed(field); err != nil {
			return "", jg.Wrap(jg.TransportShortWrite, op, err)
		}
	}

	return c.receiveQueryData(ctx)
}

func (c *Channel) sendLengthPrefixed(field string) error {
	if err := c.writeLength(len(field)); err != nil {
		return err
	}
	if err := c.readAck(GraphStreamCLengthAck); err != nil {
		if jg.KindOf(err) != jg.ProtocolUnexpectedAck {
			return err
		}
	}
	return c.writePayload(field)
}

// receiveQueryData loops QUERY_DATA_START/ACK frames until it observes
// a payload other than the "-1" continuation sentinel, then consumes
// the trailing \r\n terminator exactly as DataPublisher::queryPublish
// does after the loop returns.
func (c *Channel) receiveQueryData(ctx context.Context) (string, error) {
	const op = "Channel.receiveQueryData"

	for {
		select {
		case <-ctx.Done():
			return "", jg.Wrap(jg.TransportShortRead, op, ctx.Err())
		default:
		}

		if err := c.readAck(QueryDataStart); err != nil {
			if jg.KindOf(err) != jg.ProtocolUnexpectedAck {
				return "", jg.Wrap(jg.TransportShortRead, op, err)
			}
			continue
		}
		if err := c.writeTag(QueryDataAck); err != nil {
			return "", jg.Wrap(jg.TransportShortWrite, op, err)
		}

		length, err := c.readLength()
		if err != nil {
			return "", jg.Wrap(jg.TransportShortRead, op, err)
		}

		payload, err := c.readPayload(length)
		if err != nil {
			return "", jg.Wrap(jg.TransportShortRead, op, err)
		}
		if err := c.writeTag(GraphDataSuccess); err != nil {
			return "", jg.Wrap(jg.TransportShortWrite, op, err)
		}

		if payload != "-1" {
			if err := c.readCRLF(); err != nil {
				return "", jg.Wrap(jg.TransportShortRead, op, err)
			}
			return payload, nil
		}
	}
}

func (c *Channel) readLength() (int, error) {
	var buf [4]byte
	n, err := c.conn.Read(buf[:])
	if err != nil || n < 4 {
		c.markExited()
		if err == nil {
			err = fmt.Errorf("short read: read %d of 4 length bytes", n)
		}
		return 0, err
	}
	return int(buf[0])<<24 | int(buf[1])<<16 | int(buf[2])<<8 | int(buf[3]), nil
}

func (c *Channel) readPayload(length int) (string, error) {
	buf := make([]byte, length)
	total := 0
	for total < length {
		n, err := c.conn.Read(buf[total:])
		if err != nil || n < 1 {
			c.markExited()
			if err == nil {
				err = fmt.Errorf("short read: read %d of %d payload bytes", total, length)
			}
			return "", err
		}
		total += n
	}
	return string(buf), nil
}

func (c *Channel) readCRLF() error {
	r := bufio.NewReader(c.conn)
	for {
		b, err := r.ReadByte()
		if err != nil {
			c.markExited()
			return err
		}
		if b != '\r' {
			continue
		}
		b, err = r.ReadByte()
		if err != nil {
			c.markExited()
			return err
		}
		if b == '\n' {
			return nil
		}
	}
}
