// Package master is the worker's client for talking back to the
// JasmineGraph master: resolving which partition owns a node id, and
// dispatching a templated sub-plan to run on that partition — the Go
// shape of Utils::sendDataFromWorkerToWorker and the connector thread
// described in spec.md §4.3.
//
// The consuming interface (operator.MasterClient) lives in package
// operator rather than here, so that operator.Exec can hold a field of
// that type without operator importing master: master already has to
// import operator for operator.Node, and Go interfaces are satisfied
// structurally, so TCPClient and CachingClient below implement
// operator.MasterClient without this package ever naming it.
package master

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"

	jg "github.com/thamindumk/jasminegraph"
	"github.com/thamindumk/jasminegraph/buffer"
	"github.com/thamindumk/jasminegraph/internal/glog"
	"github.com/thamindumk/jasminegraph/operator"
	"github.com/thamindumk/jasminegraph/publish"
	"github.com/thamindumk/jasminegraph/tuple"
)

// Client is the full master-facing contract, matching
// operator.MasterClient so both TCPClient and CachingClient satisfy it
// structurally without this package importing operator's interface
// type directly (see the package doc comment above).
type Client interface {
	PartitionOf(ctx context.Context, graphID string, nodeID int64) (int, error)
	RunSubPlan(ctx context.Context, graphID string, partition int, plan *operator.Node) (*buffer.Buffer, error)
}

// Dialer opens a connection to addr, so TCPClient can be exercised in
// tests against a net.Pipe-backed fake without touching a real socket,
// the same seam publish.Channel's tests use.
type Dialer func(ctx context.Context, addr string) (net.Conn, error)

// NetDialer dials addr over TCP, the production Dialer.
func NetDialer(ctx context.Context, addr string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

// WorkerAddr resolves the TCP address of the worker owning partition.
// Implementations are expected to consult cluster membership, kept out
// of this module's scope per spec.md §1.
type WorkerAddr func(partition int) (string, error)

// TCPClient is the production master.Client: PartitionOf asks the
// master for the partition algorithm's answer over a length-prefixed
// query frame (publish.Channel.PublishQuery), and RunSubPlan dials the
// owning worker directly and drains its response through the same
// ack-driven protocol ExpandAll's connector thread in spec.md §4.3
// describes, replacing the original's sleep(1s)*200 poll loop per the
// redesign note in spec.md §9.
type TCPClient struct {
	dial       Dialer
	workerAddr WorkerAddr
	masterAddr string
	workerID   int
	log        glog.Logger
}

// NewTCPClient builds a TCPClient. masterAddr is where PartitionOf
// queries are sent; workerAddr resolves a partition id to the TCP
// address RunSubPlan should dial for that partition's worker.
func NewTCPClient(masterAddr string, workerID int, workerAddr WorkerAddr, log glog.Logger) *TCPClient {
	return &TCPClient{
		dial:       NetDialer,
		workerAddr: workerAddr,
		masterAddr: masterAddr,
		workerID:   workerID,
		log:        log,
	}
}

var _ Client = (*TCPClient)(nil)

// PartitionOf asks the master which partition owns nodeID, the Go
// shape of a call into the partition algorithm keyed on graph id
// (spec.md §6).
func (c *TCPClient) PartitionOf(ctx context.Context, graphID string, nodeID int64) (int, error) {
	const op = "TCPClient.PartitionOf"

	conn, err := c.dial(ctx, c.masterAddr)
	if err != nil {
		return 0, jg.Wrap(jg.TransportShortWrite, op, err)
	}
	defer conn.Close()

	ch := publish.New(conn, c.log)
	defer ch.Close()

	reply, err := ch.PublishQuery(ctx, graphID, "", "PARTITION_OF:"+strconv.FormatInt(nodeID, 10))
	if err != nil {
		return 0, jg.Wrap(jg.TransportShortRead, op, err)
	}

	partition, err := strconv.Atoi(reply)
	if err != nil {
		return 0, jg.Wrap(jg.TypeMismatch, op, fmt.Errorf("non-integer partition reply %q: %w", reply, err))
	}
	return partition, nil
}

// subPlanTemplate is what RunSubPlan sends across the wire: the graph
// id, the partition the sub-plan is scoped to, and the operator node
// itself re-serialized, mirroring the templated-sub-plan shape cited in
// spec.md §4.3 ("expand from this id, optional rel type").
type subPlanTemplate struct {
	GraphID   string          `json:"graphId"`
	Partition int             `json:"partition"`
	WorkerID  int             `json:"workerId"`
	Plan      json.RawMessage `json:"plan"`
}

// RunSubPlan dials the worker owning partition, sends it a templated
// sub-plan, and returns a buffer.Buffer fed by a connector goroutine
// that copies tuples out of the response stream until it observes the
// sentinel, then terminates — the connector thread from spec.md §4.3.
func (c *TCPClient) RunSubPlan(ctx context.Context, graphID string, partition int, plan *operator.Node) (*buffer.Buffer, error) {
	const op = "TCPClient.RunSubPlan"

	addr, err := c.workerAddr(partition)
	if err != nil {
		return nil, jg.Wrap(jg.PlanMalformed, op, err)
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, jg.Wrap(jg.PlanMalformed, op, err)
	}
	tmpl := subPlanTemplate{GraphID: graphID, Partition: partition, WorkerID: c.workerID, Plan: planJSON}
	payload, err := json.Marshal(tmpl)
	if err != nil {
		return nil, jg.Wrap(jg.PlanMalformed, op, err)
	}

	conn, err := c.dial(ctx, addr)
	if err != nil {
		return nil, jg.Wrap(jg.TransportShortWrite, op, err)
	}
	ch := publish.New(conn, c.log)

	reply, err := ch.PublishQuery(ctx, graphID, strconv.Itoa(partition), string(payload))
	if err != nil {
		conn.Close()
		return nil, jg.Wrap(jg.TransportShortRead, op, err)
	}

	out := buffer.New(buffer.DefaultCapacity)
	go c.connect(ctx, conn, ch, reply, out)
	return out, nil
}

// connect is the connector thread: it has already received the first
// reply frame from PublishQuery's handshake and keeps pulling QUERY_DATA
// frames until the sentinel, copying each decoded tuple into out before
// closing the underlying connection.
func (c *TCPClient) connect(ctx context.Context, conn net.Conn, ch *publish.Channel, first string, out *buffer.Buffer) {
	defer conn.Close()
	defer ch.Close()

	payload := first
	for {
		t, err := tuple.Decode([]byte(payload))
		if err != nil {
			c.log.Warnw("master: sub-plan connector dropped malformed tuple", "err", err)
		} else {
			if addErr := out.Add(ctx, t); addErr != nil {
				return
			}
			if t.IsSentinel() {
				return
			}
		}

		next, err := ch.PublishQuery(ctx, "", "", "CONTINUE")
		if err != nil {
			_ = out.Add(ctx, tuple.Sentinel())
			return
		}
		payload = next
	}
}

// partitionCache is the narrow slice of cache.Store CachingClient
// needs; kept as an unexported interface so this package doesn't import
// cache just to name its Store type in a field signature test doubles
// must also satisfy.
type partitionCache interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
}

// CachingClient wraps a Client and memoizes PartitionOf lookups in a
// cache.Store, since the partition algorithm is a pure function of
// (graphID, nodeID) for a query's duration and ExpandAll calls it
// repeatedly for every remote-bound expansion.
type CachingClient struct {
	Client
	cache partitionCache
}

var _ Client = (*CachingClient)(nil)

// NewCachingClient wraps client with a partition-lookup cache.
func NewCachingClient(client Client, cache partitionCache) *CachingClient {
	return &CachingClient{Client: client, cache: cache}
}

// PartitionOf serves from cache when present, otherwise delegates and
// populates the cache for future callers.
func (c *CachingClient) PartitionOf(ctx context.Context, graphID string, nodeID int64) (int, error) {
	key := []byte(fmt.Sprintf("%s:%d", graphID, nodeID))

	if cached, err := c.cache.Get(key); err == nil {
		partition, convErr := strconv.Atoi(string(cached))
		if convErr == nil {
			return partition, nil
		}
	}

	partition, err := c.Client.PartitionOf(ctx, graphID, nodeID)
	if err != nil {
		return 0, err
	}
	_ = c.cache.Set(key, []byte(strconv.Itoa(partition)))
	return partition, nil
}
