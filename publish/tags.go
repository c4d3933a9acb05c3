// Package publish implements the worker's side of the length-prefixed,
// ack-handshaked TCP protocol used to stream tuple and status data back
// to the master, ported from InstanceHandler::dataPublishToMaster and
// DataPublisher::publish/queryPublish (original_source/src/nativestore
// and .../runtime). Every frame is tag, then a 4-byte network-order
// length, then payload, each step acknowledged by the peer before the
// next is sent.
package publish

// Protocol tags, the literal ASCII strings from the wire protocol.
const (
	GraphStreamStart      = "GRAPH_STREAM_START"
	GraphStreamStartAck   = "GRAPH_STREAM_START_ACK"
	GraphStreamCLengthAck = "GRAPH_STREAM_C_length_ACK"
	GraphDataSuccess      = "GRAPH_DATA_SUCCESS"
	QueryStart            = "QUERY_START"
	QueryStartAck         = "QUERY_START_ACK"
	QueryDataStart        = "QUERY_DATA_START"
	QueryDataAck          = "QUERY_DATA_ACK"
	Close                 = "CLOSE"
)

// ackBufSize is large enough to hold any ack tag above; real acks are
// read with a fixed-size buffer the way recv(..., sizeof(buf), 0) reads
// a zero-padded C string in the original.
const ackBufSize = 32
