// Package jasminegraph is the module root. It holds the error
// vocabulary shared across package boundaries (operator, publish,
// master, store) so that a status.Notifier can report a meaningful
// ERROR message without every package inventing its own string
// matching scheme.
package jasminegraph

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure the way the worker's status channel
// reports it upstream. None of the example repos carry a richer error
// type than sentinel errors (errors.New), so this is built directly on
// the standard library's error wrapping (fmt.Errorf + %w, errors.Is/As)
// rather than adopting a third-party errors package — there is nothing
// in the pack to ground a richer choice on.
type Kind uint8

const (
	// KindUnknown is the zero value; never produced deliberately.
	KindUnknown Kind = iota

	// PlanMalformed marks a query plan JSON node that is missing a
	// required field or references an unregistered operator tag.
	PlanMalformed

	// StoreIO marks a failure reading from store.GraphReader.
	StoreIO

	// TransportShortRead marks a publish/master connection read that
	// returned fewer bytes than the frame required.
	TransportShortRead

	// TransportShortWrite marks a publish/master connection write that
	// returned fewer bytes than the frame required.
	TransportShortWrite

	// ProtocolUnexpectedAck marks an ack frame that didn't match the
	// tag the sender was expecting.
	ProtocolUnexpectedAck

	// TypeMismatch marks an operator attempting a tuple.Value operation
	// (arithmetic, comparison) across incompatible Kinds.
	TypeMismatch
)

func (k Kind) String() string {
	switch k {
	case PlanMalformed:
		return "plan malformed"
	case StoreIO:
		return "store io"
	case TransportShortRead:
		return "transport short read"
	case TransportShortWrite:
		return "transport short write"
	case ProtocolUnexpectedAck:
		return "protocol unexpected ack"
	case TypeMismatch:
		return "type mismatch"
	default:
		return "unknown"
	}
}

// Error is a Kind-tagged error. Operators and transport code wrap
// underlying errors with one so a status.Message can carry a stable,
// greppable category alongside the human-readable text.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error. op identifies the function or operator where
// the failure occurred, e.g. "ExpandAll" or "Channel.PublishTuple".
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind carried by err, or KindUnknown if err was not
// produced by Wrap.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
