// Package status implements the StatusMessage wire type and the
// StatusBuffer queue that the notification thread drains, grounded on
// the original StatusMessage/StatusBuffer (statusNotification/*.cpp).
package status

import (
	"fmt"
	"strings"
)

// Type is the kind of a status notification.
type Type uint8

const (
	PROGRESS Type = iota
	SUCCESS
	ERROR
)

func (t Type) String() string {
	switch t {
	case PROGRESS:
		return "PROGRESS"
	case SUCCESS:
		return "SUCCESS"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func parseType(s string) (Type, error) {
	switch s {
	case "PROGRESS":
		return PROGRESS, nil
	case "SUCCESS":
		return SUCCESS, nil
	case "ERROR":
		return ERROR, nil
	default:
		return 0, fmt.Errorf("status: invalid message type %q", s)
	}
}

// Message is a single status/progress notification, wire form
// "<workerId>|<TYPE>|<message>".
type Message struct {
	WorkerID int
	Type     Type
	Message  string
}

// sentinelText is the StatusBuffer terminator ("-1" in Message).
const sentinelText = "-1"

// Sentinel builds the terminator message for a StatusBuffer stream.
func Sentinel(workerID int) Message {
	return Message{WorkerID: workerID, Type: SUCCESS, Message: sentinelText}
}

// IsSentinel reports whether m terminates the StatusBuffer stream.
func (m Message) IsSentinel() bool {
	return m.Message == sentinelText
}

// String encodes m to its wire form.
func (m Message) String() string {
	return fmt.Sprintf("%d|%s|%s", m.WorkerID, m.Type, m.Message)
}

// Parse decodes the wire form produced by String.
func Parse(s string) (Message, error) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 {
		return Message{}, fmt.Errorf("status: malformed message %q", s)
	}

	var workerID int
	if _, err := fmt.Sscanf(parts[0], "%d", &workerID); err != nil {
		return Message{}, fmt.Errorf("status: malformed worker id %q: %w", parts[0], err)
	}

	typ, err := parseType(parts[1])
	if err != nil {
		return Message{}, err
	}

	return Message{WorkerID: workerID, Type: typ, Message: parts[2]}, nil
}
