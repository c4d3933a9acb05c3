package status

import "context"

// Publisher ships one status Message to the master. publish.Channel
// implements this.
type Publisher interface {
	PublishStatus(ctx context.Context, m Message) error
}

// Notifier drains a Buffer and publishes each Message until the
// sentinel is observed, then returns.
type Notifier struct {
	buffer *Buffer
	pub    Publisher
}

// NewNotifier builds a Notifier over buffer, shipping messages via pub.
func NewNotifier(buffer *Buffer, pub Publisher) *Notifier {
	return &Notifier{buffer: buffer, pub: pub}
}

// Run drains the buffer until the sentinel message, returning the last
// publish error encountered (if any) after having still drained the
// sentinel itself.
func (n *Notifier) Run(ctx context.Context) error {
	var lastErr error
	for {
		m, err := n.buffer.Pop(ctx)
		if err != nil {
			return err
		}

		if pubErr := n.pub.PublishStatus(ctx, m); pubErr != nil {
			lastErr = pubErr
		}

		if m.IsSentinel() {
			return lastErr
		}
	}
}
