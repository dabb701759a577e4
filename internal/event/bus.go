package event

// Type names a bus event.
type Type string

const (
	// TypeCommandExecuted is published after a command line was handled.
	TypeCommandExecuted Type = "command_executed"
	// TypeCommandRejected is published when a notification cancelled a
	// command line before dispatch.
	TypeCommandRejected Type = "command_rejected"
)

// Event is one observation of command traffic.
type Event struct {
	Type   Type
	Source string
	Line   string
}

// Bus is a bounded fan-in channel of command observations. Publishing
// never blocks; events are dropped when the buffer is full.
type Bus struct {
	ch chan Event
}

// NewBus returns a bus buffering up to size events.
func NewBus(size int) *Bus {
	if size <= 0 {
		size = 16
	}
	return &Bus{ch: make(chan Event, size)}
}

// Publish enqueues an event, dropping it if the buffer is full.
func (b *Bus) Publish(evt Event) {
	select {
	case b.ch <- evt:
	default:
		// avoid blocking dispatch; drop if too many events
	}
}

// Events returns the receive side of the bus.
func (b *Bus) Events() <-chan Event {
	return b.ch
}
