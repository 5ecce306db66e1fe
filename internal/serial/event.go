package serial

import (
	"fmt"
	"sync"
)

// Listener receives connection state changes and inbound data
type Listener interface {
	OnSerialConnect()
	OnSerialConnectError(err error)
	OnSerialRead(chunks [][]byte)
	OnSerialIOError(err error)
}

// EventKind identifies a Listener callback
type EventKind int

const (
	EventConnect EventKind = iota
	EventConnectError
	EventRead
	EventIOError
)

// String returns a human-readable name for the event kind
func (k EventKind) String() string {
	switch k {
	case EventConnect:
		return "connect"
	case EventConnectError:
		return "connect_error"
	case EventRead:
		return "read"
	case EventIOError:
		return "io_error"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// Event is one Listener callback captured as a value
type Event struct {
	Kind   EventKind
	Chunks [][]byte // EventRead only
	Err    error    // EventConnectError and EventIOError only
}

// Dispatch invokes the matching callback on l
func (e Event) Dispatch(l Listener) {
	switch e.Kind {
	case EventConnect:
		l.OnSerialConnect()
	case EventConnectError:
		l.OnSerialConnectError(e.Err)
	case EventRead:
		l.OnSerialRead(e.Chunks)
	case EventIOError:
		l.OnSerialIOError(e.Err)
	}
}

// Mailbox is a Listener that stores events for another goroutine to consume.
// It never blocks the caller: events accumulate until drained, and adjacent
// reads are merged into one batch.
type Mailbox struct {
	mu      sync.Mutex
	pending []Event
	ready   chan struct{}
}

var _ Listener = (*Mailbox)(nil)

// NewMailbox creates an empty mailbox
func NewMailbox() *Mailbox {
	return &Mailbox{ready: make(chan struct{}, 1)}
}

// Ready is signalled whenever new events are waiting
func (m *Mailbox) Ready() <-chan struct{} {
	return m.ready
}

// Drain returns all pending events in arrival order and empties the mailbox
func (m *Mailbox) Drain() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := m.pending
	m.pending = nil
	return events
}

func (m *Mailbox) OnSerialConnect() {
	m.push(Event{Kind: EventConnect})
}

func (m *Mailbox) OnSerialConnectError(err error) {
	m.push(Event{Kind: EventConnectError, Err: err})
}

func (m *Mailbox) OnSerialRead(chunks [][]byte) {
	m.push(Event{Kind: EventRead, Chunks: chunks})
}

func (m *Mailbox) OnSerialIOError(err error) {
	m.push(Event{Kind: EventIOError, Err: err})
}

func (m *Mailbox) push(ev Event) {
	m.mu.Lock()
	m.pending = appendEvent(m.pending, ev)
	m.mu.Unlock()

	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// appendEvent appends ev to queue, merging it into a trailing read batch
func appendEvent(queue []Event, ev Event) []Event {
	if ev.Kind == EventRead && len(queue) > 0 {
		last := &queue[len(queue)-1]
		if last.Kind == EventRead {
			last.Chunks = append(last.Chunks, ev.Chunks...)
			return queue
		}
	}
	return append(queue, ev)
}
