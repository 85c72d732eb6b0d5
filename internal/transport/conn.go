// Package transport provides the connection abstraction the network
// sync handler runs on.
//
// A Conn owns its read side and surfaces everything that happens on the
// wire - inbound payloads, closure, errors - as events on a single
// channel. The handler is the sole subscriber; there are no ambient
// callbacks. Writes are explicit via Send.
package transport

import "context"

// EventType distinguishes connection event kinds.
type EventType int

const (
	// EventPayload carries one inbound payload (which may contain
	// multiple newline-delimited protocol messages).
	EventPayload EventType = iota + 1
	// EventClosed reports that the connection is gone. Err carries the
	// cause when closure was not clean. No events follow it.
	EventClosed
)

// Event is one occurrence on a connection.
type Event struct {
	Type    EventType
	Payload []byte
	Err     error
}

// Conn is a single established connection to the remote service.
//
// Events() yields inbound events in arrival order and closes when the
// connection ends: EventClosed precedes the close when the remote side
// or a transport error ended it, and is omitted when Close was called
// locally. Send and Close are safe to call from a different goroutine
// than the one draining Events().
type Conn interface {
	Send(data []byte) error
	Events() <-chan Event
	Close() error
}

// Dialer opens connections. The production implementation is
// WebSocketDialer; tests substitute scripted connections.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Conn, error)
}
