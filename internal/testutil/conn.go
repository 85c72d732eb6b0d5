package testutil

import (
	"context"
	"sync"

	"github.com/roach88/driftsync/internal/transport"
)

// ScriptConn is a scripted transport.Conn. Tests inject inbound events
// with Deliver/Fail and observe outbound frames via Sent or SentCh.
type ScriptConn struct {
	events chan transport.Event
	sentCh chan []byte

	mu        sync.Mutex
	sent      [][]byte
	sendErr   error
	closed    bool
	eventsEnd bool
}

// NewScriptConn creates an open scripted connection.
func NewScriptConn() *ScriptConn {
	return &ScriptConn{
		events: make(chan transport.Event, 16),
		sentCh: make(chan []byte, 64),
	}
}

// Send records the frame. Returns the configured send error, if any,
// in which case nothing is recorded.
func (c *ScriptConn) Send(data []byte) error {
	c.mu.Lock()
	if c.sendErr != nil {
		err := c.sendErr
		c.mu.Unlock()
		return err
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	c.sent = append(c.sent, frame)
	c.mu.Unlock()

	c.sentCh <- frame
	return nil
}

// Events returns the inbound event channel.
func (c *ScriptConn) Events() <-chan transport.Event {
	return c.events
}

// Close marks the connection closed. Idempotent.
func (c *ScriptConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *ScriptConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Deliver injects one inbound payload event.
func (c *ScriptConn) Deliver(payload []byte) {
	c.events <- transport.Event{Type: transport.EventPayload, Payload: payload}
}

// Fail injects a closed event (with optional cause) and ends the event
// stream, as the websocket read pump does on connection loss.
func (c *ScriptConn) Fail(err error) {
	c.mu.Lock()
	if c.eventsEnd {
		c.mu.Unlock()
		return
	}
	c.eventsEnd = true
	c.mu.Unlock()

	c.events <- transport.Event{Type: transport.EventClosed, Err: err}
	close(c.events)
}

// SetSendErr makes subsequent Sends fail with err (nil to heal).
func (c *ScriptConn) SetSendErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sendErr = err
}

// Sent returns a copy of all recorded outbound frames.
func (c *ScriptConn) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.sent))
	copy(out, c.sent)
	return out
}

// SentCh returns a channel receiving each outbound frame as it is sent.
func (c *ScriptConn) SentCh() <-chan []byte {
	return c.sentCh
}

// ScriptDialer hands out a fixed connection (or error).
type ScriptDialer struct {
	Conn transport.Conn
	Err  error

	mu    sync.Mutex
	dials int
}

// Dial returns the scripted connection or error.
func (d *ScriptDialer) Dial(ctx context.Context, endpoint string) (transport.Conn, error) {
	d.mu.Lock()
	d.dials++
	d.mu.Unlock()

	if d.Err != nil {
		return nil, d.Err
	}
	return d.Conn, nil
}

// Dials returns how many times Dial was called.
func (d *ScriptDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}
