package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeTimeout bounds how long a single frame write may block.
	writeTimeout = 10 * time.Second
	// eventBuffer absorbs short bursts of inbound payloads so the read
	// pump does not stall the TCP connection while the handler works.
	eventBuffer = 16
)

// WebSocketDialer dials cloud variable endpoints over WebSocket.
type WebSocketDialer struct {
	// HandshakeTimeout overrides the dialer's handshake timeout.
	// Zero means the websocket package default.
	HandshakeTimeout time.Duration
}

// Dial opens a WebSocket connection to the endpoint (a ws:// or wss://
// URL) and starts the read pump. The returned Conn delivers inbound
// text frames as payload events.
func (d *WebSocketDialer) Dial(ctx context.Context, endpoint string) (Conn, error) {
	dialer := *websocket.DefaultDialer
	if d.HandshakeTimeout > 0 {
		dialer.HandshakeTimeout = d.HandshakeTimeout
	}

	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	c := &wsConn{
		conn:   conn,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
	go c.readPump()
	return c, nil
}

// wsConn wraps a gorilla websocket connection with the Conn contract.
type wsConn struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Send writes one payload as a text frame.
func (c *wsConn) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Events returns the inbound event channel. Closed when the read pump
// exits.
func (c *wsConn) Events() <-chan Event {
	return c.events
}

// Close sends a close frame and tears down the connection. Idempotent.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)

		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		c.writeMu.Lock()
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
		c.writeMu.Unlock()

		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// readPump drains inbound frames onto the event channel until the
// connection errors or Close is called. It is the only writer to the
// events channel and the only place that closes it, and it closes the
// channel on every exit path so a drained subscriber always unblocks.
func (c *wsConn) readPump() {
	defer close(c.events)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			// Skip EventClosed when closure was locally requested.
			select {
			case c.events <- Event{Type: EventClosed, Err: err}:
			case <-c.done:
			}
			return
		}

		select {
		case c.events <- Event{Type: EventPayload, Payload: data}:
		case <-c.done:
			return
		}
	}
}
