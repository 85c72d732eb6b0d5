package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/roach88/driftsync/internal/cloudvar"
	"github.com/roach88/driftsync/internal/protocol"
	"github.com/roach88/driftsync/internal/transport"
	"github.com/roach88/driftsync/internal/varstore"
)

// Step identifies one unit of work completed by the run loop.
// The step hook (WithStepHook) fires after each one, which is how the
// harness and tests synchronize with the loop deterministically.
type Step string

const (
	// StepOpen fires once the connection is open and the handshake sent.
	StepOpen Step = "open"
	// StepTick fires after each flush tick, whether or not it sent.
	StepTick Step = "tick"
	// StepPayload fires after an inbound payload is dispatched.
	StepPayload Step = "payload"
	// StepPause fires after the loop has stopped the flush timer.
	StepPause Step = "pause"
	// StepClosed fires when the loop exits.
	StepClosed Step = "closed"
)

// NetworkHandler synchronizes tracked variables with a remote service
// over one persistent connection.
//
// State machine: Disconnected --OnStart--> Connecting --open--> Open,
// then Closed on Destroy or transport loss. Only one connection attempt
// may be in flight; OnStart while connecting or connected is a no-op,
// and a closed handler never reconnects on its own.
//
// Thread-safety model:
//   - VariableChanged: safe from any goroutine, any state
//   - OnStart / OnPause / Destroy: safe from the host goroutine
//   - everything else runs on the single run-loop goroutine
type NetworkHandler struct {
	adapter  varstore.Adapter
	tracked  *cloudvar.TrackedSet
	dialer   transport.Dialer
	endpoint string
	session  string

	queue       *changeQueue
	interval    time.Duration
	newTicker   TickerFactory
	usernameGen UsernameGenerator
	stepHook    func(Step)

	pauseCh chan struct{}

	mu        sync.Mutex
	state     ConnectionState
	paused    bool
	destroyed bool
	cancel    context.CancelFunc
	done      chan struct{}
}

// NetworkOption configures a NetworkHandler.
type NetworkOption func(*NetworkHandler)

// WithFlushInterval overrides the flush tick period.
// The one-send-per-tick discipline is unchanged; only the period moves.
func WithFlushInterval(d time.Duration) NetworkOption {
	return func(h *NetworkHandler) {
		h.interval = d
	}
}

// WithTickerFactory substitutes the flush ticker implementation.
// Tests use this to fire ticks manually.
func WithTickerFactory(f TickerFactory) NetworkOption {
	return func(h *NetworkHandler) {
		h.newTicker = f
	}
}

// WithUsernameGenerator substitutes the handshake display-name source.
func WithUsernameGenerator(g UsernameGenerator) NetworkOption {
	return func(h *NetworkHandler) {
		h.usernameGen = g
	}
}

// WithStepHook registers a hook called by the run loop after each
// completed step. Intended for tests and the conformance harness.
func WithStepHook(fn func(Step)) NetworkOption {
	return func(h *NetworkHandler) {
		h.stepHook = fn
	}
}

// NewNetworkHandler creates a network sync handler for one session.
//
// The tracked variable set is read from the adapter once, here, and is
// immutable for the handler's lifetime.
func NewNetworkHandler(adapter varstore.Adapter, dialer transport.Dialer, endpoint, session string, opts ...NetworkOption) *NetworkHandler {
	h := &NetworkHandler{
		adapter:     adapter,
		tracked:     cloudvar.NewTrackedSet(adapter.TrackedNames()),
		dialer:      dialer,
		endpoint:    endpoint,
		session:     session,
		queue:       newChangeQueue(),
		interval:    DefaultFlushInterval,
		newTicker:   newIntervalTicker,
		usernameGen: RandomUsernameGenerator{},
		state:       StateDisconnected,
		pauseCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// VariableChanged queues the named variable for outbound transmission.
// Duplicate changes before the name drains collapse into one pending
// entry; the value is read at flush time, not here. Safe to call before
// OnStart - the queue simply accumulates until a connection opens.
func (h *NetworkHandler) VariableChanged(name string) {
	n := cloudvar.NormalizeName(name)
	if !h.tracked.Contains(n) {
		slog.Debug("change for untracked variable ignored", "var", name, "session", h.session)
		return
	}
	if h.queue.Enqueue(n) {
		slog.Debug("variable queued", "var", n, "pending", h.queue.Len())
	}
}

// OnStart opens the connection and starts the flush timer.
// No-op unless the handler is Disconnected.
func (h *NetworkHandler) OnStart() {
	h.mu.Lock()
	if h.destroyed || h.state != StateDisconnected {
		state := h.state
		h.mu.Unlock()
		slog.Debug("start ignored", "session", h.session, "state", state)
		return
	}
	h.state = StateConnecting
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	done := make(chan struct{})
	h.done = done
	h.mu.Unlock()

	go h.run(ctx, done)
}

// OnPause stops the flush timer but leaves the connection open.
// Queued and future changes accumulate; nothing drains until the
// handler is destroyed and a fresh one started.
func (h *NetworkHandler) OnPause() {
	h.mu.Lock()
	h.paused = true
	h.mu.Unlock()

	select {
	case h.pauseCh <- struct{}{}:
	default:
	}
}

// Destroy stops the flush timer and closes the connection, then waits
// for the run loop to exit. Idempotent.
func (h *NetworkHandler) Destroy() {
	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		return
	}
	h.destroyed = true
	cancel := h.cancel
	done := h.done
	h.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	h.setState(StateClosed)
	slog.Info("handler destroyed", "session", h.session)
}

// State returns the current connection state.
func (h *NetworkHandler) State() ConnectionState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// QueueLen returns the number of variables pending transmission.
func (h *NetworkHandler) QueueLen() int {
	return h.queue.Len()
}

// run is the single-writer loop. It owns the connection and the flush
// ticker; all dispatch happens here, one event at a time.
func (h *NetworkHandler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	conn, err := h.dialer.Dial(ctx, h.endpoint)
	if err != nil {
		slog.Error("connect failed", "endpoint", h.endpoint, "session", h.session, "error", err)
		h.setState(StateDisconnected)
		h.step(StepClosed)
		return
	}

	h.mu.Lock()
	if h.destroyed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.state = StateOpen
	paused := h.paused
	h.mu.Unlock()

	username := h.usernameGen.Generate()
	h.sendHandshake(conn, username)
	slog.Info("connection open", "endpoint", h.endpoint, "session", h.session, "username", username)
	h.step(StepOpen)

	ticker := h.newTicker(h.interval)
	tickC := ticker.C()
	if paused {
		ticker.Stop()
		tickC = nil
	}
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close()
			h.setState(StateClosed)
			h.step(StepClosed)
			return

		case <-h.pauseCh:
			ticker.Stop()
			tickC = nil
			slog.Debug("flush timer stopped", "session", h.session)
			h.step(StepPause)

		case <-tickC:
			h.flushOne(conn)
			h.step(StepTick)

		case ev, ok := <-conn.Events():
			if !ok || ev.Type == transport.EventClosed {
				if ev.Err != nil {
					slog.Error("connection lost", "session", h.session, "error", ev.Err)
				} else {
					slog.Info("connection closed", "session", h.session)
				}
				_ = conn.Close()
				h.setState(StateClosed)
				h.step(StepClosed)
				return
			}
			h.dispatchPayload(ev.Payload)
			h.step(StepPayload)
		}
	}
}

// sendHandshake announces the session with a full snapshot of every
// tracked variable, not just changed ones.
func (h *NetworkHandler) sendHandshake(conn transport.Conn, username string) {
	snap := make(map[string]string, h.tracked.Len())
	for _, name := range h.tracked.Names() {
		snap[name] = h.adapter.Get(name)
	}

	data, err := protocol.EncodeHandshake(h.session, username, snap)
	if err != nil {
		slog.Error("handshake encode failed", "session", h.session, "error", err)
		return
	}
	if err := conn.Send(data); err != nil {
		slog.Error("handshake send failed", "session", h.session, "error", err)
	}
}

// flushOne sends at most one set message: the queue's front name with
// its value as of right now. The name leaves the queue only after the
// send succeeds, and only if no newer change arrived while the send
// was in flight - Remove compares the generation observed here, so a
// concurrent VariableChanged keeps the name pending for the next tick.
func (h *NetworkHandler) flushOne(conn transport.Conn) {
	name, gen, ok := h.queue.Front()
	if !ok {
		return
	}

	value := h.adapter.Get(name)
	data, err := protocol.EncodeSet(name, value)
	if err != nil {
		h.queue.Remove(name, gen)
		slog.Error("set encode failed, update dropped", "var", name, "error", err)
		return
	}
	if err := conn.Send(data); err != nil {
		slog.Error("set send failed", "var", name, "error", err)
		return
	}

	h.queue.Remove(name, gen)
	slog.Debug("set sent", "var", name, "value", value)
}

// dispatchPayload decodes one inbound payload and applies its messages
// in order. A decode failure discards the whole payload; an error from
// a single message is fatal for that message only.
func (h *NetworkHandler) dispatchPayload(data []byte) {
	msgs, err := protocol.DecodePayload(data)
	if err != nil {
		slog.Error("inbound payload discarded", "session", h.session, "error", err)
		return
	}

	for _, msg := range msgs {
		if err := h.applyMessage(msg); err != nil {
			slog.Error("inbound message rejected", "session", h.session, "error", err)
		}
	}
}

// applyMessage applies one decoded message. Messages without a string
// kind, with an unknown kind, or with missing set fields are skipped
// silently for forward compatibility. A set naming an untracked
// variable is the one escalation: a protocol violation.
func (h *NetworkHandler) applyMessage(msg protocol.RawMessage) error {
	kind, ok := msg.Kind()
	if !ok {
		return nil
	}
	if kind != protocol.KindSet {
		return nil
	}
	set, ok := msg.AsSet()
	if !ok {
		return nil
	}

	name := cloudvar.NormalizeName(set.Var)
	if !h.tracked.Contains(name) {
		return NewProtocolViolation(set.Var)
	}

	h.adapter.Set(name, set.Value)
	slog.Debug("set applied", "var", name, "value", set.Value)
	return nil
}

func (h *NetworkHandler) setState(s ConnectionState) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

func (h *NetworkHandler) step(s Step) {
	if h.stepHook != nil {
		h.stepHook(s)
	}
}
