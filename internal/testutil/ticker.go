package testutil

import (
	"sync"
	"time"
)

// ManualTicker is a flush ticker fired explicitly by the test.
//
// Tick blocks until the run loop consumes the tick, so after Tick
// returns the loop has started processing that flush. Do not call Tick
// after the loop stopped draining (pause or destroy); it would block
// forever.
type ManualTicker struct {
	ch chan time.Time

	mu      sync.Mutex
	stopped bool
}

// NewManualTicker creates an unfired manual ticker.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time)}
}

// C returns the tick channel.
func (m *ManualTicker) C() <-chan time.Time {
	return m.ch
}

// Stop marks the ticker stopped. Ticks are never delivered after Stop
// because the consumer nils its channel reference; Stop only records
// the fact for assertions.
func (m *ManualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

// Stopped reports whether Stop was called.
func (m *ManualTicker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Tick delivers one tick and blocks until it is consumed.
func (m *ManualTicker) Tick() {
	m.ch <- time.Now()
}
