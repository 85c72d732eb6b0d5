package engine

import "time"

// DefaultFlushInterval is the period of the outbound flush tick.
// One set message is sent per tick at most, regardless of queue depth -
// the tick rate is the outbound rate limit.
const DefaultFlushInterval = 100 * time.Millisecond

// Ticker is the flush timer abstraction.
// Implemented by intervalTicker (production) and testutil.ManualTicker
// (tests), so tests can fire ticks deterministically.
type Ticker interface {
	// C returns the tick channel.
	C() <-chan time.Time

	// Stop stops tick delivery. A stopped ticker is never restarted;
	// pause and destroy both end the timer's life.
	Stop()
}

// TickerFactory creates the flush ticker for one connection.
type TickerFactory func(d time.Duration) Ticker

// newIntervalTicker is the production TickerFactory.
func newIntervalTicker(d time.Duration) Ticker {
	return &intervalTicker{t: time.NewTicker(d)}
}

type intervalTicker struct {
	t *time.Ticker
}

func (it *intervalTicker) C() <-chan time.Time {
	return it.t.C
}

func (it *intervalTicker) Stop() {
	it.t.Stop()
}
