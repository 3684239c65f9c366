// Package elapsed measures how long a generation has been in flight.
//
// A Timer owns its tick goroutine. Start spawns it, Stop halts it; there is no
// other way for the goroutine to end, so every caller that starts a timer must
// stop it on every exit path.
package elapsed

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TickInterval is the cadence of the display-only seconds counter.
const TickInterval = time.Second

// Timer produces a whole-seconds signal while running and the exact elapsed
// duration when stopped.
type Timer struct {
	clock clockwork.Clock

	mu      sync.Mutex
	running bool
	start   time.Time
	seconds int
	ticker  clockwork.Ticker
	halt    chan struct{}
}

// New creates a stopped Timer. A nil clock uses the real clock.
func New(clock clockwork.Clock) *Timer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Timer{clock: clock}
}

// Start captures the reference instant and begins ticking once per TickInterval,
// calling onTick with the floored number of seconds since Start. Values passed
// to onTick never decrease.
//
// Starting a running timer restarts it: the previous tick goroutine is halted,
// the reference instant is re-captured and the seconds counter drops to 0.
func (t *Timer) Start(onTick func(seconds int)) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		t.haltLocked()
	}
	t.start = t.clock.Now()
	t.seconds = 0
	t.running = true
	t.ticker = t.clock.NewTicker(TickInterval)
	t.halt = make(chan struct{})

	go t.run(t.ticker, t.halt, onTick)
	return t.start
}

func (t *Timer) run(ticker clockwork.Ticker, halt chan struct{}, onTick func(int)) {
	for {
		select {
		case <-halt:
			return
		case <-ticker.Chan():
			seconds, ok := t.advance(halt)
			if !ok {
				return
			}
			if onTick != nil {
				onTick(seconds)
			}
		}
	}
}

// advance recomputes the seconds counter; it reports false once the goroutine
// that owns halt has been superseded or stopped.
func (t *Timer) advance(halt chan struct{}) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.halt != halt {
		return 0, false
	}
	if s := int(t.clock.Since(t.start) / time.Second); s > t.seconds {
		t.seconds = s
	}
	return t.seconds, true
}

// Stop halts ticking and returns the exact duration since Start. Calling Stop on
// a timer that is not running is a no-op and reports false.
func (t *Timer) Stop() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return 0, false
	}
	d := t.clock.Since(t.start)
	t.haltLocked()
	return d, true
}

func (t *Timer) haltLocked() {
	t.ticker.Stop()
	close(t.halt)
	t.ticker = nil
	t.halt = nil
	t.running = false
}
