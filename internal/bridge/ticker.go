package bridge

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultUpdateInterval is how often ShouldUpdate turns true by default.
const DefaultUpdateInterval = 100 * time.Millisecond

// Ticker raises a due flag once per interval until stopped. Due reads and
// clears the flag, so a slow poller sees at most one true per poll and a fast
// poller at most one per interval.
type Ticker struct {
	due      atomic.Bool
	ticker   *time.Ticker
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewTicker starts a ticker. Non-positive intervals use DefaultUpdateInterval.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultUpdateInterval
	}
	t := &Ticker{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *Ticker) run() {
	defer close(t.done)
	for {
		select {
		case <-t.ticker.C:
			t.due.Store(true)
		case <-t.stop:
			t.ticker.Stop()
			return
		}
	}
}

// Due reports whether an interval elapsed since the last true result.
func (t *Ticker) Due() bool {
	return t.due.Swap(false)
}

// Reset changes the interval. Non-positive intervals are ignored.
func (t *Ticker) Reset(interval time.Duration) {
	if interval <= 0 {
		return
	}
	t.ticker.Reset(interval)
}

// Stop terminates the ticker goroutine. Safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
		<-t.done
	})
}
