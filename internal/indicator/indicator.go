// Package indicator drives the per-side connection LED: blinking while
// unconnected, solid while connected. The physical drive is an external
// collaborator; this package narrows it to the on/off capability the
// supervisor actually needs.
package indicator

import (
	"sync"
	"time"
)

// Line is the narrow capability an indicator driver must provide.
type Line interface {
	Set(on bool) error
	Close() error
}

const blinkPeriod = 500 * time.Millisecond

// Indicator owns a blink goroutine and exposes Connected(bool) to flip
// between blinking and solid-on.
type Indicator struct {
	line Line

	mu        sync.Mutex
	connected bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// New starts the blink loop immediately in the unconnected state.
func New(line Line) *Indicator {
	ind := &Indicator{
		line:   line,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go ind.run()
	return ind
}

// Connected switches between solid (true) and blinking (false).
func (ind *Indicator) Connected(connected bool) {
	if ind == nil {
		return
	}
	ind.mu.Lock()
	ind.connected = connected
	ind.mu.Unlock()
	if connected {
		_ = ind.line.Set(true)
	}
}

func (ind *Indicator) run() {
	defer close(ind.doneCh)
	t := time.NewTicker(blinkPeriod)
	defer t.Stop()
	on := false
	for {
		select {
		case <-ind.stopCh:
			return
		case <-t.C:
			ind.mu.Lock()
			connected := ind.connected
			ind.mu.Unlock()
			if connected {
				continue
			}
			on = !on
			_ = ind.line.Set(on)
		}
	}
}

// Close stops the blink loop and releases the underlying line.
func (ind *Indicator) Close() error {
	if ind == nil {
		return nil
	}
	close(ind.stopCh)
	<-ind.doneCh
	return ind.line.Close()
}
