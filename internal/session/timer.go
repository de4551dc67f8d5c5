package session

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrTimerRunning    = errors.New("countdown already running")
	ErrNonPositiveTime = errors.New("countdown needs a positive duration")
)

// TickSource yields one tick per interval until stop is called.
type TickSource func() (ticks <-chan time.Time, stop func())

// SecondTicker is the production tick source.
func SecondTicker() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}

// Countdown decrements a remaining-seconds counter once per tick and calls
// onExpire exactly once when it reaches zero. Each Start owns one goroutine.
type Countdown struct {
	source TickSource

	mu        sync.Mutex
	remaining int
	active    *countdownRun
	done      chan struct{}
}

type countdownRun struct {
	stop chan struct{}
}

func NewCountdown(source TickSource) *Countdown {
	if source == nil {
		source = SecondTicker
	}
	done := make(chan struct{})
	close(done)
	return &Countdown{source: source, done: done}
}

func (c *Countdown) Start(seconds int, onTick func(remaining int), onExpire func()) error {
	if seconds <= 0 {
		return ErrNonPositiveTime
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		return ErrTimerRunning
	}
	r := &countdownRun{stop: make(chan struct{})}
	c.active = r
	c.remaining = seconds
	c.done = make(chan struct{})
	ticks, stopTicks := c.source()
	go c.run(r, ticks, stopTicks, c.done, onTick, onExpire)
	return nil
}

func (c *Countdown) run(r *countdownRun, ticks <-chan time.Time, stopTicks func(), done chan struct{}, onTick func(int), onExpire func()) {
	defer close(done)
	defer stopTicks()
	for {
		select {
		case <-r.stop:
			return
		case <-ticks:
			c.mu.Lock()
			if c.active != r {
				c.mu.Unlock()
				return
			}
			c.remaining--
			rem := c.remaining
			expired := rem <= 0
			if expired {
				c.active = nil
			}
			c.mu.Unlock()

			if onTick != nil {
				onTick(rem)
			}
			if expired {
				if onExpire != nil {
					onExpire()
				}
				return
			}
		}
	}
}

// Stop cancels the countdown. Once it returns no further tick is applied to
// Remaining. It never waits on callbacks, so it is safe to call from onTick
// or onExpire and with locks held.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return
	}
	close(c.active.stop)
	c.active = nil
}

// Done is closed when the goroutine of the latest Start has exited.
func (c *Countdown) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}
