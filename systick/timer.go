package systick

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrInvalidPeriod is returned by Start when the timer period is not
// positive.
var ErrInvalidPeriod = errors.New("systick: invalid period")

// A Handler is an interrupt service routine run on every tick.
// tick is the number of ticks fired so far, including this one.
type Handler func(tick uint64)

// A Timer simulates a periodic system timer interrupt.
//
// Every tick, the Timer runs its handlers in registration order, the way a
// SysTick exception would. Handlers of one Timer never run concurrently
// with each other, so they may keep unsynchronized state among themselves;
// anything they share with tasks needs synchronization, typically a
// [wake.Signal] or a [wake.WakerCell].
type Timer struct {
	period   time.Duration
	mu       sync.Mutex
	handlers []Handler
	isr      sync.Mutex
	ticks    atomic.Uint64
}

// NewTimer creates a [Timer] that ticks once per period once started.
func NewTimer(period time.Duration) *Timer {
	return &Timer{period: period}
}

// Period returns the tick period of t.
func (t *Timer) Period() time.Duration {
	return t.period
}

// OnTick registers h to run on every tick.
func (t *Timer) OnTick(h Handler) {
	t.mu.Lock()
	t.handlers = append(t.handlers, h)
	t.mu.Unlock()
}

// Ticks returns the number of ticks fired so far.
func (t *Timer) Ticks() uint64 {
	return t.ticks.Load()
}

// Fire raises one tick immediately, running every handler before it
// returns. It returns the tick number.
func (t *Timer) Fire() uint64 {
	t.mu.Lock()
	handlers := t.handlers
	t.mu.Unlock()

	t.isr.Lock()
	defer t.isr.Unlock()

	n := t.ticks.Add(1)
	for _, h := range handlers {
		h(n)
	}
	return n
}

// Start fires a tick every period until ctx is done, and then returns
// ctx.Err().
func (t *Timer) Start(ctx context.Context) error {
	if t.period <= 0 {
		return ErrInvalidPeriod
	}

	tk := time.NewTicker(t.period)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			t.Fire()
		}
	}
}
