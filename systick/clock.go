package systick

import (
	"errors"
	"sync"

	"github.com/b97tsk/wake"
)

// ErrTimeout is the completion value of a [Clock.Timeout] future whose
// deadline passed first.
var ErrTimeout = errors.New("systick: timed out")

// A Clock counts ticks and wakes tasks that wait for a number of them.
//
// A Clock is usually driven by a [Timer] (see [NewClock]), but its Tick
// method can be called directly by any periodic source. Tick is safe to
// call from an interrupt handler; it never allocates.
type Clock struct {
	mu  sync.Mutex
	now uint64
	pq  priorityqueue[*sleeper]
}

type sleeper struct {
	deadline uint64
	waker    wake.Waker
	queued   bool
}

func (s *sleeper) less(other *sleeper) bool {
	return s.deadline < other.deadline
}

// NewClock creates a [Clock] that advances on every tick of t.
func NewClock(t *Timer) *Clock {
	c := new(Clock)
	t.OnTick(c.Tick)
	return c
}

// Now returns the current tick count of c.
func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleepers returns the number of tasks waiting for a deadline.
func (c *Clock) Sleepers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pq.Len()
}

// Tick advances c to tick now and wakes every task whose deadline has been
// reached. A now that is not ahead of the current count only wakes tasks
// that are already due.
func (c *Clock) Tick(now uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now > c.now {
		c.now = now
	}

	for !c.pq.Empty() && c.pq.Peek().deadline <= c.now {
		s := c.pq.Pop()
		s.queued = false
		_ = s.waker.Wake()
	}
}

// Delay returns a [wake.Future] that completes n ticks after its first
// poll.
func (c *Clock) Delay(n uint64) wake.Future {
	return &delay{c: c, n: n}
}

type delay struct {
	c       *Clock
	n       uint64
	started bool
	s       sleeper
}

func (d *delay) Poll(cx *wake.Context) wake.Poll {
	c := d.c

	c.mu.Lock()
	defer c.mu.Unlock()

	if !d.started {
		d.started = true
		d.s.deadline = c.now + d.n
	}

	if c.now >= d.s.deadline {
		return wake.Ready(nil)
	}

	d.s.waker = cx.Waker()

	if !d.s.queued {
		d.s.queued = true
		c.pq.Push(&d.s)
	}

	return wake.Pending()
}

// cancel takes d off the clock so that its deadline wakes nobody.
func (d *delay) cancel() {
	c := d.c

	c.mu.Lock()
	defer c.mu.Unlock()

	if d.s.queued {
		c.pq.Remove(&d.s)
		d.s.queued = false
	}
	d.s.waker = wake.Waker{}
}

// Timeout returns a [wake.Future] that polls f until it completes, or
// until n ticks have passed since the first poll.
// It completes with f's value, or with [ErrTimeout] if time ran out first.
// If f completes first, the deadline is dropped from c.
func (c *Clock) Timeout(f wake.Future, n uint64) wake.Future {
	return &timeout{f: f, d: delay{c: c, n: n}}
}

type timeout struct {
	f wake.Future
	d delay
}

func (t *timeout) Poll(cx *wake.Context) wake.Poll {
	if p := t.f.Poll(cx); p.IsReady() {
		t.d.cancel()
		return p
	}
	if t.d.Poll(cx).IsReady() {
		return wake.Ready(ErrTimeout)
	}
	return wake.Pending()
}
