package wake

import "sync"

// A Waker wakes one task: it marks the task ready so that the executor polls
// it on its next scheduling pass.
//
// A Waker is a small value. Copying it, or calling Clone, yields another
// handle for the same task. Wake is safe to call from any goroutine, any
// number of times, and does not allocate. Wakes that arrive before the task
// is polled again coalesce into a single poll. Waking a task that has
// already completed does nothing, even if its slot has been taken by
// another task since.
//
// The zero Waker wakes nothing.
type Waker struct {
	q  *queue
	id TaskID
}

// Clone returns a copy of w.
func (w Waker) Clone() Waker {
	return w
}

// ID returns the identifier of the task w wakes.
func (w Waker) ID() TaskID {
	return w.id
}

// WillWake reports whether w and other wake the same task.
func (w Waker) WillWake(other Waker) bool {
	return w == other
}

// Wake marks the task ready.
//
// Wake returns [ErrQueueFull] if the wake queue has no room for the task.
// In that case the wake is lost. Waking a task that is already marked ready
// always succeeds.
func (w Waker) Wake() error {
	if w.q == nil {
		return nil
	}
	return w.q.wake(w.id)
}

// A WakerCell holds at most one [Waker] so that an event source, such as an
// interrupt handler, can wake whichever task last registered interest in it.
//
// A task registers cx.Waker() on every poll that returns Pending; the event
// source calls Wake whenever the event fires. Wake does not empty the cell,
// so a recurring event keeps waking the same task until it registers
// something else or the cell is cleared.
//
// A WakerCell is safe for concurrent use. The zero WakerCell is empty and
// ready to use.
type WakerCell struct {
	mu sync.Mutex
	w  Waker
}

// Register stores w, replacing any previously registered Waker.
func (c *WakerCell) Register(w Waker) {
	c.mu.Lock()
	c.w = w
	c.mu.Unlock()
}

// Wake wakes the registered task, if any.
func (c *WakerCell) Wake() error {
	c.mu.Lock()
	w := c.w
	c.mu.Unlock()
	return w.Wake()
}

// Take empties the cell and returns what it held.
func (c *WakerCell) Take() (Waker, bool) {
	c.mu.Lock()
	w := c.w
	c.w = Waker{}
	c.mu.Unlock()
	return w, w.q != nil
}

// Clear empties the cell.
func (c *WakerCell) Clear() {
	c.Register(Waker{})
}
