package wake

import "sync/atomic"

// A Signal is a flag that an event source raises and a task waits for.
//
// Notify raises the flag and wakes the waiting task. It is safe to call from
// any goroutine, including ones standing in for interrupt handlers, and any
// writes made before Notify are visible to the task once its wait completes.
// Notifications that arrive before the task gets to look at the flag
// coalesce into one.
//
// A Signal should have at most one waiting task at a time; a second waiter
// replaces the first. The zero Signal is lowered and ready to use.
type Signal struct {
	cell WakerCell
	set  atomic.Bool
}

// Notify raises s and wakes the task waiting for it, if any.
// The returned error is the one from [Waker.Wake].
func (s *Signal) Notify() error {
	s.set.Store(true)
	return s.cell.Wake()
}

// Raised reports whether s is raised, without lowering it.
func (s *Signal) Raised() bool {
	return s.set.Load()
}

// Wait returns a [Future] that completes, lowering s, once s is raised.
func (s *Signal) Wait() Future {
	return FutureFunc(func(cx *Context) Poll {
		if s.set.CompareAndSwap(true, false) {
			return Ready(nil)
		}
		s.cell.Register(cx.Waker())
		// Notify may have run between the check and the registration.
		if s.set.CompareAndSwap(true, false) {
			return Ready(nil)
		}
		return Pending()
	})
}
