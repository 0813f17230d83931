package wake

// A WaitGroup is a counter that tasks can wait on.
//
// When the counter drops to zero, every task waiting on the WaitGroup is
// woken. A WaitGroup is not safe for concurrent use; use it only from within
// tasks run by one [Executor].
type WaitGroup struct {
	n       int
	waiters []Waker
}

// Add adds delta, which may be negative, to the counter.
// If the counter becomes zero, Add wakes every waiting task.
// If the counter is negative, Add panics.
func (wg *WaitGroup) Add(delta int) {
	if wg.n >= 0 {
		wg.n += delta
	}
	if wg.n < 0 {
		panic("wake(WaitGroup): negative counter")
	}
	if wg.n == 0 && delta != 0 {
		waiters := wg.waiters
		wg.waiters = nil
		for _, w := range waiters {
			_ = w.Wake()
		}
	}
}

// Done decrements the counter by one.
func (wg *WaitGroup) Done() {
	wg.Add(-1)
}

// Count returns the current value of the counter.
func (wg *WaitGroup) Count() int {
	return wg.n
}

// Wait returns a [Future] that completes once the counter is zero.
func (wg *WaitGroup) Wait() Future {
	return FutureFunc(func(cx *Context) Poll {
		if wg.n == 0 {
			return Ready(nil)
		}
		w := cx.Waker()
		for _, v := range wg.waiters {
			if v.WillWake(w) {
				return Pending()
			}
		}
		wg.waiters = append(wg.waiters, w)
		return Pending()
	})
}
