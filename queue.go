package wake

import (
	"context"
	"sync"
	"sync/atomic"
)

// queue is the set of tasks waiting for their next poll.
//
// It is the only structure written from outside the run loop: wakers may
// call wake from any goroutine, including ones standing in for interrupt
// handlers. Every access goes through mu, which is never held while a task
// is being polled. All storage is allocated up front; wake never allocates.
//
// pending[s] holds the generation queued for slot s, or zero when slot s is
// not queued. A slot appears in ring at most once, exactly when its pending
// entry is non-zero.
//
// live[s] holds the generation of the task occupying slot s, or zero when
// the slot is free. The executor sets it with admit and clears it with
// retire while holding its own lock. A wake whose generation is not live is
// dropped before it can take a place in ring.
type queue struct {
	mu        sync.Mutex
	ring      []uint32
	head      int
	n         int
	pending   []uint32
	live      []atomic.Uint32
	signal    chan struct{}
	overflows atomic.Uint64
	stale     atomic.Uint64
}

func newQueue(slots, capacity int) *queue {
	return &queue{
		ring:    make([]uint32, capacity),
		pending: make([]uint32, slots),
		live:    make([]atomic.Uint32, slots),
		signal:  make(chan struct{}, 1),
	}
}

// admit marks id as the live occupant of its slot.
func (q *queue) admit(id TaskID) {
	q.live[id.Slot].Store(id.Gen)
}

// retire marks the slot of id as free, unless it has been admitted again
// since.
func (q *queue) retire(id TaskID) {
	q.live[id.Slot].CompareAndSwap(id.Gen, 0)
}

func (q *queue) wake(id TaskID) error {
	if id.Gen == 0 || int(id.Slot) >= len(q.pending) {
		return nil
	}

	if q.live[id.Slot].Load() != id.Gen {
		q.stale.Add(1)
		return nil
	}

	q.mu.Lock()

	switch g := q.pending[id.Slot]; {
	case g == id.Gen:
		q.mu.Unlock()
		return nil
	case g != 0:
		// Slot queued under another generation. Keep the newer one; the
		// older one belongs to a task that has completed, possibly while
		// this wake was on its way in.
		if int32(id.Gen-g) > 0 {
			q.pending[id.Slot] = id.Gen
		}
		q.mu.Unlock()
		return nil
	}

	if q.n == len(q.ring) {
		q.mu.Unlock()
		q.overflows.Add(1)
		return ErrQueueFull
	}

	q.ring[(q.head+q.n)%len(q.ring)] = id.Slot
	q.n++
	q.pending[id.Slot] = id.Gen
	q.mu.Unlock()

	q.notify()

	return nil
}

// drain appends every queued task to buf, in the order they were queued,
// and empties the queue.
func (q *queue) drain(buf []TaskID) []TaskID {
	q.mu.Lock()

	for q.n != 0 {
		s := q.ring[q.head]
		q.head = (q.head + 1) % len(q.ring)
		q.n--
		buf = append(buf, TaskID{Slot: s, Gen: q.pending[s]})
		q.pending[s] = 0
	}

	q.head = 0
	q.mu.Unlock()

	return buf
}

func (q *queue) len() int {
	q.mu.Lock()
	n := q.n
	q.mu.Unlock()
	return n
}

func (q *queue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// wait blocks until something has been queued since the last wait, or until
// ctx is done. It may return early; callers re-check the queue.
func (q *queue) wait(ctx context.Context) error {
	select {
	case <-q.signal:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
