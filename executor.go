package wake

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// An Executor runs tasks on the goroutine that calls one of its run methods.
//
// Spawning a task inserts it into a task table and marks it ready. A run
// method then works in scheduling passes: each pass takes every task marked
// ready since the previous pass, in the order they were marked, and polls
// each one that is still live. A task that completes is removed from the
// table. A task that returns Pending stays in the table without being
// polled again until something wakes it through its [Waker]. A task woken
// while it is being polled, including by itself, is polled again in the
// next pass, not the current one.
//
// When a pass finds nothing to poll, the executor sleeps until the next
// wake instead of spinning. Wakes may come from any goroutine; the
// executor treats them the way a bare-metal scheduler treats interrupts.
//
// Only one run method may be active at a time; they must not be called from
// within a task. Spawn, on the other hand, is safe for concurrent use and
// may be called from within a task.
//
// If a task panics, it is removed from the table, the rest of the pass
// completes, and the run method then panics with an error that carries the
// original panic value and stack.
type Executor struct {
	mu      sync.Mutex
	tasks   table
	q       *queue
	stats   Stats
	running bool

	log      *slog.Logger
	obs      Observer
	overflow uint64
	batch    []TaskID
	cx       Context
	ps       panicstack
	target   TaskID
	done     bool
	result   any
}

// NewExecutor creates an [Executor] configured by cfg.
// The task table and the wake queue are sized here and never grow beyond
// that.
func NewExecutor(cfg Config) *Executor {
	cfg = cfg.withDefaults()
	e := &Executor{
		q:     newQueue(cfg.TaskCapacity, cfg.QueueCapacity),
		log:   cfg.Logger,
		obs:   cfg.Observer,
		batch: make([]TaskID, 0, cfg.QueueCapacity),
	}
	e.tasks.init(uint32(cfg.TaskCapacity), cfg.Allocator, cfg.TaskSize)
	e.cx.executor = e
	return e
}

// Spawner returns a [Spawner] for e.
func (e *Executor) Spawner() Spawner {
	return Spawner{e}
}

// Spawn spawns a task to run f. See [Spawner.Spawn].
func (e *Executor) Spawn(f Future) (TaskID, error) {
	return e.spawn(f)
}

func (e *Executor) spawn(f Future) (TaskID, error) {
	if f == nil {
		panic("wake: Spawn called with nil Future")
	}

	e.mu.Lock()

	id, err := e.tasks.insert(f)
	if err == nil {
		e.q.admit(id)
		if err = e.q.wake(id); err != nil {
			e.q.retire(id)
			if e.tasks.remove(id) != nil {
				panic("wake: internal error: spawned task vanished from table")
			}
			err = &SpawnError{Kind: ErrQueueFull}
		} else {
			e.stats.Spawned++
		}
	}

	e.mu.Unlock()

	if err != nil {
		e.log.Debug("spawn failed", "err", err)
		return TaskID{}, err
	}

	e.log.Debug("task spawned", "task", id)

	if e.obs != nil {
		e.obs.OnSpawn(id)
	}

	return id, nil
}

// Len returns the number of live tasks.
func (e *Executor) Len() int {
	e.mu.Lock()
	n := e.tasks.len()
	e.mu.Unlock()
	return n
}

// Contains reports whether id refers to a live task.
func (e *Executor) Contains(id TaskID) bool {
	e.mu.Lock()
	ok := e.tasks.lookup(id) != nil
	e.mu.Unlock()
	return ok
}

// Stats returns a snapshot of e's counters.
func (e *Executor) Stats() Stats {
	e.mu.Lock()
	s := e.stats
	s.Live = e.tasks.len()
	e.mu.Unlock()
	s.Queued = e.q.len()
	s.Overflows = e.q.overflows.Load()
	s.StaleWakes += e.q.stale.Load()
	return s
}

// Step runs a single scheduling pass and returns the number of tasks it
// polled. Step never sleeps.
func (e *Executor) Step() int {
	e.enter()
	defer e.exit()
	return e.pass()
}

// RunUntil runs scheduling passes until the task identified by id
// completes, and returns its completion value.
//
// Other tasks are polled along the way as they become ready, but RunUntil
// returns as soon as the target completes; tasks still pending stay in the
// table and can be run later.
//
// RunUntil returns [ErrTaskNotFound] if id is not live when it is called,
// and ctx.Err() if ctx is done before the target completes.
func (e *Executor) RunUntil(ctx context.Context, id TaskID) (any, error) {
	e.enter()
	defer e.exit()

	if !e.Contains(id) {
		return nil, ErrTaskNotFound
	}

	e.target = id

	for {
		n := e.pass()
		if len(e.ps) != 0 {
			return nil, nil // Unreachable: exit panics.
		}
		if e.done {
			return e.result, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n == 0 {
			if err := e.idle(ctx); err != nil {
				return nil, err
			}
		}
	}
}

// BlockOn spawns f and runs until it completes. See [Executor.RunUntil].
func (e *Executor) BlockOn(ctx context.Context, f Future) (any, error) {
	id, err := e.spawn(f)
	if err != nil {
		return nil, err
	}
	return e.RunUntil(ctx, id)
}

// Run runs scheduling passes until no live task is left, or until ctx is
// done, in which case it returns ctx.Err().
//
// A task that returns Pending without anything left to wake it keeps Run
// waiting forever; that is a bug in the task, not something Run can detect.
func (e *Executor) Run(ctx context.Context) error {
	e.enter()
	defer e.exit()

	for {
		n := e.pass()
		if len(e.ps) != 0 {
			return nil // Unreachable: exit panics.
		}
		if e.Len() == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if n == 0 {
			if err := e.idle(ctx); err != nil {
				return err
			}
		}
	}
}

// Serve runs scheduling passes until ctx is done, sleeping whenever there
// is nothing to poll, and then returns ctx.Err().
//
// Unlike Run, Serve keeps going when the table is empty, waiting for tasks
// to be spawned from other goroutines.
func (e *Executor) Serve(ctx context.Context) error {
	e.enter()
	defer e.exit()

	for {
		n := e.pass()
		if len(e.ps) != 0 {
			return nil // Unreachable: exit panics.
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if n == 0 {
			if err := e.idle(ctx); err != nil {
				return err
			}
		}
	}
}

func (e *Executor) enter() {
	e.mu.Lock()
	running := e.running
	e.running = true
	e.mu.Unlock()

	if running {
		panic("wake: executor is already running")
	}
}

func (e *Executor) exit() {
	e.mu.Lock()
	e.running = false
	e.mu.Unlock()

	e.target = TaskID{}
	e.done = false
	e.result = nil

	ps := e.ps
	e.ps = nil
	ps.Repanic()
}

func (e *Executor) idle(ctx context.Context) error {
	e.mu.Lock()
	e.stats.IdleWaits++
	e.mu.Unlock()
	return e.q.wait(ctx)
}

func (e *Executor) pass() int {
	e.batch = e.q.drain(e.batch[:0])

	e.mu.Lock()
	e.stats.Passes++
	e.mu.Unlock()

	if n := e.q.overflows.Load(); n != e.overflow {
		lost := n - e.overflow
		e.overflow = n
		e.log.Warn("wake queue overflowed", "rejected", lost)
		if e.obs != nil {
			e.obs.OnOverflow(lost)
		}
	}

	polled := 0

	for _, id := range e.batch {
		e.mu.Lock()
		f := e.tasks.get(id)
		if f == nil {
			e.stats.StaleWakes++
		}
		e.mu.Unlock()

		if f == nil {
			e.log.Debug("stale wake ignored", "task", id)
			if e.obs != nil {
				e.obs.OnStaleWake(id)
			}
			continue
		}

		polled++
		e.poll(id, f)
	}

	return polled
}

func (e *Executor) poll(id TaskID, f Future) {
	cx := &e.cx
	cx.waker = Waker{e.q, id}

	var start time.Time
	if e.obs != nil {
		start = time.Now()
	}

	var res Poll

	ok := e.ps.Try(id, func() { res = f.Poll(cx) })

	cx.waker = Waker{}

	if e.obs != nil {
		e.obs.OnPoll(id, res.ready, time.Since(start))
	}

	e.mu.Lock()

	e.stats.Polls++

	if ok && !res.ready {
		e.mu.Unlock()
		return
	}

	e.q.retire(id)
	err := e.tasks.remove(id)

	if ok {
		e.stats.Completed++
	} else {
		e.stats.Panicked++
	}

	e.mu.Unlock()

	if err != nil {
		panic("wake: internal error: polled task vanished from table")
	}

	if !ok {
		e.log.Warn("task panicked", "task", id)
		return
	}

	e.log.Debug("task completed", "task", id)

	if e.obs != nil {
		e.obs.OnComplete(id, res.value)
	}

	if id == e.target {
		e.done = true
		e.result = res.value
	}
}
