package wake

import (
	"fmt"
	"log/slog"
)

// A Future is an asynchronous computation that an [Executor] drives to
// completion by polling it.
//
// Poll advances the computation as far as it can go without blocking.
// It returns [Ready] with the completion value when done, or [Pending]
// when it cannot make progress yet. Before returning Pending, the Future
// must arrange for cx.Waker() to be called once progress is possible again,
// for example by handing it to an interrupt handler through a [WakerCell].
// A Future that returns Pending without doing so is stalled forever; the
// executor cannot detect that.
//
// Poll is only ever called from the executor's run loop, never concurrently.
// After the first poll, a Future stays where it is until it completes.
type Future interface {
	Poll(cx *Context) Poll
}

// The FutureFunc type is an adapter to allow the use of ordinary functions
// as [Future]s.
type FutureFunc func(cx *Context) Poll

// Poll implements [Future] by calling f(cx).
func (f FutureFunc) Poll(cx *Context) Poll {
	return f(cx)
}

// Poll is the result of polling a [Future].
type Poll struct {
	value any
	ready bool
}

// Ready returns a [Poll] that reports completion with value v.
func Ready(v any) Poll {
	return Poll{value: v, ready: true}
}

// Pending returns a [Poll] that reports the Future cannot make progress yet.
func Pending() Poll {
	return Poll{}
}

// IsReady reports whether p reports completion.
func (p Poll) IsReady() bool {
	return p.ready
}

// Value returns the completion value of p, or nil if p is pending.
func (p Poll) Value() any {
	return p.value
}

// TaskID identifies a spawned task.
//
// Slot is the task's index in the task table and gets reused once the task
// completes. Gen tells occupants of the same slot apart, so that a wake
// meant for a task that has since completed never reaches a newer one.
// The zero TaskID never refers to a task.
type TaskID struct {
	Slot uint32
	Gen  uint32
}

// IsZero reports whether id is the zero TaskID.
func (id TaskID) IsZero() bool {
	return id.Gen == 0
}

func (id TaskID) String() string {
	return fmt.Sprintf("%d.%d", id.Slot, id.Gen)
}

// LogValue implements [slog.LogValuer].
func (id TaskID) LogValue() slog.Value {
	return slog.StringValue(id.String())
}

// A Context is passed to [Future.Poll].
//
// A Context is only valid during the Poll call it is passed to. It must not
// be retained; retain the [Waker] instead.
type Context struct {
	executor *Executor
	waker    Waker
}

// ID returns the identifier of the task being polled.
func (cx *Context) ID() TaskID {
	return cx.waker.id
}

// Waker returns a [Waker] that wakes the task being polled.
func (cx *Context) Waker() Waker {
	return cx.waker
}

// Spawner returns a [Spawner] for the executor running the task.
func (cx *Context) Spawner() Spawner {
	return Spawner{cx.executor}
}

// Spawn spawns a sibling task. It is a shortcut for cx.Spawner().Spawn(f).
func (cx *Context) Spawn(f Future) (TaskID, error) {
	return cx.executor.spawn(f)
}

// Lazy returns a [Future] that calls f on its first poll and then
// completes with a nil value.
func Lazy(f func(cx *Context)) Future {
	return FutureFunc(func(cx *Context) Poll {
		f(cx)
		return Ready(nil)
	})
}

// Yield returns a [Future] that wakes itself and returns Pending on its
// first poll, and completes on the second.
//
// The second poll happens no earlier than the next scheduling pass, which
// gives every other ready task a turn in between.
func Yield() Future {
	return new(yieldFuture)
}

type yieldFuture struct {
	yielded bool
}

func (y *yieldFuture) Poll(cx *Context) Poll {
	if y.yielded {
		return Ready(nil)
	}
	if err := cx.Waker().Wake(); err != nil {
		// Could not reschedule; finish now rather than stall.
		return Ready(nil)
	}
	y.yielded = true
	return Pending()
}
