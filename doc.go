// Package wake is a single-threaded, poll-based task executor whose tasks
// can be woken from anywhere, including interrupt-like contexts.
//
// It is shaped after the executors found on bare-metal targets: no thread
// scheduler, a small fixed heap, and hardware interrupts as the only source
// of events. An [Executor] owns a bounded task table and a bounded wake
// queue, both sized when it is created. Everything it does happens on the
// goroutine that runs it.
//
// # Futures and Polling
//
// A task is a [Future]. The executor drives a Future by calling its Poll
// method, which either completes with [Ready] or returns [Pending].
// A Future that returns Pending must first hand the [Waker] it gets from its
// [Context] to whatever will eventually make progress possible.
// The executor never polls a pending task on its own initiative.
//
// # Waking
//
// Calling [Waker.Wake] marks a task ready for the next scheduling pass.
// Wake never blocks and never allocates, so it can be called from a timer
// callback, a signal handler goroutine, or any other stand-in for an
// interrupt service routine. Wakes coalesce: a task woken many times before
// its next poll is polled once.
//
// Wakers outlive tasks. A task identifier carries a generation next to its
// slot, so a Waker whose task has completed wakes nothing, even if the slot
// now belongs to another task.
//
// Event sources that wake whichever task is currently waiting on them
// usually keep the Waker in a [WakerCell]. [Signal] combines a WakerCell
// with a flag for the common "interrupt sets a flag, task consumes it" case.
//
// # Bounded Queue
//
// The wake queue holds each ready task at most once and never grows.
// If Config.QueueCapacity is smaller than Config.TaskCapacity, the queue can
// overflow: a wake that finds it full returns [ErrQueueFull] and is lost.
// Lost wakes are counted in [Stats], logged, and reported to the [Observer]
// on the next scheduling pass, since a missed wake silently stalls a task.
//
// # Running
//
// [Executor.RunUntil] and [Executor.BlockOn] run until one task completes
// and return its value. [Executor.Run] runs until no task is left.
// [Executor.Serve] runs until its context is done. [Executor.Step] runs one
// pass and is handy in tests.
//
// When a pass polls nothing, the executor sleeps until the next wake, the
// way a bare-metal loop would wait for an interrupt.
//
// # Panic Propagation
//
// A task that panics is removed from the table like a completed one.
// Once the current pass is over, the run method panics with an error
// carrying every panic value collected during that pass, along with their
// stacks. The executor stays usable afterwards.
package wake
