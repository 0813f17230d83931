package wake

// A Spawner submits tasks to an [Executor].
//
// A Spawner is a small value that can be copied freely. Any number of
// Spawners for the same Executor may exist at once.
type Spawner struct {
	e *Executor
}

// Spawn inserts f into the executor's task table and marks it ready, so
// that it gets polled in the next scheduling pass whether or not anything
// else ever wakes it.
//
// Spawn may be called before the executor runs, while it runs (including
// from within a task), and from any goroutine. It fails with a [*SpawnError]
// wrapping [ErrCapacityExceeded] when the table is full,
// [ErrAllocationFailed] when the executor's [Allocator] is exhausted, or
// [ErrQueueFull] when the wake queue cannot take another task. A task that
// fails to spawn is not kept.
func (s Spawner) Spawn(f Future) (TaskID, error) {
	return s.e.spawn(f)
}
