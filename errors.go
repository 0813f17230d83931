package wake

import "errors"

var (
	// ErrCapacityExceeded is returned by Spawn when every task slot is taken.
	ErrCapacityExceeded = errors.New("wake: task table is full")

	// ErrAllocationFailed is returned by Spawn when the [Allocator] reports
	// that it is out of memory.
	ErrAllocationFailed = errors.New("wake: task allocation failed")

	// ErrQueueFull is returned by a wake when the wake queue has no room left
	// for another distinct task.
	//
	// A wake that fails this way is lost: the task it was meant for will not
	// be polled because of it. The embedding application decides whether
	// that is fatal.
	ErrQueueFull = errors.New("wake: wake queue is full")

	// ErrAlreadyRemoved is reported when a task slot is freed twice.
	ErrAlreadyRemoved = errors.New("wake: task already removed")

	// ErrTaskNotFound is returned by RunUntil when the target task is not
	// live.
	ErrTaskNotFound = errors.New("wake: task not found")
)

// A SpawnError is returned by Spawn when a task could not be admitted.
//
// Kind is one of [ErrCapacityExceeded], [ErrAllocationFailed] or
// [ErrQueueFull]. Err, if not nil, is the error that caused it, for example
// the one reported by an [Allocator].
type SpawnError struct {
	Kind error
	Err  error
}

func (e *SpawnError) Error() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *SpawnError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
