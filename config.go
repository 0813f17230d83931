package wake

import (
	"log/slog"
	"time"
)

// Default values used by [NewExecutor] for zero [Config] fields.
const (
	DefaultTaskCapacity = 64
	DefaultTaskSize     = 64
)

// MaxTaskCapacity is the largest task capacity [NewExecutor] accepts.
// Larger values are lowered to it.
const MaxTaskCapacity = 1 << 16

// An Allocator is the dynamic-memory provider tasks are charged against.
//
// Alloc reserves size bytes, or returns an error when it cannot. Free
// returns size bytes previously reserved. The executor calls both from its
// run loop or from Spawn, never from a wake.
type Allocator interface {
	Alloc(size int) error
	Free(size int)
}

// An Observer is notified of executor activity. All methods are called from
// the goroutine running the executor, or, for OnSpawn, from the goroutine
// calling Spawn. They must not block.
//
// Most stale wakes are dropped by the waker itself and only show up in
// [Stats]; OnStaleWake reports the few that reach the run loop because the
// task completed while the wake was in flight.
type Observer interface {
	OnSpawn(id TaskID)
	OnPoll(id TaskID, ready bool, d time.Duration)
	OnComplete(id TaskID, v any)
	OnStaleWake(id TaskID)
	OnOverflow(lost uint64)
}

// Config configures an [Executor].
type Config struct {
	// TaskCapacity bounds the number of live tasks.
	// Zero means DefaultTaskCapacity; anything above MaxTaskCapacity means
	// MaxTaskCapacity. NewExecutor allocates per-slot bookkeeping of a few
	// bytes for every one of them up front.
	TaskCapacity int

	// QueueCapacity bounds the number of distinct tasks that can be waiting
	// for a poll at once. Zero, or anything above TaskCapacity, means
	// TaskCapacity, in which case the queue can never overflow.
	QueueCapacity int

	// TaskSize is the number of bytes charged to Allocator for every live
	// task. Zero means DefaultTaskSize.
	TaskSize int

	// Allocator, if not nil, is charged for every live task.
	Allocator Allocator

	// Logger receives debug and warning records. Nil means discard.
	Logger *slog.Logger

	// Observer, if not nil, is notified of executor activity.
	Observer Observer
}

func (cfg Config) withDefaults() Config {
	if cfg.TaskCapacity <= 0 {
		cfg.TaskCapacity = DefaultTaskCapacity
	}
	if cfg.TaskCapacity > MaxTaskCapacity {
		cfg.TaskCapacity = MaxTaskCapacity
	}
	if cfg.QueueCapacity <= 0 || cfg.QueueCapacity > cfg.TaskCapacity {
		cfg.QueueCapacity = cfg.TaskCapacity
	}
	if cfg.TaskSize <= 0 {
		cfg.TaskSize = DefaultTaskSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

// Stats is a snapshot of executor counters.
type Stats struct {
	Spawned    uint64 `msgpack:"spawned"`
	Completed  uint64 `msgpack:"completed"`
	Panicked   uint64 `msgpack:"panicked"`
	Polls      uint64 `msgpack:"polls"`
	Passes     uint64 `msgpack:"passes"`
	IdleWaits  uint64 `msgpack:"idle_waits"`
	StaleWakes uint64 `msgpack:"stale_wakes"` // Wakes for completed tasks, all ignored.
	Overflows  uint64 `msgpack:"overflows"`   // Wakes lost to a full queue.
	Live       int    `msgpack:"live"`
	Queued     int    `msgpack:"queued"`
}
