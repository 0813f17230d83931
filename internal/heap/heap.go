// Package heap provides the fixed-size heap that tasks are charged against.
//
// It stands in for the global allocator of a bare-metal program: a region
// of a fixed number of bytes, initialized exactly once before first use.
package heap

import (
	"errors"
	"sync"
)

var (
	// ErrNotInitialized is returned by Alloc before Init.
	ErrNotInitialized = errors.New("heap: not initialized")
	// ErrAlreadyInitialized is returned by Init when called more than once.
	ErrAlreadyInitialized = errors.New("heap: already initialized")
	// ErrInvalidSize is returned for negative sizes.
	ErrInvalidSize = errors.New("heap: invalid size")
	// ErrOutOfMemory is returned by Alloc when the heap cannot satisfy a
	// request.
	ErrOutOfMemory = errors.New("heap: out of memory")
)

// A Heap is a fixed-size byte budget.
// A Heap is safe for concurrent use. The zero Heap must be initialized with
// Init before use.
type Heap struct {
	mu       sync.Mutex
	inited   bool
	size     int
	used     int
	peak     int
	allocs   uint64
	failures uint64
	onOOM    func(size int)
}

// Stats is a snapshot of [Heap] usage.
type Stats struct {
	Size     int    `msgpack:"size"`
	Used     int    `msgpack:"used"`
	Peak     int    `msgpack:"peak"`
	Allocs   uint64 `msgpack:"allocs"`
	Failures uint64 `msgpack:"failures"`
}

// New returns a Heap initialized with size bytes.
func New(size int) (*Heap, error) {
	h := new(Heap)
	if err := h.Init(size); err != nil {
		return nil, err
	}
	return h, nil
}

// Init sets the size of h. It must be called exactly once.
func (h *Heap) Init(size int) error {
	if size < 0 {
		return ErrInvalidSize
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.inited {
		return ErrAlreadyInitialized
	}

	h.inited = true
	h.size = size

	return nil
}

// OnOutOfMemory registers f to be called, outside any lock, whenever Alloc
// fails for lack of memory.
//
// f must not call back into tasks or the executor.
func (h *Heap) OnOutOfMemory(f func(size int)) {
	h.mu.Lock()
	h.onOOM = f
	h.mu.Unlock()
}

// Alloc reserves size bytes.
func (h *Heap) Alloc(size int) error {
	if size < 0 {
		return ErrInvalidSize
	}

	h.mu.Lock()

	if !h.inited {
		h.mu.Unlock()
		return ErrNotInitialized
	}

	if size > h.size-h.used {
		h.failures++
		onOOM := h.onOOM
		h.mu.Unlock()
		if onOOM != nil {
			onOOM(size)
		}
		return ErrOutOfMemory
	}

	h.used += size
	h.peak = max(h.peak, h.used)
	h.allocs++
	h.mu.Unlock()

	return nil
}

// Free returns size bytes to h.
// Free panics if more is freed than is in use.
func (h *Heap) Free(size int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if size < 0 || size > h.used {
		panic("heap: freed more than allocated")
	}

	h.used -= size
}

// Stats returns a snapshot of h's usage.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	return Stats{
		Size:     h.size,
		Used:     h.used,
		Peak:     h.peak,
		Allocs:   h.allocs,
		Failures: h.failures,
	}
}
