package wake

const (
	pageShift = 4
	pageSize  = 1 << pageShift
	pageMask  = pageSize - 1
)

type slot struct {
	gen  uint32
	live bool
	f    Future
}

// table holds live tasks by slot.
//
// Slots are stored in fixed-size pages that are allocated once and never
// reallocated, so a live slot never moves. Freed slots are reused in LIFO
// order and have their generation bumped.
type table struct {
	pages [][]slot
	free  []uint32
	next  uint32 // Slots below next have been handed out at least once.
	max   uint32
	n     int
	alloc Allocator
	size  int
}

func (t *table) init(capacity uint32, alloc Allocator, size int) {
	t.max = capacity
	t.alloc = alloc
	t.size = size
}

func (t *table) len() int {
	return t.n
}

func (t *table) at(i uint32) *slot {
	return &t.pages[i>>pageShift][i&pageMask]
}

func (t *table) lookup(id TaskID) *slot {
	if id.Gen == 0 || id.Slot >= t.next {
		return nil
	}
	s := t.at(id.Slot)
	if !s.live || s.gen != id.Gen {
		return nil
	}
	return s
}

func (t *table) insert(f Future) (TaskID, error) {
	i, ok := t.take()
	if !ok {
		return TaskID{}, &SpawnError{Kind: ErrCapacityExceeded}
	}
	if t.alloc != nil {
		if err := t.alloc.Alloc(t.size); err != nil {
			t.free = append(t.free, i)
			return TaskID{}, &SpawnError{Kind: ErrAllocationFailed, Err: err}
		}
	}
	s := t.at(i)
	if s.live {
		panic("wake: internal error: free slot is occupied")
	}
	s.live = true
	s.f = f
	t.n++
	return TaskID{Slot: i, Gen: s.gen}, nil
}

func (t *table) take() (uint32, bool) {
	if n := len(t.free); n != 0 {
		i := t.free[n-1]
		t.free = t.free[:n-1]
		return i, true
	}
	if t.next >= t.max {
		return 0, false
	}
	if t.next == uint32(len(t.pages))<<pageShift {
		page := make([]slot, pageSize)
		for j := range page {
			page[j].gen = 1
		}
		t.pages = append(t.pages, page)
	}
	i := t.next
	t.next++
	return i, true
}

func (t *table) get(id TaskID) Future {
	if s := t.lookup(id); s != nil {
		return s.f
	}
	return nil
}

func (t *table) remove(id TaskID) error {
	s := t.lookup(id)
	if s == nil {
		return ErrAlreadyRemoved
	}
	s.f = nil
	s.live = false
	if s.gen++; s.gen == 0 {
		s.gen = 1
	}
	t.free = append(t.free, id.Slot)
	t.n--
	if t.alloc != nil {
		t.alloc.Free(t.size)
	}
	return nil
}
