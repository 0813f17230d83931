package systick

import "testing"

func TestPriorityQueue(t *testing.T) {
	t.Run("Overall", func(t *testing.T) {
		var pq priorityqueue[*sleeper]

		for d := range uint64(8) {
			pq.Push(&sleeper{deadline: d})
		}

		for d := range uint64(4) {
			if u := pq.Pop(); u.deadline != d {
				t.FailNow()
			}
		}

		for _, d := range []uint64{8, 9, 10} {
			pq.Push(&sleeper{deadline: d})
		}

		pq.Push(&sleeper{deadline: 3})

		if u := pq.Peek(); u.deadline != 3 {
			t.FailNow()
		}

		if u := pq.Pop(); u.deadline != 3 {
			t.FailNow()
		}

		pq.Push(&sleeper{deadline: 6})
		pq.Push(&sleeper{deadline: 5})

		if pq.Len() != 9 {
			t.FailNow()
		}

		for _, d := range []uint64{4, 5, 5, 6, 6, 7, 8, 9, 10} {
			if u := pq.Pop(); u.deadline != d {
				t.FailNow()
			}
		}

		if !pq.Empty() {
			t.FailNow()
		}
	})
	t.Run("FIFO", func(t *testing.T) {
		var pq priorityqueue[*sleeper]

		u := &sleeper{deadline: 1}
		v := &sleeper{deadline: 1}
		w := &sleeper{deadline: 1}

		pq.Push(u)
		pq.Push(v)
		pq.Push(w)

		if pq.Pop() != u || pq.Pop() != v || pq.Pop() != w {
			t.FailNow()
		}
	})
	t.Run("Remove", func(t *testing.T) {
		var pq priorityqueue[*sleeper]

		s := make([]*sleeper, 8)
		for i := range s {
			s[i] = &sleeper{deadline: uint64(i)}
			pq.Push(s[i])
		}

		// Move some elements into the tail.
		pq.Pop()
		pq.Pop()
		pq.Push(&sleeper{deadline: 9})
		pq.Push(&sleeper{deadline: 8})

		for _, v := range []*sleeper{s[2], s[5], s[7]} {
			if !pq.Remove(v) {
				t.FailNow()
			}
		}

		if pq.Remove(s[0]) || pq.Remove(s[5]) {
			t.FailNow()
		}

		if pq.Len() != 5 {
			t.FailNow()
		}

		for _, d := range []uint64{3, 4, 6, 8, 9} {
			if u := pq.Pop(); u.deadline != d {
				t.FailNow()
			}
		}

		if !pq.Empty() {
			t.FailNow()
		}
	})
	t.Run("RemoveLast", func(t *testing.T) {
		var pq priorityqueue[*sleeper]

		u := &sleeper{deadline: 1}
		v := &sleeper{deadline: 2}

		pq.Push(u)
		pq.Pop()
		pq.Push(v)

		if !pq.Remove(v) || !pq.Empty() || pq.Len() != 0 {
			t.FailNow()
		}

		pq.Push(u)

		if pq.Peek() != u {
			t.FailNow()
		}
	})
}
