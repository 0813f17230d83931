package systick

import "sort"

// lesser is implemented by elements of a priorityqueue.
// Elements that are not less than each other keep their insertion order.
type lesser[E any] interface {
	comparable
	less(v E) bool
}

type priorityqueue[E lesser[E]] struct {
	head, tail []E
}

func (q *priorityqueue[E]) Empty() bool {
	return len(q.head) == 0
}

func (q *priorityqueue[E]) Len() int {
	return len(q.head) + len(q.tail)
}

// Peek returns the least element without removing it.
// q must not be empty.
func (q *priorityqueue[E]) Peek() E {
	return q.head[0]
}

func (q *priorityqueue[E]) Push(v E) {
	headsize, tailsize := len(q.head), len(q.tail)

	n := headsize + tailsize

	i := sort.Search(n, func(i int) bool {
		if i < headsize {
			return v.less(q.head[i])
		}

		i -= headsize

		return v.less(q.tail[i])
	})

	if n == cap(q.tail) {
		var zero E

		s := append(q.tail[:n], zero)[:0]

		if i < headsize {
			s = append(s, q.head[:i]...)
			s = append(s, v)
			s = append(s, q.head[i:]...)
			s = append(s, q.tail...)
		} else {
			i -= headsize
			s = append(s, q.head...)
			s = append(s, q.tail[:i]...)
			s = append(s, v)
			s = append(s, q.tail[i:]...)
		}

		q.head, q.tail = s, s[:0]

		return
	}

	if headsize < cap(q.head) {
		s := q.head
		s = s[:headsize+1]
		copy(s[i+1:], s[i:])
		s[i] = v
		q.head = s
		return
	}

	if i < headsize {
		s := q.head
		u := s[headsize-1]
		copy(s[i+1:], s[i:])
		s[i] = v
		v = u
		i = headsize
	}

	i -= headsize

	s := q.tail
	s = s[:tailsize+1]
	copy(s[i+1:], s[i:])
	s[i] = v
	q.tail = s
}

func (q *priorityqueue[E]) Pop() (v E) {
	q.head[0], v = v, q.head[0]

	if len(q.head) > 1 {
		q.head = q.head[1:]
	} else {
		q.head, q.tail = q.tail, q.tail[:0]
	}

	return v
}

// Remove removes v from q and reports whether it was there.
// The remaining elements keep their order.
func (q *priorityqueue[E]) Remove(v E) bool {
	var zero E

	for i, u := range q.head {
		if u == v {
			copy(q.head[1:i+1], q.head[:i])
			q.head[0] = zero
			q.head = q.head[1:]
			if len(q.head) == 0 {
				q.head, q.tail = q.tail, q.tail[:0]
			}
			return true
		}
	}

	for i, u := range q.tail {
		if u == v {
			n := len(q.tail) - 1
			copy(q.tail[i:], q.tail[i+1:])
			q.tail[n] = zero
			q.tail = q.tail[:n]
			return true
		}
	}

	return false
}
