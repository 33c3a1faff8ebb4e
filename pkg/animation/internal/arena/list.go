// Package arena provides a doubly-linked list whose nodes live in a slice and
// are addressed by generational handles.
//
// A Handle stays comparable and cheap to copy. Once its node is removed the
// slot's generation advances, so stale handles are detected instead of
// aliasing whatever value reuses the slot.
package arena

// Handle addresses a node in a List. The zero Handle is never valid.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

const none = -1

type node[T any] struct {
	value T
	prev  int32
	next  int32
	gen   uint32
	used  bool
}

// List is a doubly-linked list backed by a node arena. The zero value is an
// empty list ready to use.
type List[T any] struct {
	nodes []node[T]
	free  []int32
	first int32
	last  int32
	size  int
	init  bool
}

func (l *List[T]) lazyInit() {
	if !l.init {
		l.first, l.last = none, none
		l.init = true
	}
}

// Len returns the number of values in the list.
func (l *List[T]) Len() int {
	return l.size
}

// Valid reports whether h refers to a live node of l.
func (l *List[T]) Valid(h Handle) bool {
	if h.gen == 0 || int(h.index) >= len(l.nodes) {
		return false
	}
	n := &l.nodes[h.index]
	return n.used && n.gen == h.gen
}

// Get returns the value stored at h.
func (l *List[T]) Get(h Handle) (T, bool) {
	if !l.Valid(h) {
		var zero T
		return zero, false
	}
	return l.nodes[h.index].value, true
}

// Set replaces the value stored at h. It reports false for stale handles.
func (l *List[T]) Set(h Handle, v T) bool {
	if !l.Valid(h) {
		return false
	}
	l.nodes[h.index].value = v
	return true
}

// Front returns the handle of the first node, or the zero Handle.
func (l *List[T]) Front() Handle {
	l.lazyInit()
	return l.handle(l.first)
}

// Back returns the handle of the last node, or the zero Handle.
func (l *List[T]) Back() Handle {
	l.lazyInit()
	return l.handle(l.last)
}

// Next returns the handle following h, or the zero Handle at the end or when
// h is stale.
func (l *List[T]) Next(h Handle) Handle {
	if !l.Valid(h) {
		return Handle{}
	}
	return l.handle(l.nodes[h.index].next)
}

// Prev returns the handle preceding h, or the zero Handle at the start or
// when h is stale.
func (l *List[T]) Prev(h Handle) Handle {
	if !l.Valid(h) {
		return Handle{}
	}
	return l.handle(l.nodes[h.index].prev)
}

// PushBack appends v and returns its handle.
func (l *List[T]) PushBack(v T) Handle {
	l.lazyInit()
	return l.insert(v, l.last, none)
}

// PushFront prepends v and returns its handle.
func (l *List[T]) PushFront(v T) Handle {
	l.lazyInit()
	return l.insert(v, none, l.first)
}

// InsertAfter inserts v directly after at. A stale at behaves like PushFront,
// which is where a sorted insertion that walked past the head ends up.
func (l *List[T]) InsertAfter(at Handle, v T) Handle {
	l.lazyInit()
	if !l.Valid(at) {
		return l.PushFront(v)
	}
	return l.insert(v, int32(at.index), l.nodes[at.index].next)
}

// InsertBefore inserts v directly before at. A stale at behaves like PushBack.
func (l *List[T]) InsertBefore(at Handle, v T) Handle {
	l.lazyInit()
	if !l.Valid(at) {
		return l.PushBack(v)
	}
	return l.insert(v, l.nodes[at.index].prev, int32(at.index))
}

// Remove unlinks the node at h and returns its value. The slot is recycled and
// h becomes stale.
func (l *List[T]) Remove(h Handle) (T, bool) {
	var zero T
	if !l.Valid(h) {
		return zero, false
	}
	i := int32(h.index)
	n := &l.nodes[i]
	if n.prev != none {
		l.nodes[n.prev].next = n.next
	} else {
		l.first = n.next
	}
	if n.next != none {
		l.nodes[n.next].prev = n.prev
	} else {
		l.last = n.prev
	}
	v := n.value
	n.value = zero
	n.used = false
	n.prev, n.next = none, none
	n.gen++
	if n.gen == 0 {
		n.gen = 1
	}
	l.free = append(l.free, i)
	l.size--
	return v, true
}

// Clear removes every node. Outstanding handles become stale.
func (l *List[T]) Clear() {
	for h := l.Front(); !h.IsZero(); {
		next := l.Next(h)
		l.Remove(h)
		h = next
	}
}

// Values returns the values in list order.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.size)
	for h := l.Front(); !h.IsZero(); h = l.Next(h) {
		out = append(out, l.nodes[h.index].value)
	}
	return out
}

func (l *List[T]) insert(v T, prev, next int32) Handle {
	var i int32
	if n := len(l.free); n > 0 {
		i = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		l.nodes = append(l.nodes, node[T]{gen: 1})
		i = int32(len(l.nodes) - 1)
	}
	n := &l.nodes[i]
	n.value = v
	n.used = true
	n.prev, n.next = prev, next
	if prev != none {
		l.nodes[prev].next = i
	} else {
		l.first = i
	}
	if next != none {
		l.nodes[next].prev = i
	} else {
		l.last = i
	}
	l.size++
	return Handle{index: uint32(i), gen: n.gen}
}

func (l *List[T]) handle(i int32) Handle {
	if i == none {
		return Handle{}
	}
	return Handle{index: uint32(i), gen: l.nodes[i].gen}
}
