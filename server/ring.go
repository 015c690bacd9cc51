package server

// ring is a fixed-capacity deque that overwrites its oldest entry when full.
// Index 0 is the most recently pushed element.
type ring[T any] struct {
	items []T
	head  int
	count int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{items: make([]T, capacity)}
}

func (r *ring[T]) push(v T) {
	r.head--
	if r.head < 0 {
		r.head = len(r.items) - 1
	}
	r.items[r.head] = v
	if r.count < len(r.items) {
		r.count++
	}
}

// get returns the i-th newest element, or nil if it has been overwritten or
// never pushed.
func (r *ring[T]) get(i int) *T {
	if i < 0 || i >= r.count {
		return nil
	}
	return &r.items[(r.head+i)%len(r.items)]
}

func (r *ring[T]) len() int {
	return r.count
}

func (r *ring[T]) clear() {
	r.head = 0
	r.count = 0
}
