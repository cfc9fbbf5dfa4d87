// Package queue implements the fixed-capacity single-producer/single-consumer
// ring that carries excitation events from control goroutines to the render
// goroutine.
package queue

import (
	"sync/atomic"
)

// minCapacity is the smallest ring size accepted by [NewRing].
const minCapacity = 2

// Ring is a lock-free circular buffer for one writer and one reader.
// Push and Pop never allocate or block; Push drops the item when the ring is
// full. Capacity is rounded up to a power of two.
type Ring[T any] struct {
	data []T
	mask uint64

	// head is advanced only by the reader, tail only by the writer.
	head atomic.Uint64
	tail atomic.Uint64

	dropped atomic.Uint64
}

// NewRing creates a new ring with room for at least capacity items.
func NewRing[T any](capacity int) *Ring[T] {
	size := minCapacity
	for size < capacity {
		size *= 2
	}
	return &Ring[T]{
		data: make([]T, size),
		mask: uint64(size - 1),
	}
}

// Push appends item. It reports false, and counts a drop, when the ring is full.
func (r *Ring[T]) Push(item T) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() >= uint64(len(r.data)) {
		r.dropped.Add(1)
		return false
	}
	r.data[tail&r.mask] = item
	r.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest item.
func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	head := r.head.Load()
	if head == r.tail.Load() {
		return zero, false
	}
	item := r.data[head&r.mask]
	r.data[head&r.mask] = zero
	r.head.Store(head + 1)
	return item, true
}

// Drain pops every available item into fn, oldest first, and returns the count.
func (r *Ring[T]) Drain(fn func(T)) int {
	n := 0
	for {
		item, ok := r.Pop()
		if !ok {
			return n
		}
		fn(item)
		n++
	}
}

// Available returns the number of queued items.
func (r *Ring[T]) Available() int {
	return int(r.tail.Load() - r.head.Load())
}

// Capacity returns the ring size.
func (r *Ring[T]) Capacity() int {
	return len(r.data)
}

// Dropped returns the number of items rejected because the ring was full.
func (r *Ring[T]) Dropped() uint64 {
	return r.dropped.Load()
}
