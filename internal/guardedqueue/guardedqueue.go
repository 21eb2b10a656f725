package guardedqueue

import (
	"github.com/iammxrn/MRFoundation/pkg/guarded"
	"github.com/iammxrn/MRFoundation/pkg/locking"
	"github.com/iammxrn/MRFoundation/pkg/ringqueue"
)

// Queue is a ringqueue.Queue shared between goroutines through a
// guarded.Value. Enqueue never blocks on a full buffer, the ring grows instead.
type Queue[T any] struct {
	v        *guarded.Value[*ringqueue.Queue[T]]
	strategy locking.Strategy
}

// New creates a guarded queue with the given initial capacity and lock strategy.
func New[T any](capacity int, s locking.Strategy) *Queue[T] {
	return &Queue[T]{
		v:        guarded.NewWithStrategy(ringqueue.New[T](capacity), s),
		strategy: s,
	}
}

// Strategy returns the lock strategy guarding the queue.
func (q *Queue[T]) Strategy() locking.Strategy {
	return q.strategy
}

// Enqueue appends val under the exclusive lock.
func (q *Queue[T]) Enqueue(val T) {
	q.v.Write(func(r **ringqueue.Queue[T]) {
		(*r).Enqueue(val)
	})
}

// Dequeue pops the oldest value under the exclusive lock.
func (q *Queue[T]) Dequeue() (val T, ok bool) {
	q.v.Write(func(r **ringqueue.Queue[T]) {
		val, ok = (*r).Dequeue()
	})
	return val, ok
}

// Front peeks at the oldest value under the shared lock.
func (q *Queue[T]) Front() (val T, ok bool) {
	q.v.Read(func(r *ringqueue.Queue[T]) {
		val, ok = r.Front()
	})
	return val, ok
}

// FreeSlots returns how many values fit before the ring has to grow.
func (q *Queue[T]) FreeSlots() uint64 {
	return guarded.View(q.v, (*ringqueue.Queue[T]).FreeSlots)
}

// UsedSlots returns how many values are queued.
func (q *Queue[T]) UsedSlots() uint64 {
	return guarded.View(q.v, (*ringqueue.Queue[T]).UsedSlots)
}

// Cap returns the current ring capacity.
func (q *Queue[T]) Cap() int {
	return guarded.View(q.v, (*ringqueue.Queue[T]).Cap)
}
