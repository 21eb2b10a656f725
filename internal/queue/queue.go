package queue

import (
	"github.com/iammxrn/MRFoundation/internal/guardedqueue"
	"github.com/iammxrn/MRFoundation/pkg/ringqueue"
)

// QueueValidationInterface is a *type constraint* shared by every queue the
// harness drives. It is only used at compile time; queues are never stored
// behind it at runtime.
type QueueValidationInterface[T any] interface {
	// Enqueue adds an element to the back of the queue. Growable queues never block.
	Enqueue(T)

	// Dequeue removes and returns the oldest element.
	// If the queue is empty it returns the zero T and false, otherwise true.
	Dequeue() (T, bool)

	// FreeSlots returns how many more elements fit before the queue is full
	// (or, for growable queues, before it resizes).
	FreeSlots() uint64

	// UsedSlots returns how many elements are currently queued.
	UsedSlots() uint64
}

// Compile-time enforcement that the queues match the harness contract.
var (
	_ QueueValidationInterface[int] = (*ringqueue.Queue[int])(nil)
	_ QueueValidationInterface[int] = (*guardedqueue.Queue[int])(nil)
)
