package ringqueue

// DefaultCapacity is the capacity used by NewDefault.
const DefaultCapacity = 10

// Queue is a FIFO queue backed by a circular buffer that doubles when full
// and halves when less than a quarter full. It never shrinks below the
// capacity it was created with.
//
// Queue is not safe for concurrent use. Wrap it in a guarded.Value when it
// has to be shared between goroutines.
type Queue[T any] struct {
	buf   []T
	head  int
	tail  int
	count int
	floor int
}

// New creates a queue with the given initial capacity. The initial capacity
// is also the smallest capacity the queue will ever shrink to.
// It panics if capacity is less than 1.
func New[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		panic("ringqueue: capacity must be at least 1")
	}
	return &Queue[T]{
		buf:   make([]T, capacity),
		floor: capacity,
	}
}

// NewDefault creates a queue with DefaultCapacity.
func NewDefault[T any]() *Queue[T] {
	return New[T](DefaultCapacity)
}

// Enqueue adds v to the back of the queue, growing the buffer if needed.
func (q *Queue[T]) Enqueue(v T) {
	if q.count == len(q.buf) {
		q.resize(len(q.buf) * 2)
	}
	q.buf[q.tail] = v
	q.tail = (q.tail + 1) % len(q.buf)
	q.count++
}

// Dequeue removes and returns the front element.
// If the queue is empty it returns the zero value and false.
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	if q.count == 0 {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head = (q.head + 1) % len(q.buf)
	q.count--

	if half := len(q.buf) / 2; q.count < len(q.buf)/4 && half >= q.floor {
		q.resize(half)
	}
	return v, true
}

// Front returns the front element without removing it.
// If the queue is empty it returns the zero value and false.
func (q *Queue[T]) Front() (T, bool) {
	if q.count == 0 {
		var zero T
		return zero, false
	}
	return q.buf[q.head], true
}

// IsEmpty reports whether the queue holds no elements.
func (q *Queue[T]) IsEmpty() bool {
	return q.count == 0
}

// Len returns the number of queued elements.
func (q *Queue[T]) Len() int {
	return q.count
}

// Cap returns the current size of the backing buffer.
func (q *Queue[T]) Cap() int {
	return len(q.buf)
}

// FreeSlots returns how many elements fit before the next resize.
func (q *Queue[T]) FreeSlots() uint64 {
	return uint64(len(q.buf) - q.count)
}

// UsedSlots returns how many elements are currently queued.
func (q *Queue[T]) UsedSlots() uint64 {
	return uint64(q.count)
}

// resize moves the logical elements into a new buffer of the given size,
// starting at index 0.
func (q *Queue[T]) resize(capacity int) {
	buf := make([]T, capacity)
	for i := 0; i < q.count; i++ {
		buf[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.buf = buf
	q.head = 0
	q.tail = q.count % capacity
}
