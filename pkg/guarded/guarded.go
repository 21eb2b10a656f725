// Package guarded wraps a value so that it can only be reached while a lock
// is held.
package guarded

import "github.com/iammxrn/MRFoundation/pkg/locking"

// Value guards a T with a locking.Locker. Reads hold the shared mode, writes
// hold the exclusive mode, and the lock is released on every exit path of the
// callback, including errors and panics.
//
// Pointers passed to Write callbacks are only valid for the duration of the
// callback and must not be retained.
type Value[T any] struct {
	lock  locking.Locker
	value T
}

// New wraps v with the given lock. It panics if l is nil.
func New[T any](v T, l locking.Locker) *Value[T] {
	if l == nil {
		panic("guarded: nil locker")
	}
	return &Value[T]{lock: l, value: v}
}

// NewReadWrite wraps v with a shared/exclusive lock. Use it for state that is
// read much more often than it is written.
func NewReadWrite[T any](v T) *Value[T] {
	return New(v, locking.NewRWLock())
}

// NewUnfair wraps v with an exclusive-only lock.
func NewUnfair[T any](v T) *Value[T] {
	return New(v, locking.NewUnfairLock())
}

// NewWithStrategy wraps v with a lock chosen by s.
func NewWithStrategy[T any](v T, s locking.Strategy) *Value[T] {
	return New(v, locking.NewLocker(s))
}

// Read calls fn with a copy of the value while holding the shared lock.
func (g *Value[T]) Read(fn func(T)) {
	g.lock.RLock()
	defer g.lock.RUnlock()
	fn(g.value)
}

// Write calls fn with a pointer to the value while holding the exclusive lock.
func (g *Value[T]) Write(fn func(*T)) {
	g.lock.Lock()
	defer g.lock.Unlock()
	fn(&g.value)
}

// TryRead is Read for callbacks that can fail. The error is returned after
// the lock has been released.
func (g *Value[T]) TryRead(fn func(T) error) error {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return fn(g.value)
}

// TryWrite is Write for callbacks that can fail. The error is returned after
// the lock has been released. Changes made before the error are kept.
func (g *Value[T]) TryWrite(fn func(*T) error) error {
	g.lock.Lock()
	defer g.lock.Unlock()
	return fn(&g.value)
}

// Load returns a copy of the value.
func (g *Value[T]) Load() T {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return g.value
}

// Store replaces the value.
func (g *Value[T]) Store(v T) {
	g.lock.Lock()
	g.value = v
	g.lock.Unlock()
}

// Swap replaces the value and returns the previous one.
func (g *Value[T]) Swap(v T) (old T) {
	g.lock.Lock()
	defer g.lock.Unlock()
	old, g.value = g.value, v
	return old
}

// View runs fn under the shared lock and returns its result.
func View[T, R any](g *Value[T], fn func(T) R) R {
	g.lock.RLock()
	defer g.lock.RUnlock()
	return fn(g.value)
}

// Modify runs fn under the exclusive lock and returns its result.
func Modify[T, R any](g *Value[T], fn func(*T) R) R {
	g.lock.Lock()
	defer g.lock.Unlock()
	return fn(&g.value)
}
