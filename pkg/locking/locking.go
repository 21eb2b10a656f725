// Package locking provides the two lock strategies used by guarded values:
// a shared/exclusive lock for read-heavy state and an exclusive-only lock
// with the smallest per-acquisition cost.
//
// Build with -tags=deadlock to back both strategies with
// github.com/sasha-s/go-deadlock during development.
package locking

import (
	"fmt"
	"strings"
)

// Locker is the capability every strategy implements. Read access takes
// RLock/RUnlock, write access takes Lock/Unlock. Strategies without a shared
// mode map both pairs onto the same exclusive lock.
type Locker interface {
	RLock()
	RUnlock()
	Lock()
	Unlock()
}

var (
	_ Locker = (*RWLock)(nil)
	_ Locker = (*UnfairLock)(nil)
)

// RWLock allows any number of concurrent readers or a single writer.
type RWLock struct {
	mu rwMutex
}

// NewRWLock returns a ready to use RWLock.
func NewRWLock() *RWLock {
	return &RWLock{}
}

func (l *RWLock) RLock()   { l.mu.RLock() }
func (l *RWLock) RUnlock() { l.mu.RUnlock() }
func (l *RWLock) Lock()    { l.mu.Lock() }
func (l *RWLock) Unlock()  { l.mu.Unlock() }

// UnfairLock allows a single holder at a time, whether it reads or writes.
// Waiters are not served in arrival order.
type UnfairLock struct {
	mu mutex
}

// NewUnfairLock returns a ready to use UnfairLock.
func NewUnfairLock() *UnfairLock {
	return &UnfairLock{}
}

func (l *UnfairLock) RLock()   { l.mu.Lock() }
func (l *UnfairLock) RUnlock() { l.mu.Unlock() }
func (l *UnfairLock) Lock()    { l.mu.Lock() }
func (l *UnfairLock) Unlock()  { l.mu.Unlock() }

// Strategy selects a Locker implementation.
type Strategy int

const (
	// ReadWrite selects RWLock.
	ReadWrite Strategy = iota
	// Unfair selects UnfairLock.
	Unfair
)

func (s Strategy) String() string {
	switch s {
	case ReadWrite:
		return "readwrite"
	case Unfair:
		return "unfair"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a strategy name as printed by String back into a
// Strategy. Matching ignores case; "rw" and "mutex" are accepted as aliases.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "readwrite", "rw":
		return ReadWrite, nil
	case "unfair", "mutex":
		return Unfair, nil
	default:
		return 0, fmt.Errorf("locking: unknown strategy %q", name)
	}
}

// Strategies lists every supported strategy.
func Strategies() []Strategy {
	return []Strategy{ReadWrite, Unfair}
}

// NewLocker returns a new Locker for s. It panics on an unknown strategy.
func NewLocker(s Strategy) Locker {
	switch s {
	case ReadWrite:
		return NewRWLock()
	case Unfair:
		return NewUnfairLock()
	default:
		panic(fmt.Sprintf("locking: unknown strategy %v", s))
	}
}
