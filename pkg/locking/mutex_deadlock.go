//go:build deadlock

package locking

import "github.com/sasha-s/go-deadlock"

// DeadlockEnabled is true if the deadlock detector backs the strategies.
const DeadlockEnabled = true

type (
	mutex   = deadlock.Mutex
	rwMutex = deadlock.RWMutex
)
