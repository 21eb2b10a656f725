//go:build !deadlock

package locking

import "sync"

// DeadlockEnabled is true if the deadlock detector backs the strategies.
const DeadlockEnabled = false

type (
	mutex   = sync.Mutex
	rwMutex = sync.RWMutex
)
