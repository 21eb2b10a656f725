package main

import (
	"github.com/iammxrn/MRFoundation/internal/guardedqueue"
	"github.com/iammxrn/MRFoundation/internal/report"
	"github.com/iammxrn/MRFoundation/pkg/guarded"
	"github.com/iammxrn/MRFoundation/pkg/locking"
)

// Implementation represents a queue implementation.
type Implementation[T any, Q interface {
	Enqueue(T)
	Dequeue() (T, bool)
	FreeSlots() uint64
	UsedSlots() uint64
}] struct {
	name        string
	description string
	pkgName     string
	features    []string
	strategy    locking.Strategy
	newQueue    func(capacity uint64) Q
}

type testQueueInterface = interface {
	Enqueue(*int)
	Dequeue() (*int, bool)
	FreeSlots() uint64
	UsedSlots() uint64
}

// getImplementations enumerates the guarded ring queue, once per lock strategy.
func getImplementations() []Implementation[*int, testQueueInterface] {
	return []Implementation[*int, testQueueInterface]{
		{
			name:        "RingQueueReadWrite",
			pkgName:     "guardedqueue",
			description: "Growable ring buffer guarded by a shared/exclusive lock.",
			features:    []string{"MPMC", "FIFO", "Growable", "RWLock"},
			strategy:    locking.ReadWrite,
			newQueue: func(capacity uint64) testQueueInterface {
				return guardedqueue.New[*int](int(capacity), locking.ReadWrite)
			},
		},
		{
			name:        "RingQueueUnfair",
			pkgName:     "guardedqueue",
			description: "Growable ring buffer guarded by an exclusive-only lock.",
			features:    []string{"MPMC", "FIFO", "Growable", "Mutex"},
			strategy:    locking.Unfair,
			newQueue: func(capacity uint64) testQueueInterface {
				return guardedqueue.New[*int](int(capacity), locking.Unfair)
			},
		},
	}
}

// valueImplementation is a guarded counter for the read-heavy workload.
type valueImplementation struct {
	name     string
	strategy locking.Strategy
	newValue func() *guarded.Value[int64]
}

func getValueImplementations() []valueImplementation {
	var out []valueImplementation
	for _, s := range locking.Strategies() {
		s := s
		out = append(out, valueImplementation{
			name:     "GuardedValue/" + s.String(),
			strategy: s,
			newValue: func() *guarded.Value[int64] {
				return guarded.NewWithStrategy[int64](0, s)
			},
		})
	}
	return out
}

// implementationMeta feeds the markdown table.
func implementationMeta() map[string]report.ImplMeta {
	meta := make(map[string]report.ImplMeta)
	for _, impl := range getImplementations() {
		meta[impl.name] = report.ImplMeta{Package: impl.pkgName, Features: impl.features}
	}
	for _, impl := range getValueImplementations() {
		meta[impl.name] = report.ImplMeta{Package: "guarded", Features: []string{impl.strategy.String()}}
	}
	return meta
}
