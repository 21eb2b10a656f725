package guarded

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammxrn/MRFoundation/pkg/locking"
)

// forEachStrategy runs fn once per lock strategy.
func forEachStrategy(t *testing.T, fn func(t *testing.T, s locking.Strategy)) {
	t.Helper()
	for _, s := range locking.Strategies() {
		t.Run(s.String(), func(t *testing.T) { fn(t, s) })
	}
}

// acquiredWithin reports whether l's exclusive mode can be taken by another
// goroutine within d.
func acquiredWithin(l locking.Locker, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		l.Lock()
		l.Unlock()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}

func TestNewPanicsOnNilLocker(t *testing.T) {
	assert.Panics(t, func() { New(1, nil) })
}

func TestConstructorsPickStrategy(t *testing.T) {
	assert.IsType(t, &locking.RWLock{}, NewReadWrite(0).lock)
	assert.IsType(t, &locking.UnfairLock{}, NewUnfair(0).lock)
	assert.IsType(t, &locking.UnfairLock{}, NewWithStrategy(0, locking.Unfair).lock)
}

func TestLoadStoreSwap(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, s locking.Strategy) {
		v := NewWithStrategy("a", s)
		assert.Equal(t, "a", v.Load())

		v.Store("b")
		assert.Equal(t, "b", v.Load())

		assert.Equal(t, "b", v.Swap("c"))
		assert.Equal(t, "c", v.Load())
	})
}

func TestWriteMutatesInPlace(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, s locking.Strategy) {
		v := NewWithStrategy(map[string]int{}, s)
		v.Write(func(m *map[string]int) { (*m)["x"] = 1 })
		v.Write(func(m *map[string]int) { (*m)["x"]++ })

		got := View(v, func(m map[string]int) int { return m["x"] })
		assert.Equal(t, 2, got)
	})
}

func TestModifyReturnsResult(t *testing.T) {
	v := NewReadWrite([]int{1, 2})
	n := Modify(v, func(s *[]int) int {
		*s = append(*s, 3)
		return len(*s)
	})
	assert.Equal(t, 3, n)

	var seen []int
	v.Read(func(s []int) { seen = append(seen, s...) })
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestNoLostUpdates(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, s locking.Strategy) {
		v := NewWithStrategy(0, s)
		const workers, perWorker = 32, 2000

		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					v.Write(func(n *int) { *n++ })
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, workers*perWorker, v.Load())
	})
}

// pair is written as a unit; readers must never see the halves disagree.
type pair struct {
	a, b int
}

func TestReadersNeverSeeTornWrites(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, s locking.Strategy) {
		v := NewWithStrategy(pair{}, s)
		const readers, writes = 8, 5000

		stop := make(chan struct{})
		var wg sync.WaitGroup
		var torn sync.Once
		tornSeen := false
		wg.Add(readers)
		for i := 0; i < readers; i++ {
			go func() {
				defer wg.Done()
				last := 0
				for {
					select {
					case <-stop:
						return
					default:
					}
					v.Read(func(p pair) {
						if p.a != p.b || p.a < last {
							torn.Do(func() { tornSeen = true })
						}
						last = p.a
					})
				}
			}()
		}

		for i := 1; i <= writes; i++ {
			v.Write(func(p *pair) {
				p.a = i
				p.b = i
			})
		}
		close(stop)
		wg.Wait()

		assert.False(t, tornSeen, "a reader observed a partial or stale-after-newer write")
		assert.Equal(t, pair{writes, writes}, v.Load())
	})
}

func TestReadAfterWriteSeesWrite(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, s locking.Strategy) {
		v := NewWithStrategy(0, s)
		written := make(chan struct{})
		go func() {
			v.Store(42)
			close(written)
		}()
		<-written
		assert.Equal(t, 42, v.Load())
	})
}

var errAccess = errors.New("access failed")

func TestLockReleasedOnError(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, s locking.Strategy) {
		v := NewWithStrategy(1, s)

		err := v.TryWrite(func(n *int) error {
			*n = 2
			return errAccess
		})
		require.ErrorIs(t, err, errAccess)
		assert.True(t, acquiredWithin(v.lock, time.Second), "lock still held after failed write")
		assert.Equal(t, 2, v.Load(), "changes made before the error are kept")

		err = v.TryRead(func(int) error { return errAccess })
		require.ErrorIs(t, err, errAccess)
		assert.True(t, acquiredWithin(v.lock, time.Second), "lock still held after failed read")

		require.NoError(t, v.TryRead(func(int) error { return nil }))
	})
}

func TestLockReleasedOnPanic(t *testing.T) {
	forEachStrategy(t, func(t *testing.T, s locking.Strategy) {
		v := NewWithStrategy(0, s)

		assert.Panics(t, func() {
			v.Write(func(*int) { panic("boom") })
		})
		assert.True(t, acquiredWithin(v.lock, time.Second), "lock still held after panicking write")

		assert.Panics(t, func() {
			v.Read(func(int) { panic("boom") })
		})
		assert.True(t, acquiredWithin(v.lock, time.Second), "lock still held after panicking read")
	})
}

func BenchmarkLoad(b *testing.B) {
	for _, s := range locking.Strategies() {
		b.Run(s.String(), func(b *testing.B) {
			v := NewWithStrategy(int64(0), s)
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					_ = v.Load()
				}
			})
		})
	}
}

func BenchmarkWrite(b *testing.B) {
	for _, s := range locking.Strategies() {
		b.Run(s.String(), func(b *testing.B) {
			v := NewWithStrategy(int64(0), s)
			b.RunParallel(func(pb *testing.PB) {
				for pb.Next() {
					v.Write(func(n *int64) { *n++ })
				}
			})
		})
	}
}
