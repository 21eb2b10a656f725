package testbench

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iammxrn/MRFoundation/internal/guardedqueue"
	"github.com/iammxrn/MRFoundation/pkg/guarded"
	"github.com/iammxrn/MRFoundation/pkg/locking"
)

func TestRunTimedTestDrainsQueue(t *testing.T) {
	for _, s := range locking.Strategies() {
		t.Run(s.String(), func(t *testing.T) {
			q := guardedqueue.New[*int](64, s)
			produced, consumed, elapsed := RunTimedTest(context.Background(), q,
				Config{NumProducers: 4, NumConsumers: 4}, 50*time.Millisecond,
				func(i int) *int { return &i })

			assert.Positive(t, produced)
			assert.Equal(t, produced, consumed, "every produced message must be consumed")
			assert.Equal(t, uint64(0), q.UsedSlots())
			assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
		})
	}
}

func TestRunTimedTestWithoutConsumers(t *testing.T) {
	q := guardedqueue.New[int](8, locking.Unfair)
	produced, consumed, _ := RunTimedTest(context.Background(), q,
		Config{NumProducers: 1}, 10*time.Millisecond,
		func(i int) int { return i })

	assert.Zero(t, consumed)
	assert.Equal(t, uint64(produced), q.UsedSlots())
}

func TestRunTimedTestStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := guardedqueue.New[int](8, locking.ReadWrite)
	start := time.Now()
	_, _, _ = RunTimedTest(ctx, q, Config{NumProducers: 2, NumConsumers: 2}, time.Minute,
		func(i int) int { return i })
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRunReadHeavyTestCountsWrites(t *testing.T) {
	for _, s := range locking.Strategies() {
		t.Run(s.String(), func(t *testing.T) {
			v := guarded.NewWithStrategy[int64](0, s)
			reads, writes, _ := RunReadHeavyTest(context.Background(), v,
				ReadHeavyConfig{NumReaders: 8, NumWriters: 2}, 50*time.Millisecond)

			require.Positive(t, reads)
			require.Positive(t, writes)
			assert.Equal(t, writes, v.Load(), "no increment may be lost")
		})
	}
}
