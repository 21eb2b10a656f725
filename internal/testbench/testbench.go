package testbench

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iammxrn/MRFoundation/internal/queue"
	"github.com/iammxrn/MRFoundation/pkg/guarded"
)

// Config describes a producer/consumer workload.
type Config struct {
	NumProducers int
	NumConsumers int
}

// ReadHeavyConfig describes a guarded-value workload: readers load the value,
// writers increment it.
type ReadHeavyConfig struct {
	NumReaders int
	NumWriters int
}

// RunTimedTest spawns producers and consumers that run for the specified
// duration, measuring how many messages are enqueued/dequeued in that window.
// Once the deadline passes, producers stop and consumers drain whatever is
// left in the queue. Cancelling ctx ends the run early.
// Returns the total messages enqueued, total consumed, and the actual elapsed time.
func RunTimedTest[T any, Q queue.QueueValidationInterface[T]](
	ctx context.Context,
	q Q,
	cfg Config,
	testDuration time.Duration,
	valueGenerator func(int) T,
) (producedCount int64, consumedCount int64, elapsed time.Duration) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, testDuration)
	defer cancel()

	var (
		totalProduced atomic.Int64
		totalConsumed atomic.Int64
		msgIndex      atomic.Int64
		producersDone atomic.Bool
	)

	var producers errgroup.Group
	for i := 0; i < cfg.NumProducers; i++ {
		producers.Go(func() error {
			for ctx.Err() == nil {
				idx := msgIndex.Add(1) - 1
				q.Enqueue(valueGenerator(int(idx)))
				totalProduced.Add(1)
			}
			return nil
		})
	}

	var consumers errgroup.Group
	for i := 0; i < cfg.NumConsumers; i++ {
		consumers.Go(func() error {
			for {
				if _, ok := q.Dequeue(); ok {
					totalConsumed.Add(1)
					continue
				}
				// Empty after production stopped: the queue is drained.
				if producersDone.Load() {
					return nil
				}
				runtime.Gosched()
			}
		})
	}

	<-ctx.Done()
	_ = producers.Wait()
	producersDone.Store(true)

	_ = consumers.Wait()

	elapsed = time.Since(start)
	return totalProduced.Load(), totalConsumed.Load(), elapsed
}

// RunReadHeavyTest hammers v with readers and writers for the given duration.
// Writers add one to the value per write, so after the run the value has grown
// by exactly the returned write count.
func RunReadHeavyTest(
	ctx context.Context,
	v *guarded.Value[int64],
	cfg ReadHeavyConfig,
	testDuration time.Duration,
) (reads int64, writes int64, elapsed time.Duration) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, testDuration)
	defer cancel()

	var totalReads, totalWrites atomic.Int64

	var g errgroup.Group
	for i := 0; i < cfg.NumReaders; i++ {
		g.Go(func() error {
			var sink int64
			for ctx.Err() == nil {
				sink += v.Load()
				totalReads.Add(1)
			}
			_ = sink
			return nil
		})
	}
	for i := 0; i < cfg.NumWriters; i++ {
		g.Go(func() error {
			for ctx.Err() == nil {
				v.Write(func(n *int64) { *n++ })
				totalWrites.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	elapsed = time.Since(start)
	return totalReads.Load(), totalWrites.Load(), elapsed
}
