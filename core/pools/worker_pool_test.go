package pools

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewWorkerPool_InvalidCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		pool, err := NewWorkerPool(n, 0, nil)
		assert.Nil(t, pool)
		assert.ErrorIs(t, err, ErrInvalidWorkerCount)
	}
}

func TestWorkerPool_Basic(t *testing.T) {
	pool, err := NewWorkerPool(4, 0, zaptest.NewLogger(t))
	require.NoError(t, err)

	var counter atomic.Int64
	for i := 0; i < 100; i++ {
		require.NoError(t, pool.Execute(func() {
			counter.Add(1)
		}))
	}

	pool.Shutdown()

	assert.Equal(t, int64(100), counter.Load())
	stats := pool.Stats()
	assert.Equal(t, 4, stats.NumWorkers)
	assert.Equal(t, uint64(100), stats.TasksSubmitted)
	assert.Equal(t, uint64(100), stats.TasksCompleted)
	assert.Equal(t, int64(0), stats.TasksActive)
}

// With N workers and M > N long jobs, at most N run at once, all M finish,
// and Shutdown waits for them.
func TestWorkerPool_BoundedConcurrency(t *testing.T) {
	const workers = 3
	const jobs = 12

	pool, err := NewWorkerPool(workers, jobs, zap.NewNop())
	require.NoError(t, err)

	var running, peak, done atomic.Int64
	for i := 0; i < jobs; i++ {
		require.NoError(t, pool.Execute(func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
			done.Add(1)
		}))
	}

	pool.Shutdown()

	assert.Equal(t, int64(jobs), done.Load())
	assert.LessOrEqual(t, peak.Load(), int64(workers))
	assert.Equal(t, int64(workers), peak.Load(), "all workers should have been busy at once")
}

func TestWorkerPool_PanicRecovery(t *testing.T) {
	pool, err := NewWorkerPool(1, 0, zaptest.NewLogger(t))
	require.NoError(t, err)

	var after atomic.Bool
	require.NoError(t, pool.Execute(func() {
		panic("task failure")
	}))
	require.NoError(t, pool.Execute(func() {
		after.Store(true)
	}))

	pool.Shutdown()

	assert.True(t, after.Load(), "the single worker must survive the panic")
	stats := pool.Stats()
	assert.Equal(t, uint64(1), stats.TasksPanicked)
	assert.Equal(t, uint64(2), stats.TasksCompleted)
}

func TestWorkerPool_ExecuteAfterShutdown(t *testing.T) {
	pool, err := NewWorkerPool(2, 0, nil)
	require.NoError(t, err)

	pool.Shutdown()
	assert.True(t, pool.Closed())
	assert.ErrorIs(t, pool.Execute(func() {}), ErrPoolClosed)
	assert.ErrorIs(t, pool.Execute(nil), ErrNilTask)

	// idempotent
	pool.Shutdown()
}

// Execute blocks on a full queue instead of dropping work
func TestWorkerPool_BackPressure(t *testing.T) {
	pool, err := NewWorkerPool(1, 1, nil)
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, pool.Execute(func() {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, pool.Execute(func() {})) // fills the queue

	blocked := make(chan error, 1)
	go func() {
		blocked <- pool.Execute(func() {})
	}()

	select {
	case <-blocked:
		t.Fatal("Execute should block while the queue is full")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-blocked)

	pool.Shutdown()
	assert.Equal(t, uint64(3), pool.Stats().TasksCompleted)
}

func TestWorkerPool_ConcurrentSubmitAndShutdown(t *testing.T) {
	pool, err := NewWorkerPool(4, 8, nil)
	require.NoError(t, err)

	var accepted, ran atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if pool.Execute(func() { ran.Add(1) }) == nil {
					accepted.Add(1)
				}
			}
		}()
	}

	time.Sleep(5 * time.Millisecond)
	pool.Shutdown()
	wg.Wait()

	assert.Equal(t, accepted.Load(), ran.Load(), "every accepted task runs before Shutdown returns")
}

func BenchmarkWorkerPool_Execute(b *testing.B) {
	pool, _ := NewWorkerPool(8, 0, nil)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = pool.Execute(func() {
				// Simulate some work
				_ = 1 + 1
			})
		}
	})

	pool.Shutdown()
}
