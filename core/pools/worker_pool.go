package pools

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// DefaultQueueSize is the job queue capacity used when none is given
const DefaultQueueSize = 1024

var (
	ErrInvalidWorkerCount = errors.New("worker count must be positive")
	ErrPoolClosed         = errors.New("worker pool is shut down")
	ErrNilTask            = errors.New("nil task")
)

// Task represents a unit of work
type Task func()

// job is either a task to run or a terminate signal for one worker
type job struct {
	task      Task
	terminate bool
}

// WorkerPool runs tasks on a fixed set of goroutines fed by one shared,
// bounded queue. Execute blocks while the queue is full.
//
// A task that never returns occupies its worker for good; the pool has no
// task timeout or cancellation.
type WorkerPool struct {
	numWorkers int
	jobs       chan job
	logger     *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	// Statistics
	stats struct {
		tasksSubmitted atomic.Uint64
		tasksCompleted atomic.Uint64
		tasksPanicked  atomic.Uint64
		active         atomic.Int64
	}
}

// NewWorkerPool starts numWorkers workers. queueSize <= 0 selects
// DefaultQueueSize.
func NewWorkerPool(numWorkers, queueSize int, logger *zap.Logger) (*WorkerPool, error) {
	if numWorkers <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, numWorkers)
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pool := &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan job, queueSize),
		logger:     logger,
	}

	pool.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go pool.worker(i)
	}

	logger.Info("worker pool started",
		zap.Int("workers", numWorkers),
		zap.Int("queue_size", queueSize))
	return pool, nil
}

// Execute enqueues a task. It fails once Shutdown has begun.
func (p *WorkerPool) Execute(task Task) error {
	if task == nil {
		return ErrNilTask
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.stats.tasksSubmitted.Add(1)
	p.jobs <- job{task: task}
	return nil
}

// Shutdown stops accepting tasks, sends one terminate job per worker and
// waits for every worker to exit. Tasks enqueued before Shutdown was called
// run to completion first: the queue is FIFO, so every terminate job sits
// behind them. Calling Shutdown again just waits.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.logger.Info("sending terminate signal to all workers", zap.Int("workers", p.numWorkers))
	for i := 0; i < p.numWorkers; i++ {
		p.jobs <- job{terminate: true}
	}

	p.wg.Wait()
	p.logger.Info("worker pool stopped",
		zap.Uint64("completed", p.stats.tasksCompleted.Load()),
		zap.Uint64("panicked", p.stats.tasksPanicked.Load()))
}

// worker is the main loop for a worker goroutine. Each worker exits after
// the first terminate job it receives.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for j := range p.jobs {
		if j.terminate {
			p.logger.Debug("worker received terminate signal", zap.Int("worker", id))
			return
		}
		p.run(id, j.task)
	}
}

// run executes one task, containing any panic so the worker survives
func (p *WorkerPool) run(id int, task Task) {
	p.stats.active.Add(1)
	defer func() {
		if r := recover(); r != nil {
			p.stats.tasksPanicked.Add(1)
			p.logger.Error("task panicked",
				zap.Int("worker", id),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
		p.stats.active.Add(-1)
		p.stats.tasksCompleted.Add(1)
	}()

	task()
}

// Workers returns the number of workers
func (p *WorkerPool) Workers() int {
	return p.numWorkers
}

// Closed reports whether Shutdown has begun
func (p *WorkerPool) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Stats returns pool statistics
func (p *WorkerPool) Stats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:     p.numWorkers,
		TasksSubmitted: p.stats.tasksSubmitted.Load(),
		TasksCompleted: p.stats.tasksCompleted.Load(),
		TasksPanicked:  p.stats.tasksPanicked.Load(),
		TasksActive:    p.stats.active.Load(),
		TasksQueued:    len(p.jobs),
	}
}

// WorkerPoolStats contains pool statistics
type WorkerPoolStats struct {
	NumWorkers     int    `json:"workers"`
	TasksSubmitted uint64 `json:"submitted"`
	TasksCompleted uint64 `json:"completed"`
	TasksPanicked  uint64 `json:"panicked"`
	TasksActive    int64  `json:"active"`
	TasksQueued    int    `json:"queued"`
}
