package core

import (
	"fmt"
	"sync/atomic"

	"github.com/goccy/go-json"

	"github.com/searchktools/fastweb/core/pools"
)

type dispatchStats struct {
	accepted      atomic.Uint64
	served        atomic.Uint64
	parseErrors   atomic.Uint64
	notFound      atomic.Uint64
	handlerErrors atomic.Uint64
	ioErrors      atomic.Uint64
}

// DispatchStats counts connection outcomes
type DispatchStats struct {
	Accepted      uint64 `json:"accepted"`
	Served        uint64 `json:"served"`
	ParseErrors   uint64 `json:"parse_errors"`
	NotFound      uint64 `json:"not_found"`
	HandlerErrors uint64 `json:"handler_errors"`
	IOErrors      uint64 `json:"io_errors"`
}

// Stats represents statistics for the engine
type Stats struct {
	Pool     pools.WorkerPoolStats `json:"pool"`
	Buffers  pools.BytePoolStats   `json:"buffers"`
	Dispatch DispatchStats         `json:"dispatch"`
}

// PoolStats returns worker pool statistics, zero before Serve
func (e *Engine) PoolStats() pools.WorkerPoolStats {
	e.mu.Lock()
	pool := e.pool
	e.mu.Unlock()

	if pool == nil {
		return pools.WorkerPoolStats{NumWorkers: e.opts.Workers}
	}
	return pool.Stats()
}

// Stats returns engine statistics
func (e *Engine) Stats() Stats {
	return Stats{
		Pool:    e.PoolStats(),
		Buffers: e.bytePool.Stats(),
		Dispatch: DispatchStats{
			Accepted:      e.stats.accepted.Load(),
			Served:        e.stats.served.Load(),
			ParseErrors:   e.stats.parseErrors.Load(),
			NotFound:      e.stats.notFound.Load(),
			HandlerErrors: e.stats.handlerErrors.Load(),
			IOErrors:      e.stats.ioErrors.Load(),
		},
	}
}

// StatsJSON returns engine statistics as JSON string
func (e *Engine) StatsJSON() string {
	data, _ := json.MarshalIndent(e.Stats(), "", "  ")
	return string(data)
}

// StatsText returns engine statistics as human-readable text
func (e *Engine) StatsText() string {
	s := e.Stats()
	return fmt.Sprintf(`Engine Statistics
=================

Worker Pool:
  Workers:   %d
  Submitted: %d
  Completed: %d
  Panicked:  %d
  Active:    %d
  Queued:    %d

Read Buffers:
  Gets:   %d
  Puts:   %d
  Misses: %d

Connections:
  Accepted:       %d
  Served:         %d
  Parse errors:   %d
  Not found:      %d
  Handler errors: %d
  IO errors:      %d
`,
		s.Pool.NumWorkers, s.Pool.TasksSubmitted, s.Pool.TasksCompleted,
		s.Pool.TasksPanicked, s.Pool.TasksActive, s.Pool.TasksQueued,
		s.Buffers.TotalGets, s.Buffers.TotalPuts, s.Buffers.Misses,
		s.Dispatch.Accepted, s.Dispatch.Served, s.Dispatch.ParseErrors,
		s.Dispatch.NotFound, s.Dispatch.HandlerErrors, s.Dispatch.IOErrors,
	)
}
