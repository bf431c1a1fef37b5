// Package observability exposes engine and request metrics in the
// Prometheus text format.
package observability

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"

	"github.com/searchktools/fastweb/core/http"
	"github.com/searchktools/fastweb/core/pools"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "fastweb"

// exposition is the content type of the text exposition format
const exposition = http.ContentType("text/plain; version=0.0.4; charset=utf-8")

// Metrics holds the Prometheus collectors of one engine.
type Metrics struct {
	namespace string
	registry  *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	responseSize    *prometheus.HistogramVec
	startTime       prometheus.Gauge
}

// NewMetrics creates the collectors on a private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	m := &Metrics{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of handled requests",
		},
		[]string{"method", "route", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Handler duration in seconds",
			Buckets: []float64{
				.0001, .0005, .001, .005, .01,
				.025, .05, .1, .25, .5, 1, 2.5,
			},
		},
		[]string{"method", "route"},
	)

	m.responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_size_bytes",
			Help:      "Response body size in bytes before compression",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		},
		[]string{"method", "route"},
	)

	m.startTime = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "start_time_seconds",
			Help:      "Start time of the server in unix seconds",
		},
	)

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.responseSize,
		m.startTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.startTime.SetToCurrentTime()

	return m
}

// RecordRequest records one handled request. route must be the matched
// pattern, never the raw path, to keep label cardinality bounded.
func (m *Metrics) RecordRequest(method, route string, status int, size int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.responseSize.WithLabelValues(method, route).Observe(float64(size))
}

// RegisterPool exports worker pool statistics, sampled at scrape time.
func (m *Metrics) RegisterPool(stats func() pools.WorkerPoolStats) error {
	gauge := func(name, help string, value func(pools.WorkerPoolStats) float64) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: "pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats()) })
	}
	counter := func(name, help string, value func(pools.WorkerPoolStats) float64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: "pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats()) })
	}

	cs := []prometheus.Collector{
		gauge("workers", "Number of pool workers",
			func(s pools.WorkerPoolStats) float64 { return float64(s.NumWorkers) }),
		gauge("tasks_active", "Tasks currently running",
			func(s pools.WorkerPoolStats) float64 { return float64(s.TasksActive) }),
		gauge("tasks_queued", "Tasks waiting in the queue",
			func(s pools.WorkerPoolStats) float64 { return float64(s.TasksQueued) }),
		counter("tasks_submitted_total", "Tasks accepted by the pool",
			func(s pools.WorkerPoolStats) float64 { return float64(s.TasksSubmitted) }),
		counter("tasks_completed_total", "Tasks that finished",
			func(s pools.WorkerPoolStats) float64 { return float64(s.TasksCompleted) }),
		counter("tasks_panicked_total", "Tasks that panicked",
			func(s pools.WorkerPoolStats) float64 { return float64(s.TasksPanicked) }),
	}
	for _, c := range cs {
		if err := m.registry.Register(c); err != nil {
			return fmt.Errorf("register pool metrics: %w", err)
		}
	}
	return nil
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Render gathers every metric and encodes it in the text format.
func (m *Metrics) Render() ([]byte, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return nil, fmt.Errorf("encode metric %s: %w", mf.GetName(), err)
		}
	}
	return buf.Bytes(), nil
}

// Handler serves the metrics page.
func (m *Metrics) Handler() http.HandlerFunc {
	return func(req *http.Request) (*http.Response, error) {
		body, err := m.Render()
		if err != nil {
			return nil, err
		}
		return http.NewResponse(http.StatusOK, body, exposition), nil
	}
}
