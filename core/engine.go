package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"runtime"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/searchktools/fastweb/core/http"
	"github.com/searchktools/fastweb/core/middleware"
	"github.com/searchktools/fastweb/core/pools"
	"github.com/searchktools/fastweb/core/router"
)

// Options configures an Engine. Zero values select the defaults, except
// Port where zero picks an ephemeral port.
type Options struct {
	Host string
	Port int

	// ReadBufferSize is the initial connection read buffer
	ReadBufferSize int
	// MaxRequestSize caps a reassembled request; larger requests fail to parse
	MaxRequestSize int

	Workers   int
	QueueSize int

	// NotFoundPage is read on every unmatched or unparsable request
	NotFoundPage string

	// Socket deadlines, disabled when zero
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxConnections caps simultaneously open connections, unlimited when zero
	MaxConnections int
	ReusePort      bool
}

// DefaultOptions returns the engine defaults
func DefaultOptions() Options {
	return Options{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadBufferSize: 4096,
		MaxRequestSize: 1 << 20,
		Workers:        runtime.NumCPU(),
		QueueSize:      pools.DefaultQueueSize,
		NotFoundPage:   "public/404.html",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Host == "" {
		o.Host = d.Host
	}
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = d.ReadBufferSize
	}
	if o.MaxRequestSize <= 0 {
		o.MaxRequestSize = d.MaxRequestSize
	}
	if o.MaxRequestSize < o.ReadBufferSize {
		o.MaxRequestSize = o.ReadBufferSize
	}
	if o.Workers <= 0 {
		o.Workers = d.Workers
	}
	if o.QueueSize <= 0 {
		o.QueueSize = d.QueueSize
	}
	if o.NotFoundPage == "" {
		o.NotFoundPage = d.NotFoundPage
	}
	return o
}

// Addr returns the host:port the engine listens on
func (o Options) Addr() string {
	return net.JoinHostPort(o.Host, strconv.Itoa(o.Port))
}

// Engine accepts connections, hands each one to the worker pool and serves
// exactly one request per connection.
//
// Routes and middleware are registered first; Serve freezes the route table
// and later registrations fail.
type Engine struct {
	opts   Options
	logger *zap.Logger

	table      *router.RouteTable
	middleware []middleware.Middleware
	handlers   map[*router.Route]http.HandlerFunc
	regErrs    []error

	bytePool *pools.BytePool

	mu         sync.Mutex
	listener   net.Listener
	pool       *pools.WorkerPool
	acceptDone chan struct{}
	closed     bool

	stats dispatchStats
}

// NewEngine creates a new engine instance
func NewEngine(opts Options, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()

	return &Engine{
		opts:     opts,
		logger:   logger,
		table:    router.NewRouteTable(),
		bytePool: pools.NewBytePool(),
	}
}

// Options returns the effective options
func (e *Engine) Options() Options {
	return e.opts
}

// Handle registers a route. The error is also recorded: an engine with any
// failed registration refuses to serve.
func (e *Engine) Handle(method http.Method, pattern string, handler http.HandlerFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.table.Register(method, pattern, handler); err != nil {
		err = fmt.Errorf("register %s %s: %w", method, pattern, err)
		e.regErrs = append(e.regErrs, err)
		e.logger.Error("route registration failed", zap.Error(err))
		return err
	}
	return nil
}

// GET registers a GET route
func (e *Engine) GET(pattern string, handler http.HandlerFunc) {
	_ = e.Handle(http.MethodGet, pattern, handler)
}

// POST registers a POST route
func (e *Engine) POST(pattern string, handler http.HandlerFunc) {
	_ = e.Handle(http.MethodPost, pattern, handler)
}

// PUT registers a PUT route
func (e *Engine) PUT(pattern string, handler http.HandlerFunc) {
	_ = e.Handle(http.MethodPut, pattern, handler)
}

// DELETE registers a DELETE route
func (e *Engine) DELETE(pattern string, handler http.HandlerFunc) {
	_ = e.Handle(http.MethodDelete, pattern, handler)
}

// PATCH registers a PATCH route
func (e *Engine) PATCH(pattern string, handler http.HandlerFunc) {
	_ = e.Handle(http.MethodPatch, pattern, handler)
}

// HEAD registers a HEAD route
func (e *Engine) HEAD(pattern string, handler http.HandlerFunc) {
	_ = e.Handle(http.MethodHead, pattern, handler)
}

// Use appends middleware applied to every route. The first one added runs
// outermost.
func (e *Engine) Use(mws ...middleware.Middleware) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.table.Frozen() {
		e.logger.Warn("middleware added after serving started is ignored")
		return
	}
	e.middleware = append(e.middleware, mws...)
}

// Routes returns the registered routes in registration order
func (e *Engine) Routes() []*router.Route {
	return e.table.Routes()
}

// Err joins every registration error, nil when all routes registered
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return errors.Join(e.regErrs...)
}

// Addr returns the listening address, nil before Serve
func (e *Engine) Addr() net.Addr {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}

// ListenAndServe binds the configured address and serves until Shutdown.
func (e *Engine) ListenAndServe(ctx context.Context) error {
	if err := e.Err(); err != nil {
		return fmt.Errorf("refusing to serve: %w", err)
	}

	lc := listenConfig(e.opts.ReusePort)
	ln, err := lc.Listen(ctx, "tcp", e.opts.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", e.opts.Addr(), err)
	}
	return e.Serve(ln)
}

// Serve accepts connections on ln until Shutdown is called. It always
// returns a non-nil error; after Shutdown the error is ErrServerClosed.
func (e *Engine) Serve(ln net.Listener) error {
	if err := e.start(ln); err != nil {
		ln.Close()
		return err
	}

	e.logger.Info("server listening",
		zap.String("addr", ln.Addr().String()),
		zap.Int("workers", e.opts.Workers),
		zap.Int("routes", e.table.Len()))
	for _, route := range e.table.Routes() {
		e.logger.Info("route", zap.String("method", route.Method.String()), zap.String("pattern", route.Pattern))
	}

	return e.acceptLoop(e.listener)
}

func (e *Engine) start(ln net.Listener) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrServerClosed
	}
	if e.listener != nil {
		return ErrAlreadyServing
	}
	if err := errors.Join(e.regErrs...); err != nil {
		return fmt.Errorf("refusing to serve: %w", err)
	}

	pool, err := pools.NewWorkerPool(e.opts.Workers, e.opts.QueueSize, e.logger.Named("pool"))
	if err != nil {
		return err
	}

	e.table.Freeze()
	chain := middleware.Chain(e.middleware...)
	e.handlers = make(map[*router.Route]http.HandlerFunc, e.table.Len())
	for _, route := range e.table.Routes() {
		e.handlers[route] = chain(route.Handler)
	}

	if e.opts.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, e.opts.MaxConnections)
	}

	e.listener = ln
	e.pool = pool
	e.acceptDone = make(chan struct{})
	return nil
}

// acceptLoop is the single acceptor goroutine: one pool job per connection.
// A full queue blocks Accept, pushing back on the kernel backlog.
func (e *Engine) acceptLoop(ln net.Listener) error {
	defer close(e.acceptDone)

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}

			// Transient failures such as EMFILE
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff = min(2*backoff, time.Second)
			}
			e.logger.Warn("accept error", zap.Error(err), zap.Duration("retry_in", backoff))
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		e.stats.accepted.Add(1)

		if err := e.pool.Execute(func() { e.dispatch(conn) }); err != nil {
			e.logger.Warn("connection dropped", zap.Error(err))
			conn.Close()
		}
	}
}

// Shutdown closes the listener, waits for the acceptor to exit and then
// drains the worker pool. Connections already queued are served.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	ln, pool, done := e.listener, e.pool, e.acceptDone
	e.mu.Unlock()

	if ln == nil {
		return nil
	}

	e.logger.Info("shutting down", zap.String("addr", ln.Addr().String()))
	err := ln.Close()
	<-done
	pool.Shutdown()

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close listener: %w", err)
	}
	return nil
}
