// Package app wires configuration, logging and the engine into a runnable
// server with graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/searchktools/fastweb/config"
	"github.com/searchktools/fastweb/core"
	"github.com/searchktools/fastweb/core/http"
	"github.com/searchktools/fastweb/core/middleware"
	"github.com/searchktools/fastweb/core/observability"
)

// App is the application instance
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	engine  *core.Engine
	metrics *observability.Metrics
}

// New creates an application instance with the standard middleware and,
// when enabled, the metrics route. Routes are added through Engine.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine := core.NewEngine(cfg.Engine(), logger.Named("engine"))
	a := &App{
		cfg:    cfg,
		logger: logger,
		engine: engine,
	}

	engine.Use(middleware.RequestID(), middleware.AccessLog(logger.Named("access")))
	if cfg.RateLimit.RPS > 0 {
		engine.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	if cfg.Metrics.Enabled {
		a.metrics = observability.NewMetrics(observability.DefaultNamespace)
		if err := a.metrics.RegisterPool(engine.PoolStats); err != nil {
			return nil, err
		}
		engine.Use(middleware.Metrics(a.metrics))
		if err := engine.Handle(http.MethodGet, cfg.Metrics.Path, a.metrics.Handler()); err != nil {
			return nil, fmt.Errorf("metrics route: %w", err)
		}
	}

	return a, nil
}

// Engine returns the underlying engine for route registration
func (a *App) Engine() *core.Engine {
	return a.engine
}

// Metrics returns the metrics collectors, nil when disabled
func (a *App) Metrics() *observability.Metrics {
	return a.metrics
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives, then shuts the
// engine down: listener first, then the worker pool.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting server",
		zap.String("addr", a.cfg.Engine().Addr()),
		zap.Int("workers", a.cfg.Workers))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := a.engine.ListenAndServe(gctx)
		if errors.Is(err, core.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown signal received")
		return a.engine.Shutdown()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
