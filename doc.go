/*
Package fastweb provides a minimal HTTP connection-dispatch server for Go.

Every accepted TCP connection becomes one job on a fixed-size worker pool.
The job reads the request, matches it against a route table of method and
path-segment patterns, runs the handler and writes a single response before
closing the connection.

Features

  - Bounded worker pool with back-pressure and graceful drain
  - Route patterns with {name} parameters, first registered match wins
  - gzip responses negotiated from Accept-Encoding
  - Configurable 404 page read from disk at request time
  - Middleware: request ids, access logs, Prometheus metrics
  - Configuration from files, FASTWEB_* environment variables and flags

Quick Start

	cfg, _ := config.Load("", nil)
	logger, _ := logging.New(cfg.Log)

	application, err := app.New(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}

	engine := application.Engine()
	engine.GET("/ping/{count}", func(req *http.Request) (*http.Response, error) {
		return http.JSON(http.StatusOK, map[string]string{"count": req.Param("count")})
	})

	if err := application.Run(context.Background()); err != nil {
		log.Fatal(err)
	}

Modules

The framework is organized into several modules:

  - app: Application lifecycle and signal handling
  - config: Configuration loading and validation
  - logging: zap logger construction
  - core: Connection acceptor and dispatcher
  - core/http: Request parsing and response building
  - core/router: Route table
  - core/middleware: Handler middleware
  - core/pools: Worker and buffer pools
  - core/codec: Body codecs (JSON, protobuf JSON)
  - core/observability: Prometheus metrics
  - cmd/fastweb: Command line server

Non-goals: keep-alive, pipelining, chunked transfer-encoding and TLS.
*/
package fastweb
