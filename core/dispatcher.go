package core

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/searchktools/fastweb/core/http"
	"github.com/searchktools/fastweb/core/router"
)

// defaultNotFoundPage is served when the configured page cannot be read
const defaultNotFoundPage = `<!DOCTYPE html>
<html>
<head><title>404 Not Found</title></head>
<body><h1>404 Not Found</h1></body>
</html>
`

const internalErrorBody = "Internal Server Error"

// dispatch runs one connection through read, parse, match, invoke, build,
// write and close. Every failure stays inside this call.
func (e *Engine) dispatch(conn net.Conn) {
	state := StateReading
	defer func() {
		conn.Close()
		if state != StateWritten {
			e.logger.Debug("connection closed early",
				zap.Stringer("remote", conn.RemoteAddr()),
				zap.Stringer("state", state))
		}
	}()

	buf, n, err := e.readRequest(conn)
	defer e.bytePool.Put(buf)

	if err != nil && !errors.Is(err, http.ErrParse) {
		e.stats.ioErrors.Add(1)
		e.logger.Debug("read failed", zap.Stringer("remote", conn.RemoteAddr()), zap.Error(err))
		return
	}

	var resp *http.Response
	if err != nil {
		resp = e.parseFailure(err)
	} else {
		resp, state = e.respond(buf[:n])
	}

	wire, err := resp.Build()
	if err != nil {
		e.logger.Error("build response", zap.Error(err))
		wire, _ = internalError().Build()
	}
	state = StateBuilt

	if e.opts.WriteTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(e.opts.WriteTimeout))
	}
	if _, err := conn.Write(wire); err != nil {
		e.stats.ioErrors.Add(1)
		e.logger.Debug("write failed", zap.Stringer("remote", conn.RemoteAddr()), zap.Error(err))
		return
	}
	state = StateWritten
	e.stats.served.Add(1)
}

// readRequest reads until the request is complete, the peer stops sending,
// or MaxRequestSize is exceeded. The returned buffer belongs to the byte
// pool and must be put back by the caller.
func (e *Engine) readRequest(conn net.Conn) ([]byte, int, error) {
	buf := e.bytePool.Get(e.opts.ReadBufferSize)
	n := 0

	for {
		if n == len(buf) {
			if n >= e.opts.MaxRequestSize {
				return buf, n, fmt.Errorf("%w: request exceeds %d bytes", http.ErrParse, e.opts.MaxRequestSize)
			}
			buf = e.bytePool.Grow(buf, n, min(2*len(buf), e.opts.MaxRequestSize))
		}

		if e.opts.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(e.opts.ReadTimeout))
		}
		m, err := conn.Read(buf[n:])
		n += m
		if n > e.opts.MaxRequestSize {
			return buf, n, fmt.Errorf("%w: request exceeds %d bytes", http.ErrParse, e.opts.MaxRequestSize)
		}

		if m > 0 {
			complete, cerr := http.RequestComplete(buf[:n])
			if cerr != nil {
				return buf, n, cerr
			}
			if complete {
				return buf, n, nil
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				// The parser decides what a truncated request is worth
				return buf, n, nil
			}
			return buf, n, err
		}
	}
}

// respond turns raw request bytes into a response
func (e *Engine) respond(data []byte) (*http.Response, State) {
	req, err := http.ParseRequest(data)
	if err != nil {
		return e.parseFailure(err), StateParsed
	}

	route, params, ok := e.table.Match(req.Method, req.QualifiedPath)
	if !ok {
		e.stats.notFound.Add(1)
		e.logger.Debug("no route",
			zap.String("method", req.Method.String()),
			zap.String("path", req.Path),
			zap.Error(ErrNoRouteMatch))
		return e.notFound(), StateUnmatched
	}

	req.SetPathParams(params)
	req.SetPattern(route.Pattern)

	resp, err := e.invoke(route, req)
	if err != nil {
		e.stats.handlerErrors.Add(1)
		e.logger.Error("handler failed",
			zap.String("method", req.Method.String()),
			zap.String("path", req.Path),
			zap.Error(err))
		return internalError(), StateHandlerInvoked
	}

	if resp.Encoding() == http.EncodingNone {
		resp.SetEncoding(http.NegotiateEncoding(req.AcceptedEncodings))
	}
	return resp, StateHandlerInvoked
}

// invoke calls the route handler through the middleware chain, turning
// errors, nil responses and panics into a HandlerError
func (e *Engine) invoke(route *router.Route, req *http.Request) (resp *http.Response, err error) {
	handler, ok := e.handlers[route]
	if !ok {
		handler = route.Handler
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("handler panicked",
				zap.String("route", route.String()),
				zap.Any("panic", r),
				zap.Stack("stack"))
			resp, err = nil, &HandlerError{Route: route.String(), Panic: r}
		}
	}()

	resp, err = handler(req)
	if err != nil {
		return nil, &HandlerError{Route: route.String(), Err: err}
	}
	if resp == nil {
		return nil, &HandlerError{Route: route.String(), Err: errNilResponse}
	}
	return resp, nil
}

func (e *Engine) parseFailure(err error) *http.Response {
	e.stats.parseErrors.Add(1)
	e.logger.Debug("malformed request", zap.Error(err))
	return e.notFound()
}

// notFound reads the fallback page at request time so edits show up
// without a restart
func (e *Engine) notFound() *http.Response {
	page, err := os.ReadFile(e.opts.NotFoundPage)
	if err != nil {
		e.logger.Debug("fallback page unavailable", zap.String("path", e.opts.NotFoundPage), zap.Error(err))
		return http.HTML(http.StatusNotFound, defaultNotFoundPage)
	}
	return http.NewResponse(http.StatusNotFound, page, http.ContentTypeHTML)
}

func internalError() *http.Response {
	return http.Text(http.StatusInternalServerError, internalErrorBody)
}
