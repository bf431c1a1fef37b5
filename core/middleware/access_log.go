package middleware

import (
	"time"

	"go.uber.org/zap"

	"github.com/searchktools/fastweb/core/http"
)

// AccessLog logs one debug line per handled request. Failed handlers are
// logged by the engine, not here.
func AccessLog(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)
			if err != nil || resp == nil {
				return resp, err
			}

			if ce := logger.Check(zap.DebugLevel, "request"); ce != nil {
				fields := []zap.Field{
					zap.String("method", req.Method.String()),
					zap.String("path", req.Path),
					zap.String("route", req.Pattern()),
					zap.Int("status", resp.Status.Code()),
					zap.Int("bytes", len(resp.Body)),
					zap.Duration("duration", time.Since(start)),
				}
				if id := req.Header(http.HeaderRequestID); id != "" {
					fields = append(fields, zap.String("request_id", id))
				}
				ce.Write(fields...)
			}
			return resp, nil
		}
	}
}
