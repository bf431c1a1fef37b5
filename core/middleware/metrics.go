package middleware

import (
	"time"

	"github.com/searchktools/fastweb/core/http"
	"github.com/searchktools/fastweb/core/observability"
)

// Metrics records request count, duration and size. Failures are counted
// as 500, the status the engine answers with.
func Metrics(m *observability.Metrics) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if m == nil {
			return next
		}
		return func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(req)

			status, size := http.StatusInternalServerError, 0
			if err == nil && resp != nil {
				status, size = resp.Status, len(resp.Body)
				if status == 0 {
					status = http.StatusOK
				}
			}
			m.RecordRequest(req.Method.String(), req.Pattern(), status.Code(), size, time.Since(start))
			return resp, err
		}
	}
}
