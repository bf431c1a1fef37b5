package middleware

import (
	"golang.org/x/time/rate"

	"github.com/searchktools/fastweb/core/http"
)

// RateLimit answers 429 once the shared token bucket is empty. The bucket
// holds burst tokens and refills at rps per second.
func RateLimit(rps float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(req *http.Request) (*http.Response, error) {
			if !limiter.Allow() {
				return http.Text(http.StatusTooManyRequests, "Too Many Requests"), nil
			}
			return next(req)
		}
	}
}
