// Package middleware wraps route handlers with cross-cutting behavior.
package middleware

import (
	"github.com/searchktools/fastweb/core/http"
)

// Middleware decorates a handler
type Middleware func(next http.HandlerFunc) http.HandlerFunc

// Chain composes middleware so that the first one runs outermost.
// Chain(a, b)(h) behaves like a(b(h)).
func Chain(mws ...Middleware) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		for i := len(mws) - 1; i >= 0; i-- {
			if mws[i] != nil {
				next = mws[i](next)
			}
		}
		return next
	}
}

// CORS adds permissive cross-origin headers to every successful response
func CORS(origin string) Middleware {
	if origin == "" {
		origin = "*"
	}
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(req *http.Request) (*http.Response, error) {
			resp, err := next(req)
			if err != nil || resp == nil {
				return resp, err
			}
			resp.SetHeader("Access-Control-Allow-Origin", origin)
			resp.SetHeader("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, HEAD")
			resp.SetHeader("Access-Control-Allow-Headers", "Content-Type, Authorization")
			return resp, nil
		}
	}
}
