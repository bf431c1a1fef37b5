package middleware

import (
	"github.com/google/uuid"

	"github.com/searchktools/fastweb/core/http"
)

// RequestID echoes the client's X-Request-ID, or generates a UUID, on the
// response. The id is stored on the request headers so that inner handlers
// and the access log see the same value.
func RequestID() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(req *http.Request) (*http.Response, error) {
			id := req.Header(http.HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
				if req.Headers == nil {
					req.Headers = make(map[string]string, 1)
				}
				req.Headers[http.HeaderRequestID] = id
			}

			resp, err := next(req)
			if err != nil || resp == nil {
				return resp, err
			}
			resp.SetHeader(http.HeaderRequestID, id)
			return resp, nil
		}
	}
}
