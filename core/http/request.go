package http

import "strings"

// Request is a parsed HTTP request. One Request lives for one connection.
type Request struct {
	Method Method

	// Path is the request target as received, query string included
	Path string
	// QualifiedPath is Path without its query string
	QualifiedPath string
	Proto         string

	// Headers keep the key case as received
	Headers map[string]string
	Query   map[string]string
	Body    string

	// AcceptedEncodings lists the Accept-Encoding tokens in client order,
	// lower-cased, with q=0 entries removed
	AcceptedEncodings []string

	pathParams map[string]string
	pattern    string
	raw        []byte
}

// Header returns a request header. An exact key match is preferred; otherwise
// the lookup is case-insensitive.
func (r *Request) Header(key string) string {
	if v, ok := r.Headers[key]; ok {
		return v
	}
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// QueryParam returns a decoded query parameter
func (r *Request) QueryParam(key string) string {
	return r.Query[key]
}

// Param returns a path parameter bound by the matched route
func (r *Request) Param(name string) string {
	return r.pathParams[name]
}

// PathParams returns all bound path parameters
func (r *Request) PathParams() map[string]string {
	return r.pathParams
}

// SetPathParams injects the parameters extracted by the route match
func (r *Request) SetPathParams(params map[string]string) {
	r.pathParams = params
}

// Pattern returns the pattern of the matched route, empty before a match
func (r *Request) Pattern() string {
	return r.pattern
}

// SetPattern records the pattern of the matched route
func (r *Request) SetPattern(pattern string) {
	r.pattern = pattern
}

// Raw returns the bytes the request was parsed from
func (r *Request) Raw() []byte {
	return r.raw
}

// AcceptsEncoding reports whether the client listed the given coding
func (r *Request) AcceptsEncoding(e Encoding) bool {
	for _, token := range r.AcceptedEncodings {
		if token == string(e) || token == "*" {
			return true
		}
	}
	return false
}

// HandlerFunc handles a matched request and produces its response
type HandlerFunc func(req *Request) (*Response, error)
