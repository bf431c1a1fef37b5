package router

import (
	"fmt"
	"strings"

	"github.com/searchktools/fastweb/core/http"
)

type segment struct {
	value string // literal text, or the lower-cased parameter name
	param bool
}

// Route is one registered (method, pattern, handler) triple. Routes are
// immutable once registered.
type Route struct {
	Method  http.Method
	Pattern string
	Handler http.HandlerFunc

	segments []segment
	params   []string
}

func newRoute(method http.Method, pattern string, handler http.HandlerFunc) (*Route, error) {
	pattern = normalizePath(pattern)
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("%w: %q must begin with '/'", ErrInvalidPattern, pattern)
	}

	parts := strings.Split(pattern, "/")
	r := &Route{
		Method:   method,
		Pattern:  pattern,
		Handler:  handler,
		segments: make([]segment, 0, len(parts)),
	}

	seen := make(map[string]bool)
	for _, part := range parts {
		name, isParam, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
		}
		if !isParam {
			r.segments = append(r.segments, segment{value: part})
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q: duplicate parameter %q", ErrInvalidPattern, pattern, name)
		}
		seen[name] = true
		r.segments = append(r.segments, segment{value: name, param: true})
		r.params = append(r.params, name)
	}
	return r, nil
}

// parseSegment recognizes {name} segments. Braces anywhere else are rejected.
func parseSegment(part string) (string, bool, error) {
	if !strings.ContainsAny(part, "{}") {
		return "", false, nil
	}
	if len(part) < 2 || part[0] != '{' || part[len(part)-1] != '}' {
		return "", false, fmt.Errorf("segment %q: braces must enclose the whole segment", part)
	}
	name := part[1 : len(part)-1]
	if name == "" || strings.ContainsAny(name, "{}") {
		return "", false, fmt.Errorf("segment %q: bad parameter name", part)
	}
	return strings.ToLower(name), true, nil
}

// Params returns the parameter names in pattern order
func (r *Route) Params() []string {
	return append([]string(nil), r.params...)
}

// BasePath returns the pattern with parameter segments removed
func (r *Route) BasePath() string {
	literals := make([]string, 0, len(r.segments))
	for _, s := range r.segments {
		if !s.param {
			literals = append(literals, s.value)
		}
	}
	return strings.Join(literals, "/")
}

func (r *Route) String() string {
	return string(r.Method) + " " + r.Pattern
}

// shape identifies the set of paths a route accepts, ignoring parameter names
func (r *Route) shape() string {
	parts := make([]string, len(r.segments))
	for i, s := range r.segments {
		if s.param {
			parts[i] = "{}"
		} else {
			parts[i] = s.value
		}
	}
	return strings.Join(parts, "/")
}

func (r *Route) matches(segments []string) bool {
	if len(segments) != len(r.segments) {
		return false
	}
	for i, s := range r.segments {
		if s.param {
			if segments[i] == "" {
				return false
			}
			continue
		}
		if s.value != segments[i] {
			return false
		}
	}
	return true
}

func (r *Route) bind(segments []string) map[string]string {
	params := make(map[string]string, len(r.params))
	for i, s := range r.segments {
		if s.param {
			params[s.value] = segments[i]
		}
	}
	return params
}

func normalizePath(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}

func splitPath(path string) []string {
	return strings.Split(normalizePath(path), "/")
}
