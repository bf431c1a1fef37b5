package router

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/searchktools/fastweb/core/http"
)

var (
	ErrInvalidPattern = errors.New("invalid route pattern")
	ErrRouteConflict  = errors.New("route conflicts with an existing route")
	ErrUnknownMethod  = errors.New("unknown method")
	ErrNilHandler     = errors.New("nil handler")
	ErrTableFrozen    = errors.New("route table is frozen")

	// ErrNoRouteMatch reports a valid request no route accepts
	ErrNoRouteMatch = errors.New("no route matches request")
)

// RouteTable is an ordered list of routes. Lookups scan in registration
// order and the first structural match wins; a literal segment is not
// preferred over a parameter segment at the same position.
//
// Registration must finish before lookups start. Freeze marks that point;
// after it the table is read-only and safe to share between goroutines.
type RouteTable struct {
	routes []*Route
	shapes map[string]*Route
	frozen atomic.Bool
}

// NewRouteTable creates an empty table
func NewRouteTable() *RouteTable {
	return &RouteTable{
		shapes: make(map[string]*Route),
	}
}

// Register adds a route. pattern uses {name} segments for parameters;
// duplicate slashes are collapsed before splitting.
func (t *RouteTable) Register(method http.Method, pattern string, handler http.HandlerFunc) error {
	if t.frozen.Load() {
		return fmt.Errorf("%w: %s %s", ErrTableFrozen, method, pattern)
	}
	if _, ok := http.ParseMethod(string(method)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	if handler == nil {
		return fmt.Errorf("%w: %s %s", ErrNilHandler, method, pattern)
	}

	route, err := newRoute(method, pattern, handler)
	if err != nil {
		return err
	}

	key := string(method) + " " + route.shape()
	if existing, ok := t.shapes[key]; ok {
		return fmt.Errorf("%w: %s collides with %s", ErrRouteConflict, route, existing)
	}

	t.shapes[key] = route
	t.routes = append(t.routes, route)
	return nil
}

// Match returns the first route accepting method and path, with its path
// parameters bound positionally
func (t *RouteTable) Match(method http.Method, path string) (*Route, map[string]string, bool) {
	segments := splitPath(path)

	for _, route := range t.routes {
		if route.Method != method || !route.matches(segments) {
			continue
		}
		return route, route.bind(segments), true
	}
	return nil, nil, false
}

// Freeze ends the registration phase
func (t *RouteTable) Freeze() {
	t.frozen.Store(true)
}

// Frozen reports whether the registration phase has ended
func (t *RouteTable) Frozen() bool {
	return t.frozen.Load()
}

// Routes returns the registered routes in registration order
func (t *RouteTable) Routes() []*Route {
	return append([]*Route(nil), t.routes...)
}

// Len returns the number of registered routes
func (t *RouteTable) Len() int {
	return len(t.routes)
}

func (t *RouteTable) String() string {
	var b strings.Builder
	for _, r := range t.routes {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}
