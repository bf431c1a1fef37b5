package core

import (
	"errors"
	"fmt"

	"github.com/searchktools/fastweb/core/router"
)

// State is a step of one dispatch cycle. A connection serves exactly one
// request and always ends in StateClosed.
type State int

const (
	StateReading State = iota
	StateParsed
	StateMatched
	StateUnmatched
	StateHandlerInvoked
	StateBuilt
	StateWritten
	StateClosed
)

var stateNames = [...]string{
	StateReading:        "reading",
	StateParsed:         "parsed",
	StateMatched:        "matched",
	StateUnmatched:      "unmatched",
	StateHandlerInvoked: "handler_invoked",
	StateBuilt:          "built",
	StateWritten:        "written",
	StateClosed:         "closed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Error definitions
var (
	// ErrNoRouteMatch reports a valid request no route accepts
	ErrNoRouteMatch = router.ErrNoRouteMatch

	// ErrHandlerFailure is wrapped by every HandlerError
	ErrHandlerFailure = errors.New("handler failed")

	ErrServerClosed   = errors.New("engine: server closed")
	ErrAlreadyServing = errors.New("engine: already serving")

	errNilResponse = errors.New("handler returned a nil response")
)

// HandlerError is a handler that returned an error, returned no response,
// or panicked.
type HandlerError struct {
	Route string
	Err   error
	Panic any
}

func (e *HandlerError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("handler %s panicked: %v", e.Route, e.Panic)
	}
	return fmt.Sprintf("handler %s: %v", e.Route, e.Err)
}

func (e *HandlerError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrHandlerFailure}
	}
	return []error{ErrHandlerFailure, e.Err}
}
