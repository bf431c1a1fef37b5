package http

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is the class of all request parsing failures
	ErrParse = errors.New("invalid HTTP request")

	// ErrUnsupportedEncoding is returned when building with an encoding the builder cannot apply
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")
)

// ParseError describes why a request could not be parsed
type ParseError struct {
	Reason string
	// Line is the offending line, if any
	Line string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("%v: %s", ErrParse, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %q", ErrParse, e.Reason, e.Line)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

func parseError(reason, line string) error {
	return &ParseError{Reason: reason, Line: line}
}
