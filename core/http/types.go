package http

import (
	"strconv"
	"strings"
)

// Status is an HTTP status code known to the engine
type Status int

const (
	StatusOK                  Status = 200
	StatusCreated             Status = 201
	StatusBadRequest          Status = 400
	StatusNotFound            Status = 404
	StatusTooManyRequests     Status = 429
	StatusInternalServerError Status = 500
)

var statusText = map[Status]string{
	StatusOK:                  "OK",
	StatusCreated:             "Created",
	StatusBadRequest:          "Bad Request",
	StatusNotFound:            "Not Found",
	StatusTooManyRequests:     "Too Many Requests",
	StatusInternalServerError: "Internal Server Error",
}

// Code returns the numeric status code
func (s Status) Code() int {
	return int(s)
}

// Reason returns the reason phrase for the status line
func (s Status) Reason() string {
	if text, ok := statusText[s]; ok {
		return text
	}
	return "Unknown"
}

func (s Status) String() string {
	return strconv.Itoa(int(s)) + " " + s.Reason()
}

// Method is a request method
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodHead   Method = "HEAD"
	MethodPatch  Method = "PATCH"
)

var methods = map[string]Method{
	"GET":    MethodGet,
	"POST":   MethodPost,
	"PUT":    MethodPut,
	"DELETE": MethodDelete,
	"HEAD":   MethodHead,
	"PATCH":  MethodPatch,
}

// ParseMethod looks up a method token. Tokens are case-sensitive.
func ParseMethod(s string) (Method, bool) {
	m, ok := methods[s]
	return m, ok
}

func (m Method) String() string {
	return string(m)
}

// ContentType is a response media type
type ContentType string

const (
	ContentTypeHTML ContentType = "text/html"
	ContentTypeJSON ContentType = "application/json"
	ContentTypeText ContentType = "text/plain"
)

func (c ContentType) String() string {
	return string(c)
}

// Encoding is a content coding applied to response bodies
type Encoding string

const (
	EncodingNone Encoding = ""
	EncodingGzip Encoding = "gzip"
)

// supportedEncodings is ordered by server preference
var supportedEncodings = []Encoding{EncodingGzip}

// SupportedEncodings returns the encodings the response builder can apply
func SupportedEncodings() []Encoding {
	return append([]Encoding(nil), supportedEncodings...)
}

// ParseEncoding looks up a content coding token, ignoring case
func ParseEncoding(s string) (Encoding, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range supportedEncodings {
		if string(e) == s {
			return e, true
		}
	}
	return EncodingNone, false
}

func (e Encoding) String() string {
	if e == EncodingNone {
		return "none"
	}
	return string(e)
}

// Header names used by the engine
const (
	HeaderContentType     = "Content-Type"
	HeaderContentLength   = "Content-Length"
	HeaderContentEncoding = "Content-Encoding"
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderConnection      = "Connection"
	HeaderRequestID       = "X-Request-ID"
)

const (
	protocol = "HTTP/1.1"
	crlf     = "\r\n"
)
