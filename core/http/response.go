package http

import (
	"strings"

	"github.com/searchktools/fastweb/core/codec"
)

type header struct {
	key   string
	value string
}

// Response is produced by a handler and turned into wire bytes by Build
type Response struct {
	Status      Status
	ContentType ContentType
	Body        []byte

	headers  []header
	encoding Encoding
}

// NewResponse creates a response with the given status, body and content type
func NewResponse(status Status, body []byte, contentType ContentType) *Response {
	return &Response{
		Status:      status,
		ContentType: contentType,
		Body:        body,
	}
}

// HTML creates a text/html response
func HTML(status Status, content string) *Response {
	return NewResponse(status, []byte(content), ContentTypeHTML)
}

// Text creates a text/plain response
func Text(status Status, content string) *Response {
	return NewResponse(status, []byte(content), ContentTypeText)
}

// JSON encodes v with the default codec and creates an application/json response
func JSON(status Status, v any) (*Response, error) {
	body, err := codec.Default().Encode(v)
	if err != nil {
		return nil, err
	}
	return NewResponse(status, []byte(body), ContentTypeJSON), nil
}

// SetHeader sets a response header. An existing header with the same name
// (case-insensitive) keeps its position; new headers are appended.
func (r *Response) SetHeader(key, value string) {
	for i := range r.headers {
		if strings.EqualFold(r.headers[i].key, key) {
			r.headers[i].value = value
			return
		}
	}
	r.headers = append(r.headers, header{key: key, value: value})
}

// Header returns a header previously set on the response
func (r *Response) Header(key string) string {
	for _, h := range r.headers {
		if strings.EqualFold(h.key, key) {
			return h.value
		}
	}
	return ""
}

// Headers returns the user-set headers in insertion order as "Key: value" lines
func (r *Response) Headers() []string {
	out := make([]string, 0, len(r.headers))
	for _, h := range r.headers {
		out = append(out, h.key+": "+h.value)
	}
	return out
}

// SetEncoding selects the content coding applied by Build.
// EncodingNone disables compression.
func (r *Response) SetEncoding(e Encoding) {
	r.encoding = e
}

// Encoding returns the content coding selected for the response
func (r *Response) Encoding() Encoding {
	return r.encoding
}

// Build serializes the response: status line, user headers, then
// Content-Encoding (when compressing), Content-Type and Content-Length, a
// blank line and the body. Content-Length is the length of the bytes actually
// written, after compression. Build does not modify the response and may be
// called again with the same result.
func (r *Response) Build() ([]byte, error) {
	body := r.Body
	var encodingHeader string
	switch r.encoding {
	case EncodingNone:
	case EncodingGzip:
		compressed, err := gzipCompress(body)
		if err != nil {
			return nil, err
		}
		body = compressed
		encodingHeader = string(EncodingGzip)
	default:
		return nil, ErrUnsupportedEncoding
	}

	status := r.Status
	if status == 0 {
		status = StatusOK
	}
	contentType := r.ContentType
	if contentType == "" {
		contentType = ContentTypeText
	}

	buf := make([]byte, 0, 128+len(body)+32*len(r.headers))
	buf = append(buf, protocol...)
	buf = append(buf, ' ')
	buf = appendInt(buf, status.Code())
	buf = append(buf, ' ')
	buf = append(buf, status.Reason()...)
	buf = append(buf, crlf...)

	for _, h := range r.headers {
		if isComputedHeader(h.key) {
			continue
		}
		buf = appendHeader(buf, h.key, h.value)
	}
	if encodingHeader != "" {
		buf = appendHeader(buf, HeaderContentEncoding, encodingHeader)
	}
	buf = appendHeader(buf, HeaderContentType, string(contentType))

	buf = append(buf, HeaderContentLength...)
	buf = append(buf, ": "...)
	buf = appendInt(buf, len(body))
	buf = append(buf, crlf...)

	buf = append(buf, crlf...)
	buf = append(buf, body...)
	return buf, nil
}

// isComputedHeader reports headers Build always derives itself
func isComputedHeader(key string) bool {
	return strings.EqualFold(key, HeaderContentLength) ||
		strings.EqualFold(key, HeaderContentType) ||
		strings.EqualFold(key, HeaderContentEncoding)
}

func appendHeader(b []byte, key, value string) []byte {
	b = append(b, key...)
	b = append(b, ": "...)
	b = append(b, value...)
	return append(b, crlf...)
}

// appendInt appends a non-negative integer to a byte slice
func appendInt(b []byte, i int) []byte {
	if i == 0 {
		return append(b, '0')
	}

	if i < 0 {
		b = append(b, '-')
		i = -i
	}

	var digits [20]byte
	n := 0
	for i > 0 {
		digits[n] = byte('0' + i%10)
		i /= 10
		n++
	}

	for n > 0 {
		n--
		b = append(b, digits[n])
	}
	return b
}
