package http

import (
	"bytes"
	"net/url"
	"strconv"
	"strings"
)

var (
	headerTerminator     = []byte("\r\n\r\n")
	bareHeaderTerminator = []byte("\n\n")
)

// ParseRequest parses one request from data. It works only on the bytes it is
// given; reassembling a request spread over several reads is the caller's job
// (see RequestComplete).
func ParseRequest(data []byte) (*Request, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, parseError("empty request", "")
	}

	head, body := splitHead(data)
	lines := strings.Split(string(head), "\n")

	req := &Request{
		Headers: make(map[string]string, len(lines)),
		Query:   make(map[string]string),
		Body:    string(body),
		raw:     data,
	}

	if err := parseRequestLine(req, trimCR(lines[0])); err != nil {
		return nil, err
	}

	for _, line := range lines[1:] {
		line = trimCR(line)
		if line == "" {
			break
		}
		key, value, err := parseHeaderLine(line)
		if err != nil {
			return nil, err
		}
		req.Headers[key] = value
	}

	req.AcceptedEncodings = parseAcceptEncoding(req.Header(HeaderAcceptEncoding))
	return req, nil
}

// RequestComplete reports whether data holds a whole request: the header
// terminator has been seen and Content-Length bytes of body (zero when the
// header is absent) follow it.
func RequestComplete(data []byte) (bool, error) {
	end, size := headerEnd(data)
	if end < 0 {
		return false, nil
	}

	length := 0
	for _, line := range strings.Split(string(data[:end]), "\n") {
		key, value, ok := strings.Cut(trimCR(line), ":")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), HeaderContentLength) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return false, parseError("invalid Content-Length", line)
		}
		length = n
	}

	return len(data)-(end+size) >= length, nil
}

// splitHead separates the request line and headers from the body. Input with
// no blank line is all head.
func splitHead(data []byte) (head, body []byte) {
	end, size := headerEnd(data)
	if end < 0 {
		return data, nil
	}
	return data[:end], data[end+size:]
}

func headerEnd(data []byte) (int, int) {
	crlfEnd := bytes.Index(data, headerTerminator)
	lfEnd := bytes.Index(data, bareHeaderTerminator)
	switch {
	case crlfEnd >= 0 && (lfEnd < 0 || crlfEnd < lfEnd):
		return crlfEnd, len(headerTerminator)
	case lfEnd >= 0:
		return lfEnd, len(bareHeaderTerminator)
	}
	return -1, 0
}

// parseRequestLine parses METHOD SP TARGET [SP VERSION]
func parseRequestLine(req *Request, line string) error {
	parts := strings.Fields(line)
	if len(parts) < 2 || len(parts) > 3 {
		return parseError("malformed request line", line)
	}

	method, ok := ParseMethod(parts[0])
	if !ok {
		return parseError("unknown method", parts[0])
	}
	req.Method = method

	target := parts[1]
	if target[0] != '/' {
		return parseError("request target must be an absolute path", target)
	}
	req.Path = target

	if len(parts) == 3 {
		if !strings.HasPrefix(parts[2], "HTTP/") {
			return parseError("malformed protocol version", parts[2])
		}
		req.Proto = parts[2]
	}

	req.QualifiedPath = target
	if idx := strings.IndexByte(target, '?'); idx != -1 {
		req.QualifiedPath = target[:idx]
		parseQuery(req.Query, target[idx+1:])
	}
	return nil
}

// parseHeaderLine splits at the first colon
func parseHeaderLine(line string) (string, string, error) {
	colon := strings.IndexByte(line, ':')
	if colon == -1 {
		return "", "", parseError("header line without colon", line)
	}
	key := strings.TrimSpace(line[:colon])
	if key == "" {
		return "", "", parseError("empty header name", line)
	}
	return key, strings.TrimSpace(line[colon+1:]), nil
}

// parseQuery fills dst from a raw query string. Later duplicates win; values
// that fail to percent-decode are kept raw.
func parseQuery(dst map[string]string, query string) {
	if query == "" {
		return
	}
	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		dst[unescape(key)] = unescape(value)
	}
}

func unescape(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return s
}

// parseAcceptEncoding returns codings in client order, dropping q=0 entries
func parseAcceptEncoding(value string) []string {
	if value == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		token, params, _ := strings.Cut(part, ";")
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" || qualityZero(params) {
			continue
		}
		out = append(out, token)
	}
	return out
}

func qualityZero(params string) bool {
	for _, p := range strings.Split(params, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.TrimSpace(k) != "q" {
			continue
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return err == nil && q == 0
	}
	return false
}

func trimCR(s string) string {
	return strings.TrimSuffix(s, "\r")
}
