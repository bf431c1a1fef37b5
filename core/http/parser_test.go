package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest_Basic(t *testing.T) {
	raw := "GET /ping/42?verbose=1&name=a%20b HTTP/1.1\r\n" +
		"Host: localhost:8080\r\n" +
		"Accept-Encoding: gzip, deflate\r\n" +
		"X-Note: a: b\r\n" +
		"\r\n"

	req, err := ParseRequest([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, MethodGet, req.Method)
	assert.Equal(t, "/ping/42?verbose=1&name=a%20b", req.Path)
	assert.Equal(t, "/ping/42", req.QualifiedPath)
	assert.Equal(t, "HTTP/1.1", req.Proto)
	assert.Equal(t, "1", req.QueryParam("verbose"))
	assert.Equal(t, "a b", req.QueryParam("name"))
	assert.Equal(t, "localhost:8080", req.Header("Host"))
	assert.Equal(t, "a: b", req.Headers["X-Note"], "first colon wins")
	assert.Equal(t, []string{"gzip", "deflate"}, req.AcceptedEncodings)
	assert.True(t, req.AcceptsEncoding(EncodingGzip))
	assert.Empty(t, req.Body)
	assert.Equal(t, []byte(raw), req.Raw())
}

func TestParseRequest_Body(t *testing.T) {
	raw := "POST /ping HTTP/1.1\r\nContent-Length: 16\r\n\r\n{\"a\":\"1\"}\r\nline2"

	req, err := ParseRequest([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, MethodPost, req.Method)
	assert.Equal(t, "{\"a\":\"1\"}\r\nline2", req.Body)
}

func TestParseRequest_HeaderCaseKept(t *testing.T) {
	req, err := ParseRequest([]byte("GET / HTTP/1.1\r\naccept-encoding: GZIP\r\n\r\n"))
	require.NoError(t, err)

	_, exact := req.Headers["accept-encoding"]
	assert.True(t, exact)
	assert.Equal(t, "GZIP", req.Header("Accept-Encoding"))
	assert.Equal(t, []string{"gzip"}, req.AcceptedEncodings)
}

func TestParseRequest_QueryLastValueWins(t *testing.T) {
	req, err := ParseRequest([]byte("GET /search?q=a&q=b&flag&bad=%zz HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "b", req.QueryParam("q"))
	assert.Equal(t, "", req.QueryParam("flag"))
	_, ok := req.Query["flag"]
	assert.True(t, ok)
	assert.Equal(t, "%zz", req.QueryParam("bad"))
}

func TestParseRequest_BareLF(t *testing.T) {
	req, err := ParseRequest([]byte("GET /ping HTTP/1.1\nHost: x\n\nbody"))
	require.NoError(t, err)

	assert.Equal(t, "x", req.Header("Host"))
	assert.Equal(t, "body", req.Body)
}

func TestParseRequest_NoTerminator(t *testing.T) {
	req, err := ParseRequest([]byte("GET /ping HTTP/1.1\r\nHost: x"))
	require.NoError(t, err)

	assert.Equal(t, "/ping", req.QualifiedPath)
	assert.Equal(t, "x", req.Header("Host"))
}

func TestParseRequest_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "\r\n\r\n"},
		{"single token", "GET\r\n\r\n"},
		{"too many fields", "GET / HTTP/1.1 extra\r\n\r\n"},
		{"unknown method", "BREW /pot HTTP/1.1\r\n\r\n"},
		{"lowercase method", "get / HTTP/1.1\r\n\r\n"},
		{"relative target", "GET ping HTTP/1.1\r\n\r\n"},
		{"bad version", "GET / FTP/1.0\r\n\r\n"},
		{"header without colon", "GET / HTTP/1.1\r\nBroken header\r\n\r\n"},
		{"empty header name", "GET / HTTP/1.1\r\n: value\r\n\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tt.raw))
			assert.Nil(t, req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestParseAcceptEncoding(t *testing.T) {
	tests := []struct {
		value string
		want  []string
	}{
		{"", nil},
		{"gzip", []string{"gzip"}},
		{"br;q=1.0, gzip;q=0.8", []string{"br", "gzip"}},
		{"gzip;q=0, identity", []string{"identity"}},
		{" , *", []string{"*"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseAcceptEncoding(tt.value), tt.value)
	}
}

func TestRequestComplete(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		complete bool
		wantErr  bool
	}{
		{"headers pending", "GET / HTTP/1.1\r\nHost: x\r\n", false, false},
		{"no body", "GET / HTTP/1.1\r\n\r\n", true, false},
		{"body pending", "POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\n12345", false, false},
		{"body complete", "POST / HTTP/1.1\r\ncontent-length: 5\r\n\r\n12345", true, false},
		{"bad length", "POST / HTTP/1.1\r\nContent-Length: ten\r\n\r\n", false, true},
		{"negative length", "POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			complete, err := RequestComplete([]byte(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrParse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.complete, complete)
		})
	}
}

func BenchmarkParseRequest(b *testing.B) {
	raw := []byte("GET /api/users/123?page=2 HTTP/1.1\r\nHost: localhost\r\nAccept-Encoding: gzip\r\nUser-Agent: bench\r\n\r\n")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ParseRequest(raw)
	}
}
