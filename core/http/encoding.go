package http

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"
)

var gzipWriters = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 32)

	zw := gzipWriters.Get().(*gzip.Writer)
	defer gzipWriters.Put(zw)
	zw.Reset(&buf)

	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NegotiateEncoding picks the first supported coding in the client's order.
// "*" selects the server's preferred coding. EncodingNone means no compression.
func NegotiateEncoding(accepted []string) Encoding {
	for _, token := range accepted {
		if token == "*" {
			return supportedEncodings[0]
		}
		if e, ok := ParseEncoding(token); ok {
			return e
		}
	}
	return EncodingNone
}
