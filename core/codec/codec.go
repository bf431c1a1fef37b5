package codec

import (
	"errors"
)

var (
	ErrUnsupportedCodec = errors.New("unsupported codec")
)

// Codec converts between values and the text carried in request and response bodies
type Codec interface {
	// Encode encodes a value to text
	Encode(v any) (string, error)

	// Decode decodes text into the value pointed to by v
	Decode(text string, v any) error

	// Name returns the codec name
	Name() string
}

var (
	jsonCodec  Codec = &JSONCodec{}
	protoCodec Codec = &ProtoJSONCodec{}
)

// Default returns the codec used by response helpers
func Default() Codec {
	return jsonCodec
}

// Lookup returns a codec by name
func Lookup(name string) (Codec, error) {
	switch name {
	case "json":
		return jsonCodec, nil
	case "protojson":
		return protoCodec, nil
	default:
		return nil, ErrUnsupportedCodec
	}
}
