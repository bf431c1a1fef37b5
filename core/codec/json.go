package codec

import (
	"fmt"

	json "github.com/goccy/go-json"
	"google.golang.org/protobuf/proto"
)

// JSONCodec encodes plain Go values as JSON. Protobuf messages are handed to
// ProtoJSONCodec so they keep their canonical JSON mapping.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) (string, error) {
	if msg, ok := v.(proto.Message); ok {
		return protoCodec.Encode(msg)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("json encode: %w", err)
	}
	return string(data), nil
}

func (c *JSONCodec) Decode(text string, v any) error {
	if msg, ok := v.(proto.Message); ok {
		return protoCodec.Decode(text, msg)
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	return nil
}

func (c *JSONCodec) Name() string {
	return "json"
}
