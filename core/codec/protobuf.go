package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ProtoJSONCodec implements the protobuf JSON mapping
type ProtoJSONCodec struct{}

func (c *ProtoJSONCodec) Encode(v any) (string, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return "", fmt.Errorf("value must implement proto.Message interface, got %T", v)
	}
	data, err := protojson.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("protojson encode: %w", err)
	}
	return string(data), nil
}

func (c *ProtoJSONCodec) Decode(text string, v any) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("value must implement proto.Message interface, got %T", v)
	}
	if err := protojson.Unmarshal([]byte(text), msg); err != nil {
		return fmt.Errorf("protojson decode: %w", err)
	}
	return nil
}

func (c *ProtoJSONCodec) Name() string {
	return "protojson"
}
