package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestJSONCodec(t *testing.T) {
	c := &JSONCodec{}

	type TestStruct struct {
		Name  string
		Value int
	}

	text, err := c.Encode(&TestStruct{Name: "test", Value: 42})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Name":"test","Value":42}`, text)

	decoded := &TestStruct{}
	require.NoError(t, c.Decode(text, decoded))
	assert.Equal(t, "test", decoded.Name)
	assert.Equal(t, 42, decoded.Value)
}

func TestJSONCodec_DecodeError(t *testing.T) {
	var m map[string]string
	err := Default().Decode("{not json", &m)
	assert.Error(t, err)
}

func TestJSONCodec_ProtoMessage(t *testing.T) {
	msg, err := structpb.NewStruct(map[string]any{"count": "42"})
	require.NoError(t, err)

	text, err := Default().Encode(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":"42"}`, text)

	decoded := &structpb.Struct{}
	require.NoError(t, Default().Decode(text, decoded))
	assert.Equal(t, "42", decoded.GetFields()["count"].GetStringValue())
}

func TestProtoJSONCodec(t *testing.T) {
	c := &ProtoJSONCodec{}

	text, err := c.Encode(wrapperspb.String("pong"))
	require.NoError(t, err)
	assert.Equal(t, `"pong"`, text)

	decoded := &wrapperspb.StringValue{}
	require.NoError(t, c.Decode(text, decoded))
	assert.Equal(t, "pong", decoded.GetValue())

	_, err = c.Encode(map[string]string{})
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	c, err := Lookup("json")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = Lookup("protojson")
	require.NoError(t, err)
	assert.Equal(t, "protojson", c.Name())

	_, err = Lookup("msgpack")
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
}
