package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCodec(t *testing.T) {
	c, err := NewCodec("")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())
	assert.False(t, c.Binary())

	c, err = NewCodec("msgpack")
	require.NoError(t, err)
	assert.Equal(t, "msgpack", c.Name())
	assert.True(t, c.Binary())

	_, err = NewCodec("xml")
	assert.Error(t, err)
}

func TestCodecsCarryNestedFrames(t *testing.T) {
	frame := map[string]any{
		"content": map[string]any{
			"data": map[string]any{
				"method":  "custom",
				"content": map[string]any{"msgId": "abc", "values": "ok"},
			},
		},
	}

	for _, format := range []string{"json", "msgpack"} {
		t.Run(format, func(t *testing.T) {
			c, err := NewCodec(format)
			require.NoError(t, err)

			b, err := c.Marshal(frame)
			require.NoError(t, err)

			in := DecodeWith(c, b)
			require.NotNil(t, in)
			assert.Equal(t, KindResponse, Classify(in))
			assert.Equal(t, "abc", in.MsgID())
			assert.Equal(t, "ok", ParseResponse(in).Result())
		})
	}
}

func TestDecodeWithGarbage(t *testing.T) {
	assert.Nil(t, DecodeWith(JSONCodec{}, []byte("{")))
	assert.Nil(t, DecodeWith(MsgpackCodec{}, []byte{0xc1}))

	_, err := JSONCodec{}.Unmarshal([]byte("{"))
	assert.ErrorIs(t, err, ErrMalformedFrame)
}
