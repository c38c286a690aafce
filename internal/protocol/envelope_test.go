package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeInjectsOriginAndID(t *testing.T) {
	out, err := Encode("getCenter", map[string]any{"cooFrame": "J2000"}, "abc")
	require.NoError(t, err)

	b, err := json.Marshal(out)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "custom", got["method"])

	content := got["content"].(map[string]any)
	assert.Equal(t, "getCenter", content["event"])
	assert.Equal(t, "pyesasky", content["origin"])
	assert.Equal(t, "abc", content["msgId"])
	assert.Equal(t, map[string]any{"cooFrame": "J2000"}, content["content"])
	assert.NotContains(t, content, "buffers")
}

func TestEncodeContentMustBeMapping(t *testing.T) {
	tests := []struct {
		name    string
		content any
		wantErr bool
	}{
		{"nil", nil, false},
		{"map", map[string]any{"show": true}, false},
		{"struct", struct {
			Fov float64 `json:"fov"`
		}{Fov: 2}, false},
		{"raw object", json.RawMessage(`{"a":1}`), false},
		{"string", "hello", true},
		{"number", 42, true},
		{"list", []any{1, 2}, true},
		{"raw array", json.RawMessage(`[1]`), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode("setFov", tt.content, "id")
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrContentNotMapping)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err := Encode("", nil, "id")
	assert.ErrorIs(t, err, ErrEmptyEvent)
}

func TestDecodeNestedContent(t *testing.T) {
	in := Decode([]byte(`{"content":{"comm_id":"x","data":{"method":"custom","content":{"msgId":"42","values":{"ra":10.5}}}}}`))
	require.NotNil(t, in)
	assert.Equal(t, "42", in.MsgID())
	assert.Equal(t, "x", in.Raw["comm_id"])
}

func TestDecodeReturnsNilOnMalformedInput(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`[]`,
		`{"content": 1}`,
		`{"content": {"data": "x"}}`,
		`{"content": {"data": {"content": [1,2]}}}`,
		`{"data": {"content": {"msgId": "1"}}}`,
	}
	for _, raw := range inputs {
		assert.Nil(t, Decode([]byte(raw)), raw)
	}
}

func TestClassify(t *testing.T) {
	frame := func(inner string) *Inbound {
		return Decode([]byte(`{"content":{"data":{"content":` + inner + `}}}`))
	}

	tests := []struct {
		name string
		in   *Inbound
		want Kind
	}{
		{"nil", nil, KindUnrecognized},
		{"handshake", frame(`{"initialised": true}`), KindHandshake},
		{"handshake wins over id", frame(`{"initialised": true, "msgId": "1"}`), KindHandshake},
		{"init false", frame(`{"initialised": false}`), KindUnrecognized},
		{"response", frame(`{"msgId": "1", "values": []}`), KindResponse},
		{"numeric id", frame(`{"msgId": 7}`), KindResponse},
		{"push type", frame(`{"type": "esasky_jupyter_download", "url": "u"}`), KindUnsolicited},
		{"push contentType", frame(`{"contentType": "esasky_jupyter_download"}`), KindUnsolicited},
		{"response with type", frame(`{"msgId": "1", "type": "x"}`), KindResponse},
		{"empty", frame(`{}`), KindUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestPushTypePrefersContentType(t *testing.T) {
	in := &Inbound{Content: map[string]any{"type": "a", "contentType": "b"}}
	assert.Equal(t, "b", in.PushType())
}
