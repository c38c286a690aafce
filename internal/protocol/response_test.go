package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inbound(content map[string]any) *Inbound {
	return &Inbound{Content: content}
}

func TestParseResponseValues(t *testing.T) {
	resp := ParseResponse(inbound(map[string]any{
		"msgId":  "1",
		"values": map[string]any{"ra": 10.5, "dec": 41.2},
	}))
	require.NotNil(t, resp)
	assert.Equal(t, "1", resp.MsgID)
	assert.Equal(t, map[string]any{"ra": 10.5, "dec": 41.2}, resp.Result())
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Output())
}

func TestResultUnwrapsSingleElementList(t *testing.T) {
	assert.Equal(t, 3.0, ParseResponse(inbound(map[string]any{"values": []any{3.0}})).Result())
	assert.Equal(t, []any{1.0, 2.0}, ParseResponse(inbound(map[string]any{"values": []any{1.0, 2.0}})).Result())
	assert.Nil(t, ParseResponse(inbound(map[string]any{})).Result())
	assert.Nil(t, (*Response)(nil).Result())
}

func TestOutputError(t *testing.T) {
	resp := ParseResponse(inbound(map[string]any{
		"error": map[string]any{
			"message":   "No HiPS named foo",
			"available": []any{"DSS2", "2MASS"},
		},
		"extras": map[string]any{"message": "ignored"},
	}))
	assert.Equal(t, "No HiPS named foo\nAvailable options:\n[DSS2 2MASS]", resp.Output())
}

func TestOutputExtras(t *testing.T) {
	resp := ParseResponse(inbound(map[string]any{
		"success": true,
		"extras":  map[string]any{"message": "Plotted 12 sources"},
	}))
	assert.True(t, resp.Success)
	assert.Equal(t, "Plotted 12 sources", resp.Output())
}

func TestParseResponseNil(t *testing.T) {
	assert.Nil(t, ParseResponse(nil))
	assert.Empty(t, (*Response)(nil).Output())
}
