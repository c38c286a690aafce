package protocol

import (
	"encoding/json"
	"errors"
)

var (
	ErrContentNotMapping = errors.New("content must be a mapping")
	ErrEmptyEvent        = errors.New("event is required")
	ErrMalformedFrame    = errors.New("malformed frame")
)

// Encode builds the outbound frame for event, tagging it with the library
// origin and requestID. content must be nil, a map[string]any or a value
// that marshals to a JSON object.
func Encode(event string, content any, requestID string) (Outbound, error) {
	if event == "" {
		return Outbound{}, ErrEmptyEvent
	}
	m, err := asMapping(content)
	if err != nil {
		return Outbound{}, err
	}
	return Outbound{
		Method: MethodCustom,
		Content: Envelope{
			Event:   event,
			Content: m,
			Origin:  Origin,
			MsgID:   requestID,
		},
	}, nil
}

func asMapping(content any) (map[string]any, error) {
	switch v := content.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		if v == nil {
			return map[string]any{}, nil
		}
		return v, nil
	case json.RawMessage:
		return rawMapping(v)
	case []byte:
		return rawMapping(v)
	case string, bool, int, int32, int64, float32, float64, []any:
		return nil, ErrContentNotMapping
	}

	b, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return rawMapping(b)
}

func rawMapping(b []byte) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil || m == nil {
		return nil, ErrContentNotMapping
	}
	return m, nil
}

// Inbound is a frame whose nested content was found.
type Inbound struct {
	// Raw is the outer content object of the frame, kept for diagnostics.
	Raw map[string]any
	// Content is the nested payload at content.data.content.
	Content map[string]any
	// Buffers are binary attachments that followed the frame.
	Buffers [][]byte
}

// Decode parses a JSON frame. It returns nil when the frame is not JSON or
// lacks the content.data.content nesting.
func Decode(raw []byte) *Inbound {
	var frame map[string]any
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil
	}
	return DecodeMap(frame)
}

// DecodeMap extracts the nested payload from an already decoded frame.
func DecodeMap(frame map[string]any) *Inbound {
	outer, ok := frame[KeyContent].(map[string]any)
	if !ok {
		return nil
	}
	data, ok := outer[KeyData].(map[string]any)
	if !ok {
		return nil
	}
	inner, ok := data[KeyContent].(map[string]any)
	if !ok {
		return nil
	}
	return &Inbound{Raw: outer, Content: inner}
}

// Initialised reports whether the frame is the frontend's handshake reply.
func (in *Inbound) Initialised() bool {
	if in == nil {
		return false
	}
	v, _ := in.Content[KeyInit].(bool)
	return v
}

// MsgID returns the echoed correlation id, or "" when absent.
func (in *Inbound) MsgID() string {
	if in == nil {
		return ""
	}
	switch v := in.Content[KeyMsgID].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// PushType returns the unsolicited message type. Both "type" and
// "contentType" are accepted.
func (in *Inbound) PushType() string {
	if in == nil {
		return ""
	}
	if v, ok := in.Content[KeyContentType].(string); ok && v != "" {
		return v
	}
	if v, ok := in.Content[KeyType].(string); ok && v != "" {
		return v
	}
	return ""
}

// Classify never fails. Frames that are neither handshake, response nor
// push come back as KindUnrecognized.
func Classify(in *Inbound) Kind {
	switch {
	case in == nil:
		return KindUnrecognized
	case in.Initialised():
		return KindHandshake
	case in.MsgID() != "":
		return KindResponse
	case in.PushType() != "":
		return KindUnsolicited
	default:
		return KindUnrecognized
	}
}
