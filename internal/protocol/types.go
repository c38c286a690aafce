package protocol

const (
	Origin       = "pyesasky"
	MethodCustom = "custom"

	KeyMethod      = "method"
	KeyData        = "data"
	KeyContent     = "content"
	KeyEvent       = "event"
	KeyOrigin      = "origin"
	KeyMsgID       = "msgId"
	KeyInit        = "initialised"
	KeyType        = "type"
	KeyContentType = "contentType"
	KeyURL         = "url"
	KeyValues      = "values"
	KeyError       = "error"
	KeyExtras      = "extras"
	KeySuccess     = "success"
	KeyBuffers     = "buffers"

	KeyErrorMessage   = "message"
	KeyErrorAvailable = "available"
	KeyExtrasMessage  = "message"

	// HandshakeEvent is sent before any other command on a fresh channel.
	HandshakeEvent = "initTest"
	// HandshakeID is the reserved correlation id of the handshake request.
	HandshakeID = "init"

	TypeDownload = "esasky_jupyter_download"
)

// Envelope is the command unit the frontend understands.
type Envelope struct {
	Event   string         `json:"event" msgpack:"event"`
	Content map[string]any `json:"content" msgpack:"content"`
	Origin  string         `json:"origin" msgpack:"origin"`
	MsgID   string         `json:"msgId" msgpack:"msgId"`
	Buffers int            `json:"buffers,omitempty" msgpack:"buffers,omitempty"`
}

// Outbound wraps an Envelope the way the comm runtime expects custom
// messages to be shaped.
type Outbound struct {
	Method  string   `json:"method" msgpack:"method"`
	Content Envelope `json:"content" msgpack:"content"`
}

// Kind classifies a decoded inbound frame.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindHandshake
	KindResponse
	KindUnsolicited
)

func (k Kind) String() string {
	switch k {
	case KindHandshake:
		return "handshake"
	case KindResponse:
		return "response"
	case KindUnsolicited:
		return "unsolicited"
	default:
		return "unrecognized"
	}
}
