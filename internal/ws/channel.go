package ws

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/HsiangNianian/esaskywidget/internal/comm"
	"github.com/HsiangNianian/esaskywidget/internal/protocol"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	// maxBuffers bounds the binary attachments a single frame may announce.
	maxBuffers = 64
	maxMessage = 32 << 20
)

type peerConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peerConn) write(messageType int, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(messageType, data)
}

// writeFrame writes the envelope and its buffers under one lock so buffers
// always follow the frame that announced them.
func (p *peerConn) writeFrame(frameType int, frame []byte, buffers [][]byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := p.conn.WriteMessage(frameType, frame); err != nil {
		return err
	}
	for _, b := range buffers {
		if err := p.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
			return err
		}
	}
	return nil
}

// Channel is the websocket comm channel. The frontend either dials
// ServeHTTP or is dialed with Dial; in both cases a single peer is active
// and a newer connection replaces the older one.
type Channel struct {
	codec     protocol.Codec
	authToken string
	verbose   bool

	upgrader websocket.Upgrader

	peerMu sync.RWMutex
	peer   *peerConn

	handlerMu sync.RWMutex
	handler   comm.FrameHandler
}

var _ comm.Channel = (*Channel)(nil)

func NewChannel(codec protocol.Codec, authToken string, verbose bool) *Channel {
	if codec == nil {
		codec = protocol.JSONCodec{}
	}
	return &Channel{
		codec:     codec,
		authToken: authToken,
		verbose:   verbose,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

func (c *Channel) Subscribe(fn comm.FrameHandler) {
	c.handlerMu.Lock()
	c.handler = fn
	c.handlerMu.Unlock()
}

func (c *Channel) Ready() bool {
	c.peerMu.RLock()
	defer c.peerMu.RUnlock()
	return c.peer != nil
}

func (c *Channel) Send(ctx context.Context, msg protocol.Outbound, buffers [][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.peerMu.RLock()
	peer := c.peer
	c.peerMu.RUnlock()
	if peer == nil {
		return comm.ErrNotConnected
	}

	msg.Content.Buffers = len(buffers)
	frame, err := c.codec.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode frame failed: %w", err)
	}
	if err := peer.writeFrame(c.frameType(), frame, buffers); err != nil {
		return fmt.Errorf("%w: %v", comm.ErrNotConnected, err)
	}
	c.logEvent("send backend->frontend", msg.Content.Event, msg.Content.MsgID, len(buffers))
	return nil
}

func (c *Channel) frameType() int {
	if c.codec.Binary() {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

func (c *Channel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if c.authToken != "" && r.Header.Get("Authorization") != "Bearer "+c.authToken {
		log.Printf("frontend unauthorized: remote=%s", r.RemoteAddr)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade frontend ws failed: %v", err)
		return
	}
	log.Printf("frontend connected: remote=%s codec=%s", r.RemoteAddr, c.codec.Name())
	c.read(c.attach(conn))
}

// Dial connects to a frontend bridge listening at url and starts reading
// from it in the background.
func (c *Channel) Dial(ctx context.Context, url, authToken string) error {
	header := http.Header{}
	if authToken == "" {
		authToken = c.authToken
	}
	if authToken != "" {
		header.Set("Authorization", "Bearer "+authToken)
	}
	log.Printf("dial frontend: url=%s", url)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return err
	}
	log.Printf("frontend connected: url=%s codec=%s", url, c.codec.Name())
	go c.read(c.attach(conn))
	return nil
}

func (c *Channel) attach(conn *websocket.Conn) *peerConn {
	conn.SetReadLimit(maxMessage)
	peer := &peerConn{conn: conn}
	c.peerMu.Lock()
	old := c.peer
	c.peer = peer
	c.peerMu.Unlock()
	if old != nil {
		log.Printf("frontend replaced by newer connection")
		_ = old.conn.Close()
	}
	return peer
}

// Close drops the active peer, if any.
func (c *Channel) Close() error {
	c.peerMu.Lock()
	peer := c.peer
	c.peer = nil
	c.peerMu.Unlock()
	if peer == nil {
		return nil
	}
	_ = peer.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return peer.conn.Close()
}

func (c *Channel) read(peer *peerConn) {
	defer func() {
		c.peerMu.Lock()
		if c.peer == peer {
			c.peer = nil
		}
		c.peerMu.Unlock()
		_ = peer.conn.Close()
		log.Printf("frontend disconnected")
	}()

	for {
		_, data, err := peer.conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("recv frontend->backend failed: %v", err)
			}
			return
		}

		in := protocol.DecodeWith(c.codec, data)
		if in == nil {
			if c.verbose {
				log.Printf("drop malformed frame: bytes=%d", len(data))
			}
			continue
		}
		n := bufferCount(in)
		if n < 0 || n > maxBuffers {
			log.Printf("drop malformed frame: buffers=%d max=%d", n, maxBuffers)
			continue
		}
		if n > 0 {
			for i := 0; i < n; i++ {
				_, b, err := peer.conn.ReadMessage()
				if err != nil {
					log.Printf("recv buffer failed: index=%d err=%v", i, err)
					return
				}
				in.Buffers = append(in.Buffers, b)
			}
		}
		c.logEvent("recv frontend->backend", protocol.Classify(in).String(), in.MsgID(), len(in.Buffers))
		c.dispatch(in)
	}
}

func (c *Channel) dispatch(in *protocol.Inbound) {
	c.handlerMu.RLock()
	handler := c.handler
	c.handlerMu.RUnlock()
	if handler != nil {
		handler(in)
	}
}

func bufferCount(in *protocol.Inbound) int {
	switch v := in.Content[protocol.KeyBuffers].(type) {
	case float64:
		if v < 0 || v > maxBuffers {
			return -1
		}
		return int(v)
	case int:
		return v
	case int8:
		return int(v)
	case int16:
		return int(v)
	case int32:
		return int(v)
	case int64:
		if v < 0 || v > maxBuffers {
			return -1
		}
		return int(v)
	case uint8:
		return int(v)
	case uint16:
		return int(v)
	case uint32:
		return int(v)
	case uint64:
		if v > maxBuffers {
			return -1
		}
		return int(v)
	default:
		return 0
	}
}

func (c *Channel) logEvent(prefix, kind, msgID string, buffers int) {
	if !c.verbose {
		return
	}
	log.Printf("%s: kind=%s msg_id=%s buffers=%d", prefix, kind, msgID, buffers)
}
