package comm

import (
	"context"
	"sync"

	"github.com/HsiangNianian/esaskywidget/internal/protocol"
)

// Sent is one frame recorded by a Loopback.
type Sent struct {
	Msg     protocol.Outbound
	Buffers [][]byte
}

// Loopback is an in-memory Channel. Sent frames are recorded and handed to
// an optional responder; inbound frames are injected with Deliver.
type Loopback struct {
	mu        sync.Mutex
	ready     bool
	sent      []Sent
	handler   FrameHandler
	responder func(Sent)

	deliverMu sync.Mutex
}

func NewLoopback() *Loopback {
	return &Loopback{ready: true}
}

func (l *Loopback) SetReady(ready bool) {
	l.mu.Lock()
	l.ready = ready
	l.mu.Unlock()
}

// OnSend installs fn to be called synchronously after every successful Send.
func (l *Loopback) OnSend(fn func(Sent)) {
	l.mu.Lock()
	l.responder = fn
	l.mu.Unlock()
}

func (l *Loopback) Send(ctx context.Context, msg protocol.Outbound, buffers [][]byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	if !l.ready {
		l.mu.Unlock()
		return ErrNotConnected
	}
	s := Sent{Msg: msg, Buffers: buffers}
	l.sent = append(l.sent, s)
	responder := l.responder
	l.mu.Unlock()

	if responder != nil {
		responder(s)
	}
	return nil
}

func (l *Loopback) Subscribe(fn FrameHandler) {
	l.mu.Lock()
	l.handler = fn
	l.mu.Unlock()
}

func (l *Loopback) Ready() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

// Deliver wraps inner as content.data.content and dispatches it.
func (l *Loopback) Deliver(inner map[string]any) {
	l.DeliverFrame(map[string]any{
		protocol.KeyContent: map[string]any{
			protocol.KeyData: map[string]any{
				protocol.KeyMethod:  protocol.MethodCustom,
				protocol.KeyContent: inner,
			},
		},
	})
}

// DeliverFrame dispatches an already shaped frame. Frames without the
// expected nesting are dropped, as a real transport would.
func (l *Loopback) DeliverFrame(frame map[string]any) {
	in := protocol.DecodeMap(frame)
	if in == nil {
		return
	}
	l.dispatch(in)
}

func (l *Loopback) dispatch(in *protocol.Inbound) {
	l.mu.Lock()
	handler := l.handler
	l.mu.Unlock()
	if handler == nil {
		return
	}

	l.deliverMu.Lock()
	defer l.deliverMu.Unlock()
	handler(in)
}

// Sent returns a copy of every frame sent so far.
func (l *Loopback) Sent() []Sent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Sent, len(l.sent))
	copy(out, l.sent)
	return out
}

// Count returns how many frames carried event.
func (l *Loopback) Count(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, s := range l.sent {
		if s.Msg.Content.Event == event {
			n++
		}
	}
	return n
}

// Last returns the most recent frame sent with event.
func (l *Loopback) Last(event string) (Sent, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.sent) - 1; i >= 0; i-- {
		if l.sent[i].Msg.Content.Event == event {
			return l.sent[i], true
		}
	}
	return Sent{}, false
}
