// Package correlator turns a fire-and-forget comm channel into a
// request/response facility.
//
// Every request carries a fresh msgId. A waiter is registered under that id
// before the frame is sent and resolved by the channel's delivery callback
// when a frame echoing the id arrives. Each wait ends in exactly one of:
// a response, a timeout, or the caller's context being done.
//
// The first request on a channel triggers a handshake ("initTest" under the
// reserved id "init"). Once it succeeds the correlator stays ready for the
// rest of its life; there is no reconnect detection.
package correlator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HsiangNianian/esaskywidget/internal/comm"
	"github.com/HsiangNianian/esaskywidget/internal/protocol"
	"github.com/HsiangNianian/esaskywidget/internal/store"
	"github.com/google/uuid"
)

type State int32

const (
	Uninitialized State = iota
	HandshakePending
	Ready
)

func (s State) String() string {
	switch s {
	case HandshakePending:
		return "handshake-pending"
	case Ready:
		return "ready"
	default:
		return "uninitialized"
	}
}

var (
	ErrChannelNotReady       = errors.New("comm channel not ready")
	ErrChannelNotInitialized = errors.New("communication could not be established")
	ErrTimedOut              = errors.New("timed out waiting for response")
)

// TimeoutError reports a request that got no correlated response in time.
type TimeoutError struct {
	RequestID string
	Event     string
	After     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for message with ID '%s' (event=%s after=%s)", e.RequestID, e.Event, e.After)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimedOut }

// PushHandler receives unsolicited frames such as download requests.
type PushHandler func(msgType string, content map[string]any) error

type Options struct {
	RequestTimeout   time.Duration
	HandshakeTimeout time.Duration
	// HandshakeGrace is slept after a successful handshake so the frontend
	// can finish its own setup before the first real command.
	HandshakeGrace time.Duration

	Store      store.Store
	OutcomeTTL time.Duration

	OnPush  PushHandler
	Verbose bool
}

func DefaultOptions() Options {
	return Options{
		RequestTimeout:   5 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		HandshakeGrace:   500 * time.Millisecond,
		OutcomeTTL:       24 * time.Hour,
	}
}

type waiter struct {
	id   string
	done chan struct{}
	resp *protocol.Response
}

type Correlator struct {
	ch   comm.Channel
	opts Options

	state atomic.Int32
	// hsSem is a one-slot semaphore serialising handshakes; the delivery
	// path never takes it.
	hsSem chan struct{}

	mu      sync.Mutex
	pending map[string]*waiter

	pushMu sync.RWMutex
	onPush PushHandler

	newID func() string
}

// New subscribes to ch and returns a correlator in the Uninitialized state.
func New(ch comm.Channel, opts Options) *Correlator {
	def := DefaultOptions()
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = def.RequestTimeout
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = def.HandshakeTimeout
	}
	if opts.HandshakeGrace < 0 {
		opts.HandshakeGrace = 0
	}
	if opts.OutcomeTTL <= 0 {
		opts.OutcomeTTL = def.OutcomeTTL
	}

	c := &Correlator{
		ch:      ch,
		opts:    opts,
		pending: make(map[string]*waiter),
		hsSem:   make(chan struct{}, 1),
		onPush:  opts.OnPush,
		newID:   uuid.NewString,
	}
	ch.Subscribe(c.deliver)
	return c
}

func (c *Correlator) State() State { return State(c.state.Load()) }

// SetPushHandler replaces the callback for unsolicited frames.
func (c *Correlator) SetPushHandler(h PushHandler) {
	c.pushMu.Lock()
	c.onPush = h
	c.pushMu.Unlock()
}

// Pending returns the number of registered waiters, handshake included.
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Has reports whether a waiter is registered under id.
func (c *Correlator) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[id]
	return ok
}

// EnsureReady performs the handshake unless it already succeeded. Concurrent
// first callers share a single handshake frame.
func (c *Correlator) EnsureReady(ctx context.Context) error {
	if c.State() == Ready {
		return nil
	}

	select {
	case c.hsSem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrChannelNotInitialized, ctx.Err())
	}
	defer func() { <-c.hsSem }()
	if c.State() == Ready {
		return nil
	}
	if !c.ch.Ready() {
		return fmt.Errorf("%w: %w", ErrChannelNotInitialized, ErrChannelNotReady)
	}

	c.state.CompareAndSwap(int32(Uninitialized), int32(HandshakePending))
	w, ok := c.register(protocol.HandshakeID)
	if !ok {
		// stale sentinel
		c.mu.Lock()
		delete(c.pending, protocol.HandshakeID)
		c.mu.Unlock()
		w, _ = c.register(protocol.HandshakeID)
	}

	out, err := protocol.Encode(protocol.HandshakeEvent, nil, protocol.HandshakeID)
	if err == nil {
		err = c.ch.Send(ctx, out, nil)
	}
	if err != nil {
		c.remove(w)
		c.state.CompareAndSwap(int32(HandshakePending), int32(Uninitialized))
		log.Printf("handshake send failed: err=%v", err)
		return fmt.Errorf("%w: %w", ErrChannelNotInitialized, err)
	}
	c.logEvent("send handshake", protocol.HandshakeEvent, protocol.HandshakeID)

	if _, err := c.wait(ctx, w, protocol.HandshakeEvent, c.opts.HandshakeTimeout); err != nil && c.State() != Ready {
		c.state.CompareAndSwap(int32(HandshakePending), int32(Uninitialized))
		log.Printf("handshake failed: err=%v", err)
		return fmt.Errorf("%w: %w", ErrChannelNotInitialized, err)
	}
	c.state.Store(int32(Ready))
	log.Printf("comm established")

	if c.opts.HandshakeGrace > 0 {
		timer := time.NewTimer(c.opts.HandshakeGrace)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
	return nil
}

// SendFireAndForget sends event without registering a waiter. Any reply is
// dropped by the demultiplexer. It returns the request id used.
func (c *Correlator) SendFireAndForget(ctx context.Context, event string, content any, buffers [][]byte) (string, error) {
	if err := c.EnsureReady(ctx); err != nil {
		return "", err
	}

	id := c.newID()
	out, err := protocol.Encode(event, content, id)
	if err != nil {
		return "", err
	}
	if err := c.send(ctx, out, buffers); err != nil {
		return "", err
	}
	return id, nil
}

// SendAndWait sends event and blocks until the matching response arrives,
// timeout elapses or ctx is done. A non-positive timeout uses the
// configured request timeout.
func (c *Correlator) SendAndWait(ctx context.Context, event string, content any, buffers [][]byte, timeout time.Duration) (*protocol.Response, error) {
	if err := c.EnsureReady(ctx); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = c.opts.RequestTimeout
	}

	var w *waiter
	for {
		var ok bool
		if w, ok = c.register(c.newID()); ok {
			break
		}
	}

	out, err := protocol.Encode(event, content, w.id)
	if err != nil {
		c.remove(w)
		return nil, err
	}
	if err := c.send(ctx, out, buffers); err != nil {
		c.remove(w)
		return nil, err
	}

	resp, err := c.wait(ctx, w, event, timeout)
	switch {
	case err == nil:
		c.recordOutcome(w.id, store.StatusDone)
	case errors.Is(err, ErrTimedOut):
		c.recordOutcome(w.id, store.StatusTimeout)
	}
	return resp, err
}

func (c *Correlator) send(ctx context.Context, out protocol.Outbound, buffers [][]byte) error {
	if !c.ch.Ready() {
		return ErrChannelNotReady
	}
	if err := c.ch.Send(ctx, out, buffers); err != nil {
		if errors.Is(err, comm.ErrNotConnected) {
			return fmt.Errorf("%w: %w", ErrChannelNotReady, err)
		}
		return err
	}
	c.logEvent("send request", out.Content.Event, out.Content.MsgID)
	return nil
}

// register inserts a waiter for id. It fails if id is already taken.
func (c *Correlator) register(id string) (*waiter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.pending[id]; exists {
		return nil, false
	}
	w := &waiter{id: id, done: make(chan struct{})}
	c.pending[id] = w
	return w, true
}

// remove deletes w if it is still registered. A false result means the
// delivery path already resolved it.
func (c *Correlator) remove(w *waiter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.pending[w.id]; ok && cur == w {
		delete(c.pending, w.id)
		return true
	}
	return false
}

// resolve removes the waiter for id and hands it resp, under one lock hold.
func (c *Correlator) resolve(id string, resp *protocol.Response) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.pending[id]
	if !ok {
		return false
	}
	delete(c.pending, id)
	w.resp = resp
	close(w.done)
	return true
}

func (c *Correlator) wait(ctx context.Context, w *waiter, event string, timeout time.Duration) (*protocol.Response, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.done:
		return w.resp, nil
	case <-timer.C:
		if c.remove(w) {
			return nil, &TimeoutError{RequestID: w.id, Event: event, After: timeout}
		}
	case <-ctx.Done():
		if c.remove(w) {
			return nil, ctx.Err()
		}
	}
	// Lost the race to the delivery path, which closes done before
	// releasing the table lock.
	<-w.done
	return w.resp, nil
}

func (c *Correlator) deliver(in *protocol.Inbound) {
	switch protocol.Classify(in) {
	case protocol.KindHandshake:
		c.state.Store(int32(Ready))
		c.resolve(protocol.HandshakeID, protocol.ParseResponse(in))
		c.logEvent("recv handshake", protocol.HandshakeEvent, protocol.HandshakeID)
	case protocol.KindResponse:
		resp := protocol.ParseResponse(in)
		if !c.resolve(resp.MsgID, resp) {
			c.logEvent("drop orphan response", "", resp.MsgID)
			return
		}
		c.logEvent("recv response", "", resp.MsgID)
	case protocol.KindUnsolicited:
		c.dispatchPush(in.PushType(), in.Content)
	default:
		c.logEvent("drop unrecognized frame", "", "")
	}
}

func (c *Correlator) dispatchPush(msgType string, content map[string]any) {
	c.pushMu.RLock()
	h := c.onPush
	c.pushMu.RUnlock()
	if h == nil {
		c.logEvent("drop push without handler", msgType, "")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("push handler panicked: type=%s err=%v", msgType, r)
		}
	}()
	if err := h(msgType, content); err != nil {
		log.Printf("push handler failed: type=%s err=%v", msgType, err)
	}
}

func (c *Correlator) recordOutcome(id, status string) {
	if c.opts.Store == nil {
		return
	}
	if err := c.opts.Store.SetAckStatus(context.Background(), id, status, c.opts.OutcomeTTL); err != nil {
		log.Printf("record outcome failed: msg_id=%s status=%s err=%v", id, status, err)
	}
}

func (c *Correlator) logEvent(prefix, event, msgID string) {
	if !c.opts.Verbose {
		return
	}
	log.Printf("%s: event=%s msg_id=%s state=%s", prefix, event, msgID, c.State())
}
