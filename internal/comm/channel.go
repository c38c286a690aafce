// Package comm defines the bidirectional message channel the correlator
// drives, plus an in-memory implementation.
package comm

import (
	"context"
	"errors"

	"github.com/HsiangNianian/esaskywidget/internal/protocol"
)

var ErrNotConnected = errors.New("comm channel not connected")

// FrameHandler receives every inbound frame, in arrival order, on the
// channel's own delivery goroutine.
type FrameHandler func(in *protocol.Inbound)

// Channel is a fire-and-forget transport to the frontend.
type Channel interface {
	// Send transmits msg and any binary side buffers. It does not wait for
	// an acknowledgement and fails with ErrNotConnected when no peer is
	// attached.
	Send(ctx context.Context, msg protocol.Outbound, buffers [][]byte) error
	// Subscribe replaces the delivery callback.
	Subscribe(fn FrameHandler)
	// Ready is a best effort liveness probe.
	Ready() bool
}
