package stream

import (
	"context"
	"strings"
)

// Frame is one delivery from a push subscription. Exactly one of Data
// and Err is meaningful: a frame with a non-nil Err reports a transport
// failure, is terminal, and is followed by channel closure.
type Frame struct {
	Data []byte
	Err  error
}

// Subscription is a live push connection to the discovery service.
//
// Frames delivers pushed frames in service emission order. The channel
// is closed when the transport ends, after a terminal error frame if
// the transport failed. Close cancels the underlying connection and is
// idempotent; frames racing with Close may still be delivered and must
// be filtered by the consumer (the monitor's epoch guard).
type Subscription interface {
	Frames() <-chan Frame
	Close()
}

// Dialer opens a push subscription to a stream URL.
type Dialer interface {
	Dial(ctx context.Context, url string) (Subscription, error)
}

// NewDialer returns a dialer for the given stream URL's scheme:
// websocket for ws:// and wss://, chunked HTTP otherwise.
func NewDialer(url string) Dialer {
	if strings.HasPrefix(url, "ws://") || strings.HasPrefix(url, "wss://") {
		return &WebsocketDialer{}
	}
	return &HTTPDialer{}
}
