package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hco/sparkping/internal/logging"
)

// WebsocketDialer opens push subscriptions over a websocket connection.
// The service pushes the same one-JSON-object-per-frame payloads as the
// HTTP stream, one per text message.
type WebsocketDialer struct {
	// Dialer overrides the websocket dialer. The zero value uses
	// websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Dial connects to the websocket endpoint and starts the reader goroutine.
func (d *WebsocketDialer) Dial(ctx context.Context, url string) (Subscription, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("failed to open websocket stream: %w", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	sub := &wsSubscription{
		conn:   conn,
		frames: make(chan Frame),
		done:   make(chan struct{}),
	}
	go sub.read()

	logging.Debug("Websocket stream opened", zap.String("url", url))
	return sub, nil
}

type wsSubscription struct {
	conn      *websocket.Conn
	frames    chan Frame
	done      chan struct{}
	closeOnce sync.Once
}

// Frames returns the delivery channel
func (s *wsSubscription) Frames() <-chan Frame {
	return s.frames
}

// Close tears down the websocket connection. Safe to call multiple
// times; the reader goroutine exits on the resulting read error.
func (s *wsSubscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		// Best-effort close handshake; the hard close below unblocks
		// the reader regardless.
		_ = s.conn.SetWriteDeadline(time.Now().Add(time.Second))
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = s.conn.Close()
	})
}

// read pumps websocket messages into the frames channel. A read error
// after Close, or a normal close from the server, ends the stream
// without an error frame.
func (s *wsSubscription) read() {
	defer close(s.frames)
	defer s.conn.Close()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// Locally closed; the error is expected
				return
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				// Server finished the stream cleanly
				return
			}
			logging.Warn("Websocket stream failed", zap.Error(err))
			select {
			case s.frames <- Frame{Err: err}:
			case <-s.done:
			}
			return
		}

		select {
		case s.frames <- Frame{Data: data}:
		case <-s.done:
			return
		}
	}
}
