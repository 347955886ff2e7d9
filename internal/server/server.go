package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hco/sparkping/internal/discovery"
	"github.com/hco/sparkping/internal/logging"
	"github.com/hco/sparkping/internal/urls"
)

// writeWait is the time allowed to write one event to a websocket peer
const writeWait = 10 * time.Second

// Server is a self-contained discovery service: it exposes the push
// stream endpoints and feeds them from an EventSource. It exists so the
// monitor can be exercised against a real service on a development
// machine.
type Server struct {
	addr     string
	source   EventSource
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// New creates a server listening on addr, pushing events from source.
func New(addr string, source EventSource) *Server {
	return &Server{
		addr:   addr,
		source: source,
		upgrader: websocket.Upgrader{
			// The stream is read-only for the client; any origin may
			// subscribe.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+urls.DiscoveryStreamPath, s.handleStream)
	mux.HandleFunc("/"+urls.DiscoveryWebsocketPath, s.handleWebsocket)

	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: mux,
		// Request contexts derive from ctx so cancelling it also ends
		// the long-lived stream handlers.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	logging.Info("Discovery service listening", zap.String("addr", s.addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// handleStream serves the GET push stream: one JSON event per line,
// flushed per event, until the source ends or the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	logging.LogConnection(r.RemoteAddr, "stream_opened")
	defer logging.LogConnection(r.RemoteAddr, "stream_closed")

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	encoder := json.NewEncoder(w)
	var mu sync.Mutex // source may emit from its own goroutine
	writeEvent := func(event *discovery.Event) error {
		mu.Lock()
		defer mu.Unlock()
		if err := encoder.Encode(event); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	s.pushEvents(r.Context(), r.RemoteAddr, writeEvent)
}

// handleWebsocket serves the websocket variant of the push stream.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	logging.LogConnection(r.RemoteAddr, "websocket_opened")
	defer logging.LogConnection(r.RemoteAddr, "websocket_closed")

	// Reading only to observe the peer going away; the stream is
	// strictly server-to-client.
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var mu sync.Mutex
	writeEvent := func(event *discovery.Event) error {
		mu.Lock()
		defer mu.Unlock()
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteJSON(event)
	}

	s.pushEvents(ctx, r.RemoteAddr, writeEvent)

	mu.Lock()
	defer mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// pushEvents runs one discovery session for one client: started first,
// then source events, then completed (clean end) or error (source
// failure). A write failure means the client went away; the session is
// simply abandoned.
func (s *Server) pushEvents(ctx context.Context, remoteAddr string, write func(*discovery.Event) error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := write(&discovery.Event{
		Type:    discovery.EventStarted,
		Message: "Discovery running",
	}); err != nil {
		return
	}

	var deviceCount int64
	emit := func(event *discovery.Event) {
		if event.Type == discovery.EventDeviceFound {
			atomic.AddInt64(&deviceCount, 1)
		}
		if err := write(event); err != nil {
			// Client disconnected; stop the source
			cancel()
		}
	}

	err := s.source.Run(ctx, emit)

	if ctx.Err() != nil {
		// Client-initiated teardown; nothing left to tell it
		return
	}

	if err != nil {
		logging.Error("Event source failed",
			zap.String("remote_addr", remoteAddr),
			zap.Error(err),
		)
		_ = write(&discovery.Event{
			Type:    discovery.EventError,
			Message: err.Error(),
		})
		return
	}

	_ = write(&discovery.Event{
		Type:        discovery.EventCompleted,
		Message:     "Discovery finished",
		DeviceCount: int(atomic.LoadInt64(&deviceCount)),
	})
}
