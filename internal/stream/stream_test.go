package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// collectFrames drains a subscription with a timeout guard so a broken
// transport can't hang the test suite.
func collectFrames(t *testing.T, sub Subscription, max int) []Frame {
	t.Helper()

	var frames []Frame
	timeout := time.After(5 * time.Second)
	for {
		select {
		case frame, ok := <-sub.Frames():
			if !ok {
				return frames
			}
			frames = append(frames, frame)
			if max > 0 && len(frames) >= max {
				return frames
			}
		case <-timeout:
			t.Fatalf("timed out waiting for frames, got %d so far", len(frames))
		}
	}
}

func TestHTTPDialer_DeliversFramesInOrder(t *testing.T) {
	lines := []string{
		`{"event_type":"started","message":"Discovery running"}`,
		`{"event_type":"device_found","device":{"address":"10.0.0.1"}}`,
		`{"event_type":"device_found","device":{"address":"10.0.0.2"}}`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("request method = %s, want GET", r.Method)
		}
		flusher := w.(http.Flusher)
		for _, line := range lines {
			fmt.Fprintln(w, line)
			flusher.Flush()
		}
	}))
	defer server.Close()

	dialer := &HTTPDialer{}
	sub, err := dialer.Dial(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer sub.Close()

	frames := collectFrames(t, sub, 0)
	if len(frames) != len(lines) {
		t.Fatalf("received %d frames, want %d", len(frames), len(lines))
	}
	for i, frame := range frames {
		if frame.Err != nil {
			t.Fatalf("frames[%d].Err = %v, want nil", i, frame.Err)
		}
		if string(frame.Data) != lines[i] {
			t.Errorf("frames[%d] = %q, want %q", i, frame.Data, lines[i])
		}
	}
}

func TestHTTPDialer_SkipsBlankLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "\n\n{\"event_type\":\"started\"}\n\n")
	}))
	defer server.Close()

	dialer := &HTTPDialer{}
	sub, err := dialer.Dial(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer sub.Close()

	frames := collectFrames(t, sub, 0)
	if len(frames) != 1 {
		t.Fatalf("received %d frames, want 1", len(frames))
	}
}

func TestHTTPDialer_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer server.Close()

	dialer := &HTTPDialer{}
	if _, err := dialer.Dial(context.Background(), server.URL); err == nil {
		t.Fatal("Dial() error = nil, want error for non-200 status")
	}
}

func TestHTTPDialer_TransportFailureYieldsErrorFrame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Promise a chunked stream, deliver one frame, then drop the
		// connection without terminating the chunked encoding.
		conn, bufrw, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Fatalf("hijack failed: %v", err)
		}
		defer conn.Close()

		bufrw.WriteString("HTTP/1.1 200 OK\r\nContent-Type: application/x-ndjson\r\nTransfer-Encoding: chunked\r\n\r\n")
		payload := "{\"event_type\":\"started\"}\n"
		fmt.Fprintf(bufrw, "%x\r\n%s\r\n", len(payload), payload)
		bufrw.Flush()
	}))
	defer server.Close()

	dialer := &HTTPDialer{}
	sub, err := dialer.Dial(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer sub.Close()

	frames := collectFrames(t, sub, 0)
	if len(frames) < 2 {
		t.Fatalf("received %d frames, want data frame plus error frame", len(frames))
	}
	last := frames[len(frames)-1]
	if last.Err == nil {
		t.Error("last frame.Err = nil, want transport error")
	}
}

func TestHTTPSubscription_CloseEndsStreamWithoutError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintln(w, `{"event_type":"started"}`)
		flusher.Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	dialer := &HTTPDialer{}
	sub, err := dialer.Dial(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	frames := collectFrames(t, sub, 1)
	if len(frames) != 1 || frames[0].Err != nil {
		t.Fatalf("unexpected first frame: %+v", frames)
	}

	sub.Close()
	sub.Close() // idempotent

	// The channel must close without surfacing the cancellation as an error
	rest := collectFrames(t, sub, 0)
	for _, frame := range rest {
		if frame.Err != nil {
			t.Errorf("frame after Close carries error %v, want silent shutdown", frame.Err)
		}
	}
}

func TestWebsocketDialer_DeliversFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	messages := []string{
		`{"event_type":"started","message":"Discovery running"}`,
		`{"event_type":"device_found","device":{"address":"10.0.0.1"}}`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// Clean server-side shutdown
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	dialer := &WebsocketDialer{}
	sub, err := dialer.Dial(context.Background(), wsURL)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer sub.Close()

	frames := collectFrames(t, sub, 0)
	if len(frames) != len(messages) {
		t.Fatalf("received %d frames, want %d", len(frames), len(messages))
	}
	for i, frame := range frames {
		if frame.Err != nil {
			t.Fatalf("frames[%d].Err = %v, want nil (normal closure)", i, frame.Err)
		}
		if string(frame.Data) != messages[i] {
			t.Errorf("frames[%d] = %q, want %q", i, frame.Data, messages[i])
		}
	}
}

func TestNewDialer_SchemeSelection(t *testing.T) {
	tests := []struct {
		url           string
		wantWebsocket bool
	}{
		{"http://localhost:8080/api/discovery/start", false},
		{"https://discovery.example.com/api/discovery/start", false},
		{"ws://localhost:8080/api/discovery/ws", true},
		{"wss://discovery.example.com/api/discovery/ws", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			dialer := NewDialer(tt.url)
			_, isWS := dialer.(*WebsocketDialer)
			if isWS != tt.wantWebsocket {
				t.Errorf("NewDialer(%q) websocket = %v, want %v", tt.url, isWS, tt.wantWebsocket)
			}
		})
	}
}
