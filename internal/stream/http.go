package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/hco/sparkping/internal/logging"
)

// maxFrameSize caps a single pushed frame. Discovery events are small;
// anything larger is a protocol violation.
const maxFrameSize = 1 << 20

// HTTPDialer opens push subscriptions over a GET request with a
// streamed, newline-delimited JSON response body.
type HTTPDialer struct {
	// Client overrides the HTTP client used for the request. The zero
	// value uses http.DefaultClient. The client must not set a timeout:
	// the stream is unbounded and runs until explicitly stopped.
	Client *http.Client
}

// Dial issues the GET request and starts the reader goroutine. The
// returned subscription delivers one frame per non-empty response line.
func (d *HTTPDialer) Dial(ctx context.Context, url string) (Subscription, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to build stream request: %w", err)
	}
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("stream endpoint returned %s", resp.Status)
	}

	sub := &httpSubscription{
		frames: make(chan Frame),
		cancel: cancel,
	}
	go sub.read(ctx, resp)

	logging.Debug("HTTP stream opened", zap.String("url", url))
	return sub, nil
}

type httpSubscription struct {
	frames    chan Frame
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Frames returns the delivery channel
func (s *httpSubscription) Frames() <-chan Frame {
	return s.frames
}

// Close cancels the request context, which unblocks the reader and
// closes the frames channel. Safe to call multiple times.
func (s *httpSubscription) Close() {
	s.closeOnce.Do(s.cancel)
}

// read pumps response lines into the frames channel until the body ends
// or the context is cancelled. Failures after an explicit Close are
// suppressed: a closed subscription just drains.
func (s *httpSubscription) read(ctx context.Context, resp *http.Response) {
	defer close(s.frames)
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 4096), maxFrameSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		// Scanner reuses its buffer; frames outlive the next Scan call
		data := make([]byte, len(line))
		copy(data, line)

		select {
		case s.frames <- Frame{Data: data}:
		case <-ctx.Done():
			return
		}
	}

	err := scanner.Err()
	if err == nil {
		// Server ended the stream without a transport error
		return
	}
	if errors.Is(err, context.Canceled) || ctx.Err() != nil {
		// Local close, not a failure
		return
	}

	logging.Warn("HTTP stream failed", zap.Error(err))
	select {
	case s.frames <- Frame{Err: err}:
	case <-ctx.Done():
	}
}
