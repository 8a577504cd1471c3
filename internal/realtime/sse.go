package realtime

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// SSETransport writes events as Server-Sent Events frames on a streaming
// HTTP response. One transport per request; the owning handler blocks
// until the subscription ends.
type SSETransport struct {
	w  http.ResponseWriter
	rc *http.ResponseController

	mu     sync.Mutex
	closed bool
}

// NewSSETransport prepares the response for streaming and returns the
// transport, or an error when the underlying writer cannot flush.
func NewSSETransport(w http.ResponseWriter) (*SSETransport, error) {
	if _, ok := w.(http.Flusher); !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	return &SSETransport{w: w, rc: http.NewResponseController(w)}, nil
}

// Send writes one SSE data frame and flushes it to the client.
func (t *SSETransport) Send(data []byte, timeout time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return fmt.Errorf("sse transport is closed")
	}

	if timeout > 0 {
		// Not every ResponseWriter supports per-write deadlines.
		if err := t.rc.SetWriteDeadline(time.Now().Add(timeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}
	if _, err := fmt.Fprintf(t.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := t.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	return nil
}

// Close marks the transport unusable. The connection itself is owned by
// the HTTP server and ends when the handler returns.
func (t *SSETransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
