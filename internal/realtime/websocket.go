package realtime

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketTransport delivers events as text frames on a websocket
// connection. The gateway serializes writes per subscription, so no
// extra locking is needed around the connection.
type WebSocketTransport struct {
	conn *websocket.Conn
}

// UpgradeWebSocket upgrades the request and wraps the connection.
func UpgradeWebSocket(w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader) (*WebSocketTransport, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}
	return &WebSocketTransport{conn: conn}, nil
}

// Send writes one text frame within the timeout.
func (t *WebSocketTransport) Send(data []byte, timeout time.Duration) error {
	if timeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return fmt.Errorf("failed to set write deadline: %w", err)
		}
	}
	if err := t.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// Close sends a close frame on a best-effort basis and closes the socket.
func (t *WebSocketTransport) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = t.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return t.conn.Close()
}
