package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	// The REST endpoints are open CORS; the feed follows the same policy.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsSubscriber adapts a WebSocket connection to the hub's Subscriber. The
// mutex serializes writes: the hub may publish while the read loop triggers a
// control-frame write.
type wsSubscriber struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsSubscriber) Send(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// subscribe upgrades the connection, registers it with the hub, and then
// drains inbound frames (clients only send keepalives) until the transport
// closes, which unsubscribes the connection.
func (s *Server) subscribe(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sub := &wsSubscriber{conn: conn}
	s.hub.Subscribe(sub)
	defer func() {
		s.hub.Unsubscribe(sub)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
