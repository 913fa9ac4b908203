package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/padloom/padloom/internal/hub"
	"github.com/padloom/padloom/internal/protocol"
	"github.com/padloom/padloom/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1 << 20 // whole-document edits arrive on every keystroke

	outboxSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// CORS policy is handled at the HTTP layer; accept any origin here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades the request and bridges the connection to the hub: one
// reader goroutine feeding frames in, one writer goroutine draining the
// client outbox.
func Handler(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warnf("websocket upgrade failed: %v", err)
			return
		}
		client := hub.NewClient(hub.NewConnID(), outboxSize)
		h.Connect(client)
		logger.Debugf("connection %s established", client.ID)

		go writePump(conn, client)
		go readPump(conn, h, client)
	}
}

func readPump(conn *websocket.Conn, h *hub.Hub, client *hub.Client) {
	defer func() {
		h.Disconnect(client.ID)
		conn.Close()
	}()
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debugf("connection %s read error: %v", client.ID, err)
			}
			return
		}
		var frame protocol.ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logger.Debugf("connection %s sent malformed frame: %v", client.ID, err)
			continue
		}
		h.HandleFrame(client, frame)
	}
}

func writePump(conn *websocket.Conn, client *hub.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()
	for {
		select {
		case frame, ok := <-client.Outbox():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
