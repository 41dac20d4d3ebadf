package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rickgao/kalshi-orderflow/internal/model"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Browser origins are enforced by the CORS layer for the REST API;
	// the stream carries public market data only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the envelope pushed to stream clients.
type wsMessage struct {
	Type string               `json:"type"`
	Data model.OrderFlowEvent `json:"data"`
}

// handleWebSocket upgrades the connection and streams order-flow events
// until the client disconnects or falls too far behind.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}

	sub := s.hub.Subscribe()
	s.logger.Info("stream client connected", "id", sub.ID(), "remote", r.RemoteAddr)

	defer func() {
		s.hub.Unsubscribe(sub)
		conn.Close()
		s.logger.Info("stream client disconnected", "id", sub.ID())
	}()

	// Reader drains control frames and signals close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(wsMessage{Type: "orderFlow", Data: ev}); err != nil {
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
