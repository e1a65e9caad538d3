package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"figaros/internal/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	Hub *ws.Hub
}

// ServeHTTP handles GET /ws: a read-only feed of booking change events.
// Clients receive JSON events; anything they send is discarded.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &ws.Connection{
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	h.Hub.Register(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.Hub.Unregister(c)
	conn.Close()
}
