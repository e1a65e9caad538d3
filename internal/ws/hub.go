package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Event is pushed to every connected client whenever a booking changes.
type Event struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	GrupoID string `json:"grupoId,omitempty"`
	Count   int    `json:"count,omitempty"`
}

// Connection represents a websocket connection to a client.
type Connection struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub maintains the set of live connections and fans booking events out to
// all of them.
type Hub struct {
	conns      map[*Connection]bool
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan []byte
	mu         sync.Mutex
}

func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan []byte),
	}
	go h.run()
	return h
}

// Publish broadcasts an event to every connected client. Safe to call from
// any goroutine; a hub with no listeners drops the event.
func (h *Hub) Publish(ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Error("ws: marshal event")
		return
	}
	h.broadcast <- b
}

// Register adds a connection to the hub and starts its write pump.
func (h *Hub) Register(c *Connection) {
	h.register <- c
	go c.startWrite()
}

// Unregister drops a connection from the hub.
func (h *Hub) Unregister(c *Connection) {
	h.unregister <- c
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.conns[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.conns[c]; ok {
				delete(h.conns, c)
				close(c.Send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.conns {
				select {
				case c.Send <- msg:
				default:
					// If send buffer is full, drop connection
					delete(h.conns, c)
					close(c.Send)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (c *Connection) startWrite() {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}
