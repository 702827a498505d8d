package web

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Message types pushed to the browser.
const (
	MsgRender = "render"
	MsgPrint  = "print"
)

// Message is one push to the admin page.
type Message struct {
	Type string `json:"type"`
	HTML string `json:"html,omitempty"`
	URL  string `json:"url,omitempty"`
}

type envelope struct {
	sessionID string
	payload   []byte
}

// Client is a websocket connection bound to one admin session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub fans session messages out to the session's open sockets.
type Hub struct {
	log        *zap.Logger
	mu         sync.RWMutex
	clients    map[string]map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	closeSess  chan string
	done       chan struct{}
}

// NewHub creates a websocket hub. Call Run to start it.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		closeSess:  make(chan string, 16),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for sid, clients := range h.clients {
				for client := range clients {
					close(client.send)
				}
				delete(h.clients, sid)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.sessionID] == nil {
				h.clients[client.sessionID] = make(map[*Client]bool)
			}
			h.clients[client.sessionID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case sid := <-h.closeSess:
			h.mu.Lock()
			for client := range h.clients[sid] {
				h.removeLocked(client)
			}
			h.mu.Unlock()

		case env := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients[env.sessionID] {
				select {
				case client.send <- env.payload:
				default:
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// removeLocked drops a client and closes its send channel once.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}
}

// Connected reports how many sockets the session has open.
func (h *Hub) Connected(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// Send queues a message for every socket of the session. It never blocks;
// messages are dropped once the hub has stopped.
func (h *Hub) Send(sessionID string, msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal websocket message", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- envelope{sessionID: sessionID, payload: payload}:
	case <-h.done:
	default:
		h.log.Warn("websocket broadcast queue full, dropping message",
			zap.String("session", sessionID), zap.String("type", msg.Type))
	}
}

// CloseSession disconnects every socket of the session.
func (h *Hub) CloseSession(sessionID string) {
	select {
	case h.closeSess <- sessionID:
	case <-h.done:
	}
}

// Attach registers a connection and pumps messages until it closes. The
// initial messages go to this connection only, ahead of anything broadcast
// to the session. It blocks for the lifetime of the connection.
func (h *Hub) Attach(conn *websocket.Conn, sessionID string, initial ...Message) {
	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
	}
	for _, msg := range initial {
		payload, err := json.Marshal(msg)
		if err != nil {
			h.log.Error("failed to marshal websocket message", zap.Error(err))
			continue
		}
		select {
		case client.send <- payload:
		default:
			h.log.Warn("websocket send buffer full, dropping initial message",
				zap.String("session", sessionID), zap.String("type", msg.Type))
		}
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

// readPump drains the connection so control frames are processed. Pages do
// not send data messages; anything received is discarded.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.log.Debug("websocket read error", zap.String("session", c.sessionID), zap.Error(err))
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
