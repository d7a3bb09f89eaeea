package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Event is one message pushed to connected clients: mood changes,
// interactions, and chat replies as they happen.
type Event struct {
	Type      string      `json:"type"`
	UserID    string      `json:"user_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Event types broadcast by the API.
const (
	EventCompanionUpdate = "companion.update"
	EventChatReply       = "chat.reply"
)

// eventClient allows for both real connections and mocks in tests.
type eventClient interface {
	sendChannel() chan []byte
	close()
}

// EventHub fans companion events out to WebSocket clients.
type EventHub struct {
	clients    map[eventClient]bool
	broadcast  chan Event
	register   chan eventClient
	unregister chan eventClient
	origins    []string
	logger     *slog.Logger
	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewEventHub creates a hub. origins are the allowed WebSocket origin
// patterns, e.g. "localhost:8000".
func NewEventHub(origins []string, logger *slog.Logger) *EventHub {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &EventHub{
		clients:    make(map[eventClient]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan eventClient),
		unregister: make(chan eventClient),
		origins:    origins,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *EventHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("websocket client connected", "total", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.sendChannel())
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("websocket client disconnected", "total", count)

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal event", "error", err)
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.sendChannel() <- data:
				default:
					// Slow client, drop it.
					close(client.sendChannel())
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// Stop shuts down the hub and disconnects all clients.
func (h *EventHub) Stop() {
	h.cancel()
	h.mu.Lock()
	for client := range h.clients {
		close(client.sendChannel())
		client.close()
	}
	h.clients = make(map[eventClient]bool)
	h.mu.Unlock()
}

// Broadcast queues an event for all connected clients. Drops the event when
// the queue is full rather than blocking the caller.
func (h *EventHub) Broadcast(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// Register adds a client to the hub.
func (h *EventHub) Register(client eventClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *EventHub) Unregister(client eventClient) {
	h.unregister <- client
}

// wsClient is a live WebSocket connection.
type wsClient struct {
	hub  *EventHub
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) sendChannel() chan []byte { return c.send }

func (c *wsClient) close() {
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}
}

// ServeHTTP upgrades the connection and starts the read/write pumps.
func (h *EventHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{hub: h, conn: conn, send: make(chan []byte, 256)}
	h.Register(client)

	go client.writePump()
	go client.readPump()
}

func (c *wsClient) writePump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			return
		}
	}
}

// readPump drains client messages to detect disconnects; the protocol is
// currently server-push only.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		if _, _, err := c.conn.Read(context.Background()); err != nil {
			return
		}
	}
}

// MockClient is an in-memory client for tests.
type MockClient struct {
	SendChan chan []byte
}

func (m *MockClient) sendChannel() chan []byte { return m.SendChan }

func (m *MockClient) close() {}
