package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans project events out to WebSocket subscribers
type Hub struct {
	// project -> connections
	subscribers map[string]map[*Connection]struct{}

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	logger *zap.Logger
}

// Connection represents a WebSocket subscriber
type Connection struct {
	ProjectID string
	Send      chan []byte
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	ProjectID string
	Data      []byte
}

// NewHub creates a new WebSocket hub. Call Run to start it.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*Connection]struct{}),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// NewConnection creates a subscriber for projectID
func NewConnection(projectID string) *Connection {
	return &Connection{ProjectID: projectID, Send: make(chan []byte, 256)}
}

// Run processes registrations and broadcasts until ctx is cancelled.
// On exit every subscriber's Send channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for projectID, conns := range h.subscribers {
				for conn := range conns {
					close(conn.Send)
				}
				delete(h.subscribers, projectID)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.subscribers[conn.ProjectID] == nil {
				h.subscribers[conn.ProjectID] = make(map[*Connection]struct{})
			}
			h.subscribers[conn.ProjectID][conn] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("subscriber connected", zap.String("project_id", conn.ProjectID))

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.subscribers[conn.ProjectID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.subscribers, conn.ProjectID)
					}
					h.logger.Debug("subscriber disconnected", zap.String("project_id", conn.ProjectID))
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.subscribers[msg.ProjectID] {
				select {
				case conn.Send <- msg.Data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection. It reports false once the hub has stopped.
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish sends an event to every subscriber of projectID (implements service.Publisher).
// It never blocks; events are dropped when the hub is saturated or stopped.
func (h *Hub) Publish(projectID string, msgType string, payload interface{}) {
	if projectID == "" {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("unencodable event payload", zap.String("type", msgType), zap.Error(err))
		return
	}
	envelope, _ := json.Marshal(&Message{Type: MessageType(msgType), Payload: data})

	select {
	case h.broadcast <- &BroadcastMessage{ProjectID: projectID, Data: envelope}:
	case <-h.done:
	default:
		h.logger.Warn("event dropped", zap.String("project_id", projectID), zap.String("type", msgType))
	}
}

// Subscribers returns the number of live connections for projectID
func (h *Hub) Subscribers(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[projectID])
}
