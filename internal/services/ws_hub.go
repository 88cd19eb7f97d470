package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"transconnect/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket message types
const (
	EventToast         = "toast"
	EventSessionStatus = "session_status"
	EventError         = "error"
)

const writeWait = 10 * time.Second

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string        `json:"type"`
	Timestamp int64         `json:"timestamp,omitempty"`
	Toast     *models.Toast `json:"toast,omitempty"`
	Message   string        `json:"message,omitempty"`
	Data      interface{}   `json:"data,omitempty"`
}

type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages the WebSocket connection of each browser session. A newer
// connection for the same session replaces the older one.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsConn
	closed      bool
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsConn),
	}
}

// Register registers a new WebSocket connection for a session
func (h *WSHub) Register(sessionID string, conn *websocket.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return fmt.Errorf("hub is closed")
	}

	// Close existing connection if any
	if existing, exists := h.connections[sessionID]; exists {
		existing.conn.Close()
	}

	h.connections[sessionID] = &wsConn{conn: conn}

	log.Info().Str("session_id", sessionID).Msg("WebSocket connection registered")
	return nil
}

// Unregister removes the WebSocket connection of a session if it is still conn
func (h *WSHub) Unregister(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, exists := h.connections[sessionID]; exists && c.conn == conn {
		c.conn.Close()
		delete(h.connections, sessionID)
		log.Info().Str("session_id", sessionID).Msg("WebSocket connection unregistered")
	}
}

// SendToSession sends a message to a specific session
func (h *WSHub) SendToSession(sessionID string, message WSMessage) error {
	h.mu.RLock()
	c, exists := h.connections[sessionID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("session %s is not connected", sessionID)
	}

	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := c.write(data); err != nil {
		h.Unregister(sessionID, c.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a session has a live connection
func (h *WSHub) IsOnline(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[sessionID]
	return exists
}

// Close closes every connection and refuses new ones
func (h *WSHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, c := range h.connections {
		c.mu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
		delete(h.connections, id)
	}
}
