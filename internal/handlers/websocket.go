package handlers

import (
	"encoding/json"
	"net/http"

	"transconnect/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{}

// SessionStatus is the payload of the session_status message sent when a
// page connects
type SessionStatus struct {
	SessionID string `json:"session_id"`
	SignedIn  bool   `json:"signed_in"`
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub *services.WSHub
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// HandleWebSocket handles GET /ws. The page holds the connection open so
// toasts and view events raised by timers reach it.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	s, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	// Upgrade connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	// Register connection
	if err := h.hub.Register(s.ID, conn); err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("Failed to register WebSocket connection")
		return
	}
	defer h.hub.Unregister(s.ID, conn)

	statusMsg := services.WSMessage{
		Type: services.EventSessionStatus,
		Data: SessionStatus{SessionID: s.ID, SignedIn: s.SignedIn()},
	}
	if err := h.hub.SendToSession(s.ID, statusMsg); err != nil {
		log.Error().Err(err).Str("session_id", s.ID).Msg("Failed to send session_status message")
		return
	}

	// Toasts queued before the page connected are pushed now
	for _, t := range s.DrainToasts() {
		s.Toast(t)
	}

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("session_id", s.ID).Msg("WebSocket error")
			}
			break
		}

		var msg services.WSMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("session_id", s.ID).Msg("Failed to parse WebSocket message")
			h.sendError(s.ID, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "ping":
		default:
			h.sendError(s.ID, "Unknown message type")
		}
	}
}

// sendError sends an error message to the session's connection
func (h *WebSocketHandler) sendError(sessionID, message string) {
	msg := services.WSMessage{
		Type:    services.EventError,
		Message: message,
	}
	if err := h.hub.SendToSession(sessionID, msg); err != nil {
		log.Debug().Err(err).Str("session_id", sessionID).Msg("Failed to send error message")
	}
}
