package websocket

import (
	"encoding/json"
	"time"

	"github.com/Adnan8101/bharatverse/pkg/logger"
)

// Event types pushed to clients.
const (
	EventNewMessage         = "new_message"
	EventConversationUpdate = "conversation_update"
	EventMessagesRead       = "messages_read"
	EventTypingIndicator    = "typing_indicator"
	EventPong               = "pong"
	EventError              = "error"
)

// Event types accepted from clients.
const (
	EventPing        = "ping"
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventTypingStart = "typing_start"
	EventTypingStop  = "typing_stop"
	EventMarkRead    = "mark_read"
)

type Event struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Data           interface{} `json:"data,omitempty"`
	Timestamp      string      `json:"timestamp"`
}

func NewEvent(eventType, conversationID string, data interface{}) Event {
	return Event{
		Type:           eventType,
		ConversationID: conversationID,
		Data:           data,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

func (e Event) Encode() []byte {
	payload, err := json.Marshal(e)
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s event: %v", e.Type, err)
		return nil
	}
	return payload
}

// HandleClientEvent processes one inbound frame. Room membership is handled
// locally; typing and read events are forwarded to the chat layer.
func (m *Manager) HandleClientEvent(client *Client, payload []byte) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		logger.Warn("WebSocket: invalid frame from %s: %v", client.ParticipantID, err)
		m.sendError(client, "Invalid event format")
		return
	}

	switch event.Type {
	case EventPing:
		m.trySend(client, NewEvent(EventPong, "", map[string]string{"status": "alive"}).Encode())

	case EventJoinRoom:
		if event.ConversationID == "" {
			m.sendError(client, "Missing conversation_id")
			return
		}
		m.JoinRoom(event.ConversationID, client)
		logger.Info("WebSocket: %s joined room %s", client.ParticipantID, event.ConversationID)

	case EventLeaveRoom:
		if event.ConversationID == "" {
			m.sendError(client, "Missing conversation_id")
			return
		}
		m.LeaveRoom(event.ConversationID, client)
		logger.Info("WebSocket: %s left room %s", client.ParticipantID, event.ConversationID)

	case EventTypingStart, EventTypingStop:
		if event.ConversationID == "" {
			m.sendError(client, "Missing conversation_id")
			return
		}
		if m.events != nil {
			m.events.OnTyping(client.ParticipantID, event.ConversationID, event.Type == EventTypingStart)
		}

	case EventMarkRead:
		if event.ConversationID == "" {
			m.sendError(client, "Missing conversation_id")
			return
		}
		if m.events != nil {
			m.events.OnMarkRead(client.ParticipantID, event.ConversationID)
		}

	default:
		logger.Warn("WebSocket: unknown event type %q from %s", event.Type, client.ParticipantID)
		m.sendError(client, "Unknown event type")
	}
}

func (m *Manager) sendError(client *Client, message string) {
	m.trySend(client, NewEvent(EventError, "", map[string]string{"error": message}).Encode())
}
