package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Adnan8101/bharatverse/pkg/logger"
)

// Client represents one WebSocket session. A participant may hold several
// sessions (multiple tabs); fan-out reaches all of them.
type Client struct {
	ParticipantID string
	Conn          *websocket.Conn
	Send          chan []byte

	mu     sync.Mutex
	closed bool
}

// trySend queues payload without blocking. Returns false when the buffer is
// full or the session is already closed.
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once. Concurrent fan-outs that
// still hold this client in a snapshot see the closed flag instead of a
// closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

// Manager tracks active sessions per participant and per-conversation rooms.
// Push delivery here is a hint only; the poll API stays authoritative.
type Manager struct {
	clients    map[string]map[*Client]struct{} // participant ID -> sessions
	rooms      map[string]map[*Client]struct{} // conversation ID -> sessions
	Register   chan *Client
	Unregister chan *Client
	events     EventHandler
	mutex      sync.RWMutex
}

// EventHandler receives client-originated events the manager cannot resolve
// on its own (they need conversation state). Set once before Start.
type EventHandler interface {
	OnTyping(participantID, conversationID string, isTyping bool)
	OnMarkRead(participantID, conversationID string)
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (m *Manager) SetEventHandler(h EventHandler) {
	m.events = h
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if m.clients[client.ParticipantID] == nil {
					m.clients[client.ParticipantID] = make(map[*Client]struct{})
				}
				m.clients[client.ParticipantID][client] = struct{}{}
				m.mutex.Unlock()
				logger.Info("WebSocket: session registered for %s", client.ParticipantID)

			case client := <-m.Unregister:
				m.removeClient(client)
				logger.Info("WebSocket: session unregistered for %s", client.ParticipantID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) removeClient(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if sessions, ok := m.clients[client.ParticipantID]; ok {
		if _, ok := sessions[client]; ok {
			delete(sessions, client)
			client.closeSend()
			if len(sessions) == 0 {
				delete(m.clients, client.ParticipantID)
			}
		}
	}
	for conversationID, members := range m.rooms {
		delete(members, client)
		if len(members) == 0 {
			delete(m.rooms, conversationID)
		}
	}
}

func (m *Manager) JoinRoom(conversationID string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.rooms[conversationID] == nil {
		m.rooms[conversationID] = make(map[*Client]struct{})
	}
	m.rooms[conversationID][client] = struct{}{}
}

func (m *Manager) LeaveRoom(conversationID string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if members, ok := m.rooms[conversationID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(m.rooms, conversationID)
		}
	}
}

// SendToParticipant delivers payload to every open session of a participant.
func (m *Manager) SendToParticipant(participantID string, payload []byte) {
	m.mutex.RLock()
	sessions := make([]*Client, 0, len(m.clients[participantID]))
	for client := range m.clients[participantID] {
		sessions = append(sessions, client)
	}
	m.mutex.RUnlock()

	for _, client := range sessions {
		m.trySend(client, payload)
	}
}

// SendToRoom delivers payload to every session subscribed to a conversation,
// skipping the excluded participant (usually the sender).
func (m *Manager) SendToRoom(conversationID string, payload []byte, exceptParticipantID string) {
	m.mutex.RLock()
	members := make([]*Client, 0, len(m.rooms[conversationID]))
	for client := range m.rooms[conversationID] {
		if client.ParticipantID == exceptParticipantID {
			continue
		}
		members = append(members, client)
	}
	m.mutex.RUnlock()

	for _, client := range members {
		m.trySend(client, payload)
	}
}

func (m *Manager) trySend(client *Client, payload []byte) {
	if !client.trySend(payload) {
		// Slow consumer; drop the session rather than block fan-out.
		logger.Warn("WebSocket: send buffer full for %s, dropping session", client.ParticipantID)
		m.removeClient(client)
	}
}

// ReadPump reads events from the connection until it closes.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket: read error for %s: %v", c.ParticipantID, err)
			}
			break
		}

		m.HandleClientEvent(c, payload)
	}
}

// WritePump flushes the send channel to the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		payload, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn("WebSocket: write error for %s: %v", c.ParticipantID, err)
			return
		}
	}
}
