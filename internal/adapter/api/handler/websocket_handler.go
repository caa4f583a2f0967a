package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Adnan8101/bharatverse/internal/adapter/api/middleware"
	ws "github.com/Adnan8101/bharatverse/internal/infrastructure/websocket"
	"github.com/Adnan8101/bharatverse/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Origin checks belong to the gateway in front of us
	},
}

type WebSocketHandler struct {
	manager *ws.Manager
}

func NewWebSocketHandler(manager *ws.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
	}
}

// HandleConnection upgrades the request and runs the session pumps. Auth has
// already resolved the participant ID (header token or ?token=).
func (h *WebSocketHandler) HandleConnection(c echo.Context) error {
	participantID := middleware.ParticipantID(c)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Warn("WebSocket: upgrade failed for %s: %v", participantID, err)
		return err
	}

	client := &ws.Client{
		ParticipantID: participantID,
		Conn:          conn,
		Send:          make(chan []byte, 256),
	}

	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump(h.manager)

	return nil
}
