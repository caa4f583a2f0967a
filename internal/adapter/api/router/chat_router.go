package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Adnan8101/bharatverse/internal/adapter/api/handler"
	"github.com/Adnan8101/bharatverse/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all conversation routes (excluding WebSocket)
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/v1/conversations")
	group.Use(authMiddleware.Authenticate)

	group.POST("", chatHandler.CreateConversation) // POST /v1/conversations - Get or create conversation with a counterparty
	group.GET("", chatHandler.ListConversations)   // GET /v1/conversations - Viewer's conversations, newest activity first
	group.GET("/:id", chatHandler.GetConversation) // GET /v1/conversations/:id - Single conversation view

	group.GET("/:id/messages", chatHandler.ListMessages) // GET /v1/conversations/:id/messages - Paginated history, oldest first
	group.POST("/:id/messages", chatHandler.SendMessage) // POST /v1/conversations/:id/messages - Send text or media message
	group.PUT("/:id/read", chatHandler.MarkRead)         // PUT /v1/conversations/:id/read - Mark counterpart messages read
	group.POST("/:id/typing", chatHandler.Typing)        // POST /v1/conversations/:id/typing - Start/stop typing signal
}
