package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Adnan8101/bharatverse/internal/adapter/api/handler"
	"github.com/Adnan8101/bharatverse/internal/adapter/api/middleware"
)

// SetupWebSocketRouter sets up the push channel. Browsers cannot set headers
// on the upgrade request, so Authenticate also accepts ?token=.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/ws", wsHandler.HandleConnection, authMiddleware.Authenticate)
}
