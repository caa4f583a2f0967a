package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Adnan8101/bharatverse/internal/adapter/api/handler"
	"github.com/Adnan8101/bharatverse/internal/adapter/api/middleware"
)

func SetupFileRouter(e *echo.Echo, fileHandler *handler.FileHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/v1/files")
	group.Use(authMiddleware.Authenticate)

	group.POST("/upload", fileHandler.UploadFile) // POST /v1/files/upload - Chat attachment upload (10MB cap)
	group.DELETE("", fileHandler.DeleteFile)
}
