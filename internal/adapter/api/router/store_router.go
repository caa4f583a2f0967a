package router

import (
	"github.com/labstack/echo/v4"

	"github.com/Adnan8101/bharatverse/internal/adapter/api/handler"
	"github.com/Adnan8101/bharatverse/internal/adapter/api/middleware"
)

func SetupStoreRouter(e *echo.Echo, storeHandler *handler.StoreHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/v1/stores")
	group.Use(authMiddleware.Authenticate)

	group.GET("", storeHandler.ListStores) // GET /v1/stores - Directory of active stores
	group.GET("/:id", storeHandler.GetStore)
}
