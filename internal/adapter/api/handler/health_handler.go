package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Adnan8101/bharatverse/pkg/response"
)

type HealthHandler struct {
	startedAt time.Time
}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now()}
}

func (h *HealthHandler) Check(c echo.Context) error {
	return response.Success(c, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}
