package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Adnan8101/bharatverse/internal/usecase"
	"github.com/Adnan8101/bharatverse/pkg/response"
)

type StoreHandler struct {
	storeUseCase *usecase.StoreUseCase
}

func NewStoreHandler(storeUseCase *usecase.StoreUseCase) *StoreHandler {
	return &StoreHandler{
		storeUseCase: storeUseCase,
	}
}

func (h *StoreHandler) ListStores(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	stores, err := h.storeUseCase.ListStores(c.Request().Context(), c.QueryParam("search"), limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, stores)
}

func (h *StoreHandler) GetStore(c echo.Context) error {
	store, err := h.storeUseCase.GetStore(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, store)
}
