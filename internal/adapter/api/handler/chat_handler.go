package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/Adnan8101/bharatverse/internal/adapter/api/middleware"
	"github.com/Adnan8101/bharatverse/internal/usecase"
	"github.com/Adnan8101/bharatverse/pkg/errors"
	"github.com/Adnan8101/bharatverse/pkg/response"
	"github.com/Adnan8101/bharatverse/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type CreateConversationRequest struct {
	CounterpartyID string `json:"counterparty_id" validate:"required"`
}

type TypingRequest struct {
	IsTyping bool `json:"is_typing"`
}

func (h *ChatHandler) CreateConversation(c echo.Context) error {
	var req CreateConversationRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	view, err := h.chatUseCase.GetOrCreateConversation(c.Request().Context(), middleware.ParticipantID(c), req.CounterpartyID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, view)
}

func (h *ChatHandler) ListConversations(c echo.Context) error {
	views, err := h.chatUseCase.ListConversations(c.Request().Context(), middleware.ParticipantID(c), c.QueryParam("search"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, views)
}

func (h *ChatHandler) GetConversation(c echo.Context) error {
	view, err := h.chatUseCase.GetConversation(c.Request().Context(), middleware.ParticipantID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, view)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	conversationID := c.Param("id")
	params := utils.GetPaginationParams(c)

	messages, total, err := h.chatUseCase.ListMessages(c.Request().Context(), middleware.ParticipantID(c), conversationID, params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, params.Page, params.PageSize)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var input usecase.SendMessageInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&input); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), middleware.ParticipantID(c), c.Param("id"), input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	updated, err := h.chatUseCase.MarkConversationRead(c.Request().Context(), middleware.ParticipantID(c), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int{"updated": updated})
}

func (h *ChatHandler) Typing(c echo.Context) error {
	var req TypingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	conversationID := c.Param("id")
	participantID := middleware.ParticipantID(c)

	if err := h.chatUseCase.SetTyping(c.Request().Context(), participantID, conversationID, req.IsTyping); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"typing": h.chatUseCase.ActiveTypers(conversationID),
	})
}
