package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/Adnan8101/bharatverse/internal/adapter/api/middleware"
	"github.com/Adnan8101/bharatverse/internal/usecase"
	"github.com/Adnan8101/bharatverse/pkg/errors"
	"github.com/Adnan8101/bharatverse/pkg/response"
)

type FileHandler struct {
	fileUseCase *usecase.FileUseCase
}

func NewFileHandler(fileUseCase *usecase.FileUseCase) *FileHandler {
	return &FileHandler{
		fileUseCase: fileUseCase,
	}
}

type DeleteFileRequest struct {
	URL string `json:"url" validate:"required,url"`
}

func (h *FileHandler) UploadFile(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing file in request", err))
	}

	if fileHeader.Size > usecase.MaxUploadSize {
		return response.Error(c, errors.BadRequest("File exceeds the 10MB limit", nil))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read uploaded file", err))
	}
	defer src.Close()

	result, err := h.fileUseCase.UploadFile(
		c.Request().Context(),
		middleware.ParticipantID(c),
		src,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Filename,
		fileHeader.Size,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

func (h *FileHandler) DeleteFile(c echo.Context) error {
	var req DeleteFileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	if err := h.fileUseCase.DeleteFile(c.Request().Context(), middleware.ParticipantID(c), req.URL); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "deleted"})
}
