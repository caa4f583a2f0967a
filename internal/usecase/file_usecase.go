package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/Adnan8101/bharatverse/internal/domain/entity"
	"github.com/Adnan8101/bharatverse/internal/domain/repository"
	"github.com/Adnan8101/bharatverse/internal/domain/service"
	"github.com/Adnan8101/bharatverse/pkg/errors"
	"github.com/Adnan8101/bharatverse/pkg/logger"
)

// MaxUploadSize caps chat attachments at 10MB.
const MaxUploadSize = 10 << 20

var allowedFileTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

type FileUseCase struct {
	uploader service.FileUploadService
	metaRepo repository.FileMetadataRepository
}

func NewFileUseCase(uploader service.FileUploadService, metaRepo repository.FileMetadataRepository) *FileUseCase {
	return &FileUseCase{
		uploader: uploader,
		metaRepo: metaRepo,
	}
}

// UploadFile validates, stores, and records a chat attachment. The returned
// result is what SendMessage takes as a media ref.
func (uc *FileUseCase) UploadFile(ctx context.Context, uploaderID string, file io.Reader, fileType, filename string, size int64) (*service.UploadResult, error) {
	if size > MaxUploadSize {
		return nil, errors.BadRequest("File exceeds the 10MB limit", nil)
	}
	if !allowedFileTypes[fileType] {
		return nil, errors.BadRequest("Unsupported file type", nil)
	}

	result, err := uc.uploader.UploadFile(ctx, file, fileType, filename, "chat-media")
	if err != nil {
		return nil, errors.Storage("Failed to upload file", err)
	}

	metadata := &entity.FileMetadata{
		ID:         uuid.New().String(),
		URL:        result.URL,
		ObjectName: result.ObjectName,
		UploadedBy: uploaderID,
		Filename:   filename,
		FileType:   fileType,
		FileSize:   result.Size,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.metaRepo.Create(ctx, metadata); err != nil {
		// The object is already in the bucket; drop it so nothing dangles.
		if delErr := uc.uploader.DeleteFile(ctx, result.URL); delErr != nil {
			logger.Warn("Files: orphaned object %s after metadata failure: %v", result.ObjectName, delErr)
		}
		return nil, err
	}

	return result, nil
}

func (uc *FileUseCase) DeleteFile(ctx context.Context, requesterID, fileURL string) error {
	metadata, err := uc.metaRepo.GetByURL(ctx, fileURL)
	if err != nil {
		return err
	}
	if metadata.UploadedBy != requesterID && requesterID != entity.AdminParticipantID {
		return errors.Forbidden("You can only delete your own uploads", nil)
	}

	if err := uc.uploader.DeleteFile(ctx, fileURL); err != nil {
		return errors.Storage("Failed to delete file", err)
	}

	return uc.metaRepo.Delete(ctx, metadata.ID)
}
