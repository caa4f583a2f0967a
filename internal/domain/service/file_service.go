package service

import (
	"context"
	"io"
)

// UploadResult is the reference handed back to clients; SendMessage consumes
// it as the media ref of a media message.
type UploadResult struct {
	URL        string `json:"url"`
	ObjectName string `json:"object_name"`
	Type       string `json:"type"`
	Size       int64  `json:"size"`
}

type FileUploadService interface {
	UploadFile(ctx context.Context, file io.Reader, fileType, filename, folder string) (*UploadResult, error)
	DeleteFile(ctx context.Context, fileURL string) error
	Close() error
}
