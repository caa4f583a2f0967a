package usecase

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/Adnan8101/bharatverse/internal/domain/entity"
	"github.com/Adnan8101/bharatverse/internal/domain/service"
	"github.com/Adnan8101/bharatverse/pkg/errors"
)

type stubUploader struct {
	uploads int
	deletes []string
}

func (u *stubUploader) UploadFile(_ context.Context, file io.Reader, fileType, _, folder string) (*service.UploadResult, error) {
	size, _ := io.Copy(io.Discard, file)
	u.uploads++
	return &service.UploadResult{
		URL:        "https://storage.googleapis.com/bucket/" + folder + "/object",
		ObjectName: folder + "/object",
		Type:       fileType,
		Size:       size,
	}, nil
}

func (u *stubUploader) DeleteFile(_ context.Context, fileURL string) error {
	u.deletes = append(u.deletes, fileURL)
	return nil
}

func (u *stubUploader) Close() error { return nil }

type stubMetaRepo struct {
	created []*entity.FileMetadata
	fail    bool
}

func (r *stubMetaRepo) Create(_ context.Context, metadata *entity.FileMetadata) error {
	if r.fail {
		return errors.Storage("write failed", nil)
	}
	r.created = append(r.created, metadata)
	return nil
}

func (r *stubMetaRepo) GetByID(_ context.Context, _ string) (*entity.FileMetadata, error) {
	return nil, errors.NotFound("File metadata", nil)
}

func (r *stubMetaRepo) GetByURL(_ context.Context, url string) (*entity.FileMetadata, error) {
	for _, metadata := range r.created {
		if metadata.URL == url {
			return metadata, nil
		}
	}
	return nil, errors.NotFound("File metadata", nil)
}

func (r *stubMetaRepo) Delete(_ context.Context, id string) error {
	for i, metadata := range r.created {
		if metadata.ID == id {
			r.created = append(r.created[:i], r.created[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("File metadata", nil)
}

func TestUploadFileRejectsOversizeBeforeAnyWrite(t *testing.T) {
	uploader := &stubUploader{}
	uc := NewFileUseCase(uploader, &stubMetaRepo{})

	_, err := uc.UploadFile(context.Background(), "store-1", bytes.NewReader(nil), "image/jpeg", "big.jpg", 15<<20)
	if !errors.Is(err, "BAD_REQUEST") {
		t.Fatalf("expected BAD_REQUEST for a 15MB upload, got %v", err)
	}
	if uploader.uploads != 0 {
		t.Fatal("oversize file must be rejected before touching storage")
	}
}

func TestUploadFileRejectsDisallowedType(t *testing.T) {
	uploader := &stubUploader{}
	uc := NewFileUseCase(uploader, &stubMetaRepo{})

	_, err := uc.UploadFile(context.Background(), "store-1", bytes.NewReader([]byte("x")), "application/x-msdownload", "tool.exe", 10)
	if !errors.Is(err, "BAD_REQUEST") {
		t.Fatalf("expected BAD_REQUEST for a disallowed type, got %v", err)
	}
	if uploader.uploads != 0 {
		t.Fatal("disallowed type must be rejected before touching storage")
	}
}

func TestUploadFileRecordsMetadata(t *testing.T) {
	uploader := &stubUploader{}
	metaRepo := &stubMetaRepo{}
	uc := NewFileUseCase(uploader, metaRepo)

	result, err := uc.UploadFile(context.Background(), "store-1", bytes.NewReader([]byte("payload")), "image/png", "logo.png", 7)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	if result.Size != 7 || result.Type != "image/png" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(metaRepo.created) != 1 {
		t.Fatalf("expected one metadata row, got %d", len(metaRepo.created))
	}
	if metaRepo.created[0].UploadedBy != "store-1" || metaRepo.created[0].Filename != "logo.png" {
		t.Fatalf("unexpected metadata: %+v", metaRepo.created[0])
	}
}

func TestUploadFileCleansUpOnMetadataFailure(t *testing.T) {
	uploader := &stubUploader{}
	uc := NewFileUseCase(uploader, &stubMetaRepo{fail: true})

	_, err := uc.UploadFile(context.Background(), "store-1", bytes.NewReader([]byte("payload")), "image/png", "logo.png", 7)
	if err == nil {
		t.Fatal("expected metadata failure to surface")
	}
	if len(uploader.deletes) != 1 {
		t.Fatalf("expected the orphaned object to be deleted, got %d deletes", len(uploader.deletes))
	}
}

func TestDeleteFileOwnershipRules(t *testing.T) {
	uploader := &stubUploader{}
	metaRepo := &stubMetaRepo{}
	uc := NewFileUseCase(uploader, metaRepo)

	result, err := uc.UploadFile(context.Background(), "store-1", bytes.NewReader([]byte("payload")), "image/png", "logo.png", 7)
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	if err := uc.DeleteFile(context.Background(), "store-2", result.URL); !errors.Is(err, "FORBIDDEN") {
		t.Fatalf("expected FORBIDDEN for a foreign delete, got %v", err)
	}
	if err := uc.DeleteFile(context.Background(), "store-1", result.URL); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if len(metaRepo.created) != 0 {
		t.Fatal("expected metadata row removed")
	}
}
