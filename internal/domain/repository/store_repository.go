package repository

import (
	"context"

	"github.com/Adnan8101/bharatverse/internal/domain/entity"
)

// StoreRepository is the directory the chat core resolves participant
// display metadata from.
type StoreRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Store, error)
	List(ctx context.Context, search string, limit int) ([]*entity.Store, error)
}
