package usecase

import (
	"context"

	"github.com/Adnan8101/bharatverse/internal/domain/entity"
	"github.com/Adnan8101/bharatverse/internal/domain/repository"
)

// StoreUseCase exposes the store directory the chat UI browses before
// starting a conversation.
type StoreUseCase struct {
	storeRepo repository.StoreRepository
}

func NewStoreUseCase(storeRepo repository.StoreRepository) *StoreUseCase {
	return &StoreUseCase{storeRepo: storeRepo}
}

func (uc *StoreUseCase) GetStore(ctx context.Context, id string) (*entity.Store, error) {
	return uc.storeRepo.GetByID(ctx, id)
}

// ListStores returns active stores matching the search term. Suspended
// stores stay out of the directory; they cannot receive new conversations.
func (uc *StoreUseCase) ListStores(ctx context.Context, search string, limit int) ([]*entity.Store, error) {
	stores, err := uc.storeRepo.List(ctx, search, limit)
	if err != nil {
		return nil, err
	}

	active := make([]*entity.Store, 0, len(stores))
	for _, store := range stores {
		if store.Status == entity.StoreStatusSuspended {
			continue
		}
		active = append(active, store)
	}

	return active, nil
}
