package repository

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Adnan8101/bharatverse/internal/domain/entity"
	"github.com/Adnan8101/bharatverse/internal/domain/repository"
	"github.com/Adnan8101/bharatverse/pkg/errors"
	"github.com/Adnan8101/bharatverse/pkg/logger"
)

type firestoreStoreRepository struct {
	client *firestore.Client
}

func NewFirestoreStoreRepository(client *firestore.Client) repository.StoreRepository {
	return &firestoreStoreRepository{
		client: client,
	}
}

func (r *firestoreStoreRepository) GetByID(ctx context.Context, id string) (*entity.Store, error) {
	doc, err := r.client.Collection("stores").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Store", nil)
		}
		return nil, errors.Storage("Failed to get store", err)
	}

	var store entity.Store
	if err := doc.DataTo(&store); err != nil {
		return nil, errors.Storage("Failed to parse store data", err)
	}

	return &store, nil
}

func (r *firestoreStoreRepository) List(ctx context.Context, search string, limit int) ([]*entity.Store, error) {
	query := r.client.Collection("stores").OrderBy("name", firestore.Asc)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while listing stores: %v", err)
		return nil, errors.Storage("Failed to list stores", err)
	}

	search = strings.ToLower(strings.TrimSpace(search))

	var stores []*entity.Store
	for _, doc := range docs {
		var store entity.Store
		if err := doc.DataTo(&store); err != nil {
			logger.Warn("Skipping malformed store %s: %v", doc.Ref.ID, err)
			continue
		}

		// Firestore has no substring queries; the directory is small enough
		// to filter in memory.
		if search != "" &&
			!strings.Contains(strings.ToLower(store.Name), search) &&
			!strings.Contains(strings.ToLower(store.Username), search) {
			continue
		}

		stores = append(stores, &store)
		if limit > 0 && len(stores) >= limit {
			break
		}
	}

	return stores, nil
}
