package photos

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

// Repository keeps photo metadata. The image bytes live in object storage
// under Photo.StorageKey.
type Repository interface {
	// Create inserts p. The caller assigns ID and StorageKey.
	Create(ctx context.Context, p *models.Photo) (*models.Photo, error)
	FindByID(ctx context.Context, id string) (*models.Photo, error)
	// ListByItems groups the photos of the given items by item id.
	ListByItems(ctx context.Context, itemIDs []string) (map[string][]models.Photo, error)
	// ListStorageKeys returns the storage keys of all photos of an item.
	ListStorageKeys(ctx context.Context, itemID string) ([]string, error)
	Delete(ctx context.Context, id string) error
}
