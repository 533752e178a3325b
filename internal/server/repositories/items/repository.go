package items

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

// Repository persists items and their tag links. Photos live in the photos
// repository. Lookups of unknown or malformed ids return common.ErrorNotFound.
type Repository interface {
	// Create inserts the item row and fills ID, CreatedAt and UpdatedAt.
	// Tag links are written separately with ReplaceTags.
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	// FindByID returns the item with its TagIDs.
	FindByID(ctx context.Context, id string) (*models.Item, error)
	// List returns one page of items matching filter, each with its TagIDs.
	List(ctx context.Context, filter models.ItemFilter) (*models.ItemPage, error)
	// Update writes the scalar fields present in upd and bumps updated_at.
	Update(ctx context.Context, id string, upd models.ItemUpdate) error
	// ReplaceTags makes tagIDs the exact tag set of the item.
	ReplaceTags(ctx context.Context, itemID string, tagIDs []string) error
	Delete(ctx context.Context, id string) error
}
