package tags

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, tag *models.Tag) (*models.Tag, error)
	// FindByID returns common.ErrorNotFound for unknown or malformed ids.
	FindByID(ctx context.Context, id string) (*models.Tag, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]models.Tag, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	// CountInOrganization counts how many of ids are tags of organizationID.
	CountInOrganization(ctx context.Context, organizationID string, ids []string) (int, error)
}
