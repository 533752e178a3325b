package organizations

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, org *models.Organization) (*models.Organization, error)
	List(ctx context.Context) ([]models.Organization, error)
	// Exists reports whether an organization with id is present.
	Exists(ctx context.Context, id string) (bool, error)
}
