package users

import (
	"context"

	"github.com/dmitrijs2005/stockkeeper/internal/server/models"
)

// Repository persists user accounts. Lookups that match nothing return
// common.ErrorNotFound.
type Repository interface {
	// Create inserts user and fills ID and CreatedAt. A taken email is
	// common.ErrDuplicateEmail.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// Update writes only the fields set in upd.
	Update(ctx context.Context, id string, upd models.UserUpdate) error
}
